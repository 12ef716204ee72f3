package cmd

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"vidshrink/internal/config"
)

func newSettingsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "settings [show|path|reset]",
		Short:         "Show, locate or reset the remembered settings",
		SilenceUsage:  true,
		SilenceErrors: true,
		ValidArgs:     []string{"show", "path", "reset"},
		Args:          cobra.MatchAll(cobra.MaximumNArgs(1), cobra.OnlyValidArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			action := "show"
			if len(args) == 1 {
				action = args[0]
			}
			e, err := loadEnv(cmd, false)
			if err != nil {
				return err
			}
			defer e.Close()

			out := cmd.OutOrStdout()
			switch action {
			case "path":
				fmt.Fprintln(out, e.store.Path())
			case "reset":
				if err := e.store.Reset(); err != nil {
					return &ExitError{Code: ExitCLIError, Err: fmt.Errorf("reset settings: %w", err)}
				}
				e.log.Info("settings reset", "path", e.store.Path())
				fmt.Fprintln(out, "Settings reset.")
			default:
				fmt.Fprintln(out, keyValueTable(settingsRows(e.settings)))
			}
			return nil
		},
	}
	return cmd
}

func settingsRows(st config.Settings) [][]string {
	ffmpeg := st.FFmpegPath
	if ffmpeg == "" {
		ffmpeg = "(search PATH)"
	}
	recent := "(none)"
	if len(st.RecentFiles) > 0 {
		recent = strings.Join(st.RecentFiles, "\n")
	}
	return [][]string{
		{"ffmpeg_path", ffmpeg},
		{"last_quality", st.LastQuality},
		{"last_codec", st.LastCodec},
		{"last_resolution", st.LastResolution},
		{"default_crf", strconv.Itoa(st.DefaultCRF)},
		{"advanced_options", strconv.FormatBool(st.AdvancedOptions)},
		{"recent_files", recent},
	}
}
