package cmd

import (
	"fmt"
	"path/filepath"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"vidshrink/internal/encoder"
	"vidshrink/internal/model"
	"vidshrink/internal/util"
	"vidshrink/internal/util/format"
)

func newProbeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "probe <input>",
		Short:         "Show duration, resolution and frame rate of a video",
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := loadEnv(cmd, false)
			if err != nil {
				return err
			}
			defer e.Close()

			input := args[0]
			if !util.IsRegularFile(input) {
				return &ExitError{Code: ExitCLIError, Err: fmt.Errorf("input file not found: %s", input)}
			}
			ff, err := e.ffmpeg()
			if err != nil {
				return err
			}
			info, warnings, err := encoder.Probe(cmd.Context(), util.NewDefaultRunner(), ff, input, e.app.ProbeTimeout)
			if err != nil {
				e.log.Error("probe failed", "input", input, "error", err)
				return &ExitError{Code: ExitProbeError, Err: err}
			}

			var size int64
			if n, serr := util.FileSize(input); serr == nil {
				size = n
			}
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, renderTable([]string{"Property", "Value"}, probeRows(input, size, info), []columnAlignment{alignLeft, alignRight}))
			for _, w := range warnings {
				fmt.Fprintf(out, "warning: %s\n", w)
			}
			return nil
		},
	}
	return cmd
}

func probeRows(input string, size int64, info model.MediaInfo) [][]string {
	duration := "unknown"
	if info.DurationSec > 0 {
		duration = format.Clock(time.Duration(info.DurationSec * float64(time.Second)))
	}
	return [][]string{
		{"File", filepath.Base(input)},
		{"Size", format.HumanizeBytes(size)},
		{"Duration", duration},
		{"Resolution", fmt.Sprintf("%dx%d", info.Width, info.Height)},
		{"Frame rate", strconv.FormatFloat(info.FrameRate, 'f', -1, 64) + " fps"},
	}
}
