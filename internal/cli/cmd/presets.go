package cmd

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"vidshrink/internal/encoder"
)

func newPresetsCmd() *cobra.Command {
	return &cobra.Command{
		Use:           "presets",
		Short:         "List the quality tiers and their ffmpeg parameters",
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			fmt.Fprintln(cmd.OutOrStdout(), renderTable(
				[]string{"Quality", "CRF", "Preset", "FPS divisor", "Audio"},
				presetRows(),
				[]columnAlignment{alignLeft, alignRight, alignLeft, alignRight, alignRight},
			))
			return nil
		},
	}
}

func presetRows() [][]string {
	tiers := encoder.Tiers()
	rows := make([][]string, 0, len(tiers))
	for _, t := range tiers {
		name := string(t.Quality)
		if name == "" {
			name = "(other)"
		}
		rows = append(rows, []string{
			name,
			strconv.Itoa(t.CRF),
			t.Preset,
			strconv.Itoa(t.FrameSkip + 1),
			fmt.Sprintf("%d kbps", t.AudioBitrateKbps),
		})
	}
	return rows
}
