package cmd

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"vidshrink/internal/encoder"
	"vidshrink/internal/model"
	"vidshrink/internal/util"
)

func newPlanCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "plan <input>",
		Short:         "Show the ffmpeg command that would run, without encoding",
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := loadEnv(cmd, false)
			if err != nil {
				return err
			}
			defer e.Close()

			req, err := buildRequest(cmd, e, args[0])
			if err != nil {
				return err
			}
			info, warnings, err := encoder.Probe(cmd.Context(), util.NewDefaultRunner(), req.FFmpegPath, req.InputPath, e.app.ProbeTimeout)
			if err != nil {
				return &ExitError{Code: ExitProbeError, Err: err}
			}

			spec := encoder.Resolve(req.Selection)
			argv := encoder.BuildArgs(spec, info, req.InputPath, req.OutputPath)

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, "Dry-run plan:")
			fmt.Fprintln(out, keyValueTable(planRows(req, spec, info)))
			for _, w := range warnings {
				fmt.Fprintf(out, "warning: %s\n", w)
			}
			fmt.Fprintln(out, util.ShellQuote(req.FFmpegPath, argv))
			return nil
		},
	}
	bindCompressFlags(cmd.Flags())
	return cmd
}

func planRows(req model.Request, spec model.EncodeSpec, info model.MediaInfo) [][]string {
	scale := "none"
	if spec.ScaleFilter != "" {
		scale = spec.ScaleFilter
	}
	fps := encoder.OutputFrameRate(info.FrameRate, spec.FrameSkip)
	return [][]string{
		{"Input", req.InputPath},
		{"Output", req.OutputPath},
		{"FFmpeg", req.FFmpegPath},
		{"Encoder", spec.Encoder},
		{"CRF", strconv.Itoa(spec.CRF)},
		{"Preset", spec.Preset},
		{"Scale", scale},
		{"Frame rate", strconv.FormatFloat(fps, 'f', -1, 64)},
		{"Audio", fmt.Sprintf("aac %d kbps", spec.AudioBitrateKbps)},
	}
}
