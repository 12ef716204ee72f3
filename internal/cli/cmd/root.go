package cmd

import (
	"context"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

const (
	ExitOK             = 0
	ExitCLIError       = 1
	ExitMissingDep     = 2
	ExitProbeError     = 3
	ExitTranscodeError = 4
	ExitCancelled      = 130
)

// ExitError wraps an error with a process exit code.
type ExitError struct {
	Code int
	Err  error
}

func (e *ExitError) Error() string {
	if e.Err == nil {
		return ""
	}
	return e.Err.Error()
}

func (e *ExitError) Unwrap() error { return e.Err }

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "vidshrink [input]",
		Short: "Shrink video files with ffmpeg",
		Long: "vidshrink compresses a video with ffmpeg using a small set of quality tiers. " +
			"Pick a tier, a codec and an optional target resolution; vidshrink builds the ffmpeg command, " +
			"shows progress and reports how much smaller the result is.",
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				return cmd.Help()
			}
			return runCompress(cmd, args[0])
		},
	}

	pf := root.PersistentFlags()
	pf.String("ffmpeg", "", "Path to the ffmpeg binary (default: search PATH)")
	pf.BoolP("verbose", "v", false, "Mirror the log to stderr in plain mode")
	pf.String("log-level", "info", "Log level: trace, debug, info, warn, error")
	pf.String("log-format", "text", "Log format: text or json")
	pf.String("log-file", "", "Log file (default: <state dir>/vidshrink.log)")
	pf.String("config", "", "Config file (default: <config dir>/config.{toml,yaml,json})")

	// `vidshrink <input>` behaves like `vidshrink compress <input>`.
	bindCompressFlags(root.Flags())

	root.AddCommand(newCompressCmd())
	root.AddCommand(newPlanCmd())
	root.AddCommand(newProbeCmd())
	root.AddCommand(newPresetsCmd())
	root.AddCommand(newDoctorCmd())
	root.AddCommand(newSettingsCmd())
	root.AddCommand(newCompletionCmd())

	return root
}

func bindCompressFlags(fs *pflag.FlagSet) {
	fs.StringP("output", "o", "", "Output file (default: <input>_compressed.mp4 next to the input)")
	fs.String("quality", "balanced", "Quality tier: aggressive, balanced, high")
	fs.String("codec", "h264", "Video codec: h264, h265, vp9")
	fs.String("resolution", "original", "Resolution: original, 1080p, 720p, 480p, custom")
	fs.Int("width", 0, "Output width for --resolution custom")
	fs.Int("height", 0, "Output height for --resolution custom")
	fs.Int("crf", -1, "CRF override 0-51 (-1 uses the tier default)")
	fs.Bool("no-ui", false, "Disable the TUI; print plain progress lines")
	fs.Duration("progress-interval", 500*time.Millisecond, "Minimum time between progress updates")
	fs.Duration("grace-period", time.Second, "Time ffmpeg gets to exit after a stop before it is killed")
	fs.Duration("probe-timeout", 15*time.Second, "Timeout for reading video information")
}

// Execute runs the CLI with the provided context.
func Execute(ctx context.Context) error {
	root := newRootCmd()
	return root.ExecuteContext(ctx)
}
