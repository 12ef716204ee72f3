package cmd

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"vidshrink/internal/dirs"
	"vidshrink/internal/util"
)

func newDoctorCmd() *cobra.Command {
	return &cobra.Command{
		Use:           "doctor",
		Short:         "Diagnose the ffmpeg installation and show where files are kept",
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			e, err := loadEnv(cmd, false)
			if err != nil {
				return err
			}
			defer e.Close()

			ff, err := e.ffmpeg()
			if err != nil {
				return err
			}
			version := ffmpegVersion(cmd.Context(), util.NewDefaultRunner(), ff)

			cfgFile := e.app.ConfigFile
			if cfgFile == "" {
				if d, derr := dirs.ConfigDir(); derr == nil {
					cfgFile = "(none in " + d + ")"
				}
			}
			rows := [][]string{
				{"FFmpeg", ff},
				{"Version", version},
				{"Config file", cfgFile},
				{"Settings", e.store.Path()},
				{"Log file", e.logPath},
			}
			fmt.Fprintln(cmd.OutOrStdout(), keyValueTable(rows))
			return nil
		},
	}
}

// ffmpegVersion returns the first line of `ffmpeg -version`.
func ffmpegVersion(ctx context.Context, runner util.CmdRunner, path string) string {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	res, err := runner.Run(ctx, util.CmdSpec{Path: path, Args: []string{"-version"}})
	if err != nil {
		return "unknown (" + err.Error() + ")"
	}
	line, _, _ := strings.Cut(string(res.Stdout), "\n")
	if line = strings.TrimSpace(line); line == "" {
		return "unknown"
	}
	return line
}
