package cmd

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"vidshrink/internal/config"
	"vidshrink/internal/encoder"
	"vidshrink/internal/job"
	"vidshrink/internal/model"
	"vidshrink/internal/progress"
	"vidshrink/internal/ui"
	"vidshrink/internal/util"
)

func newCompressCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "compress <input>",
		Short:         "Compress a video file",
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCompress(cmd, args[0])
		},
	}
	bindCompressFlags(cmd.Flags())
	return cmd
}

func runCompress(cmd *cobra.Command, input string) error {
	e, err := loadEnv(cmd, true)
	if err != nil {
		return err
	}
	defer e.Close()
	useTUI := !e.app.NoUI && isTerminal()

	req, err := buildRequest(cmd, e, input)
	if err != nil {
		return err
	}

	bus := progress.NewBus()
	sup := job.New(
		job.WithReporter(bus),
		job.WithLogger(e.log),
		job.WithGracePeriod(e.app.GracePeriod),
		job.WithProgressInterval(e.app.ProgressInterval),
		job.WithProbeTimeout(e.app.ProbeTimeout),
	)

	var res progress.Result
	if useTUI {
		res, err = ui.Run(cmd.Context(), sup, bus, req)
	} else {
		p := newPlainPrinter(cmd.OutOrStdout(), cmd.ErrOrStderr())
		res, err = runPlain(cmd.Context(), sup, bus, req, p)
	}
	if err != nil {
		var cfgErr *job.ConfigError
		if errors.As(err, &cfgErr) {
			return &ExitError{Code: ExitCLIError, Err: err}
		}
		return &ExitError{Code: ExitTranscodeError, Err: err}
	}

	rememberRun(e, req)
	return exitFor(res)
}

// buildRequest turns flags and config into a supervisor request.
func buildRequest(cmd *cobra.Command, e *env, input string) (model.Request, error) {
	abs, err := filepath.Abs(input)
	if err != nil {
		return model.Request{}, &ExitError{Code: ExitCLIError, Err: err}
	}
	if !util.IsRegularFile(abs) {
		return model.Request{}, &ExitError{Code: ExitCLIError, Err: fmt.Errorf("input file not found: %s", input)}
	}

	sel, err := selectionFrom(cmd, e.app, e.settings)
	if err != nil {
		return model.Request{}, &ExitError{Code: ExitCLIError, Err: err}
	}

	ffmpegPath, err := e.ffmpeg()
	if err != nil {
		return model.Request{}, err
	}

	output, _ := cmd.Flags().GetString("output")
	if output == "" {
		output = util.SuggestOutputPath(abs)
	} else if output, err = filepath.Abs(output); err != nil {
		return model.Request{}, &ExitError{Code: ExitCLIError, Err: err}
	}

	return model.Request{
		FFmpegPath: ffmpegPath,
		InputPath:  abs,
		OutputPath: output,
		Selection:  sel,
	}, nil
}

func selectionFrom(cmd *cobra.Command, app config.App, st config.Settings) (model.Selection, error) {
	sel := model.Selection{
		Quality:    model.ParseQuality(app.Quality),
		Codec:      model.ParseCodec(app.Codec),
		Resolution: model.ParseResolution(app.Resolution),
	}
	switch sel.Quality {
	case model.QualityAggressive, model.QualityBalanced, model.QualityHigh:
	default:
		return sel, fmt.Errorf("invalid --quality: %q (valid: aggressive|balanced|high)", app.Quality)
	}
	switch sel.Codec {
	case model.CodecH264, model.CodecH265, model.CodecVP9:
	default:
		return sel, fmt.Errorf("invalid --codec: %q (valid: h264|h265|vp9)", app.Codec)
	}
	switch sel.Resolution {
	case model.ResolutionOriginal, model.Resolution1080p, model.Resolution720p, model.Resolution480p:
	case model.ResolutionCustom:
		sel.CustomWidth, _ = cmd.Flags().GetInt("width")
		sel.CustomHeight, _ = cmd.Flags().GetInt("height")
		if sel.CustomWidth <= 0 || sel.CustomHeight <= 0 {
			return sel, errors.New("--resolution custom needs positive --width and --height")
		}
	default:
		return sel, fmt.Errorf("invalid --resolution: %q (valid: original|1080p|720p|480p|custom)", app.Resolution)
	}

	switch {
	case app.CRF >= 0:
		if app.CRF > 51 {
			return sel, fmt.Errorf("invalid --crf: %d (valid: 0-51, or -1 for the tier default)", app.CRF)
		}
		crf := app.CRF
		sel.CRF = &crf
	case st.AdvancedOptions:
		crf := st.DefaultCRF
		sel.CRF = &crf
	}
	return sel, nil
}

// rememberRun stores the choices and the input in the recent-files list.
func rememberRun(e *env, req model.Request) {
	_, err := e.store.Update(func(st *config.Settings) {
		st.LastQuality = string(req.Selection.Quality)
		st.LastCodec = string(req.Selection.Codec)
		st.LastResolution = string(req.Selection.Resolution)
	})
	if err == nil {
		err = e.store.AddRecent(req.InputPath)
	}
	if err != nil {
		e.log.Warn("could not update settings", "error", err)
	}
}

// exitFor maps a terminal result to the process exit status.
func exitFor(res progress.Result) error {
	switch res.Outcome() {
	case progress.OutcomeSuccess:
		return nil
	case progress.OutcomeCancelled:
		return &ExitError{Code: ExitCancelled, Err: res.Err}
	}
	var probeErr *encoder.ProbeError
	if errors.As(res.Err, &probeErr) {
		return &ExitError{Code: ExitProbeError, Err: res.Err}
	}
	err := res.Err
	if err == nil {
		err = fmt.Errorf("compression failed (code %d)", res.Code)
	}
	return &ExitError{Code: ExitTranscodeError, Err: err}
}

func isTerminal() bool {
	return term.IsTerminal(int(os.Stdout.Fd()))
}
