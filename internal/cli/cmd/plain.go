package cmd

import (
	"context"
	"fmt"
	"io"

	"vidshrink/internal/job"
	"vidshrink/internal/model"
	"vidshrink/internal/progress"
)

// plainPrinter renders bus messages as lines for non-interactive output.
type plainPrinter struct {
	out    io.Writer
	errOut io.Writer
}

func newPlainPrinter(out, errOut io.Writer) *plainPrinter {
	return &plainPrinter{out: out, errOut: errOut}
}

// handle prints m and reports whether it was the terminal message.
func (p *plainPrinter) handle(m progress.Message) bool {
	switch m.Kind {
	case progress.KindUpdate:
		fmt.Fprintf(p.out, "progress: %3d%% %s\n", m.Update.Percent, m.Update.Label)
	case progress.KindLog:
		switch m.Log.Level {
		case progress.LevelInfo:
			fmt.Fprintln(p.out, m.Log.Message)
		default:
			fmt.Fprintf(p.out, "[%s] %s\n", m.Log.Level, m.Log.Message)
		}
	case progress.KindAlert:
		fmt.Fprintf(p.errOut, "error: %s: %s\n", m.Alert.Title, m.Alert.Message)
	case progress.KindResult:
		p.result(m.Result)
		return true
	}
	return false
}

func (p *plainPrinter) result(r progress.Result) {
	switch r.Outcome() {
	case progress.OutcomeSuccess:
		line := fmt.Sprintf("Saved: %s (%.2f MB", r.OutputPath, r.FinalMB)
		if red, ok := r.ReductionPercent(); ok {
			line += fmt.Sprintf(", %.1f%% smaller", red)
		}
		fmt.Fprintln(p.out, line+")")
	case progress.OutcomeCancelled:
		fmt.Fprintln(p.errOut, "Cancelled.")
	default:
		fmt.Fprintf(p.errOut, "Failed (code %d): %v\n", r.Code, r.Err)
	}
}

// runPlain starts req on sup and prints its events until the terminal one.
// Cancelling ctx stops the job; the function still waits for the result.
func runPlain(ctx context.Context, sup *job.Supervisor, bus *progress.Bus, req model.Request, p *plainPrinter) (progress.Result, error) {
	events := make(chan progress.Message, 256)
	unsubscribe := bus.SubscribeToChannel(events)
	defer unsubscribe()

	if _, err := sup.Start(ctx, req); err != nil {
		return progress.Result{}, err
	}
	for m := range events {
		if p.handle(m) {
			return m.Result, nil
		}
	}
	<-sup.Done()
	return sup.Last(), nil
}
