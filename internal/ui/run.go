package ui

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"vidshrink/internal/job"
	"vidshrink/internal/model"
	"vidshrink/internal/progress"
)

// Run drives one compression job through sup with the TUI. bus must be the
// reporter sup was built with. Cancelling ctx stops the job and then exits.
func Run(ctx context.Context, sup *job.Supervisor, bus *progress.Bus, req model.Request) (progress.Result, error) {
	events := make(chan progress.Message, 256)
	unsubscribe := bus.SubscribeToChannel(events)
	defer unsubscribe()

	m := NewModel(ctx, sup, req, events)
	prog := tea.NewProgram(m)

	stopWatch := make(chan struct{})
	defer close(stopWatch)
	go func() {
		select {
		case <-ctx.Done():
			prog.Send(interruptMsg{})
		case <-stopWatch:
		}
	}()

	final, err := prog.Run()
	if err != nil {
		sup.Stop()
		<-sup.Done()
		return sup.Last(), fmt.Errorf("ui: %w", err)
	}
	if fm, ok := final.(Model); ok && fm.StartErr() != nil {
		return progress.Result{}, fm.StartErr()
	}
	// The UI may exit before the supervisor has released the job.
	<-sup.Done()
	return sup.Last(), nil
}
