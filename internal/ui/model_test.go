package ui

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"vidshrink/internal/model"
	"vidshrink/internal/progress"
)

type fakeSupervisor struct {
	mu       sync.Mutex
	startErr error
	starts   int
	stops    int
}

func (f *fakeSupervisor) Start(context.Context, model.Request) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.starts++
	if f.startErr != nil {
		return "", f.startErr
	}
	return "job-1", nil
}

func (f *fakeSupervisor) Stop() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.stops++
}

func newTestModel(sup Supervisor) Model {
	req := model.Request{
		InputPath:  "/videos/in.mov",
		OutputPath: "/videos/in_compressed.mp4",
		Selection:  model.Selection{Quality: model.QualityBalanced, Codec: model.CodecH264, Resolution: model.Resolution720p},
	}
	return NewModel(context.Background(), sup, req, make(chan progress.Message))
}

func step(t *testing.T, m Model, msg tea.Msg) (Model, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	nm, ok := next.(Model)
	if !ok {
		t.Fatalf("Update returned %T, want Model", next)
	}
	return nm, cmd
}

func isQuit(cmd tea.Cmd) bool {
	if cmd == nil {
		return false
	}
	_, ok := cmd().(tea.QuitMsg)
	return ok
}

func TestModel_StartCmd(t *testing.T) {
	sup := &fakeSupervisor{}
	m := newTestModel(sup)
	msg := m.startCmd()()
	started, ok := msg.(jobStartedMsg)
	if !ok {
		t.Fatalf("startCmd returned %T", msg)
	}
	if started.JobID != "job-1" || started.Err != nil {
		t.Fatalf("unexpected start message: %+v", started)
	}

	m, _ = step(t, m, started)
	if m.job.id != "job-1" {
		t.Errorf("job id = %q", m.job.id)
	}
}

func TestModel_StartErrorQuits(t *testing.T) {
	m := newTestModel(&fakeSupervisor{})
	m, cmd := step(t, m, jobStartedMsg{Err: errors.New("invalid input: missing")})
	if m.StartErr() == nil {
		t.Fatal("expected StartErr to be recorded")
	}
	if !isQuit(cmd) {
		t.Error("expected quit after start error")
	}
	if !strings.Contains(m.View(), "invalid input") {
		t.Error("view should show the start error")
	}
}

func TestModel_EventsUpdateState(t *testing.T) {
	m := newTestModel(&fakeSupervisor{})

	m, _ = step(t, m, busMsg{M: progress.Message{Kind: progress.KindUpdate, Update: progress.Update{Percent: 40, Label: "ETA: 00:30"}}})
	if m.job.percent != 40 || m.job.etaLabel != "ETA: 00:30" {
		t.Fatalf("percent=%d label=%q", m.job.percent, m.job.etaLabel)
	}

	// Stale updates never move the bar backwards.
	m, _ = step(t, m, busMsg{M: progress.Message{Kind: progress.KindUpdate, Update: progress.Update{Percent: 20}}})
	if m.job.percent != 40 {
		t.Errorf("percent went backwards to %d", m.job.percent)
	}

	m, _ = step(t, m, busMsg{M: progress.Message{Kind: progress.KindLog, Log: progress.Log{Level: progress.LevelToolOutput, Message: "line one\nline two\n"}}})
	if got := len(m.job.logsRing); got != 2 {
		t.Fatalf("log lines = %d, want 2", got)
	}

	m, _ = step(t, m, busMsg{M: progress.Message{Kind: progress.KindAlert, Alert: progress.Alert{Title: "ffmpeg error", Message: "boom"}}})
	if m.job.alert == nil || m.job.alert.Title != "ffmpeg error" {
		t.Fatalf("alert not recorded: %+v", m.job.alert)
	}
	view := m.View()
	for _, want := range []string{"line two", "ffmpeg error", "40%"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q", want)
		}
	}
}

func TestModel_ResultQuits(t *testing.T) {
	m := newTestModel(&fakeSupervisor{})
	res := progress.Result{Code: progress.CodeSuccess, OutputPath: "/videos/in_compressed.mp4", OriginalMB: 10, FinalMB: 4}
	m, cmd := step(t, m, busMsg{M: progress.Message{Kind: progress.KindResult, Result: res}})
	if m.Result() == nil || m.Result().Code != progress.CodeSuccess {
		t.Fatalf("result not recorded: %+v", m.Result())
	}
	if !isQuit(cmd) {
		t.Error("expected quit after result")
	}
	if !strings.Contains(m.View(), "60.0% smaller") {
		t.Errorf("summary missing reduction:\n%s", m.View())
	}
}

func TestModel_StopKey(t *testing.T) {
	sup := &fakeSupervisor{}
	m := newTestModel(sup)

	m, cmd := step(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("s")})
	if !m.job.stopping {
		t.Fatal("expected stopping state")
	}
	if cmd == nil {
		t.Fatal("expected a stop command")
	}
	if _, ok := cmd().(stopDoneMsg); !ok {
		t.Error("stop command should report completion")
	}
	if sup.stops != 1 {
		t.Errorf("stops = %d, want 1", sup.stops)
	}

	// A second press while stopping does nothing.
	_, cmd = step(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("s")})
	if cmd != nil {
		t.Error("second stop should be ignored")
	}
}

func TestModel_QuitWhileRunningStopsFirst(t *testing.T) {
	sup := &fakeSupervisor{}
	m := newTestModel(sup)

	m, cmd := step(t, m, tea.KeyMsg{Type: tea.KeyCtrlC})
	if isQuit(cmd) {
		t.Fatal("must not quit before the job result arrives")
	}
	if !m.quitting || !m.job.stopping {
		t.Fatalf("quitting=%v stopping=%v", m.quitting, m.job.stopping)
	}

	_, cmd = step(t, m, busMsg{M: progress.Message{Kind: progress.KindResult, Result: progress.Result{Code: progress.CodeCancelled}}})
	if !isQuit(cmd) {
		t.Error("expected quit once the cancelled result arrives")
	}
}

func TestModel_StopBeforeStartIsReissued(t *testing.T) {
	sup := &fakeSupervisor{}
	m := newTestModel(sup)

	m, cmd := step(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
	if cmd == nil {
		t.Fatal("expected a stop command")
	}
	cmd()
	if sup.stops != 1 {
		t.Fatalf("stops = %d, want 1", sup.stops)
	}

	m, cmd = step(t, m, jobStartedMsg{JobID: "job-1"})
	if cmd == nil {
		t.Fatal("expected the pending stop to be sent once the job exists")
	}
	if _, ok := cmd().(stopDoneMsg); !ok {
		t.Error("reissued stop should report completion")
	}
	if sup.stops != 2 {
		t.Errorf("stops = %d, want 2", sup.stops)
	}
	if !m.quitting {
		t.Error("quit request must survive the start")
	}
}

func TestModel_StartWithoutPendingStop(t *testing.T) {
	m := newTestModel(&fakeSupervisor{})
	_, cmd := step(t, m, jobStartedMsg{JobID: "job-1"})
	if cmd != nil {
		t.Error("no command expected when nothing is pending")
	}
}

func TestModel_InterruptAfterResultQuits(t *testing.T) {
	m := newTestModel(&fakeSupervisor{})
	m, _ = step(t, m, busMsg{M: progress.Message{Kind: progress.KindResult, Result: progress.Result{Code: 1}}})
	_, cmd := step(t, m, interruptMsg{})
	if !isQuit(cmd) {
		t.Error("expected quit")
	}
}

func TestSelectionSummary(t *testing.T) {
	crf := 28
	got := selectionSummary(model.Selection{
		Quality:      model.QualityHigh,
		Codec:        model.CodecVP9,
		Resolution:   model.ResolutionCustom,
		CustomWidth:  640,
		CustomHeight: 360,
		CRF:          &crf,
	})
	want := "high · vp9 · 640x360 · CRF 28"
	if got != want {
		t.Errorf("selectionSummary = %q, want %q", got, want)
	}
}
