package ui

import (
	"context"
	"strconv"

	tea "github.com/charmbracelet/bubbletea"

	"vidshrink/internal/model"
	"vidshrink/internal/progress"
)

// Supervisor is the part of job.Supervisor the UI drives.
type Supervisor interface {
	Start(ctx context.Context, req model.Request) (string, error)
	Stop()
}

// Model renders a single compression job and forwards stop requests.
type Model struct {
	ctx     context.Context
	sup     Supervisor
	req     model.Request
	summary string // codec/quality line shown under the title

	events <-chan progress.Message

	job      jobState
	startErr error
	quitting bool

	width, height int
	styles        Styles
}

// NewModel builds the UI for req. events must be fed from the bus the
// supervisor reports to.
func NewModel(ctx context.Context, sup Supervisor, req model.Request, events <-chan progress.Message) Model {
	sty := defaultStyles()
	return Model{
		ctx:     ctx,
		sup:     sup,
		req:     req,
		summary: selectionSummary(req.Selection),
		events:  events,
		job:     newJobState(req.InputPath, req.OutputPath, sty),
		styles:  sty,
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(m.job.spinner.Tick, m.startCmd(), m.listenEventsCmd())
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "s":
			cmd := m.requestStop()
			return m, cmd
		case "q", "ctrl+c", "esc":
			return m.quit()
		}
		return m, nil

	case interruptMsg:
		return m.quit()

	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		if w := msg.Width - 20; w > 10 && w < 80 {
			m.job.bar.Width = w
		}
		return m, nil

	case jobStartedMsg:
		if msg.Err != nil {
			m.startErr = msg.Err
			return m, tea.Quit
		}
		m.job.id = msg.JobID
		if m.job.stopping {
			// A stop pressed before the run existed was a no-op; repeat it now.
			return m, stopCmd(m.sup)
		}
		return m, nil

	case stopDoneMsg:
		return m, nil

	case busMsg:
		return m.handleEvent(msg.M)
	}

	var cmd tea.Cmd
	m.job.spinner, cmd = m.job.spinner.Update(msg)
	return m, cmd
}

func (m Model) View() string {
	out := m.viewHeader() + "\n\n" + m.viewJob()
	if s := m.viewSummary(); s != "" {
		out += "\n" + s
	}
	return out
}

// Result returns the terminal result, or nil if the job has not finished.
func (m Model) Result() *progress.Result { return m.job.result }

// StartErr returns the error Start failed with, if any.
func (m Model) StartErr() error { return m.startErr }

func (m Model) handleEvent(ev progress.Message) (tea.Model, tea.Cmd) {
	switch ev.Kind {
	case progress.KindUpdate:
		if ev.Update.Percent >= m.job.percent {
			m.job.percent = ev.Update.Percent
			m.job.etaLabel = ev.Update.Label
		}
	case progress.KindLog:
		m.job.appendLog(ev.Log)
	case progress.KindAlert:
		a := ev.Alert
		m.job.alert = &a
	case progress.KindResult:
		r := ev.Result
		m.job.result = &r
		m.job.stopping = false
		return m, tea.Quit
	}
	return m, m.listenEventsCmd()
}

// quit stops a running job first; the program exits once the result arrives.
func (m Model) quit() (tea.Model, tea.Cmd) {
	if m.job.done() || m.startErr != nil {
		return m, tea.Quit
	}
	m.quitting = true
	cmd := m.requestStop()
	return m, cmd
}

func (m *Model) requestStop() tea.Cmd {
	if m.job.done() || m.job.stopping {
		return nil
	}
	m.job.stopping = true
	return stopCmd(m.sup)
}

func stopCmd(sup Supervisor) tea.Cmd {
	return func() tea.Msg {
		sup.Stop()
		return stopDoneMsg{}
	}
}

func (m Model) startCmd() tea.Cmd {
	return func() tea.Msg {
		id, err := m.sup.Start(m.ctx, m.req)
		return jobStartedMsg{JobID: id, Err: err}
	}
}

func (m Model) listenEventsCmd() tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-m.events
		if !ok {
			return nil
		}
		return busMsg{M: ev}
	}
}

func selectionSummary(sel model.Selection) string {
	res := string(sel.Resolution)
	if sel.Resolution == model.ResolutionCustom {
		res = strconv.Itoa(sel.CustomWidth) + "x" + strconv.Itoa(sel.CustomHeight)
	}
	s := string(sel.Quality) + " · " + string(sel.Codec) + " · " + res
	if sel.CRF != nil {
		s += " · CRF " + strconv.Itoa(*sel.CRF)
	}
	return s
}
