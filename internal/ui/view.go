package ui

import (
	"fmt"
	"path/filepath"
	"strings"

	"vidshrink/internal/progress"
)

func (m Model) viewHeader() string {
	title := m.styles.Title.Render("vidshrink · video compressor")
	keys := "s: stop • q: quit"
	if m.job.done() {
		keys = "q: quit"
	}
	sub := m.styles.Subtitle.Render(m.summary + " • " + keys)
	return title + "\n" + sub
}

func (m Model) viewJob() string {
	js := m.job
	line1 := m.styles.JobTitle.Render(truncate(filepath.Base(js.input), 40)) +
		m.styles.Faint.Render(" → ") +
		m.styles.JobTitle.Render(truncate(js.output, 60))

	var line2 string
	switch {
	case js.result != nil:
		line2 = m.viewOutcome(*js.result)
	case m.startErr != nil:
		line2 = m.styles.Error.Render("✗ " + m.startErr.Error())
	case js.stopping:
		label := "stopping..."
		if m.quitting {
			label = "stopping before exit..."
		}
		line2 = m.styles.Spinner.Render(js.spinner.View()) + " " + m.styles.Warning.Render(label)
	case js.percent >= 0:
		line2 = fmt.Sprintf("%s %3d%%  %s", js.bar.ViewAs(float64(js.percent)/100.0), js.percent, m.styles.Faint.Render(js.etaLabel))
	default:
		line2 = m.styles.Spinner.Render(js.spinner.View()) + " " + m.styles.Faint.Render("preparing")
	}

	var b strings.Builder
	b.WriteString(line1 + "\n" + line2 + "\n")
	if js.alert != nil {
		b.WriteString(m.styles.Alert.Render(m.styles.Header.Render(js.alert.Title) + "\n" + js.alert.Message))
		b.WriteString("\n")
	}
	for _, l := range js.tail(shownLogTail) {
		b.WriteString(m.styles.forLevel(l.level).Render(truncate(l.text, m.logWidth())))
		b.WriteString("\n")
	}
	return m.styles.Box.Render(b.String())
}

func (m Model) viewOutcome(r progress.Result) string {
	switch r.Outcome() {
	case progress.OutcomeSuccess:
		return m.styles.Success.Render("✓ done")
	case progress.OutcomeCancelled:
		return m.styles.Warning.Render("■ cancelled")
	default:
		return m.styles.Error.Render(fmt.Sprintf("✗ failed (code %d)", r.Code))
	}
}

func (m Model) viewSummary() string {
	r := m.job.result
	if r == nil || r.Outcome() != progress.OutcomeSuccess {
		return ""
	}
	var b strings.Builder
	b.WriteString(m.styles.Subtitle.Render("✓ Saved:"))
	b.WriteString("\n")
	b.WriteString(m.styles.Success.Render("  • " + r.OutputPath))
	b.WriteString("\n")
	sizes := fmt.Sprintf("  %.2f MB → %.2f MB", r.OriginalMB, r.FinalMB)
	if red, ok := r.ReductionPercent(); ok {
		sizes += fmt.Sprintf(" (%.1f%% smaller)", red)
	}
	b.WriteString(m.styles.JobInfo.Render(sizes))
	b.WriteString("\n")
	return b.String()
}

func (m Model) logWidth() int {
	if m.width > 10 {
		return m.width - 4
	}
	return 100
}

func truncate(s string, n int) string {
	if n <= 0 || len([]rune(s)) <= n {
		return s
	}
	rs := []rune(s)
	return string(rs[:n-1]) + "…"
}
