package ui

import (
	"github.com/charmbracelet/lipgloss"

	"vidshrink/internal/progress"
)

type Styles struct {
	Title    lipgloss.Style
	Subtitle lipgloss.Style
	Header   lipgloss.Style
	JobTitle lipgloss.Style
	JobInfo  lipgloss.Style
	Success  lipgloss.Style
	Error    lipgloss.Style
	Warning  lipgloss.Style
	Faint    lipgloss.Style
	Box      lipgloss.Style
	Spinner  lipgloss.Style
	Command  lipgloss.Style
	Alert    lipgloss.Style
}

func defaultStyles() Styles {
	base := lipgloss.NewStyle()
	return Styles{
		Title:    base.Bold(true).Foreground(lipgloss.Color("#7D56F4")),
		Subtitle: base.Faint(true),
		Header:   base.Bold(true),
		JobTitle: base.Foreground(lipgloss.Color("#A3A3A3")),
		JobInfo:  base.Foreground(lipgloss.Color("#D1D5DB")),
		Success:  base.Foreground(lipgloss.Color("#22C55E")),
		Error:    base.Foreground(lipgloss.Color("#EF4444")),
		Warning:  base.Foreground(lipgloss.Color("#F59E0B")),
		Faint:    base.Faint(true),
		Box:      base.Padding(0, 1),
		Spinner:  base.Foreground(lipgloss.Color("#22D3EE")),
		Command:  base.Foreground(lipgloss.Color("#60A5FA")),
		Alert: base.Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#EF4444")).
			Padding(0, 1),
	}
}

// forLevel picks the log line style for a status level.
func (s Styles) forLevel(l progress.Level) lipgloss.Style {
	switch l {
	case progress.LevelWarn:
		return s.Warning
	case progress.LevelError:
		return s.Error
	case progress.LevelCommand:
		return s.Command
	case progress.LevelToolOutput:
		return s.Faint
	default:
		return s.JobInfo
	}
}
