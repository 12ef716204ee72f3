package ui

import (
	"strings"

	bubblesprogress "github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"

	"vidshrink/internal/progress"
)

const (
	maxLogLines  = 500
	shownLogTail = 10
)

type logLine struct {
	level progress.Level
	text  string
}

type jobState struct {
	id       string
	input    string
	output   string
	percent  int // -1 means unknown
	etaLabel string
	stopping bool

	alert  *progress.Alert
	result *progress.Result

	spinner spinner.Model
	bar     bubblesprogress.Model

	logsRing []logLine
}

func newJobState(input, output string, styles Styles) jobState {
	sp := spinner.New()
	sp.Style = styles.Spinner
	bar := bubblesprogress.New(
		bubblesprogress.WithDefaultGradient(),
		bubblesprogress.WithWidth(40),
	)
	return jobState{
		input:    input,
		output:   output,
		percent:  -1,
		etaLabel: "ETA: ...",
		spinner:  sp,
		bar:      bar,
	}
}

func (js *jobState) appendLog(l progress.Log) {
	for _, text := range strings.Split(strings.TrimRight(l.Message, "\r\n"), "\n") {
		if len(js.logsRing) >= maxLogLines {
			js.logsRing = js.logsRing[1:]
		}
		js.logsRing = append(js.logsRing, logLine{level: l.Level, text: strings.TrimRight(text, "\r")})
	}
}

func (js *jobState) tail(n int) []logLine {
	if len(js.logsRing) <= n {
		return js.logsRing
	}
	return js.logsRing[len(js.logsRing)-n:]
}

func (js *jobState) done() bool { return js.result != nil }
