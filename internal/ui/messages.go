package ui

import "vidshrink/internal/progress"

type jobStartedMsg struct {
	JobID string
	Err   error
}

type busMsg struct {
	M progress.Message
}

type stopDoneMsg struct{}

// interruptMsg is sent by the host when its context is cancelled.
type interruptMsg struct{}
