package job

import (
	"errors"
	"fmt"
)

// ErrJobActive is returned by Start while a previous run has not finished.
var ErrJobActive = errors.New("a compression job is already running")

// ErrCancelled is carried by the terminal result of a stopped run.
var ErrCancelled = errors.New("compression cancelled")

// ConfigError rejects a request before any work starts.
type ConfigError struct {
	Field string // ffmpeg, input or output
	Msg   string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Msg)
}

// SpawnError reports that the encoder process could not be launched.
type SpawnError struct {
	Path string
	Err  error
}

func (e *SpawnError) Error() string {
	return fmt.Sprintf("could not start %s: %v", e.Path, e.Err)
}

func (e *SpawnError) Unwrap() error { return e.Err }

// RunError reports an encode that ran but did not produce a usable output.
type RunError struct {
	Code int // process exit code, or the failure sentinel
	Msg  string
	Err  error
}

func (e *RunError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s (code %d): %v", e.Msg, e.Code, e.Err)
	}
	return fmt.Sprintf("%s (code %d)", e.Msg, e.Code)
}

func (e *RunError) Unwrap() error { return e.Err }
