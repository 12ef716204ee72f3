// Package logging builds the process-wide hclog logger.
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/hashicorp/go-hclog"
)

// Options configures New.
type Options struct {
	Level  string    // trace, debug, info, warn, error, off
	Format string    // text or json
	Output io.Writer // defaults to stderr
	Color  bool      // colorize text output when the writer is a terminal
}

// New returns a named logger configured from opts.
func New(opts Options) (hclog.Logger, error) {
	lvl, err := ParseLevel(opts.Level)
	if err != nil {
		return nil, err
	}
	var json bool
	switch strings.ToLower(opts.Format) {
	case "", "text", "console":
	case "json":
		json = true
	default:
		return nil, fmt.Errorf("unknown log format %q (want text or json)", opts.Format)
	}
	out := opts.Output
	if out == nil {
		out = os.Stderr
	}
	color := hclog.ColorOff
	if opts.Color && !json {
		color = hclog.AutoColor
	}
	return hclog.New(&hclog.LoggerOptions{
		Name:       "vidshrink",
		Level:      lvl,
		Output:     out,
		JSONFormat: json,
		Color:      color,
	}), nil
}

// ParseLevel maps a level name to an hclog level. Empty means info.
func ParseLevel(s string) (hclog.Level, error) {
	if strings.TrimSpace(s) == "" {
		return hclog.Info, nil
	}
	lvl := hclog.LevelFromString(s)
	if lvl == hclog.NoLevel {
		return hclog.NoLevel, fmt.Errorf("unknown log level %q", s)
	}
	return lvl, nil
}

// OpenFile opens path for appending, creating parent directories.
func OpenFile(path string) (*os.File, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	return os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
}
