package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/hashicorp/go-hclog"
	"github.com/spf13/cobra"

	"vidshrink/internal/config"
	"vidshrink/internal/dirs"
	"vidshrink/internal/logging"
	"vidshrink/internal/util/deps"
)

// env is what every command gets after flags are parsed: resolved config,
// the settings store and a logger.
type env struct {
	app      config.App
	settings config.Settings
	store    *config.Store
	log      hclog.Logger
	logPath  string
	logFile  *os.File
}

func (e *env) Close() {
	if e.logFile != nil {
		_ = e.logFile.Close()
	}
}

// loadEnv resolves configuration for cmd. mirror additionally writes the log
// to stderr when --verbose is set and no TUI owns the terminal.
func loadEnv(cmd *cobra.Command, mirror bool) (*env, error) {
	store, err := config.NewStore("", nil)
	if err != nil {
		return nil, &ExitError{Code: ExitCLIError, Err: err}
	}
	st, err := store.Load()
	if err != nil {
		return nil, &ExitError{Code: ExitCLIError, Err: fmt.Errorf("load settings: %w", err)}
	}

	cfgFile, _ := cmd.Flags().GetString("config")
	app, err := config.Load(cmd.Flags(), st, cfgFile)
	if err != nil {
		return nil, &ExitError{Code: ExitCLIError, Err: err}
	}

	e := &env{app: app, settings: st}

	e.logPath = app.LogFile
	if e.logPath == "" {
		if e.logPath, err = dirs.LogPath(); err != nil {
			return nil, &ExitError{Code: ExitCLIError, Err: fmt.Errorf("log path: %w", err)}
		}
	}
	var out io.Writer = io.Discard
	if f, ferr := logging.OpenFile(e.logPath); ferr == nil {
		e.logFile = f
		out = f
	} else {
		fmt.Fprintf(cmd.ErrOrStderr(), "warning: cannot open log file %s: %v\n", e.logPath, ferr)
	}
	if mirror && app.Verbose && (app.NoUI || !isTerminal()) {
		out = io.MultiWriter(out, cmd.ErrOrStderr())
	}

	log, err := logging.New(logging.Options{Level: app.LogLevel, Format: app.LogFormat, Output: out})
	if err != nil {
		e.Close()
		return nil, &ExitError{Code: ExitCLIError, Err: err}
	}
	e.log = log

	// Reopen the store so writes are logged.
	if e.store, err = config.NewStore(store.Path(), log); err != nil {
		e.Close()
		return nil, &ExitError{Code: ExitCLIError, Err: err}
	}
	if app.ConfigFile != "" {
		log.Debug("config file loaded", "path", app.ConfigFile)
	}
	return e, nil
}

// ffmpeg locates the encoder binary and remembers a newly discovered one.
func (e *env) ffmpeg() (string, error) {
	path, err := deps.FindFFmpeg(e.app.FFmpegPath)
	if err != nil {
		return "", &ExitError{Code: ExitMissingDep, Err: err}
	}
	if path != e.settings.FFmpegPath {
		if _, uerr := e.store.Update(func(st *config.Settings) { st.FFmpegPath = path }); uerr != nil {
			e.log.Warn("could not persist ffmpeg path", "error", uerr)
		} else {
			e.settings.FFmpegPath = path
		}
	}
	return path, nil
}
