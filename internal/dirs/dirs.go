package dirs

import (
	"errors"
	"os"
	"path/filepath"
	"runtime"
)

const appName = "vidshrink"

// AppName returns the canonical application name for directory paths.
func AppName() string {
	return appName
}

// ConfigDir returns the directory holding the optional config file.
// - Linux: $XDG_CONFIG_HOME/vidshrink or ~/.config/vidshrink
// - macOS: ~/Library/Application Support/vidshrink
// - Windows: %AppData%/vidshrink
func ConfigDir() (string, error) {
	return xdgDir("XDG_CONFIG_HOME", ".config", os.UserConfigDir)
}

// DataDir returns the directory holding persisted settings.
// - Linux: $XDG_DATA_HOME/vidshrink or ~/.local/share/vidshrink
// - macOS: ~/Library/Application Support/vidshrink
// - Windows: %AppData%/vidshrink
func DataDir() (string, error) {
	return xdgDir("XDG_DATA_HOME", filepath.Join(".local", "share"), os.UserConfigDir)
}

// StateDir returns the directory for log files.
// - Linux: $XDG_STATE_HOME/vidshrink or ~/.local/state/vidshrink
// - macOS: ~/Library/Application Support/vidshrink/state
// - Windows: %LocalAppData%/vidshrink/state (fallback to ConfigDir/state)
func StateDir() (string, error) {
	switch runtime.GOOS {
	case "darwin":
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		return filepath.Join(home, "Library", "Application Support", AppName(), "state"), nil
	case "linux":
		return xdgDir("XDG_STATE_HOME", filepath.Join(".local", "state"), os.UserConfigDir)
	default:
		if la := os.Getenv("LOCALAPPDATA"); la != "" {
			return filepath.Join(la, AppName(), "state"), nil
		}
		cfg, err := ConfigDir()
		if err != nil {
			return "", err
		}
		return filepath.Join(cfg, "state"), nil
	}
}

// SettingsPath returns the location of the persisted settings record.
func SettingsPath() (string, error) {
	d, err := DataDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(d, "settings.toml"), nil
}

// LogPath returns the default log file location.
func LogPath() (string, error) {
	d, err := StateDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(d, AppName()+".log"), nil
}

// xdgDir resolves an XDG-style directory on Linux, the Application Support
// directory on macOS, and falls back to the given resolver elsewhere.
func xdgDir(env, homeRel string, fallback func() (string, error)) (string, error) {
	switch runtime.GOOS {
	case "darwin":
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		return filepath.Join(home, "Library", "Application Support", AppName()), nil
	case "linux":
		if xdg := os.Getenv(env); xdg != "" {
			return filepath.Join(xdg, AppName()), nil
		}
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		return filepath.Join(home, homeRel, AppName()), nil
	default:
		base, err := fallback()
		if err != nil {
			return "", err
		}
		return filepath.Join(base, AppName()), nil
	}
}

// Ensure creates the directory if it doesn't exist.
func Ensure(path string) error {
	if path == "" {
		return errors.New("empty path")
	}
	return os.MkdirAll(path, 0o755)
}

// EnsureAll ensures config, data and state dirs exist.
func EnsureAll() error {
	for _, fn := range []func() (string, error){ConfigDir, DataDir, StateDir} {
		p, err := fn()
		if err != nil {
			continue
		}
		if err := Ensure(p); err != nil {
			return err
		}
	}
	return nil
}
