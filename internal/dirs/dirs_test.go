package dirs

import (
	"path/filepath"
	"runtime"
	"testing"
)

func TestXDGOverrides(t *testing.T) {
	if runtime.GOOS != "linux" {
		t.Skip("XDG variables only apply on linux")
	}
	base := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(base, "cfg"))
	t.Setenv("XDG_DATA_HOME", filepath.Join(base, "data"))
	t.Setenv("XDG_STATE_HOME", filepath.Join(base, "state"))

	tests := []struct {
		name string
		fn   func() (string, error)
		want string
	}{
		{name: "config", fn: ConfigDir, want: filepath.Join(base, "cfg", "vidshrink")},
		{name: "data", fn: DataDir, want: filepath.Join(base, "data", "vidshrink")},
		{name: "state", fn: StateDir, want: filepath.Join(base, "state", "vidshrink")},
		{name: "settings", fn: SettingsPath, want: filepath.Join(base, "data", "vidshrink", "settings.toml")},
		{name: "log", fn: LogPath, want: filepath.Join(base, "state", "vidshrink", "vidshrink.log")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.fn()
			if err != nil {
				t.Fatalf("%s() error: %v", tt.name, err)
			}
			if got != tt.want {
				t.Errorf("%s() = %q, want %q", tt.name, got, tt.want)
			}
		})
	}
}

func TestEnsure_EmptyPath(t *testing.T) {
	if err := Ensure(""); err == nil {
		t.Error("Ensure(\"\") should fail")
	}
}
