package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testFlags() *pflag.FlagSet {
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	fs.String("ffmpeg", "", "")
	fs.String("quality", "balanced", "")
	fs.String("codec", "h264", "")
	fs.Int("crf", -1, "")
	fs.Duration("grace-period", time.Second, "")
	return fs
}

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	app, err := Load(nil, Settings{}, "")
	require.NoError(t, err)

	assert.Equal(t, "balanced", app.Quality)
	assert.Equal(t, "h264", app.Codec)
	assert.Equal(t, "original", app.Resolution)
	assert.Equal(t, -1, app.CRF)
	assert.Equal(t, 500*time.Millisecond, app.ProgressInterval)
	assert.Equal(t, time.Second, app.GracePeriod)
	assert.Equal(t, 15*time.Second, app.ProbeTimeout)
	assert.Empty(t, app.ConfigFile)
}

func TestLoad_Precedence(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	st := Settings{LastQuality: "high", LastCodec: "vp9", FFmpegPath: "/stored/ffmpeg"}

	// Settings beat built-in defaults.
	app, err := Load(testFlags(), st, "")
	require.NoError(t, err)
	assert.Equal(t, "high", app.Quality)
	assert.Equal(t, "vp9", app.Codec)
	assert.Equal(t, "/stored/ffmpeg", app.FFmpegPath)

	// Env beats settings.
	t.Setenv("VIDSHRINK_QUALITY", "aggressive")
	app, err = Load(testFlags(), st, "")
	require.NoError(t, err)
	assert.Equal(t, "aggressive", app.Quality)

	// Flags beat env.
	fs := testFlags()
	require.NoError(t, fs.Set("quality", "balanced"))
	require.NoError(t, fs.Set("crf", "30"))
	app, err = Load(fs, st, "")
	require.NoError(t, err)
	assert.Equal(t, "balanced", app.Quality)
	assert.Equal(t, 30, app.CRF)
}

func TestLoad_ConfigFile(t *testing.T) {
	p := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(p, []byte("codec = \"h265\"\ngrace_period = \"3s\"\n"), 0o644))

	app, err := Load(testFlags(), Settings{}, p)
	require.NoError(t, err)
	assert.Equal(t, "h265", app.Codec)
	assert.Equal(t, 3*time.Second, app.GracePeriod)
	assert.Equal(t, p, app.ConfigFile)
}

func TestLoad_Invalid(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	fs := testFlags()
	require.NoError(t, fs.Set("grace-period", "0s"))
	_, err := Load(fs, Settings{}, "")
	assert.Error(t, err)
}
