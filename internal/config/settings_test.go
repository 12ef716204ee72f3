package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := NewStore(filepath.Join(t.TempDir(), "settings.toml"), nil)
	require.NoError(t, err)
	return s
}

func TestStore_LoadMissing(t *testing.T) {
	s := newTestStore(t)
	st, err := s.Load()
	require.NoError(t, err)
	assert.Equal(t, DefaultSettings(), st)
}

func TestStore_SaveLoad(t *testing.T) {
	s := newTestStore(t)
	ff := filepath.Join(t.TempDir(), "ffmpeg")
	require.NoError(t, os.WriteFile(ff, []byte("x"), 0o755))

	want := DefaultSettings()
	want.FFmpegPath = ff
	want.LastCodec = "vp9"
	want.DefaultCRF = 30
	want.AdvancedOptions = true
	require.NoError(t, s.Save(want))

	got, err := s.Load()
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestStore_Validation(t *testing.T) {
	s := newTestStore(t)
	raw := "ffmpeg_path = \"/definitely/not/here\"\ndefault_crf = 99\nrecent_files = [\"/gone.mp4\"]\n"
	require.NoError(t, os.WriteFile(s.Path(), []byte(raw), 0o644))

	st, err := s.Load()
	require.NoError(t, err)
	assert.Empty(t, st.FFmpegPath)
	assert.Equal(t, DefaultCRF, st.DefaultCRF)
	assert.Empty(t, st.RecentFiles)
}

func TestStore_CorruptFileIsMovedAside(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, os.WriteFile(s.Path(), []byte("this is = = not toml"), 0o644))

	st, err := s.Load()
	require.NoError(t, err)
	assert.Equal(t, DefaultSettings(), st)

	_, statErr := os.Stat(s.Path())
	assert.True(t, os.IsNotExist(statErr))
	matches, _ := filepath.Glob(s.Path() + ".corrupt.*")
	assert.Len(t, matches, 1)
}

func TestStore_AddRecent(t *testing.T) {
	s := newTestStore(t)
	dir := t.TempDir()
	var files []string
	for i := 0; i < MaxRecentFiles+2; i++ {
		p := filepath.Join(dir, fmt.Sprintf("clip%02d.mp4", i))
		require.NoError(t, os.WriteFile(p, []byte("x"), 0o644))
		files = append(files, p)
		require.NoError(t, s.AddRecent(p))
	}
	// Re-adding moves to the front without duplicating.
	require.NoError(t, s.AddRecent(files[5]))
	// Missing files are ignored.
	require.NoError(t, s.AddRecent(filepath.Join(dir, "missing.mp4")))

	st, err := s.Load()
	require.NoError(t, err)
	require.Len(t, st.RecentFiles, MaxRecentFiles)
	assert.Equal(t, files[5], st.RecentFiles[0])
	assert.Equal(t, files[len(files)-1], st.RecentFiles[1])
	seen := map[string]bool{}
	for _, f := range st.RecentFiles {
		assert.False(t, seen[f], "duplicate %s", f)
		seen[f] = true
		assert.True(t, strings.HasPrefix(f, dir))
	}
}

func TestStore_Reset(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, s.Save(DefaultSettings()))
	require.NoError(t, s.Reset())
	_, err := os.Stat(s.Path())
	assert.True(t, os.IsNotExist(err))
	assert.NoError(t, s.Reset(), "reset without a file is fine")
}
