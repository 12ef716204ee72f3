package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"
	"github.com/hashicorp/go-hclog"
	"github.com/pelletier/go-toml/v2"

	"vidshrink/internal/dirs"
)

// MaxRecentFiles caps the recent-files list.
const MaxRecentFiles = 10

// DefaultCRF is the stored CRF used when none (or an invalid one) is persisted.
const DefaultCRF = 23

// Settings is the small record remembered between runs.
type Settings struct {
	FFmpegPath      string   `toml:"ffmpeg_path"`
	LastCodec       string   `toml:"last_codec"`
	LastQuality     string   `toml:"last_quality"`
	LastResolution  string   `toml:"last_resolution"`
	DefaultCRF      int      `toml:"default_crf"`
	AdvancedOptions bool     `toml:"advanced_options"`
	RecentFiles     []string `toml:"recent_files"`
}

// DefaultSettings returns the record used when nothing is stored.
func DefaultSettings() Settings {
	return Settings{
		LastCodec:      "h264",
		LastQuality:    "balanced",
		LastResolution: "original",
		DefaultCRF:     DefaultCRF,
		RecentFiles:    []string{},
	}
}

// Store reads and writes Settings as TOML. Writers hold an advisory file lock
// so concurrent invocations do not interleave.
type Store struct {
	path string
	lock *flock.Flock
	log  hclog.Logger
}

// NewStore returns a store at path. An empty path selects the default location.
func NewStore(path string, log hclog.Logger) (*Store, error) {
	if path == "" {
		p, err := dirs.SettingsPath()
		if err != nil {
			return nil, fmt.Errorf("settings path: %w", err)
		}
		path = p
	}
	if log == nil {
		log = hclog.NewNullLogger()
	}
	return &Store{path: path, lock: flock.New(path + ".lock"), log: log.Named("settings")}, nil
}

// Path returns the settings file location.
func (s *Store) Path() string { return s.path }

// Load returns the stored settings, validated. A missing file yields defaults.
// A file that cannot be parsed is moved aside to <path>.corrupt.<unix> and
// defaults are returned.
func (s *Store) Load() (Settings, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return DefaultSettings(), nil
		}
		return DefaultSettings(), fmt.Errorf("read settings: %w", err)
	}

	st := DefaultSettings()
	if err := toml.Unmarshal(data, &st); err != nil {
		backup := fmt.Sprintf("%s.corrupt.%d", s.path, time.Now().Unix())
		s.log.Error("settings file is corrupt, moving aside", "path", s.path, "backup", backup, "error", err)
		if rerr := os.Rename(s.path, backup); rerr != nil {
			s.log.Error("could not back up corrupt settings", "error", rerr)
		}
		return DefaultSettings(), nil
	}
	return s.validate(st), nil
}

// Save validates and writes st.
func (s *Store) Save(st Settings) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("create settings dir: %w", err)
	}
	if err := s.lock.Lock(); err != nil {
		return fmt.Errorf("lock settings: %w", err)
	}
	defer func() { _ = s.lock.Unlock() }()
	return s.write(s.validate(st))
}

// Update loads, applies fn and saves under one lock.
func (s *Store) Update(fn func(*Settings)) (Settings, error) {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return Settings{}, fmt.Errorf("create settings dir: %w", err)
	}
	if err := s.lock.Lock(); err != nil {
		return Settings{}, fmt.Errorf("lock settings: %w", err)
	}
	defer func() { _ = s.lock.Unlock() }()

	st, err := s.Load()
	if err != nil {
		return st, err
	}
	fn(&st)
	st = s.validate(st)
	return st, s.write(st)
}

// AddRecent moves path to the front of the recent-files list.
func (s *Store) AddRecent(path string) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return err
	}
	if fi, err := os.Stat(abs); err != nil || !fi.Mode().IsRegular() {
		return nil
	}
	_, err = s.Update(func(st *Settings) {
		st.RecentFiles = pushRecent(st.RecentFiles, abs)
	})
	return err
}

// Reset deletes the stored settings.
func (s *Store) Reset() error {
	if err := s.lock.Lock(); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("lock settings: %w", err)
	}
	defer func() { _ = s.lock.Unlock() }()
	if err := os.Remove(s.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}

func (s *Store) write(st Settings) error {
	data, err := toml.Marshal(st)
	if err != nil {
		return fmt.Errorf("encode settings: %w", err)
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write settings: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("write settings: %w", err)
	}
	return nil
}

func (s *Store) validate(st Settings) Settings {
	if st.FFmpegPath != "" {
		if fi, err := os.Stat(st.FFmpegPath); err != nil || !fi.Mode().IsRegular() {
			s.log.Warn("stored ffmpeg path is invalid, clearing", "path", st.FFmpegPath)
			st.FFmpegPath = ""
		}
	}
	if st.DefaultCRF < 0 || st.DefaultCRF > 51 {
		s.log.Warn("stored CRF out of range, resetting", "crf", st.DefaultCRF)
		st.DefaultCRF = DefaultCRF
	}
	def := DefaultSettings()
	if st.LastCodec == "" {
		st.LastCodec = def.LastCodec
	}
	if st.LastQuality == "" {
		st.LastQuality = def.LastQuality
	}
	if st.LastResolution == "" {
		st.LastResolution = def.LastResolution
	}

	recent := make([]string, 0, len(st.RecentFiles))
	for _, f := range st.RecentFiles {
		if len(recent) == MaxRecentFiles {
			break
		}
		if fi, err := os.Stat(f); err == nil && fi.Mode().IsRegular() {
			recent = append(recent, f)
		}
	}
	st.RecentFiles = recent
	return st
}

func pushRecent(list []string, path string) []string {
	out := make([]string, 0, MaxRecentFiles)
	out = append(out, path)
	for _, f := range list {
		if f == path {
			continue
		}
		if len(out) == MaxRecentFiles {
			break
		}
		out = append(out, f)
	}
	return out
}
