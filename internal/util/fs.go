package util

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// EnsureDir creates the directory path if it does not exist.
func EnsureDir(path string) error {
	if path == "" {
		return errors.New("empty path")
	}
	return os.MkdirAll(path, 0o755)
}

// RemoveIfExists deletes the file if present.
func RemoveIfExists(path string) error {
	if _, err := os.Stat(path); err == nil {
		return os.Remove(path)
	} else if os.IsNotExist(err) {
		return nil
	} else {
		return err
	}
}

// IsRegularFile reports whether path exists and is a regular file.
func IsRegularFile(path string) bool {
	fi, err := os.Stat(path)
	return err == nil && fi.Mode().IsRegular()
}

// FileSize returns the size of path in bytes.
func FileSize(path string) (int64, error) {
	fi, err := os.Stat(path)
	if err != nil {
		return 0, err
	}
	return fi.Size(), nil
}

// SamePath reports whether a and b resolve to the same absolute, cleaned path.
// When both exist it also compares file identity, which catches symlinks and
// case-insensitive filesystems.
func SamePath(a, b string) bool {
	aa, errA := filepath.Abs(a)
	bb, errB := filepath.Abs(b)
	if errA == nil && errB == nil && aa == bb {
		return true
	}
	fa, errA := os.Stat(a)
	fb, errB := os.Stat(b)
	if errA != nil || errB != nil {
		return false
	}
	return os.SameFile(fa, fb)
}

// SuggestOutputPath proposes "<dir>/<base>_compressed.mp4" next to input,
// appending _1, _2, ... until the name is free.
func SuggestOutputPath(input string) string {
	dir := filepath.Dir(input)
	base := strings.TrimSuffix(filepath.Base(input), filepath.Ext(input))
	candidate := filepath.Join(dir, base+"_compressed.mp4")
	for i := 1; pathExists(candidate); i++ {
		candidate = filepath.Join(dir, fmt.Sprintf("%s_compressed_%d.mp4", base, i))
	}
	return candidate
}

func pathExists(p string) bool {
	_, err := os.Stat(p)
	return err == nil
}
