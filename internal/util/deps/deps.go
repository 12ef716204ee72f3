package deps

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
)

func ffmpegName() string {
	if runtime.GOOS == "windows" {
		return "ffmpeg.exe"
	}
	return "ffmpeg"
}

// FindFFmpeg returns the path to the ffmpeg binary.
// If customPath is non-empty, it tries that path or looks it up in PATH.
// Otherwise it checks PATH, then the directory holding the running executable.
func FindFFmpeg(customPath string) (string, error) {
	if customPath != "" {
		if fi, err := os.Stat(customPath); err == nil && fi.Mode().IsRegular() {
			return customPath, nil
		}
		if p, err := exec.LookPath(customPath); err == nil {
			return p, nil
		}
		return "", fmt.Errorf("could not find ffmpeg at %q", customPath)
	}
	if p, err := exec.LookPath("ffmpeg"); err == nil {
		return p, nil
	}
	if exe, err := os.Executable(); err == nil {
		candidate := filepath.Join(filepath.Dir(exe), ffmpegName())
		if fi, err := os.Stat(candidate); err == nil && fi.Mode().IsRegular() {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("could not find ffmpeg in PATH. Please install ffmpeg or set --ffmpeg.")
}
