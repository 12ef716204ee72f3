package encoder

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"vidshrink/internal/model"
	"vidshrink/internal/util"
)

// Fallbacks used when the probe output lacks a field.
const (
	FallbackWidth     = 1920
	FallbackHeight    = 1080
	FallbackFrameRate = 30.0
)

// DefaultProbeTimeout bounds a single inspection run.
const DefaultProbeTimeout = 15 * time.Second

// ProbeError reports that the inspection run could not be performed at all.
type ProbeError struct {
	Path string
	Err  error
}

func (e *ProbeError) Error() string {
	return fmt.Sprintf("probe %s: %v", e.Path, e.Err)
}

func (e *ProbeError) Unwrap() error { return e.Err }

// Probe runs `ffmpeg -i <input> -hide_banner` and scrapes duration, size and
// frame rate from its diagnostic output. ffmpeg exits non-zero here because no
// output is named; that is expected. Missing fields fall back independently
// and each fallback is reported in the returned warnings.
func Probe(ctx context.Context, runner util.CmdRunner, ffmpegPath, inputPath string, timeout time.Duration) (model.MediaInfo, []string, error) {
	if runner == nil {
		runner = util.NewDefaultRunner()
	}
	if timeout <= 0 {
		timeout = DefaultProbeTimeout
	}
	pctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	res, err := runner.Run(pctx, util.CmdSpec{Path: ffmpegPath, Args: ProbeArgs(inputPath)})
	if cerr := pctx.Err(); cerr != nil {
		if errors.Is(cerr, context.DeadlineExceeded) {
			return model.MediaInfo{}, nil, &ProbeError{Path: inputPath, Err: fmt.Errorf("timed out after %s", timeout)}
		}
		return model.MediaInfo{}, nil, &ProbeError{Path: inputPath, Err: cerr}
	}
	if err != nil && res.Code == -1 {
		// Never started or died to a signal.
		return model.MediaInfo{}, nil, &ProbeError{Path: inputPath, Err: err}
	}

	text := string(res.Stderr)
	if len(res.Stderr) == 0 {
		text = string(res.Stdout)
	}
	info, warnings := ParseProbeOutput(text)
	return info, warnings, nil
}

// ParseProbeOutput extracts MediaInfo from ffmpeg's diagnostic text.
func ParseProbeOutput(text string) (model.MediaInfo, []string) {
	var (
		info     model.MediaInfo
		warnings []string
	)

	if d, ok := parseDuration(text); ok && d > 0 {
		info.DurationSec = d
	} else {
		warnings = append(warnings, "could not determine duration; progress will not be reported")
	}

	if m := resolutionRe.FindStringSubmatch(text); len(m) == 3 {
		w, werr := strconv.Atoi(m[1])
		h, herr := strconv.Atoi(m[2])
		if werr == nil && herr == nil {
			info.Width, info.Height = w, h
		}
	}
	if info.Width == 0 || info.Height == 0 {
		info.Width, info.Height = FallbackWidth, FallbackHeight
		warnings = append(warnings, fmt.Sprintf("could not determine resolution; assuming %dx%d", FallbackWidth, FallbackHeight))
	}

	if m := frameRateRe.FindStringSubmatch(text); len(m) == 2 {
		if f, err := strconv.ParseFloat(m[1], 64); err == nil && f > 0 {
			info.FrameRate = f
		}
	}
	if info.FrameRate == 0 {
		info.FrameRate = FallbackFrameRate
		warnings = append(warnings, fmt.Sprintf("could not determine frame rate; assuming %.1f fps", FallbackFrameRate))
	}

	return info, warnings
}

func parseDuration(text string) (float64, bool) {
	if m := durationRe.FindStringSubmatch(text); len(m) == 4 {
		// A parsed primary match wins even at zero.
		if d, ok := hmsToSeconds(m[1], m[2], m[3]); ok {
			return d, true
		}
	}
	if m := durationAltRe.FindStringSubmatch(text); len(m) == 2 {
		if d, err := strconv.ParseFloat(m[1], 64); err == nil {
			return d, true
		}
	}
	return 0, false
}
