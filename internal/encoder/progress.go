package encoder

import (
	"math"
	"strconv"
	"strings"
	"time"
)

// Progress is the result of a successful progress-line parse.
type Progress struct {
	Percent    int           // 0..100
	ElapsedSec float64       // media seconds encoded so far
	ETA        time.Duration // valid only when ETAKnown
	ETAKnown   bool
}

// ParseTimestamp extracts the elapsed media time (seconds) from a progress line.
func ParseTimestamp(line string) (float64, bool) {
	m := progressTimeRe.FindStringSubmatch(line)
	if len(m) != 4 {
		return 0, false
	}
	return hmsToSeconds(m[1], m[2], m[3])
}

// HasDiagnosticMarker reports whether the line looks like an error or
// invalid-input message.
func HasDiagnosticMarker(line string) bool {
	lower := strings.ToLower(line)
	for _, m := range diagnosticMarkers {
		if strings.Contains(lower, m) {
			return true
		}
	}
	return false
}

// ProgressParser converts progress lines into percent/ETA using the wall
// clock elapsed since the run started. It keeps no state between calls.
type ProgressParser struct {
	start time.Time
	now   func() time.Time
}

// NewProgressParser returns a parser measuring wall time from start.
// A nil now defaults to time.Now.
func NewProgressParser(start time.Time, now func() time.Time) *ProgressParser {
	if now == nil {
		now = time.Now
	}
	return &ProgressParser{start: start, now: now}
}

// TryParse returns progress for line given the total media duration.
// It returns ok=false when totalSec <= 1 or no timestamp is present.
func (p *ProgressParser) TryParse(line string, totalSec float64) (Progress, bool) {
	if totalSec <= 1 {
		return Progress{}, false
	}
	elapsed, ok := ParseTimestamp(line)
	if !ok {
		return Progress{}, false
	}

	pr := Progress{
		Percent:    clampPercent(int(math.Floor(100 * elapsed / totalSec))),
		ElapsedSec: elapsed,
	}

	wall := p.now().Sub(p.start).Seconds()
	if elapsed > 0 && wall > 1 {
		speed := elapsed / wall
		if speed > 0 {
			remaining := totalSec - elapsed
			if remaining < 0 {
				remaining = 0
			}
			pr.ETA = time.Duration(remaining / speed * float64(time.Second))
			pr.ETAKnown = true
		}
	}
	return pr, true
}

func hmsToSeconds(h, m, s string) (float64, bool) {
	hh, err := strconv.Atoi(h)
	if err != nil {
		return 0, false
	}
	mm, err := strconv.Atoi(m)
	if err != nil {
		return 0, false
	}
	ss, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return float64(hh*3600+mm*60) + ss, true
}

func clampPercent(v int) int {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}
