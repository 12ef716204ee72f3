package encoder

import (
	"testing"
	"time"
)

func fixedClock(start time.Time, wall time.Duration) func() time.Time {
	return func() time.Time { return start.Add(wall) }
}

// etaAt mirrors the parser's arithmetic so float results compare exactly.
func etaAt(total, elapsed, wallSec float64) time.Duration {
	speed := elapsed / wallSec
	return time.Duration((total - elapsed) / speed * float64(time.Second))
}

func TestParseTimestamp(t *testing.T) {
	tests := []struct {
		line   string
		want   float64
		wantOK bool
	}{
		{line: "frame=  100 fps= 25 q=28.0 size=    1024kB time=00:01:30.00 bitrate= 93.2kbits/s speed=1.0x", want: 90, wantOK: true},
		{line: "time=01:00:00.50", want: 3600.5, wantOK: true},
		{line: "time=00:00:00.00", want: 0, wantOK: true},
		{line: "Press [q] to stop, [?] for help", wantOK: false},
		{line: "time=N/A bitrate=N/A", wantOK: false},
		{line: "", wantOK: false},
	}
	for _, tt := range tests {
		got, ok := ParseTimestamp(tt.line)
		if ok != tt.wantOK {
			t.Errorf("ParseTimestamp(%q) ok = %v, want %v", tt.line, ok, tt.wantOK)
			continue
		}
		if ok && got != tt.want {
			t.Errorf("ParseTimestamp(%q) = %v, want %v", tt.line, got, tt.want)
		}
	}
}

func TestTryParse(t *testing.T) {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name        string
		line        string
		total       float64
		wall        time.Duration
		wantOK      bool
		wantPercent int
		wantETA     time.Duration
		wantKnown   bool
	}{
		{
			name:        "halfway at realtime",
			line:        "frame=2250 time=00:01:30.00 bitrate=900kbits/s",
			total:       180,
			wall:        90 * time.Second,
			wantOK:      true,
			wantPercent: 50,
			wantETA:     90 * time.Second,
			wantKnown:   true,
		},
		{
			name:        "double speed",
			line:        "time=00:01:00.00",
			total:       120,
			wall:        30 * time.Second,
			wantOK:      true,
			wantPercent: 50,
			wantETA:     30 * time.Second,
			wantKnown:   true,
		},
		{
			name:        "percent floors",
			line:        "time=00:00:59.99",
			total:       180,
			wall:        10 * time.Second,
			wantOK:      true,
			wantPercent: 33,
			wantKnown:   true,
			wantETA:     etaAt(180, 59.99, 10),
		},
		{
			name:        "past the end clamps",
			line:        "time=00:03:10.00",
			total:       180,
			wall:        100 * time.Second,
			wantOK:      true,
			wantPercent: 100,
			wantETA:     0,
			wantKnown:   true,
		},
		{
			name:        "wall under a second leaves eta unknown",
			line:        "time=00:00:05.00",
			total:       100,
			wall:        500 * time.Millisecond,
			wantOK:      true,
			wantPercent: 5,
			wantKnown:   false,
		},
		{
			name:        "zero elapsed leaves eta unknown",
			line:        "time=00:00:00.00",
			total:       100,
			wall:        10 * time.Second,
			wantOK:      true,
			wantPercent: 0,
			wantKnown:   false,
		},
		{
			name:   "unknown duration",
			line:   "time=00:00:10.00",
			total:  0,
			wall:   10 * time.Second,
			wantOK: false,
		},
		{
			name:   "duration of one second",
			line:   "time=00:00:00.50",
			total:  1,
			wall:   10 * time.Second,
			wantOK: false,
		},
		{
			name:   "no timestamp",
			line:   "Stream mapping:",
			total:  100,
			wall:   10 * time.Second,
			wantOK: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := NewProgressParser(start, fixedClock(start, tt.wall))
			got, ok := p.TryParse(tt.line, tt.total)
			if ok != tt.wantOK {
				t.Fatalf("TryParse() ok = %v, want %v", ok, tt.wantOK)
			}
			if !ok {
				return
			}
			if got.Percent != tt.wantPercent {
				t.Errorf("Percent = %d, want %d", got.Percent, tt.wantPercent)
			}
			if got.ETAKnown != tt.wantKnown {
				t.Errorf("ETAKnown = %v, want %v", got.ETAKnown, tt.wantKnown)
			}
			if tt.wantKnown && got.ETA != tt.wantETA {
				t.Errorf("ETA = %v, want %v", got.ETA, tt.wantETA)
			}
		})
	}
}

func TestHasDiagnosticMarker(t *testing.T) {
	tests := []struct {
		line string
		want bool
	}{
		{line: "[h264 @ 0x55] Error while decoding stream #0:0", want: true},
		{line: "Invalid data found when processing input", want: true},
		{line: "frame=  10 fps=0.0 q=0.0 size=0kB time=00:00:00.40", want: false},
		{line: "", want: false},
	}
	for _, tt := range tests {
		if got := HasDiagnosticMarker(tt.line); got != tt.want {
			t.Errorf("HasDiagnosticMarker(%q) = %v, want %v", tt.line, got, tt.want)
		}
	}
}
