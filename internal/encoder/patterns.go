package encoder

import "regexp"

// Every pattern used to scrape ffmpeg diagnostic text lives here so the
// supervisor and probe logic never depend on the exact wording of the tool.
var (
	// progressTimeRe matches the elapsed-time field of a progress line: time=HH:MM:SS.ff
	progressTimeRe = regexp.MustCompile(`time=(\d+):(\d+):(\d+\.\d+)`)

	// durationRe matches the container duration reported by `ffmpeg -i`.
	durationRe = regexp.MustCompile(`Duration: (\d+):(\d+):(\d+\.\d+)`)

	// durationAltRe handles inputs whose first Duration is N/A but a later
	// section carries a plain seconds value.
	durationAltRe = regexp.MustCompile(`(?is)Duration: N/A, start: \d+\.\d+, bitrate:.*?Duration: (\d+\.\d+)`)

	// resolutionRe matches WxH on the first video stream line.
	resolutionRe = regexp.MustCompile(`Stream.*Video:.*?,.*? (\d{2,5})x(\d{2,5})`)

	// frameRateRe matches the fps (or tbr) value on the first video stream line.
	frameRateRe = regexp.MustCompile(`Stream.*Video:.*?,.*?(\d+(?:\.\d+)?) (?:fps|tbr)`)
)

// diagnosticMarkers are case-insensitive substrings that flag a stderr line
// worth surfacing as a warning.
var diagnosticMarkers = []string{"error", "invalid"}
