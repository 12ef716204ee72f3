package format

import (
	"fmt"
	"time"
)

// ETALabel renders the remaining-time label shown next to the progress bar.
// Unknown estimates render as "ETA: ...".
func ETALabel(eta time.Duration, known bool) string {
	if !known {
		return "ETA: ..."
	}
	return "ETA: " + shortClock(eta)
}

// Clock renders d as HH:MM:SS.
func Clock(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	total := int64(d.Round(time.Second) / time.Second)
	return fmt.Sprintf("%02d:%02d:%02d", total/3600, (total%3600)/60, total%60)
}

// shortClock renders MM:SS, widening to H:MM:SS past an hour.
func shortClock(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	total := int64(d.Round(time.Second) / time.Second)
	h, m, s := total/3600, (total%3600)/60, total%60
	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%02d:%02d", m, s)
}
