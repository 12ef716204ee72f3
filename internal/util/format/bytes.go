package format

import (
	humanize "github.com/dustin/go-humanize"
)

const bytesPerMB = 1024 * 1024

// HumanizeBytes converts a byte count into a human-readable string (e.g., "1.5 MiB").
func HumanizeBytes(b int64) string {
	if b < 0 {
		b = 0
	}
	return humanize.IBytes(uint64(b))
}

// MB converts a byte count to mebibytes, the unit used for size reports.
func MB(b int64) float64 {
	return float64(b) / bytesPerMB
}

// Reduction returns the percentage saved going from originalMB to finalMB.
// It returns ok=false when either size is unknown.
func Reduction(originalMB, finalMB float64) (float64, bool) {
	if originalMB <= 0 || finalMB <= 0 {
		return 0, false
	}
	return 100 - (finalMB / originalMB * 100), true
}
