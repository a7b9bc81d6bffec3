package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/bamsammich/assetsync/internal/stats"
)

// FormatRate formats a bytes-per-second rate as a human-readable string.
func FormatRate(bytesPerSec float64) string {
	if bytesPerSec <= 0 {
		return "0 B/s"
	}
	return humanize.IBytes(uint64(bytesPerSec)) + "/s"
}

// FormatETA formats a duration as a human-readable ETA string.
func FormatETA(d time.Duration) string {
	if d <= 0 {
		return "--"
	}
	return FormatDuration(d)
}

// FormatCount formats an integer with comma separators.
func FormatCount(n int64) string {
	return humanize.Comma(n)
}

// ProgressBar renders a progress bar of the given width using ▪/□ characters.
func ProgressBar(pct float64, width int) string {
	if width <= 0 {
		return ""
	}
	pct = max(0, min(pct, 1))
	filled := min(int(pct*float64(width)), width)

	return strings.Repeat("▪", filled) + strings.Repeat("□", width-filled)
}

// Fraction returns done/total clamped to [0, 1]; an empty total is complete.
func Fraction(done, total int64) float64 {
	if total <= 0 {
		return 1
	}
	return max(0, min(float64(done)/float64(total), 1))
}

// FormatBytes wraps stats.FormatBytes for UI use.
func FormatBytes(b int64) string {
	return stats.FormatBytes(b)
}

// FormatDuration formats elapsed time concisely.
func FormatDuration(d time.Duration) string {
	d = d.Round(time.Second)
	h := int(d.Hours())
	m := int(d.Minutes()) % 60
	s := int(d.Seconds()) % 60

	if h > 0 {
		return fmt.Sprintf("%dh %02dm %02ds", h, m, s)
	}
	if m > 0 {
		return fmt.Sprintf("%dm %02ds", m, s)
	}
	return fmt.Sprintf("%ds", s)
}

// TruncPath shortens a path from the left to fit within maxLen runes.
func TruncPath(path string, maxLen int) string {
	r := []rune(path)
	if len(r) <= maxLen {
		return path
	}
	if maxLen <= 3 {
		return string(r[:max(maxLen, 0)])
	}
	return "..." + string(r[len(r)-maxLen+3:])
}
