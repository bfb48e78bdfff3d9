package utils

import (
	"fmt"
	"math"
	"time"
)

// ETA returns the arrival time for remaining seconds of travel from now.
func ETA(now time.Time, remainingSeconds float64) time.Time {
	if math.IsNaN(remainingSeconds) || remainingSeconds < 0 {
		remainingSeconds = 0
	}
	return now.Add(time.Duration(remainingSeconds * float64(time.Second)))
}

// FormatETA formats an arrival time as a local wall-clock "15:04".
func FormatETA(t time.Time) string {
	return t.Format("15:04")
}

// FormatDuration renders a travel time rounded to minutes, "45 s" below one
// minute.
func FormatDuration(seconds float64) string {
	if math.IsNaN(seconds) || seconds < 0 {
		seconds = 0
	}
	if seconds < 60 {
		return fmt.Sprintf("%d s", int(math.Round(seconds)))
	}
	minutes := int(math.Round(seconds / 60))
	if minutes < 60 {
		return fmt.Sprintf("%d min", minutes)
	}
	return fmt.Sprintf("%d h %d min", minutes/60, minutes%60)
}

// Iso8601 formats t in UTC RFC3339, used for log and export timestamps.
func Iso8601(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}
