package utils

import (
	"fmt"
	"math"
)

// MetersPerKilometer is the km/m display threshold.
const MetersPerKilometer = 1000.0

// FormatDistance formats a distance for display: kilometers with one
// decimal once the distance rounds to a kilometer, otherwise whole meters.
func FormatDistance(meters float64) string {
	if math.IsNaN(meters) || meters < 0 {
		meters = 0
	}
	whole := math.Round(meters)
	if whole >= MetersPerKilometer {
		return fmt.Sprintf("%.1f km", meters/MetersPerKilometer)
	}
	return fmt.Sprintf("%d m", int(whole))
}
