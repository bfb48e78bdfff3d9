package tracking

import (
	"github.com/theoremus-urban-solutions/navengine/fixstream"
	"github.com/theoremus-urban-solutions/navengine/geo"
)

// History is a bounded window of the most recent fixes.
type History struct {
	size  int
	fixes []fixstream.PositionFix
}

// NewHistory creates a window holding at most size fixes (minimum 2).
func NewHistory(size int) *History {
	if size < 2 {
		size = 2
	}
	return &History{size: size, fixes: make([]fixstream.PositionFix, 0, size)}
}

// Add appends fix, evicting the oldest when full.
func (h *History) Add(fix fixstream.PositionFix) {
	if len(h.fixes) == h.size {
		copy(h.fixes, h.fixes[1:])
		h.fixes = h.fixes[:h.size-1]
	}
	h.fixes = append(h.fixes, fix)
}

func (h *History) Clear() { h.fixes = h.fixes[:0] }

func (h *History) Len() int { return len(h.fixes) }

// Last returns the newest fix.
func (h *History) Last() (fixstream.PositionFix, bool) {
	if len(h.fixes) == 0 {
		return fixstream.PositionFix{}, false
	}
	return h.fixes[len(h.fixes)-1], true
}

// Speed estimates ground speed in m/s from the path length over the window.
// It returns 0 with fewer than two timestamped fixes.
func (h *History) Speed() float64 {
	if len(h.fixes) < 2 {
		return 0
	}
	first, last := h.fixes[0], h.fixes[len(h.fixes)-1]
	dt := last.Timestamp.Sub(first.Timestamp).Seconds()
	if dt <= 0 {
		return 0
	}
	var path float64
	for i := 1; i < len(h.fixes); i++ {
		a, b := h.fixes[i-1], h.fixes[i]
		path += geo.Distance(a.Latitude, a.Longitude, b.Latitude, b.Longitude)
	}
	return path / dt
}
