package navengine

import (
	"log/slog"
	"sort"
	"strings"
)

// Reasons a fix is dropped before reaching the tracker
const (
	DropInvalidCoordinate = "invalid_coordinate"
	DropPoorAccuracy      = "poor_accuracy"
	DropOutOfOrder        = "out_of_order"
)

// dropInfo holds aggregated information about one drop reason
type dropInfo struct {
	count    int
	examples []string
}

// dropAggregator collects dropped fixes during a session and logs
// consolidated summaries when it ends.
type dropAggregator struct {
	drops map[string]*dropInfo
	total int
}

func newDropAggregator() *dropAggregator {
	return &dropAggregator{drops: make(map[string]*dropInfo)}
}

// Add records a dropped fix with an example identifier.
func (w *dropAggregator) Add(reason, example string) {
	if w.drops[reason] == nil {
		w.drops[reason] = &dropInfo{examples: make([]string, 0, 3)}
	}
	info := w.drops[reason]
	info.count++
	w.total++

	// Store up to 3 examples
	if len(info.examples) < 3 {
		info.examples = append(info.examples, example)
	}
}

func (w *dropAggregator) Total() int { return w.total }

// Count returns how many fixes were dropped for reason.
func (w *dropAggregator) Count(reason string) int {
	if info := w.drops[reason]; info != nil {
		return info.count
	}
	return 0
}

// LogAll outputs one warning per drop reason.
func (w *dropAggregator) LogAll(lg *slog.Logger, sessionID string) {
	if len(w.drops) == 0 {
		return
	}
	reasons := make([]string, 0, len(w.drops))
	for r := range w.drops {
		reasons = append(reasons, r)
	}
	sort.Strings(reasons)

	for _, r := range reasons {
		info := w.drops[r]
		lg.Warn("dropped position fixes",
			slog.String("session", sessionID),
			slog.String("reason", r),
			slog.String("description", describeDrop(r)),
			slog.Int("count", info.count),
			slog.String("examples", strings.Join(info.examples, ", ")))
	}
}

func describeDrop(reason string) string {
	switch reason {
	case DropInvalidCoordinate:
		return "fixes with NaN or out-of-range coordinates"
	case DropPoorAccuracy:
		return "fixes with accuracy radius above the configured maximum"
	case DropOutOfOrder:
		return "fixes older than the last accepted fix"
	}
	return "unknown issue"
}
