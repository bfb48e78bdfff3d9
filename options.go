package navengine

import (
	"log/slog"
	"time"
)

// Option configures a Session.
type Option func(*Session)

// WithClock replaces time.Now, used for ETA and fixes without a timestamp.
func WithClock(now func() time.Time) Option {
	return func(s *Session) {
		if now != nil {
			s.now = now
		}
	}
}

// WithLogger sets the session logger.
func WithLogger(lg *slog.Logger) Option {
	return func(s *Session) {
		if lg != nil {
			s.logger = lg
		}
	}
}

// WithRoadInfo delegates road-name and speed-limit resolution.
func WithRoadInfo(fn RoadInfoFunc) Option {
	return func(s *Session) {
		if fn != nil {
			s.roadInfo = fn
		}
	}
}
