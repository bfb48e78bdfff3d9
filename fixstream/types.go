package fixstream

import (
	"errors"
	"time"

	"github.com/paulmach/orb"

	"github.com/theoremus-urban-solutions/navengine/config"
	"github.com/theoremus-urban-solutions/navengine/geo"
)

// PositionFix is one raw observation from the location subsystem.
type PositionFix struct {
	Latitude  float64   `json:"latitude" msgpack:"lat"`
	Longitude float64   `json:"longitude" msgpack:"lon"`
	Accuracy  *float64  `json:"accuracy,omitempty" msgpack:"acc,omitempty"` // meters
	Speed     *float64  `json:"speed,omitempty" msgpack:"spd,omitempty"`    // m/s
	Heading   *float64  `json:"heading,omitempty" msgpack:"hdg,omitempty"`  // degrees
	Timestamp time.Time `json:"timestamp" msgpack:"ts"`
}

// Point returns the fix as an orb point.
func (f PositionFix) Point() orb.Point { return orb.Point{f.Longitude, f.Latitude} }

var (
	ErrInvalidCoordinate = errors.New("fixstream: invalid coordinate")
	ErrPoorAccuracy      = errors.New("fixstream: accuracy below threshold")
	ErrStreamClosed      = errors.New("fixstream: stream closed")
	ErrPermissionDenied  = errors.New("fixstream: location permission denied")
)

// Validate rejects fixes that must not reach the tracker. maxAccuracy of 0
// disables the accuracy check.
func (f PositionFix) Validate(maxAccuracy float64) error {
	if !geo.ValidCoordinate(f.Latitude, f.Longitude) {
		return ErrInvalidCoordinate
	}
	if maxAccuracy > 0 && f.Accuracy != nil && *f.Accuracy > maxAccuracy {
		return ErrPoorAccuracy
	}
	return nil
}

// Float returns a pointer to v, for filling optional fix fields.
func Float(v float64) *float64 { return &v }

// Profile selects a cadence/accuracy class.
type Profile int

const (
	ProfileIdle Profile = iota
	ProfileNavigation
)

func (p Profile) String() string {
	switch p {
	case ProfileIdle:
		return "idle"
	case ProfileNavigation:
		return "navigation"
	}
	return "unknown"
}

// Settings is the concrete cadence requested for a profile.
type Settings struct {
	Interval       time.Duration
	Accuracy       string
	DistanceFilter float64
}

// SettingsFor resolves a profile against configuration.
func SettingsFor(cfg config.FixStreamConfig, p Profile) Settings {
	pc := cfg.Idle
	if p == ProfileNavigation {
		pc = cfg.Navigation
	}
	return Settings{Interval: pc.Interval, Accuracy: pc.Accuracy, DistanceFilter: pc.DistanceFilter}
}

// Handler receives fixes and stream failures. Either function may be nil.
type Handler struct {
	OnFix   func(PositionFix)
	OnError func(error)
}

// Subscription is returned by Source.Subscribe.
type Subscription interface {
	Unsubscribe()
}

// Source is a subscription-based provider of position fixes. Subscribe must
// not deliver to h before it returns.
type Source interface {
	Subscribe(profile Profile, h Handler) (Subscription, error)
}
