package navengine

import (
	"time"

	"github.com/paulmach/orb"

	"github.com/theoremus-urban-solutions/navengine/route"
	"github.com/theoremus-urban-solutions/navengine/tracking"
)

// Status is the session lifecycle state.
type Status int

const (
	StatusIdle Status = iota
	StatusPreviewing
	StatusActive
)

func (s Status) String() string {
	switch s {
	case StatusIdle:
		return "idle"
	case StatusPreviewing:
		return "previewing"
	case StatusActive:
		return "active"
	}
	return "unknown"
}

// NavigationState is a snapshot of the session. Every getter returns a
// copy; Plan is shared and must be treated as read-only.
type NavigationState struct {
	SessionID string
	Status    Status
	Plan      *route.Plan

	CurrentStepIndex int
	CurrentStep      route.Step
	HasStep          bool
	NextStep         route.Step
	HasNextStep      bool
	Arrived          bool

	// Progress is the last tracked position; HasProgress is false until the
	// first fix on the current plan.
	Progress    tracking.Progress
	HasProgress bool
	// Location is the last accepted raw fix, also updated while previewing.
	Location    orb.Point
	HasLocation bool

	DistanceToNextManeuver float64 // meters
	TimeToNextManeuver     float64 // seconds
	RemainingDistance      float64 // meters
	RemainingDuration      float64 // seconds
	ETA                    time.Time

	IsOffRoute       bool
	OffRouteDistance float64
	Recalculating    bool
	Recalculations   int

	RoadName   string
	SpeedLimit float64 // m/s, 0 when unknown

	DroppedFixes int
	LastUpdate   time.Time
}

// RoadInfo is the road-name and speed-limit enrichment for a position.
type RoadInfo struct {
	Name       string
	SpeedLimit float64
}

// RoadInfoFunc resolves RoadInfo for a tracked position on step.
type RoadInfoFunc func(p tracking.Progress, step route.Step) RoadInfo

// StepRoadInfo reads road name and speed limit straight from the step.
func StepRoadInfo(_ tracking.Progress, step route.Step) RoadInfo {
	return RoadInfo{Name: step.RoadName, SpeedLimit: step.SpeedLimit}
}
