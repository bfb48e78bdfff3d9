package maneuver

import (
	"math"

	"github.com/theoremus-urban-solutions/navengine/config"
	"github.com/theoremus-urban-solutions/navengine/route"
	"github.com/theoremus-urban-solutions/navengine/tracking"
)

// Kind classifies what an update did.
type Kind int

const (
	None Kind = iota
	StepChanged
	Arrived
)

// Transition is the result of one Advance call.
type Transition struct {
	Kind  Kind
	Index int
	Step  route.Step
}

// Sequencer is the step state machine for one adopted plan.
type Sequencer struct {
	cfg     config.ManeuverConfig
	plan    *route.Plan
	current int
	arrived bool
}

// New creates a sequencer with no plan.
func New(cfg config.ManeuverConfig) *Sequencer {
	return &Sequencer{cfg: cfg}
}

// Reset starts over on plan at step 0.
func (s *Sequencer) Reset(plan *route.Plan) {
	s.plan = plan
	s.current = 0
	s.arrived = false
}

func (s *Sequencer) CurrentIndex() int { return s.current }

func (s *Sequencer) Arrived() bool { return s.arrived }

// hasSteps is false for plans without steps or without a usable polyline;
// step offsets on such plans are meaningless.
func (s *Sequencer) hasSteps() bool { return s.plan != nil && s.plan.Validate() == nil }

// CurrentStep returns the active step; false when the plan has no steps or
// fewer than two polyline points.
func (s *Sequencer) CurrentStep() (route.Step, bool) {
	if !s.hasSteps() {
		return route.Step{}, false
	}
	return s.plan.Steps[s.current], true
}

// NextStep returns the step after the active one.
func (s *Sequencer) NextStep() (route.Step, bool) {
	if !s.hasSteps() || s.current+1 >= len(s.plan.Steps) {
		return route.Step{}, false
	}
	return s.plan.Steps[s.current+1], true
}

// Advance applies the arrival rule for the current step.
func (s *Sequencer) Advance(p tracking.Progress) Transition {
	if !s.hasSteps() || s.arrived || !p.Valid {
		return Transition{Kind: None, Index: s.current}
	}
	remaining := s.plan.StepEnd(s.current) - p.DistanceAlongRoute
	if remaining >= s.cfg.ArrivalThreshold {
		return Transition{Kind: None, Index: s.current}
	}
	if s.current+1 >= len(s.plan.Steps) {
		s.arrived = true
		return Transition{Kind: Arrived, Index: s.current, Step: s.plan.Steps[s.current]}
	}
	s.current++
	return Transition{Kind: StepChanged, Index: s.current, Step: s.plan.Steps[s.current]}
}

// stepFraction is the share of the current step still ahead of d.
func (s *Sequencer) stepFraction(d float64) float64 {
	if s.arrived {
		return 0
	}
	start, end := s.plan.StepStart(s.current), s.plan.StepEnd(s.current)
	if end <= start {
		return 0
	}
	return math.Max(0, math.Min(1, (end-d)/(end-start)))
}

// DistanceToNextManeuver is the part of the current step's distance not yet
// travelled at distance-along-route d.
func (s *Sequencer) DistanceToNextManeuver(d float64) float64 {
	if !s.hasSteps() {
		return 0
	}
	return s.plan.Steps[s.current].Distance * s.stepFraction(d)
}

// TimeToNextManeuver prorates the current step's duration the same way.
func (s *Sequencer) TimeToNextManeuver(d float64) float64 {
	if !s.hasSteps() {
		return 0
	}
	return s.plan.Steps[s.current].Duration * s.stepFraction(d)
}

// RemainingDistance covers the rest of the current step plus all following.
func (s *Sequencer) RemainingDistance(d float64) float64 {
	rem := s.DistanceToNextManeuver(d)
	if next, ok := s.NextStep(); ok && !s.arrived {
		rem += next.RemainingDistance
	}
	return rem
}

// RemainingDuration is the time counterpart of RemainingDistance.
func (s *Sequencer) RemainingDuration(d float64) float64 {
	rem := s.TimeToNextManeuver(d)
	if next, ok := s.NextStep(); ok && !s.arrived {
		rem += next.RemainingDuration
	}
	return rem
}
