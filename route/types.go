package route

import "github.com/paulmach/orb"

// Maneuver is the kind of action a step asks the traveler to perform.
type Maneuver string

const (
	ManeuverDepart      Maneuver = "depart"
	ManeuverStraight    Maneuver = "straight"
	ManeuverTurnLeft    Maneuver = "turn-left"
	ManeuverTurnRight   Maneuver = "turn-right"
	ManeuverSlightLeft  Maneuver = "slight-left"
	ManeuverSlightRight Maneuver = "slight-right"
	ManeuverSharpLeft   Maneuver = "sharp-left"
	ManeuverSharpRight  Maneuver = "sharp-right"
	ManeuverUTurn       Maneuver = "u-turn"
	ManeuverMerge       Maneuver = "merge"
	ManeuverForkLeft    Maneuver = "fork-left"
	ManeuverForkRight   Maneuver = "fork-right"
	ManeuverRamp        Maneuver = "ramp"
	ManeuverRoundabout  Maneuver = "roundabout"
	ManeuverArrive      Maneuver = "arrive"
)

// Step is one instruction-bearing part of a route.
type Step struct {
	Instruction   string   `json:"instruction"`
	Maneuver      Maneuver `json:"maneuver"`
	RoadName      string   `json:"road_name,omitempty"`
	Distance      float64  `json:"distance"` // meters
	Duration      float64  `json:"duration"` // seconds
	BearingBefore float64  `json:"bearing_before"`
	BearingAfter  float64  `json:"bearing_after"`
	// SpeedLimit in m/s, 0 when the provider did not annotate one.
	SpeedLimit float64 `json:"speed_limit,omitempty"`

	// Suffix sums over this and all following steps, set by Plan.Adopt.
	RemainingDistance float64 `json:"remaining_distance"`
	RemainingDuration float64 `json:"remaining_duration"`
}

// Plan is a route returned by a directions provider.
type Plan struct {
	Distance    float64        `json:"distance"` // meters
	Duration    float64        `json:"duration"` // seconds
	Steps       []Step         `json:"steps"`
	Geometry    orb.LineString `json:"geometry"`
	Destination orb.Point      `json:"destination"`
	Summary     string         `json:"summary,omitempty"`

	adopted    bool
	cumulative []float64 // cumulative meters at each vertex
	stepStarts []float64
	stepEnds   []float64
}
