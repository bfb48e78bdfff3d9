package route

import "strings"

var maneuverVerbs = map[Maneuver]string{
	ManeuverDepart:      "Head out",
	ManeuverStraight:    "Continue straight",
	ManeuverTurnLeft:    "Turn left",
	ManeuverTurnRight:   "Turn right",
	ManeuverSlightLeft:  "Bear left",
	ManeuverSlightRight: "Bear right",
	ManeuverSharpLeft:   "Make a sharp left",
	ManeuverSharpRight:  "Make a sharp right",
	ManeuverUTurn:       "Make a U-turn",
	ManeuverMerge:       "Merge",
	ManeuverForkLeft:    "Keep left at the fork",
	ManeuverForkRight:   "Keep right at the fork",
	ManeuverRamp:        "Take the ramp",
	ManeuverRoundabout:  "Enter the roundabout",
	ManeuverArrive:      "You have arrived at your destination",
}

// BuildInstruction renders default instruction text for providers that
// return a maneuver kind without text.
func BuildInstruction(m Maneuver, roadName string) string {
	verb, ok := maneuverVerbs[m]
	if !ok {
		verb = "Continue"
	}
	roadName = strings.TrimSpace(roadName)
	if roadName == "" || m == ManeuverArrive {
		return verb
	}
	switch m {
	case ManeuverDepart:
		return verb + " on " + roadName
	case ManeuverRoundabout:
		return verb + " toward " + roadName
	default:
		return verb + " onto " + roadName
	}
}

// Lowercase first letter, for composing "In 200 m, turn left".
func lowerFirst(s string) string {
	if s == "" {
		return s
	}
	if s[0] >= 'A' && s[0] <= 'Z' {
		return string(s[0]+('a'-'A')) + s[1:]
	}
	return s
}

// WithDistance prefixes an instruction with a formatted distance.
func WithDistance(instruction, distance string) string {
	if instruction == "" {
		return ""
	}
	if distance == "" {
		return instruction
	}
	return "In " + distance + ", " + lowerFirst(instruction)
}
