// Package maneuver walks the ordered steps of a route as progress advances.
//
// The Sequencer advances at most one step per update, when the tracked
// distance comes within the arrival threshold of the current step's end.
// Passing the end of the final step reports arrival exactly once.
package maneuver
