// Package tracking provides the route progress tracker.
//
// This package handles:
// - Projecting raw position fixes onto the route polyline
// - Computing the distance travelled along the route
// - Smoothing the displayed progress so it never jitters backward on noise
// - Deriving a display heading from the route a few vertices ahead
// - Keeping a short fix history for speed estimation
//
// The Tracker is not safe for concurrent use; the navigation session
// serializes calls to Update.
package tracking
