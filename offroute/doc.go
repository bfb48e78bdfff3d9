// Package offroute classifies the traveler's deviation from the active route.
//
// Two thresholds with different semantics are used. Beyond the off-route
// threshold the traveler is flagged and warned. Beyond the larger
// recalculation threshold a new route is requested, at most one at a time
// and no more often than the configured cooldown.
package offroute
