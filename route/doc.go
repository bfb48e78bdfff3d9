/*
Package route holds the route model consumed by the engine.

A Plan is produced by a directions provider and is immutable once adopted.
Adoption derives everything the tracker and sequencer read on every fix:

  - cumulative polyline distance at each vertex
  - start and end offset of every step along the polyline
  - per-step remaining distance and duration (suffix sums)

Steps partition the polyline only approximately, so step offsets are the
provider's step distances scaled to the measured polyline length.

	plan := (&route.Plan{Geometry: line, Steps: steps}).Adopt()
	pt, idx := plan.PointAtDistance(420)
*/
package route
