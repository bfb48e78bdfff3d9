package route

import (
	"errors"
	"sort"

	"github.com/paulmach/orb"

	"github.com/theoremus-urban-solutions/navengine/geo"
)

var (
	ErrTooFewPoints = errors.New("route: polyline needs at least two points")
	ErrNoSteps      = errors.New("route: plan has no steps")
)

// Adopt returns a copy of p with every derived field computed. The
// receiver is left untouched so a provider's plan can be adopted again
// after a failed navigation attempt.
func (p *Plan) Adopt() *Plan {
	out := &Plan{
		Distance:    p.Distance,
		Duration:    p.Duration,
		Steps:       append([]Step(nil), p.Steps...),
		Geometry:    append(orb.LineString(nil), p.Geometry...),
		Destination: p.Destination,
		Summary:     p.Summary,
		adopted:     true,
	}

	out.cumulative = make([]float64, len(out.Geometry))
	for i := 1; i < len(out.Geometry); i++ {
		out.cumulative[i] = out.cumulative[i-1] + geo.DistanceBetween(out.Geometry[i-1], out.Geometry[i])
	}
	if len(out.Geometry) > 0 && out.Destination == (orb.Point{}) {
		out.Destination = out.Geometry[len(out.Geometry)-1]
	}

	var remDist, remDur, stepTotal float64
	for i := len(out.Steps) - 1; i >= 0; i-- {
		remDist += out.Steps[i].Distance
		remDur += out.Steps[i].Duration
		out.Steps[i].RemainingDistance = remDist
		out.Steps[i].RemainingDuration = remDur
		stepTotal += out.Steps[i].Distance
	}
	if out.Distance == 0 {
		out.Distance = stepTotal
	}
	if out.Duration == 0 {
		out.Duration = remDur
	}

	length := out.Length()
	scale := 1.0
	if stepTotal > 0 && length > 0 {
		scale = length / stepTotal
	}
	out.stepStarts = make([]float64, len(out.Steps))
	out.stepEnds = make([]float64, len(out.Steps))
	var acc float64
	for i, s := range out.Steps {
		out.stepStarts[i] = acc * scale
		acc += s.Distance
		out.stepEnds[i] = acc * scale
		if stepTotal == 0 {
			out.stepEnds[i] = length
		}
	}
	if n := len(out.stepEnds); n > 0 {
		out.stepEnds[n-1] = length
	}
	return out
}

// Adopted reports whether derived fields are available.
func (p *Plan) Adopted() bool { return p != nil && p.adopted }

// Validate reports the first structural problem with the plan.
func (p *Plan) Validate() error {
	if len(p.Geometry) < 2 {
		return ErrTooFewPoints
	}
	if len(p.Steps) == 0 {
		return ErrNoSteps
	}
	return nil
}

// Length is the measured polyline length in meters.
func (p *Plan) Length() float64 {
	if len(p.cumulative) == 0 {
		return 0
	}
	return p.cumulative[len(p.cumulative)-1]
}

// CumulativeDistance returns the distance along the route at vertex i.
func (p *Plan) CumulativeDistance(i int) float64 {
	if i < 0 || i >= len(p.cumulative) {
		return 0
	}
	return p.cumulative[i]
}

// StepStart returns the offset along the polyline where step i begins.
func (p *Plan) StepStart(i int) float64 {
	if i < 0 || i >= len(p.stepStarts) {
		return 0
	}
	return p.stepStarts[i]
}

// StepEnd returns the offset along the polyline where step i ends.
func (p *Plan) StepEnd(i int) float64 {
	if i < 0 || i >= len(p.stepEnds) {
		return p.Length()
	}
	return p.stepEnds[i]
}

// Start returns the first polyline point, or the zero point for an empty plan.
func (p *Plan) Start() orb.Point {
	if len(p.Geometry) == 0 {
		return orb.Point{}
	}
	return p.Geometry[0]
}

// PointAtDistance maps a distance along the route to a coordinate on the
// polyline and the index of the vertex preceding it.
func (p *Plan) PointAtDistance(d float64) (orb.Point, int) {
	pts := p.Geometry
	switch len(pts) {
	case 0:
		return orb.Point{}, 0
	case 1:
		return pts[0], 0
	}
	if d <= 0 {
		return pts[0], 0
	}
	last := len(pts) - 1
	if d >= p.Length() {
		return pts[last], last - 1
	}

	// first vertex strictly beyond d
	next := sort.Search(len(p.cumulative), func(i int) bool { return p.cumulative[i] > d })
	seg := next - 1
	if seg < 0 {
		seg = 0
	}
	if seg >= last {
		seg = last - 1
	}

	prev := p.cumulative[seg]
	segLen := p.cumulative[seg+1] - prev
	t := 0.0
	if segLen > 0 {
		t = (d - prev) / segLen
	}
	return geo.Interpolate(pts[seg], pts[seg+1], t), seg
}
