package tracking

import (
	"log/slog"
	"math"
	"time"

	"github.com/paulmach/orb"

	"github.com/theoremus-urban-solutions/navengine/config"
	"github.com/theoremus-urban-solutions/navengine/fixstream"
	"github.com/theoremus-urban-solutions/navengine/geo"
	"github.com/theoremus-urban-solutions/navengine/route"
)

// Progress is the tracked position on the route derived from one fix.
type Progress struct {
	// Coordinate is the smoothed position; it always lies on the polyline.
	Coordinate         orb.Point
	DistanceAlongRoute float64
	SegmentIndex       int

	// Raw projection of the fix before smoothing.
	Projected             orb.Point
	RawDistanceAlongRoute float64
	RawSegmentIndex       int

	Heading          float64
	OffRouteDistance float64
	Speed            float64
	Timestamp        time.Time

	// Snapped is set when the displayed distance jumped straight to the raw
	// value (first fix, GPS gap, large backward jump).
	Snapped bool
	// Valid is false when the plan was too malformed to project onto.
	Valid bool
}

// Tracker turns raw fixes into monotonic route progress.
type Tracker struct {
	cfg     config.TrackingConfig
	lg      *slog.Logger
	history *History

	displayed   float64
	initialized bool
	lastFix     time.Time
}

// New creates a tracker. A nil logger falls back to slog.Default().
func New(cfg config.TrackingConfig, lg *slog.Logger) *Tracker {
	if lg == nil {
		lg = slog.Default()
	}
	return &Tracker{cfg: cfg, lg: lg, history: NewHistory(cfg.HistorySize)}
}

// Reset forgets smoothing state and history; used when a route is adopted.
func (tr *Tracker) Reset() {
	tr.displayed = 0
	tr.initialized = false
	tr.lastFix = time.Time{}
	tr.history.Clear()
}

// Update projects fix onto plan and advances the smoothed progress.
func (tr *Tracker) Update(fix fixstream.PositionFix, plan *route.Plan) Progress {
	if !plan.Adopted() {
		plan = plan.Adopt()
	}
	tr.history.Add(fix)
	defer func() { tr.lastFix = fix.Timestamp }()

	p := Progress{Timestamp: fix.Timestamp, Speed: tr.speed(fix)}

	pts := plan.Geometry
	if len(pts) < 2 {
		start := plan.Start()
		if len(pts) == 0 {
			start = fix.Point()
		}
		tr.lg.Warn("route polyline too short to track", slog.Int("points", len(pts)))
		p.Coordinate = start
		p.Projected = start
		p.OffRouteDistance = geo.DistanceBetween(fix.Point(), start)
		if fix.Heading != nil {
			p.Heading = geo.NormalizeBearing(*fix.Heading)
		}
		return p
	}
	p.Valid = true

	// Nearest segment projection
	here := fix.Point()
	minDist := math.MaxFloat64
	bestSeg := 0
	bestT := 0.0
	var bestPt orb.Point
	for i := 0; i < len(pts)-1; i++ {
		proj, t := geo.ProjectOntoSegment(here, pts[i], pts[i+1])
		d := geo.DistanceBetween(here, proj)
		if d < minDist {
			minDist = d
			bestSeg = i
			bestT = t
			bestPt = proj
		}
	}

	segLen := plan.CumulativeDistance(bestSeg+1) - plan.CumulativeDistance(bestSeg)
	raw := plan.CumulativeDistance(bestSeg) + bestT*segLen

	p.Projected = bestPt
	p.RawDistanceAlongRoute = raw
	p.RawSegmentIndex = bestSeg
	p.OffRouteDistance = minDist

	p.DistanceAlongRoute, p.Snapped = tr.smooth(raw, minDist, fix.Timestamp)
	p.Coordinate, p.SegmentIndex = plan.PointAtDistance(p.DistanceAlongRoute)
	p.Heading = tr.heading(plan, p.Coordinate, p.SegmentIndex)
	return p
}

// smooth applies the displayed-distance policy and reports whether it
// snapped to the raw value.
func (tr *Tracker) smooth(raw, offRoute float64, ts time.Time) (float64, bool) {
	c := tr.cfg
	if !tr.initialized {
		tr.initialized = true
		tr.displayed = raw
		return raw, true
	}
	if c.GapReset > 0 && !ts.IsZero() && !tr.lastFix.IsZero() && ts.Sub(tr.lastFix) > c.GapReset {
		tr.lg.Debug("fix gap, snapping progress",
			slog.Duration("gap", ts.Sub(tr.lastFix)),
			slog.Float64("raw", raw))
		tr.displayed = raw
		return raw, true
	}

	delta := raw - tr.displayed
	switch {
	case delta >= 0:
		tr.displayed += c.ForwardSmoothing * delta
	case -delta > c.JumpThreshold:
		tr.lg.Debug("backward jump, snapping progress",
			slog.Float64("displayed", tr.displayed),
			slog.Float64("raw", raw))
		tr.displayed = raw
		return raw, true
	case offRoute <= c.HighConfidenceDistance:
		tr.displayed -= math.Min(-delta*c.BackwardCorrection, c.MaxBackwardCorrection)
	default:
		tr.displayed -= math.Min(-delta*c.DecayFactor, c.MaxRetreatPerTick)
	}
	return tr.displayed, false
}

// heading looks LookAheadVertices ahead of the smoothed position so nearly
// straight segments do not make the heading jitter.
func (tr *Tracker) heading(plan *route.Plan, at orb.Point, seg int) float64 {
	pts := plan.Geometry
	last := len(pts) - 1
	ahead := seg + tr.cfg.LookAheadVertices
	if ahead > last {
		ahead = last
	}
	for ; ahead <= last; ahead++ {
		if geo.DistanceBetween(at, pts[ahead]) > 0.5 {
			return geo.Bearing(at, pts[ahead])
		}
	}
	return geo.Bearing(pts[last-1], pts[last])
}

func (tr *Tracker) speed(fix fixstream.PositionFix) float64 {
	if fix.Speed != nil && *fix.Speed >= 0 && !math.IsNaN(*fix.Speed) {
		return *fix.Speed
	}
	return tr.history.Speed()
}
