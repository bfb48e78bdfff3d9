package tracking

import (
	"math"
	"math/rand"
	"testing"
	"time"

	"github.com/paulmach/orb"

	"github.com/theoremus-urban-solutions/navengine/config"
	"github.com/theoremus-urban-solutions/navengine/fixstream"
	"github.com/theoremus-urban-solutions/navengine/geo"
	"github.com/theoremus-urban-solutions/navengine/route"
)

var origin = orb.Point{23.3219, 42.6977}

var t0 = time.Date(2025, 10, 3, 8, 0, 0, 0, time.UTC)

// eastward builds an adopted single-step plan heading east from origin.
func eastward(length, spacing float64) *route.Plan {
	var ls orb.LineString
	for d := 0.0; d < length; d += spacing {
		ls = append(ls, geo.Offset(origin, 0, d))
	}
	ls = append(ls, geo.Offset(origin, 0, length))
	return (&route.Plan{
		Geometry: ls,
		Steps:    []route.Step{{Maneuver: route.ManeuverDepart, Distance: length, Duration: length / 10}},
	}).Adopt()
}

// fixAt places a fix `along` meters east of origin and `lateral` meters north.
func fixAt(along, lateral float64, ts time.Time) fixstream.PositionFix {
	p := geo.Offset(origin, lateral, along)
	return fixstream.PositionFix{Latitude: p.Lat(), Longitude: p.Lon(), Timestamp: ts}
}

func newTracker() *Tracker {
	return New(config.DefaultNavigation().Tracking, nil)
}

func TestUpdate_FixOnVertex(t *testing.T) {
	plan := eastward(300, 50)
	tr := newTracker()

	vertex := plan.Geometry[2]
	p := tr.Update(fixstream.PositionFix{Latitude: vertex.Lat(), Longitude: vertex.Lon(), Timestamp: t0}, plan)

	if !p.Valid {
		t.Fatal("progress should be valid")
	}
	if geo.DistanceBetween(p.Projected, vertex) > 1e-6 {
		t.Errorf("expected projection onto vertex %v, got %v", vertex, p.Projected)
	}
	if p.OffRouteDistance > 1e-6 {
		t.Errorf("expected zero off-route distance, got %v", p.OffRouteDistance)
	}
	if math.Abs(p.RawDistanceAlongRoute-plan.CumulativeDistance(2)) > 1e-6 {
		t.Errorf("expected raw distance %v, got %v", plan.CumulativeDistance(2), p.RawDistanceAlongRoute)
	}
	if !p.Snapped {
		t.Error("first fix should snap")
	}
}

func TestUpdate_MonotonicUnderLateralNoise(t *testing.T) {
	plan := eastward(1000, 100)
	tr := newTracker()
	rng := rand.New(rand.NewSource(7))

	prev := -1.0
	for i := 0; i <= 100; i++ {
		noise := (rng.Float64()*2 - 1) * 15
		p := tr.Update(fixAt(float64(i)*10, noise, t0.Add(time.Duration(i)*time.Second)), plan)
		if p.DistanceAlongRoute < prev {
			t.Fatalf("tick %d: distance went backward %.3f -> %.3f", i, prev, p.DistanceAlongRoute)
		}
		if geo.DistanceBetween(p.Coordinate, geo.Offset(origin, 0, p.DistanceAlongRoute)) > 0.5 {
			t.Fatalf("tick %d: smoothed coordinate is off the polyline", i)
		}
		if p.Heading < 0 || p.Heading >= 360 {
			t.Fatalf("tick %d: heading %.3f outside [0,360)", i, p.Heading)
		}
		prev = p.DistanceAlongRoute
	}
	if prev < 990 {
		t.Errorf("expected progress near the end, got %.1f", prev)
	}
}

func TestSmoothing_Policies(t *testing.T) {
	cfg := config.DefaultNavigation().Tracking

	tests := []struct {
		name        string
		second      fixstream.PositionFix
		expected    float64
		wantSnapped bool
	}{
		{
			name:     "forward blends quickly",
			second:   fixAt(300, 0, t0.Add(time.Second)),
			expected: 200 + cfg.ForwardSmoothing*100,
		},
		{
			name:        "large backward jump snaps",
			second:      fixAt(100, 0, t0.Add(time.Second)),
			expected:    100,
			wantSnapped: true,
		},
		{
			name:     "high confidence allows capped correction",
			second:   fixAt(160, 0, t0.Add(time.Second)),
			expected: 200 - math.Min(40*cfg.BackwardCorrection, cfg.MaxBackwardCorrection),
		},
		{
			name:     "low confidence decays slowly",
			second:   fixAt(170, 15, t0.Add(time.Second)),
			expected: 200 - math.Min(30*cfg.DecayFactor, cfg.MaxRetreatPerTick),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			plan := eastward(1000, 100)
			tr := New(cfg, nil)
			tr.Update(fixAt(200, 0, t0), plan)

			p := tr.Update(tt.second, plan)
			if math.Abs(p.DistanceAlongRoute-tt.expected) > 0.05 {
				t.Errorf("expected %.2f, got %.2f", tt.expected, p.DistanceAlongRoute)
			}
			if p.Snapped != tt.wantSnapped {
				t.Errorf("expected snapped=%v, got %v", tt.wantSnapped, p.Snapped)
			}
		})
	}
}

func TestSmoothing_GapSnaps(t *testing.T) {
	plan := eastward(1000, 100)
	tr := newTracker()
	tr.Update(fixAt(0, 0, t0), plan)

	p := tr.Update(fixAt(400, 0, t0.Add(time.Minute)), plan)
	if !p.Snapped || math.Abs(p.DistanceAlongRoute-400) > 0.05 {
		t.Errorf("expected snap to 400 after a GPS gap, got %.2f snapped=%v", p.DistanceAlongRoute, p.Snapped)
	}
}

func TestUpdate_MalformedPlan(t *testing.T) {
	tr := newTracker()

	single := (&route.Plan{Geometry: orb.LineString{origin}}).Adopt()
	p := tr.Update(fixAt(50, 0, t0), single)
	if p.Valid {
		t.Error("single-point plan should not produce valid progress")
	}
	if p.Coordinate != origin {
		t.Errorf("expected route start %v, got %v", origin, p.Coordinate)
	}

	empty := (&route.Plan{}).Adopt()
	fix := fixAt(50, 0, t0.Add(time.Second))
	p = tr.Update(fix, empty)
	if p.Coordinate != fix.Point() {
		t.Errorf("empty plan should fall back to the fix, got %v", p.Coordinate)
	}
}

func TestHeading_LooksAhead(t *testing.T) {
	// 200m east then 200m north
	var ls orb.LineString
	for d := 0.0; d <= 200; d += 50 {
		ls = append(ls, geo.Offset(origin, 0, d))
	}
	for d := 50.0; d <= 200; d += 50 {
		ls = append(ls, geo.Offset(origin, d, 200))
	}
	plan := (&route.Plan{Geometry: ls, Steps: []route.Step{{Distance: 400}}}).Adopt()
	tr := newTracker()

	p := tr.Update(fixAt(10, 0, t0), plan)
	if math.Abs(p.Heading-90) > 0.5 {
		t.Errorf("on the straight leg heading should be ~90, got %.2f", p.Heading)
	}

	tr.Reset()
	p = tr.Update(fixAt(110, 0, t0), plan)
	if p.Heading <= 1 || p.Heading >= 89 {
		t.Errorf("approaching the corner heading should anticipate the turn, got %.2f", p.Heading)
	}
}

func TestHistory_Speed(t *testing.T) {
	h := NewHistory(5)
	if h.Speed() != 0 {
		t.Error("empty history should report zero speed")
	}
	for i := 0; i < 8; i++ {
		h.Add(fixAt(float64(i)*10, 0, t0.Add(time.Duration(i)*time.Second)))
	}
	if h.Len() != 5 {
		t.Errorf("history should be bounded to 5, got %d", h.Len())
	}
	if s := h.Speed(); math.Abs(s-10) > 0.05 {
		t.Errorf("expected ~10 m/s, got %.3f", s)
	}
	last, _ := h.Last()
	if !last.Timestamp.Equal(t0.Add(7 * time.Second)) {
		t.Errorf("unexpected last fix %v", last.Timestamp)
	}
}

func TestUpdate_PrefersReportedSpeed(t *testing.T) {
	plan := eastward(500, 100)
	tr := newTracker()
	f := fixAt(0, 0, t0)
	f.Speed = fixstream.Float(13.5)
	if p := tr.Update(f, plan); p.Speed != 13.5 {
		t.Errorf("expected reported speed 13.5, got %v", p.Speed)
	}
}
