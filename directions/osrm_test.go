package directions

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/paulmach/orb"

	"github.com/theoremus-urban-solutions/navengine/config"
	"github.com/theoremus-urban-solutions/navengine/route"
)

const osrmOK = `{
  "code": "Ok",
  "routes": [{
    "distance": 250.5,
    "duration": 30.2,
    "geometry": {"type": "LineString", "coordinates": [[23.3200, 42.6900], [23.3210, 42.6900], [23.3210, 42.6910]]},
    "legs": [{
      "summary": "Vitosha",
      "steps": [
        {"distance": 82.0, "duration": 10.0, "name": "Vitosha", "maneuver": {"type": "depart", "bearing_before": 0, "bearing_after": 90, "location": [23.32, 42.69]}},
        {"distance": 168.5, "duration": 20.2, "name": "", "ref": "E80", "maneuver": {"type": "turn", "modifier": "left", "bearing_before": 90, "bearing_after": 0, "location": [23.321, 42.69]}},
        {"distance": 0, "duration": 0, "name": "", "maneuver": {"type": "arrive", "bearing_before": 0, "bearing_after": 0, "location": [23.321, 42.691]}}
      ]
    }]
  }]
}`

func TestOSRMClient_GetDirections(t *testing.T) {
	var gotPath, gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotQuery = r.URL.RawQuery
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(osrmOK))
	}))
	defer srv.Close()

	c := NewOSRMClient(config.DirectionsConfig{BaseURL: srv.URL + "/", Profile: "driving", Timeout: time.Second})
	plan, err := c.GetDirections(context.Background(), orb.Point{23.32, 42.69}, orb.Point{23.321, 42.691})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !strings.HasPrefix(gotPath, "/route/v1/driving/23.320000,42.690000;23.321000,42.691000") {
		t.Errorf("unexpected path %q", gotPath)
	}
	if !strings.Contains(gotQuery, "steps=true") || !strings.Contains(gotQuery, "alternatives=false") {
		t.Errorf("unexpected query %q", gotQuery)
	}

	if len(plan.Geometry) != 3 {
		t.Fatalf("expected 3 vertices, got %d", len(plan.Geometry))
	}
	if len(plan.Steps) != 3 {
		t.Fatalf("expected 3 steps, got %d", len(plan.Steps))
	}
	if plan.Distance != 250.5 {
		t.Errorf("expected distance 250.5, got %v", plan.Distance)
	}
	if plan.Summary != "Vitosha" {
		t.Errorf("expected summary Vitosha, got %q", plan.Summary)
	}

	turn := plan.Steps[1]
	if turn.Maneuver != route.ManeuverTurnLeft {
		t.Errorf("expected turn-left, got %s", turn.Maneuver)
	}
	if turn.RoadName != "E80" {
		t.Errorf("expected ref fallback E80, got %q", turn.RoadName)
	}
	if turn.Instruction != "Turn left onto E80" {
		t.Errorf("unexpected instruction %q", turn.Instruction)
	}
	if plan.Steps[2].Maneuver != route.ManeuverArrive {
		t.Errorf("expected arrive, got %s", plan.Steps[2].Maneuver)
	}
}

func TestOSRMClient_Errors(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		noRte  bool
	}{
		{name: "no route 400", status: http.StatusBadRequest, body: `{"code":"NoRoute","message":"Impossible route"}`, noRte: true},
		{name: "no route 200", status: http.StatusOK, body: `{"code":"NoRoute"}`, noRte: true},
		{name: "empty routes", status: http.StatusOK, body: `{"code":"Ok","routes":[]}`, noRte: true},
		{name: "server error", status: http.StatusInternalServerError, body: `oops`},
		{name: "bad json", status: http.StatusOK, body: `{"code":`},
		{name: "other code", status: http.StatusOK, body: `{"code":"InvalidQuery","message":"bad"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			c := NewOSRMClient(config.DirectionsConfig{BaseURL: srv.URL})
			_, err := c.GetDirections(context.Background(), orb.Point{0, 0}, orb.Point{0.01, 0})
			if err == nil {
				t.Fatal("expected error, got nil")
			}
			if errors.Is(err, ErrNoRoute) != tt.noRte {
				t.Errorf("expected ErrNoRoute=%v, got %v", tt.noRte, err)
			}
		})
	}
}

func TestOSRMClient_ContextCanceled(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	c := NewOSRMClient(config.DirectionsConfig{BaseURL: srv.URL})
	_, err := c.GetDirections(ctx, orb.Point{0, 0}, orb.Point{0.01, 0})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestParseManeuver(t *testing.T) {
	tests := []struct {
		typ, modifier string
		want          route.Maneuver
	}{
		{"depart", "", route.ManeuverDepart},
		{"arrive", "left", route.ManeuverArrive},
		{"turn", "right", route.ManeuverTurnRight},
		{"turn", "sharp left", route.ManeuverSharpLeft},
		{"continue", "slight right", route.ManeuverSlightRight},
		{"end of road", "uturn", route.ManeuverUTurn},
		{"new name", "straight", route.ManeuverStraight},
		{"fork", "slight left", route.ManeuverForkLeft},
		{"fork", "right", route.ManeuverForkRight},
		{"off ramp", "right", route.ManeuverRamp},
		{"rotary", "", route.ManeuverRoundabout},
		{"merge", "left", route.ManeuverMerge},
		{"notification", "", route.ManeuverStraight},
	}

	for _, tt := range tests {
		t.Run(tt.typ+"/"+tt.modifier, func(t *testing.T) {
			if got := parseManeuver(tt.typ, tt.modifier); got != tt.want {
				t.Errorf("expected %s, got %s", tt.want, got)
			}
		})
	}
}
