package directions

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/paulmach/orb"

	"github.com/theoremus-urban-solutions/navengine/config"
	"github.com/theoremus-urban-solutions/navengine/route"
)

// OSRMClient fetches routes from an OSRM v5 compatible HTTP server.
type OSRMClient struct {
	baseURL    string
	profile    string
	httpClient *http.Client
}

// NewOSRMClient creates a client from configuration. The configured timeout
// bounds every request; the engine does not add its own.
func NewOSRMClient(cfg config.DirectionsConfig) *OSRMClient {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	profile := cfg.Profile
	if profile == "" {
		profile = "driving"
	}
	return &OSRMClient{
		baseURL:    strings.TrimSuffix(cfg.BaseURL, "/"),
		profile:    profile,
		httpClient: &http.Client{Timeout: timeout},
	}
}

type osrmManeuver struct {
	Type          string    `json:"type"`
	Modifier      string    `json:"modifier"`
	BearingBefore float64   `json:"bearing_before"`
	BearingAfter  float64   `json:"bearing_after"`
	Location      []float64 `json:"location"`
	Exit          int       `json:"exit"`
}

type osrmStep struct {
	Distance float64      `json:"distance"`
	Duration float64      `json:"duration"`
	Name     string       `json:"name"`
	Ref      string       `json:"ref"`
	Maneuver osrmManeuver `json:"maneuver"`
}

type osrmLeg struct {
	Summary string     `json:"summary"`
	Steps   []osrmStep `json:"steps"`
}

type osrmRoute struct {
	Distance float64 `json:"distance"`
	Duration float64 `json:"duration"`
	Geometry struct {
		Coordinates [][]float64 `json:"coordinates"`
	} `json:"geometry"`
	Legs []osrmLeg `json:"legs"`
}

type osrmResponse struct {
	Code    string      `json:"code"`
	Message string      `json:"message"`
	Routes  []osrmRoute `json:"routes"`
}

// GetDirections returns the provider's preferred route.
func (c *OSRMClient) GetDirections(ctx context.Context, origin, destination orb.Point) (*route.Plan, error) {
	plans, err := c.fetch(ctx, origin, destination, false)
	if err != nil {
		return nil, err
	}
	return plans[0], nil
}

// GetDirectionsWithAlternatives returns the preferred route first followed
// by any alternatives the server proposes.
func (c *OSRMClient) GetDirectionsWithAlternatives(ctx context.Context, origin, destination orb.Point) ([]*route.Plan, error) {
	return c.fetch(ctx, origin, destination, true)
}

func (c *OSRMClient) fetch(ctx context.Context, origin, destination orb.Point, alternatives bool) ([]*route.Plan, error) {
	url := fmt.Sprintf("%s/route/v1/%s/%.6f,%.6f;%.6f,%.6f?overview=full&geometries=geojson&steps=true&alternatives=%t",
		c.baseURL, c.profile, origin.Lon(), origin.Lat(), destination.Lon(), destination.Lat(), alternatives)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch %s: %w", url, err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		// OSRM reports NoRoute with a 400 and a JSON body
		var parsed osrmResponse
		if json.Unmarshal(body, &parsed) == nil && parsed.Code == "NoRoute" {
			return nil, ErrNoRoute
		}
		return nil, fmt.Errorf("HTTP %d from %s", resp.StatusCode, url)
	}

	var parsed osrmResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("JSON decode failed: %w", err)
	}
	if parsed.Code != "Ok" {
		if parsed.Code == "NoRoute" {
			return nil, ErrNoRoute
		}
		return nil, fmt.Errorf("osrm: %s: %s", parsed.Code, parsed.Message)
	}
	if len(parsed.Routes) == 0 {
		return nil, ErrNoRoute
	}

	plans := make([]*route.Plan, 0, len(parsed.Routes))
	for _, r := range parsed.Routes {
		plans = append(plans, toPlan(r, destination))
	}
	return plans, nil
}

func toPlan(r osrmRoute, destination orb.Point) *route.Plan {
	p := &route.Plan{
		Distance:    r.Distance,
		Duration:    r.Duration,
		Destination: destination,
	}
	for _, pair := range r.Geometry.Coordinates {
		if len(pair) < 2 {
			continue
		}
		p.Geometry = append(p.Geometry, orb.Point{pair[0], pair[1]})
	}

	var summaries []string
	for _, leg := range r.Legs {
		if leg.Summary != "" {
			summaries = append(summaries, leg.Summary)
		}
		for _, s := range leg.Steps {
			m := parseManeuver(s.Maneuver.Type, s.Maneuver.Modifier)
			name := s.Name
			if name == "" {
				name = s.Ref
			}
			p.Steps = append(p.Steps, route.Step{
				Instruction:   route.BuildInstruction(m, name),
				Maneuver:      m,
				RoadName:      name,
				Distance:      s.Distance,
				Duration:      s.Duration,
				BearingBefore: s.Maneuver.BearingBefore,
				BearingAfter:  s.Maneuver.BearingAfter,
			})
		}
	}
	p.Summary = strings.Join(summaries, "; ")
	return p
}

// parseManeuver maps OSRM maneuver type/modifier pairs onto route.Maneuver.
func parseManeuver(typ, modifier string) route.Maneuver {
	switch typ {
	case "depart":
		return route.ManeuverDepart
	case "arrive":
		return route.ManeuverArrive
	case "roundabout", "rotary", "roundabout turn", "exit roundabout", "exit rotary":
		return route.ManeuverRoundabout
	case "merge":
		return route.ManeuverMerge
	case "on ramp", "off ramp":
		return route.ManeuverRamp
	case "fork":
		if strings.Contains(modifier, "left") {
			return route.ManeuverForkLeft
		}
		return route.ManeuverForkRight
	}

	switch modifier {
	case "left":
		return route.ManeuverTurnLeft
	case "right":
		return route.ManeuverTurnRight
	case "slight left":
		return route.ManeuverSlightLeft
	case "slight right":
		return route.ManeuverSlightRight
	case "sharp left":
		return route.ManeuverSharpLeft
	case "sharp right":
		return route.ManeuverSharpRight
	case "uturn":
		return route.ManeuverUTurn
	}
	return route.ManeuverStraight
}
