package route

import (
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
)

// Bounds returns the bounding box a map camera needs to fit the route,
// padded by pad degrees on each side.
func (p *Plan) Bounds(pad float64) orb.Bound {
	if len(p.Geometry) == 0 {
		return orb.Bound{}
	}
	return p.Geometry.Bound().Pad(pad)
}

// FeatureCollection exports the plan for a rendering surface: the route
// line, one point per maneuver and the destination.
func (p *Plan) FeatureCollection() *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()
	if len(p.Geometry) == 0 {
		return fc
	}

	line := geojson.NewFeature(p.Geometry)
	line.Properties["kind"] = "route"
	line.Properties["distance"] = p.Distance
	line.Properties["duration"] = p.Duration
	if p.Summary != "" {
		line.Properties["summary"] = p.Summary
	}
	fc.Append(line)

	for i, s := range p.Steps {
		pt, _ := p.PointAtDistance(p.StepStart(i))
		f := geojson.NewFeature(pt)
		f.Properties["kind"] = "maneuver"
		f.Properties["index"] = i
		f.Properties["maneuver"] = string(s.Maneuver)
		f.Properties["instruction"] = s.Instruction
		fc.Append(f)
	}

	dest := geojson.NewFeature(p.Destination)
	dest.Properties["kind"] = "destination"
	fc.Append(dest)
	return fc
}
