package geo

import (
	"math"

	"github.com/paulmach/orb"
)

// EarthRadiusMeters is the mean Earth radius used by Distance.
const EarthRadiusMeters = 6371000.0

const metersPerDegreeLat = math.Pi * EarthRadiusMeters / 180

// Distance returns the haversine great-circle distance in meters.
func Distance(lat1, lon1, lat2, lon2 float64) float64 {
	dLat := (lat2 - lat1) * math.Pi / 180
	dLon := (lon2 - lon1) * math.Pi / 180
	la1 := lat1 * math.Pi / 180
	la2 := lat2 * math.Pi / 180
	a := math.Sin(dLat/2)*math.Sin(dLat/2) + math.Cos(la1)*math.Cos(la2)*math.Sin(dLon/2)*math.Sin(dLon/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
	return EarthRadiusMeters * c
}

// DistanceBetween is Distance for two orb points.
func DistanceBetween(a, b orb.Point) float64 {
	return Distance(a.Lat(), a.Lon(), b.Lat(), b.Lon())
}

// Bearing returns the initial bearing from a to b in degrees [0, 360).
func Bearing(a, b orb.Point) float64 {
	phi1 := a.Lat() * math.Pi / 180
	phi2 := b.Lat() * math.Pi / 180
	deltaLambda := (b.Lon() - a.Lon()) * math.Pi / 180

	x := math.Sin(deltaLambda) * math.Cos(phi2)
	y := math.Cos(phi1)*math.Sin(phi2) - math.Sin(phi1)*math.Cos(phi2)*math.Cos(deltaLambda)

	return NormalizeBearing(math.Atan2(x, y) * 180 / math.Pi)
}

// NormalizeBearing maps any angle in degrees into [0, 360).
func NormalizeBearing(deg float64) float64 {
	b := math.Mod(deg, 360)
	if b < 0 {
		b += 360
	}
	if b >= 360 {
		b = 0
	}
	return b
}

// ProjectOntoSegment projects p orthogonally onto the segment a-b in the
// unprojected lon/lat plane and returns the projected point together with
// the parametric position t, clamped to [0, 1]. A degenerate segment
// returns a with t = 0.
func ProjectOntoSegment(p, a, b orb.Point) (orb.Point, float64) {
	vx := b[0] - a[0]
	vy := b[1] - a[1]
	wx := p[0] - a[0]
	wy := p[1] - a[1]

	denom := vx*vx + vy*vy
	if denom == 0 {
		return a, 0
	}
	t := (wx*vx + wy*vy) / denom
	if t < 0 {
		t = 0
	} else if t > 1 {
		t = 1
	}
	return orb.Point{a[0] + t*vx, a[1] + t*vy}, t
}

// Interpolate linearly interpolates between two points
func Interpolate(a, b orb.Point, fraction float64) orb.Point {
	return orb.Point{
		a[0] + (b[0]-a[0])*fraction,
		a[1] + (b[1]-a[1])*fraction,
	}
}

// Offset moves p by the given number of meters north and east using a
// local equirectangular approximation.
func Offset(p orb.Point, north, east float64) orb.Point {
	dLat := north / metersPerDegreeLat
	cosLat := math.Cos(p.Lat() * math.Pi / 180)
	if cosLat < 1e-12 {
		return orb.Point{p.Lon(), p.Lat() + dLat}
	}
	dLon := east / (metersPerDegreeLat * cosLat)
	return orb.Point{p.Lon() + dLon, p.Lat() + dLat}
}

// ValidCoordinate reports whether lat/lon are finite and within range.
func ValidCoordinate(lat, lon float64) bool {
	if math.IsNaN(lat) || math.IsNaN(lon) || math.IsInf(lat, 0) || math.IsInf(lon, 0) {
		return false
	}
	return lat >= -90 && lat <= 90 && lon >= -180 && lon <= 180
}
