package offroute

import (
	"time"

	"github.com/theoremus-urban-solutions/navengine/config"
)

// Decision is the outcome of evaluating one off-route distance.
type Decision struct {
	OffRoute bool
	Distance float64
	// Entered is set on the update that first flagged the traveler.
	Entered bool
	// Recalculate asks the caller to fetch a new route now.
	Recalculate bool
}

// Detector keeps the off-route flag and the recalculation bookkeeping.
type Detector struct {
	cfg         config.OffRouteConfig
	offRoute    bool
	inFlight    bool
	lastAttempt time.Time
}

func New(cfg config.OffRouteConfig) *Detector {
	return &Detector{cfg: cfg}
}

// Reset clears all state, as on route adoption.
func (d *Detector) Reset() {
	d.offRoute = false
	d.inFlight = false
	d.lastAttempt = time.Time{}
}

func (d *Detector) OffRoute() bool { return d.offRoute }

func (d *Detector) InFlight() bool { return d.inFlight }

// Evaluate classifies distance (meters from the route) at time now.
func (d *Detector) Evaluate(distance float64, now time.Time) Decision {
	was := d.offRoute
	d.offRoute = distance > d.cfg.OffRouteThreshold

	dec := Decision{
		OffRoute: d.offRoute,
		Distance: distance,
		Entered:  d.offRoute && !was,
	}
	if distance > d.cfg.RecalculateThreshold && !d.inFlight && d.cooledDown(now) {
		dec.Recalculate = true
	}
	return dec
}

func (d *Detector) cooledDown(now time.Time) bool {
	if d.lastAttempt.IsZero() || d.cfg.RecalculationCooldown <= 0 {
		return true
	}
	return now.Sub(d.lastAttempt) >= d.cfg.RecalculationCooldown
}

// Begin records that a recalculation was started at now.
func (d *Detector) Begin(now time.Time) {
	d.inFlight = true
	d.lastAttempt = now
}

// Succeeded clears the off-route flag once a new route was adopted.
func (d *Detector) Succeeded() {
	d.inFlight = false
	d.offRoute = false
}

// Failed releases the in-flight slot and keeps the flag so the next update
// re-evaluates and may retry.
func (d *Detector) Failed() {
	d.inFlight = false
}
