package navengine

import "github.com/theoremus-urban-solutions/navengine/route"

// Callbacks are invoked synchronously after the state of a processing pass
// has been committed. Any field may be nil. Callbacks may call getters and
// StopNavigation.
type Callbacks struct {
	OnStepChange         func(step route.Step, index int)
	OnOffRoute           func(distance float64)
	OnArrival            func()
	OnRouteRecalculation func(plan *route.Plan)
	OnRoadNameChange     func(name string)
	OnSpeedLimitChange   func(limit float64)
	OnError              func(err error)
}

// events collects callback invocations during a pass.
type events []func()

func (e events) fire() {
	for _, fn := range e {
		fn()
	}
}

func (e *events) stepChanged(cb Callbacks, step route.Step, index int) {
	if cb.OnStepChange != nil {
		*e = append(*e, func() { cb.OnStepChange(step, index) })
	}
}

func (e *events) offRoute(cb Callbacks, distance float64) {
	if cb.OnOffRoute != nil {
		*e = append(*e, func() { cb.OnOffRoute(distance) })
	}
}

func (e *events) arrived(cb Callbacks) {
	if cb.OnArrival != nil {
		*e = append(*e, cb.OnArrival)
	}
}

func (e *events) recalculated(cb Callbacks, plan *route.Plan) {
	if cb.OnRouteRecalculation != nil {
		*e = append(*e, func() { cb.OnRouteRecalculation(plan) })
	}
}

func (e *events) roadNameChanged(cb Callbacks, name string) {
	if cb.OnRoadNameChange != nil {
		*e = append(*e, func() { cb.OnRoadNameChange(name) })
	}
}

func (e *events) speedLimitChanged(cb Callbacks, limit float64) {
	if cb.OnSpeedLimitChange != nil {
		*e = append(*e, func() { cb.OnSpeedLimitChange(limit) })
	}
}

func (e *events) failed(cb Callbacks, err error) {
	if cb.OnError != nil {
		*e = append(*e, func() { cb.OnError(err) })
	}
}
