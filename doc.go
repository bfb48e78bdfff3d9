// Package navengine is a turn-by-turn navigation engine.
//
// A Session follows a route plan using a stream of position fixes. Each fix
// is projected onto the route by the tracking package, the maneuver
// sequencer advances through the steps, and the off-route detector decides
// when to ask the directions provider for a new route. Consumers read an
// immutable NavigationState snapshot and receive typed callbacks.
//
// Basic usage:
//
//	src := fixstream.NewManual()
//	s := navengine.NewSession(config.DefaultNavigation(), src, provider)
//	err := s.StartNavigation(ctx, plan, navengine.Callbacks{
//		OnStepChange: func(step route.Step, index int) { ... },
//		OnArrival:    func() { ... },
//	})
//	...
//	s.StopNavigation()
//
// NewFromConfig composes a session from an AppConfig, including the OSRM
// client, its cache and either a replayed fix trace or a GTFS-RT feed
// as the fix source.
package navengine
