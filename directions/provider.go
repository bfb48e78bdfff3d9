package directions

import (
	"context"
	"errors"

	"github.com/paulmach/orb"

	"github.com/theoremus-urban-solutions/navengine/route"
)

// ErrNoRoute is returned when the provider answered but found no route.
var ErrNoRoute = errors.New("directions: no route found")

// Provider computes routes between two points. Returned plans must be
// treated as read-only by callers.
type Provider interface {
	GetDirections(ctx context.Context, origin, destination orb.Point) (*route.Plan, error)
	GetDirectionsWithAlternatives(ctx context.Context, origin, destination orb.Point) ([]*route.Plan, error)
}
