package directions

import (
	"context"
	"fmt"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/paulmach/orb"
	"golang.org/x/sync/singleflight"

	"github.com/theoremus-urban-solutions/navengine/route"
)

// sharedFetchTimeout bounds an upstream call no single caller owns.
const sharedFetchTimeout = 30 * time.Second

// Cache memoizes a Provider by rounded endpoints and collapses concurrent
// identical requests into one upstream call. Errors are never cached.
type Cache struct {
	next      Provider
	plans     *lru.Cache[string, []*route.Plan]
	group     singleflight.Group
	precision int
}

// NewCache wraps next with an LRU of size entries. precision is the number
// of decimal degrees endpoints are rounded to when building keys.
func NewCache(next Provider, size, precision int) (*Cache, error) {
	if size <= 0 {
		size = 1
	}
	plans, err := lru.New[string, []*route.Plan](size)
	if err != nil {
		return nil, fmt.Errorf("failed to create directions cache: %w", err)
	}
	return &Cache{next: next, plans: plans, precision: precision}, nil
}

func (c *Cache) memoKey(kind string, origin, destination orb.Point) string {
	p := c.precision
	return fmt.Sprintf("%s|%.*f,%.*f|%.*f,%.*f", kind,
		p, origin.Lon(), p, origin.Lat(), p, destination.Lon(), p, destination.Lat())
}

func (c *Cache) GetDirections(ctx context.Context, origin, destination orb.Point) (*route.Plan, error) {
	plans, err := c.lookup(ctx, c.memoKey("route", origin, destination), func(ctx context.Context) ([]*route.Plan, error) {
		p, err := c.next.GetDirections(ctx, origin, destination)
		if err != nil {
			return nil, err
		}
		return []*route.Plan{p}, nil
	})
	if err != nil {
		return nil, err
	}
	return plans[0], nil
}

func (c *Cache) GetDirectionsWithAlternatives(ctx context.Context, origin, destination orb.Point) ([]*route.Plan, error) {
	return c.lookup(ctx, c.memoKey("alternatives", origin, destination), func(ctx context.Context) ([]*route.Plan, error) {
		return c.next.GetDirectionsWithAlternatives(ctx, origin, destination)
	})
}

// lookup runs fetch at most once per key at a time. The upstream call is
// detached from the caller that started it and bounded by
// sharedFetchTimeout; each caller waits only as long as its own ctx allows.
func (c *Cache) lookup(ctx context.Context, key string, fetch func(context.Context) ([]*route.Plan, error)) ([]*route.Plan, error) {
	if plans, ok := c.plans.Get(key); ok {
		return plans, nil
	}
	ch := c.group.DoChan(key, func() (interface{}, error) {
		fctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), sharedFetchTimeout)
		defer cancel()
		plans, err := fetch(fctx)
		if err != nil {
			return nil, err
		}
		if len(plans) == 0 || plans[0] == nil {
			return nil, ErrNoRoute
		}
		c.plans.Add(key, plans)
		return plans, nil
	})
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.([]*route.Plan), nil
	}
}

// Len reports the number of cached entries.
func (c *Cache) Len() int { return c.plans.Len() }

// Purge drops every cached route.
func (c *Cache) Purge() { c.plans.Purge() }
