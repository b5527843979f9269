package routing

import (
	"context"
	"errors"
	"fmt"
	"sync"

	gocache "github.com/patrickmn/go-cache"
	"github.com/sirupsen/logrus"

	"rentradar/server/internal/maps"
	"rentradar/server/internal/models"
)

// ErrTimedOut marks a directions request that hit its deadline. Shown to
// the user distinctly from a generic route failure.
var ErrTimedOut = errors.New("route request timed out")

// RouteState is the lifecycle of one destination's route.
type RouteState int

const (
	StateIdle RouteState = iota
	StateRequesting
	StateRendered
	StateFailed
)

func (s RouteState) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateRequesting:
		return "requesting"
	case StateRendered:
		return "rendered"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Calculator computes travel routes between properties and POIs. One
// calculator belongs to one comparison session: its cache lives as long as
// the session and is never invalidated, since routes between fixed points
// do not change mid-session.
type Calculator struct {
	directions maps.DirectionsClient
	cache      *gocache.Cache
	logger     *logrus.Logger

	mu     sync.Mutex
	states map[string]RouteState
	active map[string]*models.Route
}

func NewCalculator(directions maps.DirectionsClient, logger *logrus.Logger) *Calculator {
	return &Calculator{
		directions: directions,
		cache:      gocache.New(gocache.NoExpiration, 0),
		logger:     logger,
		states:     make(map[string]RouteState),
		active:     make(map[string]*models.Route),
	}
}

func cacheKey(origin models.Coordinate, dest maps.Destination, mode models.TravelMode) string {
	return origin.Key() + "|" + dest.Key() + "|" + string(mode)
}

// Route computes (or re-renders) the route from origin to dest. A repeat
// call for the same destination first retires its previous rendering, so
// duplicate overlays never accumulate; identical (origin, destination,
// mode) triples are served from cache without a provider round-trip.
func (c *Calculator) Route(ctx context.Context, originID int64, origin models.Coordinate, dest maps.Destination, mode models.TravelMode) (*models.Route, error) {
	destKey := dest.Key()
	if destKey == "" {
		return nil, fmt.Errorf("destination has neither place id nor coordinate")
	}
	if !mode.Valid() {
		return nil, fmt.Errorf("unsupported travel mode: %s", mode)
	}

	c.mu.Lock()
	// Re-requesting a rendered destination removes the existing overlay
	// before the new request is issued.
	delete(c.active, destKey)
	c.states[destKey] = StateRequesting
	c.mu.Unlock()

	key := cacheKey(origin, dest, mode)
	if cached, found := c.cache.Get(key); found {
		route := cached.(*models.Route)
		c.render(destKey, route)
		return route, nil
	}

	route, err := c.directions.Directions(ctx, origin, dest, mode)
	if err != nil {
		c.mu.Lock()
		c.states[destKey] = StateFailed
		c.mu.Unlock()

		c.logger.WithError(err).WithField("destination", destKey).Error("Unable to calculate route")
		if maps.IsTimeout(err) {
			return nil, fmt.Errorf("%w: %v", ErrTimedOut, err)
		}
		return nil, fmt.Errorf("unable to calculate route: %w", err)
	}

	route.OriginID = originID
	route.MidpointLabel = midpointLabel(route.Steps)
	c.cache.Set(key, route, gocache.NoExpiration)
	c.render(destKey, route)
	return route, nil
}

func (c *Calculator) render(destKey string, route *models.Route) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.active[destKey] = route
	c.states[destKey] = StateRendered
}

// StateOf reports the destination's current lifecycle state.
func (c *Calculator) StateOf(dest maps.Destination) RouteState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.states[dest.Key()]
}

// ActiveRoutes returns the currently rendered routes, at most one per
// destination.
func (c *Calculator) ActiveRoutes() []*models.Route {
	c.mu.Lock()
	defer c.mu.Unlock()

	routes := make([]*models.Route, 0, len(c.active))
	for _, route := range c.active {
		routes = append(routes, route)
	}
	return routes
}

// Retire removes the destination's rendered route, returning it to idle.
func (c *Calculator) Retire(dest maps.Destination) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.active, dest.Key())
	c.states[dest.Key()] = StateIdle
}

// Reset clears all rendered routes. Cached results survive: a session that
// re-renders after a reset still avoids repeat provider calls.
func (c *Calculator) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.active = make(map[string]*models.Route)
	c.states = make(map[string]RouteState)
}
