package routing

import (
	"context"
	"errors"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rentradar/server/internal/maps"
	"rentradar/server/internal/models"
)

// fakeDirections counts provider calls and serves a canned route.
type fakeDirections struct {
	calls int
	err   error
	route models.Route
}

func (f *fakeDirections) Directions(ctx context.Context, origin models.Coordinate, dest maps.Destination, mode models.TravelMode) (*models.Route, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	route := f.route
	route.PlaceID = dest.PlaceID
	route.Mode = mode
	return &route, nil
}

type timeoutErr struct{}

func (timeoutErr) Error() string   { return "deadline exceeded" }
func (timeoutErr) Timeout() bool   { return true }
func (timeoutErr) Temporary() bool { return true }

func sampleRoute() models.Route {
	return models.Route{
		Distance: "1.2 mi",
		Duration: "8 min",
		Steps: []models.RouteStep{
			{Start: models.Coordinate{Lat: 1, Lng: 1}, End: models.Coordinate{Lat: 2, Lng: 2}, DistanceMeters: 900},
			{Start: models.Coordinate{Lat: 2, Lng: 2}, End: models.Coordinate{Lat: 3, Lng: 3}, DistanceMeters: 1031},
		},
	}
}

func TestRoute_CacheAvoidsRepeatProviderCalls(t *testing.T) {
	directions := &fakeDirections{route: sampleRoute()}
	calc := NewCalculator(directions, logrus.New())

	origin := models.Coordinate{Lat: 30.26, Lng: -97.74}
	dest := maps.Destination{PlaceID: "p1"}

	first, err := calc.Route(context.Background(), 1, origin, dest, models.ModeWalking)
	require.NoError(t, err)
	second, err := calc.Route(context.Background(), 1, origin, dest, models.ModeWalking)
	require.NoError(t, err)

	assert.Equal(t, 1, directions.calls, "identical (origin, destination, mode) must hit the provider once")
	assert.Equal(t, first, second)
}

func TestRoute_ModeIsPartOfCacheKey(t *testing.T) {
	directions := &fakeDirections{route: sampleRoute()}
	calc := NewCalculator(directions, logrus.New())

	origin := models.Coordinate{Lat: 30.26, Lng: -97.74}
	dest := maps.Destination{PlaceID: "p1"}

	_, err := calc.Route(context.Background(), 1, origin, dest, models.ModeWalking)
	require.NoError(t, err)
	_, err = calc.Route(context.Background(), 1, origin, dest, models.ModeDriving)
	require.NoError(t, err)

	assert.Equal(t, 2, directions.calls)
}

func TestRoute_RepeatRenderKeepsSingleOverlay(t *testing.T) {
	directions := &fakeDirections{route: sampleRoute()}
	calc := NewCalculator(directions, logrus.New())

	origin := models.Coordinate{Lat: 30.26, Lng: -97.74}
	dest := maps.Destination{PlaceID: "p1"}

	_, err := calc.Route(context.Background(), 1, origin, dest, models.ModeWalking)
	require.NoError(t, err)
	_, err = calc.Route(context.Background(), 1, origin, dest, models.ModeWalking)
	require.NoError(t, err)

	assert.Len(t, calc.ActiveRoutes(), 1)
	assert.Equal(t, StateRendered, calc.StateOf(dest))
}

func TestRoute_FailureIsPerDestination(t *testing.T) {
	directions := &fakeDirections{err: errors.New("no route found")}
	calc := NewCalculator(directions, logrus.New())

	dest := maps.Destination{PlaceID: "p1"}
	_, err := calc.Route(context.Background(), 1, models.Coordinate{}, dest, models.ModeWalking)

	assert.Error(t, err)
	assert.NotErrorIs(t, err, ErrTimedOut)
	assert.Equal(t, StateFailed, calc.StateOf(dest))
	assert.Empty(t, calc.ActiveRoutes())

	// A later destination still computes.
	directions.err = nil
	directions.route = sampleRoute()
	_, err = calc.Route(context.Background(), 1, models.Coordinate{}, maps.Destination{PlaceID: "p2"}, models.ModeWalking)
	assert.NoError(t, err)
}

func TestRoute_TimeoutIsDistinct(t *testing.T) {
	directions := &fakeDirections{err: timeoutErr{}}
	calc := NewCalculator(directions, logrus.New())

	_, err := calc.Route(context.Background(), 1, models.Coordinate{}, maps.Destination{PlaceID: "p1"}, models.ModeWalking)
	assert.ErrorIs(t, err, ErrTimedOut)
}

func TestRoute_Retire(t *testing.T) {
	directions := &fakeDirections{route: sampleRoute()}
	calc := NewCalculator(directions, logrus.New())

	dest := maps.Destination{PlaceID: "p1"}
	_, err := calc.Route(context.Background(), 1, models.Coordinate{}, dest, models.ModeWalking)
	require.NoError(t, err)

	calc.Retire(dest)
	assert.Empty(t, calc.ActiveRoutes())
	assert.Equal(t, StateIdle, calc.StateOf(dest))

	// Re-rendering after retire is served from cache.
	_, err = calc.Route(context.Background(), 1, models.Coordinate{}, dest, models.ModeWalking)
	require.NoError(t, err)
	assert.Equal(t, 1, directions.calls)
}

func TestRoute_SetsMidpointLabel(t *testing.T) {
	directions := &fakeDirections{route: sampleRoute()}
	calc := NewCalculator(directions, logrus.New())

	route, err := calc.Route(context.Background(), 1, models.Coordinate{}, maps.Destination{PlaceID: "p1"}, models.ModeWalking)
	require.NoError(t, err)
	assert.Equal(t, models.Coordinate{Lat: 2, Lng: 2}, route.MidpointLabel)
}
