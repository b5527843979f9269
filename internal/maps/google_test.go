package maps

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rentradar/server/internal/models"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) (*GoogleClient, *httptest.Server) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client := NewGoogleClient("test-key", 5*time.Second, logrus.New())
	client.placesURL = server.URL
	client.directionsURL = server.URL
	return client, server
}

func TestNearby(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "gym", r.URL.Query().Get("type"))
		assert.Equal(t, "test-key", r.URL.Query().Get("key"))
		w.Write([]byte(`{
			"status": "OK",
			"results": [
				{
					"place_id": "p1",
					"name": "Iron Works Gym",
					"vicinity": "12 Main St",
					"geometry": {"location": {"lat": 30.27, "lng": -97.74}},
					"rating": 4.5
				}
			]
		}`))
	})

	pois, err := client.Nearby(context.Background(), models.Coordinate{Lat: 30.26, Lng: -97.75}, models.CategoryGym, 2000)
	require.NoError(t, err)
	require.Len(t, pois, 1)
	assert.Equal(t, "p1", pois[0].PlaceID)
	assert.Equal(t, "Iron Works Gym", pois[0].Name)
	assert.Equal(t, models.CategoryGym, pois[0].Category)
	assert.Equal(t, "12 Main St", pois[0].Address)
	require.NotNil(t, pois[0].Rating)
	assert.Equal(t, 4.5, *pois[0].Rating)
}

func TestNearby_ZeroResults(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status": "ZERO_RESULTS", "results": []}`))
	})

	pois, err := client.Nearby(context.Background(), models.Coordinate{}, models.CategoryPark, 2000)
	assert.NoError(t, err)
	assert.Empty(t, pois)
}

func TestNearby_ProviderError(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status": "OVER_QUERY_LIMIT", "results": []}`))
	})

	_, err := client.Nearby(context.Background(), models.Coordinate{}, models.CategoryGym, 2000)
	assert.ErrorIs(t, err, ErrProviderStatus)
}

func TestNearby_NoAPIKey(t *testing.T) {
	client := NewGoogleClient("", 5*time.Second, logrus.New())
	_, err := client.Nearby(context.Background(), models.Coordinate{}, models.CategoryGym, 2000)
	assert.ErrorIs(t, err, ErrNoAPIKey)
}

func TestSearch_UsesFormattedAddress(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "climbing wall", r.URL.Query().Get("query"))
		w.Write([]byte(`{
			"status": "OK",
			"results": [
				{
					"place_id": "p2",
					"name": "Crux Climbing",
					"formatted_address": "500 E 5th St, Austin",
					"geometry": {"location": {"lat": 30.26, "lng": -97.73}}
				}
			]
		}`))
	})

	pois, err := client.Search(context.Background(), models.Coordinate{}, "climbing wall", 5000)
	require.NoError(t, err)
	require.Len(t, pois, 1)
	assert.Equal(t, "500 E 5th St, Austin", pois[0].Address)
	assert.Equal(t, "climbing wall", pois[0].Query)
}

func TestDirections(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "place_id:p1", r.URL.Query().Get("destination"))
		assert.Equal(t, "walking", r.URL.Query().Get("mode"))
		w.Write([]byte(`{
			"status": "OK",
			"routes": [{"legs": [{
				"distance": {"text": "1.2 mi", "value": 1931},
				"duration": {"text": "8 min"},
				"steps": [
					{"distance": {"value": 1000}, "start_location": {"lat": 1, "lng": 1}, "end_location": {"lat": 2, "lng": 2}},
					{"distance": {"value": 931}, "start_location": {"lat": 2, "lng": 2}, "end_location": {"lat": 3, "lng": 3}}
				]
			}]}]
		}`))
	})

	route, err := client.Directions(context.Background(), models.Coordinate{Lat: 1, Lng: 1}, Destination{PlaceID: "p1"}, models.ModeWalking)
	require.NoError(t, err)
	assert.Equal(t, "1.2 mi", route.Distance)
	assert.Equal(t, "8 min", route.Duration)
	assert.Len(t, route.Steps, 2)
	// Waypoints cover every step boundary including the final endpoint.
	assert.Len(t, route.Waypoints, 3)
	assert.Equal(t, models.Coordinate{Lat: 3, Lng: 3}, route.Waypoints[2])
}

func TestDirections_NotFound(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status": "NOT_FOUND", "routes": []}`))
	})

	_, err := client.Directions(context.Background(), models.Coordinate{}, Destination{PlaceID: "p1"}, models.ModeDriving)
	assert.ErrorIs(t, err, ErrProviderStatus)
}
