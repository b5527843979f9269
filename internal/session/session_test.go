package session

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rentradar/server/internal/models"
)

func floatPtr(v float64) *float64 { return &v }

func located(id int64, lat, lng float64) models.Property {
	return models.Property{ID: id, Title: "Unit", Latitude: floatPtr(lat), Longitude: floatPtr(lng)}
}

var testFallback = Region{SouthWest: models.Coordinate{Lat: 30.2672, Lng: -97.7431}}

func TestNew_ViewportContainsAllProperties(t *testing.T) {
	s := New([]models.Property{
		located(1, 30.25, -97.76),
		located(2, 30.29, -97.72),
	}, testFallback)

	viewport := s.Viewport()
	require.NotNil(t, viewport.Bounds)
	assert.False(t, viewport.Fallback)
	assert.Equal(t, 30.25, viewport.Bounds.SouthWest.Lat)
	assert.Equal(t, -97.76, viewport.Bounds.SouthWest.Lng)
	assert.Equal(t, 30.29, viewport.Bounds.NorthEast.Lat)
	assert.Equal(t, -97.72, viewport.Bounds.NorthEast.Lng)
	assert.InDelta(t, 30.27, viewport.Center.Lat, 0.001)
}

func TestNew_AllPropertiesMissingCoordinatesFallsBack(t *testing.T) {
	s := New([]models.Property{{ID: 1}, {ID: 2}}, testFallback)

	viewport := s.Viewport()
	assert.True(t, viewport.Fallback)
	assert.Nil(t, viewport.Bounds)
	assert.Equal(t, testFallback.SouthWest, viewport.Center)
	assert.Empty(t, s.Markers(KindProperty))
}

func TestSetPropertyMarkers_SkipsMissingCoordinatesAndCyclesPalette(t *testing.T) {
	s := New([]models.Property{
		located(1, 30.25, -97.76),
		{ID: 2}, // no coordinates
		located(3, 30.29, -97.72),
		located(4, 30.28, -97.73),
	}, testFallback)

	markers := s.Markers(KindProperty)
	require.Len(t, markers, 3)
	// Colors follow list index, not marker index, so they stay aligned
	// with the comparison table rows.
	assert.Equal(t, ColorForIndex(0), markers[0].Color)
	assert.Equal(t, ColorForIndex(2), markers[1].Color)
	assert.Equal(t, ColorForIndex(3), markers[2].Color)
	assert.Equal(t, ColorForIndex(0), markers[2].Color, "palette cycles after three properties")
}

func TestHighlightProperty(t *testing.T) {
	s := New([]models.Property{
		located(1, 30.25, -97.76),
		located(2, 30.29, -97.72),
	}, testFallback)

	s.HighlightProperty(2)
	markers := s.Markers(KindProperty)
	assert.False(t, markers[0].Highlighted)
	assert.True(t, markers[1].Highlighted)

	s.HighlightProperty(1)
	markers = s.Markers(KindProperty)
	assert.True(t, markers[0].Highlighted)
	assert.False(t, markers[1].Highlighted)
}

func TestMarkerKindsAreClearedIndependently(t *testing.T) {
	s := New([]models.Property{located(1, 30.25, -97.76)}, testFallback)

	s.SetMarkers("gym", []Marker{{ID: "gym-1", Kind: "gym"}})
	s.SetMarkers("grocery", []Marker{{ID: "grocery-1", Kind: "grocery"}})

	s.ClearMarkers("gym")

	assert.Empty(t, s.Markers("gym"))
	assert.Len(t, s.Markers("grocery"), 1)
	assert.Len(t, s.Markers(KindProperty), 1)
}

func TestShowInfoWindow_AtMostOnePerLayer(t *testing.T) {
	s := New([]models.Property{located(1, 30.25, -97.76)}, testFallback)

	s.ShowInfoWindow(LayerProperty, "property-1", InfoWindowContent{Title: "Unit A"})
	s.ShowInfoWindow(LayerPOI, "gym-1", InfoWindowContent{Title: "Gym"})
	s.ShowInfoWindow(LayerProperty, "property-2", InfoWindowContent{Title: "Unit B"})

	property := s.OpenInfoWindow(LayerProperty)
	require.NotNil(t, property)
	assert.Equal(t, "property-2", property.MarkerID, "opening a window closes the prior one on the same layer")

	poiWindow := s.OpenInfoWindow(LayerPOI)
	require.NotNil(t, poiWindow)
	assert.Equal(t, "gym-1", poiWindow.MarkerID, "other layer's window stays open")
}

func TestTeardown_IsIdempotent(t *testing.T) {
	s := New([]models.Property{located(1, 30.25, -97.76)}, testFallback)
	s.SetMarkers("gym", []Marker{{ID: "gym-1"}})
	s.ShowInfoWindow(LayerProperty, "property-1", InfoWindowContent{})

	s.Teardown()
	s.Teardown()

	assert.True(t, s.TornDown())
	assert.Empty(t, s.Markers(KindProperty))
	assert.Empty(t, s.Markers("gym"))
	assert.Nil(t, s.OpenInfoWindow(LayerProperty))
	assert.Error(t, s.Context().Err(), "session context is cancelled at teardown")

	// Mutations after teardown are ignored.
	s.SetMarkers("gym", []Marker{{ID: "gym-2"}})
	assert.Empty(t, s.Markers("gym"))
}
