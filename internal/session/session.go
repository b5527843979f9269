package session

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"rentradar/server/internal/models"
)

// Layer separates info-window bookkeeping: opening a property window never
// closes a POI window and vice versa, but within one layer at most one
// window is open.
type Layer string

const (
	LayerProperty Layer = "property"
	LayerPOI      Layer = "poi"
)

// MarkerKind groups markers so a whole kind can be cleared in one
// operation ("clear all gym markers") without touching the others.
type MarkerKind string

// KindProperty is the base layer of compared-property markers.
const KindProperty MarkerKind = "property"

// markerPalette is the fixed rotation used to keep each compared property
// visually distinct, and consistent between map markers and table rows.
var markerPalette = []string{"#E63946", "#457B9D", "#2A9D8F"}

// ColorForIndex returns the palette color for the i-th compared property.
func ColorForIndex(i int) string {
	return markerPalette[i%len(markerPalette)]
}

// Marker is one rendered point on the map surface.
type Marker struct {
	ID          string            `json:"id"`
	Kind        MarkerKind        `json:"kind"`
	Location    models.Coordinate `json:"location"`
	Label       string            `json:"label"`
	Color       string            `json:"color"`
	Highlighted bool              `json:"highlighted"`
}

// InfoWindowContent is the declarative payload rendered into an open info
// window. Actions are bound identifiers (e.g. category buttons), not
// markup with inline listeners.
type InfoWindowContent struct {
	Title   string   `json:"title"`
	Lines   []string `json:"lines"`
	Actions []string `json:"actions,omitempty"`
}

// InfoWindow is an open popup anchored to a marker.
type InfoWindow struct {
	MarkerID string            `json:"marker_id"`
	Layer    Layer             `json:"layer"`
	Content  InfoWindowContent `json:"content"`
}

// MapSession owns one interactive map surface: its markers, open info
// windows and viewport. Nothing else mutates this state; collaborators
// pass data in and read snapshots out.
type MapSession struct {
	ID string

	mu          sync.Mutex
	viewport    Viewport
	markers     map[MarkerKind][]Marker
	openWindows map[Layer]*InfoWindow
	lastActive  time.Time
	torndown    bool

	ctx    context.Context
	cancel context.CancelFunc
}

// New builds a map session for the given properties. The viewport is the
// smallest region containing every property that has coordinates; with no
// locatable property at all it falls back to the default region.
func New(properties []models.Property, fallback Region) *MapSession {
	ctx, cancel := context.WithCancel(context.Background())
	s := &MapSession{
		ID:          uuid.NewString(),
		viewport:    computeViewport(properties, fallback),
		markers:     make(map[MarkerKind][]Marker),
		openWindows: make(map[Layer]*InfoWindow),
		lastActive:  time.Now(),
		ctx:         ctx,
		cancel:      cancel,
	}
	s.SetPropertyMarkers(properties)
	return s
}

// Context is cancelled at teardown so in-flight provider requests tied to
// this session are aborted, not merely ignored.
func (s *MapSession) Context() context.Context {
	return s.ctx
}

// SetPropertyMarkers replaces the property marker layer. Properties
// without coordinates are skipped; colors cycle through the fixed palette
// by list index so they match the comparison table.
func (s *MapSession) SetPropertyMarkers(properties []models.Property) {
	markers := make([]Marker, 0, len(properties))
	for i, property := range properties {
		loc, ok := property.Coordinate()
		if !ok {
			continue
		}
		markers = append(markers, Marker{
			ID:       markerID(KindProperty, property.ID),
			Kind:     KindProperty,
			Location: loc,
			Label:    property.Title,
			Color:    ColorForIndex(i),
		})
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.torndown {
		return
	}
	s.markers[KindProperty] = markers
	s.lastActive = time.Now()
}

// HighlightProperty marks the selected property's marker and clears the
// highlight from the rest.
func (s *MapSession) HighlightProperty(propertyID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.torndown {
		return
	}

	id := markerID(KindProperty, propertyID)
	for i := range s.markers[KindProperty] {
		s.markers[KindProperty][i].Highlighted = s.markers[KindProperty][i].ID == id
	}
	s.lastActive = time.Now()
}

// SetMarkers replaces all markers of one kind.
func (s *MapSession) SetMarkers(kind MarkerKind, markers []Marker) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.torndown {
		return
	}
	s.markers[kind] = markers
	s.lastActive = time.Now()
}

// ClearMarkers removes every marker of the given kind; other kinds are
// untouched.
func (s *MapSession) ClearMarkers(kind MarkerKind) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.torndown {
		return
	}
	delete(s.markers, kind)
	s.lastActive = time.Now()
}

// Markers returns a snapshot of the markers of one kind.
func (s *MapSession) Markers(kind MarkerKind) []Marker {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Marker(nil), s.markers[kind]...)
}

// MarkerKinds lists the kinds that currently have markers.
func (s *MapSession) MarkerKinds() []MarkerKind {
	s.mu.Lock()
	defer s.mu.Unlock()

	kinds := make([]MarkerKind, 0, len(s.markers))
	for kind := range s.markers {
		kinds = append(kinds, kind)
	}
	return kinds
}

// ShowInfoWindow opens a window on the given layer, closing the layer's
// previous window first.
func (s *MapSession) ShowInfoWindow(layer Layer, markerID string, content InfoWindowContent) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.torndown {
		return
	}
	s.openWindows[layer] = &InfoWindow{
		MarkerID: markerID,
		Layer:    layer,
		Content:  content,
	}
	s.lastActive = time.Now()
}

// CloseInfoWindow closes the layer's window if one is open.
func (s *MapSession) CloseInfoWindow(layer Layer) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.openWindows, layer)
}

// OpenInfoWindow returns the layer's open window, or nil.
func (s *MapSession) OpenInfoWindow(layer Layer) *InfoWindow {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.openWindows[layer]
}

// Viewport returns the session's map region.
func (s *MapSession) Viewport() Viewport {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.viewport
}

// IdleSince reports the last time the session was touched.
func (s *MapSession) IdleSince() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastActive
}

// Touch refreshes the idle clock.
func (s *MapSession) Touch() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastActive = time.Now()
}

// Teardown removes every marker and open window and cancels the session
// context. Safe to call any number of times.
func (s *MapSession) Teardown() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.torndown {
		return
	}
	s.torndown = true
	s.markers = make(map[MarkerKind][]Marker)
	s.openWindows = make(map[Layer]*InfoWindow)
	s.cancel()
}

// TornDown reports whether Teardown has run.
func (s *MapSession) TornDown() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.torndown
}
