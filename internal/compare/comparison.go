package compare

import (
	"sync"
	"time"

	"rentradar/server/internal/models"
	"rentradar/server/internal/poi"
	"rentradar/server/internal/routing"
	"rentradar/server/internal/session"
)

// Mode is how the comparison is presented. Switching modes is purely
// presentational: fetched POI and route data survives the toggle.
type Mode string

const (
	ModeInteractive Mode = "interactive"
	ModeStatic      Mode = "static"
)

// RowStatus is the per-property state of the currently selected search.
type RowStatus string

const (
	StatusNoData     RowStatus = "no_data"
	StatusSearching  RowStatus = "searching"
	StatusDone       RowStatus = "done"
	StatusNoResults  RowStatus = "no_results"
	StatusError      RowStatus = "error"
	StatusNoLocation RowStatus = "no_location"
)

// Row is one property's slot in the comparison table.
type Row struct {
	PropertyID int64         `json:"property_id"`
	Title      string        `json:"title"`
	Color      string        `json:"color"`
	Status     RowStatus     `json:"status"`
	Error      string        `json:"error,omitempty"`
	Nearest    *models.POI   `json:"nearest,omitempty"`
	Route      *models.Route `json:"route,omitempty"`
}

// Comparison is one user's side-by-side property comparison. It owns the
// per-session POI store, route calculator and map session; the comparison
// is the only writer of its rows.
type Comparison struct {
	ID          string
	Placeholder bool

	mu         sync.Mutex
	created    time.Time
	properties []models.Property
	mode       Mode
	term       string
	rows       map[string][]Row
	pois       *poi.Store
	calc       *routing.Calculator
	mapSession *session.MapSession
}

// Properties returns the compared properties in creation order.
func (c *Comparison) Properties() []models.Property {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]models.Property(nil), c.properties...)
}

// Mode returns the current presentation mode.
func (c *Comparison) Mode() Mode {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.mode
}

// Session exposes the map surface, nil for placeholder comparisons.
func (c *Comparison) Session() *session.MapSession {
	return c.mapSession
}

// newRows seeds a term's row set with empty slots in property order.
func (c *Comparison) newRows() []Row {
	rows := make([]Row, len(c.properties))
	for i, property := range c.properties {
		rows[i] = Row{
			PropertyID: property.ID,
			Title:      property.Title,
			Color:      session.ColorForIndex(i),
			Status:     StatusNoData,
		}
	}
	return rows
}

// rowsFor returns the row set for a term, creating it on first use.
// Caller must hold c.mu.
func (c *Comparison) rowsFor(term string) []Row {
	if rows, ok := c.rows[term]; ok {
		return rows
	}
	rows := c.newRows()
	c.rows[term] = rows
	return rows
}

// poiFor finds a fetched POI of the current term by place ID. Caller must
// hold c.mu.
func (c *Comparison) poiFor(propertyID int64, placeID string) *models.POI {
	if c.term == "" {
		return nil
	}
	places := c.pois.Get(propertyID, c.term)
	for i := range places {
		if places[i].PlaceID == placeID {
			return &places[i]
		}
	}
	return nil
}

// Snapshot is the full client-facing view of a comparison.
type Snapshot struct {
	ID          string            `json:"id"`
	Mode        Mode              `json:"mode"`
	Placeholder bool              `json:"placeholder"`
	Message     string            `json:"message,omitempty"`
	Term        string            `json:"term,omitempty"`
	Rows        []Row             `json:"rows"`
	Viewport    *session.Viewport `json:"viewport,omitempty"`
	Markers     []session.Marker  `json:"markers,omitempty"`
	Routes      []*models.Route   `json:"routes,omitempty"`
}

// Snapshot renders the comparison's current state. Static mode omits the
// map surface detail but keeps every fetched row.
func (c *Comparison) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()

	snap := Snapshot{
		ID:          c.ID,
		Mode:        c.mode,
		Placeholder: c.Placeholder,
		Term:        c.term,
	}

	if c.Placeholder {
		snap.Message = "Select at least two properties to compare"
		return snap
	}

	if c.term != "" {
		snap.Rows = append([]Row(nil), c.rows[c.term]...)
	} else {
		snap.Rows = c.newRows()
	}

	if c.mode == ModeInteractive && c.mapSession != nil {
		viewport := c.mapSession.Viewport()
		snap.Viewport = &viewport
		for _, kind := range c.mapSession.MarkerKinds() {
			snap.Markers = append(snap.Markers, c.mapSession.Markers(kind)...)
		}
		snap.Routes = c.calc.ActiveRoutes()
	}
	return snap
}
