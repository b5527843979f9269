package compare

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"rentradar/server/internal/maps"
	"rentradar/server/internal/models"
	"rentradar/server/internal/poi"
	"rentradar/server/internal/routing"
	"rentradar/server/internal/searches"
	"rentradar/server/internal/session"
)

var (
	ErrNotFound      = errors.New("comparison not found")
	ErrPlaceholder   = errors.New("comparison needs at least two properties")
	ErrNoInteractive = errors.New("interactive mode is unavailable without a maps provider")
	ErrUnknownProp   = errors.New("property is not part of this comparison")
	ErrMissingLatLng = errors.New("property has no location data")
	ErrInvalidMode   = errors.New("unknown presentation mode")
)

// PropertySource is the slice of the database the service needs.
type PropertySource interface {
	GetPropertiesByIDs(ids []int64) ([]models.Property, error)
}

// Service creates and drives comparisons. One locator (with its shared
// places cache) serves all comparisons; each comparison gets its own route
// calculator and map session.
type Service struct {
	db         PropertySource
	locator    *poi.Locator
	directions maps.DirectionsClient
	recent     *searches.Store
	logger     *logrus.Logger
	fallback   session.Region

	// interactive is false when no maps API key is configured; every
	// comparison then degrades to static mode.
	interactive bool

	mu          sync.RWMutex
	comparisons map[string]*Comparison
}

func NewService(db PropertySource, locator *poi.Locator, directions maps.DirectionsClient, recent *searches.Store, fallback session.Region, interactive bool, logger *logrus.Logger) *Service {
	return &Service{
		db:          db,
		locator:     locator,
		directions:  directions,
		recent:      recent,
		logger:      logger,
		fallback:    fallback,
		interactive: interactive,
		comparisons: make(map[string]*Comparison),
	}
}

// Create builds a comparison for the given property IDs. Fewer than two
// resolvable properties yields a placeholder comparison: no map session is
// initialized and no network work happens.
func (s *Service) Create(ids []int64) (*Comparison, error) {
	properties, err := s.db.GetPropertiesByIDs(ids)
	if err != nil {
		return nil, fmt.Errorf("failed to load properties: %w", err)
	}

	comparison := &Comparison{
		rows:    make(map[string][]Row),
		pois:    poi.NewStore(),
		created: time.Now(),
	}

	if len(properties) < 2 {
		// Placeholder: addressable, but no map session and no network.
		comparison.ID = uuid.NewString()
		comparison.Placeholder = true
		comparison.mode = ModeStatic

		s.mu.Lock()
		s.comparisons[comparison.ID] = comparison
		s.mu.Unlock()
		return comparison, nil
	}

	comparison.properties = properties
	comparison.calc = routing.NewCalculator(s.directions, s.logger)
	comparison.mapSession = session.New(properties, s.fallback)
	comparison.ID = comparison.mapSession.ID
	if s.interactive {
		comparison.mode = ModeInteractive
	} else {
		comparison.mode = ModeStatic
	}

	s.mu.Lock()
	s.comparisons[comparison.ID] = comparison
	s.mu.Unlock()

	s.logger.WithFields(logrus.Fields{
		"comparison": comparison.ID,
		"properties": len(properties),
		"mode":       comparison.mode,
	}).Info("Created comparison session")
	return comparison, nil
}

// Get returns a comparison by ID.
func (s *Service) Get(id string) (*Comparison, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	comparison, ok := s.comparisons[id]
	return comparison, ok
}

// Teardown removes a comparison and tears down its map session. Idempotent.
func (s *Service) Teardown(id string) {
	s.mu.Lock()
	comparison, ok := s.comparisons[id]
	delete(s.comparisons, id)
	s.mu.Unlock()

	if ok && comparison.mapSession != nil {
		comparison.mapSession.Teardown()
	}
}

// SetMode toggles between interactive and static presentation and returns
// the resulting snapshot. Data fetched so far is untouched.
func (s *Service) SetMode(id string, mode Mode) (Snapshot, error) {
	if mode != ModeInteractive && mode != ModeStatic {
		return Snapshot{}, ErrInvalidMode
	}

	comparison, ok := s.Get(id)
	if !ok {
		return Snapshot{}, ErrNotFound
	}
	if mode == ModeInteractive && !s.interactive {
		return Snapshot{}, ErrNoInteractive
	}

	comparison.mu.Lock()
	comparison.mode = mode
	comparison.mu.Unlock()
	if comparison.mapSession != nil {
		comparison.mapSession.Touch()
	}
	return comparison.Snapshot(), nil
}

// Locate runs the query for every compared property in list order, finds
// each property's nearest result and computes its route. Failures stay
// local to their row.
func (s *Service) Locate(id string, query poi.Query, mode models.TravelMode) (Snapshot, error) {
	comparison, ok := s.Get(id)
	if !ok {
		return Snapshot{}, ErrNotFound
	}
	if comparison.Placeholder {
		return Snapshot{}, ErrPlaceholder
	}
	if mode == "" {
		mode = models.ModeWalking
	}
	if !mode.Valid() {
		return Snapshot{}, fmt.Errorf("unsupported travel mode: %s", mode)
	}

	term := query.Term()
	if query.Keyword != "" && s.recent != nil {
		s.recent.Add(query.Keyword)
	}

	comparison.mu.Lock()
	comparison.term = term
	rows := comparison.rowsFor(term)
	for i := range rows {
		rows[i].Status = StatusSearching
		rows[i].Error = ""
	}
	properties := append([]models.Property(nil), comparison.properties...)
	comparison.mu.Unlock()

	// The session context ties in-flight provider requests to the
	// comparison's lifetime: teardown aborts them.
	ctx := comparison.mapSession.Context()

	results := s.locator.LocateForProperties(ctx, properties, query)

	for i, result := range results {
		comparison.mu.Lock()
		row := &comparison.rows[term][i]
		prior := row.Nearest

		// A re-search replaces the row wholesale: nothing from the
		// previous search for this term survives into the new result.
		switch {
		case result.NoLocation:
			row.Status = StatusNoLocation
			row.Nearest = nil
			row.Route = nil
		case result.Err != nil:
			row.Status = StatusError
			row.Error = locateErrorMessage(result.Err)
			row.Nearest = nil
			row.Route = nil
		case len(result.POIs) == 0:
			row.Status = StatusNoResults
			row.Nearest = nil
			row.Route = nil
			comparison.pois.Replace(result.PropertyID, term, nil)
		default:
			comparison.pois.Replace(result.PropertyID, term, result.POIs)
			nearest := result.POIs[0]
			row.Nearest = &nearest
			row.Status = StatusDone
		}
		nearest := row.Nearest
		comparison.mu.Unlock()

		// The old nearest's rendered route comes down with it.
		if prior != nil && (nearest == nil || nearest.PlaceID != prior.PlaceID) {
			comparison.calc.Retire(maps.Destination{PlaceID: prior.PlaceID})
		}

		if nearest == nil {
			continue
		}

		// Route to the nearest result; a route failure downgrades only
		// this row's route, the POI result stands.
		property := properties[i]
		origin, _ := property.Coordinate()
		dest := maps.Destination{PlaceID: nearest.PlaceID, Location: &nearest.Location}

		route, err := comparison.calc.Route(ctx, property.ID, origin, dest, mode)
		comparison.mu.Lock()
		row = &comparison.rows[term][i]
		if err != nil {
			row.Route = nil
			row.Error = routeErrorMessage(err)
		} else {
			row.Route = route
		}
		comparison.mu.Unlock()
	}

	s.refreshMarkers(comparison, term)
	comparison.mapSession.Touch()
	return comparison.Snapshot(), nil
}

// RouteTo computes (or re-renders) a route from one compared property to a
// specific place, e.g. when the user clicks a non-nearest result.
func (s *Service) RouteTo(id string, propertyID int64, placeID string, location *models.Coordinate, mode models.TravelMode) (*models.Route, error) {
	comparison, ok := s.Get(id)
	if !ok {
		return nil, ErrNotFound
	}
	if comparison.Placeholder {
		return nil, ErrPlaceholder
	}
	if mode == "" {
		mode = models.ModeWalking
	}

	var origin models.Coordinate
	found := false
	for _, property := range comparison.Properties() {
		if property.ID != propertyID {
			continue
		}
		loc, ok := property.Coordinate()
		if !ok {
			return nil, ErrMissingLatLng
		}
		origin = loc
		found = true
		break
	}
	if !found {
		return nil, ErrUnknownProp
	}

	dest := maps.Destination{PlaceID: placeID, Location: location}
	route, err := comparison.calc.Route(comparison.mapSession.Context(), propertyID, origin, dest, mode)
	if err != nil {
		return nil, err
	}

	// Selecting a specific destination highlights its property and opens
	// the place's info window with the route summary.
	comparison.mapSession.HighlightProperty(propertyID)
	comparison.mu.Lock()
	place := comparison.poiFor(propertyID, placeID)
	term := comparison.term
	comparison.mu.Unlock()
	if place != nil {
		comparison.mapSession.ShowInfoWindow(session.LayerPOI, term+":"+place.PlaceID, session.InfoWindowContent{
			Title: place.Name,
			Lines: []string{place.Address, route.Distance + " · " + route.Duration},
		})
	}

	comparison.mapSession.Touch()
	return route, nil
}

// refreshMarkers rebuilds the term's POI marker layer from the store, one
// marker per displayed POI, colored to match the owning property's row.
func (s *Service) refreshMarkers(comparison *Comparison, term string) {
	kind := session.MarkerKind(term)
	var markers []session.Marker

	comparison.mu.Lock()
	for i, property := range comparison.properties {
		for _, place := range comparison.pois.Get(property.ID, term) {
			markers = append(markers, session.Marker{
				ID:       term + ":" + place.PlaceID,
				Kind:     kind,
				Location: place.Location,
				Label:    place.Name,
				Color:    session.ColorForIndex(i),
			})
		}
	}
	comparison.mu.Unlock()

	comparison.mapSession.SetMarkers(kind, markers)
}

// SweepIdle tears down comparisons idle past the TTL and reports how many
// were removed.
func (s *Service) SweepIdle(ttl time.Duration) int {
	cutoff := time.Now().Add(-ttl)

	s.mu.RLock()
	var stale []string
	for id, comparison := range s.comparisons {
		idle := comparison.created
		if comparison.mapSession != nil {
			idle = comparison.mapSession.IdleSince()
		}
		if idle.Before(cutoff) {
			stale = append(stale, id)
		}
	}
	s.mu.RUnlock()

	for _, id := range stale {
		s.logger.WithField("comparison", id).Info("Sweeping idle comparison session")
		s.Teardown(id)
	}
	return len(stale)
}

func locateErrorMessage(err error) string {
	if maps.IsTimeout(err) {
		return "search timed out"
	}
	if errors.Is(err, maps.ErrNoAPIKey) {
		return "maps provider is unavailable"
	}
	return "unable to find nearby places"
}

func routeErrorMessage(err error) string {
	if errors.Is(err, routing.ErrTimedOut) {
		return "route request timed out"
	}
	return "unable to calculate route"
}
