package poi

import (
	"context"
	"errors"
	"fmt"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"github.com/sirupsen/logrus"

	"rentradar/server/internal/maps"
	"rentradar/server/internal/models"
)

// ErrNoQuery means a locate request carried neither a category nor a
// free-text keyword.
var ErrNoQuery = errors.New("locate request needs a category or a keyword")

// Query is what the user asked to find: a fixed amenity category or a
// free-text keyword. Exactly one should be set.
type Query struct {
	Category models.POICategory `json:"category,omitempty"`
	Keyword  string             `json:"keyword,omitempty"`

	// RadiusMeters overrides the configured default when positive.
	RadiusMeters int `json:"radius_meters,omitempty"`
}

// Term returns the store/cache key for the query. Category searches and
// keyword searches for the same text never collide.
func (q Query) Term() string {
	if q.Keyword != "" {
		return "q:" + q.Keyword
	}
	return string(q.Category)
}

func (q Query) validate() error {
	if q.Keyword != "" {
		return nil
	}
	if q.Category == "" {
		return ErrNoQuery
	}
	if !q.Category.Valid() {
		return fmt.Errorf("unknown category: %s", q.Category)
	}
	return nil
}

// Locator resolves (coordinate, query) pairs into provider-ranked POI
// lists. Results are cached briefly so repeated searches around the same
// spot do not re-hit the provider.
type Locator struct {
	places         maps.PlacesClient
	cache          *gocache.Cache
	logger         *logrus.Logger
	categoryRadius int
	keywordRadius  int
}

func NewLocator(places maps.PlacesClient, categoryRadius, keywordRadius int, cacheTTL time.Duration, logger *logrus.Logger) *Locator {
	return &Locator{
		places:         places,
		cache:          gocache.New(cacheTTL, 2*cacheTTL),
		logger:         logger,
		categoryRadius: categoryRadius,
		keywordRadius:  keywordRadius,
	}
}

// Locate finds places near loc matching the query. Ordering is the
// provider's (nearest-first); an empty result is not an error.
func (l *Locator) Locate(ctx context.Context, loc models.Coordinate, query Query) ([]models.POI, error) {
	if err := query.validate(); err != nil {
		return nil, err
	}

	cacheKey := loc.Key() + "|" + query.Term()
	if cached, found := l.cache.Get(cacheKey); found {
		return cached.([]models.POI), nil
	}

	var (
		pois []models.POI
		err  error
	)
	if query.Keyword != "" {
		radius := query.RadiusMeters
		if radius <= 0 {
			radius = l.keywordRadius
		}
		pois, err = l.places.Search(ctx, loc, query.Keyword, radius)
	} else {
		radius := query.RadiusMeters
		if radius <= 0 {
			radius = l.categoryRadius
		}
		pois, err = l.places.Nearby(ctx, loc, query.Category, radius)
	}
	if err != nil {
		l.logger.WithError(err).WithFields(logrus.Fields{
			"term": query.Term(),
			"lat":  loc.Lat,
			"lng":  loc.Lng,
		}).Error("Places lookup failed")
		return nil, err
	}

	l.cache.Set(cacheKey, pois, gocache.DefaultExpiration)
	return pois, nil
}

// BatchResult is the per-property outcome of a batch locate. A failure or
// a missing coordinate for one property never aborts the others.
type BatchResult struct {
	PropertyID int64
	NoLocation bool
	POIs       []models.POI
	Err        error
}

// LocateForProperties runs the query against each property strictly in
// list order, one request at a time, to bound provider load and keep
// results arriving in a predictable order.
func (l *Locator) LocateForProperties(ctx context.Context, properties []models.Property, query Query) []BatchResult {
	results := make([]BatchResult, 0, len(properties))
	for _, property := range properties {
		result := BatchResult{PropertyID: property.ID}

		loc, ok := property.Coordinate()
		if !ok {
			result.NoLocation = true
			results = append(results, result)
			continue
		}

		pois, err := l.Locate(ctx, loc, query)
		if err != nil {
			result.Err = err
			results = append(results, result)
			continue
		}

		result.POIs = pois
		results = append(results, result)
	}
	return results
}
