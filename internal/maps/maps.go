package maps

import (
	"context"
	"errors"
	"net"
	"net/url"

	"rentradar/server/internal/models"
)

var (
	// ErrNoAPIKey means the maps provider is not configured. Callers
	// degrade to static mode rather than failing the whole view.
	ErrNoAPIKey = errors.New("maps api key is not configured")

	// ErrProviderStatus means the provider answered with a non-OK status.
	ErrProviderStatus = errors.New("maps provider returned an error status")
)

// Destination identifies a route endpoint either by coordinate or by the
// provider's opaque place ID.
type Destination struct {
	PlaceID  string
	Location *models.Coordinate
}

// Key returns a stable cache-key fragment for the destination.
func (d Destination) Key() string {
	if d.PlaceID != "" {
		return d.PlaceID
	}
	if d.Location != nil {
		return d.Location.Key()
	}
	return ""
}

// PlacesClient searches for points of interest near a coordinate. Results
// come back provider-ranked nearest-first; an empty slice is a valid
// non-error answer.
type PlacesClient interface {
	Nearby(ctx context.Context, loc models.Coordinate, category models.POICategory, radiusMeters int) ([]models.POI, error)
	Search(ctx context.Context, loc models.Coordinate, query string, radiusMeters int) ([]models.POI, error)
}

// DirectionsClient computes a travel route between two points.
type DirectionsClient interface {
	Directions(ctx context.Context, origin models.Coordinate, dest Destination, mode models.TravelMode) (*models.Route, error)
}

// IsTimeout reports whether err was caused by a request deadline rather
// than a provider or network fault. Timeouts are surfaced to the user
// distinctly from generic failures.
func IsTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var urlErr *url.Error
	if errors.As(err, &urlErr) && urlErr.Timeout() {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}
