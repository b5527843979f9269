package session

import (
	"fmt"

	"github.com/paulmach/orb"

	"rentradar/server/config"
	"rentradar/server/internal/models"
)

// Region is a rectangular map area.
type Region struct {
	SouthWest models.Coordinate `json:"south_west"`
	NorthEast models.Coordinate `json:"north_east"`
}

// Viewport describes where the map opens. When no compared property has
// coordinates, Fallback is set and Center/Zoom carry the default region.
type Viewport struct {
	Bounds   *Region           `json:"bounds,omitempty"`
	Center   models.Coordinate `json:"center"`
	Zoom     int               `json:"zoom"`
	Fallback bool              `json:"fallback"`
}

// FallbackRegion converts a configured city into a viewport fallback.
func FallbackRegion(city config.City) Region {
	if len(city.Center) != 2 {
		return Region{}
	}
	center := models.Coordinate{Lat: city.Center[0], Lng: city.Center[1]}
	return Region{SouthWest: center, NorthEast: center}
}

// computeViewport finds the smallest bound containing every locatable
// property. Missing coordinates are skipped, never an error.
func computeViewport(properties []models.Property, fallback Region) Viewport {
	var points orb.MultiPoint
	for _, property := range properties {
		loc, ok := property.Coordinate()
		if !ok {
			continue
		}
		points = append(points, orb.Point{loc.Lng, loc.Lat})
	}

	if len(points) == 0 {
		center := fallback.SouthWest
		return Viewport{
			Center:   center,
			Zoom:     defaultFallbackZoom,
			Fallback: true,
		}
	}

	bound := points.Bound()
	center := bound.Center()
	return Viewport{
		Bounds: &Region{
			SouthWest: models.Coordinate{Lat: bound.Min[1], Lng: bound.Min[0]},
			NorthEast: models.Coordinate{Lat: bound.Max[1], Lng: bound.Max[0]},
		},
		Center: models.Coordinate{Lat: center[1], Lng: center[0]},
		Zoom:   defaultBoundsZoom,
	}
}

const (
	defaultFallbackZoom = 12
	defaultBoundsZoom   = 13
)

func markerID(kind MarkerKind, id int64) string {
	return fmt.Sprintf("%s-%d", kind, id)
}
