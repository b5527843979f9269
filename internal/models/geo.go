package models

import "fmt"

// Coordinate is a WGS84 latitude/longitude pair.
type Coordinate struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Key returns the coordinate rounded to ~1 meter precision, suitable for
// use in cache keys so that jittery inputs still hit the same entry.
func (c Coordinate) Key() string {
	return fmt.Sprintf("%.5f,%.5f", c.Lat, c.Lng)
}

// TravelMode selects how route durations are computed. The calling view
// decides: walking for amenity comparisons, driving for longer distances.
type TravelMode string

const (
	ModeWalking TravelMode = "walking"
	ModeDriving TravelMode = "driving"
)

// Valid reports whether m is a supported travel mode.
func (m TravelMode) Valid() bool {
	return m == ModeWalking || m == ModeDriving
}
