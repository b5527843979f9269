package models

import "time"

type Property struct {
	ID           int64     `json:"id"`
	URL          string    `json:"url"`
	Title        string    `json:"title"`
	Street       string    `json:"street"`
	Neighborhood string    `json:"neighborhood"`
	PropertyType string    `json:"property_type"`
	City         string    `json:"city"`
	PostalCode   string    `json:"postal_code"`
	MonthlyRent  int       `json:"monthly_rent"`
	Bedrooms     *int      `json:"bedrooms"`
	Bathrooms    *int      `json:"bathrooms"`
	LivingArea   *int      `json:"living_area"`
	Status       string    `json:"status"`
	ListedAt     time.Time `json:"listed_at"`
	ScrapedAt    time.Time `json:"scraped_at"`
	CreatedAt    time.Time `json:"created_at"`
	Latitude     *float64  `json:"latitude"`
	Longitude    *float64  `json:"longitude"`
}

// Coordinate returns the property's location and whether one is set.
// Properties without coordinates are skipped by map, POI and route
// operations rather than treated as errors.
func (p *Property) Coordinate() (Coordinate, bool) {
	if p.Latitude == nil || p.Longitude == nil {
		return Coordinate{}, false
	}
	return Coordinate{Lat: *p.Latitude, Lng: *p.Longitude}, true
}

// PropertyFilter narrows listing queries.
type PropertyFilter struct {
	City     string
	MinRent  int
	MaxRent  int
	Bedrooms int
}
