package models

// POICategory is one of the fixed amenity categories a comparison can
// search for. Free-text queries bypass the enumeration.
type POICategory string

const (
	CategoryGym        POICategory = "gym"
	CategoryGrocery    POICategory = "grocery"
	CategoryRestaurant POICategory = "restaurant"
	CategorySchool     POICategory = "school"
	CategoryCafe       POICategory = "cafe"
	CategoryPark       POICategory = "park"
)

// Categories lists the supported amenity categories in display order.
var Categories = []POICategory{
	CategoryGym,
	CategoryGrocery,
	CategoryRestaurant,
	CategorySchool,
	CategoryCafe,
	CategoryPark,
}

// Valid reports whether c is one of the fixed categories.
func (c POICategory) Valid() bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}

// POI is a place near a property. POIs are transient: they live for the
// duration of a comparison session and are replaced when the same category
// is searched again for the same property.
type POI struct {
	PlaceID  string      `json:"place_id"`
	Name     string      `json:"name"`
	Location Coordinate  `json:"location"`
	Category POICategory `json:"category,omitempty"`
	Query    string      `json:"query,omitempty"`
	Address  string      `json:"address,omitempty"`
	Rating   *float64    `json:"rating,omitempty"`
}
