package config

// City represents a supported city and its default map region. The region
// is the fallback viewport when none of the compared properties carry
// coordinates.
type City struct {
	Name      string    `json:"name"`
	Center    []float64 `json:"center"`
	ZoomLevel int       `json:"zoom_level"`
}

// SupportedCities is the list of cities the marketplace operates in.
var SupportedCities = []City{
	{
		Name:      "austin",
		Center:    []float64{30.2672, -97.7431},
		ZoomLevel: 12,
	},
	{
		Name:      "dallas",
		Center:    []float64{32.7767, -96.7970},
		ZoomLevel: 12,
	},
	{
		Name:      "houston",
		Center:    []float64{29.7604, -95.3698},
		ZoomLevel: 12,
	},
	// Add more cities here as needed
}

// DefaultCity is used as the map fallback region when no city matches.
var DefaultCity = SupportedCities[0]

// GetCityNames returns a list of supported city names.
func GetCityNames() []string {
	names := make([]string, len(SupportedCities))
	for i, city := range SupportedCities {
		names[i] = city.Name
	}
	return names
}

// GetCityByName returns a city configuration by name.
func GetCityByName(name string) *City {
	for _, city := range SupportedCities {
		if city.Name == name {
			return &city
		}
	}
	return nil
}
