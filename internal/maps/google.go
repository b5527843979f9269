package maps

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/sirupsen/logrus"

	"rentradar/server/internal/models"
)

const (
	googlePlacesBaseURL     = "https://maps.googleapis.com/maps/api/place"
	googleDirectionsBaseURL = "https://maps.googleapis.com/maps/api/directions/json"
)

// googleCategoryTypes maps marketplace categories to Google place types.
var googleCategoryTypes = map[models.POICategory]string{
	models.CategoryGym:        "gym",
	models.CategoryGrocery:    "supermarket",
	models.CategoryRestaurant: "restaurant",
	models.CategorySchool:     "school",
	models.CategoryCafe:       "cafe",
	models.CategoryPark:       "park",
}

// GoogleClient talks to the Google Places and Directions HTTP APIs. It
// implements both PlacesClient and DirectionsClient.
type GoogleClient struct {
	apiKey        string
	logger        *logrus.Logger
	client        *http.Client
	placesURL     string
	directionsURL string
}

func NewGoogleClient(apiKey string, timeout time.Duration, logger *logrus.Logger) *GoogleClient {
	return &GoogleClient{
		apiKey:        apiKey,
		logger:        logger,
		client:        &http.Client{Timeout: timeout},
		placesURL:     googlePlacesBaseURL,
		directionsURL: googleDirectionsBaseURL,
	}
}

type googlePlace struct {
	PlaceID  string `json:"place_id"`
	Name     string `json:"name"`
	Vicinity string `json:"vicinity"`
	// Text search responses carry the address here instead of vicinity.
	FormattedAddress string `json:"formatted_address"`
	Geometry         struct {
		Location struct {
			Lat float64 `json:"lat"`
			Lng float64 `json:"lng"`
		} `json:"location"`
	} `json:"geometry"`
	Rating *float64 `json:"rating,omitempty"`
}

type googlePlacesResponse struct {
	Results []googlePlace `json:"results"`
	Status  string        `json:"status"`
}

// Nearby fetches POIs of the given category around loc using the Nearby
// Search API.
func (c *GoogleClient) Nearby(ctx context.Context, loc models.Coordinate, category models.POICategory, radiusMeters int) ([]models.POI, error) {
	if c.apiKey == "" {
		return nil, ErrNoAPIKey
	}

	params := url.Values{}
	params.Set("location", fmt.Sprintf("%.6f,%.6f", loc.Lat, loc.Lng))
	params.Set("radius", fmt.Sprintf("%d", radiusMeters))
	params.Set("type", googleCategoryTypes[category])
	params.Set("key", c.apiKey)

	places, err := c.fetchPlaces(ctx, c.placesURL+"/nearbysearch/json?"+params.Encode())
	if err != nil {
		return nil, err
	}
	for i := range places {
		places[i].Category = category
	}
	return places, nil
}

// Search fetches POIs matching a free-text query around loc using the Text
// Search API.
func (c *GoogleClient) Search(ctx context.Context, loc models.Coordinate, query string, radiusMeters int) ([]models.POI, error) {
	if c.apiKey == "" {
		return nil, ErrNoAPIKey
	}

	params := url.Values{}
	params.Set("query", query)
	params.Set("location", fmt.Sprintf("%.6f,%.6f", loc.Lat, loc.Lng))
	params.Set("radius", fmt.Sprintf("%d", radiusMeters))
	params.Set("key", c.apiKey)

	places, err := c.fetchPlaces(ctx, c.placesURL+"/textsearch/json?"+params.Encode())
	if err != nil {
		return nil, err
	}
	for i := range places {
		places[i].Query = query
	}
	return places, nil
}

func (c *GoogleClient) fetchPlaces(ctx context.Context, apiURL string) ([]models.POI, error) {
	body, err := c.get(ctx, apiURL)
	if err != nil {
		return nil, err
	}

	var result googlePlacesResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("failed to parse places response: %w", err)
	}

	// ZERO_RESULTS is a valid outcome, not a provider fault.
	if result.Status != "OK" && result.Status != "ZERO_RESULTS" {
		return nil, fmt.Errorf("%w: %s", ErrProviderStatus, result.Status)
	}

	pois := make([]models.POI, 0, len(result.Results))
	for _, place := range result.Results {
		address := place.Vicinity
		if address == "" {
			address = place.FormattedAddress
		}
		pois = append(pois, models.POI{
			PlaceID: place.PlaceID,
			Name:    place.Name,
			Location: models.Coordinate{
				Lat: place.Geometry.Location.Lat,
				Lng: place.Geometry.Location.Lng,
			},
			Address: address,
			Rating:  place.Rating,
		})
	}
	return pois, nil
}

type googleDirectionsResponse struct {
	Status string `json:"status"`
	Routes []struct {
		Legs []struct {
			Distance struct {
				Text  string `json:"text"`
				Value int    `json:"value"`
			} `json:"distance"`
			Duration struct {
				Text string `json:"text"`
			} `json:"duration"`
			Steps []struct {
				Distance struct {
					Value int `json:"value"`
				} `json:"distance"`
				StartLocation struct {
					Lat float64 `json:"lat"`
					Lng float64 `json:"lng"`
				} `json:"start_location"`
				EndLocation struct {
					Lat float64 `json:"lat"`
					Lng float64 `json:"lng"`
				} `json:"end_location"`
			} `json:"steps"`
		} `json:"legs"`
	} `json:"routes"`
}

// Directions requests a route from origin to dest. The returned route
// carries the summary strings and the step geometry; label placement is
// the caller's concern.
func (c *GoogleClient) Directions(ctx context.Context, origin models.Coordinate, dest Destination, mode models.TravelMode) (*models.Route, error) {
	if c.apiKey == "" {
		return nil, ErrNoAPIKey
	}

	params := url.Values{}
	params.Set("origin", fmt.Sprintf("%.6f,%.6f", origin.Lat, origin.Lng))
	if dest.PlaceID != "" {
		params.Set("destination", "place_id:"+dest.PlaceID)
	} else if dest.Location != nil {
		params.Set("destination", fmt.Sprintf("%.6f,%.6f", dest.Location.Lat, dest.Location.Lng))
	} else {
		return nil, fmt.Errorf("destination has neither place id nor coordinate")
	}
	params.Set("mode", string(mode))
	params.Set("key", c.apiKey)

	body, err := c.get(ctx, c.directionsURL+"?"+params.Encode())
	if err != nil {
		return nil, err
	}

	var result googleDirectionsResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("failed to parse directions response: %w", err)
	}

	if result.Status != "OK" {
		return nil, fmt.Errorf("%w: %s", ErrProviderStatus, result.Status)
	}
	if len(result.Routes) == 0 || len(result.Routes[0].Legs) == 0 {
		return nil, fmt.Errorf("%w: empty route", ErrProviderStatus)
	}

	leg := result.Routes[0].Legs[0]
	route := &models.Route{
		PlaceID:  dest.PlaceID,
		Mode:     mode,
		Distance: leg.Distance.Text,
		Duration: leg.Duration.Text,
	}
	for _, step := range leg.Steps {
		s := models.RouteStep{
			Start:          models.Coordinate{Lat: step.StartLocation.Lat, Lng: step.StartLocation.Lng},
			End:            models.Coordinate{Lat: step.EndLocation.Lat, Lng: step.EndLocation.Lng},
			DistanceMeters: step.Distance.Value,
		}
		route.Steps = append(route.Steps, s)
		route.Waypoints = append(route.Waypoints, s.Start)
	}
	if n := len(route.Steps); n > 0 {
		route.Waypoints = append(route.Waypoints, route.Steps[n-1].End)
	}
	return route, nil
}

func (c *GoogleClient) get(ctx context.Context, apiURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", apiURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		c.logger.WithError(err).Error("Maps provider request failed")
		return nil, fmt.Errorf("maps provider request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("%w: http %d: %s", ErrProviderStatus, resp.StatusCode, string(body))
	}

	return io.ReadAll(resp.Body)
}
