package geocoding

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

const (
	nominatimEndpoint = "https://nominatim.openstreetmap.org/search"
	cacheFileName     = "geocode_cache.json"

	// Nominatim's usage policy caps clients at one request per second.
	politenessDelay = time.Second
)

// Geocoder resolves listing addresses to coordinates through Nominatim.
// Results are cached in memory and persisted to disk so restarts do not
// re-spend the rate-limited request budget on known addresses.
type Geocoder struct {
	logger    *logrus.Logger
	cacheDir  string
	cache     map[string][]float64
	cacheLock sync.RWMutex
	client    *http.Client
}

func NewGeocoder(logger *logrus.Logger, cacheDir string) *Geocoder {
	if err := os.MkdirAll(cacheDir, 0755); err != nil {
		logger.WithError(err).WithField("cache_dir", cacheDir).Warn("Could not create geocode cache directory")
	}

	g := &Geocoder{
		logger:   logger,
		cacheDir: cacheDir,
		cache:    make(map[string][]float64),
		client:   &http.Client{Timeout: 10 * time.Second},
	}
	g.loadCache()
	return g
}

func (g *Geocoder) cacheFile() string {
	return filepath.Join(g.cacheDir, cacheFileName)
}

func (g *Geocoder) loadCache() {
	data, err := os.ReadFile(g.cacheFile())
	if err != nil {
		if !os.IsNotExist(err) {
			g.logger.WithError(err).Warn("Could not load geocode cache")
		}
		return
	}

	if err := json.Unmarshal(data, &g.cache); err != nil {
		g.logger.WithError(err).Error("Failed to parse geocode cache")
		return
	}

	g.logger.WithField("addresses", len(g.cache)).Info("Loaded geocode cache")
}

func (g *Geocoder) saveCache() {
	g.cacheLock.RLock()
	data, err := json.Marshal(g.cache)
	g.cacheLock.RUnlock()
	if err != nil {
		g.logger.WithError(err).Error("Failed to marshal geocode cache")
		return
	}

	if err := os.WriteFile(g.cacheFile(), data, 0644); err != nil {
		g.logger.WithError(err).Error("Failed to save geocode cache")
	}
}

type nominatimResponse []struct {
	Lat string `json:"lat"`
	Lon string `json:"lon"`
}

// GeocodeAddress resolves a street address to WGS84 coordinates. Cache
// hits return immediately; misses pay the provider's politeness delay.
func (g *Geocoder) GeocodeAddress(street, postalCode, city string) (float64, float64, error) {
	cacheKey := fmt.Sprintf("%s|%s|%s", street, postalCode, city)
	fullAddress := fmt.Sprintf("%s, %s, %s, USA", street, city, postalCode)

	g.cacheLock.RLock()
	coords, cached := g.cache[cacheKey]
	g.cacheLock.RUnlock()
	if cached {
		if len(coords) != 2 {
			return 0, 0, fmt.Errorf("invalid cached coordinates for %q", fullAddress)
		}
		g.logger.WithFields(logrus.Fields{
			"address":   fullAddress,
			"latitude":  coords[0],
			"longitude": coords[1],
			"source":    "cache",
		}).Info("Found coordinates in cache")
		return coords[0], coords[1], nil
	}

	g.logger.WithField("address", fullAddress).Info("Geocoding address with Nominatim")
	time.Sleep(politenessDelay)

	params := url.Values{}
	params.Set("q", fullAddress)
	params.Set("format", "json")
	params.Set("limit", "1")
	params.Set("countrycodes", "us")
	params.Set("addressdetails", "1")

	req, err := http.NewRequest("GET", nominatimEndpoint, nil)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to create request: %v", err)
	}
	req.URL.RawQuery = params.Encode()
	req.Header.Set("User-Agent", "RentRadar Marketplace/1.0")
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")

	resp, err := g.client.Do(req)
	if err != nil {
		g.logger.WithError(err).WithField("address", fullAddress).Error("Geocoding request failed")
		return 0, 0, fmt.Errorf("geocoding request failed: %v", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		g.logger.WithError(err).WithField("address", fullAddress).Error("Failed to read geocoding response")
		return 0, 0, fmt.Errorf("failed to read response: %v", err)
	}

	var result nominatimResponse
	if err := json.Unmarshal(body, &result); err != nil {
		g.logger.WithError(err).WithField("address", fullAddress).Error("Failed to parse geocoding response")
		return 0, 0, fmt.Errorf("failed to parse response: %v", err)
	}

	if len(result) == 0 {
		g.logger.WithField("address", fullAddress).Warn("Address did not geocode")
		return 0, 0, fmt.Errorf("no results found for address: %s", fullAddress)
	}

	lat, err := strconv.ParseFloat(result[0].Lat, 64)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid latitude %q: %v", result[0].Lat, err)
	}
	lon, err := strconv.ParseFloat(result[0].Lon, 64)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid longitude %q: %v", result[0].Lon, err)
	}

	g.logger.WithFields(logrus.Fields{
		"address":   fullAddress,
		"latitude":  lat,
		"longitude": lon,
		"source":    "nominatim",
	}).Info("Successfully geocoded address")

	g.cacheLock.Lock()
	g.cache[cacheKey] = []float64{lat, lon}
	g.cacheLock.Unlock()

	go g.saveCache()

	return lat, lon, nil
}
