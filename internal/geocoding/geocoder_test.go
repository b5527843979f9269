package geocoding

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeCache(t *testing.T, dir string, cache map[string][]float64) {
	t.Helper()
	data, err := json.Marshal(cache)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, cacheFileName), data, 0644))
}

func TestGeocodeAddress_CacheHit(t *testing.T) {
	dir := t.TempDir()
	writeCache(t, dir, map[string][]float64{
		"301 West Ave|78701|Austin": {30.2672, -97.7431},
	})

	g := NewGeocoder(logrus.New(), dir)
	lat, lon, err := g.GeocodeAddress("301 West Ave", "78701", "Austin")
	require.NoError(t, err)
	assert.Equal(t, 30.2672, lat)
	assert.Equal(t, -97.7431, lon)
}

func TestGeocodeAddress_InvalidCacheEntry(t *testing.T) {
	dir := t.TempDir()
	writeCache(t, dir, map[string][]float64{
		"301 West Ave|78701|Austin": {30.2672},
	})

	g := NewGeocoder(logrus.New(), dir)
	_, _, err := g.GeocodeAddress("301 West Ave", "78701", "Austin")
	assert.Error(t, err)
}

func TestNewGeocoder_MissingCacheStartsEmpty(t *testing.T) {
	g := NewGeocoder(logrus.New(), t.TempDir())
	assert.Empty(t, g.cache)
}
