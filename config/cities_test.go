package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGetCityNames(t *testing.T) {
	names := GetCityNames()
	assert.Equal(t, len(SupportedCities), len(names))
	assert.Contains(t, names, "austin")
	assert.Contains(t, names, "houston")
}

func TestGetCityByName(t *testing.T) {
	tests := []struct {
		name      string
		city      string
		expectNil bool
	}{
		{
			name: "Known city",
			city: "austin",
		},
		{
			name:      "Unknown city",
			city:      "atlantis",
			expectNil: true,
		},
		{
			name:      "Case sensitive lookup",
			city:      "Austin",
			expectNil: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			city := GetCityByName(tt.city)
			if tt.expectNil {
				assert.Nil(t, city)
				return
			}
			assert.NotNil(t, city)
			assert.Equal(t, tt.city, city.Name)
			assert.Len(t, city.Center, 2)
			assert.Greater(t, city.ZoomLevel, 0)
		})
	}
}

func TestDefaultCityHasRegion(t *testing.T) {
	assert.Len(t, DefaultCity.Center, 2)
	assert.NotZero(t, DefaultCity.ZoomLevel)
}
