package cache

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"meetingpoint-service/internal/domain"
)

func TestGeocodeKeyNormalization(t *testing.T) {
	a := GeocodeKey("  350 Fifth   Avenue, New York ")
	b := GeocodeKey("350 fifth avenue, new york")
	assert.Equal(t, a, b, "casing and whitespace must not change the key")

	assert.NotEqual(t, GeocodeKey("350 fifth avenue"), GeocodeKey("351 fifth avenue"))
}

func TestMatrixKeyOrderInsensitive(t *testing.T) {
	p1 := domain.Coordinates{Lat: 40.7128, Lon: -74.0060}
	p2 := domain.Coordinates{Lat: 40.6892, Lon: -74.0445}
	p3 := domain.Coordinates{Lat: 40.7484, Lon: -73.9857}

	a := MatrixKey([]domain.Coordinates{p1, p2}, []domain.Coordinates{p3}, "driving-car")
	b := MatrixKey([]domain.Coordinates{p2, p1}, []domain.Coordinates{p3}, "driving-car")
	assert.Equal(t, a, b, "origin set ordering must not change the key")

	c := MatrixKey([]domain.Coordinates{p1, p2}, []domain.Coordinates{p3}, "cycling-regular")
	assert.NotEqual(t, a, c, "profile is part of the key")
}

func TestPOIKeyIncludesRadiusAndCategory(t *testing.T) {
	center := domain.Coordinates{Lat: 40.7, Lon: -74.0}

	assert.Equal(t, POIKey(center, 500, "Cafe"), POIKey(center, 500, "cafe"))
	assert.NotEqual(t, POIKey(center, 500, "cafe"), POIKey(center, 1000, "cafe"))
	assert.NotEqual(t, POIKey(center, 500, "cafe"), POIKey(center, 500, "bar"))
}

func TestPairKeyIsDirected(t *testing.T) {
	a := domain.Coordinates{Lat: 40.7128, Lon: -74.0060}
	b := domain.Coordinates{Lat: 40.6892, Lon: -74.0445}
	assert.NotEqual(t, PairKey(a, b), PairKey(b, a))
}
