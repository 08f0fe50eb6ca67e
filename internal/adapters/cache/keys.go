package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"
	"strings"

	"meetingpoint-service/internal/domain"
)

// Keys are derived from normalized inputs so semantically identical requests
// always hit the same entry regardless of casing or whitespace. Coordinates
// are rendered at fixed precision (~1m) before hashing.

const coordFormat = "%.5f,%.5f"

// NormalizeAddress lowercases and collapses whitespace in a free-text address.
func NormalizeAddress(addr string) string {
	return strings.ToLower(strings.Join(strings.Fields(addr), " "))
}

// GeocodeKey is the cache key for one normalized address.
func GeocodeKey(addr string) string {
	return "geocode:" + NormalizeAddress(addr)
}

// MatrixKey is the cache key for one origins x destinations matrix call.
func MatrixKey(origins, destinations []domain.Coordinates, profile string) string {
	return fmt.Sprintf("matrix:%s:%s:%s", hashCoords(origins), hashCoords(destinations), profile)
}

// POIKey is the cache key for one POI region query.
func POIKey(center domain.Coordinates, radiusMeters int, category string) string {
	region := fmt.Sprintf(coordFormat, center.Lat, center.Lon)
	return fmt.Sprintf("poi:%s:%d:%s", hashString(region), radiusMeters, strings.ToLower(category))
}

// hashCoords hashes a coordinate set in canonical (sorted) order, so the
// same set produces the same key regardless of input ordering. Cached matrix
// values are keyed per origin-destination pair, which keeps them valid under
// this reordering.
func hashCoords(coords []domain.Coordinates) string {
	rendered := make([]string, len(coords))
	for i, c := range coords {
		rendered[i] = fmt.Sprintf(coordFormat, c.Lat, c.Lon)
	}
	sort.Strings(rendered)
	return hashString(strings.Join(rendered, ";"))
}

// PairKey identifies one directed origin->destination pair inside a cached
// matrix value.
func PairKey(origin, destination domain.Coordinates) string {
	return fmt.Sprintf(coordFormat+"|"+coordFormat, origin.Lat, origin.Lon, destination.Lat, destination.Lon)
}

func hashString(s string) string {
	sum := sha256.Sum256([]byte(s))
	return hex.EncodeToString(sum[:8])
}
