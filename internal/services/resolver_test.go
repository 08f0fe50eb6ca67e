package services

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"meetingpoint-service/internal/domain"
	"meetingpoint-service/internal/ports"
)

func TestResolverPicksHighestConfidence(t *testing.T) {
	geo := &stubGeocoder{results: map[string][]ports.GeocodeResult{
		"city hall": {
			{Coord: domain.Coordinates{Lat: 40.71, Lon: -74.00}, Confidence: 0.6, Label: "City Hall Park"},
			{Coord: domain.Coordinates{Lat: 40.7127, Lon: -74.0059}, Confidence: 0.95, Label: "New York City Hall"},
		},
	}}
	r := NewResolver(newTestLoader(), geo, 0, zerolog.Nop())

	loc, err := r.Resolve(context.Background(), "city hall")
	require.NoError(t, err)
	require.True(t, loc.Resolved())
	assert.InDelta(t, 40.7127, loc.Coord.Lat, 1e-9)
	assert.InDelta(t, 0.95, loc.Confidence, 1e-9)
}

func TestResolverCachesSuccessfulLookups(t *testing.T) {
	geo := &stubGeocoder{results: map[string][]ports.GeocodeResult{
		"220 main st": {{Coord: domain.Coordinates{Lat: 40.7, Lon: -74.0}, Confidence: 0.8}},
	}}
	r := NewResolver(newTestLoader(), geo, 0, zerolog.Nop())

	_, err := r.Resolve(context.Background(), "220 main st")
	require.NoError(t, err)
	_, err = r.Resolve(context.Background(), "220 Main  St") // normalizes to the same key
	require.NoError(t, err)

	assert.Equal(t, int64(1), geo.calls.Load())
}

func TestResolverNotFoundIsNotCached(t *testing.T) {
	geo := &stubGeocoder{results: map[string][]ports.GeocodeResult{}}
	r := NewResolver(newTestLoader(), geo, 0, zerolog.Nop())

	for i := 0; i < 2; i++ {
		_, err := r.Resolve(context.Background(), "nowhere at all")
		require.ErrorIs(t, err, domain.ErrNotFound)
	}
	// A cached negative would have answered the second call.
	assert.Equal(t, int64(2), geo.calls.Load())
}

func TestResolverDistinguishesProviderFailureFromNotFound(t *testing.T) {
	upstream := &domain.ProviderError{Provider: "ors", Op: "geocode", Status: 502}
	geo := &stubGeocoder{errs: map[string]error{"broken town": upstream}}
	r := NewResolver(newTestLoader(), geo, 0, zerolog.Nop())

	_, err := r.Resolve(context.Background(), "broken town")
	var perr *domain.ProviderError
	require.ErrorAs(t, err, &perr)
	assert.NotErrorIs(t, err, domain.ErrNotFound)
}

func TestResolverConfidenceFloor(t *testing.T) {
	geo := &stubGeocoder{results: map[string][]ports.GeocodeResult{
		"ambiguous": {{Coord: domain.Coordinates{Lat: 40.7, Lon: -74.0}, Confidence: 0.3}},
	}}
	r := NewResolver(newTestLoader(), geo, 0.5, zerolog.Nop())

	_, err := r.Resolve(context.Background(), "ambiguous")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestResolverRejectsEmptyAddress(t *testing.T) {
	r := NewResolver(newTestLoader(), &stubGeocoder{}, 0, zerolog.Nop())

	_, err := r.Resolve(context.Background(), "   ")
	var ierr *domain.InputError
	assert.ErrorAs(t, err, &ierr)
}

func TestResolveAllIdentifiesFailingAddress(t *testing.T) {
	geo := &stubGeocoder{results: map[string][]ports.GeocodeResult{
		"good place": {{Coord: domain.Coordinates{Lat: 40.7, Lon: -74.0}, Confidence: 0.9}},
	}}
	r := NewResolver(newTestLoader(), geo, 0, zerolog.Nop())

	_, err := r.ResolveAll(context.Background(), []string{"good place", "missing place"})
	var gerr *domain.GeocodeError
	require.ErrorAs(t, err, &gerr)
	assert.Equal(t, "missing place", gerr.Address)
	assert.True(t, errors.Is(err, domain.ErrNotFound))
}

func TestResolveAllPreservesOrder(t *testing.T) {
	geo := &stubGeocoder{results: map[string][]ports.GeocodeResult{
		"alpha": {{Coord: domain.Coordinates{Lat: 40.0, Lon: -74.0}, Confidence: 0.9}},
		"beta":  {{Coord: domain.Coordinates{Lat: 41.0, Lon: -73.0}, Confidence: 0.9}},
	}}
	r := NewResolver(newTestLoader(), geo, 0, zerolog.Nop())

	locs, err := r.ResolveAll(context.Background(), []string{"alpha", "beta"})
	require.NoError(t, err)
	require.Len(t, locs, 2)
	assert.Equal(t, "alpha", locs[0].Address)
	assert.InDelta(t, 41.0, locs[1].Coord.Lat, 1e-9)
}
