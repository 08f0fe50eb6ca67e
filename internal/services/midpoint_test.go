package services

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"meetingpoint-service/internal/domain"
)

func newTestOptimizer(provider *stubMatrix) *Optimizer {
	builder := NewMatrixBuilder(newTestLoader(), provider, "driving-car", zerolog.Nop())
	return NewOptimizer(builder, 2, 8, 500, 50, zerolog.Nop())
}

func TestOptimizeSingleOriginIsItself(t *testing.T) {
	provider := &stubMatrix{}
	o := newTestOptimizer(provider)

	origin := domain.Coordinates{Lat: 40.7128, Lon: -74.0060}
	candidates, warnings, err := o.Optimize(context.Background(), []domain.Coordinates{origin})
	require.NoError(t, err)
	require.Empty(t, warnings)
	require.Len(t, candidates, 1)

	assert.Equal(t, origin, candidates[0].Coord)
	assert.True(t, candidates[0].Validated)
	assert.Zero(t, provider.Calls(), "single origin must not query travel times")
}

func TestOptimizeRejectsEmptyOrigins(t *testing.T) {
	o := newTestOptimizer(&stubMatrix{})

	_, _, err := o.Optimize(context.Background(), nil)
	var ierr *domain.InputError
	assert.ErrorAs(t, err, &ierr)
}

func TestOptimizeOrdersCandidatesBySpread(t *testing.T) {
	origins := []domain.Coordinates{
		{Lat: 40.7128, Lon: -74.0060},
		{Lat: 40.6892, Lon: -74.0445},
		{Lat: 40.7306, Lon: -73.9866},
	}
	o := newTestOptimizer(&stubMatrix{})

	candidates, warnings, err := o.Optimize(context.Background(), origins)
	require.NoError(t, err)
	assert.Empty(t, warnings)
	require.NotEmpty(t, candidates)

	best := candidates[0]
	require.True(t, best.Validated)
	for _, c := range candidates[1:] {
		if c.SpreadSeconds == best.SpreadSeconds {
			assert.GreaterOrEqual(t, c.TotalSeconds, best.TotalSeconds)
			continue
		}
		assert.Greater(t, c.SpreadSeconds, best.SpreadSeconds)
	}
}

func TestOptimizeBestCandidateIsFair(t *testing.T) {
	a := domain.Coordinates{Lat: 40.7128, Lon: -74.0060}
	b := domain.Coordinates{Lat: 40.6892, Lon: -74.0445}
	o := newTestOptimizer(&stubMatrix{})

	candidates, _, err := o.Optimize(context.Background(), []domain.Coordinates{a, b})
	require.NoError(t, err)
	require.NotEmpty(t, candidates)

	mid := candidates[0].Coord
	// The chosen point sits between the two origins, far from either endpoint.
	total := distanceMeters(a, b)
	assert.Less(t, distanceMeters(a, mid), total)
	assert.Less(t, distanceMeters(b, mid), total)

	// With symmetric straight-line travel times the spread at the winner
	// stays well under the full separation's worth of travel time.
	assert.Less(t, candidates[0].SpreadSeconds, int(total/10)/2)
}

func TestOptimizeFallsBackWhenNothingReachable(t *testing.T) {
	a := domain.Coordinates{Lat: 40.7128, Lon: -74.0060}
	b := domain.Coordinates{Lat: 40.6892, Lon: -74.0445}
	provider := &stubMatrix{unroutable: map[domain.Coordinates]bool{a: true}}
	o := newTestOptimizer(provider)

	candidates, warnings, err := o.Optimize(context.Background(), []domain.Coordinates{a, b})
	require.NoError(t, err)
	require.Len(t, candidates, 1)

	assert.False(t, candidates[0].Validated)
	assert.NotEmpty(t, warnings)
	require.NoError(t, candidates[0].Coord.Validate())
}

func TestGeometricMedianOfTwoPointsLiesBetween(t *testing.T) {
	a := domain.Coordinates{Lat: 40.7128, Lon: -74.0060}
	b := domain.Coordinates{Lat: 40.6892, Lon: -74.0445}

	m := GeometricMedian([]domain.Coordinates{a, b}, 50)
	assert.LessOrEqual(t, m.Lat, a.Lat)
	assert.GreaterOrEqual(t, m.Lat, b.Lat)
	assert.LessOrEqual(t, m.Lon, a.Lon)
	assert.GreaterOrEqual(t, m.Lon, b.Lon)
}

func TestGeometricMedianPullsTowardCluster(t *testing.T) {
	cluster := domain.Coordinates{Lat: 40.70, Lon: -74.00}
	origins := []domain.Coordinates{
		cluster,
		{Lat: 40.701, Lon: -74.001},
		{Lat: 40.699, Lon: -73.999},
		{Lat: 40.90, Lon: -73.80}, // lone outlier
	}

	m := GeometricMedian(origins, 50)
	c := centroid(origins)
	assert.Less(t, distanceMeters(m, cluster), distanceMeters(c, cluster),
		"median should resist the outlier more than the centroid does")
}

func TestGeometricMedianOnAnOrigin(t *testing.T) {
	p := domain.Coordinates{Lat: 40.7128, Lon: -74.0060}
	m := GeometricMedian([]domain.Coordinates{p, p, p}, 50)
	assert.InDelta(t, p.Lat, m.Lat, 1e-6)
	assert.InDelta(t, p.Lon, m.Lon, 1e-6)
}
