package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"meetingpoint-service/internal/domain"
)

func defaultWeights() RankWeights {
	return RankWeights{FairnessWeight: 1.0, MeanWeight: 0.5, QualityWeight: 0.1}
}

// matrixFor builds a 2-origin matrix whose column j holds the two durations
// in durations[j]; a negative duration marks the cell unreachable.
func matrixFor(durations [][2]int) *domain.TravelMatrix {
	origins := gridCoords(2)
	destinations := make([]domain.Coordinates, len(durations))
	for j := range durations {
		destinations[j] = domain.Coordinates{Lat: 41.0, Lon: -74.0 + float64(j)*0.01}
	}

	m := domain.NewTravelMatrix(origins, destinations)
	for j, col := range durations {
		for i, dur := range col {
			if dur < 0 {
				continue
			}
			m.Set(i, j, domain.MatrixCell{DurationSeconds: dur, DistanceMeters: dur * 10, Reachable: true})
		}
	}
	return m
}

func poisNamed(names ...string) []domain.CandidatePOI {
	out := make([]domain.CandidatePOI, len(names))
	for i, n := range names {
		out[i] = domain.CandidatePOI{ID: n, Name: n}
	}
	return out
}

func TestRankPrefersFairPOIs(t *testing.T) {
	r := NewRanker(defaultWeights(), PolicyExclude, 0)

	// "fair" is slightly slower on average but balanced; "lopsided" is close
	// to one origin and far from the other.
	pois := poisNamed("lopsided", "fair")
	matrix := matrixFor([][2]int{{100, 900}, {520, 540}})

	ranked := r.Rank(pois, matrix)
	require.Len(t, ranked, 2)
	assert.Equal(t, "fair", ranked[0].POI.ID)
	assert.Equal(t, 20, ranked[0].SpreadSeconds)
}

func TestRankExcludesUnreachableUnderExcludePolicy(t *testing.T) {
	r := NewRanker(defaultWeights(), PolicyExclude, 0)

	pois := poisNamed("reachable", "partial")
	ranked := r.Rank(pois, matrixFor([][2]int{{300, 340}, {200, -1}}))

	require.Len(t, ranked, 1)
	assert.Equal(t, "reachable", ranked[0].POI.ID)
}

func TestRankPenalizedPOINeverScoresAsZeroTravel(t *testing.T) {
	r := NewRanker(defaultWeights(), PolicyPenalize, 3600)

	// The partial POI has one tiny duration and one missing one. Treating the
	// gap as zero travel would rank it first; the penalty must rank it last.
	pois := poisNamed("partial", "reachable")
	ranked := r.Rank(pois, matrixFor([][2]int{{10, -1}, {400, 420}}))

	require.Len(t, ranked, 2)
	assert.Equal(t, "reachable", ranked[0].POI.ID)
	assert.True(t, ranked[1].Penalized)
	assert.False(t, ranked[0].Penalized)
}

func TestRankDropsFullyUnreachablePOIUnderBothPolicies(t *testing.T) {
	for _, policy := range []UnreachablePolicy{PolicyExclude, PolicyPenalize} {
		r := NewRanker(defaultWeights(), policy, 3600)
		ranked := r.Rank(poisNamed("dead", "alive"), matrixFor([][2]int{{-1, -1}, {300, 320}}))

		require.Len(t, ranked, 1, "policy %s", policy)
		assert.Equal(t, "alive", ranked[0].POI.ID)
	}
}

func TestRankQualityBreaksNearTies(t *testing.T) {
	r := NewRanker(defaultWeights(), PolicyExclude, 0)

	pois := []domain.CandidatePOI{
		{ID: "obscure", Relevance: 0.1},
		{ID: "popular", Relevance: 0.9},
	}
	ranked := r.Rank(pois, matrixFor([][2]int{{300, 320}, {300, 320}}))

	require.Len(t, ranked, 2)
	assert.Equal(t, "popular", ranked[0].POI.ID)
}

func TestRankDeterministicTieBreakByID(t *testing.T) {
	r := NewRanker(defaultWeights(), PolicyExclude, 0)

	pois := poisNamed("bravo", "alpha")
	ranked := r.Rank(pois, matrixFor([][2]int{{300, 320}, {300, 320}}))

	require.Len(t, ranked, 2)
	assert.Equal(t, "alpha", ranked[0].POI.ID)
	assert.Equal(t, "bravo", ranked[1].POI.ID)
}

func TestRankCarriesTravelMetrics(t *testing.T) {
	r := NewRanker(defaultWeights(), PolicyExclude, 0)

	ranked := r.Rank(poisNamed("cafe"), matrixFor([][2]int{{240, 360}}))
	require.Len(t, ranked, 1)

	got := ranked[0]
	assert.Equal(t, 120, got.SpreadSeconds)
	assert.Equal(t, 360, got.MaxSeconds)
	assert.InDelta(t, 300.0, got.MeanSeconds, 1e-9)
	require.Len(t, got.Cells, 2)
	assert.Equal(t, 240, got.Cells[0].DurationSeconds)
}
