package services

import (
	"math"
	"sort"

	"meetingpoint-service/internal/domain"
)

// UnreachablePolicy controls how a POI missing a travel time from some origin
// is handled. It is never scored as if that travel time were zero.
type UnreachablePolicy string

const (
	PolicyExclude  UnreachablePolicy = "exclude"
	PolicyPenalize UnreachablePolicy = "penalize"
)

// RankWeights bias the composite score. FairnessWeight and MeanWeight apply
// to seconds; QualityWeight applies to the provider relevance signal in
// [0,1], scaled by qualityScaleSeconds so the terms are comparable.
type RankWeights struct {
	FairnessWeight float64
	MeanWeight     float64
	QualityWeight  float64
}

// One full relevance point is worth ten minutes of travel time in the score.
const qualityScaleSeconds = 600

// Ranker orders candidate POIs by a fairness-weighted composite score.
type Ranker struct {
	weights        RankWeights
	policy         UnreachablePolicy
	penaltySeconds int
}

func NewRanker(weights RankWeights, policy UnreachablePolicy, penaltySeconds int) *Ranker {
	if policy != PolicyPenalize {
		policy = PolicyExclude
	}
	if penaltySeconds <= 0 {
		penaltySeconds = 3600
	}
	return &Ranker{weights: weights, policy: policy, penaltySeconds: penaltySeconds}
}

// Rank scores pois against the matrix, whose destination j must correspond to
// pois[j]. Ties break on lower mean travel time, then provider relevance,
// then id, so the ordering is deterministic.
func (r *Ranker) Rank(pois []domain.CandidatePOI, matrix *domain.TravelMatrix) []domain.ScoredPOI {
	scored := make([]domain.ScoredPOI, 0, len(pois))

	for j, poi := range pois {
		cells := matrix.Column(j)

		unreachable := 0
		maxSec, minSec, sum := 0, math.MaxInt, 0
		reachable := 0
		for _, c := range cells {
			if !c.Reachable {
				unreachable++
				continue
			}
			reachable++
			sum += c.DurationSeconds
			maxSec = max(maxSec, c.DurationSeconds)
			minSec = min(minSec, c.DurationSeconds)
		}

		if reachable == 0 {
			continue // nothing to score, under either policy
		}
		if unreachable > 0 && r.policy == PolicyExclude {
			continue
		}

		mean := float64(sum) / float64(reachable)
		spread := maxSec - minSec

		score := -r.weights.FairnessWeight*float64(spread) -
			r.weights.MeanWeight*mean +
			r.weights.QualityWeight*poi.Relevance*qualityScaleSeconds

		penalized := false
		if unreachable > 0 {
			// Penalty per missing origin keeps partially reachable POIs in
			// the list without pretending their travel time is zero.
			score -= r.weights.FairnessWeight * float64(unreachable*r.penaltySeconds)
			penalized = true
		}

		scored = append(scored, domain.ScoredPOI{
			POI:           poi,
			Score:         score,
			MeanSeconds:   mean,
			SpreadSeconds: spread,
			MaxSeconds:    maxSec,
			Cells:         cells,
			Penalized:     penalized,
		})
	}

	sort.SliceStable(scored, func(a, b int) bool {
		sa, sb := scored[a], scored[b]
		if sa.Score != sb.Score {
			return sa.Score > sb.Score
		}
		if sa.MeanSeconds != sb.MeanSeconds {
			return sa.MeanSeconds < sb.MeanSeconds
		}
		if sa.POI.Relevance != sb.POI.Relevance {
			return sa.POI.Relevance > sb.POI.Relevance
		}
		return sa.POI.ID < sb.POI.ID
	})

	return scored
}
