package services

import (
	"context"
	"math"
	"sort"

	"github.com/rs/zerolog"
	"github.com/umahmood/haversine"

	"meetingpoint-service/internal/domain"
	"meetingpoint-service/internal/platform/obs"
)

const metersPerDegreeLat = 111320.0

// MidpointCandidate is one evaluated meeting coordinate. SpreadSeconds is
// the minimax fairness objective (max minus min origin travel time) and
// TotalSeconds the tie-break; both are valid only when Validated is true.
type MidpointCandidate struct {
	Coord         domain.Coordinates
	SpreadSeconds int
	TotalSeconds  int
	Validated     bool
}

// Optimizer finds fair meeting coordinates in two phases: a geometric median
// narrows the search to a seed region, then a small candidate set sampled
// around the seed is validated with real travel times. Geometry alone ignores
// road networks and asymmetry, while querying travel time over a dense grid
// would burn the provider quota; the split keeps the expensive matrix call
// small.
type Optimizer struct {
	builder       *MatrixBuilder
	rings         int
	ringSamples   int
	searchRadiusM float64
	maxIter       int
	logger        zerolog.Logger
}

func NewOptimizer(builder *MatrixBuilder, rings, ringSamples, searchRadiusM, maxIter int, logger zerolog.Logger) *Optimizer {
	if maxIter <= 0 {
		maxIter = 50
	}
	return &Optimizer{
		builder:       builder,
		rings:         rings,
		ringSamples:   ringSamples,
		searchRadiusM: float64(searchRadiusM),
		maxIter:       maxIter,
		logger:        logger.With().Str("service", "midpoint").Logger(),
	}
}

// Optimize returns candidate meeting coordinates ordered best-first by the
// fairness objective, with total travel time as tie-break. With a single
// origin the result is that origin and no travel times are queried.
func (o *Optimizer) Optimize(ctx context.Context, origins []domain.Coordinates) (_ []MidpointCandidate, warnings []string, err error) {
	defer obs.Time(ctx, "midpoint.optimize")(&err)

	if len(origins) == 0 {
		return nil, nil, &domain.InputError{Field: "origins", Msg: "must be non-empty"}
	}
	if len(origins) == 1 {
		return []MidpointCandidate{{Coord: origins[0], Validated: true}}, nil, nil
	}

	seed := GeometricMedian(origins, o.maxIter)
	candidates := o.sampleAround(seed)

	matrix, buildWarnings, err := o.builder.Build(ctx, origins, candidates)
	if err != nil {
		return nil, nil, err
	}
	warnings = append(warnings, buildWarnings...)

	evaluated := make([]MidpointCandidate, 0, len(candidates))
	for j, c := range candidates {
		if !matrix.ColumnReachable(j) {
			continue
		}

		maxSec, minSec, total := 0, math.MaxInt, 0
		for i := range origins {
			sec := matrix.At(i, j).DurationSeconds
			total += sec
			maxSec = max(maxSec, sec)
			minSec = min(minSec, sec)
		}

		evaluated = append(evaluated, MidpointCandidate{
			Coord:         c,
			SpreadSeconds: maxSec - minSec,
			TotalSeconds:  total,
			Validated:     true,
		})
	}

	if len(evaluated) == 0 {
		warnings = append(warnings, "no candidate midpoint reachable from all origins, falling back to geometric estimate")
		return []MidpointCandidate{{Coord: seed}}, warnings, nil
	}

	sort.SliceStable(evaluated, func(a, b int) bool {
		if evaluated[a].SpreadSeconds != evaluated[b].SpreadSeconds {
			return evaluated[a].SpreadSeconds < evaluated[b].SpreadSeconds
		}
		return evaluated[a].TotalSeconds < evaluated[b].TotalSeconds
	})

	return evaluated, warnings, nil
}

// sampleAround produces the seed plus ringSamples points on each of rings
// concentric rings out to searchRadiusM.
func (o *Optimizer) sampleAround(seed domain.Coordinates) []domain.Coordinates {
	out := []domain.Coordinates{seed}
	if o.rings <= 0 || o.ringSamples <= 0 || o.searchRadiusM <= 0 {
		return out
	}

	for ring := 1; ring <= o.rings; ring++ {
		radius := o.searchRadiusM * float64(ring) / float64(o.rings)
		for s := 0; s < o.ringSamples; s++ {
			bearing := 2 * math.Pi * float64(s) / float64(o.ringSamples)
			c := offset(seed, radius, bearing)
			if c.Validate() == nil {
				out = append(out, c)
			}
		}
	}
	return out
}

// offset shifts a coordinate by distanceM along bearing using an
// equirectangular approximation, adequate for the short radii sampled here.
func offset(c domain.Coordinates, distanceM, bearing float64) domain.Coordinates {
	dLat := distanceM * math.Cos(bearing) / metersPerDegreeLat
	dLon := distanceM * math.Sin(bearing) / (metersPerDegreeLat * math.Cos(c.Lat*math.Pi/180))
	return domain.Coordinates{Lat: c.Lat + dLat, Lon: c.Lon + dLon}
}

// GeometricMedian computes the point minimizing the sum of great-circle
// distances to the origins (Weiszfeld iteration, centroid seeded).
func GeometricMedian(origins []domain.Coordinates, maxIter int) domain.Coordinates {
	cur := centroid(origins)

	for iter := 0; iter < maxIter; iter++ {
		var sumLat, sumLon, sumW float64
		for _, p := range origins {
			d := distanceMeters(cur, p)
			if d < 1 {
				// Current estimate sits on an origin; it is the median.
				return cur
			}
			w := 1 / d
			sumLat += p.Lat * w
			sumLon += p.Lon * w
			sumW += w
		}

		next := domain.Coordinates{Lat: sumLat / sumW, Lon: sumLon / sumW}
		if distanceMeters(cur, next) < 1 {
			return next
		}
		cur = next
	}
	return cur
}

func centroid(coords []domain.Coordinates) domain.Coordinates {
	var lat, lon float64
	for _, c := range coords {
		lat += c.Lat
		lon += c.Lon
	}
	n := float64(len(coords))
	return domain.Coordinates{Lat: lat / n, Lon: lon / n}
}

func distanceMeters(a, b domain.Coordinates) float64 {
	_, km := haversine.Distance(
		haversine.Coord{Lat: a.Lat, Lon: a.Lon},
		haversine.Coord{Lat: b.Lat, Lon: b.Lon},
	)
	return km * 1000
}
