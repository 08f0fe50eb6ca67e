package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"meetingpoint-service/internal/adapters/cache"
	"meetingpoint-service/internal/domain"
	"meetingpoint-service/internal/platform/obs"
	"meetingpoint-service/internal/ports"
)

// matrixValue is the cached shape of one matrix chunk: directed cells keyed
// by origin-destination pair, so the value stays valid however the coordinate
// sets were ordered when the key was derived.
type matrixValue struct {
	Cells map[string]matrixCellValue `json:"cells"`
}

type matrixCellValue struct {
	DurationSeconds int  `json:"dur"`
	DistanceMeters  int  `json:"dist"`
	Reachable       bool `json:"ok"`
}

// MatrixBuilder produces a dense origins x destinations travel matrix. The
// cross-product is chunked so every provider call stays under the coordinate
// cap, chunks are fetched concurrently through the cache layer, and the
// result is reassembled in original index order.
//
// A failed chunk marks its cells unreachable and adds a warning instead of
// aborting the matrix; downstream consumers exclude those cells from scoring.
type MatrixBuilder struct {
	loader      *cache.Loader
	provider    ports.MatrixProvider
	profile     string
	concurrency int
	retryDelay  time.Duration
	logger      zerolog.Logger
}

func NewMatrixBuilder(loader *cache.Loader, provider ports.MatrixProvider, profile string, logger zerolog.Logger) *MatrixBuilder {
	return &MatrixBuilder{
		loader:      loader,
		provider:    provider,
		profile:     profile,
		concurrency: 4,
		retryDelay:  250 * time.Millisecond,
		logger:      logger.With().Str("service", "matrix").Logger(),
	}
}

type chunkResult struct {
	originStart  int
	destStart    int
	origins      []domain.Coordinates
	destinations []domain.Coordinates
	value        matrixValue
	err          error
}

// Build computes the directed travel matrix for origins x destinations.
// Returned warnings describe any chunks that could not be fetched.
func (b *MatrixBuilder) Build(ctx context.Context, origins, destinations []domain.Coordinates) (_ *domain.TravelMatrix, warnings []string, err error) {
	defer obs.Time(ctx, "matrix.build")(&err)

	matrix := domain.NewTravelMatrix(origins, destinations)
	if len(origins) == 0 || len(destinations) == 0 {
		return matrix, nil, nil
	}

	maxLoc := b.provider.MaxLocations()
	if len(origins)+1 > maxLoc {
		return nil, nil, &domain.InputError{
			Field: "origins",
			Msg:   fmt.Sprintf("%d origins exceed provider capacity (max %d locations per call)", len(origins), maxLoc),
		}
	}

	originChunk := len(origins)
	if originChunk > maxLoc/2 {
		originChunk = maxLoc / 2
	}
	destChunk := maxLoc - originChunk

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		results []chunkResult
	)
	sem := make(chan struct{}, b.concurrency)

	for oi := 0; oi < len(origins); oi += originChunk {
		oEnd := min(oi+originChunk, len(origins))
		for di := 0; di < len(destinations); di += destChunk {
			dEnd := min(di+destChunk, len(destinations))

			res := chunkResult{
				originStart:  oi,
				destStart:    di,
				origins:      origins[oi:oEnd],
				destinations: destinations[di:dEnd],
			}

			wg.Add(1)
			go func() {
				sem <- struct{}{}
				defer wg.Done()
				defer func() { <-sem }()

				res.value, res.err = b.fetchChunk(ctx, res.origins, res.destinations)

				mu.Lock()
				results = append(results, res)
				mu.Unlock()
			}()
		}
	}
	wg.Wait()

	for _, res := range results {
		if res.err != nil {
			b.logger.Warn().Err(res.err).
				Int("origin_start", res.originStart).
				Int("dest_start", res.destStart).
				Msg("matrix chunk failed, marking cells unreachable")
			warnings = append(warnings, fmt.Sprintf(
				"travel times unavailable for %d origin(s) x %d destination(s): %v",
				len(res.origins), len(res.destinations), res.err,
			))
			continue // cells stay at the unreachable zero value
		}

		for i, o := range res.origins {
			for j, d := range res.destinations {
				cell, ok := res.value.Cells[cache.PairKey(o, d)]
				if !ok || !cell.Reachable {
					continue
				}
				matrix.Set(res.originStart+i, res.destStart+j, domain.MatrixCell{
					DurationSeconds: cell.DurationSeconds,
					DistanceMeters:  cell.DistanceMeters,
					Reachable:       true,
				})
			}
		}
	}

	return matrix, warnings, nil
}

// fetchChunk loads one chunk through the cache, with one bounded retry on
// provider failure before giving up.
func (b *MatrixBuilder) fetchChunk(ctx context.Context, origins, destinations []domain.Coordinates) (matrixValue, error) {
	key := cache.MatrixKey(origins, destinations, b.profile)

	val, err := cache.GetOrCompute(ctx, b.loader, key, 0, func(ctx context.Context) (matrixValue, error) {
		grid, err := b.provider.Matrix(ctx, origins, destinations, b.profile)
		if err != nil {
			timer := time.NewTimer(b.retryDelay)
			select {
			case <-ctx.Done():
				timer.Stop()
				return matrixValue{}, ctx.Err()
			case <-timer.C:
			}
			grid, err = b.provider.Matrix(ctx, origins, destinations, b.profile)
			if err != nil {
				return matrixValue{}, err
			}
		}

		value := matrixValue{Cells: make(map[string]matrixCellValue, len(origins)*len(destinations))}
		for i, o := range origins {
			for j, d := range destinations {
				entry := grid[i][j]
				cell := matrixCellValue{}
				if entry.DurationSeconds != nil && entry.DistanceMeters != nil {
					if *entry.DurationSeconds < 0 || *entry.DistanceMeters < 0 {
						return matrixValue{}, &domain.ProviderError{
							Provider: "matrix", Op: "build",
							Err: fmt.Errorf("negative metrics for pair (%d,%d)", i, j),
						}
					}
					cell = matrixCellValue{
						DurationSeconds: *entry.DurationSeconds,
						DistanceMeters:  *entry.DistanceMeters,
						Reachable:       true,
					}
				}
				value.Cells[cache.PairKey(o, d)] = cell
			}
		}
		return value, nil
	})
	if err != nil {
		return matrixValue{}, err
	}
	return val, nil
}
