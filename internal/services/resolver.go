package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"meetingpoint-service/internal/adapters/cache"
	"meetingpoint-service/internal/domain"
	"meetingpoint-service/internal/platform/obs"
	"meetingpoint-service/internal/ports"
)

// geocodeValue is the cached shape of a successful geocode lookup.
type geocodeValue struct {
	Lat        float64 `json:"lat"`
	Lon        float64 `json:"lon"`
	Confidence float64 `json:"confidence"`
	Label      string  `json:"label"`
}

// Resolver turns free-text addresses into coordinates: cache first, then the
// geocoding provider. Not-found and provider failure are distinct outcomes
// and neither is cached, so a transient upstream error does not poison the
// entry for the TTL window.
type Resolver struct {
	loader   *cache.Loader
	provider ports.GeocodeProvider

	// minConfidence rejects matches below the floor as not found. Zero keeps
	// first-result behavior.
	minConfidence float64

	logger zerolog.Logger
}

func NewResolver(loader *cache.Loader, provider ports.GeocodeProvider, minConfidence float64, logger zerolog.Logger) *Resolver {
	return &Resolver{
		loader:        loader,
		provider:      provider,
		minConfidence: minConfidence,
		logger:        logger.With().Str("service", "resolver").Logger(),
	}
}

// Resolve geocodes one address. Returns domain.ErrNotFound (wrapped) when the
// provider has no acceptable match, or the provider's error otherwise.
func (r *Resolver) Resolve(ctx context.Context, address string) (_ domain.Location, err error) {
	defer obs.Time(ctx, "resolver.resolve")(&err)

	if strings.TrimSpace(address) == "" {
		return domain.Location{}, &domain.InputError{Field: "address", Msg: "must be non-empty"}
	}

	key := cache.GeocodeKey(address)
	val, err := cache.GetOrCompute(ctx, r.loader, key, 0, func(ctx context.Context) (geocodeValue, error) {
		results, err := r.provider.Search(ctx, address)
		if err != nil {
			return geocodeValue{}, err
		}

		best, ok := r.pickBest(results)
		if !ok {
			return geocodeValue{}, fmt.Errorf("address %q: %w", address, domain.ErrNotFound)
		}
		return geocodeValue{
			Lat:        best.Coord.Lat,
			Lon:        best.Coord.Lon,
			Confidence: best.Confidence,
			Label:      best.Label,
		}, nil
	})
	if err != nil {
		return domain.Location{}, err
	}

	coord := domain.Coordinates{Lat: val.Lat, Lon: val.Lon}
	if err := coord.Validate(); err != nil {
		return domain.Location{}, &domain.ProviderError{Provider: "geocode", Op: "resolve", Err: err}
	}

	return domain.Location{
		Address:    address,
		Coord:      &coord,
		Provider:   "ors",
		Confidence: val.Confidence,
	}, nil
}

// pickBest takes the highest-confidence result at or above the floor,
// preferring provider order on ties.
func (r *Resolver) pickBest(results []ports.GeocodeResult) (ports.GeocodeResult, bool) {
	var best ports.GeocodeResult
	found := false
	for _, res := range results {
		if res.Confidence < r.minConfidence {
			continue
		}
		if !found || res.Confidence > best.Confidence {
			best = res
			found = true
		}
	}
	return best, found
}

// ResolveAll resolves every origin concurrently. Any failure aborts the whole
// set: silently dropping an origin would change the fairness semantics the
// caller asked for. The returned error identifies the offending address.
func (r *Resolver) ResolveAll(ctx context.Context, addresses []string) (_ []domain.Location, err error) {
	defer obs.Time(ctx, "resolver.resolveAll")(&err)

	locations := make([]domain.Location, len(addresses))

	g, gctx := errgroup.WithContext(ctx)
	for i, addr := range addresses {
		g.Go(func() error {
			loc, err := r.Resolve(gctx, addr)
			if err != nil {
				return &domain.GeocodeError{Address: addr, Err: err}
			}
			locations[i] = loc
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return locations, nil
}
