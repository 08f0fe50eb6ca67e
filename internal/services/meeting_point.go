package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"meetingpoint-service/internal/adapters/cache"
	"meetingpoint-service/internal/domain"
	"meetingpoint-service/internal/platform/obs"
	"meetingpoint-service/internal/ports"
)

// OriginInput is one party's starting point: a free-text address, or an
// already-known coordinate that skips geocoding.
type OriginInput struct {
	Address string
	Coord   *domain.Coordinates
}

// ComputeRequest is the engine's single caller-facing operation input.
type ComputeRequest struct {
	Origins      []OriginInput
	Category     string
	RadiusMeters int
	MaxResults   int
}

// ComputeResult is the engine's response: the chosen midpoint, the ranked
// POIs around it, and explicit warnings for every degraded part.
type ComputeResult struct {
	Midpoint   domain.Coordinates
	Origins    []domain.Location
	RankedPOIs []domain.ScoredPOI
	Warnings   []string
}

// MeetingPoint composes geocoding, midpoint optimization, POI retrieval,
// matrix building, and ranking into the end-to-end flow, and owns the
// partial-failure policy: a failed origin geocode fails the whole request
// (identifying the address), while POI retrieval or scoring gaps degrade the
// response with warnings instead of failing it.
type MeetingPoint struct {
	resolver  *Resolver
	optimizer *Optimizer
	builder   *MatrixBuilder
	ranker    *Ranker
	places    ports.PlacesProvider
	loader    *cache.Loader
	repo      ports.SearchRepository // nil disables search history

	defaultRadiusM int
	maxResults     int
	dedupeM        int

	logger zerolog.Logger
}

func NewMeetingPoint(
	resolver *Resolver,
	optimizer *Optimizer,
	builder *MatrixBuilder,
	ranker *Ranker,
	places ports.PlacesProvider,
	loader *cache.Loader,
	repo ports.SearchRepository,
	defaultRadiusM, maxResults, dedupeM int,
	logger zerolog.Logger,
) *MeetingPoint {
	if defaultRadiusM <= 0 {
		defaultRadiusM = 1500
	}
	if maxResults <= 0 {
		maxResults = 25
	}
	return &MeetingPoint{
		resolver:       resolver,
		optimizer:      optimizer,
		builder:        builder,
		ranker:         ranker,
		places:         places,
		loader:         loader,
		repo:           repo,
		defaultRadiusM: defaultRadiusM,
		maxResults:     maxResults,
		dedupeM:        dedupeM,
		logger:         logger.With().Str("service", "meetingpoint").Logger(),
	}
}

// Compute runs the full meeting-point flow for one request.
func (m *MeetingPoint) Compute(ctx context.Context, req ComputeRequest) (_ *ComputeResult, err error) {
	defer obs.Time(ctx, "meetingpoint.compute")(&err)

	origins, err := m.resolveOrigins(ctx, req.Origins)
	if err != nil {
		return nil, err
	}

	coords := make([]domain.Coordinates, len(origins))
	for i, loc := range origins {
		coords[i] = *loc.Coord
	}

	candidates, warnings, err := m.optimizer.Optimize(ctx, coords)
	if err != nil {
		return nil, fmt.Errorf("optimize midpoint: %w", err)
	}
	midpoint := candidates[0].Coord

	result := &ComputeResult{
		Midpoint: midpoint,
		Origins:  origins,
		Warnings: warnings,
	}

	radius := req.RadiusMeters
	if radius <= 0 {
		radius = m.defaultRadiusM
	}

	pois, err := m.searchPOIs(ctx, midpoint, radius, req.Category)
	if err != nil {
		// Degrade: the midpoint alone is still a useful answer.
		m.logger.Warn().Err(err).Msg("poi retrieval failed, returning midpoint only")
		result.Warnings = append(result.Warnings, fmt.Sprintf("points of interest unavailable: %v", err))
		m.persist(ctx, req, midpoint)
		return result, nil
	}

	pois = DedupePOIs(pois, m.dedupeM)
	if len(pois) == 0 {
		result.Warnings = append(result.Warnings, "no points of interest found near the midpoint")
		m.persist(ctx, req, midpoint)
		return result, nil
	}

	destinations := make([]domain.Coordinates, len(pois))
	for i, p := range pois {
		destinations[i] = p.Coord
	}

	matrix, buildWarnings, err := m.builder.Build(ctx, coords, destinations)
	if err != nil {
		return nil, fmt.Errorf("build poi matrix: %w", err)
	}
	result.Warnings = append(result.Warnings, buildWarnings...)

	ranked := m.ranker.Rank(pois, matrix)
	if dropped := len(pois) - len(ranked); dropped > 0 {
		result.Warnings = append(result.Warnings, fmt.Sprintf(
			"%d of %d candidate POIs could not be scored", dropped, len(pois),
		))
	}
	limit := m.maxResults
	if req.MaxResults > 0 && req.MaxResults < limit {
		limit = req.MaxResults
	}
	if len(ranked) > limit {
		ranked = ranked[:limit]
	}
	result.RankedPOIs = ranked

	m.persist(ctx, req, midpoint)
	return result, nil
}

// resolveOrigins validates and geocodes the request origins. Pre-resolved
// coordinates are validated and passed through; addresses resolve
// concurrently and any failure identifies the offending address.
func (m *MeetingPoint) resolveOrigins(ctx context.Context, inputs []OriginInput) ([]domain.Location, error) {
	if len(inputs) == 0 {
		return nil, &domain.InputError{Field: "origins", Msg: "must be non-empty"}
	}

	locations := make([]domain.Location, len(inputs))
	var pending []string
	var pendingIdx []int

	for i, in := range inputs {
		if in.Coord != nil {
			if err := in.Coord.Validate(); err != nil {
				return nil, &domain.InputError{Field: fmt.Sprintf("origins[%d]", i), Msg: err.Error()}
			}
			c := *in.Coord
			locations[i] = domain.Location{Address: in.Address, Coord: &c, Provider: "caller"}
			continue
		}
		if in.Address == "" {
			return nil, &domain.InputError{Field: fmt.Sprintf("origins[%d]", i), Msg: "address or coordinate required"}
		}
		pending = append(pending, in.Address)
		pendingIdx = append(pendingIdx, i)
	}

	if len(pending) > 0 {
		resolved, err := m.resolver.ResolveAll(ctx, pending)
		if err != nil {
			return nil, err
		}
		for k, loc := range resolved {
			locations[pendingIdx[k]] = loc
		}
	}

	return locations, nil
}

func (m *MeetingPoint) searchPOIs(ctx context.Context, center domain.Coordinates, radiusM int, category string) ([]domain.CandidatePOI, error) {
	key := cache.POIKey(center, radiusM, category)
	return cache.GetOrCompute(ctx, m.loader, key, 0, func(ctx context.Context) ([]domain.CandidatePOI, error) {
		return m.places.SearchPOIs(ctx, center, radiusM, category)
	})
}

// persist records the search best-effort; history must never fail a request.
func (m *MeetingPoint) persist(ctx context.Context, req ComputeRequest, midpoint domain.Coordinates) {
	if m.repo == nil {
		return
	}

	addresses := make([]string, len(req.Origins))
	for i, in := range req.Origins {
		if in.Address != "" {
			addresses[i] = in.Address
		} else if in.Coord != nil {
			addresses[i] = fmt.Sprintf("%.5f,%.5f", in.Coord.Lat, in.Coord.Lon)
		}
	}

	rec := ports.SearchRecord{
		ID:        uuid.NewString(),
		Addresses: addresses,
		Midpoint:  midpoint,
		CreatedAt: time.Now().UTC(),
	}
	if err := m.repo.SaveSearch(ctx, rec); err != nil {
		m.logger.Warn().Err(err).Msg("search history write failed")
	}
}
