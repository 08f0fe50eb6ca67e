package services

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"go.uber.org/atomic"

	"meetingpoint-service/internal/adapters/cache"
	"meetingpoint-service/internal/domain"
	"meetingpoint-service/internal/ports"
)

func newTestLoader() *cache.Loader {
	return cache.NewLoader(cache.NewMemory(0), time.Hour, zerolog.Nop())
}

// stubGeocoder serves canned results per exact query text.
type stubGeocoder struct {
	results map[string][]ports.GeocodeResult
	errs    map[string]error
	calls   atomic.Int64
}

func (s *stubGeocoder) Search(_ context.Context, text string) ([]ports.GeocodeResult, error) {
	s.calls.Inc()
	if err, ok := s.errs[text]; ok {
		return nil, err
	}
	return s.results[text], nil
}

// stubMatrix derives durations from great-circle distance at a fixed speed,
// so travel times are consistent with geometry. failFirst fails that many
// leading calls; failDest fails any call whose destinations include it.
type stubMatrix struct {
	maxLocations int
	speedMPS     float64

	mu         sync.Mutex
	calls      int
	failFirst  int
	failDest   *domain.Coordinates
	unroutable map[domain.Coordinates]bool
}

func (s *stubMatrix) MaxLocations() int {
	if s.maxLocations > 0 {
		return s.maxLocations
	}
	return 100
}

func (s *stubMatrix) Calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

func (s *stubMatrix) Matrix(_ context.Context, origins, destinations []domain.Coordinates, _ string) ([][]ports.MatrixEntry, error) {
	s.mu.Lock()
	s.calls++
	if s.failFirst > 0 {
		s.failFirst--
		s.mu.Unlock()
		return nil, &domain.ProviderError{Provider: "stub", Op: "matrix", Status: 503}
	}
	s.mu.Unlock()

	if s.failDest != nil {
		for _, d := range destinations {
			if d == *s.failDest {
				return nil, &domain.ProviderError{Provider: "stub", Op: "matrix", Status: 500}
			}
		}
	}

	speed := s.speedMPS
	if speed <= 0 {
		speed = 10
	}

	grid := make([][]ports.MatrixEntry, len(origins))
	for i, o := range origins {
		grid[i] = make([]ports.MatrixEntry, len(destinations))
		for j, d := range destinations {
			if s.unroutable[o] || s.unroutable[d] {
				continue
			}
			meters := int(distanceMeters(o, d))
			seconds := int(float64(meters) / speed)
			m, sec := meters, seconds
			grid[i][j] = ports.MatrixEntry{DurationSeconds: &sec, DistanceMeters: &m}
		}
	}
	return grid, nil
}

// stubPlaces returns a fixed POI list, or an error.
type stubPlaces struct {
	pois  []domain.CandidatePOI
	err   error
	calls atomic.Int64
}

func (s *stubPlaces) SearchPOIs(context.Context, domain.Coordinates, int, string) ([]domain.CandidatePOI, error) {
	s.calls.Inc()
	if s.err != nil {
		return nil, s.err
	}
	return s.pois, nil
}
