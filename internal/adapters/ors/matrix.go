package ors

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"math"
	"net/http"

	"meetingpoint-service/internal/domain"
	"meetingpoint-service/internal/platform/obs"
	"meetingpoint-service/internal/ports"
)

type matrixRequest struct {
	Locations    [][]float64 `json:"locations"`
	Sources      []int       `json:"sources"`
	Destinations []int       `json:"destinations"`
	Metrics      []string    `json:"metrics"`
}

type matrixResponse struct {
	Durations [][]*float64 `json:"durations"`
	Distances [][]*float64 `json:"distances"`
}

// Matrix retrieves a directed duration/distance grid from /v2/matrix.
// Unroutable pairs come back as nil entries, never as zeros. The caller is
// responsible for keeping len(origins)+len(destinations) under MaxLocations.
func (p *Provider) Matrix(ctx context.Context, origins, destinations []domain.Coordinates, profile string) (_ [][]ports.MatrixEntry, err error) {
	defer obs.Time(ctx, "ors.matrix")(&err)

	if len(origins) == 0 || len(destinations) == 0 {
		return [][]ports.MatrixEntry{}, nil
	}
	if total := len(origins) + len(destinations); total > p.maxLocations {
		return nil, &domain.InputError{Field: "locations", Msg: fmt.Sprintf("%d coordinates exceed provider cap %d", total, p.maxLocations)}
	}
	if profile == "" {
		profile = p.profile
	}

	endpoint := fmt.Sprintf("%s/v2/matrix/%s", p.baseURL, profile)

	locations := make([][]float64, 0, len(origins)+len(destinations))
	sources := make([]int, 0, len(origins))
	dests := make([]int, 0, len(destinations))
	for _, c := range origins {
		sources = append(sources, len(locations))
		locations = append(locations, c.CoordsToList())
	}
	for _, c := range destinations {
		dests = append(dests, len(locations))
		locations = append(locations, c.CoordsToList())
	}

	payload, err := json.Marshal(matrixRequest{
		Locations:    locations,
		Sources:      sources,
		Destinations: dests,
		Metrics:      []string{"distance", "duration"},
	})
	if err != nil {
		return nil, fmt.Errorf("marshal matrix request: %w", err)
	}

	var mr matrixResponse
	err = p.throttle.Do(ctx, func(callCtx context.Context) error {
		resp, err := p.doWithRetry(callCtx, "matrix", func(c context.Context) (*http.Request, error) {
			return p.newRequest(c, http.MethodPost, endpoint, bytes.NewReader(payload))
		})
		if err != nil {
			return &domain.ProviderError{Provider: "ors", Op: "matrix", Status: statusOf(err), Err: err}
		}
		defer resp.Body.Close()

		if err := json.NewDecoder(resp.Body).Decode(&mr); err != nil {
			return &domain.ProviderError{Provider: "ors", Op: "matrix", Err: fmt.Errorf("decode response: %w", err)}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if len(mr.Durations) != len(origins) || len(mr.Distances) != len(origins) {
		return nil, &domain.ProviderError{
			Provider: "ors", Op: "matrix",
			Err: fmt.Errorf("expected %d rows, got durations=%d distances=%d", len(origins), len(mr.Durations), len(mr.Distances)),
		}
	}

	grid := make([][]ports.MatrixEntry, len(origins))
	for i := range origins {
		durRow, distRow := mr.Durations[i], mr.Distances[i]
		if len(durRow) != len(destinations) || len(distRow) != len(destinations) {
			return nil, &domain.ProviderError{
				Provider: "ors", Op: "matrix",
				Err: fmt.Errorf("row %d length mismatch: durations=%d distances=%d destinations=%d", i, len(durRow), len(distRow), len(destinations)),
			}
		}

		grid[i] = make([]ports.MatrixEntry, len(destinations))
		for j := range destinations {
			if durRow[j] == nil || distRow[j] == nil {
				continue // unroutable pair, entry stays nil
			}
			seconds := int(math.Round(*durRow[j]))
			meters := int(math.Round(*distRow[j]))
			grid[i][j] = ports.MatrixEntry{DurationSeconds: &seconds, DistanceMeters: &meters}
		}
	}

	return grid, nil
}
