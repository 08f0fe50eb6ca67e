package ors

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"meetingpoint-service/internal/domain"
	"meetingpoint-service/internal/platform/obs"
	"meetingpoint-service/internal/ports"
)

type geocodeResponse struct {
	Features []struct {
		Geometry struct {
			Coordinates []float64 `json:"coordinates"`
		} `json:"geometry"`
		Properties struct {
			Label      string  `json:"label"`
			Confidence float64 `json:"confidence"`
		} `json:"properties"`
	} `json:"features"`
}

// Search resolves a free-text address using /geocode/search. An empty result
// list is a normal outcome; transport failures surface as ProviderError.
func (p *Provider) Search(ctx context.Context, text string) (_ []ports.GeocodeResult, err error) {
	defer obs.Time(ctx, "ors.geocode")(&err)

	endpoint := p.baseURL + "/geocode/search"

	var decoded geocodeResponse
	err = p.throttle.Do(ctx, func(callCtx context.Context) error {
		resp, err := p.doWithRetry(callCtx, "geocode", func(c context.Context) (*http.Request, error) {
			req, err := p.newRequest(c, http.MethodGet, endpoint, nil)
			if err != nil {
				return nil, err
			}
			q := req.URL.Query()
			q.Set("text", text)
			q.Set("size", "5")
			req.URL.RawQuery = q.Encode()
			return req, nil
		})
		if err != nil {
			return &domain.ProviderError{Provider: "ors", Op: "geocode", Status: statusOf(err), Err: err}
		}
		defer resp.Body.Close()

		if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
			return &domain.ProviderError{Provider: "ors", Op: "geocode", Err: fmt.Errorf("decode response: %w", err)}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	out := make([]ports.GeocodeResult, 0, len(decoded.Features))
	for _, f := range decoded.Features {
		coords := f.Geometry.Coordinates
		if len(coords) != 2 {
			continue
		}
		out = append(out, ports.GeocodeResult{
			Coord:      domain.Coordinates{Lat: coords[1], Lon: coords[0]},
			Confidence: f.Properties.Confidence,
			Label:      f.Properties.Label,
		})
	}
	return out, nil
}
