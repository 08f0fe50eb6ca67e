package ors

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"meetingpoint-service/internal/domain"
	"meetingpoint-service/internal/platform/obs"
)

type poiRequest struct {
	Request  string      `json:"request"`
	Geometry poiGeometry `json:"geometry"`
}

type poiGeometry struct {
	GeoJSON poiPoint `json:"geojson"`
	Buffer  int      `json:"buffer"`
}

type poiPoint struct {
	Type        string    `json:"type"`
	Coordinates []float64 `json:"coordinates"`
}

type poiResponse struct {
	Features []struct {
		Geometry struct {
			Coordinates []float64 `json:"coordinates"`
		} `json:"geometry"`
		Properties struct {
			OSMID       json.Number       `json:"osm_id"`
			OSMTags     map[string]string `json:"osm_tags"`
			CategoryIDs map[string]struct {
				CategoryName  string `json:"category_name"`
				CategoryGroup string `json:"category_group"`
			} `json:"category_ids"`
		} `json:"properties"`
	} `json:"features"`
}

// SearchPOIs finds points of interest around center using the /pois endpoint.
// Results keep the provider's relevance order; a descending rank score is
// derived from that order for downstream tie-breaking. Category filtering is
// applied client-side against the provider's category groups, since the
// upstream filter vocabulary is numeric ids.
func (p *Provider) SearchPOIs(ctx context.Context, center domain.Coordinates, radiusMeters int, category string) (_ []domain.CandidatePOI, err error) {
	defer obs.Time(ctx, "ors.pois")(&err)

	endpoint := p.baseURL + "/pois"

	payload, err := json.Marshal(poiRequest{
		Request: "pois",
		Geometry: poiGeometry{
			GeoJSON: poiPoint{Type: "Point", Coordinates: center.CoordsToList()},
			Buffer:  radiusMeters,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("marshal poi request: %w", err)
	}

	var decoded poiResponse
	err = p.throttle.Do(ctx, func(callCtx context.Context) error {
		resp, err := p.doWithRetry(callCtx, "pois", func(c context.Context) (*http.Request, error) {
			return p.newRequest(c, http.MethodPost, endpoint, bytes.NewReader(payload))
		})
		if err != nil {
			return &domain.ProviderError{Provider: "ors", Op: "pois", Status: statusOf(err), Err: err}
		}
		defer resp.Body.Close()

		if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
			return &domain.ProviderError{Provider: "ors", Op: "pois", Err: fmt.Errorf("decode response: %w", err)}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	out := make([]domain.CandidatePOI, 0, len(decoded.Features))
	for i, f := range decoded.Features {
		coords := f.Geometry.Coordinates
		if len(coords) != 2 {
			continue
		}

		var cat string
		for _, c := range f.Properties.CategoryIDs {
			cat = c.CategoryGroup
			break
		}
		if category != "" && cat != "" && cat != category {
			continue
		}

		id := f.Properties.OSMID.String()
		if id == "" {
			id = "poi-" + strconv.Itoa(i)
		}

		poi := domain.CandidatePOI{
			ID:       id,
			Coord:    domain.Coordinates{Lat: coords[1], Lon: coords[0]},
			Category: cat,
			Tags:     f.Properties.OSMTags,
			// Provider order is relevance order; earlier features rank higher.
			Relevance: 1 - float64(i)/float64(len(decoded.Features)),
		}
		if name, ok := f.Properties.OSMTags["name"]; ok {
			poi.Name = name
		}
		out = append(out, poi)
	}

	return out, nil
}
