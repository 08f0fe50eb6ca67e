package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/rs/zerolog/log"

	"meetingpoint-service/internal/api/dto"
	"meetingpoint-service/internal/domain"
	"meetingpoint-service/internal/services"
)

type MeetingPointHandler struct {
	Service        *services.MeetingPoint
	RequestTimeout time.Duration
}

// Compute handles the single caller-facing operation: origins in, midpoint
// and fairness-ranked POIs out. The request deadline propagates through every
// downstream geocode, matrix, and POI call.
func (h *MeetingPointHandler) Compute(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		writeError(w, r, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var req dto.ComputeRequest

	dec := json.NewDecoder(r.Body)
	defer r.Body.Close()
	dec.DisallowUnknownFields()

	if err := dec.Decode(&req); err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid json body")
		return
	}
	if err := dec.Decode(&struct{}{}); err != io.EOF {
		writeError(w, r, http.StatusBadRequest, "body must contain only one JSON object")
		return
	}

	origins := make([]services.OriginInput, 0, len(req.Origins))
	for _, o := range req.Origins {
		in := services.OriginInput{Address: o.Address}
		if o.Lat != nil && o.Lon != nil {
			in.Coord = &domain.Coordinates{Lat: *o.Lat, Lon: *o.Lon}
		}
		origins = append(origins, in)
	}

	ctx := r.Context()
	if h.RequestTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.RequestTimeout)
		defer cancel()
	}

	result, err := h.Service.Compute(ctx, services.ComputeRequest{
		Origins:      origins,
		Category:     req.Category,
		RadiusMeters: req.RadiusMeters,
		MaxResults:   req.MaxResults,
	})
	if err != nil {
		writeComputeError(w, r, err)
		return
	}

	writeJSON(w, r, http.StatusOK, toComputeResponse(result))
}

// writeComputeError maps the engine's error taxonomy onto HTTP statuses.
func writeComputeError(w http.ResponseWriter, r *http.Request, err error) {
	var inputErr *domain.InputError
	if errors.As(err, &inputErr) {
		writeError(w, r, http.StatusBadRequest, inputErr.Error())
		return
	}

	var geoErr *domain.GeocodeError
	if errors.As(err, &geoErr) && errors.Is(err, domain.ErrNotFound) {
		writeError(w, r, http.StatusUnprocessableEntity, geoErr.Error())
		return
	}

	var quotaErr *domain.QuotaError
	if errors.As(err, &quotaErr) {
		retry := int(time.Until(quotaErr.ResetAt).Seconds()) + 1
		w.Header().Set("Retry-After", strconv.Itoa(retry))
		writeError(w, r, http.StatusTooManyRequests, quotaErr.Error())
		return
	}

	if errors.Is(err, context.DeadlineExceeded) {
		writeError(w, r, http.StatusGatewayTimeout, "request timed out")
		return
	}

	var provErr *domain.ProviderError
	if errors.As(err, &provErr) {
		log.Error().Err(err).Msg("upstream provider failed")
		writeError(w, r, http.StatusBadGateway, "upstream provider unavailable")
		return
	}

	log.Error().Err(err).Msg("compute meeting point failed")
	writeError(w, r, http.StatusInternalServerError, "internal server error")
}

func toComputeResponse(result *services.ComputeResult) dto.ComputeResponse {
	res := dto.ComputeResponse{
		Midpoint:   dto.Coordinate{Lat: result.Midpoint.Lat, Lon: result.Midpoint.Lon},
		Origins:    make([]dto.ResolvedOrigin, 0, len(result.Origins)),
		RankedPOIs: make([]dto.ScoredPOI, 0, len(result.RankedPOIs)),
		Warnings:   result.Warnings,
	}

	for _, loc := range result.Origins {
		res.Origins = append(res.Origins, dto.ResolvedOrigin{
			Address:    loc.Address,
			Coord:      dto.Coordinate{Lat: loc.Coord.Lat, Lon: loc.Coord.Lon},
			Provider:   loc.Provider,
			Confidence: loc.Confidence,
		})
	}

	for _, sp := range result.RankedPOIs {
		travel := make([]dto.TravelCell, 0, len(sp.Cells))
		for i, c := range sp.Cells {
			travel = append(travel, dto.TravelCell{
				OriginIndex:     i,
				DurationSeconds: c.DurationSeconds,
				DistanceMeters:  c.DistanceMeters,
				Reachable:       c.Reachable,
			})
		}

		res.RankedPOIs = append(res.RankedPOIs, dto.ScoredPOI{
			ID:            sp.POI.ID,
			Name:          sp.POI.Name,
			Category:      sp.POI.Category,
			Coord:         dto.Coordinate{Lat: sp.POI.Coord.Lat, Lon: sp.POI.Coord.Lon},
			Score:         sp.Score,
			MeanSeconds:   sp.MeanSeconds,
			SpreadSeconds: sp.SpreadSeconds,
			Penalized:     sp.Penalized,
			Travel:        travel,
		})
	}

	return res
}
