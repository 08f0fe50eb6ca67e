package handlers

import (
	"net/http"
	"strconv"

	"github.com/rs/zerolog/log"

	"meetingpoint-service/internal/api/dto"
	"meetingpoint-service/internal/ports"
)

type SearchesHandler struct {
	Repo ports.SearchRepository
}

// List returns the most recent meeting-point searches.
func (h *SearchesHandler) List(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", http.MethodGet)
		writeError(w, r, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	if h.Repo == nil {
		writeError(w, r, http.StatusNotFound, "search history is disabled")
		return
	}

	limit := 20
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > 100 {
			writeError(w, r, http.StatusBadRequest, "limit must be between 1 and 100")
			return
		}
		limit = n
	}

	records, err := h.Repo.ListSearches(r.Context(), limit)
	if err != nil {
		log.Error().Err(err).Msg("list searches failed")
		writeError(w, r, http.StatusInternalServerError, "internal server error")
		return
	}

	res := dto.ListSearchesResponse{Searches: make([]dto.SearchRecord, 0, len(records))}
	for _, rec := range records {
		res.Searches = append(res.Searches, dto.SearchRecord{
			ID:        rec.ID,
			Addresses: rec.Addresses,
			Midpoint:  dto.Coordinate{Lat: rec.Midpoint.Lat, Lon: rec.Midpoint.Lon},
			CreatedAt: rec.CreatedAt,
		})
	}

	writeJSON(w, r, http.StatusOK, res)
}
