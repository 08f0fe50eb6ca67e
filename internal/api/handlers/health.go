package handlers

import (
	"net/http"
)

// Health answers liveness probes. It reports nothing about upstream
// providers or the database; a degraded dependency surfaces as warnings or
// errors on the compute path, not here.
func Health(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", http.MethodGet)
		writeError(w, r, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	writeJSON(w, r, http.StatusOK, map[string]string{
		"status":  "ok",
		"service": "meetingpoint",
	})
}
