package api

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"meetingpoint-service/internal/api/handlers"
	"meetingpoint-service/internal/ports"
	"meetingpoint-service/internal/ratelimit"
	"meetingpoint-service/internal/services"
)

// NewRouter wires HTTP handlers with their dependencies and returns an
// http.Handler. This is the API composition root (handlers stay unaware of
// concrete adapters). Admission control applies to the compute and history
// endpoints; liveness and metrics stay unthrottled.
func NewRouter(
	service *services.MeetingPoint,
	repo ports.SearchRepository,
	limiter *ratelimit.Limiter,
	requestTimeout time.Duration,
) http.Handler {
	mux := http.NewServeMux()

	mpHandler := &handlers.MeetingPointHandler{
		Service:        service,
		RequestTimeout: requestTimeout,
	}
	searchHandler := &handlers.SearchesHandler{Repo: repo}

	mux.HandleFunc("/health", handlers.Health)
	mux.Handle("/metrics", promhttp.Handler())
	mux.Handle("/api/v1/meeting-point", rateLimitMiddleware(limiter, http.HandlerFunc(mpHandler.Compute)))
	mux.Handle("/api/v1/searches", rateLimitMiddleware(limiter, http.HandlerFunc(searchHandler.List)))

	return requestIDMiddleware(loggingMiddleware(mux))
}
