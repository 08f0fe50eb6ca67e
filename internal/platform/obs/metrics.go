package obs

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "meetingpoint",
		Subsystem: "http",
		Name:      "requests_total",
		Help:      "Total HTTP requests processed",
	}, []string{"method", "path", "status"})

	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "meetingpoint",
		Subsystem: "http",
		Name:      "request_duration_seconds",
		Help:      "HTTP request latency in seconds",
		Buckets:   []float64{0.005, 0.025, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
	}, []string{"method", "path"})

	UpstreamCallDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "meetingpoint",
		Subsystem: "upstream",
		Name:      "call_duration_seconds",
		Help:      "Latency of outbound provider calls",
		Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
	}, []string{"provider", "op"})

	UpstreamCallErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "meetingpoint",
		Subsystem: "upstream",
		Name:      "call_errors_total",
		Help:      "Total failed outbound provider calls",
	}, []string{"provider", "op"})

	CacheHits = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "meetingpoint",
		Subsystem: "cache",
		Name:      "hits_total",
		Help:      "Total cache hits",
	}, []string{"keyspace"})

	CacheMisses = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "meetingpoint",
		Subsystem: "cache",
		Name:      "misses_total",
		Help:      "Total cache misses",
	}, []string{"keyspace"})

	RateLimitDenials = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "meetingpoint",
		Subsystem: "ratelimit",
		Name:      "denials_total",
		Help:      "Total admission denials by caller tier",
	}, []string{"tier"})

	ThrottleQueueDepth = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "meetingpoint",
		Subsystem: "throttle",
		Name:      "queue_depth",
		Help:      "Outbound calls waiting behind the provider throttle",
	}, []string{"provider"})
)
