package ors

import (
	"errors"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"meetingpoint-service/internal/ratelimit"
)

// Provider implements the geocoding, matrix, and POI ports against
// OpenRouteService.
//
// Every outbound call is funneled through a shared Throttle so the account's
// global quota is respected no matter how many requests are in flight. The
// provider itself performs transient-failure retries with backoff; quota and
// cache policy live in the callers.
//
// The provider is safe for concurrent use.
type Provider struct {
	session      *http.Client
	apiKey       string
	baseURL      string
	profile      string
	maxLocations int
	throttle     *ratelimit.Throttle
	logger       zerolog.Logger
}

type Config struct {
	APIKey       string
	BaseURL      string
	Profile      string
	MaxLocations int
}

func New(cfg Config, throttle *ratelimit.Throttle, logger zerolog.Logger) (*Provider, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("ORS api key is empty")
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.openrouteservice.org"
	}
	if cfg.Profile == "" {
		cfg.Profile = "driving-car"
	}
	if cfg.MaxLocations <= 0 {
		// Documented free-tier cap on coordinates per matrix call.
		cfg.MaxLocations = 50
	}

	return &Provider{
		session:      &http.Client{Timeout: 10 * time.Second},
		apiKey:       cfg.APIKey,
		baseURL:      cfg.BaseURL,
		profile:      cfg.Profile,
		maxLocations: cfg.MaxLocations,
		throttle:     throttle,
		logger:       logger.With().Str("adapter", "ors").Logger(),
	}, nil
}

// MaxLocations is the provider cap on coordinates per matrix call.
func (p *Provider) MaxLocations() int { return p.maxLocations }

// Profile is the configured routing profile (e.g. driving-car).
func (p *Provider) Profile() string { return p.profile }
