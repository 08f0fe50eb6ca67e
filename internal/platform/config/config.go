package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Log      LogConfig      `mapstructure:"log"`
	Cache    CacheConfig    `mapstructure:"cache"`
	ORS      ORSConfig      `mapstructure:"ors"`
	Limits   LimitsConfig   `mapstructure:"limits"`
	Midpoint MidpointConfig `mapstructure:"midpoint"`
	POI      POIConfig      `mapstructure:"poi"`
	Ranking  RankingConfig  `mapstructure:"ranking"`
	Database DatabaseConfig `mapstructure:"database"`
}

type ServerConfig struct {
	Port            int `mapstructure:"port"`
	ReadTimeout     int `mapstructure:"read_timeout"`
	WriteTimeout    int `mapstructure:"write_timeout"`
	RequestTimeout  int `mapstructure:"request_timeout"`
	ShutdownTimeout int `mapstructure:"shutdown_timeout"`
}

type LogConfig struct {
	Level string `mapstructure:"level"`
}

type CacheConfig struct {
	Backend      string `mapstructure:"backend"` // memory | redis
	RedisAddr    string `mapstructure:"redis_addr"`
	TTLHours     int    `mapstructure:"ttl_hours"`
	SweepMinutes int    `mapstructure:"sweep_minutes"`
}

type ORSConfig struct {
	APIKey       string `mapstructure:"api_key"`
	BaseURL      string `mapstructure:"base_url"`
	Profile      string `mapstructure:"profile"`
	MaxLocations int    `mapstructure:"max_locations"`
	SpacingMS    int    `mapstructure:"spacing_ms"`
	CallTimeoutS int    `mapstructure:"call_timeout_s"`
	QueueSize    int    `mapstructure:"queue_size"`
}

type LimitsConfig struct {
	WindowSeconds int `mapstructure:"window_seconds"`
	Anonymous     int `mapstructure:"anonymous"`
	Authenticated int `mapstructure:"authenticated"`
	Elevated      int `mapstructure:"elevated"` // <= 0 means unlimited
	MaxKeys       int `mapstructure:"max_keys"`
}

type MidpointConfig struct {
	CandidateRings   int     `mapstructure:"candidate_rings"`
	RingSamples      int     `mapstructure:"ring_samples"`
	SearchRadiusM    int     `mapstructure:"search_radius_m"`
	MinConfidence    float64 `mapstructure:"min_confidence"`
	MaxWeiszfeldIter int     `mapstructure:"max_weiszfeld_iter"`
}

type POIConfig struct {
	RadiusMeters int    `mapstructure:"radius_meters"`
	Category     string `mapstructure:"category"`
	MaxPOIs      int    `mapstructure:"max_pois"`
	DedupeM      int    `mapstructure:"dedupe_m"`
}

type RankingConfig struct {
	FairnessWeight       float64 `mapstructure:"fairness_weight"`
	MeanWeight           float64 `mapstructure:"mean_weight"`
	QualityWeight        float64 `mapstructure:"quality_weight"`
	UnreachablePolicy    string  `mapstructure:"unreachable_policy"` // exclude | penalize
	UnreachablePenaltyS  int     `mapstructure:"unreachable_penalty_s"`
}

type DatabaseConfig struct {
	URL string `mapstructure:"url"` // empty disables search history
}

// Load reads configuration from file and environment variables.
func Load() (*Config, error) {
	v := viper.New()

	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", 10)
	v.SetDefault("server.write_timeout", 120)
	v.SetDefault("server.request_timeout", 60)
	v.SetDefault("server.shutdown_timeout", 15)
	v.SetDefault("log.level", "info")
	v.SetDefault("cache.backend", "memory")
	v.SetDefault("cache.redis_addr", "localhost:6379")
	v.SetDefault("cache.ttl_hours", 24)
	v.SetDefault("cache.sweep_minutes", 10)
	// Every key needs a default so AutomaticEnv can bind it during Unmarshal.
	v.SetDefault("ors.api_key", "")
	v.SetDefault("ors.base_url", "https://api.openrouteservice.org")
	v.SetDefault("ors.profile", "driving-car")
	v.SetDefault("ors.max_locations", 50)
	v.SetDefault("ors.spacing_ms", 1500)
	v.SetDefault("ors.call_timeout_s", 30)
	v.SetDefault("ors.queue_size", 256)
	v.SetDefault("limits.window_seconds", 60)
	v.SetDefault("limits.anonymous", 10)
	v.SetDefault("limits.authenticated", 60)
	v.SetDefault("limits.elevated", 0)
	v.SetDefault("limits.max_keys", 10000)
	v.SetDefault("midpoint.candidate_rings", 2)
	v.SetDefault("midpoint.ring_samples", 4)
	v.SetDefault("midpoint.search_radius_m", 2000)
	v.SetDefault("midpoint.min_confidence", 0)
	v.SetDefault("midpoint.max_weiszfeld_iter", 50)
	v.SetDefault("poi.radius_meters", 1500)
	v.SetDefault("poi.category", "")
	v.SetDefault("poi.max_pois", 25)
	v.SetDefault("poi.dedupe_m", 25)
	v.SetDefault("ranking.fairness_weight", 1.0)
	v.SetDefault("ranking.mean_weight", 0.5)
	v.SetDefault("ranking.quality_weight", 0.1)
	v.SetDefault("ranking.unreachable_policy", "exclude")
	v.SetDefault("ranking.unreachable_penalty_s", 3600)
	v.SetDefault("database.url", "")

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./configs")
	_ = v.ReadInConfig() // OK if missing

	// Environment variables: MEETPOINT_ORS_API_KEY -> ors.api_key
	v.SetEnvPrefix("MEETPOINT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks that required configuration fields are present and sane.
func (c *Config) Validate() error {
	var errs []string

	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Sprintf("server.port must be 1-65535, got %d", c.Server.Port))
	}
	if strings.TrimSpace(c.ORS.APIKey) == "" {
		errs = append(errs, "ors.api_key is required")
	}
	if c.ORS.MaxLocations < 3 {
		errs = append(errs, "ors.max_locations must be at least 3")
	}
	if c.Cache.Backend != "memory" && c.Cache.Backend != "redis" {
		errs = append(errs, fmt.Sprintf("cache.backend must be memory or redis, got %q", c.Cache.Backend))
	}
	if c.Cache.Backend == "redis" && c.Cache.RedisAddr == "" {
		errs = append(errs, "cache.redis_addr is required for the redis backend")
	}
	if c.Cache.TTLHours <= 0 {
		errs = append(errs, "cache.ttl_hours must be positive")
	}
	if c.Limits.WindowSeconds <= 0 {
		errs = append(errs, "limits.window_seconds must be positive")
	}
	if p := c.Ranking.UnreachablePolicy; p != "exclude" && p != "penalize" {
		errs = append(errs, fmt.Sprintf("ranking.unreachable_policy must be exclude or penalize, got %q", p))
	}
	if c.Midpoint.RingSamples < 0 || c.Midpoint.CandidateRings < 0 {
		errs = append(errs, "midpoint.candidate_rings and midpoint.ring_samples must be non-negative")
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}
