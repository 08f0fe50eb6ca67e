package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("MEETPOINT_ORS_API_KEY", "test-key")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "memory", cfg.Cache.Backend)
	assert.Equal(t, 24, cfg.Cache.TTLHours)
	assert.Equal(t, "https://api.openrouteservice.org", cfg.ORS.BaseURL)
	assert.Equal(t, 1500, cfg.ORS.SpacingMS)
	assert.Equal(t, 10, cfg.Limits.Anonymous)
	assert.Equal(t, 60, cfg.Limits.Authenticated)
	assert.Equal(t, 0, cfg.Limits.Elevated)
	assert.Equal(t, "exclude", cfg.Ranking.UnreachablePolicy)
	assert.InDelta(t, 1.0, cfg.Ranking.FairnessWeight, 1e-9)
	assert.Empty(t, cfg.Database.URL)
}

func TestLoadRequiresAPIKey(t *testing.T) {
	t.Setenv("MEETPOINT_ORS_API_KEY", "")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ors.api_key")
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("MEETPOINT_ORS_API_KEY", "test-key")
	t.Setenv("MEETPOINT_SERVER_PORT", "9090")
	t.Setenv("MEETPOINT_CACHE_BACKEND", "redis")
	t.Setenv("MEETPOINT_CACHE_REDIS_ADDR", "redis:6379")
	t.Setenv("MEETPOINT_RANKING_UNREACHABLE_POLICY", "penalize")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "redis", cfg.Cache.Backend)
	assert.Equal(t, "redis:6379", cfg.Cache.RedisAddr)
	assert.Equal(t, "penalize", cfg.Ranking.UnreachablePolicy)
}

func validConfig() *Config {
	return &Config{
		Server:  ServerConfig{Port: 8080},
		Cache:   CacheConfig{Backend: "memory", TTLHours: 24},
		ORS:     ORSConfig{APIKey: "k", MaxLocations: 50},
		Limits:  LimitsConfig{WindowSeconds: 60},
		Ranking: RankingConfig{UnreachablePolicy: "exclude"},
	}
}

func TestValidate(t *testing.T) {
	require.NoError(t, validConfig().Validate())

	cases := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"bad port", func(c *Config) { c.Server.Port = 0 }, "server.port"},
		{"missing key", func(c *Config) { c.ORS.APIKey = "  " }, "ors.api_key"},
		{"tiny matrix cap", func(c *Config) { c.ORS.MaxLocations = 2 }, "ors.max_locations"},
		{"unknown backend", func(c *Config) { c.Cache.Backend = "memcached" }, "cache.backend"},
		{"redis without addr", func(c *Config) { c.Cache.Backend = "redis" }, "cache.redis_addr"},
		{"zero ttl", func(c *Config) { c.Cache.TTLHours = 0 }, "cache.ttl_hours"},
		{"zero window", func(c *Config) { c.Limits.WindowSeconds = 0 }, "limits.window_seconds"},
		{"bad policy", func(c *Config) { c.Ranking.UnreachablePolicy = "ignore" }, "unreachable_policy"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := validConfig()
			tc.mutate(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.want)
		})
	}
}
