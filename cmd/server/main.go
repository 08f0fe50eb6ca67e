package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"meetingpoint-service/internal/adapters/cache"
	"meetingpoint-service/internal/adapters/ors"
	"meetingpoint-service/internal/adapters/repositories"
	"meetingpoint-service/internal/api"
	"meetingpoint-service/internal/platform/config"
	"meetingpoint-service/internal/platform/db"
	"meetingpoint-service/internal/ports"
	"meetingpoint-service/internal/ratelimit"
	"meetingpoint-service/internal/services"
)

// main is the application composition root. It wires concrete adapters
// (ORS, cache backend, Postgres) behind ports and starts the HTTP server.
func main() {
	if err := godotenv.Load(); err != nil {
		log.Info().Msg("no .env file found (using environment variables)")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("load config")
	}

	setupLogging(cfg.Log.Level)

	store, closeStore, err := openStore(cfg.Cache)
	if err != nil {
		log.Fatal().Err(err).Msg("open cache store")
	}
	defer closeStore()

	loader := cache.NewLoader(store, time.Duration(cfg.Cache.TTLHours)*time.Hour, log.Logger)

	// One throttle per upstream provider: all ORS traffic funnels through it.
	throttle := ratelimit.NewThrottle(
		"ors",
		time.Duration(cfg.ORS.SpacingMS)*time.Millisecond,
		time.Duration(cfg.ORS.CallTimeoutS)*time.Second,
		cfg.ORS.QueueSize,
		log.Logger,
	)
	defer throttle.Close()

	provider, err := ors.New(ors.Config{
		APIKey:       cfg.ORS.APIKey,
		BaseURL:      cfg.ORS.BaseURL,
		Profile:      cfg.ORS.Profile,
		MaxLocations: cfg.ORS.MaxLocations,
	}, throttle, log.Logger)
	if err != nil {
		log.Fatal().Err(err).Msg("create ORS provider")
	}

	var repo ports.SearchRepository
	if cfg.Database.URL != "" {
		sqlDB, err := db.Open(cfg.Database.URL)
		if err != nil {
			log.Fatal().Err(err).Msg("open postgres")
		}
		defer sqlDB.Close()

		if err := repositories.InitSchema(sqlDB); err != nil {
			log.Fatal().Err(err).Msg("init search history schema")
		}
		repo = repositories.NewPostgresSearchRepository(sqlDB)
	} else {
		log.Info().Msg("no database.url configured, search history disabled")
	}

	resolver := services.NewResolver(loader, provider, cfg.Midpoint.MinConfidence, log.Logger)
	builder := services.NewMatrixBuilder(loader, provider, cfg.ORS.Profile, log.Logger)
	optimizer := services.NewOptimizer(
		builder,
		cfg.Midpoint.CandidateRings,
		cfg.Midpoint.RingSamples,
		cfg.Midpoint.SearchRadiusM,
		cfg.Midpoint.MaxWeiszfeldIter,
		log.Logger,
	)
	ranker := services.NewRanker(
		services.RankWeights{
			FairnessWeight: cfg.Ranking.FairnessWeight,
			MeanWeight:     cfg.Ranking.MeanWeight,
			QualityWeight:  cfg.Ranking.QualityWeight,
		},
		services.UnreachablePolicy(cfg.Ranking.UnreachablePolicy),
		cfg.Ranking.UnreachablePenaltyS,
	)
	service := services.NewMeetingPoint(
		resolver, optimizer, builder, ranker,
		provider, loader, repo,
		cfg.POI.RadiusMeters, cfg.POI.MaxPOIs, cfg.POI.DedupeM,
		log.Logger,
	)

	limiter := ratelimit.NewLimiter(map[ratelimit.Tier]ratelimit.TierConfig{
		ratelimit.TierAnonymous:     {Limit: cfg.Limits.Anonymous, Window: time.Duration(cfg.Limits.WindowSeconds) * time.Second},
		ratelimit.TierAuthenticated: {Limit: cfg.Limits.Authenticated, Window: time.Duration(cfg.Limits.WindowSeconds) * time.Second},
		ratelimit.TierElevated:      {Limit: cfg.Limits.Elevated, Window: time.Duration(cfg.Limits.WindowSeconds) * time.Second},
	}, cfg.Limits.MaxKeys)

	router := api.NewRouter(service, repo, limiter, time.Duration(cfg.Server.RequestTimeout)*time.Second)

	// Write timeout is tuned for cold-cache computations (throttled external
	// API latency dominates).
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout:      time.Duration(cfg.Server.WriteTimeout) * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		log.Info().Int("port", cfg.Server.Port).Msg("server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	log.Info().Msg("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.Server.ShutdownTimeout)*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("shutdown failed")
	}
}

func setupLogging(level string) {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		lvl = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(lvl)
	log.Logger = zerolog.New(os.Stdout).With().Timestamp().Logger()
}

// openStore selects the cache backend. Memory is the default; Redis shares
// entries across replicas.
func openStore(cfg config.CacheConfig) (ports.Store, func(), error) {
	switch cfg.Backend {
	case "redis":
		r, err := cache.NewRedis(cfg.RedisAddr)
		if err != nil {
			return nil, nil, err
		}
		return r, func() { _ = r.Close() }, nil
	default:
		m := cache.NewMemory(time.Duration(cfg.SweepMinutes) * time.Minute)
		return m, m.Stop, nil
	}
}
