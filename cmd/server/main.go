package main

import (
	"context"
	"fmt"
	"os"

	"github.com/quevendi/backend/config"
	httpDelivery "github.com/quevendi/backend/internal/delivery/http"
	"github.com/quevendi/backend/internal/domain"
	"github.com/quevendi/backend/internal/infrastructure/cache"
	"github.com/quevendi/backend/internal/infrastructure/catalog"
	"github.com/quevendi/backend/internal/observability"
	"github.com/quevendi/backend/internal/usecase"
	"github.com/rs/zerolog"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(observability.LogConfig{
		Level:       cfg.Log.Level,
		Format:      cfg.Log.Format,
		ServiceName: "quevendi-backend",
	})

	logger.Info().
		Str("version", "1.0.0").
		Str("environment", cfg.Server.Environment).
		Str("port", cfg.Server.Port).
		Str("session_store", cfg.Session.Store).
		Msg("Starting QueVendi voice backend")

	// Initialize infrastructure dependencies
	repo, err := catalog.NewFileRepository(cfg.Catalog.Path)
	if err != nil {
		logger.Fatal().Err(err).Str("path", cfg.Catalog.Path).Msg("Failed to load catalog")
	}
	logger.Info().Str("path", cfg.Catalog.Path).Strs("stores", repo.StoreIDs()).Msg("Catalog loaded")

	sessions, closeSessions := newSessionStore(cfg, logger)
	defer closeSessions()

	// Initialize usecase layer
	parser := usecase.NewCommandParser(logger)
	matcher := usecase.NewMatchingService(usecase.MatchConfig{
		ResolveFloor: cfg.Matching.ResolveFloor,
		SearchFloor:  cfg.Matching.SearchFloor,
		AmbiguityGap: cfg.Matching.AmbiguityGap,
		MaxOptions:   cfg.Matching.MaxOptions,
		SearchLimit:  cfg.Matching.SearchLimit,
		FoldAccents:  cfg.Matching.FoldAccents,
	}, logger)
	interpreter := usecase.NewInterpreterService(
		parser,
		matcher,
		repo,
		sessions,
		usecase.InterpreterServiceConfig{PendingTTL: cfg.Session.TTL},
		logger,
	)

	logger.Info().
		Float64("resolve_floor", cfg.Matching.ResolveFloor).
		Float64("search_floor", cfg.Matching.SearchFloor).
		Float64("ambiguity_gap", cfg.Matching.AmbiguityGap).
		Int("max_options", cfg.Matching.MaxOptions).
		Msg("Matching configured")

	// Create HTTP handler with dependencies
	handler := httpDelivery.NewHandler(interpreter, parser, matcher, repo, logger)

	// Setup router
	router := httpDelivery.SetupRouter(cfg, handler, logger)

	// Start server
	addr := fmt.Sprintf(":%s", cfg.Server.Port)
	logger.Info().Str("addr", addr).Msg("Server listening")

	if err := router.Run(addr); err != nil {
		logger.Fatal().Err(err).Msg("Failed to start server")
	}
}

// newSessionStore builds the pending-disambiguation store named by the config
func newSessionStore(cfg *config.Config, logger zerolog.Logger) (domain.CacheRepository, func()) {
	if cfg.Session.Store == "redis" {
		redisCache, err := cache.NewRedisCache(context.Background(), cache.RedisConfig{URL: cfg.Session.RedisURL})
		if err != nil {
			logger.Fatal().Err(err).Msg("Failed to connect to Redis")
		}
		logger.Info().Msg("Pending disambiguations stored in Redis")
		return redisCache, func() { _ = redisCache.Close() }
	}

	memoryCache := cache.NewMemoryCache(cfg.Session.TTL)
	logger.Info().Dur("ttl", cfg.Session.TTL).Msg("Pending disambiguations stored in memory")
	return memoryCache, func() { _ = memoryCache.Close() }
}
