package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/zatekoja/feedbackform/internal/adapters/database"
	"github.com/zatekoja/feedbackform/internal/adapters/events"
	"github.com/zatekoja/feedbackform/internal/adapters/memory"
	"github.com/zatekoja/feedbackform/internal/api/handlers"
	"github.com/zatekoja/feedbackform/internal/api/routes"
	"github.com/zatekoja/feedbackform/internal/application/services"
	"github.com/zatekoja/feedbackform/internal/domain/providers"
	"github.com/zatekoja/feedbackform/internal/domain/repositories"
	"github.com/zatekoja/feedbackform/internal/infrastructure/clients/postgres"
	"github.com/zatekoja/feedbackform/internal/infrastructure/clients/redis"
	"github.com/zatekoja/feedbackform/internal/infrastructure/observability"
	"github.com/zatekoja/feedbackform/pkg/config"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	observability.InitLogger(cfg.OTEL.ServiceName, cfg.App.Env, cfg.App.LogLevel)

	// Set up context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize OpenTelemetry if enabled
	if cfg.OTEL.Enabled && cfg.OTEL.Endpoint != "" {
		shutdown, err := observability.Setup(ctx, cfg.OTEL.ServiceName, cfg.OTEL.ServiceVersion, cfg.OTEL.Endpoint)
		if err != nil {
			log.Warn().Err(err).Msg("Failed to set up OpenTelemetry")
		} else {
			defer func() {
				ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				if err := shutdown(ctx); err != nil {
					log.Error().Err(err).Msg("Error shutting down OpenTelemetry")
				}
			}()
			log.Info().Str("endpoint", cfg.OTEL.Endpoint).Msg("OpenTelemetry initialized")
		}
	}

	metrics, err := observability.InitMetrics()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize metrics")
	}

	var storeMetrics *observability.StoreMetrics
	if cfg.Metrics.Enabled {
		storeMetrics = observability.NewStoreMetrics()
	}

	// Entry store
	var repo repositories.EntryRepository
	switch cfg.Store.Backend {
	case config.StoreBackendPostgres:
		pgClient, err := postgres.NewClient(ctx, &cfg.Database)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to initialize PostgreSQL client")
		}
		defer pgClient.Close()

		adapter := database.NewEntryAdapter(pgClient)
		if err := adapter.EnsureSchema(ctx); err != nil {
			log.Fatal().Err(err).Msg("Failed to prepare entries table")
		}
		repo = adapter
	default:
		repo = memory.NewEntryStore()
	}
	log.Info().Str("backend", cfg.Store.Backend).Msg("Entry store initialized")

	// Event bus: Redis when configured, in-process otherwise
	var eventBus providers.EventBus
	if cfg.Redis.Enabled {
		redisClient, err := redis.NewClient(ctx, &cfg.Redis)
		if err != nil {
			log.Warn().Err(err).Msg("Failed to initialize Redis client, using in-process event bus")
		} else {
			defer redisClient.Close()
			eventBus = events.NewRedisEventBus(redisClient)
			log.Info().Str("addr", cfg.Redis.RedisAddr()).Msg("Redis event bus initialized")
		}
	}
	if eventBus == nil {
		eventBus = events.NewLocalEventBus()
	}

	// Services and handlers
	entryService := services.NewEntryService(repo)
	entryService.SetEventBus(eventBus, cfg.Events.Channel)
	entryService.SetMetrics(storeMetrics)

	entryHandler := handlers.NewEntryHandler(entryService)
	streamHandler := handlers.NewStreamHandler(eventBus, cfg.Events.Channel)

	router := routes.NewRouter(entryHandler, streamHandler, cfg.CORS.AllowedOrigins, metrics, storeMetrics)
	handler := router.SetupRoutes()

	server := &http.Server{
		Addr:        cfg.Server.Addr(),
		Handler:     handler,
		ReadTimeout: 15 * time.Second,
		// WriteTimeout stays unset so entry streams are not cut off.
		IdleTimeout: 60 * time.Second,
	}

	go func() {
		log.Info().Str("addr", server.Addr).Msg("Server listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("Server failed to start")
		}
	}()

	// Wait for interrupt signal for graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Server shutting down...")

	// Closing the bus ends open streams so Shutdown does not wait on them
	if err := eventBus.Close(); err != nil {
		log.Error().Err(err).Msg("Error closing event bus")
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Error during server shutdown")
	}

	log.Info().Msg("Server stopped")
}
