package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/zatekoja/patientqueue/internal/adapters/events"
	"github.com/zatekoja/patientqueue/internal/adapters/search"
	"github.com/zatekoja/patientqueue/internal/api/handlers"
	"github.com/zatekoja/patientqueue/internal/api/middleware"
	"github.com/zatekoja/patientqueue/internal/api/routes"
	"github.com/zatekoja/patientqueue/internal/application/services"
	"github.com/zatekoja/patientqueue/internal/bootstrap"
	"github.com/zatekoja/patientqueue/internal/domain/providers"
	"github.com/zatekoja/patientqueue/internal/domain/repositories"
	"github.com/zatekoja/patientqueue/internal/infrastructure/clients/typesense"
	"github.com/zatekoja/patientqueue/internal/infrastructure/observability"
	"github.com/zatekoja/patientqueue/pkg/config"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	observability.InitLogger(cfg.OTEL.ServiceName, cfg.Log.Env, cfg.Log.Level)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize OpenTelemetry if enabled
	if cfg.OTEL.Enabled && cfg.OTEL.Endpoint != "" {
		shutdown, err := observability.Setup(ctx, cfg.OTEL.ServiceName, cfg.OTEL.ServiceVersion, cfg.OTEL.Endpoint)
		if err != nil {
			log.Warn().Err(err).Msg("failed to set up OpenTelemetry")
		} else {
			defer func() {
				ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				if err := shutdown(ctx); err != nil {
					log.Error().Err(err).Msg("error shutting down OpenTelemetry")
				}
			}()
			observability.EnableOTELLogs(cfg.OTEL.ServiceName)
			log.Info().Str("endpoint", cfg.OTEL.Endpoint).Msg("OpenTelemetry initialized")
		}
	}

	metrics, err := observability.InitMetrics()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize metrics")
	}

	location, err := cfg.Queue.Location()
	if err != nil {
		log.Fatal().Err(err).Msg("invalid queue time zone")
	}

	storage, err := bootstrap.OpenStorage(cfg, metrics)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to open storage")
	}
	defer storage.Close()

	var searchRepo repositories.QueueSearchRepository
	if cfg.Typesense.Enabled {
		typesenseClient, err := typesense.NewClient(&cfg.Typesense)
		if err != nil {
			log.Warn().Err(err).Msg("Typesense unavailable, queue search disabled")
		} else {
			if err := typesenseClient.InitSchema(ctx); err != nil {
				log.Warn().Err(err).Msg("failed to init Typesense schema")
			}
			searchRepo = search.NewTypesenseAdapter(typesenseClient)
		}
	}

	// Redis pub/sub fans events out across instances; otherwise stay in-process
	var eventBus providers.EventBus
	if storage.Redis != nil {
		eventBus = events.NewRedisEventBus(storage.Redis)
		log.Info().Msg("Redis event bus initialized")
	} else {
		eventBus = events.NewMemoryEventBus()
		log.Info().Msg("in-process event bus initialized")
	}

	// other instances publish their queue writes on the shared bus
	if storage.QueueCache != nil {
		invalidation := services.NewCacheInvalidationService(storage.QueueCache, eventBus)
		if err := invalidation.Start(); err != nil {
			log.Warn().Err(err).Msg("failed to start cache invalidation")
		} else {
			defer invalidation.Stop()
		}
	}

	clock := providers.SystemClock{}

	queueService := services.NewQueueService(
		storage.Queues,
		storage.Entries,
		searchRepo,
		eventBus,
		clock,
		services.WithTimeZone(location),
		services.WithWaitWindow(services.WaitWindow(cfg.Queue.WaitWindow)),
		services.WithMetrics(metrics),
	)
	entryService := services.NewQueueEntryService(storage.Entries, storage.Queues, eventBus, clock)
	roomService := services.NewQueueRoomService(storage.Rooms, storage.Queues, eventBus, clock)

	router := routes.NewRouter(
		handlers.NewQueueHandler(queueService),
		handlers.NewQueueEntryHandler(entryService),
		handlers.NewQueueRoomHandler(roomService, queueService),
		handlers.NewSSEHandler(eventBus),
		middleware.ParseAllowedOrigins(cfg.Server.AllowedOrigins),
		metrics,
	)

	serverAddr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	server := &http.Server{
		Addr:         serverAddr,
		Handler:      router.SetupRoutes(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
		BaseContext:  func(net.Listener) context.Context { return ctx },
	}

	go func() {
		log.Info().Str("addr", serverAddr).Str("storage", cfg.Storage.Driver).Str("time_zone", location.String()).Msg("server starting")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server failed to start")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("server shutting down")

	// cancelling the base context ends open event streams
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("error during server shutdown")
	}

	if err := eventBus.Close(); err != nil {
		log.Error().Err(err).Msg("error closing event bus")
	}

	log.Info().Msg("server stopped")
}
