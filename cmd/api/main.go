// Package main provides the entrypoint for the subway line API server.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"github.com/subwayline/subwayline/internal/api"
	"github.com/subwayline/subwayline/internal/api/handler"
	"github.com/subwayline/subwayline/internal/api/middleware"
	"github.com/subwayline/subwayline/internal/database"
	"github.com/subwayline/subwayline/internal/database/migrations"
	"github.com/subwayline/subwayline/internal/events"
	"github.com/subwayline/subwayline/internal/line"
	"github.com/subwayline/subwayline/internal/resilience"
	"github.com/subwayline/subwayline/internal/station"
	"github.com/subwayline/subwayline/internal/telemetry"
)

// Version and BuildTime are set at compile time via ldflags.
var (
	Version   = "dev"
	BuildTime = "unknown"
)

func main() {
	const serviceName = "subwayline-api"

	// A missing .env is fine; deployments set the environment directly.
	_ = godotenv.Load()

	log := zerolog.New(os.Stdout).
		With().
		Timestamp().
		Str("service", serviceName).
		Str("version", Version).
		Logger()

	log.Info().
		Str("build_time", BuildTime).
		Msg("starting subway line API")

	port := getEnv("APP_PORT", "8080")
	ctx := context.Background()

	telemetryCfg := telemetry.ConfigFromEnv(serviceName, Version)
	tp, err := telemetry.Init(ctx, telemetryCfg)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize telemetry")
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if shutdownErr := tp.Shutdown(shutdownCtx); shutdownErr != nil {
			log.Error().Err(shutdownErr).Msg("failed to shutdown telemetry")
		}
	}()
	if telemetryCfg.Enabled {
		log.Info().
			Str("otlp_endpoint", telemetryCfg.OTLPEndpoint).
			Msg("OpenTelemetry initialized")
	}

	httpMetrics, err := middleware.NewMetrics()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize HTTP metrics")
	}
	lineMetrics, err := line.NewMetrics()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize line metrics")
	}

	registry := resilience.NewRegistry()

	// Storage
	var (
		stationRepo station.Repository
		lineRepo    line.Repository
		dbPinger    handler.Pinger
	)
	switch driver := getEnv("STORAGE_DRIVER", "memory"); driver {
	case "postgres":
		dbConfig := database.ConfigFromEnv()
		pool, err := database.Connect(ctx, dbConfig)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to connect to database")
		}
		defer pool.Close()
		log.Info().
			Str("host", dbConfig.Host).
			Int("port", dbConfig.Port).
			Str("database", dbConfig.Database).
			Msg("database connected")

		if err := migrations.Run(ctx, pool, log); err != nil {
			log.Fatal().Err(err).Msg("failed to run migrations")
		}

		stationRepo = station.NewPostgresRepository(pool)
		lineRepo = line.NewPostgresRepository(pool)
		dbPinger = pool
	case "memory":
		memStations := station.NewInMemoryRepository()
		stationRepo = memStations
		lineRepo = line.NewInMemoryRepository(line.WithStationGuard(memStations))
		log.Warn().Msg("using in-memory storage - data is lost on restart")
	default:
		log.Fatal().Str("driver", driver).Msg("unknown STORAGE_DRIVER")
	}

	// Events
	var publisher events.Publisher = events.NewLogPublisher(log)
	if os.Getenv("PUBSUB_ENABLED") == "true" {
		pubsubPublisher, err := events.NewPubSubPublisher(ctx, events.PubSubConfig{
			ProjectID: os.Getenv("PUBSUB_PROJECT_ID"),
			Topic:     getEnv("PUBSUB_TOPIC", "line-events"),
			Registry:  registry,
			Logger:    log,
		})
		if err != nil {
			log.Fatal().Err(err).Msg("failed to initialize pubsub publisher")
		}
		defer func() {
			if closeErr := pubsubPublisher.Close(); closeErr != nil {
				log.Error().Err(closeErr).Msg("failed to close pubsub publisher")
			}
		}()
		publisher = pubsubPublisher
		log.Info().Msg("pubsub event publishing enabled")
	}

	lineService := line.NewService(line.ServiceConfig{
		Repository: lineRepo,
		Stations:   stationRepo,
		Publisher:  publisher,
		Metrics:    lineMetrics,
		Logger:     log,
	})
	stationService := station.NewService(stationRepo, lineService, log)

	router := api.NewRouter(api.RouterConfig{
		Version:        Version,
		BuildTime:      BuildTime,
		Logger:         log,
		Metrics:        httpMetrics,
		RequireTLS:     os.Getenv("REQUIRE_TLS") == "true",
		AllowedOrigins: splitList(os.Getenv("CORS_ALLOWED_ORIGINS")),
		LineService:    lineService,
		StationService: stationService,
		Database:       dbPinger,
		Registry:       registry,
	})

	server := &http.Server{
		Addr:         ":" + port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info().
			Str("addr", server.Addr).
			Msg("server listening")

		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server forced to shutdown")
	}

	log.Info().Msg("server stopped")
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
