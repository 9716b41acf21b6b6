// Package api provides the HTTP API for the subway line service.
package api

import (
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/subwayline/subwayline/internal/api/handler"
	"github.com/subwayline/subwayline/internal/api/middleware"
	"github.com/subwayline/subwayline/internal/line"
	"github.com/subwayline/subwayline/internal/resilience"
	"github.com/subwayline/subwayline/internal/station"
)

// RouterConfig holds configuration for the router.
type RouterConfig struct {
	Version        string
	BuildTime      string
	Logger         zerolog.Logger
	Metrics        *middleware.Metrics
	RequireTLS     bool
	AllowedOrigins []string

	// RateLimit and MutationRateLimit override the default limits.
	RateLimit         *middleware.RateLimitConfig
	MutationRateLimit *middleware.RateLimitConfig

	LineService    *line.Service
	StationService *station.Service

	// Database is pinged by the readiness check; nil for the in-memory store.
	Database handler.Pinger
	Registry *resilience.Registry
}

// NewRouter creates a new chi router with all API routes configured.
func NewRouter(cfg RouterConfig) *chi.Mux {
	r := chi.NewRouter()

	standardLimit := middleware.StandardRateLimit
	if cfg.RateLimit != nil {
		standardLimit = *cfg.RateLimit
	}
	mutationLimit := middleware.MutationRateLimit
	if cfg.MutationRateLimit != nil {
		mutationLimit = *cfg.MutationRateLimit
	}

	// Global middleware - order matters. Request IDs come first so every
	// later layer can log and trace them.
	r.Use(middleware.RequestID)
	r.Use(middleware.Tracing)
	if cfg.Metrics != nil {
		r.Use(cfg.Metrics.Middleware())
	}
	r.Use(middleware.Logger(cfg.Logger))
	r.Use(middleware.Recovery(cfg.Logger))
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.CORS(middleware.CORSConfig{AllowedOrigins: cfg.AllowedOrigins}))
	r.Use(middleware.SecurityHeaders)
	r.Use(middleware.RequireTLS(cfg.RequireTLS))
	r.Use(middleware.ContentTypeJSON)

	opsHandler := handler.NewOpsHandler(handler.OpsConfig{
		Version:   cfg.Version,
		BuildTime: cfg.BuildTime,
		Database:  cfg.Database,
		Registry:  cfg.Registry,
	})
	stationHandler := handler.NewStationHandler(cfg.StationService, cfg.Logger)
	lineHandler := handler.NewLineHandler(cfg.LineService, cfg.Logger)

	r.Route("/v1", func(r chi.Router) {
		r.Route("/ops", func(r chi.Router) {
			r.Get("/health", opsHandler.HealthCheck)
			r.Get("/ready", opsHandler.ReadinessCheck)
			r.Get("/status", opsHandler.SystemStatus)
		})

		r.Group(func(r chi.Router) {
			r.Use(middleware.RateLimitByIP(standardLimit))
			r.Use(middleware.RateLimitMutations(mutationLimit))
			r.Use(middleware.RequireJSON)

			r.Route("/stations", func(r chi.Router) {
				r.Get("/", stationHandler.ListStations)
				r.Post("/", stationHandler.CreateStation)
				r.Route("/{stationId}", func(r chi.Router) {
					r.Get("/", stationHandler.GetStation)
					r.Delete("/", stationHandler.DeleteStation)
				})
			})

			r.Route("/lines", func(r chi.Router) {
				r.Get("/", lineHandler.ListLines)
				r.Post("/", lineHandler.CreateLine)
				r.Route("/{lineId}", func(r chi.Router) {
					r.Get("/", lineHandler.GetLine)
					r.Put("/", lineHandler.UpdateLine)
					r.Delete("/", lineHandler.DeleteLine)
					r.Get("/sections", lineHandler.ListSections)
					r.Post("/sections", lineHandler.AddSection)
				})
			})
		})
	})

	return r
}
