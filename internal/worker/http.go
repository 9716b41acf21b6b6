package worker

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/subwayline/subwayline/internal/api/middleware"
	"github.com/subwayline/subwayline/internal/api/models"
	"github.com/subwayline/subwayline/internal/api/response"
)

// DefaultFeedLimit is the number of events returned when no limit is given.
const DefaultFeedLimit = 50

// RouterConfig holds the dependencies of the worker's HTTP surface.
type RouterConfig struct {
	Version string
	Feed    *Feed
	Logger  zerolog.Logger
}

// NewRouter creates the worker router with health and feed endpoints.
func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.Logger(cfg.Logger))
	r.Use(middleware.Recovery(cfg.Logger))
	r.Use(middleware.ContentTypeJSON)

	h := &feedHandler{version: cfg.Version, feed: cfg.Feed}
	r.Get("/health", h.health)
	r.Route("/v1/feed", func(r chi.Router) {
		r.Get("/", h.recent)
		r.Get("/lines", h.lines)
	})

	return r
}

type feedHandler struct {
	version string
	feed    *Feed
}

func (h *feedHandler) health(w http.ResponseWriter, r *http.Request) {
	response.JSON(w, r, http.StatusOK, models.Health{
		Status: models.HealthStatusOK,
		Time:   models.Timestamp(time.Now()),
		Details: map[string]any{
			"version": h.version,
			"events":  h.feed.Len(),
		},
	})
}

// recent handles GET /v1/feed?limit=&lineId=.
func (h *feedHandler) recent(w http.ResponseWriter, r *http.Request) {
	limit := DefaultFeedLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			response.BadRequest(w, r, "invalid query parameter", []models.FieldError{
				{Field: "limit", Message: "must be a positive integer", Code: "INVALID"},
			})
			return
		}
		limit = n
	}

	response.JSON(w, r, http.StatusOK, h.feed.Recent(limit, r.URL.Query().Get("lineId")))
}

func (h *feedHandler) lines(w http.ResponseWriter, r *http.Request) {
	response.JSON(w, r, http.StatusOK, h.feed.Lines())
}
