package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/subwayline/subwayline/internal/api/models"
	"github.com/subwayline/subwayline/internal/api/response"
	"github.com/subwayline/subwayline/internal/station"
)

// StationHandler handles station endpoints.
type StationHandler struct {
	service *station.Service
	logger  zerolog.Logger
}

// NewStationHandler creates a new StationHandler.
func NewStationHandler(service *station.Service, logger zerolog.Logger) *StationHandler {
	return &StationHandler{service: service, logger: logger}
}

// CreateStation handles POST /v1/stations.
func (h *StationHandler) CreateStation(w http.ResponseWriter, r *http.Request) {
	var input models.StationCreateRequest
	if !decodeBody(w, r, &input) {
		return
	}

	st, err := h.service.Create(r.Context(), &input)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	response.Created(w, r, "/v1/stations/"+st.ID, st)
}

// ListStations handles GET /v1/stations.
func (h *StationHandler) ListStations(w http.ResponseWriter, r *http.Request) {
	stations, err := h.service.List(r.Context())
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	response.JSON(w, r, http.StatusOK, stations)
}

// GetStation handles GET /v1/stations/{stationId}.
func (h *StationHandler) GetStation(w http.ResponseWriter, r *http.Request) {
	st, err := h.service.Get(r.Context(), chi.URLParam(r, "stationId"))
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	response.JSON(w, r, http.StatusOK, st)
}

// DeleteStation handles DELETE /v1/stations/{stationId}. Stations that a
// line still passes through cannot be deleted.
func (h *StationHandler) DeleteStation(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Delete(r.Context(), chi.URLParam(r, "stationId")); err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	response.NoContent(w, r)
}
