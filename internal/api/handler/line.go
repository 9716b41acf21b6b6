package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/subwayline/subwayline/internal/api/models"
	"github.com/subwayline/subwayline/internal/api/response"
	"github.com/subwayline/subwayline/internal/line"
)

// LineHandler handles line and section endpoints.
type LineHandler struct {
	service *line.Service
	logger  zerolog.Logger
}

// NewLineHandler creates a new LineHandler.
func NewLineHandler(service *line.Service, logger zerolog.Logger) *LineHandler {
	return &LineHandler{service: service, logger: logger}
}

// CreateLine handles POST /v1/lines - create a line with its first section.
func (h *LineHandler) CreateLine(w http.ResponseWriter, r *http.Request) {
	var input models.LineCreateRequest
	if !decodeBody(w, r, &input) {
		return
	}

	l, err := h.service.Create(r.Context(), &input)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	response.Created(w, r, "/v1/lines/"+l.ID, l)
}

// ListLines handles GET /v1/lines.
func (h *LineHandler) ListLines(w http.ResponseWriter, r *http.Request) {
	lines, err := h.service.List(r.Context())
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	response.JSON(w, r, http.StatusOK, lines)
}

// GetLine handles GET /v1/lines/{lineId}.
func (h *LineHandler) GetLine(w http.ResponseWriter, r *http.Request) {
	l, err := h.service.Get(r.Context(), chi.URLParam(r, "lineId"))
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	response.JSON(w, r, http.StatusOK, l)
}

// UpdateLine handles PUT /v1/lines/{lineId} - rename or recolor a line.
func (h *LineHandler) UpdateLine(w http.ResponseWriter, r *http.Request) {
	var input models.LineUpdateRequest
	if !decodeBody(w, r, &input) {
		return
	}

	l, err := h.service.Update(r.Context(), chi.URLParam(r, "lineId"), &input)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	response.JSON(w, r, http.StatusOK, l)
}

// DeleteLine handles DELETE /v1/lines/{lineId}.
func (h *LineHandler) DeleteLine(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Delete(r.Context(), chi.URLParam(r, "lineId")); err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	response.NoContent(w, r)
}

// AddSection handles POST /v1/lines/{lineId}/sections. The response is the
// whole line so clients see the merged station order.
func (h *LineHandler) AddSection(w http.ResponseWriter, r *http.Request) {
	var input models.SectionCreateRequest
	if !decodeBody(w, r, &input) {
		return
	}

	lineID := chi.URLParam(r, "lineId")
	l, err := h.service.AddSection(r.Context(), lineID, &input)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	response.Created(w, r, "/v1/lines/"+lineID, l)
}

// ListSections handles GET /v1/lines/{lineId}/sections.
func (h *LineHandler) ListSections(w http.ResponseWriter, r *http.Request) {
	sections, err := h.service.Sections(r.Context(), chi.URLParam(r, "lineId"))
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	response.JSON(w, r, http.StatusOK, sections)
}
