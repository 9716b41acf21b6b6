package handler

import (
	"errors"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/subwayline/subwayline/internal/api/middleware"
	"github.com/subwayline/subwayline/internal/api/response"
	"github.com/subwayline/subwayline/internal/line"
	"github.com/subwayline/subwayline/internal/station"
)

// writeError maps a service error to a problem response. Anything it does not
// recognize is logged and reported as a 500.
func writeError(w http.ResponseWriter, r *http.Request, log zerolog.Logger, err error) {
	var lineValidation *line.ValidationError
	var stationValidation *station.ValidationError

	switch {
	case errors.As(err, &lineValidation):
		response.BadRequest(w, r, "validation failed", lineValidation.Errors)
	case errors.As(err, &stationValidation):
		response.BadRequest(w, r, "validation failed", stationValidation.Errors)

	case errors.Is(err, line.ErrDisconnectedSection),
		errors.Is(err, line.ErrDistanceTooLarge),
		errors.Is(err, line.ErrInvalidSection),
		errors.Is(err, line.ErrSameStations),
		errors.Is(err, line.ErrInvalidDistance):
		response.InvalidSection(w, r, err.Error())

	case errors.Is(err, line.ErrDuplicateSection),
		errors.Is(err, line.ErrDuplicateLineName),
		errors.Is(err, station.ErrDuplicateStationName),
		errors.Is(err, station.ErrStationInUse):
		response.Conflict(w, r, err.Error())

	case errors.Is(err, line.ErrLineNotFound),
		errors.Is(err, station.ErrStationNotFound):
		response.NotFound(w, r, err.Error())

	default:
		log.Error().
			Err(err).
			Str("request_id", middleware.GetRequestID(r.Context())).
			Str("path", r.URL.Path).
			Msg("request failed")
		response.InternalError(w, r, "internal server error")
	}
}

// decodeBody decodes the JSON request body, writing a 400 on failure.
func decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := response.Decode(w, r, dst); err != nil {
		response.BadRequest(w, r, err.Error(), nil)
		return false
	}
	return true
}
