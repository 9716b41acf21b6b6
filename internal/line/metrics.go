package line

import (
	"context"
	"errors"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/subwayline/subwayline/internal/station"
)

const instrumentationName = "github.com/subwayline/subwayline/internal/line"

// Metrics holds the instruments for section insertions.
type Metrics struct {
	insertions   metric.Int64Counter
	lineStations metric.Int64Histogram
}

// NewMetrics creates the line metrics on the global meter provider.
func NewMetrics() (*Metrics, error) {
	meter := otel.Meter(instrumentationName)

	insertions, err := meter.Int64Counter(
		"subway.section.insertions",
		metric.WithDescription("Section insertion attempts by result"),
		metric.WithUnit("{section}"),
	)
	if err != nil {
		return nil, err
	}

	lineStations, err := meter.Int64Histogram(
		"subway.line.stations",
		metric.WithDescription("Number of stations on a line after an accepted insertion"),
		metric.WithUnit("{station}"),
	)
	if err != nil {
		return nil, err
	}

	return &Metrics{insertions: insertions, lineStations: lineStations}, nil
}

// RecordInsertion counts an insertion attempt. A nil receiver is a no-op.
func (m *Metrics) RecordInsertion(ctx context.Context, stations int, err error) {
	if m == nil {
		return
	}
	if err != nil {
		m.insertions.Add(ctx, 1, metric.WithAttributes(
			attribute.String("result", "rejected"),
			attribute.String("reason", RejectionReason(err)),
		))
		return
	}
	m.insertions.Add(ctx, 1, metric.WithAttributes(attribute.String("result", "accepted")))
	m.lineStations.Record(ctx, int64(stations))
}

// RejectionReason returns a short label for an insertion error.
func RejectionReason(err error) string {
	switch {
	case errors.Is(err, ErrDisconnectedSection):
		return "disconnected"
	case errors.Is(err, ErrDuplicateSection):
		return "duplicate"
	case errors.Is(err, ErrDistanceTooLarge):
		return "distance_too_large"
	case errors.Is(err, ErrInvalidSection):
		return "invalid"
	case errors.Is(err, ErrLineNotFound):
		return "line_not_found"
	case errors.Is(err, station.ErrStationNotFound):
		return "station_not_found"
	default:
		return "error"
	}
}
