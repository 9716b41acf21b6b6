package line

import (
	"context"
	"errors"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/subwayline/subwayline/internal/api/models"
	"github.com/subwayline/subwayline/internal/events"
	"github.com/subwayline/subwayline/internal/station"
)

// Validation constants.
const (
	MaxNameLength  = 30
	MaxColorLength = 20
)

// ServiceConfig holds the dependencies of the line service.
type ServiceConfig struct {
	Repository Repository
	Stations   station.Repository
	Publisher  events.Publisher
	Metrics    *Metrics
	Logger     zerolog.Logger
}

// Service provides line operations.
type Service struct {
	repo      Repository
	stations  station.Repository
	publisher events.Publisher
	metrics   *Metrics
	tracer    trace.Tracer
	logger    zerolog.Logger
}

// NewService creates a new line service. A nil Publisher logs events instead.
func NewService(cfg ServiceConfig) *Service {
	logger := cfg.Logger.With().Str("component", "line").Logger()

	publisher := cfg.Publisher
	if publisher == nil {
		publisher = events.NewLogPublisher(cfg.Logger)
	}

	return &Service{
		repo:      cfg.Repository,
		stations:  cfg.Stations,
		publisher: publisher,
		metrics:   cfg.Metrics,
		tracer:    otel.Tracer(instrumentationName),
		logger:    logger,
	}
}

// Create creates a line with its first section.
func (s *Service) Create(ctx context.Context, input *models.LineCreateRequest) (*models.Line, error) {
	ctx, span := s.tracer.Start(ctx, "line.Create")
	defer span.End()

	name := strings.TrimSpace(input.Name)
	color := strings.TrimSpace(input.Color)

	fieldErrors := validateAttributes(name, color)
	fieldErrors = append(fieldErrors, validateSectionInput(input.UpStationID, input.DownStationID, input.Distance)...)
	if len(fieldErrors) > 0 {
		return nil, &ValidationError{Errors: fieldErrors}
	}

	seed, err := s.resolveSection(ctx, input.UpStationID, input.DownStationID, input.Distance)
	if err != nil {
		return nil, fail(span, err)
	}

	l := NewLine("line_"+uuid.New().String()[:22], name, color, seed)
	span.SetAttributes(attribute.String("line.id", l.ID))

	if err := s.repo.Create(ctx, l); err != nil {
		return nil, fail(span, err)
	}

	s.logger.Info().
		Str("line_id", l.ID).
		Str("name", l.Name).
		Msg("line created")
	s.publish(ctx, events.TypeLineCreated, l.ID, events.LinePayload{Name: l.Name, Color: l.Color})

	return toAPI(l)
}

// Get retrieves a line by ID.
func (s *Service) Get(ctx context.Context, id string) (*models.Line, error) {
	l, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return toAPI(l)
}

// List retrieves all lines.
func (s *Service) List(ctx context.Context) ([]models.Line, error) {
	lines, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}

	items := make([]models.Line, 0, len(lines))
	for _, l := range lines {
		item, err := ToAPILine(l)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, nil
}

// Update renames or recolors a line.
func (s *Service) Update(ctx context.Context, id string, input *models.LineUpdateRequest) (*models.Line, error) {
	ctx, span := s.tracer.Start(ctx, "line.Update", trace.WithAttributes(attribute.String("line.id", id)))
	defer span.End()

	name := strings.TrimSpace(input.Name)
	color := strings.TrimSpace(input.Color)
	if fieldErrors := validateAttributes(name, color); len(fieldErrors) > 0 {
		return nil, &ValidationError{Errors: fieldErrors}
	}

	l, err := s.repo.Mutate(ctx, id, func(l *Line) error {
		l.Rename(name, color)
		return nil
	})
	if err != nil {
		return nil, fail(span, err)
	}

	s.logger.Info().Str("line_id", id).Str("name", name).Msg("line updated")
	s.publish(ctx, events.TypeLineUpdated, id, events.LinePayload{Name: l.Name, Color: l.Color})

	return toAPI(l)
}

// Delete removes a line and its sections.
func (s *Service) Delete(ctx context.Context, id string) error {
	ctx, span := s.tracer.Start(ctx, "line.Delete", trace.WithAttributes(attribute.String("line.id", id)))
	defer span.End()

	if err := s.repo.Delete(ctx, id); err != nil {
		return fail(span, err)
	}

	s.logger.Info().Str("line_id", id).Msg("line deleted")
	s.publish(ctx, events.TypeLineDeleted, id, nil)
	return nil
}

// AddSection merges a new section into a line. Rejected sections leave the
// line unchanged and return one of the section insertion errors.
func (s *Service) AddSection(ctx context.Context, lineID string, input *models.SectionCreateRequest) (*models.Line, error) {
	ctx, span := s.tracer.Start(ctx, "line.AddSection", trace.WithAttributes(
		attribute.String("line.id", lineID),
		attribute.String("section.up", input.UpStationID),
		attribute.String("section.down", input.DownStationID),
		attribute.Int("section.distance", input.Distance),
	))
	defer span.End()

	if fieldErrors := validateSectionInput(input.UpStationID, input.DownStationID, input.Distance); len(fieldErrors) > 0 {
		return nil, &ValidationError{Errors: fieldErrors}
	}

	candidate, err := s.resolveSection(ctx, input.UpStationID, input.DownStationID, input.Distance)
	if err != nil {
		return nil, fail(span, err)
	}

	l, err := s.repo.Mutate(ctx, lineID, func(l *Line) error {
		return l.AddSection(candidate)
	})
	if err != nil {
		s.metrics.RecordInsertion(ctx, 0, err)
		if isRejection(err) {
			span.SetAttributes(attribute.String("section.rejected", RejectionReason(err)))
			s.logger.Debug().
				Err(err).
				Str("line_id", lineID).
				Str("up_station_id", candidate.Up.ID).
				Str("down_station_id", candidate.Down.ID).
				Int("distance", candidate.Distance).
				Msg("section rejected")
			return nil, err
		}
		return nil, fail(span, err)
	}

	stationCount := l.Sections.Len() + 1
	s.metrics.RecordInsertion(ctx, stationCount, nil)
	s.logger.Info().
		Str("line_id", lineID).
		Str("up_station_id", candidate.Up.ID).
		Str("down_station_id", candidate.Down.ID).
		Int("distance", candidate.Distance).
		Int("stations", stationCount).
		Msg("section added")
	s.publish(ctx, events.TypeSectionAdded, lineID, events.SectionAddedPayload{
		UpStationID:   candidate.Up.ID,
		DownStationID: candidate.Down.ID,
		Distance:      candidate.Distance,
		StationCount:  stationCount,
	})

	return toAPI(l)
}

// Sections lists the sections of a line in travel order.
func (s *Service) Sections(ctx context.Context, lineID string) ([]models.Section, error) {
	l, err := s.repo.Get(ctx, lineID)
	if err != nil {
		return nil, err
	}

	sections := l.Sections.Sections()
	items := make([]models.Section, 0, len(sections))
	for _, sec := range sections {
		items = append(items, models.Section{
			UpStation:   toAPIStation(sec.Up),
			DownStation: toAPIStation(sec.Down),
			Distance:    sec.Distance,
		})
	}
	return items, nil
}

// StationInUse reports whether any line passes through the station.
func (s *Service) StationInUse(ctx context.Context, stationID string) (bool, error) {
	return s.repo.HasStation(ctx, stationID)
}

func (s *Service) resolveSection(ctx context.Context, upID, downID string, distance int) (Section, error) {
	up, err := s.stations.Get(ctx, upID)
	if err != nil {
		return Section{}, err
	}
	down, err := s.stations.Get(ctx, downID)
	if err != nil {
		return Section{}, err
	}
	return NewSection(
		StationRef{ID: up.ID, Name: up.Name},
		StationRef{ID: down.ID, Name: down.Name},
		distance,
	)
}

// publish sends an event. Delivery failures are logged and never fail the
// mutation that produced the event.
func (s *Service) publish(ctx context.Context, eventType, lineID string, payload any) {
	ev, err := events.New(eventType, lineID, payload)
	if err != nil {
		s.logger.Warn().Err(err).Str("event_type", eventType).Msg("failed to build event")
		return
	}
	if err := s.publisher.Publish(context.WithoutCancel(ctx), ev); err != nil {
		s.logger.Warn().
			Err(err).
			Str("event_type", eventType).
			Str("line_id", lineID).
			Msg("failed to publish event")
	}
}

func isRejection(err error) bool {
	return errors.Is(err, ErrDisconnectedSection) ||
		errors.Is(err, ErrDuplicateSection) ||
		errors.Is(err, ErrDistanceTooLarge) ||
		errors.Is(err, ErrInvalidSection)
}

func fail(span trace.Span, err error) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	return err
}

func validateAttributes(name, color string) []models.FieldError {
	var errs []models.FieldError
	switch {
	case name == "":
		errs = append(errs, models.FieldError{Field: "name", Message: "is required"})
	case utf8.RuneCountInString(name) > MaxNameLength:
		errs = append(errs, models.FieldError{Field: "name", Message: "must be at most 30 characters"})
	}
	switch {
	case color == "":
		errs = append(errs, models.FieldError{Field: "color", Message: "is required"})
	case utf8.RuneCountInString(color) > MaxColorLength:
		errs = append(errs, models.FieldError{Field: "color", Message: "must be at most 20 characters"})
	}
	return errs
}

func validateSectionInput(upID, downID string, distance int) []models.FieldError {
	var errs []models.FieldError
	if upID == "" {
		errs = append(errs, models.FieldError{Field: "upStationId", Message: "is required"})
	}
	if downID == "" {
		errs = append(errs, models.FieldError{Field: "downStationId", Message: "is required"})
	}
	if upID != "" && upID == downID {
		errs = append(errs, models.FieldError{Field: "downStationId", Message: "must differ from upStationId"})
	}
	if distance <= 0 {
		errs = append(errs, models.FieldError{Field: "distance", Message: "must be greater than zero", Code: "OUT_OF_RANGE"})
	}
	return errs
}

func toAPI(l *Line) (*models.Line, error) {
	result, err := ToAPILine(l)
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// ToAPILine converts a domain Line to an API Line with its stations in
// travel order.
func ToAPILine(l *Line) (models.Line, error) {
	refs, err := l.Stations()
	if err != nil {
		return models.Line{}, err
	}

	stations := make([]models.LineStation, 0, len(refs))
	for _, ref := range refs {
		stations = append(stations, toAPIStation(ref))
	}

	return models.Line{
		ID:        l.ID,
		Name:      l.Name,
		Color:     l.Color,
		Stations:  stations,
		Distance:  l.Sections.TotalDistance(),
		CreatedAt: models.Timestamp(l.CreatedAt),
		UpdatedAt: models.Timestamp(l.UpdatedAt),
	}, nil
}

func toAPIStation(ref StationRef) models.LineStation {
	return models.LineStation{ID: ref.ID, Name: ref.Name}
}

// ValidationError represents validation errors.
type ValidationError struct {
	Errors []models.FieldError
}

func (e *ValidationError) Error() string {
	return "validation failed"
}
