package station

import (
	"context"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/subwayline/subwayline/internal/api/models"
)

// MaxNameLength is the maximum length of a station name in characters.
const MaxNameLength = 50

// UsageChecker reports whether a station is still part of a line.
type UsageChecker interface {
	StationInUse(ctx context.Context, stationID string) (bool, error)
}

// Service provides station operations.
type Service struct {
	repo   Repository
	usage  UsageChecker
	logger zerolog.Logger
}

// NewService creates a new station service. usage may be nil, in which case
// deletes are only guarded by the repository.
func NewService(repo Repository, usage UsageChecker, logger zerolog.Logger) *Service {
	return &Service{
		repo:   repo,
		usage:  usage,
		logger: logger.With().Str("component", "station").Logger(),
	}
}

// Create registers a new station.
func (s *Service) Create(ctx context.Context, input *models.StationCreateRequest) (*models.Station, error) {
	name := strings.TrimSpace(input.Name)
	if fieldErrors := validateName(name); len(fieldErrors) > 0 {
		return nil, &ValidationError{Errors: fieldErrors}
	}

	st := &Station{
		ID:        "stn_" + uuid.New().String()[:22],
		Name:      name,
		CreatedAt: time.Now(),
	}

	if err := s.repo.Create(ctx, st); err != nil {
		return nil, err
	}

	s.logger.Info().
		Str("station_id", st.ID).
		Str("name", st.Name).
		Msg("station created")

	result := ToAPIStation(st)
	return &result, nil
}

// Get retrieves a station by ID.
func (s *Service) Get(ctx context.Context, id string) (*models.Station, error) {
	st, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	result := ToAPIStation(st)
	return &result, nil
}

// List retrieves all stations.
func (s *Service) List(ctx context.Context) ([]models.Station, error) {
	stations, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}

	items := make([]models.Station, 0, len(stations))
	for _, st := range stations {
		items = append(items, ToAPIStation(st))
	}
	return items, nil
}

// Delete removes a station that no line uses.
func (s *Service) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id, s.usage); err != nil {
		return err
	}

	s.logger.Info().Str("station_id", id).Msg("station deleted")
	return nil
}

func validateName(name string) []models.FieldError {
	if name == "" {
		return []models.FieldError{{Field: "name", Message: "is required"}}
	}
	if utf8.RuneCountInString(name) > MaxNameLength {
		return []models.FieldError{{Field: "name", Message: "must be at most 50 characters"}}
	}
	return nil
}

// ToAPIStation converts a domain Station to an API Station.
func ToAPIStation(st *Station) models.Station {
	return models.Station{
		ID:        st.ID,
		Name:      st.Name,
		CreatedAt: models.Timestamp(st.CreatedAt),
	}
}

// ValidationError represents validation errors.
type ValidationError struct {
	Errors []models.FieldError
}

func (e *ValidationError) Error() string {
	return "validation failed"
}
