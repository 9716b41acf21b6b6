package line

import "context"

// MutateFunc changes a line inside Repository.Mutate. Returning an error
// discards the change.
type MutateFunc func(l *Line) error

// Repository defines the interface for line data persistence.
type Repository interface {
	// Get retrieves a line with its sections by ID.
	Get(ctx context.Context, id string) (*Line, error)

	// List retrieves all lines ordered by creation time.
	List(ctx context.Context) ([]*Line, error)

	// Create stores a new line with its seed section.
	// Returns ErrDuplicateLineName if the name is taken.
	Create(ctx context.Context, l *Line) error

	// Mutate loads a line, applies fn and stores the result atomically.
	// Mutations of the same line are serialized; a failing fn leaves the
	// stored line untouched.
	Mutate(ctx context.Context, id string, fn MutateFunc) (*Line, error)

	// Delete deletes a line by ID.
	Delete(ctx context.Context, id string) error

	// HasStation reports whether any line passes through the station.
	HasStation(ctx context.Context, stationID string) (bool, error)
}
