package station

import "context"

// Repository defines the interface for station data persistence.
type Repository interface {
	// Get retrieves a station by ID.
	Get(ctx context.Context, id string) (*Station, error)

	// List retrieves all stations ordered by creation time.
	List(ctx context.Context) ([]*Station, error)

	// Create stores a new station.
	// Returns ErrDuplicateStationName if the name is taken.
	Create(ctx context.Context, station *Station) error

	// Delete deletes a station by ID. When usage is non-nil it is consulted
	// atomically with the removal and ErrStationInUse is returned if a line
	// still passes through the station.
	Delete(ctx context.Context, id string, usage UsageChecker) error
}
