package station

import (
	"context"
	"sort"
	"sync"
)

// InMemoryRepository is an in-memory implementation of Repository.
// Used by tests and by the API when STORAGE_DRIVER=memory.
type InMemoryRepository struct {
	mu       sync.RWMutex
	stations map[string]*Station
}

// NewInMemoryRepository creates a new in-memory station repository.
func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{
		stations: make(map[string]*Station),
	}
}

// Get retrieves a station by ID.
func (r *InMemoryRepository) Get(_ context.Context, id string) (*Station, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s, ok := r.stations[id]
	if !ok {
		return nil, ErrStationNotFound
	}

	cpy := *s
	return &cpy, nil
}

// List retrieves all stations ordered by creation time.
func (r *InMemoryRepository) List(_ context.Context) ([]*Station, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	stations := make([]*Station, 0, len(r.stations))
	for _, s := range r.stations {
		cpy := *s
		stations = append(stations, &cpy)
	}

	sort.Slice(stations, func(i, j int) bool {
		if stations[i].CreatedAt.Equal(stations[j].CreatedAt) {
			return stations[i].ID < stations[j].ID
		}
		return stations[i].CreatedAt.Before(stations[j].CreatedAt)
	})

	return stations, nil
}

// Create stores a new station.
func (r *InMemoryRepository) Create(_ context.Context, s *Station) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.stations {
		if existing.Name == s.Name {
			return ErrDuplicateStationName
		}
	}

	cpy := *s
	r.stations[s.ID] = &cpy
	return nil
}

// Delete deletes a station by ID. The usage check runs under the write
// lock, so it cannot interleave with a commit made through Hold.
func (r *InMemoryRepository) Delete(ctx context.Context, id string, usage UsageChecker) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.stations[id]; !ok {
		return ErrStationNotFound
	}
	if usage != nil {
		inUse, err := usage.StationInUse(ctx, id)
		if err != nil {
			return err
		}
		if inUse {
			return ErrStationInUse
		}
	}
	delete(r.stations, id)
	return nil
}

// Hold runs fn while the given stations exist and cannot be deleted.
// Returns ErrStationNotFound without calling fn if any of them is gone.
// fn must not call back into the repository.
func (r *InMemoryRepository) Hold(_ context.Context, stationIDs []string, fn func() error) error {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, id := range stationIDs {
		if _, ok := r.stations[id]; !ok {
			return ErrStationNotFound
		}
	}
	return fn()
}

// Ensure InMemoryRepository implements Repository interface.
var _ Repository = (*InMemoryRepository)(nil)
