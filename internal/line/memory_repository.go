package line

import (
	"context"
	"sort"
	"sync"
)

// InMemoryRepository is an in-memory implementation of Repository.
// Used by tests and by the API when STORAGE_DRIVER=memory.
type InMemoryRepository struct {
	mu    sync.RWMutex
	lines map[string]*Line
	locks map[string]*sync.Mutex
	guard StationGuard
}

// StationGuard keeps stations alive while a line that references them is
// stored. station.InMemoryRepository implements it.
type StationGuard interface {
	Hold(ctx context.Context, stationIDs []string, fn func() error) error
}

// InMemoryOption configures an InMemoryRepository.
type InMemoryOption func(*InMemoryRepository)

// WithStationGuard commits every write under guard, so a station cannot be
// deleted between resolving it and storing a line that uses it.
func WithStationGuard(guard StationGuard) InMemoryOption {
	return func(r *InMemoryRepository) {
		r.guard = guard
	}
}

// NewInMemoryRepository creates a new in-memory line repository.
func NewInMemoryRepository(opts ...InMemoryOption) *InMemoryRepository {
	r := &InMemoryRepository{
		lines: make(map[string]*Line),
		locks: make(map[string]*sync.Mutex),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Get retrieves a line by ID.
func (r *InMemoryRepository) Get(_ context.Context, id string) (*Line, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	l, ok := r.lines[id]
	if !ok {
		return nil, ErrLineNotFound
	}
	return l.Clone(), nil
}

// List retrieves all lines ordered by creation time.
func (r *InMemoryRepository) List(_ context.Context) ([]*Line, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	lines := make([]*Line, 0, len(r.lines))
	for _, l := range r.lines {
		lines = append(lines, l.Clone())
	}

	sort.Slice(lines, func(i, j int) bool {
		if lines[i].CreatedAt.Equal(lines[j].CreatedAt) {
			return lines[i].ID < lines[j].ID
		}
		return lines[i].CreatedAt.Before(lines[j].CreatedAt)
	})

	return lines, nil
}

// Create stores a new line.
func (r *InMemoryRepository) Create(ctx context.Context, l *Line) error {
	return r.commit(ctx, l, func() error {
		r.mu.Lock()
		defer r.mu.Unlock()

		if r.nameTaken(l.Name, "") {
			return ErrDuplicateLineName
		}

		r.lines[l.ID] = l.Clone()
		r.locks[l.ID] = &sync.Mutex{}
		return nil
	})
}

// Mutate applies fn to a copy of the line while holding the line's lock and
// stores the copy only if fn succeeds.
func (r *InMemoryRepository) Mutate(ctx context.Context, id string, fn MutateFunc) (*Line, error) {
	r.mu.RLock()
	lock, ok := r.locks[id]
	r.mu.RUnlock()
	if !ok {
		return nil, ErrLineNotFound
	}

	lock.Lock()
	defer lock.Unlock()

	r.mu.RLock()
	current, ok := r.lines[id]
	var working *Line
	if ok {
		working = current.Clone()
	}
	r.mu.RUnlock()
	if !ok {
		return nil, ErrLineNotFound
	}

	if err := fn(working); err != nil {
		return nil, err
	}

	err := r.commit(ctx, working, func() error {
		r.mu.Lock()
		defer r.mu.Unlock()

		if _, ok := r.lines[id]; !ok {
			return ErrLineNotFound
		}
		if r.nameTaken(working.Name, id) {
			return ErrDuplicateLineName
		}
		r.lines[id] = working.Clone()
		return nil
	})
	if err != nil {
		return nil, err
	}
	return working, nil
}

// Delete deletes a line by ID.
func (r *InMemoryRepository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.lines[id]; !ok {
		return ErrLineNotFound
	}
	delete(r.lines, id)
	delete(r.locks, id)
	return nil
}

// HasStation reports whether any line passes through the station.
func (r *InMemoryRepository) HasStation(_ context.Context, stationID string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, l := range r.lines {
		if l.Sections.Contains(stationID) {
			return true, nil
		}
	}
	return false, nil
}

// commit runs store under the station guard, if any. The guard is always
// taken before r.mu.
func (r *InMemoryRepository) commit(ctx context.Context, l *Line, store func() error) error {
	if r.guard == nil {
		return store()
	}
	return r.guard.Hold(ctx, stationIDs(l), store)
}

func stationIDs(l *Line) []string {
	sections := l.Sections.Sections()
	ids := make([]string, 0, len(sections)+1)
	seen := make(map[string]struct{}, len(sections)+1)
	for _, sec := range sections {
		for _, id := range []string{sec.Up.ID, sec.Down.ID} {
			if _, ok := seen[id]; !ok {
				seen[id] = struct{}{}
				ids = append(ids, id)
			}
		}
	}
	return ids
}

func (r *InMemoryRepository) nameTaken(name, exceptID string) bool {
	for id, l := range r.lines {
		if id != exceptID && l.Name == name {
			return true
		}
	}
	return false
}

// Ensure InMemoryRepository implements Repository interface.
var _ Repository = (*InMemoryRepository)(nil)
