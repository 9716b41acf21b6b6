package station

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/subwayline/subwayline/internal/database"
)

// PostgresRepository is a PostgreSQL implementation of Repository.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository creates a new PostgreSQL station repository.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

// Get retrieves a station by ID.
func (r *PostgresRepository) Get(ctx context.Context, id string) (*Station, error) {
	query := `SELECT id, name, created_at FROM stations WHERE id = $1`

	var s Station
	err := r.pool.QueryRow(ctx, query, id).Scan(&s.ID, &s.Name, &s.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrStationNotFound
		}
		return nil, err
	}

	return &s, nil
}

// List retrieves all stations ordered by creation time.
func (r *PostgresRepository) List(ctx context.Context) ([]*Station, error) {
	query := `SELECT id, name, created_at FROM stations ORDER BY created_at, id`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var stations []*Station
	for rows.Next() {
		var s Station
		if err := rows.Scan(&s.ID, &s.Name, &s.CreatedAt); err != nil {
			return nil, err
		}
		stations = append(stations, &s)
	}

	return stations, rows.Err()
}

// Create stores a new station.
func (r *PostgresRepository) Create(ctx context.Context, s *Station) error {
	query := `INSERT INTO stations (id, name, created_at) VALUES ($1, $2, $3)`

	_, err := r.pool.Exec(ctx, query, s.ID, s.Name, s.CreatedAt)
	if database.IsUniqueViolation(err) {
		return ErrDuplicateStationName
	}
	return err
}

// Delete deletes a station by ID. The foreign keys on line_sections reject
// a delete that races with a section insert; usage only gives the common
// case a clean error before the statement runs.
func (r *PostgresRepository) Delete(ctx context.Context, id string, usage UsageChecker) error {
	if usage != nil {
		inUse, err := usage.StationInUse(ctx, id)
		if err != nil {
			return err
		}
		if inUse {
			return ErrStationInUse
		}
	}

	result, err := r.pool.Exec(ctx, `DELETE FROM stations WHERE id = $1`, id)
	if err != nil {
		if database.IsForeignKeyViolation(err) {
			return ErrStationInUse
		}
		return err
	}

	if result.RowsAffected() == 0 {
		return ErrStationNotFound
	}
	return nil
}

// Ensure PostgresRepository implements Repository interface.
var _ Repository = (*PostgresRepository)(nil)
