package line

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/subwayline/subwayline/internal/database"
)

// querier is satisfied by both *pgxpool.Pool and pgx.Tx.
type querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PostgresRepository is a PostgreSQL implementation of Repository.
//
// Sections are stored in line_sections with their path position. Mutate
// locks the line row with SELECT ... FOR UPDATE so concurrent insertions into
// the same line run one after the other.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository creates a new PostgreSQL line repository.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

const sectionColumns = `
	s.up_station_id, us.name,
	s.down_station_id, ds.name,
	s.distance
`

const sectionJoins = `
	FROM line_sections s
	JOIN stations us ON us.id = s.up_station_id
	JOIN stations ds ON ds.id = s.down_station_id
`

// Get retrieves a line by ID.
func (r *PostgresRepository) Get(ctx context.Context, id string) (*Line, error) {
	query := `SELECT id, name, color, created_at, updated_at FROM lines WHERE id = $1`
	return r.load(ctx, r.pool, query, id)
}

// List retrieves all lines ordered by creation time.
func (r *PostgresRepository) List(ctx context.Context) ([]*Line, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, name, color, created_at, updated_at
		FROM lines
		ORDER BY created_at, id
	`)
	if err != nil {
		return nil, err
	}

	var lines []*Line
	for rows.Next() {
		var l Line
		if err := rows.Scan(&l.ID, &l.Name, &l.Color, &l.CreatedAt, &l.UpdatedAt); err != nil {
			rows.Close()
			return nil, err
		}
		lines = append(lines, &l)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if len(lines) == 0 {
		return lines, nil
	}

	// One query for every line's sections, grouped in memory.
	sectionRows, err := r.pool.Query(ctx, `SELECT s.line_id, `+sectionColumns+sectionJoins+`ORDER BY s.line_id, s.position`)
	if err != nil {
		return nil, err
	}
	defer sectionRows.Close()

	grouped := make(map[string][]Section, len(lines))
	for sectionRows.Next() {
		var lineID string
		var sec Section
		if err := sectionRows.Scan(&lineID, &sec.Up.ID, &sec.Up.Name, &sec.Down.ID, &sec.Down.Name, &sec.Distance); err != nil {
			return nil, err
		}
		grouped[lineID] = append(grouped[lineID], sec)
	}
	if err := sectionRows.Err(); err != nil {
		return nil, err
	}

	for _, l := range lines {
		chain, err := RestoreSections(grouped[l.ID])
		if err != nil {
			return nil, fmt.Errorf("line %s: %w", l.ID, err)
		}
		l.Sections = chain
	}

	return lines, nil
}

// Create stores a new line with its sections.
func (r *PostgresRepository) Create(ctx context.Context, l *Line) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	_, err = tx.Exec(ctx, `
		INSERT INTO lines (id, name, color, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)
	`, l.ID, l.Name, l.Color, l.CreatedAt, l.UpdatedAt)
	if err != nil {
		if database.IsUniqueViolation(err) {
			return ErrDuplicateLineName
		}
		return err
	}

	if err := writeSections(ctx, tx, l); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

// Mutate loads the line under a row lock, applies fn and rewrites the line
// and its sections in the same transaction.
func (r *PostgresRepository) Mutate(ctx context.Context, id string, fn MutateFunc) (*Line, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	query := `SELECT id, name, color, created_at, updated_at FROM lines WHERE id = $1 FOR UPDATE`
	l, err := r.load(ctx, tx, query, id)
	if err != nil {
		return nil, err
	}

	if err := fn(l); err != nil {
		return nil, err
	}

	_, err = tx.Exec(ctx, `
		UPDATE lines SET name = $2, color = $3, updated_at = $4
		WHERE id = $1
	`, l.ID, l.Name, l.Color, l.UpdatedAt)
	if err != nil {
		if database.IsUniqueViolation(err) {
			return nil, ErrDuplicateLineName
		}
		return nil, err
	}

	if _, err := tx.Exec(ctx, `DELETE FROM line_sections WHERE line_id = $1`, l.ID); err != nil {
		return nil, err
	}
	if err := writeSections(ctx, tx, l); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}
	return l, nil
}

// Delete deletes a line by ID. Its sections are removed by cascade.
func (r *PostgresRepository) Delete(ctx context.Context, id string) error {
	result, err := r.pool.Exec(ctx, `DELETE FROM lines WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if result.RowsAffected() == 0 {
		return ErrLineNotFound
	}
	return nil
}

// HasStation reports whether any line passes through the station.
func (r *PostgresRepository) HasStation(ctx context.Context, stationID string) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM line_sections
			WHERE up_station_id = $1 OR down_station_id = $1
		)
	`, stationID).Scan(&exists)
	return exists, err
}

// load reads one line row with query and then its sections.
func (r *PostgresRepository) load(ctx context.Context, q querier, query, id string) (*Line, error) {
	var l Line
	err := q.QueryRow(ctx, query, id).Scan(&l.ID, &l.Name, &l.Color, &l.CreatedAt, &l.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrLineNotFound
		}
		return nil, err
	}

	rows, err := q.Query(ctx, `SELECT `+sectionColumns+sectionJoins+`WHERE s.line_id = $1 ORDER BY s.position`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var sections []Section
	for rows.Next() {
		var sec Section
		if err := rows.Scan(&sec.Up.ID, &sec.Up.Name, &sec.Down.ID, &sec.Down.Name, &sec.Distance); err != nil {
			return nil, err
		}
		sections = append(sections, sec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	chain, err := RestoreSections(sections)
	if err != nil {
		return nil, fmt.Errorf("line %s: %w", id, err)
	}
	l.Sections = chain
	return &l, nil
}

func writeSections(ctx context.Context, tx pgx.Tx, l *Line) error {
	sections := l.Sections.Sections()
	_, err := tx.CopyFrom(ctx,
		pgx.Identifier{"line_sections"},
		[]string{"line_id", "position", "up_station_id", "down_station_id", "distance"},
		pgx.CopyFromSlice(len(sections), func(i int) ([]any, error) {
			sec := sections[i]
			return []any{l.ID, i, sec.Up.ID, sec.Down.ID, sec.Distance}, nil
		}),
	)
	if err != nil {
		return fmt.Errorf("write sections: %w", err)
	}
	return nil
}

// Ensure PostgresRepository implements Repository interface.
var _ Repository = (*PostgresRepository)(nil)
