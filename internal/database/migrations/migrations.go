// Package migrations applies the embedded SQL schema at startup.
//
// Files run in lexicographic order and each applied file is recorded in
// schema_migrations, so Run is idempotent.
package migrations

import (
	"context"
	"embed"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

//go:embed *.sql
var sqlFiles embed.FS

// Migration is a single embedded SQL file.
type Migration struct {
	Version string
	SQL     string
}

// Load returns the embedded migrations in execution order.
func Load() ([]Migration, error) {
	entries, err := sqlFiles.ReadDir(".")
	if err != nil {
		return nil, fmt.Errorf("read embedded dir: %w", err)
	}

	var out []Migration
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		content, err := sqlFiles.ReadFile(e.Name())
		if err != nil {
			return nil, fmt.Errorf("read %q: %w", e.Name(), err)
		}
		out = append(out, Migration{Version: e.Name(), SQL: string(content)})
	}

	return out, nil
}

// Run applies all pending migrations, each inside its own transaction.
func Run(ctx context.Context, pool *pgxpool.Pool, log zerolog.Logger) error {
	migrations, err := Load()
	if err != nil {
		return fmt.Errorf("migrations: %w", err)
	}

	// 000 creates the tracking table and is safe to re-run.
	if _, err := pool.Exec(ctx, migrations[0].SQL); err != nil {
		return fmt.Errorf("migrations: ensure tracking table: %w", err)
	}

	applied, err := appliedVersions(ctx, pool)
	if err != nil {
		return fmt.Errorf("migrations: read applied versions: %w", err)
	}

	count := 0
	for _, m := range migrations {
		if applied[m.Version] {
			continue
		}
		if err := apply(ctx, pool, m); err != nil {
			return fmt.Errorf("migrations: apply %q: %w", m.Version, err)
		}
		log.Info().Str("version", m.Version).Msg("migration applied")
		count++
	}

	log.Info().Int("applied", count).Msg("database schema up to date")
	return nil
}

func appliedVersions(ctx context.Context, pool *pgxpool.Pool) (map[string]bool, error) {
	rows, err := pool.Query(ctx, `SELECT version FROM schema_migrations`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	seen := make(map[string]bool)
	for rows.Next() {
		var v string
		if err := rows.Scan(&v); err != nil {
			return nil, err
		}
		seen[v] = true
	}

	return seen, rows.Err()
}

func apply(ctx context.Context, pool *pgxpool.Pool, m Migration) error {
	tx, err := pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err := tx.Exec(ctx, m.SQL); err != nil {
		return fmt.Errorf("exec sql: %w", err)
	}
	if _, err := tx.Exec(ctx, `INSERT INTO schema_migrations (version) VALUES ($1)`, m.Version); err != nil {
		return fmt.Errorf("record version: %w", err)
	}

	return tx.Commit(ctx)
}
