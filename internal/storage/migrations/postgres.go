package migrations

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"midgard-history/internal/logger"
	"midgard-history/internal/storage/postgres"
)

var postgresVersionsDDL = fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
    version    TEXT PRIMARY KEY,
    name       TEXT NOT NULL,
    applied_at TIMESTAMPTZ NOT NULL DEFAULT now()
)`, VersionsTable)

// RunPostgresMigrations applies embedded migrations not yet recorded in
// schema_migrations. Each file runs in its own transaction together with
// its version row. Returns the versions applied by this call.
func RunPostgresMigrations(ctx context.Context, pool *postgres.Pool) ([]string, error) {
	all, err := Load(PostgresFS, "postgres")
	if err != nil {
		return nil, err
	}

	if _, err := pool.Exec(ctx, postgresVersionsDDL); err != nil {
		return nil, fmt.Errorf("create %s: %w", VersionsTable, err)
	}

	applied, err := postgresApplied(ctx, pool)
	if err != nil {
		return nil, err
	}

	log := logger.GetLogger().WithComponent("migrations")
	var done []string
	for _, m := range Pending(all, applied) {
		err := pgx.BeginFunc(ctx, pool, func(tx pgx.Tx) error {
			if _, err := tx.Exec(ctx, m.SQL); err != nil {
				return err
			}
			_, err := tx.Exec(ctx,
				fmt.Sprintf("INSERT INTO %s (version, name) VALUES ($1, $2)", VersionsTable),
				m.Version, m.Name)
			return err
		})
		if err != nil {
			return done, fmt.Errorf("apply migration %s_%s: %w", m.Version, m.Name, err)
		}
		log.WithFields(logger.Fields{"driver": "postgres", "version": m.Version, "name": m.Name}).
			Info("migration applied")
		done = append(done, m.Version)
	}

	return done, nil
}

func postgresApplied(ctx context.Context, pool *postgres.Pool) (map[string]bool, error) {
	rows, err := pool.Query(ctx, fmt.Sprintf("SELECT version FROM %s", VersionsTable))
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", VersionsTable, err)
	}
	defer rows.Close()

	applied := make(map[string]bool)
	for rows.Next() {
		var v string
		if err := rows.Scan(&v); err != nil {
			return nil, fmt.Errorf("scan %s: %w", VersionsTable, err)
		}
		applied[v] = true
	}
	return applied, rows.Err()
}
