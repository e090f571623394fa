package migrations

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"midgard-history/internal/logger"
	chstore "midgard-history/internal/storage/clickhouse"
)

// RunClickhouseMigrations ensures the database exists and applies the embedded
// migrations not yet recorded in schema_migrations. Returns a connection to the
// target database for reuse.
func RunClickhouseMigrations(ctx context.Context, dsn string) (*chstore.Conn, error) {
	dbName, err := databaseFromDSN(dsn)
	if err != nil {
		return nil, err
	}

	adminConn, err := chstore.NewConnWithDatabase(ctx, dsn, "")
	if err != nil {
		return nil, fmt.Errorf("connect clickhouse admin: %w", err)
	}
	if err := adminConn.Exec(ctx, fmt.Sprintf("CREATE DATABASE IF NOT EXISTS %s", dbName)); err != nil {
		adminConn.Close()
		return nil, fmt.Errorf("create database %s: %w", dbName, err)
	}
	if err := adminConn.Close(); err != nil {
		return nil, fmt.Errorf("close admin connection: %w", err)
	}

	conn, err := chstore.NewConnWithDatabase(ctx, dsn, dbName)
	if err != nil {
		return nil, fmt.Errorf("connect clickhouse db: %w", err)
	}

	all, err := Load(ClickhouseFS, "clickhouse")
	if err != nil {
		conn.Close()
		return nil, err
	}

	if err := conn.Exec(ctx, clickhouseVersionsDDL); err != nil {
		conn.Close()
		return nil, fmt.Errorf("create %s: %w", VersionsTable, err)
	}

	applied, err := clickhouseApplied(ctx, conn)
	if err != nil {
		conn.Close()
		return nil, err
	}

	log := logger.GetLogger().WithComponent("migrations")
	for _, m := range Pending(all, applied) {
		// The splitter cannot tell a semicolon in a string literal from a terminator.
		if err := validateNoSemicolonInStrings(m.SQL); err != nil {
			conn.Close()
			return nil, fmt.Errorf("validate migration %s_%s: %w", m.Version, m.Name, err)
		}

		// ClickHouse has no multi-statement Exec and no DDL transactions, so a
		// failed file is retried from its first statement on the next start.
		for _, stmt := range splitStatements(m.SQL) {
			if err := conn.Exec(ctx, stmt); err != nil {
				conn.Close()
				return nil, fmt.Errorf("apply migration %s_%s: %w", m.Version, m.Name, err)
			}
		}
		if err := conn.Exec(ctx,
			fmt.Sprintf("INSERT INTO %s (version, name) VALUES (?, ?)", VersionsTable),
			m.Version, m.Name); err != nil {
			conn.Close()
			return nil, fmt.Errorf("record migration %s: %w", m.Version, err)
		}
		log.WithFields(logger.Fields{"driver": "clickhouse", "version": m.Version, "name": m.Name}).
			Info("migration applied")
	}

	return conn, nil
}

var clickhouseVersionsDDL = fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
    version    String,
    name       String,
    applied_at DateTime DEFAULT now()
) ENGINE = ReplacingMergeTree()
ORDER BY version`, VersionsTable)

func clickhouseApplied(ctx context.Context, conn *chstore.Conn) (map[string]bool, error) {
	rows, err := conn.Query(ctx, fmt.Sprintf("SELECT DISTINCT version FROM %s", VersionsTable))
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

// splitStatements splits SQL content into individual statements by semicolon.
//
// IMPORTANT CONSTRAINT: This splitter is intentionally simple and does NOT handle:
//   - Semicolons inside string literals (e.g., 'foo;bar')
//   - Semicolons inside inline comments (e.g., /* foo; bar */)
//   - Dollar-quoted strings
//
// All ClickHouse migrations MUST follow these rules:
//  1. No semicolons inside string literals
//  2. Use -- style comments only (not /* */ with semicolons)
//  3. Each statement ends with a semicolon on its own line or at end of statement
//
// This constraint is validated at migration time - see validateNoSemicolonInStrings.
func splitStatements(input string) []string {
	var filtered []string
	for _, line := range strings.Split(input, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, "--") {
			continue
		}
		filtered = append(filtered, line)
	}
	joined := strings.Join(filtered, "\n")

	var stmts []string
	for _, part := range strings.Split(joined, ";") {
		stmt := strings.TrimSpace(part)
		if stmt != "" {
			stmts = append(stmts, stmt)
		}
	}
	return stmts
}

// validateNoSemicolonInStrings checks that SQL doesn't contain semicolons inside
// single-quoted strings, which would break our simple statement splitter.
// Returns an error if a dangerous pattern is detected.
func validateNoSemicolonInStrings(sql string) error {
	inString := false
	for i := 0; i < len(sql); i++ {
		ch := sql[i]
		if ch == '\'' {
			// Handle escaped quotes ''
			if i+1 < len(sql) && sql[i+1] == '\'' {
				i++ // skip next quote
				continue
			}
			inString = !inString
		} else if ch == ';' && inString {
			return fmt.Errorf("semicolon found inside string literal - this breaks the migration splitter")
		}
	}
	return nil
}

func databaseFromDSN(dsn string) (string, error) {
	u, err := url.Parse(dsn)
	if err != nil {
		return "", fmt.Errorf("parse clickhouse dsn: %w", err)
	}
	db := strings.TrimPrefix(u.Path, "/")
	if db == "" {
		return "", fmt.Errorf("clickhouse dsn missing database")
	}
	return db, nil
}
