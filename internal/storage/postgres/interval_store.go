package postgres

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"midgard-history/internal/domain"
	"midgard-history/internal/observability"
	"midgard-history/internal/storage"
)

// IntervalStore implements storage.IntervalStore for one series table.
type IntervalStore[T any] struct {
	pool   *Pool
	schema storage.Schema[T]

	insertSQL string
	selectSQL string
}

// NewIntervalStore creates a store over the table described by schema.
func NewIntervalStore[T any](pool *Pool, schema storage.Schema[T]) *IntervalStore[T] {
	return &IntervalStore[T]{
		pool:   pool,
		schema: schema,
		insertSQL: fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
			schema.Table, schema.ColumnList(), placeholders(len(schema.Columns))),
		selectSQL: fmt.Sprintf("SELECT %s FROM %s", schema.ColumnList(), schema.Table),
	}
}

// NewDepthStore creates the depth_history store.
func NewDepthStore(pool *Pool) *IntervalStore[domain.DepthInterval] {
	return NewIntervalStore(pool, storage.DepthSchema)
}

// NewRunePoolStore creates the rune_pool_history store.
func NewRunePoolStore(pool *Pool) *IntervalStore[domain.RunePoolInterval] {
	return NewIntervalStore(pool, storage.RunePoolSchema)
}

// NewSwapStore creates the swap_history store.
func NewSwapStore(pool *Pool) *IntervalStore[domain.SwapInterval] {
	return NewIntervalStore(pool, storage.SwapSchema)
}

// Compile-time interface checks.
var (
	_ storage.IntervalStore[domain.DepthInterval]    = (*IntervalStore[domain.DepthInterval])(nil)
	_ storage.IntervalStore[domain.RunePoolInterval] = (*IntervalStore[domain.RunePoolInterval])(nil)
	_ storage.IntervalStore[domain.SwapInterval]     = (*IntervalStore[domain.SwapInterval])(nil)
)

// Exists reports whether start_time is stored.
func (s *IntervalStore[T]) Exists(ctx context.Context, startTime int64) (bool, error) {
	query := fmt.Sprintf("SELECT EXISTS(SELECT 1 FROM %s WHERE start_time = $1)", s.schema.Table)

	var exists bool
	if err := s.pool.QueryRow(ctx, query, startTime).Scan(&exists); err != nil {
		return false, fmt.Errorf("check %s exists: %w", s.schema.Table, err)
	}
	return exists, nil
}

// Insert adds a record. Returns ErrDuplicateKey if start_time exists.
func (s *IntervalStore[T]) Insert(ctx context.Context, rec T) error {
	_, err := s.pool.Exec(ctx, s.insertSQL, s.schema.Values(rec)...)
	if err != nil {
		if isDuplicateKeyError(err) {
			return storage.ErrDuplicateKey
		}
		return fmt.Errorf("insert %s: %w", s.schema.Table, err)
	}
	return nil
}

// MaxEndTime returns the latest end_time. ok is false when the table is empty.
func (s *IntervalStore[T]) MaxEndTime(ctx context.Context) (int64, bool, error) {
	query := fmt.Sprintf("SELECT MAX(end_time) FROM %s", s.schema.Table)

	var maxEnd *int64
	if err := s.pool.QueryRow(ctx, query).Scan(&maxEnd); err != nil {
		return 0, false, fmt.Errorf("max end_time of %s: %w", s.schema.Table, err)
	}
	if maxEnd == nil {
		return 0, false, nil
	}
	return *maxEnd, true, nil
}

// Query returns records within r ordered by start_time ASC.
func (s *IntervalStore[T]) Query(ctx context.Context, r storage.TimeRange) ([]T, error) {
	start := time.Now()
	query, args := rangeQuery(s.selectSQL, "start_time", r)
	query += " ORDER BY start_time ASC"

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		observability.RecordDBQuery("postgres", "query_"+s.schema.Table, time.Since(start).Seconds(), err)
		return nil, fmt.Errorf("query %s: %w", s.schema.Table, err)
	}
	defer rows.Close()

	out, err := s.scan(rows)
	observability.RecordDBQuery("postgres", "query_"+s.schema.Table, time.Since(start).Seconds(), err)
	return out, err
}

func (s *IntervalStore[T]) scan(rows pgx.Rows) ([]T, error) {
	var out []T

	for rows.Next() {
		var rec T
		if err := rows.Scan(s.schema.Fields(&rec)...); err != nil {
			return nil, fmt.Errorf("scan %s row: %w", s.schema.Table, err)
		}
		out = append(out, rec)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate %s rows: %w", s.schema.Table, err)
	}

	return out, nil
}

// rangeQuery appends parameterized bounds on column to base.
func rangeQuery(base, column string, r storage.TimeRange) (string, []any) {
	var conds []string
	var args []any
	if r.From != nil {
		args = append(args, *r.From)
		conds = append(conds, fmt.Sprintf("%s >= $%d", column, len(args)))
	}
	if r.To != nil {
		args = append(args, *r.To)
		conds = append(conds, fmt.Sprintf("%s <= $%d", column, len(args)))
	}
	if len(conds) == 0 {
		return base, nil
	}
	return base + " WHERE " + strings.Join(conds, " AND "), args
}
