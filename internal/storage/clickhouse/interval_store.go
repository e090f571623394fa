package clickhouse

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"

	"midgard-history/internal/domain"
	"midgard-history/internal/observability"
	"midgard-history/internal/storage"
)

// IntervalStore implements storage.IntervalStore for one series table.
// MergeTree does not enforce uniqueness, so Insert checks start_time first.
type IntervalStore[T any] struct {
	conn   *Conn
	schema storage.Schema[T]
}

// NewIntervalStore creates a store over the table described by schema.
func NewIntervalStore[T any](conn *Conn, schema storage.Schema[T]) *IntervalStore[T] {
	return &IntervalStore[T]{conn: conn, schema: schema}
}

// NewDepthStore creates the depth_history store.
func NewDepthStore(conn *Conn) *IntervalStore[domain.DepthInterval] {
	return NewIntervalStore(conn, storage.DepthSchema)
}

// NewRunePoolStore creates the rune_pool_history store.
func NewRunePoolStore(conn *Conn) *IntervalStore[domain.RunePoolInterval] {
	return NewIntervalStore(conn, storage.RunePoolSchema)
}

// NewSwapStore creates the swap_history store.
func NewSwapStore(conn *Conn) *IntervalStore[domain.SwapInterval] {
	return NewIntervalStore(conn, storage.SwapSchema)
}

// Compile-time interface checks.
var (
	_ storage.IntervalStore[domain.DepthInterval]    = (*IntervalStore[domain.DepthInterval])(nil)
	_ storage.IntervalStore[domain.RunePoolInterval] = (*IntervalStore[domain.RunePoolInterval])(nil)
	_ storage.IntervalStore[domain.SwapInterval]     = (*IntervalStore[domain.SwapInterval])(nil)
)

// Exists reports whether start_time is stored.
func (s *IntervalStore[T]) Exists(ctx context.Context, startTime int64) (bool, error) {
	query := fmt.Sprintf("SELECT count(*) FROM %s WHERE start_time = ?", s.schema.Table)

	var count uint64
	if err := s.conn.QueryRow(ctx, query, startTime).Scan(&count); err != nil {
		return false, fmt.Errorf("check %s exists: %w", s.schema.Table, err)
	}
	return count > 0, nil
}

// Insert adds a record. Returns ErrDuplicateKey if start_time exists.
func (s *IntervalStore[T]) Insert(ctx context.Context, rec T) error {
	values := s.schema.Values(rec)

	exists, err := s.Exists(ctx, values[0].(int64))
	if err != nil {
		return err
	}
	if exists {
		return storage.ErrDuplicateKey
	}

	batch, err := s.conn.PrepareBatch(ctx, fmt.Sprintf("INSERT INTO %s (%s)", s.schema.Table, s.schema.ColumnList()))
	if err != nil {
		return fmt.Errorf("prepare batch: %w", err)
	}
	if err := batch.Append(values...); err != nil {
		return fmt.Errorf("append to batch: %w", err)
	}
	if err := batch.Send(); err != nil {
		return fmt.Errorf("insert %s: %w", s.schema.Table, err)
	}
	return nil
}

// MaxEndTime returns the latest end_time. ok is false when the table is empty.
func (s *IntervalStore[T]) MaxEndTime(ctx context.Context) (int64, bool, error) {
	query := fmt.Sprintf("SELECT max(end_time), count(*) FROM %s", s.schema.Table)

	var maxEnd int64
	var count uint64
	if err := s.conn.QueryRow(ctx, query).Scan(&maxEnd, &count); err != nil {
		return 0, false, fmt.Errorf("max end_time of %s: %w", s.schema.Table, err)
	}
	if count == 0 {
		return 0, false, nil
	}
	return maxEnd, true, nil
}

// Query returns records within r ordered by start_time ASC.
func (s *IntervalStore[T]) Query(ctx context.Context, r storage.TimeRange) ([]T, error) {
	start := time.Now()
	where, args := rangeClause("start_time", r)
	query := fmt.Sprintf("SELECT %s FROM %s FINAL%s ORDER BY start_time ASC",
		s.schema.ColumnList(), s.schema.Table, where)

	rows, err := s.conn.Query(ctx, query, args...)
	if err != nil {
		observability.RecordDBQuery("clickhouse", "query_"+s.schema.Table, time.Since(start).Seconds(), err)
		return nil, fmt.Errorf("query %s: %w", s.schema.Table, err)
	}
	defer rows.Close()

	out, err := s.scan(rows)
	observability.RecordDBQuery("clickhouse", "query_"+s.schema.Table, time.Since(start).Seconds(), err)
	return out, err
}

func (s *IntervalStore[T]) scan(rows driver.Rows) ([]T, error) {
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

// rangeClause builds " WHERE ..." with positional bounds on column.
func rangeClause(column string, r storage.TimeRange) (string, []any) {
	var conds []string
	var args []any
	if r.From != nil {
		conds = append(conds, column+" >= ?")
		args = append(args, *r.From)
	}
	if r.To != nil {
		conds = append(conds, column+" <= ?")
		args = append(args, *r.To)
	}
	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}
