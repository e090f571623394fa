package clickhouse

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"midgard-history/internal/domain"
	"midgard-history/internal/storage"
)

// EarningsStore implements storage.EarningsStore using ClickHouse.
type EarningsStore struct {
	*IntervalStore[domain.EarningsInterval]
}

// NewEarningsStore creates a new EarningsStore.
func NewEarningsStore(conn *Conn) *EarningsStore {
	return &EarningsStore{IntervalStore: NewIntervalStore(conn, storage.EarningsSchema)}
}

// Compile-time interface check.
var _ storage.EarningsStore = (*EarningsStore)(nil)

func (s *EarningsStore) poolExists(ctx context.Context, startTime int64, pool string) (bool, error) {
	query := fmt.Sprintf("SELECT count(*) FROM %s WHERE earnings_start_time = ? AND pool_name = ?", storage.PoolsTable)

	var count uint64
	if err := s.conn.QueryRow(ctx, query, startTime, pool).Scan(&count); err != nil {
		return false, err
	}
	return count > 0, nil
}

// InsertPools checks every pool key and sends the new rows in one batch.
func (s *EarningsStore) InsertPools(ctx context.Context, startTime int64, pools []domain.PoolEarnings) (int, error) {
	var errs []error
	var fresh []domain.PoolEarnings
	for _, p := range pools {
		if p.Pool == "" {
			errs = append(errs, fmt.Errorf("pool at %d: %w", startTime, storage.ErrInvalidInput))
			continue
		}
		exists, err := s.poolExists(ctx, startTime, p.Pool)
		if err != nil {
			errs = append(errs, fmt.Errorf("check pool %s at %d: %w", p.Pool, startTime, err))
			continue
		}
		if exists {
			errs = append(errs, fmt.Errorf("pool %s at %d: %w", p.Pool, startTime, storage.ErrDuplicateKey))
			continue
		}
		fresh = append(fresh, p)
	}
	if len(fresh) == 0 {
		return 0, errors.Join(errs...)
	}

	batch, err := s.conn.PrepareBatch(ctx, fmt.Sprintf("INSERT INTO %s (%s)",
		storage.PoolsTable, strings.Join(storage.PoolColumns, ", ")))
	if err != nil {
		return 0, errors.Join(append(errs, fmt.Errorf("prepare pool batch: %w", err))...)
	}
	for _, p := range fresh {
		if err := batch.Append(storage.PoolValues(startTime, p)...); err != nil {
			return 0, errors.Join(append(errs, fmt.Errorf("append pool %s: %w", p.Pool, err))...)
		}
	}
	if err := batch.Send(); err != nil {
		return 0, errors.Join(append(errs, fmt.Errorf("send pool batch: %w", err))...)
	}

	return len(fresh), errors.Join(errs...)
}

// Query returns earnings intervals within r with their pools attached.
func (s *EarningsStore) Query(ctx context.Context, r storage.TimeRange) ([]domain.EarningsInterval, error) {
	intervals, err := s.IntervalStore.Query(ctx, r)
	if err != nil {
		return nil, err
	}
	if len(intervals) == 0 {
		return intervals, nil
	}

	byStart := make(map[int64]int, len(intervals))
	for i, e := range intervals {
		byStart[e.StartTime] = i
		intervals[i].Pools = []domain.PoolEarnings{}
	}

	where, args := rangeClause("earnings_start_time", r)
	query := fmt.Sprintf("SELECT %s FROM %s FINAL%s ORDER BY earnings_start_time ASC, pool_name ASC",
		strings.Join(storage.PoolColumns, ", "), storage.PoolsTable, where)

	rows, err := s.conn.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query earnings pools: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var startTime int64
		var p domain.PoolEarnings
		if err := rows.Scan(storage.PoolFields(&startTime, &p)...); err != nil {
			return nil, fmt.Errorf("scan earnings pool row: %w", err)
		}
		if i, ok := byStart[startTime]; ok {
			intervals[i].Pools = append(intervals[i].Pools, p)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate earnings pool rows: %w", err)
	}

	return intervals, nil
}
