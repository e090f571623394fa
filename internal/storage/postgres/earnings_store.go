package postgres

import (
	"context"
	"errors"
	"fmt"

	"midgard-history/internal/domain"
	"midgard-history/internal/storage"
)

// EarningsStore implements storage.EarningsStore using PostgreSQL.
type EarningsStore struct {
	*IntervalStore[domain.EarningsInterval]
}

// NewEarningsStore creates a new EarningsStore.
func NewEarningsStore(pool *Pool) *EarningsStore {
	return &EarningsStore{IntervalStore: NewIntervalStore(pool, storage.EarningsSchema)}
}

// Compile-time interface check.
var _ storage.EarningsStore = (*EarningsStore)(nil)

// InsertPools inserts each pool row on its own so one failure does not
// discard the others.
func (s *EarningsStore) InsertPools(ctx context.Context, startTime int64, pools []domain.PoolEarnings) (int, error) {
	query := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		storage.PoolsTable, joinColumns(storage.PoolColumns), placeholders(len(storage.PoolColumns)))

	var errs []error
	n := 0
	for _, p := range pools {
		if _, err := s.pool.Exec(ctx, query, storage.PoolValues(startTime, p)...); err != nil {
			if isDuplicateKeyError(err) {
				err = storage.ErrDuplicateKey
			}
			errs = append(errs, fmt.Errorf("insert pool %s at %d: %w", p.Pool, startTime, err))
			continue
		}
		n++
	}
	return n, errors.Join(errs...)
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

	starts := make([]int64, len(intervals))
	byStart := make(map[int64]int, len(intervals))
	for i, e := range intervals {
		starts[i] = e.StartTime
		byStart[e.StartTime] = i
		intervals[i].Pools = []domain.PoolEarnings{}
	}

	query := fmt.Sprintf(
		"SELECT %s FROM %s WHERE earnings_start_time = ANY($1) ORDER BY earnings_start_time ASC, pool_name ASC",
		joinColumns(storage.PoolColumns), storage.PoolsTable)

	rows, err := s.pool.Query(ctx, query, starts)
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
