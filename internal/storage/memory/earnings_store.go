package memory

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"midgard-history/internal/domain"
	"midgard-history/internal/storage"
)

// EarningsStore is an in-memory implementation of storage.EarningsStore.
type EarningsStore struct {
	*IntervalStore[domain.EarningsInterval]

	mu    sync.RWMutex
	pools map[int64][]domain.PoolEarnings // keyed by earnings start_time
}

// NewEarningsStore creates a new in-memory earnings store.
func NewEarningsStore() *EarningsStore {
	return &EarningsStore{
		IntervalStore: NewIntervalStore[domain.EarningsInterval](),
		pools:         make(map[int64][]domain.PoolEarnings),
	}
}

// Compile-time interface check.
var _ storage.EarningsStore = (*EarningsStore)(nil)

// Insert stores the parent row only. Pools are written by InsertPools.
func (s *EarningsStore) Insert(ctx context.Context, e domain.EarningsInterval) error {
	e.Pools = nil
	return s.IntervalStore.Insert(ctx, e)
}

// InsertPools stores each pool row keyed by (start_time, pool).
func (s *EarningsStore) InsertPools(_ context.Context, startTime int64, pools []domain.PoolEarnings) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var errs []error
	n := 0
	for _, p := range pools {
		if p.Pool == "" {
			errs = append(errs, fmt.Errorf("pool at %d: %w", startTime, storage.ErrInvalidInput))
			continue
		}
		if containsPool(s.pools[startTime], p.Pool) {
			errs = append(errs, fmt.Errorf("pool %s at %d: %w", p.Pool, startTime, storage.ErrDuplicateKey))
			continue
		}
		s.pools[startTime] = append(s.pools[startTime], p)
		n++
	}
	return n, errors.Join(errs...)
}

// Query returns intervals within r with their pools attached in name order.
func (s *EarningsStore) Query(ctx context.Context, r storage.TimeRange) ([]domain.EarningsInterval, error) {
	out, err := s.IntervalStore.Query(ctx, r)
	if err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	for i := range out {
		stored := s.pools[out[i].StartTime]
		out[i].Pools = make([]domain.PoolEarnings, len(stored))
		copy(out[i].Pools, stored)
		pools := out[i].Pools
		sort.Slice(pools, func(a, b int) bool { return pools[a].Pool < pools[b].Pool })
	}
	return out, nil
}

func containsPool(pools []domain.PoolEarnings, name string) bool {
	for _, p := range pools {
		if p.Pool == name {
			return true
		}
	}
	return false
}

// NewStores returns a fresh set of in-memory stores for all series.
func NewStores() storage.Stores {
	return storage.Stores{
		Depth:    NewIntervalStore[domain.DepthInterval](),
		RunePool: NewIntervalStore[domain.RunePoolInterval](),
		Swaps:    NewIntervalStore[domain.SwapInterval](),
		Earnings: NewEarningsStore(),
	}
}
