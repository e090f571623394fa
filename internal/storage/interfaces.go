package storage

import (
	"context"

	"midgard-history/internal/domain"
)

// TimeRange filters records on start_time. Nil bounds are open; set bounds are inclusive.
type TimeRange struct {
	From *int64
	To   *int64
}

// Contains reports whether ts falls inside the range.
func (r TimeRange) Contains(ts int64) bool {
	if r.From != nil && ts < *r.From {
		return false
	}
	if r.To != nil && ts > *r.To {
		return false
	}
	return true
}

// IntervalStore provides write-once access to one series keyed by start_time.
type IntervalStore[T any] interface {
	// Exists reports whether a record with this start_time is stored.
	Exists(ctx context.Context, startTime int64) (bool, error)

	// Insert adds a record. Returns ErrDuplicateKey if start_time exists.
	Insert(ctx context.Context, rec T) error

	// MaxEndTime returns the latest stored end_time. ok is false for an empty series.
	MaxEndTime(ctx context.Context) (ts int64, ok bool, err error)

	// Query returns records within r ordered by start_time ASC.
	Query(ctx context.Context, r TimeRange) ([]T, error)
}

// PoolStore persists the per-pool breakdown of earnings intervals.
type PoolStore interface {
	// InsertPools stores pools under the parent's start_time. Each row is
	// attempted independently; the returned error joins every row failure
	// and n counts the rows written.
	InsertPools(ctx context.Context, startTime int64, pools []domain.PoolEarnings) (n int, err error)
}

// EarningsStore stores earnings intervals and their pools. Insert writes the
// parent row only; Query returns intervals with pools attached.
type EarningsStore interface {
	IntervalStore[domain.EarningsInterval]
	PoolStore
}

// Stores groups the four series stores behind one handle.
type Stores struct {
	Depth    IntervalStore[domain.DepthInterval]
	RunePool IntervalStore[domain.RunePoolInterval]
	Swaps    IntervalStore[domain.SwapInterval]
	Earnings EarningsStore
}
