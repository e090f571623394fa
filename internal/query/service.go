package query

import (
	"context"
	"fmt"
	"slices"

	"midgard-history/internal/aggregation"
	"midgard-history/internal/domain"
	"midgard-history/internal/storage"
)

// Service answers history queries for one series.
type Service[T domain.Interval[T]] struct {
	series domain.Series
	store  storage.IntervalStore[T]
}

// NewService creates a query service over store.
func NewService[T domain.Interval[T]](series domain.Series, store storage.IntervalStore[T]) *Service[T] {
	return &Service[T]{series: series, store: store}
}

// Series returns the served series.
func (s *Service[T]) Series() domain.Series { return s.series }

// Query reads the range ascending, buckets it when an interval is set, orders
// the result and returns the requested page. Descending order pages from the
// newest bucket.
func (s *Service[T]) Query(ctx context.Context, p Params) ([]T, error) {
	records, err := s.store.Query(ctx, p.Range())
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", s.series, err)
	}

	if p.Interval != "" {
		maxBuckets := 0
		if p.Order == Asc {
			// Later pages never need buckets past page*limit.
			maxBuckets = p.Page * p.Limit
		}
		records = aggregation.Aggregate(records, aggregation.BucketWidth(p.Interval), maxBuckets)
	}

	if p.Order == Desc {
		records = slices.Clone(records)
		slices.Reverse(records)
	}

	return paginate(records, p.Page, p.Limit), nil
}

func paginate[T any](records []T, page, limit int) []T {
	if page-1 > len(records)/limit {
		return []T{}
	}
	start := (page - 1) * limit
	if start >= len(records) {
		return []T{}
	}
	end := min(start+limit, len(records))
	return records[start:end]
}
