// Package memory provides in-memory stores for tests and local runs.
package memory

import (
	"context"
	"sort"
	"sync"

	"midgard-history/internal/domain"
	"midgard-history/internal/storage"
)

// IntervalStore is an in-memory implementation of storage.IntervalStore.
type IntervalStore[T domain.Interval[T]] struct {
	mu   sync.RWMutex
	data map[int64]T // keyed by start_time
}

// NewIntervalStore creates a new in-memory interval store.
func NewIntervalStore[T domain.Interval[T]]() *IntervalStore[T] {
	return &IntervalStore[T]{
		data: make(map[int64]T),
	}
}

// Compile-time interface checks.
var (
	_ storage.IntervalStore[domain.DepthInterval]    = (*IntervalStore[domain.DepthInterval])(nil)
	_ storage.IntervalStore[domain.RunePoolInterval] = (*IntervalStore[domain.RunePoolInterval])(nil)
	_ storage.IntervalStore[domain.SwapInterval]     = (*IntervalStore[domain.SwapInterval])(nil)
)

// Exists reports whether start_time is stored.
func (s *IntervalStore[T]) Exists(_ context.Context, startTime int64) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	_, ok := s.data[startTime]
	return ok, nil
}

// Insert adds a record. Returns ErrDuplicateKey if start_time exists.
func (s *IntervalStore[T]) Insert(_ context.Context, rec T) error {
	if rec.End() < rec.Start() {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.data[rec.Start()]; exists {
		return storage.ErrDuplicateKey
	}
	s.data[rec.Start()] = rec
	return nil
}

// MaxEndTime returns the latest end_time.
func (s *IntervalStore[T]) MaxEndTime(_ context.Context) (int64, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var maxEnd int64
	found := false
	for _, rec := range s.data {
		if !found || rec.End() > maxEnd {
			maxEnd = rec.End()
			found = true
		}
	}
	return maxEnd, found, nil
}

// Query returns records within r ordered by start_time ASC.
func (s *IntervalStore[T]) Query(_ context.Context, r storage.TimeRange) ([]T, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []T
	for start, rec := range s.data {
		if r.Contains(start) {
			out = append(out, rec)
		}
	}

	sort.Slice(out, func(i, j int) bool {
		return out[i].Start() < out[j].Start()
	})

	return out, nil
}

// Len returns the number of stored records.
func (s *IntervalStore[T]) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.data)
}
