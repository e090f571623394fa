package ingestion

import (
	"context"

	"midgard-history/internal/domain"
	"midgard-history/internal/logger"
	"midgard-history/internal/storage"
)

// Checkpoint derives the resume point of a series from its store.
type Checkpoint[T any] struct {
	series   domain.Series
	store    storage.IntervalStore[T]
	fallback int64
	logger   *logger.Entry
}

// NewCheckpoint creates a checkpoint that falls back to fallback when the
// series is empty or unreadable.
func NewCheckpoint[T any](series domain.Series, store storage.IntervalStore[T], fallback int64, log *logger.Entry) *Checkpoint[T] {
	if log == nil {
		log = logger.GetLogger().WithComponent("checkpoint")
	}
	return &Checkpoint[T]{
		series:   series,
		store:    store,
		fallback: fallback,
		logger:   log,
	}
}

// LastBoundary returns the latest persisted end_time, or the fallback.
// A store error is logged and treated as an empty series; re-fetching is
// safe because writes are idempotent.
func (c *Checkpoint[T]) LastBoundary(ctx context.Context) int64 {
	ts, ok, err := c.store.MaxEndTime(ctx)
	if err != nil {
		c.logger.WithError(err).WithField("series", c.series).
			Warn("checkpoint read failed, using configured start time")
		return c.fallback
	}
	if !ok {
		return c.fallback
	}
	return ts
}
