package ingestion

import (
	"context"
	"errors"

	"midgard-history/internal/domain"
	"midgard-history/internal/logger"
	"midgard-history/internal/observability"
	"midgard-history/internal/storage"
)

// WriteResult counts the outcome of persisting records.
type WriteResult struct {
	Written      int
	Skipped      int
	Failed       int
	PoolsWritten int
	PoolErrors   int
}

func (r *WriteResult) add(o WriteResult) {
	r.Written += o.Written
	r.Skipped += o.Skipped
	r.Failed += o.Failed
	r.PoolsWritten += o.PoolsWritten
	r.PoolErrors += o.PoolErrors
}

// Writer persists records with exists-then-insert semantics. Failures are
// per record and never abort the batch.
type Writer[T domain.Interval[T]] struct {
	series domain.Series
	store  storage.IntervalStore[T]
	logger *logger.Entry

	pools   storage.PoolStore
	poolsOf func(T) []domain.PoolEarnings
}

// NewWriter creates a writer for one series store.
func NewWriter[T domain.Interval[T]](series domain.Series, store storage.IntervalStore[T], log *logger.Entry) *Writer[T] {
	if log == nil {
		log = logger.GetLogger().WithComponent("writer")
	}
	return &Writer[T]{series: series, store: store, logger: log}
}

// NewEarningsWriter creates a writer that also stores each new interval's pools.
func NewEarningsWriter(store storage.EarningsStore, log *logger.Entry) *Writer[domain.EarningsInterval] {
	w := NewWriter[domain.EarningsInterval](domain.SeriesEarnings, store, log)
	w.pools = store
	w.poolsOf = func(e domain.EarningsInterval) []domain.PoolEarnings { return e.Pools }
	return w
}

// Persist writes records in order and returns the counts.
func (w *Writer[T]) Persist(ctx context.Context, records []T) WriteResult {
	var res WriteResult

	for _, rec := range records {
		entry := w.logger.WithFields(logger.Fields{"series": w.series, "start_time": rec.Start()})

		exists, err := w.store.Exists(ctx, rec.Start())
		if err != nil {
			entry.WithError(err).Error("existence check failed, skipping record")
			res.Failed++
			continue
		}
		if exists {
			res.Skipped++
			continue
		}

		if err := w.store.Insert(ctx, rec); err != nil {
			if errors.Is(err, storage.ErrDuplicateKey) {
				res.Skipped++
				continue
			}
			entry.WithError(err).Error("insert failed, skipping record")
			res.Failed++
			continue
		}
		res.Written++

		if w.pools == nil {
			continue
		}
		pools := w.poolsOf(rec)
		if len(pools) == 0 {
			continue
		}
		n, err := w.pools.InsertPools(ctx, rec.Start(), pools)
		res.PoolsWritten += n
		if err != nil {
			// The parent row stays; missing pools are not retried.
			res.PoolErrors += len(pools) - n
			entry.WithError(err).Error("earnings pool insert failed")
		}
	}

	observability.RecordWrites(string(w.series), res.Written, res.Skipped, res.Failed)
	if res.PoolErrors > 0 {
		observability.RecordPoolWriteErrors(res.PoolErrors)
	}
	return res
}
