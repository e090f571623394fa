package ingestion

import (
	"context"
	"time"

	"github.com/google/uuid"

	"midgard-history/internal/domain"
	"midgard-history/internal/logger"
	"midgard-history/internal/observability"
	"midgard-history/internal/storage"
)

// CycleStatus is the outcome of one sync cycle.
type CycleStatus string

const (
	CycleSkipped CycleStatus = "skipped"
	CycleFetched CycleStatus = "fetched"
	CycleAborted CycleStatus = "aborted"
)

// SyncResult describes one sync cycle of a series.
type SyncResult struct {
	CycleID  string
	Series   domain.Series
	Status   CycleStatus
	Boundary int64
	Fetch    *FetchResult
	Duration time.Duration
}

// Job is one series the scheduler keeps in sync.
type Job interface {
	Series() domain.Series
	// Sync runs one cycle. force bypasses the staleness check.
	Sync(ctx context.Context, force bool) (*SyncResult, error)
}

// PipelineOptions configures Pipeline.
type PipelineOptions struct {
	// Staleness is the minimum age of the stored boundary before a fetch runs.
	Staleness time.Duration
	// StartTime is the checkpoint used when the series is empty.
	StartTime int64
	Fetcher   FetcherOptions
	Logger    *logger.Entry
}

// Pipeline ties checkpoint, fetcher and writer together for one series.
type Pipeline[T domain.Interval[T]] struct {
	series     domain.Series
	checkpoint *Checkpoint[T]
	fetcher    *Fetcher[T]
	staleness  time.Duration
	now        func() time.Time
	logger     *logger.Entry
}

// NewPipeline builds a pipeline from a page source, its store and the writer for that store.
func NewPipeline[T domain.Interval[T]](source PageSource[T], store storage.IntervalStore[T], writer Persister[T], opts PipelineOptions) *Pipeline[T] {
	series := source.Series()
	log := opts.Logger
	if log == nil {
		log = logger.GetLogger().WithComponent("ingestion")
	}
	log = log.WithField("series", series)

	fopts := opts.Fetcher
	if fopts.Logger == nil {
		fopts.Logger = log
	}
	now := fopts.Now
	if now == nil {
		now = time.Now
	}

	return &Pipeline[T]{
		series:     series,
		checkpoint: NewCheckpoint(series, store, opts.StartTime, log),
		fetcher:    NewFetcher(source, writer, fopts),
		staleness:  opts.Staleness,
		now:        now,
		logger:     log,
	}
}

// Series returns the series this pipeline syncs.
func (p *Pipeline[T]) Series() domain.Series { return p.series }

// Sync reads the checkpoint and, unless the series is fresh, fetches from it.
// The checkpoint itself is the resume point; the interval starting there may
// already be stored and is skipped by the writer.
func (p *Pipeline[T]) Sync(ctx context.Context, force bool) (*SyncResult, error) {
	start := time.Now()
	res := &SyncResult{
		CycleID: uuid.NewString(),
		Series:  p.series,
	}
	log := p.logger.WithField("cycle_id", res.CycleID)

	res.Boundary = p.checkpoint.LastBoundary(ctx)
	observability.UpdateCheckpoint(string(p.series), res.Boundary)

	age := p.now().Unix() - res.Boundary
	if !force && age < int64(p.staleness/time.Second) {
		res.Status = CycleSkipped
		res.Duration = time.Since(start)
		observability.RecordCycle(string(p.series), string(res.Status), res.Duration.Seconds())
		log.WithFields(logger.Fields{
			"boundary":    res.Boundary,
			"age_seconds": age,
		}).Debug("series is fresh, skipping fetch")
		return res, nil
	}

	log.WithField("from", res.Boundary).Info("sync started")

	fetch, err := p.fetcher.Run(ctx, res.Boundary)
	res.Fetch = fetch
	res.Duration = time.Since(start)
	if err != nil {
		res.Status = CycleAborted
		observability.RecordCycle(string(p.series), string(res.Status), res.Duration.Seconds())
		log.WithError(err).WithFields(logger.Fields{
			"pages":   fetch.Pages,
			"written": fetch.Writes.Written,
			"cursor":  fetch.From,
		}).Error("sync aborted")
		return res, err
	}

	res.Status = CycleFetched
	observability.RecordCycle(string(p.series), string(res.Status), res.Duration.Seconds())
	log.WithFields(logger.Fields{
		"duration_ms": res.Duration.Milliseconds(),
		"state":       fetch.State,
		"pages":       fetch.Pages,
		"fetched":     fetch.Fetched,
		"written":     fetch.Writes.Written,
		"skipped":     fetch.Writes.Skipped,
		"failed":      fetch.Writes.Failed,
		"retries":     fetch.Retries,
	}).Info("sync finished")
	return res, nil
}
