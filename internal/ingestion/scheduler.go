package ingestion

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"midgard-history/internal/logger"
)

// Scheduler runs every job on a fixed tick. Jobs run independently; a tick
// that arrives while the previous cycle of the same job is still running is
// skipped.
type Scheduler struct {
	jobs     []Job
	interval time.Duration
	logger   *logger.Entry
}

// NewScheduler creates a scheduler ticking every interval.
func NewScheduler(jobs []Job, interval time.Duration, log *logger.Entry) *Scheduler {
	if interval <= 0 {
		interval = time.Hour
	}
	if log == nil {
		log = logger.GetLogger().WithComponent("scheduler")
	}
	return &Scheduler{jobs: jobs, interval: interval, logger: log}
}

// Run blocks until ctx is cancelled. The first cycle of each job starts
// immediately. In-flight cycles are waited for before Run returns.
func (s *Scheduler) Run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)
	for _, job := range s.jobs {
		job := job
		g.Go(func() error {
			s.loop(ctx, job)
			return nil
		})
	}
	return g.Wait()
}

func (s *Scheduler) loop(ctx context.Context, job Job) {
	log := s.logger.WithField("series", job.Series())
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	var (
		running atomic.Bool
		wg      sync.WaitGroup
	)
	defer wg.Wait()

	tick := func() {
		if !running.CompareAndSwap(false, true) {
			log.Warn("previous cycle still running, skipping tick")
			return
		}
		wg.Add(1)
		go func() {
			defer wg.Done()
			defer running.Store(false)
			if _, err := job.Sync(ctx, false); err != nil && !errors.Is(err, context.Canceled) {
				log.WithError(err).Error("sync cycle failed")
			}
		}()
	}

	tick()
	for {
		select {
		case <-ctx.Done():
			log.Info("scheduler stopping")
			return
		case <-ticker.C:
			tick()
		}
	}
}

// RunOnce runs a single cycle of every job concurrently and returns the
// results in job order. Errors from individual jobs are joined.
func (s *Scheduler) RunOnce(ctx context.Context, force bool) ([]*SyncResult, error) {
	results := make([]*SyncResult, len(s.jobs))
	errs := make([]error, len(s.jobs))

	var g errgroup.Group
	for i, job := range s.jobs {
		i, job := i, job
		g.Go(func() error {
			results[i], errs[i] = job.Sync(ctx, force)
			return nil
		})
	}
	_ = g.Wait()

	return results, errors.Join(errs...)
}
