// Package ingestion keeps the local history tables in sync with the upstream
// Midgard endpoints: resume from the stored boundary, page forward, persist.
package ingestion

import (
	"context"
	"errors"
	"fmt"
	"time"

	"midgard-history/internal/domain"
	"midgard-history/internal/logger"
	"midgard-history/internal/midgard"
	"midgard-history/internal/observability"
)

// Fetch defaults.
const (
	DefaultPageSize = 400
	DefaultBackoff  = 5 * time.Second
)

// ErrFetchAborted marks a run stopped by a non-retryable upstream error or a
// page that did not advance the cursor.
var ErrFetchAborted = errors.New("fetch aborted")

// PageSource returns up to count intervals starting at from, ascending.
type PageSource[T any] interface {
	Series() domain.Series
	FetchPage(ctx context.Context, from int64, count int) ([]T, error)
}

// Persister stores one page of records.
type Persister[T any] interface {
	Persist(ctx context.Context, records []T) WriteResult
}

// FetchState describes how a run ended.
type FetchState string

const (
	StateExhausted FetchState = "exhausted"
	StateCaughtUp  FetchState = "caught_up"
	StateAborted   FetchState = "aborted"
)

// FetcherOptions configures Fetcher.
type FetcherOptions struct {
	PageSize int
	Backoff  time.Duration

	// Now and Sleep are replaced in tests.
	Now   func() time.Time
	Sleep func(ctx context.Context, d time.Duration) error

	// Retryable decides whether an upstream error is waited out.
	Retryable func(error) bool

	Logger *logger.Entry
}

// FetchResult summarizes one run.
type FetchResult struct {
	Pages   int
	Fetched int
	Writes  WriteResult
	From    int64 // cursor after the last persisted page
	State   FetchState
	Retries int
}

// Fetcher pages one series forward from a start timestamp.
type Fetcher[T domain.Interval[T]] struct {
	source    PageSource[T]
	sink      Persister[T]
	pageSize  int
	backoff   time.Duration
	now       func() time.Time
	sleep     func(ctx context.Context, d time.Duration) error
	retryable func(error) bool
	logger    *logger.Entry
}

// NewFetcher creates a fetcher reading from source and writing to sink.
func NewFetcher[T domain.Interval[T]](source PageSource[T], sink Persister[T], opts FetcherOptions) *Fetcher[T] {
	pageSize := opts.PageSize
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	backoff := opts.Backoff
	if backoff <= 0 {
		backoff = DefaultBackoff
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	sleep := opts.Sleep
	if sleep == nil {
		sleep = sleepCtx
	}
	retryable := opts.Retryable
	if retryable == nil {
		retryable = midgard.IsRetryable
	}
	log := opts.Logger
	if log == nil {
		log = logger.GetLogger().WithComponent("fetcher")
	}

	return &Fetcher[T]{
		source:    source,
		sink:      sink,
		pageSize:  pageSize,
		backoff:   backoff,
		now:       now,
		sleep:     sleep,
		retryable: retryable,
		logger:    log.WithField("series", source.Series()),
	}
}

// Run fetches and persists pages starting at from until the upstream returns
// an empty page or the cursor reaches the wall clock captured at start.
// Each page is persisted before the next request. Retryable errors are
// waited out on the same cursor until ctx is cancelled.
func (f *Fetcher[T]) Run(ctx context.Context, from int64) (*FetchResult, error) {
	series := string(f.source.Series())
	now := f.now().Unix()
	res := &FetchResult{From: from}

	for {
		if err := ctx.Err(); err != nil {
			res.State = StateAborted
			return res, err
		}

		page, err := f.source.FetchPage(ctx, from, f.pageSize)
		if err != nil {
			if ctx.Err() != nil {
				res.State = StateAborted
				return res, ctx.Err()
			}
			if !f.retryable(err) {
				res.State = StateAborted
				return res, fmt.Errorf("%w: from=%d: %v", ErrFetchAborted, from, err)
			}

			reason := "transport"
			if errors.Is(err, midgard.ErrRateLimited) {
				reason = "rate_limited"
			}
			res.Retries++
			observability.RecordRetry(series, reason)
			f.logger.WithError(err).WithFields(logger.Fields{
				"from":    from,
				"backoff": f.backoff.String(),
			}).Warn("upstream unavailable, backing off")

			if err := f.sleep(ctx, f.backoff); err != nil {
				res.State = StateAborted
				return res, err
			}
			continue
		}

		if len(page) == 0 {
			res.State = StateExhausted
			return res, nil
		}

		res.Pages++
		res.Fetched += len(page)
		observability.RecordPage(series)
		res.Writes.add(f.sink.Persist(ctx, page))

		next := page[len(page)-1].End() + 1
		if next <= from {
			res.State = StateAborted
			return res, fmt.Errorf("%w: cursor did not advance past %d", ErrFetchAborted, from)
		}
		from = next
		res.From = from

		f.logger.WithFields(logger.Fields{
			"records": len(page),
			"next":    from,
		}).Debug("page persisted")

		if from >= now {
			res.State = StateCaughtUp
			return res, nil
		}
	}
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
