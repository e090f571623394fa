// Package orchestrator assembles stores, the upstream client and one
// ingestion pipeline per series from configuration.
package orchestrator

import (
	"context"
	"fmt"
	"strings"

	"midgard-history/internal/config"
	"midgard-history/internal/domain"
	"midgard-history/internal/ingestion"
	"midgard-history/internal/logger"
	"midgard-history/internal/midgard"
	"midgard-history/internal/storage"
	chstore "midgard-history/internal/storage/clickhouse"
	"midgard-history/internal/storage/memory"
	"midgard-history/internal/storage/migrations"
	pgstore "midgard-history/internal/storage/postgres"
)

// OpenStores connects the configured driver, applies migrations and returns
// the stores with a cleanup func.
func OpenStores(ctx context.Context, cfg config.StorageConfig) (storage.Stores, func(), error) {
	switch cfg.Driver {
	case "memory":
		return memory.NewStores(), func() {}, nil

	case "postgres":
		pool, err := pgstore.NewPool(ctx, cfg.PostgresDSN, 0)
		if err != nil {
			return storage.Stores{}, nil, err
		}
		if _, err := migrations.RunPostgresMigrations(ctx, pool); err != nil {
			pool.Close()
			return storage.Stores{}, nil, fmt.Errorf("postgres migrations: %w", err)
		}
		stores := storage.Stores{
			Depth:    pgstore.NewDepthStore(pool),
			RunePool: pgstore.NewRunePoolStore(pool),
			Swaps:    pgstore.NewSwapStore(pool),
			Earnings: pgstore.NewEarningsStore(pool),
		}
		return stores, pool.Close, nil

	case "clickhouse":
		conn, err := migrations.RunClickhouseMigrations(ctx, cfg.ClickhouseDSN)
		if err != nil {
			return storage.Stores{}, nil, fmt.Errorf("clickhouse migrations: %w", err)
		}
		stores := storage.Stores{
			Depth:    chstore.NewDepthStore(conn),
			RunePool: chstore.NewRunePoolStore(conn),
			Swaps:    chstore.NewSwapStore(conn),
			Earnings: chstore.NewEarningsStore(conn),
		}
		return stores, func() { conn.Close() }, nil

	default:
		return storage.Stores{}, nil, fmt.Errorf("unknown storage driver %q", cfg.Driver)
	}
}

// NewClient builds the upstream client from configuration.
func NewClient(cfg config.UpstreamConfig) *midgard.Client {
	opts := []midgard.ClientOption{
		midgard.WithDepthPool(cfg.DepthPool),
		midgard.WithRateLimit(cfg.RequestsPerSecond),
	}
	if cfg.Timeout > 0 {
		opts = append(opts, midgard.WithTimeout(cfg.Timeout))
	}
	if cfg.UserAgent != "" {
		opts = append(opts, midgard.WithUserAgent(cfg.UserAgent))
	}
	return midgard.NewClient(cfg.BaseURL, opts...)
}

// Orchestrator holds one ingestion job per series.
type Orchestrator struct {
	cfg    *config.Config
	jobs   map[domain.Series]ingestion.Job
	logger *logger.Entry
}

// Options for creating Orchestrator.
type Options struct {
	Config *config.Config
	Stores storage.Stores
	Client *midgard.Client

	// Fetcher overrides the fetch options derived from Config. Used by tests.
	Fetcher *ingestion.FetcherOptions
	Logger  *logger.Entry
}

// New wires a pipeline for every series.
func New(opts Options) *Orchestrator {
	log := opts.Logger
	if log == nil {
		log = logger.GetLogger().WithComponent("orchestrator")
	}
	cfg := opts.Config
	hook := midgard.DefaultMalformedHook

	fetch := ingestion.FetcherOptions{
		PageSize: cfg.Ingestion.PageSize,
		Backoff:  cfg.Ingestion.RateLimitBackoff,
	}
	if opts.Fetcher != nil {
		fetch = *opts.Fetcher
	}
	pipelineOpts := func(s domain.Series) ingestion.PipelineOptions {
		return ingestion.PipelineOptions{
			Staleness: cfg.Ingestion.StalenessThreshold,
			StartTime: cfg.StartTime(s),
			Fetcher:   fetch,
			Logger:    log.WithComponent("ingestion"),
		}
	}

	st := opts.Stores
	c := opts.Client
	jobs := map[domain.Series]ingestion.Job{
		domain.SeriesDepth: ingestion.NewPipeline[domain.DepthInterval](
			c.DepthSource(hook), st.Depth,
			ingestion.NewWriter[domain.DepthInterval](domain.SeriesDepth, st.Depth, log),
			pipelineOpts(domain.SeriesDepth)),
		domain.SeriesRunePool: ingestion.NewPipeline[domain.RunePoolInterval](
			c.RunePoolSource(hook), st.RunePool,
			ingestion.NewWriter[domain.RunePoolInterval](domain.SeriesRunePool, st.RunePool, log),
			pipelineOpts(domain.SeriesRunePool)),
		domain.SeriesSwaps: ingestion.NewPipeline[domain.SwapInterval](
			c.SwapSource(hook), st.Swaps,
			ingestion.NewWriter[domain.SwapInterval](domain.SeriesSwaps, st.Swaps, log),
			pipelineOpts(domain.SeriesSwaps)),
		domain.SeriesEarnings: ingestion.NewPipeline[domain.EarningsInterval](
			c.EarningsSource(hook), st.Earnings,
			ingestion.NewEarningsWriter(st.Earnings, log),
			pipelineOpts(domain.SeriesEarnings)),
	}

	return &Orchestrator{cfg: cfg, jobs: jobs, logger: log}
}

// Jobs returns the jobs for the given series in scheduling order. No
// series means all of them.
func (o *Orchestrator) Jobs(series ...domain.Series) []ingestion.Job {
	if len(series) == 0 {
		series = domain.AllSeries
	}
	out := make([]ingestion.Job, 0, len(series))
	for _, s := range domain.AllSeries {
		for _, want := range series {
			if s == want {
				out = append(out, o.jobs[s])
				break
			}
		}
	}
	return out
}

// Scheduler returns a scheduler over the selected series on the configured tick.
func (o *Orchestrator) Scheduler(series ...domain.Series) *ingestion.Scheduler {
	return ingestion.NewScheduler(o.Jobs(series...), o.cfg.Ingestion.TickInterval, o.logger.WithComponent("scheduler"))
}

// ParseSeriesList parses a comma-separated list of series names. Empty
// input selects every series.
func ParseSeriesList(s string) ([]domain.Series, error) {
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}
	var out []domain.Series
	for _, name := range strings.Split(s, ",") {
		series, err := domain.ParseSeries(strings.TrimSpace(name))
		if err != nil {
			return nil, err
		}
		out = append(out, series)
	}
	return out, nil
}
