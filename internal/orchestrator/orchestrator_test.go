package orchestrator

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"midgard-history/internal/config"
	"midgard-history/internal/domain"
	"midgard-history/internal/ingestion"
	"midgard-history/internal/logger"
	"midgard-history/internal/midgard"
	"midgard-history/internal/storage"
	"midgard-history/internal/storage/memory"
)

const upstreamPage = `{"intervals":[
	{"startTime":"1000","endTime":"4600","assetDepth":"1","runeDepth":"2","count":"3","units":"4",
	 "totalCount":"5","earnings":"6","avgNodeCount":"7.5",
	 "pools":[{"pool":"BTC.BTC","earnings":"6","rewards":"1"}]},
	{"startTime":"4600","endTime":"8200","assetDepth":"1","runeDepth":"2","count":"3","units":"4",
	 "totalCount":"5","earnings":"6","avgNodeCount":"7.5",
	 "pools":[{"pool":"BTC.BTC","earnings":"6"},{"pool":"ETH.ETH","earnings":"1"}]}
],"meta":{}}`

// fakeMidgard serves one page per endpoint when from is the configured
// start, and empty pages afterwards.
func fakeMidgard(t *testing.T) (*httptest.Server, *sync.Map) {
	t.Helper()
	var hits sync.Map
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n, _ := hits.LoadOrStore(r.URL.Path, new(int))
		*(n.(*int))++

		w.Header().Set("Content-Type", "application/json")
		if r.URL.Query().Get("from") == "1000" {
			w.Write([]byte(upstreamPage))
			return
		}
		w.Write([]byte(`{"intervals":[],"meta":{}}`))
	}))
	t.Cleanup(srv.Close)
	return srv, &hits
}

func testConfig(baseURL string) *config.Config {
	cfg := config.Default()
	cfg.Upstream.BaseURL = baseURL
	cfg.Storage.Driver = "memory"
	for k := range cfg.Ingestion.StartTimes {
		cfg.Ingestion.StartTimes[k] = 1000
	}
	return &cfg
}

func newTestOrchestrator(cfg *config.Config, stores storage.Stores, now int64) *Orchestrator {
	return New(Options{
		Config: cfg,
		Stores: stores,
		Client: NewClient(cfg.Upstream),
		Fetcher: &ingestion.FetcherOptions{
			Now:   func() time.Time { return time.Unix(now, 0) },
			Sleep: func(context.Context, time.Duration) error { return nil },
		},
		Logger: logger.Discard(),
	})
}

func TestOrchestrator_RunOnceSyncsEverySeries(t *testing.T) {
	ctx := context.Background()
	upstream, hits := fakeMidgard(t)
	cfg := testConfig(upstream.URL)
	stores, cleanup, err := OpenStores(ctx, cfg.Storage)
	require.NoError(t, err)
	defer cleanup()

	o := newTestOrchestrator(cfg, stores, 1_000_000)
	results, err := o.Scheduler().RunOnce(ctx, false)
	require.NoError(t, err)
	require.Len(t, results, 4)
	for _, r := range results {
		assert.Equal(t, ingestion.CycleFetched, r.Status, r.Series)
		assert.Equal(t, int64(1000), r.Boundary)
		assert.Equal(t, 2, r.Fetch.Writes.Written, r.Series)
	}

	depth, err := stores.Depth.Query(ctx, storage.TimeRange{})
	require.NoError(t, err)
	require.Len(t, depth, 2)
	assert.Equal(t, int64(1), depth[0].AssetDepth)

	earnings, err := stores.Earnings.Query(ctx, storage.TimeRange{})
	require.NoError(t, err)
	require.Len(t, earnings, 2)
	assert.Equal(t, 7.5, earnings[0].AvgNodeCount)
	assert.Len(t, earnings[1].Pools, 2)

	_, ok := hits.Load("/v2/history/depths/BTC.BTC")
	assert.True(t, ok)

	// The boundary is now 8200; a second cycle at 9000 is fresh.
	again := newTestOrchestrator(cfg, stores, 9000)
	results, err = again.Scheduler().RunOnce(ctx, false)
	require.NoError(t, err)
	for _, r := range results {
		assert.Equal(t, ingestion.CycleSkipped, r.Status)
		assert.Equal(t, int64(8200), r.Boundary)
	}
}

func TestOrchestrator_JobsFiltered(t *testing.T) {
	o := newTestOrchestrator(testConfig("http://127.0.0.1:1"), memory.NewStores(), 0)

	assert.Len(t, o.Jobs(), 4)

	jobs := o.Jobs(domain.SeriesSwaps, domain.SeriesDepth)
	require.Len(t, jobs, 2)
	assert.Equal(t, domain.SeriesDepth, jobs[0].Series())
	assert.Equal(t, domain.SeriesSwaps, jobs[1].Series())
}

func TestParseSeriesList(t *testing.T) {
	got, err := ParseSeriesList(" depth, earnings ")
	require.NoError(t, err)
	assert.Equal(t, []domain.Series{domain.SeriesDepth, domain.SeriesEarnings}, got)

	got, err = ParseSeriesList("")
	require.NoError(t, err)
	assert.Nil(t, got)

	_, err = ParseSeriesList("depth,candles")
	assert.Error(t, err)
}

func TestOpenStores_UnknownDriver(t *testing.T) {
	_, _, err := OpenStores(context.Background(), config.StorageConfig{Driver: "sqlite"})
	assert.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "sqlite"))
}

func TestNewClient_UsesDepthPool(t *testing.T) {
	c := NewClient(config.UpstreamConfig{BaseURL: "http://x", DepthPool: "ETH.ETH"})
	assert.Equal(t, "/v2/history/depths/ETH.ETH", c.Path(domain.SeriesDepth))
	assert.IsType(t, &midgard.Client{}, c)
}
