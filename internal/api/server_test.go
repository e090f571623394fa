package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"midgard-history/internal/cache"
	"midgard-history/internal/domain"
	"midgard-history/internal/logger"
	"midgard-history/internal/storage"
	"midgard-history/internal/storage/memory"
)

func seededStores(t *testing.T) storage.Stores {
	t.Helper()
	ctx := context.Background()
	stores := memory.NewStores()

	for i := int64(0); i < 48; i++ {
		start := i * 3600
		require.NoError(t, stores.Depth.Insert(ctx, domain.DepthInterval{
			StartTime: start, EndTime: start + 3600, AssetDepth: 10, AssetPrice: float64(i),
		}))
		require.NoError(t, stores.Swaps.Insert(ctx, domain.SwapInterval{
			StartTime: start, EndTime: start + 3600, TotalCount: 2,
		}))
	}

	require.NoError(t, stores.Earnings.Insert(ctx, domain.EarningsInterval{StartTime: 0, EndTime: 3600, Earnings: 10}))
	require.NoError(t, stores.Earnings.Insert(ctx, domain.EarningsInterval{StartTime: 3600, EndTime: 7200, Earnings: 5}))
	_, err := stores.Earnings.InsertPools(ctx, 0, []domain.PoolEarnings{{Pool: "BTC.BTC", Earnings: 10}, {Pool: "ETH.ETH", Earnings: 3}})
	require.NoError(t, err)
	_, err = stores.Earnings.InsertPools(ctx, 3600, []domain.PoolEarnings{{Pool: "BTC.BTC", Earnings: 5}})
	require.NoError(t, err)

	return stores
}

func get(t *testing.T, h http.Handler, target string) (int, map[string]json.RawMessage) {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))

	var body map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body), rec.Body.String())
	return rec.Code, body
}

func TestServer_DepthHistoryPaged(t *testing.T) {
	srv := NewServer(seededStores(t), Options{Logger: logger.Discard()})

	code, body := get(t, srv, "/depth-history?from=3600&to=36000&limit=2&page=2")
	assert.Equal(t, http.StatusOK, code)

	var data []domain.DepthInterval
	require.NoError(t, json.Unmarshal(body["data"], &data))
	require.Len(t, data, 2)
	assert.Equal(t, int64(3*3600), data[0].StartTime)
	assert.Equal(t, int64(4*3600), data[1].StartTime)
}

func TestServer_SwapHistoryDailyDescending(t *testing.T) {
	srv := NewServer(seededStores(t), Options{Logger: logger.Discard()})

	_, body := get(t, srv, "/swap-history?interval=day&order=desc")

	var data []domain.SwapInterval
	require.NoError(t, json.Unmarshal(body["data"], &data))
	require.Len(t, data, 2)
	assert.Equal(t, int64(86400), data[0].StartTime)
	assert.Equal(t, int64(48), data[0].TotalCount)
	assert.Equal(t, int64(0), data[1].StartTime)
}

func TestServer_EarningsMergesPools(t *testing.T) {
	srv := NewServer(seededStores(t), Options{Logger: logger.Discard()})

	_, body := get(t, srv, "/earnings-history?interval=day")
	assert.NotContains(t, body, "data")

	var data []domain.EarningsInterval
	require.NoError(t, json.Unmarshal(body["intervals"], &data))
	require.Len(t, data, 1)
	assert.Equal(t, int64(15), data[0].Earnings)

	got := map[string]int64{}
	for _, p := range data[0].Pools {
		got[p.Pool] = p.Earnings
	}
	assert.Equal(t, map[string]int64{"BTC.BTC": 15, "ETH.ETH": 3}, got)
}

func TestServer_EmptyResultIsArray(t *testing.T) {
	srv := NewServer(seededStores(t), Options{Logger: logger.Discard()})

	_, body := get(t, srv, "/rune-pool-history")
	assert.JSONEq(t, `[]`, string(body["data"]))
}

type brokenDepth struct {
	storage.IntervalStore[domain.DepthInterval]
}

func (brokenDepth) Query(context.Context, storage.TimeRange) ([]domain.DepthInterval, error) {
	return nil, errors.New("database is down")
}

func TestServer_StoreErrorIsReportedInBody(t *testing.T) {
	stores := memory.NewStores()
	stores.Depth = brokenDepth{}
	srv := NewServer(stores, Options{Logger: logger.Discard()})

	code, body := get(t, srv, "/depth-history")
	assert.Equal(t, http.StatusOK, code)
	assert.Contains(t, string(body["error"]), "database is down")
}

func TestServer_ResponsesAreCached(t *testing.T) {
	ctx := context.Background()
	stores := memory.NewStores()
	c := cache.NewMemory()
	srv := NewServer(stores, Options{Cache: c, Logger: logger.Discard()})

	_, first := get(t, srv, "/swap-history")
	assert.JSONEq(t, `[]`, string(first["data"]))

	// A write after the first read is hidden until the entry expires.
	require.NoError(t, stores.Swaps.Insert(ctx, domain.SwapInterval{StartTime: 0, EndTime: 3600}))
	_, second := get(t, srv, "/swap-history")
	assert.JSONEq(t, `[]`, string(second["data"]))

	// Different parameters miss the cache.
	_, third := get(t, srv, "/swap-history?limit=5")
	var data []domain.SwapInterval
	require.NoError(t, json.Unmarshal(third["data"], &data))
	assert.Len(t, data, 1)
}

func TestServer_RejectsNonGet(t *testing.T) {
	srv := NewServer(memory.NewStores(), Options{Logger: logger.Discard()})

	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/depth-history", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestServer_Health(t *testing.T) {
	srv := NewServer(memory.NewStores(), Options{Logger: logger.Discard()})

	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", rec.Body.String())
}
