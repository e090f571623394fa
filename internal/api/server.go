// Package api exposes the stored history over HTTP.
package api

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"midgard-history/internal/cache"
	"midgard-history/internal/domain"
	"midgard-history/internal/logger"
	"midgard-history/internal/observability"
	"midgard-history/internal/query"
	"midgard-history/internal/storage"
)

// Options configures Server.
type Options struct {
	// DefaultLimit is the page size when the request has none.
	DefaultLimit int
	// Cache is optional. Nil disables response caching.
	Cache    cache.Cache
	CacheTTL time.Duration
	Logger   *logger.Entry
}

// Server routes history queries to one query service per series.
type Server struct {
	mux          *http.ServeMux
	cache        cache.Cache
	cacheTTL     time.Duration
	defaultLimit int
	logger       *logger.Entry
}

// NewServer registers the four history routes and /health.
func NewServer(stores storage.Stores, opts Options) *Server {
	log := opts.Logger
	if log == nil {
		log = logger.GetLogger().WithComponent("api")
	}
	ttl := opts.CacheTTL
	if ttl <= 0 {
		ttl = cache.DefaultTTL
	}
	limit := opts.DefaultLimit
	if limit <= 0 {
		limit = query.DefaultLimit
	}

	s := &Server{
		mux:          http.NewServeMux(),
		cache:        opts.Cache,
		cacheTTL:     ttl,
		defaultLimit: limit,
		logger:       log,
	}

	handle(s, query.NewService[domain.DepthInterval](domain.SeriesDepth, stores.Depth))
	handle(s, query.NewService[domain.RunePoolInterval](domain.SeriesRunePool, stores.RunePool))
	handle(s, query.NewService[domain.SwapInterval](domain.SeriesSwaps, stores.Swaps))
	handle(s, query.NewService[domain.EarningsInterval](domain.SeriesEarnings, stores.Earnings))

	s.mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

// ListenAndServe serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.WithField("addr", addr).Info("query API listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func handle[T domain.Interval[T]](s *Server, svc *query.Service[T]) {
	series := svc.Series()
	key := series.ResponseKey()
	log := s.logger.WithField("series", series)

	s.mux.HandleFunc(series.Route(), func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
			return
		}

		start := time.Now()
		params := query.ParseParams(r.URL.Query(), s.defaultLimit)
		cacheKey := string(series) + "?" + params.Key()

		if body, ok := s.cached(r.Context(), cacheKey); ok {
			observability.RecordQuery(string(series), "cached", time.Since(start).Seconds())
			writeRaw(w, http.StatusOK, body)
			return
		}

		records, err := svc.Query(r.Context(), params)
		if err != nil {
			log.WithError(err).Error("history query failed")
			observability.RecordQuery(string(series), "error", time.Since(start).Seconds())
			// Failures are reported in the body; the status stays 200.
			writeJSON(w, http.StatusOK, map[string]string{"error": err.Error()})
			return
		}

		body, err := json.Marshal(map[string][]T{key: records})
		if err != nil {
			log.WithError(err).Error("encode response failed")
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "encode response"})
			return
		}

		s.store(r.Context(), cacheKey, body)
		observability.RecordQuery(string(series), "ok", time.Since(start).Seconds())
		logger.LogDuration(log, "history query", time.Since(start), logger.Fields{
			"records":  len(records),
			"interval": params.Interval,
		})
		writeRaw(w, http.StatusOK, body)
	})
}

func (s *Server) cached(ctx context.Context, key string) ([]byte, bool) {
	if s.cache == nil {
		return nil, false
	}
	body, ok, err := s.cache.Get(ctx, key)
	if err != nil {
		s.logger.WithError(err).Warn("cache read failed")
		return nil, false
	}
	observability.RecordCache(ok)
	return body, ok
}

func (s *Server) store(ctx context.Context, key string, body []byte) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Set(ctx, key, body, s.cacheTTL); err != nil {
		s.logger.WithError(err).Warn("cache write failed")
	}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	body, err := json.Marshal(v)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeRaw(w, status, body)
}

func writeRaw(w http.ResponseWriter, status int, body []byte) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(body)
}
