// Package main runs the history service: hourly ingestion of every series
// plus the query API and the metrics endpoint.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"midgard-history/internal/api"
	"midgard-history/internal/cache"
	"midgard-history/internal/config"
	"midgard-history/internal/logger"
	"midgard-history/internal/observability"
	"midgard-history/internal/orchestrator"
)

var (
	configPath string
	noIngest   bool
)

var rootCmd = &cobra.Command{
	Use:   "midgard-history",
	Short: "Mirror Midgard history into a local store and serve it",
	Long: `Keeps depth, RUNEPool, swap and earnings history in sync with a Midgard
instance on an hourly schedule and serves it with optional time bucketing.`,
	SilenceUsage: true,
	RunE:         run,
}

func init() {
	rootCmd.Flags().StringVarP(&configPath, "config", "c", "config/config.yml", "Path to configuration file")
	rootCmd.Flags().BoolVar(&noIngest, "no-ingest", false, "Serve queries only, without running the scheduler")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, args []string) error {
	log := logger.GetLogger()

	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.WithError(err).Warn("Error loading .env file")
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		log.WithError(err).Error("Failed to load configuration")
		return err
	}
	if err := log.Configure(cfg.Logging.Level, cfg.Logging.Format, cfg.Logging.Output, cfg.Logging.MaxAge); err != nil {
		log.WithError(err).Error("Failed to configure logger")
		return err
	}
	log.WithFields(logger.Fields{
		"service": cfg.Service.Name,
		"version": cfg.Service.Version,
		"storage": cfg.Storage.Driver,
	}).Info("starting midgard-history")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	stores, closeStores, err := orchestrator.OpenStores(ctx, cfg.Storage)
	if err != nil {
		log.WithError(err).Error("Failed to open stores")
		return err
	}
	defer closeStores()

	respCache, err := cache.New(cfg.Cache.Driver, cfg.Cache.RedisAddr, cfg.Cache.RedisDB)
	if err != nil {
		log.WithError(err).Error("Failed to create cache")
		return err
	}
	if respCache != nil {
		defer respCache.Close()
	}

	done := make(chan struct{})
	defer close(done)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		var sig os.Signal
		select {
		case sig = <-sigCh:
		case <-done:
			return
		}
		log.WithField("signal", sig.String()).Info("initiating graceful shutdown")
		cancel()

		// Wait for second signal for immediate shutdown
		select {
		case sig := <-sigCh:
			log.WithField("signal", sig.String()).Warn("second signal received, forcing exit")
			os.Exit(1)
		case <-time.After(30 * time.Second):
			log.Error("graceful shutdown timed out after 30s, forcing exit")
			os.Exit(1)
		case <-done:
		}
	}()

	server := api.NewServer(stores, api.Options{
		DefaultLimit: cfg.Server.DefaultLimit,
		Cache:        respCache,
		CacheTTL:     cfg.Cache.TTL,
		Logger:       log.WithComponent("api"),
	})

	g, gctx := errgroup.WithContext(ctx)

	if !noIngest {
		orch := orchestrator.New(orchestrator.Options{
			Config: cfg,
			Stores: stores,
			Client: orchestrator.NewClient(cfg.Upstream),
			Logger: log.WithComponent("orchestrator"),
		})
		g.Go(func() error {
			return orch.Scheduler().Run(gctx)
		})
	}

	g.Go(func() error {
		return server.ListenAndServe(gctx, cfg.Server.Addr)
	})

	if cfg.Server.MetricsAddr != "" {
		g.Go(func() error {
			return serveMetrics(gctx, cfg.Server.MetricsAddr, log.WithComponent("metrics"))
		})
	}

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		log.WithError(err).Error("server stopped with error")
		return err
	}

	log.Info("shutdown complete")
	return nil
}

func serveMetrics(ctx context.Context, addr string, log *logger.Entry) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", observability.Handler())
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 10 * time.Second}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		srv.Shutdown(shutdownCtx)
	}()

	log.WithField("addr", addr).Info("metrics server listening")
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}
