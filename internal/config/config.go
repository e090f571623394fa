// Package config loads service configuration from YAML with environment overrides.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"midgard-history/internal/domain"
)

// DefaultStartTime is the first hour ingested for a series with no stored data.
const DefaultStartTime int64 = 1647910800

type Config struct {
	Service   ServiceConfig   `yaml:"service"`
	Upstream  UpstreamConfig  `yaml:"upstream"`
	Ingestion IngestionConfig `yaml:"ingestion"`
	Storage   StorageConfig   `yaml:"storage"`
	Server    ServerConfig    `yaml:"server"`
	Cache     CacheConfig     `yaml:"cache"`
	Logging   LoggingConfig   `yaml:"logging"`
}

type ServiceConfig struct {
	Name    string `yaml:"name"`
	Version string `yaml:"version"`
}

type UpstreamConfig struct {
	BaseURL           string        `yaml:"base_url"`
	DepthPool         string        `yaml:"depth_pool"`
	Timeout           time.Duration `yaml:"timeout"`
	RequestsPerSecond float64       `yaml:"requests_per_second"`
	UserAgent         string        `yaml:"user_agent"`
}

type IngestionConfig struct {
	TickInterval       time.Duration `yaml:"tick_interval"`
	StalenessThreshold time.Duration `yaml:"staleness_threshold"`
	RateLimitBackoff   time.Duration `yaml:"rate_limit_backoff"`
	PageSize           int           `yaml:"page_size"`
	// StartTimes holds the per-series fallback checkpoint, keyed by series name.
	StartTimes map[string]int64 `yaml:"start_times"`
}

type StorageConfig struct {
	Driver        string `yaml:"driver"`
	PostgresDSN   string `yaml:"postgres_dsn"`
	ClickhouseDSN string `yaml:"clickhouse_dsn"`
}

type ServerConfig struct {
	Addr         string `yaml:"addr"`
	MetricsAddr  string `yaml:"metrics_addr"`
	DefaultLimit int    `yaml:"default_limit"`
}

type CacheConfig struct {
	Driver    string        `yaml:"driver"`
	RedisAddr string        `yaml:"redis_addr"`
	RedisDB   int           `yaml:"redis_db"`
	TTL       time.Duration `yaml:"ttl"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Output string `yaml:"output"`
	MaxAge int    `yaml:"max_age"`
}

// Default returns the configuration used when no file is present.
func Default() Config {
	starts := make(map[string]int64, len(domain.AllSeries))
	for _, s := range domain.AllSeries {
		starts[string(s)] = DefaultStartTime
	}

	return Config{
		Service: ServiceConfig{Name: "midgard-history", Version: "dev"},
		Upstream: UpstreamConfig{
			BaseURL:   "https://midgard.ninerealms.com",
			DepthPool: "BTC.BTC",
			Timeout:   30 * time.Second,
			UserAgent: "midgard-history",
		},
		Ingestion: IngestionConfig{
			TickInterval:       time.Hour,
			StalenessThreshold: time.Hour,
			RateLimitBackoff:   5 * time.Second,
			PageSize:           400,
			StartTimes:         starts,
		},
		Storage: StorageConfig{Driver: "postgres"},
		Server: ServerConfig{
			Addr:         ":8080",
			MetricsAddr:  ":9090",
			DefaultLimit: 400,
		},
		Cache:   CacheConfig{Driver: "none", TTL: time.Minute},
		Logging: LoggingConfig{Level: "info", Format: "json", Output: "stdout"},
	}
}

// Load reads path on top of the defaults, applies environment overrides and validates.
// A missing file is not an error.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return nil, fmt.Errorf("failed to parse config file: %w", err)
			}
		case errors.Is(err, os.ErrNotExist):
		default:
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	applyEnv(&cfg)

	// Series left out of start_times keep the default floor.
	for _, s := range domain.AllSeries {
		if _, ok := cfg.Ingestion.StartTimes[string(s)]; !ok {
			if cfg.Ingestion.StartTimes == nil {
				cfg.Ingestion.StartTimes = make(map[string]int64)
			}
			cfg.Ingestion.StartTimes[string(s)] = DefaultStartTime
		}
	}

	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return &cfg, nil
}

func applyEnv(cfg *Config) {
	if v := firstEnv("DATABASE_URL", "POSTGRES_DSN"); v != "" {
		cfg.Storage.PostgresDSN = v
	}
	if v := firstEnv("CLICKHOUSE_DSN"); v != "" {
		cfg.Storage.ClickhouseDSN = v
	}
	if v := firstEnv("STORAGE_DRIVER"); v != "" {
		cfg.Storage.Driver = v
	}
	if v := firstEnv("MIDGARD_BASE_URL"); v != "" {
		cfg.Upstream.BaseURL = v
	}
	if v := firstEnv("REDIS_ADDR"); v != "" {
		cfg.Cache.RedisAddr = v
		if cfg.Cache.Driver == "none" || cfg.Cache.Driver == "" {
			cfg.Cache.Driver = "redis"
		}
	}
	if v := firstEnv("HTTP_ADDR"); v != "" {
		cfg.Server.Addr = v
	}
	if v := firstEnv("LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
}

func firstEnv(keys ...string) string {
	for _, k := range keys {
		if v := strings.TrimSpace(os.Getenv(k)); v != "" {
			return v
		}
	}
	return ""
}

func validate(cfg *Config) error {
	if cfg.Upstream.BaseURL == "" {
		return fmt.Errorf("upstream.base_url is required")
	}
	if cfg.Ingestion.TickInterval <= 0 {
		return fmt.Errorf("ingestion.tick_interval must be greater than 0")
	}
	if cfg.Ingestion.StalenessThreshold < 0 {
		return fmt.Errorf("ingestion.staleness_threshold must not be negative")
	}
	if cfg.Ingestion.RateLimitBackoff <= 0 {
		return fmt.Errorf("ingestion.rate_limit_backoff must be greater than 0")
	}
	if cfg.Ingestion.PageSize <= 0 {
		return fmt.Errorf("ingestion.page_size must be greater than 0")
	}
	for name := range cfg.Ingestion.StartTimes {
		if _, err := domain.ParseSeries(name); err != nil {
			return fmt.Errorf("ingestion.start_times: %w", err)
		}
	}
	if cfg.Server.DefaultLimit <= 0 {
		return fmt.Errorf("server.default_limit must be greater than 0")
	}

	switch cfg.Storage.Driver {
	case "postgres":
		if cfg.Storage.PostgresDSN == "" {
			return fmt.Errorf("storage.postgres_dsn is required for the postgres driver")
		}
	case "clickhouse":
		if cfg.Storage.ClickhouseDSN == "" {
			return fmt.Errorf("storage.clickhouse_dsn is required for the clickhouse driver")
		}
	case "memory":
	default:
		return fmt.Errorf("unknown storage.driver %q", cfg.Storage.Driver)
	}

	switch cfg.Cache.Driver {
	case "none", "", "memory":
	case "redis":
		if cfg.Cache.RedisAddr == "" {
			return fmt.Errorf("cache.redis_addr is required for the redis cache")
		}
	default:
		return fmt.Errorf("unknown cache.driver %q", cfg.Cache.Driver)
	}

	return nil
}

// StartTime returns the fallback checkpoint for a series.
func (c *Config) StartTime(s domain.Series) int64 {
	if v, ok := c.Ingestion.StartTimes[string(s)]; ok {
		return v
	}
	return DefaultStartTime
}
