package config

import (
	"time"

	"golang-stock-watchlist/pkg/config"
)

// Syncer holds sync-service specific configuration.
type Syncer struct {
	// Sweep
	ReconcileCron     string        `mapstructure:"reconcile_cron"`
	ReconcileLookback time.Duration `mapstructure:"reconcile_lookback"`
	ReconcileTimeout  time.Duration `mapstructure:"reconcile_timeout"`
	AutoSubscribe     bool          `mapstructure:"auto_subscribe"`

	// Reconcile stream
	StreamTimeout         time.Duration `mapstructure:"stream_timeout"`
	StreamBlock           time.Duration `mapstructure:"stream_block"`
	StreamRetryInterval   time.Duration `mapstructure:"stream_retry_interval"`
	StreamMaxIdleDuration time.Duration `mapstructure:"stream_max_idle_duration"`
	StreamMaxRetry        int           `mapstructure:"stream_max_retry"`
	PendingTTL            time.Duration `mapstructure:"pending_ttl"`
}

// Config holds the full configuration for the sync service.
type Config struct {
	App      config.App      `mapstructure:"app"`
	Logger   config.Logger   `mapstructure:"logger"`
	Database config.Database `mapstructure:"database"`
	Redis    config.Redis    `mapstructure:"redis"`
	API      config.API      `mapstructure:"api"`
	AWS      config.AWS      `mapstructure:"aws"`
	Telegram config.Telegram `mapstructure:"telegram"`
	Syncer   Syncer          `mapstructure:"syncer"`
}

// Load loads the sync configuration from the given path.
func Load(path string) (*Config, error) {
	var cfg Config
	if err := config.Load(path, &cfg); err != nil {
		return nil, err
	}
	cfg.Syncer.applyDefaults()
	return &cfg, nil
}

func (s *Syncer) applyDefaults() {
	if s.ReconcileCron == "" {
		s.ReconcileCron = "@every 30m"
	}
	if s.ReconcileLookback <= 0 {
		s.ReconcileLookback = 24 * time.Hour
	}
	if s.ReconcileTimeout <= 0 {
		s.ReconcileTimeout = 15 * time.Second
	}
	if s.StreamTimeout <= 0 {
		s.StreamTimeout = 30 * time.Second
	}
	if s.StreamBlock <= 0 {
		s.StreamBlock = 2 * time.Second
	}
	if s.StreamRetryInterval <= 0 {
		s.StreamRetryInterval = time.Minute
	}
	if s.StreamMaxIdleDuration <= 0 {
		s.StreamMaxIdleDuration = 5 * time.Minute
	}
	if s.StreamMaxRetry <= 0 {
		s.StreamMaxRetry = 5
	}
	if s.PendingTTL <= 0 {
		s.PendingTTL = time.Hour
	}
}
