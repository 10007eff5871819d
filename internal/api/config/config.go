package config

import (
	"time"

	"golang-stock-watchlist/pkg/config"
)

// Server holds api-service specific HTTP settings.
type Server struct {
	BasePath        string        `mapstructure:"base_path"`
	RequestTimeout  time.Duration `mapstructure:"request_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
	AllowedOrigins  []string      `mapstructure:"allowed_origins"`
}

// Auth holds session and ingest key settings.
type Auth struct {
	SessionCookie string `mapstructure:"session_cookie"`
	IngestAPIKey  string `mapstructure:"ingest_api_key"`
}

// Sync holds the settings of the watchlist filter synchronizer.
type Sync struct {
	ReconcilePendingTTL time.Duration `mapstructure:"reconcile_pending_ttl"`
}

// Alert holds the sentiment alert settings.
type Alert struct {
	PublishTimeout time.Duration `mapstructure:"publish_timeout"`
}

// Config holds the full configuration for the api service.
type Config struct {
	App      config.App      `mapstructure:"app"`
	Logger   config.Logger   `mapstructure:"logger"`
	Database config.Database `mapstructure:"database"`
	Redis    config.Redis    `mapstructure:"redis"`
	API      config.API      `mapstructure:"api"`
	AWS      config.AWS      `mapstructure:"aws"`
	Telegram config.Telegram `mapstructure:"telegram"`
	Server   Server          `mapstructure:"server"`
	Auth     Auth            `mapstructure:"auth"`
	Sync     Sync            `mapstructure:"sync"`
	Alert    Alert           `mapstructure:"alert"`
}

// Load loads the api configuration from the given path.
func Load(path string) (*Config, error) {
	var cfg Config
	if err := config.Load(path, &cfg); err != nil {
		return nil, err
	}
	if cfg.Server.BasePath == "" {
		cfg.Server.BasePath = "/api"
	}
	if cfg.Server.ShutdownTimeout <= 0 {
		cfg.Server.ShutdownTimeout = 10 * time.Second
	}
	if cfg.Auth.SessionCookie == "" {
		cfg.Auth.SessionCookie = "session_id"
	}
	if cfg.Alert.PublishTimeout <= 0 {
		cfg.Alert.PublishTimeout = 10 * time.Second
	}
	return &cfg, nil
}
