// Package config handles application configuration from environment variables
package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config holds the asset proxy configuration
type Config struct {
	ListenAddr      string            `env:"LISTEN_ADDR" envDefault:":8080"`
	AssetRoot       string            `env:"ASSET_ROOT" envDefault:"assets"`
	CacheDir        string            `env:"CACHE_DIR"`
	CacheNamespace  string            `env:"CACHE_NAMESPACE" envDefault:"webasset"`
	DisableCache    bool              `env:"DISABLE_CACHE" envDefault:"false"`
	WatchAssets     bool              `env:"WATCH_ASSETS" envDefault:"false"`
	UpstreamTimeout time.Duration     `env:"UPSTREAM_TIMEOUT" envDefault:"30s"`
	RequestHeaders  map[string]string `env:"REQUEST_HEADERS"`
	LogLevel        string            `env:"LOG_LEVEL" envDefault:"info"`
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse environment: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate ensures the configuration is usable
func (c *Config) Validate() error {
	if c.ListenAddr == "" {
		return fmt.Errorf("LISTEN_ADDR must not be empty")
	}
	if c.AssetRoot == "" {
		return fmt.Errorf("ASSET_ROOT must not be empty")
	}
	if c.UpstreamTimeout <= 0 {
		return fmt.Errorf("UPSTREAM_TIMEOUT must be positive, got %s", c.UpstreamTimeout)
	}
	return nil
}
