// Package config loads server configuration from the environment.
package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config is the process configuration. Values come from the environment,
// optionally seeded from a .env file by main.
type Config struct {
	ListenAddr  string `env:"LISTEN_ADDR" envDefault:":8080"`
	DatabaseDSN string `env:"DATABASE_DSN,required,notEmpty"`
	Debug       bool   `env:"DEBUG"`

	// RedisURL enables the task-list read cache when set.
	RedisURL string        `env:"REDIS_URL"`
	CacheTTL time.Duration `env:"CACHE_TTL" envDefault:"30s"`

	// KeepaliveInterval paces the SSE comment frames that keep intermediary
	// proxies from dropping idle connections.
	KeepaliveInterval time.Duration `env:"STREAM_KEEPALIVE" envDefault:"30s"`

	MessagePageSize int `env:"MESSAGE_PAGE_SIZE" envDefault:"50"`
	MessagePageMax  int `env:"MESSAGE_PAGE_MAX" envDefault:"100"`

	// JWKS-backed auth, or a shared HS256 secret for local/test runs.
	AuthDomain     string `env:"AUTH_DOMAIN"`
	AuthAudience   string `env:"AUTH_AUDIENCE"`
	AuthTestSecret string `env:"AUTH_TEST_SECRET"`
}

// Load parses and validates the configuration.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, err
	}
	if cfg.MessagePageSize <= 0 {
		return Config{}, fmt.Errorf("MESSAGE_PAGE_SIZE must be greater than zero")
	}
	if cfg.MessagePageMax < cfg.MessagePageSize {
		return Config{}, fmt.Errorf("MESSAGE_PAGE_MAX must be at least MESSAGE_PAGE_SIZE")
	}
	if cfg.KeepaliveInterval <= 0 {
		return Config{}, fmt.Errorf("STREAM_KEEPALIVE must be positive")
	}
	if cfg.AuthTestSecret == "" && (cfg.AuthDomain == "" || cfg.AuthAudience == "") {
		return Config{}, fmt.Errorf("either AUTH_TEST_SECRET or AUTH_DOMAIN and AUTH_AUDIENCE must be set")
	}
	return cfg, nil
}
