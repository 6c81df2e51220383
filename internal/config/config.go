// Metroline - Metro Ticketing Client
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/metroline

package config

import "time"

// Session store backends.
const (
	SessionStoreBadger = "badger"
	SessionStoreMemory = "memory"
)

// Config holds all client configuration.
type Config struct {
	API     APIConfig     `koanf:"api"`
	Query   QueryConfig   `koanf:"query"`
	Session SessionConfig `koanf:"session"`
	Authz   AuthzConfig   `koanf:"authz"`
	I18n    I18nConfig    `koanf:"i18n"`
	Proxy   ProxyConfig   `koanf:"proxy"`
	Logging LoggingConfig `koanf:"logging"`
}

// APIConfig groups the two backend origins.
type APIConfig struct {
	Legacy OriginConfig `koanf:"legacy"`
	TS     OriginConfig `koanf:"ts"`
}

// OriginConfig configures one HTTP client adapter instance.
type OriginConfig struct {
	BaseURL            string        `koanf:"base_url"`
	Timeout            time.Duration `koanf:"timeout"`
	ForwardCredentials bool          `koanf:"forward_credentials"`
	UserAgent          string        `koanf:"user_agent"`

	// RateLimit is requests per second; 0 disables the client-side limiter.
	RateLimit float64 `koanf:"rate_limit"`
	RateBurst int     `koanf:"rate_burst"`

	Breaker BreakerConfig `koanf:"breaker"`
}

// BreakerConfig configures the per-origin circuit breaker.
type BreakerConfig struct {
	Enabled      bool          `koanf:"enabled"`
	MaxRequests  uint32        `koanf:"max_requests"`
	Interval     time.Duration `koanf:"interval"`
	Timeout      time.Duration `koanf:"timeout"`
	MinRequests  uint32        `koanf:"min_requests"`
	FailureRatio float64       `koanf:"failure_ratio"`
}

// QueryConfig configures the query cache.
type QueryConfig struct {
	// StaleTime is how long fetched data counts as fresh. Zero means every
	// mount re-fetches (concurrent mounts still share one request).
	StaleTime time.Duration `koanf:"stale_time"`

	// GCTime is how long an entry without observers is retained.
	GCTime time.Duration `koanf:"gc_time"`

	// SweepInterval is how often the supervised sweeper collects entries.
	SweepInterval time.Duration `koanf:"sweep_interval"`

	Retry      int           `koanf:"retry"`
	RetryDelay time.Duration `koanf:"retry_delay"`
}

// SessionConfig configures durable session storage.
type SessionConfig struct {
	Store string `koanf:"store"`
	Path  string `koanf:"path"`
}

// AuthzConfig points at optional casbin model and policy overrides.
// Empty paths use the embedded defaults.
type AuthzConfig struct {
	ModelPath  string `koanf:"model_path"`
	PolicyPath string `koanf:"policy_path"`
}

// I18nConfig configures translation bundles.
type I18nConfig struct {
	DefaultLocale  string `koanf:"default_locale"`
	FallbackLocale string `koanf:"fallback_locale"`
}

// ProxyConfig configures the development /api reverse proxy.
type ProxyConfig struct {
	Enabled     bool     `koanf:"enabled"`
	ListenAddr  string   `koanf:"listen_addr"`
	Target      string   `koanf:"target"`
	CORSOrigins []string `koanf:"cors_origins"`
	RateLimit   int      `koanf:"rate_limit"`
}

// LoggingConfig mirrors logging.Config.
type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
	Caller bool   `koanf:"caller"`
}
