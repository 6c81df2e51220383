// Metroline - Metro Ticketing Client
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/metroline

package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// DefaultConfigPaths lists the paths searched for a config file, in order.
var DefaultConfigPaths = []string{
	"metroline.yaml",
	"metroline.yml",
	"config.yaml",
}

// ConfigPathEnvVar overrides the config file path.
const ConfigPathEnvVar = "CONFIG_PATH"

// DefaultTimeout is the per-request timeout of both backend origins.
const DefaultTimeout = 10 * time.Second

func defaultBreaker() BreakerConfig {
	return BreakerConfig{
		Enabled:      true,
		MaxRequests:  3,
		Interval:     time.Minute,
		Timeout:      30 * time.Second,
		MinRequests:  10,
		FailureRatio: 0.6,
	}
}

func defaultConfig() *Config {
	return &Config{
		API: APIConfig{
			Legacy: OriginConfig{
				BaseURL:            "http://localhost:8080/api",
				Timeout:            DefaultTimeout,
				ForwardCredentials: true,
				UserAgent:          "metroline/1.0",
				Breaker:            defaultBreaker(),
			},
			TS: OriginConfig{
				BaseURL:            "http://localhost:8081/api",
				Timeout:            DefaultTimeout,
				ForwardCredentials: false,
				UserAgent:          "metroline/1.0",
				Breaker:            defaultBreaker(),
			},
		},
		Query: QueryConfig{
			StaleTime:     0,
			GCTime:        5 * time.Minute,
			SweepInterval: time.Minute,
			Retry:         0,
			RetryDelay:    time.Second,
		},
		Session: SessionConfig{
			Store: SessionStoreBadger,
			Path:  defaultSessionPath(),
		},
		I18n: I18nConfig{
			DefaultLocale:  "vi",
			FallbackLocale: "vi",
		},
		Proxy: ProxyConfig{
			Enabled:     false,
			ListenAddr:  "127.0.0.1:5173",
			Target:      "http://localhost:8080",
			CORSOrigins: []string{"http://localhost:5173"},
			RateLimit:   300,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
	}
}

func defaultSessionPath() string {
	if dir := os.Getenv("XDG_DATA_HOME"); dir != "" {
		return filepath.Join(dir, "metroline", "session")
	}
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, ".local", "share", "metroline", "session")
	}
	return filepath.Join(os.TempDir(), "metroline", "session")
}

// Load reads configuration from defaults, the config file and the environment,
// then validates it.
func Load() (*Config, error) {
	return LoadFile(findConfigFile())
}

// LoadFile is Load with an explicit config file. An empty path skips the file layer.
func LoadFile(configPath string) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	}

	if err := k.Load(env.Provider("", ".", envTransformFunc), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	if err := processSliceFields(k); err != nil {
		return nil, fmt.Errorf("failed to process slice fields: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}

func findConfigFile() string {
	if envPath := os.Getenv(ConfigPathEnvVar); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}
	}
	for _, path := range DefaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	if dir, err := os.UserConfigDir(); err == nil {
		path := filepath.Join(dir, "metroline", "config.yaml")
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

var sliceConfigPaths = []string{
	"proxy.cors_origins",
}

// processSliceFields splits comma-separated env values for slice fields.
func processSliceFields(k *koanf.Koanf) error {
	for _, path := range sliceConfigPaths {
		strVal, ok := k.Get(path).(string)
		if !ok || strVal == "" {
			continue
		}
		parts := strings.Split(strVal, ",")
		trimmed := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				trimmed = append(trimmed, p)
			}
		}
		if err := k.Set(path, trimmed); err != nil {
			return fmt.Errorf("failed to set %s: %w", path, err)
		}
	}
	return nil
}

// envTransformFunc maps flat environment variable names to koanf paths.
// Unmapped variables are ignored.
//
//   - METROLINE_API_URL -> api.legacy.base_url
//   - METROLINE_TS_API_TIMEOUT -> api.ts.timeout
//   - SESSION_STORE -> session.store
func envTransformFunc(key string) string {
	key = strings.ToLower(key)

	envMappings := map[string]string{
		"metroline_api_url":           "api.legacy.base_url",
		"metroline_api_timeout":       "api.legacy.timeout",
		"metroline_api_rate_limit":    "api.legacy.rate_limit",
		"metroline_api_breaker":       "api.legacy.breaker.enabled",
		"metroline_ts_api_url":        "api.ts.base_url",
		"metroline_ts_api_timeout":    "api.ts.timeout",
		"metroline_ts_api_rate_limit": "api.ts.rate_limit",
		"metroline_ts_api_breaker":    "api.ts.breaker.enabled",
		"metroline_user_agent":        "api.legacy.user_agent",
		"query_stale_time":            "query.stale_time",
		"query_gc_time":               "query.gc_time",
		"query_sweep_interval":        "query.sweep_interval",
		"query_retry":                 "query.retry",
		"query_retry_delay":           "query.retry_delay",
		"session_store":               "session.store",
		"session_store_path":          "session.path",
		"authz_model_path":            "authz.model_path",
		"authz_policy_path":           "authz.policy_path",
		"i18n_default_locale":         "i18n.default_locale",
		"i18n_fallback_locale":        "i18n.fallback_locale",
		"dev_proxy_enabled":           "proxy.enabled",
		"dev_proxy_listen_addr":       "proxy.listen_addr",
		"dev_proxy_target":            "proxy.target",
		"dev_proxy_cors_origins":      "proxy.cors_origins",
		"dev_proxy_rate_limit":        "proxy.rate_limit",
		"log_level":                   "logging.level",
		"log_format":                  "logging.format",
		"log_caller":                  "logging.caller",
	}

	if mapped, ok := envMappings[key]; ok {
		return mapped
	}
	return ""
}
