// Metroline - Metro Ticketing Client
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/metroline

package config

import (
	"fmt"
	"net/url"
	"strings"

	"golang.org/x/text/language"

	"github.com/tomtom215/metroline/internal/logging"
)

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	if err := c.validateOrigin("api.legacy", &c.API.Legacy); err != nil {
		return err
	}
	if err := c.validateOrigin("api.ts", &c.API.TS); err != nil {
		return err
	}
	if err := c.validateQuery(); err != nil {
		return err
	}
	if err := c.validateSession(); err != nil {
		return err
	}
	if err := c.validateI18n(); err != nil {
		return err
	}
	if err := c.validateProxy(); err != nil {
		return err
	}
	if !logging.ValidLevel(c.Logging.Level) {
		return fmt.Errorf("logging.level %q is not a known level", c.Logging.Level)
	}
	if c.Logging.Format != "json" && c.Logging.Format != "console" {
		return fmt.Errorf("logging.format must be json or console, got %q", c.Logging.Format)
	}
	return nil
}

func (c *Config) validateOrigin(name string, o *OriginConfig) error {
	if err := validateHTTPURL(name+".base_url", o.BaseURL); err != nil {
		return err
	}
	if o.Timeout <= 0 {
		return fmt.Errorf("%s.timeout must be positive", name)
	}
	if o.RateLimit < 0 {
		return fmt.Errorf("%s.rate_limit must not be negative", name)
	}
	if o.RateLimit > 0 && o.RateBurst <= 0 {
		o.RateBurst = 1
	}
	if o.Breaker.Enabled && (o.Breaker.FailureRatio <= 0 || o.Breaker.FailureRatio > 1) {
		return fmt.Errorf("%s.breaker.failure_ratio must be in (0, 1]", name)
	}
	return nil
}

func (c *Config) validateQuery() error {
	if c.Query.StaleTime < 0 {
		return fmt.Errorf("query.stale_time must not be negative")
	}
	if c.Query.GCTime < 0 {
		return fmt.Errorf("query.gc_time must not be negative")
	}
	if c.Query.SweepInterval <= 0 {
		return fmt.Errorf("query.sweep_interval must be positive")
	}
	if c.Query.Retry < 0 {
		return fmt.Errorf("query.retry must not be negative")
	}
	return nil
}

func (c *Config) validateSession() error {
	switch c.Session.Store {
	case SessionStoreMemory:
		return nil
	case SessionStoreBadger:
		if strings.TrimSpace(c.Session.Path) == "" {
			return fmt.Errorf("session.path is required for the badger store")
		}
		return nil
	default:
		return fmt.Errorf("session.store must be %q or %q, got %q",
			SessionStoreBadger, SessionStoreMemory, c.Session.Store)
	}
}

func (c *Config) validateI18n() error {
	for name, tag := range map[string]string{
		"i18n.default_locale":  c.I18n.DefaultLocale,
		"i18n.fallback_locale": c.I18n.FallbackLocale,
	} {
		if _, err := language.Parse(tag); err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
	}
	return nil
}

func (c *Config) validateProxy() error {
	if !c.Proxy.Enabled {
		return nil
	}
	if c.Proxy.ListenAddr == "" {
		return fmt.Errorf("proxy.listen_addr is required when the proxy is enabled")
	}
	return validateHTTPURL("proxy.target", c.Proxy.Target)
}

// validateHTTPURL requires an absolute http or https URL with a host.
func validateHTTPURL(name, raw string) error {
	if raw == "" {
		return fmt.Errorf("%s is required", name)
	}
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("%s is not a valid URL: %w", name, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("%s must use http or https, got %q", name, u.Scheme)
	}
	if u.Host == "" {
		return fmt.Errorf("%s must include a host", name)
	}
	return nil
}
