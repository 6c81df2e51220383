// Metroline - Metro Ticketing Client
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/metroline

// Package app wires the metroline components together. It is the only
// place that knows how configuration maps onto constructors.
package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/tomtom215/metroline/internal/account"
	"github.com/tomtom215/metroline/internal/adminstats"
	"github.com/tomtom215/metroline/internal/apiclient"
	"github.com/tomtom215/metroline/internal/authz"
	"github.com/tomtom215/metroline/internal/backend"
	"github.com/tomtom215/metroline/internal/config"
	"github.com/tomtom215/metroline/internal/devproxy"
	"github.com/tomtom215/metroline/internal/guard"
	"github.com/tomtom215/metroline/internal/i18n"
	"github.com/tomtom215/metroline/internal/logging"
	"github.com/tomtom215/metroline/internal/models"
	"github.com/tomtom215/metroline/internal/queries"
	"github.com/tomtom215/metroline/internal/query"
	"github.com/tomtom215/metroline/internal/session"
	"github.com/tomtom215/metroline/internal/supervisor"
	"github.com/tomtom215/metroline/internal/supervisor/services"
)

// proxyShutdownTimeout bounds draining of in-flight proxied requests.
const proxyShutdownTimeout = 10 * time.Second

// App holds every long-lived component.
type App struct {
	Config   *config.Config
	Session  *session.Store
	API      *backend.Client
	Cache    *query.Client
	Queries  *queries.Hooks
	Enforcer *authz.Enforcer
	Guard    *guard.Guard
	Stats    *adminstats.Store
	I18n     *i18n.Translator
	Account  *account.Service
}

// New builds an App from cfg. Call Close when done.
func New(ctx context.Context, cfg *config.Config) (*App, error) {
	storage, err := session.NewStorage(&cfg.Session)
	if err != nil {
		return nil, fmt.Errorf("open session storage: %w", err)
	}
	sess, err := session.NewStore(ctx, storage)
	if err != nil {
		_ = storage.Close()
		return nil, fmt.Errorf("load session: %w", err)
	}

	a := &App{Config: cfg, Session: sess}
	if err := a.build(); err != nil {
		a.Close()
		return nil, err
	}

	logging.Ctx(ctx).Debug().
		Str("legacy", cfg.API.Legacy.BaseURL).
		Str("ts", cfg.API.TS.BaseURL).
		Str("session_store", cfg.Session.Store).
		Bool("authenticated", sess.IsAuthenticated()).
		Msg("Application initialized")
	return a, nil
}

func (a *App) build() error {
	cfg := a.Config

	legacy, err := apiclient.New(&cfg.API.Legacy, apiclient.Options{Name: "legacy", Tokens: a.Session})
	if err != nil {
		return fmt.Errorf("legacy origin: %w", err)
	}
	ts, err := apiclient.New(&cfg.API.TS, apiclient.Options{Name: "ts"})
	if err != nil {
		return fmt.Errorf("ts origin: %w", err)
	}
	a.API = backend.New(legacy, ts)

	a.Cache = query.NewClient(query.Config{
		StaleTime:  cfg.Query.StaleTime,
		GCTime:     cfg.Query.GCTime,
		Retry:      cfg.Query.Retry,
		RetryDelay: cfg.Query.RetryDelay,
	})
	a.Queries = queries.New(a.Cache, a.API).SyncProfile(a.Session)

	a.Enforcer, err = authz.NewEnforcer(authz.EnforcerConfigFrom(&cfg.Authz))
	if err != nil {
		return fmt.Errorf("authorization: %w", err)
	}
	a.Guard = guard.New(a.Session, a.Enforcer)

	a.I18n, err = i18n.New(&cfg.I18n)
	if err != nil {
		return fmt.Errorf("translations: %w", err)
	}

	a.Stats = adminstats.New(a.API, models.StatsRange{})
	a.Account = account.New(a.API, a.Session, a.Cache, a.Stats)
	return nil
}

// Close releases the cache, the enforcer and session storage.
func (a *App) Close() {
	if a.Cache != nil {
		a.Cache.Close()
	}
	if a.Enforcer != nil {
		a.Enforcer.Close()
	}
	if a.Session != nil {
		if err := a.Session.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing session storage")
		}
	}
}

// Serve runs the cache sweeper and, when enabled, the dev proxy under a
// supervisor tree until ctx is cancelled.
func (a *App) Serve(ctx context.Context) error {
	tree := supervisor.NewTree(logging.NewSlogLogger(), supervisor.DefaultTreeConfig())
	tree.AddMaintenanceService(services.NewCacheSweeperService(a.Cache, a.Config.Query.SweepInterval))

	if a.Config.Proxy.Enabled {
		proxy, err := devproxy.New(&a.Config.Proxy)
		if err != nil {
			return err
		}
		server := &http.Server{
			Addr:              a.Config.Proxy.ListenAddr,
			Handler:           proxy,
			ReadHeaderTimeout: 10 * time.Second,
		}
		tree.AddHTTPService(services.NewHTTPServerService("dev-proxy", server, proxyShutdownTimeout))
		logging.Info().
			Str("listen", a.Config.Proxy.ListenAddr).
			Str("target", proxy.Target()).
			Msg("Dev proxy enabled")
	}

	err := tree.Serve(ctx)
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
