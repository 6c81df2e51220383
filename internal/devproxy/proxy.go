// Metroline - Metro Ticketing Client
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/metroline

package devproxy

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httputil"
	"net/url"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/goccy/go-json"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/tomtom215/metroline/internal/config"
	"github.com/tomtom215/metroline/internal/logging"
)

// metricsOrigin labels proxied requests in the HTTP collectors.
const metricsOrigin = "proxy"

// ErrNoTarget is returned when the proxy has nowhere to forward to.
var ErrNoTarget = errors.New("devproxy: target is required")

// Proxy is the dev server handler.
type Proxy struct {
	target  *url.URL
	reverse *httputil.ReverseProxy
	router  chi.Router
}

// New builds a Proxy from cfg. RateLimit is requests per minute per client
// IP; zero disables limiting.
func New(cfg *config.ProxyConfig) (*Proxy, error) {
	if cfg.Target == "" {
		return nil, ErrNoTarget
	}
	target, err := url.Parse(cfg.Target)
	if err != nil {
		return nil, fmt.Errorf("parse proxy target %q: %w", cfg.Target, err)
	}
	if target.Scheme != "http" && target.Scheme != "https" {
		return nil, fmt.Errorf("proxy target %q: scheme must be http or https", cfg.Target)
	}

	p := &Proxy{target: target}
	p.reverse = &httputil.ReverseProxy{
		Rewrite: func(pr *httputil.ProxyRequest) {
			pr.SetURL(target)
			pr.SetXForwarded()
			// The backend sees its own host, as with a browser dev server.
			pr.Out.Host = target.Host
		},
		ErrorHandler: p.proxyError,
	}
	p.router = p.routes(cfg)
	return p, nil
}

func (p *Proxy) routes(cfg *config.ProxyConfig) chi.Router {
	r := chi.NewRouter()
	r.Use(requestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	if len(cfg.CORSOrigins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins:   cfg.CORSOrigins,
			AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
			AllowedHeaders:   []string{"Content-Type", "Authorization", "X-Request-ID"},
			ExposedHeaders:   []string{"X-Request-ID"},
			AllowCredentials: true,
			MaxAge:           600,
		}))
	}

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = w.Write([]byte("ok"))
	})
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api", func(r chi.Router) {
		if cfg.RateLimit > 0 {
			r.Use(httprate.LimitByRealIP(cfg.RateLimit, time.Minute))
		}
		r.Use(record)
		r.Handle("/*", p.reverse)
	})
	return r
}

// ServeHTTP implements http.Handler.
func (p *Proxy) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	p.router.ServeHTTP(w, r)
}

// Target returns the backend origin requests are forwarded to.
func (p *Proxy) Target() string { return p.target.String() }

// proxyError answers in the backend's envelope shape so clients decode it
// like any other application error.
func (p *Proxy) proxyError(w http.ResponseWriter, r *http.Request, err error) {
	logging.Ctx(r.Context()).Error().
		Err(err).
		Str("component", "devproxy").
		Str("method", r.Method).
		Str("path", r.URL.Path).
		Str("target", p.target.Host).
		Msg("Proxy request failed")

	body, _ := json.Marshal(map[string]any{
		"status":  http.StatusBadGateway,
		"message": "backend unavailable",
	})
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusBadGateway)
	_, _ = w.Write(body)
}
