// Metroline - Metro Ticketing Client
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/metroline

// Package devproxy serves a local /api reverse proxy in front of a backend
// origin, so a browser on the dev server origin can reach the backend
// without CORS or cookie scoping problems.
//
// Routes:
//
//	/api/*    forwarded to the configured target
//	/healthz  liveness
//	/metrics  Prometheus collectors of the client
package devproxy
