// Metroline - Metro Ticketing Client
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/metroline

/*
Package config loads Metroline client configuration with Koanf v2.

Configuration is layered, later layers overriding earlier ones:

 1. Defaults: built into defaultConfig
 2. Config file: optional YAML (CONFIG_PATH, then DefaultConfigPaths)
 3. Environment variables: mapped explicitly by envTransformFunc

# Backend Origins

The backend exposes two HTTP APIs. The legacy API (stations, routes, schedules,
orders, payments, statistics, auth) receives credentials. The ts API (ticket
types, fare matrices, tickets) does not. Both default to a 10 second timeout.

	api:
	  legacy:
	    base_url: http://localhost:8080/api
	    forward_credentials: true
	  ts:
	    base_url: http://localhost:8081/api
	query:
	  stale_time: 0s
	  gc_time: 5m
	session:
	  store: badger
	  path: ~/.local/share/metroline/session

Environment overrides use flat names such as METROLINE_API_URL,
METROLINE_TS_API_URL, HTTP_TIMEOUT, SESSION_STORE and LOG_LEVEL.
*/
package config
