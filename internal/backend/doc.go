// Metroline - Metro Ticketing Client
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/metroline

/*
Package backend binds every backend endpoint to a typed Go method.

Bindings are pure mappings: build the path, query and body, send them through
the right origin and decode the envelope. They hold no state besides the two
HTTP client adapters and never catch errors; every failure is returned as an
*apiclient.Error (transport, application, envelope or request).

Origins:

  - legacy: auth, users, stations, bus, routes, schedules, station-routes,
    orders, payment, stat
  - ts: ts/ticket-types, ts/fare-matrices, ts/tickets

Request inputs are validated before anything is sent. A failing input returns
a KindRequest error wrapping *validation.RequestValidationError.
*/
package backend
