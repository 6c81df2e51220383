// Metroline - Metro Ticketing Client
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/metroline

/*
Package models defines the request and response shapes of the metro backend.

Types are grouped by backend resource:

  - Auth and users: LoginRequest, Profile, Role
  - Network: Station, Route, Schedule, StationRoute, BusConnection
  - Fares and tickets: TicketType, FareMatrix, Ticket
  - Commerce: Order, PaymentRedirect
  - Statistics: TicketSalesStat, StationUsageStat, RevenueStat

Response types carry validate tags that the HTTP client adapter checks after
decoding every envelope, so a payload missing an id or carrying an unknown
status fails loudly instead of flowing into the cache. Request types carry
validate tags checked by the endpoint bindings before a request is sent.

JSON field names follow the backend (camelCase).
*/
package models
