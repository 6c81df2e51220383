// Metroline - Metro Ticketing Client
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/metroline

// Package session holds the process-wide authentication state: the signed-in
// user's profile and the bearer token sent to the legacy origin.
//
// Every change is written to durable storage before it becomes visible in
// memory, so a crash never leaves the process believing in a session that
// would not survive a restart.
package session
