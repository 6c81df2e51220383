// Metroline - Metro Ticketing Client
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/metroline

// Package queries binds every backend read to a cache observer and every
// write to a mutation that invalidates the keys it affects.
//
// Keys are built by the factories in keys.go so readers and writers agree on
// them. Reads that depend on an id are created disabled until the id is
// known (non-zero).
package queries
