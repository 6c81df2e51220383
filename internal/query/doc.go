// Metroline - Metro Ticketing Client
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/metroline

// Package query is a keyed cache of asynchronous server reads.
//
// Each entry is addressed by a Key and moves through idle, pending, success
// and error. Observers subscribe to one key; the first enabled observer of a
// stale entry starts a fetch, concurrent observers share it, and the fetch is
// cancelled when the last one unsubscribes. Mutations invalidate entries by
// key prefix after a successful write, which makes mounted observers
// re-fetch while keeping their last data visible.
//
// Entries nobody observes are removed by GarbageCollect once GCTime has
// passed. The supervisor's cache sweeper service calls it periodically.
package query
