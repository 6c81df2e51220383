// Metroline - Metro Ticketing Client
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/metroline

/*
Package services adapts metroline components to suture.Service.

	type Service interface {
	    Serve(ctx context.Context) error
	}

HTTPServerService turns the blocking ListenAndServe of an *http.Server into
a context-aware Serve with graceful Shutdown. CacheSweeperService evicts
unobserved query cache entries on a ticker.

Every wrapper implements fmt.Stringer so supervisor events name it.
*/
package services
