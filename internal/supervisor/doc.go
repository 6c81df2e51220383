// Metroline - Metro Ticketing Client
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/metroline

/*
Package supervisor runs the long-lived parts of the client under suture v4.

Only the proxy subcommand builds a tree. One-shot CLI commands call the
query cache directly and exit.

	Root ("metroline")
	├── maintenance
	│   └── CacheSweeperService
	└── http
	    └── HTTPServerService ("dev-proxy")

Each layer restarts its own services with backoff, so a proxy that cannot
bind its port does not stop cache garbage collection. Supervisor events are
logged through sutureslog into the zerolog-backed slog handler.

# Usage

	tree := supervisor.NewTree(logging.NewSlogLogger(), supervisor.DefaultTreeConfig())
	tree.AddMaintenanceService(services.NewCacheSweeperService(cache, cfg.Query.SweepInterval))
	tree.AddHTTPService(services.NewHTTPServerService("dev-proxy", server, 10*time.Second))
	err := tree.Serve(ctx)
*/
package supervisor
