// Metroline - Metro Ticketing Client
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/metroline

/*
Package logging provides the zerolog-based logger shared by every Metroline package.

The package keeps one global zerolog.Logger that is configured once from main and
read everywhere else through the level helpers:

	logging.Init(logging.Config{Level: "debug", Format: "console"})
	logging.Info().Str("origin", "legacy").Msg("Client ready")
	logging.Ctx(ctx).Warn().Err(err).Msg("Fetch failed")

# Context Fields

Ctx and CtxWith attach correlation_id and request_id values stored in the
context. The HTTP client adapter reuses the request id as the X-Request-ID header
so log lines on both sides of a call can be joined.

# Component Loggers

Long-lived objects hold a component logger created with WithComponent:

	log := logging.WithComponent("query")

# slog Bridge

SlogHandler adapts the global logger for libraries that accept *slog.Logger,
most notably sutureslog in the supervisor tree.

# Redaction

Email and Token mask credentials before they reach a log line. Never log a raw
password, OTP or bearer token.
*/
package logging
