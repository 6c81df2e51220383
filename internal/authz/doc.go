// Metroline - Metro Ticketing Client
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/metroline

// Package authz decides which screens a role may open, using Casbin.
//
// The model matches request paths with keyMatch2 so policies can name
// parameters:
//
//	p, ROLE_USER, /tickets/*, view
//	p, ROLE_ANONYMOUS, /stations/:id, view
//	g, ROLE_ADMIN, ROLE_STAFF
//
// Roles inherit along the g lines: ROLE_ADMIN includes ROLE_STAFF, which
// includes ROLE_USER, which includes ROLE_ANONYMOUS. The model and policy are
// embedded; config.AuthzConfig may point at files that replace them.
//
// Decisions are cached for CacheTTL.
package authz
