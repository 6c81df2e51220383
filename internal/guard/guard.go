// Metroline - Metro Ticketing Client
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/metroline

// Package guard decides whether a screen may be shown to the current session
// and where to send the user otherwise.
package guard

import (
	"fmt"
	"slices"

	"github.com/tomtom215/metroline/internal/authz"
	"github.com/tomtom215/metroline/internal/logging"
	"github.com/tomtom215/metroline/internal/models"
)

// Well-known paths.
const (
	LoginPath      = "/login"
	HomePath       = "/"
	AdminHomePath  = "/admin"
	RegisterPath   = "/register"
	ForgotPassPath = "/forgot-password"
)

// publicOnly lists screens a signed-in user is bounced away from.
var publicOnly = []string{LoginPath, RegisterPath, ForgotPassPath}

// Decision is the outcome of a guard. Redirect is set when Allowed is false.
type Decision struct {
	Allowed  bool
	Redirect string
}

func allow() Decision { return Decision{Allowed: true} }

func redirect(to string) Decision { return Decision{Redirect: to} }

// LandingFor returns the home screen of role.
func LandingFor(role string) string {
	if role == models.RoleAdmin {
		return AdminHomePath
	}
	return HomePath
}

// Session is the part of the session store guards read.
type Session interface {
	IsAuthenticated() bool
	Role() string
}

// Guard evaluates route guards against a session.
type Guard struct {
	session  Session
	enforcer *authz.Enforcer
}

// New creates a guard. enforcer may be nil when only Protected and Public
// are used.
func New(session Session, enforcer *authz.Enforcer) *Guard {
	return &Guard{session: session, enforcer: enforcer}
}

// Protected admits authenticated users whose role is in allowed. An empty
// allowed list admits every authenticated user. Anonymous users go to the
// login screen, others to their landing page.
func (g *Guard) Protected(allowed ...string) Decision {
	if !g.session.IsAuthenticated() {
		return redirect(LoginPath)
	}
	role := g.session.Role()
	if len(allowed) > 0 && !slices.Contains(allowed, role) {
		logging.Debug().Str("role", role).Strs("allowed", allowed).Msg("Role not permitted")
		return redirect(LandingFor(role))
	}
	return allow()
}

// Public admits anonymous users and sends signed-in users to their landing
// page. Used by the login and registration screens.
func (g *Guard) Public() Decision {
	if g.session.IsAuthenticated() {
		return redirect(LandingFor(g.session.Role()))
	}
	return allow()
}

// Authorize checks path against the authorization policy.
func (g *Guard) Authorize(path string) (Decision, error) {
	if g.enforcer == nil {
		return Decision{}, fmt.Errorf("guard: no authorization policy")
	}
	if slices.Contains(publicOnly, path) {
		return g.Public(), nil
	}

	role := g.session.Role()
	if !g.session.IsAuthenticated() {
		role = ""
	}
	ok, err := g.enforcer.CanView(role, path)
	if err != nil {
		return Decision{}, fmt.Errorf("authorize %s: %w", path, err)
	}
	if ok {
		return allow(), nil
	}
	if role == "" {
		return redirect(LoginPath), nil
	}
	logging.Debug().Str("role", role).Str("path", path).Msg("Screen not permitted")
	return redirect(LandingFor(role)), nil
}
