// Metroline - Metro Ticketing Client
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/metroline

// Package account implements the sign-in, sign-out and self-service flows
// on top of the backend bindings, the session store and the query cache.
package account

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/metroline/internal/adminstats"
	"github.com/tomtom215/metroline/internal/apiclient"
	"github.com/tomtom215/metroline/internal/backend"
	"github.com/tomtom215/metroline/internal/logging"
	"github.com/tomtom215/metroline/internal/models"
	"github.com/tomtom215/metroline/internal/queries"
	"github.com/tomtom215/metroline/internal/query"
	"github.com/tomtom215/metroline/internal/session"
)

// ErrSessionExpired is returned when the backend no longer accepts the
// session. The local session has been reset when it is returned.
var ErrSessionExpired = errors.New("account: session expired")

// Service ties login state to the cache: signing in seeds the profile,
// signing out forgets every cached read.
type Service struct {
	api     *backend.Client
	session *session.Store
	cache   *query.Client
	stats   *adminstats.Store
	log     zerolog.Logger
	now     func() time.Time
}

// New creates the service. stats may be nil.
func New(api *backend.Client, sess *session.Store, cache *query.Client, stats *adminstats.Store) *Service {
	return &Service{
		api:     api,
		session: sess,
		cache:   cache,
		stats:   stats,
		log:     logging.WithComponent("account"),
		now:     time.Now,
	}
}

// Login signs in and stores the session. The profile comes from users/me so
// it matches what later refreshes return.
func (s *Service) Login(ctx context.Context, email, password string) (*models.Profile, error) {
	resp, err := s.api.Login(ctx, &models.LoginRequest{Email: email, Password: password})
	if err != nil {
		return nil, err
	}

	token := resp.AccessToken
	if info, err := InspectToken(token); err == nil {
		if info.Expired(s.now()) {
			return nil, fmt.Errorf("login: %w", ErrSessionExpired)
		}
		s.log.Debug().Time("expires_at", info.ExpiresAt).Str("role", info.Role).Msg("Access token received")
	} else {
		s.log.Debug().Err(err).Msg("Access token is not a JWT, skipping inspection")
	}

	prev := s.session.Token()
	s.session.StageToken(token)
	profile, err := s.api.GetMe(ctx)
	if err != nil {
		s.session.StageToken(prev)
		return nil, fmt.Errorf("load profile: %w", err)
	}

	// Nothing cached under the previous session belongs to this one.
	s.cache.Clear()
	if s.stats != nil {
		s.stats.Reset()
	}
	if err := s.session.SetSession(ctx, profile, token); err != nil {
		return nil, err
	}
	s.cache.Invalidate(queries.UsersRoot)
	s.cache.SetData(queries.ProfileKey(), profile)

	logging.Ctx(ctx).Info().
		Str("email", logging.Email(profile.Email)).
		Str("role", profile.Role).
		Msg("Signed in")
	return profile.Clone(), nil
}

// Logout ends the backend session, then forgets everything local. A failed
// backend call is logged and does not stop the local sign-out.
func (s *Service) Logout(ctx context.Context) error {
	if err := s.api.Logout(ctx); err != nil {
		logging.Ctx(ctx).Warn().Err(err).Msg("Backend logout failed, clearing local session anyway")
	}
	err := s.clearLocal(ctx)
	logging.Ctx(ctx).Info().Msg("Signed out")
	return err
}

func (s *Service) clearLocal(ctx context.Context) error {
	err := s.session.Reset(ctx)
	s.cache.Clear()
	if s.stats != nil {
		s.stats.Reset()
	}
	return err
}

// RefreshProfile reloads users/me into the session. When the backend rejects
// the session (401/403) or the token has expired, the local session is reset
// and ErrSessionExpired returned.
func (s *Service) RefreshProfile(ctx context.Context) (*models.Profile, error) {
	if !s.session.IsAuthenticated() {
		return nil, session.ErrNotAuthenticated
	}
	if info, err := InspectToken(s.session.Token()); err == nil && info.Expired(s.now()) {
		return nil, s.expire(ctx, "token expired")
	}

	profile, err := s.api.GetMe(ctx)
	if apiclient.IsUnauthorized(err) {
		return nil, s.expire(ctx, apiclient.Message(err))
	}
	if err != nil {
		return nil, err
	}

	if err := s.session.SetProfile(ctx, profile); err != nil {
		return nil, err
	}
	s.cache.SetData(queries.ProfileKey(), profile)
	return profile.Clone(), nil
}

func (s *Service) expire(ctx context.Context, reason string) error {
	logging.Ctx(ctx).Warn().Str("reason", reason).Msg("Session no longer valid")
	if err := s.clearLocal(ctx); err != nil {
		return fmt.Errorf("%w (reset failed: %v)", ErrSessionExpired, err)
	}
	return ErrSessionExpired
}

// ChangePassword changes the signed-in user's password.
func (s *Service) ChangePassword(ctx context.Context, current, next string) error {
	if !s.session.IsAuthenticated() {
		return session.ErrNotAuthenticated
	}
	return s.api.ChangePassword(ctx, &models.ChangePasswordRequest{
		CurrentPassword: current,
		NewPassword:     next,
	})
}

// NewRegistration starts a sign-up flow.
func (s *Service) NewRegistration() *Registration {
	return &Registration{api: s.api}
}

// NewPasswordReset starts a forgotten-password flow.
func (s *Service) NewPasswordReset() *PasswordReset {
	return &PasswordReset{api: s.api}
}
