// Metroline - Metro Ticketing Client
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/metroline

package session

import (
	"context"
	"fmt"
	"sync"

	"github.com/rs/zerolog"

	"github.com/tomtom215/metroline/internal/logging"
	"github.com/tomtom215/metroline/internal/metrics"
	"github.com/tomtom215/metroline/internal/models"
)

// Listener is called after every session change with the new profile
// (nil when signed out). It must not call back into SetProfile.
type Listener func(*models.Profile)

// Store is the in-memory session backed by Storage. It implements
// apiclient.TokenSource.
type Store struct {
	storage Storage
	log     zerolog.Logger

	// writeMu serialises durable writes so memory follows storage order.
	writeMu sync.Mutex

	mu        sync.RWMutex
	profile   *models.Profile
	token     string
	listeners map[uint64]Listener
	nextID    uint64
}

// NewStore loads the persisted record. A record that cannot be read is
// treated as signed out.
func NewStore(ctx context.Context, storage Storage) (*Store, error) {
	if storage == nil {
		return nil, fmt.Errorf("session: nil storage")
	}
	s := &Store{
		storage:   storage,
		log:       logging.WithComponent("session"),
		listeners: make(map[uint64]Listener),
	}
	rec, err := storage.Load(ctx)
	if err != nil {
		s.log.Warn().Err(err).Msg("Stored session unreadable, starting signed out")
		rec = Record{}
	}
	s.profile = rec.Profile
	if rec.Profile != nil {
		s.token = rec.Token
	}
	metrics.SetSessionAuthenticated(s.profile != nil)
	return s, nil
}

// SetProfile replaces the profile and keeps the token. nil signs out and
// drops the token too. The durable write happens first; on failure memory is
// unchanged.
func (s *Store) SetProfile(ctx context.Context, p *models.Profile) error {
	s.mu.RLock()
	token := s.token
	s.mu.RUnlock()
	return s.set(ctx, "set_profile", p, token)
}

// SetSession stores profile and token together, as a login does.
func (s *Store) SetSession(ctx context.Context, p *models.Profile, token string) error {
	return s.set(ctx, "set_session", p, token)
}

// SetToken replaces the bearer token of the current session.
func (s *Store) SetToken(ctx context.Context, token string) error {
	s.mu.RLock()
	p := s.profile
	s.mu.RUnlock()
	if p == nil {
		return ErrNotAuthenticated
	}
	return s.set(ctx, "set_token", p, token)
}

// StageToken makes token available to outgoing requests before a profile is
// known, as during login. It is neither persisted nor announced; the next
// SetSession or Reset replaces it.
func (s *Store) StageToken(token string) {
	s.mu.Lock()
	s.token = token
	s.mu.Unlock()
}

// Reset signs out.
func (s *Store) Reset(ctx context.Context) error {
	return s.set(ctx, "reset", nil, "")
}

func (s *Store) set(ctx context.Context, op string, p *models.Profile, token string) error {
	p = p.Clone()
	if p == nil {
		token = ""
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	err := s.storage.Save(ctx, Record{Profile: p, Token: token})
	metrics.RecordSessionWrite(op, err)
	if err != nil {
		return fmt.Errorf("persist session: %w", err)
	}

	s.mu.Lock()
	s.profile = p
	s.token = token
	listeners := make([]Listener, 0, len(s.listeners))
	for _, l := range s.listeners {
		listeners = append(listeners, l)
	}
	s.mu.Unlock()

	metrics.SetSessionAuthenticated(p != nil)
	ev := s.log.Debug().Str("op", op).Bool("authenticated", p != nil)
	if p != nil {
		ev = ev.Str("email", logging.Email(p.Email))
	}
	ev.Msg("Session updated")

	for _, l := range listeners {
		l(p.Clone())
	}
	return nil
}

// Profile returns a copy of the current profile, or nil.
func (s *Store) Profile() *models.Profile {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.profile.Clone()
}

// IsAuthenticated reports whether a profile is present.
func (s *Store) IsAuthenticated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.profile != nil
}

// Role returns the current role, or "" when signed out.
func (s *Store) Role() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.profile == nil {
		return ""
	}
	return s.profile.Role
}

// UserID returns the current user's id, or 0.
func (s *Store) UserID() int64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.profile == nil {
		return 0
	}
	return s.profile.ID
}

// Token implements apiclient.TokenSource.
func (s *Store) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

// Subscribe registers l for session changes and returns its removal func.
func (s *Store) Subscribe(l Listener) (unsubscribe func()) {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.listeners[id] = l
	s.mu.Unlock()
	return func() {
		s.mu.Lock()
		delete(s.listeners, id)
		s.mu.Unlock()
	}
}

// Close closes the underlying storage.
func (s *Store) Close() error {
	return s.storage.Close()
}
