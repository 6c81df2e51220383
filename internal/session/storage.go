// Metroline - Metro Ticketing Client
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/metroline

package session

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/dgraph-io/badger/v4"
	"github.com/goccy/go-json"

	"github.com/tomtom215/metroline/internal/config"
	"github.com/tomtom215/metroline/internal/models"
)

// Storage keys.
const (
	profileKey = "profile"
	tokenKey   = "token"
)

// Record is what survives a restart. A nil Profile means signed out.
type Record struct {
	Profile *models.Profile
	Token   string
}

// Storage persists the session record.
type Storage interface {
	Load(ctx context.Context) (Record, error)
	// Save replaces the stored record in one step. A nil profile removes it.
	Save(ctx context.Context, rec Record) error
	Close() error
}

// NewStorage opens the backend selected by cfg.
func NewStorage(cfg *config.SessionConfig) (Storage, error) {
	switch cfg.Store {
	case config.SessionStoreBadger:
		return OpenBadgerStorage(cfg.Path)
	case config.SessionStoreMemory, "":
		return NewMemoryStorage(), nil
	default:
		return nil, fmt.Errorf("unknown session store %q", cfg.Store)
	}
}

// BadgerStorage keeps the record in a BadgerDB directory.
type BadgerStorage struct {
	db *badger.DB
}

// OpenBadgerStorage opens (or creates) the database at path.
func OpenBadgerStorage(path string) (*BadgerStorage, error) {
	opts := badger.DefaultOptions(path)
	opts.Logger = nil // Suppress BadgerDB logs

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open badger db for session: %w", err)
	}
	return &BadgerStorage{db: db}, nil
}

// NewBadgerStorage wraps an already open database.
func NewBadgerStorage(db *badger.DB) *BadgerStorage {
	return &BadgerStorage{db: db}
}

// Load implements Storage.
func (s *BadgerStorage) Load(ctx context.Context) (Record, error) {
	var rec Record
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(profileKey))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("get profile: %w", err)
		}
		err = item.Value(func(val []byte) error {
			var p models.Profile
			if err := json.Unmarshal(val, &p); err != nil {
				return fmt.Errorf("decode profile: %w", err)
			}
			rec.Profile = &p
			return nil
		})
		if err != nil {
			return err
		}

		item, err = txn.Get([]byte(tokenKey))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("get token: %w", err)
		}
		return item.Value(func(val []byte) error {
			rec.Token = string(val)
			return nil
		})
	})
	if err != nil {
		return Record{}, err
	}
	return rec, nil
}

// Save implements Storage.
func (s *BadgerStorage) Save(ctx context.Context, rec Record) error {
	var data []byte
	if rec.Profile != nil {
		var err error
		if data, err = json.Marshal(rec.Profile); err != nil {
			return fmt.Errorf("marshal profile: %w", err)
		}
	}

	return s.db.Update(func(txn *badger.Txn) error {
		if rec.Profile == nil {
			if err := txn.Delete([]byte(profileKey)); err != nil && !errors.Is(err, badger.ErrKeyNotFound) {
				return fmt.Errorf("delete profile: %w", err)
			}
			if err := txn.Delete([]byte(tokenKey)); err != nil && !errors.Is(err, badger.ErrKeyNotFound) {
				return fmt.Errorf("delete token: %w", err)
			}
			return nil
		}
		if err := txn.Set([]byte(profileKey), data); err != nil {
			return fmt.Errorf("set profile: %w", err)
		}
		if rec.Token == "" {
			if err := txn.Delete([]byte(tokenKey)); err != nil && !errors.Is(err, badger.ErrKeyNotFound) {
				return fmt.Errorf("delete token: %w", err)
			}
			return nil
		}
		if err := txn.Set([]byte(tokenKey), []byte(rec.Token)); err != nil {
			return fmt.Errorf("set token: %w", err)
		}
		return nil
	})
}

// Close closes the database.
func (s *BadgerStorage) Close() error {
	return s.db.Close()
}

// MemoryStorage keeps the record for the life of the process only.
type MemoryStorage struct {
	mu  sync.Mutex
	rec Record
}

// NewMemoryStorage returns empty in-memory storage.
func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{}
}

// Load implements Storage.
func (m *MemoryStorage) Load(ctx context.Context) (Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return Record{Profile: m.rec.Profile.Clone(), Token: m.rec.Token}, nil
}

// Save implements Storage.
func (m *MemoryStorage) Save(ctx context.Context, rec Record) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if rec.Profile == nil {
		m.rec = Record{}
		return nil
	}
	m.rec = Record{Profile: rec.Profile.Clone(), Token: rec.Token}
	return nil
}

// Close implements Storage.
func (m *MemoryStorage) Close() error { return nil }
