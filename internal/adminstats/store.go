// Metroline - Metro Ticketing Client
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/metroline

// Package adminstats loads the three dashboard statistics once and keeps
// them until Reset.
package adminstats

import (
	"context"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/tomtom215/metroline/internal/logging"
	"github.com/tomtom215/metroline/internal/metrics"
	"github.com/tomtom215/metroline/internal/models"
)

// Source is the backend surface the store reads. *backend.Client satisfies it.
type Source interface {
	TicketSales(ctx context.Context, r models.StatsRange) ([]models.TicketSalesStat, error)
	StationUsage(ctx context.Context, r models.StatsRange) ([]models.StationUsageStat, error)
	Revenue(ctx context.Context, r models.StatsRange) ([]models.RevenueStat, error)
}

// Snapshot is a copy of the loaded statistics.
type Snapshot struct {
	TicketSales  []models.TicketSalesStat
	StationUsage []models.StationUsageStat
	Revenue      []models.RevenueStat
	Fetched      bool
}

// Store caches the dashboard statistics for one range.
type Store struct {
	source Source

	// fetchMu serialises FetchAll so one round of requests is in flight.
	fetchMu sync.Mutex

	mu      sync.RWMutex
	rng     models.StatsRange
	snap    Snapshot
	fetched bool
	// gen changes on Reset and on a range change. A round started under an
	// older gen is not committed.
	gen uint64
}

// New creates an empty store reading range r from source.
func New(source Source, r models.StatsRange) *Store {
	return &Store{source: source, rng: r}
}

// FetchAll loads the three statistics concurrently unless they were already
// loaded. A failed statistic is logged and stored empty; FetchAll itself only
// fails when ctx is done before the requests settle. Results of a round
// overtaken by Reset or SetRange are dropped and the store stays unfetched.
func (s *Store) FetchAll(ctx context.Context) error {
	s.fetchMu.Lock()
	defer s.fetchMu.Unlock()

	if s.IsFetched() {
		return nil
	}

	s.mu.RLock()
	r, gen := s.rng, s.gen
	s.mu.RUnlock()

	var next Snapshot
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		next.TicketSales = settle(gctx, "ticket_sales", func(ctx context.Context) ([]models.TicketSalesStat, error) {
			return s.source.TicketSales(ctx, r)
		})
		return nil
	})
	g.Go(func() error {
		next.StationUsage = settle(gctx, "station_usage", func(ctx context.Context) ([]models.StationUsageStat, error) {
			return s.source.StationUsage(ctx, r)
		})
		return nil
	})
	g.Go(func() error {
		next.Revenue = settle(gctx, "revenue", func(ctx context.Context) ([]models.RevenueStat, error) {
			return s.source.Revenue(ctx, r)
		})
		return nil
	})
	// settle absorbs failures, so only a cancelled ctx ends the round early.
	if err := g.Wait(); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	next.Fetched = true
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.gen != gen {
		logging.Ctx(ctx).Debug().Msg("Statistics range changed during fetch, discarding results")
		return nil
	}
	s.snap = next
	s.fetched = true
	return nil
}

// settle runs fn and turns a failure into an empty result.
func settle[T any](ctx context.Context, stat string, fn func(context.Context) ([]T, error)) []T {
	data, err := fn(ctx)
	metrics.RecordAdminStatsFetch(stat, err)
	if err != nil {
		logging.Ctx(ctx).Warn().Err(err).Str("stat", stat).Msg("Failed to load statistic")
		return []T{}
	}
	if data == nil {
		return []T{}
	}
	return data
}

// Reset forgets the loaded statistics so the next FetchAll reloads them.
func (s *Store) Reset() {
	s.mu.Lock()
	s.snap = Snapshot{}
	s.fetched = false
	s.gen++
	s.mu.Unlock()
}

// SetRange changes the range and resets the store when it differs.
func (s *Store) SetRange(r models.StatsRange) {
	s.mu.Lock()
	changed := !r.From.Equal(s.rng.From) || !r.To.Equal(s.rng.To) || r.GroupBy != s.rng.GroupBy
	s.rng = r
	if changed {
		s.snap = Snapshot{}
		s.fetched = false
		s.gen++
	}
	s.mu.Unlock()
}

// IsFetched reports whether FetchAll has completed since the last Reset.
func (s *Store) IsFetched() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.fetched
}

// Snapshot returns a copy of the current statistics.
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Snapshot{
		TicketSales:  append([]models.TicketSalesStat(nil), s.snap.TicketSales...),
		StationUsage: append([]models.StationUsageStat(nil), s.snap.StationUsage...),
		Revenue:      append([]models.RevenueStat(nil), s.snap.Revenue...),
		Fetched:      s.snap.Fetched,
	}
}
