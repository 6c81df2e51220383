// Metroline - Metro Ticketing Client
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/metroline

package services

import (
	"context"
	"time"

	"github.com/tomtom215/metroline/internal/logging"
)

// DefaultSweepInterval applies when none is configured.
const DefaultSweepInterval = time.Minute

// CacheCollector evicts expired cache entries and reports how many went.
// Satisfied by *query.Client.
type CacheCollector interface {
	GarbageCollect() int
}

// CacheSweeperService runs GarbageCollect on a fixed interval.
type CacheSweeperService struct {
	cache    CacheCollector
	interval time.Duration
	name     string
}

// NewCacheSweeperService creates the sweeper. A non-positive interval
// becomes DefaultSweepInterval.
func NewCacheSweeperService(cache CacheCollector, interval time.Duration) *CacheSweeperService {
	if interval <= 0 {
		interval = DefaultSweepInterval
	}
	return &CacheSweeperService{
		cache:    cache,
		interval: interval,
		name:     "query-cache-sweeper",
	}
}

// Serve implements suture.Service.
func (s *CacheSweeperService) Serve(ctx context.Context) error {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if n := s.cache.GarbageCollect(); n > 0 {
				logging.Ctx(ctx).Debug().
					Str("component", s.name).
					Int("evicted", n).
					Msg("Query cache swept")
			}
		}
	}
}

// String implements fmt.Stringer for supervisor logs.
func (s *CacheSweeperService) String() string {
	return s.name
}
