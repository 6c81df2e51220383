// Metroline - Metro Ticketing Client
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/metroline

package authz

import (
	"sync"
	"time"
)

// maxCachedDecisions bounds the cache; screens are few, so hitting it means
// paths with ids are being checked and the oldest decisions can go.
const maxCachedDecisions = 1024

type decisionKey struct {
	subject, object, action string
}

type cachedDecision struct {
	allowed   bool
	expiresAt time.Time
}

// enforcementCache remembers decisions until they expire. Expired entries
// are dropped when read or when the cache is full.
type enforcementCache struct {
	ttl   time.Duration
	now   func() time.Time
	mu    sync.Mutex
	items map[decisionKey]cachedDecision
}

func newEnforcementCache(ttl time.Duration) *enforcementCache {
	return &enforcementCache{
		ttl:   ttl,
		now:   time.Now,
		items: make(map[decisionKey]cachedDecision),
	}
}

func (c *enforcementCache) get(subject, object, action string) (allowed, ok bool) {
	k := decisionKey{subject, object, action}
	c.mu.Lock()
	defer c.mu.Unlock()
	d, found := c.items[k]
	if !found {
		return false, false
	}
	if c.now().After(d.expiresAt) {
		delete(c.items, k)
		return false, false
	}
	return d.allowed, true
}

func (c *enforcementCache) set(subject, object, action string, allowed bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	now := c.now()
	if len(c.items) >= maxCachedDecisions {
		c.pruneLocked(now)
	}
	c.items[decisionKey{subject, object, action}] = cachedDecision{
		allowed:   allowed,
		expiresAt: now.Add(c.ttl),
	}
}

// pruneLocked drops expired decisions, or everything if none had expired.
func (c *enforcementCache) pruneLocked(now time.Time) {
	before := len(c.items)
	for k, d := range c.items {
		if now.After(d.expiresAt) {
			delete(c.items, k)
		}
	}
	if len(c.items) == before {
		c.items = make(map[decisionKey]cachedDecision)
	}
}

func (c *enforcementCache) clear() {
	c.mu.Lock()
	c.items = make(map[decisionKey]cachedDecision)
	c.mu.Unlock()
}

func (c *enforcementCache) len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.items)
}
