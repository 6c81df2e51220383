// Metroline - Metro Ticketing Client
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/metroline

package query

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"

	"github.com/tomtom215/metroline/internal/logging"
	"github.com/tomtom215/metroline/internal/metrics"
)

// Status is the lifecycle state of one cache entry.
type Status int

const (
	StatusIdle Status = iota
	StatusPending
	StatusSuccess
	StatusError
)

func (s Status) String() string {
	switch s {
	case StatusIdle:
		return "idle"
	case StatusPending:
		return "pending"
	case StatusSuccess:
		return "success"
	case StatusError:
		return "error"
	default:
		return "unknown"
	}
}

// ErrAborted is returned to waiters of a fetch that was cancelled because
// nobody was interested in it anymore.
var ErrAborted = errors.New("query: fetch aborted")

// State is a snapshot of one entry.
type State struct {
	Status Status

	// Data is the last successfully fetched value. It survives later errors
	// and invalidations.
	Data    any
	HasData bool

	Err     error
	ErrorAt time.Time

	// UpdatedAt is the completion time of the last successful fetch.
	UpdatedAt time.Time

	Fetching    bool
	Invalidated bool

	// DataUpdates counts successful fetches and SetData calls.
	DataUpdates int
}

// restingStatus is the status an entry falls back to when a fetch is abandoned.
func (s *State) restingStatus() Status {
	switch {
	case s.HasData:
		return StatusSuccess
	case s.Err != nil:
		return StatusError
	default:
		return StatusIdle
	}
}

// FetchFunc loads the value of one key. The context is cancelled when every
// subscriber has unmounted.
type FetchFunc func(ctx context.Context) (any, error)

// Config tunes a Client. Zero values are valid.
type Config struct {
	StaleTime  time.Duration
	GCTime     time.Duration
	Retry      int
	RetryDelay time.Duration

	// Now replaces time.Now in tests.
	Now func() time.Time
}

type subscriber struct {
	enabled bool
	notify  func(State)
}

type entry struct {
	key   Key
	hash  string
	state State
	fetch FetchFunc
	retry int

	subs    map[*subscriber]struct{}
	waiters int

	cancel     context.CancelFunc
	generation uint64

	inactiveSince time.Time
}

func (e *entry) active() bool {
	for s := range e.subs {
		if s.enabled {
			return true
		}
	}
	return false
}

func (e *entry) observed() bool {
	return len(e.subs) > 0 || e.waiters > 0
}

// Client is the query cache. It is safe for concurrent use and is normally
// created once per process by the application container.
type Client struct {
	cfg    Config
	log    zerolog.Logger
	group  singleflight.Group
	ctx    context.Context
	stop   context.CancelFunc
	mu     sync.Mutex
	closed bool

	entries map[string]*entry
}

// NewClient creates an empty cache.
func NewClient(cfg Config) *Client {
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if cfg.Retry < 0 {
		cfg.Retry = 0
	}
	ctx, stop := context.WithCancel(context.Background())
	return &Client{
		cfg:     cfg,
		log:     logging.WithComponent("query"),
		ctx:     ctx,
		stop:    stop,
		entries: make(map[string]*entry),
	}
}

// Close cancels every in-flight fetch. The cache keeps answering reads.
func (c *Client) Close() {
	c.mu.Lock()
	c.closed = true
	c.mu.Unlock()
	c.stop()
}

// entryLocked returns the entry for key, creating it when missing.
func (c *Client) entryLocked(key Key) *entry {
	hash := key.Hash()
	if e, ok := c.entries[hash]; ok {
		return e
	}
	e := &entry{
		key:           key.clone(),
		hash:          hash,
		subs:          make(map[*subscriber]struct{}),
		retry:         c.cfg.Retry,
		inactiveSince: c.cfg.Now(),
	}
	c.entries[hash] = e
	metrics.QueryEntries.Inc()
	return e
}

// stale reports whether a mounted observer should trigger a fetch.
func (c *Client) staleLocked(e *entry) bool {
	if e.state.Invalidated || !e.state.HasData || e.state.Status == StatusError {
		return true
	}
	return c.cfg.Now().Sub(e.state.UpdatedAt) >= c.cfg.StaleTime
}

// launchLocked joins the in-flight fetch of e or starts one. A new fetch
// enters pending at once so subscribers never observe a stale idle state.
func (c *Client) launchLocked(e *entry) <-chan singleflight.Result {
	if e.state.Fetching {
		metrics.QueryDeduplicated.Inc()
		gen := e.generation
		return c.group.DoChan(e.hash, func() (any, error) {
			return c.run(e, gen)
		})
	}
	e.generation++
	gen := e.generation
	e.state.Fetching = true
	e.state.Status = StatusPending
	// A finished call may still sit in the group until its goroutine returns.
	c.group.Forget(e.hash)
	return c.group.DoChan(e.hash, func() (any, error) {
		return c.run(e, gen)
	})
}

// run executes one fetch of e. gen is the generation assigned at launch;
// aborts and invalidations bump it so late results are dropped.
func (c *Client) run(e *entry, gen uint64) (any, error) {
	c.mu.Lock()
	if gen != e.generation {
		if e.waiters == 0 || c.closed {
			// Unmounted before the fetch got going.
			c.mu.Unlock()
			return nil, ErrAborted
		}
		// Invalidated before start. Blocked callers still get an answer,
		// the entry takes the next fetch's.
		ctx, cancel := context.WithCancel(c.ctx)
		fetch, retry := e.fetch, e.retry
		c.mu.Unlock()
		data, err := c.attempt(ctx, fetch, retry)
		cancel()
		metrics.RecordQueryFetch(e.key.root(), "cancelled")
		return data, err
	}
	if c.closed {
		e.state.Fetching = false
		e.state.Status = e.state.restingStatus()
		c.mu.Unlock()
		return nil, ErrAborted
	}
	ctx, cancel := context.WithCancel(c.ctx)
	e.cancel = cancel
	fetch, retry := e.fetch, e.retry
	notify := c.snapshotLocked(e)
	c.mu.Unlock()
	notify()

	data, err := c.attempt(ctx, fetch, retry)
	cancel()

	c.mu.Lock()
	if gen != e.generation {
		// Aborted by unmount or superseded by invalidation.
		c.mu.Unlock()
		metrics.RecordQueryFetch(e.key.root(), "cancelled")
		if err == nil {
			return data, nil
		}
		return nil, err
	}
	e.cancel = nil
	e.state.Fetching = false
	now := c.cfg.Now()
	if err != nil {
		e.state.Status = StatusError
		e.state.Err = err
		e.state.ErrorAt = now
		metrics.RecordQueryFetch(e.key.root(), "error")
		c.log.Debug().Str("key", e.hash).Err(err).Msg("Fetch failed")
	} else {
		e.state.Status = StatusSuccess
		e.state.Data = data
		e.state.HasData = true
		e.state.Err = nil
		e.state.UpdatedAt = now
		e.state.Invalidated = false
		e.state.DataUpdates++
		metrics.RecordQueryFetch(e.key.root(), "success")
	}
	if !e.observed() {
		e.inactiveSince = now
	}
	notify = c.snapshotLocked(e)
	c.mu.Unlock()
	notify()
	return data, err
}

// attempt calls fetch up to retry+1 times.
func (c *Client) attempt(ctx context.Context, fetch FetchFunc, retry int) (any, error) {
	var lastErr error
	for i := 0; i <= retry; i++ {
		if i > 0 && c.cfg.RetryDelay > 0 {
			timer := time.NewTimer(c.cfg.RetryDelay)
			select {
			case <-ctx.Done():
				timer.Stop()
				return nil, lastErr
			case <-timer.C:
			}
		}
		data, err := fetch(ctx)
		if err == nil {
			return data, nil
		}
		lastErr = err
		if ctx.Err() != nil {
			break
		}
	}
	return nil, lastErr
}

// abortLocked cancels the in-flight fetch of e and restores its resting status.
func (c *Client) abortLocked(e *entry) {
	if !e.state.Fetching {
		return
	}
	if e.cancel != nil {
		e.cancel()
		e.cancel = nil
	}
	e.generation++
	e.state.Fetching = false
	e.state.Status = e.state.restingStatus()
	if e.state.Invalidated {
		e.state.Status = StatusPending
	}
	c.group.Forget(e.hash)
}

// snapshotLocked returns a func delivering the current state to every
// subscriber. Call it after releasing c.mu.
func (c *Client) snapshotLocked(e *entry) func() {
	if len(e.subs) == 0 {
		return func() {}
	}
	st := e.state
	fns := make([]func(State), 0, len(e.subs))
	for s := range e.subs {
		if s.notify != nil {
			fns = append(fns, s.notify)
		}
	}
	return func() {
		for _, fn := range fns {
			fn(st)
		}
	}
}

// subscribe registers s on key and fetches when needed.
func (c *Client) subscribe(key Key, fetch FetchFunc, retry int, s *subscriber) *entry {
	c.mu.Lock()
	e := c.entryLocked(key)
	e.subs[s] = struct{}{}
	if fetch != nil {
		e.fetch = fetch
		e.retry = retry
	}
	if s.enabled && e.fetch != nil && !e.state.Fetching && c.staleLocked(e) {
		c.launchLocked(e)
	} else if s.enabled && e.state.Fetching {
		metrics.QueryDeduplicated.Inc()
	}
	notify := c.snapshotLocked(e)
	c.mu.Unlock()
	notify()
	return e
}

// unsubscribe removes s. When it was the last interested party the
// in-flight fetch is cancelled.
func (c *Client) unsubscribe(e *entry, s *subscriber) {
	c.mu.Lock()
	delete(e.subs, s)
	if !e.observed() {
		c.abortLocked(e)
		e.inactiveSince = c.cfg.Now()
	}
	c.mu.Unlock()
}

// enable flips a subscriber and fetches when it becomes enabled.
func (c *Client) enable(e *entry, s *subscriber, enabled bool) {
	c.mu.Lock()
	if s.enabled == enabled {
		c.mu.Unlock()
		return
	}
	s.enabled = enabled
	notify := func() {}
	if _, mounted := e.subs[s]; mounted && enabled && e.fetch != nil && !e.state.Fetching && c.staleLocked(e) {
		c.launchLocked(e)
		notify = c.snapshotLocked(e)
	}
	c.mu.Unlock()
	notify()
}

// Fetch returns the data of key, fetching it unless a fresh value is cached.
// Concurrent callers and mounted observers share one request.
func Fetch[T any](ctx context.Context, c *Client, key Key, fetch func(context.Context) (T, error)) (T, error) {
	var zero T
	c.mu.Lock()
	e := c.entryLocked(key)
	e.fetch = wrap(fetch)
	if !e.state.Fetching && !c.staleLocked(e) {
		data, _ := e.state.Data.(T)
		c.mu.Unlock()
		return data, nil
	}
	e.waiters++
	ch := c.launchLocked(e)
	c.mu.Unlock()

	release := func() {
		c.mu.Lock()
		e.waiters--
		if !e.observed() {
			c.abortLocked(e)
			e.inactiveSince = c.cfg.Now()
		}
		c.mu.Unlock()
	}

	select {
	case r := <-ch:
		release()
		if r.Err != nil {
			return zero, r.Err
		}
		data, _ := r.Val.(T)
		return data, nil
	case <-ctx.Done():
		release()
		return zero, ctx.Err()
	}
}

func wrap[T any](fetch func(context.Context) (T, error)) FetchFunc {
	return func(ctx context.Context) (any, error) {
		v, err := fetch(ctx)
		if err != nil {
			return nil, err
		}
		return v, nil
	}
}

// Invalidate marks every entry whose key starts with one of prefixes as
// stale and pending. Entries with an enabled subscriber re-fetch at once;
// the others re-fetch on their next mount. Data is never cleared.
// It returns the number of matching entries.
func (c *Client) Invalidate(prefixes ...Key) int {
	return c.invalidateWhere(func(k Key) bool { return matchesAny(k, prefixes) })
}

func (c *Client) invalidateWhere(match func(Key) bool) int {
	c.mu.Lock()
	var notifies []func()
	matched := 0
	for _, e := range c.entries {
		if !match(e.key) {
			continue
		}
		matched++
		if e.state.Fetching && e.waiters == 0 {
			c.abortLocked(e)
		} else if e.state.Fetching {
			// Waiters keep the old result; the entry takes the next one.
			e.generation++
			e.state.Fetching = false
			c.group.Forget(e.hash)
		}
		e.state.Invalidated = true
		e.state.Status = StatusPending
		if e.active() && e.fetch != nil {
			c.launchLocked(e)
		}
		notifies = append(notifies, c.snapshotLocked(e))
	}
	c.mu.Unlock()

	metrics.QueryInvalidations.Add(float64(matched))
	for _, n := range notifies {
		n()
	}
	return matched
}

func matchesAny(k Key, prefixes []Key) bool {
	for _, p := range prefixes {
		if k.HasPrefix(p) {
			return true
		}
	}
	return false
}

// SetData stores data under key as if fetched now. Used for optimistic
// updates and for seeding from mutation responses.
func (c *Client) SetData(key Key, data any) {
	c.mu.Lock()
	e := c.entryLocked(key)
	c.abortLocked(e)
	e.state.Data = data
	e.state.HasData = true
	e.state.Status = StatusSuccess
	e.state.Err = nil
	e.state.Invalidated = false
	e.state.UpdatedAt = c.cfg.Now()
	e.state.DataUpdates++
	notify := c.snapshotLocked(e)
	c.mu.Unlock()
	notify()
}

// GetState returns the snapshot of key.
func (c *Client) GetState(key Key) (State, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[key.Hash()]
	if !ok {
		return State{}, false
	}
	return e.state, true
}

// GetData returns the cached data of key, if any.
func GetData[T any](c *Client, key Key) (T, bool) {
	st, ok := c.GetState(key)
	if !ok || !st.HasData {
		var zero T
		return zero, false
	}
	v, ok := st.Data.(T)
	return v, ok
}

// Remove drops every unobserved entry matching one of prefixes.
func (c *Client) Remove(prefixes ...Key) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	removed := 0
	for hash, e := range c.entries {
		if matchesAny(e.key, prefixes) && !e.observed() {
			c.abortLocked(e)
			delete(c.entries, hash)
			removed++
		}
	}
	metrics.QueryEntries.Sub(float64(removed))
	return removed
}

// Clear cancels every fetch and forgets every value. Unobserved entries are
// removed; observed ones return to idle and their subscribers are notified.
// Called on login and logout.
func (c *Client) Clear() {
	c.mu.Lock()
	var notifies []func()
	removed := 0
	for hash, e := range c.entries {
		c.abortLocked(e)
		if !e.observed() {
			delete(c.entries, hash)
			removed++
			continue
		}
		e.state = State{}
		notifies = append(notifies, c.snapshotLocked(e))
	}
	c.mu.Unlock()

	metrics.QueryEntries.Sub(float64(removed))
	for _, n := range notifies {
		n()
	}
	c.log.Debug().Int("removed", removed).Msg("Cache cleared")
}

// GarbageCollect removes entries that have been unobserved for at least
// GCTime. It returns the number removed.
func (c *Client) GarbageCollect() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	now := c.cfg.Now()
	removed := 0
	for hash, e := range c.entries {
		if e.observed() || e.state.Fetching {
			continue
		}
		if now.Sub(e.inactiveSince) >= c.cfg.GCTime {
			delete(c.entries, hash)
			removed++
		}
	}
	if removed > 0 {
		metrics.QueryEntries.Sub(float64(removed))
		metrics.QueryEvictions.Add(float64(removed))
		c.log.Debug().Int("removed", removed).Msg("Collected inactive entries")
	}
	return removed
}

// Stats summarises the cache.
type Stats struct {
	Entries  int
	Observed int
	Fetching int
	Stale    int
}

// Stats returns counts over all entries.
func (c *Client) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()
	var s Stats
	for _, e := range c.entries {
		s.Entries++
		if e.observed() {
			s.Observed++
		}
		if e.state.Fetching {
			s.Fetching++
		}
		if e.state.Invalidated {
			s.Stale++
		}
	}
	return s
}
