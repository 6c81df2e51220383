// Metroline - Metro Ticketing Client
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/metroline

package query

import (
	"context"
	"sync"
	"time"
)

// Result is the typed view of an entry delivered to observers.
type Result[T any] struct {
	Status    Status
	Data      T
	HasData   bool
	Err       error
	UpdatedAt time.Time

	// IsFetching is true while a request is in flight, including background
	// re-fetches of data that is still shown.
	IsFetching bool

	// IsStale is true between an invalidation and the next successful fetch.
	IsStale bool
}

// IsLoading reports a first load: pending with nothing to show yet.
func (r Result[T]) IsLoading() bool {
	return r.Status == StatusPending && !r.HasData
}

func toResult[T any](st State) Result[T] {
	r := Result[T]{
		Status:     st.Status,
		HasData:    st.HasData,
		Err:        st.Err,
		UpdatedAt:  st.UpdatedAt,
		IsFetching: st.Fetching,
		IsStale:    st.Invalidated,
	}
	if st.HasData {
		if v, ok := st.Data.(T); ok {
			r.Data = v
		}
	}
	return r
}

// Option configures an Observer.
type Option func(*observerOptions)

type observerOptions struct {
	enabled bool
	retry   int
}

// WithEnabled sets the initial enabled condition. A disabled observer never
// triggers a fetch but still receives updates of its key.
func WithEnabled(enabled bool) Option {
	return func(o *observerOptions) { o.enabled = enabled }
}

// WithRetry overrides the retry count of this observer's fetches.
func WithRetry(n int) Option {
	return func(o *observerOptions) {
		if n >= 0 {
			o.retry = n
		}
	}
}

// Observer binds one consumer (a screen, a CLI command) to one key. It is the
// hook of the cache: Subscribe mounts, the returned func unmounts.
type Observer[T any] struct {
	client *Client

	mu       sync.Mutex
	key      Key
	fetch    FetchFunc
	retry    int
	sub      *subscriber
	entry    *entry
	listener func(Result[T])
	enabled  bool
}

// NewObserver creates an unmounted observer.
func NewObserver[T any](c *Client, key Key, fetch func(context.Context) (T, error), opts ...Option) *Observer[T] {
	o := observerOptions{enabled: true, retry: c.cfg.Retry}
	for _, opt := range opts {
		opt(&o)
	}
	return &Observer[T]{
		client:  c,
		key:     key.clone(),
		fetch:   wrap(fetch),
		retry:   o.retry,
		enabled: o.enabled,
	}
}

// Key returns the observed key.
func (o *Observer[T]) Key() Key {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.key.clone()
}

// Subscribe mounts the observer. listener receives the current state at once
// and every later change, possibly from another goroutine. Calling the
// returned func unmounts; when no other subscriber remains the in-flight
// fetch is cancelled.
func (o *Observer[T]) Subscribe(listener func(Result[T])) (unsubscribe func()) {
	o.unmount()

	o.mu.Lock()
	o.listener = listener
	o.mu.Unlock()
	sub := o.mount()

	var once sync.Once
	return func() {
		once.Do(func() {
			o.mu.Lock()
			current := o.sub == sub
			o.mu.Unlock()
			if current {
				o.unmount()
			}
		})
	}
}

// mount registers a fresh subscriber. The client is called without o.mu held
// so listeners may read the observer.
func (o *Observer[T]) mount() *subscriber {
	o.mu.Lock()
	listener := o.listener
	s := &subscriber{enabled: o.enabled}
	s.notify = func(st State) {
		if listener != nil {
			listener(toResult[T](st))
		}
	}
	key, fetch, retry := o.key, o.fetch, o.retry
	o.sub = s
	o.mu.Unlock()

	e := o.client.subscribe(key, fetch, retry, s)

	o.mu.Lock()
	if o.sub != s {
		// Unmounted while subscribing.
		o.mu.Unlock()
		o.client.unsubscribe(e, s)
		return s
	}
	o.entry = e
	o.mu.Unlock()
	return s
}

func (o *Observer[T]) unmount() {
	o.mu.Lock()
	e, s := o.entry, o.sub
	o.entry, o.sub = nil, nil
	o.mu.Unlock()
	if e != nil {
		o.client.unsubscribe(e, s)
	}
}

// Result returns the current state of the observed key.
func (o *Observer[T]) Result() Result[T] {
	st, _ := o.client.GetState(o.Key())
	return toResult[T](st)
}

// SetEnabled flips the enabled condition. Enabling a mounted observer fetches
// when the data is missing or stale.
func (o *Observer[T]) SetEnabled(enabled bool) {
	o.mu.Lock()
	o.enabled = enabled
	e, s := o.entry, o.sub
	o.mu.Unlock()
	if e != nil {
		o.client.enable(e, s, enabled)
	}
}

// SetKey moves the observer to a new key, for example when a route
// parameter changes. A mounted observer re-subscribes and the new key enters
// pending unless fresh data is cached. A nil fetch keeps the current one.
func (o *Observer[T]) SetKey(key Key, fetch func(context.Context) (T, error)) {
	o.mu.Lock()
	if key.Hash() == o.key.Hash() && fetch == nil {
		o.mu.Unlock()
		return
	}
	mounted := o.sub != nil
	o.mu.Unlock()

	if mounted {
		o.unmount()
	}

	o.mu.Lock()
	o.key = key.clone()
	if fetch != nil {
		o.fetch = wrap(fetch)
	}
	o.mu.Unlock()

	if mounted {
		o.mount()
	}
}

// Refetch forces a fetch of the observed key even when the data is fresh and
// waits for it. Disabled observers return the cached value.
func (o *Observer[T]) Refetch(ctx context.Context) (T, error) {
	o.mu.Lock()
	key, fetch, enabled := o.key.clone(), o.fetch, o.enabled
	o.mu.Unlock()

	if !enabled {
		r := o.Result()
		return r.Data, r.Err
	}
	hash := key.Hash()
	o.client.invalidateWhere(func(k Key) bool { return k.Hash() == hash })
	return Fetch(ctx, o.client, key, func(ctx context.Context) (T, error) {
		v, err := fetch(ctx)
		if err != nil {
			var zero T
			return zero, err
		}
		t, _ := v.(T)
		return t, nil
	})
}
