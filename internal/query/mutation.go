// Metroline - Metro Ticketing Client
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/metroline

package query

import (
	"context"
	"sync"
)

// MutationState is the state of the last Mutate call.
type MutationState[Out any] struct {
	Status Status
	Data   Out
	Err    error
}

// IsPending reports whether a call is in progress.
func (s MutationState[Out]) IsPending() bool { return s.Status == StatusPending }

// Mutation wraps a write. After a successful call it invalidates the keys it
// was configured with so mounted readers re-fetch.
//
//	m := query.NewMutation(c, api.CreateStation).
//		Invalidates(query.Key{"stations"})
type Mutation[In, Out any] struct {
	client *Client
	fn     func(context.Context, In) (Out, error)

	keys      []Key
	keysFor   func(In, Out) []Key
	onSuccess func(In, Out)

	mu    sync.Mutex
	state MutationState[Out]
}

// NewMutation creates an idle mutation around fn.
func NewMutation[In, Out any](c *Client, fn func(context.Context, In) (Out, error)) *Mutation[In, Out] {
	return &Mutation[In, Out]{client: c, fn: fn}
}

// Invalidates adds static prefixes invalidated after every success.
func (m *Mutation[In, Out]) Invalidates(keys ...Key) *Mutation[In, Out] {
	for _, k := range keys {
		m.keys = append(m.keys, k.clone())
	}
	return m
}

// InvalidatesWith derives extra prefixes from the input and the response.
func (m *Mutation[In, Out]) InvalidatesWith(fn func(In, Out) []Key) *Mutation[In, Out] {
	m.keysFor = fn
	return m
}

// OnSuccess runs fn after a successful call, before invalidation.
func (m *Mutation[In, Out]) OnSuccess(fn func(In, Out)) *Mutation[In, Out] {
	m.onSuccess = fn
	return m
}

// Mutate performs the write. Failures leave the cache untouched.
func (m *Mutation[In, Out]) Mutate(ctx context.Context, in In) (Out, error) {
	m.mu.Lock()
	m.state = MutationState[Out]{Status: StatusPending}
	m.mu.Unlock()

	out, err := m.fn(ctx, in)

	m.mu.Lock()
	if err != nil {
		m.state = MutationState[Out]{Status: StatusError, Err: err}
	} else {
		m.state = MutationState[Out]{Status: StatusSuccess, Data: out}
	}
	m.mu.Unlock()

	if err != nil {
		var zero Out
		return zero, err
	}

	if m.onSuccess != nil {
		m.onSuccess(in, out)
	}
	keys := m.keys
	if m.keysFor != nil {
		keys = append(append([]Key(nil), keys...), m.keysFor(in, out)...)
	}
	if len(keys) > 0 {
		m.client.Invalidate(keys...)
	}
	return out, nil
}

// State returns the state of the last call.
func (m *Mutation[In, Out]) State() MutationState[Out] {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// Reset returns the mutation to idle.
func (m *Mutation[In, Out]) Reset() {
	m.mu.Lock()
	m.state = MutationState[Out]{}
	m.mu.Unlock()
}
