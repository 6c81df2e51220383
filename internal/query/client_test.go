// Metroline - Metro Ticketing Client
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/metroline

package query

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

// waitFor polls cond until it holds or the deadline passes.
func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", what)
}

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)}
}

func (f *fakeClock) Now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.now
}

func (f *fakeClock) Advance(d time.Duration) {
	f.mu.Lock()
	f.now = f.now.Add(d)
	f.mu.Unlock()
}

func counting[T any](calls *atomic.Int32, v T) func(context.Context) (T, error) {
	return func(context.Context) (T, error) {
		calls.Add(1)
		return v, nil
	}
}

func TestKeyHash(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		a, b Key
		same bool
	}{
		{"equal strings", Key{"stations"}, Key{"stations"}, true},
		{"integer widths", Key{"station", 4}, Key{"station", int64(4)}, true},
		{"string vs number", Key{"station", "4"}, Key{"station", 4}, false},
		{"length", Key{"stations"}, Key{"stations", 1}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := tt.a.Hash() == tt.b.Hash(); got != tt.same {
				t.Errorf("Hash(%v) == Hash(%v) = %v, want %v", tt.a, tt.b, got, tt.same)
			}
		})
	}
}

func TestKeyHasPrefix(t *testing.T) {
	t.Parallel()

	k := Key{"schedules", "station", 3}
	if !k.HasPrefix(Key{"schedules"}) {
		t.Error("expected prefix schedules to match")
	}
	if !k.HasPrefix(Key{}) {
		t.Error("expected empty prefix to match")
	}
	if k.HasPrefix(Key{"schedules", "route"}) {
		t.Error("unexpected match on schedules/route")
	}
	if k.HasPrefix(Key{"schedules", "station", 3, "x"}) {
		t.Error("longer prefix must not match")
	}
}

func TestObserversShareOneFetch(t *testing.T) {
	t.Parallel()

	c := NewClient(Config{})
	defer c.Close()

	var calls atomic.Int32
	release := make(chan struct{})
	fetch := func(ctx context.Context) ([]string, error) {
		calls.Add(1)
		select {
		case <-release:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
		return []string{"Ben Thanh", "Suoi Tien"}, nil
	}

	const n = 8
	observers := make([]*Observer[[]string], n)
	unsubs := make([]func(), n)
	var wg sync.WaitGroup
	for i := range observers {
		observers[i] = NewObserver(c, Key{"stations"}, fetch)
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			unsubs[i] = observers[i].Subscribe(nil)
		}(i)
	}
	wg.Wait()
	defer func() {
		for _, u := range unsubs {
			u()
		}
	}()

	close(release)
	waitFor(t, "success", func() bool {
		return observers[n-1].Result().Status == StatusSuccess
	})

	if got := calls.Load(); got != 1 {
		t.Errorf("fetch calls = %d, want 1", got)
	}
	for i, o := range observers {
		r := o.Result()
		if len(r.Data) != 2 {
			t.Errorf("observer %d data = %v", i, r.Data)
		}
	}
}

func TestFetchDeduplicatesConcurrentCallers(t *testing.T) {
	t.Parallel()

	// Late callers hit the cache instead of starting a second fetch.
	c := NewClient(Config{StaleTime: time.Hour})
	defer c.Close()

	var calls atomic.Int32
	gate := make(chan struct{})
	fetch := func(context.Context) (int, error) {
		calls.Add(1)
		<-gate
		return 7, nil
	}

	var wg sync.WaitGroup
	results := make([]int, 5)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			v, err := Fetch(context.Background(), c, Key{"fare", 1, 2}, fetch)
			if err != nil {
				t.Errorf("Fetch: %v", err)
			}
			results[i] = v
		}(i)
	}
	waitFor(t, "fetch started", func() bool { return calls.Load() > 0 })
	time.Sleep(20 * time.Millisecond)
	close(gate)
	wg.Wait()

	if got := calls.Load(); got != 1 {
		t.Errorf("fetch calls = %d, want 1", got)
	}
	for i, v := range results {
		if v != 7 {
			t.Errorf("result %d = %d, want 7", i, v)
		}
	}
}

func TestInvalidateByPrefix(t *testing.T) {
	t.Parallel()

	c := NewClient(Config{})
	defer c.Close()
	ctx := context.Background()

	var listCalls, oneCalls, routeCalls atomic.Int32
	if _, err := Fetch(ctx, c, Key{"stations", 1}, counting(&oneCalls, "Ben Thanh")); err != nil {
		t.Fatal(err)
	}
	if _, err := Fetch(ctx, c, Key{"routes"}, counting(&routeCalls, 2)); err != nil {
		t.Fatal(err)
	}

	obs := NewObserver(c, Key{"stations"}, counting(&listCalls, []string{"a"}))
	unsub := obs.Subscribe(nil)
	defer unsub()
	waitFor(t, "list loaded", func() bool { return obs.Result().Status == StatusSuccess })

	if n := c.Invalidate(Key{"stations"}); n != 2 {
		t.Errorf("Invalidate matched %d entries, want 2", n)
	}

	st, _ := c.GetState(Key{"stations", 1})
	if st.Status != StatusPending || !st.Invalidated {
		t.Errorf("unobserved entry: status=%s invalidated=%v, want pending/true", st.Status, st.Invalidated)
	}
	if !st.HasData || st.Data != "Ben Thanh" {
		t.Errorf("invalidation must keep data, got %v", st.Data)
	}
	if st, _ := c.GetState(Key{"routes"}); st.Status != StatusSuccess || st.Invalidated {
		t.Errorf("routes entry touched: %+v", st)
	}

	waitFor(t, "mounted refetch", func() bool {
		r := obs.Result()
		return listCalls.Load() == 2 && r.Status == StatusSuccess && !r.IsStale
	})
	if oneCalls.Load() != 1 {
		t.Errorf("unobserved entry refetched: %d calls", oneCalls.Load())
	}
}

func TestDisabledObserverNeverFetches(t *testing.T) {
	t.Parallel()

	c := NewClient(Config{})
	defer c.Close()

	var calls atomic.Int32
	obs := NewObserver(c, Key{"tickets", "user", 0}, counting(&calls, 1), WithEnabled(false))
	unsub := obs.Subscribe(nil)
	defer unsub()

	c.Invalidate(Key{"tickets"})
	time.Sleep(30 * time.Millisecond)

	if got := calls.Load(); got != 0 {
		t.Fatalf("disabled observer fetched %d times", got)
	}
	if r := obs.Result(); r.IsFetching {
		t.Error("disabled observer reports fetching")
	}

	obs.SetEnabled(true)
	waitFor(t, "fetch after enable", func() bool { return calls.Load() == 1 })
}

func TestRetry(t *testing.T) {
	t.Parallel()

	errBoom := errors.New("boom")
	tests := []struct {
		name      string
		opts      []Option
		wantCalls int32
	}{
		{"default no retry", nil, 1},
		{"two retries", []Option{WithRetry(2)}, 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			c := NewClient(Config{})
			defer c.Close()

			var calls atomic.Int32
			obs := NewObserver(c, Key{"profile"}, func(context.Context) (int, error) {
				calls.Add(1)
				return 0, errBoom
			}, tt.opts...)
			unsub := obs.Subscribe(nil)
			defer unsub()

			waitFor(t, "error", func() bool { return obs.Result().Status == StatusError })
			if got := calls.Load(); got != tt.wantCalls {
				t.Errorf("calls = %d, want %d", got, tt.wantCalls)
			}
			if !errors.Is(obs.Result().Err, errBoom) {
				t.Errorf("Err = %v", obs.Result().Err)
			}
		})
	}
}

func TestErrorKeepsLastData(t *testing.T) {
	t.Parallel()

	c := NewClient(Config{})
	defer c.Close()
	ctx := context.Background()
	key := Key{"orders"}

	if _, err := Fetch(ctx, c, key, func(context.Context) (int, error) { return 3, nil }); err != nil {
		t.Fatal(err)
	}
	errDown := errors.New("down")
	if _, err := Fetch(ctx, c, key, func(context.Context) (int, error) { return 0, errDown }); !errors.Is(err, errDown) {
		t.Fatalf("second Fetch err = %v, want %v", err, errDown)
	}

	st, _ := c.GetState(key)
	if st.Status != StatusError {
		t.Errorf("status = %s, want error", st.Status)
	}
	if v, ok := GetData[int](c, key); !ok || v != 3 {
		t.Errorf("GetData = %v, %v; want 3, true", v, ok)
	}
}

func TestUnsubscribeCancelsFetch(t *testing.T) {
	t.Parallel()

	c := NewClient(Config{})
	defer c.Close()

	started := make(chan struct{})
	cancelled := make(chan error, 1)
	obs := NewObserver(c, Key{"stations"}, func(ctx context.Context) (int, error) {
		close(started)
		<-ctx.Done()
		cancelled <- ctx.Err()
		return 0, ctx.Err()
	})

	var mu sync.Mutex
	var seen []Status
	unsub := obs.Subscribe(func(r Result[int]) {
		mu.Lock()
		seen = append(seen, r.Status)
		mu.Unlock()
	})
	<-started
	unsub()

	select {
	case err := <-cancelled:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("ctx err = %v, want context.Canceled", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("fetch was not cancelled")
	}

	st, _ := c.GetState(Key{"stations"})
	if st.Fetching || st.Status != StatusIdle {
		t.Errorf("after abort: status=%s fetching=%v, want idle/false", st.Status, st.Fetching)
	}
	mu.Lock()
	defer mu.Unlock()
	if len(seen) == 0 || seen[0] != StatusPending {
		t.Errorf("first delivered status = %v, want pending", seen)
	}
}

func TestStaleTimeServesCache(t *testing.T) {
	t.Parallel()

	clock := newFakeClock()
	c := NewClient(Config{StaleTime: time.Minute, Now: clock.Now})
	defer c.Close()
	ctx := context.Background()

	var calls atomic.Int32
	fetch := counting(&calls, "v")
	for i := 0; i < 3; i++ {
		if _, err := Fetch(ctx, c, Key{"ticket-types"}, fetch); err != nil {
			t.Fatal(err)
		}
	}
	if calls.Load() != 1 {
		t.Errorf("calls within stale time = %d, want 1", calls.Load())
	}

	clock.Advance(time.Minute)
	if _, err := Fetch(ctx, c, Key{"ticket-types"}, fetch); err != nil {
		t.Fatal(err)
	}
	if calls.Load() != 2 {
		t.Errorf("calls after stale time = %d, want 2", calls.Load())
	}
}

func TestSetData(t *testing.T) {
	t.Parallel()

	c := NewClient(Config{StaleTime: time.Hour})
	defer c.Close()

	c.SetData(Key{"users", "me"}, "an")
	var calls atomic.Int32
	v, err := Fetch(context.Background(), c, Key{"users", "me"}, counting(&calls, "other"))
	if err != nil {
		t.Fatal(err)
	}
	if v != "an" || calls.Load() != 0 {
		t.Errorf("Fetch = %q with %d calls; want seeded value without fetching", v, calls.Load())
	}
}

func TestGarbageCollect(t *testing.T) {
	t.Parallel()

	clock := newFakeClock()
	c := NewClient(Config{GCTime: 5 * time.Minute, Now: clock.Now})
	defer c.Close()
	ctx := context.Background()

	var calls atomic.Int32
	if _, err := Fetch(ctx, c, Key{"routes"}, counting(&calls, 1)); err != nil {
		t.Fatal(err)
	}
	obs := NewObserver(c, Key{"stations"}, counting(&calls, 2))
	unsub := obs.Subscribe(nil)
	defer unsub()
	waitFor(t, "observer loaded", func() bool { return obs.Result().Status == StatusSuccess })

	clock.Advance(4 * time.Minute)
	if n := c.GarbageCollect(); n != 0 {
		t.Errorf("collected %d entries before GCTime", n)
	}
	clock.Advance(time.Minute)
	if n := c.GarbageCollect(); n != 1 {
		t.Errorf("collected %d entries, want 1", n)
	}
	if _, ok := c.GetState(Key{"routes"}); ok {
		t.Error("routes entry survived collection")
	}
	if _, ok := c.GetState(Key{"stations"}); !ok {
		t.Error("observed entry was collected")
	}
}

func TestClear(t *testing.T) {
	t.Parallel()

	c := NewClient(Config{})
	defer c.Close()

	c.SetData(Key{"orders", "me"}, 1)
	var calls atomic.Int32
	obs := NewObserver(c, Key{"users", "me"}, counting(&calls, "u"), WithEnabled(false))
	unsub := obs.Subscribe(nil)
	defer unsub()
	c.SetData(Key{"users", "me"}, "u")

	c.Clear()

	if _, ok := c.GetState(Key{"orders", "me"}); ok {
		t.Error("unobserved entry survived Clear")
	}
	st, ok := c.GetState(Key{"users", "me"})
	if !ok {
		t.Fatal("observed entry removed by Clear")
	}
	if st.HasData || st.Status != StatusIdle {
		t.Errorf("observed entry after Clear: %+v", st)
	}
	if s := c.Stats(); s.Entries != 1 || s.Observed != 1 {
		t.Errorf("Stats = %+v", s)
	}
}

func TestObserverSetKey(t *testing.T) {
	t.Parallel()

	c := NewClient(Config{})
	defer c.Close()

	fetchStation := func(id int) func(context.Context) (int, error) {
		return func(context.Context) (int, error) { return id * 10, nil }
	}
	obs := NewObserver(c, Key{"stations", 1}, fetchStation(1))
	unsub := obs.Subscribe(nil)
	defer unsub()
	waitFor(t, "first key", func() bool { return obs.Result().Data == 10 })

	obs.SetKey(Key{"stations", 2}, fetchStation(2))
	waitFor(t, "second key", func() bool { return obs.Result().Data == 20 })

	if s := c.Stats(); s.Observed != 1 {
		t.Errorf("observed entries = %d, want 1", s.Observed)
	}
}

func TestMutationInvalidates(t *testing.T) {
	t.Parallel()

	c := NewClient(Config{StaleTime: time.Hour})
	defer c.Close()
	ctx := context.Background()

	c.SetData(Key{"stations"}, []string{"a"})
	c.SetData(Key{"routes"}, []string{"r"})

	var succeeded atomic.Bool
	create := NewMutation(c, func(_ context.Context, name string) (int, error) {
		if name == "" {
			return 0, errors.New("name required")
		}
		return 9, nil
	}).Invalidates(Key{"stations"}).
		InvalidatesWith(func(_ string, id int) []Key { return []Key{{"station", id}} }).
		OnSuccess(func(string, int) { succeeded.Store(true) })

	if _, err := create.Mutate(ctx, ""); err == nil {
		t.Fatal("expected error")
	}
	if st := create.State(); st.Status != StatusError {
		t.Errorf("state = %s, want error", st.Status)
	}
	if st, _ := c.GetState(Key{"stations"}); st.Invalidated {
		t.Error("failed mutation invalidated the cache")
	}

	id, err := create.Mutate(ctx, "Ba Son")
	if err != nil || id != 9 {
		t.Fatalf("Mutate = %d, %v", id, err)
	}
	if !succeeded.Load() {
		t.Error("OnSuccess not called")
	}
	if st, _ := c.GetState(Key{"stations"}); !st.Invalidated || st.Status != StatusPending {
		t.Errorf("stations after mutation: %+v", st)
	}
	if st, _ := c.GetState(Key{"routes"}); st.Invalidated {
		t.Error("unrelated key invalidated")
	}

	create.Reset()
	if st := create.State(); st.Status != StatusIdle {
		t.Errorf("after Reset status = %s", st.Status)
	}
}

func TestInvalidateBeforeStartKeepsWaiterResult(t *testing.T) {
	t.Parallel()

	c := NewClient(Config{})
	defer c.Close()

	var calls atomic.Int32
	fetch := wrap(func(context.Context) (int, error) {
		calls.Add(1)
		return 9, nil
	})

	for i := 0; i < 50; i++ {
		key := Key{"stations", i}

		// The same steps Fetch takes, with an Invalidate racing the start
		// of the shared call.
		c.mu.Lock()
		e := c.entryLocked(key)
		e.fetch = fetch
		e.waiters++
		ch := c.launchLocked(e)
		c.mu.Unlock()
		c.Invalidate(Key{"stations"})

		r := <-ch
		c.mu.Lock()
		e.waiters--
		c.mu.Unlock()

		if r.Err != nil {
			t.Fatalf("round %d: waiter error = %v", i, r.Err)
		}
		if v, _ := r.Val.(int); v != 9 {
			t.Fatalf("round %d: waiter value = %v, want 9", i, r.Val)
		}
	}
	if calls.Load() == 0 {
		t.Error("fetch never ran")
	}
}
