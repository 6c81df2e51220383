// Metroline - Metro Ticketing Client
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/metroline

package supervisor

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"sync/atomic"
	"testing"
	"time"
)

// mockService runs until cancelled, failing the first failFor starts.
type mockService struct {
	name    string
	failFor int32
	starts  atomic.Int32
}

func (m *mockService) Serve(ctx context.Context) error {
	if m.starts.Add(1) <= m.failFor {
		return errors.New("simulated failure")
	}
	<-ctx.Done()
	return ctx.Err()
}

func (m *mockService) String() string { return m.name }

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

func TestNewTreeDefaults(t *testing.T) {
	tree := NewTree(testLogger(), TreeConfig{})

	if tree.config != DefaultTreeConfig() {
		t.Errorf("zero config not defaulted: %+v", tree.config)
	}

	custom := NewTree(testLogger(), TreeConfig{FailureThreshold: 2, ShutdownTimeout: time.Second})
	if custom.config.FailureThreshold != 2 || custom.config.ShutdownTimeout != time.Second {
		t.Errorf("explicit values overwritten: %+v", custom.config)
	}
	if custom.config.FailureDecay != 30 {
		t.Errorf("expected default FailureDecay 30, got %f", custom.config.FailureDecay)
	}
}

func TestTreeStartsBothLayers(t *testing.T) {
	tree := NewTree(testLogger(), TreeConfig{ShutdownTimeout: time.Second})

	sweeper := &mockService{name: "sweeper"}
	proxy := &mockService{name: "proxy"}
	tree.AddMaintenanceService(sweeper)
	tree.AddHTTPService(proxy)

	ctx, cancel := context.WithCancel(context.Background())
	errCh := tree.ServeBackground(ctx)

	time.Sleep(100 * time.Millisecond)
	if sweeper.starts.Load() < 1 || proxy.starts.Load() < 1 {
		t.Errorf("services not started: sweeper %d proxy %d", sweeper.starts.Load(), proxy.starts.Load())
	}

	cancel()
	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, context.Canceled) {
			t.Errorf("unexpected error: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("tree did not shut down in time")
	}
}

func TestTreeRestartsFailingService(t *testing.T) {
	tree := NewTree(testLogger(), TreeConfig{
		FailureThreshold: 10,
		FailureBackoff:   10 * time.Millisecond,
		ShutdownTimeout:  time.Second,
	})

	proxy := &mockService{name: "proxy", failFor: 2}
	sweeper := &mockService{name: "sweeper"}
	tree.AddHTTPService(proxy)
	tree.AddMaintenanceService(sweeper)

	ctx, cancel := context.WithTimeout(context.Background(), 300*time.Millisecond)
	defer cancel()
	go func() { _ = tree.Serve(ctx) }()
	time.Sleep(200 * time.Millisecond)

	if proxy.starts.Load() < 3 {
		t.Errorf("expected at least 3 starts for failing service, got %d", proxy.starts.Load())
	}
	if sweeper.starts.Load() != 1 {
		t.Errorf("sibling layer restarted: %d starts", sweeper.starts.Load())
	}
}
