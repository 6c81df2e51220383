// Metroline - Metro Ticketing Client
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/metroline

package app

import (
	"context"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/tomtom215/metroline/internal/config"
	"github.com/tomtom215/metroline/internal/models"
	"github.com/tomtom215/metroline/internal/query"
	"github.com/tomtom215/metroline/internal/queries"
)

func testConfig(t *testing.T, backendURL string) *config.Config {
	t.Helper()
	cfg, err := config.LoadFile("")
	if err != nil {
		t.Fatalf("LoadFile() error = %v", err)
	}
	cfg.API.Legacy.BaseURL = backendURL + "/api"
	cfg.API.TS.BaseURL = backendURL + "/api"
	cfg.Session.Store = config.SessionStoreMemory
	return cfg
}

func TestNewWiresLegacyCredentials(t *testing.T) {
	t.Parallel()

	auths := make(chan string, 4)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auths <- r.Header.Get("Authorization")
		_, _ = w.Write([]byte(`{"status":200,"data":[{"id":1,"code":"BT","name":"Bến Thành","latitude":10.77,"longitude":106.7}]}`))
	}))
	defer srv.Close()

	ctx := context.Background()
	a, err := New(ctx, testConfig(t, srv.URL))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	defer a.Close()

	if err := a.Session.SetSession(ctx, &models.Profile{ID: 1, Email: "a@b.vn", Role: models.RoleUser}, "tok-1"); err != nil {
		t.Fatal(err)
	}
	stations, err := query.Fetch(ctx, a.Cache, queries.StationsKey(), a.API.ListStations)
	if err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}
	if len(stations) != 1 || stations[0].Code != "BT" {
		t.Errorf("stations = %+v", stations)
	}
	if auth := <-auths; auth != "Bearer tok-1" {
		t.Errorf("Authorization = %q", auth)
	}

	d, err := a.Guard.Authorize("/tickets")
	if err != nil || !d.Allowed {
		t.Errorf("signed-in user denied /tickets: %+v %v", d, err)
	}
	if a.I18n.Locale() == "" {
		t.Error("translator has no locale")
	}
}

func TestNewRejectsUnknownSessionStore(t *testing.T) {
	t.Parallel()

	cfg := testConfig(t, "http://127.0.0.1:1")
	cfg.Session.Store = "redis"
	if _, err := New(context.Background(), cfg); err == nil {
		t.Fatal("expected error for unknown session store")
	}
}

func TestServeRunsProxy(t *testing.T) {
	t.Parallel()

	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(r.URL.Path))
	}))
	defer backend.Close()

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	addr := ln.Addr().String()
	_ = ln.Close()

	cfg := testConfig(t, backend.URL)
	cfg.Proxy.Enabled = true
	cfg.Proxy.ListenAddr = addr
	cfg.Proxy.Target = backend.URL

	a, err := New(context.Background(), cfg)
	if err != nil {
		t.Fatal(err)
	}
	defer a.Close()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- a.Serve(ctx) }()

	var body string
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		resp, err := http.Get("http://" + addr + "/api/stations")
		if err == nil {
			buf := new(strings.Builder)
			_, _ = buf.ReadFrom(resp.Body)
			_ = resp.Body.Close()
			body = buf.String()
			break
		}
		time.Sleep(20 * time.Millisecond)
	}
	if body != "/api/stations" {
		t.Errorf("proxied body = %q", body)
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Serve() error = %v", err)
		}
	case <-time.After(3 * time.Second):
		t.Fatal("Serve did not return")
	}
}
