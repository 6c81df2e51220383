// Metroline - Metro Ticketing Client
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/metroline

package main

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeConfig(t *testing.T, backendURL string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	body := `api:
  legacy:
    base_url: ` + backendURL + `/api
  ts:
    base_url: ` + backendURL + `/api
session:
  store: memory
logging:
  level: error
`
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func newBackend(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/stations":
			_, _ = w.Write([]byte(`{"status":200,"data":[{"id":1,"code":"BT","name":"Bến Thành","latitude":10.77,"longitude":106.7}]}`))
		case "/api/auth/login":
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"status":401,"message":"Email hoặc mật khẩu không đúng"}`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestRunStations(t *testing.T) {
	srv := newBackend(t)
	var out, errOut bytes.Buffer

	err := run(context.Background(), []string{"--config", writeConfig(t, srv.URL), "stations"}, &out, &errOut)
	if err != nil {
		t.Fatalf("run() error = %v, stderr %s", err, errOut.String())
	}
	if !strings.Contains(out.String(), `"code": "BT"`) {
		t.Errorf("stdout = %s", out.String())
	}
}

func TestRunRejectsNegativeID(t *testing.T) {
	srv := newBackend(t)
	cfg := writeConfig(t, srv.URL)

	for _, cmd := range []string{"stations", "routes"} {
		t.Run(cmd, func(t *testing.T) {
			var out, errOut bytes.Buffer
			err := run(context.Background(), []string{"--config", cfg, cmd, "--id=-3"}, &out, &errOut)
			if err == nil {
				t.Fatal("expected error for a negative id")
			}
			if out.Len() != 0 {
				t.Errorf("stdout = %s, want nothing", out.String())
			}
		})
	}
}

func TestRunTicketsRequiresLogin(t *testing.T) {
	srv := newBackend(t)
	var out, errOut bytes.Buffer

	err := run(context.Background(), []string{"--config", writeConfig(t, srv.URL), "tickets"}, &out, &errOut)
	if err == nil {
		t.Fatal("expected error when signed out")
	}
	if !strings.Contains(errOut.String(), "metroline login") {
		t.Errorf("stderr = %s", errOut.String())
	}
}

func TestRunLoginShowsServerMessage(t *testing.T) {
	srv := newBackend(t)
	var out, errOut bytes.Buffer

	args := []string{"--config", writeConfig(t, srv.URL), "login", "--email", "an@example.com", "--password", "wrong-pass"}
	if err := run(context.Background(), args, &out, &errOut); err == nil {
		t.Fatal("expected login failure")
	}
	if !strings.Contains(errOut.String(), "Email hoặc mật khẩu không đúng") {
		t.Errorf("stderr = %s", errOut.String())
	}
}

func TestRunUsage(t *testing.T) {
	var out, errOut bytes.Buffer

	if err := run(context.Background(), nil, &out, &errOut); err == nil {
		t.Error("expected error without a command")
	}
	if err := run(context.Background(), []string{"teleport"}, &out, &errOut); err == nil {
		t.Error("expected error for unknown command")
	}
	if !strings.Contains(errOut.String(), "stations") {
		t.Errorf("usage not printed: %s", errOut.String())
	}
}

func TestPosixLocale(t *testing.T) {
	tests := map[string]string{
		"en_US.UTF-8": "en-US",
		"vi_VN":       "vi-VN",
		"C.UTF-8":     "",
		"POSIX":       "",
		"":            "",
		"de_DE@euro":  "de-DE",
	}
	for in, want := range tests {
		if got := posixLocale(in); got != want {
			t.Errorf("posixLocale(%q) = %q, want %q", in, got, want)
		}
	}
}
