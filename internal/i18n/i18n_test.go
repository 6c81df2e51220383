// Metroline - Metro Ticketing Client
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/metroline

package i18n

import (
	"testing"
	"testing/fstest"

	"github.com/tomtom215/metroline/internal/config"
)

func newTestTranslator(t *testing.T, locale string) *Translator {
	t.Helper()
	tr, err := New(&config.I18nConfig{DefaultLocale: locale, FallbackLocale: "vi"})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return tr
}

func TestTranslate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		locale string
		key    string
		args   Args
		want   string
	}{
		{"default namespace", "vi", "nav.tickets", nil, "Vé của tôi"},
		{"explicit namespace", "en", "auth:login.title", nil, "Sign in"},
		{"interpolation", "vi", "welcome", Args{"name": "An"}, "Xin chào, An!"},
		{"two arguments", "en", "ticket:fare", Args{"from": "Ben Thanh", "to": "Suoi Tien"}, "Fare from Ben Thanh to Suoi Tien"},
		{"number argument", "en", "ticket:purchased", Args{"count": 3}, "Purchased 3 ticket(s)"},
		{"missing argument kept", "en", "welcome", nil, "Hello, {{name}}!"},
		{"fallback to vi", "en", "errors.unknown", nil, "Đã có lỗi xảy ra."},
		{"fallback namespace key", "en", "ticket:empty", nil, "Bạn chưa có vé nào"},
		{"missing key", "en", "auth:nope.nothing", nil, "auth:nope.nothing"},
		{"non-leaf key", "vi", "nav", nil, "nav"},
		{"unknown namespace", "vi", "admin:title", nil, "admin:title"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			tr := newTestTranslator(t, tt.locale)
			if got := tr.T(tt.key, tt.args); got != tt.want {
				t.Errorf("T(%q) = %q, want %q", tt.key, got, tt.want)
			}
		})
	}
}

func TestMatch(t *testing.T) {
	t.Parallel()

	tr := newTestTranslator(t, "vi")
	tests := map[string]string{
		"en-US,en;q=0.9":    "en",
		"vi-VN":             "vi",
		"fr-FR":             "vi",
		"":                  "vi",
		"de;q=0.8,en;q=0.5": "en",
	}
	for in, want := range tests {
		if got := tr.Match(in); got != want {
			t.Errorf("Match(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestSetLocale(t *testing.T) {
	t.Parallel()

	tr := newTestTranslator(t, "")
	if tr.Locale() != "vi" {
		t.Fatalf("default locale = %q, want vi", tr.Locale())
	}
	if got := tr.SetLocale("en-GB"); got != "en" {
		t.Errorf("SetLocale(en-GB) = %q", got)
	}
	if tr.T("nav.logout", nil) != "Sign out" {
		t.Errorf("T after SetLocale = %q", tr.T("nav.logout", nil))
	}
	if tr.TIn("vi", "nav.logout", nil) != "Đăng xuất" {
		t.Error("TIn ignored the explicit locale")
	}
}

func TestEveryNamespaceShipsInFallback(t *testing.T) {
	t.Parallel()

	tr := newTestTranslator(t, "vi")
	for _, ns := range Namespaces {
		if _, ok := tr.bundles["vi"][ns]; !ok {
			t.Errorf("vi bundle lacks namespace %q", ns)
		}
	}
	if !tr.Has("vi", "ticket:status.ACTIVE") || tr.Has("en", "ticket:empty") {
		t.Error("Has() disagrees with the bundles")
	}
}

func TestLoadErrors(t *testing.T) {
	t.Parallel()

	cfg := &config.I18nConfig{FallbackLocale: "vi"}
	tests := []struct {
		name string
		fsys fstest.MapFS
	}{
		{"bad json", fstest.MapFS{"l/vi/home.json": {Data: []byte(`{"title":`)}}},
		{"no fallback bundle", fstest.MapFS{"l/en/home.json": {Data: []byte(`{}`)}}},
		{"bad locale name", fstest.MapFS{"l/not a tag/home.json": {Data: []byte(`{}`)}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if _, err := newFromFS(tt.fsys, "l", cfg); err == nil {
				t.Error("expected error")
			}
		})
	}
}
