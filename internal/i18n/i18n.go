// Metroline - Metro Ticketing Client
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/metroline

// Package i18n looks up user-facing strings in embedded per-locale bundles.
//
// Keys are written "namespace:dotted.path"; a key without a namespace is
// looked up in "home". A missing string falls back to the fallback locale
// and finally to the key itself, so a lookup never fails.
//
//	tr.T("auth:register.otpSent", i18n.Args{"email": "an@example.com"})
package i18n

import (
	"embed"
	"fmt"
	"io/fs"
	"path"
	"regexp"
	"strings"
	"sync"

	"github.com/goccy/go-json"
	"golang.org/x/text/language"

	"github.com/tomtom215/metroline/internal/config"
	"github.com/tomtom215/metroline/internal/logging"
)

//go:embed locales
var localesFS embed.FS

// DefaultNamespace is used for keys without a "ns:" prefix.
const DefaultNamespace = "home"

// Namespaces lists the bundles every locale ships.
var Namespaces = []string{"home", "auth", "map", "ticket", "profile"}

// Args holds interpolation values for {{name}} placeholders.
type Args map[string]any

var placeholder = regexp.MustCompile(`\{\{\s*([A-Za-z0-9_.]+)\s*\}\}`)

// bundle maps namespace to its decoded JSON tree.
type bundle map[string]map[string]any

// Translator resolves keys for a current locale. It is safe for concurrent use.
type Translator struct {
	bundles  map[string]bundle
	supports []language.Tag
	matcher  language.Matcher
	fallback string

	mu     sync.RWMutex
	locale string
}

// New loads the embedded bundles and selects cfg.DefaultLocale.
func New(cfg *config.I18nConfig) (*Translator, error) {
	return newFromFS(localesFS, "locales", cfg)
}

func newFromFS(fsys fs.FS, root string, cfg *config.I18nConfig) (*Translator, error) {
	entries, err := fs.ReadDir(fsys, root)
	if err != nil {
		return nil, fmt.Errorf("read locales: %w", err)
	}

	t := &Translator{bundles: make(map[string]bundle)}
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		tag, err := language.Parse(e.Name())
		if err != nil {
			return nil, fmt.Errorf("locale directory %q: %w", e.Name(), err)
		}
		b, err := loadBundle(fsys, path.Join(root, e.Name()))
		if err != nil {
			return nil, err
		}
		t.bundles[e.Name()] = b
		t.supports = append(t.supports, tag)
	}
	if len(t.bundles) == 0 {
		return nil, fmt.Errorf("no locales under %s", root)
	}

	t.fallback = cfg.FallbackLocale
	if _, ok := t.bundles[t.fallback]; !ok {
		return nil, fmt.Errorf("fallback locale %q has no bundle", t.fallback)
	}

	// The fallback locale goes first so the matcher prefers it on ties.
	for i, tag := range t.supports {
		if tag.String() == t.fallback {
			t.supports[0], t.supports[i] = t.supports[i], t.supports[0]
			break
		}
	}
	t.matcher = language.NewMatcher(t.supports)

	t.locale = t.fallback
	if cfg.DefaultLocale != "" {
		t.SetLocale(cfg.DefaultLocale)
	}
	return t, nil
}

func loadBundle(fsys fs.FS, dir string) (bundle, error) {
	b := make(bundle, len(Namespaces))
	for _, ns := range Namespaces {
		data, err := fs.ReadFile(fsys, path.Join(dir, ns+".json"))
		if err != nil {
			// A locale may ship a subset of namespaces.
			continue
		}
		var tree map[string]any
		if err := json.Unmarshal(data, &tree); err != nil {
			return nil, fmt.Errorf("decode %s/%s.json: %w", dir, ns, err)
		}
		b[ns] = tree
	}
	return b, nil
}

// Match picks the best supported locale for an Accept-Language style list
// such as "en-US,en;q=0.9". Unparseable input yields the fallback locale.
func (t *Translator) Match(preferences ...string) string {
	var tags []language.Tag
	for _, p := range preferences {
		parsed, _, err := language.ParseAcceptLanguage(p)
		if err != nil {
			continue
		}
		tags = append(tags, parsed...)
	}
	if len(tags) == 0 {
		return t.fallback
	}
	_, idx, conf := t.matcher.Match(tags...)
	if conf == language.No {
		return t.fallback
	}
	return t.supports[idx].String()
}

// SetLocale switches the current locale to the best match of locale and
// returns the locale actually selected.
func (t *Translator) SetLocale(locale string) string {
	selected := t.Match(locale)
	t.mu.Lock()
	t.locale = selected
	t.mu.Unlock()
	return selected
}

// Locale returns the current locale.
func (t *Translator) Locale() string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.locale
}

// Locales returns the supported locales.
func (t *Translator) Locales() []string {
	out := make([]string, len(t.supports))
	for i, tag := range t.supports {
		out[i] = tag.String()
	}
	return out
}

// T translates key in the current locale.
func (t *Translator) T(key string, args Args) string {
	return t.TIn(t.Locale(), key, args)
}

// TIn translates key in locale.
func (t *Translator) TIn(locale, key string, args Args) string {
	ns, dotted := splitKey(key)
	for _, loc := range []string{locale, t.fallback} {
		if s, ok := t.lookup(loc, ns, dotted); ok {
			return interpolate(s, args)
		}
	}
	logging.Debug().Str("key", key).Str("locale", locale).Msg("Missing translation")
	return key
}

// Has reports whether key resolves in locale without falling back.
func (t *Translator) Has(locale, key string) bool {
	ns, dotted := splitKey(key)
	_, ok := t.lookup(locale, ns, dotted)
	return ok
}

func (t *Translator) lookup(locale, ns, dotted string) (string, bool) {
	tree, ok := t.bundles[locale][ns]
	if !ok {
		return "", false
	}
	var node any = tree
	for _, part := range strings.Split(dotted, ".") {
		m, ok := node.(map[string]any)
		if !ok {
			return "", false
		}
		if node, ok = m[part]; !ok {
			return "", false
		}
	}
	s, ok := node.(string)
	return s, ok
}

func splitKey(key string) (ns, dotted string) {
	if i := strings.IndexByte(key, ':'); i >= 0 {
		return key[:i], key[i+1:]
	}
	return DefaultNamespace, key
}

// interpolate replaces {{name}} with args[name]. Unknown names stay as written.
func interpolate(s string, args Args) string {
	if len(args) == 0 || !strings.Contains(s, "{{") {
		return s
	}
	return placeholder.ReplaceAllStringFunc(s, func(m string) string {
		name := placeholder.FindStringSubmatch(m)[1]
		if v, ok := args[name]; ok {
			return fmt.Sprint(v)
		}
		return m
	})
}
