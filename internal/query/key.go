// Metroline - Metro Ticketing Client
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/metroline

package query

import (
	"fmt"
	"strings"

	"github.com/goccy/go-json"
)

// Key addresses a cache entry. Elements must be JSON-encodable primitives
// (string, bool, integers, floats). Two keys with equal elements address the
// same entry regardless of integer width.
//
//	query.Key{"stations"}
//	query.Key{"schedules", "station", int64(4)}
type Key []any

// encodeElem canonicalises one element. Integers of any width encode alike.
func encodeElem(v any) string {
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprintf("%q", fmt.Sprint(v))
	}
	return string(b)
}

func (k Key) parts() []string {
	out := make([]string, len(k))
	for i, v := range k {
		out[i] = encodeElem(v)
	}
	return out
}

// Hash returns the canonical identity of the key.
func (k Key) Hash() string {
	return "[" + strings.Join(k.parts(), ",") + "]"
}

// String implements fmt.Stringer.
func (k Key) String() string { return k.Hash() }

// HasPrefix reports whether the first len(prefix) elements of k equal prefix.
// An empty prefix matches every key.
func (k Key) HasPrefix(prefix Key) bool {
	if len(prefix) > len(k) {
		return false
	}
	for i := range prefix {
		if encodeElem(k[i]) != encodeElem(prefix[i]) {
			return false
		}
	}
	return true
}

// root labels metrics by the first element.
func (k Key) root() string {
	if len(k) == 0 {
		return ""
	}
	if s, ok := k[0].(string); ok {
		return s
	}
	return encodeElem(k[0])
}

func (k Key) clone() Key {
	return append(Key(nil), k...)
}
