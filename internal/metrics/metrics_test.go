// Metroline - Metro Ticketing Client
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/metroline

package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestRecordHTTPRequest(t *testing.T) {
	before := testutil.ToFloat64(HTTPRequests.WithLabelValues("test-origin", "GET", "200"))
	RecordHTTPRequest("test-origin", "GET", 200, 15*time.Millisecond)
	after := testutil.ToFloat64(HTTPRequests.WithLabelValues("test-origin", "GET", "200"))

	if after-before != 1 {
		t.Errorf("expected counter to increase by 1, got %v", after-before)
	}
}

func TestRecordSessionWrite(t *testing.T) {
	okBefore := testutil.ToFloat64(SessionWrites.WithLabelValues("test-op", "success"))
	errBefore := testutil.ToFloat64(SessionWrites.WithLabelValues("test-op", "error"))

	RecordSessionWrite("test-op", nil)
	RecordSessionWrite("test-op", errors.New("disk full"))

	if got := testutil.ToFloat64(SessionWrites.WithLabelValues("test-op", "success")) - okBefore; got != 1 {
		t.Errorf("success delta = %v, want 1", got)
	}
	if got := testutil.ToFloat64(SessionWrites.WithLabelValues("test-op", "error")) - errBefore; got != 1 {
		t.Errorf("error delta = %v, want 1", got)
	}
}

func TestSetSessionAuthenticated(t *testing.T) {
	SetSessionAuthenticated(true)
	if got := testutil.ToFloat64(SessionAuthenticated); got != 1 {
		t.Errorf("gauge = %v, want 1", got)
	}
	SetSessionAuthenticated(false)
	if got := testutil.ToFloat64(SessionAuthenticated); got != 0 {
		t.Errorf("gauge = %v, want 0", got)
	}
}
