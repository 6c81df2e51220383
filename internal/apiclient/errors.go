// Metroline - Metro Ticketing Client
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/metroline

package apiclient

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies a failed backend call.
type Kind int

const (
	// KindTransport means no usable HTTP response: dial, DNS, reset, timeout,
	// cancelled context, open circuit breaker or limiter wait failure.
	KindTransport Kind = iota + 1

	// KindApplication means the backend answered with a non-2xx status.
	KindApplication

	// KindEnvelope means a 2xx response whose body is not a valid envelope
	// or whose data failed validation.
	KindEnvelope

	// KindRequest means the request could not be built (bad path, body encoding).
	KindRequest
)

func (k Kind) String() string {
	switch k {
	case KindTransport:
		return "transport"
	case KindApplication:
		return "application"
	case KindEnvelope:
		return "envelope"
	case KindRequest:
		return "request"
	default:
		return "unknown"
	}
}

// Error is the single error type returned by Client and Call.
type Error struct {
	Kind   Kind
	Origin string
	Method string
	Path   string

	// StatusCode is the HTTP status for KindApplication and KindEnvelope, 0 otherwise.
	StatusCode int

	// Message is the server-provided message when present, otherwise a
	// description of the failure.
	Message string

	// Timeout is set for transport failures caused by a deadline.
	Timeout bool

	Err error
}

func (e *Error) Error() string {
	switch e.Kind {
	case KindApplication:
		return fmt.Sprintf("%s %s %s: %d %s", e.Origin, e.Method, e.Path, e.StatusCode, e.Message)
	case KindTransport:
		if e.Err != nil {
			return fmt.Sprintf("%s %s %s: transport: %s: %v", e.Origin, e.Method, e.Path, e.Message, e.Err)
		}
		return fmt.Sprintf("%s %s %s: transport: %s", e.Origin, e.Method, e.Path, e.Message)
	default:
		if e.Err != nil {
			return fmt.Sprintf("%s %s %s: %s: %s: %v", e.Origin, e.Method, e.Path, e.Kind, e.Message, e.Err)
		}
		return fmt.Sprintf("%s %s %s: %s: %s", e.Origin, e.Method, e.Path, e.Kind, e.Message)
	}
}

func (e *Error) Unwrap() error {
	return e.Err
}

// ServerError reports whether the backend failed (5xx).
func (e *Error) ServerError() bool {
	return e.Kind == KindApplication && e.StatusCode >= http.StatusInternalServerError
}

func asError(err error) (*Error, bool) {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr, true
	}
	return nil, false
}

// IsTransport reports whether err is a transport failure.
func IsTransport(err error) bool {
	e, ok := asError(err)
	return ok && e.Kind == KindTransport
}

// IsApplication reports whether err is a non-2xx backend answer.
func IsApplication(err error) bool {
	e, ok := asError(err)
	return ok && e.Kind == KindApplication
}

// IsEnvelope reports whether err is a malformed success response.
func IsEnvelope(err error) bool {
	e, ok := asError(err)
	return ok && e.Kind == KindEnvelope
}

// IsRequest reports whether err rejected a request before it was sent.
func IsRequest(err error) bool {
	e, ok := asError(err)
	return ok && e.Kind == KindRequest
}

// IsTimeout reports whether err is a transport failure caused by a deadline.
func IsTimeout(err error) bool {
	e, ok := asError(err)
	return ok && e.Kind == KindTransport && e.Timeout
}

// IsUnauthorized reports a 401 or 403 answer.
func IsUnauthorized(err error) bool {
	code := StatusCode(err)
	return code == http.StatusUnauthorized || code == http.StatusForbidden
}

// StatusCode returns the HTTP status carried by err, or 0.
func StatusCode(err error) int {
	if e, ok := asError(err); ok {
		return e.StatusCode
	}
	return 0
}

// Message returns the server message carried by err, or err.Error().
func Message(err error) string {
	if err == nil {
		return ""
	}
	if e, ok := asError(err); ok && e.Message != "" {
		return e.Message
	}
	return err.Error()
}
