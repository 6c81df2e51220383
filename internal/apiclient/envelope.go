// Metroline - Metro Ticketing Client
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/metroline

package apiclient

import (
	"bytes"
	"context"
	"fmt"
	"net/http"

	"github.com/goccy/go-json"

	"github.com/tomtom215/metroline/internal/validation"
)

// Envelope is the success shape of every backend response.
type Envelope[T any] struct {
	Status  int    `json:"status"`
	Message string `json:"message"`
	Data    T      `json:"data"`
}

type rawEnvelope struct {
	Status  *int            `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

var jsonNull = []byte("null")

// DecodeEnvelope parses and validates resp.Body. The status and data fields
// must be present, data must be non-null unless allowEmpty is set, and the
// decoded data must satisfy its validate tags. An envelope status of 400 or
// above inside a 2xx response is reported as KindApplication.
func DecodeEnvelope[T any](resp *Response, allowEmpty bool) (*Envelope[T], error) {
	var raw rawEnvelope
	if err := json.Unmarshal(resp.Body, &raw); err != nil {
		return nil, envelopeError(resp, "response is not a JSON envelope", err)
	}
	if raw.Status == nil {
		return nil, envelopeError(resp, "envelope has no status field", nil)
	}
	if *raw.Status >= http.StatusBadRequest {
		msg := raw.Message
		if msg == "" {
			msg = http.StatusText(*raw.Status)
		}
		return nil, &Error{Kind: KindApplication, StatusCode: *raw.Status, Message: msg}
	}

	env := &Envelope[T]{Status: *raw.Status, Message: raw.Message}
	empty := len(raw.Data) == 0 || bytes.Equal(bytes.TrimSpace(raw.Data), jsonNull)
	if empty {
		if !allowEmpty {
			return nil, envelopeError(resp, "envelope has no data", nil)
		}
		return env, nil
	}

	if err := json.Unmarshal(raw.Data, &env.Data); err != nil {
		return nil, envelopeError(resp, fmt.Sprintf("data does not match %T", env.Data), err)
	}
	if err := validation.Validate(env.Data); err != nil {
		return nil, envelopeError(resp, "data failed validation", err)
	}
	return env, nil
}

func envelopeError(resp *Response, msg string, err error) *Error {
	return &Error{Kind: KindEnvelope, StatusCode: resp.StatusCode, Message: msg, Err: err}
}

// Call sends a request and decodes the data of its envelope.
//
//	stations, err := apiclient.Call[[]models.Station](ctx, legacy, http.MethodGet, "stations", nil)
func Call[T any](ctx context.Context, c *Client, method, path string, body any, opts ...RequestOption) (T, error) {
	env, err := CallEnvelope[T](ctx, c, method, path, body, false, opts...)
	if err != nil {
		var zero T
		return zero, err
	}
	return env.Data, nil
}

// CallEnvelope is Call returning the whole envelope. With allowEmpty a
// missing or null data field is accepted (logout, delete).
func CallEnvelope[T any](ctx context.Context, c *Client, method, path string, body any, allowEmpty bool, opts ...RequestOption) (*Envelope[T], error) {
	resp, err := c.Do(ctx, method, path, body, opts...)
	if err != nil {
		return nil, err
	}
	env, err := DecodeEnvelope[T](resp, allowEmpty)
	if err != nil {
		if apiErr, ok := asError(err); ok {
			apiErr.Method, apiErr.Path = method, path
		}
		return nil, c.fail(ctx, err)
	}
	return env, nil
}
