// Metroline - Metro Ticketing Client
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/metroline

//nolint:staticcheck // File documentation, not package doc
/*
client.go - HTTP client adapter for one backend origin.

A Client owns a base URL, a timeout and a credential policy. Every request:
  - resolves its path relative to the base URL
  - encodes the body as JSON and declares JSON content and accept types
  - carries X-Request-ID (from the context when present, else a new UUID)
  - waits on the optional rate limiter, then runs through the optional breaker
  - never retries

Failures are returned as *Error and logged once here. Callers never need to
log them again.

Credential forwarding (ForwardCredentials) attaches the cookie jar and the
bearer token from the TokenSource. A client without it sends neither.
*/
package apiclient

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"

	"github.com/goccy/go-json"
	gobreaker "github.com/sony/gobreaker/v2"
	"golang.org/x/time/rate"

	"github.com/tomtom215/metroline/internal/config"
	"github.com/tomtom215/metroline/internal/logging"
	"github.com/tomtom215/metroline/internal/metrics"
)

const (
	// maxErrorBodySize caps how much of a failed response is read for diagnostics.
	maxErrorBodySize = 64 * 1024

	// maxBodySize caps success responses.
	maxBodySize = 16 * 1024 * 1024

	headerRequestID = "X-Request-ID"
)

// TokenSource supplies the current bearer token. An empty string means none.
type TokenSource interface {
	Token() string
}

// TokenFunc adapts a function to TokenSource.
type TokenFunc func() string

// Token implements TokenSource.
func (f TokenFunc) Token() string { return f() }

// Options configures a Client beyond what config.OriginConfig carries.
type Options struct {
	// Name labels logs and metrics ("legacy", "ts").
	Name string

	// Tokens is consulted on every request of a credential-forwarding client.
	Tokens TokenSource

	// Transport replaces http.DefaultTransport. Tests use it.
	Transport http.RoundTripper
}

// Response is a fully read backend response.
type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
	RequestID  string
}

// Client is an HTTP client adapter for one backend origin. Safe for concurrent use.
type Client struct {
	name               string
	baseURL            *url.URL
	httpClient         *http.Client
	forwardCredentials bool
	tokens             TokenSource
	userAgent          string
	limiter            *rate.Limiter
	breaker            *gobreaker.CircuitBreaker[*Response]
}

// New builds a Client from an origin configuration.
func New(cfg *config.OriginConfig, opts Options) (*Client, error) {
	base, err := url.Parse(cfg.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse base url %q: %w", cfg.BaseURL, err)
	}
	if !strings.HasSuffix(base.Path, "/") {
		base.Path += "/"
	}

	name := opts.Name
	if name == "" {
		name = base.Host
	}

	httpClient := &http.Client{
		Timeout:   cfg.Timeout,
		Transport: opts.Transport,
	}
	if cfg.ForwardCredentials {
		jar, err := cookiejar.New(nil)
		if err != nil {
			return nil, fmt.Errorf("create cookie jar: %w", err)
		}
		httpClient.Jar = jar
	}

	c := &Client{
		name:               name,
		baseURL:            base,
		httpClient:         httpClient,
		forwardCredentials: cfg.ForwardCredentials,
		tokens:             opts.Tokens,
		userAgent:          cfg.UserAgent,
	}

	if cfg.RateLimit > 0 {
		burst := cfg.RateBurst
		if burst <= 0 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(cfg.RateLimit), burst)
	}
	if cfg.Breaker.Enabled {
		c.breaker = newBreaker(name+"-api", &cfg.Breaker)
	}
	return c, nil
}

// Name returns the origin label.
func (c *Client) Name() string { return c.name }

// BaseURL returns a copy of the base URL.
func (c *Client) BaseURL() *url.URL {
	u := *c.baseURL
	return &u
}

// ForwardsCredentials reports the credential policy.
func (c *Client) ForwardsCredentials() bool { return c.forwardCredentials }

// RequestOption customises a single request.
type RequestOption func(*requestConfig)

type requestConfig struct {
	query  url.Values
	header http.Header
}

// WithQuery adds URL query parameters. Empty values are skipped.
func WithQuery(values url.Values) RequestOption {
	return func(rc *requestConfig) {
		for k, vs := range values {
			for _, v := range vs {
				if v != "" {
					rc.query.Add(k, v)
				}
			}
		}
	}
}

// WithHeader sets a request header.
func WithHeader(key, value string) RequestOption {
	return func(rc *requestConfig) {
		rc.header.Set(key, value)
	}
}

// Get issues a GET request.
func (c *Client) Get(ctx context.Context, path string, opts ...RequestOption) (*Response, error) {
	return c.Do(ctx, http.MethodGet, path, nil, opts...)
}

// Post issues a POST request with a JSON body.
func (c *Client) Post(ctx context.Context, path string, body any, opts ...RequestOption) (*Response, error) {
	return c.Do(ctx, http.MethodPost, path, body, opts...)
}

// Put issues a PUT request with a JSON body.
func (c *Client) Put(ctx context.Context, path string, body any, opts ...RequestOption) (*Response, error) {
	return c.Do(ctx, http.MethodPut, path, body, opts...)
}

// Patch issues a PATCH request with a JSON body.
func (c *Client) Patch(ctx context.Context, path string, body any, opts ...RequestOption) (*Response, error) {
	return c.Do(ctx, http.MethodPatch, path, body, opts...)
}

// Delete issues a DELETE request.
func (c *Client) Delete(ctx context.Context, path string, opts ...RequestOption) (*Response, error) {
	return c.Do(ctx, http.MethodDelete, path, nil, opts...)
}

// Do sends one request. A nil body sends no payload. Any non-2xx status is
// returned as a KindApplication *Error alongside a nil Response.
func (c *Client) Do(ctx context.Context, method, path string, body any, opts ...RequestOption) (*Response, error) {
	rc := requestConfig{query: url.Values{}, header: http.Header{}}
	for _, opt := range opts {
		opt(&rc)
	}

	target, err := c.resolve(path, rc.query)
	if err != nil {
		return nil, c.fail(ctx, &Error{Kind: KindRequest, Method: method, Path: path, Message: "invalid path", Err: err})
	}

	var payload []byte
	if body != nil {
		payload, err = json.Marshal(body)
		if err != nil {
			return nil, c.fail(ctx, &Error{Kind: KindRequest, Method: method, Path: path, Message: "encode request body", Err: err})
		}
	}

	requestID := logging.RequestIDFromContext(ctx)
	if requestID == "" {
		requestID = logging.GenerateRequestID()
	}

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, c.fail(ctx, transportError(method, path, err))
		}
	}

	exec := func() (*Response, error) {
		return c.roundTrip(ctx, method, path, target, payload, requestID, rc.header)
	}

	var resp *Response
	if c.breaker != nil {
		resp, err = c.executeWithBreaker(exec)
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			err = &Error{Kind: KindTransport, Method: method, Path: path, Message: "circuit breaker open", Err: err}
		}
	} else {
		resp, err = exec()
	}
	if err != nil {
		return nil, c.fail(ctx, err)
	}
	return resp, nil
}

func (c *Client) resolve(path string, query url.Values) (*url.URL, error) {
	ref, err := url.Parse(strings.TrimPrefix(path, "/"))
	if err != nil {
		return nil, err
	}
	if ref.IsAbs() || ref.Host != "" {
		return nil, fmt.Errorf("path %q must be relative", path)
	}
	u := c.baseURL.ResolveReference(ref)
	if len(query) > 0 {
		q := u.Query()
		for k, vs := range query {
			for _, v := range vs {
				q.Add(k, v)
			}
		}
		u.RawQuery = q.Encode()
	}
	return u, nil
}

func (c *Client) roundTrip(ctx context.Context, method, path string, target *url.URL, payload []byte, requestID string, extra http.Header) (*Response, error) {
	var bodyReader io.Reader = http.NoBody
	if payload != nil {
		bodyReader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, target.String(), bodyReader)
	if err != nil {
		return nil, &Error{Kind: KindRequest, Method: method, Path: path, Message: "build request", Err: err}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set(headerRequestID, requestID)
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}
	if c.forwardCredentials && c.tokens != nil {
		if tok := c.tokens.Token(); tok != "" {
			req.Header.Set("Authorization", "Bearer "+tok)
		}
	}
	for k, vs := range extra {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}

	start := time.Now()
	httpResp, err := c.httpClient.Do(req)
	if err != nil {
		metrics.RecordHTTPRequest(c.name, method, 0, time.Since(start))
		return nil, transportError(method, path, err)
	}
	defer func() { _ = httpResp.Body.Close() }()

	metrics.RecordHTTPRequest(c.name, method, httpResp.StatusCode, time.Since(start))

	if httpResp.StatusCode < 200 || httpResp.StatusCode > 299 {
		raw := readBodyForError(httpResp.Body)
		return nil, &Error{
			Kind:       KindApplication,
			Method:     method,
			Path:       path,
			StatusCode: httpResp.StatusCode,
			Message:    serverMessage(raw, httpResp.StatusCode),
		}
	}

	body, err := io.ReadAll(io.LimitReader(httpResp.Body, maxBodySize))
	if err != nil {
		return nil, transportError(method, path, fmt.Errorf("read response body: %w", err))
	}

	return &Response{
		StatusCode: httpResp.StatusCode,
		Header:     httpResp.Header,
		Body:       body,
		RequestID:  requestID,
	}, nil
}

// fail stamps the origin on err, records it and logs it.
func (c *Client) fail(ctx context.Context, err error) error {
	apiErr, ok := asError(err)
	if !ok {
		apiErr = &Error{Kind: KindTransport, Message: err.Error(), Err: err}
	}
	apiErr.Origin = c.name
	metrics.RecordHTTPError(c.name, apiErr.Kind.String())

	event := logging.Ctx(ctx).Warn()
	if apiErr.Kind != KindApplication || apiErr.ServerError() {
		event = logging.Ctx(ctx).Error()
	}
	event.
		Str("component", "apiclient").
		Str("origin", c.name).
		Str("method", apiErr.Method).
		Str("path", apiErr.Path).
		Int("status", apiErr.StatusCode).
		Str("kind", apiErr.Kind.String()).
		Bool("timeout", apiErr.Timeout).
		Err(apiErr.Err).
		Msg(apiErr.Message)
	return apiErr
}

func transportError(method, path string, err error) *Error {
	e := &Error{Kind: KindTransport, Method: method, Path: path, Err: err, Message: "request failed"}
	var netErr net.Error
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		e.Timeout = true
		e.Message = "request timed out"
	case errors.As(err, &netErr) && netErr.Timeout():
		e.Timeout = true
		e.Message = "request timed out"
	case errors.Is(err, context.Canceled):
		e.Message = "request cancelled"
	}
	return e
}

// readBodyForError reads at most maxErrorBodySize bytes.
func readBodyForError(r io.Reader) []byte {
	body, err := io.ReadAll(io.LimitReader(r, maxErrorBodySize))
	if err != nil {
		return nil
	}
	return body
}

// serverMessage extracts the "message" field of an error body. The backend
// sends either a string or a list of validation messages.
func serverMessage(body []byte, status int) string {
	var payload struct {
		Message json.RawMessage `json:"message"`
		Error   string          `json:"error"`
	}
	if len(body) > 0 && json.Unmarshal(body, &payload) == nil {
		var single string
		if json.Unmarshal(payload.Message, &single) == nil && single != "" {
			return single
		}
		var many []string
		if json.Unmarshal(payload.Message, &many) == nil && len(many) > 0 {
			return strings.Join(many, "; ")
		}
		if payload.Error != "" {
			return payload.Error
		}
	}
	if text := http.StatusText(status); text != "" {
		return text
	}
	return fmt.Sprintf("HTTP %d", status)
}
