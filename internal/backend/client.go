// Metroline - Metro Ticketing Client
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/metroline

package backend

import (
	"context"
	"fmt"
	"net/http"

	"github.com/tomtom215/metroline/internal/apiclient"
	"github.com/tomtom215/metroline/internal/validation"
)

// Client groups the endpoint bindings of both backend origins.
type Client struct {
	legacy *apiclient.Client
	ts     *apiclient.Client
}

// New binds the legacy and ts adapters.
func New(legacy, ts *apiclient.Client) *Client {
	return &Client{legacy: legacy, ts: ts}
}

// Legacy returns the legacy origin adapter.
func (c *Client) Legacy() *apiclient.Client { return c.legacy }

// TS returns the ts origin adapter.
func (c *Client) TS() *apiclient.Client { return c.ts }

// checkInput validates a request value before it is sent.
func checkInput(method, path string, in any) error {
	if ve := validation.ValidateStruct(in); ve != nil {
		return &apiclient.Error{
			Kind:    apiclient.KindRequest,
			Method:  method,
			Path:    path,
			Message: ve.Error(),
			Err:     ve,
		}
	}
	return nil
}

func checkID(method, path string, id int64) error {
	if id <= 0 {
		return &apiclient.Error{
			Kind:    apiclient.KindRequest,
			Method:  method,
			Path:    path,
			Message: fmt.Sprintf("invalid id %d", id),
		}
	}
	return nil
}

// noData sends a request whose envelope may omit data.
func noData(ctx context.Context, c *apiclient.Client, method, path string, body any, opts ...apiclient.RequestOption) error {
	_, err := apiclient.CallEnvelope[struct{}](ctx, c, method, path, body, true, opts...)
	return err
}

// get decodes the data of a GET request.
func get[T any](ctx context.Context, c *apiclient.Client, path string, opts ...apiclient.RequestOption) (T, error) {
	return apiclient.Call[T](ctx, c, http.MethodGet, path, nil, opts...)
}

func idPath(resource string, id int64) string {
	return fmt.Sprintf("%s/%d", resource, id)
}
