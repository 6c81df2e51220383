// Metroline - Metro Ticketing Client
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/metroline

package backend

import (
	"context"
	"net/http"
	"net/url"
	"time"

	"github.com/tomtom215/metroline/internal/apiclient"
	"github.com/tomtom215/metroline/internal/models"
)

// CreateOrder opens an order for the signed-in user.
func (c *Client) CreateOrder(ctx context.Context, req *models.CreateOrderRequest) (*models.Order, error) {
	const path = "orders"
	if err := checkInput(http.MethodPost, path, req); err != nil {
		return nil, err
	}
	return apiclient.Call[*models.Order](ctx, c.legacy, http.MethodPost, path, req)
}

// GetOrder returns one order.
func (c *Client) GetOrder(ctx context.Context, id int64) (*models.Order, error) {
	path := idPath("orders", id)
	if err := checkID(http.MethodGet, path, id); err != nil {
		return nil, err
	}
	return get[*models.Order](ctx, c.legacy, path)
}

// ListMyOrders returns the signed-in user's orders, newest first.
func (c *Client) ListMyOrders(ctx context.Context) ([]models.Order, error) {
	return get[[]models.Order](ctx, c.legacy, "orders/me")
}

// CancelOrder cancels a pending order.
func (c *Client) CancelOrder(ctx context.Context, id int64) (*models.Order, error) {
	path := idPath("orders", id) + "/cancel"
	if err := checkID(http.MethodPatch, path, id); err != nil {
		return nil, err
	}
	return apiclient.Call[*models.Order](ctx, c.legacy, http.MethodPatch, path, nil)
}

// CreatePayment starts payment of an order and returns the gateway URL.
func (c *Client) CreatePayment(ctx context.Context, req *models.CreatePaymentRequest) (*models.PaymentRedirect, error) {
	const path = "payment/create"
	if err := checkInput(http.MethodPost, path, req); err != nil {
		return nil, err
	}
	return apiclient.Call[*models.PaymentRedirect](ctx, c.legacy, http.MethodPost, path, req)
}

// TicketSales returns ticket sales per period.
func (c *Client) TicketSales(ctx context.Context, r models.StatsRange) ([]models.TicketSalesStat, error) {
	return statsCall[models.TicketSalesStat](ctx, c, "stat/ticket-sales", r)
}

// StationUsage returns gate traffic per station.
func (c *Client) StationUsage(ctx context.Context, r models.StatsRange) ([]models.StationUsageStat, error) {
	return statsCall[models.StationUsageStat](ctx, c, "stat/station-usage", r)
}

// Revenue returns revenue per period.
func (c *Client) Revenue(ctx context.Context, r models.StatsRange) ([]models.RevenueStat, error) {
	return statsCall[models.RevenueStat](ctx, c, "stat/revenue", r)
}

func statsCall[T any](ctx context.Context, c *Client, path string, r models.StatsRange) ([]T, error) {
	if err := checkInput(http.MethodGet, path, &r); err != nil {
		return nil, err
	}
	q := url.Values{}
	if !r.From.IsZero() {
		q.Set("from", r.From.Format(time.DateOnly))
	}
	if !r.To.IsZero() {
		q.Set("to", r.To.Format(time.DateOnly))
	}
	q.Set("groupBy", r.GroupBy)
	return get[[]T](ctx, c.legacy, path, apiclient.WithQuery(q))
}
