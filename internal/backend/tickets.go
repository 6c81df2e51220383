// Metroline - Metro Ticketing Client
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/metroline

package backend

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"github.com/tomtom215/metroline/internal/apiclient"
	"github.com/tomtom215/metroline/internal/models"
)

// ListTicketTypes returns the ticket products. activeOnly hides retired ones.
func (c *Client) ListTicketTypes(ctx context.Context, activeOnly bool) ([]models.TicketType, error) {
	q := url.Values{}
	if activeOnly {
		q.Set("active", "true")
	}
	return get[[]models.TicketType](ctx, c.ts, "ts/ticket-types", apiclient.WithQuery(q))
}

// GetTicketType returns one ticket product.
func (c *Client) GetTicketType(ctx context.Context, id int64) (*models.TicketType, error) {
	path := idPath("ts/ticket-types", id)
	if err := checkID(http.MethodGet, path, id); err != nil {
		return nil, err
	}
	return get[*models.TicketType](ctx, c.ts, path)
}

// CreateTicketType adds a ticket product.
func (c *Client) CreateTicketType(ctx context.Context, in *models.TicketTypeInput) (*models.TicketType, error) {
	const path = "ts/ticket-types"
	if err := checkInput(http.MethodPost, path, in); err != nil {
		return nil, err
	}
	return apiclient.Call[*models.TicketType](ctx, c.ts, http.MethodPost, path, in)
}

// UpdateTicketType replaces a ticket product.
func (c *Client) UpdateTicketType(ctx context.Context, id int64, in *models.TicketTypeInput) (*models.TicketType, error) {
	path := idPath("ts/ticket-types", id)
	if err := checkID(http.MethodPut, path, id); err != nil {
		return nil, err
	}
	if err := checkInput(http.MethodPut, path, in); err != nil {
		return nil, err
	}
	return apiclient.Call[*models.TicketType](ctx, c.ts, http.MethodPut, path, in)
}

// DeleteTicketType removes a ticket product.
func (c *Client) DeleteTicketType(ctx context.Context, id int64) error {
	path := idPath("ts/ticket-types", id)
	if err := checkID(http.MethodDelete, path, id); err != nil {
		return err
	}
	return noData(ctx, c.ts, http.MethodDelete, path, nil)
}

// ListFareMatrices returns fare rows. routeID 0 lists all routes.
func (c *Client) ListFareMatrices(ctx context.Context, routeID int64) ([]models.FareMatrix, error) {
	q := url.Values{}
	if routeID > 0 {
		q.Set("routeId", strconv.FormatInt(routeID, 10))
	}
	return get[[]models.FareMatrix](ctx, c.ts, "ts/fare-matrices", apiclient.WithQuery(q))
}

// GetFare asks the backend for the price of one journey.
func (c *Client) GetFare(ctx context.Context, fq models.FareQuery) (*models.Fare, error) {
	const path = "ts/fare-matrices/fare"
	if err := checkInput(http.MethodGet, path, &fq); err != nil {
		return nil, err
	}
	q := url.Values{
		"routeId":       {strconv.FormatInt(fq.RouteID, 10)},
		"fromStationId": {strconv.FormatInt(fq.FromStationID, 10)},
		"toStationId":   {strconv.FormatInt(fq.ToStationID, 10)},
	}
	return get[*models.Fare](ctx, c.ts, path, apiclient.WithQuery(q))
}

// CreateFareMatrix adds a fare row.
func (c *Client) CreateFareMatrix(ctx context.Context, in *models.FareMatrixInput) (*models.FareMatrix, error) {
	const path = "ts/fare-matrices"
	if err := checkInput(http.MethodPost, path, in); err != nil {
		return nil, err
	}
	return apiclient.Call[*models.FareMatrix](ctx, c.ts, http.MethodPost, path, in)
}

// UpdateFareMatrix replaces a fare row.
func (c *Client) UpdateFareMatrix(ctx context.Context, id int64, in *models.FareMatrixInput) (*models.FareMatrix, error) {
	path := idPath("ts/fare-matrices", id)
	if err := checkID(http.MethodPut, path, id); err != nil {
		return nil, err
	}
	if err := checkInput(http.MethodPut, path, in); err != nil {
		return nil, err
	}
	return apiclient.Call[*models.FareMatrix](ctx, c.ts, http.MethodPut, path, in)
}

// DeleteFareMatrix removes a fare row.
func (c *Client) DeleteFareMatrix(ctx context.Context, id int64) error {
	path := idPath("ts/fare-matrices", id)
	if err := checkID(http.MethodDelete, path, id); err != nil {
		return err
	}
	return noData(ctx, c.ts, http.MethodDelete, path, nil)
}

// ListUserTickets returns a user's tickets, optionally filtered by status.
// The ts origin receives no credentials so the user is named in the path.
func (c *Client) ListUserTickets(ctx context.Context, userID int64, status string) ([]models.Ticket, error) {
	path := idPath("ts/tickets/user", userID)
	if err := checkID(http.MethodGet, path, userID); err != nil {
		return nil, err
	}
	q := url.Values{}
	q.Set("status", status)
	return get[[]models.Ticket](ctx, c.ts, path, apiclient.WithQuery(q))
}

// GetTicket returns one ticket including its QR payload.
func (c *Client) GetTicket(ctx context.Context, id int64) (*models.Ticket, error) {
	path := idPath("ts/tickets", id)
	if err := checkID(http.MethodGet, path, id); err != nil {
		return nil, err
	}
	return get[*models.Ticket](ctx, c.ts, path)
}

// PurchaseTicket issues tickets. One ticket is returned per unit of quantity.
func (c *Client) PurchaseTicket(ctx context.Context, req *models.PurchaseTicketRequest) ([]models.Ticket, error) {
	const path = "ts/tickets/purchase"
	if err := checkInput(http.MethodPost, path, req); err != nil {
		return nil, err
	}
	return apiclient.Call[[]models.Ticket](ctx, c.ts, http.MethodPost, path, req)
}

// CancelTicket cancels an unused ticket.
func (c *Client) CancelTicket(ctx context.Context, id int64) (*models.Ticket, error) {
	path := idPath("ts/tickets", id) + "/cancel"
	if err := checkID(http.MethodPost, path, id); err != nil {
		return nil, err
	}
	return apiclient.Call[*models.Ticket](ctx, c.ts, http.MethodPost, path, nil)
}
