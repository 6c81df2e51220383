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

// ListStations returns every station.
func (c *Client) ListStations(ctx context.Context) ([]models.Station, error) {
	return get[[]models.Station](ctx, c.legacy, "stations")
}

// GetStation returns one station.
func (c *Client) GetStation(ctx context.Context, id int64) (*models.Station, error) {
	path := idPath("stations", id)
	if err := checkID(http.MethodGet, path, id); err != nil {
		return nil, err
	}
	return get[*models.Station](ctx, c.legacy, path)
}

// CreateStation adds a station.
func (c *Client) CreateStation(ctx context.Context, in *models.StationInput) (*models.Station, error) {
	const path = "stations"
	if err := checkInput(http.MethodPost, path, in); err != nil {
		return nil, err
	}
	return apiclient.Call[*models.Station](ctx, c.legacy, http.MethodPost, path, in)
}

// UpdateStation replaces a station's editable fields.
func (c *Client) UpdateStation(ctx context.Context, id int64, in *models.StationInput) (*models.Station, error) {
	path := idPath("stations", id)
	if err := checkID(http.MethodPut, path, id); err != nil {
		return nil, err
	}
	if err := checkInput(http.MethodPut, path, in); err != nil {
		return nil, err
	}
	return apiclient.Call[*models.Station](ctx, c.legacy, http.MethodPut, path, in)
}

// DeleteStation removes a station.
func (c *Client) DeleteStation(ctx context.Context, id int64) error {
	path := idPath("stations", id)
	if err := checkID(http.MethodDelete, path, id); err != nil {
		return err
	}
	return noData(ctx, c.legacy, http.MethodDelete, path, nil)
}

// ListBusConnections returns bus lines near stations. stationID 0 lists all.
func (c *Client) ListBusConnections(ctx context.Context, stationID int64) ([]models.BusConnection, error) {
	q := url.Values{}
	if stationID > 0 {
		q.Set("stationId", strconv.FormatInt(stationID, 10))
	}
	return get[[]models.BusConnection](ctx, c.legacy, "bus", apiclient.WithQuery(q))
}
