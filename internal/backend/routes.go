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

// ListRoutes returns every route.
func (c *Client) ListRoutes(ctx context.Context) ([]models.Route, error) {
	return get[[]models.Route](ctx, c.legacy, "routes")
}

// GetRoute returns one route.
func (c *Client) GetRoute(ctx context.Context, id int64) (*models.Route, error) {
	path := idPath("routes", id)
	if err := checkID(http.MethodGet, path, id); err != nil {
		return nil, err
	}
	return get[*models.Route](ctx, c.legacy, path)
}

// CreateRoute adds a route.
func (c *Client) CreateRoute(ctx context.Context, in *models.RouteInput) (*models.Route, error) {
	const path = "routes"
	if err := checkInput(http.MethodPost, path, in); err != nil {
		return nil, err
	}
	return apiclient.Call[*models.Route](ctx, c.legacy, http.MethodPost, path, in)
}

// UpdateRoute replaces a route's editable fields.
func (c *Client) UpdateRoute(ctx context.Context, id int64, in *models.RouteInput) (*models.Route, error) {
	path := idPath("routes", id)
	if err := checkID(http.MethodPut, path, id); err != nil {
		return nil, err
	}
	if err := checkInput(http.MethodPut, path, in); err != nil {
		return nil, err
	}
	return apiclient.Call[*models.Route](ctx, c.legacy, http.MethodPut, path, in)
}

// DeleteRoute removes a route.
func (c *Client) DeleteRoute(ctx context.Context, id int64) error {
	path := idPath("routes", id)
	if err := checkID(http.MethodDelete, path, id); err != nil {
		return err
	}
	return noData(ctx, c.legacy, http.MethodDelete, path, nil)
}

// ListSchedules returns schedules matching the filter.
func (c *Client) ListSchedules(ctx context.Context, f models.ScheduleFilter) ([]models.Schedule, error) {
	q := url.Values{}
	if f.StationID > 0 {
		q.Set("stationId", strconv.FormatInt(f.StationID, 10))
	}
	if f.RouteID > 0 {
		q.Set("routeId", strconv.FormatInt(f.RouteID, 10))
	}
	q.Set("direction", f.Direction)
	q.Set("dayType", f.DayType)
	return get[[]models.Schedule](ctx, c.legacy, "schedules", apiclient.WithQuery(q))
}

// CreateSchedule adds a departure.
func (c *Client) CreateSchedule(ctx context.Context, in *models.ScheduleInput) (*models.Schedule, error) {
	const path = "schedules"
	if err := checkInput(http.MethodPost, path, in); err != nil {
		return nil, err
	}
	return apiclient.Call[*models.Schedule](ctx, c.legacy, http.MethodPost, path, in)
}

// UpdateSchedule replaces a departure.
func (c *Client) UpdateSchedule(ctx context.Context, id int64, in *models.ScheduleInput) (*models.Schedule, error) {
	path := idPath("schedules", id)
	if err := checkID(http.MethodPut, path, id); err != nil {
		return nil, err
	}
	if err := checkInput(http.MethodPut, path, in); err != nil {
		return nil, err
	}
	return apiclient.Call[*models.Schedule](ctx, c.legacy, http.MethodPut, path, in)
}

// DeleteSchedule removes a departure.
func (c *Client) DeleteSchedule(ctx context.Context, id int64) error {
	path := idPath("schedules", id)
	if err := checkID(http.MethodDelete, path, id); err != nil {
		return err
	}
	return noData(ctx, c.legacy, http.MethodDelete, path, nil)
}

// RoutesByStation lists the route placements of a station.
func (c *Client) RoutesByStation(ctx context.Context, stationID int64) ([]models.StationRoute, error) {
	path := idPath("station-routes/station", stationID)
	if err := checkID(http.MethodGet, path, stationID); err != nil {
		return nil, err
	}
	return get[[]models.StationRoute](ctx, c.legacy, path)
}

// StationsByRoute lists the stations of a route in sequence order.
func (c *Client) StationsByRoute(ctx context.Context, routeID int64) ([]models.StationRoute, error) {
	path := idPath("station-routes/route", routeID)
	if err := checkID(http.MethodGet, path, routeID); err != nil {
		return nil, err
	}
	return get[[]models.StationRoute](ctx, c.legacy, path)
}

// AssignStationToRoute places a station on a route.
func (c *Client) AssignStationToRoute(ctx context.Context, in *models.StationRouteInput) (*models.StationRoute, error) {
	const path = "station-routes"
	if err := checkInput(http.MethodPost, path, in); err != nil {
		return nil, err
	}
	return apiclient.Call[*models.StationRoute](ctx, c.legacy, http.MethodPost, path, in)
}

// RemoveStationFromRoute deletes a placement.
func (c *Client) RemoveStationFromRoute(ctx context.Context, id int64) error {
	path := idPath("station-routes", id)
	if err := checkID(http.MethodDelete, path, id); err != nil {
		return err
	}
	return noData(ctx, c.legacy, http.MethodDelete, path, nil)
}
