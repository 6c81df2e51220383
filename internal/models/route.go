// Metroline - Metro Ticketing Client
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/metroline

package models

// Route statuses.
const (
	RouteStatusActive      = "ACTIVE"
	RouteStatusInactive    = "INACTIVE"
	RouteStatusMaintenance = "MAINTENANCE"
)

// Route is a metro line.
type Route struct {
	ID             int64   `json:"id" validate:"gt=0"`
	Code           string  `json:"code" validate:"required"`
	Name           string  `json:"name" validate:"required"`
	Color          string  `json:"color,omitempty" validate:"omitempty,hexcolor"`
	StartStationID int64   `json:"startStationId,omitempty"`
	EndStationID   int64   `json:"endStationId,omitempty"`
	DistanceKm     float64 `json:"distanceKm" validate:"gte=0"`
	Status         string  `json:"status" validate:"oneof=ACTIVE INACTIVE MAINTENANCE"`
}

// RouteInput creates or updates a route.
type RouteInput struct {
	Code           string  `json:"code" validate:"required,max=20"`
	Name           string  `json:"name" validate:"required,max=100"`
	Color          string  `json:"color,omitempty" validate:"omitempty,hexcolor"`
	StartStationID int64   `json:"startStationId,omitempty" validate:"gte=0"`
	EndStationID   int64   `json:"endStationId,omitempty" validate:"gte=0"`
	DistanceKm     float64 `json:"distanceKm" validate:"gte=0"`
	Status         string  `json:"status,omitempty" validate:"omitempty,oneof=ACTIVE INACTIVE MAINTENANCE"`
}

// StationRoute places a station on a route.
type StationRoute struct {
	ID                  int64    `json:"id" validate:"gt=0"`
	StationID           int64    `json:"stationId" validate:"gt=0"`
	RouteID             int64    `json:"routeId" validate:"gt=0"`
	Sequence            int      `json:"sequence" validate:"gte=0"`
	DistanceFromStartKm float64  `json:"distanceFromStartKm" validate:"gte=0"`
	Station             *Station `json:"station,omitempty"`
	Route               *Route   `json:"route,omitempty"`
}

// StationRouteInput assigns a station to a route.
type StationRouteInput struct {
	StationID           int64   `json:"stationId" validate:"gt=0"`
	RouteID             int64   `json:"routeId" validate:"gt=0"`
	Sequence            int     `json:"sequence" validate:"gte=0"`
	DistanceFromStartKm float64 `json:"distanceFromStartKm" validate:"gte=0"`
}

// Schedule directions and day types.
const (
	DirectionOutbound = "OUTBOUND"
	DirectionInbound  = "INBOUND"

	DayTypeWeekday = "WEEKDAY"
	DayTypeWeekend = "WEEKEND"
	DayTypeHoliday = "HOLIDAY"
)

// Schedule is one departure of a route from a station.
type Schedule struct {
	ID            int64  `json:"id" validate:"gt=0"`
	RouteID       int64  `json:"routeId" validate:"gt=0"`
	StationID     int64  `json:"stationId" validate:"gt=0"`
	Direction     string `json:"direction" validate:"oneof=OUTBOUND INBOUND"`
	DepartureTime string `json:"departureTime" validate:"required,datetime=15:04"`
	DayType       string `json:"dayType" validate:"oneof=WEEKDAY WEEKEND HOLIDAY"`
}

// ScheduleFilter narrows schedules. Zero values are not sent.
type ScheduleFilter struct {
	StationID int64
	RouteID   int64
	Direction string
	DayType   string
}

// ScheduleInput creates or updates a schedule.
type ScheduleInput struct {
	RouteID       int64  `json:"routeId" validate:"gt=0"`
	StationID     int64  `json:"stationId" validate:"gt=0"`
	Direction     string `json:"direction" validate:"oneof=OUTBOUND INBOUND"`
	DepartureTime string `json:"departureTime" validate:"required,datetime=15:04"`
	DayType       string `json:"dayType" validate:"oneof=WEEKDAY WEEKEND HOLIDAY"`
}
