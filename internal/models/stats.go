// Metroline - Metro Ticketing Client
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/metroline

package models

import "time"

// StatsRange filters the statistics endpoints. Zero times are not sent.
type StatsRange struct {
	From    time.Time
	To      time.Time
	GroupBy string `validate:"omitempty,oneof=DAY WEEK MONTH"`
}

// TicketSalesStat is ticket sales for one period and ticket type.
type TicketSalesStat struct {
	Period         string  `json:"period" validate:"required"`
	TicketTypeID   int64   `json:"ticketTypeId,omitempty"`
	TicketTypeName string  `json:"ticketTypeName,omitempty"`
	Quantity       int     `json:"quantity" validate:"gte=0"`
	Revenue        float64 `json:"revenue" validate:"gte=0"`
}

// StationUsageStat is gate traffic at one station.
type StationUsageStat struct {
	StationID   int64  `json:"stationId" validate:"gt=0"`
	StationName string `json:"stationName"`
	Entries     int    `json:"entries" validate:"gte=0"`
	Exits       int    `json:"exits" validate:"gte=0"`
}

// RevenueStat is revenue for one period.
type RevenueStat struct {
	Period  string  `json:"period" validate:"required"`
	Revenue float64 `json:"revenue" validate:"gte=0"`
	Orders  int     `json:"orders" validate:"gte=0"`
}
