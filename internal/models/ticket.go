// Metroline - Metro Ticketing Client
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/metroline

package models

import "time"

// Ticket kinds.
const (
	TicketKindSingle  = "SINGLE"
	TicketKindDay     = "DAY"
	TicketKindWeekly  = "WEEKLY"
	TicketKindMonthly = "MONTHLY"
)

// Ticket statuses.
const (
	TicketStatusActive    = "ACTIVE"
	TicketStatusUsed      = "USED"
	TicketStatusExpired   = "EXPIRED"
	TicketStatusCancelled = "CANCELLED"
)

// TicketType is a product sold by the ticketing service.
type TicketType struct {
	ID           int64   `json:"id" validate:"gt=0"`
	Code         string  `json:"code" validate:"required"`
	Name         string  `json:"name" validate:"required"`
	Description  string  `json:"description,omitempty"`
	Kind         string  `json:"kind" validate:"oneof=SINGLE DAY WEEKLY MONTHLY"`
	Price        float64 `json:"price" validate:"gte=0"`
	ValidityDays int     `json:"validityDays" validate:"gte=0"`
	IsStudent    bool    `json:"isStudent"`
	IsActive     bool    `json:"isActive"`
}

// TicketTypeInput creates or updates a ticket type.
type TicketTypeInput struct {
	Code         string  `json:"code" validate:"required,max=20"`
	Name         string  `json:"name" validate:"required,max=100"`
	Description  string  `json:"description,omitempty"`
	Kind         string  `json:"kind" validate:"oneof=SINGLE DAY WEEKLY MONTHLY"`
	Price        float64 `json:"price" validate:"gte=0"`
	ValidityDays int     `json:"validityDays" validate:"gte=0"`
	IsStudent    bool    `json:"isStudent"`
	IsActive     *bool   `json:"isActive,omitempty"`
}

// FareMatrix is the single-journey price between two stations of a route.
type FareMatrix struct {
	ID            int64   `json:"id" validate:"gt=0"`
	RouteID       int64   `json:"routeId" validate:"gt=0"`
	FromStationID int64   `json:"fromStationId" validate:"gt=0"`
	ToStationID   int64   `json:"toStationId" validate:"gt=0"`
	Price         float64 `json:"price" validate:"gte=0"`
}

// FareMatrixInput creates or updates a fare matrix row.
type FareMatrixInput struct {
	RouteID       int64   `json:"routeId" validate:"gt=0"`
	FromStationID int64   `json:"fromStationId" validate:"gt=0"`
	ToStationID   int64   `json:"toStationId" validate:"gt=0,nefield=FromStationID"`
	Price         float64 `json:"price" validate:"gte=0"`
}

// FareQuery asks for the price of one journey.
type FareQuery struct {
	RouteID       int64 `validate:"gt=0"`
	FromStationID int64 `validate:"gt=0"`
	ToStationID   int64 `validate:"gt=0"`
}

// Fare is the backend-computed price of a journey.
type Fare struct {
	RouteID       int64   `json:"routeId"`
	FromStationID int64   `json:"fromStationId"`
	ToStationID   int64   `json:"toStationId"`
	Price         float64 `json:"price" validate:"gte=0"`
	Currency      string  `json:"currency,omitempty"`
}

// Ticket is an issued ticket. QRCode is produced by the backend and shown as-is.
type Ticket struct {
	ID            int64       `json:"id" validate:"gt=0"`
	Code          string      `json:"code" validate:"required"`
	UserID        int64       `json:"userId" validate:"gt=0"`
	TicketTypeID  int64       `json:"ticketTypeId" validate:"gt=0"`
	TicketType    *TicketType `json:"ticketType,omitempty"`
	RouteID       int64       `json:"routeId,omitempty"`
	FromStationID int64       `json:"fromStationId,omitempty"`
	ToStationID   int64       `json:"toStationId,omitempty"`
	Price         float64     `json:"price" validate:"gte=0"`
	Status        string      `json:"status" validate:"oneof=ACTIVE USED EXPIRED CANCELLED"`
	QRCode        string      `json:"qrCode,omitempty"`
	ValidFrom     time.Time   `json:"validFrom"`
	ValidUntil    time.Time   `json:"validUntil"`
	UsedAt        *time.Time  `json:"usedAt,omitempty"`
	CreatedAt     time.Time   `json:"createdAt"`
}

// PurchaseTicketRequest buys tickets on the ts origin. Journey fields are
// required for single tickets only.
type PurchaseTicketRequest struct {
	UserID        int64 `json:"userId" validate:"gt=0"`
	TicketTypeID  int64 `json:"ticketTypeId" validate:"gt=0"`
	RouteID       int64 `json:"routeId,omitempty" validate:"gte=0"`
	FromStationID int64 `json:"fromStationId,omitempty" validate:"gte=0"`
	ToStationID   int64 `json:"toStationId,omitempty" validate:"gte=0"`
	Quantity      int   `json:"quantity" validate:"min=1,max=10"`
	OrderID       int64 `json:"orderId,omitempty" validate:"gte=0"`
}
