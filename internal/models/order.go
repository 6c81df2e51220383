// Metroline - Metro Ticketing Client
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/metroline

package models

import "time"

// Order statuses.
const (
	OrderStatusPending   = "PENDING"
	OrderStatusPaid      = "PAID"
	OrderStatusCancelled = "CANCELLED"
	OrderStatusFailed    = "FAILED"
	OrderStatusRefunded  = "REFUNDED"
)

// Payment methods accepted by payment/create.
const (
	PaymentMethodVNPay   = "VNPAY"
	PaymentMethodMoMo    = "MOMO"
	PaymentMethodZaloPay = "ZALOPAY"
)

// Order groups ticket purchases awaiting or after payment.
type Order struct {
	ID            int64       `json:"id" validate:"gt=0"`
	Code          string      `json:"code" validate:"required"`
	UserID        int64       `json:"userId" validate:"gt=0"`
	Items         []OrderItem `json:"items" validate:"dive"`
	TotalAmount   float64     `json:"totalAmount" validate:"gte=0"`
	Status        string      `json:"status" validate:"oneof=PENDING PAID CANCELLED FAILED REFUNDED"`
	PaymentMethod string      `json:"paymentMethod,omitempty"`
	CreatedAt     time.Time   `json:"createdAt"`
	PaidAt        *time.Time  `json:"paidAt,omitempty"`
}

// OrderItem is one line of an order.
type OrderItem struct {
	TicketTypeID  int64   `json:"ticketTypeId" validate:"gt=0"`
	Quantity      int     `json:"quantity" validate:"min=1"`
	UnitPrice     float64 `json:"unitPrice" validate:"gte=0"`
	RouteID       int64   `json:"routeId,omitempty"`
	FromStationID int64   `json:"fromStationId,omitempty"`
	ToStationID   int64   `json:"toStationId,omitempty"`
}

// CreateOrderRequest is the body of POST orders.
type CreateOrderRequest struct {
	Items         []OrderItemInput `json:"items" validate:"required,min=1,dive"`
	PaymentMethod string           `json:"paymentMethod" validate:"required,oneof=VNPAY MOMO ZALOPAY"`
}

// OrderItemInput is one requested line. Prices are computed by the backend.
type OrderItemInput struct {
	TicketTypeID  int64 `json:"ticketTypeId" validate:"gt=0"`
	Quantity      int   `json:"quantity" validate:"min=1,max=10"`
	RouteID       int64 `json:"routeId,omitempty" validate:"gte=0"`
	FromStationID int64 `json:"fromStationId,omitempty" validate:"gte=0"`
	ToStationID   int64 `json:"toStationId,omitempty" validate:"gte=0"`
}

// CreatePaymentRequest is the body of POST payment/create.
type CreatePaymentRequest struct {
	OrderID   int64  `json:"orderId" validate:"gt=0"`
	Method    string `json:"method" validate:"required,oneof=VNPAY MOMO ZALOPAY"`
	ReturnURL string `json:"returnUrl" validate:"required,url"`
}

// PaymentRedirect is where the user completes payment.
type PaymentRedirect struct {
	PaymentURL    string `json:"paymentUrl" validate:"required,url"`
	TransactionID string `json:"transactionId,omitempty"`
}
