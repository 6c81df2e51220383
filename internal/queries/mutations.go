// Metroline - Metro Ticketing Client
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/metroline

package queries

import (
	"context"

	"github.com/tomtom215/metroline/internal/logging"
	"github.com/tomtom215/metroline/internal/models"
	"github.com/tomtom215/metroline/internal/query"
)

// Update is the input of update mutations.
type Update[T any] struct {
	ID    int64
	Input *T
}

// None is the result of writes that return no data.
type None struct{}

func deleter(fn func(context.Context, int64) error) func(context.Context, int64) (None, error) {
	return func(ctx context.Context, id int64) (None, error) {
		return None{}, fn(ctx, id)
	}
}

func updater[In, Out any](fn func(context.Context, int64, *In) (Out, error)) func(context.Context, Update[In]) (Out, error) {
	return func(ctx context.Context, u Update[In]) (Out, error) {
		return fn(ctx, u.ID, u.Input)
	}
}

// Stations

func (h *Hooks) CreateStation() *query.Mutation[*models.StationInput, *models.Station] {
	return query.NewMutation(h.cache, h.api.CreateStation).Invalidates(StationsRoot)
}

func (h *Hooks) UpdateStation() *query.Mutation[Update[models.StationInput], *models.Station] {
	return query.NewMutation(h.cache, updater(h.api.UpdateStation)).
		Invalidates(StationsRoot, RoutesRoot)
}

func (h *Hooks) DeleteStation() *query.Mutation[int64, None] {
	return query.NewMutation(h.cache, deleter(h.api.DeleteStation)).
		Invalidates(StationsRoot, RoutesRoot, SchedulesRoot)
}

// Routes

func (h *Hooks) CreateRoute() *query.Mutation[*models.RouteInput, *models.Route] {
	return query.NewMutation(h.cache, h.api.CreateRoute).Invalidates(RoutesRoot)
}

func (h *Hooks) UpdateRoute() *query.Mutation[Update[models.RouteInput], *models.Route] {
	return query.NewMutation(h.cache, updater(h.api.UpdateRoute)).
		Invalidates(RoutesRoot, StationsRoot)
}

func (h *Hooks) DeleteRoute() *query.Mutation[int64, None] {
	return query.NewMutation(h.cache, deleter(h.api.DeleteRoute)).
		Invalidates(RoutesRoot, StationsRoot, SchedulesRoot, FaresRoot)
}

// AssignStationToRoute refreshes both sides of the station/route relation.
func (h *Hooks) AssignStationToRoute() *query.Mutation[*models.StationRouteInput, *models.StationRoute] {
	return query.NewMutation(h.cache, h.api.AssignStationToRoute).
		InvalidatesWith(func(in *models.StationRouteInput, _ *models.StationRoute) []query.Key {
			return []query.Key{StationsByRouteKey(in.RouteID), RoutesByStationKey(in.StationID)}
		})
}

func (h *Hooks) RemoveStationFromRoute() *query.Mutation[int64, None] {
	return query.NewMutation(h.cache, deleter(h.api.RemoveStationFromRoute)).
		Invalidates(RoutesRoot, StationsRoot)
}

// Schedules

func (h *Hooks) CreateSchedule() *query.Mutation[*models.ScheduleInput, *models.Schedule] {
	return query.NewMutation(h.cache, h.api.CreateSchedule).Invalidates(SchedulesRoot)
}

func (h *Hooks) UpdateSchedule() *query.Mutation[Update[models.ScheduleInput], *models.Schedule] {
	return query.NewMutation(h.cache, updater(h.api.UpdateSchedule)).Invalidates(SchedulesRoot)
}

func (h *Hooks) DeleteSchedule() *query.Mutation[int64, None] {
	return query.NewMutation(h.cache, deleter(h.api.DeleteSchedule)).Invalidates(SchedulesRoot)
}

// Ticket types and fares

func (h *Hooks) CreateTicketType() *query.Mutation[*models.TicketTypeInput, *models.TicketType] {
	return query.NewMutation(h.cache, h.api.CreateTicketType).Invalidates(TicketTypesRoot)
}

func (h *Hooks) UpdateTicketType() *query.Mutation[Update[models.TicketTypeInput], *models.TicketType] {
	return query.NewMutation(h.cache, updater(h.api.UpdateTicketType)).Invalidates(TicketTypesRoot)
}

func (h *Hooks) DeleteTicketType() *query.Mutation[int64, None] {
	return query.NewMutation(h.cache, deleter(h.api.DeleteTicketType)).Invalidates(TicketTypesRoot)
}

func (h *Hooks) CreateFareMatrix() *query.Mutation[*models.FareMatrixInput, *models.FareMatrix] {
	return query.NewMutation(h.cache, h.api.CreateFareMatrix).Invalidates(FaresRoot)
}

func (h *Hooks) UpdateFareMatrix() *query.Mutation[Update[models.FareMatrixInput], *models.FareMatrix] {
	return query.NewMutation(h.cache, updater(h.api.UpdateFareMatrix)).Invalidates(FaresRoot)
}

func (h *Hooks) DeleteFareMatrix() *query.Mutation[int64, None] {
	return query.NewMutation(h.cache, deleter(h.api.DeleteFareMatrix)).Invalidates(FaresRoot)
}

// Tickets and orders

// PurchaseTicket refreshes the buyer's tickets and orders.
func (h *Hooks) PurchaseTicket() *query.Mutation[*models.PurchaseTicketRequest, []models.Ticket] {
	return query.NewMutation(h.cache, h.api.PurchaseTicket).Invalidates(TicketsRoot, OrdersRoot)
}

func (h *Hooks) CancelTicket() *query.Mutation[int64, *models.Ticket] {
	return query.NewMutation(h.cache, h.api.CancelTicket).Invalidates(TicketsRoot)
}

func (h *Hooks) CreateOrder() *query.Mutation[*models.CreateOrderRequest, *models.Order] {
	return query.NewMutation(h.cache, h.api.CreateOrder).Invalidates(OrdersRoot)
}

func (h *Hooks) CancelOrder() *query.Mutation[int64, *models.Order] {
	return query.NewMutation(h.cache, h.api.CancelOrder).Invalidates(OrdersRoot, TicketsRoot)
}

func (h *Hooks) CreatePayment() *query.Mutation[*models.CreatePaymentRequest, *models.PaymentRedirect] {
	return query.NewMutation(h.cache, h.api.CreatePayment).
		InvalidatesWith(func(in *models.CreatePaymentRequest, _ *models.PaymentRedirect) []query.Key {
			return []query.Key{OrderKey(in.OrderID), MyOrdersKey()}
		})
}

// Users

// UpdateProfile writes the returned profile straight into the cache and,
// when SyncProfile was set, into the session.
func (h *Hooks) UpdateProfile() *query.Mutation[*models.UpdateProfileRequest, *models.Profile] {
	update := func(ctx context.Context, req *models.UpdateProfileRequest) (*models.Profile, error) {
		p, err := h.api.UpdateMe(ctx, req)
		if err != nil || h.profiles == nil {
			return p, err
		}
		if err := h.profiles.SetProfile(ctx, p); err != nil {
			logging.Ctx(ctx).Warn().Err(err).Msg("Updated profile not persisted to session")
		}
		return p, nil
	}
	return query.NewMutation(h.cache, update).
		OnSuccess(func(_ *models.UpdateProfileRequest, p *models.Profile) {
			h.cache.SetData(ProfileKey(), p)
		})
}

func (h *Hooks) ChangePassword() *query.Mutation[*models.ChangePasswordRequest, None] {
	return query.NewMutation(h.cache, func(ctx context.Context, req *models.ChangePasswordRequest) (None, error) {
		return None{}, h.api.ChangePassword(ctx, req)
	})
}
