// Metroline - Metro Ticketing Client
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/metroline

package queries

import (
	"context"

	"github.com/tomtom215/metroline/internal/backend"
	"github.com/tomtom215/metroline/internal/models"
	"github.com/tomtom215/metroline/internal/query"
)

// Hooks creates observers and mutations bound to one cache and one backend.
type Hooks struct {
	cache    *query.Client
	api      *backend.Client
	profiles ProfileSink
}

// ProfileSink receives the signed-in user's profile after it changes.
// *session.Store implements it.
type ProfileSink interface {
	SetProfile(ctx context.Context, p *models.Profile) error
}

// New returns hooks over cache and api.
func New(cache *query.Client, api *backend.Client) *Hooks {
	return &Hooks{cache: cache, api: api}
}

// SyncProfile makes profile mutations update sink as well as the cache.
func (h *Hooks) SyncProfile(sink ProfileSink) *Hooks {
	h.profiles = sink
	return h
}

// Cache returns the underlying query client.
func (h *Hooks) Cache() *query.Client { return h.cache }

// dependsOn disables an observer until ready holds. Caller options come
// last so they can still override it.
func dependsOn(ready bool, opts []query.Option) []query.Option {
	return append([]query.Option{query.WithEnabled(ready)}, opts...)
}

// Stations

func (h *Hooks) Stations(opts ...query.Option) *query.Observer[[]models.Station] {
	return query.NewObserver(h.cache, StationsKey(), h.api.ListStations, opts...)
}

func (h *Hooks) Station(id int64, opts ...query.Option) *query.Observer[*models.Station] {
	return query.NewObserver(h.cache, StationKey(id), func(ctx context.Context) (*models.Station, error) {
		return h.api.GetStation(ctx, id)
	}, dependsOn(id > 0, opts)...)
}

func (h *Hooks) BusConnections(stationID int64, opts ...query.Option) *query.Observer[[]models.BusConnection] {
	return query.NewObserver(h.cache, BusConnectionsKey(stationID), func(ctx context.Context) ([]models.BusConnection, error) {
		return h.api.ListBusConnections(ctx, stationID)
	}, dependsOn(stationID > 0, opts)...)
}

func (h *Hooks) RoutesByStation(stationID int64, opts ...query.Option) *query.Observer[[]models.StationRoute] {
	return query.NewObserver(h.cache, RoutesByStationKey(stationID), func(ctx context.Context) ([]models.StationRoute, error) {
		return h.api.RoutesByStation(ctx, stationID)
	}, dependsOn(stationID > 0, opts)...)
}

// Routes

func (h *Hooks) Routes(opts ...query.Option) *query.Observer[[]models.Route] {
	return query.NewObserver(h.cache, RoutesKey(), h.api.ListRoutes, opts...)
}

func (h *Hooks) Route(id int64, opts ...query.Option) *query.Observer[*models.Route] {
	return query.NewObserver(h.cache, RouteKey(id), func(ctx context.Context) (*models.Route, error) {
		return h.api.GetRoute(ctx, id)
	}, dependsOn(id > 0, opts)...)
}

func (h *Hooks) StationsByRoute(routeID int64, opts ...query.Option) *query.Observer[[]models.StationRoute] {
	return query.NewObserver(h.cache, StationsByRouteKey(routeID), func(ctx context.Context) ([]models.StationRoute, error) {
		return h.api.StationsByRoute(ctx, routeID)
	}, dependsOn(routeID > 0, opts)...)
}

// Schedules waits for a station or a route to narrow the list.
func (h *Hooks) Schedules(f models.ScheduleFilter, opts ...query.Option) *query.Observer[[]models.Schedule] {
	return query.NewObserver(h.cache, SchedulesKey(f), func(ctx context.Context) ([]models.Schedule, error) {
		return h.api.ListSchedules(ctx, f)
	}, dependsOn(f.StationID > 0 || f.RouteID > 0, opts)...)
}

// Tickets and fares

func (h *Hooks) TicketTypes(activeOnly bool, opts ...query.Option) *query.Observer[[]models.TicketType] {
	return query.NewObserver(h.cache, TicketTypesKey(activeOnly), func(ctx context.Context) ([]models.TicketType, error) {
		return h.api.ListTicketTypes(ctx, activeOnly)
	}, opts...)
}

func (h *Hooks) TicketType(id int64, opts ...query.Option) *query.Observer[*models.TicketType] {
	return query.NewObserver(h.cache, TicketTypeKey(id), func(ctx context.Context) (*models.TicketType, error) {
		return h.api.GetTicketType(ctx, id)
	}, dependsOn(id > 0, opts)...)
}

func (h *Hooks) FareMatrices(routeID int64, opts ...query.Option) *query.Observer[[]models.FareMatrix] {
	return query.NewObserver(h.cache, FareMatricesKey(routeID), func(ctx context.Context) ([]models.FareMatrix, error) {
		return h.api.ListFareMatrices(ctx, routeID)
	}, opts...)
}

// Fare stays disabled until route and both stations are chosen.
func (h *Hooks) Fare(fq models.FareQuery, opts ...query.Option) *query.Observer[*models.Fare] {
	ready := fq.RouteID > 0 && fq.FromStationID > 0 && fq.ToStationID > 0
	return query.NewObserver(h.cache, FareKey(fq), func(ctx context.Context) (*models.Fare, error) {
		return h.api.GetFare(ctx, fq)
	}, dependsOn(ready, opts)...)
}

func (h *Hooks) UserTickets(userID int64, status string, opts ...query.Option) *query.Observer[[]models.Ticket] {
	return query.NewObserver(h.cache, UserTicketsKey(userID, status), func(ctx context.Context) ([]models.Ticket, error) {
		return h.api.ListUserTickets(ctx, userID, status)
	}, dependsOn(userID > 0, opts)...)
}

func (h *Hooks) Ticket(id int64, opts ...query.Option) *query.Observer[*models.Ticket] {
	return query.NewObserver(h.cache, TicketKey(id), func(ctx context.Context) (*models.Ticket, error) {
		return h.api.GetTicket(ctx, id)
	}, dependsOn(id > 0, opts)...)
}

// Orders

func (h *Hooks) MyOrders(opts ...query.Option) *query.Observer[[]models.Order] {
	return query.NewObserver(h.cache, MyOrdersKey(), h.api.ListMyOrders, opts...)
}

func (h *Hooks) Order(id int64, opts ...query.Option) *query.Observer[*models.Order] {
	return query.NewObserver(h.cache, OrderKey(id), func(ctx context.Context) (*models.Order, error) {
		return h.api.GetOrder(ctx, id)
	}, dependsOn(id > 0, opts)...)
}

// Users

// Profile reads users/me. Pass query.WithEnabled(authenticated) so anonymous
// screens do not hit the endpoint.
func (h *Hooks) Profile(opts ...query.Option) *query.Observer[*models.Profile] {
	return query.NewObserver(h.cache, ProfileKey(), h.api.GetMe, opts...)
}

// Statistics

func (h *Hooks) TicketSales(r models.StatsRange, opts ...query.Option) *query.Observer[[]models.TicketSalesStat] {
	return query.NewObserver(h.cache, StatsKey(StatsTicketSales, r), func(ctx context.Context) ([]models.TicketSalesStat, error) {
		return h.api.TicketSales(ctx, r)
	}, opts...)
}

func (h *Hooks) StationUsage(r models.StatsRange, opts ...query.Option) *query.Observer[[]models.StationUsageStat] {
	return query.NewObserver(h.cache, StatsKey(StatsStationUsage, r), func(ctx context.Context) ([]models.StationUsageStat, error) {
		return h.api.StationUsage(ctx, r)
	}, opts...)
}

func (h *Hooks) Revenue(r models.StatsRange, opts ...query.Option) *query.Observer[[]models.RevenueStat] {
	return query.NewObserver(h.cache, StatsKey(StatsRevenue, r), func(ctx context.Context) ([]models.RevenueStat, error) {
		return h.api.Revenue(ctx, r)
	}, opts...)
}
