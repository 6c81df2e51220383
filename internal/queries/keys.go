// Metroline - Metro Ticketing Client
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/metroline

package queries

import (
	"time"

	"github.com/tomtom215/metroline/internal/models"
	"github.com/tomtom215/metroline/internal/query"
)

const dateLayout = "2006-01-02"

// Roots used as invalidation prefixes.
var (
	StationsRoot    = query.Key{"stations"}
	RoutesRoot      = query.Key{"routes"}
	SchedulesRoot   = query.Key{"schedules"}
	TicketTypesRoot = query.Key{"ticket-types"}
	FaresRoot       = query.Key{"fare-matrices"}
	TicketsRoot     = query.Key{"tickets"}
	OrdersRoot      = query.Key{"orders"}
	UsersRoot       = query.Key{"users"}
	StatsRoot       = query.Key{"stats"}
)

func StationsKey() query.Key { return query.Key{"stations", "list"} }

func StationKey(id int64) query.Key { return query.Key{"stations", id} }

func BusConnectionsKey(stationID int64) query.Key {
	return query.Key{"stations", stationID, "bus-connections"}
}

// RoutesByStationKey lives under the station so station writes refresh it.
func RoutesByStationKey(stationID int64) query.Key {
	return query.Key{"stations", stationID, "routes"}
}

func RoutesKey() query.Key { return query.Key{"routes", "list"} }

func RouteKey(id int64) query.Key { return query.Key{"routes", id} }

func StationsByRouteKey(routeID int64) query.Key {
	return query.Key{"routes", routeID, "stations"}
}

// SchedulesKey includes every filter field; zero fields are part of the key.
func SchedulesKey(f models.ScheduleFilter) query.Key {
	return query.Key{"schedules", f.StationID, f.RouteID, f.Direction, f.DayType}
}

func TicketTypesKey(activeOnly bool) query.Key {
	return query.Key{"ticket-types", "list", activeOnly}
}

func TicketTypeKey(id int64) query.Key { return query.Key{"ticket-types", id} }

func FareMatricesKey(routeID int64) query.Key {
	return query.Key{"fare-matrices", "route", routeID}
}

func FareKey(fq models.FareQuery) query.Key {
	return query.Key{"fare-matrices", "fare", fq.RouteID, fq.FromStationID, fq.ToStationID}
}

func UserTicketsKey(userID int64, status string) query.Key {
	return query.Key{"tickets", "user", userID, status}
}

func TicketKey(id int64) query.Key { return query.Key{"tickets", id} }

func MyOrdersKey() query.Key { return query.Key{"orders", "me"} }

func OrderKey(id int64) query.Key { return query.Key{"orders", id} }

// ProfileKey addresses the authenticated user's profile.
func ProfileKey() query.Key { return query.Key{"users", "me"} }

// Stats kinds.
const (
	StatsTicketSales  = "ticket-sales"
	StatsStationUsage = "station-usage"
	StatsRevenue      = "revenue"
)

func StatsKey(kind string, r models.StatsRange) query.Key {
	return query.Key{"stats", kind, formatDate(r.From), formatDate(r.To), r.GroupBy}
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(dateLayout)
}
