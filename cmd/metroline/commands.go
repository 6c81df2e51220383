// Metroline - Metro Ticketing Client
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/metroline

package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/goccy/go-json"
	"github.com/spf13/pflag"

	"github.com/tomtom215/metroline/internal/account"
	"github.com/tomtom215/metroline/internal/apiclient"
	"github.com/tomtom215/metroline/internal/app"
	"github.com/tomtom215/metroline/internal/guard"
	"github.com/tomtom215/metroline/internal/i18n"
	"github.com/tomtom215/metroline/internal/models"
	"github.com/tomtom215/metroline/internal/session"
)

const dateLayout = "2006-01-02"

var (
	errForbidden = errors.New("not allowed")
	errBadID     = errors.New("--id must be positive")
)

// passwordEnv lets scripts sign in without a password on the command line.
const passwordEnv = "METROLINE_PASSWORD"

// requireView applies the same route guard the screen for path would.
func requireView(a *app.App, path string) error {
	d, err := a.Guard.Authorize(path)
	if err != nil {
		return err
	}
	if !d.Allowed {
		if d.Redirect == guard.LoginPath {
			return session.ErrNotAuthenticated
		}
		return fmt.Errorf("%w: %s", errForbidden, path)
	}
	return nil
}

func newFlags(name string) *pflag.FlagSet {
	fs := pflag.NewFlagSet(name, pflag.ContinueOnError)
	fs.SetOutput(io.Discard)
	return fs
}

func printJSON(out io.Writer, v any) error {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(out, "%s\n", b)
	return err
}

func runStations(ctx context.Context, a *app.App, out io.Writer, args []string) error {
	fs := newFlags("stations")
	id := fs.Int64("id", 0, "station id")
	withRoutes := fs.Bool("routes", false, "include the routes serving the station")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *id < 0 {
		return errBadID
	}
	if err := requireView(a, "/stations"); err != nil {
		return err
	}

	if *id == 0 {
		stations, err := a.Queries.Stations().Refetch(ctx)
		if err != nil {
			return err
		}
		return printJSON(out, stations)
	}

	station, err := a.Queries.Station(*id).Refetch(ctx)
	if err != nil {
		return err
	}
	if !*withRoutes {
		return printJSON(out, station)
	}
	routes, err := a.Queries.RoutesByStation(*id).Refetch(ctx)
	if err != nil {
		return err
	}
	return printJSON(out, map[string]any{"station": station, "routes": routes})
}

func runRoutes(ctx context.Context, a *app.App, out io.Writer, args []string) error {
	fs := newFlags("routes")
	id := fs.Int64("id", 0, "route id")
	withStations := fs.Bool("stations", false, "include the stations along the route")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *id < 0 {
		return errBadID
	}
	if err := requireView(a, "/routes"); err != nil {
		return err
	}

	if *id == 0 {
		routes, err := a.Queries.Routes().Refetch(ctx)
		if err != nil {
			return err
		}
		return printJSON(out, routes)
	}

	route, err := a.Queries.Route(*id).Refetch(ctx)
	if err != nil {
		return err
	}
	if !*withStations {
		return printJSON(out, route)
	}
	stations, err := a.Queries.StationsByRoute(*id).Refetch(ctx)
	if err != nil {
		return err
	}
	return printJSON(out, map[string]any{"route": route, "stations": stations})
}

func runTickets(ctx context.Context, a *app.App, out io.Writer, args []string) error {
	fs := newFlags("tickets")
	status := fs.String("status", "", "filter by status (ACTIVE, USED, EXPIRED, CANCELLED)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if err := requireView(a, "/tickets"); err != nil {
		return err
	}

	tickets, err := a.Queries.UserTickets(a.Session.UserID(), *status).Refetch(ctx)
	if err != nil {
		return err
	}
	if len(tickets) == 0 {
		_, err := fmt.Fprintln(out, a.I18n.T("ticket:empty", nil))
		return err
	}
	return printJSON(out, tickets)
}

func runLogin(ctx context.Context, a *app.App, out io.Writer, args []string) error {
	fs := newFlags("login")
	email := fs.String("email", "", "account email")
	password := fs.String("password", "", "password (default: $"+passwordEnv+")")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *password == "" {
		*password = os.Getenv(passwordEnv)
	}
	if *email == "" || *password == "" {
		return errors.New("--email and --password are required")
	}

	p, err := a.Account.Login(ctx, *email, *password)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(out, "%s\n%s\n",
		a.I18n.T("auth:login.success", nil),
		a.I18n.T("home:welcome", i18n.Args{"name": p.FullName}))
	return err
}

func runLogout(ctx context.Context, a *app.App, out io.Writer, _ []string) error {
	if err := a.Account.Logout(ctx); err != nil {
		return err
	}
	_, err := fmt.Fprintln(out, a.I18n.T("auth:logout.success", nil))
	return err
}

func runWhoami(ctx context.Context, a *app.App, out io.Writer, _ []string) error {
	p, err := a.Account.RefreshProfile(ctx)
	if err != nil {
		return err
	}
	return printJSON(out, p)
}

func runStats(ctx context.Context, a *app.App, out io.Writer, args []string) error {
	fs := newFlags("stats")
	from := fs.String("from", "", "first day, "+dateLayout)
	to := fs.String("to", "", "last day, "+dateLayout)
	groupBy := fs.String("group-by", "", "DAY, WEEK or MONTH")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if err := requireView(a, "/admin"); err != nil {
		return err
	}

	r := models.StatsRange{GroupBy: *groupBy}
	var err error
	if r.From, err = parseDate(*from); err != nil {
		return fmt.Errorf("--from: %w", err)
	}
	if r.To, err = parseDate(*to); err != nil {
		return fmt.Errorf("--to: %w", err)
	}

	a.Stats.SetRange(r)
	if err := a.Stats.FetchAll(ctx); err != nil {
		return err
	}
	return printJSON(out, a.Stats.Snapshot())
}

func parseDate(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	return time.Parse(dateLayout, s)
}

func runProxy(ctx context.Context, a *app.App, _ io.Writer, _ []string) error {
	return a.Serve(ctx)
}

// describe turns err into the line shown to the user.
func describe(a *app.App, err error) string {
	switch {
	case errors.Is(err, account.ErrSessionExpired):
		return a.I18n.T("auth:sessionExpired", nil)
	case errors.Is(err, session.ErrNotAuthenticated):
		return "not signed in, run: metroline login --email <email>"
	case errors.Is(err, errForbidden):
		return err.Error()
	case apiclient.IsTimeout(err):
		return a.I18n.T("home:errors.timeout", nil)
	case apiclient.IsTransport(err):
		return a.I18n.T("home:errors.network", nil)
	case apiclient.IsApplication(err):
		return apiclient.Message(err)
	default:
		return "error: " + err.Error()
	}
}
