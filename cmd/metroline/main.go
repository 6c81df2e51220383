// Metroline - Metro Ticketing Client
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/metroline

// Command metroline is a terminal client for the metro ticketing backend.
//
//	metroline [global flags] <command> [flags]
//
// Commands:
//
//	stations   list stations, or show one with --id
//	routes     list routes, or show one with --id
//	tickets    list the signed-in user's tickets
//	login      sign in and persist the session
//	logout     end the session
//	whoami     reload and print the signed-in profile
//	stats      admin dashboard statistics
//	proxy      run the dev /api proxy and cache sweeper until interrupted
//
// Configuration comes from defaults, an optional config.yaml and environment
// variables, in that order.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/pflag"

	"github.com/tomtom215/metroline/internal/app"
	"github.com/tomtom215/metroline/internal/config"
	"github.com/tomtom215/metroline/internal/logging"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	if err != nil {
		os.Exit(1)
	}
}

// command runs one subcommand against a built App.
type command struct {
	summary string
	run     func(ctx context.Context, a *app.App, out io.Writer, args []string) error
}

var commands = map[string]command{
	"stations": {"list stations, or show one with --id", runStations},
	"routes":   {"list routes, or show one with --id", runRoutes},
	"tickets":  {"list your tickets", runTickets},
	"login":    {"sign in", runLogin},
	"logout":   {"sign out", runLogout},
	"whoami":   {"show the signed-in profile", runWhoami},
	"stats":    {"admin dashboard statistics", runStats},
	"proxy":    {"run the dev /api proxy", runProxy},
}

var commandOrder = []string{"stations", "routes", "tickets", "login", "logout", "whoami", "stats", "proxy"}

func run(ctx context.Context, args []string, out, errOut io.Writer) error {
	var (
		configPath string
		logLevel   string
		lang       string
	)
	flags := pflag.NewFlagSet("metroline", pflag.ContinueOnError)
	flags.SetOutput(errOut)
	flags.SetInterspersed(false)
	flags.StringVarP(&configPath, "config", "c", "", "config file (default: search ./config.yaml)")
	flags.StringVar(&logLevel, "log-level", "", "override logging.level")
	flags.StringVar(&lang, "lang", "", "message language (default: $LANG, then the configured locale)")
	flags.Usage = func() { usage(errOut, flags) }

	if err := flags.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return nil
		}
		return err
	}
	if flags.NArg() == 0 {
		usage(errOut, flags)
		return errors.New("no command given")
	}
	name := flags.Arg(0)
	cmd, ok := commands[name]
	if !ok {
		usage(errOut, flags)
		return fmt.Errorf("unknown command %q", name)
	}

	cfg, err := loadConfig(configPath)
	if err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return err
	}
	if logLevel != "" {
		cfg.Logging.Level = logLevel
	}
	logging.Init(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Caller: cfg.Logging.Caller,
		Output: errOut,
	})
	if name == "proxy" {
		cfg.Proxy.Enabled = true
	}

	a, err := app.New(ctx, cfg)
	if err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return err
	}
	defer a.Close()

	if lang == "" {
		lang = posixLocale(os.Getenv("LANG"))
	}
	if lang != "" {
		a.I18n.SetLocale(a.I18n.Match(lang))
	}

	if err := cmd.run(ctx, a, out, flags.Args()[1:]); err != nil {
		fmt.Fprintf(errOut, "%s\n", describe(a, err))
		logging.Debug().Err(err).Str("command", name).Msg("Command failed")
		return err
	}
	return nil
}

// posixLocale turns "en_US.UTF-8" into "en-US". "C" and "POSIX" mean no preference.
func posixLocale(v string) string {
	if i := strings.IndexAny(v, ".@"); i >= 0 {
		v = v[:i]
	}
	if v == "C" || v == "POSIX" {
		return ""
	}
	return strings.ReplaceAll(v, "_", "-")
}

func loadConfig(path string) (*config.Config, error) {
	if path != "" {
		return config.LoadFile(path)
	}
	return config.Load()
}

func usage(w io.Writer, flags *pflag.FlagSet) {
	fmt.Fprintf(w, "Usage: metroline [global flags] <command> [flags]\n\nCommands:\n")
	for _, name := range commandOrder {
		fmt.Fprintf(w, "  %-10s %s\n", name, commands[name].summary)
	}
	fmt.Fprintf(w, "\nGlobal flags:\n")
	flags.SetOutput(w)
	flags.PrintDefaults()
}
