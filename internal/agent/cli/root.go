// Package cli is the command-line front end of the crypto tracker agent.
//
// Every command restores the session from the local state file, reconciles
// it with the server when a token is stored, runs, and waits for queued
// preference pushes before exiting.
package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/cryptotracker/tracker/internal/agent"
	"github.com/cryptotracker/tracker/internal/agent/api"
	"github.com/cryptotracker/tracker/internal/agent/storage"
	"github.com/cryptotracker/tracker/pkg/logger"
)

const defaultServerURL = "http://localhost:4000"

// App is the state shared by all commands.
type App struct {
	// ServerURL is the base URL of the tracker server.
	ServerURL string
	// StatePath overrides the state file location. Empty means
	// storage.DefaultPath.
	StatePath string

	Log zerolog.Logger
}

// NewRootCmd builds the root command with every subcommand registered.
func NewRootCmd(buildVersion, buildDate string, log zerolog.Logger) *cobra.Command {
	app := &App{ServerURL: defaultServerURL, Log: log}

	cmd := &cobra.Command{
		Use:   "tracker",
		Short: "Crypto tracker client: market overview, favorites and display settings",
		Long: `Crypto tracker client.

Preferences are kept in a local state file and, once signed in, synced to
your account. Market data is read through the tracker server.

Examples:
  tracker register --email alice@test.com --password secret123
  tracker settings --currency usd --language en
  tracker favorites toggle bitcoin
  tracker coins
  tracker chart bitcoin --days 30
  tracker show bitcoin
`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVar(&app.ServerURL, "server", defaultServerURL, "tracker server base URL")
	cmd.PersistentFlags().StringVar(&app.StatePath, "state", "", "state file (default ~/.cryptotracker/state.json)")

	cmd.AddCommand(NewRegisterCmd(app))
	cmd.AddCommand(NewLoginCmd(app))
	cmd.AddCommand(NewLogoutCmd(app))
	cmd.AddCommand(NewStatusCmd(app))
	cmd.AddCommand(NewMeCmd(app))
	cmd.AddCommand(NewSettingsCmd(app))
	cmd.AddCommand(NewFavoritesCmd(app))
	cmd.AddCommand(NewCoinsCmd(app))
	cmd.AddCommand(NewChartCmd(app))
	cmd.AddCommand(NewDetailsCmd(app))
	cmd.AddCommand(NewShowCmd(app))
	cmd.AddCommand(NewVersionCmd(buildVersion, buildDate))

	return cmd
}

// Execute runs the CLI and exits with status 1 on failure.
func Execute(buildVersion, buildDate string) {
	log := logger.Init(logger.Options{
		Level:   "warn",
		Pretty:  true,
		Output:  os.Stderr,
		Service: "tracker",
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := NewRootCmd(buildVersion, buildDate, log).ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "error:", Describe(err))
		stop()
		os.Exit(1)
	}
}

// Describe turns err into the message shown to the user.
func Describe(err error) string {
	var apiErr *api.Error
	switch {
	case api.IsRateLimited(err):
		return "too many requests, try again later"
	case errors.Is(err, agent.ErrNotSignedIn):
		return "not signed in, run `tracker login` first"
	case errors.As(err, &apiErr):
		return apiErr.Message
	default:
		return err.Error()
	}
}

// withController starts a controller over the state file, runs fn and
// drains pending pushes.
func (a *App) withController(cmd *cobra.Command, fn func(ctx context.Context, c *agent.Controller) error) error {
	path := a.StatePath
	if path == "" {
		p, err := storage.DefaultPath()
		if err != nil {
			return err
		}
		path = p
	}

	store, err := storage.Open(path)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	c := agent.New(store, api.NewClient(a.ServerURL), a.Log)
	if err := c.Start(ctx); err != nil {
		return err
	}
	defer c.Close()

	return fn(ctx, c)
}
