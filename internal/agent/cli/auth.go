package cli

import (
	"context"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/cryptotracker/tracker/internal/agent"
)

// NewRegisterCmd creates an account and signs in with it. Local preferences
// are replaced by the new account's defaults.
func NewRegisterCmd(app *App) *cobra.Command {
	var email, password string

	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create an account and sign in",
		Long: `Create an account and sign in.

Example:
  tracker register --email alice@test.com --password secret123
`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.withController(cmd, func(ctx context.Context, c *agent.Controller) error {
				if err := c.Register(ctx, email, password); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "registered and signed in as %s\n", email)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "account email")
	cmd.Flags().StringVar(&password, "password", "", "account password (at most 72 bytes)")
	cmd.MarkFlagRequired("email")
	cmd.MarkFlagRequired("password")

	return cmd
}

// NewLoginCmd signs in. Settings and favorites stored on the account
// overwrite the local ones.
func NewLoginCmd(app *App) *cobra.Command {
	var email, password string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in and load your saved preferences",
		Long: `Sign in and load your saved preferences.

Example:
  tracker login --email alice@test.com --password secret123
`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.withController(cmd, func(ctx context.Context, c *agent.Controller) error {
				if err := c.Login(ctx, email, password); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "signed in as %s\n", email)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "account email")
	cmd.Flags().StringVar(&password, "password", "", "account password")
	cmd.MarkFlagRequired("email")
	cmd.MarkFlagRequired("password")

	return cmd
}

func NewLogoutCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Sign out and reset local preferences",
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.withController(cmd, func(ctx context.Context, c *agent.Controller) error {
				if err := c.Logout(ctx); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "signed out")
				return nil
			})
		},
	}
}

// NewStatusCmd prints the session and the preferences in effect.
func NewStatusCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show session and preferences",
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.withController(cmd, func(ctx context.Context, c *agent.Controller) error {
				s := c.Session()

				w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
				fmt.Fprintf(w, "status:\t%s\n", s.Status)
				if s.Profile != nil {
					fmt.Fprintf(w, "email:\t%s\n", s.Profile.Email)
				}
				fmt.Fprintf(w, "language:\t%s\n", s.Prefs.Language)
				fmt.Fprintf(w, "theme:\t%s\n", s.Prefs.Theme)
				fmt.Fprintf(w, "currency:\t%s\n", s.Prefs.Currency)
				fmt.Fprintf(w, "favorites:\t%s\n", joinOrDash(s.Prefs.Favorites))
				return w.Flush()
			})
		},
	}
}

func joinOrDash(items []string) string {
	if len(items) == 0 {
		return "-"
	}
	return strings.Join(items, ", ")
}

// NewMeCmd prints the profile stored on the server, as opposed to status
// which shows the local view.
func NewMeCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "me",
		Short: "Show the account profile stored on the server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.withController(cmd, func(ctx context.Context, c *agent.Controller) error {
				p, err := c.Profile(ctx)
				if err != nil {
					return err
				}

				w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
				fmt.Fprintf(w, "email:\t%s\n", p.Email)
				fmt.Fprintf(w, "language:\t%s\n", p.Settings.Language)
				fmt.Fprintf(w, "theme:\t%s\n", p.Settings.Theme)
				fmt.Fprintf(w, "currency:\t%s\n", p.Settings.Currency)
				fmt.Fprintf(w, "favorites:\t%s\n", joinOrDash(p.Favorites))
				return w.Flush()
			})
		},
	}
}
