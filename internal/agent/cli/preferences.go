package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/cryptotracker/tracker/internal/agent"
)

// NewSettingsCmd changes display settings. Without flags it prints the
// current ones.
func NewSettingsCmd(app *App) *cobra.Command {
	var language, theme, currency string

	cmd := &cobra.Command{
		Use:   "settings",
		Short: "Show or change language, theme and currency",
		Long: `Show or change display settings.

When signed in, changes are saved to your account as well.

Examples:
  tracker settings
  tracker settings --currency usd
  tracker settings --language en --theme light
`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.withController(cmd, func(ctx context.Context, c *agent.Controller) error {
				if cmd.Flags().Changed("language") {
					if err := c.SetLanguage(ctx, language); err != nil {
						return err
					}
				}
				if cmd.Flags().Changed("theme") {
					if err := c.SetTheme(ctx, theme); err != nil {
						return err
					}
				}
				if cmd.Flags().Changed("currency") {
					if err := c.SetCurrency(ctx, currency); err != nil {
						return err
					}
				}

				p := c.Session().Prefs
				fmt.Fprintf(cmd.OutOrStdout(), "language=%s theme=%s currency=%s\n", p.Language, p.Theme, p.Currency)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&language, "language", "", "ua or en")
	cmd.Flags().StringVar(&theme, "theme", "", "dark or light")
	cmd.Flags().StringVar(&currency, "currency", "", "uah or usd")

	return cmd
}

func NewFavoritesCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "favorites",
		Short: "List or toggle favorite coins",
	}
	cmd.AddCommand(newFavoritesListCmd(app))
	cmd.AddCommand(newFavoritesToggleCmd(app))
	return cmd
}

func newFavoritesListCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List favorite coin ids",
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.withController(cmd, func(ctx context.Context, c *agent.Controller) error {
				for _, id := range c.Session().Prefs.Favorites {
					fmt.Fprintln(cmd.OutOrStdout(), id)
				}
				return nil
			})
		},
	}
}

func newFavoritesToggleCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "toggle <coin-id>",
		Short: "Add a coin to favorites, or remove it if already there",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.withController(cmd, func(ctx context.Context, c *agent.Controller) error {
				added, err := c.ToggleFavorite(ctx, args[0])
				if err != nil {
					return err
				}
				if added {
					fmt.Fprintf(cmd.OutOrStdout(), "%s added to favorites\n", args[0])
				} else {
					fmt.Fprintf(cmd.OutOrStdout(), "%s removed from favorites\n", args[0])
				}
				return nil
			})
		},
	}
}
