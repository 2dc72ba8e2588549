package cli

import (
	"context"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/cryptotracker/tracker/internal/agent"
	"github.com/cryptotracker/tracker/internal/agent/api"
)

// NewCoinsCmd prints the market overview in the display currency, marking
// favorites with a star.
func NewCoinsCmd(app *App) *cobra.Command {
	var perPage int

	cmd := &cobra.Command{
		Use:   "coins",
		Short: "Top coins by market cap",
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.withController(cmd, func(ctx context.Context, c *agent.Controller) error {
				coins, err := c.Coins(ctx, perPage)
				if err != nil {
					return err
				}
				prefs := c.Session().Prefs
				cur := strings.ToUpper(prefs.Currency)

				w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
				fmt.Fprintln(w, "\tID\tSYMBOL\tPRICE\t24H\tMARKET CAP")
				for _, coin := range coins {
					star := ""
					if prefs.IsFavorite(coin.ID) {
						star = "*"
					}
					fmt.Fprintf(w, "%s\t%s\t%s\t%.2f %s\t%+.2f%%\t%.0f %s\n",
						star, coin.ID, coin.Symbol, coin.CurrentPrice, cur, coin.Change24h, coin.MarketCap, cur)
				}
				return w.Flush()
			})
		},
	}

	cmd.Flags().IntVar(&perPage, "per-page", 10, "number of coins")
	return cmd
}

// NewChartCmd prints one price per day for a coin.
func NewChartCmd(app *App) *cobra.Command {
	var days int

	cmd := &cobra.Command{
		Use:   "chart <coin-id>",
		Short: "Daily price history of a coin",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.withController(cmd, func(ctx context.Context, c *agent.Controller) error {
				points, err := c.Chart(ctx, args[0], days)
				if err != nil {
					return err
				}
				return printChart(cmd.OutOrStdout(), points, c.Session().Prefs.Currency)
			})
		},
	}

	cmd.Flags().IntVar(&days, "days", 7, "days of history (1-365)")
	return cmd
}

// NewDetailsCmd prints project metadata with the description in the display
// language.
func NewDetailsCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "details <coin-id>",
		Short: "Project details of a coin",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.withController(cmd, func(ctx context.Context, c *agent.Controller) error {
				d, err := c.Details(ctx, args[0])
				if err != nil {
					return err
				}
				printDetails(cmd.OutOrStdout(), d, c.Session().Prefs.Language)
				return nil
			})
		},
	}
}

// NewShowCmd loads details and price history of a coin concurrently and
// prints both.
func NewShowCmd(app *App) *cobra.Command {
	var days int

	cmd := &cobra.Command{
		Use:   "show <coin-id>",
		Short: "Details and daily price history of a coin",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.withController(cmd, func(ctx context.Context, c *agent.Controller) error {
				sel, err := c.SelectCoin(ctx, args[0], days)
				if err != nil {
					return err
				}
				prefs := c.Session().Prefs

				out := cmd.OutOrStdout()
				printDetails(out, sel.Details, prefs.Language)
				fmt.Fprintln(out)
				return printChart(out, sel.Chart, prefs.Currency)
			})
		},
	}

	cmd.Flags().IntVar(&days, "days", 7, "days of history (1-365)")
	return cmd
}

func printChart(out io.Writer, points []api.PricePoint, currency string) error {
	cur := strings.ToUpper(currency)
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	for _, p := range points {
		fmt.Fprintf(w, "%s\t%.2f %s\n", p.Time.UTC().Format("2006-01-02"), p.Price, cur)
	}
	return w.Flush()
}

func printDetails(out io.Writer, d *api.CoinDetails, language string) {
	fmt.Fprintf(out, "%s (%s)\n", d.Name, strings.ToUpper(d.Symbol))
	if d.GenesisDate != "" {
		fmt.Fprintf(out, "genesis: %s\n", d.GenesisDate)
	}
	if len(d.Links.Homepage) > 0 {
		fmt.Fprintf(out, "homepage: %s\n", d.Links.Homepage[0])
	}
	if text := d.DescriptionFor(language); text != "" {
		fmt.Fprintf(out, "\n%s\n", text)
	}
}
