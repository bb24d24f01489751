package cmd

import (
	"net/url"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/stockroom/internal/app"
)

var openCmd = &cobra.Command{
	Use:   "open <path>",
	Short: "Navigate to a view by path",
	Long: `Navigate to any route, for example "/", "/inventory?search=valve" or
"/transactions?page=2". Protected views redirect to the login view when no
token is stored.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return openView(cmd, args[0])
	},
}

var dashboardCmd = &cobra.Command{
	Use:     "dashboard",
	Aliases: []string{"home"},
	Short:   "Show stock totals and recent transactions",
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return openView(cmd, "/")
	},
}

var inventoryCmd = &cobra.Command{
	Use:     "inventory",
	Aliases: []string{"materials"},
	Short:   "List materials",
	Long: `List materials one page at a time.

Examples:
  stockroom inventory
  stockroom inventory --search bearing
  stockroom inventory --page 2 -o json`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		search, _ := cmd.Flags().GetString("search")
		page, _ := cmd.Flags().GetInt("page")

		q := url.Values{}
		if search != "" {
			q.Set("search", search)
		}
		if page > 1 {
			q.Set("page", strconv.Itoa(page))
		}
		return openView(cmd, withQuery("/inventory", q))
	},
}

var transactionsCmd = &cobra.Command{
	Use:   "transactions",
	Short: "List stock movements, newest first",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		page, _ := cmd.Flags().GetInt("page")

		q := url.Values{}
		if page > 1 {
			q.Set("page", strconv.Itoa(page))
		}
		return openView(cmd, withQuery("/transactions", q))
	},
}

func init() {
	inventoryCmd.Flags().StringP("search", "s", "", "filter by id, name, model, category, equipment, warehouse or shelf")
	inventoryCmd.Flags().Int("page", 1, "page number")
	transactionsCmd.Flags().Int("page", 1, "page number")

	rootCmd.AddCommand(openCmd, dashboardCmd, inventoryCmd, transactionsCmd)
}

func openView(cmd *cobra.Command, path string) error {
	return withSession(cmd, func(a *app.App) error {
		return a.Open(cmd.Context(), path)
	})
}

func withQuery(path string, q url.Values) string {
	if len(q) == 0 {
		return path
	}
	return path + "?" + q.Encode()
}
