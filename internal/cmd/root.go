package cmd

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/stockroom/internal/tui"
)

var rootCmd = &cobra.Command{
	Use:   "stockroom",
	Short: "Inventory console for the stockroom backend",
	Long: `stockroom is a terminal client for the inventory backend.

It signs in with a username and password, keeps the issued token between
invocations, and renders the dashboard, inventory and transaction views.
Views that need a signed-in user send you to the login view instead.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// prompter is replaced in tests.
var prompter tui.Prompter = tui.HuhPrompter{}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

// ExecuteContext runs the root command with ctx, which is cancelled on
// interrupt by the caller.
func ExecuteContext(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

// ExecuteArgs runs the root command with ctx against args instead of
// os.Args.
func ExecuteArgs(ctx context.Context, args []string) error {
	rootCmd.SetArgs(args)
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.String("config", "", "config file (default is $HOME/.stockroom/config.yaml)")
	pf.String("api-url", "", "inventory backend origin (overrides STOCKROOM_API_URL)")
	pf.String("log-level", "", "log level: debug, info, warn, error")
	pf.String("log-format", "", "log format: text, json")
	pf.StringP("output", "o", "", "output format: text, json, yaml")
}
