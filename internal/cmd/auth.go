package cmd

import (
	stderrors "errors"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/stockroom/internal/app"
	"github.com/felixgeelhaar/stockroom/internal/errors"
	"github.com/felixgeelhaar/stockroom/internal/tui"
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Sign in to the inventory backend",
	Long: `Exchange a username and password for an API token and store it for
later invocations. Missing values are prompted for when stdin is a
terminal; the password is never echoed.

On success the dashboard is shown.

Examples:
  stockroom login
  stockroom login --username alice
  STOCKROOM_API_URL=https://inventory.example.com stockroom login`,
	Args: cobra.NoArgs,
	RunE: runLogin,
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Forget the stored token",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withSession(cmd, func(a *app.App) error {
			a.Auth.Logout(cmd.Context())
			return nil
		})
	},
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show whether a token is stored and where requests go",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withSession(cmd, func(a *app.App) error {
			return a.Open(cmd.Context(), "/login")
		})
	},
}

func init() {
	loginCmd.Flags().StringP("username", "u", "", "username")
	loginCmd.Flags().StringP("password", "p", "", "password (prompted when omitted)")

	rootCmd.AddCommand(loginCmd, logoutCmd, statusCmd)
}

func runLogin(cmd *cobra.Command, args []string) error {
	username, _ := cmd.Flags().GetString("username")
	password, _ := cmd.Flags().GetString("password")

	creds, err := prompter.Credentials(tui.Credentials{Username: username, Password: password})
	if err != nil {
		if stderrors.Is(err, tui.ErrNotInteractive) {
			return errors.Wrap(errors.ErrCodeAuthInvalidInput, "username and password are required", err).
				WithSuggestion("Pass --username and --password when not running in a terminal")
		}
		return err
	}

	return withSession(cmd, func(a *app.App) error {
		return a.Auth.Login(cmd.Context(), creds.Username, creds.Password)
	})
}
