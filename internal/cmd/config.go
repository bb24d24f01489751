package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/stockroom/internal/config"
	"github.com/felixgeelhaar/stockroom/internal/ux"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "View or write stockroom configuration",
	Long: `Manage configuration stored at ~/.stockroom/config.yaml.

Every key can be overridden with a STOCKROOM_ environment variable, for
example STOCKROOM_API_URL or STOCKROOM_STORAGE_BACKEND, or from a .env file
in the working directory.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return cmd.Help()
	},
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective configuration",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cc, err := NewCommandContext(cmd)
		if err != nil {
			return err
		}
		cfg, err := cc.LoadConfig()
		if err != nil {
			return err
		}

		format := cfg.Output
		if format == ux.FormatText {
			format = ux.FormatYAML
		}
		formatter, err := ux.NewFormatter(format, &ux.FormatterOptions{Writer: cmd.OutOrStdout()})
		if err != nil {
			return err
		}
		return formatter.Format(cfg)
	},
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Print the configuration file path",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		path, _ := cmd.Flags().GetString("config")
		if path == "" {
			path = config.DefaultPath()
		}
		fmt.Fprintln(cmd.OutOrStdout(), path)
		return nil
	},
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write the effective configuration to the config file",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cc, err := NewCommandContext(cmd)
		if err != nil {
			return err
		}
		path := cc.ConfigFile
		if path == "" {
			path = config.DefaultPath()
		}
		// The target may not exist yet; start from defaults then.
		if _, err := os.Stat(cc.ConfigFile); cc.ConfigFile != "" && err != nil {
			cc.ConfigFile = ""
		}

		cfg, err := cc.LoadConfig()
		if err != nil {
			return err
		}
		if err := config.Save(cfg, path); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", path)
		return nil
	},
}

func init() {
	configCmd.AddCommand(configShowCmd, configPathCmd, configInitCmd)
	rootCmd.AddCommand(configCmd)
}
