package cmd

import (
	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/stockroom/internal/app"
	"github.com/felixgeelhaar/stockroom/internal/config"
	"github.com/felixgeelhaar/stockroom/internal/log"
	"github.com/felixgeelhaar/stockroom/internal/version"
)

// CommandContext holds the global flags of one invocation.
type CommandContext struct {
	ConfigFile string
	APIURL     string
	LogLevel   string
	LogFormat  string
	Output     string
}

// NewCommandContext extracts the persistent flags from cmd.
func NewCommandContext(cmd *cobra.Command) (*CommandContext, error) {
	var (
		c   CommandContext
		err error
	)
	flags := cmd.Flags()

	if c.ConfigFile, err = flags.GetString("config"); err != nil {
		return nil, err
	}
	if c.APIURL, err = flags.GetString("api-url"); err != nil {
		return nil, err
	}
	if c.LogLevel, err = flags.GetString("log-level"); err != nil {
		return nil, err
	}
	if c.LogFormat, err = flags.GetString("log-format"); err != nil {
		return nil, err
	}
	if c.Output, err = flags.GetString("output"); err != nil {
		return nil, err
	}
	return &c, nil
}

// LoadConfig reads the configuration and applies flag overrides on top.
func (c *CommandContext) LoadConfig() (*config.Config, error) {
	cfg, err := config.Load(c.ConfigFile)
	if err != nil {
		return nil, err
	}

	if c.APIURL != "" {
		cfg.APIURL = c.APIURL
	}
	if c.LogLevel != "" {
		cfg.Log.Level = c.LogLevel
	}
	if c.LogFormat != "" {
		cfg.Log.Format = c.LogFormat
	}
	if c.Output != "" {
		cfg.Output = c.Output
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// newSession loads configuration, installs the process logger on stderr
// and builds the application. The caller must Close the result.
func newSession(cmd *cobra.Command) (*app.App, error) {
	cc, err := NewCommandContext(cmd)
	if err != nil {
		return nil, err
	}
	cfg, err := cc.LoadConfig()
	if err != nil {
		return nil, err
	}

	logger := log.New(log.Config{
		Level:          log.ParseLevel(cfg.Log.Level),
		Format:         log.ParseFormat(cfg.Log.Format),
		Output:         cmd.ErrOrStderr(),
		ServiceName:    "stockroom",
		ServiceVersion: version.Version,
	})
	log.SetDefaultLogger(logger)
	logger.Debug("configuration loaded", "api_url", cfg.APIURL, "storage", cfg.Storage.Backend)

	return app.New(cmd.Context(), cfg,
		app.WithOutput(cmd.OutOrStdout()),
		app.WithLogger(logger),
	)
}

// withSession runs fn against a session that is closed afterwards.
func withSession(cmd *cobra.Command, fn func(a *app.App) error) error {
	a, err := newSession(cmd)
	if err != nil {
		return err
	}
	defer a.Close()
	return fn(a)
}
