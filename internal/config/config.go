// Package config loads stockroom settings from defaults, a YAML file, a
// .env file and STOCKROOM_* environment variables, in increasing order of
// precedence, and validates the result.
package config

import (
	stderrors "errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/felixgeelhaar/stockroom/internal/api"
	"github.com/felixgeelhaar/stockroom/internal/errors"
	"github.com/felixgeelhaar/stockroom/internal/storage"
)

// EnvPrefix namespaces every environment override.
const EnvPrefix = "STOCKROOM"

// Config holds the application configuration.
type Config struct {
	// APIURL is the backend origin; "/api" is appended by the client.
	APIURL string `mapstructure:"api_url" json:"api_url" yaml:"api_url" validate:"required,url"`
	// BaseURL is the root every navigation path is resolved under.
	BaseURL string        `mapstructure:"base_url" json:"base_url" yaml:"base_url" validate:"omitempty,startswith=/"`
	// Timeout bounds every API request; it defaults to api.DefaultTimeout.
	Timeout time.Duration `mapstructure:"timeout" json:"timeout" yaml:"timeout" validate:"gt=0"`
	Output  string        `mapstructure:"output" json:"output" yaml:"output" validate:"oneof=text json yaml"`

	Log     LogConfig     `mapstructure:"log" json:"log" yaml:"log"`
	Storage StorageConfig `mapstructure:"storage" json:"storage" yaml:"storage"`
}

// LogConfig configures the process logger.
type LogConfig struct {
	Level  string `mapstructure:"level" json:"level" yaml:"level" validate:"oneof=debug info warn error"`
	Format string `mapstructure:"format" json:"format" yaml:"format" validate:"oneof=text json"`
}

// StorageConfig selects where the credential is persisted.
type StorageConfig struct {
	Backend       string `mapstructure:"backend" json:"backend" yaml:"backend" validate:"oneof=file memory redis"`
	Path          string `mapstructure:"path" json:"path" yaml:"path"`
	RedisAddr     string `mapstructure:"redis_addr" json:"redis_addr,omitempty" yaml:"redis_addr,omitempty" validate:"required_if=Backend redis"`
	RedisPassword string `mapstructure:"redis_password" json:"-" yaml:"-"`
	RedisDB       int    `mapstructure:"redis_db" json:"redis_db,omitempty" yaml:"redis_db,omitempty" validate:"gte=0"`
	RedisPrefix   string `mapstructure:"redis_prefix" json:"redis_prefix,omitempty" yaml:"redis_prefix,omitempty"`
}

// Options converts the storage section into storage.Options.
func (s StorageConfig) Options() storage.Options {
	return storage.Options{
		Backend:       s.Backend,
		Path:          s.Path,
		RedisAddr:     s.RedisAddr,
		RedisPassword: s.RedisPassword,
		RedisDB:       s.RedisDB,
		RedisPrefix:   s.RedisPrefix,
	}
}

// Dir returns ~/.stockroom, falling back to ./.stockroom without a home.
func Dir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".stockroom"
	}
	return filepath.Join(home, ".stockroom")
}

// DefaultPath returns the config file consulted when none is given.
func DefaultPath() string {
	return filepath.Join(Dir(), "config.yaml")
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		APIURL:  "http://localhost:8000",
		BaseURL: "/",
		Timeout: api.DefaultTimeout,
		Output:  "text",
		Log: LogConfig{
			Level:  "warn",
			Format: "text",
		},
		Storage: StorageConfig{
			Backend:     storage.BackendFile,
			Path:        storage.DefaultPath(),
			RedisPrefix: storage.DefaultRedisPrefix,
		},
	}
}

func setDefaults(v *viper.Viper) {
	d := Default()
	v.SetDefault("api_url", d.APIURL)
	v.SetDefault("base_url", d.BaseURL)
	v.SetDefault("timeout", d.Timeout)
	v.SetDefault("output", d.Output)
	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("log.format", d.Log.Format)
	v.SetDefault("storage.backend", d.Storage.Backend)
	v.SetDefault("storage.path", d.Storage.Path)
	v.SetDefault("storage.redis_addr", "")
	v.SetDefault("storage.redis_password", "")
	v.SetDefault("storage.redis_db", 0)
	v.SetDefault("storage.redis_prefix", d.Storage.RedisPrefix)
}

// Load reads configuration. An explicit configPath must exist; the default
// path is optional. Values in a .env file in the working directory are
// loaded into the environment without overriding variables already set.
func Load(configPath string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !stderrors.Is(err, os.ErrNotExist) {
		return nil, errors.Wrap(errors.ErrCodeConfigReadFailed, "failed to read .env file", err)
	}

	v := viper.New()
	setDefaults(v)

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.AddConfigPath(Dir())
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configPath != "" || !stderrors.As(err, &notFound) {
			return nil, errors.Wrap(errors.ErrCodeConfigReadFailed,
				fmt.Sprintf("failed to read config file: %s", v.ConfigFileUsed()), err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, errors.Wrap(errors.ErrCodeConfigReadFailed, "failed to decode configuration", err)
	}
	cfg.Storage.Path = expandHome(cfg.Storage.Path)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks field constraints and reports every violation at once.
func (c *Config) Validate() error {
	err := validate.Struct(c)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !stderrors.As(err, &verrs) {
		return errors.NewConfigInvalidError(err.Error(), err)
	}

	details := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		details = append(details, fmt.Sprintf("%s failed %q", fe.Namespace(), fe.Tag()))
	}
	return errors.NewConfigInvalidError(strings.Join(details, ", "), err)
}

// Save writes cfg as YAML to path, creating its directory.
func Save(cfg *Config, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return errors.Wrap(errors.ErrCodeConfigReadFailed, "failed to create config directory", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return errors.Wrap(errors.ErrCodeConfigReadFailed, fmt.Sprintf("failed to write config file: %s", path), err)
	}
	return nil
}

func expandHome(p string) string {
	if p == "~" || strings.HasPrefix(p, "~/") {
		home, err := os.UserHomeDir()
		if err == nil {
			return filepath.Join(home, strings.TrimPrefix(p, "~"))
		}
	}
	return p
}
