// Package config loads sieve settings from defaults, an optional config
// file, SIEVE_* environment variables and command-line flags, in that
// order of increasing precedence.
package config

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/containerd/log"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment variable, e.g. SIEVE_HTTP_ADDR.
const EnvPrefix = "SIEVE"

// Config is the resolved configuration.
type Config struct {
	Database string      `mapstructure:"database"`
	Log      LogConfig   `mapstructure:"log"`
	HTTP     HTTPConfig  `mapstructure:"http"`
	Query    QueryConfig `mapstructure:"query"`
}

// LogConfig controls the process logger.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"` // text or json
}

// HTTPConfig controls the API server.
type HTTPConfig struct {
	Addr string `mapstructure:"addr"`
}

// QueryConfig holds query policy.
type QueryConfig struct {
	DefaultOrder string `mapstructure:"default_order"`
}

var defaults = map[string]any{
	"database":            "sieve.db",
	"log.level":           "info",
	"log.format":          "text",
	"http.addr":           "127.0.0.1:8080",
	"query.default_order": "Timestamp",
}

var levels = []string{"trace", "debug", "info", "warn", "warning", "error", "fatal", "panic"}

// FlagKeys maps command-line flag names to config keys.
var FlagKeys = map[string]string{
	"db":            "database",
	"log-level":     "log.level",
	"log-format":    "log.format",
	"addr":          "http.addr",
	"default-order": "query.default_order",
}

// Load resolves the configuration. path may be empty; a named file that
// does not exist is an error. Only flags present in both flags and
// FlagKeys are bound, and only when set on the command line.
func Load(path string, flags *pflag.FlagSet) (*Config, error) {
	v := viper.New()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	if flags != nil {
		for name, key := range FlagKeys {
			f := flags.Lookup(name)
			if f == nil {
				continue
			}
			if err := v.BindPFlag(key, f); err != nil {
				return nil, fmt.Errorf("bind flag %s: %w", name, err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks settings that would otherwise fail late.
func (c *Config) Validate() error {
	var errs []error
	if c.Database == "" {
		errs = append(errs, errors.New("database path is empty"))
	}
	if !slices.Contains(levels, strings.ToLower(c.Log.Level)) {
		errs = append(errs, fmt.Errorf("log level %q: want one of %s", c.Log.Level, strings.Join(levels, ", ")))
	}
	switch log.OutputFormat(c.Log.Format) {
	case log.TextFormat, log.JSONFormat:
	default:
		errs = append(errs, fmt.Errorf("log format %q: want %s or %s", c.Log.Format, log.TextFormat, log.JSONFormat))
	}
	return errors.Join(errs...)
}

// ApplyLogging configures the process-wide logger.
func (c *Config) ApplyLogging() error {
	if err := log.SetLevel(c.Log.Level); err != nil {
		return err
	}
	return log.SetFormat(log.OutputFormat(c.Log.Format))
}
