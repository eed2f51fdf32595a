// Package config loads gonpht run settings from defaults, an optional YAML
// file, GONPHT_* environment variables and command-line flags, in increasing
// order of precedence.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/hed1ad/gonpht/pkg/io/folder"
	"github.com/hed1ad/gonpht/pkg/provider"
)

// Keys shared by flags, environment and config file.
const (
	KeyWorkers    = "n_cores"
	KeyFormat     = "format"
	KeyIgnore     = "ignore"
	KeyErrorsCSV  = "errors_csv"
	KeyLogLevel   = "log_level"
	KeyNoProgress = "no_progress"
	KeyNormalize  = "normalize"
	KeyTolerance  = "tolerance"
)

// Config holds the settings of one run.
type Config struct {
	Workers    int      `mapstructure:"n_cores"`
	Format     string   `mapstructure:"format"`
	Ignore     []string `mapstructure:"ignore"`
	ErrorsCSV  string   `mapstructure:"errors_csv"`
	LogLevel   string   `mapstructure:"log_level"`
	NoProgress bool     `mapstructure:"no_progress"`
	Normalize  bool     `mapstructure:"normalize"`
	Tolerance  float64  `mapstructure:"tolerance"`
}

// DefaultConfig returns the settings used when nothing else is given.
func DefaultConfig() Config {
	return Config{
		Workers:   4,
		Format:    string(provider.FormatAuto),
		Ignore:    append([]string(nil), folder.DefaultIgnore...),
		LogLevel:  "info",
		Normalize: true,
		Tolerance: 1e-9,
	}
}

// Load resolves the configuration. cfgFile may be empty, in which case
// gonpht.yaml is looked up in the working directory and $HOME/.gonpht and is
// optional. Flags that were not set on the command line do not override
// lower-precedence sources.
func Load(cfgFile string, flags *pflag.FlagSet) (Config, error) {
	v := viper.New()

	defaults := DefaultConfig()
	v.SetDefault(KeyWorkers, defaults.Workers)
	v.SetDefault(KeyFormat, defaults.Format)
	v.SetDefault(KeyIgnore, defaults.Ignore)
	v.SetDefault(KeyErrorsCSV, defaults.ErrorsCSV)
	v.SetDefault(KeyLogLevel, defaults.LogLevel)
	v.SetDefault(KeyNoProgress, defaults.NoProgress)
	v.SetDefault(KeyNormalize, defaults.Normalize)
	v.SetDefault(KeyTolerance, defaults.Tolerance)

	v.SetEnvPrefix("GONPHT")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.SetConfigName("gonpht")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.gonpht")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile != "" || !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("error reading config file: %w", err)
		}
	}

	if flags != nil {
		for _, key := range []string{KeyWorkers, KeyFormat, KeyIgnore, KeyErrorsCSV, KeyLogLevel, KeyNoProgress} {
			if f := flags.Lookup(key); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return Config{}, err
				}
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	return cfg, cfg.Validate()
}

// Validate rejects settings no run can use.
func (c Config) Validate() error {
	if c.Workers < 1 {
		return fmt.Errorf("%s must be at least 1, got %d", KeyWorkers, c.Workers)
	}
	if _, err := provider.ParseFormat(c.Format); err != nil {
		return err
	}
	if c.Tolerance < 0 {
		return fmt.Errorf("%s must not be negative, got %g", KeyTolerance, c.Tolerance)
	}
	if _, err := ParseLevel(c.LogLevel); err != nil {
		return err
	}
	return nil
}

// ParseLevel maps a level name to a slog level.
func ParseLevel(s string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.TrimSpace(s))); err != nil {
		return 0, fmt.Errorf("invalid %s %q", KeyLogLevel, s)
	}
	return level, nil
}
