// Package config loads docdiff configuration from defaults, a YAML file,
// DOCDIFF_ environment variables and command line flags, in that order of
// increasing precedence.
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/nainya/docdiff/internal/render"
	"github.com/nainya/docdiff/pkg/docdiff"
)

// EnvPrefix prefixes every environment variable, DOCDIFF_LOG_LEVEL for log.level
const EnvPrefix = "DOCDIFF"

// Config is the complete docdiff configuration
type Config struct {
	Log    LogConfig    `mapstructure:"log"`
	Diff   DiffConfig   `mapstructure:"diff"`
	Server ServerConfig `mapstructure:"server"`
	Store  StoreConfig  `mapstructure:"store"`
	Output OutputConfig `mapstructure:"output"`
}

// LogConfig configures the logger
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Pretty bool   `mapstructure:"pretty"`
}

// DiffConfig configures the comparison service
type DiffConfig struct {
	IgnoreWhitespace bool  `mapstructure:"ignore-whitespace"`
	IgnoreComments   bool  `mapstructure:"ignore-comments"`
	CacheSize        int   `mapstructure:"cache-size"`
	MaxConcurrency   int64 `mapstructure:"max-concurrency"`
}

// ServerConfig configures the gRPC and observability servers
type ServerConfig struct {
	Port        int    `mapstructure:"port"`
	MetricsPort int    `mapstructure:"metrics-port"`
	Remote      string `mapstructure:"remote"`
}

// StoreConfig configures the snapshot store
type StoreConfig struct {
	Path string `mapstructure:"path"`
}

// OutputConfig configures how diffs are printed
type OutputConfig struct {
	Format  string `mapstructure:"format"`
	NoColor bool   `mapstructure:"no-color"`
}

// Default returns the built-in configuration
func Default() Config {
	diff := docdiff.DefaultConfig()
	return Config{
		Log: LogConfig{Level: "info"},
		Diff: DiffConfig{
			IgnoreWhitespace: diff.IgnoreWhitespace,
			IgnoreComments:   diff.IgnoreComments,
			CacheSize:        diff.CacheSize,
			MaxConcurrency:   diff.MaxConcurrency,
		},
		Server: ServerConfig{Port: 50051, MetricsPort: 9090},
		Store:  StoreConfig{Path: "docdiff.db"},
		Output: OutputConfig{Format: string(render.FormatText)},
	}
}

// Keys of every setting, as used in the YAML file and by BindFlag
const (
	KeyLogLevel         = "log.level"
	KeyLogPretty        = "log.pretty"
	KeyIgnoreWhitespace = "diff.ignore-whitespace"
	KeyIgnoreComments   = "diff.ignore-comments"
	KeyCacheSize        = "diff.cache-size"
	KeyMaxConcurrency   = "diff.max-concurrency"
	KeyServerPort       = "server.port"
	KeyMetricsPort      = "server.metrics-port"
	KeyRemote           = "server.remote"
	KeyStorePath        = "store.path"
	KeyOutputFormat     = "output.format"
	KeyNoColor          = "output.no-color"
)

// New returns a viper instance holding the defaults and reading the
// environment.
func New() *viper.Viper {
	v := viper.New()
	d := Default()

	v.SetDefault(KeyLogLevel, d.Log.Level)
	v.SetDefault(KeyLogPretty, d.Log.Pretty)
	v.SetDefault(KeyIgnoreWhitespace, d.Diff.IgnoreWhitespace)
	v.SetDefault(KeyIgnoreComments, d.Diff.IgnoreComments)
	v.SetDefault(KeyCacheSize, d.Diff.CacheSize)
	v.SetDefault(KeyMaxConcurrency, d.Diff.MaxConcurrency)
	v.SetDefault(KeyServerPort, d.Server.Port)
	v.SetDefault(KeyMetricsPort, d.Server.MetricsPort)
	v.SetDefault(KeyRemote, d.Server.Remote)
	v.SetDefault(KeyStorePath, d.Store.Path)
	v.SetDefault(KeyOutputFormat, d.Output.Format)
	v.SetDefault(KeyNoColor, d.Output.NoColor)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()
	return v
}

// BindFlag makes a flag override the setting under key when it is set
func BindFlag(v *viper.Viper, key string, flag *pflag.Flag) error {
	if flag == nil {
		return fmt.Errorf("no flag for %s", key)
	}
	if err := v.BindPFlag(key, flag); err != nil {
		return fmt.Errorf("failed to bind flag %s to %s: %w", flag.Name, key, err)
	}
	return nil
}

// Load reads the optional config file and unmarshals the settings. An
// explicit file must exist; otherwise docdiff.yaml is looked up in the
// working directory and skipped when missing.
func Load(v *viper.Viper, file string) (*Config, error) {
	if file != "" {
		v.SetConfigFile(file)
	} else {
		v.SetConfigName("docdiff")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if file != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
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

// Validate checks value ranges
func (c *Config) Validate() error {
	if _, err := render.ParseFormat(c.Output.Format); err != nil {
		return err
	}
	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("unknown log level %q", c.Log.Level)
	}
	if c.Diff.CacheSize < 0 {
		return fmt.Errorf("cache size must not be negative, got %d", c.Diff.CacheSize)
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port %d", c.Server.Port)
	}
	if c.Server.MetricsPort < 0 || c.Server.MetricsPort > 65535 {
		return fmt.Errorf("invalid metrics port %d", c.Server.MetricsPort)
	}
	return nil
}

// DiffService returns the comparison service configuration
func (c *Config) DiffService() docdiff.Config {
	return docdiff.Config{
		IgnoreWhitespace: c.Diff.IgnoreWhitespace,
		IgnoreComments:   c.Diff.IgnoreComments,
		CacheSize:        c.Diff.CacheSize,
		MaxConcurrency:   c.Diff.MaxConcurrency,
	}
}
