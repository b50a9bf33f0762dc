// Package cli implements the docdiff command line
package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/nainya/docdiff/internal/config"
	"github.com/nainya/docdiff/internal/logger"
)

// ErrDifferencesFound is returned by compare --exit-code when documents differ
var ErrDifferencesFound = errors.New("documents differ")

// flagKeys maps flag names to configuration keys. A command's flags are
// bound right before it runs so that flags sharing a key across commands
// do not shadow each other.
var flagKeys = map[string]string{
	"log-level":         config.KeyLogLevel,
	"log-pretty":        config.KeyLogPretty,
	"ignore-whitespace": config.KeyIgnoreWhitespace,
	"ignore-comments":   config.KeyIgnoreComments,
	"cache-size":        config.KeyCacheSize,
	"max-concurrency":   config.KeyMaxConcurrency,
	"port":              config.KeyServerPort,
	"metrics-port":      config.KeyMetricsPort,
	"remote":            config.KeyRemote,
	"store":             config.KeyStorePath,
	"format":            config.KeyOutputFormat,
	"no-color":          config.KeyNoColor,
}

// app carries what every command needs once configuration is loaded
type app struct {
	v   *viper.Viper
	cfg *config.Config
	log *logger.Logger
}

// NewRootCmd creates the root command with every subcommand
func NewRootCmd(version, commit, date string) *cobra.Command {
	a := &app{v: config.New()}

	cmd := &cobra.Command{
		Use:   "docdiff",
		Short: "Compare document exports schema by schema and field by field",
		Long: "docdiff compares two XML document exports and reports, per schema and field, " +
			"which simple values, list items, complex members and blob descriptors changed.",
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: a.load,
	}
	cmd.Version = fmt.Sprintf("%s (Built on %s from Git SHA %s)", version, date, commit)

	flags := cmd.PersistentFlags()
	flags.String("config", "", "Config file (default ./docdiff.yaml when present)")
	flags.String("log-level", "info", "Log level: debug, info, warn or error")
	flags.Bool("log-pretty", false, "Human readable logs")
	flags.Bool("ignore-whitespace", true, "Trim text and ignore whitespace-only text")
	flags.Bool("ignore-comments", true, "Ignore XML comments")
	flags.Int("cache-size", 128, "Number of comparison results kept in memory (0 disables)")

	cmd.AddCommand(newCompareCmd(a))
	cmd.AddCommand(newBatchCmd(a))
	cmd.AddCommand(newServeCmd(a))
	cmd.AddCommand(newSnapshotCmd(a))

	return cmd
}

// Execute runs the root command
func Execute(cmd *cobra.Command) error {
	if err := cmd.Execute(); err != nil {
		return fmt.Errorf("command execution failed: %w", err)
	}
	return nil
}

// --- internals ---

// load binds the running command's flags, reads the configuration and
// builds the logger
func (a *app) load(cmd *cobra.Command, _ []string) error {
	for name, key := range flagKeys {
		if flag := cmd.Flags().Lookup(name); flag != nil {
			if err := config.BindFlag(a.v, key, flag); err != nil {
				return err
			}
		}
	}

	file, err := cmd.Flags().GetString("config")
	if err != nil {
		return err
	}
	cfg, err := config.Load(a.v, file)
	if err != nil {
		return err
	}
	a.cfg = cfg

	a.log = logger.NewLogger(logger.Config{
		Level:  cfg.Log.Level,
		Pretty: cfg.Log.Pretty,
		Output: cmd.ErrOrStderr(),
	})
	return nil
}
