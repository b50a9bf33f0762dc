package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "docdiff.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(New(), "")
	require.NoError(t, err)

	want := Default()
	assert.Equal(t, &want, cfg)
	assert.True(t, cfg.DiffService().IgnoreWhitespace)
}

func TestLoadFile(t *testing.T) {
	path := writeConfig(t, `
log:
  level: debug
diff:
  cache-size: 16
  ignore-comments: false
store:
  path: /var/lib/docdiff/snapshots.db
output:
  format: json
`)

	cfg, err := Load(New(), path)
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, 16, cfg.Diff.CacheSize)
	assert.False(t, cfg.Diff.IgnoreComments)
	assert.True(t, cfg.Diff.IgnoreWhitespace)
	assert.Equal(t, "/var/lib/docdiff/snapshots.db", cfg.Store.Path)
	assert.Equal(t, "json", cfg.Output.Format)
}

func TestLoadMissingExplicitFile(t *testing.T) {
	_, err := Load(New(), filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestEnvironmentOverridesFile(t *testing.T) {
	path := writeConfig(t, "server:\n  port: 6000\n")
	t.Setenv("DOCDIFF_SERVER_PORT", "7000")
	t.Setenv("DOCDIFF_DIFF_CACHE_SIZE", "3")

	cfg, err := Load(New(), path)
	require.NoError(t, err)
	assert.Equal(t, 7000, cfg.Server.Port)
	assert.Equal(t, 3, cfg.Diff.CacheSize)
}

func TestFlagOverridesEnvironment(t *testing.T) {
	t.Setenv("DOCDIFF_OUTPUT_FORMAT", "json")

	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.String("format", "text", "")
	require.NoError(t, flags.Parse([]string{"--format", "yaml"}))

	v := New()
	require.NoError(t, BindFlag(v, KeyOutputFormat, flags.Lookup("format")))

	cfg, err := Load(v, "")
	require.NoError(t, err)
	assert.Equal(t, "yaml", cfg.Output.Format)

	assert.Error(t, BindFlag(v, KeyNoColor, flags.Lookup("no-color")))
}

func TestValidate(t *testing.T) {
	tests := map[string]func(*Config){
		"format":       func(c *Config) { c.Output.Format = "xml" },
		"level":        func(c *Config) { c.Log.Level = "trace" },
		"cache size":   func(c *Config) { c.Diff.CacheSize = -1 },
		"port":         func(c *Config) { c.Server.Port = 0 },
		"metrics port": func(c *Config) { c.Server.MetricsPort = 70000 },
	}
	for name, mutate := range tests {
		t.Run(name, func(t *testing.T) {
			cfg := Default()
			mutate(&cfg)
			assert.Error(t, cfg.Validate())
		})
	}

	cfg := Default()
	assert.NoError(t, cfg.Validate())
}
