package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"disasterresponse/internal/cleaner"
	"disasterresponse/pkg/etl"
)

// chdirTemp isolates the test from .env files in the package directory.
func chdirTemp(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Chdir(dir)
	return dir
}

func TestLoadDefaults(t *testing.T) {
	chdirTemp(t)

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
	assert.Equal(t, etl.DefaultTableName, cfg.Pipeline.Table)
	assert.Equal(t, cleaner.ModeStrict, cfg.Mode())
}

func TestLoadYAMLAndEnv(t *testing.T) {
	dir := chdirTemp(t)
	path := filepath.Join(dir, "config.yml")
	require.NoError(t, os.WriteFile(path, []byte(`
logging:
  level: debug
pipeline:
  table: Messages
  category_mode: lenient
  delimiter: "\t"
database:
  path: /tmp/x.db
`), 0o644))

	t.Setenv("DISASTER_TABLE", "FromEnv")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, "console", cfg.Logging.Format, "unset keys keep defaults")
	assert.Equal(t, "FromEnv", cfg.Pipeline.Table, "env wins over file")
	assert.Equal(t, cleaner.ModeLenient, cfg.Mode())
	assert.Equal(t, "/tmp/x.db", cfg.Database.Path)

	r, err := cfg.DelimiterRune()
	require.NoError(t, err)
	assert.Equal(t, '\t', r)
}

func TestLoadDotEnv(t *testing.T) {
	dir := chdirTemp(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("DISASTER_API_ADDR=:9999\n"), 0o644))
	t.Cleanup(func() { os.Unsetenv("DISASTER_API_ADDR") })

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, ":9999", cfg.Server.Addr)
}

func TestLoadErrors(t *testing.T) {
	dir := chdirTemp(t)

	t.Run("missing file", func(t *testing.T) {
		_, err := Load(filepath.Join(dir, "nope.yml"))
		require.ErrorIs(t, err, etl.ErrInvalidConfig)
	})

	t.Run("bad yaml", func(t *testing.T) {
		path := filepath.Join(dir, "bad.yml")
		require.NoError(t, os.WriteFile(path, []byte("pipeline: [unclosed"), 0o644))
		_, err := Load(path)
		require.ErrorIs(t, err, etl.ErrInvalidConfig)
	})

	t.Run("bad mode from env", func(t *testing.T) {
		t.Setenv("DISASTER_CATEGORY_MODE", "loose")
		_, err := Load("")
		require.ErrorIs(t, err, etl.ErrInvalidConfig)
	})
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		ok     bool
	}{
		{"defaults", func(*Config) {}, true},
		{"semicolon delimiter", func(c *Config) { c.Pipeline.Delimiter = ";" }, true},
		{"tab word", func(c *Config) { c.Pipeline.Delimiter = "tab" }, true},
		{"multi char delimiter", func(c *Config) { c.Pipeline.Delimiter = ",," }, false},
		{"quote delimiter", func(c *Config) { c.Pipeline.Delimiter = `"` }, false},
		{"bad level", func(c *Config) { c.Logging.Level = "loud" }, false},
		{"bad format", func(c *Config) { c.Logging.Format = "xml" }, false},
		{"empty table", func(c *Config) { c.Pipeline.Table = " " }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.ok {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, etl.ErrInvalidConfig)
			}
		})
	}
}
