// Package config loads settings for the ETL command, the CSV exporter and the
// API server.
//
// Values are layered, later wins:
//
//  1. built-in defaults
//  2. the optional YAML file
//  3. environment variables named by `env` struct tags, after loading
//     ENV_FILE, or .env.local and .env, through godotenv
//  4. command line flags, applied by the caller
//
// Example config.yml:
//
//	logging:
//	  level: debug
//	  format: json
//	pipeline:
//	  table: DisasterResponse
//	  category_mode: lenient
//	  delimiter: ","
//	database:
//	  path: data/DisasterResponse.db
package config

import (
	"errors"
	"fmt"
	"os"
	"reflect"
	"strings"
	"unicode/utf8"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"disasterresponse/internal/cleaner"
	"disasterresponse/internal/logger"
	"disasterresponse/pkg/etl"
)

// LoggingConfig configures the structured logger.
type LoggingConfig struct {
	Level  string `yaml:"level" env:"DISASTER_LOG_LEVEL"`
	Format string `yaml:"format" env:"DISASTER_LOG_FORMAT"`
}

// PipelineConfig configures the ETL stages.
type PipelineConfig struct {
	Table          string `yaml:"table" env:"DISASTER_TABLE"`
	CategoryColumn string `yaml:"category_column" env:"DISASTER_CATEGORY_COLUMN"`
	CategoryMode   string `yaml:"category_mode" env:"DISASTER_CATEGORY_MODE"`
	Delimiter      string `yaml:"delimiter" env:"DISASTER_DELIMITER"`
	MetricsFile    string `yaml:"metrics_file" env:"DISASTER_METRICS_FILE"`
}

// DatabaseConfig names the store read by export-csv and api-server.
type DatabaseConfig struct {
	// Path is a SQLite file path or a postgres:// URL.
	Path string `yaml:"path" env:"DISASTER_DB_PATH"`
}

// ServerConfig configures the API server.
type ServerConfig struct {
	Addr string `yaml:"addr" env:"DISASTER_API_ADDR"`
}

// Config is the full configuration.
type Config struct {
	Logging  LoggingConfig  `yaml:"logging"`
	Pipeline PipelineConfig `yaml:"pipeline"`
	Database DatabaseConfig `yaml:"database"`
	Server   ServerConfig   `yaml:"server"`
}

// Default returns the built-in defaults.
func Default() *Config {
	return &Config{
		Logging: LoggingConfig{
			Level:  "info",
			Format: logger.FormatConsole,
		},
		Pipeline: PipelineConfig{
			Table:          etl.DefaultTableName,
			CategoryColumn: etl.DefaultCategoryColumn,
			CategoryMode:   string(cleaner.ModeStrict),
			Delimiter:      ",",
		},
		Database: DatabaseConfig{
			Path: etl.DefaultDatabasePath,
		},
		Server: ServerConfig{
			Addr: ":8080",
		},
	}
}

// Load builds a Config from defaults, the YAML file at path (skipped when path
// is empty) and the environment. The result is validated.
func Load(path string) (*Config, error) {
	if err := loadEnvFiles(); err != nil {
		return nil, fmt.Errorf("%w: %w", etl.ErrInvalidConfig, err)
	}

	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("%w: read config file %s: %w", etl.ErrInvalidConfig, path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("%w: parse config: %w", etl.ErrInvalidConfig, err)
		}
	}

	applyEnvOverrides(cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// loadEnvFiles loads ENV_FILE when set, otherwise .env.local then .env.
// Missing files are ignored.
func loadEnvFiles() error {
	if envFile := os.Getenv("ENV_FILE"); envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("load env file %s: %w", envFile, err)
		}
		return nil
	}
	for _, name := range []string{".env.local", ".env"} {
		if err := godotenv.Load(name); err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("load %s: %w", name, err)
		}
	}
	return nil
}

// applyEnvOverrides sets every string field tagged `env:"NAME"` from the
// environment when NAME is set and non-empty.
func applyEnvOverrides(cfg *Config) {
	applyEnvToStruct(reflect.ValueOf(cfg).Elem())
}

func applyEnvToStruct(v reflect.Value) {
	t := v.Type()
	for i := range v.NumField() {
		field := v.Field(i)
		if !field.CanSet() {
			continue
		}
		if field.Kind() == reflect.Struct {
			applyEnvToStruct(field)
			continue
		}
		name := t.Field(i).Tag.Get("env")
		if name == "" || field.Kind() != reflect.String {
			continue
		}
		if val := os.Getenv(name); val != "" {
			field.SetString(val)
		}
	}
}

// Validate checks values that would otherwise fail deep inside a run.
func (c *Config) Validate() error {
	if _, err := cleaner.ParseMode(c.Pipeline.CategoryMode); err != nil {
		return fmt.Errorf("%w: %w", etl.ErrInvalidConfig, err)
	}
	if _, err := c.DelimiterRune(); err != nil {
		return err
	}
	if !logger.ValidLevel(c.Logging.Level) {
		return fmt.Errorf("%w: unknown log level %q", etl.ErrInvalidConfig, c.Logging.Level)
	}
	switch strings.ToLower(c.Logging.Format) {
	case "", logger.FormatConsole, logger.FormatJSON:
	default:
		return fmt.Errorf("%w: unknown log format %q", etl.ErrInvalidConfig, c.Logging.Format)
	}
	if strings.TrimSpace(c.Pipeline.Table) == "" {
		return fmt.Errorf("%w: table name is empty", etl.ErrInvalidConfig)
	}
	return nil
}

// DelimiterRune returns the single-rune field delimiter. `\t` and "tab" mean tab.
func (c *Config) DelimiterRune() (rune, error) {
	d := c.Pipeline.Delimiter
	switch d {
	case "":
		return ',', nil
	case `\t`, "tab":
		return '\t', nil
	}
	if utf8.RuneCountInString(d) != 1 {
		return 0, fmt.Errorf("%w: delimiter %q must be a single character", etl.ErrInvalidConfig, d)
	}
	r, _ := utf8.DecodeRuneInString(d)
	if r == '"' || r == '\r' || r == '\n' || r == utf8.RuneError {
		return 0, fmt.Errorf("%w: delimiter %q is not allowed", etl.ErrInvalidConfig, d)
	}
	return r, nil
}

// Mode returns the parsed category mode. Call after Validate.
func (c *Config) Mode() cleaner.Mode {
	m, _ := cleaner.ParseMode(c.Pipeline.CategoryMode)
	return m
}
