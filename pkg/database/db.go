package database

import (
	"database/sql"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"

	"disasterresponse/pkg/etl"
)

// Driver names as registered with database/sql.
const (
	DriverSQLite   = "sqlite3"
	DriverPostgres = "postgres"
)

type Config struct {
	Driver string
	// DSN is a file path for SQLite or a connection URL for Postgres.
	DSN string
	// ReadOnly opens an existing SQLite file without creating or altering it.
	ReadOnly bool
}

// ConfigFor picks the driver from a destination: postgres:// and postgresql://
// URLs select Postgres, anything else is a SQLite file path.
func ConfigFor(target string) Config {
	lower := strings.ToLower(target)
	if strings.HasPrefix(lower, "postgres://") || strings.HasPrefix(lower, "postgresql://") {
		return Config{Driver: DriverPostgres, DSN: target}
	}
	return Config{Driver: DriverSQLite, DSN: target}
}

// String hides Postgres credentials.
func (c Config) String() string {
	if c.Driver != DriverPostgres {
		return c.DSN
	}
	if at := strings.LastIndex(c.DSN, "@"); at >= 0 {
		scheme := c.DSN[:strings.Index(c.DSN, "://")+3]
		return scheme + "***" + c.DSN[at:]
	}
	return c.DSN
}

func EnsureDataDir(cfg Config) error {
	if cfg.Driver != DriverSQLite {
		return nil
	}
	return os.MkdirAll(filepath.Dir(cfg.DSN), 0o755)
}

func Open(cfg Config) (*sql.DB, error) {
	if cfg.DSN == "" {
		return nil, fmt.Errorf("empty database path")
	}
	if cfg.ReadOnly && cfg.Driver == DriverSQLite {
		return openSQLiteReadOnly(cfg.DSN)
	}
	if err := EnsureDataDir(cfg); err != nil {
		return nil, fmt.Errorf("ensure data dir: %w", err)
	}

	db, err := sql.Open(cfg.Driver, cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", cfg.Driver, err)
	}

	if cfg.Driver == DriverSQLite {
		if _, err := db.Exec(`PRAGMA journal_mode = WAL;`); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("pragma journal_mode: %w", err)
		}
		if _, err := db.Exec(`PRAGMA busy_timeout = 5000;`); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("pragma busy_timeout: %w", err)
		}
	}

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping %s: %w", cfg.Driver, err)
	}

	return db, nil
}

// openSQLiteReadOnly opens path with mode=ro. A missing file is an ErrIO and
// nothing is created.
func openSQLiteReadOnly(path string) (*sql.DB, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", etl.ErrIO, err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("%w: %s is a directory", etl.ErrIO, path)
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", etl.ErrIO, err)
	}
	uri := (&url.URL{Scheme: "file", Path: filepath.ToSlash(abs), RawQuery: "mode=ro&_busy_timeout=5000"}).String()

	db, err := sql.Open(DriverSQLite, uri)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", DriverSQLite, err)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("%w: ping %s: %w", etl.ErrIO, DriverSQLite, err)
	}
	return db, nil
}
