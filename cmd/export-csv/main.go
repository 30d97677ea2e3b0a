package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"disasterresponse/internal/config"
	"disasterresponse/internal/logger"
	"disasterresponse/internal/table"
	"disasterresponse/pkg/database"
	"disasterresponse/pkg/etl"
)

func main() {
	cfg, err := config.Load(os.Getenv("DISASTER_CONFIG"))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(etl.ExitCodeForError(err))
	}

	var (
		dbPath    = flag.String("db", cfg.Database.Path, "database path or postgres:// URL")
		tableName = flag.String("table", cfg.Pipeline.Table, "table to export")
		out       = flag.String("out", "data/"+etl.DefaultTableName+".csv", "output CSV path")
	)
	flag.Parse()

	log, err := logger.New(logger.Config{Level: cfg.Logging.Level, Format: cfg.Logging.Format})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: init logger: %v\n", err)
		os.Exit(etl.ExitGeneralError)
	}
	defer func() { _ = log.Sync() }()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	dbCfg := database.ConfigFor(*dbPath)
	dbCfg.ReadOnly = true
	store, err := database.OpenStore(dbCfg)
	if err != nil {
		log.Error("open database failed", logger.String("db", dbCfg.String()), logger.Error(err))
		os.Exit(etl.ExitIOError)
	}
	defer store.Close()

	n, err := exportTable(ctx, store, *tableName, *out)
	if err != nil {
		log.Error("export failed", logger.String("table", *tableName), logger.Error(err))
		store.Close()
		os.Exit(etl.ExitCodeForError(err))
	}

	log.Info("exported table",
		logger.String("table", *tableName),
		logger.String("out", *out),
		logger.Int("rows", n),
	)
}

// exportTable writes the named table, header first, to outPath and returns the
// number of rows written.
func exportTable(ctx context.Context, store *database.Store, name, outPath string) (int, error) {
	t, err := store.ReadTable(ctx, name)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", etl.ErrIO, err)
	}

	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		return 0, fmt.Errorf("%w: %w", etl.ErrIO, err)
	}
	f, err := os.Create(outPath)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", etl.ErrIO, err)
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	if err := table.WriteCSV(w, t); err != nil {
		return 0, fmt.Errorf("%w: %w", etl.ErrIO, err)
	}
	if err := w.Flush(); err != nil {
		return 0, fmt.Errorf("%w: %w", etl.ErrIO, err)
	}
	return t.Len(), f.Close()
}
