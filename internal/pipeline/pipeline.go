// Package pipeline runs the ETL stages in order: load, clean, save.
//
// Loading and cleaning are pure transformations over table values. The store
// is opened only after both succeed, so a failed run never touches the
// destination.
package pipeline

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"

	"disasterresponse/internal/cleaner"
	"disasterresponse/internal/loader"
	"disasterresponse/internal/logger"
	"disasterresponse/internal/table"
	"disasterresponse/pkg/etl"
)

// Persister replaces a named table with the contents of t.
type Persister interface {
	ReplaceTable(ctx context.Context, name string, t *table.Table) error
	Close() error
}

// Opener opens the destination store. It is called once, at the save stage.
type Opener func(ctx context.Context) (Persister, error)

// Options names the inputs and output of one run.
type Options struct {
	MessagesPath   string
	CategoriesPath string
	// Destination is shown in progress output.
	Destination string
	// Table defaults to DisasterResponse.
	Table string
	Load  loader.Options
	Clean cleaner.Options
}

// Result summarizes a successful run.
type Result struct {
	RunID    string
	Load     loader.Stats
	Clean    cleaner.Report
	Table    *table.Table
	Duration time.Duration
}

// Runner executes runs.
type Runner struct {
	// Progress receives the human-readable stage lines. Nil discards them.
	Progress io.Writer
	Logger   logger.Logger
	Metrics  *Metrics
	Open     Opener
}

// Run executes load, clean and save once.
func (r *Runner) Run(ctx context.Context, opts Options) (*Result, error) {
	if opts.Table == "" {
		opts.Table = etl.DefaultTableName
	}
	progress := r.Progress
	if progress == nil {
		progress = io.Discard
	}
	log := r.Logger
	if log == nil {
		log = logger.NewNop()
	}

	res := &Result{RunID: uuid.NewString()}
	log = log.With(logger.String("run_id", res.RunID))
	start := time.Now()

	err := r.run(ctx, opts, res, progress, log)
	res.Duration = time.Since(start)
	r.Metrics.observeOutcome(err, time.Now())
	if err != nil {
		log.Error("run failed", logger.Error(err), logger.Duration("elapsed", res.Duration))
		return nil, err
	}

	r.Metrics.observeResult(res)
	log.Info("run complete",
		logger.String("table", opts.Table),
		logger.Int("rows", res.Clean.OutputRows),
		logger.Int("categories", res.Clean.Schema.Len()),
		logger.Duration("elapsed", res.Duration),
	)
	return res, nil
}

func (r *Runner) run(ctx context.Context, opts Options, res *Result, progress io.Writer, log logger.Logger) error {
	fmt.Fprintf(progress, "Loading data...\n    MESSAGES: %s\n    CATEGORIES: %s\n", opts.MessagesPath, opts.CategoriesPath)
	stageStart := time.Now()
	merged, stats, err := loader.Load(opts.MessagesPath, opts.CategoriesPath, opts.Load)
	if err != nil {
		return err
	}
	r.Metrics.observeStage("load", time.Since(stageStart))
	res.Load = stats
	log.Info("datasets loaded",
		logger.Int("messages", stats.MessageRows),
		logger.Int("categories", stats.CategoryRows),
		logger.Int("merged", stats.MergedRows),
	)
	if stats.OrphanMessages > 0 || stats.OrphanCategories > 0 {
		log.Debug("unmatched rows dropped by join",
			logger.Int("orphan_messages", stats.OrphanMessages),
			logger.Int("orphan_categories", stats.OrphanCategories),
		)
	}

	fmt.Fprintln(progress, "Cleaning data...")
	stageStart = time.Now()
	cleaned, report, err := cleaner.Clean(merged, opts.Clean)
	if err != nil {
		return err
	}
	r.Metrics.observeStage("clean", time.Since(stageStart))
	res.Clean = report
	res.Table = cleaned
	log.Info("data cleaned",
		logger.Int("rows", report.OutputRows),
		logger.Int("duplicates", report.Duplicates),
		logger.Strings("categories", report.Schema.Names),
	)
	if report.LenientMismatches > 0 {
		log.Warn("category names differ from the first row; values applied by position",
			logger.Int("rows", report.LenientMismatches),
			logger.Ints("row_positions", report.MismatchedRows),
		)
	}

	fmt.Fprintf(progress, "Saving data...\n    DATABASE: %s\n", opts.Destination)
	stageStart = time.Now()
	if err := r.save(ctx, opts.Table, cleaned); err != nil {
		return err
	}
	r.Metrics.observeStage("save", time.Since(stageStart))

	fmt.Fprintln(progress, "Cleaned data saved to database!")
	return nil
}

func (r *Runner) save(ctx context.Context, name string, t *table.Table) (err error) {
	if r.Open == nil {
		return fmt.Errorf("%w: no destination configured", etl.ErrIO)
	}
	p, err := r.Open(ctx)
	if err != nil {
		return fmt.Errorf("%w: open destination: %w", etl.ErrIO, err)
	}
	defer func() {
		if cerr := p.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("%w: close destination: %w", etl.ErrIO, cerr)
		}
	}()

	if err := p.ReplaceTable(ctx, name, t); err != nil {
		return fmt.Errorf("%w: replace table %s: %w", etl.ErrIO, name, err)
	}
	return nil
}
