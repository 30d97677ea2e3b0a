package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"disasterresponse/internal/cleaner"
	"disasterresponse/internal/config"
	"disasterresponse/internal/loader"
	"disasterresponse/internal/logger"
	"disasterresponse/internal/pipeline"
	"disasterresponse/pkg/database"
)

func runProcess(cmd *cobra.Command, args []string, flags *processFlags) error {
	messagesPath, categoriesPath, destination := args[0], args[1], args[2]

	cfg, err := config.Load(flags.configPath)
	if err != nil {
		return err
	}
	applyFlags(cmd, flags, cfg)
	if err := cfg.Validate(); err != nil {
		return err
	}
	delimiter, _ := cfg.DelimiterRune()

	log, err := logger.New(logger.Config{Level: cfg.Logging.Level, Format: cfg.Logging.Format})
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer func() { _ = log.Sync() }()

	var metrics *pipeline.Metrics
	if cfg.Pipeline.MetricsFile != "" {
		metrics = pipeline.NewMetrics()
	}

	dbCfg := database.ConfigFor(destination)
	log.Debug("configuration loaded",
		logger.String("config", flags.configPath),
		logger.String("table", cfg.Pipeline.Table),
		logger.String("category_mode", string(cfg.Mode())),
		logger.Bool("metrics", metrics != nil),
	)
	runner := &pipeline.Runner{
		Progress: cmd.OutOrStdout(),
		Logger:   log.With(logger.String("driver", dbCfg.Driver)),
		Metrics:  metrics,
		Open: func(context.Context) (pipeline.Persister, error) {
			return database.OpenStore(dbCfg)
		},
	}

	_, runErr := runner.Run(cmd.Context(), pipeline.Options{
		MessagesPath:   messagesPath,
		CategoriesPath: categoriesPath,
		Destination:    dbCfg.String(),
		Table:          cfg.Pipeline.Table,
		Load:           loader.Options{Delimiter: delimiter},
		Clean: cleaner.Options{
			Column: cfg.Pipeline.CategoryColumn,
			Mode:   cfg.Mode(),
		},
	})

	if err := metrics.WriteFile(cfg.Pipeline.MetricsFile); err != nil {
		log.Warn("write metrics file failed", logger.String("path", cfg.Pipeline.MetricsFile), logger.Error(err))
	}
	return runErr
}

// applyFlags copies explicitly set flags over the loaded config.
func applyFlags(cmd *cobra.Command, flags *processFlags, cfg *config.Config) {
	set := cmd.Flags().Changed
	if set("table") {
		cfg.Pipeline.Table = flags.table
	}
	if set("category-mode") {
		cfg.Pipeline.CategoryMode = flags.categoryMode
	}
	if set("category-column") {
		cfg.Pipeline.CategoryColumn = flags.categoryColumn
	}
	if set("delimiter") {
		cfg.Pipeline.Delimiter = flags.delimiter
	}
	if set("metrics-file") {
		cfg.Pipeline.MetricsFile = flags.metricsFile
	}
	if set("log-format") {
		cfg.Logging.Format = flags.logFormat
	}
	if set("log-level") {
		cfg.Logging.Level = flags.logLevel
	}
	if flags.verbose {
		cfg.Logging.Level = "debug"
	}
}
