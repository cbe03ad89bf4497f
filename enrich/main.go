package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/aua-planner/planner/scrape/catalog"
	"github.com/aua-planner/planner/scrape/config"
	"github.com/aua-planner/planner/scrape/db"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	configPath string
	verbose    bool

	inputPath  string
	outputPath string
	reportPath string
	save       bool
	runID      string
	force      bool

	cfg    *config.Config
	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "enrich",
	Short: "Enrich scraped course offerings for the schedule builder",
	Long: `Reads the scraped courses JSON, fills defaults, extracts enrollment
restrictions, classifies each course by level and program, and writes the
enriched CSV consumed by the schedule builder.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load(configPath)
		if err != nil {
			return err
		}

		zapConfig := zap.NewProductionConfig()
		level, err := zapcore.ParseLevel(cfg.Logging.Level)
		if err != nil {
			return fmt.Errorf("logging level: %w", err)
		}
		if verbose {
			level = zapcore.DebugLevel
		}
		zapConfig.Level = zap.NewAtomicLevelAt(level)
		logger, err = zapConfig.Build()
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Enrich a scrape and write the CSV",
	RunE:  runEnrich,
}

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write a stored run back out as CSV",
	RunE:  runExport,
}

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Write the effective configuration to the config file",
	RunE:  initConfig,
}

var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "List stored runs",
	RunE:  listRuns,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "pipeline.yaml", "Configuration file")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Debug logging")

	runCmd.Flags().StringVarP(&inputPath, "input", "i", "", "Scraped courses JSON (overrides config)")
	runCmd.Flags().StringVarP(&outputPath, "output", "o", "", "Enriched CSV (overrides config)")
	runCmd.Flags().StringVar(&reportPath, "report", "", "Missing-value report CSV (overrides config)")
	runCmd.Flags().BoolVar(&save, "save", false, "Store the run in the configured database")

	exportCmd.Flags().StringVar(&runID, "run", "", "Run id; defaults to the latest run")
	exportCmd.Flags().StringVarP(&outputPath, "output", "o", "", "Enriched CSV (overrides config)")
	exportCmd.Flags().StringVar(&reportPath, "report", "", "Missing-value report CSV")

	initCmd.Flags().BoolVar(&force, "force", false, "Overwrite an existing config file")

	rootCmd.AddCommand(runCmd, exportCmd, runsCmd, initCmd)
}

func override(flag, fallback string) string {
	if flag != "" {
		return flag
	}
	return fallback
}

func openStore(ctx context.Context) (db.Store, error) {
	if cfg.Database.DSN == "" {
		return nil, errors.New("no database configured; set database.dsn or DATABASE_CONNECTION_STRING")
	}

	switch cfg.Database.Driver {
	case config.DriverSQLite:
		return db.OpenSQLite(cfg.Database.DSN)
	default:
		database, err := db.Connect(ctx, cfg.Database.DSN)
		if err != nil {
			return nil, err
		}
		if err := database.CreateSchema(ctx); err != nil {
			database.Close()
			return nil, fmt.Errorf("create schema: %w", err)
		}
		return database, nil
	}
}

func runEnrich(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	input := override(inputPath, cfg.Input)
	output := override(outputPath, cfg.Output)
	report := override(reportPath, cfg.Report)

	rules, err := cfg.RulesSet()
	if err != nil {
		return err
	}
	pipeline, err := catalog.New(rules, logger)
	if err != nil {
		return err
	}

	records, err := catalog.LoadFile(input)
	if err != nil {
		return err
	}
	logger.Info("Loaded courses", zap.String("input", input), zap.Int("records", len(records)))

	result, err := pipeline.Run(records)
	if err != nil {
		var dfe *catalog.DataFormatError
		if errors.As(err, &dfe) {
			logger.Error("Batch rejected", zap.Int("record", dfe.Record), zap.String("field", dfe.Field))
		}
		return err
	}

	for _, m := range result.Missing {
		if m.Count > 0 {
			logger.Debug("Missing values",
				zap.String("column", m.Column),
				zap.Int("count", m.Count),
				zap.Float64("pct", m.Percent))
		}
	}

	if err := catalog.WriteFileAtomic(output, func(w io.Writer) error {
		return catalog.WriteCSV(w, result)
	}); err != nil {
		return fmt.Errorf("write %s: %w", output, err)
	}
	logger.Info("Wrote enriched courses", zap.String("output", output), zap.Int("courses", len(result.Courses)))

	if report != "" {
		if err := catalog.WriteFileAtomic(report, func(w io.Writer) error {
			return catalog.WriteReportCSV(w, result.Missing)
		}); err != nil {
			return fmt.Errorf("write %s: %w", report, err)
		}
		logger.Info("Wrote missing-value report", zap.String("report", report))
	}

	if !save {
		return nil
	}

	store, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer store.Close()

	run := db.NewRun(input, len(result.Courses), result.Columns)
	if err := store.SaveRun(ctx, run, result); err != nil {
		return fmt.Errorf("save run: %w", err)
	}
	logger.Info("Saved run", zap.String("run", run.ID))
	return nil
}

func findRun(ctx context.Context, store db.Store, id string) (db.Run, error) {
	runs, err := store.ListRuns(ctx)
	if err != nil {
		return db.Run{}, err
	}
	if len(runs) == 0 {
		return db.Run{}, errors.New("no stored runs")
	}
	if id == "" {
		return runs[0], nil
	}
	for _, run := range runs {
		if run.ID == id {
			return run, nil
		}
	}
	return db.Run{}, fmt.Errorf("run %s not found", id)
}

func runExport(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	output := override(outputPath, cfg.Output)

	store, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer store.Close()

	run, err := findRun(ctx, store, runID)
	if err != nil {
		return err
	}

	courses, err := store.ListRunCourses(ctx, run.ID)
	if err != nil {
		return err
	}
	missing, err := store.ListRunMissingValues(ctx, run.ID)
	if err != nil {
		return err
	}
	result := &catalog.Result{Columns: run.Columns, Courses: courses, Missing: missing}

	if err := catalog.WriteFileAtomic(output, func(w io.Writer) error {
		return catalog.WriteCSV(w, result)
	}); err != nil {
		return fmt.Errorf("write %s: %w", output, err)
	}
	logger.Info("Exported run", zap.String("run", run.ID), zap.String("output", output))

	if reportPath != "" {
		if err := catalog.WriteFileAtomic(reportPath, func(w io.Writer) error {
			return catalog.WriteReportCSV(w, result.Missing)
		}); err != nil {
			return fmt.Errorf("write %s: %w", reportPath, err)
		}
	}
	return nil
}

func listRuns(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	store, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer store.Close()

	runs, err := store.ListRuns(ctx)
	if err != nil {
		return err
	}
	for _, run := range runs {
		fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\t%d\t%s\n",
			run.ID, run.CreatedAt.Format("2006-01-02 15:04:05"), run.CourseCount, run.Source)
	}
	return nil
}

func initConfig(cmd *cobra.Command, args []string) error {
	if _, err := os.Stat(configPath); err == nil && !force {
		return fmt.Errorf("%s already exists; use --force to overwrite", configPath)
	}
	if err := cfg.Save(configPath); err != nil {
		return err
	}
	logger.Info("Wrote configuration", zap.String("config", configPath))
	return nil
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}
