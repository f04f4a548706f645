package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/okian/spresults/internal/adapters/source"
	"github.com/okian/spresults/internal/adapters/source/couch"
	"github.com/okian/spresults/internal/adapters/source/memory"
	service "github.com/okian/spresults/internal/app"
	"github.com/okian/spresults/internal/config"
	"github.com/okian/spresults/internal/domain/dedupe"
	"github.com/okian/spresults/pkg/logger"
	"github.com/okian/spresults/pkg/metrics"
)

// flags holds command-line values. They override the loaded configuration
// only when set explicitly.
type flags struct {
	configPath   string
	dbURI        string
	dbName       string
	maxDepth     int
	scoreTime    bool
	analyzeWatts bool
	outputDir    string
	logLevel     string
	sourceFile   string
	metricsFile  string
}

func main() {
	if err := logger.Init(); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		os.Exit(1)
	}

	// Root context with cancel on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	err := newRootCmd().ExecuteContext(ctx)
	stop()
	if err != nil {
		logger.Get().Error(ctx, "run failed", logger.Error(err))
	}
	_ = logger.Sync()
	if err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	f := &flags{}
	cmd := &cobra.Command{
		Use:   "spresults [flags] SN...",
		Short: "Export CouchDB test results for serial numbers as CSV",
		Long: `spresults queries the results database for every document recorded
against the given serial numbers and writes them as CSV.

By default each document is flattened and written to <command>_<schema_version>.csv.
--score-time writes stage timings with wear-cycle projections to score_time.csv.
--analyze-watts writes 12V rail power figures to analyze_watts.csv.`,
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, f, args)
		},
	}

	fs := cmd.Flags()
	fs.StringVar(&f.configPath, "config", "", "YAML configuration file")
	fs.StringVar(&f.dbURI, "db-uri", "", "CouchDB server URL")
	fs.StringVar(&f.dbName, "db-name", "", "results database name")
	fs.IntVar(&f.maxDepth, "max-depth", 0, "drop flattened paths nested deeper than this; 0 keeps all and writes headers")
	fs.BoolVar(&f.scoreTime, "score-time", false, "write score_time.csv")
	fs.BoolVar(&f.analyzeWatts, "analyze-watts", false, "write analyze_watts.csv")
	fs.StringVar(&f.outputDir, "output-dir", "", "directory receiving the CSV files")
	fs.StringVar(&f.logLevel, "log-level", "", "debug, info, warn or error")
	fs.StringVar(&f.sourceFile, "source-file", "", "read documents from a JSON dump instead of CouchDB")
	fs.StringVar(&f.metricsFile, "metrics-file", "", "write Prometheus metrics to this textfile after the run")
	return cmd
}

func run(cmd *cobra.Command, f *flags, serials []string) error {
	ctx := cmd.Context()
	log := logger.Get()

	// Load configuration (defaults -> optional file -> env -> flags)
	cfg, err := config.Load(ctx, f.configPath)
	if err != nil {
		return err
	}
	f.apply(cmd, cfg)
	if err := cfg.Validate(); err != nil {
		return err
	}

	// Apply configured log level (fallback to info on invalid input)
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		log.Warn(ctx, "invalid log_level; falling back to info", logger.String("log_level", cfg.LogLevel), logger.Error(err))
		_ = logger.SetLevelString("info")
	}

	if err := os.MkdirAll(cfg.OutputDir, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	src, err := openSource(cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := src.Close(); err != nil {
			log.Warn(ctx, "closing document source", logger.Error(err))
		}
	}()

	svc := service.New(
		service.WithLogger(log),
		service.WithSource(src),
		service.WithMetrics(metrics.Default()),
		service.WithMetricsFile(cfg.MetricsFile),
		service.WithDedupe(cfg.DedupeDocuments),
		service.WithDeduper(dedupe.NewTracker(dedupe.WithMaxSize(cfg.DedupeMaxSize))),
		service.WithOutputDir(cfg.OutputDir),
		service.WithMaxDepth(cfg.MaxDepth),
		service.WithSeparator(cfg.Separator),
		service.WithScoreTime(cfg.ScoreTime),
		service.WithAnalyzeWatts(cfg.AnalyzeWatts),
	)
	sum, err := svc.Run(ctx, serials)
	if err != nil {
		return err
	}
	log.Info(ctx, "reports written", logger.String("run_id", sum.RunID), logger.Strings("files", sum.Files))
	return nil
}

func (f *flags) apply(cmd *cobra.Command, cfg *config.Config) {
	changed := cmd.Flags().Changed
	if changed("db-uri") {
		cfg.DBURI = f.dbURI
	}
	if changed("db-name") {
		cfg.DBName = f.dbName
	}
	if changed("max-depth") {
		cfg.MaxDepth = f.maxDepth
	}
	if changed("score-time") {
		cfg.ScoreTime = f.scoreTime
	}
	if changed("analyze-watts") {
		cfg.AnalyzeWatts = f.analyzeWatts
	}
	if changed("output-dir") {
		cfg.OutputDir = f.outputDir
	}
	if changed("log-level") {
		cfg.LogLevel = f.logLevel
	}
	if changed("source-file") {
		cfg.SourceFile = f.sourceFile
	}
	if changed("metrics-file") {
		cfg.MetricsFile = f.metricsFile
	}
}

func openSource(cfg *config.Config) (source.Source, error) {
	if cfg.SourceFile != "" {
		return memory.Load(cfg.SourceFile)
	}
	return couch.New(cfg.DBURI, cfg.DBName, couch.WithView(cfg.DesignDoc, cfg.View))
}
