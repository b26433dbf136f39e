package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/TWALLACK/foreign-flyers/internal/config"
	"github.com/TWALLACK/foreign-flyers/internal/infrastructure"
	"github.com/TWALLACK/foreign-flyers/internal/pipeline"
	"github.com/TWALLACK/foreign-flyers/pkg/contracts"
)

func main() {
	os.Exit(run())
}

func run() int {
	inDir := flag.String("in", "", "input directory for agency report files (defaults to data/input relative to executable)")
	outDir := flag.String("out", "", "output directory for generated reports and charts (defaults to data/reports and data/charts)")
	showVersion := flag.Bool("version", false, "print version information and exit")
	flag.Parse()

	if *showVersion {
		fmt.Println(contracts.GetFullVersionString())
		return 0
	}

	// Initialize paths first to get default directories
	paths, err := config.GetPaths()
	if err != nil {
		slog.Error("Failed to initialize paths", "error", err)
		return 1
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Warn("Failed to load config, using defaults", "error", err)
		cfg = config.Default()
		cfg.Paths.ExecutableDir = paths.ExecutableDir
		cfg.Input.Dir = paths.InputDir
		cfg.Logging.FilePath = paths.GetLogPath("flyerstats.log")
	}

	applyOverrides(cfg, paths, *inDir, *outDir)

	// Ensure all required directories exist
	if err := paths.EnsureDirectories(); err != nil {
		slog.Error("Failed to create required directories", "error", err)
		return 1
	}

	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		slog.Warn("Failed to initialize logger, using default", "error", err)
		logger = slog.Default()
	}
	defer infrastructure.CloseLogFile()

	logger.Info("Starting passenger traffic processing",
		slog.String("app", config.AppName),
		slog.String("version", contracts.Version),
		slog.String("input_dir", cfg.GetInputDir()),
		slog.String("reports_dir", paths.ReportsDir),
		slog.String("charts_dir", paths.ChartsDir),
		slog.String("executable_dir", paths.ExecutableDir))

	providers, err := infrastructure.InitializeOTel(infrastructure.DefaultOTelConfig(), logger)
	if err != nil {
		logger.Warn("Failed to initialize telemetry, continuing without it",
			slog.String("error", err.Error()))
		providers = nil
	}
	if providers != nil {
		// Bound the final span/metric flush so a slow exporter cannot
		// hang the process after the work is done.
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), config.TelemetryFlushTimeout)
			defer cancel()
			if err := providers.Shutdown(shutdownCtx); err != nil {
				logger.Warn("Telemetry shutdown failed", slog.String("error", err.Error()))
			}
		}()
	}

	p := pipeline.New(cfg, paths, logger)
	if providers != nil {
		if err := p.WithTelemetry(providers); err != nil {
			logger.Warn("Pipeline metrics unavailable", slog.String("error", err.Error()))
		}
	}

	// Ctrl-C aborts the run cleanly instead of leaving half-written output.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// A wedged workbook parse should not hang an invoking scheduler forever.
	ctx, cancel := context.WithTimeout(ctx, config.DefaultPipelineTimeout)
	defer cancel()

	fmt.Println("Processing passenger traffic reports...")

	result, err := p.Run(ctx)
	if err != nil {
		logger.Error("Pipeline run failed", slog.String("error", err.Error()))
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}

	fmt.Printf("Processed %d report files (%d daily records)\n", len(result.Sources), result.RecordsLoaded)
	fmt.Printf("Wrote %d monthly rows (%d with prior-year baseline)\n", result.RowsWritten, result.MonthsWithBaseline)
	fmt.Printf("Report:  %s\n", result.ReportCSVPath)
	fmt.Printf("Summary: %s\n", result.SummaryJSONPath)
	fmt.Printf("Chart:   %s\n", result.ChartHTMLPath)
	fmt.Println("All reports processed")

	return 0
}

// applyOverrides applies command line flags onto the loaded
// configuration. -out redirects both reports and charts into one
// directory, which is what callers running ad hoc comparisons want.
func applyOverrides(cfg *config.Config, paths *config.Paths, inDir, outDir string) {
	if inDir != "" {
		cfg.Input.Dir = inDir
	}
	if outDir != "" {
		paths.ReportsDir = outDir
		paths.ChartsDir = outDir
	}
}
