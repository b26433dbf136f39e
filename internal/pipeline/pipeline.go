package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/TWALLACK/foreign-flyers/internal/config"
	"github.com/TWALLACK/foreign-flyers/internal/dataprocessing"
	"github.com/TWALLACK/foreign-flyers/internal/exporter"
	"github.com/TWALLACK/foreign-flyers/internal/files"
	"github.com/TWALLACK/foreign-flyers/internal/infrastructure"
	"github.com/TWALLACK/foreign-flyers/internal/traffic"
	"github.com/TWALLACK/foreign-flyers/internal/validation"
	"github.com/TWALLACK/foreign-flyers/pkg/contracts/domain"
)

const TracerName = "flyerstats.pipeline"

// Stage names, shared by spans, metrics and logs.
const (
	StageDiscover    = "discover"
	StageLoad        = "load"
	StageCombine     = "combine"
	StageAggregate   = "aggregate"
	StageCompare     = "compare"
	StageExportCSV   = "export_csv"
	StageExportJSON  = "export_json"
	StageRenderChart = "render_chart"
)

// Pipeline composes the processing stages into one synchronous run:
// discover agency report files, load their daily records, aggregate by
// calendar month, join each month against the same month one year
// earlier, then write the CSV report, the JSON summary and the chart.
// A failing stage aborts the run; later stages never see partial data.
type Pipeline struct {
	cfg    *config.Config
	paths  *config.Paths
	logger *slog.Logger

	discovery *files.Discovery
	manager   *files.Manager
	validator *validation.FileValidator
	parser    *dataprocessing.Parser
	analyzer  *traffic.Analyzer
	reports   *exporter.ReportExporter
	charts    *exporter.ChartRenderer

	tracer  trace.Tracer
	metrics *infrastructure.PipelineMetrics
	runtime *infrastructure.RuntimeMetrics
}

// Result summarizes a completed run.
type Result struct {
	RunID     string
	StartedAt time.Time
	Duration  time.Duration

	Sources            []string
	RecordsLoaded      int
	MonthsAggregated   int
	RowsWritten        int
	MonthsWithBaseline int

	ReportCSVPath   string
	SummaryJSONPath string
	ChartHTMLPath   string
}

// New assembles a pipeline from configuration. Telemetry is optional:
// without WithTelemetry, spans go to the global tracer (a noop unless a
// provider was installed) and no metrics are recorded.
func New(cfg *config.Config, paths *config.Paths, logger *slog.Logger) *Pipeline {
	if logger == nil {
		logger = slog.Default()
	}
	logger = infrastructure.WithComponent(logger, "pipeline")

	return &Pipeline{
		cfg:       cfg,
		paths:     paths,
		logger:    logger,
		discovery: files.NewDiscovery(paths.ExecutableDir),
		manager:   files.NewManager(paths, logger),
		validator: validation.NewFileValidator(logger),
		parser:    dataprocessing.NewParser(cfg, logger),
		analyzer:  traffic.NewAnalyzer(logger),
		reports:   exporter.NewReportExporter(paths, logger),
		charts:    exporter.NewChartRenderer(paths, cfg.Chart, logger),
		tracer:    otel.Tracer(TracerName),
	}
}

// WithTelemetry attaches initialized OpenTelemetry providers so the run
// emits spans and pipeline metrics.
func (p *Pipeline) WithTelemetry(providers *infrastructure.OTelProviders) error {
	if providers == nil {
		return nil
	}

	if providers.Tracer != nil {
		p.tracer = providers.Tracer
	}

	if providers.Meter != nil {
		metrics, err := infrastructure.CreatePipelineMetrics(providers.Meter)
		if err != nil {
			return fmt.Errorf("failed to create pipeline metrics: %w", err)
		}
		p.metrics = metrics

		rt, err := infrastructure.NewRuntimeMetrics(providers.Meter)
		if err != nil {
			return fmt.Errorf("failed to create runtime metrics: %w", err)
		}
		p.runtime = rt
	}

	return nil
}

// Run executes the full pipeline once and returns what was produced.
func (p *Pipeline) Run(ctx context.Context) (*Result, error) {
	runID := uuid.New().String()
	startedAt := time.Now()

	ctx, span := p.tracer.Start(ctx, "pipeline.run",
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(
			attribute.String("run.id", runID),
			attribute.String("input.dir", p.cfg.GetInputDir()),
		))
	defer span.End()

	// After span start, so the logged trace ID matches the exported one.
	ctx = infrastructure.EnsureTraceID(ctx)

	infrastructure.RecordActiveRunChange(ctx, p.metrics, 1)
	defer infrastructure.RecordActiveRunChange(ctx, p.metrics, -1)

	p.logger.InfoContext(ctx, "pipeline run starting",
		slog.String("run_id", runID),
		slog.String("input_dir", p.cfg.GetInputDir()))

	result, err := p.run(ctx, runID, startedAt)
	duration := time.Since(startedAt)

	infrastructure.RecordRunMetrics(ctx, p.metrics, runID, duration, err == nil, err)

	stats := p.runtime.Collect(ctx, startedAt)
	p.logger.DebugContext(ctx, "run resource usage",
		slog.Int("goroutines", stats.Goroutines),
		slog.Uint64("heap_inuse_bytes", stats.HeapInUse),
		slog.Uint64("heap_sys_bytes", stats.HeapSystem),
		slog.Int("gc_runs", int(stats.GCRuns)))

	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			infrastructure.RecordRunCancellation(ctx, p.metrics, runID, err.Error())
		}
		infrastructure.RecordError(ctx, err)
		p.logger.ErrorContext(ctx, "pipeline run failed",
			slog.String("run_id", runID),
			slog.Duration("duration", duration),
			slog.String("error", err.Error()))
		return nil, err
	}

	result.Duration = duration
	span.SetStatus(codes.Ok, "run completed")
	p.logger.InfoContext(ctx, "pipeline run completed",
		slog.String("run_id", runID),
		slog.Duration("duration", duration),
		slog.Int("files", len(result.Sources)),
		slog.Int("records", result.RecordsLoaded),
		slog.Int("rows", result.RowsWritten))

	return result, nil
}

// run walks the stages in order, threading intermediate data between
// them. Each stage gets its own span and duration metric.
func (p *Pipeline) run(ctx context.Context, runID string, startedAt time.Time) (*Result, error) {
	result := &Result{RunID: runID, StartedAt: startedAt}

	var inputs []files.FileInfo
	if err := p.runStage(ctx, runID, StageDiscover, func(ctx context.Context) error {
		var err error
		inputs, err = p.discoverInputs(ctx)
		return err
	}); err != nil {
		return nil, err
	}

	var reports []*domain.TrafficReport
	if err := p.runStage(ctx, runID, StageLoad, func(ctx context.Context) error {
		var err error
		reports, err = p.loadReports(ctx, inputs, result)
		return err
	}); err != nil {
		return nil, err
	}

	var records []traffic.NormalizedRecord
	if err := p.runStage(ctx, runID, StageCombine, func(ctx context.Context) error {
		records = p.analyzer.Combine(ctx, reports)
		return nil
	}); err != nil {
		return nil, err
	}

	var months []traffic.MonthlyAggregate
	if err := p.runStage(ctx, runID, StageAggregate, func(ctx context.Context) error {
		months = p.analyzer.Aggregate(ctx, records)
		if p.metrics != nil {
			p.metrics.MonthsAggregated.Add(ctx, int64(len(months)))
		}
		return nil
	}); err != nil {
		return nil, err
	}
	result.MonthsAggregated = len(months)

	var rows []traffic.YoYRow
	if err := p.runStage(ctx, runID, StageCompare, func(ctx context.Context) error {
		var err error
		rows, err = p.analyzer.YoYTable(ctx, months)
		return err
	}); err != nil {
		return nil, err
	}
	result.RowsWritten = len(rows)
	for _, row := range rows {
		if row.HasBaseline() {
			result.MonthsWithBaseline++
		}
	}

	if err := p.runStage(ctx, runID, StageExportCSV, func(ctx context.Context) error {
		return p.exportCSV(ctx, rows, result)
	}); err != nil {
		return nil, err
	}

	if err := p.runStage(ctx, runID, StageExportJSON, func(ctx context.Context) error {
		return p.exportSummary(ctx, rows, result)
	}); err != nil {
		return nil, err
	}

	if err := p.runStage(ctx, runID, StageRenderChart, func(ctx context.Context) error {
		return p.renderChart(ctx, rows, result)
	}); err != nil {
		return nil, err
	}

	return result, nil
}

// runStage wraps one stage with a span, a duration metric and uniform
// logging. The stage name is prefixed onto any error so failures read
// as "load stage failed: ...".
func (p *Pipeline) runStage(ctx context.Context, runID, stage string, fn func(context.Context) error) error {
	ctx, span := p.tracer.Start(ctx, "pipeline."+stage,
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(
			attribute.String("run.id", runID),
			attribute.String("stage", stage),
		))
	defer span.End()

	start := time.Now()
	err := fn(ctx)
	duration := time.Since(start)

	infrastructure.RecordStageMetrics(ctx, p.metrics, runID, stage, duration, err == nil)

	if err != nil {
		infrastructure.RecordError(ctx, err)
		p.logger.ErrorContext(ctx, "stage failed",
			slog.String("stage", stage),
			slog.Duration("duration", duration),
			slog.String("error", err.Error()))
		return fmt.Errorf("%s stage failed: %w", stage, err)
	}

	span.SetStatus(codes.Ok, "stage completed")
	p.logger.DebugContext(ctx, "stage completed",
		slog.String("stage", stage),
		slog.Duration("duration", duration))

	return nil
}
