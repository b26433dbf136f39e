package infrastructure

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/exporters/stdout/stdoutmetric"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/propagation"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.28.0"
	"go.opentelemetry.io/otel/trace"

	"github.com/TWALLACK/foreign-flyers/pkg/contracts"
)

const (
	ServiceName    = "foreign-flyers"
	ServiceVersion = "v" + contracts.Version
	MeterName      = "flyerstats"
)

// OTelConfig holds OpenTelemetry configuration
type OTelConfig struct {
	ServiceName    string
	ServiceVersion string
	Environment    string
	TraceExporter  string // "stdout", "none"
	MetricExporter string // "stdout", "none"
	EnableMetrics  bool
	EnableTracing  bool
	SampleRatio    float64
	MetricInterval time.Duration
}

// OTelProviders holds the OpenTelemetry providers
type OTelProviders struct {
	TracerProvider *sdktrace.TracerProvider
	MeterProvider  *sdkmetric.MeterProvider
	Tracer         trace.Tracer
	Meter          metric.Meter
	Logger         *slog.Logger
}

// DefaultOTelConfig returns a default OpenTelemetry configuration
func DefaultOTelConfig() *OTelConfig {
	env := os.Getenv("ENVIRONMENT")
	if env == "" {
		env = "development"
	}

	return &OTelConfig{
		ServiceName:    ServiceName,
		ServiceVersion: ServiceVersion,
		Environment:    env,
		TraceExporter:  "stdout", // Use stdout for development
		MetricExporter: "stdout",
		EnableMetrics:  true,
		EnableTracing:  true,
		SampleRatio:    1.0, // Sample all traces in development
		MetricInterval: 30 * time.Second,
	}
}

// InitializeOTel initializes OpenTelemetry with comprehensive observability
func InitializeOTel(cfg *OTelConfig, logger *slog.Logger) (*OTelProviders, error) {
	if cfg == nil {
		cfg = DefaultOTelConfig()
	}

	ctx := context.Background()

	logger.InfoContext(ctx, "Initializing OpenTelemetry",
		slog.String("service", cfg.ServiceName),
		slog.String("version", cfg.ServiceVersion),
		slog.String("environment", cfg.Environment),
		slog.Bool("tracing_enabled", cfg.EnableTracing),
		slog.Bool("metrics_enabled", cfg.EnableMetrics))

	// Create resource
	res, err := createResource(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create resource: %w", err)
	}

	providers := &OTelProviders{
		Logger: logger,
	}

	// Initialize tracing
	if cfg.EnableTracing {
		if err := initializeTracing(ctx, cfg, res, providers); err != nil {
			return nil, fmt.Errorf("failed to initialize tracing: %w", err)
		}
	}

	// Initialize metrics
	if cfg.EnableMetrics {
		if err := initializeMetrics(ctx, cfg, res, providers); err != nil {
			return nil, fmt.Errorf("failed to initialize metrics: %w", err)
		}
	}

	// Set up global propagators for trace context
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	logger.InfoContext(ctx, "OpenTelemetry initialization complete",
		slog.Bool("tracing_enabled", cfg.EnableTracing),
		slog.Bool("metrics_enabled", cfg.EnableMetrics))

	return providers, nil
}

// createResource creates the OpenTelemetry resource
func createResource(cfg *OTelConfig) (*resource.Resource, error) {
	return resource.NewWithAttributes(
		semconv.SchemaURL,
		semconv.ServiceName(cfg.ServiceName),
		semconv.ServiceVersion(cfg.ServiceVersion),
		semconv.DeploymentEnvironmentName(cfg.Environment),
		attribute.String("service.instance.id", generateInstanceID()),
	), nil
}

// initializeTracing sets up OpenTelemetry tracing
func initializeTracing(ctx context.Context, cfg *OTelConfig, res *resource.Resource, providers *OTelProviders) error {
	var exporter sdktrace.SpanExporter
	var err error

	switch cfg.TraceExporter {
	case "stdout":
		exporter, err = stdouttrace.New(
			stdouttrace.WithPrettyPrint(),
		)
	case "none":
		// No exporter - tracing disabled
		return nil
	default:
		return fmt.Errorf("unsupported trace exporter: %s", cfg.TraceExporter)
	}

	if err != nil {
		return fmt.Errorf("failed to create trace exporter: %w", err)
	}

	// Create tracer provider
	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sdktrace.TraceIDRatioBased(cfg.SampleRatio)),
	)

	providers.TracerProvider = tp
	providers.Tracer = tp.Tracer(MeterName, trace.WithInstrumentationVersion(cfg.ServiceVersion))

	// Set global tracer provider
	otel.SetTracerProvider(tp)

	providers.Logger.InfoContext(ctx, "Tracing initialized",
		slog.String("exporter", cfg.TraceExporter),
		slog.Float64("sample_ratio", cfg.SampleRatio))

	return nil
}

// initializeMetrics sets up OpenTelemetry metrics
func initializeMetrics(ctx context.Context, cfg *OTelConfig, res *resource.Resource, providers *OTelProviders) error {
	switch cfg.MetricExporter {
	case "stdout":
		// Emit metrics as indented JSON on stdout
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")

		exporter, err := stdoutmetric.New(stdoutmetric.WithEncoder(enc))
		if err != nil {
			return fmt.Errorf("failed to create stdout metric exporter: %w", err)
		}

		interval := cfg.MetricInterval
		if interval <= 0 {
			interval = 30 * time.Second
		}

		// Create meter provider with a periodic reader
		mp := sdkmetric.NewMeterProvider(
			sdkmetric.WithResource(res),
			sdkmetric.WithReader(sdkmetric.NewPeriodicReader(exporter,
				sdkmetric.WithInterval(interval))),
		)

		providers.MeterProvider = mp
		providers.Meter = mp.Meter(MeterName, metric.WithInstrumentationVersion(cfg.ServiceVersion))

		// Set global meter provider
		otel.SetMeterProvider(mp)

	case "none":
		// No exporter - metrics disabled
		return nil
	default:
		return fmt.Errorf("unsupported metric exporter: %s", cfg.MetricExporter)
	}

	providers.Logger.InfoContext(ctx, "Metrics initialized",
		slog.String("exporter", cfg.MetricExporter))

	return nil
}

// CreatePipelineMetrics creates application-specific metrics
func CreatePipelineMetrics(meter metric.Meter) (*PipelineMetrics, error) {
	// Run metrics
	runsTotal, err := meter.Int64Counter(
		"pipeline_runs_total",
		metric.WithDescription("Total number of pipeline runs"),
	)
	if err != nil {
		return nil, err
	}

	runDuration, err := meter.Float64Histogram(
		"pipeline_run_duration_seconds",
		metric.WithDescription("Pipeline run duration in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}

	activeRuns, err := meter.Int64UpDownCounter(
		"pipeline_active_runs",
		metric.WithDescription("Number of active pipeline runs"),
	)
	if err != nil {
		return nil, err
	}

	runCancellations, err := meter.Int64Counter(
		"pipeline_cancellations_total",
		metric.WithDescription("Total number of cancelled pipeline runs"),
	)
	if err != nil {
		return nil, err
	}

	// Stage metrics
	stageExecutionsTotal, err := meter.Int64Counter(
		"pipeline_stage_executions_total",
		metric.WithDescription("Total number of pipeline stage executions"),
	)
	if err != nil {
		return nil, err
	}

	stageDuration, err := meter.Float64Histogram(
		"pipeline_stage_duration_seconds",
		metric.WithDescription("Pipeline stage execution duration in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}

	stageErrors, err := meter.Int64Counter(
		"pipeline_stage_errors_total",
		metric.WithDescription("Total number of pipeline stage errors"),
	)
	if err != nil {
		return nil, err
	}

	// Data volume metrics
	filesParsed, err := meter.Int64Counter(
		"input_files_parsed_total",
		metric.WithDescription("Total number of input report files parsed"),
	)
	if err != nil {
		return nil, err
	}

	recordsLoaded, err := meter.Int64Counter(
		"flight_records_loaded_total",
		metric.WithDescription("Total number of daily flight records loaded"),
	)
	if err != nil {
		return nil, err
	}

	monthsAggregated, err := meter.Int64Counter(
		"months_aggregated_total",
		metric.WithDescription("Total number of calendar months aggregated"),
	)
	if err != nil {
		return nil, err
	}

	rowsWritten, err := meter.Int64Counter(
		"report_rows_written_total",
		metric.WithDescription("Total number of report rows written"),
	)
	if err != nil {
		return nil, err
	}

	return &PipelineMetrics{
		// Run metrics
		RunsTotal:        runsTotal,
		RunDuration:      runDuration,
		ActiveRuns:       activeRuns,
		RunCancellations: runCancellations,

		// Stage metrics
		StageExecutionsTotal: stageExecutionsTotal,
		StageDuration:        stageDuration,
		StageErrors:          stageErrors,

		// Data volume metrics
		FilesParsed:      filesParsed,
		RecordsLoaded:    recordsLoaded,
		MonthsAggregated: monthsAggregated,
		RowsWritten:      rowsWritten,
	}, nil
}

// PipelineMetrics holds all application-specific metrics
type PipelineMetrics struct {
	// Run metrics
	RunsTotal        metric.Int64Counter
	RunDuration      metric.Float64Histogram
	ActiveRuns       metric.Int64UpDownCounter
	RunCancellations metric.Int64Counter

	// Stage metrics
	StageExecutionsTotal metric.Int64Counter
	StageDuration        metric.Float64Histogram
	StageErrors          metric.Int64Counter

	// Data volume metrics
	FilesParsed      metric.Int64Counter
	RecordsLoaded    metric.Int64Counter
	MonthsAggregated metric.Int64Counter
	RowsWritten      metric.Int64Counter
}

// Shutdown gracefully shuts down OpenTelemetry providers
func (p *OTelProviders) Shutdown(ctx context.Context) error {
	var errs []error

	if p.TracerProvider != nil {
		if err := p.TracerProvider.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("tracer provider shutdown: %w", err))
		}
	}

	if p.MeterProvider != nil {
		if err := p.MeterProvider.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("meter provider shutdown: %w", err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("opentelemetry shutdown errors: %v", errs)
	}

	p.Logger.InfoContext(ctx, "OpenTelemetry shutdown complete")
	return nil
}

// generateInstanceID generates a unique instance identifier
func generateInstanceID() string {
	hostname, _ := os.Hostname()
	return fmt.Sprintf("%s-%d", hostname, time.Now().Unix())
}

// TraceIDFromContext extracts trace ID from context for logging correlation
func TraceIDFromContext(ctx context.Context) string {
	spanCtx := trace.SpanContextFromContext(ctx)
	if spanCtx.IsValid() {
		return spanCtx.TraceID().String()
	}
	return ""
}

// AddSpanEvent adds an event to the current span with structured attributes
func AddSpanEvent(ctx context.Context, name string, attributes map[string]interface{}) {
	span := trace.SpanFromContext(ctx)
	if !span.IsRecording() {
		return
	}

	attrs := make([]attribute.KeyValue, 0, len(attributes))
	for k, v := range attributes {
		switch val := v.(type) {
		case string:
			attrs = append(attrs, attribute.String(k, val))
		case int:
			attrs = append(attrs, attribute.Int(k, val))
		case int64:
			attrs = append(attrs, attribute.Int64(k, val))
		case float64:
			attrs = append(attrs, attribute.Float64(k, val))
		case bool:
			attrs = append(attrs, attribute.Bool(k, val))
		default:
			attrs = append(attrs, attribute.String(k, fmt.Sprintf("%v", val)))
		}
	}

	span.AddEvent(name, trace.WithAttributes(attrs...))
}

// RecordError records an error on the current span
func RecordError(ctx context.Context, err error, options ...trace.EventOption) {
	span := trace.SpanFromContext(ctx)
	if !span.IsRecording() {
		return
	}

	span.RecordError(err, options...)
	span.SetStatus(codes.Error, err.Error())
}

// SetSpanAttributes sets attributes on the current span
func SetSpanAttributes(ctx context.Context, attributes map[string]interface{}) {
	span := trace.SpanFromContext(ctx)
	if !span.IsRecording() {
		return
	}

	for k, v := range attributes {
		switch val := v.(type) {
		case string:
			span.SetAttributes(attribute.String(k, val))
		case int:
			span.SetAttributes(attribute.Int(k, val))
		case int64:
			span.SetAttributes(attribute.Int64(k, val))
		case float64:
			span.SetAttributes(attribute.Float64(k, val))
		case bool:
			span.SetAttributes(attribute.Bool(k, val))
		default:
			span.SetAttributes(attribute.String(k, fmt.Sprintf("%v", val)))
		}
	}
}

// RecordRunMetrics records metrics for a complete pipeline run
func RecordRunMetrics(ctx context.Context, metrics *PipelineMetrics, runID string, duration time.Duration, success bool, err error) {
	if metrics == nil {
		return
	}

	// Common attributes
	attrs := []attribute.KeyValue{
		attribute.String("run.id", runID),
	}

	// Record execution
	metrics.RunsTotal.Add(ctx, 1, metric.WithAttributes(attrs...))

	// Record duration
	statusAttr := attribute.String("status", "success")
	if !success {
		statusAttr = attribute.String("status", "failure")
	}
	durationAttrs := append(attrs, statusAttr)
	metrics.RunDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(durationAttrs...))

	// Record errors
	if err != nil {
		errorAttrs := append(attrs, attribute.String("error.type", fmt.Sprintf("%T", err)))
		metrics.StageErrors.Add(ctx, 1, metric.WithAttributes(errorAttrs...))
	}

	// Add span event
	span := trace.SpanFromContext(ctx)
	if span.IsRecording() {
		span.AddEvent("run.metrics_recorded",
			trace.WithAttributes(
				attribute.String("run.id", runID),
				attribute.Bool("success", success),
				attribute.Float64("duration_seconds", duration.Seconds()),
			),
		)
	}
}

// RecordStageMetrics records metrics for a single pipeline stage execution
func RecordStageMetrics(ctx context.Context, metrics *PipelineMetrics, runID, stage string, duration time.Duration, success bool) {
	if metrics == nil {
		return
	}

	// Common attributes
	attrs := []attribute.KeyValue{
		attribute.String("run.id", runID),
		attribute.String("stage", stage),
	}

	// Record stage execution
	metrics.StageExecutionsTotal.Add(ctx, 1, metric.WithAttributes(attrs...))

	// Record duration
	statusAttr := attribute.String("status", "success")
	if !success {
		statusAttr = attribute.String("status", "failure")
	}
	durationAttrs := append(attrs, statusAttr)
	metrics.StageDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(durationAttrs...))

	if !success {
		metrics.StageErrors.Add(ctx, 1, metric.WithAttributes(attrs...))
	}
}

// RecordActiveRunChange records changes in active run count
func RecordActiveRunChange(ctx context.Context, metrics *PipelineMetrics, delta int64) {
	if metrics == nil {
		return
	}

	metrics.ActiveRuns.Add(ctx, delta)
}

// RecordRunCancellation records a cancelled pipeline run
func RecordRunCancellation(ctx context.Context, metrics *PipelineMetrics, runID, reason string) {
	if metrics == nil {
		return
	}

	attrs := []attribute.KeyValue{
		attribute.String("run.id", runID),
		attribute.String("reason", reason),
	}

	metrics.RunCancellations.Add(ctx, 1, metric.WithAttributes(attrs...))
}
