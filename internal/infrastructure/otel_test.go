package infrastructure

import (
	"context"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
)

// TestOTelInitialization tests OpenTelemetry initialization
func TestOTelInitialization(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))

	// nil config falls back to the defaults
	providers, err := InitializeOTel(nil, logger)
	require.NoError(t, err)
	require.NotNil(t, providers)

	assert.NotNil(t, providers.TracerProvider)
	assert.NotNil(t, providers.Tracer)
	assert.NotNil(t, providers.MeterProvider)
	assert.NotNil(t, providers.Meter)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	assert.NoError(t, providers.Shutdown(ctx))
}

// TestTraceCorrelation verifies log lines can carry the exported trace ID.
func TestTraceCorrelation(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	providers, err := InitializeOTel(DefaultOTelConfig(), logger)
	require.NoError(t, err)
	defer providers.Shutdown(context.Background())

	ctx, span := otel.Tracer("test").Start(context.Background(), "pipeline.run")
	defer span.End()

	traceID := TraceIDFromContext(ctx)
	require.NotEmpty(t, traceID)
	assert.Equal(t, span.SpanContext().TraceID().String(), traceID)

	// EnsureTraceID adopts the span's trace ID for logging.
	ctx = EnsureTraceID(ctx)
	assert.Equal(t, traceID, GetTraceID(ctx))

	// An ID already on the context is never replaced.
	pinned := WithTraceID(context.Background(), "pinned-id")
	assert.Equal(t, "pinned-id", GetTraceID(EnsureTraceID(pinned)))
}

// TestPipelineMetrics tests pipeline metrics creation
func TestPipelineMetrics(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	providers, err := InitializeOTel(DefaultOTelConfig(), logger)
	require.NoError(t, err)
	defer providers.Shutdown(context.Background())

	metrics, err := CreatePipelineMetrics(providers.Meter)
	require.NoError(t, err)
	require.NotNil(t, metrics)

	// Verify run metrics
	assert.NotNil(t, metrics.RunsTotal)
	assert.NotNil(t, metrics.RunDuration)
	assert.NotNil(t, metrics.ActiveRuns)
	assert.NotNil(t, metrics.RunCancellations)

	// Verify stage metrics
	assert.NotNil(t, metrics.StageExecutionsTotal)
	assert.NotNil(t, metrics.StageDuration)
	assert.NotNil(t, metrics.StageErrors)

	// Verify data volume metrics
	assert.NotNil(t, metrics.FilesParsed)
	assert.NotNil(t, metrics.RecordsLoaded)
	assert.NotNil(t, metrics.MonthsAggregated)
	assert.NotNil(t, metrics.RowsWritten)
}

// TestRecordHelpers tests the metric recording helpers
func TestRecordHelpers(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	providers, err := InitializeOTel(DefaultOTelConfig(), logger)
	require.NoError(t, err)
	defer providers.Shutdown(context.Background())

	metrics, err := CreatePipelineMetrics(providers.Meter)
	require.NoError(t, err)

	ctx := context.Background()

	// These should not panic with valid metrics
	RecordRunMetrics(ctx, metrics, "run-1", 250*time.Millisecond, true, nil)
	RecordRunMetrics(ctx, metrics, "run-2", 100*time.Millisecond, false, assert.AnError)
	RecordStageMetrics(ctx, metrics, "run-1", "aggregate", 10*time.Millisecond, true)
	RecordStageMetrics(ctx, metrics, "run-1", "load", 20*time.Millisecond, false)
	RecordActiveRunChange(ctx, metrics, 1)
	RecordActiveRunChange(ctx, metrics, -1)
	RecordRunCancellation(ctx, metrics, "run-3", "signal")

	// All helpers must be nil-safe
	RecordRunMetrics(ctx, nil, "run-1", time.Second, true, nil)
	RecordStageMetrics(ctx, nil, "run-1", "load", time.Second, true)
	RecordActiveRunChange(ctx, nil, 1)
	RecordRunCancellation(ctx, nil, "run-1", "signal")
}

// TestSpanHelpers exercises the attribute, event and error helpers
// against a recording span.
func TestSpanHelpers(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	providers, err := InitializeOTel(DefaultOTelConfig(), logger)
	require.NoError(t, err)
	defer providers.Shutdown(context.Background())

	ctx, span := otel.Tracer("test").Start(context.Background(), "pipeline.load")
	defer span.End()
	require.True(t, span.IsRecording())

	// One attribute per supported type, plus one that falls back to %v.
	SetSpanAttributes(ctx, map[string]interface{}{
		"stage":            "load",
		"input.file_count": 3,
		"records":          int64(31),
		"sample_ratio":     1.0,
		"baseline":         false,
		"started_at":       time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	})

	AddSpanEvent(ctx, "report.loaded", map[string]interface{}{
		"file":    "2024 01 passenger totals.xlsx",
		"records": 31,
	})

	RecordError(ctx, assert.AnError)

	// Helpers must be no-ops without a recording span.
	SetSpanAttributes(context.Background(), map[string]interface{}{"stage": "load"})
	AddSpanEvent(context.Background(), "report.loaded", nil)
	RecordError(context.Background(), assert.AnError)
}

// TestOTelConfiguration covers enabled, disabled and unsupported
// exporter setups.
func TestOTelConfiguration(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))

	base := func() *OTelConfig {
		return &OTelConfig{
			ServiceName:    "flyerstats-test",
			ServiceVersion: "v0.0.0",
			Environment:    "test",
			TraceExporter:  "stdout",
			MetricExporter: "stdout",
			EnableMetrics:  true,
			EnableTracing:  true,
			SampleRatio:    1.0,
			MetricInterval: time.Minute,
		}
	}

	tests := []struct {
		name        string
		mutate      func(*OTelConfig)
		wantErr     bool
		wantTracing bool
		wantMetrics bool
	}{
		{
			name:        "tracing and metrics on stdout",
			mutate:      func(*OTelConfig) {},
			wantTracing: true,
			wantMetrics: true,
		},
		{
			name:        "tracing disabled",
			mutate:      func(c *OTelConfig) { c.EnableTracing = false },
			wantMetrics: true,
		},
		{
			name:        "metrics disabled",
			mutate:      func(c *OTelConfig) { c.EnableMetrics = false },
			wantTracing: true,
		},
		{
			name:        "trace exporter none yields no provider",
			mutate:      func(c *OTelConfig) { c.TraceExporter = "none" },
			wantMetrics: true,
		},
		{
			name:    "unsupported trace exporter",
			mutate:  func(c *OTelConfig) { c.TraceExporter = "otlp" },
			wantErr: true,
		},
		{
			name:    "unsupported metric exporter",
			mutate:  func(c *OTelConfig) { c.MetricExporter = "prometheus" },
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := base()
			tt.mutate(cfg)

			providers, err := InitializeOTel(cfg, logger)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			require.NotNil(t, providers)

			if tt.wantTracing {
				assert.NotNil(t, providers.TracerProvider)
				assert.NotNil(t, providers.Tracer)
			} else {
				assert.Nil(t, providers.TracerProvider)
			}
			if tt.wantMetrics {
				assert.NotNil(t, providers.MeterProvider)
				assert.NotNil(t, providers.Meter)
			} else {
				assert.Nil(t, providers.MeterProvider)
			}

			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			assert.NoError(t, providers.Shutdown(ctx))
		})
	}
}

// TestRuntimeMetrics verifies the run resource snapshot.
func TestRuntimeMetrics(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	providers, err := InitializeOTel(DefaultOTelConfig(), logger)
	require.NoError(t, err)
	defer providers.Shutdown(context.Background())

	rm, err := NewRuntimeMetrics(providers.Meter)
	require.NoError(t, err)
	require.NotNil(t, rm)

	startedAt := time.Now().Add(-2 * time.Second)
	stats := rm.Collect(context.Background(), startedAt)
	require.NotNil(t, stats)

	assert.Positive(t, stats.Goroutines)
	assert.Positive(t, stats.HeapInUse)
	assert.Positive(t, stats.HeapSystem)
	assert.GreaterOrEqual(t, stats.Uptime, 2*time.Second)

	// A run without telemetry still gets its snapshot.
	var disabled *RuntimeMetrics
	stats = disabled.Collect(context.Background(), startedAt)
	require.NotNil(t, stats)
	assert.Positive(t, stats.Goroutines)
}

// BenchmarkStageInstrumentation measures the per-stage overhead of the
// span and metric helpers on the pipeline hot path.
func BenchmarkStageInstrumentation(b *testing.B) {
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	providers, err := InitializeOTel(DefaultOTelConfig(), logger)
	require.NoError(b, err)
	defer providers.Shutdown(context.Background())

	metrics, err := CreatePipelineMetrics(providers.Meter)
	require.NoError(b, err)

	ctx, span := otel.Tracer("benchmark").Start(context.Background(), "pipeline.run")
	defer span.End()

	b.ResetTimer()
	b.ReportAllocs()

	for i := 0; i < b.N; i++ {
		RecordStageMetrics(ctx, metrics, "run-bench", "load", time.Millisecond, true)
		AddSpanEvent(ctx, "report.loaded", map[string]interface{}{
			"file":    "bench.xlsx",
			"records": i,
		})
	}
}
