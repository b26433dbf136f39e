package pipeline

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"

	"github.com/TWALLACK/foreign-flyers/internal/config"
	apperrors "github.com/TWALLACK/foreign-flyers/internal/errors"
	"github.com/TWALLACK/foreign-flyers/internal/infrastructure"
)

func init() {
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelError,
	})))
}

// testSetup builds a config and path layout rooted in a temp directory.
func testSetup(t *testing.T) (*config.Config, *config.Paths) {
	t.Helper()

	base := t.TempDir()
	paths := &config.Paths{
		ExecutableDir: base,
		DataDir:       filepath.Join(base, "data"),
		InputDir:      filepath.Join(base, "data", "input"),
		ReportsDir:    filepath.Join(base, "data", "reports"),
		ChartsDir:     filepath.Join(base, "data", "charts"),
		LogsDir:       filepath.Join(base, "logs"),
	}
	require.NoError(t, paths.EnsureDirectories())

	cfg := config.Default()
	cfg.Input.Dir = paths.InputDir
	cfg.Paths.ExecutableDir = base

	return cfg, paths
}

func writeInputCSV(t *testing.T, dir, name string, lines ...string) {
	t.Helper()
	content := strings.Join(lines, "\n") + "\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0644))
}

// writeWorkedExample writes two monthly report files matching the
// documented example: January 2023 sums to domestic 100 / foreign 200,
// January 2024 to domestic 150 / foreign 150.
func writeWorkedExample(t *testing.T, inputDir string) {
	t.Helper()

	writeInputCSV(t, inputDir, "2023 01 arrivals.csv",
		"date,total passengers,domestic passengers,foreign passengers",
		"2023-01-10,120,40,80",
		"2023-01-20,180,60,120",
	)
	writeInputCSV(t, inputDir, "2024 01 arrivals.csv",
		"date,total passengers,domestic passengers,foreign passengers",
		"2024-01-05,90,70,20",
		"2024-01-15,210,80,130",
	)
}

func TestPipelineRun(t *testing.T) {
	cfg, paths := testSetup(t)
	writeWorkedExample(t, paths.InputDir)

	p := New(cfg, paths, slog.Default())
	result, err := p.Run(context.Background())
	require.NoError(t, err)

	assert.NotEmpty(t, result.RunID)
	assert.Equal(t, []string{"2023 01 arrivals.csv", "2024 01 arrivals.csv"}, result.Sources)
	assert.Equal(t, 4, result.RecordsLoaded)
	assert.Equal(t, 2, result.MonthsAggregated)
	assert.Equal(t, 2, result.RowsWritten)
	assert.Equal(t, 1, result.MonthsWithBaseline)

	t.Run("csv report", func(t *testing.T) {
		data, err := os.ReadFile(result.ReportCSVPath)
		require.NoError(t, err)

		want := "\ufeff" +
			"year,month,domestic_total,foreign_total," +
			"domestic_total_prev_year,foreign_total_prev_year," +
			"domestic_yoy_change,foreign_yoy_change," +
			"domestic_yoy_pct,foreign_yoy_pct,display_label\n" +
			"2023,1,100,200,,,,,,,Jan 2023\n" +
			"2024,1,150,150,100,200,50,-50,50.0,-25.0,Jan 2024\n"
		assert.Equal(t, want, string(data))
	})

	t.Run("json summary", func(t *testing.T) {
		data, err := os.ReadFile(result.SummaryJSONPath)
		require.NoError(t, err)

		var summary map[string]interface{}
		require.NoError(t, json.Unmarshal(data, &summary))

		assert.Equal(t, "traffic_summary_v1", summary["format"])
		assert.Equal(t, float64(4), summary["records"])
		assert.Equal(t, float64(2), summary["month_count"])
		assert.Equal(t, float64(1), summary["months_with_baseline"])
	})

	t.Run("chart", func(t *testing.T) {
		data, err := os.ReadFile(result.ChartHTMLPath)
		require.NoError(t, err)
		assert.Contains(t, string(data), "Domestic passengers")
		assert.Contains(t, string(data), "Foreign passengers")
	})
}

func TestPipelineRunRepeatable(t *testing.T) {
	cfg, paths := testSetup(t)
	writeWorkedExample(t, paths.InputDir)

	p := New(cfg, paths, slog.Default())

	first, err := p.Run(context.Background())
	require.NoError(t, err)
	firstCSV, err := os.ReadFile(first.ReportCSVPath)
	require.NoError(t, err)

	second, err := p.Run(context.Background())
	require.NoError(t, err)
	secondCSV, err := os.ReadFile(second.ReportCSVPath)
	require.NoError(t, err)

	assert.Equal(t, firstCSV, secondCSV, "rerunning over unchanged input must reproduce the report byte for byte")
}

func TestPipelineRunNoInputFiles(t *testing.T) {
	cfg, paths := testSetup(t)

	p := New(cfg, paths, slog.Default())
	result, err := p.Run(context.Background())
	require.Error(t, err)
	assert.Nil(t, result)
	assert.Contains(t, err.Error(), "discover stage failed")

	var appErr *apperrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, apperrors.ErrTypeNotFound, appErr.Type)
	assert.Equal(t, paths.InputDir, appErr.Context["input_dir"])
}

func TestPipelineRunMissingInputDir(t *testing.T) {
	cfg, paths := testSetup(t)
	cfg.Input.Dir = filepath.Join(paths.DataDir, "nowhere")

	p := New(cfg, paths, slog.Default())
	result, err := p.Run(context.Background())
	require.Error(t, err)
	assert.Nil(t, result)
	assert.Contains(t, err.Error(), "discover stage failed")

	var appErr *apperrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, apperrors.ErrTypeNotFound, appErr.Type)
	assert.Equal(t, cfg.Input.Dir, appErr.Context["dir"])
}

func TestPipelineRunUnreadableFileAborts(t *testing.T) {
	cfg, paths := testSetup(t)
	writeWorkedExample(t, paths.InputDir)

	// Not a workbook, despite the extension.
	badPath := filepath.Join(paths.InputDir, "2024 02 arrivals.xlsx")
	require.NoError(t, os.WriteFile(badPath, []byte("not a workbook"), 0644))

	p := New(cfg, paths, slog.Default())
	_, err := p.Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "load stage failed")

	var appErr *apperrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, badPath, appErr.Context["file"], "error should name the offending file")

	// Nothing downstream of the failure may be written.
	_, statErr := os.Stat(paths.GetReportPath(cfg.Output.ReportCSV))
	assert.True(t, os.IsNotExist(statErr))
}

func TestPipelineRunCancelled(t *testing.T) {
	cfg, paths := testSetup(t)
	writeWorkedExample(t, paths.InputDir)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	p := New(cfg, paths, slog.Default())
	_, err := p.Run(ctx)
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestPipelineRunWithTelemetry(t *testing.T) {
	cfg, paths := testSetup(t)
	writeWorkedExample(t, paths.InputDir)

	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	tp := sdktrace.NewTracerProvider()
	t.Cleanup(func() {
		_ = mp.Shutdown(context.Background())
		_ = tp.Shutdown(context.Background())
	})

	providers := &infrastructure.OTelProviders{
		TracerProvider: tp,
		MeterProvider:  mp,
		Tracer:         tp.Tracer("test"),
		Meter:          mp.Meter("test"),
		Logger:         slog.Default(),
	}

	p := New(cfg, paths, slog.Default())
	require.NoError(t, p.WithTelemetry(providers))

	_, err := p.Run(context.Background())
	require.NoError(t, err)

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))

	names := make(map[string]bool)
	for _, scope := range rm.ScopeMetrics {
		for _, m := range scope.Metrics {
			names[m.Name] = true
		}
	}
	assert.True(t, names["pipeline_runs_total"], "run counter should be recorded")
	assert.True(t, names["pipeline_stage_duration_seconds"], "stage durations should be recorded")
	assert.True(t, names["input_files_parsed_total"], "parsed file counter should be recorded")
	assert.True(t, names["runtime_goroutines"], "runtime snapshot should be recorded")
}
