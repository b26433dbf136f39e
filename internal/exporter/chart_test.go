package exporter

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/TWALLACK/foreign-flyers/internal/config"
)

func TestRenderYoYChart(t *testing.T) {
	paths := testPaths(t)
	cfg := config.ChartConfig{
		Title:  "Passenger traffic, year over year",
		Width:  "900px",
		Height: "500px",
	}
	renderer := NewChartRenderer(paths, cfg, slog.Default())

	err := renderer.RenderYoYChart(context.Background(), sampleRows(), "traffic_yoy.html")
	require.NoError(t, err)

	chartPath := paths.GetChartPath("traffic_yoy.html")
	data, err := os.ReadFile(chartPath)
	require.NoError(t, err)

	html := string(data)
	assert.Contains(t, html, "Passenger traffic, year over year")
	assert.Contains(t, html, CategoryDomestic)
	assert.Contains(t, html, CategoryForeign)
	assert.Contains(t, html, "Jan 2023")
	assert.Contains(t, html, "Jan 2024")
	assert.Contains(t, html, "markLine", "zero reference line should be configured")

	// Jan 2023 has no baseline, so both series carry a gap marker there
	// rather than a fabricated zero.
	assert.Contains(t, html, `"value":"-"`)
}

func TestRenderYoYChartAbsolutePath(t *testing.T) {
	paths := testPaths(t)
	renderer := NewChartRenderer(paths, config.ChartConfig{Title: "Traffic"}, slog.Default())

	target := filepath.Join(t.TempDir(), "nested", "out.html")
	err := renderer.RenderYoYChart(context.Background(), sampleRows(), target)
	require.NoError(t, err)

	info, err := os.Stat(target)
	require.NoError(t, err)
	assert.Greater(t, info.Size(), int64(0))
}

func TestRenderYoYChartYearWindow(t *testing.T) {
	paths := testPaths(t)
	cfg := config.ChartConfig{Title: "Traffic", FromYear: 2024}
	renderer := NewChartRenderer(paths, cfg, slog.Default())

	err := renderer.RenderYoYChart(context.Background(), sampleRows(), "windowed.html")
	require.NoError(t, err)

	data, err := os.ReadFile(paths.GetChartPath("windowed.html"))
	require.NoError(t, err)

	html := string(data)
	assert.Contains(t, html, "Jan 2024")
	assert.NotContains(t, html, "Jan 2023", "months before the window should not be plotted")
}

func TestRenderYoYChartEmpty(t *testing.T) {
	paths := testPaths(t)
	renderer := NewChartRenderer(paths, config.ChartConfig{Title: "Traffic"}, slog.Default())

	err := renderer.RenderYoYChart(context.Background(), nil, "empty.html")
	require.NoError(t, err)

	_, err = os.Stat(paths.GetChartPath("empty.html"))
	assert.NoError(t, err)
}
