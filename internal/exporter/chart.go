package exporter

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/TWALLACK/foreign-flyers/internal/config"
	"github.com/TWALLACK/foreign-flyers/internal/traffic"
)

// ChartRenderer draws the year-over-year comparison chart to a
// standalone HTML file.
type ChartRenderer struct {
	paths  *config.Paths
	cfg    config.ChartConfig
	logger *slog.Logger
}

// NewChartRenderer creates a renderer for the configured chart options.
func NewChartRenderer(paths *config.Paths, cfg config.ChartConfig, logger *slog.Logger) *ChartRenderer {
	if logger == nil {
		logger = slog.Default()
	}
	return &ChartRenderer{
		paths:  paths,
		cfg:    cfg,
		logger: logger.With(slog.String("component", "chart")),
	}
}

// RenderYoYChart filters the table to the configured year range,
// reshapes it into per-category series and renders the line chart.
// Months without a baseline appear as gaps, not zeros.
func (c *ChartRenderer) RenderYoYChart(ctx context.Context, rows []traffic.YoYRow, filePath string) error {
	filtered := FilterYearRange(rows, c.cfg.FromYear, c.cfg.ToYear)
	points := BuildChangeSeries(filtered)

	c.logger.InfoContext(ctx, "rendering year-over-year chart",
		slog.String("file", filePath),
		slog.Int("months", len(filtered)),
		slog.Int("points", len(points)))

	labels, domestic, foreign := pivotSeries(points)

	line := c.buildLineChart(labels, domestic, foreign)

	fullPath := filePath
	if !filepath.IsAbs(fullPath) {
		fullPath = c.paths.GetChartPath(fullPath)
	}
	if err := os.MkdirAll(filepath.Dir(fullPath), 0755); err != nil {
		return fmt.Errorf("failed to create chart directory: %w", err)
	}

	file, err := os.Create(fullPath)
	if err != nil {
		return fmt.Errorf("failed to create chart file: %w", err)
	}
	defer file.Close()

	if err := line.Render(file); err != nil {
		return fmt.Errorf("failed to render chart: %w", err)
	}

	c.logger.InfoContext(ctx, "chart written", slog.String("path", fullPath))
	return nil
}

// pivotSeries turns the long-format points back into aligned per-series
// slices. A nil value becomes the echarts gap marker.
func pivotSeries(points []SeriesPoint) (labels []string, domestic, foreign []opts.LineData) {
	for _, p := range points {
		var value opts.LineData
		if p.Value != nil {
			value = opts.LineData{Value: *p.Value}
		} else {
			value = opts.LineData{Value: "-"}
		}

		switch p.Category {
		case CategoryDomestic:
			labels = append(labels, p.Label)
			domestic = append(domestic, value)
		case CategoryForeign:
			foreign = append(foreign, value)
		}
	}
	return labels, domestic, foreign
}

func (c *ChartRenderer) buildLineChart(labels []string, domestic, foreign []opts.LineData) *charts.Line {
	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{
			PageTitle: c.cfg.Title,
			Width:     c.cfg.Width,
			Height:    c.cfg.Height,
		}),
		charts.WithTitleOpts(opts.Title{
			Title:    c.cfg.Title,
			Subtitle: "Change against the same month one year earlier",
		}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "axis"}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true), Top: "30px"}),
		charts.WithXAxisOpts(opts.XAxis{
			Name: "Month",
			AxisLabel: &opts.AxisLabel{
				Show:     opts.Bool(true),
				Interval: "0",
				Rotate:   45,
			},
		}),
		charts.WithYAxisOpts(opts.YAxis{Name: "YoY change (passengers)"}),
		charts.WithGridOpts(opts.Grid{ContainLabel: opts.Bool(true)}),
		charts.WithDataZoomOpts(opts.DataZoom{Type: "slider"}),
	)

	line.SetXAxis(labels)

	seriesOpts := []charts.SeriesOpts{
		charts.WithLineChartOpts(opts.LineChart{
			ShowSymbol: opts.Bool(true),
			Symbol:     "circle",
			SymbolSize: 7,
		}),
	}

	// The zero line anchors the reading: above it a month beat last
	// year, below it the month fell short.
	line.AddSeries(CategoryDomestic, domestic, append(seriesOpts,
		charts.WithMarkLineNameYAxisItemOpts(opts.MarkLineNameYAxisItem{
			Name:  "No change",
			YAxis: 0,
		}),
		charts.WithMarkLineStyleOpts(opts.MarkLineStyle{
			Symbol: []string{"none", "none"},
			Label:  &opts.Label{Show: opts.Bool(true), Formatter: "{b}"},
		}),
	)...)
	line.AddSeries(CategoryForeign, foreign, seriesOpts...)

	return line
}
