package pipeline

import (
	"context"
	"log/slog"

	apperrors "github.com/TWALLACK/foreign-flyers/internal/errors"
	"github.com/TWALLACK/foreign-flyers/internal/exporter"
	"github.com/TWALLACK/foreign-flyers/internal/files"
	"github.com/TWALLACK/foreign-flyers/internal/infrastructure"
	"github.com/TWALLACK/foreign-flyers/internal/traffic"
	"github.com/TWALLACK/foreign-flyers/pkg/contracts/domain"
)

// discoverInputs checks the input and output directories, then lists
// parseable report files in the input directory. An empty directory is
// treated as a configuration problem, not a request for an empty
// report.
func (p *Pipeline) discoverInputs(ctx context.Context) ([]files.FileInfo, error) {
	inputDir := p.cfg.GetInputDir()

	if err := p.validator.ValidateInputDirectory(inputDir); err != nil {
		return nil, err
	}
	if err := p.validator.ValidateOutputDirectory(p.paths.ReportsDir); err != nil {
		return nil, err
	}
	if err := p.validator.ValidateOutputDirectory(p.paths.ChartsDir); err != nil {
		return nil, err
	}

	var inputs []files.FileInfo
	var err error
	if pattern := p.cfg.Input.FilePattern; pattern != "" {
		inputs, err = p.discovery.FindFilesByPattern(inputDir, pattern)
	} else {
		inputs, err = p.discovery.FindInputFiles(inputDir)
	}
	if err != nil {
		return nil, err
	}
	if len(inputs) == 0 {
		return nil, apperrors.NewNotFoundError("input report files").
			WithContext("input_dir", inputDir)
	}

	names := make([]string, 0, len(inputs))
	for _, f := range inputs {
		names = append(names, f.Name)
	}

	p.logger.InfoContext(ctx, "input files discovered",
		slog.Int("count", len(inputs)),
		slog.String("input_dir", inputDir),
		slog.Any("files", names))

	// The newest modification time tells an operator at a glance whether
	// the agency drop is current or stale.
	if latest, ok := files.GetLatestFile(inputs); ok {
		p.logger.InfoContext(ctx, "newest input file",
			slog.String("file", latest.Name),
			slog.Time("modified", latest.ModTime))
	}

	infrastructure.SetSpanAttributes(ctx, map[string]interface{}{
		"input.file_count": len(inputs),
	})

	return inputs, nil
}

// loadReports parses every discovered file in order. Any unreadable
// file aborts the run; the parser attaches the offending path to the
// error, so nothing is added here.
func (p *Pipeline) loadReports(ctx context.Context, inputs []files.FileInfo, result *Result) ([]*domain.TrafficReport, error) {
	reports := make([]*domain.TrafficReport, 0, len(inputs))

	for i, input := range inputs {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		p.logger.InfoContext(ctx, "loading report file",
			slog.Int("current", i+1),
			slog.Int("total", len(inputs)),
			slog.String("file", input.Name))

		if err := p.validator.ValidateReportFile(input.Path); err != nil {
			return nil, err
		}

		report, err := p.parser.ParseFile(input.Path)
		if err != nil {
			return nil, err
		}

		if p.metrics != nil {
			p.metrics.FilesParsed.Add(ctx, 1)
			p.metrics.RecordsLoaded.Add(ctx, int64(len(report.Records)))
		}

		infrastructure.AddSpanEvent(ctx, "report.loaded", map[string]interface{}{
			"file":    input.Name,
			"records": len(report.Records),
		})

		result.Sources = append(result.Sources, report.Source)
		result.RecordsLoaded += len(report.Records)
		reports = append(reports, report)
	}

	return reports, nil
}

// exportCSV writes the year-over-year table and verifies the file
// landed on disk.
func (p *Pipeline) exportCSV(ctx context.Context, rows []traffic.YoYRow, result *Result) error {
	if err := p.reports.ExportYoYReport(ctx, rows, p.cfg.Output.ReportCSV); err != nil {
		return err
	}

	path := p.paths.GetReportPath(p.cfg.Output.ReportCSV)
	size, err := p.manager.GetFileSize(path)
	if err != nil {
		return apperrors.NewStorageError("report file missing after write", err).
			WithContext("path", path)
	}

	if p.metrics != nil {
		p.metrics.RowsWritten.Add(ctx, int64(len(rows)))
	}

	p.logger.InfoContext(ctx, "report written",
		slog.String("path", path),
		slog.Int("rows", len(rows)),
		slog.Int64("bytes", size))

	result.ReportCSVPath = path
	return nil
}

// exportSummary writes the JSON run summary. The run start is used as
// the generation timestamp so one run's outputs carry one timestamp.
func (p *Pipeline) exportSummary(ctx context.Context, rows []traffic.YoYRow, result *Result) error {
	summary := exporter.RunSummary{
		GeneratedAt: result.StartedAt.UTC(),
		Sources:     result.Sources,
		Records:     result.RecordsLoaded,
		Months:      rows,
	}

	if err := p.reports.WriteSummaryJSON(ctx, p.cfg.Output.SummaryJSON, summary); err != nil {
		return err
	}

	path := p.paths.GetReportPath(p.cfg.Output.SummaryJSON)
	if !p.manager.FileExists(path) {
		return apperrors.NewStorageError("summary file missing after write", nil).
			WithContext("path", path)
	}

	p.logger.InfoContext(ctx, "summary written", slog.String("path", path))

	result.SummaryJSONPath = path
	return nil
}

// renderChart writes the comparison chart HTML.
func (p *Pipeline) renderChart(ctx context.Context, rows []traffic.YoYRow, result *Result) error {
	if err := p.charts.RenderYoYChart(ctx, rows, p.cfg.Output.ChartHTML); err != nil {
		return err
	}

	path := p.paths.GetChartPath(p.cfg.Output.ChartHTML)
	size, err := p.manager.GetFileSize(path)
	if err != nil {
		return apperrors.NewStorageError("chart file missing after write", err).
			WithContext("path", path)
	}

	p.logger.InfoContext(ctx, "chart written",
		slog.String("path", path),
		slog.Int64("bytes", size))

	result.ChartHTMLPath = path
	return nil
}
