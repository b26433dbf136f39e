package exporter

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/TWALLACK/foreign-flyers/internal/config"
	"github.com/TWALLACK/foreign-flyers/internal/traffic"
)

// ReportExporter writes the year-over-year table to the CSV report.
type ReportExporter struct {
	csvWriter *CSVWriter
	logger    *slog.Logger
}

// NewReportExporter creates a report exporter rooted at the configured
// output directories.
func NewReportExporter(paths *config.Paths, logger *slog.Logger) *ReportExporter {
	if logger == nil {
		logger = slog.Default()
	}
	return &ReportExporter{
		csvWriter: NewCSVWriter(paths),
		logger:    logger.With(slog.String("component", "exporter")),
	}
}

// yoyHeaders is the report column order. Consumers parse the file
// positionally, so the order is part of the output contract.
func yoyHeaders() []string {
	return []string{
		"year",
		"month",
		"domestic_total",
		"foreign_total",
		"domestic_total_prev_year",
		"foreign_total_prev_year",
		"domestic_yoy_change",
		"foreign_yoy_change",
		"domestic_yoy_pct",
		"foreign_yoy_pct",
		"display_label",
	}
}

// ExportYoYReport writes every row to filePath (resolved against the
// reports directory when relative). Rows arrive sorted from the
// analyzer and are written in order, so identical input yields a
// byte-identical file.
func (e *ReportExporter) ExportYoYReport(ctx context.Context, rows []traffic.YoYRow, filePath string) error {
	e.logger.InfoContext(ctx, "writing year-over-year report",
		slog.String("file", filePath),
		slog.Int("rows", len(rows)))

	stream, err := e.csvWriter.CreateStreamWriter(filePath, yoyHeaders())
	if err != nil {
		return fmt.Errorf("failed to create report writer: %w", err)
	}

	for _, row := range rows {
		if err := stream.WriteRecord(rowToCSVRow(row)); err != nil {
			stream.Close()
			return fmt.Errorf("failed to write report row %s: %w", row.DisplayLabel, err)
		}
	}

	if err := stream.Close(); err != nil {
		return fmt.Errorf("failed to finalize report: %w", err)
	}

	e.logger.InfoContext(ctx, "year-over-year report written",
		slog.String("file", filePath))

	return nil
}

// rowToCSVRow converts one table row to its CSV fields. Absent values
// become empty fields.
func rowToCSVRow(row traffic.YoYRow) []string {
	return []string{
		strconv.Itoa(row.Year),
		strconv.Itoa(row.Month),
		formatInt(row.DomesticTotal),
		formatInt(row.ForeignTotal),
		formatNullableInt(row.DomesticTotalPrevYear),
		formatNullableInt(row.ForeignTotalPrevYear),
		formatNullableInt(row.DomesticYoYChange),
		formatNullableInt(row.ForeignYoYChange),
		formatNullablePct(row.DomesticYoYPct),
		formatNullablePct(row.ForeignYoYPct),
		row.DisplayLabel,
	}
}
