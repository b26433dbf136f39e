package exporter

import (
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	apperrors "github.com/TWALLACK/foreign-flyers/internal/errors"
	"github.com/TWALLACK/foreign-flyers/internal/traffic"
)

// RunSummary collects what a pipeline run produced, for the JSON
// summary document consumed by dashboards and smoke checks.
type RunSummary struct {
	GeneratedAt time.Time
	Sources     []string
	Records     int
	Months      []traffic.YoYRow
}

// WriteSummaryJSON writes the run summary with metadata. The caller
// supplies the generation timestamp so reruns over fixed input can be
// compared byte for byte.
func (e *ReportExporter) WriteSummaryJSON(ctx context.Context, path string, summary RunSummary) error {
	fullPath := e.csvWriter.resolvePath(path)

	e.logger.InfoContext(ctx, "writing traffic summary",
		slog.String("path", fullPath),
		slog.Int("months", len(summary.Months)))

	if err := os.MkdirAll(filepath.Dir(fullPath), 0755); err != nil {
		return apperrors.NewStorageError("failed to create directory for summary", err)
	}

	withBaseline := 0
	for _, row := range summary.Months {
		if row.HasBaseline() {
			withBaseline++
		}
	}

	jsonData := map[string]interface{}{
		"format":               "traffic_summary_v1",
		"generated_at":         summary.GeneratedAt.Format(time.RFC3339),
		"sources":              summary.Sources,
		"records":              summary.Records,
		"month_count":          len(summary.Months),
		"months_with_baseline": withBaseline,
		"months":               summary.Months,
	}

	file, err := os.Create(fullPath)
	if err != nil {
		return apperrors.NewStorageError("failed to create summary file", err)
	}
	defer file.Close()

	encoder := json.NewEncoder(file)
	encoder.SetIndent("", "  ")

	if err := encoder.Encode(jsonData); err != nil {
		return apperrors.NewStorageError("failed to encode traffic summary", err)
	}

	e.logger.InfoContext(ctx, "traffic summary written",
		slog.String("path", fullPath))

	return nil
}
