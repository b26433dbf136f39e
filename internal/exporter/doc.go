// Package exporter writes the passenger traffic outputs: the year-over-year
// CSV report, the JSON run summary, and the HTML chart.
//
// This package contains three main components:
//
// CSVWriter: Streaming CSV writing rooted at the configured output tree,
// with a UTF-8 BOM for Excel compatibility.
//
// ReportExporter: Emits the year-over-year table as CSV and the run summary as
// JSON. Column order in the CSV is fixed; absent metrics become empty fields,
// never zeros. Given the same rows (and, for JSON, the same timestamp) the
// output bytes are identical run to run.
//
// ChartRenderer: Renders the domestic and foreign change series as an
// interactive line chart. Months without a baseline show as gaps in the lines.
//
// Example usage:
//
//	// Create a report exporter
//	reportExporter := exporter.NewReportExporter(paths, logger)
//
//	// Export the year-over-year table
//	err := reportExporter.ExportYoYReport(ctx, rows, "traffic_yoy.csv")
//
//	// Create a chart renderer
//	renderer := exporter.NewChartRenderer(paths, cfg.Chart, logger)
//
//	// Render the change chart
//	err = renderer.RenderYoYChart(ctx, rows, "traffic_yoy.html")
package exporter
