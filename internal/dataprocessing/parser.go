package dataprocessing

import (
	"log/slog"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/TWALLACK/foreign-flyers/internal/config"
	apperrors "github.com/TWALLACK/foreign-flyers/internal/errors"
	"github.com/TWALLACK/foreign-flyers/pkg/contracts/domain"
)

// headerScanLimit bounds how many leading rows are inspected when
// locating the header. Agency exports put a title banner and blank
// rows above the table, but never more than a handful.
const headerScanLimit = 20

// Parser extracts daily passenger counts from agency export files.
// A single Parser is safe to reuse across files.
type Parser struct {
	logger  *slog.Logger
	input   config.InputConfig
	mapper  *columnMapper
	layouts []string
}

// NewParser builds a Parser from the configured input settings.
func NewParser(cfg *config.Config, logger *slog.Logger) *Parser {
	if logger == nil {
		logger = slog.Default()
	}

	var layouts []string
	for _, l := range cfg.Input.DateFormats {
		if l = strings.TrimSpace(l); l != "" {
			layouts = append(layouts, l)
		}
	}

	return &Parser{
		logger:  logger.With(slog.String("component", "parser")),
		input:   cfg.Input,
		mapper:  newColumnMapper(cfg.Columns),
		layouts: layouts,
	}
}

// ParseFile reads one agency export and extracts its daily flight
// records. The file type is chosen by extension: .xlsx and .xls are
// parsed as workbooks, .csv as delimited text.
func (p *Parser) ParseFile(filePath string) (*domain.TrafficReport, error) {
	switch strings.ToLower(filepath.Ext(filePath)) {
	case ".xlsx", ".xls":
		return p.ParseWorkbook(filePath)
	case ".csv":
		return p.ParseCSV(filePath)
	default:
		return nil, apperrors.NewValidationError("unsupported input file type").
			WithContext("file", filePath)
	}
}

// ParseWorkbook reads an Excel export and extracts its daily records.
func (p *Parser) ParseWorkbook(filePath string) (*domain.TrafficReport, error) {
	f, err := excelize.OpenFile(filePath)
	if err != nil {
		return nil, apperrors.NewParsingError("failed to open workbook", err).
			WithContext("file", filePath)
	}
	defer f.Close()

	rows, sheetName, err := p.findDataSheet(f)
	if err != nil {
		return nil, apperrors.NewParsingError("no usable sheet", err).
			WithContext("file", filePath)
	}

	p.logger.Debug("reading workbook sheet",
		slog.String("file", filepath.Base(filePath)),
		slog.String("sheet", sheetName),
		slog.Int("rows", len(rows)))

	report, err := p.parseRows(rows, filepath.Base(filePath))
	if err != nil {
		return nil, err
	}
	return report, nil
}

// findDataSheet picks the sheet holding the passenger table. The
// configured sheet name wins when set; otherwise every sheet is
// scanned for a recognizable header row.
func (p *Parser) findDataSheet(f *excelize.File) ([][]string, string, error) {
	if p.input.Sheet != "" {
		rows, err := f.GetRows(p.input.Sheet)
		if err != nil {
			return nil, "", apperrors.NewParsingError("configured sheet not found", err).
				WithContext("sheet", p.input.Sheet)
		}
		return rows, p.input.Sheet, nil
	}

	for _, name := range f.GetSheetList() {
		rows, err := f.GetRows(name)
		if err != nil {
			continue
		}
		if idx, _, ok := p.findHeaderRow(rows); ok {
			p.logger.Debug("detected data sheet",
				slog.String("sheet", name),
				slog.Int("header_row", idx))
			return rows, name, nil
		}
	}

	return nil, "", apperrors.NewParsingError("no sheet contains the passenger table", nil)
}

// findHeaderRow scans the leading rows for the header and returns its
// index plus the canonical column mapping.
func (p *Parser) findHeaderRow(rows [][]string) (int, map[string]int, bool) {
	limit := len(rows)
	if limit > headerScanLimit {
		limit = headerScanLimit
	}

	for i := 0; i < limit; i++ {
		if columns, ok := p.mapper.MapHeaders(rows[i]); ok {
			return i, columns, true
		}
	}
	return 0, nil, false
}

// parseRows converts raw sheet rows into flight records. Shared by the
// workbook and CSV paths, which differ only in how rows are obtained.
func (p *Parser) parseRows(rows [][]string, source string) (*domain.TrafficReport, error) {
	headerIdx, columns, ok := p.findHeaderRow(rows)
	if !ok {
		return nil, apperrors.NewParsingError("header row not found", nil).
			WithContext("file", source)
	}

	report := &domain.TrafficReport{Source: source}

	for i := headerIdx + 1; i < len(rows); i++ {
		row := rows[i]

		if isEmptyRow(row) || isSummaryRow(row, columns) {
			continue
		}

		dateCell := cellAt(row, columns[colDate])
		if dateCell == "" {
			// A row with counts but no date is corrupt, not padding.
			if p.hasCountData(row, columns) {
				return nil, apperrors.NewParsingError("row has passenger counts but no date", nil).
					WithContext("file", source).
					WithContext("row", strconv.Itoa(i+1))
			}
			continue
		}

		flightDate, err := p.parseDate(dateCell)
		if err != nil {
			return nil, apperrors.NewParsingError("unreadable flight date", err).
				WithContext("file", source).
				WithContext("row", strconv.Itoa(i+1)).
				WithContext("value", dateCell)
		}

		record := domain.FlightRecord{
			FlightDate: flightDate,
			Total:      p.parseCount(row, columns, colTotal, source, i+1),
			Domestic:   p.parseCount(row, columns, colDomestic, source, i+1),
			Foreign:    p.parseCount(row, columns, colForeign, source, i+1),
		}
		p.checkConsistency(record, source, i+1)

		report.Records = append(report.Records, record)
	}

	p.logger.Info("parsed input file",
		slog.String("file", source),
		slog.Int("records", len(report.Records)))

	return report, nil
}

// parseDate tries each configured layout, then the Excel serial form
// that unformatted date cells come through as.
func (p *Parser) parseDate(cell string) (time.Time, error) {
	cell = strings.TrimSpace(cell)

	for _, layout := range p.layouts {
		if t, err := time.Parse(layout, cell); err == nil {
			return t, nil
		}
	}

	if serial, err := strconv.ParseFloat(cell, 64); err == nil && serial >= 20000 && serial < 80000 {
		// Excel stores dates as days since 1899-12-30.
		epoch := time.Date(1899, time.December, 30, 0, 0, 0, 0, time.UTC)
		return epoch.AddDate(0, 0, int(serial)), nil
	}

	return time.Time{}, apperrors.NewParsingError("no date layout matched", nil).
		WithContext("value", cell)
}

// parseCount reads one passenger count cell. Empty and placeholder
// cells mean the agency did not report the figure, so the count stays
// absent rather than zero. Garbage is logged and treated as absent.
func (p *Parser) parseCount(row []string, columns map[string]int, name, source string, rowNum int) *int64 {
	idx, ok := columns[name]
	if !ok {
		return nil
	}

	cell := strings.TrimSpace(cellAt(row, idx))
	switch strings.ToLower(cell) {
	case "", "-", "n/a", "na", "null":
		return nil
	}

	cleaned := strings.ReplaceAll(cell, ",", "")
	cleaned = strings.ReplaceAll(cleaned, " ", "")

	n, err := strconv.ParseInt(cleaned, 10, 64)
	if err != nil {
		// Number-formatted cells can surface as "1234.0".
		if f, ferr := strconv.ParseFloat(cleaned, 64); ferr == nil && f == float64(int64(f)) {
			n = int64(f)
		} else {
			p.logger.Warn("unreadable passenger count treated as missing",
				slog.String("file", source),
				slog.Int("row", rowNum),
				slog.String("column", name),
				slog.String("value", cell))
			return nil
		}
	}

	if n < 0 {
		p.logger.Warn("negative passenger count treated as missing",
			slog.String("file", source),
			slog.Int("row", rowNum),
			slog.String("column", name),
			slog.Int64("value", n))
		return nil
	}

	return &n
}

// checkConsistency warns when the reported total disagrees with the
// sum of its parts. The record is kept either way; downstream math
// never uses the total column.
func (p *Parser) checkConsistency(r domain.FlightRecord, source string, rowNum int) {
	if r.Total == nil || r.Domestic == nil || r.Foreign == nil {
		return
	}
	if *r.Total != *r.Domestic+*r.Foreign {
		p.logger.Warn("total does not match domestic plus foreign",
			slog.String("file", source),
			slog.Int("row", rowNum),
			slog.Int64("total", *r.Total),
			slog.Int64("domestic", *r.Domestic),
			slog.Int64("foreign", *r.Foreign))
	}
}

// hasCountData reports whether any passenger count cell is non-empty.
func (p *Parser) hasCountData(row []string, columns map[string]int) bool {
	for _, name := range []string{colTotal, colDomestic, colForeign} {
		if idx, ok := columns[name]; ok && strings.TrimSpace(cellAt(row, idx)) != "" {
			return true
		}
	}
	return false
}

// isSummaryRow detects the "Total" footer lines agencies append under
// the daily table. They repeat the month sum and must not be ingested
// as flights.
func isSummaryRow(row []string, columns map[string]int) bool {
	dateCell := strings.ToLower(strings.TrimSpace(cellAt(row, columns[colDate])))
	if strings.HasPrefix(dateCell, "total") || strings.HasPrefix(dateCell, "grand total") {
		return true
	}
	first := strings.ToLower(strings.TrimSpace(cellAt(row, 0)))
	return strings.HasPrefix(first, "total") || strings.HasPrefix(first, "grand total")
}

func isEmptyRow(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

// cellAt tolerates short rows; exports trim trailing empty cells, so a
// mapped column index can point past the end of the slice.
func cellAt(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return row[idx]
}
