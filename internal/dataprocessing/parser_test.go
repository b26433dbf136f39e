package dataprocessing

import (
	"io"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/TWALLACK/foreign-flyers/internal/config"
	apperrors "github.com/TWALLACK/foreign-flyers/internal/errors"
	"github.com/TWALLACK/foreign-flyers/pkg/contracts/domain"
)

func init() {
	// Keep parser logging quiet during tests
	slog.SetDefault(slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{
		Level: slog.LevelError,
	})))
}

// writeWorkbook builds a minimal agency-style workbook. Each entry of
// rows lands on its own sheet row, starting at row 1.
func writeWorkbook(t *testing.T, dir, name, sheet string, rows [][]interface{}) string {
	t.Helper()

	f := excelize.NewFile()
	f.SetSheetName(f.GetSheetName(0), sheet)

	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow(sheet, cell, &row))
	}

	path := filepath.Join(dir, name)
	require.NoError(t, f.SaveAs(path))
	return path
}

func TestParseWorkbook(t *testing.T) {
	dir := t.TempDir()

	path := writeWorkbook(t, dir, "2024 01 air traffic.xlsx", "Arrivals", [][]interface{}{
		{"Border Agency of Montenegro"},
		{},
		{"Date", "Total Passengers", "Domestic Passengers", "Foreign Passengers"},
		{"2024-01-01", 1500, 900, 600},
		{"2024-01-02", "", "1,204", 350},
		{"2024-01-03", 980, "", ""},
		{"Total", 3680, 2104, 950},
	})

	parser := NewParser(config.Default(), nil)
	report, err := parser.ParseWorkbook(path)
	require.NoError(t, err)
	require.NotNil(t, report)

	assert.Equal(t, "2024 01 air traffic.xlsx", report.Source)
	require.Len(t, report.Records, 3, "summary row must not become a record")

	first := report.Records[0]
	assert.Equal(t, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), first.FlightDate)
	require.NotNil(t, first.Total)
	assert.Equal(t, int64(1500), *first.Total)
	require.NotNil(t, first.Domestic)
	assert.Equal(t, int64(900), *first.Domestic)
	require.NotNil(t, first.Foreign)
	assert.Equal(t, int64(600), *first.Foreign)

	second := report.Records[1]
	assert.Nil(t, second.Total, "blank cell stays absent, not zero")
	require.NotNil(t, second.Domestic)
	assert.Equal(t, int64(1204), *second.Domestic, "thousands separators are stripped")
	require.NotNil(t, second.Foreign)
	assert.Equal(t, int64(350), *second.Foreign)

	third := report.Records[2]
	require.NotNil(t, third.Total)
	assert.Equal(t, int64(980), *third.Total)
	assert.Nil(t, third.Domestic)
	assert.Nil(t, third.Foreign)
}

func TestParseWorkbookSheetSelection(t *testing.T) {
	dir := t.TempDir()

	build := func(name string) string {
		f := excelize.NewFile()
		f.SetSheetName(f.GetSheetName(0), "Notes")
		require.NoError(t, f.SetSheetRow("Notes", "A1", &[]interface{}{"internal remarks, not data"}))

		_, err := f.NewSheet("Arrivals")
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow("Arrivals", "A1",
			&[]interface{}{"Date", "Total", "Domestic", "Foreign"}))
		require.NoError(t, f.SetSheetRow("Arrivals", "A2",
			&[]interface{}{"2024-03-15", 400, 250, 150}))

		path := filepath.Join(dir, name)
		require.NoError(t, f.SaveAs(path))
		return path
	}

	t.Run("scans for the sheet with the passenger table", func(t *testing.T) {
		path := build("scan.xlsx")
		parser := NewParser(config.Default(), nil)

		report, err := parser.ParseWorkbook(path)
		require.NoError(t, err)
		require.Len(t, report.Records, 1)
		assert.Equal(t, time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC), report.Records[0].FlightDate)
	})

	t.Run("configured sheet name wins", func(t *testing.T) {
		path := build("pinned.xlsx")
		cfg := config.Default()
		cfg.Input.Sheet = "Arrivals"
		parser := NewParser(cfg, nil)

		report, err := parser.ParseWorkbook(path)
		require.NoError(t, err)
		require.Len(t, report.Records, 1)
	})

	t.Run("configured sheet missing is an error", func(t *testing.T) {
		path := build("missing.xlsx")
		cfg := config.Default()
		cfg.Input.Sheet = "Departures"
		parser := NewParser(cfg, nil)

		_, err := parser.ParseWorkbook(path)
		require.Error(t, err)
	})
}

func TestParseWorkbookErrors(t *testing.T) {
	dir := t.TempDir()
	parser := NewParser(config.Default(), nil)

	t.Run("file does not exist", func(t *testing.T) {
		_, err := parser.ParseWorkbook(filepath.Join(dir, "nope.xlsx"))
		require.Error(t, err)

		var appErr *apperrors.AppError
		require.ErrorAs(t, err, &appErr)
		assert.Equal(t, apperrors.ErrTypeParsing, appErr.Type)
	})

	t.Run("no header row anywhere", func(t *testing.T) {
		path := writeWorkbook(t, dir, "headerless.xlsx", "Sheet1", [][]interface{}{
			{"just", "some", "cells"},
			{"more", "noise"},
		})

		_, err := parser.ParseWorkbook(path)
		require.Error(t, err)

		var appErr *apperrors.AppError
		require.ErrorAs(t, err, &appErr)
		assert.Equal(t, apperrors.ErrTypeParsing, appErr.Type)
	})

	t.Run("unreadable date is fatal", func(t *testing.T) {
		path := writeWorkbook(t, dir, "baddate.xlsx", "Arrivals", [][]interface{}{
			{"Date", "Total", "Domestic", "Foreign"},
			{"2024-01-01", 100, 60, 40},
			{"sometime in january", 200, 120, 80},
		})

		_, err := parser.ParseWorkbook(path)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "unreadable flight date")
	})

	t.Run("counts without a date are fatal", func(t *testing.T) {
		path := writeWorkbook(t, dir, "nodate.xlsx", "Arrivals", [][]interface{}{
			{"Date", "Total", "Domestic", "Foreign"},
			{"", 100, 60, 40},
		})

		_, err := parser.ParseWorkbook(path)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "no date")
	})
}

func TestParseWorkbookLenientCounts(t *testing.T) {
	dir := t.TempDir()

	path := writeWorkbook(t, dir, "lenient.xlsx", "Arrivals", [][]interface{}{
		{"Date", "Total", "Domestic", "Foreign"},
		{"2024-01-01", "n/a", "unknown", "-"},
		{"2024-01-02", "1234.0", 700, 534},
		{"2024-01-03", 500, -10, 510},
	})

	parser := NewParser(config.Default(), nil)
	report, err := parser.ParseWorkbook(path)
	require.NoError(t, err)
	require.Len(t, report.Records, 3)

	// Placeholders and garbage counts become absent, never zero.
	assert.Nil(t, report.Records[0].Total)
	assert.Nil(t, report.Records[0].Domestic)
	assert.Nil(t, report.Records[0].Foreign)

	// Number-formatted cells can surface with a trailing .0
	require.NotNil(t, report.Records[1].Total)
	assert.Equal(t, int64(1234), *report.Records[1].Total)

	// Negative counts are rejected as garbage.
	assert.Nil(t, report.Records[2].Domestic)
	require.NotNil(t, report.Records[2].Foreign)
	assert.Equal(t, int64(510), *report.Records[2].Foreign)
}

func TestParseDate(t *testing.T) {
	parser := NewParser(config.Default(), nil)

	tests := []struct {
		name    string
		cell    string
		want    time.Time
		wantErr bool
	}{
		{
			name: "iso layout",
			cell: "2024-01-05",
			want: time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC),
		},
		{
			name: "slash layout",
			cell: "2024/02/10",
			want: time.Date(2024, 2, 10, 0, 0, 0, 0, time.UTC),
		},
		{
			name: "day first layout",
			cell: "25/12/2023",
			want: time.Date(2023, 12, 25, 0, 0, 0, 0, time.UTC),
		},
		{
			name: "excel serial",
			cell: "45292",
			want: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		},
		{
			name:    "free text",
			cell:    "early spring",
			wantErr: true,
		},
		{
			name:    "small number is not a serial",
			cell:    "42",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parser.parseDate(tt.cell)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.True(t, tt.want.Equal(got), "want %v got %v", tt.want, got)
		})
	}
}

func TestMapHeaders(t *testing.T) {
	mapper := newColumnMapper(config.Default().Columns)

	tests := []struct {
		name    string
		row     []string
		wantOK  bool
		wantIdx map[string]int
	}{
		{
			name:   "plain headers",
			row:    []string{"Date", "Total", "Domestic", "Foreign"},
			wantOK: true,
			wantIdx: map[string]int{
				colDate: 0, colTotal: 1, colDomestic: 2, colForeign: 3,
			},
		},
		{
			name:   "verbose agency spellings",
			row:    []string{"Report  Date", "All Passengers", "Citizens", "Foreign Nationals"},
			wantOK: true,
			wantIdx: map[string]int{
				colDate: 0, colTotal: 1, colDomestic: 2, colForeign: 3,
			},
		},
		{
			name:   "reordered with extra columns",
			row:    []string{"Airline", "Foreign", "Date", "Remarks", "Domestic"},
			wantOK: true,
			wantIdx: map[string]int{
				colForeign: 1, colDate: 2, colDomestic: 4,
			},
		},
		{
			name:   "date column missing",
			row:    []string{"Total", "Domestic", "Foreign"},
			wantOK: false,
		},
		{
			name:   "date alone is not a table",
			row:    []string{"Date", "Remarks"},
			wantOK: false,
		},
		{
			name:   "empty row",
			row:    []string{},
			wantOK: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			columns, ok := mapper.MapHeaders(tt.row)
			assert.Equal(t, tt.wantOK, ok)
			if tt.wantOK {
				assert.Equal(t, tt.wantIdx, columns)
			}
		})
	}
}

func TestParseFileDispatch(t *testing.T) {
	dir := t.TempDir()
	parser := NewParser(config.Default(), nil)

	t.Run("workbook extension", func(t *testing.T) {
		path := writeWorkbook(t, dir, "dispatch.xlsx", "Arrivals", [][]interface{}{
			{"Date", "Total", "Domestic", "Foreign"},
			{"2024-06-01", 10, 6, 4},
		})

		report, err := parser.ParseFile(path)
		require.NoError(t, err)
		assert.Len(t, report.Records, 1)
	})

	t.Run("unsupported extension", func(t *testing.T) {
		_, err := parser.ParseFile(filepath.Join(dir, "notes.txt"))
		require.Error(t, err)

		var appErr *apperrors.AppError
		require.ErrorAs(t, err, &appErr)
		assert.Equal(t, apperrors.ErrTypeValidation, appErr.Type)
	})
}

func TestOrZeroAccessors(t *testing.T) {
	r := domain.FlightRecord{
		FlightDate: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		Domestic:   domain.Int64(12),
	}

	assert.Equal(t, int64(0), r.TotalOrZero())
	assert.Equal(t, int64(12), r.DomesticOrZero())
	assert.Equal(t, int64(0), r.ForeignOrZero())
}

func BenchmarkParseWorkbook(b *testing.B) {
	dir := b.TempDir()

	f := excelize.NewFile()
	f.SetSheetName(f.GetSheetName(0), "Arrivals")
	header := []interface{}{"Date", "Total", "Domestic", "Foreign"}
	if err := f.SetSheetRow("Arrivals", "A1", &header); err != nil {
		b.Fatal(err)
	}
	day := time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 365; i++ {
		row := []interface{}{day.Format("2006-01-02"), 1500 + i, 900 + i, 600}
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		if err := f.SetSheetRow("Arrivals", cell, &row); err != nil {
			b.Fatal(err)
		}
		day = day.AddDate(0, 0, 1)
	}
	path := filepath.Join(dir, "bench.xlsx")
	if err := f.SaveAs(path); err != nil {
		b.Fatal(err)
	}

	parser := NewParser(config.Default(), nil)
	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		if _, err := parser.ParseWorkbook(path); err != nil {
			b.Fatal(err)
		}
	}
}
