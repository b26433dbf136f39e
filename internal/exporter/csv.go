package exporter

import (
	"encoding/csv"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/TWALLACK/foreign-flyers/internal/config"
	apperrors "github.com/TWALLACK/foreign-flyers/internal/errors"
)

// utf8BOM is prepended to report files so Excel recognizes them as
// UTF-8 instead of guessing a legacy code page.
var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// CSVWriter creates CSV report files under the configured output tree.
type CSVWriter struct {
	paths *config.Paths
}

// NewCSVWriter creates a writer rooted at the configured directories.
func NewCSVWriter(paths *config.Paths) *CSVWriter {
	return &CSVWriter{paths: paths}
}

// CreateStreamWriter opens the report at filePath, creating parent
// directories as needed, and writes the BOM and header row. Rows are
// then appended one at a time; Close flushes and surfaces any buffered
// write error.
func (w *CSVWriter) CreateStreamWriter(filePath string, headers []string) (*StreamWriter, error) {
	fullPath := w.resolvePath(filePath)

	slog.Debug("opening CSV report",
		slog.String("path", fullPath),
		slog.Int("columns", len(headers)))

	if err := os.MkdirAll(filepath.Dir(fullPath), 0755); err != nil {
		return nil, apperrors.NewStorageError("failed to create report directory", err).
			WithContext("path", fullPath)
	}

	file, err := os.Create(fullPath)
	if err != nil {
		return nil, apperrors.NewStorageError("failed to create report file", err).
			WithContext("path", fullPath)
	}

	if _, err := file.Write(utf8BOM); err != nil {
		file.Close()
		return nil, apperrors.NewStorageError("failed to write byte order mark", err).
			WithContext("path", fullPath)
	}

	writer := csv.NewWriter(file)
	if err := writer.Write(headers); err != nil {
		file.Close()
		return nil, apperrors.NewStorageError("failed to write header row", err).
			WithContext("path", fullPath)
	}

	return &StreamWriter{file: file, writer: writer}, nil
}

// StreamWriter appends rows to an open CSV report.
type StreamWriter struct {
	file   *os.File
	writer *csv.Writer
}

// WriteRecord appends one row.
func (s *StreamWriter) WriteRecord(record []string) error {
	return s.writer.Write(record)
}

// Close flushes buffered rows and closes the file. encoding/csv defers
// write errors to Flush, so the check here is the one that counts.
func (s *StreamWriter) Close() error {
	s.writer.Flush()
	if err := s.writer.Error(); err != nil {
		s.file.Close()
		return err
	}
	return s.file.Close()
}

// resolvePath maps a relative report name onto the output tree. Chart
// assets live next to the HTML; everything else is a report.
func (w *CSVWriter) resolvePath(filePath string) string {
	if filepath.IsAbs(filePath) {
		return filePath
	}
	if strings.HasPrefix(filePath, "charts/") {
		return w.paths.GetChartPath(strings.TrimPrefix(filePath, "charts/"))
	}
	return w.paths.GetReportPath(filePath)
}
