package dataprocessing

import (
	"encoding/csv"
	"io"
	"os"
	"path/filepath"
	"strings"

	"log/slog"

	apperrors "github.com/TWALLACK/foreign-flyers/internal/errors"
	"github.com/TWALLACK/foreign-flyers/pkg/contracts/domain"
)

// ParseCSV reads a delimited agency export and extracts its daily
// records. The same header detection and cell rules apply as for
// workbooks; only the transport differs.
func (p *Parser) ParseCSV(filePath string) (*domain.TrafficReport, error) {
	f, err := os.Open(filePath)
	if err != nil {
		return nil, apperrors.NewParsingError("failed to open csv file", err).
			WithContext("file", filePath)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	// Agency files pad summary lines with fewer fields than the table.
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	var rows [][]string
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, apperrors.NewParsingError("malformed csv row", err).
				WithContext("file", filePath)
		}
		rows = append(rows, row)
	}

	if len(rows) > 0 && len(rows[0]) > 0 {
		rows[0][0] = stripBOM(rows[0][0])
	}

	p.logger.Debug("reading csv file",
		slog.String("file", filepath.Base(filePath)),
		slog.Int("rows", len(rows)))

	return p.parseRows(rows, filepath.Base(filePath))
}

// stripBOM drops the UTF-8 byte order mark Windows exports prepend.
func stripBOM(s string) string {
	return strings.TrimPrefix(s, "\ufeff")
}
