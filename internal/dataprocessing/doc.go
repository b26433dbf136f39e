// Package dataprocessing reads border-agency passenger exports and turns
// them into daily flight records. It handles the full ingestion lifecycle
// from workbook or CSV bytes to validated domain records.
//
// # Architecture
//
// The package is organized around three pieces:
//
// 1. columnMapper: resolves the many agency header spellings to canonical columns
// 2. Parser: locates the passenger table inside a workbook or CSV and reads it
// 3. Shared row rules: blank counts stay absent, summary footers are skipped
//
// # Usage
//
// Basic parsing example:
//
//	parser := dataprocessing.NewParser(cfg, logger)
//	report, err := parser.ParseFile("2024 01 air traffic.xlsx")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
// ParseFile dispatches on the extension; ParseWorkbook and ParseCSV can be
// called directly when the type is known.
//
// # Data Flow
//
// The typical flow through this package:
//
//	Agency export → header detection → row parsing → FlightRecords
//
// # Error Handling
//
// Dates are load-bearing: a row with an unreadable date aborts the file
// with a parsing error naming the row and value. Passenger counts are
// lenient: blank, placeholder, or garbage cells become absent counts and
// at most a warning, never a zero.
//
// # Testing
//
// Tests build real workbooks with excelize into temp directories rather
// than mocking the reader. Use table-driven tests when adding new
// functionality.
package dataprocessing
