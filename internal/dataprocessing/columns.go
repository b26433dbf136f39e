package dataprocessing

import (
	"strings"

	"github.com/TWALLACK/foreign-flyers/internal/config"
)

// Canonical column names used by the parser. Agency files spell their
// headers in many ways; config.ColumnsConfig maps the spellings back
// to these four fields.
const (
	colDate     = "date"
	colTotal    = "total"
	colDomestic = "domestic"
	colForeign  = "foreign"
)

// columnMapper resolves raw header cells to canonical column indexes.
type columnMapper struct {
	aliases map[string]string // normalized header spelling -> canonical name
}

// newColumnMapper builds a mapper from the configured header aliases.
func newColumnMapper(cfg config.ColumnsConfig) *columnMapper {
	m := &columnMapper{aliases: make(map[string]string)}

	m.add(colDate, cfg.Date)
	m.add(colTotal, cfg.Total)
	m.add(colDomestic, cfg.Domestic)
	m.add(colForeign, cfg.Foreign)

	return m
}

func (m *columnMapper) add(canonical string, spellings []string) {
	for _, s := range spellings {
		m.aliases[normalizeHeader(s)] = canonical
	}
}

// MapHeaders maps a candidate header row to canonical column indexes.
// The second return value reports whether the row qualifies as a header:
// it must carry the date column and at least one passenger count column.
func (m *columnMapper) MapHeaders(row []string) (map[string]int, bool) {
	columns := make(map[string]int)

	for i, cell := range row {
		canonical, ok := m.aliases[normalizeHeader(cell)]
		if !ok {
			continue
		}
		// First match wins when a spelling repeats
		if _, seen := columns[canonical]; !seen {
			columns[canonical] = i
		}
	}

	if _, ok := columns[colDate]; !ok {
		return nil, false
	}

	counts := 0
	for _, name := range []string{colTotal, colDomestic, colForeign} {
		if _, ok := columns[name]; ok {
			counts++
		}
	}

	return columns, counts > 0
}

// normalizeHeader lowercases a header cell and collapses interior
// whitespace so "Total  Passengers " matches "total passengers".
func normalizeHeader(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}
