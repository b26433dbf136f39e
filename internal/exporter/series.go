package exporter

import (
	"github.com/TWALLACK/foreign-flyers/internal/traffic"
)

// Human labels for the two passenger categories as they appear in the
// chart legend.
const (
	CategoryDomestic = "Domestic passengers"
	CategoryForeign  = "Foreign passengers"
)

// SeriesPoint is one long-format observation: a month, a passenger
// category, and that month's year-over-year change. Value is nil when
// the month has no baseline, which renders as a gap rather than zero.
type SeriesPoint struct {
	Month    traffic.MonthKey
	Label    string
	Category string
	Value    *int64
}

// FilterYearRange keeps rows whose year falls within [fromYear, toYear].
// A zero bound leaves that side open.
func FilterYearRange(rows []traffic.YoYRow, fromYear, toYear int) []traffic.YoYRow {
	var filtered []traffic.YoYRow
	for _, row := range rows {
		if fromYear != 0 && row.Year < fromYear {
			continue
		}
		if toYear != 0 && row.Year > toYear {
			continue
		}
		filtered = append(filtered, row)
	}
	return filtered
}

// BuildChangeSeries reshapes the wide table into long-format triples,
// one point per (month, category). Rows arrive sorted and points keep
// that order, grouped as all domestic observations then all foreign.
func BuildChangeSeries(rows []traffic.YoYRow) []SeriesPoint {
	points := make([]SeriesPoint, 0, 2*len(rows))

	for _, row := range rows {
		points = append(points, SeriesPoint{
			Month:    row.Key(),
			Label:    row.DisplayLabel,
			Category: CategoryDomestic,
			Value:    row.DomesticYoYChange,
		})
	}
	for _, row := range rows {
		points = append(points, SeriesPoint{
			Month:    row.Key(),
			Label:    row.DisplayLabel,
			Category: CategoryForeign,
			Value:    row.ForeignYoYChange,
		})
	}

	return points
}
