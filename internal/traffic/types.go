package traffic

import (
	"fmt"
	"time"

	"github.com/TWALLACK/foreign-flyers/pkg/contracts/domain"
)

// MonthKey identifies one calendar month. It is the grouping key for
// aggregation and the join key for the year-over-year lookup.
type MonthKey struct {
	Year  int
	Month time.Month
}

// MonthKeyOf derives the key for the month containing t.
func MonthKeyOf(t time.Time) MonthKey {
	return MonthKey{Year: t.Year(), Month: t.Month()}
}

// PeriodKey returns a sortable year-month integer, e.g. 202401 for
// January 2024. Ascending period key order is ascending calendar order.
func (k MonthKey) PeriodKey() int {
	return k.Year*100 + int(k.Month)
}

// PrevYear returns the same calendar month one year earlier.
func (k MonthKey) PrevYear() MonthKey {
	return MonthKey{Year: k.Year - 1, Month: k.Month}
}

// Label returns the short display form used in reports, e.g. "Jan 2024".
func (k MonthKey) Label() string {
	return time.Date(k.Year, k.Month, 1, 0, 0, 0, 0, time.UTC).Format("Jan 2006")
}

// DaysIn returns the number of calendar days in the month.
func (k MonthKey) DaysIn() int {
	// Day zero of the following month normalizes to this month's last day.
	return time.Date(k.Year, k.Month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// String returns the ISO-ish form used in logs and error context.
func (k MonthKey) String() string {
	return fmt.Sprintf("%04d-%02d", k.Year, int(k.Month))
}

// IsValid checks the key denotes a real calendar month.
func (k MonthKey) IsValid() bool {
	return k.Year > 0 && k.Month >= time.January && k.Month <= time.December
}

// NormalizedRecord is a FlightRecord with its calendar year and month
// derived once from the flight date. The derived fields always agree
// with FlightDate; the combiner is the only producer.
type NormalizedRecord struct {
	domain.FlightRecord

	Year  int        `json:"year"`
	Month time.Month `json:"month"`
}

// Key returns the month grouping key for this record.
func (r NormalizedRecord) Key() MonthKey {
	return MonthKey{Year: r.Year, Month: r.Month}
}

// MonthlyAggregate is one month's summed passenger counts. Absent
// per-flight counts contribute zero to the sums, so the totals are
// always defined for an observed month.
type MonthlyAggregate struct {
	Year          int        `json:"year"`
	Month         time.Month `json:"month"`
	DomesticTotal int64      `json:"domestic_total"`
	ForeignTotal  int64      `json:"foreign_total"`

	// ReportedDays counts the distinct days of the month present in the
	// input, not the rows; agencies may report several flights per day.
	ReportedDays int `json:"reported_days"`
}

// Key returns the (year, month) identity of the aggregate.
func (a MonthlyAggregate) Key() MonthKey {
	return MonthKey{Year: a.Year, Month: a.Month}
}

// PeriodKey returns the sortable year-month integer for the aggregate.
func (a MonthlyAggregate) PeriodKey() int {
	return a.Key().PeriodKey()
}

// YoYRow is one month's totals joined against the same month a year
// earlier, with derived change metrics. Pointer fields are absent when
// no baseline month exists; percentage fields are additionally absent
// when the baseline is zero. Rows are immutable once built and are the
// unit written to the report and charted.
type YoYRow struct {
	Year                  int      `json:"year"`
	Month                 int      `json:"month"`
	DomesticTotal         int64    `json:"domestic_total"`
	ForeignTotal          int64    `json:"foreign_total"`
	DomesticTotalPrevYear *int64   `json:"domestic_total_prev_year,omitempty"`
	ForeignTotalPrevYear  *int64   `json:"foreign_total_prev_year,omitempty"`
	DomesticYoYChange     *int64   `json:"domestic_yoy_change,omitempty"`
	ForeignYoYChange      *int64   `json:"foreign_yoy_change,omitempty"`
	DomesticYoYPct        *float64 `json:"domestic_yoy_pct,omitempty"`
	ForeignYoYPct         *float64 `json:"foreign_yoy_pct,omitempty"`
	DisplayLabel          string   `json:"display_label"`
}

// Key returns the (year, month) identity of the row.
func (r YoYRow) Key() MonthKey {
	return MonthKey{Year: r.Year, Month: time.Month(r.Month)}
}

// HasBaseline reports whether the prior-year month existed in the input.
func (r YoYRow) HasBaseline() bool {
	return r.DomesticTotalPrevYear != nil || r.ForeignTotalPrevYear != nil
}
