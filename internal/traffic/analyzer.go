package traffic

import (
	"context"
	"log/slog"
	"sort"

	apperrors "github.com/TWALLACK/foreign-flyers/internal/errors"
	"github.com/TWALLACK/foreign-flyers/pkg/contracts/domain"
)

// Analyzer turns loaded flight records into the monthly year-over-year
// table. Every stage is a pure transformation of its input; the
// Analyzer itself only carries the logger.
type Analyzer struct {
	logger *slog.Logger
}

// NewAnalyzer creates an analyzer. A nil logger falls back to the
// process default.
func NewAnalyzer(logger *slog.Logger) *Analyzer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Analyzer{logger: logger.With(slog.String("component", "analyzer"))}
}

// Combine concatenates the records of all loaded reports and derives
// the calendar year and month for each. Input order is preserved;
// aggregation does not depend on it.
func (a *Analyzer) Combine(ctx context.Context, reports []*domain.TrafficReport) []NormalizedRecord {
	total := 0
	for _, rep := range reports {
		total += len(rep.Records)
	}

	combined := make([]NormalizedRecord, 0, total)
	for _, rep := range reports {
		for _, rec := range rep.Records {
			combined = append(combined, NormalizedRecord{
				FlightRecord: rec,
				Year:         rec.FlightDate.Year(),
				Month:        rec.FlightDate.Month(),
			})
		}
		a.logger.DebugContext(ctx, "combined source records",
			slog.String("source", rep.Source),
			slog.Int("records", len(rep.Records)))
	}

	a.logger.InfoContext(ctx, "combined flight records",
		slog.Int("sources", len(reports)),
		slog.Int("records", len(combined)))

	return combined
}

// Aggregate groups records by calendar month and sums the domestic and
// foreign counts. An absent count contributes zero to its sum. The
// result holds exactly one aggregate per observed month, sorted
// ascending by period, which the year-over-year join relies on.
func (a *Analyzer) Aggregate(ctx context.Context, records []NormalizedRecord) []MonthlyAggregate {
	groups := make(map[MonthKey]*MonthlyAggregate)
	days := make(map[MonthKey]map[int]struct{})

	for _, rec := range records {
		key := rec.Key()
		agg, ok := groups[key]
		if !ok {
			agg = &MonthlyAggregate{Year: key.Year, Month: key.Month}
			groups[key] = agg
			days[key] = make(map[int]struct{})
		}
		agg.DomesticTotal += rec.DomesticOrZero()
		agg.ForeignTotal += rec.ForeignOrZero()
		days[key][rec.FlightDate.Day()] = struct{}{}
	}

	months := make([]MonthlyAggregate, 0, len(groups))
	for key, agg := range groups {
		agg.ReportedDays = len(days[key])
		months = append(months, *agg)
	}

	// Map iteration order is random; downstream correctness depends on
	// ascending period order, so establish it here.
	sort.Slice(months, func(i, j int) bool {
		return months[i].PeriodKey() < months[j].PeriodKey()
	})

	// A gap inside the history means the agency export lost daily rows.
	// The newest month is exempt: it is usually still filling.
	for i := 0; i < len(months)-1; i++ {
		m := months[i]
		if m.ReportedDays < m.Key().DaysIn() {
			a.logger.WarnContext(ctx, "month has missing report days",
				slog.String("period", m.Key().String()),
				slog.Int("reported_days", m.ReportedDays),
				slog.Int("calendar_days", m.Key().DaysIn()))
		}
	}

	a.logger.InfoContext(ctx, "aggregated monthly traffic",
		slog.Int("records", len(records)),
		slog.Int("months", len(months)))

	return months
}

// YoYTable left-joins each monthly aggregate against the same month one
// year earlier and derives the change metrics. Every aggregate yields a
// row; months with no prior-year counterpart carry absent baselines.
// Duplicate month keys in the input are an internal-consistency fault
// and abort the run.
func (a *Analyzer) YoYTable(ctx context.Context, months []MonthlyAggregate) ([]YoYRow, error) {
	baselines := make(map[MonthKey]MonthlyAggregate, len(months))
	for _, m := range months {
		key := m.Key()
		if _, dup := baselines[key]; dup {
			return nil, apperrors.NewValidationError("duplicate monthly aggregate").
				WithContext("period", key.String())
		}
		baselines[key] = m
	}

	rows := make([]YoYRow, 0, len(months))
	matched := 0

	for _, m := range months {
		row := YoYRow{
			Year:          m.Year,
			Month:         int(m.Month),
			DomesticTotal: m.DomesticTotal,
			ForeignTotal:  m.ForeignTotal,
			DisplayLabel:  m.Key().Label(),
		}

		if prev, ok := baselines[m.Key().PrevYear()]; ok {
			matched++
			row.DomesticTotalPrevYear = domain.Int64(prev.DomesticTotal)
			row.ForeignTotalPrevYear = domain.Int64(prev.ForeignTotal)
			row.DomesticYoYChange, row.DomesticYoYPct = yoyMetrics(m.DomesticTotal, prev.DomesticTotal)
			row.ForeignYoYChange, row.ForeignYoYPct = yoyMetrics(m.ForeignTotal, prev.ForeignTotal)
		}

		rows = append(rows, row)
	}

	a.logger.InfoContext(ctx, "built year-over-year table",
		slog.Int("rows", len(rows)),
		slog.Int("with_baseline", matched))

	return rows, nil
}
