package traffic

import "math"

// yoyMetrics derives the change metrics for one passenger category.
// The caller only invokes it when a baseline month exists, so change is
// always produced. The percentage is withheld when the baseline is
// zero: dividing by it would propagate Inf or NaN into the report, and
// a month that grew from zero has no meaningful growth rate.
func yoyMetrics(current, previous int64) (*int64, *float64) {
	change := current - previous

	if previous == 0 {
		return &change, nil
	}

	pct := round1(float64(change) / float64(previous) * 100)
	return &change, &pct
}

// round1 rounds to one decimal place, halves away from zero. Tiny
// negative changes must not surface as "-0.0" in the report, so
// negative zero is normalized.
func round1(v float64) float64 {
	r := math.Round(v*10) / 10
	if r == 0 {
		return 0
	}
	return r
}
