// Package traffic computes the monthly year-over-year passenger table
// from loaded flight records.
//
// This package is the computational core of the pipeline. It owns the
// three transformations between ingestion and output:
//
//  1. Combine: concatenate the records of every loaded report and derive
//     calendar year and month from each flight date
//  2. Aggregate: group by (year, month) and sum the domestic and foreign
//     counts, absent counts contributing zero
//  3. YoYTable: left-join each month against the same month twelve
//     months earlier and derive absolute and percentage change
//
// # Architecture
//
//   - types.go: MonthKey, NormalizedRecord, MonthlyAggregate, YoYRow
//   - analyzer.go: the three stage transformations
//   - metrics.go: change arithmetic and rounding
//
// Each stage is a pure function of its input and fully produces its
// output before the next stage runs. There is no shared mutable state.
//
// # Absence Semantics
//
// Monthly totals are always defined for an observed month: a flight row
// with a blank count contributes zero to the sum. Everything derived
// from the year-earlier baseline is different: a missing baseline month
// leaves the prior-year, change, and percentage fields absent, and a
// baseline of exactly zero additionally withholds the percentage so no
// infinity or NaN can reach the report.
//
// Rounding is half away from zero to one decimal place.
//
// # Usage Example
//
//	analyzer := traffic.NewAnalyzer(logger)
//	records := analyzer.Combine(ctx, reports)
//	months := analyzer.Aggregate(ctx, records)
//	rows, err := analyzer.YoYTable(ctx, months)
//	if err != nil {
//	    return err
//	}
//
// The returned rows are sorted ascending by calendar month and are the
// unit consumed by the exporter and the chart renderer.
package traffic
