// Package pipeline runs the passenger traffic batch end to end.
//
// A run is a fixed sequence of stages: discover input files, load their
// daily flight records, combine and normalize them, aggregate per
// calendar month, join each month against the same month one year
// earlier, then write the CSV report, the JSON summary and the HTML
// chart. Stages execute synchronously and fail fast: the first error
// aborts the run, so the output files are either complete or untouched
// from a previous run.
//
// Each stage is wrapped in an OpenTelemetry span and a duration metric;
// Run returns a Result describing what was produced.
package pipeline
