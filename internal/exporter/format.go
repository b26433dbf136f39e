package exporter

import (
	"fmt"
)

// formatInt formats an int64 value for CSV output
func formatInt(i int64) string {
	return fmt.Sprintf("%d", i)
}

// formatPct formats a percentage with exactly one decimal place, the
// precision the change metrics are rounded to.
func formatPct(f float64) string {
	return fmt.Sprintf("%.1f", f)
}

// formatNullableInt renders an absent count as an empty field, never 0.
func formatNullableInt(i *int64) string {
	if i == nil {
		return ""
	}
	return formatInt(*i)
}

// formatNullablePct renders an absent percentage as an empty field.
func formatNullablePct(f *float64) string {
	if f == nil {
		return ""
	}
	return formatPct(*f)
}
