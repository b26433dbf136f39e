package domain

import (
	"time"
)

// FlightRecord represents the passenger counts reported for a single
// flight-day row of an agency air-traffic report. Counts are individually
// nullable: a nil pointer means the agency left the cell blank, which is
// distinct from an explicit zero and must stay distinct downstream.
type FlightRecord struct {
	FlightDate time.Time `json:"flight_date" validate:"required"`
	Total      *int64    `json:"total_passengers,omitempty" validate:"omitempty,min=0"`
	Domestic   *int64    `json:"domestic_passengers,omitempty" validate:"omitempty,min=0"`
	Foreign    *int64    `json:"foreign_passengers,omitempty" validate:"omitempty,min=0"`
}

// TotalOrZero returns the total passenger count, treating absent as zero.
func (r FlightRecord) TotalOrZero() int64 {
	return valueOrZero(r.Total)
}

// DomesticOrZero returns the domestic passenger count, treating absent as zero.
func (r FlightRecord) DomesticOrZero() int64 {
	return valueOrZero(r.Domestic)
}

// ForeignOrZero returns the foreign passenger count, treating absent as zero.
func (r FlightRecord) ForeignOrZero() int64 {
	return valueOrZero(r.Foreign)
}

func valueOrZero(v *int64) int64 {
	if v == nil {
		return 0
	}
	return *v
}

// TrafficReport represents all flight records loaded from a single
// agency report file.
type TrafficReport struct {
	Source  string         `json:"source" validate:"required"`
	Records []FlightRecord `json:"records" validate:"dive"`
}

// Int64 returns a pointer to v. Loaders use it to build nullable counts;
// tests use it to build fixtures.
func Int64(v int64) *int64 {
	return &v
}
