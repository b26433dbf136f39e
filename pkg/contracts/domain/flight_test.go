package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFlightRecord_OrZeroAccessors(t *testing.T) {
	tests := []struct {
		name         string
		record       FlightRecord
		wantTotal    int64
		wantDomestic int64
		wantForeign  int64
	}{
		{
			name: "all counts present",
			record: FlightRecord{
				FlightDate: time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC),
				Total:      Int64(250),
				Domestic:   Int64(180),
				Foreign:    Int64(70),
			},
			wantTotal:    250,
			wantDomestic: 180,
			wantForeign:  70,
		},
		{
			name: "all counts absent",
			record: FlightRecord{
				FlightDate: time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC),
			},
			wantTotal:    0,
			wantDomestic: 0,
			wantForeign:  0,
		},
		{
			name: "explicit zero stays zero",
			record: FlightRecord{
				FlightDate: time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC),
				Total:      Int64(0),
				Domestic:   Int64(0),
				Foreign:    Int64(0),
			},
			wantTotal:    0,
			wantDomestic: 0,
			wantForeign:  0,
		},
		{
			name: "mixed presence",
			record: FlightRecord{
				FlightDate: time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC),
				Domestic:   Int64(42),
			},
			wantTotal:    0,
			wantDomestic: 42,
			wantForeign:  0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.wantTotal, tt.record.TotalOrZero())
			assert.Equal(t, tt.wantDomestic, tt.record.DomesticOrZero())
			assert.Equal(t, tt.wantForeign, tt.record.ForeignOrZero())
		})
	}
}

func TestFlightRecord_AbsentIsNotZero(t *testing.T) {
	present := FlightRecord{Foreign: Int64(0)}
	absent := FlightRecord{}

	assert.NotNil(t, present.Foreign)
	assert.Nil(t, absent.Foreign)
	// Both coalesce to zero for summation only.
	assert.Equal(t, present.ForeignOrZero(), absent.ForeignOrZero())
}

func TestInt64(t *testing.T) {
	p := Int64(123)
	assert.NotNil(t, p)
	assert.Equal(t, int64(123), *p)

	q := Int64(123)
	assert.NotSame(t, p, q)
}
