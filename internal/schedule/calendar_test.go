package schedule

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/EedwinGglez11/dinaree/internal/core"
)

func d(y int, m time.Month, day int) time.Time {
	return time.Date(y, m, day, 0, 0, 0, 0, time.UTC)
}

func TestDateOnly(t *testing.T) {
	in := time.Date(2026, 3, 14, 23, 45, 12, 999, time.UTC)
	want := d(2026, 3, 14)
	if got := DateOnly(in); !got.Equal(want) {
		t.Errorf("DateOnly() = %v, want %v", got, want)
	}
}

func TestStep(t *testing.T) {
	tests := []struct {
		name string
		from time.Time
		freq core.Frequency
		want time.Time
	}{
		{"daily", d(2026, 1, 15), core.FreqDaily, d(2026, 1, 16)},
		{"weekly", d(2026, 1, 15), core.FreqWeekly, d(2026, 1, 22)},
		{"fortnightly is 15 days", d(2026, 1, 1), core.FreqFortnightly, d(2026, 1, 16)},
		{"monthly", d(2026, 1, 15), core.FreqMonthly, d(2026, 2, 15)},
		{"monthly clamps into february", d(2026, 1, 31), core.FreqMonthly, d(2026, 2, 28)},
		{"monthly clamps into leap february", d(2024, 1, 31), core.FreqMonthly, d(2024, 2, 29)},
		{"bimonthly", d(2026, 1, 31), core.FreqBimonthly, d(2026, 3, 31)},
		{"quarterly", d(2026, 1, 15), core.FreqQuarterly, d(2026, 4, 15)},
		{"semiannual", d(2026, 1, 15), core.FreqSemiannual, d(2026, 7, 15)},
		{"annual", d(2026, 1, 15), core.FreqAnnual, d(2027, 1, 15)},
		{"unknown falls back to monthly", d(2026, 1, 15), core.Frequency("cada-luna"), d(2026, 2, 15)},
		{"time of day discarded", time.Date(2026, 1, 15, 18, 30, 0, 0, time.UTC), core.FreqDaily, d(2026, 1, 16)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Step(tt.from, tt.freq); !got.Equal(tt.want) {
				t.Errorf("Step(%v, %s) = %v, want %v", tt.from, tt.freq, got, tt.want)
			}
		})
	}
}

func TestStep_ClampDoesNotDrift(t *testing.T) {
	// Stepping Jan 31 twice lands on Mar 28 because each step re-anchors on
	// the clamped date; the clamp prevents the Jan 31 -> Mar 3 normalization
	// drift a bare AddDate would produce.
	got := Step(Step(d(2026, 1, 31), core.FreqMonthly), core.FreqMonthly)
	want := d(2026, 3, 28)
	if !got.Equal(want) {
		t.Errorf("double monthly step from Jan 31 = %v, want %v", got, want)
	}
}

func TestOccurrencesInRange(t *testing.T) {
	end := d(2026, 1, 20)

	tests := []struct {
		name       string
		start      time.Time
		freq       core.Frequency
		end        *time.Time
		rangeStart time.Time
		rangeEnd   time.Time
		want       []time.Time
	}{
		{
			name:       "weekly inside january",
			start:      d(2026, 1, 1),
			freq:       core.FreqWeekly,
			rangeStart: d(2026, 1, 1),
			rangeEnd:   d(2026, 1, 31),
			want:       []time.Time{d(2026, 1, 1), d(2026, 1, 8), d(2026, 1, 15), d(2026, 1, 22), d(2026, 1, 29)},
		},
		{
			name:       "anchor long before window",
			start:      d(2024, 3, 10),
			freq:       core.FreqMonthly,
			rangeStart: d(2026, 1, 1),
			rangeEnd:   d(2026, 3, 31),
			want:       []time.Time{d(2026, 1, 10), d(2026, 2, 10), d(2026, 3, 10)},
		},
		{
			name:       "day-31 anchor clamps per month",
			start:      d(2024, 1, 31),
			freq:       core.FreqMonthly,
			rangeStart: d(2024, 2, 1),
			rangeEnd:   d(2024, 4, 30),
			want:       []time.Time{d(2024, 2, 29), d(2024, 3, 31), d(2024, 4, 30)},
		},
		{
			name:       "end date stops the series",
			start:      d(2026, 1, 1),
			freq:       core.FreqWeekly,
			end:        &end,
			rangeStart: d(2026, 1, 1),
			rangeEnd:   d(2026, 1, 31),
			want:       []time.Time{d(2026, 1, 1), d(2026, 1, 8), d(2026, 1, 15)},
		},
		{
			name:       "one-off inside window",
			start:      d(2026, 1, 10),
			freq:       core.FreqOnce,
			rangeStart: d(2026, 1, 1),
			rangeEnd:   d(2026, 1, 31),
			want:       []time.Time{d(2026, 1, 10)},
		},
		{
			name:       "one-off outside window",
			start:      d(2026, 2, 10),
			freq:       core.FreqOnce,
			rangeStart: d(2026, 1, 1),
			rangeEnd:   d(2026, 1, 31),
			want:       nil,
		},
		{
			name:       "anchor after window",
			start:      d(2026, 6, 1),
			freq:       core.FreqMonthly,
			rangeStart: d(2026, 1, 1),
			rangeEnd:   d(2026, 1, 31),
			want:       nil,
		},
		{
			name:       "inverted window",
			start:      d(2026, 1, 1),
			freq:       core.FreqMonthly,
			rangeStart: d(2026, 2, 1),
			rangeEnd:   d(2026, 1, 1),
			want:       nil,
		},
		{
			name:       "fortnightly walks 15-day strides",
			start:      d(2026, 1, 1),
			freq:       core.FreqFortnightly,
			rangeStart: d(2026, 1, 1),
			rangeEnd:   d(2026, 2, 1),
			want:       []time.Time{d(2026, 1, 1), d(2026, 1, 16), d(2026, 1, 31)},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := OccurrencesInRange(tt.start, tt.freq, tt.end, tt.rangeStart, tt.rangeEnd)
			if len(got) != len(tt.want) {
				t.Fatalf("got %d occurrences %v, want %d %v", len(got), got, len(tt.want), tt.want)
			}
			for i := range got {
				if !got[i].Equal(tt.want[i]) {
					t.Errorf("occurrence[%d] = %v, want %v", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestOccurrencesInRange_AscendingAndBounded(t *testing.T) {
	rangeStart, rangeEnd := d(2020, 1, 1), d(2026, 12, 31)
	got := OccurrencesInRange(d(2019, 5, 3), core.FreqWeekly, nil, rangeStart, rangeEnd)

	if len(got) == 0 {
		t.Fatal("expected occurrences in a multi-year window")
	}
	for i, occ := range got {
		if occ.Before(rangeStart) || occ.After(rangeEnd) {
			t.Fatalf("occurrence %v outside window", occ)
		}
		if i > 0 && !got[i-1].Before(occ) {
			t.Fatalf("occurrences not strictly ascending at %d: %v then %v", i, got[i-1], occ)
		}
	}
}

func TestOccurrencesInRange_CapsDegenerateWalks(t *testing.T) {
	got := OccurrencesInRange(d(2000, 1, 1), core.FreqDaily, nil, d(2000, 1, 1), d(2030, 1, 1))
	if len(got) != maxOccurrences {
		t.Errorf("daily walk over 30 years returned %d occurrences, want cap %d", len(got), maxOccurrences)
	}
}

func TestMonthlyOccurrences(t *testing.T) {
	one := decimal.NewFromInt(1)
	tests := []struct {
		freq core.Frequency
		want decimal.Decimal
	}{
		{core.FreqWeekly, decimal.NewFromInt(4)},
		{core.FreqFortnightly, decimal.NewFromInt(2)},
		{core.FreqMonthly, one},
		{core.FreqBimonthly, one.Div(decimal.NewFromInt(2))},
		{core.FreqQuarterly, one.Div(decimal.NewFromInt(3))},
		{core.FreqSemiannual, one.Div(decimal.NewFromInt(6))},
		{core.FreqAnnual, one.Div(decimal.NewFromInt(12))},
		{core.Frequency("desconocido"), one},
	}

	for _, tt := range tests {
		if got := MonthlyOccurrences(tt.freq); !got.Equal(tt.want) {
			t.Errorf("MonthlyOccurrences(%s) = %s, want %s", tt.freq, got, tt.want)
		}
	}
}
