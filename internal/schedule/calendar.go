// Package schedule provides the date arithmetic shared by every projection
// call site: stepping a date by a recurrence frequency, enumerating the
// occurrences of an obligation inside a window, and the fixed
// frequency-to-month conversion table used by aggregate views.
package schedule

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/EedwinGglez11/dinaree/internal/core"
)

// Hard cap on occurrences enumerated per record, so a degenerate window can
// never produce an unbounded walk.
const maxOccurrences = 1000

// DateOnly truncates a timestamp to its calendar date in UTC. All due-date
// comparisons in the engine happen at day granularity.
func DateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// monthsPerStep returns the month stride for month-granularity frequencies,
// or 0 for day-granularity ones.
func monthsPerStep(f core.Frequency) int {
	switch f {
	case core.FreqMonthly:
		return 1
	case core.FreqBimonthly:
		return 2
	case core.FreqQuarterly:
		return 3
	case core.FreqSemiannual:
		return 6
	case core.FreqAnnual:
		return 12
	default:
		return 0
	}
}

// daysPerStep returns the day stride for day-granularity frequencies,
// or 0 for month-granularity ones.
func daysPerStep(f core.Frequency) int {
	switch f {
	case core.FreqDaily:
		return 1
	case core.FreqWeekly:
		return 7
	case core.FreqFortnightly:
		return 15
	default:
		return 0
	}
}

// addMonthsClamped moves n months forward from the anchor, keeping the
// anchor's day-of-month and clamping it to the target month's length, so a
// day-31 anchor lands on Feb 28 rather than normalizing into March.
func addMonthsClamped(anchor time.Time, n int) time.Time {
	y, m, d := anchor.Date()
	firstOfTarget := time.Date(y, m+time.Month(n), 1, 0, 0, 0, 0, time.UTC)
	lastDay := firstOfTarget.AddDate(0, 1, -1).Day()
	if d > lastDay {
		d = lastDay
	}
	return time.Date(firstOfTarget.Year(), firstOfTarget.Month(), d, 0, 0, 0, 0, time.UTC)
}

// Step advances a date by one frequency unit. Unrecognized frequencies step
// monthly, matching the historical fallback.
func Step(t time.Time, f core.Frequency) time.Time {
	t = DateOnly(t)
	if days := daysPerStep(f); days > 0 {
		return t.AddDate(0, 0, days)
	}
	months := monthsPerStep(f)
	if months == 0 {
		months = 1
	}
	return addMonthsClamped(t, months)
}

// occurrenceAt returns the nth occurrence (0 = the start date itself) of a
// recurrence anchored at start.
func occurrenceAt(start time.Time, f core.Frequency, n int) time.Time {
	start = DateOnly(start)
	if n <= 0 {
		return start
	}
	if days := daysPerStep(f); days > 0 {
		return start.AddDate(0, 0, n*days)
	}
	months := monthsPerStep(f)
	if months == 0 {
		months = 1
	}
	return addMonthsClamped(start, n*months)
}

// estimateStepDays gives the fast-forward stride in days for a frequency.
func estimateStepDays(f core.Frequency) int {
	if days := daysPerStep(f); days > 0 {
		return days
	}
	months := monthsPerStep(f)
	if months == 0 {
		months = 1
	}
	return months * 30
}

// OccurrencesInRange enumerates every occurrence of a recurrence anchored at
// start that falls inside [rangeStart, rangeEnd], ascending. A non-nil end
// date stops the series early. A one-off (único) yields at most its own
// start date.
func OccurrencesInRange(start time.Time, f core.Frequency, end *time.Time, rangeStart, rangeEnd time.Time) []time.Time {
	start = DateOnly(start)
	rangeStart = DateOnly(rangeStart)
	rangeEnd = DateOnly(rangeEnd)
	if rangeEnd.Before(rangeStart) {
		return nil
	}

	limit := rangeEnd
	if end != nil {
		e := DateOnly(*end)
		if e.Before(limit) {
			limit = e
		}
	}

	if f == core.FreqOnce {
		if !start.Before(rangeStart) && !start.After(limit) {
			return []time.Time{start}
		}
		return nil
	}

	// Fast-forward close to the window, then correct: the estimate can land
	// past or short of the true first in-range occurrence because calendar
	// months vary in length.
	n := 0
	if start.Before(rangeStart) {
		gapDays := int(rangeStart.Sub(start).Hours() / 24)
		n = gapDays / estimateStepDays(f)
	}
	for n > 0 && !occurrenceAt(start, f, n-1).Before(rangeStart) {
		n--
	}
	for occurrenceAt(start, f, n).Before(rangeStart) {
		n++
	}

	var out []time.Time
	for len(out) < maxOccurrences {
		occ := occurrenceAt(start, f, n)
		if occ.After(limit) {
			break
		}
		out = append(out, occ)
		n++
	}
	return out
}

var (
	two    = decimal.NewFromInt(2)
	three  = decimal.NewFromInt(3)
	six    = decimal.NewFromInt(6)
	twelve = decimal.NewFromInt(12)
)

// MonthlyOccurrences is the chart-filter conversion table: how many
// occurrences of a frequency fit in one month. The values are the fixed
// historical ratios, not calendar-exact ones, and are deliberately distinct
// from the amortization scaling table in the amortize package.
func MonthlyOccurrences(f core.Frequency) decimal.Decimal {
	one := decimal.NewFromInt(1)
	switch f {
	case core.FreqWeekly:
		return decimal.NewFromInt(4)
	case core.FreqFortnightly:
		return two
	case core.FreqMonthly:
		return one
	case core.FreqBimonthly:
		return one.Div(two)
	case core.FreqQuarterly:
		return one.Div(three)
	case core.FreqSemiannual:
		return one.Div(six)
	case core.FreqAnnual:
		return one.Div(twelve)
	default:
		return one
	}
}
