package project

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/EedwinGglez11/dinaree/internal/amortize"
	"github.com/EedwinGglez11/dinaree/internal/core"
	"github.com/EedwinGglez11/dinaree/internal/schedule"
)

var monthLabels = [...]string{
	"ene", "feb", "mar", "abr", "may", "jun",
	"jul", "ago", "sep", "oct", "nov", "dic",
}

// Series is the rolling monthly projection consumed by bar/line charts.
type Series struct {
	Labels       []string
	Income       []decimal.Decimal
	LoanPayments []decimal.Decimal
	CardPayments []decimal.Decimal
	Savings      []decimal.Decimal
}

// bucketIndex places a date into a month bucket relative to the base month.
func bucketIndex(t, base time.Time) int {
	return (t.Year()-base.Year())*12 + int(t.Month()) - int(base.Month())
}

// MonthlySeries projects income, loan installments, and card minimum
// payments over the given number of months starting at now's month, with
// the savings residual per month. Only monthly and fortnightly incomes
// contribute to this view, matching the historical figures.
func MonthlySeries(state core.FinanceState, now time.Time, periods int) Series {
	if periods <= 0 {
		periods = 6
	}
	base := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	windowEnd := base.AddDate(0, periods, -1)

	s := Series{
		Labels:       make([]string, periods),
		Income:       make([]decimal.Decimal, periods),
		LoanPayments: make([]decimal.Decimal, periods),
		CardPayments: make([]decimal.Decimal, periods),
		Savings:      make([]decimal.Decimal, periods),
	}
	for i := 0; i < periods; i++ {
		m := base.AddDate(0, i, 0)
		s.Labels[i] = fmt.Sprintf("%s %d", monthLabels[m.Month()-1], m.Year())
		s.Income[i] = decimal.Zero
		s.LoanPayments[i] = decimal.Zero
		s.CardPayments[i] = decimal.Zero
	}

	for _, in := range state.Incomes {
		if !in.Amount.IsPositive() {
			continue
		}
		var perMonth decimal.Decimal
		switch in.Frequency {
		case core.FreqMonthly:
			perMonth = in.Amount
		case core.FreqFortnightly:
			perMonth = in.Amount.Mul(decimal.NewFromInt(2))
		default:
			continue
		}
		for i := 0; i < periods; i++ {
			s.Income[i] = s.Income[i].Add(perMonth)
		}
	}

	for _, l := range state.AllLoans() {
		if !amortize.Valid(l) {
			amortize.LogSkipped(l)
			continue
		}
		if amortize.IsSettled(l) {
			continue
		}
		amount := amortize.InstallmentAmount(l)
		remaining := amortize.TotalPayments(l) - amortize.InstallmentsPaid(l)
		due := amortize.NextDueDate(l)
		for i := 0; i < remaining && due != nil && !due.After(windowEnd); i++ {
			if idx := bucketIndex(*due, base); idx >= 0 && idx < periods {
				s.LoanPayments[idx] = s.LoanPayments[idx].Add(amount)
			}
			next := schedule.Step(*due, l.Frequency)
			due = &next
		}
	}

	for _, c := range state.CreditCards {
		if !cardEligible(c) {
			continue
		}
		anchor := nextCardDue(c, schedule.DateOnly(now))
		if anchor == nil {
			continue
		}
		for d := *anchor; !d.After(windowEnd); d = schedule.Step(d, core.FreqMonthly) {
			if idx := bucketIndex(d, base); idx >= 0 && idx < periods {
				s.CardPayments[idx] = s.CardPayments[idx].Add(c.MinPayment)
			}
		}
	}

	for i := 0; i < periods; i++ {
		left := s.Income[i].Sub(s.LoanPayments[i].Add(s.CardPayments[i]))
		if left.IsNegative() {
			left = decimal.Zero
		}
		s.Savings[i] = left
	}
	return s
}

// PeriodFilter selects the reporting window for single-period totals.
type PeriodFilter string

const (
	PeriodWeek      PeriodFilter = "week"
	PeriodFortnight PeriodFilter = "fortnight"
	PeriodMonth     PeriodFilter = "month"
)

// PeriodWindow computes the [start, end] calendar window for a filter:
// ISO week (Monday start), fortnight (days 1-15 / 16-end), or the full
// calendar month. Unknown filters fall back to the month window.
func PeriodWindow(now time.Time, f PeriodFilter) (time.Time, time.Time) {
	today := schedule.DateOnly(now)
	switch f {
	case PeriodWeek:
		offset := (int(today.Weekday()) + 6) % 7
		start := today.AddDate(0, 0, -offset)
		return start, start.AddDate(0, 0, 6)
	case PeriodFortnight:
		y, m, d := today.Date()
		if d <= 15 {
			return time.Date(y, m, 1, 0, 0, 0, 0, time.UTC),
				time.Date(y, m, 15, 0, 0, 0, 0, time.UTC)
		}
		start := time.Date(y, m, 16, 0, 0, 0, 0, time.UTC)
		return start, time.Date(y, m+1, 0, 0, 0, 0, 0, time.UTC)
	default:
		y, m, _ := today.Date()
		return time.Date(y, m, 1, 0, 0, 0, 0, time.UTC),
			time.Date(y, m+1, 0, 0, 0, 0, 0, time.UTC)
	}
}

// PeriodTotals is the filtered single-period view of the payment schedule.
type PeriodTotals struct {
	Filter PeriodFilter
	Start  time.Time
	End    time.Time
	Total  decimal.Decimal
	ByType map[core.EventType]decimal.Decimal
	Events []core.PaymentEvent
}

// TotalsInPeriod filters the full projected payment list down to the
// window selected by the filter and sums the amounts, overall and per
// event type. It shares UpcomingPayments with every other caller so the
// single-month figure here can never drift from the projector's.
func TotalsInPeriod(state core.FinanceState, now time.Time, f PeriodFilter) PeriodTotals {
	start, end := PeriodWindow(now, f)
	out := PeriodTotals{
		Filter: f,
		Start:  start,
		End:    end,
		Total:  decimal.Zero,
		ByType: map[core.EventType]decimal.Decimal{
			core.EventExpense: decimal.Zero,
			core.EventLoan:    decimal.Zero,
			core.EventCard:    decimal.Zero,
		},
	}
	for _, ev := range UpcomingPayments(state, now) {
		if ev.DueDate.Before(start) || ev.DueDate.After(end) {
			continue
		}
		out.Events = append(out.Events, ev)
		out.Total = out.Total.Add(ev.Amount)
		out.ByType[ev.Type] = out.ByType[ev.Type].Add(ev.Amount)
	}
	return out
}

// FrequencyAll selects every expense regardless of frequency in
// CategoryBreakdown.
const FrequencyAll = "general"

// NoDataLabel is the synthetic slice emitted when a breakdown is empty, so
// pie charts never render with zero slices.
const NoDataLabel = "Sin datos"

// Breakdown is the category pie shape: parallel label/value slices.
type Breakdown struct {
	Labels []string
	Values []decimal.Decimal
}

// CategoryBreakdown sums expense amounts per category for one frequency
// (or all of them), emitting only non-zero categories in the fixed
// category order. Unknown category strings fall into "Otros".
func CategoryBreakdown(state core.FinanceState, frequency string) Breakdown {
	sums := make(map[string]decimal.Decimal, len(core.ExpenseCategories))
	for _, e := range state.Expenses {
		if frequency != FrequencyAll && string(e.Frequency) != frequency {
			continue
		}
		if !e.Amount.IsPositive() {
			continue
		}
		cat := core.NormalizeCategory(e.Category)
		sums[cat] = sums[cat].Add(e.Amount)
	}

	var b Breakdown
	for _, cat := range core.ExpenseCategories {
		if total, ok := sums[cat]; ok && total.IsPositive() {
			b.Labels = append(b.Labels, cat)
			b.Values = append(b.Values, total)
		}
	}
	if len(b.Labels) == 0 {
		b.Labels = []string{NoDataLabel}
		b.Values = []decimal.Decimal{decimal.NewFromInt(1)}
	}
	return b
}
