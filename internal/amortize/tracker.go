// Package amortize derives installment state for installment debts: the
// per-installment amount, how many installments the cumulative paid amount
// covers, the remaining balance, and the next unpaid due date.
package amortize

import (
	"log/slog"
	"time"

	"github.com/shopspring/decimal"

	"github.com/EedwinGglez11/dinaree/internal/core"
	"github.com/EedwinGglez11/dinaree/internal/schedule"
)

// PeriodsPerDurationStep scales a loan's duration into a payment count.
// This is the historical amortization table (weekly durations count 4
// payments per step, fortnightly 2, everything else 1) and is intentionally
// not the same table as schedule.MonthlyOccurrences; the two disagree for
// bimestral through anual and unifying them would change stored figures.
func PeriodsPerDurationStep(f core.Frequency) int {
	switch f {
	case core.FreqWeekly:
		return 4
	case core.FreqFortnightly:
		return 2
	default:
		return 1
	}
}

// Valid reports whether a loan carries enough well-formed data to amortize.
// Malformed loans are skipped by every projection, never treated as fatal.
func Valid(l core.Loan) bool {
	if l.Total.IsZero() || l.Total.IsNegative() {
		return false
	}
	if l.Duration <= 0 {
		return false
	}
	if l.StartDate.IsZero() {
		return false
	}
	return true
}

// LogSkipped emits the diagnostic for a loan excluded from a projection.
func LogSkipped(l core.Loan) {
	slog.Warn("Skipping malformed loan",
		"id", l.ID,
		"name", l.Name,
		"total", l.Total.String(),
		"duration", l.Duration,
		"start_date", l.StartDate)
}

// TotalPayments is the number of installments the loan is split into.
func TotalPayments(l core.Loan) int {
	if l.Duration <= 0 {
		return 0
	}
	return l.Duration * PeriodsPerDurationStep(l.Frequency)
}

// InstallmentAmount is the amount of one installment. A loan with no
// payments yields zero rather than dividing by zero.
func InstallmentAmount(l core.Loan) decimal.Decimal {
	n := TotalPayments(l)
	if n == 0 {
		return decimal.Zero
	}
	return l.Total.Div(decimal.NewFromInt(int64(n)))
}

// InstallmentsPaid is how many whole installments the cumulative paid
// amount covers.
func InstallmentsPaid(l core.Loan) int {
	amount := InstallmentAmount(l)
	if amount.IsZero() {
		return 0
	}
	return int(l.Paid.Div(amount).IntPart())
}

// Remaining is the outstanding balance, clamped at zero for overpaid rows.
func Remaining(l core.Loan) decimal.Decimal {
	r := l.Total.Sub(l.Paid)
	if r.IsNegative() {
		return decimal.Zero
	}
	return r
}

// IsSettled reports whether the loan is fully paid off.
func IsSettled(l core.Loan) bool {
	n := TotalPayments(l)
	if n == 0 {
		return true
	}
	if InstallmentsPaid(l) >= n {
		return true
	}
	return !Remaining(l).IsPositive()
}

// NextDueDate returns the due date of the next unpaid installment: one
// frequency step past the last payment date, or past the start date when no
// payment has been recorded. Settled and malformed loans have no next due
// date.
func NextDueDate(l core.Loan) *time.Time {
	if !Valid(l) || IsSettled(l) {
		return nil
	}
	anchor := l.StartDate
	if l.LastPaymentDate != nil && !l.LastPaymentDate.IsZero() {
		anchor = *l.LastPaymentDate
	}
	next := schedule.Step(anchor, l.Frequency)
	return &next
}
