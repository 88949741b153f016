// Package project is the projection engine: it turns a FinanceState
// snapshot into due-dated payment events, monthly projection series,
// filtered period totals, category breakdowns, and export report rows.
// Everything here is pure over its inputs; malformed records are skipped
// and logged, never fatal.
package project

import (
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/EedwinGglez11/dinaree/internal/amortize"
	"github.com/EedwinGglez11/dinaree/internal/core"
	"github.com/EedwinGglez11/dinaree/internal/schedule"
)

// nextExpenseDue resolves the next occurrence of an expense. The cached
// NextPaymentDate wins when present; otherwise the expense date advanced by
// one frequency step.
func nextExpenseDue(e core.Expense) time.Time {
	if e.NextPaymentDate != nil && !e.NextPaymentDate.IsZero() {
		return schedule.DateOnly(*e.NextPaymentDate)
	}
	return schedule.Step(e.Date, e.Frequency)
}

// nextCardDue finds the next occurrence of the card's day-of-month anchor
// on or after today. A day that does not exist in the target month (e.g.
// day 31 in June) is an invalid construction: the card is skipped with a
// warning instead of silently landing on a normalized date.
func nextCardDue(c core.CreditCard, today time.Time) *time.Time {
	day := c.PaymentDate.Day()
	y, m, _ := today.Date()

	for i := 0; i < 2; i++ {
		candidate := time.Date(y, m+time.Month(i), day, 0, 0, 0, 0, time.UTC)
		if candidate.Day() != day {
			slog.Warn("Skipping credit card with invalid payment day for month",
				"id", c.ID,
				"card", c.CardName,
				"day", day,
				"month", int(m)+i)
			return nil
		}
		if !candidate.Before(today) {
			return &candidate
		}
	}
	return nil
}

// cardEligible is the shared projection predicate for credit cards.
func cardEligible(c core.CreditCard) bool {
	return c.Status == core.CardActive &&
		!c.PaymentDate.IsZero() &&
		c.MinPayment.IsPositive() &&
		c.CurrentDebt.IsPositive()
}

// UpcomingPayments projects every obligation in the state to its next due
// payment on or after now, ascending by due date. Ties keep insertion
// order: expenses, then loans, then credit cards.
func UpcomingPayments(state core.FinanceState, now time.Time) []core.PaymentEvent {
	today := schedule.DateOnly(now)
	var events []core.PaymentEvent

	for _, e := range state.Expenses {
		if !e.Amount.IsPositive() {
			slog.Warn("Skipping expense with non-positive amount", "id", e.ID, "description", e.Description)
			continue
		}
		var due time.Time
		if e.Frequency == core.FreqOnce {
			if e.Date.IsZero() {
				slog.Warn("Skipping expense with missing date", "id", e.ID, "description", e.Description)
				continue
			}
			due = schedule.DateOnly(e.Date)
		} else {
			if e.Date.IsZero() && (e.NextPaymentDate == nil || e.NextPaymentDate.IsZero()) {
				slog.Warn("Skipping expense with missing date", "id", e.ID, "description", e.Description)
				continue
			}
			due = nextExpenseDue(e)
		}
		if due.Before(today) {
			continue
		}
		if e.EndDate != nil && due.After(schedule.DateOnly(*e.EndDate)) {
			continue
		}
		events = append(events, core.PaymentEvent{
			ID:          e.ID,
			Type:        core.EventExpense,
			Name:        e.Description,
			Amount:      e.Amount,
			DueDate:     due,
			PaymentType: string(e.Frequency),
		})
	}

	for _, l := range state.AllLoans() {
		if !amortize.Valid(l) {
			amortize.LogSkipped(l)
			continue
		}
		if amortize.IsSettled(l) {
			continue
		}
		next := amortize.NextDueDate(l)
		if next == nil || next.Before(today) {
			continue
		}
		paid := amortize.InstallmentsPaid(l)
		events = append(events, core.PaymentEvent{
			ID:          l.ID,
			Type:        core.EventLoan,
			Name:        l.Name,
			Amount:      amortize.InstallmentAmount(l),
			DueDate:     *next,
			PaymentType: fmt.Sprintf("cuota %d de %d", paid+1, amortize.TotalPayments(l)),
		})
	}

	for _, c := range state.CreditCards {
		if !cardEligible(c) {
			continue
		}
		due := nextCardDue(c, today)
		if due == nil {
			continue
		}
		name := c.CardName
		if name == "" {
			name = c.Bank
		}
		events = append(events, core.PaymentEvent{
			ID:          c.ID,
			Type:        core.EventCard,
			Name:        name,
			Amount:      c.MinPayment,
			DueDate:     *due,
			PaymentType: "pago mínimo",
		})
	}

	sort.SliceStable(events, func(i, j int) bool {
		return events[i].DueDate.Before(events[j].DueDate)
	})
	return events
}
