package project

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/EedwinGglez11/dinaree/internal/core"
)

func d(y int, m time.Month, day int) time.Time {
	return time.Date(y, m, day, 0, 0, 0, 0, time.UTC)
}

func dec(s string) decimal.Decimal {
	v, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return v
}

func ptr(t time.Time) *time.Time { return &t }

func oneOffExpense(id, desc, amount string, date time.Time) core.Expense {
	return core.Expense{
		ID:          id,
		Amount:      dec(amount),
		Category:    "Servicios",
		Description: desc,
		Date:        date,
		Frequency:   core.FreqOnce,
	}
}

func monthlyExpense(id, desc, amount string, date time.Time) core.Expense {
	return core.Expense{
		ID:          id,
		Amount:      dec(amount),
		Category:    "Servicios",
		Description: desc,
		Date:        date,
		Frequency:   core.FreqMonthly,
	}
}

func activeLoan(id, name string) core.Loan {
	return core.Loan{
		ID:        id,
		Name:      name,
		Total:     dec("1200"),
		Paid:      dec("450"),
		Duration:  12,
		Frequency: core.FreqMonthly,
		StartDate: d(2026, 1, 10),
	}
}

func activeCard(id string, paymentDay int) core.CreditCard {
	return core.CreditCard{
		ID:          id,
		Bank:        "BBVA",
		CardName:    "Oro",
		CreditLimit: dec("50000"),
		CurrentDebt: dec("8000"),
		MinPayment:  dec("400"),
		PaymentDate: d(2026, 1, paymentDay),
		Frequency:   core.FreqMonthly,
		Status:      core.CardActive,
	}
}

func TestUpcomingPayments_OneOffExpenses(t *testing.T) {
	now := d(2026, 3, 15)
	state := core.FinanceState{
		Expenses: []core.Expense{
			oneOffExpense("past", "Pagado", "100", d(2026, 3, 1)),
			oneOffExpense("today", "Hoy", "200", d(2026, 3, 15)),
			oneOffExpense("future", "Futuro", "300", d(2026, 4, 1)),
		},
	}

	events := UpcomingPayments(state, now)
	if len(events) != 2 {
		t.Fatalf("got %d events, want 2 (past one-off excluded)", len(events))
	}
	if events[0].ID != "today" || events[1].ID != "future" {
		t.Errorf("event order = %s,%s; want today,future", events[0].ID, events[1].ID)
	}
	if events[0].Type != core.EventExpense {
		t.Errorf("event type = %s, want %s", events[0].Type, core.EventExpense)
	}
	if events[0].PaymentType != string(core.FreqOnce) {
		t.Errorf("payment type = %q, want %q", events[0].PaymentType, core.FreqOnce)
	}
}

func TestUpcomingPayments_RecurringExpenseDerivesNextDate(t *testing.T) {
	now := d(2026, 3, 15)
	state := core.FinanceState{
		Expenses: []core.Expense{
			monthlyExpense("e1", "Internet", "250", d(2026, 2, 20)),
		},
	}

	events := UpcomingPayments(state, now)
	if len(events) != 1 {
		t.Fatalf("got %d events, want 1", len(events))
	}
	if want := d(2026, 3, 20); !events[0].DueDate.Equal(want) {
		t.Errorf("due date = %v, want %v (one step past the record date)", events[0].DueDate, want)
	}
}

func TestUpcomingPayments_CachedNextPaymentDateWins(t *testing.T) {
	now := d(2026, 3, 15)
	e := monthlyExpense("e1", "Luz", "180", d(2026, 2, 1))
	e.NextPaymentDate = ptr(d(2026, 3, 28))
	state := core.FinanceState{Expenses: []core.Expense{e}}

	events := UpcomingPayments(state, now)
	if len(events) != 1 {
		t.Fatalf("got %d events, want 1", len(events))
	}
	if want := d(2026, 3, 28); !events[0].DueDate.Equal(want) {
		t.Errorf("due date = %v, want cached %v", events[0].DueDate, want)
	}
}

func TestUpcomingPayments_ExpenseEndDateRespected(t *testing.T) {
	now := d(2026, 3, 15)
	e := monthlyExpense("e1", "Gimnasio", "500", d(2026, 2, 20))
	e.EndDate = ptr(d(2026, 3, 1)) // next occurrence Mar 20 falls past the end

	events := UpcomingPayments(core.FinanceState{Expenses: []core.Expense{e}}, now)
	if len(events) != 0 {
		t.Fatalf("got %d events, want 0 (series ended)", len(events))
	}
}

func TestUpcomingPayments_LoanInstallment(t *testing.T) {
	now := d(2026, 1, 1)
	l := activeLoan("l1", "Auto")
	l.LastPaymentDate = ptr(d(2026, 4, 10))
	state := core.FinanceState{Loans: []core.Loan{l}}

	events := UpcomingPayments(state, now)
	if len(events) != 1 {
		t.Fatalf("got %d events, want 1", len(events))
	}
	ev := events[0]
	if ev.Type != core.EventLoan {
		t.Errorf("type = %s, want %s", ev.Type, core.EventLoan)
	}
	if !ev.Amount.Equal(dec("100")) {
		t.Errorf("amount = %s, want installment 100", ev.Amount)
	}
	if want := d(2026, 5, 10); !ev.DueDate.Equal(want) {
		t.Errorf("due date = %v, want %v", ev.DueDate, want)
	}
	if ev.PaymentType != "cuota 5 de 12" {
		t.Errorf("payment type = %q, want %q", ev.PaymentType, "cuota 5 de 12")
	}
}

func TestUpcomingPayments_SettledAndMalformedLoansExcluded(t *testing.T) {
	now := d(2026, 1, 1)
	settled := activeLoan("settled", "Pagado")
	settled.Paid = settled.Total

	malformed := activeLoan("malformed", "Roto")
	malformed.Duration = 0

	survivor := activeLoan("ok", "Vivo")

	state := core.FinanceState{Loans: []core.Loan{settled, malformed, survivor}}
	events := UpcomingPayments(state, now)
	if len(events) != 1 || events[0].ID != "ok" {
		t.Fatalf("events = %v, want only the well-formed active loan", events)
	}
}

func TestUpcomingPayments_LegacyDebtsProjectedLikeLoans(t *testing.T) {
	now := d(2026, 1, 1)
	state := core.FinanceState{
		Debts: []core.Loan{activeLoan("d1", "Deuda vieja")},
	}

	events := UpcomingPayments(state, now)
	if len(events) != 1 || events[0].Type != core.EventLoan {
		t.Fatalf("legacy debt not projected: %v", events)
	}
}

func TestUpcomingPayments_CardAnchorRollsToNextMonth(t *testing.T) {
	// Payment day 5, today the 10th: the anchor already passed this month.
	now := d(2026, 3, 10)
	state := core.FinanceState{CreditCards: []core.CreditCard{activeCard("c1", 5)}}

	events := UpcomingPayments(state, now)
	if len(events) != 1 {
		t.Fatalf("got %d events, want 1", len(events))
	}
	if want := d(2026, 4, 5); !events[0].DueDate.Equal(want) {
		t.Errorf("due date = %v, want %v", events[0].DueDate, want)
	}
	if events[0].PaymentType != "pago mínimo" {
		t.Errorf("payment type = %q, want %q", events[0].PaymentType, "pago mínimo")
	}
}

func TestUpcomingPayments_CardSameDayIncluded(t *testing.T) {
	now := d(2026, 3, 5)
	state := core.FinanceState{CreditCards: []core.CreditCard{activeCard("c1", 5)}}

	events := UpcomingPayments(state, now)
	if len(events) != 1 {
		t.Fatalf("got %d events, want 1", len(events))
	}
	if want := d(2026, 3, 5); !events[0].DueDate.Equal(want) {
		t.Errorf("due date = %v, want today's anchor %v", events[0].DueDate, want)
	}
}

func TestUpcomingPayments_CardInvalidDaySkipped(t *testing.T) {
	// Day 31 in June does not exist; the card must be skipped, not shifted.
	now := d(2026, 6, 10)
	card := activeCard("c1", 31)
	card.PaymentDate = d(2026, 1, 31)
	state := core.FinanceState{CreditCards: []core.CreditCard{card}}

	if events := UpcomingPayments(state, now); len(events) != 0 {
		t.Fatalf("got %d events, want 0 for invalid day-of-month", len(events))
	}
}

func TestUpcomingPayments_CardEligibility(t *testing.T) {
	now := d(2026, 3, 1)

	inactive := activeCard("inactive", 5)
	inactive.Status = core.CardInactive

	noDebt := activeCard("no-debt", 5)
	noDebt.CurrentDebt = decimal.Zero

	noMin := activeCard("no-min", 5)
	noMin.MinPayment = decimal.Zero

	state := core.FinanceState{CreditCards: []core.CreditCard{inactive, noDebt, noMin, activeCard("ok", 5)}}
	events := UpcomingPayments(state, now)
	if len(events) != 1 || events[0].ID != "ok" {
		t.Fatalf("events = %v, want only the eligible card", events)
	}
}

func TestUpcomingPayments_SortedWithStableTies(t *testing.T) {
	now := d(2026, 3, 1)

	// Expense, loan, and card all due Mar 5: insertion order must survive.
	e := oneOffExpense("e1", "Gasto", "100", d(2026, 3, 5))

	l := activeLoan("l1", "Auto")
	l.LastPaymentDate = ptr(d(2026, 2, 5))

	c := activeCard("c1", 5)

	state := core.FinanceState{
		Expenses:    []core.Expense{e, oneOffExpense("e2", "Después", "50", d(2026, 3, 20))},
		Loans:       []core.Loan{l},
		CreditCards: []core.CreditCard{c},
	}

	events := UpcomingPayments(state, now)
	if len(events) != 4 {
		t.Fatalf("got %d events, want 4", len(events))
	}

	for i := 1; i < len(events); i++ {
		if events[i].DueDate.Before(events[i-1].DueDate) {
			t.Fatalf("events not sorted ascending at %d", i)
		}
	}

	wantOrder := []string{"e1", "l1", "c1", "e2"}
	for i, want := range wantOrder {
		if events[i].ID != want {
			t.Errorf("events[%d] = %s, want %s", i, events[i].ID, want)
		}
	}
}

func TestUpcomingPayments_MalformedExpenseIsolated(t *testing.T) {
	now := d(2026, 3, 1)
	bad := core.Expense{ID: "bad", Description: "Sin monto", Frequency: core.FreqMonthly, Date: d(2026, 3, 10)}
	state := core.FinanceState{
		Expenses: []core.Expense{bad, oneOffExpense("good", "Bien", "10", d(2026, 3, 10))},
	}

	events := UpcomingPayments(state, now)
	if len(events) != 1 || events[0].ID != "good" {
		t.Fatalf("events = %v, want malformed record skipped", events)
	}
}

func TestUpcomingPayments_EmptyState(t *testing.T) {
	if events := UpcomingPayments(core.FinanceState{}, d(2026, 1, 1)); len(events) != 0 {
		t.Fatalf("got %d events from empty state, want 0", len(events))
	}
}

func TestUpcomingPayments_CardFallsBackToBankName(t *testing.T) {
	now := d(2026, 3, 1)
	c := activeCard("c1", 5)
	c.CardName = ""
	state := core.FinanceState{CreditCards: []core.CreditCard{c}}

	events := UpcomingPayments(state, now)
	if len(events) != 1 || events[0].Name != "BBVA" {
		t.Fatalf("events = %v, want bank used as display name", events)
	}
}
