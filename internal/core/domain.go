// Package core defines the finance domain: the record types that make up
// the persisted FinanceState aggregate and the derived PaymentEvent values
// the projection engine produces from it.
package core

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Frequency is a recurrence unit. The string values are the ones stored by
// the original application and kept for data compatibility.
type Frequency string

const (
	FreqOnce        Frequency = "único"
	FreqDaily       Frequency = "diario"
	FreqWeekly      Frequency = "semanal"
	FreqFortnightly Frequency = "quincenal"
	FreqMonthly     Frequency = "mensual"
	FreqBimonthly   Frequency = "bimestral"
	FreqQuarterly   Frequency = "trimestral"
	FreqSemiannual  Frequency = "semestral"
	FreqAnnual      Frequency = "anual"
)

// Kind tags every record with its variant so callers never have to infer a
// record's type from which fields happen to be set.
type Kind string

const (
	KindIncome     Kind = "income"
	KindExpense    Kind = "expense"
	KindLoan       Kind = "loan"
	KindCreditCard Kind = "creditCard"
	KindGoal       Kind = "goal"
)

// CardStatus marks whether a credit card participates in projections.
type CardStatus string

const (
	CardActive   CardStatus = "Activa"
	CardInactive CardStatus = "Inactiva"
)

// ExpenseCategories is the fixed category set. Unknown categories map to
// the final "Otros" entry.
var ExpenseCategories = []string{
	"Alimentación",
	"Transporte",
	"Vivienda",
	"Salud",
	"Educación",
	"Entretenimiento",
	"Ropa",
	"Servicios",
	"Mascotas",
	"Deudas",
	"Otros",
}

const DefaultCategory = "Otros"

// NormalizeCategory maps arbitrary category strings onto the fixed set.
func NormalizeCategory(c string) string {
	c = strings.TrimSpace(c)
	for _, known := range ExpenseCategories {
		if c == known {
			return known
		}
	}
	return DefaultCategory
}

type (
	// Income is money coming in on a schedule.
	Income struct {
		ID        string
		Kind      Kind
		Amount    decimal.Decimal
		Date      time.Time
		Frequency Frequency
		EndDate   *time.Time
		Source    string
		Company   string
	}

	// Expense is a one-off or recurring outgoing payment.
	Expense struct {
		ID          string
		Kind        Kind
		Amount      decimal.Decimal
		Category    string
		Description string
		Date        time.Time
		Frequency   Frequency
		EndDate     *time.Time
		// NextPaymentDate caches the next occurrence when known; the
		// projector derives it from Date otherwise.
		NextPaymentDate *time.Time
	}

	// Loan is an installment debt. Paid is the cumulative currency amount
	// paid so far, not an installment count.
	Loan struct {
		ID              string
		Kind            Kind
		Name            string
		Total           decimal.Decimal
		Paid            decimal.Decimal
		Duration        int
		Frequency       Frequency
		StartDate       time.Time
		LastPaymentDate *time.Time
		Category        string
	}

	// CreditCard tracks revolving debt with a day-of-month payment anchor.
	CreditCard struct {
		ID           string
		Kind         Kind
		Bank         string
		CardName     string
		Last4Digits  string
		CreditLimit  decimal.Decimal
		CurrentDebt  decimal.Decimal
		MinPayment   decimal.Decimal
		CutDate      *time.Time
		PaymentDate  time.Time
		InterestRate decimal.Decimal
		Frequency    Frequency
		Status       CardStatus
	}

	// Goal is a savings target.
	Goal struct {
		ID            string
		Kind          Kind
		Name          string
		TargetAmount  decimal.Decimal
		CurrentAmount decimal.Decimal
		Deadline      time.Time
	}

	// FinanceState is the full persisted aggregate. The projection engine
	// only ever reads it; mutation happens in the storage layer, which
	// bumps Version on every write so projections can be memoized.
	FinanceState struct {
		Version     int64
		Incomes     []Income
		Expenses    []Expense
		Loans       []Loan
		Debts       []Loan // legacy parallel debt model, projected like Loans
		CreditCards []CreditCard
		Goals       []Goal
	}
)

var (
	ErrInvalidAmount    = errors.New("invalid amount")
	ErrInvalidDate      = errors.New("invalid date")
	ErrInvalidFrequency = errors.New("invalid frequency")
	ErrEmptyName        = errors.New("empty name")
	ErrInvalidDuration  = errors.New("invalid duration")
	ErrPaidOverTotal    = errors.New("paid exceeds total")
	ErrInvalidStatus    = errors.New("invalid card status")
	ErrNotFound         = errors.New("record not found")
)

// NewID returns a fresh record identifier.
func NewID() string { return uuid.NewString() }

func validFrequency(f Frequency, allowed ...Frequency) bool {
	for _, a := range allowed {
		if f == a {
			return true
		}
	}
	return false
}

func (i Income) Validate() error {
	if i.Amount.IsNegative() || i.Amount.IsZero() {
		return ErrInvalidAmount
	}
	if i.Date.IsZero() {
		return ErrInvalidDate
	}
	if !validFrequency(i.Frequency, FreqOnce, FreqDaily, FreqWeekly, FreqFortnightly, FreqMonthly) {
		return ErrInvalidFrequency
	}
	if i.EndDate != nil && i.EndDate.Before(i.Date) {
		return ErrInvalidDate
	}
	return nil
}

func (e Expense) Validate() error {
	if e.Amount.IsNegative() || e.Amount.IsZero() {
		return ErrInvalidAmount
	}
	if e.Date.IsZero() {
		return ErrInvalidDate
	}
	if !validFrequency(e.Frequency, FreqOnce, FreqWeekly, FreqFortnightly, FreqMonthly,
		FreqBimonthly, FreqQuarterly, FreqSemiannual, FreqAnnual) {
		return ErrInvalidFrequency
	}
	if len(strings.TrimSpace(e.Description)) == 0 {
		return ErrEmptyName
	}
	if e.EndDate != nil && e.EndDate.Before(e.Date) {
		return ErrInvalidDate
	}
	return nil
}

func (l Loan) Validate() error {
	if len(strings.TrimSpace(l.Name)) == 0 {
		return ErrEmptyName
	}
	if l.Total.IsNegative() || l.Total.IsZero() {
		return ErrInvalidAmount
	}
	if l.Paid.IsNegative() {
		return ErrInvalidAmount
	}
	if l.Paid.GreaterThan(l.Total) {
		return ErrPaidOverTotal
	}
	if l.Duration <= 0 {
		return ErrInvalidDuration
	}
	if !validFrequency(l.Frequency, FreqWeekly, FreqFortnightly, FreqMonthly,
		FreqBimonthly, FreqQuarterly, FreqSemiannual, FreqAnnual) {
		return ErrInvalidFrequency
	}
	if l.StartDate.IsZero() {
		return ErrInvalidDate
	}
	return nil
}

func (c CreditCard) Validate() error {
	if len(strings.TrimSpace(c.Bank)) == 0 && len(strings.TrimSpace(c.CardName)) == 0 {
		return ErrEmptyName
	}
	if c.CreditLimit.IsNegative() || c.CurrentDebt.IsNegative() || c.MinPayment.IsNegative() {
		return ErrInvalidAmount
	}
	if c.PaymentDate.IsZero() {
		return ErrInvalidDate
	}
	if !validFrequency(c.Frequency, FreqMonthly, FreqFortnightly) {
		return ErrInvalidFrequency
	}
	if c.Status != CardActive && c.Status != CardInactive {
		return ErrInvalidStatus
	}
	return nil
}

func (g Goal) Validate() error {
	if len(strings.TrimSpace(g.Name)) == 0 {
		return ErrEmptyName
	}
	if g.TargetAmount.IsNegative() || g.TargetAmount.IsZero() {
		return ErrInvalidAmount
	}
	if g.CurrentAmount.IsNegative() {
		return ErrInvalidAmount
	}
	return nil
}

// Progress returns the goal completion percentage, uncapped: an overfunded
// goal reports more than 100.
func (g Goal) Progress() decimal.Decimal {
	if g.TargetAmount.IsZero() {
		return decimal.Zero
	}
	return g.CurrentAmount.Div(g.TargetAmount).Mul(decimal.NewFromInt(100))
}

// AllLoans returns the modern and legacy loan collections as one slice.
func (s FinanceState) AllLoans() []Loan {
	out := make([]Loan, 0, len(s.Loans)+len(s.Debts))
	out = append(out, s.Loans...)
	out = append(out, s.Debts...)
	return out
}
