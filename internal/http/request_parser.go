package http

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/EedwinGglez11/dinaree/internal/core"
)

const dateLayout = "2006-01-02"

// Request bodies carry amounts and dates as strings: amounts accept both
// decimal separators, dates are plain YYYY-MM-DD.
type (
	incomeRequest struct {
		Amount    string `json:"amount"`
		Date      string `json:"date"`
		Frequency string `json:"frequency"`
		EndDate   string `json:"endDate,omitempty"`
		Source    string `json:"source,omitempty"`
		Company   string `json:"company,omitempty"`
	}

	expenseRequest struct {
		Amount          string `json:"amount"`
		Category        string `json:"category"`
		Description     string `json:"description"`
		Date            string `json:"date"`
		Frequency       string `json:"frequency"`
		EndDate         string `json:"endDate,omitempty"`
		NextPaymentDate string `json:"nextPaymentDate,omitempty"`
	}

	loanRequest struct {
		Name            string `json:"name"`
		Total           string `json:"total"`
		Paid            string `json:"paid"`
		Duration        int    `json:"duration"`
		Frequency       string `json:"frequency"`
		StartDate       string `json:"startDate"`
		LastPaymentDate string `json:"lastPaymentDate,omitempty"`
		Category        string `json:"category,omitempty"`
	}

	cardRequest struct {
		Bank         string `json:"bank"`
		CardName     string `json:"cardName"`
		Last4Digits  string `json:"last4Digits,omitempty"`
		CreditLimit  string `json:"creditLimit"`
		CurrentDebt  string `json:"currentDebt"`
		MinPayment   string `json:"minPayment"`
		CutDate      string `json:"cutDate,omitempty"`
		PaymentDate  string `json:"paymentDate"`
		InterestRate string `json:"interestRate,omitempty"`
		Frequency    string `json:"frequency"`
		Status       string `json:"status"`
	}

	goalRequest struct {
		Name          string `json:"name"`
		TargetAmount  string `json:"targetAmount"`
		CurrentAmount string `json:"currentAmount"`
		Deadline      string `json:"deadline,omitempty"`
	}
)

func decodeJSON(r *http.Request, dst any) error {
	body := http.MaxBytesReader(nil, r.Body, 1<<20)
	defer func() { _, _ = io.Copy(io.Discard, body) }()

	dec := json.NewDecoder(body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return fmt.Errorf("invalid JSON body: %w", err)
	}
	return nil
}

func parseDate(field, s string) (time.Time, error) {
	t, err := time.Parse(dateLayout, strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid %s %q: expected YYYY-MM-DD", field, s)
	}
	return t, nil
}

func parseDatePtr(field, s string) (*time.Time, error) {
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}
	t, err := parseDate(field, s)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (req incomeRequest) toIncome() (core.Income, error) {
	amount, err := core.ParseAmount(req.Amount)
	if err != nil {
		return core.Income{}, fmt.Errorf("invalid amount %q: %w", req.Amount, err)
	}
	date, err := parseDate("date", req.Date)
	if err != nil {
		return core.Income{}, err
	}
	endDate, err := parseDatePtr("endDate", req.EndDate)
	if err != nil {
		return core.Income{}, err
	}

	in := core.Income{
		Kind:      core.KindIncome,
		Amount:    amount,
		Date:      date,
		Frequency: core.Frequency(req.Frequency),
		EndDate:   endDate,
		Source:    strings.TrimSpace(req.Source),
		Company:   strings.TrimSpace(req.Company),
	}
	return in, in.Validate()
}

func (req expenseRequest) toExpense() (core.Expense, error) {
	amount, err := core.ParseAmount(req.Amount)
	if err != nil {
		return core.Expense{}, fmt.Errorf("invalid amount %q: %w", req.Amount, err)
	}
	date, err := parseDate("date", req.Date)
	if err != nil {
		return core.Expense{}, err
	}
	endDate, err := parseDatePtr("endDate", req.EndDate)
	if err != nil {
		return core.Expense{}, err
	}
	nextPayment, err := parseDatePtr("nextPaymentDate", req.NextPaymentDate)
	if err != nil {
		return core.Expense{}, err
	}

	e := core.Expense{
		Kind:            core.KindExpense,
		Amount:          amount,
		Category:        core.NormalizeCategory(req.Category),
		Description:     strings.TrimSpace(req.Description),
		Date:            date,
		Frequency:       core.Frequency(req.Frequency),
		EndDate:         endDate,
		NextPaymentDate: nextPayment,
	}
	return e, e.Validate()
}

func (req loanRequest) toLoan() (core.Loan, error) {
	total, err := core.ParseAmount(req.Total)
	if err != nil {
		return core.Loan{}, fmt.Errorf("invalid total %q: %w", req.Total, err)
	}
	// Paid may legitimately be zero, so it skips ParseAmount's positivity check.
	paid := core.SafeAmount(req.Paid)
	startDate, err := parseDate("startDate", req.StartDate)
	if err != nil {
		return core.Loan{}, err
	}
	lastPayment, err := parseDatePtr("lastPaymentDate", req.LastPaymentDate)
	if err != nil {
		return core.Loan{}, err
	}

	l := core.Loan{
		Kind:            core.KindLoan,
		Name:            strings.TrimSpace(req.Name),
		Total:           total,
		Paid:            paid,
		Duration:        req.Duration,
		Frequency:       core.Frequency(req.Frequency),
		StartDate:       startDate,
		LastPaymentDate: lastPayment,
		Category:        core.NormalizeCategory(req.Category),
	}
	return l, l.Validate()
}

func (req cardRequest) toCreditCard() (core.CreditCard, error) {
	paymentDate, err := parseDate("paymentDate", req.PaymentDate)
	if err != nil {
		return core.CreditCard{}, err
	}
	cutDate, err := parseDatePtr("cutDate", req.CutDate)
	if err != nil {
		return core.CreditCard{}, err
	}

	c := core.CreditCard{
		Kind:         core.KindCreditCard,
		Bank:         strings.TrimSpace(req.Bank),
		CardName:     strings.TrimSpace(req.CardName),
		Last4Digits:  strings.TrimSpace(req.Last4Digits),
		CreditLimit:  core.SafeAmount(req.CreditLimit),
		CurrentDebt:  core.SafeAmount(req.CurrentDebt),
		MinPayment:   core.SafeAmount(req.MinPayment),
		CutDate:      cutDate,
		PaymentDate:  paymentDate,
		InterestRate: core.SafeAmount(req.InterestRate),
		Frequency:    core.Frequency(req.Frequency),
		Status:       core.CardStatus(req.Status),
	}
	return c, c.Validate()
}

func (req goalRequest) toGoal() (core.Goal, error) {
	target, err := core.ParseAmount(req.TargetAmount)
	if err != nil {
		return core.Goal{}, fmt.Errorf("invalid targetAmount %q: %w", req.TargetAmount, err)
	}
	current := core.SafeAmount(req.CurrentAmount)

	g := core.Goal{
		Kind:          core.KindGoal,
		Name:          strings.TrimSpace(req.Name),
		TargetAmount:  target,
		CurrentAmount: current,
	}
	if strings.TrimSpace(req.Deadline) != "" {
		deadline, err := parseDate("deadline", req.Deadline)
		if err != nil {
			return core.Goal{}, err
		}
		g.Deadline = deadline
	}
	return g, g.Validate()
}
