package http

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/shopspring/decimal"

	"github.com/EedwinGglez11/dinaree/internal/core"
	"github.com/EedwinGglez11/dinaree/internal/project"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Failed to encode JSON response", "error", err)
	}
}

func errorJSON(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func fmtDate(t time.Time) string { return t.Format(dateLayout) }

func fmtDatePtr(t *time.Time) string {
	if t == nil {
		return ""
	}
	return fmtDate(*t)
}

// Response bodies keep amounts as JSON numbers (decimal.Decimal marshals
// without quotes) and dates as YYYY-MM-DD strings, empty when absent.
type (
	incomeResponse struct {
		ID        string          `json:"id"`
		Amount    decimal.Decimal `json:"amount"`
		Date      string          `json:"date"`
		Frequency string          `json:"frequency"`
		EndDate   string          `json:"endDate,omitempty"`
		Source    string          `json:"source,omitempty"`
		Company   string          `json:"company,omitempty"`
	}

	expenseResponse struct {
		ID              string          `json:"id"`
		Amount          decimal.Decimal `json:"amount"`
		Category        string          `json:"category"`
		Description     string          `json:"description"`
		Date            string          `json:"date"`
		Frequency       string          `json:"frequency"`
		EndDate         string          `json:"endDate,omitempty"`
		NextPaymentDate string          `json:"nextPaymentDate,omitempty"`
	}

	loanResponse struct {
		ID              string          `json:"id"`
		Name            string          `json:"name"`
		Total           decimal.Decimal `json:"total"`
		Paid            decimal.Decimal `json:"paid"`
		Duration        int             `json:"duration"`
		Frequency       string          `json:"frequency"`
		StartDate       string          `json:"startDate"`
		LastPaymentDate string          `json:"lastPaymentDate,omitempty"`
		Category        string          `json:"category,omitempty"`
		Legacy          bool            `json:"legacy,omitempty"`
	}

	cardResponse struct {
		ID           string          `json:"id"`
		Bank         string          `json:"bank"`
		CardName     string          `json:"cardName"`
		Last4Digits  string          `json:"last4Digits,omitempty"`
		CreditLimit  decimal.Decimal `json:"creditLimit"`
		CurrentDebt  decimal.Decimal `json:"currentDebt"`
		MinPayment   decimal.Decimal `json:"minPayment"`
		CutDate      string          `json:"cutDate,omitempty"`
		PaymentDate  string          `json:"paymentDate"`
		InterestRate decimal.Decimal `json:"interestRate"`
		Frequency    string          `json:"frequency"`
		Status       string          `json:"status"`
	}

	goalResponse struct {
		ID            string          `json:"id"`
		Name          string          `json:"name"`
		TargetAmount  decimal.Decimal `json:"targetAmount"`
		CurrentAmount decimal.Decimal `json:"currentAmount"`
		Deadline      string          `json:"deadline,omitempty"`
		Progress      decimal.Decimal `json:"progress"`
	}

	// mutationResponse confirms a write and carries the new state version.
	mutationResponse struct {
		ID      string `json:"id"`
		Version int64  `json:"version"`
	}

	paymentEventResponse struct {
		ID          string          `json:"id"`
		Type        string          `json:"type"`
		Name        string          `json:"name"`
		Amount      decimal.Decimal `json:"amount"`
		DueDate     string          `json:"dueDate"`
		PaymentType string          `json:"paymentType"`
	}

	// chartDataset is the {label, data} shape the frontend charts consume.
	chartDataset struct {
		Label string            `json:"label"`
		Data  []decimal.Decimal `json:"data"`
	}

	projectionResponse struct {
		Labels   []string       `json:"labels"`
		Datasets []chartDataset `json:"datasets"`
	}

	categoriesResponse struct {
		Labels []string          `json:"labels"`
		Values []decimal.Decimal `json:"values"`
	}

	upcomingResponse struct {
		Filter string                     `json:"filter"`
		Start  string                     `json:"start,omitempty"`
		End    string                     `json:"end,omitempty"`
		Total  decimal.Decimal            `json:"total"`
		ByType map[string]decimal.Decimal `json:"byType,omitempty"`
		Events []paymentEventResponse     `json:"events"`
	}

	goalProgress struct {
		ID       string          `json:"id"`
		Name     string          `json:"name"`
		Progress decimal.Decimal `json:"progress"`
	}

	summaryResponse struct {
		Month        string                     `json:"month"`
		TotalDue     decimal.Decimal            `json:"totalDue"`
		ByType       map[string]decimal.Decimal `json:"byType"`
		Income       decimal.Decimal            `json:"income"`
		Savings      decimal.Decimal            `json:"savings"`
		Goals        []goalProgress             `json:"goals"`
		StateVersion int64                      `json:"stateVersion"`
	}

	reportRowResponse struct {
		Date     string          `json:"date"`
		Type     string          `json:"type"`
		Name     string          `json:"name"`
		Amount   decimal.Decimal `json:"amount"`
		Category string          `json:"category"`
	}
)

func newIncomeResponse(in core.Income) incomeResponse {
	return incomeResponse{
		ID:        in.ID,
		Amount:    in.Amount,
		Date:      fmtDate(in.Date),
		Frequency: string(in.Frequency),
		EndDate:   fmtDatePtr(in.EndDate),
		Source:    in.Source,
		Company:   in.Company,
	}
}

func newExpenseResponse(e core.Expense) expenseResponse {
	return expenseResponse{
		ID:              e.ID,
		Amount:          e.Amount,
		Category:        e.Category,
		Description:     e.Description,
		Date:            fmtDate(e.Date),
		Frequency:       string(e.Frequency),
		EndDate:         fmtDatePtr(e.EndDate),
		NextPaymentDate: fmtDatePtr(e.NextPaymentDate),
	}
}

func newLoanResponse(l core.Loan, legacy bool) loanResponse {
	return loanResponse{
		ID:              l.ID,
		Name:            l.Name,
		Total:           l.Total,
		Paid:            l.Paid,
		Duration:        l.Duration,
		Frequency:       string(l.Frequency),
		StartDate:       fmtDate(l.StartDate),
		LastPaymentDate: fmtDatePtr(l.LastPaymentDate),
		Category:        l.Category,
		Legacy:          legacy,
	}
}

func newCardResponse(c core.CreditCard) cardResponse {
	return cardResponse{
		ID:           c.ID,
		Bank:         c.Bank,
		CardName:     c.CardName,
		Last4Digits:  c.Last4Digits,
		CreditLimit:  c.CreditLimit,
		CurrentDebt:  c.CurrentDebt,
		MinPayment:   c.MinPayment,
		CutDate:      fmtDatePtr(c.CutDate),
		PaymentDate:  fmtDate(c.PaymentDate),
		InterestRate: c.InterestRate,
		Frequency:    string(c.Frequency),
		Status:       string(c.Status),
	}
}

func newGoalResponse(g core.Goal) goalResponse {
	resp := goalResponse{
		ID:            g.ID,
		Name:          g.Name,
		TargetAmount:  g.TargetAmount,
		CurrentAmount: g.CurrentAmount,
		Progress:      g.Progress(),
	}
	if !g.Deadline.IsZero() {
		resp.Deadline = fmtDate(g.Deadline)
	}
	return resp
}

func newPaymentEventResponse(ev core.PaymentEvent) paymentEventResponse {
	return paymentEventResponse{
		ID:          ev.ID,
		Type:        string(ev.Type),
		Name:        ev.Name,
		Amount:      ev.Amount,
		DueDate:     fmtDate(ev.DueDate),
		PaymentType: ev.PaymentType,
	}
}

func newProjectionResponse(s project.Series) projectionResponse {
	return projectionResponse{
		Labels: s.Labels,
		Datasets: []chartDataset{
			{Label: "Ingresos", Data: s.Income},
			{Label: "Préstamos", Data: s.LoanPayments},
			{Label: "Tarjetas", Data: s.CardPayments},
			{Label: "Ahorro", Data: s.Savings},
		},
	}
}

func byTypeResponse(byType map[core.EventType]decimal.Decimal) map[string]decimal.Decimal {
	out := make(map[string]decimal.Decimal, len(byType))
	for k, v := range byType {
		out[string(k)] = v
	}
	return out
}
