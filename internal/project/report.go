package project

import (
	"time"

	"github.com/EedwinGglez11/dinaree/internal/core"
)

// ReportRows flattens the projected payment schedule into the tabular shape
// the export collaborator consumes: one row per upcoming payment with its
// source record's category attached. Amounts are rounded to two decimals at
// this boundary.
func ReportRows(state core.FinanceState, now time.Time) []core.ReportRow {
	categories := make(map[string]string)
	for _, e := range state.Expenses {
		categories[e.ID] = core.NormalizeCategory(e.Category)
	}
	for _, l := range state.AllLoans() {
		categories[l.ID] = l.Category
	}

	events := UpcomingPayments(state, now)
	rows := make([]core.ReportRow, 0, len(events))
	for _, ev := range events {
		rows = append(rows, core.ReportRow{
			Date:     ev.DueDate,
			Type:     string(ev.Type),
			Name:     ev.Name,
			Amount:   ev.Amount.Round(2),
			Category: categories[ev.ID],
		})
	}
	return rows
}
