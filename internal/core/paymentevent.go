package core

import (
	"time"

	"github.com/shopspring/decimal"
)

// EventType classifies a projected payment. Values match the labels the
// original application stored.
type EventType string

const (
	EventExpense EventType = "gasto"
	EventLoan    EventType = "préstamo"
	EventCard    EventType = "tarjeta"
)

// PaymentEvent is a single due payment derived from an obligation record.
// Events are produced fresh on every projection request and never persisted.
type PaymentEvent struct {
	ID          string
	Type        EventType
	Name        string
	Amount      decimal.Decimal
	DueDate     time.Time
	PaymentType string
}

// ReportRow is one line of the flat tabular projection handed to the
// export collaborator.
type ReportRow struct {
	Date     time.Time
	Type     string
	Name     string
	Amount   decimal.Decimal
	Category string
}
