package memory

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/EedwinGglez11/dinaree/internal/core"
)

func TestStore_WriteReportReplaces(t *testing.T) {
	s := NewStore()
	ctx := context.Background()

	row := func(name string) core.ReportRow {
		return core.ReportRow{
			Date:   time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC),
			Type:   "gasto",
			Name:   name,
			Amount: decimal.NewFromInt(100),
		}
	}

	if err := s.WriteReport(ctx, []core.ReportRow{row("a"), row("b")}); err != nil {
		t.Fatalf("WriteReport() error = %v", err)
	}
	if err := s.WriteReport(ctx, []core.ReportRow{row("c")}); err != nil {
		t.Fatalf("WriteReport() error = %v", err)
	}

	rows := s.Rows()
	if len(rows) != 1 || rows[0].Name != "c" {
		t.Errorf("Rows() = %v, want the last written report only", rows)
	}
	if s.Writes() != 2 {
		t.Errorf("Writes() = %d, want 2", s.Writes())
	}
}

func TestStore_RowsReturnsCopy(t *testing.T) {
	s := NewStore()
	_ = s.WriteReport(context.Background(), []core.ReportRow{{Name: "x"}})

	rows := s.Rows()
	rows[0].Name = "mutated"

	if s.Rows()[0].Name != "x" {
		t.Error("Rows() must return a copy, not the internal slice")
	}
}
