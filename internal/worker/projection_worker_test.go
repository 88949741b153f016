package worker

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/EedwinGglez11/dinaree/internal/amqp"
	"github.com/EedwinGglez11/dinaree/internal/core"
	"github.com/EedwinGglez11/dinaree/internal/sheets/memory"
)

type stubLoader struct {
	state core.FinanceState
	err   error
	calls int
}

func (s *stubLoader) LoadState(context.Context) (core.FinanceState, error) {
	s.calls++
	return s.state, s.err
}

func testState(version int64) core.FinanceState {
	amount, _ := decimal.NewFromString("250")
	return core.FinanceState{
		Version: version,
		Expenses: []core.Expense{{
			ID:          "e1",
			Amount:      amount,
			Category:    "Servicios",
			Description: "Internet",
			Date:        time.Date(2099, 1, 15, 0, 0, 0, 0, time.UTC),
			Frequency:   core.FreqOnce,
		}},
	}
}

func TestRecomputeAndExport(t *testing.T) {
	loader := &stubLoader{state: testState(3)}
	sink := memory.NewStore()
	w := NewProjectionWorker(loader, sink)

	rows, err := w.RecomputeAndExport(context.Background(), time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("RecomputeAndExport() error = %v", err)
	}
	if rows != 1 {
		t.Errorf("rows = %d, want 1", rows)
	}
	if sink.Writes() != 1 {
		t.Errorf("sink writes = %d, want 1", sink.Writes())
	}
	got := sink.Rows()
	if len(got) != 1 || got[0].Name != "Internet" {
		t.Errorf("exported rows = %v, want the projected expense", got)
	}
}

func TestRecomputeAndExport_LoadError(t *testing.T) {
	loadErr := errors.New("disk on fire")
	loader := &stubLoader{err: loadErr}
	w := NewProjectionWorker(loader, memory.NewStore())

	if _, err := w.RecomputeAndExport(context.Background(), time.Now()); !errors.Is(err, loadErr) {
		t.Errorf("RecomputeAndExport() error = %v, want wrapped load error", err)
	}
}

func TestRecomputeAndExport_NilWriter(t *testing.T) {
	loader := &stubLoader{state: testState(1)}
	w := NewProjectionWorker(loader, nil)

	if _, err := w.RecomputeAndExport(context.Background(), time.Now()); err != nil {
		t.Errorf("RecomputeAndExport() with nil writer error = %v", err)
	}
}

func TestHandleStateChanged_SkipsStaleEvents(t *testing.T) {
	loader := &stubLoader{state: testState(5)}
	sink := memory.NewStore()
	w := NewProjectionWorker(loader, sink)

	// First event projects version 5.
	if err := w.HandleStateChanged(context.Background(), amqp.NewStateChangedMessage("expenses", "e1", 5)); err != nil {
		t.Fatalf("HandleStateChanged() error = %v", err)
	}
	if sink.Writes() != 1 {
		t.Fatalf("writes = %d, want 1", sink.Writes())
	}

	// A replayed event for the same version must be acknowledged without work.
	if err := w.HandleStateChanged(context.Background(), amqp.NewStateChangedMessage("expenses", "e1", 5)); err != nil {
		t.Fatalf("HandleStateChanged() stale error = %v", err)
	}
	if sink.Writes() != 1 {
		t.Errorf("writes = %d after stale event, want still 1", sink.Writes())
	}

	// A newer version triggers a recompute.
	loader.state = testState(6)
	if err := w.HandleStateChanged(context.Background(), amqp.NewStateChangedMessage("expenses", "e2", 6)); err != nil {
		t.Fatalf("HandleStateChanged() error = %v", err)
	}
	if sink.Writes() != 2 {
		t.Errorf("writes = %d, want 2", sink.Writes())
	}
}

func TestRun_TickerRecomputes(t *testing.T) {
	loader := &stubLoader{state: testState(1)}
	sink := memory.NewStore()
	w := NewProjectionWorker(loader, sink)

	ctx, cancel := context.WithTimeout(context.Background(), 80*time.Millisecond)
	defer cancel()

	if err := w.Run(ctx, nil, 20*time.Millisecond); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if sink.Writes() == 0 {
		t.Error("expected at least one periodic export")
	}
}
