// Package worker recomputes the payment projection whenever the finance
// state changes and pushes the resulting report to the export sink. It is
// driven by state-changed events when a broker is configured and by a
// periodic ticker either way.
package worker

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/EedwinGglez11/dinaree/internal/amqp"
	"github.com/EedwinGglez11/dinaree/internal/core"
	"github.com/EedwinGglez11/dinaree/internal/project"
	"github.com/EedwinGglez11/dinaree/internal/sheets"
)

// StateLoader is the slice of the storage layer the worker needs.
type StateLoader interface {
	LoadState(ctx context.Context) (core.FinanceState, error)
}

type ProjectionWorker struct {
	store  StateLoader
	writer sheets.ReportWriter

	mu          sync.Mutex
	lastVersion int64
}

func NewProjectionWorker(store StateLoader, writer sheets.ReportWriter) *ProjectionWorker {
	return &ProjectionWorker{
		store:  store,
		writer: writer,
	}
}

// RecomputeAndExport loads a fresh snapshot, projects the payment
// schedule, and hands the report rows to the export sink. Returns the
// number of rows exported.
func (w *ProjectionWorker) RecomputeAndExport(ctx context.Context, now time.Time) (int, error) {
	state, err := w.store.LoadState(ctx)
	if err != nil {
		return 0, fmt.Errorf("load finance state: %w", err)
	}

	rows := project.ReportRows(state, now)

	if w.writer != nil {
		if err := w.writer.WriteReport(ctx, rows); err != nil {
			return 0, fmt.Errorf("export report: %w", err)
		}
	}

	w.mu.Lock()
	if state.Version > w.lastVersion {
		w.lastVersion = state.Version
	}
	w.mu.Unlock()

	slog.InfoContext(ctx, "Projection recomputed",
		"state_version", state.Version,
		"report_rows", len(rows))

	return len(rows), nil
}

// seenVersion returns the highest state version already projected.
func (w *ProjectionWorker) seenVersion() int64 {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.lastVersion
}

// HandleStateChanged reacts to one state-changed event. Events at or below
// the last projected version are stale and acknowledged without work.
func (w *ProjectionWorker) HandleStateChanged(ctx context.Context, msg *amqp.StateChangedMessage) error {
	if msg.Version <= w.seenVersion() {
		slog.DebugContext(ctx, "Skipping stale state-changed event",
			"event_version", msg.Version,
			"seen_version", w.seenVersion())
		return nil
	}

	_, err := w.RecomputeAndExport(ctx, time.Now())
	return err
}

// Run drives the worker until the context ends: one goroutine consumes
// state-changed events when a broker client is available, another
// recomputes on the interval as a catch-all.
func (w *ProjectionWorker) Run(ctx context.Context, client *amqp.Client, interval time.Duration) error {
	g, ctx := errgroup.WithContext(ctx)

	if client != nil {
		g.Go(func() error {
			err := client.ConsumeStateChanged(ctx, func(msg *amqp.StateChangedMessage) error {
				return w.HandleStateChanged(ctx, msg)
			})
			if err != nil && ctx.Err() != nil {
				return nil // normal shutdown
			}
			return err
		})
	}

	g.Go(func() error {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return nil
			case now := <-ticker.C:
				if _, err := w.RecomputeAndExport(ctx, now); err != nil {
					slog.ErrorContext(ctx, "Periodic projection failed", "error", err)
				}
			}
		}
	})

	return g.Wait()
}
