// Package memory holds report rows in memory. Used in tests and when no
// spreadsheet is configured, so the worker pipeline stays exercisable
// without Google credentials.
package memory

import (
	"context"
	"sync"

	"github.com/EedwinGglez11/dinaree/internal/core"
)

type Store struct {
	mu     sync.Mutex
	rows   []core.ReportRow
	writes int
}

func NewStore() *Store {
	return &Store{}
}

// WriteReport replaces the stored report with the given rows.
func (s *Store) WriteReport(_ context.Context, rows []core.ReportRow) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rows = append([]core.ReportRow(nil), rows...)
	s.writes++
	return nil
}

// Rows returns a copy of the last written report.
func (s *Store) Rows() []core.ReportRow {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]core.ReportRow(nil), s.rows...)
}

// Writes returns how many reports have been written.
func (s *Store) Writes() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.writes
}
