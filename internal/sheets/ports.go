// Package sheets defines the outbound port for report export.
package sheets

import (
	"context"

	"github.com/EedwinGglez11/dinaree/internal/core"
)

// ReportWriter receives the flat projected-payment report. Implementations
// own formatting and destination; the engine only produces rows.
type ReportWriter interface {
	WriteReport(ctx context.Context, rows []core.ReportRow) error
}
