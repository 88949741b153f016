// Package google exports the projected-payment report to a Google Sheets
// tab, clearing and rewriting it on every export.
package google

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"

	"github.com/EedwinGglez11/dinaree/internal/core"
	ports "github.com/EedwinGglez11/dinaree/internal/sheets"
)

type Client struct {
	svc           *gsheet.Service
	spreadsheetID string
	sheetName     string
}

var _ ports.ReportWriter = (*Client)(nil)

// New builds a sheets client. Credentials come from an explicit service
// account file or JSON blob when given, otherwise Application Default
// Credentials.
func New(ctx context.Context, spreadsheetID, sheetName, credentialsFile, credentialsJSON string) (*Client, error) {
	if spreadsheetID == "" {
		return nil, errors.New("missing spreadsheet ID")
	}
	if sheetName == "" {
		sheetName = "Reporte"
	}

	var opts []goption.ClientOption
	opts = append(opts, goption.WithScopes(gsheet.SpreadsheetsScope))
	switch {
	case credentialsJSON != "":
		opts = append(opts, goption.WithCredentialsJSON([]byte(credentialsJSON)))
	case credentialsFile != "":
		opts = append(opts, goption.WithCredentialsFile(credentialsFile))
	}

	svc, err := gsheet.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("sheets service: %w", err)
	}

	return &Client{
		svc:           svc,
		spreadsheetID: spreadsheetID,
		sheetName:     sheetName,
	}, nil
}

var reportHeader = []interface{}{"Fecha", "Tipo", "Nombre", "Monto", "Categoría"}

// WriteReport clears the report tab and writes the header plus one row per
// projected payment.
func (c *Client) WriteReport(ctx context.Context, rows []core.ReportRow) error {
	cctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	clearRange := fmt.Sprintf("%s!A:E", c.sheetName)
	if _, err := c.svc.Spreadsheets.Values.
		Clear(c.spreadsheetID, clearRange, &gsheet.ClearValuesRequest{}).
		Context(cctx).Do(); err != nil {
		return fmt.Errorf("clear report range: %w", err)
	}

	values := make([][]interface{}, 0, len(rows)+1)
	values = append(values, reportHeader)
	for _, r := range rows {
		amount, _ := r.Amount.Float64()
		values = append(values, []interface{}{
			r.Date.Format("2006-01-02"),
			r.Type,
			r.Name,
			amount,
			r.Category,
		})
	}

	writeRange := fmt.Sprintf("%s!A1", c.sheetName)
	if _, err := c.svc.Spreadsheets.Values.
		Update(c.spreadsheetID, writeRange, &gsheet.ValueRange{Values: values}).
		ValueInputOption("RAW").
		Context(cctx).Do(); err != nil {
		return fmt.Errorf("write report rows: %w", err)
	}

	slog.InfoContext(ctx, "Report exported to Google Sheets",
		"spreadsheet_id", c.spreadsheetID,
		"sheet", c.sheetName,
		"rows", len(rows))

	return nil
}
