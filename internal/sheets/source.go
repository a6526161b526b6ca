// Package sheets pulls statement rows from a Google Sheets spreadsheet, for
// users who track transactions in a sheet instead of uploading bank exports.
// The sheet is read like any other statement: first row headers, then data,
// through the same column detection as CSV uploads.
package sheets

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"

	"vibebudget/internal/ingest"
)

// Source reads one spreadsheet range as statement rows.
type Source struct {
	svc           *gsheet.Service
	spreadsheetID string
	readRange     string
}

// NewFromEnv creates a Source using environment variables.
// Required: GOOGLE_SPREADSHEET_ID.
// Optional: GOOGLE_SHEET_RANGE (default "Transactions"), and service account
// credentials via GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE,
// or GOOGLE_APPLICATION_CREDENTIALS.
func NewFromEnv(ctx context.Context) (*Source, error) {
	spreadsheetID := strings.TrimSpace(os.Getenv("GOOGLE_SPREADSHEET_ID"))
	if spreadsheetID == "" {
		return nil, errors.New("missing GOOGLE_SPREADSHEET_ID")
	}

	readRange := strings.TrimSpace(os.Getenv("GOOGLE_SHEET_RANGE"))
	if readRange == "" {
		readRange = "Transactions"
	}

	svc, err := newSheetsService(ctx)
	if err != nil {
		return nil, fmt.Errorf("sheets service: %w", err)
	}

	return &Source{
		svc:           svc,
		spreadsheetID: spreadsheetID,
		readRange:     readRange,
	}, nil
}

// Rows fetches the configured range and converts it to statement rows.
// UNFORMATTED_VALUE keeps date cells as spreadsheet serial numbers, which
// the date normalizer understands.
func (s *Source) Rows(ctx context.Context) ([]ingest.RawRow, error) {
	resp, err := s.svc.Spreadsheets.Values.Get(s.spreadsheetID, s.readRange).
		ValueRenderOption("UNFORMATTED_VALUE").
		Context(ctx).
		Do()
	if err != nil {
		return nil, fmt.Errorf("read range %q: %w", s.readRange, err)
	}

	rows, err := ingest.RowsFromValues(resp.Values)
	if err != nil {
		return nil, err
	}

	slog.InfoContext(ctx, "Fetched statement rows from spreadsheet",
		"spreadsheet_id", s.spreadsheetID,
		"range", s.readRange,
		"rows", len(rows))
	return rows, nil
}

// newSheetsService initializes a Sheets service from service account
// credentials. Read-only scope: this source never writes back.
func newSheetsService(ctx context.Context) (*gsheet.Service, error) {
	serviceAccountJSON := strings.TrimSpace(os.Getenv("GOOGLE_SERVICE_ACCOUNT_JSON"))
	serviceAccountFile := strings.TrimSpace(os.Getenv("GOOGLE_SERVICE_ACCOUNT_FILE"))
	if serviceAccountJSON == "" && serviceAccountFile == "" {
		serviceAccountFile = strings.TrimSpace(os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"))
	}

	var credentialsJSON []byte
	var err error
	switch {
	case serviceAccountJSON != "":
		credentialsJSON = []byte(serviceAccountJSON)
	case serviceAccountFile != "":
		credentialsJSON, err = os.ReadFile(serviceAccountFile)
		if err != nil {
			return nil, fmt.Errorf("read service account file: %w", err)
		}
	default:
		return nil, errors.New("missing service account credentials (set GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE, or GOOGLE_APPLICATION_CREDENTIALS)")
	}

	service, err := gsheet.NewService(ctx,
		goption.WithCredentialsJSON(credentialsJSON),
		goption.WithScopes(gsheet.SpreadsheetsReadonlyScope))
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}
	return service, nil
}
