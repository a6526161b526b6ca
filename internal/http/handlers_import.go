package http

import (
	"context"
	"errors"
	"net/http"
	"sync/atomic"

	applog "vibebudget/internal/log"
	"vibebudget/internal/ingest"
	"vibebudget/internal/services"
)

// maxUploadBytes bounds statement uploads. Bank exports are small; anything
// bigger than this is not a statement.
const maxUploadBytes = 16 << 20

// ImportSource supplies statement rows from somewhere other than an upload,
// like a connected spreadsheet.
type ImportSource interface {
	Rows(ctx context.Context) ([]ingest.RawRow, error)
}

// handleImport accepts a multipart statement upload and runs the full
// pipeline. Fields: "file" (required), "bank" (optional display name).
// Partial success returns 201 with the skipped rows listed; only structural
// failures reject the upload as a whole.
func (s *Server) handleImport(w http.ResponseWriter, r *http.Request, userID string) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		BadRequestError("expected multipart form with a 'file' field").Write(w)
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		BadRequestError("missing 'file' field").Write(w)
		return
	}
	defer file.Close()

	bankName := sanitizeInput(r.FormValue("bank"))

	result, err := s.imports.ImportFile(r.Context(), userID, bankName, header.Filename, file)
	if err != nil {
		s.writeImportError(w, r, userID, err)
		return
	}
	s.writeImportResult(w, r, userID, result)
}

// handleSheetImport pulls rows from the configured spreadsheet source and
// runs them through the same pipeline as an upload. Optional "bank" query
// parameter names the bank.
func (s *Server) handleSheetImport(w http.ResponseWriter, r *http.Request, userID string) {
	if s.sheetSource == nil {
		ErrorResponse(http.StatusServiceUnavailable, "no spreadsheet source configured").Write(w)
		return
	}

	rows, err := s.sheetSource.Rows(r.Context())
	if err != nil {
		s.logger.ErrorContext(r.Context(), "Spreadsheet fetch failed",
			applog.FieldUserID, userID,
			applog.FieldError, err)
		ErrorResponse(http.StatusBadGateway, "spreadsheet fetch failed").Write(w)
		return
	}

	bankName := sanitizeInput(r.URL.Query().Get("bank"))
	result, err := s.imports.ImportRows(r.Context(), userID, bankName, rows)
	if err != nil {
		s.writeImportError(w, r, userID, err)
		return
	}
	s.writeImportResult(w, r, userID, result)
}

func (s *Server) writeImportError(w http.ResponseWriter, r *http.Request, userID string, err error) {
	switch {
	case ingest.IsStructural(err):
		BadRequestError(err.Error()).Write(w)
	case errors.Is(err, ingest.ErrNoTransactions):
		UnprocessableEntityError(err.Error()).Write(w)
	default:
		s.logger.ErrorContext(r.Context(), "Import failed",
			applog.FieldUserID, userID,
			applog.FieldError, err)
		InternalServerError("import failed").Write(w)
	}
}

func (s *Server) writeImportResult(w http.ResponseWriter, r *http.Request, userID string, result *services.ImportResult) {
	atomic.AddInt64(&s.metrics.importsTotal, 1)
	atomic.AddInt64(&s.metrics.rowsImported, int64(len(result.Transactions)))
	atomic.AddInt64(&s.metrics.rowsSkipped, int64(len(result.Skipped)))

	s.structured.LogImportCompleted(r.Context(), userID, result.RowCount, len(result.Transactions), result.Categorized, len(result.Skipped))

	// New transactions invalidate every cached report of this user.
	s.reports.Invalidate(userID)

	resp := importResponse{
		Rows:        result.RowCount,
		Imported:    len(result.Transactions),
		Categorized: result.Categorized,
		Skipped:     make([]skipJSON, 0, len(result.Skipped)),
		Flagged:     make([]skipJSON, 0, len(result.Flagged)),
	}
	for _, skip := range result.Skipped {
		resp.Skipped = append(resp.Skipped, skipJSON{Row: skip.Row, Reason: skip.Reason})
	}
	for _, flag := range result.Flagged {
		resp.Flagged = append(resp.Flagged, skipJSON{Row: flag.Row, Reason: flag.Reason})
	}

	NewJSONResponse().Status(http.StatusCreated).Payload(resp).Write(w)
}
