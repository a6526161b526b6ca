package http

import (
	"net/http"

	applog "vibebudget/internal/log"
)

// handlePivotReport returns the category × month expense matrix for an
// optional inclusive date range.
func (s *Server) handlePivotReport(w http.ResponseWriter, r *http.Request, userID string) {
	rng, err := ParseRangeParams(r.URL.Query())
	if err != nil {
		BadRequestError(err.Error()).Write(w)
		return
	}

	pivot, err := s.reports.Pivot(r.Context(), userID, rng.From, rng.To)
	if err != nil {
		s.logger.ErrorContext(r.Context(), "Pivot report failed",
			applog.FieldUserID, userID,
			applog.FieldError, err)
		InternalServerError("report failed").Write(w)
		return
	}

	NewJSONResponse().Payload(toPivotJSON(pivot)).Write(w)
}

// handleStatsReport returns headline totals for an optional date range.
func (s *Server) handleStatsReport(w http.ResponseWriter, r *http.Request, userID string) {
	rng, err := ParseRangeParams(r.URL.Query())
	if err != nil {
		BadRequestError(err.Error()).Write(w)
		return
	}

	summary, err := s.reports.Stats(r.Context(), userID, rng.From, rng.To)
	if err != nil {
		s.logger.ErrorContext(r.Context(), "Stats report failed",
			applog.FieldUserID, userID,
			applog.FieldError, err)
		InternalServerError("report failed").Write(w)
		return
	}

	NewJSONResponse().Payload(toSummaryJSON(summary)).Write(w)
}
