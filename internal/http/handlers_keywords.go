package http

import (
	"errors"
	"net/http"
	"strings"

	applog "vibebudget/internal/log"
	"vibebudget/internal/core"
	"vibebudget/internal/storage"
)

func (s *Server) handleListKeywords(w http.ResponseWriter, r *http.Request, userID string) {
	keywords, err := s.keywords.ListKeywords(r.Context(), userID)
	if err != nil {
		InternalServerError("list keywords failed").Write(w)
		return
	}
	out := make([]keywordJSON, 0, len(keywords))
	for _, k := range keywords {
		out = append(out, toKeywordJSON(k))
	}
	NewJSONResponse().Payload(out).Write(w)
}

// handleSaveKeyword creates or repoints a keyword override. Saving the same
// keyword twice updates its category, so POST is effectively an upsert.
func (s *Server) handleSaveKeyword(w http.ResponseWriter, r *http.Request, userID string) {
	var body struct {
		Keyword    string `json:"keyword"`
		CategoryID string `json:"category_id"`
	}
	if err := decodeJSON(w, r, &body); err != nil {
		BadRequestError(err.Error()).Write(w)
		return
	}

	k := core.UserKeyword{
		UserID:     userID,
		Keyword:    sanitizeInput(body.Keyword),
		CategoryID: strings.TrimSpace(body.CategoryID),
	}
	if err := k.Validate(); err != nil {
		UnprocessableEntityError(err.Error()).Write(w)
		return
	}

	saved, err := s.keywords.SaveKeyword(r.Context(), k)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			NotFoundError("category not found").Write(w)
			return
		}
		s.logger.ErrorContext(r.Context(), "Save keyword failed",
			applog.FieldUserID, userID,
			applog.FieldKeyword, k.Keyword,
			applog.FieldError, err)
		InternalServerError("save keyword failed").Write(w)
		return
	}
	NewJSONResponse().Status(http.StatusCreated).Payload(toKeywordJSON(saved)).Write(w)
}

func (s *Server) handleDeleteKeyword(w http.ResponseWriter, r *http.Request, userID string) {
	err := s.keywords.DeleteKeyword(r.Context(), userID, r.PathValue("id"))
	if errors.Is(err, storage.ErrNotFound) {
		NotFoundError("keyword not found").Write(w)
		return
	}
	if err != nil {
		InternalServerError("delete keyword failed").Write(w)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleSuggestKeyword extracts a keyword candidate from a description, so
// the client can prefill the override form. An empty suggestion is a valid
// answer, not an error.
func (s *Server) handleSuggestKeyword(w http.ResponseWriter, r *http.Request, userID string) {
	description := strings.TrimSpace(r.URL.Query().Get("description"))
	if description == "" {
		BadRequestError("missing 'description' query parameter").Write(w)
		return
	}

	NewJSONResponse().Payload(struct {
		Keyword string `json:"keyword"`
	}{Keyword: s.keywords.Suggest(description)}).Write(w)
}

// handleReclassify re-runs keyword matching over the caller's uncategorized
// transactions. The worker does this automatically on keyword saves; the
// endpoint exists for clients that want it synchronously.
func (s *Server) handleReclassify(w http.ResponseWriter, r *http.Request, userID string) {
	updated, err := s.keywords.Reclassify(r.Context(), userID)
	if err != nil {
		s.logger.ErrorContext(r.Context(), "Reclassify failed",
			applog.FieldUserID, userID,
			applog.FieldError, err)
		InternalServerError("reclassify failed").Write(w)
		return
	}
	if updated > 0 {
		s.reports.Invalidate(userID)
	}

	NewJSONResponse().Payload(struct {
		Updated int `json:"updated"`
	}{Updated: updated}).Write(w)
}
