package http

import (
	"errors"
	"net/http"
	"strings"

	applog "vibebudget/internal/log"
	"vibebudget/internal/core"
	"vibebudget/internal/storage"
)

// Banks, categories and currencies share the same thin CRUD shape: validate,
// store, translate sentinel errors into status codes.

func (s *Server) handleListBanks(w http.ResponseWriter, r *http.Request, userID string) {
	banks, err := s.store.ListBanks(r.Context(), userID)
	if err != nil {
		InternalServerError("list banks failed").Write(w)
		return
	}
	out := make([]bankJSON, 0, len(banks))
	for _, b := range banks {
		out = append(out, toBankJSON(b))
	}
	NewJSONResponse().Payload(out).Write(w)
}

func (s *Server) handleCreateBank(w http.ResponseWriter, r *http.Request, userID string) {
	var body struct {
		Name  string `json:"name"`
		Color string `json:"color"`
	}
	if err := decodeJSON(w, r, &body); err != nil {
		BadRequestError(err.Error()).Write(w)
		return
	}

	bank := core.Bank{
		UserID: userID,
		Name:   sanitizeInput(body.Name),
		Color:  sanitizeInput(body.Color),
	}
	if err := bank.Validate(); err != nil {
		UnprocessableEntityError(err.Error()).Write(w)
		return
	}

	created, err := s.store.CreateBank(r.Context(), bank)
	if err != nil {
		if isUniqueViolation(err) {
			ConflictError("bank already exists").Write(w)
			return
		}
		s.logger.ErrorContext(r.Context(), "Create bank failed",
			applog.FieldUserID, userID,
			applog.FieldBank, bank.Name,
			applog.FieldError, err)
		InternalServerError("create bank failed").Write(w)
		return
	}
	NewJSONResponse().Status(http.StatusCreated).Payload(toBankJSON(created)).Write(w)
}

func (s *Server) handleDeleteBank(w http.ResponseWriter, r *http.Request, userID string) {
	err := s.store.DeleteBank(r.Context(), userID, r.PathValue("id"))
	if errors.Is(err, storage.ErrNotFound) {
		NotFoundError("bank not found").Write(w)
		return
	}
	if err != nil {
		InternalServerError("delete bank failed").Write(w)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleListCategories(w http.ResponseWriter, r *http.Request, userID string) {
	cats, err := s.store.ListCategories(r.Context(), userID)
	if err != nil {
		InternalServerError("list categories failed").Write(w)
		return
	}
	out := make([]categoryJSON, 0, len(cats))
	for _, c := range cats {
		out = append(out, toCategoryJSON(c))
	}
	NewJSONResponse().Payload(out).Write(w)
}

func (s *Server) handleCreateCategory(w http.ResponseWriter, r *http.Request, userID string) {
	var body struct {
		Name        string `json:"name"`
		Type        string `json:"type"`
		Color       string `json:"color"`
		Icon        string `json:"icon"`
		Description string `json:"description"`
	}
	if err := decodeJSON(w, r, &body); err != nil {
		BadRequestError(err.Error()).Write(w)
		return
	}

	if body.Type == "" {
		body.Type = string(core.CategoryTypeExpense)
	}
	cat := core.Category{
		UserID:      userID,
		Name:        sanitizeInput(body.Name),
		Type:        core.CategoryType(body.Type),
		Color:       sanitizeInput(body.Color),
		Icon:        strings.TrimSpace(body.Icon),
		Description: sanitizeInput(body.Description),
	}
	if err := cat.Validate(); err != nil {
		UnprocessableEntityError(err.Error()).Write(w)
		return
	}

	created, err := s.store.CreateCategory(r.Context(), cat)
	if err != nil {
		if isUniqueViolation(err) {
			ConflictError("category already exists").Write(w)
			return
		}
		s.logger.ErrorContext(r.Context(), "Create category failed",
			applog.FieldUserID, userID,
			applog.FieldCategory, cat.Name,
			applog.FieldError, err)
		InternalServerError("create category failed").Write(w)
		return
	}
	NewJSONResponse().Status(http.StatusCreated).Payload(toCategoryJSON(created)).Write(w)
}

func (s *Server) handleDeleteCategory(w http.ResponseWriter, r *http.Request, userID string) {
	err := s.store.DeleteCategory(r.Context(), userID, r.PathValue("id"))
	if errors.Is(err, storage.ErrNotFound) {
		NotFoundError("category not found").Write(w)
		return
	}
	if err != nil {
		InternalServerError("delete category failed").Write(w)
		return
	}
	// Transactions in the deleted category became uncategorized; cached
	// reports are stale.
	s.reports.Invalidate(userID)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleListCurrencies(w http.ResponseWriter, r *http.Request, userID string) {
	curs, err := s.store.ListCurrencies(r.Context(), userID)
	if err != nil {
		InternalServerError("list currencies failed").Write(w)
		return
	}
	out := make([]currencyJSON, 0, len(curs))
	for _, c := range curs {
		out = append(out, toCurrencyJSON(c))
	}
	NewJSONResponse().Payload(out).Write(w)
}

func (s *Server) handleCreateCurrency(w http.ResponseWriter, r *http.Request, userID string) {
	var body struct {
		Code   string `json:"code"`
		Name   string `json:"name"`
		Symbol string `json:"symbol"`
	}
	if err := decodeJSON(w, r, &body); err != nil {
		BadRequestError(err.Error()).Write(w)
		return
	}

	cur := core.Currency{
		UserID: userID,
		Code:   strings.ToUpper(strings.TrimSpace(body.Code)),
		Name:   sanitizeInput(body.Name),
		Symbol: strings.TrimSpace(body.Symbol),
	}
	if err := cur.Validate(); err != nil {
		UnprocessableEntityError(err.Error()).Write(w)
		return
	}

	created, err := s.store.CreateCurrency(r.Context(), cur)
	if err != nil {
		if isUniqueViolation(err) {
			ConflictError("currency already exists").Write(w)
			return
		}
		InternalServerError("create currency failed").Write(w)
		return
	}
	NewJSONResponse().Status(http.StatusCreated).Payload(toCurrencyJSON(created)).Write(w)
}

func (s *Server) handleDeleteCurrency(w http.ResponseWriter, r *http.Request, userID string) {
	err := s.store.DeleteCurrency(r.Context(), userID, r.PathValue("id"))
	if errors.Is(err, storage.ErrNotFound) {
		// System currencies also land here: they cannot be deleted.
		NotFoundError("currency not found").Write(w)
		return
	}
	if err != nil {
		InternalServerError("delete currency failed").Write(w)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// isUniqueViolation sniffs SQLite unique constraint failures. modernc.org/
// sqlite does not export a sentinel for these.
func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}
