package http

import (
	"errors"
	"net/http"
	"strings"

	"vibebudget/internal/core"
	applog "vibebudget/internal/log"
	"vibebudget/internal/storage"
)

// transactionRequest is the body for manual transaction create/update.
type transactionRequest struct {
	Date        string  `json:"date"`
	Description string  `json:"description"`
	Amount      string  `json:"amount"`
	Currency    string  `json:"currency"`
	BankID      *string `json:"bank_id"`
	CategoryID  *string `json:"category_id"`
}

// transactionFromRequest validates the body into a domain transaction. Bank
// and category references must exist and belong to the caller. A non-nil
// second return value is the error response to send.
func (s *Server) transactionFromRequest(r *http.Request, userID string, req transactionRequest) (core.Transaction, *JSONResponseBuilder) {
	amount, err := core.ParseAmount(req.Amount)
	if err != nil {
		return core.Transaction{}, UnprocessableEntityError("invalid amount")
	}

	t := core.Transaction{
		UserID:      userID,
		BankID:      req.BankID,
		CategoryID:  req.CategoryID,
		Date:        strings.TrimSpace(req.Date),
		Description: sanitizeInput(req.Description),
		Amount:      amount,
		Currency:    strings.ToUpper(strings.TrimSpace(req.Currency)),
	}
	if err := t.Validate(); err != nil {
		return core.Transaction{}, UnprocessableEntityError(err.Error())
	}

	if t.BankID != nil {
		if _, err := s.store.GetBank(r.Context(), userID, *t.BankID); err != nil {
			if errors.Is(err, storage.ErrNotFound) {
				return core.Transaction{}, NotFoundError("bank not found")
			}
			return core.Transaction{}, InternalServerError("save transaction failed")
		}
	}
	if t.CategoryID != nil {
		if _, err := s.store.GetCategory(r.Context(), userID, *t.CategoryID); err != nil {
			if errors.Is(err, storage.ErrNotFound) {
				return core.Transaction{}, NotFoundError("category not found")
			}
			return core.Transaction{}, InternalServerError("save transaction failed")
		}
	}
	return t, nil
}

// handleCreateTransaction records a manual entry outside any import.
func (s *Server) handleCreateTransaction(w http.ResponseWriter, r *http.Request, userID string) {
	var req transactionRequest
	if err := decodeJSON(w, r, &req); err != nil {
		BadRequestError(err.Error()).Write(w)
		return
	}

	t, errResp := s.transactionFromRequest(r, userID, req)
	if errResp != nil {
		errResp.Write(w)
		return
	}

	stored, err := s.store.CreateTransaction(r.Context(), t)
	if err != nil {
		s.logger.ErrorContext(r.Context(), "Create transaction failed",
			applog.FieldUserID, userID,
			applog.FieldError, err)
		InternalServerError("create transaction failed").Write(w)
		return
	}

	s.reports.Invalidate(userID)
	NewJSONResponse().Status(http.StatusCreated).Payload(toTransactionJSON(stored)).Write(w)
}

// handleUpdateTransaction replaces every mutable field of a transaction.
// Partial edits of just the category go through the category subresource.
func (s *Server) handleUpdateTransaction(w http.ResponseWriter, r *http.Request, userID string) {
	var req transactionRequest
	if err := decodeJSON(w, r, &req); err != nil {
		BadRequestError(err.Error()).Write(w)
		return
	}

	t, errResp := s.transactionFromRequest(r, userID, req)
	if errResp != nil {
		errResp.Write(w)
		return
	}
	t.ID = r.PathValue("id")

	err := s.store.UpdateTransaction(r.Context(), t)
	if errors.Is(err, storage.ErrNotFound) {
		NotFoundError("transaction not found").Write(w)
		return
	}
	if err != nil {
		s.logger.ErrorContext(r.Context(), "Update transaction failed",
			applog.FieldUserID, userID,
			applog.FieldTransactionID, t.ID,
			applog.FieldError, err)
		InternalServerError("update transaction failed").Write(w)
		return
	}

	s.reports.Invalidate(userID)

	updated, err := s.store.GetTransaction(r.Context(), userID, t.ID)
	if err != nil {
		InternalServerError("update transaction failed").Write(w)
		return
	}
	NewJSONResponse().Payload(toTransactionJSON(updated)).Write(w)
}

func (s *Server) handleListTransactions(w http.ResponseWriter, r *http.Request, userID string) {
	filter, err := ParseTransactionFilter(r.URL.Query())
	if err != nil {
		BadRequestError(err.Error()).Write(w)
		return
	}

	txs, err := s.store.ListTransactions(r.Context(), userID, filter)
	if err != nil {
		s.logger.ErrorContext(r.Context(), "List transactions failed",
			applog.FieldUserID, userID,
			applog.FieldError, err)
		InternalServerError("list transactions failed").Write(w)
		return
	}

	NewJSONResponse().Payload(toTransactionsJSON(txs)).Write(w)
}

func (s *Server) handleGetTransaction(w http.ResponseWriter, r *http.Request, userID string) {
	tx, err := s.store.GetTransaction(r.Context(), userID, r.PathValue("id"))
	if errors.Is(err, storage.ErrNotFound) {
		NotFoundError("transaction not found").Write(w)
		return
	}
	if err != nil {
		InternalServerError("get transaction failed").Write(w)
		return
	}
	NewJSONResponse().Payload(toTransactionJSON(tx)).Write(w)
}

// handleSetTransactionCategory assigns or clears a transaction's category.
// Body: {"category_id": "..."} to assign, {"category_id": null} to clear.
func (s *Server) handleSetTransactionCategory(w http.ResponseWriter, r *http.Request, userID string) {
	var body struct {
		CategoryID *string `json:"category_id"`
	}
	if err := decodeJSON(w, r, &body); err != nil {
		BadRequestError(err.Error()).Write(w)
		return
	}

	if body.CategoryID != nil {
		id := strings.TrimSpace(*body.CategoryID)
		if id == "" {
			UnprocessableEntityError("category_id must be a non-empty id or null").Write(w)
			return
		}
		body.CategoryID = &id
		// The category must exist and belong to the caller.
		if _, err := s.store.GetCategory(r.Context(), userID, id); err != nil {
			if errors.Is(err, storage.ErrNotFound) {
				NotFoundError("category not found").Write(w)
				return
			}
			InternalServerError("set category failed").Write(w)
			return
		}
	}

	txID := r.PathValue("id")
	err := s.store.SetTransactionCategory(r.Context(), userID, txID, body.CategoryID)
	if errors.Is(err, storage.ErrNotFound) {
		NotFoundError("transaction not found").Write(w)
		return
	}
	if err != nil {
		s.logger.ErrorContext(r.Context(), "Set transaction category failed",
			applog.FieldUserID, userID,
			applog.FieldTransactionID, txID,
			applog.FieldError, err)
		InternalServerError("set category failed").Write(w)
		return
	}

	s.reports.Invalidate(userID)

	tx, err := s.store.GetTransaction(r.Context(), userID, txID)
	if err != nil {
		InternalServerError("set category failed").Write(w)
		return
	}
	NewJSONResponse().Payload(toTransactionJSON(tx)).Write(w)
}

func (s *Server) handleDeleteTransaction(w http.ResponseWriter, r *http.Request, userID string) {
	err := s.store.DeleteTransaction(r.Context(), userID, r.PathValue("id"))
	if errors.Is(err, storage.ErrNotFound) {
		NotFoundError("transaction not found").Write(w)
		return
	}
	if err != nil {
		InternalServerError("delete transaction failed").Write(w)
		return
	}
	s.reports.Invalidate(userID)
	w.WriteHeader(http.StatusNoContent)
}
