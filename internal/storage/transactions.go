package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"vibebudget/internal/core"
)

const transactionColumns = "id, user_id, bank_id, category_id, date, description, amount, currency, created_at"

// TransactionFilter narrows ListTransactions. Zero values mean "no
// constraint"; From and To are inclusive YYYY-MM-DD bounds.
type TransactionFilter struct {
	From          string
	To            string
	CategoryID    string
	BankID        string
	Uncategorized bool
	Limit         int
}

// CreateTransactions inserts a batch atomically: either every transaction of
// an import lands or none does. Returns the stored transactions with their
// assigned ids.
func (r *SQLiteRepository) CreateTransactions(ctx context.Context, txs []core.Transaction) ([]core.Transaction, error) {
	if len(txs) == 0 {
		return nil, nil
	}

	dbTx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer dbTx.Rollback()

	stmt, err := dbTx.PrepareContext(ctx,
		"INSERT INTO transactions ("+transactionColumns+") VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)")
	if err != nil {
		return nil, fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	now := time.Now().UTC()
	out := make([]core.Transaction, len(txs))
	for i, t := range txs {
		if err := t.Validate(); err != nil {
			return nil, fmt.Errorf("transaction %d: %w", i, err)
		}
		t.ID = newID()
		t.CreatedAt = now
		if _, err := stmt.ExecContext(ctx,
			t.ID, t.UserID, nullable(t.BankID), nullable(t.CategoryID),
			t.Date, t.Description, t.Amount.String(), t.Currency,
			now.Format(time.RFC3339),
		); err != nil {
			return nil, fmt.Errorf("insert transaction %d: %w", i, err)
		}
		out[i] = t
	}

	if err := dbTx.Commit(); err != nil {
		return nil, fmt.Errorf("commit transactions: %w", err)
	}

	slog.InfoContext(ctx, "Transactions saved",
		"count", len(out),
		"user_id", txs[0].UserID)
	return out, nil
}

// CreateTransaction inserts a single transaction.
func (r *SQLiteRepository) CreateTransaction(ctx context.Context, t core.Transaction) (core.Transaction, error) {
	stored, err := r.CreateTransactions(ctx, []core.Transaction{t})
	if err != nil {
		return core.Transaction{}, err
	}
	return stored[0], nil
}

func (r *SQLiteRepository) GetTransaction(ctx context.Context, userID, id string) (core.Transaction, error) {
	row := r.db.QueryRowContext(ctx,
		"SELECT "+transactionColumns+" FROM transactions WHERE id = ? AND user_id = ?", id, userID)
	t, err := scanTransaction(row)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Transaction{}, ErrNotFound
	}
	if err != nil {
		return core.Transaction{}, fmt.Errorf("get transaction: %w", err)
	}
	return t, nil
}

func (r *SQLiteRepository) ListTransactions(ctx context.Context, userID string, f TransactionFilter) ([]core.Transaction, error) {
	var sb strings.Builder
	sb.WriteString("SELECT " + transactionColumns + " FROM transactions WHERE user_id = ?")
	args := []any{userID}

	if f.From != "" {
		sb.WriteString(" AND date >= ?")
		args = append(args, f.From)
	}
	if f.To != "" {
		sb.WriteString(" AND date <= ?")
		args = append(args, f.To)
	}
	if f.CategoryID != "" {
		sb.WriteString(" AND category_id = ?")
		args = append(args, f.CategoryID)
	}
	if f.BankID != "" {
		sb.WriteString(" AND bank_id = ?")
		args = append(args, f.BankID)
	}
	if f.Uncategorized {
		sb.WriteString(" AND category_id IS NULL")
	}
	sb.WriteString(" ORDER BY date DESC, created_at DESC")
	if f.Limit > 0 {
		sb.WriteString(" LIMIT ?")
		args = append(args, f.Limit)
	}

	rows, err := r.db.QueryContext(ctx, sb.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	defer rows.Close()

	var out []core.Transaction
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// UpdateTransaction replaces the mutable fields of a transaction. Ownership
// is enforced by the user_id predicate, like every other query here.
func (r *SQLiteRepository) UpdateTransaction(ctx context.Context, t core.Transaction) error {
	if err := t.Validate(); err != nil {
		return err
	}
	res, err := r.db.ExecContext(ctx,
		"UPDATE transactions SET bank_id = ?, category_id = ?, date = ?, description = ?, amount = ?, currency = ? WHERE id = ? AND user_id = ?",
		nullable(t.BankID), nullable(t.CategoryID), t.Date, t.Description,
		t.Amount.String(), t.Currency, t.ID, t.UserID)
	if err != nil {
		return fmt.Errorf("update transaction: %w", err)
	}
	return requireAffected(res)
}

// SetTransactionCategory reassigns (or, with nil, clears) a transaction's
// category.
func (r *SQLiteRepository) SetTransactionCategory(ctx context.Context, userID, id string, categoryID *string) error {
	res, err := r.db.ExecContext(ctx,
		"UPDATE transactions SET category_id = ? WHERE id = ? AND user_id = ?",
		nullable(categoryID), id, userID)
	if err != nil {
		return fmt.Errorf("set transaction category: %w", err)
	}
	return requireAffected(res)
}

func (r *SQLiteRepository) DeleteTransaction(ctx context.Context, userID, id string) error {
	res, err := r.db.ExecContext(ctx,
		"DELETE FROM transactions WHERE id = ? AND user_id = ?", id, userID)
	if err != nil {
		return fmt.Errorf("delete transaction: %w", err)
	}
	return requireAffected(res)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTransaction(row rowScanner) (core.Transaction, error) {
	var (
		t                  core.Transaction
		bankID, categoryID sql.NullString
		amount, createdAt  string
	)
	if err := row.Scan(&t.ID, &t.UserID, &bankID, &categoryID,
		&t.Date, &t.Description, &amount, &t.Currency, &createdAt); err != nil {
		return core.Transaction{}, err
	}
	t.BankID = fromNullable(bankID)
	t.CategoryID = fromNullable(categoryID)

	parsed, err := core.ParseAmount(amount)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("stored amount %q: %w", amount, err)
	}
	t.Amount = parsed
	t.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	return t, nil
}

func requireAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
