package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"vibebudget/internal/core"
)

const bankColumns = "id, user_id, name, color, created_at"

func (r *SQLiteRepository) CreateBank(ctx context.Context, b core.Bank) (core.Bank, error) {
	if err := b.Validate(); err != nil {
		return core.Bank{}, err
	}
	b.ID = newID()
	b.CreatedAt = time.Now().UTC()

	_, err := r.db.ExecContext(ctx,
		"INSERT INTO banks ("+bankColumns+") VALUES (?, ?, ?, ?, ?)",
		b.ID, b.UserID, b.Name, b.Color, b.CreatedAt.Format(time.RFC3339))
	if err != nil {
		return core.Bank{}, fmt.Errorf("create bank: %w", err)
	}
	return b, nil
}

func (r *SQLiteRepository) ListBanks(ctx context.Context, userID string) ([]core.Bank, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT "+bankColumns+" FROM banks WHERE user_id = ? ORDER BY name", userID)
	if err != nil {
		return nil, fmt.Errorf("list banks: %w", err)
	}
	defer rows.Close()

	var out []core.Bank
	for rows.Next() {
		b, err := scanBank(rows)
		if err != nil {
			return nil, fmt.Errorf("scan bank: %w", err)
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

func (r *SQLiteRepository) GetBank(ctx context.Context, userID, id string) (core.Bank, error) {
	row := r.db.QueryRowContext(ctx,
		"SELECT "+bankColumns+" FROM banks WHERE id = ? AND user_id = ?", id, userID)
	b, err := scanBank(row)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Bank{}, ErrNotFound
	}
	if err != nil {
		return core.Bank{}, fmt.Errorf("get bank: %w", err)
	}
	return b, nil
}

// EnsureBank returns the id of the user's bank with the given name, creating
// it on first use. Imports name banks freely; the rows appear as needed.
func (r *SQLiteRepository) EnsureBank(ctx context.Context, userID, name string) (string, error) {
	var id string
	err := r.db.QueryRowContext(ctx,
		"SELECT id FROM banks WHERE user_id = ? AND name = ?", userID, name).Scan(&id)
	if err == nil {
		return id, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return "", fmt.Errorf("lookup bank %q: %w", name, err)
	}

	b, err := r.CreateBank(ctx, core.Bank{UserID: userID, Name: name})
	if err != nil {
		return "", err
	}
	return b.ID, nil
}

// DeleteBank removes a bank; its transactions survive with the bank
// reference cleared (schema SET NULL).
func (r *SQLiteRepository) DeleteBank(ctx context.Context, userID, id string) error {
	res, err := r.db.ExecContext(ctx,
		"DELETE FROM banks WHERE id = ? AND user_id = ?", id, userID)
	if err != nil {
		return fmt.Errorf("delete bank: %w", err)
	}
	return requireAffected(res)
}

func scanBank(row rowScanner) (core.Bank, error) {
	var (
		b         core.Bank
		createdAt string
	)
	if err := row.Scan(&b.ID, &b.UserID, &b.Name, &b.Color, &createdAt); err != nil {
		return core.Bank{}, err
	}
	b.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	return b, nil
}
