package storage

import (
	"context"
	"fmt"
	"time"

	"vibebudget/internal/core"
)

const currencyColumns = "id, user_id, code, name, symbol, created_at"

// ListCurrencies returns system currencies (empty user id) plus the user's
// own, system ones first.
func (r *SQLiteRepository) ListCurrencies(ctx context.Context, userID string) ([]core.Currency, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT "+currencyColumns+" FROM currencies WHERE user_id IN ('', ?) ORDER BY user_id, code", userID)
	if err != nil {
		return nil, fmt.Errorf("list currencies: %w", err)
	}
	defer rows.Close()

	var out []core.Currency
	for rows.Next() {
		var (
			c         core.Currency
			createdAt string
		)
		if err := rows.Scan(&c.ID, &c.UserID, &c.Code, &c.Name, &c.Symbol, &createdAt); err != nil {
			return nil, fmt.Errorf("scan currency: %w", err)
		}
		c.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *SQLiteRepository) CreateCurrency(ctx context.Context, c core.Currency) (core.Currency, error) {
	if err := c.Validate(); err != nil {
		return core.Currency{}, err
	}
	c.ID = newID()
	c.CreatedAt = time.Now().UTC()

	_, err := r.db.ExecContext(ctx,
		"INSERT INTO currencies ("+currencyColumns+") VALUES (?, ?, ?, ?, ?, ?)",
		c.ID, c.UserID, c.Code, c.Name, c.Symbol, c.CreatedAt.Format(time.RFC3339))
	if err != nil {
		return core.Currency{}, fmt.Errorf("create currency: %w", err)
	}
	return c, nil
}

// DeleteCurrency removes one of the user's own currencies. System currencies
// have no user id and can never match.
func (r *SQLiteRepository) DeleteCurrency(ctx context.Context, userID, id string) error {
	res, err := r.db.ExecContext(ctx,
		"DELETE FROM currencies WHERE id = ? AND user_id = ? AND user_id != ''", id, userID)
	if err != nil {
		return fmt.Errorf("delete currency: %w", err)
	}
	return requireAffected(res)
}
