package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"vibebudget/internal/core"
)

const categoryColumns = "id, user_id, name, type, color, icon, description, is_system, created_at"

func (r *SQLiteRepository) CreateCategory(ctx context.Context, c core.Category) (core.Category, error) {
	if err := c.Validate(); err != nil {
		return core.Category{}, err
	}
	c.ID = newID()
	c.CreatedAt = time.Now().UTC()

	_, err := r.db.ExecContext(ctx,
		"INSERT INTO categories ("+categoryColumns+") VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)",
		c.ID, c.UserID, c.Name, string(c.Type), c.Color, c.Icon, c.Description,
		boolToInt(c.IsSystem), c.CreatedAt.Format(time.RFC3339))
	if err != nil {
		return core.Category{}, fmt.Errorf("create category: %w", err)
	}
	return c, nil
}

func (r *SQLiteRepository) ListCategories(ctx context.Context, userID string) ([]core.Category, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT "+categoryColumns+" FROM categories WHERE user_id = ? ORDER BY name", userID)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()

	var out []core.Category
	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *SQLiteRepository) GetCategory(ctx context.Context, userID, id string) (core.Category, error) {
	row := r.db.QueryRowContext(ctx,
		"SELECT "+categoryColumns+" FROM categories WHERE id = ? AND user_id = ?", id, userID)
	c, err := scanCategory(row)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Category{}, ErrNotFound
	}
	if err != nil {
		return core.Category{}, fmt.Errorf("get category: %w", err)
	}
	return c, nil
}

// ResolveCategoryID maps a category name to the user's category id. Used to
// turn a rule-table category name into a concrete row reference.
func (r *SQLiteRepository) ResolveCategoryID(ctx context.Context, userID, name string) (string, error) {
	var id string
	err := r.db.QueryRowContext(ctx,
		"SELECT id FROM categories WHERE user_id = ? AND name = ?", userID, name).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("resolve category %q: %w", name, err)
	}
	return id, nil
}

// SeedCategories inserts the given categories for a user, skipping names the
// user already has. Idempotent, so it is safe to call on every import.
func (r *SQLiteRepository) SeedCategories(ctx context.Context, userID string, cats []core.Category) error {
	dbTx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin seed: %w", err)
	}
	defer dbTx.Rollback()

	now := time.Now().UTC().Format(time.RFC3339)
	seeded := 0
	for _, c := range cats {
		c.UserID = userID
		if err := c.Validate(); err != nil {
			return fmt.Errorf("seed category %q: %w", c.Name, err)
		}
		res, err := dbTx.ExecContext(ctx,
			"INSERT OR IGNORE INTO categories ("+categoryColumns+") VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)",
			newID(), userID, c.Name, string(c.Type), c.Color, c.Icon, c.Description,
			boolToInt(c.IsSystem), now)
		if err != nil {
			return fmt.Errorf("seed category %q: %w", c.Name, err)
		}
		if n, _ := res.RowsAffected(); n > 0 {
			seeded++
		}
	}

	if err := dbTx.Commit(); err != nil {
		return fmt.Errorf("commit seed: %w", err)
	}
	if seeded > 0 {
		slog.InfoContext(ctx, "Default categories seeded", "user_id", userID, "count", seeded)
	}
	return nil
}

// DeleteCategory removes a category. Its transactions survive uncategorized;
// its keyword overrides go with it (schema cascade).
func (r *SQLiteRepository) DeleteCategory(ctx context.Context, userID, id string) error {
	res, err := r.db.ExecContext(ctx,
		"DELETE FROM categories WHERE id = ? AND user_id = ?", id, userID)
	if err != nil {
		return fmt.Errorf("delete category: %w", err)
	}
	return requireAffected(res)
}

func scanCategory(row rowScanner) (core.Category, error) {
	var (
		c         core.Category
		catType   string
		isSystem  int
		createdAt string
	)
	if err := row.Scan(&c.ID, &c.UserID, &c.Name, &catType, &c.Color, &c.Icon,
		&c.Description, &isSystem, &createdAt); err != nil {
		return core.Category{}, err
	}
	c.Type = core.CategoryType(catType)
	c.IsSystem = isSystem != 0
	c.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	return c, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
