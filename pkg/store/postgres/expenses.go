package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/ArionMiles/finlog/pkg/api"
)

const expenseColumns = `id, user_id, amount::float8, category, reason, expense_date, merchant_name, created_at`

func scanExpense(row pgx.CollectableRow) (api.Expense, error) {
	var e api.Expense
	err := row.Scan(&e.ID, &e.UserID, &e.Amount, &e.Category, &e.Reason, &e.Date, &e.MerchantName, &e.CreatedAt)
	return e, err
}

// AddExpense upserts the category by name and inserts the expense.
func (s *Store) AddExpense(ctx context.Context, e *api.Expense) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx,
		`INSERT INTO categories (name) VALUES ($1) ON CONFLICT (name) DO NOTHING`, e.Category,
	); err != nil {
		return fmt.Errorf("upserting category: %w", err)
	}

	if err := insertExpense(ctx, tx, e); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

func insertExpense(ctx context.Context, tx pgx.Tx, e *api.Expense) error {
	err := tx.QueryRow(ctx, `
		INSERT INTO expenses (user_id, amount, category, reason, expense_date, merchant_name)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at
	`,
		e.UserID, e.Amount, e.Category, e.Reason, e.Date, e.MerchantName,
	).Scan(&e.ID, &e.CreatedAt)
	if err != nil {
		return fmt.Errorf("inserting expense: %w", err)
	}
	return nil
}

// ListExpenses returns the user's expenses, newest first.
func (s *Store) ListExpenses(ctx context.Context, userID string) ([]api.Expense, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT `+expenseColumns+` FROM expenses WHERE user_id = $1 ORDER BY expense_date DESC, created_at DESC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("querying expenses: %w", err)
	}
	return pgx.CollectRows(rows, scanExpense)
}

// GetExpense returns an expense by ID regardless of owner.
func (s *Store) GetExpense(ctx context.Context, id string) (*api.Expense, error) {
	rows, err := s.pool.Query(ctx, `SELECT `+expenseColumns+` FROM expenses WHERE id = $1`, id)
	if err != nil {
		return nil, fmt.Errorf("querying expense: %w", err)
	}
	e, err := pgx.CollectExactlyOneRow(rows, scanExpense)
	if err != nil {
		return nil, notFound(err)
	}
	return &e, nil
}

// DeleteExpense removes an expense by ID.
func (s *Store) DeleteExpense(ctx context.Context, id string) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM expenses WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("deleting expense: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return api.ErrNotFound
	}
	return nil
}

// ListCategories returns every known category ordered by name.
func (s *Store) ListCategories(ctx context.Context) ([]api.Category, error) {
	rows, err := s.pool.Query(ctx, `SELECT id, name FROM categories ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("querying categories: %w", err)
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (api.Category, error) {
		var c api.Category
		err := row.Scan(&c.ID, &c.Name)
		return c, err
	})
}

// GetCategory returns a category by ID.
func (s *Store) GetCategory(ctx context.Context, id string) (*api.Category, error) {
	var c api.Category
	err := s.pool.QueryRow(ctx, `SELECT id, name FROM categories WHERE id = $1`, id).Scan(&c.ID, &c.Name)
	if err != nil {
		return nil, notFound(err)
	}
	return &c, nil
}
