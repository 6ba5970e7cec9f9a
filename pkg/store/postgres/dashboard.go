package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/ArionMiles/finlog/pkg/api"
)

// MonthlyTotals returns per (year, month) totals in UTC, latest year first.
func (s *Store) MonthlyTotals(ctx context.Context, userID string) ([]api.MonthTotal, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT EXTRACT(YEAR FROM expense_date AT TIME ZONE 'UTC')::int AS year,
		       EXTRACT(MONTH FROM expense_date AT TIME ZONE 'UTC')::int AS month,
		       SUM(amount)::float8 AS total
		FROM expenses
		WHERE user_id = $1
		GROUP BY 1, 2
		ORDER BY 1 DESC, 2
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("querying monthly totals: %w", err)
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (api.MonthTotal, error) {
		var m api.MonthTotal
		err := row.Scan(&m.Year, &m.Month, &m.Total)
		return m, err
	})
}

// CategoryTotals returns per category totals, highest first. A zero year
// means all time.
func (s *Store) CategoryTotals(ctx context.Context, userID string, year int) ([]api.CategoryTotal, error) {
	query := `SELECT category, SUM(amount)::float8 AS total FROM expenses WHERE user_id = $1`
	args := []any{userID}
	if year != 0 {
		query += ` AND expense_date >= $2 AND expense_date < $3`
		args = append(args,
			time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC),
			time.Date(year+1, time.January, 1, 0, 0, 0, 0, time.UTC),
		)
	}
	query += ` GROUP BY category ORDER BY total DESC, category`

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying category totals: %w", err)
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (api.CategoryTotal, error) {
		var c api.CategoryTotal
		err := row.Scan(&c.Category, &c.Total)
		return c, err
	})
}

// RecentExpenses returns the user's latest expenses by date.
func (s *Store) RecentExpenses(ctx context.Context, userID string, limit int) ([]api.Expense, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT `+expenseColumns+` FROM expenses WHERE user_id = $1 ORDER BY expense_date DESC, created_at DESC LIMIT $2`,
		userID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("querying recent expenses: %w", err)
	}
	return pgx.CollectRows(rows, scanExpense)
}
