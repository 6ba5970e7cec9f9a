package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/ArionMiles/finlog/pkg/api"
)

const smsSelect = `
	SELECT s.id, s.user_id, s.amount::float8, s.merchant_name, s.transaction_date,
	       c.id, c.name, s.sms_text, s.status, s.reason, s.created_at
	FROM sms_transactions s
	LEFT JOIN categories c ON c.id = s.category_id`

func scanSmsTransaction(row pgx.CollectableRow) (api.SmsTransaction, error) {
	var (
		t            api.SmsTransaction
		categoryID   *string
		categoryName *string
		status       string
	)
	err := row.Scan(
		&t.ID, &t.UserID, &t.Amount, &t.MerchantName, &t.TransactionDate,
		&categoryID, &categoryName, &t.SmsText, &status, &t.Reason, &t.CreatedAt,
	)
	if err != nil {
		return t, err
	}
	t.Status = api.SmsStatus(status)
	if categoryID != nil && categoryName != nil {
		t.Category = &api.Category{ID: *categoryID, Name: *categoryName}
	}
	return t, nil
}

// AddSmsTransaction stores a parsed transaction in the pending state.
func (s *Store) AddSmsTransaction(ctx context.Context, t *api.SmsTransaction) error {
	var categoryID *string
	if t.Category != nil {
		categoryID = &t.Category.ID
	}

	var status string
	err := s.pool.QueryRow(ctx, `
		INSERT INTO sms_transactions (user_id, amount, merchant_name, transaction_date, category_id, sms_text)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, status, created_at
	`,
		t.UserID, t.Amount, t.MerchantName, t.TransactionDate, categoryID, t.SmsText,
	).Scan(&t.ID, &status, &t.CreatedAt)
	if err != nil {
		return fmt.Errorf("inserting sms transaction: %w", err)
	}
	t.Status = api.SmsStatus(status)
	return nil
}

// GetSmsTransaction returns a transaction by ID regardless of owner.
func (s *Store) GetSmsTransaction(ctx context.Context, id string) (*api.SmsTransaction, error) {
	rows, err := s.pool.Query(ctx, smsSelect+` WHERE s.id = $1`, id)
	if err != nil {
		return nil, fmt.Errorf("querying sms transaction: %w", err)
	}
	t, err := pgx.CollectExactlyOneRow(rows, scanSmsTransaction)
	if err != nil {
		return nil, notFound(err)
	}
	return &t, nil
}

// ListPendingSmsTransactions returns the user's pending transactions, newest first.
func (s *Store) ListPendingSmsTransactions(ctx context.Context, userID string) ([]api.SmsTransaction, error) {
	rows, err := s.pool.Query(ctx,
		smsSelect+` WHERE s.user_id = $1 AND s.status = 'pending' ORDER BY s.created_at DESC, s.id`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("querying pending sms transactions: %w", err)
	}
	return pgx.CollectRows(rows, scanSmsTransaction)
}

// ApproveSmsTransaction creates the expense, records the merchant category
// and marks the transaction approved in one database transaction. It returns
// api.ErrNotFound if the transaction does not belong to the user and
// api.ErrConflict if it is no longer pending.
func (s *Store) ApproveSmsTransaction(ctx context.Context, a api.Approval, e *api.Expense) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	var (
		status   string
		merchant string
	)
	err = tx.QueryRow(ctx,
		`SELECT status, merchant_name FROM sms_transactions WHERE id = $1 AND user_id = $2 FOR UPDATE`,
		a.TransactionID, a.UserID,
	).Scan(&status, &merchant)
	if err != nil {
		return notFound(err)
	}
	if api.SmsStatus(status) != api.SmsPending {
		return api.ErrConflict
	}

	if err := insertExpense(ctx, tx, e); err != nil {
		return err
	}

	if _, err := tx.Exec(ctx, `
		INSERT INTO merchant_categories (user_id, merchant_name, category_id)
		VALUES ($1, $2, $3)
		ON CONFLICT (user_id, merchant_name) DO UPDATE SET category_id = EXCLUDED.category_id
	`, a.UserID, merchant, a.CategoryID); err != nil {
		return fmt.Errorf("upserting merchant category: %w", err)
	}

	if _, err := tx.Exec(ctx,
		`UPDATE sms_transactions SET status = 'approved', reason = $2 WHERE id = $1`,
		a.TransactionID, a.Reason,
	); err != nil {
		return fmt.Errorf("updating sms transaction: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

// RejectSmsTransaction marks a pending transaction rejected.
func (s *Store) RejectSmsTransaction(ctx context.Context, id, reason string) error {
	var status string
	err := s.pool.QueryRow(ctx, `
		UPDATE sms_transactions SET status = 'rejected', reason = $2
		WHERE id = $1 AND status = 'pending'
		RETURNING status
	`, id, reason).Scan(&status)
	if err == nil {
		return nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("updating sms transaction: %w", err)
	}

	// Nothing updated: distinguish a missing row from one already reviewed.
	if _, err := s.GetSmsTransaction(ctx, id); err != nil {
		return err
	}
	return api.ErrConflict
}

// LookupMerchantCategory returns the category learned for the user's merchant.
func (s *Store) LookupMerchantCategory(ctx context.Context, userID, merchantName string) (*api.Category, error) {
	var c api.Category
	err := s.pool.QueryRow(ctx, `
		SELECT c.id, c.name
		FROM merchant_categories m
		JOIN categories c ON c.id = m.category_id
		WHERE m.user_id = $1 AND m.merchant_name = $2
	`, userID, merchantName).Scan(&c.ID, &c.Name)
	if err != nil {
		return nil, notFound(err)
	}
	return &c, nil
}

// ListMerchantCategories returns the user's learned merchant mappings by merchant name.
func (s *Store) ListMerchantCategories(ctx context.Context, userID string) ([]api.MerchantCategory, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT m.user_id, m.merchant_name, c.id, c.name, m.created_at
		FROM merchant_categories m
		JOIN categories c ON c.id = m.category_id
		WHERE m.user_id = $1
		ORDER BY m.merchant_name
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("querying merchant categories: %w", err)
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (api.MerchantCategory, error) {
		var m api.MerchantCategory
		err := row.Scan(&m.UserID, &m.MerchantName, &m.Category.ID, &m.Category.Name, &m.CreatedAt)
		return m, err
	})
}
