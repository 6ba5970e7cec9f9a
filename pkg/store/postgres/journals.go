package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/ArionMiles/finlog/pkg/api"
)

const journalColumns = `id, user_id, month_year, month_highlight, skills_learnt,
	productivity_rating, productivity_note, health_rating, health_note,
	mood_rating, mood_note, created_at, updated_at`

func scanJournal(row pgx.CollectableRow) (api.Journal, error) {
	var j api.Journal
	err := row.Scan(
		&j.ID, &j.UserID, &j.MonthYear, &j.MonthHighlight, &j.SkillsLearnt,
		&j.Productivity.Rating, &j.Productivity.Note,
		&j.Health.Rating, &j.Health.Note,
		&j.Mood.Rating, &j.Mood.Note,
		&j.CreatedAt, &j.UpdatedAt,
	)
	return j, err
}

// AddJournal inserts a journal entry. The (user, month) uniqueness constraint
// turns a duplicate into api.ErrConflict.
func (s *Store) AddJournal(ctx context.Context, j *api.Journal) error {
	err := s.pool.QueryRow(ctx, `
		INSERT INTO journals (
			user_id, month_year, month_highlight, skills_learnt,
			productivity_rating, productivity_note, health_rating, health_note,
			mood_rating, mood_note
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (user_id, month_year) DO NOTHING
		RETURNING id, created_at, updated_at
	`,
		j.UserID, j.MonthYear, j.MonthHighlight, j.SkillsLearnt,
		j.Productivity.Rating, j.Productivity.Note,
		j.Health.Rating, j.Health.Note,
		j.Mood.Rating, j.Mood.Note,
	).Scan(&j.ID, &j.CreatedAt, &j.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return api.ErrConflict
	}
	if err != nil {
		return fmt.Errorf("inserting journal: %w", err)
	}
	return nil
}

// ListJournals returns the user's entries, latest month first.
func (s *Store) ListJournals(ctx context.Context, userID string) ([]api.Journal, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT `+journalColumns+` FROM journals WHERE user_id = $1 ORDER BY month_year DESC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("querying journals: %w", err)
	}
	return pgx.CollectRows(rows, scanJournal)
}

// GetJournal returns the user's entry for monthYear.
func (s *Store) GetJournal(ctx context.Context, userID, monthYear string) (*api.Journal, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT `+journalColumns+` FROM journals WHERE user_id = $1 AND month_year = $2`,
		userID, monthYear,
	)
	if err != nil {
		return nil, fmt.Errorf("querying journal: %w", err)
	}
	j, err := pgx.CollectExactlyOneRow(rows, scanJournal)
	if err != nil {
		return nil, notFound(err)
	}
	return &j, nil
}

// UpdateJournal replaces the content of an existing entry identified by user and month.
func (s *Store) UpdateJournal(ctx context.Context, j *api.Journal) error {
	err := s.pool.QueryRow(ctx, `
		UPDATE journals SET
			month_highlight = $3,
			skills_learnt = $4,
			productivity_rating = $5,
			productivity_note = $6,
			health_rating = $7,
			health_note = $8,
			mood_rating = $9,
			mood_note = $10,
			updated_at = NOW()
		WHERE user_id = $1 AND month_year = $2
		RETURNING id, created_at, updated_at
	`,
		j.UserID, j.MonthYear, j.MonthHighlight, j.SkillsLearnt,
		j.Productivity.Rating, j.Productivity.Note,
		j.Health.Rating, j.Health.Note,
		j.Mood.Rating, j.Mood.Note,
	).Scan(&j.ID, &j.CreatedAt, &j.UpdatedAt)
	if err != nil {
		return notFound(err)
	}
	return nil
}

// DeleteJournal removes the user's entry for monthYear.
func (s *Store) DeleteJournal(ctx context.Context, userID, monthYear string) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM journals WHERE user_id = $1 AND month_year = $2`, userID, monthYear)
	if err != nil {
		return fmt.Errorf("deleting journal: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return api.ErrNotFound
	}
	return nil
}
