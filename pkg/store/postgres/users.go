package postgres

import (
	"context"
	"fmt"

	"github.com/ArionMiles/finlog/pkg/api"
)

// CreateUser stores a new user profile. An empty ID is generated by the
// database. Returns api.ErrConflict when the ID or email is taken.
func (s *Store) CreateUser(ctx context.Context, u *api.User) error {
	err := s.pool.QueryRow(ctx, `
		INSERT INTO users (id, name, email)
		VALUES (COALESCE(NULLIF($1, ''), gen_random_uuid()::text), $2, $3)
		RETURNING id, created_at
	`,
		u.ID, u.Name, u.Email,
	).Scan(&u.ID, &u.CreatedAt)
	if isUniqueViolation(err) {
		return api.ErrConflict
	}
	if err != nil {
		return fmt.Errorf("inserting user: %w", err)
	}
	return nil
}

// GetUser returns a user profile by ID.
func (s *Store) GetUser(ctx context.Context, id string) (*api.User, error) {
	var u api.User
	err := s.pool.QueryRow(ctx,
		`SELECT id, name, email, created_at FROM users WHERE id = $1`, id,
	).Scan(&u.ID, &u.Name, &u.Email, &u.CreatedAt)
	if err != nil {
		return nil, notFound(err)
	}
	return &u, nil
}
