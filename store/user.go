package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"postapi/domain"
)

type UserStore struct {
	base
}

func NewUserStore(db *sql.DB, opts ...Option) *UserStore {
	return &UserStore{base: newBase(db, opts)}
}

// Create stores a user with an already hashed password.
func (s *UserStore) Create(ctx context.Context, username string, passwordHash []byte) (domain.User, error) {
	now := s.timestamp()
	user := domain.User{
		ID:        uuid.NewString(),
		Username:  username,
		CreatedAt: now,
		UpdatedAt: now,
	}
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO users (id, username, password, created_at, updated_at) VALUES ($1, $2, $3, $4, $5)",
		user.ID, user.Username, string(passwordHash), user.CreatedAt, user.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.User{}, fmt.Errorf("username %q: %w", username, domain.ErrConflict)
		}
		return domain.User{}, fmt.Errorf("error inserting user: %w", err)
	}
	return user, nil
}

// FindByUsername returns the user together with its stored password hash.
func (s *UserStore) FindByUsername(ctx context.Context, username string) (domain.User, []byte, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT id, username, password, created_at, updated_at FROM users WHERE username = $1", username)
	user := domain.User{}
	var hash string
	err := row.Scan(&user.ID, &user.Username, &hash, &user.CreatedAt, &user.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return user, nil, fmt.Errorf("user %q: %w", username, domain.ErrNotFound)
	}
	if err != nil {
		return user, nil, fmt.Errorf("error finding user: %w", err)
	}
	user.CreatedAt = user.CreatedAt.UTC()
	user.UpdatedAt = user.UpdatedAt.UTC()
	return user, []byte(hash), nil
}
