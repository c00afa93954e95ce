package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/arenasul/courtbet/internal/domain"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

// UserRepository reads the users table owned by the account subsystem.
// Strictly read-only from this service.
type UserRepository struct {
	db *sqlx.DB
}

// NewUserRepository creates a new UserRepository.
func NewUserRepository(db *sqlx.DB) *UserRepository {
	return &UserRepository{db: db}
}

// GetByID fetches a user's name and email for notifications.
func (r *UserRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	var u domain.User
	err := r.db.GetContext(ctx, &u, `SELECT id, name, email FROM users WHERE id = $1`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("user_repo.GetByID: %w", err)
	}
	return &u, nil
}

// GetByIDs fetches a batch of users keyed by id. Missing ids are simply
// absent from the map.
func (r *UserRepository) GetByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]*domain.User, error) {
	out := make(map[uuid.UUID]*domain.User, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	query, args, err := sqlx.In(`SELECT id, name, email FROM users WHERE id IN (?)`, ids)
	if err != nil {
		return nil, fmt.Errorf("user_repo.GetByIDs: %w", err)
	}

	var users []*domain.User
	if err := r.db.SelectContext(ctx, &users, r.db.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("user_repo.GetByIDs: %w", err)
	}
	for _, u := range users {
		out[u.ID] = u
	}
	return out, nil
}
