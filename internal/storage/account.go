package storage

import (
	"context"

	"pingcrm-backend/internal/models"
)

// CreateAccount inserts an account.
func (s *Storage) CreateAccount(ctx context.Context, name string) (*models.Account, error) {
	now := s.now()
	id, err := s.insert(ctx, `INSERT INTO accounts (name, created_at, updated_at)
		VALUES (?, ?, ?) RETURNING id`, name, now, now)
	if err != nil {
		return nil, err
	}
	return &models.Account{ID: id, Name: name, CreatedAt: now, UpdatedAt: now}, nil
}

// GetAccount returns the account with id.
func (s *Storage) GetAccount(ctx context.Context, id int64) (*models.Account, error) {
	var a models.Account
	if err := s.get(ctx, &a, `SELECT id, name, created_at, updated_at FROM accounts WHERE id = ?`, id); err != nil {
		return nil, err
	}
	return &a, nil
}
