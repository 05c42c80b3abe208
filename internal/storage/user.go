package storage

import (
	"context"

	"pingcrm-backend/internal/models"
)

const userColumns = `id, account_id, first_name, last_name, email, email_verified_at,
	password, owner, COALESCE(photo_path, '') AS photo_path, created_at, updated_at, deleted_at`

// CreateUser inserts u and fills its id and timestamps.
func (s *Storage) CreateUser(ctx context.Context, u *models.User) error {
	now := s.now()
	id, err := s.insert(ctx, `INSERT INTO users
		(account_id, first_name, last_name, email, email_verified_at, password, owner, photo_path, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?) RETURNING id`,
		u.AccountID, u.FirstName, u.LastName, u.Email, u.EmailVerifiedAt, u.Password,
		u.Owner, nullable(u.PhotoPath), now, now)
	if err != nil {
		return err
	}
	u.ID, u.CreatedAt, u.UpdatedAt = id, now, now
	return nil
}

// GetUser returns a user of the account, trashed or not.
func (s *Storage) GetUser(ctx context.Context, accountID, id int64) (*models.User, error) {
	var u models.User
	if err := s.get(ctx, &u, `SELECT `+userColumns+` FROM users
		WHERE account_id = ? AND id = ?`, accountID, id); err != nil {
		return nil, err
	}
	return &u, nil
}

// GetUserByEmail returns the user with email in any account, matched
// case-insensitively.
func (s *Storage) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	var u models.User
	if err := s.get(ctx, &u, `SELECT `+userColumns+` FROM users
		WHERE LOWER(email) = LOWER(?)`, email); err != nil {
		return nil, err
	}
	return &u, nil
}

// EmailTaken reports whether another user already uses email. exceptID is
// ignored when zero.
func (s *Storage) EmailTaken(ctx context.Context, email string, exceptID int64) (bool, error) {
	var n int
	if err := s.get(ctx, &n, `SELECT COUNT(*) FROM users
		WHERE LOWER(email) = LOWER(?) AND id <> ?`, email, exceptID); err != nil {
		return false, err
	}
	return n > 0, nil
}

// ListUsers returns the account's users filtered by search, role and
// trashed, ordered by last then first name.
func (s *Storage) ListUsers(ctx context.Context, accountID int64, f models.Filters) ([]models.User, error) {
	var sc scope
	sc.where("account_id = ?", accountID)
	sc.search(f.Search, concat("first_name", "last_name"), "email")
	sc.role("owner", f.Role)
	sc.trashed("deleted_at", f.Trashed)

	users := []models.User{}
	err := s.selectAll(ctx, &users, `SELECT `+userColumns+` FROM users`+sc.String()+
		` ORDER BY last_name, first_name, id`, sc.args...)
	return users, err
}

// UpdateUser saves the editable columns of u.
func (s *Storage) UpdateUser(ctx context.Context, u *models.User) error {
	now := s.now()
	if err := s.execOne(ctx, `UPDATE users SET first_name = ?, last_name = ?, email = ?,
		password = ?, owner = ?, photo_path = ?, updated_at = ?
		WHERE account_id = ? AND id = ?`,
		u.FirstName, u.LastName, u.Email, u.Password, u.Owner, nullable(u.PhotoPath), now,
		u.AccountID, u.ID); err != nil {
		return err
	}
	u.UpdatedAt = now
	return nil
}

// DeleteUser trashes a user. Trashing a trashed user keeps its timestamp.
func (s *Storage) DeleteUser(ctx context.Context, accountID, id int64) error {
	return s.execOne(ctx, `UPDATE users SET deleted_at = COALESCE(deleted_at, ?)
		WHERE account_id = ? AND id = ?`, s.now(), accountID, id)
}

// RestoreUser clears the deleted_at of a user.
func (s *Storage) RestoreUser(ctx context.Context, accountID, id int64) error {
	return s.execOne(ctx, `UPDATE users SET deleted_at = NULL
		WHERE account_id = ? AND id = ?`, accountID, id)
}
