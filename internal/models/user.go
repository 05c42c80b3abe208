package models

import (
	"database/sql"
	"time"
)

type User struct {
	ID              int64          `json:"id" db:"id"`
	AccountID       int64          `json:"account_id" db:"account_id"`
	FirstName       string         `json:"first_name" db:"first_name"`
	LastName        string         `json:"last_name" db:"last_name"`
	Email           string         `json:"email" db:"email"`
	EmailVerifiedAt *time.Time     `json:"email_verified_at" db:"email_verified_at"`
	Password        sql.NullString `json:"-" db:"password"`
	Owner           bool           `json:"owner" db:"owner"`
	PhotoPath       string         `json:"-" db:"photo_path"`
	CreatedAt       time.Time      `json:"created_at" db:"created_at"`
	UpdatedAt       time.Time      `json:"updated_at" db:"updated_at"`
	SoftDelete
}

// Name is the user's display name.
func (u *User) Name() string {
	return u.FirstName + " " + u.LastName
}

// Role values accepted by the user listing filter.
const (
	RoleOwner = "owner"
	RoleUser  = "user"
)
