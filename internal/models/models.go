// Package models holds the CRM domain types shared by storage, services and
// handlers.
package models

import "time"

// Account is the tenant every other record belongs to.
type Account struct {
	ID        int64     `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// SoftDelete is embedded by records that are trashed instead of removed.
type SoftDelete struct {
	DeletedAt *time.Time `json:"deleted_at" db:"deleted_at"`
}

// IsDeleted reports whether the record is trashed.
func (s SoftDelete) IsDeleted() bool {
	return s.DeletedAt != nil
}
