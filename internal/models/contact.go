package models

import "time"

type Contact struct {
	ID             int64     `json:"id" db:"id"`
	AccountID      int64     `json:"account_id" db:"account_id"`
	OrganizationID *int64    `json:"organization_id" db:"organization_id"`
	FirstName      string    `json:"first_name" db:"first_name"`
	LastName       string    `json:"last_name" db:"last_name"`
	Email          string    `json:"email" db:"email"`
	Phone          string    `json:"phone" db:"phone"`
	Address        string    `json:"address" db:"address"`
	City           string    `json:"city" db:"city"`
	Region         string    `json:"region" db:"region"`
	Country        string    `json:"country" db:"country"`
	PostalCode     string    `json:"postal_code" db:"postal_code"`
	CreatedAt      time.Time `json:"created_at" db:"created_at"`
	UpdatedAt      time.Time `json:"updated_at" db:"updated_at"`
	SoftDelete

	// Organization is filled by listings that join the organization.
	Organization *OrganizationRef `json:"organization,omitempty" db:"-"`
}

// Name is the contact's display name.
func (c *Contact) Name() string {
	return c.FirstName + " " + c.LastName
}
