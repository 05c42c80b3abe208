package storage

import (
	"context"
	"database/sql"
	"errors"

	"pingcrm-backend/internal/db"
	"pingcrm-backend/internal/models"
)

// SeedOptions configure the demo data.
type SeedOptions struct {
	AccountName  string
	DemoEmail    string
	PasswordHash string
}

var seedOrganizations = []models.Organization{
	{Name: "Bartell Group", Email: "info@bartell.example", Phone: "800-555-0101", City: "Toronto", Region: "ON", Country: "CA", PostalCode: "M5H 2N2"},
	{Name: "Hessel and Sons", Email: "contact@hessel.example", Phone: "800-555-0102", City: "Chicago", Region: "IL", Country: "US", PostalCode: "60601"},
	{Name: "Kuhn LLC", Email: "hello@kuhn.example", Phone: "800-555-0103", City: "Austin", Region: "TX", Country: "US", PostalCode: "73301"},
	{Name: "Rempel Inc", Email: "office@rempel.example", Phone: "800-555-0104", City: "Ottawa", Region: "ON", Country: "CA", PostalCode: "K1A 0B1"},
	{Name: "Wuckert Ltd", Email: "team@wuckert.example", Phone: "800-555-0105", City: "Denver", Region: "CO", Country: "US", PostalCode: "80202"},
}

var seedContacts = []struct {
	first, last, email string
	org                int
}{
	{"Alice", "Cormier", "alice.cormier@example.com", 0},
	{"Bruno", "Dietrich", "bruno.dietrich@example.com", 0},
	{"Carla", "Ernser", "carla.ernser@example.com", 1},
	{"Dmitri", "Feil", "dmitri.feil@example.com", 1},
	{"Elena", "Gislason", "elena.gislason@example.com", 2},
	{"Farid", "Hills", "farid.hills@example.com", 2},
	{"Greta", "Jast", "greta.jast@example.com", 3},
	{"Hugo", "Kling", "hugo.kling@example.com", 3},
	{"Ines", "Lind", "ines.lind@example.com", 4},
	{"Jonas", "Mayer", "jonas.mayer@example.com", -1},
}

// Seed creates the demo account, its owner and sample organizations and
// contacts in one transaction. It reports false when the demo user already
// exists.
func Seed(ctx context.Context, dbx *db.DB, opts SeedOptions) (bool, error) {
	seeded := false
	err := dbx.TransactionContext(ctx, func(tx *db.Tx) error {
		s := New(tx)
		if _, err := s.GetUserByEmail(ctx, opts.DemoEmail); err == nil {
			return nil
		} else if !errors.Is(err, ErrNotFound) {
			return err
		}

		account, err := s.CreateAccount(ctx, opts.AccountName)
		if err != nil {
			return err
		}

		now := s.now()
		if err := s.CreateUser(ctx, &models.User{
			AccountID:       account.ID,
			FirstName:       "John",
			LastName:        "Doe",
			Email:           opts.DemoEmail,
			EmailVerifiedAt: &now,
			Password:        sql.NullString{String: opts.PasswordHash, Valid: opts.PasswordHash != ""},
			Owner:           true,
		}); err != nil {
			return err
		}

		orgIDs := make([]int64, len(seedOrganizations))
		for i, o := range seedOrganizations {
			o.AccountID = account.ID
			if err := s.CreateOrganization(ctx, &o); err != nil {
				return err
			}
			orgIDs[i] = o.ID
		}

		for _, c := range seedContacts {
			contact := models.Contact{
				AccountID: account.ID,
				FirstName: c.first,
				LastName:  c.last,
				Email:     c.email,
			}
			if c.org >= 0 {
				contact.OrganizationID = &orgIDs[c.org]
			}
			if err := s.CreateContact(ctx, &contact); err != nil {
				return err
			}
		}

		seeded = true
		return nil
	})
	return seeded, err
}
