package storage

import (
	"context"

	"pingcrm-backend/internal/models"
)

const organizationColumns = `id, account_id, name,
	COALESCE(email, '') AS email, COALESCE(phone, '') AS phone,
	COALESCE(address, '') AS address, COALESCE(city, '') AS city,
	COALESCE(region, '') AS region, COALESCE(country, '') AS country,
	COALESCE(postal_code, '') AS postal_code, created_at, updated_at, deleted_at`

// CreateOrganization inserts o and fills its id and timestamps.
func (s *Storage) CreateOrganization(ctx context.Context, o *models.Organization) error {
	now := s.now()
	id, err := s.insert(ctx, `INSERT INTO organizations
		(account_id, name, email, phone, address, city, region, country, postal_code, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?) RETURNING id`,
		o.AccountID, o.Name, nullable(o.Email), nullable(o.Phone), nullable(o.Address),
		nullable(o.City), nullable(o.Region), nullable(o.Country), nullable(o.PostalCode), now, now)
	if err != nil {
		return err
	}
	o.ID, o.CreatedAt, o.UpdatedAt = id, now, now
	return nil
}

// GetOrganization returns an organization of the account, trashed or not.
func (s *Storage) GetOrganization(ctx context.Context, accountID, id int64) (*models.Organization, error) {
	var o models.Organization
	if err := s.get(ctx, &o, `SELECT `+organizationColumns+` FROM organizations
		WHERE account_id = ? AND id = ?`, accountID, id); err != nil {
		return nil, err
	}
	return &o, nil
}

// ListOrganizations returns one page of the account's organizations ordered
// by name.
func (s *Storage) ListOrganizations(ctx context.Context, accountID int64, f models.Filters, page, perPage int) (models.Page[models.Organization], error) {
	var sc scope
	sc.where("account_id = ?", accountID)
	sc.search(f.Search, "name", "COALESCE(email, '')", "COALESCE(phone, '')")
	sc.trashed("deleted_at", f.Trashed)

	page, perPage, offset := pageBounds(page, perPage)
	p := models.Page[models.Organization]{Items: []models.Organization{}, Page: page, PerPage: perPage}
	if err := s.get(ctx, &p.Total, `SELECT COUNT(*) FROM organizations`+sc.String(), sc.args...); err != nil {
		return p, err
	}

	args := append(append([]interface{}{}, sc.args...), perPage, offset)
	err := s.selectAll(ctx, &p.Items, `SELECT `+organizationColumns+` FROM organizations`+sc.String()+
		` ORDER BY name, id LIMIT ? OFFSET ?`, args...)
	return p, err
}

// ListOrganizationRefs returns id and name of every active organization of
// the account, ordered by name.
func (s *Storage) ListOrganizationRefs(ctx context.Context, accountID int64) ([]models.OrganizationRef, error) {
	refs := []models.OrganizationRef{}
	err := s.selectAll(ctx, &refs, `SELECT id, name FROM organizations
		WHERE account_id = ? AND deleted_at IS NULL ORDER BY name, id`, accountID)
	return refs, err
}

// UpdateOrganization saves the editable columns of o.
func (s *Storage) UpdateOrganization(ctx context.Context, o *models.Organization) error {
	now := s.now()
	if err := s.execOne(ctx, `UPDATE organizations SET name = ?, email = ?, phone = ?,
		address = ?, city = ?, region = ?, country = ?, postal_code = ?, updated_at = ?
		WHERE account_id = ? AND id = ?`,
		o.Name, nullable(o.Email), nullable(o.Phone), nullable(o.Address), nullable(o.City),
		nullable(o.Region), nullable(o.Country), nullable(o.PostalCode), now,
		o.AccountID, o.ID); err != nil {
		return err
	}
	o.UpdatedAt = now
	return nil
}

// DeleteOrganization trashes an organization.
func (s *Storage) DeleteOrganization(ctx context.Context, accountID, id int64) error {
	return s.execOne(ctx, `UPDATE organizations SET deleted_at = COALESCE(deleted_at, ?)
		WHERE account_id = ? AND id = ?`, s.now(), accountID, id)
}

// RestoreOrganization clears the deleted_at of an organization.
func (s *Storage) RestoreOrganization(ctx context.Context, accountID, id int64) error {
	return s.execOne(ctx, `UPDATE organizations SET deleted_at = NULL
		WHERE account_id = ? AND id = ?`, accountID, id)
}
