package storage

import (
	"context"
	"database/sql"

	"pingcrm-backend/internal/models"
)

const contactColumns = `c.id, c.account_id, c.organization_id, c.first_name, c.last_name,
	COALESCE(c.email, '') AS email, COALESCE(c.phone, '') AS phone,
	COALESCE(c.address, '') AS address, COALESCE(c.city, '') AS city,
	COALESCE(c.region, '') AS region, COALESCE(c.country, '') AS country,
	COALESCE(c.postal_code, '') AS postal_code, c.created_at, c.updated_at, c.deleted_at`

type contactRow struct {
	models.Contact
	OrganizationName sql.NullString `db:"organization_name"`
}

func (r contactRow) contact() models.Contact {
	c := r.Contact
	if c.OrganizationID != nil && r.OrganizationName.Valid {
		c.Organization = &models.OrganizationRef{ID: *c.OrganizationID, Name: r.OrganizationName.String}
	}
	return c
}

// CreateContact inserts c and fills its id and timestamps.
func (s *Storage) CreateContact(ctx context.Context, c *models.Contact) error {
	now := s.now()
	id, err := s.insert(ctx, `INSERT INTO contacts
		(account_id, organization_id, first_name, last_name, email, phone, address, city, region, country, postal_code, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?) RETURNING id`,
		c.AccountID, c.OrganizationID, c.FirstName, c.LastName, nullable(c.Email), nullable(c.Phone),
		nullable(c.Address), nullable(c.City), nullable(c.Region), nullable(c.Country),
		nullable(c.PostalCode), now, now)
	if err != nil {
		return err
	}
	c.ID, c.CreatedAt, c.UpdatedAt = id, now, now
	return nil
}

// GetContact returns a contact of the account, trashed or not.
func (s *Storage) GetContact(ctx context.Context, accountID, id int64) (*models.Contact, error) {
	var r contactRow
	if err := s.get(ctx, &r, `SELECT `+contactColumns+`, o.name AS organization_name
		FROM contacts c LEFT JOIN organizations o ON o.id = c.organization_id
		WHERE c.account_id = ? AND c.id = ?`, accountID, id); err != nil {
		return nil, err
	}
	c := r.contact()
	return &c, nil
}

// ListContacts returns one page of the account's contacts with their
// organization, ordered by last then first name.
func (s *Storage) ListContacts(ctx context.Context, accountID int64, f models.Filters, page, perPage int) (models.Page[models.Contact], error) {
	var sc scope
	sc.where("c.account_id = ?", accountID)
	sc.search(f.Search, concat("c.first_name", "c.last_name"), "COALESCE(c.email, '')",
		"COALESCE(c.phone, '')", "COALESCE(o.name, '')")
	sc.trashed("c.deleted_at", f.Trashed)

	from := ` FROM contacts c LEFT JOIN organizations o ON o.id = c.organization_id`
	page, perPage, offset := pageBounds(page, perPage)
	p := models.Page[models.Contact]{Items: []models.Contact{}, Page: page, PerPage: perPage}
	if err := s.get(ctx, &p.Total, `SELECT COUNT(*)`+from+sc.String(), sc.args...); err != nil {
		return p, err
	}

	var rows []contactRow
	args := append(append([]interface{}{}, sc.args...), perPage, offset)
	if err := s.selectAll(ctx, &rows, `SELECT `+contactColumns+`, o.name AS organization_name`+
		from+sc.String()+` ORDER BY c.last_name, c.first_name, c.id LIMIT ? OFFSET ?`, args...); err != nil {
		return p, err
	}
	for _, r := range rows {
		p.Items = append(p.Items, r.contact())
	}
	return p, nil
}

// ListOrganizationContacts returns the active contacts of an organization.
func (s *Storage) ListOrganizationContacts(ctx context.Context, accountID, organizationID int64) ([]models.Contact, error) {
	var rows []contactRow
	if err := s.selectAll(ctx, &rows, `SELECT `+contactColumns+`, o.name AS organization_name
		FROM contacts c LEFT JOIN organizations o ON o.id = c.organization_id
		WHERE c.account_id = ? AND c.organization_id = ? AND c.deleted_at IS NULL
		ORDER BY c.last_name, c.first_name, c.id`, accountID, organizationID); err != nil {
		return nil, err
	}
	contacts := make([]models.Contact, 0, len(rows))
	for _, r := range rows {
		contacts = append(contacts, r.contact())
	}
	return contacts, nil
}

// UpdateContact saves the editable columns of c.
func (s *Storage) UpdateContact(ctx context.Context, c *models.Contact) error {
	now := s.now()
	if err := s.execOne(ctx, `UPDATE contacts SET organization_id = ?, first_name = ?,
		last_name = ?, email = ?, phone = ?, address = ?, city = ?, region = ?, country = ?,
		postal_code = ?, updated_at = ?
		WHERE account_id = ? AND id = ?`,
		c.OrganizationID, c.FirstName, c.LastName, nullable(c.Email), nullable(c.Phone),
		nullable(c.Address), nullable(c.City), nullable(c.Region), nullable(c.Country),
		nullable(c.PostalCode), now, c.AccountID, c.ID); err != nil {
		return err
	}
	c.UpdatedAt = now
	return nil
}

// DeleteContact trashes a contact.
func (s *Storage) DeleteContact(ctx context.Context, accountID, id int64) error {
	return s.execOne(ctx, `UPDATE contacts SET deleted_at = COALESCE(deleted_at, ?)
		WHERE account_id = ? AND id = ?`, s.now(), accountID, id)
}

// RestoreContact clears the deleted_at of a contact.
func (s *Storage) RestoreContact(ctx context.Context, accountID, id int64) error {
	return s.execOne(ctx, `UPDATE contacts SET deleted_at = NULL
		WHERE account_id = ? AND id = ?`, accountID, id)
}
