package storage

import (
	"context"
)

// Counts are the record totals across all accounts. Trashed records are
// counted separately.
type Counts struct {
	Accounts             int64 `db:"accounts"`
	Users                int64 `db:"users"`
	Organizations        int64 `db:"organizations"`
	Contacts             int64 `db:"contacts"`
	TrashedUsers         int64 `db:"trashed_users"`
	TrashedOrganizations int64 `db:"trashed_organizations"`
	TrashedContacts      int64 `db:"trashed_contacts"`
}

// CountRecords returns the record totals.
func (s *Storage) CountRecords(ctx context.Context) (Counts, error) {
	var c Counts
	err := s.get(ctx, &c, `SELECT
		(SELECT COUNT(*) FROM accounts) AS accounts,
		(SELECT COUNT(*) FROM users WHERE deleted_at IS NULL) AS users,
		(SELECT COUNT(*) FROM organizations WHERE deleted_at IS NULL) AS organizations,
		(SELECT COUNT(*) FROM contacts WHERE deleted_at IS NULL) AS contacts,
		(SELECT COUNT(*) FROM users WHERE deleted_at IS NOT NULL) AS trashed_users,
		(SELECT COUNT(*) FROM organizations WHERE deleted_at IS NOT NULL) AS trashed_organizations,
		(SELECT COUNT(*) FROM contacts WHERE deleted_at IS NOT NULL) AS trashed_contacts`)
	return c, err
}
