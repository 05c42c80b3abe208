package storage

import (
	"math"
	"strings"

	"pingcrm-backend/internal/models"
)

// scope collects WHERE conditions with ? placeholders.
type scope struct {
	conds []string
	args  []interface{}
}

func (s *scope) where(cond string, args ...interface{}) {
	s.conds = append(s.conds, cond)
	s.args = append(s.args, args...)
}

func (s *scope) String() string {
	if len(s.conds) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(s.conds, " AND ")
}

// search matches term case-insensitively against any of the given
// expressions.
func (s *scope) search(term string, exprs ...string) {
	term = strings.TrimSpace(term)
	if term == "" || len(exprs) == 0 {
		return
	}
	like := "%" + strings.ToLower(term) + "%"
	parts := make([]string, len(exprs))
	args := make([]interface{}, len(exprs))
	for i, e := range exprs {
		parts[i] = "LOWER(" + e + ") LIKE ?"
		args[i] = like
	}
	s.where("("+strings.Join(parts, " OR ")+")", args...)
}

func (s *scope) trashed(column string, t models.Trashed) {
	switch t {
	case models.TrashedWith:
	case models.TrashedOnly:
		s.where(column + " IS NOT NULL")
	default:
		s.where(column + " IS NULL")
	}
}

func (s *scope) role(column string, role string) {
	switch role {
	case models.RoleOwner:
		s.where(column+" = ?", true)
	case models.RoleUser:
		s.where(column+" = ?", false)
	}
}

// concat joins nullable text columns with a space.
func concat(columns ...string) string {
	parts := make([]string, len(columns))
	for i, c := range columns {
		parts[i] = "COALESCE(" + c + ", '')"
	}
	return strings.Join(parts, " || ' ' || ")
}

// maxOffset keeps OFFSET within a 32 bit integer on every driver.
const maxOffset = math.MaxInt32

// pageBounds normalizes page and perPage and returns the row offset. Pages
// past the largest representable offset are clamped to it.
func pageBounds(page, perPage int) (int, int, int) {
	if perPage <= 0 {
		perPage = DefaultPerPage
	}
	if perPage > MaxPerPage {
		perPage = MaxPerPage
	}
	if page < 1 {
		page = 1
	}
	if maxPage := maxOffset/perPage + 1; page > maxPage {
		page = maxPage
	}
	return page, perPage, (page - 1) * perPage
}
