package models

import "strings"

// Trashed selects how soft-deleted records take part in a listing.
type Trashed string

const (
	// TrashedNone lists active records only.
	TrashedNone Trashed = ""
	// TrashedWith lists active and trashed records.
	TrashedWith Trashed = "with"
	// TrashedOnly lists trashed records only.
	TrashedOnly Trashed = "only"
)

// ParseTrashed maps a query parameter to a Trashed mode. Unknown values fall
// back to TrashedNone.
func ParseTrashed(s string) Trashed {
	switch Trashed(strings.ToLower(strings.TrimSpace(s))) {
	case TrashedWith:
		return TrashedWith
	case TrashedOnly:
		return TrashedOnly
	default:
		return TrashedNone
	}
}

// Filters are the listing modifiers sent by the index pages.
type Filters struct {
	Search  string  `json:"search"`
	Role    string  `json:"role"`
	Trashed Trashed `json:"trashed"`
}

// Page is one page of a paginated listing.
type Page[T any] struct {
	Items   []T
	Page    int
	PerPage int
	Total   int
}

// LastPage is the number of the last page, at least 1.
func (p Page[T]) LastPage() int {
	if p.PerPage <= 0 || p.Total == 0 {
		return 1
	}
	return (p.Total + p.PerPage - 1) / p.PerPage
}
