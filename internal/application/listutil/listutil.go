// Package listutil parses paging, sorting and filter parameters for JSON list endpoints.
package listutil

import (
	"net/url"
	"strconv"
	"strings"
)

// DefaultPerPage applies when per_page is absent or not allowed.
const DefaultPerPage = 50

// PerPageOptions are the accepted per_page values.
var PerPageOptions = []int{10, 25, 50, 100, 500}

// ListParams is everything a list endpoint reads from the query string.
type ListParams struct {
	Page    int
	PerPage int
	Sort    string // empty when the requested column is not allowed
	Desc    bool
	Search  string
	Filters map[string]string
}

// PageInfo is the paging block returned next to list data.
type PageInfo struct {
	Page       int `json:"page"`
	PerPage    int `json:"per_page"`
	Total      int `json:"total"`
	TotalPages int `json:"total_pages"`
}

// Parse reads page, per_page, sort, dir, q and the named filters.
// Filter values are trimmed and upper-cased since every roster filter is a code (site, region, tier).
// PRE: none
// POST: Page >= 1; PerPage is one of PerPageOptions; Filters holds only filterKeys with a value
func Parse(q url.Values, sortable []string, filterKeys ...string) ListParams {
	p := ListParams{
		Page:    atoiDefault(q.Get("page"), 1),
		PerPage: atoiDefault(q.Get("per_page"), DefaultPerPage),
		Search:  strings.TrimSpace(q.Get("q")),
		Desc:    strings.EqualFold(q.Get("dir"), "desc"),
		Filters: make(map[string]string),
	}
	if p.Page < 1 {
		p.Page = 1
	}
	if !contains(PerPageOptions, p.PerPage) {
		p.PerPage = DefaultPerPage
	}
	if s := q.Get("sort"); contains(sortable, s) {
		p.Sort = s
	}
	for _, key := range filterKeys {
		if v := strings.ToUpper(strings.TrimSpace(q.Get(key))); v != "" {
			p.Filters[key] = v
		}
	}
	return p
}

// Dir returns "asc" or "desc".
func (p ListParams) Dir() string {
	if p.Desc {
		return "desc"
	}
	return "asc"
}

// Offset returns the row offset of the requested page.
func (p ListParams) Offset() int {
	return (p.Page - 1) * p.PerPage
}

// NewPageInfo computes paging metadata for total matching rows.
// PRE: total >= 0
// POST: TotalPages >= 1; Page clamped to [1, TotalPages]
func NewPageInfo(page, perPage, total int) PageInfo {
	if perPage < 1 {
		perPage = DefaultPerPage
	}
	pages := (total + perPage - 1) / perPage
	if pages < 1 {
		pages = 1
	}
	page = min(max(page, 1), pages)
	return PageInfo{Page: page, PerPage: perPage, Total: total, TotalPages: pages}
}

func atoiDefault(s string, def int) int {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return def
	}
	return n
}

func contains[T comparable](set []T, v T) bool {
	for _, s := range set {
		if s == v {
			return true
		}
	}
	return false
}
