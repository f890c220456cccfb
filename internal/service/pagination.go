package service

import (
	"math"

	"github.com/prn-tf/storefront/internal/config"
	"github.com/prn-tf/storefront/internal/repository"
)

// Page is a normalized 1-based page request.
type Page struct {
	Page  int
	Limit int
}

// Offset returns the number of rows to skip.
func (p Page) Offset() int {
	return (p.Page - 1) * p.Limit
}

// Options converts the page into repository list options.
func (p Page) Options(search string) repository.ListOptions {
	return repository.ListOptions{Limit: p.Limit, Offset: p.Offset(), Search: search}
}

// Paginator clamps client supplied page and limit values.
type Paginator struct {
	defaultLimit int
	maxLimit     int
}

// NewPaginator creates a Paginator from the pagination settings.
// Non-positive values fall back to the configured defaults.
func NewPaginator(cfg config.PaginationConfig) Paginator {
	p := Paginator{defaultLimit: cfg.DefaultLimit, maxLimit: cfg.MaxLimit}
	if p.maxLimit <= 0 {
		p.maxLimit = config.DefaultMaxPageLimit
	}
	if p.defaultLimit <= 0 || p.defaultLimit > p.maxLimit {
		p.defaultLimit = min(config.DefaultPageLimit, p.maxLimit)
	}
	return p
}

// Normalize turns page < 1 into 1, limit <= 0 into the default and caps limit at the maximum.
// page is capped so that Offset never overflows; such a page is past the last row.
func (p Paginator) Normalize(page, limit int) Page {
	if page < 1 {
		page = 1
	}
	if limit <= 0 {
		limit = p.defaultLimit
	}
	if limit > p.maxLimit {
		limit = p.maxLimit
	}
	page = min(page, math.MaxInt/limit)
	return Page{Page: page, Limit: limit}
}
