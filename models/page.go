package models

import "math"

// PageRequest selects one page of a listing. Page is 1-based.
type PageRequest struct {
	Page    int
	PerPage int
}

// NewPageRequest clamps page to at least 1 and at most the last page whose
// offset still fits in a signed 32-bit integer
func NewPageRequest(page, perPage int) PageRequest {
	if perPage < 1 {
		perPage = 1
	}
	if page < 1 {
		page = 1
	}
	if maxPage := math.MaxInt32/perPage + 1; page > maxPage {
		page = maxPage
	}
	return PageRequest{Page: page, PerPage: perPage}
}

// Offset returns the number of rows to skip
func (r PageRequest) Offset() int {
	return (r.Page - 1) * r.PerPage
}

// Page is one slice of a listing together with paginator metadata.
// From and To are 1-based row positions and nil on an empty page.
type Page[T any] struct {
	Items       []T  `json:"data"`
	CurrentPage int  `json:"current_page"`
	LastPage    int  `json:"last_page"`
	PerPage     int  `json:"per_page"`
	Total       int  `json:"total"`
	From        *int `json:"from"`
	To          *int `json:"to"`
}

// NewPage builds paginator metadata for items fetched with req out of total
func NewPage[T any](items []T, req PageRequest, total int) *Page[T] {
	if items == nil {
		items = []T{}
	}
	last := 1
	if total > 0 {
		last = (total + req.PerPage - 1) / req.PerPage
	}
	p := &Page[T]{
		Items:       items,
		CurrentPage: req.Page,
		LastPage:    last,
		PerPage:     req.PerPage,
		Total:       total,
	}
	if len(items) > 0 {
		from := req.Offset() + 1
		to := req.Offset() + len(items)
		p.From = &from
		p.To = &to
	}
	return p
}

// HasPrev reports whether a previous page exists
func (p *Page[T]) HasPrev() bool {
	return p.CurrentPage > 1
}

// HasNext reports whether a following page exists
func (p *Page[T]) HasNext() bool {
	return p.CurrentPage < p.LastPage
}

// PrevPage returns the previous page number
func (p *Page[T]) PrevPage() int {
	return p.CurrentPage - 1
}

// NextPage returns the following page number
func (p *Page[T]) NextPage() int {
	return p.CurrentPage + 1
}
