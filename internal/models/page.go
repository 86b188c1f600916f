package models

// Page is one window of a paginated, newest-first listing.
type Page[T any] struct {
	Items    []T  `json:"items"`
	Page     int  `json:"page"`
	PerPage  int  `json:"per_page"`
	HasNext  bool `json:"has_next"`
	HasPrev  bool `json:"has_prev"`
	NextPage *int `json:"next_page,omitempty"`
	PrevPage *int `json:"prev_page,omitempty"`
}

// NewPage slices window number page (1-based) of size perPage out of sorted.
// sorted must hold at least every item up to and including the first item of the next page.
// A page past the end yields no items.
func NewPage[T any](sorted []T, page, perPage int) *Page[T] {
	if page < 1 {
		page = 1
	}
	p := &Page[T]{Items: []T{}, Page: page, PerPage: perPage}

	start := (page - 1) * perPage
	if start < len(sorted) {
		end := start + perPage
		if end > len(sorted) {
			end = len(sorted)
		}
		p.Items = sorted[start:end]
		p.HasNext = len(sorted) > end
	}
	p.HasPrev = page > 1
	if p.HasNext {
		n := page + 1
		p.NextPage = &n
	}
	if p.HasPrev {
		n := page - 1
		p.PrevPage = &n
	}
	return p
}

// NewPageFromWindow builds a page from a window fetched with LIMIT perPage+1 at offset (page-1)*perPage.
func NewPageFromWindow[T any](window []T, page, perPage int) *Page[T] {
	if page < 1 {
		page = 1
	}
	p := &Page[T]{Items: []T{}, Page: page, PerPage: perPage, HasPrev: page > 1}
	if len(window) > perPage {
		p.HasNext = true
		window = window[:perPage]
	}
	if len(window) > 0 {
		p.Items = window
	}
	if p.HasNext {
		n := page + 1
		p.NextPage = &n
	}
	if p.HasPrev {
		n := page - 1
		p.PrevPage = &n
	}
	return p
}
