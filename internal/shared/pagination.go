package shared

import "math"

// DefaultPerPage is the page size used when callers pass none.
const DefaultPerPage = 100

// Pagination contains metadata for paginated listings.
type Pagination struct {
	Page       int `json:"page"`
	PerPage    int `json:"per_page"`
	Total      int `json:"total"`
	TotalPages int `json:"total_pages"`
	From       int `json:"from"`
	To         int `json:"to"`
}

// NewPagination computes pagination metadata. From and To are 1-based and
// clamped to Total; both are zero when the page holds no items.
func NewPagination(page, perPage, total int) Pagination {
	if perPage <= 0 {
		perPage = DefaultPerPage
	}
	if page <= 0 {
		page = 1
	}
	if total < 0 {
		total = 0
	}
	totalPages := int(math.Ceil(float64(total) / float64(perPage)))
	p := Pagination{Page: page, PerPage: perPage, Total: total, TotalPages: totalPages}
	if start, end := p.Bounds(); start < end {
		p.From = start + 1
		p.To = end
	}
	return p
}

// Bounds returns the half-open slice range covered by the page. Pages past
// the last one yield an empty range at Total.
func (p Pagination) Bounds() (int, int) {
	if p.Page < 1 || p.PerPage < 1 || p.Page > p.TotalPages {
		return p.Total, p.Total
	}
	start := (p.Page - 1) * p.PerPage
	return start, min(start+p.PerPage, p.Total)
}
