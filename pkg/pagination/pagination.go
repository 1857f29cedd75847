package pagination

import (
	"fmt"
	"net/http"
	"strconv"
)

// Policy is the page-size rule shared by every listing endpoint: an explicit
// size is honoured when it lies in [1, Max], an absent one takes Default.
type Policy struct {
	Default int
	Max     int
}

// DefaultPolicy returns the catalog-wide policy.
func DefaultPolicy() Policy {
	return Policy{Default: 12, Max: 100}
}

// Limit resolves a requested size. A nil request yields the default.
func (p Policy) Limit(requested *int) (int, error) {
	if requested == nil {
		return p.Default, nil
	}
	if *requested < 1 || *requested > p.Max {
		return 0, fmt.Errorf("must be between 1 and %d", p.Max)
	}
	return *requested, nil
}

// Params holds a resolved page window.
type Params struct {
	Page    int `json:"page"`
	PerPage int `json:"per_page"`
	Offset  int `json:"-"`
}

// Params resolves page and per-page values. Pages below 1 are rejected.
func (p Policy) Params(page, perPage *int) (Params, error) {
	size, err := p.Limit(perPage)
	if err != nil {
		return Params{}, fmt.Errorf("per_page %w", err)
	}
	n := 1
	if page != nil {
		if *page < 1 {
			return Params{}, fmt.Errorf("page must be at least 1")
		}
		n = *page
	}
	return Params{Page: n, PerPage: size, Offset: (n - 1) * size}, nil
}

// FromRequest reads page and per_page from the query string. Malformed or
// out-of-range values fall back to the policy defaults.
func (p Policy) FromRequest(r *http.Request) Params {
	out := Params{Page: 1, PerPage: p.Default}
	q := r.URL.Query()
	if v, err := strconv.Atoi(q.Get("page")); err == nil && v > 0 {
		out.Page = v
	}
	if v, err := strconv.Atoi(q.Get("per_page")); err == nil && v > 0 && v <= p.Max {
		out.PerPage = v
	}
	out.Offset = (out.Page - 1) * out.PerPage
	return out
}

// Result is a page of items plus totals.
type Result[T any] struct {
	Data       []T  `json:"data"`
	TotalCount int  `json:"total_count"`
	Page       int  `json:"page"`
	PerPage    int  `json:"per_page"`
	TotalPages int  `json:"total_pages"`
	HasNext    bool `json:"has_next"`
	HasPrev    bool `json:"has_prev"`
}

// NewResult builds a Result, never returning a nil Data slice.
func NewResult[T any](data []T, totalCount int, params Params) Result[T] {
	totalPages := 0
	if params.PerPage > 0 {
		totalPages = (totalCount + params.PerPage - 1) / params.PerPage
	}
	if data == nil {
		data = []T{}
	}
	return Result[T]{
		Data:       data,
		TotalCount: totalCount,
		Page:       params.Page,
		PerPage:    params.PerPage,
		TotalPages: totalPages,
		HasNext:    params.Page < totalPages,
		HasPrev:    params.Page > 1,
	}
}
