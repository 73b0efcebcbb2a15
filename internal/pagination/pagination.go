// Package pagination provides page/size slicing and result metadata for
// any ordered collection served by the API.
package pagination

import (
	"net/http"
	"strconv"
)

const (
	DefaultPage     = 1
	DefaultPageSize = 10
	MaxPageSize     = 50
)

// Params is a validated page request. Out-of-range values are clamped to
// defaults rather than rejected.
type Params struct {
	Page     int
	PageSize int
}

// FromRequest parses page/pageSize query parameters and clamps them
func FromRequest(r *http.Request) Params {
	p := Params{Page: DefaultPage, PageSize: DefaultPageSize}
	if v := r.URL.Query().Get("page"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			p.Page = n
		}
	}
	if v := r.URL.Query().Get("pageSize"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			p.PageSize = n
		}
	}
	return p.Clamp()
}

// Clamp normalizes out-of-range values
func (p Params) Clamp() Params {
	if p.Page < 1 {
		p.Page = DefaultPage
	}
	if p.PageSize < 1 {
		p.PageSize = DefaultPageSize
	}
	if p.PageSize > MaxPageSize {
		p.PageSize = MaxPageSize
	}
	return p
}

// Offset returns the row offset for the requested page
func (p Params) Offset() int {
	return (p.Page - 1) * p.PageSize
}

// Limit returns the row limit for the requested page
func (p Params) Limit() int {
	return p.PageSize
}

// Meta describes a windowed view over a larger ordered result set
type Meta struct {
	CurrentPage int `json:"current_page"`
	PageSize    int `json:"page_size"`
	TotalCount  int `json:"total_count"`
	TotalPages  int `json:"total_pages"`
}

// NewMeta builds metadata for a page request against a total row count
func NewMeta(p Params, total int) Meta {
	pages := 0
	if total > 0 {
		pages = (total + p.PageSize - 1) / p.PageSize
	}
	return Meta{
		CurrentPage: p.Page,
		PageSize:    p.PageSize,
		TotalCount:  total,
		TotalPages:  pages,
	}
}

// WriteHeaders adds the pagination response headers
func (m Meta) WriteHeaders(w http.ResponseWriter) {
	w.Header().Set("CurrentPage", strconv.Itoa(m.CurrentPage))
	w.Header().Set("PageSize", strconv.Itoa(m.PageSize))
	w.Header().Set("TotalCount", strconv.Itoa(m.TotalCount))
	w.Header().Set("TotalPages", strconv.Itoa(m.TotalPages))
}
