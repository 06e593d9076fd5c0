// Package pagination defines the page-bounded read contract shared by
// repositories and list endpoints.
package pagination

import "strings"

const (
	DefaultSize = 20
	MaxSize     = 100
)

// Request carries the caller-supplied paging and sorting parameters.
// Page numbering is zero-based, matching the upstream gateway contract.
type Request struct {
	Page int
	Size int
	Sort string
}

// Normalize clamps the request into the supported bounds.
func (r Request) Normalize() Request {
	if r.Page < 0 {
		r.Page = 0
	}
	if r.Size <= 0 {
		r.Size = DefaultSize
	}
	if r.Size > MaxSize {
		r.Size = MaxSize
	}
	return r
}

// Offset returns the row offset for the normalized request.
func (r Request) Offset() int {
	n := r.Normalize()
	return n.Page * n.Size
}

// SortClause resolves the sort spec ("field" or "field:desc") against the
// allowed column map and falls back when the field is unknown or empty.
func (r Request) SortClause(allowed map[string]string, fallback string) string {
	field := strings.TrimSpace(r.Sort)
	direction := "asc"
	if idx := strings.IndexByte(field, ':'); idx >= 0 {
		if strings.EqualFold(strings.TrimSpace(field[idx+1:]), "desc") {
			direction = "desc"
		}
		field = strings.TrimSpace(field[:idx])
	}
	column, ok := allowed[field]
	if !ok {
		return fallback
	}
	return column + " " + direction
}

// Page is a page-bounded view over a collection with total-count metadata.
type Page[T any] struct {
	Items      []T   `json:"items"`
	Page       int   `json:"page"`
	Size       int   `json:"size"`
	TotalItems int64 `json:"totalItems"`
	TotalPages int   `json:"totalPages"`
}

// NewPage assembles a page from the fetched slice and the total row count.
func NewPage[T any](items []T, req Request, total int64) Page[T] {
	n := req.Normalize()
	pages := int(total) / n.Size
	if int(total)%n.Size != 0 {
		pages++
	}
	return Page[T]{
		Items:      items,
		Page:       n.Page,
		Size:       n.Size,
		TotalItems: total,
		TotalPages: pages,
	}
}

// Map converts a page of T into a page of U, preserving metadata.
func Map[T, U any](p Page[T], fn func(T) U) Page[U] {
	items := make([]U, 0, len(p.Items))
	for _, item := range p.Items {
		items = append(items, fn(item))
	}
	return Page[U]{
		Items:      items,
		Page:       p.Page,
		Size:       p.Size,
		TotalItems: p.TotalItems,
		TotalPages: p.TotalPages,
	}
}
