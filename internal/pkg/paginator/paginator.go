package paginator

import (
	"context"
	"fmt"
	"math"

	"github.com/paulexconde/vaxreview/internal/pkg/store"
)

// DefaultSize is used when the request leaves size unset.
const DefaultSize = 10

type PageRequest struct {
	Page int `json:"page"`
	Size int `json:"size"`
}

// Normalize clamps page to 1 and fills the default size.
func (r PageRequest) Normalize() PageRequest {
	if r.Page < 1 {
		r.Page = 1
	}
	if r.Size < 1 {
		r.Size = DefaultSize
	}
	return r
}

// Offset saturates instead of overflowing, so a huge page lands past the end.
func (r PageRequest) Offset() int {
	r = r.Normalize()
	skip := r.Page - 1
	if skip > math.MaxInt/r.Size-1 {
		return math.MaxInt - r.Size
	}
	return skip * r.Size
}

// Pages is the number of pages total rows fill.
func Pages(total, size int) int {
	if total <= 0 || size <= 0 {
		return 0
	}
	n := total / size
	if total%size != 0 {
		n++
	}
	return n
}

type PageMeta struct {
	Total   int  `json:"total"`
	Page    int  `json:"page"`
	Size    int  `json:"size"`
	HasNext bool `json:"has_next"`
}

func NewPageMeta(total int, req PageRequest) PageMeta {
	req = req.Normalize()
	return PageMeta{
		Total:   total,
		Page:    req.Page,
		Size:    req.Size,
		HasNext: req.Page < Pages(total, req.Size),
	}
}

type Page[T any] struct {
	PageMeta PageMeta `json:"page_meta"`
	Contents []T      `json:"contents"`
}

type Paginator[T any] interface {
	// Pagination based from custom query. The query must already be in
	// postgres bind form ($1, $2, ...) and carry its own ORDER BY.
	PaginateQuery(ctx context.Context, query string, args []any, req PageRequest) (*Page[T], error)
}

type paginatorImpl[T any] struct {
	datastore store.Datastorer[T]
}

func NewPaginator[T any](ds store.Datastorer[T]) Paginator[T] {
	return &paginatorImpl[T]{datastore: ds}
}

func (p *paginatorImpl[T]) PaginateQuery(ctx context.Context, query string, args []any, req PageRequest) (*Page[T], error) {
	req = req.Normalize()

	// Count total rows using a subquery
	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM (%s) AS total_count", query)
	totalRaw, err := p.datastore.QueryRow(ctx, countQuery, args...)
	if err != nil {
		return nil, err
	}

	var total int
	switch v := totalRaw.(type) {
	case int:
		total = v
	case int64:
		total = int(v)
	default:
		return nil, fmt.Errorf("expected int for total count, got %T", totalRaw)
	}

	meta := NewPageMeta(total, req)
	if req.Offset() >= total {
		return &Page[T]{PageMeta: meta, Contents: []T{}}, nil
	}

	paginatedQuery := fmt.Sprintf("%s LIMIT $%d OFFSET $%d", query, len(args)+1, len(args)+2)
	pageArgs := append(append([]any{}, args...), req.Size, req.Offset())

	items, err := p.datastore.Select(ctx, paginatedQuery, pageArgs...)
	if err != nil {
		return nil, err
	}

	return &Page[T]{PageMeta: meta, Contents: items}, nil
}
