package queries

import (
	"context"
	"fmt"
)

const (
	DefaultPageLimit = 20
	FeedPageLimit    = 10
	MaxPageLimit     = 100
)

type PageRequest struct {
	Page  int
	Limit int
}

// NewPageRequest coerces raw input, values below one fall back to the defaults.
func NewPageRequest(page, limit, defaultLimit int) PageRequest {
	if defaultLimit <= 0 {
		defaultLimit = DefaultPageLimit
	}
	if page <= 0 {
		page = 1
	}
	if limit <= 0 {
		limit = defaultLimit
	}
	if limit > MaxPageLimit {
		limit = MaxPageLimit
	}
	return PageRequest{Page: page, Limit: limit}
}

func (v PageRequest) Offset() int {
	return (v.Page - 1) * v.Limit
}

type Page[T any] struct {
	Items       []T   `json:"items"`
	TotalItems  int64 `json:"total_items"`
	TotalPages  int   `json:"total_pages"`
	CurrentPage int   `json:"current_page"`
	Limit       int   `json:"limit"`
	HasNext     bool  `json:"has_next"`
	HasPrev     bool  `json:"has_prev"`
}

// Source is a filtered and ordered collection that can be counted and sliced.
type Source[T any] interface {
	Count(ctx context.Context) (int64, error)
	Fetch(ctx context.Context, offset, limit int) ([]T, error)
}

// Paginate counts the source before slicing it. A page past the end is empty, not an error.
func Paginate[T any](ctx context.Context, src Source[T], req PageRequest) (Page[T], error) {
	req = NewPageRequest(req.Page, req.Limit, DefaultPageLimit)

	total, err := src.Count(ctx)
	if err != nil {
		return Page[T]{}, fmt.Errorf("failed to count items: %w", err)
	}

	items := []T{}
	if int64(req.Offset()) < total {
		fetched, err := src.Fetch(ctx, req.Offset(), req.Limit)
		if err != nil {
			return Page[T]{}, fmt.Errorf("failed to fetch items: %w", err)
		}
		if fetched != nil {
			items = fetched
		}
	}

	totalPages := int((total + int64(req.Limit) - 1) / int64(req.Limit))
	return Page[T]{
		Items:       items,
		TotalItems:  total,
		TotalPages:  totalPages,
		CurrentPage: req.Page,
		Limit:       req.Limit,
		HasNext:     req.Page < totalPages,
		HasPrev:     req.Page > 1,
	}, nil
}
