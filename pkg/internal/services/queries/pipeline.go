package queries

import (
	"context"
	"fmt"

	"github.com/samber/lo"
	"gorm.io/gorm"
)

// Scope is a filter stage on the root collection.
type Scope = func(tx *gorm.DB) *gorm.DB

// Shaper runs the expand, flag, count and shape stages over one slice of root rows.
// It must keep the length and order of rows.
type Shaper[R any, T any] func(ctx context.Context, rows []R) ([]T, error)

// Pipeline is a filtered, ordered root collection and the stages that shape each page of it.
// Shaping never drops or reorders rows, so it only runs on the slice being returned.
type Pipeline[R any, T any] struct {
	db     *gorm.DB
	scopes []Scope
	order  string
	shape  Shaper[R, T]
}

func NewPipeline[R any, T any](db *gorm.DB, shape Shaper[R, T]) *Pipeline[R, T] {
	return &Pipeline[R, T]{db: db, order: "created_at DESC", shape: shape}
}

func (p *Pipeline[R, T]) Filter(scopes ...Scope) *Pipeline[R, T] {
	p.scopes = append(p.scopes, scopes...)
	return p
}

func (p *Pipeline[R, T]) OrderBy(order string) *Pipeline[R, T] {
	p.order = order
	return p
}

func (p *Pipeline[R, T]) root(ctx context.Context) *gorm.DB {
	return p.db.WithContext(ctx).Model(new(R)).Scopes(p.scopes...)
}

func (p *Pipeline[R, T]) Count(ctx context.Context) (int64, error) {
	var count int64
	err := p.root(ctx).Count(&count).Error
	return count, err
}

func (p *Pipeline[R, T]) Fetch(ctx context.Context, offset, limit int) ([]T, error) {
	var rows []R
	if err := p.root(ctx).
		Order(p.order).
		Order("id DESC").
		Offset(offset).
		Limit(limit).
		Find(&rows).Error; err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return []T{}, nil
	}
	return p.shape(ctx, rows)
}

// First shapes the first matching row, gorm.ErrRecordNotFound when nothing matches.
func (p *Pipeline[R, T]) First(ctx context.Context) (T, error) {
	var out T
	items, err := p.Fetch(ctx, 0, 1)
	if err != nil {
		return out, err
	}
	if len(items) == 0 {
		return out, gorm.ErrRecordNotFound
	}
	return items[0], nil
}

// MemorySource pages rows already filtered and ordered in process, by relevance for instance.
type MemorySource[R any, T any] struct {
	rows  []R
	shape Shaper[R, T]
}

func NewMemorySource[R any, T any](rows []R, shape Shaper[R, T]) *MemorySource[R, T] {
	return &MemorySource[R, T]{rows: rows, shape: shape}
}

func (s *MemorySource[R, T]) Count(_ context.Context) (int64, error) {
	return int64(len(s.rows)), nil
}

func (s *MemorySource[R, T]) Fetch(ctx context.Context, offset, limit int) ([]T, error) {
	if offset >= len(s.rows) {
		return []T{}, nil
	}
	return s.shape(ctx, s.rows[offset:min(offset+limit, len(s.rows))])
}

// Relation is a left-outer expansion from root ids to the ids on the other side of a collection.
type Relation struct {
	Model any
	Key   string
	Ref   string
	Scope Scope
}

func (r Relation) query(ctx context.Context, db *gorm.DB, ids []uint) *gorm.DB {
	tx := db.WithContext(ctx).Model(r.Model)
	if r.Scope != nil {
		tx = r.Scope(tx)
	}
	return tx.Where(fmt.Sprintf("%s IN ?", r.Key), ids)
}

// Expand loads the related ids of every root id in one query. Root ids without rows are absent.
func (r Relation) Expand(ctx context.Context, db *gorm.DB, ids []uint) (map[uint][]uint, error) {
	ids = lo.Uniq(ids)
	out := make(map[uint][]uint, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	var rows []struct {
		RelKey uint
		RelRef uint
	}
	if err := r.query(ctx, db, ids).
		Select(fmt.Sprintf("%s AS rel_key, %s AS rel_ref", r.Key, r.Ref)).
		Scan(&rows).Error; err != nil {
		return out, fmt.Errorf("failed to expand %s: %w", r.Key, err)
	}
	for _, row := range rows {
		out[row.RelKey] = append(out[row.RelKey], row.RelRef)
	}
	return out, nil
}

// Count loads only the cardinality of the relation for every root id.
func (r Relation) Count(ctx context.Context, db *gorm.DB, ids []uint) (map[uint]int64, error) {
	ids = lo.Uniq(ids)
	out := make(map[uint]int64, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	var rows []struct {
		RelKey uint
		Count  int64
	}
	if err := r.query(ctx, db, ids).
		Select(fmt.Sprintf("%s AS rel_key, COUNT(*) AS count", r.Key)).
		Group(r.Key).
		Scan(&rows).Error; err != nil {
		return out, fmt.Errorf("failed to count %s: %w", r.Key, err)
	}
	for _, row := range rows {
		out[row.RelKey] = row.Count
	}
	return out, nil
}
