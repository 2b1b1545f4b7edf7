package queries

import (
	"context"
	"fmt"
	"time"

	"github.com/dasamritendu619/sharelearner-server/pkg/internal/models"
	"github.com/dasamritendu619/sharelearner-server/pkg/internal/search"
	"github.com/dasamritendu619/sharelearner-server/pkg/internal/services"
	"github.com/samber/lo"
	"gorm.io/gorm"
)

const (
	// SuggestionLimit is how many past queries a suggestion lookup returns.
	SuggestionLimit = 10

	suggestionCandidates = 200
)

func searchQuery(query string) (string, error) {
	q := services.NormalizeQuery(query)
	if q == "" {
		return q, services.ValidationError("search query is required")
	}
	return q, nil
}

// hitSource pages through the hits of a searcher. Hits whose rows are gone are skipped.
type hitSource[R any, T any] struct {
	searcher search.Searcher
	index    search.Index
	query    string
	req      PageRequest
	load     func(ctx context.Context, ids []uint) (map[uint]R, error)
	shape    Shaper[R, T]

	cached *search.Hits
	offset int
	limit  int
}

func (s *hitSource[R, T]) hits(ctx context.Context, offset, limit int) (search.Hits, error) {
	if s.cached != nil && s.offset == offset && s.limit == limit {
		return *s.cached, nil
	}
	hits, err := s.searcher.Search(ctx, s.index, s.query, offset, limit)
	if err != nil {
		return hits, err
	}
	s.cached, s.offset, s.limit = &hits, offset, limit
	return hits, nil
}

func (s *hitSource[R, T]) Count(ctx context.Context) (int64, error) {
	hits, err := s.hits(ctx, s.req.Offset(), s.req.Limit)
	return hits.Total, err
}

func (s *hitSource[R, T]) Fetch(ctx context.Context, offset, limit int) ([]T, error) {
	hits, err := s.hits(ctx, offset, limit)
	if err != nil {
		return nil, err
	}
	rows, err := s.load(ctx, hits.IDs)
	if err != nil {
		return nil, err
	}
	return s.shape(ctx, lo.FilterMap(hits.IDs, func(id uint, _ int) (R, bool) {
		row, ok := rows[id]
		return row, ok
	}))
}

func loadByID[M any](ctx context.Context, db *gorm.DB, ids []uint, idOf func(M) uint, scopes ...Scope) (map[uint]M, error) {
	if len(ids) == 0 {
		return map[uint]M{}, nil
	}
	var rows []M
	if err := db.WithContext(ctx).Scopes(scopes...).Where("id IN ?", ids).Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to load rows: %w", err)
	}
	return lo.SliceToMap(rows, func(item M) (uint, M) { return idOf(item), item }), nil
}

func searchPage[R any, T any](
	ctx context.Context,
	searcher search.Searcher,
	index search.Index,
	query string,
	req PageRequest,
	load func(ctx context.Context, ids []uint) (map[uint]R, error),
	shape Shaper[R, T],
) (Page[T], error) {
	q, err := searchQuery(query)
	if err != nil {
		return Page[T]{}, err
	}

	req = NewPageRequest(req.Page, req.Limit, DefaultPageLimit)
	page, err := Paginate[T](ctx, &hitSource[R, T]{
		searcher: searcher,
		index:    index,
		query:    q,
		req:      req,
		load:     load,
		shape:    shape,
	}, req)
	if err != nil {
		return page, services.InternalError(err, "unable to search %s", index)
	}
	return page, nil
}

// SearchPosts ranks public posts by title and content relevance.
func SearchPosts(ctx context.Context, db *gorm.DB, searcher search.Searcher, query string, viewer *uint, req PageRequest) (Page[PostView], error) {
	load := func(ctx context.Context, ids []uint) (map[uint]models.Post, error) {
		return loadByID(ctx, db, ids, func(item models.Post) uint { return item.ID }, func(tx *gorm.DB) *gorm.DB {
			return tx.Where("visibility = ?", models.PostVisibilityPublic)
		})
	}
	return searchPage(ctx, searcher, search.IndexPosts, query, req, load, postShaper(db, viewer))
}

// SearchUsers ranks users by full name and username. Users matched only by a username
// substring come last.
func SearchUsers(ctx context.Context, db *gorm.DB, searcher search.Searcher, query string, viewer *uint, req PageRequest) (Page[ProfileCard], error) {
	load := func(ctx context.Context, ids []uint) (map[uint]models.User, error) {
		return loadByID(ctx, db, ids, func(item models.User) uint { return item.ID }, func(tx *gorm.DB) *gorm.DB {
			return tx.Select("id")
		})
	}
	return searchPage(ctx, searcher, search.IndexUsers, query, req, load, profileCardShaper(db, viewer, func(item models.User) uint {
		return item.ID
	}))
}

func SearchGroups(ctx context.Context, db *gorm.DB, searcher search.Searcher, query string, viewer *uint, req PageRequest) (Page[GroupView], error) {
	load := func(ctx context.Context, ids []uint) (map[uint]models.Group, error) {
		return loadByID(ctx, db, ids, func(item models.Group) uint { return item.ID })
	}
	return searchPage(ctx, searcher, search.IndexGroups, query, req, load, groupShaper(db, viewer))
}

// SearchSuggestions returns the past queries most relevant to the term.
func SearchSuggestions(ctx context.Context, db *gorm.DB, query string) ([]models.SearchLog, error) {
	q, err := searchQuery(query)
	if err != nil {
		return nil, err
	}
	terms := lo.Uniq(search.Tokenize(q))

	var candidates []models.SearchLog
	if err := db.WithContext(ctx).
		Scopes(search.MatchAnyTerm([]string{"query"}, terms)).
		Order("created_at DESC").
		Limit(suggestionCandidates).
		Find(&candidates).Error; err != nil {
		return nil, services.InternalError(err, "unable to load search suggestions")
	}

	rows := search.Rank(candidates, func(item models.SearchLog) float64 {
		return search.Score(q, search.Field{Text: item.Query, Weight: 1})
	}, func(item models.SearchLog) time.Time {
		return item.CreatedAt
	}, search.HasScore[models.SearchLog])

	if len(rows) > SuggestionLimit {
		rows = rows[:SuggestionLimit]
	}
	return rows, nil
}
