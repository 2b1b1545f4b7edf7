package search

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/dasamritendu619/sharelearner-server/pkg/internal/models"
	"github.com/samber/lo"
	"gorm.io/gorm"
)

const DefaultCandidates = 500

// LocalSearcher ranks straight out of the store, so there is nothing to keep in sync.
// Only the newest candidates matching any term are ranked, the rest of the table is never read.
type LocalSearcher struct {
	db         *gorm.DB
	candidates int
}

func NewLocalSearcher(db *gorm.DB, candidates int) *LocalSearcher {
	if candidates <= 0 {
		candidates = DefaultCandidates
	}
	return &LocalSearcher{db: db, candidates: candidates}
}

func (s *LocalSearcher) Put(context.Context, Document) error {
	return nil
}

func (s *LocalSearcher) Remove(context.Context, Index, uint) error {
	return nil
}

type candidate struct {
	ID        uint
	CreatedAt time.Time
	Title     string
	Content   string
	FullName  string
	Username  string
	GroupName string
}

func (c candidate) text(name string) string {
	switch name {
	case "title":
		return c.Title
	case "content":
		return c.Content
	case "full_name":
		return c.FullName
	case "username":
		return c.Username
	case "group_name":
		return c.GroupName
	}
	return ""
}

func (s *LocalSearcher) Search(ctx context.Context, index Index, query string, offset, limit int) (Hits, error) {
	fields, ok := indexFields[index]
	if !ok {
		return Hits{}, fmt.Errorf("unknown index: %s", index)
	}
	terms := lo.Uniq(Tokenize(query))
	if len(terms) == 0 {
		return Hits{}, nil
	}

	columns := fieldNames(index)
	cond, args := anyTermCondition(columns, terms)
	compact := compactQuery(query)
	keep := HasScore[candidate]

	tx := s.db.WithContext(ctx).Select(append([]string{"id", "created_at"}, columns...))
	switch index {
	case IndexPosts:
		tx = tx.Model(&models.Post{}).Where("visibility = ?", models.PostVisibilityPublic).Where(cond, args...)
	case IndexUsers:
		// Users also match on a bare username substring, those score zero and come last
		tx = tx.Model(&models.User{}).Where("("+cond+" OR LOWER(username) LIKE ?)", append(args, "%"+compact+"%")...)
		keep = func(item candidate, score float64) bool {
			return score > 0 || strings.Contains(strings.ToLower(item.Username), compact)
		}
	case IndexGroups:
		tx = tx.Model(&models.Group{}).Where(cond, args...)
	}

	var rows []candidate
	if err := tx.Order("created_at DESC").Limit(s.candidates).Find(&rows).Error; err != nil {
		return Hits{}, fmt.Errorf("failed to load %s candidates: %w", index, err)
	}

	ranked := Rank(rows, func(item candidate) float64 {
		return Score(query, lo.Map(fields, func(f field, _ int) Field {
			return Field{Text: item.text(f.name), Weight: f.weight}
		})...)
	}, func(item candidate) time.Time {
		return item.CreatedAt
	}, keep)

	return Hits{
		IDs: lo.Map(lo.Slice(ranked, offset, offset+limit), func(item candidate, _ int) uint {
			return item.ID
		}),
		Total: int64(len(ranked)),
	}, nil
}
