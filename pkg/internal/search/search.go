package search

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/dasamritendu619/sharelearner-server/pkg/internal/models"
	"github.com/samber/lo"
	"github.com/spf13/viper"
	"gorm.io/gorm"
)

type Index string

const (
	IndexPosts  Index = "posts"
	IndexUsers  Index = "users"
	IndexGroups Index = "groups"
)

var Indices = []Index{IndexPosts, IndexUsers, IndexGroups}

type field struct {
	name   string
	weight float64
}

// indexFields are the text fields of each index and their boosts.
var indexFields = map[Index][]field{
	IndexPosts:  {{"title", 2}, {"content", 1}},
	IndexUsers:  {{"full_name", 1}, {"username", 1}},
	IndexGroups: {{"group_name", 1}},
}

func fieldNames(index Index) []string {
	return lo.Map(indexFields[index], func(item field, _ int) string { return item.name })
}

// Document is one searchable row.
type Document struct {
	Index     Index
	ID        uint
	Fields    map[string]string
	CreatedAt time.Time
}

func PostDocument(post models.Post) Document {
	return Document{
		Index:     IndexPosts,
		ID:        post.ID,
		Fields:    map[string]string{"title": post.Title, "content": post.Content},
		CreatedAt: post.CreatedAt,
	}
}

func UserDocument(user models.User) Document {
	return Document{
		Index:     IndexUsers,
		ID:        user.ID,
		Fields:    map[string]string{"full_name": user.FullName, "username": user.Username},
		CreatedAt: user.CreatedAt,
	}
}

func GroupDocument(group models.Group) Document {
	return Document{
		Index:     IndexGroups,
		ID:        group.ID,
		Fields:    map[string]string{"group_name": group.GroupName},
		CreatedAt: group.CreatedAt,
	}
}

// Hits is one page of matching ids, most relevant first, and the number of matches overall.
type Hits struct {
	IDs   []uint
	Total int64
}

// Indexer keeps a search backend in step with the store.
type Indexer interface {
	Put(ctx context.Context, doc Document) error
	Remove(ctx context.Context, index Index, id uint) error
}

type Searcher interface {
	Indexer
	Search(ctx context.Context, index Index, query string, offset, limit int) (Hits, error)
}

// compactQuery is the query with everything but letters and digits removed, used for username substrings.
func compactQuery(query string) string {
	return strings.Join(Tokenize(query), "")
}

func NewFromViper(ctx context.Context, db *gorm.DB) (Searcher, error) {
	switch driver := viper.GetString("search.driver"); driver {
	case "local", "":
		return NewLocalSearcher(db, viper.GetInt("search.local.candidates")), nil
	case "elasticsearch":
		var cfg ElasticConfig
		if err := viper.UnmarshalKey("search.elasticsearch", &cfg); err != nil {
			return nil, fmt.Errorf("failed to read elasticsearch settings: %w", err)
		}
		searcher, err := NewElasticSearcher(cfg)
		if err != nil {
			return nil, err
		}
		if err := searcher.EnsureIndices(ctx); err != nil {
			return nil, err
		}
		return searcher, nil
	default:
		return nil, fmt.Errorf("unsupported search driver: %s", driver)
	}
}
