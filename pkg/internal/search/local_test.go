package search

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/dasamritendu619/sharelearner-server/pkg/internal/database"
	"github.com/dasamritendu619/sharelearner-server/pkg/internal/models"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := database.Open(database.DriverSqlite, fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString()), "sl_", false)
	require.NoError(t, err)
	require.NoError(t, database.RunMigration(db))

	raw, err := db.DB()
	require.NoError(t, err)
	raw.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = raw.Close() })

	return db
}

func seedPosts(t *testing.T, db *gorm.DB, n int, title, visibility string) []models.Post {
	t.Helper()
	posts := make([]models.Post, 0, n)
	base := time.Now().Add(-time.Duration(n) * time.Minute)
	for i := 0; i < n; i++ {
		post := models.Post{
			Title:      title,
			Type:       models.PostTypeBlog,
			Visibility: visibility,
			AuthorID:   1,
		}
		post.CreatedAt = base.Add(time.Duration(i) * time.Minute)
		require.NoError(t, db.Create(&post).Error)
		posts = append(posts, post)
	}
	return posts
}

func TestLocalSearcherRanksOnlyNewestCandidates(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	db := newTestDB(t)
	posts := seedPosts(t, db, 8, "golang notes", models.PostVisibilityPublic)
	seedPosts(t, db, 2, "golang secrets", models.PostVisibilityPrivate)

	var loaded int
	require.NoError(t, db.Callback().Query().After("gorm:query").Register("count_rows", func(tx *gorm.DB) {
		if tx.Statement.Table == "sl_posts" {
			loaded += int(tx.RowsAffected)
		}
	}))

	searcher := NewLocalSearcher(db, 5)
	hits, err := searcher.Search(ctx, IndexPosts, "golang", 0, 3)
	require.NoError(t, err)
	require.LessOrEqual(t, loaded, 5)
	require.EqualValues(t, 5, hits.Total)
	require.Equal(t, []uint{posts[7].ID, posts[6].ID, posts[5].ID}, hits.IDs)

	hits, err = searcher.Search(ctx, IndexPosts, "golang", 3, 3)
	require.NoError(t, err)
	require.Equal(t, []uint{posts[4].ID, posts[3].ID}, hits.IDs)

	hits, err = searcher.Search(ctx, IndexPosts, "golang", 30, 3)
	require.NoError(t, err)
	require.Empty(t, hits.IDs)
	require.EqualValues(t, 5, hits.Total)
}

func TestLocalSearcherUsernameSubstring(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	db := newTestDB(t)

	byName := models.User{Username: "asmith", Email: "asmith@example.com", FullName: "Ann Smith"}
	byUsername := models.User{Username: "annabelle", Email: "annabelle@example.com", FullName: "Belle Jones"}
	other := models.User{Username: "bob", Email: "bob@example.com", FullName: "Bob Builder"}
	for _, user := range []*models.User{&byName, &byUsername, &other} {
		require.NoError(t, db.Create(user).Error)
	}

	hits, err := NewLocalSearcher(db, 0).Search(ctx, IndexUsers, "Ann", 0, 10)
	require.NoError(t, err)
	require.Equal(t, Hits{IDs: []uint{byName.ID, byUsername.ID}, Total: 2}, hits)

	hits, err = NewLocalSearcher(db, 0).Search(ctx, IndexUsers, " ... ", 0, 10)
	require.NoError(t, err)
	require.Empty(t, hits.IDs)
}
