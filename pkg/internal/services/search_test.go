package services

import (
	"context"
	"testing"

	"github.com/dasamritendu619/sharelearner-server/pkg/internal/models"
	"github.com/dasamritendu619/sharelearner-server/pkg/internal/search"
	"github.com/stretchr/testify/require"
)

func TestLogSearchQuery(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	db := newTestDB(t)

	require.NoError(t, LogSearchQuery(ctx, db, "Golang Generics"))
	require.NoError(t, LogSearchQuery(ctx, db, "  golang generics "))
	require.NoError(t, LogSearchQuery(ctx, db, "GOLANG GENERICS"))

	var logs []models.SearchLog
	require.NoError(t, db.Find(&logs).Error)
	require.Len(t, logs, 1)
	require.Equal(t, "golang generics", logs[0].Query)
	require.Equal(t, 1, logs[0].HitCount)

	require.True(t, IsKind(LogSearchQuery(ctx, db, "   "), KindValidation))
}

func TestReindexSearch(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	db := newTestDB(t)
	alice := seedUser(t, db, "alice")
	public := seedBlog(t, db, alice.ID, models.PostVisibilityPublic)
	private := seedBlog(t, db, alice.ID, models.PostVisibilityPrivate)
	group := models.Group{GroupName: "Gophers", CreatedByID: alice.ID}
	require.NoError(t, db.Create(&group).Error)

	index := &memoryIndex{}
	require.NoError(t, ReindexSearch(ctx, db, index))

	_, ok := index.get(search.IndexPosts, public.ID)
	require.True(t, ok)
	_, ok = index.get(search.IndexPosts, private.ID)
	require.False(t, ok)
	doc, ok := index.get(search.IndexUsers, alice.ID)
	require.True(t, ok)
	require.Equal(t, "alice", doc.Fields["username"])
	doc, ok = index.get(search.IndexGroups, group.ID)
	require.True(t, ok)
	require.Equal(t, "Gophers", doc.Fields["group_name"])
}
