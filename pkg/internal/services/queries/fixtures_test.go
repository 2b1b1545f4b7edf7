package queries

import (
	"fmt"
	"testing"

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

func seedUser(t *testing.T, db *gorm.DB, username, fullName string) models.User {
	t.Helper()
	user := models.User{
		Username: username,
		Email:    username + "@example.com",
		FullName: fullName,
		Avatar:   "https://cdn.example.com/upload/" + username + ".png",
	}
	require.NoError(t, db.Create(&user).Error)
	return user
}

func seedPost(t *testing.T, db *gorm.DB, author uint, title, visibility string) models.Post {
	t.Helper()
	post := models.Post{
		Title:      title,
		Content:    "A long enough body for a blog post that passes every length check we have.",
		Type:       models.PostTypeBlog,
		Visibility: visibility,
		AuthorID:   author,
	}
	require.NoError(t, db.Create(&post).Error)
	return post
}

func seed(t *testing.T, db *gorm.DB, rows ...any) {
	t.Helper()
	for _, row := range rows {
		require.NoError(t, db.Create(row).Error)
	}
}
