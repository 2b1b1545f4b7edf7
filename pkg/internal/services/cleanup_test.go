package services

import (
	"testing"
	"time"

	"github.com/dasamritendu619/sharelearner-server/pkg/internal/models"
	"github.com/samber/lo"
	"github.com/stretchr/testify/require"
)

func TestDoAutoDatabaseCleanup(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	alice := seedUser(t, db, "alice")
	bob := seedUser(t, db, "bob")
	kept := seedBlog(t, db, alice.ID, models.PostVisibilityPublic)
	gone := seedBlog(t, db, alice.ID, models.PostVisibilityPublic)

	orphan := models.Comment{Content: "left behind", PostID: gone.ID, CommentedByID: bob.ID}
	require.NoError(t, db.Create(&orphan).Error)
	require.NoError(t, db.Create(&models.Reply{Content: "me too", CommentID: orphan.ID, PostID: gone.ID, RepliedByID: alice.ID}).Error)
	require.NoError(t, db.Create(&models.Save{PostID: gone.ID, SavedByID: bob.ID}).Error)
	require.NoError(t, db.Create(&models.Save{PostID: kept.ID, SavedByID: bob.ID}).Error)
	require.NoError(t, db.Create(&models.Like{TargetKind: models.LikeTargetPost, TargetID: gone.ID, LikedByID: bob.ID}).Error)
	require.NoError(t, db.Create(&models.Like{TargetKind: models.LikeTargetPost, TargetID: kept.ID, LikedByID: bob.ID}).Error)
	require.NoError(t, db.Create(&models.Member{GroupID: 999, UserID: bob.ID, Role: models.MemberRoleAdmin}).Error)
	require.NoError(t, db.Delete(&gone).Error)

	require.NoError(t, db.Model(&alice).Updates(map[string]any{
		"login_otp":        lo.ToPtr("123456"),
		"login_expires_at": time.Now().Add(-time.Hour),
	}).Error)
	require.NoError(t, db.Model(&bob).Updates(map[string]any{
		"login_otp":        lo.ToPtr("654321"),
		"login_expires_at": time.Now().Add(time.Hour),
	}).Error)

	DoAutoDatabaseCleanup(db)

	require.Zero(t, countRows[models.Comment](t, db, "post_id = ?", gone.ID))
	require.Zero(t, countRows[models.Reply](t, db, "post_id = ?", gone.ID))
	require.Zero(t, countRows[models.Save](t, db, "post_id = ?", gone.ID))
	require.Zero(t, countRows[models.Like](t, db, "target_id = ?", gone.ID))
	require.Zero(t, countRows[models.Member](t, db, "group_id = ?", 999))
	require.EqualValues(t, 1, countRows[models.Save](t, db, "post_id = ?", kept.ID))
	require.EqualValues(t, 1, countRows[models.Like](t, db, "target_id = ?", kept.ID))

	var users []models.User
	require.NoError(t, db.Order("id").Find(&users).Error)
	require.Nil(t, users[0].LoginOTP)
	require.NotNil(t, users[1].LoginOTP)
}
