package services

import (
	"context"
	"strings"
	"testing"

	"github.com/dasamritendu619/sharelearner-server/pkg/internal/models"
	"github.com/dasamritendu619/sharelearner-server/pkg/internal/search"
	"github.com/dasamritendu619/sharelearner-server/pkg/internal/storage"
	"github.com/samber/lo"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestCreateGroupSeedsAdmin(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	db := newTestDB(t)
	store := &memoryStore{}
	alice := seedUser(t, db, "alice")

	_, err := CreateGroup(ctx, db, store, &memoryIndex{}, alice.ID, GroupInput{GroupName: "  "})
	require.True(t, IsKind(err, KindValidation))
	_, err = CreateGroup(ctx, db, store, &memoryIndex{}, alice.ID, GroupInput{GroupName: strings.Repeat("g", models.MaxGroupNameLength+1)})
	require.True(t, IsKind(err, KindValidation))

	group, err := CreateGroup(ctx, db, store, &memoryIndex{}, alice.ID, GroupInput{GroupName: "Gophers", IconPath: "/tmp/icon.png"})
	require.NoError(t, err)
	require.True(t, group.OnlyAdminCanEditGroupSettings)
	require.Equal(t, store.uploaded[0], storage.PublicRef(group.GroupIcon))

	member, err := findMember(ctx, db, group.ID, alice.ID)
	require.NoError(t, err)
	require.NotNil(t, member)
	require.Equal(t, models.MemberRoleAdmin, member.Role)
}

func TestGroupSettingsGateEdits(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	db := newTestDB(t)
	store := &memoryStore{}
	alice := seedUser(t, db, "alice")
	bob := seedUser(t, db, "bob")
	carol := seedUser(t, db, "carol")

	group, err := CreateGroup(ctx, db, store, &memoryIndex{}, alice.ID, GroupInput{GroupName: "Gophers"})
	require.NoError(t, err)
	_, err = JoinGroup(ctx, db, bob.ID, group.ID, alice.ID)
	require.NoError(t, err)

	_, err = UpdateGroupImage(ctx, db, store, bob.ID, group.ID, ImageGroupBanner, "/tmp/banner.png")
	require.True(t, IsKind(err, KindForbidden))
	_, err = UpdateGroupSettings(ctx, db, bob.ID, group.ID, false)
	require.True(t, IsKind(err, KindForbidden))

	_, err = UpdateGroupSettings(ctx, db, alice.ID, group.ID, false)
	require.NoError(t, err)

	updated, err := UpdateGroupImage(ctx, db, store, bob.ID, group.ID, ImageGroupBanner, "/tmp/banner.png")
	require.NoError(t, err)
	require.Equal(t, store.uploaded[0], storage.PublicRef(updated.GroupBanner))
	require.Empty(t, store.deleted)

	// The previous upload is removed on the next swap
	_, err = UpdateGroupImage(ctx, db, store, bob.ID, group.ID, ImageGroupBanner, "/tmp/banner-2.png")
	require.NoError(t, err)
	require.Equal(t, []string{store.uploaded[0]}, store.deleted)

	renamed, err := UpdateGroup(ctx, db, &memoryIndex{}, bob.ID, group.ID, GroupPatch{Description: lo.ToPtr("We write Go")})
	require.NoError(t, err)
	require.Equal(t, "We write Go", renamed.Description)

	_, err = UpdateGroup(ctx, db, &memoryIndex{}, carol.ID, group.ID, GroupPatch{GroupName: lo.ToPtr("Mine")})
	require.True(t, IsKind(err, KindForbidden))
	_, err = UpdateGroupImage(ctx, db, store, bob.ID, group.ID, "avatar", "/tmp/x.png")
	require.True(t, IsKind(err, KindValidation))
}

func TestDeleteGroup(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	db := newTestDB(t)
	store := &memoryStore{}
	alice := seedUser(t, db, "alice")
	bob := seedUser(t, db, "bob")

	group, err := CreateGroup(ctx, db, store, &memoryIndex{}, alice.ID, GroupInput{GroupName: "Gophers", IconPath: "/tmp/icon.png"})
	require.NoError(t, err)
	_, err = AddMember(ctx, db, alice.ID, group.ID, bob.ID)
	require.NoError(t, err)

	require.True(t, IsKind(DeleteGroup(ctx, db, store, &memoryIndex{}, bob.ID, group.ID), KindForbidden))

	store.failDelete = true
	require.True(t, IsKind(DeleteGroup(ctx, db, store, &memoryIndex{}, alice.ID, group.ID), KindUpload))
	require.EqualValues(t, 1, countRows[models.Group](t, db, "id = ?", group.ID))

	store.failDelete = false
	require.NoError(t, DeleteGroup(ctx, db, store, &memoryIndex{}, alice.ID, group.ID))
	require.Zero(t, countRows[models.Group](t, db, "id = ?", group.ID))
	require.Zero(t, countRows[models.Member](t, db, "group_id = ?", group.ID))
	require.Equal(t, []string{store.uploaded[0]}, store.deleted)
}

func TestDeleteGroupResetsImagesWhenOneFails(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	db := newTestDB(t)
	store := &memoryStore{}
	index := &memoryIndex{}
	alice := seedUser(t, db, "alice")

	group, err := CreateGroup(ctx, db, store, index, alice.ID, GroupInput{GroupName: "Gophers", IconPath: "/tmp/icon.png"})
	require.NoError(t, err)
	group, err = UpdateGroupImage(ctx, db, store, alice.ID, group.ID, ImageGroupBanner, "/tmp/banner.png")
	require.NoError(t, err)
	_, ok := index.get(search.IndexGroups, group.ID)
	require.True(t, ok)

	icon, banner := store.uploaded[0], store.uploaded[1]
	store.failRef = banner
	require.True(t, IsKind(DeleteGroup(ctx, db, store, index, alice.ID, group.ID), KindUpload))
	require.Equal(t, []string{icon}, store.deleted)

	var kept models.Group
	require.NoError(t, db.First(&kept, group.ID).Error)
	require.Equal(t, DefaultImage(ImageGroupIcon), kept.GroupIcon)
	require.Equal(t, group.GroupBanner, kept.GroupBanner)
	require.EqualValues(t, 1, countRows[models.Member](t, db, "group_id = ?", group.ID))
	_, ok = index.get(search.IndexGroups, group.ID)
	require.True(t, ok)

	// The icon is already gone, so a retry only needs the banner
	store.failRef = ""
	require.NoError(t, DeleteGroup(ctx, db, store, index, alice.ID, group.ID))
	require.Equal(t, []string{icon, banner}, store.deleted)
	require.Zero(t, countRows[models.Group](t, db, "id = ?", group.ID))
	_, ok = index.get(search.IndexGroups, group.ID)
	require.False(t, ok)
}

func TestUpdateGroupImageKeepsOldImageWhenRowFails(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	db := newTestDB(t)
	store := &memoryStore{}
	alice := seedUser(t, db, "alice")

	group, err := CreateGroup(ctx, db, store, &memoryIndex{}, alice.ID, GroupInput{GroupName: "Gophers", IconPath: "/tmp/icon.png"})
	require.NoError(t, err)

	require.NoError(t, db.Callback().Update().Before("gorm:update").Register("fail_group_update", func(tx *gorm.DB) {
		if tx.Statement.Table == "sl_groups" {
			_ = tx.AddError(errStorageDown)
		}
	}))

	_, err = UpdateGroupImage(ctx, db, store, alice.ID, group.ID, ImageGroupIcon, "/tmp/icon-2.png")
	require.True(t, IsKind(err, KindInternal))
	require.Len(t, store.uploaded, 2)
	require.Equal(t, []string{store.uploaded[1]}, store.deleted, "only the unused upload is removed")

	var kept models.Group
	require.NoError(t, db.First(&kept, group.ID).Error)
	require.Equal(t, group.GroupIcon, kept.GroupIcon)
}

func TestGroupSearchIndex(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	db := newTestDB(t)
	index := &memoryIndex{}
	alice := seedUser(t, db, "alice")

	group, err := CreateGroup(ctx, db, &memoryStore{}, index, alice.ID, GroupInput{GroupName: "Gophers"})
	require.NoError(t, err)
	doc, ok := index.get(search.IndexGroups, group.ID)
	require.True(t, ok)
	require.Equal(t, "Gophers", doc.Fields["group_name"])

	_, err = UpdateGroup(ctx, db, index, alice.ID, group.ID, GroupPatch{GroupName: lo.ToPtr("Rustaceans")})
	require.NoError(t, err)
	doc, _ = index.get(search.IndexGroups, group.ID)
	require.Equal(t, "Rustaceans", doc.Fields["group_name"])
}

func TestMemberRules(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	db := newTestDB(t)
	store := &memoryStore{}
	alice := seedUser(t, db, "alice")
	bob := seedUser(t, db, "bob")
	carol := seedUser(t, db, "carol")

	group, err := CreateGroup(ctx, db, store, &memoryIndex{}, alice.ID, GroupInput{GroupName: "Gophers"})
	require.NoError(t, err)

	// Invites must come from an admin
	_, err = JoinGroup(ctx, db, carol.ID, group.ID, bob.ID)
	require.True(t, IsKind(err, KindForbidden))

	_, err = AddMember(ctx, db, alice.ID, group.ID, bob.ID)
	require.NoError(t, err)
	_, err = AddMember(ctx, db, alice.ID, group.ID, bob.ID)
	require.True(t, IsKind(err, KindConflict))
	_, err = AddMember(ctx, db, bob.ID, group.ID, carol.ID)
	require.True(t, IsKind(err, KindForbidden))
	_, err = AddMember(ctx, db, alice.ID, group.ID, carol.ID+100)
	require.True(t, IsKind(err, KindNotFound))

	// The last admin stays
	_, err = ToggleAdminRole(ctx, db, alice.ID, group.ID, alice.ID)
	require.True(t, IsKind(err, KindValidation))
	require.True(t, IsKind(LeaveGroup(ctx, db, alice.ID, group.ID), KindValidation))
	require.True(t, IsKind(RemoveMember(ctx, db, alice.ID, group.ID, alice.ID), KindValidation))

	promoted, err := ToggleAdminRole(ctx, db, alice.ID, group.ID, bob.ID)
	require.NoError(t, err)
	require.Equal(t, models.MemberRoleAdmin, promoted.Role)

	require.NoError(t, LeaveGroup(ctx, db, alice.ID, group.ID))
	require.True(t, IsKind(LeaveGroup(ctx, db, alice.ID, group.ID), KindNotFound))

	_, err = JoinGroup(ctx, db, carol.ID, group.ID, bob.ID)
	require.NoError(t, err)
	require.NoError(t, RemoveMember(ctx, db, bob.ID, group.ID, carol.ID))
	require.True(t, IsKind(RemoveMember(ctx, db, bob.ID, group.ID, carol.ID), KindNotFound))
}
