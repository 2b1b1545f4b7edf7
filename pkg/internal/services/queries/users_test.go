package queries

import (
	"context"
	"testing"

	"github.com/dasamritendu619/sharelearner-server/pkg/internal/models"
	"github.com/dasamritendu619/sharelearner-server/pkg/internal/services"
	"github.com/samber/lo"
	"github.com/stretchr/testify/require"
)

func TestGetProfile(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	db := newTestDB(t)

	alice := seedUser(t, db, "alice", "Alice Liddell")
	bob := seedUser(t, db, "bob", "Bob Builder")
	carol := seedUser(t, db, "carol", "Carol Danvers")
	seed(t, db,
		&models.Follow{FollowedByID: bob.ID, ProfileID: alice.ID},
		&models.Follow{FollowedByID: carol.ID, ProfileID: alice.ID},
		&models.Follow{FollowedByID: alice.ID, ProfileID: bob.ID},
	)
	seedPost(t, db, alice.ID, "first", models.PostVisibilityPublic)

	profile, err := GetProfile(ctx, db, "alice", &bob.ID)
	require.NoError(t, err)
	require.Equal(t, 2, profile.FollowersCount)
	require.Equal(t, 1, profile.FollowingsCount)
	require.Equal(t, 1, profile.PostsCount)
	require.True(t, profile.IsFollowedByMe)

	profile, err = GetProfile(ctx, db, "alice", nil)
	require.NoError(t, err)
	require.False(t, profile.IsFollowedByMe)

	_, err = GetProfile(ctx, db, "nobody", nil)
	require.True(t, services.IsKind(err, services.KindNotFound))
}

func TestListFollowersAndFollowings(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	db := newTestDB(t)

	alice := seedUser(t, db, "alice", "Alice Liddell")
	bob := seedUser(t, db, "bob", "Bob Builder")
	carol := seedUser(t, db, "carol", "Carol Danvers")
	seed(t, db,
		&models.Follow{FollowedByID: bob.ID, ProfileID: alice.ID},
		&models.Follow{FollowedByID: carol.ID, ProfileID: alice.ID},
		&models.Follow{FollowedByID: carol.ID, ProfileID: bob.ID},
	)

	followers, err := ListFollowers(ctx, db, "alice", &carol.ID, PageRequest{})
	require.NoError(t, err)
	require.EqualValues(t, 2, followers.TotalItems)
	cards := lo.SliceToMap(followers.Items, func(item ProfileCard) (uint, ProfileCard) {
		return item.ID, item
	})
	require.True(t, cards[bob.ID].IsFollowedByMe)
	require.False(t, cards[carol.ID].IsFollowedByMe)
	require.Equal(t, 1, cards[bob.ID].FollowersCount)

	followings, err := ListFollowings(ctx, db, "carol", nil, PageRequest{})
	require.NoError(t, err)
	require.ElementsMatch(t, []uint{alice.ID, bob.ID}, lo.Map(followings.Items, func(item ProfileCard, _ int) uint {
		return item.ID
	}))
}

func TestListPostLikers(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	db := newTestDB(t)

	alice := seedUser(t, db, "alice", "Alice Liddell")
	bob := seedUser(t, db, "bob", "Bob Builder")
	post := seedPost(t, db, alice.ID, "liked", models.PostVisibilityPublic)
	seed(t, db,
		&models.Like{TargetKind: models.LikeTargetPost, TargetID: post.ID, LikedByID: bob.ID},
		// Same id, different kind, must not leak into the post likers
		&models.Like{TargetKind: models.LikeTargetComment, TargetID: post.ID, LikedByID: alice.ID},
	)

	likers, err := ListPostLikers(ctx, db, post.ID, nil, PageRequest{})
	require.NoError(t, err)
	require.Len(t, likers.Items, 1)
	require.Equal(t, bob.ID, likers.Items[0].ID)

	_, err = ListPostLikers(ctx, db, post.ID+100, nil, PageRequest{})
	require.True(t, services.IsKind(err, services.KindNotFound))
}

func TestListSuggestedProfiles(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	db := newTestDB(t)

	viewer := seedUser(t, db, "viewer", "The Viewer")
	followed := seedUser(t, db, "followed", "Already Followed")
	quiet := seedUser(t, db, "quiet", "Quiet One")
	popular := seedUser(t, db, "popular", "Popular One")
	fan := seedUser(t, db, "fan", "Big Fan")
	seed(t, db,
		&models.Follow{FollowedByID: viewer.ID, ProfileID: followed.ID},
		&models.Follow{FollowedByID: fan.ID, ProfileID: popular.ID},
		&models.Follow{FollowedByID: quiet.ID, ProfileID: popular.ID},
	)

	page, err := ListSuggestedProfiles(ctx, db, viewer.ID, PageRequest{})
	require.NoError(t, err)
	ids := lo.Map(page.Items, func(item ProfileCard, _ int) uint { return item.ID })
	require.NotContains(t, ids, viewer.ID)
	require.NotContains(t, ids, followed.ID)
	require.Len(t, ids, 3)
	require.Equal(t, popular.ID, ids[0])
	require.Equal(t, 2, page.Items[0].FollowersCount)
}

func TestGroupDetailAndMembers(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	db := newTestDB(t)

	alice := seedUser(t, db, "alice", "Alice Liddell")
	bob := seedUser(t, db, "bob", "Bob Builder")
	carol := seedUser(t, db, "carol", "Carol Danvers")
	group := models.Group{GroupName: "Gophers", CreatedByID: alice.ID}
	seed(t, db, &group)
	seed(t, db,
		&models.Member{GroupID: group.ID, UserID: bob.ID, Role: models.MemberRoleUser},
		&models.Member{GroupID: group.ID, UserID: alice.ID, Role: models.MemberRoleAdmin},
	)

	view, err := GetGroupDetail(ctx, db, group.ID, &bob.ID)
	require.NoError(t, err)
	require.Equal(t, 2, view.MembersCount)
	require.True(t, view.IsMemberByMe)
	require.False(t, view.IsAdminByMe)
	require.Equal(t, alice.ID, view.CreatedBy.ID)

	view, err = GetGroupDetail(ctx, db, group.ID, &carol.ID)
	require.NoError(t, err)
	require.False(t, view.IsMemberByMe)

	members, err := ListGroupMembers(ctx, db, group.ID, nil, PageRequest{})
	require.NoError(t, err)
	require.Len(t, members.Items, 2)
	require.Equal(t, models.MemberRoleAdmin, members.Items[0].Role)
	require.Equal(t, alice.ID, members.Items[0].User.ID)

	_, err = GetGroupDetail(ctx, db, group.ID+100, nil)
	require.True(t, services.IsKind(err, services.KindNotFound))
}
