package queries

import (
	"context"
	"testing"

	"github.com/dasamritendu619/sharelearner-server/pkg/internal/models"
	"github.com/dasamritendu619/sharelearner-server/pkg/internal/services"
	"github.com/samber/lo"
	"github.com/stretchr/testify/require"
)

func TestResolveFlag(t *testing.T) {
	t.Parallel()

	require.False(t, ResolveFlag(nil, []uint{1, 2}))
	require.False(t, ResolveFlag(lo.ToPtr(uint(3)), []uint{1, 2}))
	require.False(t, ResolveFlag(lo.ToPtr(uint(3)), nil))
	require.True(t, ResolveFlag(lo.ToPtr(uint(2)), []uint{1, 2}))
}

func TestPostDetailCountsAndFlags(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	db := newTestDB(t)

	alice := seedUser(t, db, "alice", "Alice Liddell")
	bob := seedUser(t, db, "bob", "Bob Builder")
	carol := seedUser(t, db, "carol", "Carol Danvers")

	post := seedPost(t, db, alice.ID, "Learning Go", models.PostVisibilityPublic)
	comment := models.Comment{Content: "nice", PostID: post.ID, CommentedByID: carol.ID}
	seed(t, db, &comment)
	seed(t, db,
		&models.Like{TargetKind: models.LikeTargetPost, TargetID: post.ID, LikedByID: bob.ID},
		&models.Like{TargetKind: models.LikeTargetPost, TargetID: post.ID, LikedByID: carol.ID},
		&models.Like{TargetKind: models.LikeTargetComment, TargetID: comment.ID, LikedByID: alice.ID},
		&models.Save{PostID: post.ID, SavedByID: bob.ID},
		&models.Follow{FollowedByID: bob.ID, ProfileID: alice.ID},
		&models.Post{Title: "shared", Type: models.PostTypeForked, Visibility: models.PostVisibilityPublic, AuthorID: bob.ID, ForkedFromID: &post.ID},
	)

	view, err := GetPostDetail(ctx, db, post.ID, &bob.ID)
	require.NoError(t, err)
	require.Equal(t, 2, view.LikesCount)
	require.Equal(t, 1, view.CommentsCount)
	require.Equal(t, 1, view.SharesCount)
	require.Equal(t, 1, view.SavedCount)
	require.True(t, view.IsLikedByMe)
	require.True(t, view.IsSavedByMe)
	require.Equal(t, alice.ID, view.Author.ID)
	require.Equal(t, 1, view.Author.FollowersCount)
	require.True(t, view.Author.IsFollowedByMe)
	require.Nil(t, view.ForkedFrom)

	anonymous, err := GetPostDetail(ctx, db, post.ID, nil)
	require.NoError(t, err)
	require.Equal(t, 2, anonymous.LikesCount)
	require.False(t, anonymous.IsLikedByMe)
	require.False(t, anonymous.IsSavedByMe)
	require.False(t, anonymous.Author.IsFollowedByMe)

	comments, err := ListComments(ctx, db, post.ID, &alice.ID, PageRequest{})
	require.NoError(t, err)
	require.Len(t, comments.Items, 1)
	require.Equal(t, 1, comments.Items[0].LikesCount)
	require.True(t, comments.Items[0].IsLikedByMe)
	require.Equal(t, carol.ID, comments.Items[0].CommentedBy.ID)
}

func TestListReplies(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	db := newTestDB(t)

	alice := seedUser(t, db, "alice", "Alice Liddell")
	bob := seedUser(t, db, "bob", "Bob Builder")

	post := seedPost(t, db, alice.ID, "Learning Go", models.PostVisibilityPublic)
	comment := models.Comment{Content: "nice", PostID: post.ID, CommentedByID: bob.ID}
	seed(t, db, &comment)
	reply := models.Reply{Content: "thanks", CommentID: comment.ID, PostID: post.ID, RepliedByID: alice.ID}
	seed(t, db, &reply)
	seed(t, db, &models.Like{TargetKind: models.LikeTargetReply, TargetID: reply.ID, LikedByID: bob.ID})

	replies, err := ListReplies(ctx, db, comment.ID, &bob.ID, PageRequest{})
	require.NoError(t, err)
	require.EqualValues(t, 1, replies.TotalItems)
	require.Len(t, replies.Items, 1)
	require.Equal(t, reply.ID, replies.Items[0].ID)
	require.Equal(t, 1, replies.Items[0].LikesCount)
	require.True(t, replies.Items[0].IsLikedByMe)
	require.Equal(t, alice.ID, replies.Items[0].RepliedBy.ID)
	require.Equal(t, "alice", replies.Items[0].RepliedBy.Username)
	require.Equal(t, "Alice Liddell", replies.Items[0].RepliedBy.FullName)

	replies, err = ListReplies(ctx, db, comment.ID, &alice.ID, PageRequest{})
	require.NoError(t, err)
	require.Equal(t, 1, replies.Items[0].LikesCount)
	require.False(t, replies.Items[0].IsLikedByMe)

	// Past the last page the list is empty, not an error
	replies, err = ListReplies(ctx, db, comment.ID, nil, PageRequest{Page: 9})
	require.NoError(t, err)
	require.Empty(t, replies.Items)
	require.EqualValues(t, 1, replies.TotalItems)
	require.Equal(t, 1, replies.TotalPages)
	require.Equal(t, 9, replies.CurrentPage)
	require.False(t, replies.HasNext)

	_, err = ListReplies(ctx, db, 0, nil, PageRequest{})
	require.True(t, services.IsKind(err, services.KindValidation))
	_, err = ListReplies(ctx, db, comment.ID+100, nil, PageRequest{})
	require.True(t, services.IsKind(err, services.KindNotFound))
}

func TestPostDetailForkedSource(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	db := newTestDB(t)

	alice := seedUser(t, db, "alice", "Alice Liddell")
	bob := seedUser(t, db, "bob", "Bob Builder")
	source := seedPost(t, db, alice.ID, "Original", models.PostVisibilityPublic)
	fork := models.Post{Title: "look", Type: models.PostTypeForked, Visibility: models.PostVisibilityPublic, AuthorID: bob.ID, ForkedFromID: &source.ID}
	seed(t, db, &fork)

	view, err := GetPostDetail(ctx, db, fork.ID, nil)
	require.NoError(t, err)
	require.NotNil(t, view.ForkedFrom)
	require.Equal(t, source.ID, view.ForkedFrom.ID)
	require.Equal(t, "Original", view.ForkedFrom.Title)
	require.Equal(t, alice.ID, view.ForkedFrom.Author.ID)

	// A fork whose source is gone keeps rendering without it
	require.NoError(t, db.Delete(&source).Error)
	view, err = GetPostDetail(ctx, db, fork.ID, nil)
	require.NoError(t, err)
	require.Nil(t, view.ForkedFrom)
}

func TestPostDetailVisibility(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	db := newTestDB(t)

	alice := seedUser(t, db, "alice", "Alice Liddell")
	bob := seedUser(t, db, "bob", "Bob Builder")
	carol := seedUser(t, db, "carol", "Carol Danvers")
	seed(t, db, &models.Follow{FollowedByID: bob.ID, ProfileID: alice.ID})

	private := seedPost(t, db, alice.ID, "Diary", models.PostVisibilityPrivate)
	friends := seedPost(t, db, alice.ID, "Close friends", models.PostVisibilityFriends)

	_, err := GetPostDetail(ctx, db, private.ID, &bob.ID)
	require.True(t, services.IsKind(err, services.KindNotFound))
	_, err = GetPostDetail(ctx, db, private.ID, &alice.ID)
	require.NoError(t, err)

	_, err = GetPostDetail(ctx, db, friends.ID, &bob.ID)
	require.NoError(t, err)
	_, err = GetPostDetail(ctx, db, friends.ID, &carol.ID)
	require.True(t, services.IsKind(err, services.KindNotFound))
	_, err = GetPostDetail(ctx, db, friends.ID, nil)
	require.True(t, services.IsKind(err, services.KindNotFound))

	_, err = GetPostDetail(ctx, db, 0, nil)
	require.True(t, services.IsKind(err, services.KindValidation))
}

func TestListPostFeedDefaults(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	db := newTestDB(t)

	alice := seedUser(t, db, "alice", "Alice Liddell")
	bob := seedUser(t, db, "bob", "Bob Builder")

	for i := 0; i < 12; i++ {
		seedPost(t, db, alice.ID, "public", models.PostVisibilityPublic)
	}
	seedPost(t, db, alice.ID, "hidden", models.PostVisibilityPrivate)
	seed(t, db, &models.Post{Title: "pic", Type: models.PostTypePhoto, Visibility: models.PostVisibilityPublic, AuthorID: bob.ID, AssetURL: lo.ToPtr("https://cdn.example.com/upload/pic.png")})

	page, err := ListPostFeed(ctx, db, FeedFilter{}, nil, NewPageRequest(0, 0, FeedPageLimit))
	require.NoError(t, err)
	require.EqualValues(t, 13, page.TotalItems)
	require.Len(t, page.Items, FeedPageLimit)
	require.Equal(t, 2, page.TotalPages)
	require.True(t, page.HasNext)
	// Newest first
	require.Equal(t, "pic", page.Items[0].Title)

	photos, err := ListPostFeed(ctx, db, FeedFilter{Type: "photo"}, nil, PageRequest{})
	require.NoError(t, err)
	require.EqualValues(t, 1, photos.TotalItems)

	mine, err := ListPostFeed(ctx, db, FeedFilter{Type: "all", Visibility: "private"}, &alice.ID, PageRequest{})
	require.NoError(t, err)
	require.EqualValues(t, 1, mine.TotalItems)

	others, err := ListPostFeed(ctx, db, FeedFilter{Visibility: "private"}, &bob.ID, PageRequest{})
	require.NoError(t, err)
	require.Zero(t, others.TotalItems)

	byBob, err := ListPostFeed(ctx, db, FeedFilter{Author: "bob"}, nil, PageRequest{})
	require.NoError(t, err)
	require.EqualValues(t, 1, byBob.TotalItems)

	_, err = ListPostFeed(ctx, db, FeedFilter{Type: "poem"}, nil, PageRequest{})
	require.True(t, services.IsKind(err, services.KindValidation))
	_, err = ListPostFeed(ctx, db, FeedFilter{Visibility: "secret"}, nil, PageRequest{})
	require.True(t, services.IsKind(err, services.KindValidation))
	_, err = ListPostFeed(ctx, db, FeedFilter{Author: "nobody"}, nil, PageRequest{})
	require.True(t, services.IsKind(err, services.KindNotFound))
}

func TestListSavedPostsSkipsMissingPosts(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	db := newTestDB(t)

	alice := seedUser(t, db, "alice", "Alice Liddell")
	bob := seedUser(t, db, "bob", "Bob Builder")
	kept := seedPost(t, db, alice.ID, "kept", models.PostVisibilityPublic)
	gone := seedPost(t, db, alice.ID, "gone", models.PostVisibilityPublic)
	seed(t, db,
		&models.Save{PostID: kept.ID, SavedByID: bob.ID},
		&models.Save{PostID: gone.ID, SavedByID: bob.ID},
	)
	require.NoError(t, db.Delete(&gone).Error)

	page, err := ListSavedPosts(ctx, db, bob.ID, PageRequest{})
	require.NoError(t, err)
	require.EqualValues(t, 1, page.TotalItems)
	require.Len(t, page.Items, 1)
	require.Equal(t, kept.ID, page.Items[0].ID)
	require.True(t, page.Items[0].IsSavedByMe)
}
