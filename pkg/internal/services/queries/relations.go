package queries

import (
	"context"
	"fmt"

	"github.com/dasamritendu619/sharelearner-server/pkg/internal/models"
	"github.com/samber/lo"
	"gorm.io/gorm"
)

func likesOn(kind models.LikeTargetKind) Relation {
	return Relation{
		Model: &models.Like{},
		Key:   "target_id",
		Ref:   "liked_by_id",
		Scope: func(tx *gorm.DB) *gorm.DB {
			return tx.Where("target_kind = ?", kind)
		},
	}
}

var (
	PostLikes    = likesOn(models.LikeTargetPost)
	CommentLikes = likesOn(models.LikeTargetComment)
	ReplyLikes   = likesOn(models.LikeTargetReply)

	PostComments = Relation{Model: &models.Comment{}, Key: "post_id", Ref: "id"}
	PostForks    = Relation{Model: &models.Post{}, Key: "forked_from_id", Ref: "id"}
	PostSaves    = Relation{Model: &models.Save{}, Key: "post_id", Ref: "saved_by_id"}

	CommentReplies = Relation{Model: &models.Reply{}, Key: "comment_id", Ref: "id"}

	UserFollowers  = Relation{Model: &models.Follow{}, Key: "profile_id", Ref: "followed_by_id"}
	UserFollowings = Relation{Model: &models.Follow{}, Key: "followed_by_id", Ref: "profile_id"}
	UserPosts      = Relation{Model: &models.Post{}, Key: "author_id", Ref: "id"}

	GroupMembers = Relation{Model: &models.Member{}, Key: "group_id", Ref: "user_id"}
	GroupAdmins  = Relation{
		Model: &models.Member{},
		Key:   "group_id",
		Ref:   "user_id",
		Scope: func(tx *gorm.DB) *gorm.DB {
			return tx.Where("role = ?", models.MemberRoleAdmin)
		},
	}
)

// AuthorBrief is the restricted user shape nested into other entities.
type AuthorBrief struct {
	ID       uint   `json:"id"`
	Username string `json:"username"`
	FullName string `json:"full_name"`
	Avatar   string `json:"avatar"`
}

func loadAuthors(ctx context.Context, db *gorm.DB, ids []uint) (map[uint]AuthorBrief, error) {
	ids = lo.Uniq(ids)
	if len(ids) == 0 {
		return map[uint]AuthorBrief{}, nil
	}

	var users []models.User
	if err := db.WithContext(ctx).
		Select("id", "username", "full_name", "avatar").
		Where("id IN ?", ids).
		Find(&users).Error; err != nil {
		return nil, fmt.Errorf("failed to load users: %w", err)
	}

	return lo.SliceToMap(users, func(item models.User) (uint, AuthorBrief) {
		return item.ID, AuthorBrief{
			ID:       item.ID,
			Username: item.Username,
			FullName: item.FullName,
			Avatar:   item.Avatar,
		}
	}), nil
}

func loadPosts(ctx context.Context, db *gorm.DB, ids []uint) (map[uint]models.Post, error) {
	ids = lo.Uniq(ids)
	if len(ids) == 0 {
		return map[uint]models.Post{}, nil
	}

	var posts []models.Post
	if err := db.WithContext(ctx).Where("id IN ?", ids).Find(&posts).Error; err != nil {
		return nil, fmt.Errorf("failed to load posts: %w", err)
	}
	return lo.SliceToMap(posts, func(item models.Post) (uint, models.Post) {
		return item.ID, item
	}), nil
}

// authorOrPlaceholder keeps dangling author references shaped instead of null.
func authorOrPlaceholder(authors map[uint]AuthorBrief, id uint) AuthorBrief {
	if author, ok := authors[id]; ok {
		return author
	}
	return AuthorBrief{ID: id}
}
