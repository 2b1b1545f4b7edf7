package queries

import (
	"context"
	"time"

	"github.com/dasamritendu619/sharelearner-server/pkg/internal/models"
	"github.com/dasamritendu619/sharelearner-server/pkg/internal/services"
	"github.com/samber/lo"
	"gorm.io/gorm"
)

type CommentView struct {
	ID           uint        `json:"id"`
	Content      string      `json:"content"`
	PostID       uint        `json:"post_id"`
	CreatedAt    time.Time   `json:"created_at"`
	UpdatedAt    time.Time   `json:"updated_at"`
	CommentedBy  AuthorBrief `json:"commented_by"`
	LikesCount   int         `json:"likes_count"`
	RepliesCount int         `json:"replies_count"`
	IsLikedByMe  bool        `json:"is_liked_by_me"`
}

type ReplyView struct {
	ID          uint        `json:"id"`
	Content     string      `json:"content"`
	CommentID   uint        `json:"comment_id"`
	PostID      uint        `json:"post_id"`
	CreatedAt   time.Time   `json:"created_at"`
	UpdatedAt   time.Time   `json:"updated_at"`
	RepliedBy   AuthorBrief `json:"replied_by"`
	LikesCount  int         `json:"likes_count"`
	IsLikedByMe bool        `json:"is_liked_by_me"`
}

func commentShaper(db *gorm.DB, viewer *uint) Shaper[models.Comment, CommentView] {
	return func(ctx context.Context, rows []models.Comment) ([]CommentView, error) {
		idx := lo.Map(rows, func(item models.Comment, _ int) uint { return item.ID })

		likes, err := CommentLikes.Expand(ctx, db, idx)
		if err != nil {
			return nil, err
		}
		replies, err := CommentReplies.Count(ctx, db, idx)
		if err != nil {
			return nil, err
		}
		authors, err := loadAuthors(ctx, db, lo.Map(rows, func(item models.Comment, _ int) uint {
			return item.CommentedByID
		}))
		if err != nil {
			return nil, err
		}

		return lo.Map(rows, func(item models.Comment, _ int) CommentView {
			return CommentView{
				ID:           item.ID,
				Content:      item.Content,
				PostID:       item.PostID,
				CreatedAt:    item.CreatedAt,
				UpdatedAt:    item.UpdatedAt,
				CommentedBy:  authorOrPlaceholder(authors, item.CommentedByID),
				LikesCount:   len(likes[item.ID]),
				RepliesCount: int(replies[item.ID]),
				IsLikedByMe:  ResolveFlag(viewer, likes[item.ID]),
			}
		}), nil
	}
}

func replyShaper(db *gorm.DB, viewer *uint) Shaper[models.Reply, ReplyView] {
	return func(ctx context.Context, rows []models.Reply) ([]ReplyView, error) {
		idx := lo.Map(rows, func(item models.Reply, _ int) uint { return item.ID })

		likes, err := ReplyLikes.Expand(ctx, db, idx)
		if err != nil {
			return nil, err
		}
		authors, err := loadAuthors(ctx, db, lo.Map(rows, func(item models.Reply, _ int) uint {
			return item.RepliedByID
		}))
		if err != nil {
			return nil, err
		}

		return lo.Map(rows, func(item models.Reply, _ int) ReplyView {
			return ReplyView{
				ID:          item.ID,
				Content:     item.Content,
				CommentID:   item.CommentID,
				PostID:      item.PostID,
				CreatedAt:   item.CreatedAt,
				UpdatedAt:   item.UpdatedAt,
				RepliedBy:   authorOrPlaceholder(authors, item.RepliedByID),
				LikesCount:  len(likes[item.ID]),
				IsLikedByMe: ResolveFlag(viewer, likes[item.ID]),
			}
		}), nil
	}
}

func ListComments(ctx context.Context, db *gorm.DB, postID uint, viewer *uint, req PageRequest) (Page[CommentView], error) {
	if postID == 0 {
		return Page[CommentView]{}, services.ValidationError("post id is required")
	}
	if err := db.WithContext(ctx).Select("id").First(&models.Post{}, postID).Error; err != nil {
		return Page[CommentView]{}, services.LookupError(err, "post")
	}

	pipeline := NewPipeline(db, commentShaper(db, viewer)).Filter(func(tx *gorm.DB) *gorm.DB {
		return tx.Where("post_id = ?", postID)
	})
	return Paginate[CommentView](ctx, pipeline, req)
}

func ListReplies(ctx context.Context, db *gorm.DB, commentID uint, viewer *uint, req PageRequest) (Page[ReplyView], error) {
	if commentID == 0 {
		return Page[ReplyView]{}, services.ValidationError("comment id is required")
	}
	if err := db.WithContext(ctx).Select("id").First(&models.Comment{}, commentID).Error; err != nil {
		return Page[ReplyView]{}, services.LookupError(err, "comment")
	}

	pipeline := NewPipeline(db, replyShaper(db, viewer)).Filter(func(tx *gorm.DB) *gorm.DB {
		return tx.Where("comment_id = ?", commentID)
	})
	return Paginate[ReplyView](ctx, pipeline, req)
}
