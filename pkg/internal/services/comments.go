package services

import (
	"context"
	"strings"

	"github.com/dasamritendu619/sharelearner-server/pkg/internal/models"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

func requireContent(content string) (string, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return content, ValidationError("content is required")
	}
	return content, nil
}

func CreateComment(ctx context.Context, db *gorm.DB, actor uint, post uint, content string) (models.Comment, error) {
	var item models.Comment
	if post == 0 {
		return item, ValidationError("post id is required")
	}
	content, err := requireContent(content)
	if err != nil {
		return item, err
	}
	if err := exists[models.Post](ctx, db, post, "post"); err != nil {
		return item, err
	}

	item = models.Comment{Content: content, PostID: post, CommentedByID: actor}
	if err := db.WithContext(ctx).Create(&item).Error; err != nil {
		return item, InternalError(err, "failed to create comment")
	}
	return item, nil
}

func UpdateComment(ctx context.Context, db *gorm.DB, actor uint, id uint, content string) (models.Comment, error) {
	var item models.Comment
	content, err := requireContent(content)
	if err != nil {
		return item, err
	}
	if err := db.WithContext(ctx).First(&item, id).Error; err != nil {
		return item, LookupError(err, "comment")
	}
	if item.CommentedByID != actor {
		return item, ForbiddenError("you are not allowed to update this comment")
	}

	item.Content = content
	if err := db.WithContext(ctx).Save(&item).Error; err != nil {
		return item, InternalError(err, "failed to update comment")
	}
	return item, nil
}

// DeleteComment removes the comment with its replies and every like on them.
func DeleteComment(ctx context.Context, db *gorm.DB, actor uint, id uint) (models.Comment, error) {
	var item models.Comment
	if err := db.WithContext(ctx).First(&item, id).Error; err != nil {
		return item, LookupError(err, "comment")
	}
	if item.CommentedByID != actor {
		return item, ForbiddenError("you are not allowed to delete this comment")
	}

	tx := db.WithContext(ctx)
	if err := tx.Delete(&item).Error; err != nil {
		return item, InternalError(err, "failed to delete comment")
	}

	var replies []uint
	err := tx.Model(&models.Reply{}).Where("comment_id = ?", item.ID).Pluck("id", &replies).Error
	if err == nil {
		err = deleteLikes(tx, models.LikeTargetReply, replies...)
	}
	if err == nil {
		err = tx.Where("comment_id = ?", item.ID).Delete(&models.Reply{}).Error
	}
	if err == nil {
		err = deleteLikes(tx, models.LikeTargetComment, item.ID)
	}
	if err != nil {
		log.Error().Err(err).Uint("comment", item.ID).Msg("An error occurred when cascading comment deletion...")
		return item, InternalError(err, "comment deleted but its dependents were only partially removed")
	}
	return item, nil
}

func CreateReply(ctx context.Context, db *gorm.DB, actor uint, comment uint, content string) (models.Reply, error) {
	var item models.Reply
	if comment == 0 {
		return item, ValidationError("comment id is required")
	}
	content, err := requireContent(content)
	if err != nil {
		return item, err
	}

	var parent models.Comment
	if err := db.WithContext(ctx).First(&parent, comment).Error; err != nil {
		return item, LookupError(err, "comment")
	}

	item = models.Reply{
		Content:     content,
		CommentID:   parent.ID,
		PostID:      parent.PostID,
		RepliedByID: actor,
	}
	if err := db.WithContext(ctx).Create(&item).Error; err != nil {
		return item, InternalError(err, "failed to create reply")
	}
	return item, nil
}

func UpdateReply(ctx context.Context, db *gorm.DB, actor uint, id uint, content string) (models.Reply, error) {
	var item models.Reply
	content, err := requireContent(content)
	if err != nil {
		return item, err
	}
	if err := db.WithContext(ctx).First(&item, id).Error; err != nil {
		return item, LookupError(err, "reply")
	}
	if item.RepliedByID != actor {
		return item, ForbiddenError("you are not allowed to update this reply")
	}

	item.Content = content
	if err := db.WithContext(ctx).Save(&item).Error; err != nil {
		return item, InternalError(err, "failed to update reply")
	}
	return item, nil
}

func DeleteReply(ctx context.Context, db *gorm.DB, actor uint, id uint) (models.Reply, error) {
	var item models.Reply
	if err := db.WithContext(ctx).First(&item, id).Error; err != nil {
		return item, LookupError(err, "reply")
	}
	if item.RepliedByID != actor {
		return item, ForbiddenError("you are not allowed to delete this reply")
	}

	tx := db.WithContext(ctx)
	if err := tx.Delete(&item).Error; err != nil {
		return item, InternalError(err, "failed to delete reply")
	}
	if err := deleteLikes(tx, models.LikeTargetReply, item.ID); err != nil {
		log.Error().Err(err).Uint("reply", item.ID).Msg("An error occurred when cascading reply deletion...")
		return item, InternalError(err, "reply deleted but its likes were not removed")
	}
	return item, nil
}
