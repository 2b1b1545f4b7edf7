package services

import (
	"context"
	"errors"

	"github.com/dasamritendu619/sharelearner-server/pkg/internal/models"
	"gorm.io/gorm"
)

// toggle removes the row matched by the natural key or inserts item when there is none.
// A concurrent insert of the same key is treated as already active.
func toggle[M any](ctx context.Context, db *gorm.DB, item M, query string, args ...any) (bool, error) {
	tx := db.WithContext(ctx)

	var existing M
	err := tx.Where(query, args...).First(&existing).Error
	switch {
	case err == nil:
		if err := tx.Delete(&existing).Error; err != nil {
			return true, InternalError(err, "unable to deactivate")
		}
		return false, nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		if err := tx.Create(&item).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return true, nil
			}
			return false, InternalError(err, "unable to activate")
		}
		return true, nil
	default:
		return false, InternalError(err, "unable to load current state")
	}
}

func exists[M any](ctx context.Context, db *gorm.DB, id uint, what string) error {
	var item M
	if err := db.WithContext(ctx).Select("id").First(&item, id).Error; err != nil {
		return LookupError(err, what)
	}
	return nil
}

// ToggleLike flips the actor's like on a post, comment or reply and returns whether it is now liked.
func ToggleLike(ctx context.Context, db *gorm.DB, actor uint, kind models.LikeTargetKind, target uint) (bool, error) {
	if target == 0 {
		return false, ValidationError("%s id is required", kind)
	}

	var err error
	switch kind {
	case models.LikeTargetPost:
		err = exists[models.Post](ctx, db, target, "post")
	case models.LikeTargetComment:
		err = exists[models.Comment](ctx, db, target, "comment")
	case models.LikeTargetReply:
		err = exists[models.Reply](ctx, db, target, "reply")
	default:
		return false, ValidationError("invalid like target %q", kind)
	}
	if err != nil {
		return false, err
	}

	return toggle(ctx, db, models.Like{
		TargetKind: kind,
		TargetID:   target,
		LikedByID:  actor,
	}, "target_kind = ? AND target_id = ? AND liked_by_id = ?", kind, target, actor)
}

func ToggleFollow(ctx context.Context, db *gorm.DB, actor uint, profile uint) (bool, error) {
	if profile == 0 {
		return false, ValidationError("profile id is required")
	}
	if profile == actor {
		return false, ValidationError("you cannot follow yourself")
	}
	if err := exists[models.User](ctx, db, profile, "profile"); err != nil {
		return false, err
	}

	return toggle(ctx, db, models.Follow{
		FollowedByID: actor,
		ProfileID:    profile,
	}, "followed_by_id = ? AND profile_id = ?", actor, profile)
}

func ToggleSave(ctx context.Context, db *gorm.DB, actor uint, post uint) (bool, error) {
	if post == 0 {
		return false, ValidationError("post id is required")
	}
	if err := exists[models.Post](ctx, db, post, "post"); err != nil {
		return false, err
	}

	return toggle(ctx, db, models.Save{
		PostID:    post,
		SavedByID: actor,
	}, "post_id = ? AND saved_by_id = ?", post, actor)
}
