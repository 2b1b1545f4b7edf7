package services

import (
	"context"
	"errors"
	"strings"

	"github.com/dasamritendu619/sharelearner-server/pkg/internal/models"
	"github.com/dasamritendu619/sharelearner-server/pkg/internal/search"
	"github.com/dasamritendu619/sharelearner-server/pkg/internal/storage"
	"github.com/rs/zerolog/log"
	"github.com/samber/lo"
	"gorm.io/gorm"
)

func FilterPostWithType(tx *gorm.DB, types ...string) *gorm.DB {
	return tx.Where("type IN ?", types)
}

// FilterPostWithViewer keeps public posts, the viewer's own posts
// and friends-only posts of authors the viewer follows.
func FilterPostWithViewer(tx *gorm.DB, viewer *uint, following []uint) *gorm.DB {
	if viewer == nil {
		return tx.Where("visibility = ?", models.PostVisibilityPublic)
	}
	return tx.Where(
		"(visibility = ? OR author_id = ? OR (visibility = ? AND author_id IN ?))",
		models.PostVisibilityPublic,
		*viewer,
		models.PostVisibilityFriends,
		following,
	)
}

func ListFollowingIDs(ctx context.Context, db *gorm.DB, user uint) ([]uint, error) {
	var ids []uint
	err := db.WithContext(ctx).
		Model(&models.Follow{}).
		Where("followed_by_id = ?", user).
		Pluck("profile_id", &ids).Error
	return ids, err
}

type PostInput struct {
	Title      string
	Content    string
	Type       string
	Visibility string
	// AssetPath is a local file, required by photo, video and pdf posts.
	AssetPath string
}

func normalizeVisibility(visibility string) (string, error) {
	visibility = strings.ToLower(strings.TrimSpace(visibility))
	if visibility == "" {
		return models.PostVisibilityPublic, nil
	}
	if !lo.Contains(models.PostVisibilities, visibility) {
		return "", ValidationError("invalid visibility %q", visibility)
	}
	return visibility, nil
}

// validateBlogContent measures the body without its surrounding whitespace.
func validateBlogContent(content string) error {
	trimmed := strings.TrimSpace(content)
	if trimmed == "" {
		return ValidationError("content is required for blog post")
	}
	if len([]rune(trimmed)) < models.MinBlogContentLength {
		return ValidationError("content is too short for blog post, at least %d characters", models.MinBlogContentLength)
	}
	return nil
}

func ValidatePostInput(in PostInput) (PostInput, error) {
	in.Title = strings.TrimSpace(in.Title)
	in.Type = strings.ToLower(strings.TrimSpace(in.Type))
	if in.Type == "" {
		in.Type = models.PostTypeBlog
	}

	var err error
	if in.Visibility, err = normalizeVisibility(in.Visibility); err != nil {
		return in, err
	}

	switch {
	case in.Type == models.PostTypeBlog:
		if in.Title == "" {
			return in, ValidationError("title is required for blog post")
		}
		if err := validateBlogContent(in.Content); err != nil {
			return in, err
		}
		in.AssetPath = ""
	case models.IsAssetType(in.Type):
		if in.AssetPath == "" {
			return in, ValidationError("asset is required for %s post", in.Type)
		}
		in.Content = ""
	case in.Type == models.PostTypeForked:
		return in, ValidationError("forked posts are created by forking another post")
	default:
		return in, ValidationError("invalid post type %q", in.Type)
	}

	return in, nil
}

func CreatePost(ctx context.Context, db *gorm.DB, store storage.Uploader, idx search.Indexer, author uint, in PostInput) (models.Post, error) {
	in, err := ValidatePostInput(in)
	if err != nil {
		return models.Post{}, err
	}

	item := models.Post{
		Title:      in.Title,
		Content:    in.Content,
		Type:       in.Type,
		Visibility: in.Visibility,
		AuthorID:   author,
	}

	if in.Type == models.PostTypeBlog {
		item.Language = DetectLanguage(in.Content)
	} else {
		upload, err := store.Upload(ctx, in.AssetPath)
		if err != nil {
			return item, UploadError(err, "failed to upload %s", in.Type)
		}
		item.AssetURL = lo.ToPtr(upload.URL)
	}

	if err := db.WithContext(ctx).Create(&item).Error; err != nil {
		if item.AssetURL != nil {
			if err := store.Delete(ctx, storage.PublicRef(*item.AssetURL)); err != nil {
				log.Warn().Err(err).Str("asset", *item.AssetURL).Msg("Unable to clean up asset of a post that failed to create...")
			}
		}
		return item, InternalError(err, "failed to create post")
	}

	indexPost(ctx, idx, item)
	return item, nil
}

// ForkPost shares another user's post. Forking a fork points at the original.
func ForkPost(ctx context.Context, db *gorm.DB, idx search.Indexer, actor uint, sourceID uint, title, visibility string) (models.Post, error) {
	if sourceID == 0 {
		return models.Post{}, ValidationError("post id is required")
	}
	visibility, err := normalizeVisibility(visibility)
	if err != nil {
		return models.Post{}, err
	}

	following, err := ListFollowingIDs(ctx, db, actor)
	if err != nil {
		return models.Post{}, InternalError(err, "unable to load post")
	}
	visible := func(id uint, what string) (models.Post, error) {
		var post models.Post
		err := FilterPostWithViewer(db.WithContext(ctx), &actor, following).First(&post, id).Error
		if err != nil {
			return post, LookupError(err, what)
		}
		return post, nil
	}

	source, err := visible(sourceID, "post")
	if err != nil {
		return source, err
	}
	if source.AuthorID == actor {
		return models.Post{}, ValidationError("you cannot fork your own post")
	}
	if source.ForkedFromID != nil {
		if source, err = visible(*source.ForkedFromID, "original post"); err != nil {
			return source, err
		}
		if source.AuthorID == actor {
			return models.Post{}, ValidationError("you cannot fork your own post")
		}
	}

	item := models.Post{
		Title:        strings.TrimSpace(title),
		Type:         models.PostTypeForked,
		Visibility:   visibility,
		AuthorID:     actor,
		ForkedFromID: lo.ToPtr(source.ID),
	}
	if err := db.WithContext(ctx).Create(&item).Error; err != nil {
		return item, InternalError(err, "failed to fork post")
	}
	indexPost(ctx, idx, item)
	return item, nil
}

type PostPatch struct {
	Title      *string
	Content    *string
	Visibility *string
}

func UpdatePost(ctx context.Context, db *gorm.DB, idx search.Indexer, actor uint, id uint, patch PostPatch) (models.Post, error) {
	var item models.Post
	if patch.Title == nil && patch.Content == nil && patch.Visibility == nil {
		return item, ValidationError("at least one field is required to update post")
	}
	if err := db.WithContext(ctx).First(&item, id).Error; err != nil {
		return item, LookupError(err, "post")
	}
	if item.AuthorID != actor {
		return item, ForbiddenError("you are not allowed to update this post")
	}

	if patch.Title != nil {
		title := strings.TrimSpace(*patch.Title)
		if title == "" && item.Type == models.PostTypeBlog {
			return item, ValidationError("title is required for blog post")
		}
		item.Title = title
	}
	if patch.Content != nil {
		if item.Type != models.PostTypeBlog {
			return item, ValidationError("only blog posts have content")
		}
		if err := validateBlogContent(*patch.Content); err != nil {
			return item, err
		}
		item.Content = *patch.Content
		item.Language = DetectLanguage(item.Content)
	}
	if patch.Visibility != nil {
		visibility, err := normalizeVisibility(*patch.Visibility)
		if err != nil {
			return item, err
		}
		item.Visibility = visibility
	}

	if err := db.WithContext(ctx).Save(&item).Error; err != nil {
		return item, InternalError(err, "failed to update post")
	}
	indexPost(ctx, idx, item)
	return item, nil
}

// DeletePost removes a post, its asset and everything hanging off it.
// The row and the asset go together: when the asset cannot be deleted the row is kept.
// Dependents are removed afterwards, one step at a time.
func DeletePost(ctx context.Context, db *gorm.DB, store storage.Uploader, idx search.Indexer, actor uint, id uint) error {
	var item models.Post
	if err := db.WithContext(ctx).First(&item, id).Error; err != nil {
		return LookupError(err, "post")
	}
	if item.AuthorID != actor {
		return ForbiddenError("you are not allowed to delete this post")
	}

	if err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(&item).Error; err != nil {
			return InternalError(err, "failed to delete post")
		}
		if models.IsAssetType(item.Type) && item.AssetURL != nil {
			if ref := storage.PublicRef(*item.AssetURL); ref != "" {
				if err := store.Delete(ctx, ref); err != nil {
					return UploadError(err, "failed to delete post asset")
				}
			}
		}
		return nil
	}); err != nil {
		return err
	}
	unindex(ctx, idx, search.IndexPosts, item.ID)

	if err := cascadePostDeletion(ctx, db, idx, item.ID); err != nil {
		log.Error().Err(err).Uint("post", item.ID).Msg("An error occurred when cascading post deletion...")
		return InternalError(err, "post deleted but its dependents were only partially removed")
	}
	return nil
}

func cascadePostDeletion(ctx context.Context, db *gorm.DB, idx search.Indexer, id uint) error {
	tx := db.WithContext(ctx)

	var commentIDs, replyIDs, forkIDs []uint
	if err := tx.Model(&models.Comment{}).Where("post_id = ?", id).Pluck("id", &commentIDs).Error; err != nil {
		return err
	}
	if err := tx.Model(&models.Reply{}).Where("post_id = ?", id).Pluck("id", &replyIDs).Error; err != nil {
		return err
	}
	if err := tx.Model(&models.Post{}).Where("forked_from_id = ?", id).Pluck("id", &forkIDs).Error; err != nil {
		return err
	}

	steps := []struct {
		what string
		run  func() error
	}{
		{"reply likes", func() error { return deleteLikes(tx, models.LikeTargetReply, replyIDs...) }},
		{"comment likes", func() error { return deleteLikes(tx, models.LikeTargetComment, commentIDs...) }},
		{"replies", func() error { return tx.Where("post_id = ?", id).Delete(&models.Reply{}).Error }},
		{"comments", func() error { return tx.Where("post_id = ?", id).Delete(&models.Comment{}).Error }},
		{"post likes", func() error { return deleteLikes(tx, models.LikeTargetPost, id) }},
		{"saves", func() error { return tx.Where("post_id = ?", id).Delete(&models.Save{}).Error }},
		{"forks", func() error { return tx.Where("forked_from_id = ?", id).Delete(&models.Post{}).Error }},
	}
	for _, step := range steps {
		if err := step.run(); err != nil {
			return errors.Join(errors.New("failed to delete "+step.what), err)
		}
	}
	for _, fork := range forkIDs {
		unindex(ctx, idx, search.IndexPosts, fork)
	}
	return nil
}

func deleteLikes(tx *gorm.DB, kind models.LikeTargetKind, targets ...uint) error {
	if len(targets) == 0 {
		return nil
	}
	return tx.Where("target_kind = ? AND target_id IN ?", kind, targets).Delete(&models.Like{}).Error
}
