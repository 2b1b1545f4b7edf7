package services

import (
	"context"
	"errors"
	"strings"

	"github.com/dasamritendu619/sharelearner-server/pkg/internal/models"
	"github.com/dasamritendu619/sharelearner-server/pkg/internal/search"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

func NormalizeQuery(query string) string {
	return strings.ToLower(strings.TrimSpace(query))
}

// LogSearchQuery records a query the first time it is seen. Repeats leave the hit count alone.
func LogSearchQuery(ctx context.Context, db *gorm.DB, query string) error {
	query = NormalizeQuery(query)
	if query == "" {
		return ValidationError("search query is required")
	}

	tx := db.WithContext(ctx)
	var count int64
	if err := tx.Model(&models.SearchLog{}).Where("query = ?", query).Count(&count).Error; err != nil {
		return InternalError(err, "unable to load search log")
	} else if count > 0 {
		return nil
	}

	err := tx.Create(&models.SearchLog{Query: query, HitCount: 1}).Error
	if err != nil && !errors.Is(err, gorm.ErrDuplicatedKey) {
		return InternalError(err, "unable to record search query")
	}
	return nil
}

// The index is kept in step on a best effort basis, the store stays the source of truth.

func logIndexError(err error, index search.Index, id uint) {
	if err != nil {
		log.Warn().Err(err).Str("index", string(index)).Uint("id", id).Msg("Unable to sync search index...")
	}
}

// indexPost makes public posts searchable and withdraws every other post.
func indexPost(ctx context.Context, idx search.Indexer, post models.Post) {
	if post.Visibility == models.PostVisibilityPublic {
		logIndexError(idx.Put(ctx, search.PostDocument(post)), search.IndexPosts, post.ID)
	} else {
		unindex(ctx, idx, search.IndexPosts, post.ID)
	}
}

func indexUser(ctx context.Context, idx search.Indexer, user models.User) {
	logIndexError(idx.Put(ctx, search.UserDocument(user)), search.IndexUsers, user.ID)
}

func indexGroup(ctx context.Context, idx search.Indexer, group models.Group) {
	logIndexError(idx.Put(ctx, search.GroupDocument(group)), search.IndexGroups, group.ID)
}

func unindex(ctx context.Context, idx search.Indexer, index search.Index, id uint) {
	logIndexError(idx.Remove(ctx, index, id), index, id)
}

const reindexBatchSize = 200

// ReindexSearch pushes every searchable row into the index, used when a backend starts empty.
func ReindexSearch(ctx context.Context, db *gorm.DB, idx search.Indexer) error {
	var posts []models.Post
	if err := db.WithContext(ctx).
		Where("visibility = ?", models.PostVisibilityPublic).
		FindInBatches(&posts, reindexBatchSize, func(_ *gorm.DB, _ int) error {
			for _, post := range posts {
				if err := idx.Put(ctx, search.PostDocument(post)); err != nil {
					return err
				}
			}
			return nil
		}).Error; err != nil {
		return InternalError(err, "unable to reindex posts")
	}

	var users []models.User
	if err := db.WithContext(ctx).
		Select("id", "username", "full_name", "created_at").
		FindInBatches(&users, reindexBatchSize, func(_ *gorm.DB, _ int) error {
			for _, user := range users {
				if err := idx.Put(ctx, search.UserDocument(user)); err != nil {
					return err
				}
			}
			return nil
		}).Error; err != nil {
		return InternalError(err, "unable to reindex users")
	}

	var groups []models.Group
	if err := db.WithContext(ctx).
		FindInBatches(&groups, reindexBatchSize, func(_ *gorm.DB, _ int) error {
			for _, group := range groups {
				if err := idx.Put(ctx, search.GroupDocument(group)); err != nil {
					return err
				}
			}
			return nil
		}).Error; err != nil {
		return InternalError(err, "unable to reindex groups")
	}

	log.Info().Msg("Search index rebuilt.")
	return nil
}
