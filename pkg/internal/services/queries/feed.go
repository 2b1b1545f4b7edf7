package queries

import (
	"context"
	"strings"

	"github.com/dasamritendu619/sharelearner-server/pkg/internal/models"
	"github.com/dasamritendu619/sharelearner-server/pkg/internal/services"
	"github.com/samber/lo"
	"gorm.io/gorm"
)

type FeedFilter struct {
	Type       string
	Visibility string
	Author     string
}

// ListPostFeed lists posts newest first. An empty type or "all" means every known type,
// an empty visibility means public.
func ListPostFeed(ctx context.Context, db *gorm.DB, filter FeedFilter, viewer *uint, req PageRequest) (Page[PostView], error) {
	types := models.PostTypes
	if t := strings.ToLower(filter.Type); t != "" && t != "all" {
		if !lo.Contains(models.PostTypes, t) {
			return Page[PostView]{}, services.ValidationError("invalid post type %q", filter.Type)
		}
		types = []string{t}
	}

	visibility := strings.ToLower(lo.Ternary(filter.Visibility == "", models.PostVisibilityPublic, filter.Visibility))
	if !lo.Contains(models.PostVisibilities, visibility) {
		return Page[PostView]{}, services.ValidationError("invalid visibility %q", filter.Visibility)
	}

	visible, err := viewerScope(ctx, db, viewer)
	if err != nil {
		return Page[PostView]{}, services.InternalError(err, "unable to load feed")
	}

	pipeline := NewPipeline(db, postShaper(db, viewer)).Filter(
		func(tx *gorm.DB) *gorm.DB {
			return services.FilterPostWithType(tx, types...)
		},
		func(tx *gorm.DB) *gorm.DB {
			return tx.Where("visibility = ?", visibility)
		},
		visible,
	)

	if filter.Author != "" {
		author, err := findUserID(ctx, db, filter.Author)
		if err != nil {
			return Page[PostView]{}, err
		}
		pipeline.Filter(func(tx *gorm.DB) *gorm.DB {
			return tx.Where("author_id = ?", author)
		})
	}

	return Paginate[PostView](ctx, pipeline, req)
}
