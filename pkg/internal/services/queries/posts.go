package queries

import (
	"context"
	"time"

	"github.com/dasamritendu619/sharelearner-server/pkg/internal/models"
	"github.com/dasamritendu619/sharelearner-server/pkg/internal/services"
	"github.com/rs/zerolog/log"
	"github.com/samber/lo"
	"gorm.io/gorm"
)

type ForkedFrom struct {
	ID         uint        `json:"id"`
	AssetURL   *string     `json:"asset_url"`
	Title      string      `json:"title"`
	Content    string      `json:"content"`
	Type       string      `json:"type"`
	Visibility string      `json:"visibility"`
	CreatedAt  time.Time   `json:"created_at"`
	Author     AuthorBrief `json:"author"`
}

type PostView struct {
	ID         uint      `json:"id"`
	Title      string    `json:"title"`
	Content    string    `json:"content"`
	Type       string    `json:"type"`
	Visibility string    `json:"visibility"`
	AssetURL   *string   `json:"asset_url"`
	Language   string    `json:"language"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`

	LikesCount    int  `json:"likes_count"`
	CommentsCount int  `json:"comments_count"`
	SharesCount   int  `json:"shares_count"`
	SavedCount    int  `json:"saved_count"`
	IsLikedByMe   bool `json:"is_liked_by_me"`
	IsSavedByMe   bool `json:"is_saved_by_me"`

	Author     ProfileCard `json:"author"`
	ForkedFrom *ForkedFrom `json:"forked_from"`
}

// CompletePostViews expands the relations of a page of posts and shapes them in the same order.
func CompletePostViews(ctx context.Context, db *gorm.DB, viewer *uint, in []models.Post) ([]PostView, error) {
	// Collect post ids
	idx := lo.Map(in, func(item models.Post, _ int) uint { return item.ID })

	// Expand likes, comments, forks and saves
	likes, err := PostLikes.Expand(ctx, db, idx)
	if err != nil {
		return nil, err
	}
	comments, err := PostComments.Count(ctx, db, idx)
	if err != nil {
		return nil, err
	}
	forks, err := PostForks.Count(ctx, db, idx)
	if err != nil {
		return nil, err
	}
	saves, err := PostSaves.Expand(ctx, db, idx)
	if err != nil {
		return nil, err
	}

	// Expand authors, the author shape carries its own followers
	authors, err := CompleteProfileCards(ctx, db, viewer, lo.Uniq(lo.Map(in, func(item models.Post, _ int) uint {
		return item.AuthorID
	})))
	if err != nil {
		return nil, err
	}

	// Expand forked sources one level deep
	sources, err := loadPosts(ctx, db, lo.FilterMap(in, func(item models.Post, _ int) (uint, bool) {
		return lo.FromPtr(item.ForkedFromID), item.ForkedFromID != nil
	}))
	if err != nil {
		return nil, err
	}
	sourceAuthors, err := loadAuthors(ctx, db, lo.MapToSlice(sources, func(_ uint, item models.Post) uint {
		return item.AuthorID
	}))
	if err != nil {
		return nil, err
	}

	log.Debug().Int("posts", len(in)).Int("sources", len(sources)).Msg("Expanded relations for listing post...")

	// Shape
	return lo.Map(in, func(item models.Post, _ int) PostView {
		view := PostView{
			ID:            item.ID,
			Title:         item.Title,
			Content:       item.Content,
			Type:          item.Type,
			Visibility:    item.Visibility,
			AssetURL:      item.AssetURL,
			Language:      item.Language,
			CreatedAt:     item.CreatedAt,
			UpdatedAt:     item.UpdatedAt,
			LikesCount:    len(likes[item.ID]),
			CommentsCount: int(comments[item.ID]),
			SharesCount:   int(forks[item.ID]),
			SavedCount:    len(saves[item.ID]),
			IsLikedByMe:   ResolveFlag(viewer, likes[item.ID]),
			IsSavedByMe:   ResolveFlag(viewer, saves[item.ID]),
			Author:        authors[item.AuthorID],
		}
		if item.ForkedFromID != nil {
			if source, ok := sources[*item.ForkedFromID]; ok {
				view.ForkedFrom = &ForkedFrom{
					ID:         source.ID,
					AssetURL:   source.AssetURL,
					Title:      source.Title,
					Content:    source.Content,
					Type:       source.Type,
					Visibility: source.Visibility,
					CreatedAt:  source.CreatedAt,
					Author:     authorOrPlaceholder(sourceAuthors, source.AuthorID),
				}
			}
		}
		return view
	}), nil
}

func postShaper(db *gorm.DB, viewer *uint) Shaper[models.Post, PostView] {
	return func(ctx context.Context, rows []models.Post) ([]PostView, error) {
		return CompletePostViews(ctx, db, viewer, rows)
	}
}

// viewerScope limits posts to what the viewer may see.
func viewerScope(ctx context.Context, db *gorm.DB, viewer *uint) (Scope, error) {
	var following []uint
	if viewer != nil {
		expanded, err := UserFollowings.Expand(ctx, db, []uint{*viewer})
		if err != nil {
			return nil, err
		}
		following = expanded[*viewer]
	}
	return func(tx *gorm.DB) *gorm.DB {
		return services.FilterPostWithViewer(tx, viewer, following)
	}, nil
}

func GetPostDetail(ctx context.Context, db *gorm.DB, id uint, viewer *uint) (PostView, error) {
	if id == 0 {
		return PostView{}, services.ValidationError("post id is required")
	}

	visible, err := viewerScope(ctx, db, viewer)
	if err != nil {
		return PostView{}, services.InternalError(err, "unable to load post")
	}

	post, err := NewPipeline(db, postShaper(db, viewer)).
		Filter(func(tx *gorm.DB) *gorm.DB {
			return tx.Where("id = ?", id)
		}, visible).
		First(ctx)
	if err != nil {
		return post, services.LookupError(err, "post")
	}
	return post, nil
}

// ListSavedPosts lists the viewer's saved posts, most recently saved first.
// Saves of posts that no longer exist are skipped.
func ListSavedPosts(ctx context.Context, db *gorm.DB, viewer uint, req PageRequest) (Page[PostView], error) {
	shape := func(ctx context.Context, rows []models.Save) ([]PostView, error) {
		posts, err := loadPosts(ctx, db, lo.Map(rows, func(item models.Save, _ int) uint {
			return item.PostID
		}))
		if err != nil {
			return nil, err
		}
		ordered := lo.FilterMap(rows, func(item models.Save, _ int) (models.Post, bool) {
			post, ok := posts[item.PostID]
			return post, ok
		})
		return CompletePostViews(ctx, db, &viewer, ordered)
	}

	pipeline := NewPipeline[models.Save, PostView](db, shape).Filter(func(tx *gorm.DB) *gorm.DB {
		return tx.
			Where("saved_by_id = ?", viewer).
			Where("post_id IN (?)", db.Model(&models.Post{}).Select("id"))
	})
	return Paginate[PostView](ctx, pipeline, req)
}
