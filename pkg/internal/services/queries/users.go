package queries

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/dasamritendu619/sharelearner-server/pkg/internal/models"
	"github.com/dasamritendu619/sharelearner-server/pkg/internal/services"
	"github.com/samber/lo"
	"gorm.io/gorm"
)

type ProfileCard struct {
	ID             uint   `json:"id"`
	Username       string `json:"username"`
	FullName       string `json:"full_name"`
	Avatar         string `json:"avatar"`
	FollowersCount int    `json:"followers_count"`
	IsFollowedByMe bool   `json:"is_followed_by_me"`
}

type ProfileView struct {
	ID         uint       `json:"id"`
	Username   string     `json:"username"`
	FullName   string     `json:"full_name"`
	Avatar     string     `json:"avatar"`
	CoverPhoto string     `json:"cover_photo"`
	Dob        *time.Time `json:"dob"`
	Gender     *string    `json:"gender"`
	Education  string     `json:"education"`
	About      string     `json:"about"`
	Address    string     `json:"address"`
	Links      []string   `json:"links"`
	Interests  []string   `json:"interests"`
	CreatedAt  time.Time  `json:"created_at"`

	FollowersCount  int  `json:"followers_count"`
	FollowingsCount int  `json:"followings_count"`
	PostsCount      int  `json:"posts_count"`
	IsFollowedByMe  bool `json:"is_followed_by_me"`
}

// CompleteProfileCards shapes user ids into cards, keyed by id.
func CompleteProfileCards(ctx context.Context, db *gorm.DB, viewer *uint, ids []uint) (map[uint]ProfileCard, error) {
	// Load the users
	authors, err := loadAuthors(ctx, db, ids)
	if err != nil {
		return nil, err
	}

	// Expand followers
	followers, err := UserFollowers.Expand(ctx, db, ids)
	if err != nil {
		return nil, err
	}

	out := make(map[uint]ProfileCard, len(ids))
	for _, id := range ids {
		author := authorOrPlaceholder(authors, id)
		out[id] = ProfileCard{
			ID:             id,
			Username:       author.Username,
			FullName:       author.FullName,
			Avatar:         author.Avatar,
			FollowersCount: len(followers[id]),
			IsFollowedByMe: ResolveFlag(viewer, followers[id]),
		}
	}
	return out, nil
}

// profileCardShaper shapes any root row pointing at a user into that user's card.
func profileCardShaper[R any](db *gorm.DB, viewer *uint, userOf func(R) uint) Shaper[R, ProfileCard] {
	return func(ctx context.Context, rows []R) ([]ProfileCard, error) {
		ids := lo.Map(rows, func(item R, _ int) uint { return userOf(item) })
		cards, err := CompleteProfileCards(ctx, db, viewer, ids)
		if err != nil {
			return nil, err
		}
		return lo.Map(ids, func(id uint, _ int) ProfileCard { return cards[id] }), nil
	}
}

func profileShaper(db *gorm.DB, viewer *uint) Shaper[models.User, ProfileView] {
	return func(ctx context.Context, rows []models.User) ([]ProfileView, error) {
		ids := lo.Map(rows, func(item models.User, _ int) uint { return item.ID })

		// Expand followers, followings and posts
		followers, err := UserFollowers.Expand(ctx, db, ids)
		if err != nil {
			return nil, err
		}
		followings, err := UserFollowings.Expand(ctx, db, ids)
		if err != nil {
			return nil, err
		}
		posts, err := UserPosts.Count(ctx, db, ids)
		if err != nil {
			return nil, err
		}

		return lo.Map(rows, func(item models.User, _ int) ProfileView {
			return ProfileView{
				ID:              item.ID,
				Username:        item.Username,
				FullName:        item.FullName,
				Avatar:          item.Avatar,
				CoverPhoto:      item.CoverPhoto,
				Dob:             item.Dob,
				Gender:          item.Gender,
				Education:       item.Education,
				About:           item.About,
				Address:         item.Address,
				Links:           lo.Ternary(item.Links == nil, []string{}, []string(item.Links)),
				Interests:       lo.Ternary(item.Interests == nil, []string{}, []string(item.Interests)),
				CreatedAt:       item.CreatedAt,
				FollowersCount:  len(followers[item.ID]),
				FollowingsCount: len(followings[item.ID]),
				PostsCount:      int(posts[item.ID]),
				IsFollowedByMe:  ResolveFlag(viewer, followers[item.ID]),
			}
		}), nil
	}
}

func GetProfile(ctx context.Context, db *gorm.DB, username string, viewer *uint) (ProfileView, error) {
	if username == "" {
		return ProfileView{}, services.ValidationError("username is required")
	}

	profile, err := NewPipeline(db, profileShaper(db, viewer)).
		Filter(func(tx *gorm.DB) *gorm.DB {
			return tx.Where("username = ?", username)
		}).
		First(ctx)
	if err != nil {
		return profile, services.LookupError(err, "user")
	}
	return profile, nil
}

func findUserID(ctx context.Context, db *gorm.DB, username string) (uint, error) {
	if username == "" {
		return 0, services.ValidationError("username is required")
	}
	var user models.User
	if err := db.WithContext(ctx).Select("id").Where("username = ?", username).First(&user).Error; err != nil {
		return 0, services.LookupError(err, "user")
	}
	return user.ID, nil
}

func ListFollowers(ctx context.Context, db *gorm.DB, username string, viewer *uint, req PageRequest) (Page[ProfileCard], error) {
	id, err := findUserID(ctx, db, username)
	if err != nil {
		return Page[ProfileCard]{}, err
	}

	pipeline := NewPipeline(db, profileCardShaper(db, viewer, func(item models.Follow) uint {
		return item.FollowedByID
	})).Filter(func(tx *gorm.DB) *gorm.DB {
		return tx.Where("profile_id = ?", id)
	})
	return Paginate[ProfileCard](ctx, pipeline, req)
}

func ListFollowings(ctx context.Context, db *gorm.DB, username string, viewer *uint, req PageRequest) (Page[ProfileCard], error) {
	id, err := findUserID(ctx, db, username)
	if err != nil {
		return Page[ProfileCard]{}, err
	}

	pipeline := NewPipeline(db, profileCardShaper(db, viewer, func(item models.Follow) uint {
		return item.ProfileID
	})).Filter(func(tx *gorm.DB) *gorm.DB {
		return tx.Where("followed_by_id = ?", id)
	})
	return Paginate[ProfileCard](ctx, pipeline, req)
}

func ListPostLikers(ctx context.Context, db *gorm.DB, postID uint, viewer *uint, req PageRequest) (Page[ProfileCard], error) {
	if postID == 0 {
		return Page[ProfileCard]{}, services.ValidationError("post id is required")
	}
	if err := db.WithContext(ctx).Select("id").First(&models.Post{}, postID).Error; err != nil {
		return Page[ProfileCard]{}, services.LookupError(err, "post")
	}

	pipeline := NewPipeline(db, profileCardShaper(db, viewer, func(item models.Like) uint {
		return item.LikedByID
	})).Filter(PostLikes.Scope, func(tx *gorm.DB) *gorm.DB {
		return tx.Where("target_id = ?", postID)
	})
	return Paginate[ProfileCard](ctx, pipeline, req)
}

// ListSuggestedProfiles lists users the viewer does not follow yet, most followed first.
func ListSuggestedProfiles(ctx context.Context, db *gorm.DB, viewer uint, req PageRequest) (Page[ProfileCard], error) {
	followings, err := UserFollowings.Expand(ctx, db, []uint{viewer})
	if err != nil {
		return Page[ProfileCard]{}, err
	}
	excluded := append([]uint{viewer}, followings[viewer]...)

	var candidates []models.User
	if err := db.WithContext(ctx).
		Select("id", "created_at").
		Where("id NOT IN ?", excluded).
		Find(&candidates).Error; err != nil {
		return Page[ProfileCard]{}, fmt.Errorf("failed to load candidates: %w", err)
	}

	// Order by followers count before slicing
	counts, err := UserFollowers.Count(ctx, db, lo.Map(candidates, func(item models.User, _ int) uint {
		return item.ID
	}))
	if err != nil {
		return Page[ProfileCard]{}, err
	}
	slices.SortStableFunc(candidates, func(a, b models.User) int {
		if byCount := cmp.Compare(counts[b.ID], counts[a.ID]); byCount != 0 {
			return byCount
		}
		return b.CreatedAt.Compare(a.CreatedAt)
	})

	src := NewMemorySource(candidates, profileCardShaper(db, &viewer, func(item models.User) uint {
		return item.ID
	}))
	return Paginate[ProfileCard](ctx, src, req)
}
