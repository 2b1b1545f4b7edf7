package queries

import (
	"context"
	"time"

	"github.com/dasamritendu619/sharelearner-server/pkg/internal/models"
	"github.com/dasamritendu619/sharelearner-server/pkg/internal/services"
	"github.com/samber/lo"
	"gorm.io/gorm"
)

type GroupView struct {
	ID                            uint        `json:"id"`
	GroupName                     string      `json:"group_name"`
	Description                   string      `json:"description"`
	GroupIcon                     string      `json:"group_icon"`
	GroupBanner                   string      `json:"group_banner"`
	OnlyAdminCanEditGroupSettings bool        `json:"only_admin_can_edit_group_settings"`
	CreatedAt                     time.Time   `json:"created_at"`
	CreatedBy                     AuthorBrief `json:"created_by"`

	MembersCount int  `json:"members_count"`
	IsMemberByMe bool `json:"is_member_by_me"`
	IsAdminByMe  bool `json:"is_admin_by_me"`
}

type MemberView struct {
	ID       uint        `json:"id"`
	GroupID  uint        `json:"group_id"`
	Role     string      `json:"role"`
	JoinedAt time.Time   `json:"joined_at"`
	User     ProfileCard `json:"user"`
}

func groupShaper(db *gorm.DB, viewer *uint) Shaper[models.Group, GroupView] {
	return func(ctx context.Context, rows []models.Group) ([]GroupView, error) {
		idx := lo.Map(rows, func(item models.Group, _ int) uint { return item.ID })

		members, err := GroupMembers.Expand(ctx, db, idx)
		if err != nil {
			return nil, err
		}
		admins, err := GroupAdmins.Expand(ctx, db, idx)
		if err != nil {
			return nil, err
		}
		creators, err := loadAuthors(ctx, db, lo.Map(rows, func(item models.Group, _ int) uint {
			return item.CreatedByID
		}))
		if err != nil {
			return nil, err
		}

		return lo.Map(rows, func(item models.Group, _ int) GroupView {
			return GroupView{
				ID:                            item.ID,
				GroupName:                     item.GroupName,
				Description:                   item.Description,
				GroupIcon:                     item.GroupIcon,
				GroupBanner:                   item.GroupBanner,
				OnlyAdminCanEditGroupSettings: item.OnlyAdminCanEditGroupSettings,
				CreatedAt:                     item.CreatedAt,
				CreatedBy:                     authorOrPlaceholder(creators, item.CreatedByID),
				MembersCount:                  len(members[item.ID]),
				IsMemberByMe:                  ResolveFlag(viewer, members[item.ID]),
				IsAdminByMe:                   ResolveFlag(viewer, admins[item.ID]),
			}
		}), nil
	}
}

func GetGroupDetail(ctx context.Context, db *gorm.DB, id uint, viewer *uint) (GroupView, error) {
	if id == 0 {
		return GroupView{}, services.ValidationError("group id is required")
	}

	group, err := NewPipeline(db, groupShaper(db, viewer)).
		Filter(func(tx *gorm.DB) *gorm.DB {
			return tx.Where("id = ?", id)
		}).
		First(ctx)
	if err != nil {
		return group, services.LookupError(err, "group")
	}
	return group, nil
}

// ListGroupMembers lists admins first, then members by join date.
func ListGroupMembers(ctx context.Context, db *gorm.DB, groupID uint, viewer *uint, req PageRequest) (Page[MemberView], error) {
	if groupID == 0 {
		return Page[MemberView]{}, services.ValidationError("group id is required")
	}
	if err := db.WithContext(ctx).Select("id").First(&models.Group{}, groupID).Error; err != nil {
		return Page[MemberView]{}, services.LookupError(err, "group")
	}

	shape := func(ctx context.Context, rows []models.Member) ([]MemberView, error) {
		cards, err := CompleteProfileCards(ctx, db, viewer, lo.Map(rows, func(item models.Member, _ int) uint {
			return item.UserID
		}))
		if err != nil {
			return nil, err
		}
		return lo.Map(rows, func(item models.Member, _ int) MemberView {
			return MemberView{
				ID:       item.ID,
				GroupID:  item.GroupID,
				Role:     item.Role,
				JoinedAt: item.CreatedAt,
				User:     cards[item.UserID],
			}
		}), nil
	}

	pipeline := NewPipeline[models.Member, MemberView](db, shape).
		Filter(func(tx *gorm.DB) *gorm.DB {
			return tx.Where("group_id = ?", groupID)
		}).
		OrderBy("role = 'admin' DESC, created_at ASC")
	return Paginate[MemberView](ctx, pipeline, req)
}
