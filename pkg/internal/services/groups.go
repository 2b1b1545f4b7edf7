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

type GroupInput struct {
	GroupName   string
	Description string
	// IconPath is an optional local file used as the group icon.
	IconPath string
}

func validateGroupText(name, description *string) error {
	if name != nil {
		if strings.TrimSpace(*name) == "" {
			return ValidationError("group name is required")
		}
		if len([]rune(strings.TrimSpace(*name))) > models.MaxGroupNameLength {
			return ValidationError("group name should not exceed %d characters", models.MaxGroupNameLength)
		}
	}
	if description != nil && len([]rune(strings.TrimSpace(*description))) > models.MaxGroupDescriptionLength {
		return ValidationError("description should not exceed %d characters", models.MaxGroupDescriptionLength)
	}
	return nil
}

// CreateGroup creates a group and seeds its creator as the first admin.
func CreateGroup(ctx context.Context, db *gorm.DB, store storage.Uploader, idx search.Indexer, actor uint, in GroupInput) (models.Group, error) {
	var group models.Group
	if err := validateGroupText(&in.GroupName, &in.Description); err != nil {
		return group, err
	}

	group = models.Group{
		GroupName:                     strings.TrimSpace(in.GroupName),
		Description:                   strings.TrimSpace(in.Description),
		GroupIcon:                     DefaultImage(ImageGroupIcon),
		GroupBanner:                   DefaultImage(ImageGroupBanner),
		CreatedByID:                   actor,
		OnlyAdminCanEditGroupSettings: true,
	}
	if in.IconPath != "" {
		upload, err := store.Upload(ctx, in.IconPath)
		if err != nil {
			return group, UploadError(err, "failed to upload group icon")
		}
		group.GroupIcon = upload.URL
	}

	if err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&group).Error; err != nil {
			return err
		}
		return tx.Create(&models.Member{
			GroupID: group.ID,
			UserID:  actor,
			Role:    models.MemberRoleAdmin,
		}).Error
	}); err != nil {
		return group, InternalError(err, "failed to create group")
	}
	indexGroup(ctx, idx, group)
	return group, nil
}

func findMember(ctx context.Context, db *gorm.DB, group, user uint) (*models.Member, error) {
	var member models.Member
	err := db.WithContext(ctx).Where("group_id = ? AND user_id = ?", group, user).First(&member).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	} else if err != nil {
		return nil, InternalError(err, "unable to load membership")
	}
	return &member, nil
}

// editableGroup loads a group the actor may edit: admins always, members when settings are open.
func editableGroup(ctx context.Context, db *gorm.DB, actor, id uint) (models.Group, error) {
	var group models.Group
	if id == 0 {
		return group, ValidationError("group id is required")
	}
	if err := db.WithContext(ctx).First(&group, id).Error; err != nil {
		return group, LookupError(err, "group")
	}
	member, err := findMember(ctx, db, group.ID, actor)
	if err != nil {
		return group, err
	}
	if member == nil {
		return group, ForbiddenError("you are not a member of this group")
	}
	if member.Role != models.MemberRoleAdmin && group.OnlyAdminCanEditGroupSettings {
		return group, ForbiddenError("only admins can edit this group")
	}
	return group, nil
}

func adminGroup(ctx context.Context, db *gorm.DB, actor, id uint) (models.Group, error) {
	var group models.Group
	if id == 0 {
		return group, ValidationError("group id is required")
	}
	if err := db.WithContext(ctx).First(&group, id).Error; err != nil {
		return group, LookupError(err, "group")
	}
	member, err := findMember(ctx, db, group.ID, actor)
	if err != nil {
		return group, err
	}
	if member == nil || member.Role != models.MemberRoleAdmin {
		return group, ForbiddenError("you are not authorized to make this request")
	}
	return group, nil
}

type GroupPatch struct {
	GroupName   *string
	Description *string
}

func UpdateGroup(ctx context.Context, db *gorm.DB, idx search.Indexer, actor, id uint, patch GroupPatch) (models.Group, error) {
	if patch.GroupName == nil && patch.Description == nil {
		return models.Group{}, ValidationError("group name or description is required")
	}
	if err := validateGroupText(patch.GroupName, patch.Description); err != nil {
		return models.Group{}, err
	}
	group, err := editableGroup(ctx, db, actor, id)
	if err != nil {
		return group, err
	}

	if patch.GroupName != nil {
		group.GroupName = strings.TrimSpace(*patch.GroupName)
	}
	if patch.Description != nil {
		group.Description = strings.TrimSpace(*patch.Description)
	}
	if err := db.WithContext(ctx).Save(&group).Error; err != nil {
		return group, InternalError(err, "failed to update group")
	}
	indexGroup(ctx, idx, group)
	return group, nil
}

// UpdateGroupImage swaps the icon or banner. The previous upload is removed once the row points at the new one.
func UpdateGroupImage(ctx context.Context, db *gorm.DB, store storage.Uploader, actor, id uint, kind, localPath string) (models.Group, error) {
	if kind != ImageGroupIcon && kind != ImageGroupBanner {
		return models.Group{}, ValidationError("invalid group image kind %q", kind)
	}
	if localPath == "" {
		return models.Group{}, ValidationError("%s is required", strings.ReplaceAll(kind, "_", " "))
	}
	group, err := editableGroup(ctx, db, actor, id)
	if err != nil {
		return group, err
	}

	current := lo.Ternary(kind == ImageGroupIcon, group.GroupIcon, group.GroupBanner)
	upload, err := store.Upload(ctx, localPath)
	if err != nil {
		return group, UploadError(err, "failed to upload %s", kind)
	}

	if err := db.WithContext(ctx).Model(&group).Update(kind, upload.URL).Error; err != nil {
		if err := store.Delete(ctx, upload.Ref); err != nil {
			log.Warn().Err(err).Str("asset", upload.URL).Msg("Unable to clean up an image that was never used...")
		}
		return group, InternalError(err, "failed to update group")
	}
	if kind == ImageGroupIcon {
		group.GroupIcon = upload.URL
	} else {
		group.GroupBanner = upload.URL
	}

	if !IsDefaultImage(kind, current) {
		if err := store.Delete(ctx, storage.PublicRef(current)); err != nil {
			log.Warn().Err(err).Str("asset", current).Msg("Unable to delete previous group image...")
		}
	}
	return group, nil
}

func UpdateGroupSettings(ctx context.Context, db *gorm.DB, actor, id uint, onlyAdminCanEdit bool) (models.Group, error) {
	group, err := adminGroup(ctx, db, actor, id)
	if err != nil {
		return group, err
	}
	group.OnlyAdminCanEditGroupSettings = onlyAdminCanEdit
	if err := db.WithContext(ctx).Model(&group).
		Update("only_admin_can_edit_group_settings", onlyAdminCanEdit).Error; err != nil {
		return group, InternalError(err, "failed to update group settings")
	}
	return group, nil
}

// DeleteGroup is admin only. Members go first, then uploaded images, then the group itself.
// The rows are removed in one transaction. When an image cannot be deleted the group and its
// members are kept, and images already deleted fall back to the defaults so nothing dangles.
func DeleteGroup(ctx context.Context, db *gorm.DB, store storage.Uploader, idx search.Indexer, actor, id uint) error {
	group, err := adminGroup(ctx, db, actor, id)
	if err != nil {
		return err
	}

	removed := map[string]any{}
	err = db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("group_id = ?", group.ID).Delete(&models.Member{}).Error; err != nil {
			return InternalError(err, "failed to delete group members")
		}
		for _, image := range []struct{ kind, url string }{
			{ImageGroupIcon, group.GroupIcon},
			{ImageGroupBanner, group.GroupBanner},
		} {
			if IsDefaultImage(image.kind, image.url) {
				continue
			}
			if err := store.Delete(ctx, storage.PublicRef(image.url)); err != nil {
				log.Error().Err(err).Uint("group", group.ID).Str("kind", image.kind).Msg("An error occurred when deleting group image...")
				return UploadError(err, "failed to delete %s", image.kind)
			}
			removed[image.kind] = DefaultImage(image.kind)
		}
		if err := tx.Delete(&group).Error; err != nil {
			return InternalError(err, "failed to delete group")
		}
		return nil
	})
	if err != nil {
		if len(removed) > 0 {
			if err := db.WithContext(ctx).Model(&group).Updates(removed).Error; err != nil {
				log.Error().Err(err).Uint("group", group.ID).Msg("An error occurred when resetting deleted group images...")
			}
		}
		return err
	}

	unindex(ctx, idx, search.IndexGroups, group.ID)
	return nil
}
