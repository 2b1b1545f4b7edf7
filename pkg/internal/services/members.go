package services

import (
	"context"
	"errors"

	"github.com/dasamritendu619/sharelearner-server/pkg/internal/models"
	"gorm.io/gorm"
)

func countAdmins(ctx context.Context, db *gorm.DB, group uint) (int64, error) {
	var count int64
	err := db.WithContext(ctx).Model(&models.Member{}).
		Where("group_id = ? AND role = ?", group, models.MemberRoleAdmin).
		Count(&count).Error
	return count, err
}

func requireMember(ctx context.Context, db *gorm.DB, group, user uint) (models.Member, error) {
	member, err := findMember(ctx, db, group, user)
	if err != nil {
		return models.Member{}, err
	}
	if member == nil {
		return models.Member{}, NotFoundError("no member found with this id")
	}
	return *member, nil
}

func insertMember(ctx context.Context, db *gorm.DB, group, user uint) (models.Member, error) {
	member := models.Member{GroupID: group, UserID: user, Role: models.MemberRoleUser}
	if err := db.WithContext(ctx).Create(&member).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return member, ConflictError("user is already a member of this group")
		}
		return member, InternalError(err, "failed to add member to group")
	}
	return member, nil
}

// ToggleAdminRole promotes a member to admin or demotes an admin, the last admin stays.
func ToggleAdminRole(ctx context.Context, db *gorm.DB, actor, groupID, userID uint) (models.Member, error) {
	if userID == 0 {
		return models.Member{}, ValidationError("user id is required")
	}
	if _, err := adminGroup(ctx, db, actor, groupID); err != nil {
		return models.Member{}, err
	}
	member, err := requireMember(ctx, db, groupID, userID)
	if err != nil {
		return member, err
	}

	if member.Role == models.MemberRoleAdmin {
		admins, err := countAdmins(ctx, db, groupID)
		if err != nil {
			return member, InternalError(err, "unable to count admins")
		}
		if admins <= 1 {
			return member, ValidationError("a group needs at least one admin")
		}
		member.Role = models.MemberRoleUser
	} else {
		member.Role = models.MemberRoleAdmin
	}

	if err := db.WithContext(ctx).Model(&member).Update("role", member.Role).Error; err != nil {
		return member, InternalError(err, "failed to update member role")
	}
	return member, nil
}

func AddMember(ctx context.Context, db *gorm.DB, actor, groupID, userID uint) (models.Member, error) {
	if userID == 0 {
		return models.Member{}, ValidationError("user id is required")
	}
	if _, err := adminGroup(ctx, db, actor, groupID); err != nil {
		return models.Member{}, err
	}
	if err := exists[models.User](ctx, db, userID, "user"); err != nil {
		return models.Member{}, err
	}
	if current, err := findMember(ctx, db, groupID, userID); err != nil {
		return models.Member{}, err
	} else if current != nil {
		return *current, ConflictError("user is already a member of this group")
	}
	return insertMember(ctx, db, groupID, userID)
}

// JoinGroup lets the actor join through an invite issued by one of the group's admins.
func JoinGroup(ctx context.Context, db *gorm.DB, actor, groupID, adminID uint) (models.Member, error) {
	if adminID == 0 {
		return models.Member{}, ValidationError("admin id is required")
	}
	if groupID == 0 {
		return models.Member{}, ValidationError("group id is required")
	}
	if err := exists[models.Group](ctx, db, groupID, "group"); err != nil {
		return models.Member{}, err
	}
	admin, err := findMember(ctx, db, groupID, adminID)
	if err != nil {
		return models.Member{}, err
	}
	if admin == nil || admin.Role != models.MemberRoleAdmin {
		return models.Member{}, ForbiddenError("you are not authorized to make this request")
	}
	if current, err := findMember(ctx, db, groupID, actor); err != nil {
		return models.Member{}, err
	} else if current != nil {
		return *current, ConflictError("user is already a member of this group")
	}
	return insertMember(ctx, db, groupID, actor)
}

func LeaveGroup(ctx context.Context, db *gorm.DB, actor, groupID uint) error {
	if groupID == 0 {
		return ValidationError("group id is required")
	}
	member, err := findMember(ctx, db, groupID, actor)
	if err != nil {
		return err
	}
	if member == nil {
		return NotFoundError("you are not a member of this group")
	}
	if member.Role == models.MemberRoleAdmin {
		admins, err := countAdmins(ctx, db, groupID)
		if err != nil {
			return InternalError(err, "unable to count admins")
		}
		if admins <= 1 {
			return ValidationError("the last admin cannot leave the group")
		}
	}
	if err := db.WithContext(ctx).Delete(member).Error; err != nil {
		return InternalError(err, "failed to remove member from group")
	}
	return nil
}

func RemoveMember(ctx context.Context, db *gorm.DB, actor, groupID, userID uint) error {
	if userID == 0 {
		return ValidationError("user id is required")
	}
	if _, err := adminGroup(ctx, db, actor, groupID); err != nil {
		return err
	}
	member, err := requireMember(ctx, db, groupID, userID)
	if err != nil {
		return err
	}
	if member.Role == models.MemberRoleAdmin {
		admins, err := countAdmins(ctx, db, groupID)
		if err != nil {
			return InternalError(err, "unable to count admins")
		}
		if admins <= 1 {
			return ValidationError("the last admin cannot be removed")
		}
	}
	if err := db.WithContext(ctx).Delete(&member).Error; err != nil {
		return InternalError(err, "failed to remove member from group")
	}
	return nil
}
