package models

const (
	MemberRoleUser  = "user"
	MemberRoleAdmin = "admin"
)

const (
	MaxGroupNameLength        = 50
	MaxGroupDescriptionLength = 200
)

type Group struct {
	BaseModel

	GroupName   string `json:"group_name" gorm:"size:50"`
	Description string `json:"description" gorm:"size:200"`
	GroupIcon   string `json:"group_icon"`
	GroupBanner string `json:"group_banner"`
	CreatedByID uint   `json:"created_by_id" gorm:"index"`

	OnlyAdminCanEditGroupSettings bool `json:"only_admin_can_edit_group_settings"`
}

type Member struct {
	BaseModel

	GroupID uint   `json:"group_id" gorm:"uniqueIndex:idx_member_pair,priority:1"`
	UserID  uint   `json:"user_id" gorm:"uniqueIndex:idx_member_pair,priority:2;index"`
	Role    string `json:"role" gorm:"size:8"`
}
