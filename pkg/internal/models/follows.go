package models

// Follow is a directed edge, FollowedByID follows ProfileID.
type Follow struct {
	BaseModel

	FollowedByID uint `json:"followed_by_id" gorm:"uniqueIndex:idx_follow_pair,priority:1"`
	ProfileID    uint `json:"profile_id" gorm:"uniqueIndex:idx_follow_pair,priority:2;index"`
}

type Save struct {
	BaseModel

	PostID    uint `json:"post_id" gorm:"uniqueIndex:idx_save_pair,priority:1"`
	SavedByID uint `json:"saved_by_id" gorm:"uniqueIndex:idx_save_pair,priority:2;index"`
}
