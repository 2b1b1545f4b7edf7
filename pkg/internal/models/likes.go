package models

// LikeTargetKind names the table a like points into.
type LikeTargetKind string

const (
	LikeTargetPost    LikeTargetKind = "post"
	LikeTargetComment LikeTargetKind = "comment"
	LikeTargetReply   LikeTargetKind = "reply"
)

// Like points at exactly one post, comment or reply.
type Like struct {
	BaseModel

	TargetKind LikeTargetKind `json:"target_kind" gorm:"uniqueIndex:idx_like_target,priority:1;size:16"`
	TargetID   uint           `json:"target_id" gorm:"uniqueIndex:idx_like_target,priority:2"`
	LikedByID  uint           `json:"liked_by_id" gorm:"uniqueIndex:idx_like_target,priority:3;index"`
}
