package models

type Comment struct {
	BaseModel

	Content       string `json:"content"`
	PostID        uint   `json:"post_id" gorm:"index"`
	CommentedByID uint   `json:"commented_by_id" gorm:"index"`
}

type Reply struct {
	BaseModel

	Content     string `json:"content"`
	CommentID   uint   `json:"comment_id" gorm:"index"`
	PostID      uint   `json:"post_id" gorm:"index"`
	RepliedByID uint   `json:"replied_by_id" gorm:"index"`
}
