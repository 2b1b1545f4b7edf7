package models

import "github.com/samber/lo"

const (
	PostTypePhoto  = "photo"
	PostTypeVideo  = "video"
	PostTypePdf    = "pdf"
	PostTypeBlog   = "blog"
	PostTypeForked = "forked"
)

// PostTypes is the closed set a feed with type "all" matches.
var PostTypes = []string{PostTypePhoto, PostTypeVideo, PostTypePdf, PostTypeBlog, PostTypeForked}

const (
	PostVisibilityPublic  = "public"
	PostVisibilityPrivate = "private"
	PostVisibilityFriends = "friends"
)

var PostVisibilities = []string{PostVisibilityPublic, PostVisibilityPrivate, PostVisibilityFriends}

// MinBlogContentLength is the shortest blog body accepted.
const MinBlogContentLength = 50

type Post struct {
	BaseModel

	Title      string  `json:"title"`
	Content    string  `json:"content"`
	Type       string  `json:"type" gorm:"index;size:16"`
	Visibility string  `json:"visibility" gorm:"index;size:16"`
	AssetURL   *string `json:"asset_url"`
	Language   string  `json:"language"`

	AuthorID     uint  `json:"author_id" gorm:"index"`
	ForkedFromID *uint `json:"forked_from_id" gorm:"index"`
}

// IsAssetType reports whether posts of type t are backed by an uploaded asset.
func IsAssetType(t string) bool {
	return lo.Contains([]string{PostTypePhoto, PostTypeVideo, PostTypePdf}, t)
}
