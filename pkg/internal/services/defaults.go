package services

import "github.com/spf13/viper"

const (
	ImageAvatar      = "avatar"
	ImageCoverPhoto  = "cover_photo"
	ImageGroupIcon   = "group_icon"
	ImageGroupBanner = "group_banner"
)

// DefaultImage is the placeholder url configured for a kind of image.
func DefaultImage(kind string) string {
	return viper.GetString("defaults." + kind)
}

// IsDefaultImage reports whether url is empty or the configured placeholder, neither of them is ours to delete.
func IsDefaultImage(kind, url string) bool {
	return url == "" || url == DefaultImage(kind)
}
