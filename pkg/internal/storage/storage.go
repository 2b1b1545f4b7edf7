package storage

import (
	"context"
	"fmt"
	"path"
	"strings"

	"github.com/spf13/viper"
)

type Upload struct {
	URL string `json:"url"`
	Ref string `json:"ref"`
}

// Uploader stores local files remotely and removes them by public ref.
type Uploader interface {
	Upload(ctx context.Context, localPath string) (Upload, error)
	Delete(ctx context.Context, ref string) error
}

const uploadSegment = "upload/"

// PublicRef extracts the path after "upload/" without its extension.
// It returns an empty string for urls that were never uploaded by a storage backend.
func PublicRef(url string) string {
	idx := strings.LastIndex(url, uploadSegment)
	if idx < 0 {
		return ""
	}
	rest := url[idx+len(uploadSegment):]
	if cut := strings.IndexAny(rest, "?#"); cut >= 0 {
		rest = rest[:cut]
	}
	return strings.TrimSuffix(rest, path.Ext(rest))
}

func NewFromViper(ctx context.Context) (Uploader, error) {
	switch driver := viper.GetString("storage.driver"); driver {
	case "local", "":
		return NewLocalStorage(
			viper.GetString("storage.local.path"),
			viper.GetString("storage.local.public_url"),
		)
	case "s3":
		var cfg S3Config
		if err := viper.UnmarshalKey("storage.s3", &cfg); err != nil {
			return nil, fmt.Errorf("failed to read s3 settings: %w", err)
		}
		return NewS3Storage(ctx, cfg)
	default:
		return nil, fmt.Errorf("unsupported storage driver: %s", driver)
	}
}
