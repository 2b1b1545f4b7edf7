package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// LocalStorage keeps uploads on disk, the http layer serves the directory under /upload.
type LocalStorage struct {
	basePath  string
	publicURL string
}

func NewLocalStorage(basePath, publicURL string) (*LocalStorage, error) {
	if basePath == "" {
		basePath = "uploads"
	}
	if err := os.MkdirAll(basePath, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create upload directory: %w", err)
	}
	return &LocalStorage{
		basePath:  basePath,
		publicURL: strings.TrimSuffix(publicURL, "/"),
	}, nil
}

func (s *LocalStorage) BasePath() string {
	return s.basePath
}

func (s *LocalStorage) Upload(ctx context.Context, localPath string) (Upload, error) {
	if err := ctx.Err(); err != nil {
		return Upload{}, err
	}

	src, err := os.Open(localPath)
	if err != nil {
		return Upload{}, fmt.Errorf("failed to open file: %w", err)
	}
	defer src.Close()

	ref := uuid.NewString()
	name := ref + strings.ToLower(filepath.Ext(localPath))
	dst, err := os.Create(filepath.Join(s.basePath, name))
	if err != nil {
		return Upload{}, fmt.Errorf("failed to create file: %w", err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		return Upload{}, fmt.Errorf("failed to write file: %w", err)
	}

	return Upload{URL: s.publicURL + "/" + uploadSegment + name, Ref: ref}, nil
}

func (s *LocalStorage) Delete(ctx context.Context, ref string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if ref == "" || strings.Contains(ref, "..") {
		return fmt.Errorf("invalid ref: %q", ref)
	}

	matches, err := filepath.Glob(filepath.Join(s.basePath, ref+".*"))
	if err != nil {
		return err
	}
	// Assets already gone count as deleted, the same way S3 answers
	for _, match := range matches {
		if err := os.Remove(match); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("failed to delete file: %w", err)
		}
	}
	return nil
}
