package storage

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"

	repo "woodify/internal/repository"
)

var _ repo.BlobStore = (*LocalStorage)(nil)

// 静的配信のプレフィックス
const UploadsPrefix = "/uploads"

var errBadKey = errors.New("invalid storage key")

// LocalStorage はUPLOAD_DIRに置いて /uploads で配信する
type LocalStorage struct {
	dir     string
	baseURL string
}

func NewLocalStorage(dir, baseURL string) (*LocalStorage, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	return &LocalStorage{dir: dir, baseURL: strings.TrimRight(baseURL, "/")}, nil
}

// Dir は静的配信に使う
func (s *LocalStorage) Dir() string { return s.dir }

func (s *LocalStorage) UploadBlob(_ context.Context, p, contentType string, data []byte) (repo.BlobRef, error) {
	key, err := cleanKey(p)
	if err != nil {
		return repo.BlobRef{}, err
	}

	full := filepath.Join(s.dir, filepath.FromSlash(key))
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return repo.BlobRef{}, err
	}
	if err := os.WriteFile(full, data, 0o644); err != nil {
		return repo.BlobRef{}, fmt.Errorf("write %s: %w", key, err)
	}
	return repo.BlobRef{Path: key, ContentType: contentType, Size: int64(len(data))}, nil
}

func (s *LocalStorage) GetDownloadURL(_ context.Context, ref repo.BlobRef) (string, error) {
	key, err := cleanKey(ref.Path)
	if err != nil {
		return "", err
	}
	if _, err := os.Stat(filepath.Join(s.dir, filepath.FromSlash(key))); err != nil {
		return "", fmt.Errorf("stat %s: %w", key, err)
	}
	return s.baseURL + UploadsPrefix + "/" + key, nil
}

// cleanKey は "../" や絶対パスを拒否する
func cleanKey(p string) (string, error) {
	p = strings.TrimSpace(strings.ReplaceAll(p, "\\", "/"))
	if p == "" || strings.HasPrefix(p, "/") {
		return "", errBadKey
	}
	key := path.Clean(p)
	if key == "." || key == ".." || strings.HasPrefix(key, "../") {
		return "", errBadKey
	}
	return key, nil
}
