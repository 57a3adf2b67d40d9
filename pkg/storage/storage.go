package storage

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"go-chat-server/pkg/config"
)

// Storage is the blob store the file pipeline writes to. Store returns
// a locator that is later persisted on FileAsset/Message rows; Read
// fetches the bytes back (used for content hashing and downloads).
type Storage interface {
	Store(ctx context.Context, key, contentType string, data []byte) (locator string, err error)
	Read(ctx context.Context, locator string) ([]byte, error)
}

// New builds the storage backend selected by storage.provider.
func New(cfg config.StorageConfig) (Storage, error) {
	switch cfg.Provider {
	case "disk", "":
		return NewDiskStorage(cfg.BasePath)
	case "minio":
		return NewMinioStorage(cfg.Minio)
	default:
		return nil, errors.New("unsupported storage provider")
	}
}

// DiskStorage keeps blobs under a local base directory. The locator is
// the path relative to the base.
type DiskStorage struct {
	basePath string
}

func NewDiskStorage(basePath string) (*DiskStorage, error) {
	if basePath == "" {
		basePath = "uploads"
	}
	if err := os.MkdirAll(basePath, 0755); err != nil {
		return nil, fmt.Errorf("failed to create storage directory: %w", err)
	}
	return &DiskStorage{basePath: basePath}, nil
}

func (s *DiskStorage) Store(_ context.Context, key, _ string, data []byte) (string, error) {
	path := filepath.Join(s.basePath, key)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return "", fmt.Errorf("failed to create storage subdirectory: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to save file: %w", err)
	}
	return key, nil
}

func (s *DiskStorage) Read(_ context.Context, locator string) ([]byte, error) {
	data, err := os.ReadFile(filepath.Join(s.basePath, locator))
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}
	return data, nil
}
