package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"mime"
	"path/filepath"
	"strings"

	"go-chat-server/internal/apperrors"
	"go-chat-server/internal/dto"
	"go-chat-server/internal/model"
	"go-chat-server/internal/repository"
	"go-chat-server/pkg/logger"
	"go-chat-server/pkg/storage"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// FileService stores uploaded blobs and keeps the asset catalog that
// messages reference by content hash.
type FileService struct {
	fileRepo *repository.FileRepository
	store    storage.Storage
}

func NewFileService(fileRepo *repository.FileRepository, store storage.Storage) *FileService {
	return &FileService{fileRepo: fileRepo, store: store}
}

// Upload stores the blob and records a FileAsset for it. Uploading the
// same content twice returns the existing asset instead of a duplicate.
func (s *FileService) Upload(ctx context.Context, userID uint, originalName string, data []byte) (*dto.FileAssetView, error) {
	sum := sha256.Sum256(data)
	hash := hex.EncodeToString(sum[:])

	existing, err := s.fileRepo.FindByHash(hash)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		view := dto.ToFileAssetView(existing)
		return &view, nil
	}

	ext := strings.ToLower(filepath.Ext(originalName))
	key := fmt.Sprintf("files/%s%s", uuid.New().String(), ext)
	locator, err := s.store.Store(ctx, key, contentTypeFor(ext), data)
	if err != nil {
		return nil, err
	}

	asset := &model.FileAsset{
		UserID:       userID,
		OriginalName: originalName,
		FileURL:      locator,
		Size:         int64(len(data)),
		Extension:    ext,
		MessageType:  messageTypeForExtension(ext),
		Hash:         hash,
	}
	if err := s.fileRepo.Create(asset); err != nil {
		return nil, err
	}

	logger.L.Info("Stored file",
		zap.Uint("userID", userID),
		zap.String("hash", hash),
		zap.Int64("size", asset.Size))
	view := dto.ToFileAssetView(asset)
	return &view, nil
}

// Download fetches the blob behind a previously issued hash.
func (s *FileService) Download(ctx context.Context, hash string) (*model.FileAsset, []byte, error) {
	asset, err := s.fileRepo.FindByHash(hash)
	if err != nil {
		return nil, nil, err
	}
	if asset == nil {
		return nil, nil, apperrors.FileHashNotFound(hash)
	}
	data, err := s.store.Read(ctx, asset.FileURL)
	if err != nil {
		return nil, nil, err
	}
	return asset, data, nil
}

// ResolveHash maps a hash from a send request to its asset.
func (s *FileService) ResolveHash(hash string) (*model.FileAsset, error) {
	asset, err := s.fileRepo.FindByHash(hash)
	if err != nil {
		return nil, err
	}
	if asset == nil {
		return nil, apperrors.FileHashNotFound(hash)
	}
	return asset, nil
}

// StoreAvatar writes a profile or group picture and returns its locator.
func (s *FileService) StoreAvatar(ctx context.Context, originalName string, data []byte) (string, error) {
	ext := strings.ToLower(filepath.Ext(originalName))
	key := fmt.Sprintf("avatars/%s%s", uuid.New().String(), ext)
	return s.store.Store(ctx, key, contentTypeFor(ext), data)
}

func contentTypeFor(ext string) string {
	if ct := mime.TypeByExtension(ext); ct != "" {
		return ct
	}
	return "application/octet-stream"
}

func messageTypeForExtension(ext string) model.MessageType {
	switch ext {
	case ".jpg", ".jpeg", ".png", ".gif", ".webp", ".bmp", ".svg":
		return model.MessageTypeImage
	case ".mp4", ".mov", ".avi", ".mkv", ".webm":
		return model.MessageTypeVideo
	case ".mp3", ".wav", ".ogg", ".m4a", ".flac":
		return model.MessageTypeAudio
	case ".pdf", ".doc", ".docx", ".xls", ".xlsx", ".txt", ".zip":
		return model.MessageTypeDocument
	default:
		return model.MessageTypeOther
	}
}
