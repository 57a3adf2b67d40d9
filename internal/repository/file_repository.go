package repository

import (
	"errors"

	"go-chat-server/internal/model"
	"go-chat-server/pkg/db"

	"gorm.io/gorm"
)

type FileRepository struct {
	db *gorm.DB
}

func NewFileRepository() *FileRepository {
	return &FileRepository{db: db.DB}
}

func (r *FileRepository) Create(asset *model.FileAsset) error {
	return r.db.Create(asset).Error
}

// FindByHash resolves the content hash a client attaches to a message.
func (r *FileRepository) FindByHash(hash string) (*model.FileAsset, error) {
	var asset model.FileAsset
	if err := r.db.Where("hash = ?", hash).First(&asset).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &asset, nil
}
