package model

import (
	"time"

	"gorm.io/gorm"
)

// FileAsset records an uploaded blob. The content-derived hash is the
// stable reference clients use to attach the file to a message later.
type FileAsset struct {
	ID           uint        `gorm:"primaryKey" json:"id"`
	UserID       uint        `gorm:"not null;index" json:"user_id"`
	OriginalName string      `gorm:"type:varchar(255);not null" json:"original_name"`
	FileURL      string      `gorm:"type:varchar(255);not null" json:"file_url"`
	Size         int64       `json:"size"`
	Extension    string      `gorm:"type:varchar(20)" json:"extension"`
	MessageType  MessageType `gorm:"type:varchar(20)" json:"message_type"`
	Hash         string      `gorm:"type:varchar(100);uniqueIndex:idx_files_hash" json:"hash"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`

	User User `gorm:"foreignKey:UserID" json:"-"`
}
