package model

import (
	"time"

	"gorm.io/gorm"
)

// MessageStatus is the per-recipient read marker. One row is created for
// every chat member except the sender when a message is appended; the
// sender never gets a row for their own message.
type MessageStatus struct {
	ID        uint       `gorm:"primaryKey" json:"id"`
	MessageID uint       `gorm:"not null;index:idx_message_status_msg_user" json:"message_id"`
	UserID    uint       `gorm:"not null;index:idx_message_status_msg_user" json:"user_id"`
	IsRead    bool       `gorm:"default:false;index" json:"is_read"`
	ReadAt    *time.Time `json:"read_at"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	Message Message `gorm:"foreignKey:MessageID" json:"-"`
	User    User    `gorm:"foreignKey:UserID" json:"-"`
}
