package model

import (
	"time"

	"gorm.io/gorm"
)

type ChatType string

const (
	ChatTypePrivate ChatType = "PRIVATE"
	ChatTypeGroup   ChatType = "GROUP"
)

// Chat is a conversation container. Exactly one non-deleted PRIVATE chat
// may exist per unordered user pair; GROUP chats carry a name and
// role-managed membership. The "last message" view is derived from the
// message log, not stored here.
type Chat struct {
	ID        uint     `gorm:"primaryKey" json:"id"`
	ChatType  ChatType `gorm:"type:varchar(20);not null;index" json:"chat_type"`
	GroupName string   `gorm:"type:varchar(100)" json:"group_name,omitempty"`
	AvatarURL string   `gorm:"type:varchar(255)" json:"avatar_url,omitempty"`
	// PairKey is "<minUserID>:<maxUserID>" for PRIVATE chats. The unique
	// index makes concurrent first contacts collide instead of creating
	// two chats; it is cleared when the chat is trashed so the pair can
	// start over. NULL for groups.
	PairKey *string `gorm:"type:varchar(64);uniqueIndex" json:"-"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	Members []ChatMember `gorm:"foreignKey:ChatID" json:"-"`
}
