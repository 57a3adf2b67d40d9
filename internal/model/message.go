package model

import (
	"time"

	"gorm.io/gorm"
)

type MessageType string

const (
	MessageTypeText     MessageType = "TEXT"
	MessageTypeImage    MessageType = "IMAGE"
	MessageTypeVideo    MessageType = "VIDEO"
	MessageTypeAudio    MessageType = "AUDIO"
	MessageTypeDocument MessageType = "DOCUMENT"
	MessageTypeLocation MessageType = "LOCATION"
	MessageTypeOther    MessageType = "OTHER"
)

// Message is append-only: after creation only the content (edit) and the
// soft-delete flag change. Ordering is by creation timestamp, ties
// broken by id.
type Message struct {
	ID          uint        `gorm:"primaryKey" json:"id"`
	ChatID      uint        `gorm:"not null;index" json:"chat_id"`
	SenderID    uint        `gorm:"not null;index" json:"sender_id"`
	MessageType MessageType `gorm:"type:varchar(20);not null" json:"message_type"`
	Content     string      `gorm:"type:text" json:"content"`
	FileURL     string      `gorm:"type:varchar(255)" json:"file_url,omitempty"`
	Latitude    *float64    `json:"latitude,omitempty"`
	Longitude   *float64    `json:"longitude,omitempty"`
	ReplyToID   *uint       `gorm:"index" json:"reply_to_id,omitempty"`
	Edited      bool        `gorm:"default:false" json:"edited"`
	CreatedAt   time.Time   `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`

	Chat    Chat     `gorm:"foreignKey:ChatID" json:"-"`
	Sender  User     `gorm:"foreignKey:SenderID" json:"sender"`
	ReplyTo *Message `gorm:"foreignKey:ReplyToID" json:"-"`
}
