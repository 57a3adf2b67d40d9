package model

import (
	"time"

	"gorm.io/gorm"
)

type UserStatus string

const (
	StatusOnline  UserStatus = "ONLINE"
	StatusOffline UserStatus = "OFFLINE"
)

// User is created on first successful Telegram login and only ever
// soft-deleted so historical messages keep their sender.
type User struct {
	ID         uint       `gorm:"primaryKey" json:"id"`
	FirstName  string     `gorm:"type:varchar(100);not null" json:"first_name"`
	TelegramID int64      `gorm:"not null;index" json:"telegram_id"`
	Username   string     `gorm:"type:varchar(100);not null;uniqueIndex:idx_users_username" json:"username"`
	AvatarURL  string     `gorm:"type:varchar(255)" json:"avatar_url"`
	Bio        string     `gorm:"type:text" json:"bio"`
	AuthDate   int64      `json:"auth_date"`
	Status     UserStatus `gorm:"type:varchar(20);default:'OFFLINE'" json:"status"`
	LastSeen   *time.Time `json:"last_seen"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
	DeletedAt  gorm.DeletedAt `gorm:"index" json:"-"`
}
