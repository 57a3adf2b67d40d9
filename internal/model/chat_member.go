package model

import (
	"time"

	"gorm.io/gorm"
)

type MemberRole string

const (
	RoleOwner  MemberRole = "OWNER"
	RoleAdmin  MemberRole = "ADMIN"
	RoleMember MemberRole = "MEMBER"
)

// Rank orders roles for capability checks (OWNER > ADMIN > MEMBER).
func (r MemberRole) Rank() int {
	switch r {
	case RoleOwner:
		return 3
	case RoleAdmin:
		return 2
	case RoleMember:
		return 1
	}
	return 0
}

// ChatMember links a user to a chat. A user appears at most once per
// chat among non-deleted memberships; soft-deleting the row is how a
// user leaves or hides a chat without destroying it for others.
type ChatMember struct {
	ID       uint       `gorm:"primaryKey" json:"id"`
	ChatID   uint       `gorm:"not null;index:idx_chat_members_chat_user" json:"chat_id"`
	UserID   uint       `gorm:"not null;index:idx_chat_members_chat_user" json:"user_id"`
	Role     MemberRole `gorm:"type:varchar(20);default:'MEMBER'" json:"role"`
	JoinedAt time.Time  `json:"joined_at"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	Chat Chat `gorm:"foreignKey:ChatID" json:"-"`
	User User `gorm:"foreignKey:UserID" json:"-"`
}
