package dto

import (
	"time"

	"go-chat-server/internal/model"
)

// View DTOs shared by the REST handlers and the push events.

type UserView struct {
	ID        uint             `json:"id"`
	FirstName string           `json:"first_name"`
	Username  string           `json:"username"`
	AvatarURL string           `json:"avatar_url,omitempty"`
	Bio       string           `json:"bio,omitempty"`
	Status    model.UserStatus `json:"status"`
	LastSeen  *time.Time       `json:"last_seen,omitempty"`
}

func ToUserView(u *model.User) UserView {
	return UserView{
		ID:        u.ID,
		FirstName: u.FirstName,
		Username:  u.Username,
		AvatarURL: u.AvatarURL,
		Bio:       u.Bio,
		Status:    u.Status,
		LastSeen:  u.LastSeen,
	}
}

type MessageView struct {
	ID             uint              `json:"id"`
	ChatID         uint              `json:"chat_id"`
	SenderID       uint              `json:"sender_id"`
	SenderUsername string            `json:"sender_username"`
	MessageType    model.MessageType `json:"message_type"`
	Content        string            `json:"content,omitempty"`
	FileURL        string            `json:"file_url,omitempty"`
	Latitude       *float64          `json:"latitude,omitempty"`
	Longitude      *float64          `json:"longitude,omitempty"`
	ReplyToID      *uint             `json:"reply_to_id,omitempty"`
	Edited         bool              `json:"edited"`
	CreatedAt      time.Time         `json:"created_at"`
}

func ToMessageView(m *model.Message) MessageView {
	return MessageView{
		ID:             m.ID,
		ChatID:         m.ChatID,
		SenderID:       m.SenderID,
		SenderUsername: m.Sender.Username,
		MessageType:    m.MessageType,
		Content:        m.Content,
		FileURL:        m.FileURL,
		Latitude:       m.Latitude,
		Longitude:      m.Longitude,
		ReplyToID:      m.ReplyToID,
		Edited:         m.Edited,
		CreatedAt:      m.CreatedAt,
	}
}

type ChatSummary struct {
	ID        uint           `json:"id"`
	ChatType  model.ChatType `json:"chat_type"`
	GroupName string         `json:"group_name,omitempty"`
	AvatarURL string         `json:"avatar_url,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
}

func ToChatSummary(c *model.Chat) ChatSummary {
	return ChatSummary{
		ID:        c.ID,
		ChatType:  c.ChatType,
		GroupName: c.GroupName,
		AvatarURL: c.AvatarURL,
		CreatedAt: c.CreatedAt,
	}
}

// ChatListItem is one row of the chat-list view: chat metadata, the
// latest message, the caller's unread count and, for PRIVATE chats, the
// counterpart's presence. Recomputed per request, never cached.
type ChatListItem struct {
	ChatID      uint           `json:"chat_id"`
	ChatType    model.ChatType `json:"chat_type"`
	GroupName   string         `json:"group_name,omitempty"`
	AvatarURL   string         `json:"avatar_url,omitempty"`
	LastMessage *MessageView   `json:"last_message,omitempty"`
	UnreadCount int64          `json:"unread_count"`
	Counterpart *UserView      `json:"counterpart,omitempty"`
}

type MemberView struct {
	UserID    uint             `json:"user_id"`
	FirstName string           `json:"first_name"`
	Username  string           `json:"username"`
	AvatarURL string           `json:"avatar_url,omitempty"`
	Role      model.MemberRole `json:"role"`
}

type GroupDetails struct {
	ChatID    uint         `json:"chat_id"`
	GroupName string       `json:"group_name"`
	AvatarURL string       `json:"avatar_url,omitempty"`
	Members   []MemberView `json:"members"`
}

type FileAssetView struct {
	ID           uint              `json:"id"`
	OriginalName string            `json:"original_name"`
	Hash         string            `json:"hash"`
	Size         int64             `json:"size"`
	MessageType  model.MessageType `json:"message_type"`
}

func ToFileAssetView(a *model.FileAsset) FileAssetView {
	return FileAssetView{
		ID:           a.ID,
		OriginalName: a.OriginalName,
		Hash:         a.Hash,
		Size:         a.Size,
		MessageType:  a.MessageType,
	}
}
