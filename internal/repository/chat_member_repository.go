package repository

import (
	"errors"
	"time"

	"go-chat-server/internal/apperrors"
	"go-chat-server/internal/model"
	"go-chat-server/pkg/db"
	"go-chat-server/pkg/pagination"

	"gorm.io/gorm"
)

type ChatMemberRepository struct {
	db *gorm.DB
}

func NewChatMemberRepository() *ChatMemberRepository {
	return &ChatMemberRepository{db: db.DB}
}

func (r *ChatMemberRepository) FindMember(chatID, userID uint) (*model.ChatMember, error) {
	var member model.ChatMember
	err := r.db.Where("chat_id = ? AND user_id = ?", chatID, userID).First(&member).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &member, nil
}

// FindByChatID returns all current members of the chat with their users
// preloaded.
func (r *ChatMemberRepository) FindByChatID(chatID uint) ([]model.ChatMember, error) {
	var members []model.ChatMember
	err := r.db.Where("chat_id = ?", chatID).
		Preload("User").
		Find(&members).Error
	return members, err
}

// FindByUserID pages the user's memberships, newest chat first,
// optionally filtered by chat type. Memberships of deleted chats are
// skipped.
func (r *ChatMemberRepository) FindByUserID(userID uint, chatType model.ChatType, p pagination.Pageable) ([]model.ChatMember, int64, error) {
	query := r.db.Model(&model.ChatMember{}).
		Joins("JOIN chats ON chats.id = chat_members.chat_id AND chats.deleted_at IS NULL").
		Where("chat_members.user_id = ?", userID)
	if chatType != "" {
		query = query.Where("chats.chat_type = ?", chatType)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var members []model.ChatMember
	err := query.Order("chats.created_at DESC").
		Limit(p.Size).
		Offset(p.Offset()).
		Preload("Chat").
		Find(&members).Error
	return members, total, err
}

func (r *ChatMemberRepository) Exists(chatID, userID uint) (bool, error) {
	var count int64
	err := r.db.Model(&model.ChatMember{}).
		Where("chat_id = ? AND user_id = ?", chatID, userID).
		Count(&count).Error
	return count > 0, err
}

func (r *ChatMemberRepository) AddMember(chatID, userID uint, role model.MemberRole) error {
	if role == "" {
		role = model.RoleMember
	}
	member := &model.ChatMember{
		ChatID:   chatID,
		UserID:   userID,
		Role:     role,
		JoinedAt: time.Now(),
	}
	return r.db.Create(member).Error
}

// AddMembers inserts the whole batch in one transaction.
func (r *ChatMemberRepository) AddMembers(chatID uint, userIDs []uint, role model.MemberRole) error {
	if len(userIDs) == 0 {
		return nil
	}
	if role == "" {
		role = model.RoleMember
	}
	now := time.Now()
	members := make([]model.ChatMember, 0, len(userIDs))
	for _, userID := range userIDs {
		members = append(members, model.ChatMember{
			ChatID:   chatID,
			UserID:   userID,
			Role:     role,
			JoinedAt: now,
		})
	}
	return r.db.Transaction(func(tx *gorm.DB) error {
		return tx.Create(&members).Error
	})
}

// Trash soft-deletes one membership ("hide chat for me").
func (r *ChatMemberRepository) Trash(memberID uint) error {
	return r.db.Delete(&model.ChatMember{}, memberID).Error
}

// RequireRole is the capability check every member-mutating operation
// goes through: the user must be a current member with at least the
// given role.
func (r *ChatMemberRepository) RequireRole(chatID, userID uint, minRole model.MemberRole) (*model.ChatMember, error) {
	member, err := r.FindMember(chatID, userID)
	if err != nil {
		return nil, err
	}
	if member == nil {
		return nil, apperrors.ChatMemberNotFound(userID)
	}
	if member.Role.Rank() < minRole.Rank() {
		return nil, apperrors.ChatAccessDenied(string(member.Role))
	}
	return member, nil
}
