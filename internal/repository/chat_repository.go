package repository

import (
	"errors"
	"fmt"
	"time"

	"go-chat-server/internal/model"
	"go-chat-server/pkg/db"

	"gorm.io/gorm"
)

type ChatRepository struct {
	db *gorm.DB
}

func NewChatRepository() *ChatRepository {
	return &ChatRepository{db: db.DB}
}

func (r *ChatRepository) FindByID(chatID uint) (*model.Chat, error) {
	var chat model.Chat
	if err := r.db.First(&chat, chatID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &chat, nil
}

// FindPrivateChatBetween looks up the non-deleted PRIVATE chat shared
// by the pair. Symmetric in argument order.
func (r *ChatRepository) FindPrivateChatBetween(userID1, userID2 uint) (*model.Chat, error) {
	var chat model.Chat
	err := r.db.
		Joins("JOIN chat_members m1 ON m1.chat_id = chats.id AND m1.user_id = ? AND m1.deleted_at IS NULL", userID1).
		Joins("JOIN chat_members m2 ON m2.chat_id = chats.id AND m2.user_id = ? AND m2.deleted_at IS NULL", userID2).
		Where("chats.chat_type = ?", model.ChatTypePrivate).
		First(&chat).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &chat, nil
}

func privatePairKey(userID1, userID2 uint) string {
	if userID1 > userID2 {
		userID1, userID2 = userID2, userID1
	}
	return fmt.Sprintf("%d:%d", userID1, userID2)
}

// CreatePrivateChat creates the chat and both memberships in one
// transaction. The pair key's unique index serializes concurrent first
// contacts: the loser's insert fails and the surviving chat is returned
// to both callers.
func (r *ChatRepository) CreatePrivateChat(userID1, userID2 uint) (*model.Chat, error) {
	pairKey := privatePairKey(userID1, userID2)
	chat := &model.Chat{ChatType: model.ChatTypePrivate, PairKey: &pairKey}
	err := r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(chat).Error; err != nil {
			return err
		}
		now := time.Now()
		members := []model.ChatMember{
			{ChatID: chat.ID, UserID: userID1, Role: model.RoleMember, JoinedAt: now},
			{ChatID: chat.ID, UserID: userID2, Role: model.RoleMember, JoinedAt: now},
		}
		return tx.Create(&members).Error
	})
	if err != nil {
		if existing, findErr := r.FindPrivateChatBetween(userID1, userID2); findErr == nil && existing != nil {
			return existing, nil
		}
		return nil, err
	}
	return chat, nil
}

// CreateGroupChat creates the chat, the creator's OWNER membership and
// all initial memberships in one transaction, so a failure leaves no
// partial group behind.
func (r *ChatRepository) CreateGroupChat(creatorID uint, name, avatarURL string, memberIDs []uint) (*model.Chat, error) {
	chat := &model.Chat{ChatType: model.ChatTypeGroup, GroupName: name, AvatarURL: avatarURL}
	err := r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(chat).Error; err != nil {
			return err
		}
		now := time.Now()
		members := []model.ChatMember{
			{ChatID: chat.ID, UserID: creatorID, Role: model.RoleOwner, JoinedAt: now},
		}
		for _, userID := range memberIDs {
			members = append(members, model.ChatMember{
				ChatID:   chat.ID,
				UserID:   userID,
				Role:     model.RoleMember,
				JoinedAt: now,
			})
		}
		return tx.Create(&members).Error
	})
	if err != nil {
		return nil, err
	}
	return chat, nil
}

// TrashWithMembers soft-deletes the chat and all its memberships
// together. The pair key is released first so the trashed row does not
// block a fresh chat for the same pair.
func (r *ChatRepository) TrashWithMembers(chatID uint) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&model.Chat{}).Where("id = ?", chatID).Update("pair_key", nil).Error; err != nil {
			return err
		}
		if err := tx.Delete(&model.Chat{}, chatID).Error; err != nil {
			return err
		}
		return tx.Where("chat_id = ?", chatID).Delete(&model.ChatMember{}).Error
	})
}
