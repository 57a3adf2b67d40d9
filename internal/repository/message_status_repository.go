package repository

import (
	"time"

	"go-chat-server/internal/model"
	"go-chat-server/pkg/db"

	"gorm.io/gorm"
)

type MessageStatusRepository struct {
	db *gorm.DB
}

func NewMessageStatusRepository() *MessageStatusRepository {
	return &MessageStatusRepository{db: db.DB}
}

// CountUnread counts the reader's unread status rows for non-deleted
// messages of the chat.
func (r *MessageStatusRepository) CountUnread(userID, chatID uint) (int64, error) {
	var count int64
	err := r.db.Model(&model.MessageStatus{}).
		Joins("JOIN messages ON messages.id = message_statuses.message_id AND messages.deleted_at IS NULL").
		Where("message_statuses.user_id = ? AND message_statuses.is_read = ? AND messages.chat_id = ?",
			userID, false, chatID).
		Count(&count).Error
	return count, err
}

// MarkRead flips the reader's rows for the given message ids within the
// chat. Idempotent: rows already read keep their original readAt.
func (r *MessageStatusRepository) MarkRead(userID, chatID uint, messageIDs []uint, readAt time.Time) error {
	if len(messageIDs) == 0 {
		return nil
	}
	messageInChat := r.db.Model(&model.Message{}).
		Select("id").
		Where("chat_id = ? AND id IN ?", chatID, messageIDs)

	return r.db.Model(&model.MessageStatus{}).
		Where("user_id = ? AND is_read = ? AND message_id IN (?)", userID, false, messageInChat).
		Updates(map[string]any{"is_read": true, "read_at": readAt}).Error
}

// FindByMessageAndUser is used by tests to inspect a single marker.
func (r *MessageStatusRepository) FindByMessageAndUser(messageID, userID uint) (*model.MessageStatus, error) {
	var status model.MessageStatus
	err := r.db.Where("message_id = ? AND user_id = ?", messageID, userID).First(&status).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &status, nil
}

func (r *MessageStatusRepository) CountByMessageID(messageID uint) (int64, error) {
	var count int64
	err := r.db.Model(&model.MessageStatus{}).
		Where("message_id = ?", messageID).
		Count(&count).Error
	return count, err
}
