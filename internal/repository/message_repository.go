package repository

import (
	"errors"

	"go-chat-server/internal/model"
	"go-chat-server/pkg/db"
	"go-chat-server/pkg/pagination"

	"gorm.io/gorm"
)

type MessageRepository struct {
	db *gorm.DB
}

func NewMessageRepository() *MessageRepository {
	return &MessageRepository{db: db.DB}
}

// Append stores the message and the unread status rows for its
// recipients in one transaction, so a subscriber can never observe the
// push before the rows are visible to a read.
func (r *MessageRepository) Append(message *model.Message, recipientIDs []uint) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(message).Error; err != nil {
			return err
		}
		if len(recipientIDs) == 0 {
			return nil
		}
		statuses := make([]model.MessageStatus, 0, len(recipientIDs))
		for _, userID := range recipientIDs {
			statuses = append(statuses, model.MessageStatus{
				MessageID: message.ID,
				UserID:    userID,
			})
		}
		return tx.Create(&statuses).Error
	})
}

func (r *MessageRepository) FindByID(messageID uint) (*model.Message, error) {
	var message model.Message
	err := r.db.Preload("Sender").First(&message, messageID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &message, nil
}

func (r *MessageRepository) FindAllByIDs(messageIDs []uint) ([]model.Message, error) {
	var messages []model.Message
	err := r.db.Preload("Sender").Where("id IN ?", messageIDs).Find(&messages).Error
	return messages, err
}

// PageByChatID returns the chat's messages in ascending creation order,
// id as tiebreak.
func (r *MessageRepository) PageByChatID(chatID uint, p pagination.Pageable) ([]model.Message, int64, error) {
	query := r.db.Model(&model.Message{}).Where("chat_id = ?", chatID)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var messages []model.Message
	err := query.Order("created_at ASC, id ASC").
		Limit(p.Size).
		Offset(p.Offset()).
		Preload("Sender").
		Find(&messages).Error
	return messages, total, err
}

// Latest returns the most recent non-deleted message of the chat, or
// nil. This is the derived "last message" view for chat lists.
func (r *MessageRepository) Latest(chatID uint) (*model.Message, error) {
	var message model.Message
	err := r.db.Where("chat_id = ?", chatID).
		Order("created_at DESC, id DESC").
		Preload("Sender").
		First(&message).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &message, nil
}

func (r *MessageRepository) Save(message *model.Message) error {
	return r.db.Save(message).Error
}

// TrashList soft-deletes the batch atomically.
func (r *MessageRepository) TrashList(messageIDs []uint) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		return tx.Where("id IN ?", messageIDs).Delete(&model.Message{}).Error
	})
}
