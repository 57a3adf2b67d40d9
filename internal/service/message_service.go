package service

import (
	"encoding/json"
	"time"

	"go-chat-server/internal/apperrors"
	"go-chat-server/internal/dto"
	"go-chat-server/internal/event"
	"go-chat-server/internal/interfaces"
	"go-chat-server/internal/model"
	"go-chat-server/internal/repository"
	"go-chat-server/pkg/logger"
	"go-chat-server/pkg/metrics"
	"go-chat-server/pkg/pagination"

	"go.uber.org/zap"
)

// MessageService is the write path of the chat: it validates and stores
// messages, maintains the per-recipient read markers, and fans delivery
// out through the connection manager. GROUP chats broadcast on their
// topic, PRIVATE chats address each member's queue.
type MessageService struct {
	msgRepo    *repository.MessageRepository
	statusRepo *repository.MessageStatusRepository
	memberRepo *repository.ChatMemberRepository
	userRepo   *repository.UserRepository
	files      *FileService
	chats      *ChatService
	hub        interfaces.ConnectionManager
}

func NewMessageService(
	msgRepo *repository.MessageRepository,
	statusRepo *repository.MessageStatusRepository,
	memberRepo *repository.ChatMemberRepository,
	userRepo *repository.UserRepository,
	files *FileService,
	chats *ChatService,
	hub interfaces.ConnectionManager,
) *MessageService {
	return &MessageService{
		msgRepo:    msgRepo,
		statusRepo: statusRepo,
		memberRepo: memberRepo,
		userRepo:   userRepo,
		files:      files,
		chats:      chats,
		hub:        hub,
	}
}

// SendMessageRequest addresses either an existing chat or, for first
// contact, a receiver whose private chat is created on the fly.
type SendMessageRequest struct {
	ChatID     uint     `json:"chat_id"`
	ReceiverID uint     `json:"receiver_id"`
	Content    string   `json:"content"`
	Hash       string   `json:"hash"`
	Latitude   *float64 `json:"latitude"`
	Longitude  *float64 `json:"longitude"`
	ReplyToID  *uint    `json:"reply_to_id"`
}

type EditMessageRequest struct {
	Content string `json:"content" binding:"required"`
}

type MarkReadRequest struct {
	ChatID     uint   `json:"chat_id"`
	MessageIDs []uint `json:"message_ids"`
}

// Send validates, persists and fans out one message. Unread rows for
// every recipient are written in the same transaction as the message.
func (s *MessageService) Send(senderID uint, req *SendMessageRequest) (*dto.MessageView, error) {
	sender, err := s.userRepo.FindByID(senderID)
	if err != nil {
		return nil, err
	}
	if sender == nil {
		return nil, apperrors.UserNotFound(senderID)
	}

	chat, err := s.resolveChat(senderID, req)
	if err != nil {
		return nil, err
	}
	if _, err := s.memberRepo.RequireRole(chat.ID, senderID, model.RoleMember); err != nil {
		return nil, err
	}

	message := &model.Message{
		ChatID:   chat.ID,
		SenderID: senderID,
		Content:  req.Content,
	}
	if err := s.applyPayload(message, req); err != nil {
		return nil, err
	}
	if err := s.validateReplyTo(chat.ID, req.ReplyToID); err != nil {
		return nil, err
	}
	message.ReplyToID = req.ReplyToID

	members, err := s.memberRepo.FindByChatID(chat.ID)
	if err != nil {
		return nil, err
	}
	recipients := make([]uint, 0, len(members))
	for i := range members {
		if members[i].UserID != senderID {
			recipients = append(recipients, members[i].UserID)
		}
	}

	if err := s.msgRepo.Append(message, recipients); err != nil {
		return nil, err
	}
	metrics.MessagesSent.Inc()

	message.Sender = *sender
	view := dto.ToMessageView(message)
	s.fanOutCreated(chat, &view, members)
	return &view, nil
}

// resolveChat maps the request to its chat, creating the private chat
// when only a receiver is given.
func (s *MessageService) resolveChat(senderID uint, req *SendMessageRequest) (*model.Chat, error) {
	if req.ChatID != 0 {
		return s.chats.mustFindChat(req.ChatID)
	}
	if req.ReceiverID != 0 {
		return s.chats.GetOrCreatePrivateChat(senderID, req.ReceiverID)
	}
	return nil, apperrors.ChatNotFound(0)
}

// applyPayload derives the message type from the payload: an uploaded
// file hash wins, then coordinates, then text.
func (s *MessageService) applyPayload(message *model.Message, req *SendMessageRequest) error {
	if req.Hash != "" {
		asset, err := s.files.ResolveHash(req.Hash)
		if err != nil {
			return err
		}
		message.MessageType = asset.MessageType
		message.FileURL = asset.FileURL
		return nil
	}
	if req.Latitude != nil && req.Longitude != nil {
		message.MessageType = model.MessageTypeLocation
		message.Latitude = req.Latitude
		message.Longitude = req.Longitude
		return nil
	}
	message.MessageType = model.MessageTypeText
	return nil
}

func (s *MessageService) validateReplyTo(chatID uint, replyToID *uint) error {
	if replyToID == nil {
		return nil
	}
	parent, err := s.msgRepo.FindByID(*replyToID)
	if err != nil {
		return err
	}
	if parent == nil {
		return apperrors.MessageNotFound(*replyToID)
	}
	if parent.ChatID != chatID {
		return apperrors.MessageChatMismatch(parent.ID, chatID)
	}
	return nil
}

// fanOutCreated pushes the new message and the refreshed chat-list rows.
// Group messages broadcast once on the chat topic; private messages go
// to each member's queue, the sender included as the delivery echo.
func (s *MessageService) fanOutCreated(chat *model.Chat, view *dto.MessageView, members []model.ChatMember) {
	env, err := event.New(event.MessageCreated, view)
	if err != nil {
		logger.L.Error("Failed to encode message event", zap.Error(err))
		return
	}

	if chat.ChatType == model.ChatTypeGroup {
		if err := s.hub.PublishTopic(event.TopicForChat(chat.ID), env); err != nil {
			logger.L.Warn("Group broadcast failed",
				zap.Uint("chatID", chat.ID), zap.Error(err))
		}
	} else {
		for i := range members {
			s.publishUser(members[i].UserID, env)
		}
	}

	for i := range members {
		memberID := members[i].UserID
		if chat.ChatType == model.ChatTypeGroup && memberID == view.SenderID {
			continue
		}
		s.pushChatListChanged(memberID, chat)
	}
}

func (s *MessageService) pushChatListChanged(userID uint, chat *model.Chat) {
	if !s.hub.IsClientConnected(userID) {
		return
	}
	item, err := s.chats.ListItemFor(userID, chat)
	if err != nil {
		logger.L.Warn("Failed to build chat-list row",
			zap.Uint("userID", userID), zap.Uint("chatID", chat.ID), zap.Error(err))
		return
	}
	env, err := event.New(event.ChatListChanged, event.ChatListChangedPayload{Item: *item})
	if err != nil {
		return
	}
	s.publishUser(userID, env)
}

func (s *MessageService) publishUser(userID uint, env *event.Envelope) {
	if err := s.hub.PublishUser(userID, env); err != nil {
		logger.L.Debug("User push skipped",
			zap.Uint("userID", userID), zap.String("type", string(env.Type)), zap.Error(err))
	}
}

// Edit replaces the content of the caller's own message and pushes the
// updated view.
func (s *MessageService) Edit(chatID, messageID, editorID uint, req *EditMessageRequest) (*dto.MessageView, error) {
	chat, err := s.chats.mustFindChat(chatID)
	if err != nil {
		return nil, err
	}
	message, err := s.msgRepo.FindByID(messageID)
	if err != nil {
		return nil, err
	}
	if message == nil {
		return nil, apperrors.MessageNotFound(messageID)
	}
	if message.ChatID != chat.ID {
		return nil, apperrors.MessageChatMismatch(message.ID, chat.ID)
	}
	if message.SenderID != editorID {
		return nil, apperrors.MessageAccessDenied(message.Sender.Username)
	}

	message.Content = req.Content
	message.Edited = true
	if err := s.msgRepo.Save(message); err != nil {
		return nil, err
	}

	view := dto.ToMessageView(message)
	env, err := event.New(event.MessageUpdated, view)
	if err == nil {
		s.broadcast(chat, env, editorID)
	}
	return &view, nil
}

// Delete soft-deletes a batch of the caller's own messages in one chat.
// All-or-nothing: one bad id fails the whole batch before anything is
// deleted.
func (s *MessageService) Delete(chatID, requesterID uint, messageIDs []uint) error {
	chat, err := s.chats.mustFindChat(chatID)
	if err != nil {
		return err
	}
	if len(messageIDs) == 0 {
		return nil
	}

	messages, err := s.msgRepo.FindAllByIDs(messageIDs)
	if err != nil {
		return err
	}
	found := make(map[uint]*model.Message, len(messages))
	for i := range messages {
		found[messages[i].ID] = &messages[i]
	}
	for _, id := range messageIDs {
		message, ok := found[id]
		if !ok {
			return apperrors.MessageNotFound(id)
		}
		if message.ChatID != chat.ID {
			return apperrors.MessageChatMismatch(message.ID, chat.ID)
		}
		if message.SenderID != requesterID {
			return apperrors.MessageAccessDenied(message.Sender.Username)
		}
	}

	if err := s.msgRepo.TrashList(messageIDs); err != nil {
		return err
	}

	env, err := event.New(event.MessageDeleted, event.MessageDeletedPayload{
		ChatID:     chat.ID,
		MessageIDs: messageIDs,
	})
	if err == nil {
		s.broadcast(chat, env, 0)
	}
	return nil
}

// broadcast routes an event per chat type: topic for groups, member
// queues for private chats. skipUserID suppresses the originator's echo
// when non-zero.
func (s *MessageService) broadcast(chat *model.Chat, env *event.Envelope, skipUserID uint) {
	if chat.ChatType == model.ChatTypeGroup {
		if err := s.hub.PublishTopic(event.TopicForChat(chat.ID), env); err != nil {
			logger.L.Warn("Group broadcast failed",
				zap.Uint("chatID", chat.ID), zap.Error(err))
		}
		return
	}
	members, err := s.memberRepo.FindByChatID(chat.ID)
	if err != nil {
		logger.L.Warn("Failed to load members for broadcast",
			zap.Uint("chatID", chat.ID), zap.Error(err))
		return
	}
	for i := range members {
		if skipUserID != 0 && members[i].UserID == skipUserID {
			continue
		}
		s.publishUser(members[i].UserID, env)
	}
}

// MarkRead flips the reader's unread markers for the given messages and
// pushes the resulting unread count back to the reader. Idempotent; an
// empty batch only reports the current count.
func (s *MessageService) MarkRead(chatID, readerID uint, messageIDs []uint) (int64, error) {
	chat, err := s.chats.mustFindChat(chatID)
	if err != nil {
		return 0, err
	}
	if _, err := s.memberRepo.RequireRole(chat.ID, readerID, model.RoleMember); err != nil {
		return 0, err
	}

	if len(messageIDs) > 0 {
		if err := s.statusRepo.MarkRead(readerID, chat.ID, messageIDs, time.Now()); err != nil {
			return 0, err
		}
	}
	unread, err := s.statusRepo.CountUnread(readerID, chat.ID)
	if err != nil {
		return 0, err
	}

	env, err := event.New(event.UnreadChanged, event.UnreadChangedPayload{
		ChatID:      chat.ID,
		UnreadCount: unread,
	})
	if err == nil {
		s.publishUser(readerID, env)
	}
	return unread, nil
}

// Page returns one page of the chat's history in creation order. The
// caller must be a member.
func (s *MessageService) Page(chatID, readerID uint, p pagination.Pageable) (*pagination.Page[dto.MessageView], error) {
	chat, err := s.chats.mustFindChat(chatID)
	if err != nil {
		return nil, err
	}
	if _, err := s.memberRepo.RequireRole(chat.ID, readerID, model.RoleMember); err != nil {
		return nil, err
	}

	messages, total, err := s.msgRepo.PageByChatID(chat.ID, p)
	if err != nil {
		return nil, err
	}
	views := make([]dto.MessageView, 0, len(messages))
	for i := range messages {
		views = append(views, dto.ToMessageView(&messages[i]))
	}
	page := pagination.NewPage(views, p, total)
	return &page, nil
}

// Inbound websocket frames.

const (
	frameSend = "message.send"
	frameRead = "message.read"
)

type clientFrame struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// HandleMessage implements interfaces.MessageHandler: it dispatches
// frames a connected client sends over the socket. Errors are logged,
// not pushed back; the REST surface is the place for error contracts.
func (s *MessageService) HandleMessage(message []byte, senderID uint) {
	var frame clientFrame
	if err := json.Unmarshal(message, &frame); err != nil {
		logger.L.Warn("Dropping malformed client frame",
			zap.Uint("senderID", senderID), zap.Error(err))
		return
	}

	switch frame.Type {
	case frameSend:
		var req SendMessageRequest
		if err := json.Unmarshal(frame.Payload, &req); err != nil {
			logger.L.Warn("Dropping malformed send frame",
				zap.Uint("senderID", senderID), zap.Error(err))
			return
		}
		if _, err := s.Send(senderID, &req); err != nil {
			logger.L.Warn("Socket send rejected",
				zap.Uint("senderID", senderID), zap.Error(err))
		}
	case frameRead:
		var req MarkReadRequest
		if err := json.Unmarshal(frame.Payload, &req); err != nil {
			logger.L.Warn("Dropping malformed read frame",
				zap.Uint("senderID", senderID), zap.Error(err))
			return
		}
		if _, err := s.MarkRead(req.ChatID, senderID, req.MessageIDs); err != nil {
			logger.L.Warn("Socket mark-read rejected",
				zap.Uint("senderID", senderID), zap.Error(err))
		}
	default:
		logger.L.Debug("Ignoring unknown client frame",
			zap.Uint("senderID", senderID), zap.String("type", frame.Type))
	}
}
