package service

import (
	"go-chat-server/internal/apperrors"
	"go-chat-server/internal/dto"
	"go-chat-server/internal/event"
	"go-chat-server/internal/interfaces"
	"go-chat-server/internal/model"
	"go-chat-server/internal/repository"
	"go-chat-server/pkg/logger"
	"go-chat-server/pkg/pagination"

	"go.uber.org/zap"
)

// ChatService owns chat lifecycle and membership. Delivery-side effects
// (topic subscriptions, deletion pushes) go through the connection
// manager; persistence through the repositories.
type ChatService struct {
	chatRepo   *repository.ChatRepository
	memberRepo *repository.ChatMemberRepository
	userRepo   *repository.UserRepository
	msgRepo    *repository.MessageRepository
	statusRepo *repository.MessageStatusRepository
	presence   *PresenceService
	hub        interfaces.ConnectionManager
}

func NewChatService(
	chatRepo *repository.ChatRepository,
	memberRepo *repository.ChatMemberRepository,
	userRepo *repository.UserRepository,
	msgRepo *repository.MessageRepository,
	statusRepo *repository.MessageStatusRepository,
	presence *PresenceService,
	hub interfaces.ConnectionManager,
) *ChatService {
	return &ChatService{
		chatRepo:   chatRepo,
		memberRepo: memberRepo,
		userRepo:   userRepo,
		msgRepo:    msgRepo,
		statusRepo: statusRepo,
		presence:   presence,
		hub:        hub,
	}
}

type CreateGroupRequest struct {
	Name      string `json:"name" binding:"required"`
	AvatarURL string `json:"avatar_url"`
	MemberIDs []uint `json:"member_ids"`
}

// GetOrCreatePrivateChat returns the PRIVATE chat shared by the pair,
// creating it on first contact. Symmetric: either order of the pair
// resolves to the same chat.
func (s *ChatService) GetOrCreatePrivateChat(userID, otherID uint) (*model.Chat, error) {
	if _, err := s.mustFindUser(otherID); err != nil {
		return nil, err
	}

	chat, err := s.chatRepo.FindPrivateChatBetween(userID, otherID)
	if err != nil {
		return nil, err
	}
	if chat != nil {
		return chat, nil
	}

	chat, err = s.chatRepo.CreatePrivateChat(userID, otherID)
	if err != nil {
		return nil, err
	}
	logger.L.Info("Created private chat",
		zap.Uint("chatID", chat.ID),
		zap.Uint("userID", userID),
		zap.Uint("otherID", otherID))
	return chat, nil
}

// CreateGroupChat creates the group with the caller as OWNER and the
// initial members, all in one transaction: an unknown member id fails
// the creation before anything is committed. Every member is subscribed
// to the group topic so connected ones start receiving broadcasts
// immediately.
func (s *ChatService) CreateGroupChat(creatorID uint, req *CreateGroupRequest) (*dto.ChatSummary, error) {
	memberIDs := make([]uint, 0, len(req.MemberIDs))
	seen := map[uint]struct{}{creatorID: {}}
	for _, memberID := range req.MemberIDs {
		if _, ok := seen[memberID]; ok {
			continue
		}
		if _, err := s.mustFindUser(memberID); err != nil {
			return nil, err
		}
		seen[memberID] = struct{}{}
		memberIDs = append(memberIDs, memberID)
	}

	chat, err := s.chatRepo.CreateGroupChat(creatorID, req.Name, req.AvatarURL, memberIDs)
	if err != nil {
		return nil, err
	}

	topic := event.TopicForChat(chat.ID)
	s.hub.Subscribe(topic, creatorID)
	for _, memberID := range memberIDs {
		s.hub.Subscribe(topic, memberID)
	}

	logger.L.Info("Created group chat",
		zap.Uint("chatID", chat.ID),
		zap.Uint("creatorID", creatorID),
		zap.Int("members", len(req.MemberIDs)))
	summary := dto.ToChatSummary(chat)
	return &summary, nil
}

// AddMembers adds users to a group. Only the OWNER may do this; users
// that are already members are skipped. The batch is validated first and
// inserted in one transaction, so an unknown id adds nobody.
func (s *ChatService) AddMembers(chatID, actorID uint, memberIDs []uint) error {
	chat, err := s.mustFindGroup(chatID)
	if err != nil {
		return err
	}
	if _, err := s.memberRepo.RequireRole(chat.ID, actorID, model.RoleOwner); err != nil {
		return err
	}

	toAdd := make([]uint, 0, len(memberIDs))
	seen := make(map[uint]struct{}, len(memberIDs))
	for _, memberID := range memberIDs {
		if _, ok := seen[memberID]; ok {
			continue
		}
		seen[memberID] = struct{}{}
		if _, err := s.mustFindUser(memberID); err != nil {
			return err
		}
		exists, err := s.memberRepo.Exists(chat.ID, memberID)
		if err != nil {
			return err
		}
		if exists {
			continue
		}
		toAdd = append(toAdd, memberID)
	}

	if err := s.memberRepo.AddMembers(chat.ID, toAdd, model.RoleMember); err != nil {
		return err
	}
	for _, memberID := range toAdd {
		s.hub.Subscribe(event.TopicForChat(chat.ID), memberID)
	}
	return nil
}

// ChatList pages the caller's chats, newest first, each row carrying the
// latest message, the caller's unread count and, for PRIVATE chats, the
// counterpart's presence. chatType narrows the listing when non-empty.
func (s *ChatService) ChatList(userID uint, chatType model.ChatType, p pagination.Pageable) (*pagination.Page[dto.ChatListItem], error) {
	memberships, total, err := s.memberRepo.FindByUserID(userID, chatType, p)
	if err != nil {
		return nil, err
	}

	items := make([]dto.ChatListItem, 0, len(memberships))
	for i := range memberships {
		item, err := s.buildListItem(userID, &memberships[i].Chat)
		if err != nil {
			return nil, err
		}
		items = append(items, *item)
	}
	page := pagination.NewPage(items, p, total)
	return &page, nil
}

// ListItemFor builds a single chat-list row, used for chat-list pushes.
func (s *ChatService) ListItemFor(userID uint, chat *model.Chat) (*dto.ChatListItem, error) {
	return s.buildListItem(userID, chat)
}

func (s *ChatService) buildListItem(userID uint, chat *model.Chat) (*dto.ChatListItem, error) {
	item := &dto.ChatListItem{
		ChatID:    chat.ID,
		ChatType:  chat.ChatType,
		GroupName: chat.GroupName,
		AvatarURL: chat.AvatarURL,
	}

	latest, err := s.msgRepo.Latest(chat.ID)
	if err != nil {
		return nil, err
	}
	if latest != nil {
		view := dto.ToMessageView(latest)
		item.LastMessage = &view
	}

	unread, err := s.statusRepo.CountUnread(userID, chat.ID)
	if err != nil {
		return nil, err
	}
	item.UnreadCount = unread

	if chat.ChatType == model.ChatTypePrivate {
		counterpart, err := s.counterpartOf(chat.ID, userID)
		if err != nil {
			return nil, err
		}
		if counterpart != nil {
			view := dto.ToUserView(counterpart)
			status, lastSeen, err := s.presence.Status(counterpart.ID)
			if err == nil {
				view.Status = status
				view.LastSeen = lastSeen
			}
			item.Counterpart = &view
		}
	}
	return item, nil
}

func (s *ChatService) counterpartOf(chatID, userID uint) (*model.User, error) {
	members, err := s.memberRepo.FindByChatID(chatID)
	if err != nil {
		return nil, err
	}
	for i := range members {
		if members[i].UserID != userID {
			return &members[i].User, nil
		}
	}
	return nil, nil
}

// GroupDetails returns the group's metadata and member roster. The
// caller must be a member.
func (s *ChatService) GroupDetails(chatID, actorID uint) (*dto.GroupDetails, error) {
	chat, err := s.mustFindGroup(chatID)
	if err != nil {
		return nil, err
	}
	if _, err := s.memberRepo.RequireRole(chat.ID, actorID, model.RoleMember); err != nil {
		return nil, err
	}

	members, err := s.memberRepo.FindByChatID(chat.ID)
	if err != nil {
		return nil, err
	}
	views := make([]dto.MemberView, 0, len(members))
	for i := range members {
		m := &members[i]
		views = append(views, dto.MemberView{
			UserID:    m.UserID,
			FirstName: m.User.FirstName,
			Username:  m.User.Username,
			AvatarURL: m.User.AvatarURL,
			Role:      m.Role,
		})
	}
	return &dto.GroupDetails{
		ChatID:    chat.ID,
		GroupName: chat.GroupName,
		AvatarURL: chat.AvatarURL,
		Members:   views,
	}, nil
}

// Members returns the current member rows of a chat.
func (s *ChatService) Members(chatID uint) ([]model.ChatMember, error) {
	return s.memberRepo.FindByChatID(chatID)
}

// DeleteChat removes a chat. forEveryone soft-deletes the chat and all
// memberships and pushes chat.deleted to every member; a PRIVATE chat is
// always deleted for both sides. Otherwise only the caller's membership
// is trashed, hiding the chat from their list. In a group, forEveryone
// needs OWNER or ADMIN.
func (s *ChatService) DeleteChat(chatID, actorID uint, forEveryone bool) error {
	chat, err := s.mustFindChat(chatID)
	if err != nil {
		return err
	}
	member, err := s.memberRepo.FindMember(chat.ID, actorID)
	if err != nil {
		return err
	}
	if member == nil {
		return apperrors.ChatMemberNotFound(actorID)
	}

	if chat.ChatType == model.ChatTypePrivate {
		forEveryone = true
	}

	if !forEveryone {
		return s.memberRepo.Trash(member.ID)
	}

	if chat.ChatType == model.ChatTypeGroup && member.Role.Rank() < model.RoleAdmin.Rank() {
		actor, err := s.mustFindUser(actorID)
		if err != nil {
			return err
		}
		return apperrors.ChatDeletePermission(actor.Username)
	}

	members, err := s.memberRepo.FindByChatID(chat.ID)
	if err != nil {
		return err
	}
	if err := s.chatRepo.TrashWithMembers(chat.ID); err != nil {
		return err
	}

	topic := event.TopicForChat(chat.ID)
	env, err := event.New(event.ChatDeleted, event.ChatDeletedPayload{ChatID: chat.ID})
	if err != nil {
		return err
	}
	for i := range members {
		memberID := members[i].UserID
		s.hub.Unsubscribe(topic, memberID)
		if err := s.hub.PublishUser(memberID, env); err != nil {
			logger.L.Warn("Failed to push chat deletion",
				zap.Uint("chatID", chat.ID),
				zap.Uint("userID", memberID),
				zap.Error(err))
		}
	}
	logger.L.Info("Deleted chat", zap.Uint("chatID", chat.ID), zap.Uint("actorID", actorID))
	return nil
}

// SubscribeUserTopics attaches a freshly connected user to the topics of
// all their group chats.
func (s *ChatService) SubscribeUserTopics(userID uint) error {
	memberships, _, err := s.memberRepo.FindByUserID(userID, model.ChatTypeGroup, pagination.Pageable{Page: 0, Size: pagination.MaxSize})
	if err != nil {
		return err
	}
	for i := range memberships {
		s.hub.Subscribe(event.TopicForChat(memberships[i].ChatID), userID)
	}
	return nil
}

func (s *ChatService) mustFindChat(chatID uint) (*model.Chat, error) {
	chat, err := s.chatRepo.FindByID(chatID)
	if err != nil {
		return nil, err
	}
	if chat == nil {
		return nil, apperrors.ChatNotFound(chatID)
	}
	return chat, nil
}

func (s *ChatService) mustFindGroup(chatID uint) (*model.Chat, error) {
	chat, err := s.mustFindChat(chatID)
	if err != nil {
		return nil, err
	}
	if chat.ChatType != model.ChatTypeGroup {
		return nil, apperrors.ChatNotFound(chatID)
	}
	return chat, nil
}

func (s *ChatService) mustFindUser(userID uint) (*model.User, error) {
	user, err := s.userRepo.FindByID(userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, apperrors.UserNotFound(userID)
	}
	return user, nil
}
