package repository

import (
	"fmt"
	"testing"
	"time"

	"go-chat-server/internal/model"

	"github.com/stretchr/testify/assert"
)

func seedChatWithUsers(t *testing.T, n int) (*model.Chat, []*model.User) {
	users := createTestUsers(t, n)
	chatRepo := NewChatRepository()
	chat, err := chatRepo.CreateGroupChat(users[0].ID, "devs", "", nil)
	if err != nil {
		t.Fatalf("Failed to create test chat: %v", err)
	}
	memberRepo := NewChatMemberRepository()
	for _, u := range users[1:] {
		if err := memberRepo.AddMember(chat.ID, u.ID, model.RoleMember); err != nil {
			t.Fatalf("Failed to add member: %v", err)
		}
	}
	return chat, users
}

func TestMessageRepository_AppendCreatesStatusRows(t *testing.T) {
	setupTestDB(t)
	chat, users := seedChatWithUsers(t, 3)
	msgRepo := NewMessageRepository()
	statusRepo := NewMessageStatusRepository()

	message := &model.Message{
		ChatID:      chat.ID,
		SenderID:    users[0].ID,
		MessageType: model.MessageTypeText,
		Content:     "hello",
	}
	err := msgRepo.Append(message, []uint{users[1].ID, users[2].ID})
	assert.NoError(t, err)
	assert.NotZero(t, message.ID)

	count, err := statusRepo.CountByMessageID(message.ID)
	assert.NoError(t, err)
	assert.EqualValues(t, 2, count)

	// One unread per recipient, none for the sender.
	for _, u := range users[1:] {
		unread, err := statusRepo.CountUnread(u.ID, chat.ID)
		assert.NoError(t, err)
		assert.EqualValues(t, 1, unread)
	}
	unread, err := statusRepo.CountUnread(users[0].ID, chat.ID)
	assert.NoError(t, err)
	assert.EqualValues(t, 0, unread)
}

func TestMessageRepository_PageByChatID_Order(t *testing.T) {
	setupTestDB(t)
	chat, users := seedChatWithUsers(t, 2)
	msgRepo := NewMessageRepository()

	for i := 0; i < 3; i++ {
		message := &model.Message{
			ChatID:      chat.ID,
			SenderID:    users[0].ID,
			MessageType: model.MessageTypeText,
			Content:     fmt.Sprintf("message %d", i+1),
		}
		assert.NoError(t, msgRepo.Append(message, []uint{users[1].ID}))
	}

	messages, total, err := msgRepo.PageByChatID(chat.ID, testPageable())
	assert.NoError(t, err)
	assert.EqualValues(t, 3, total)
	assert.Len(t, messages, 3)
	assert.Equal(t, "message 1", messages[0].Content)
	assert.Equal(t, "message 3", messages[2].Content)
	assert.Equal(t, users[0].Username, messages[0].Sender.Username)
}

func TestMessageRepository_Latest(t *testing.T) {
	setupTestDB(t)
	chat, users := seedChatWithUsers(t, 2)
	msgRepo := NewMessageRepository()

	latest, err := msgRepo.Latest(chat.ID)
	assert.NoError(t, err)
	assert.Nil(t, latest)

	first := &model.Message{ChatID: chat.ID, SenderID: users[0].ID, MessageType: model.MessageTypeText, Content: "first"}
	assert.NoError(t, msgRepo.Append(first, []uint{users[1].ID}))
	second := &model.Message{ChatID: chat.ID, SenderID: users[1].ID, MessageType: model.MessageTypeText, Content: "second"}
	assert.NoError(t, msgRepo.Append(second, []uint{users[0].ID}))

	latest, err = msgRepo.Latest(chat.ID)
	assert.NoError(t, err)
	assert.NotNil(t, latest)
	assert.Equal(t, "second", latest.Content)

	// Deleting the newest message moves the derived view back.
	assert.NoError(t, msgRepo.TrashList([]uint{second.ID}))
	latest, err = msgRepo.Latest(chat.ID)
	assert.NoError(t, err)
	assert.NotNil(t, latest)
	assert.Equal(t, "first", latest.Content)
}

func TestMessageStatusRepository_MarkReadIdempotent(t *testing.T) {
	setupTestDB(t)
	chat, users := seedChatWithUsers(t, 2)
	msgRepo := NewMessageRepository()
	statusRepo := NewMessageStatusRepository()

	message := &model.Message{ChatID: chat.ID, SenderID: users[0].ID, MessageType: model.MessageTypeText, Content: "hi"}
	assert.NoError(t, msgRepo.Append(message, []uint{users[1].ID}))

	readAt := time.Now()
	assert.NoError(t, statusRepo.MarkRead(users[1].ID, chat.ID, []uint{message.ID}, readAt))

	unread, err := statusRepo.CountUnread(users[1].ID, chat.ID)
	assert.NoError(t, err)
	assert.EqualValues(t, 0, unread)

	status, err := statusRepo.FindByMessageAndUser(message.ID, users[1].ID)
	assert.NoError(t, err)
	assert.NotNil(t, status)
	assert.True(t, status.IsRead)
	assert.NotNil(t, status.ReadAt)
	firstReadAt := *status.ReadAt

	// Marking again keeps the original readAt.
	assert.NoError(t, statusRepo.MarkRead(users[1].ID, chat.ID, []uint{message.ID}, time.Now().Add(time.Hour)))
	status, err = statusRepo.FindByMessageAndUser(message.ID, users[1].ID)
	assert.NoError(t, err)
	assert.Equal(t, firstReadAt.Unix(), status.ReadAt.Unix())
}

func TestMessageStatusRepository_MarkReadScopedToChat(t *testing.T) {
	setupTestDB(t)
	chat, users := seedChatWithUsers(t, 2)
	chatRepo := NewChatRepository()
	otherChat, err := chatRepo.CreatePrivateChat(users[0].ID, users[1].ID)
	assert.NoError(t, err)

	msgRepo := NewMessageRepository()
	statusRepo := NewMessageStatusRepository()

	foreign := &model.Message{ChatID: otherChat.ID, SenderID: users[0].ID, MessageType: model.MessageTypeText, Content: "elsewhere"}
	assert.NoError(t, msgRepo.Append(foreign, []uint{users[1].ID}))

	// Marking the foreign message against the group chat is a no-op.
	assert.NoError(t, statusRepo.MarkRead(users[1].ID, chat.ID, []uint{foreign.ID}, time.Now()))
	unread, err := statusRepo.CountUnread(users[1].ID, otherChat.ID)
	assert.NoError(t, err)
	assert.EqualValues(t, 1, unread)
}

func TestMessageStatusRepository_CountUnreadSkipsDeleted(t *testing.T) {
	setupTestDB(t)
	chat, users := seedChatWithUsers(t, 2)
	msgRepo := NewMessageRepository()
	statusRepo := NewMessageStatusRepository()

	message := &model.Message{ChatID: chat.ID, SenderID: users[0].ID, MessageType: model.MessageTypeText, Content: "gone soon"}
	assert.NoError(t, msgRepo.Append(message, []uint{users[1].ID}))

	assert.NoError(t, msgRepo.TrashList([]uint{message.ID}))
	unread, err := statusRepo.CountUnread(users[1].ID, chat.ID)
	assert.NoError(t, err)
	assert.EqualValues(t, 0, unread)
}
