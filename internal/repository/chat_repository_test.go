package repository

import (
	"testing"

	"go-chat-server/internal/model"

	"github.com/stretchr/testify/assert"
)

func TestChatRepository_PrivateChatPerPair(t *testing.T) {
	setupTestDB(t)
	users := createTestUsers(t, 2)
	chatRepo := NewChatRepository()

	chat, err := chatRepo.CreatePrivateChat(users[0].ID, users[1].ID)
	assert.NoError(t, err)
	assert.NotZero(t, chat.ID)
	assert.Equal(t, model.ChatTypePrivate, chat.ChatType)

	// Lookup is symmetric in argument order.
	found, err := chatRepo.FindPrivateChatBetween(users[0].ID, users[1].ID)
	assert.NoError(t, err)
	assert.NotNil(t, found)
	assert.Equal(t, chat.ID, found.ID)

	reversed, err := chatRepo.FindPrivateChatBetween(users[1].ID, users[0].ID)
	assert.NoError(t, err)
	assert.NotNil(t, reversed)
	assert.Equal(t, chat.ID, reversed.ID)
}

func TestChatRepository_FindPrivateChatBetween_NoChat(t *testing.T) {
	setupTestDB(t)
	users := createTestUsers(t, 2)
	chatRepo := NewChatRepository()

	found, err := chatRepo.FindPrivateChatBetween(users[0].ID, users[1].ID)
	assert.NoError(t, err)
	assert.Nil(t, found)
}

func TestChatRepository_CreateGroupChat(t *testing.T) {
	setupTestDB(t)
	users := createTestUsers(t, 1)
	chatRepo := NewChatRepository()
	memberRepo := NewChatMemberRepository()

	chat, err := chatRepo.CreateGroupChat(users[0].ID, "devs", "", nil)
	assert.NoError(t, err)
	assert.Equal(t, model.ChatTypeGroup, chat.ChatType)
	assert.Equal(t, "devs", chat.GroupName)

	member, err := memberRepo.FindMember(chat.ID, users[0].ID)
	assert.NoError(t, err)
	assert.NotNil(t, member)
	assert.Equal(t, model.RoleOwner, member.Role)
}

func TestChatRepository_TrashWithMembers(t *testing.T) {
	setupTestDB(t)
	users := createTestUsers(t, 2)
	chatRepo := NewChatRepository()
	memberRepo := NewChatMemberRepository()

	chat, err := chatRepo.CreatePrivateChat(users[0].ID, users[1].ID)
	assert.NoError(t, err)

	err = chatRepo.TrashWithMembers(chat.ID)
	assert.NoError(t, err)

	found, err := chatRepo.FindByID(chat.ID)
	assert.NoError(t, err)
	assert.Nil(t, found)

	member, err := memberRepo.FindMember(chat.ID, users[0].ID)
	assert.NoError(t, err)
	assert.Nil(t, member)

	// A deleted chat no longer blocks a fresh private chat for the pair.
	again, err := chatRepo.FindPrivateChatBetween(users[0].ID, users[1].ID)
	assert.NoError(t, err)
	assert.Nil(t, again)
}

func TestChatRepository_PairKeySerializesCreation(t *testing.T) {
	setupTestDB(t)
	users := createTestUsers(t, 2)
	chatRepo := NewChatRepository()

	chat, err := chatRepo.CreatePrivateChat(users[0].ID, users[1].ID)
	assert.NoError(t, err)

	// A racing creation loses on the pair key and gets the survivor.
	same, err := chatRepo.CreatePrivateChat(users[1].ID, users[0].ID)
	assert.NoError(t, err)
	assert.Equal(t, chat.ID, same.ID)

	// Trashing releases the key, so the pair can start over.
	assert.NoError(t, chatRepo.TrashWithMembers(chat.ID))
	fresh, err := chatRepo.CreatePrivateChat(users[0].ID, users[1].ID)
	assert.NoError(t, err)
	assert.NotEqual(t, chat.ID, fresh.ID)
}

func TestChatMemberRepository_RequireRole(t *testing.T) {
	setupTestDB(t)
	users := createTestUsers(t, 3)
	chatRepo := NewChatRepository()
	memberRepo := NewChatMemberRepository()

	chat, err := chatRepo.CreateGroupChat(users[0].ID, "devs", "", nil)
	assert.NoError(t, err)
	assert.NoError(t, memberRepo.AddMember(chat.ID, users[1].ID, model.RoleMember))

	// Owner passes an OWNER check.
	member, err := memberRepo.RequireRole(chat.ID, users[0].ID, model.RoleOwner)
	assert.NoError(t, err)
	assert.Equal(t, model.RoleOwner, member.Role)

	// A plain member does not.
	_, err = memberRepo.RequireRole(chat.ID, users[1].ID, model.RoleOwner)
	assert.Error(t, err)

	// A non-member fails even the MEMBER check.
	_, err = memberRepo.RequireRole(chat.ID, users[2].ID, model.RoleMember)
	assert.Error(t, err)
}

func TestChatMemberRepository_FindByUserID_FiltersByType(t *testing.T) {
	setupTestDB(t)
	users := createTestUsers(t, 2)
	chatRepo := NewChatRepository()
	memberRepo := NewChatMemberRepository()

	_, err := chatRepo.CreatePrivateChat(users[0].ID, users[1].ID)
	assert.NoError(t, err)
	_, err = chatRepo.CreateGroupChat(users[0].ID, "devs", "", nil)
	assert.NoError(t, err)

	all, total, err := memberRepo.FindByUserID(users[0].ID, "", testPageable())
	assert.NoError(t, err)
	assert.EqualValues(t, 2, total)
	assert.Len(t, all, 2)

	groups, total, err := memberRepo.FindByUserID(users[0].ID, model.ChatTypeGroup, testPageable())
	assert.NoError(t, err)
	assert.EqualValues(t, 1, total)
	assert.Len(t, groups, 1)
	assert.Equal(t, model.ChatTypeGroup, groups[0].Chat.ChatType)
}
