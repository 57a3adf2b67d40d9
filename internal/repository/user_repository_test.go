package repository

import (
	"testing"
	"time"

	"go-chat-server/internal/model"

	"github.com/stretchr/testify/assert"
)

func TestUserRepository_FindByTelegramID(t *testing.T) {
	setupTestDB(t)
	user := createTestUser(t, "alice")
	userRepo := NewUserRepository()

	found, err := userRepo.FindByTelegramID(user.TelegramID)
	assert.NoError(t, err)
	assert.NotNil(t, found)
	assert.Equal(t, user.ID, found.ID)

	missing, err := userRepo.FindByTelegramID(999999)
	assert.NoError(t, err)
	assert.Nil(t, missing)
}

func TestUserRepository_SearchByUsername(t *testing.T) {
	setupTestDB(t)
	createTestUser(t, "alice")
	createTestUser(t, "alina")
	createTestUser(t, "bob")
	userRepo := NewUserRepository()

	users, total, err := userRepo.SearchByUsername("ALI", testPageable())
	assert.NoError(t, err)
	assert.EqualValues(t, 2, total)
	assert.Len(t, users, 2)
	assert.Equal(t, "alice", users[0].Username)
	assert.Equal(t, "alina", users[1].Username)
}

func TestUserRepository_UpdateStatus(t *testing.T) {
	setupTestDB(t)
	user := createTestUser(t, "alice")
	userRepo := NewUserRepository()

	assert.NoError(t, userRepo.UpdateStatus(user.ID, model.StatusOnline, nil))
	found, err := userRepo.FindByID(user.ID)
	assert.NoError(t, err)
	assert.Equal(t, model.StatusOnline, found.Status)

	now := time.Now()
	assert.NoError(t, userRepo.UpdateStatus(user.ID, model.StatusOffline, &now))
	found, err = userRepo.FindByID(user.ID)
	assert.NoError(t, err)
	assert.Equal(t, model.StatusOffline, found.Status)
	assert.NotNil(t, found.LastSeen)
}

func TestUserRepository_TrashExcludesFromQueries(t *testing.T) {
	setupTestDB(t)
	user := createTestUser(t, "alice")
	userRepo := NewUserRepository()

	assert.NoError(t, userRepo.Trash(user.ID))

	found, err := userRepo.FindByID(user.ID)
	assert.NoError(t, err)
	assert.Nil(t, found)

	byName, err := userRepo.FindByUsername("alice")
	assert.NoError(t, err)
	assert.Nil(t, byName)
}
