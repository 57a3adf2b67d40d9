package service

import (
	"context"
	"testing"

	"go-chat-server/internal/apperrors"
	"go-chat-server/internal/model"

	"github.com/stretchr/testify/assert"
)

func TestUserService_UpdateProfile(t *testing.T) {
	env := setupTestEnv(t)
	user := env.createUser(t, "plainname")

	view, err := env.users.UpdateProfile(user.ID, &UpdateProfileRequest{
		FirstName: "Updated",
		Bio:       "hello there",
	})
	assert.NoError(t, err)
	assert.Equal(t, "Updated", view.FirstName)
	assert.Equal(t, "hello there", view.Bio)
	// Untouched fields survive a partial update.
	assert.Equal(t, "plainname", view.Username)
}

func TestUserService_UpdateAvatar(t *testing.T) {
	env := setupTestEnv(t)
	user := env.createUser(t, "pictured")

	view, err := env.users.UpdateAvatar(context.Background(), user.ID, "me.jpg", []byte("jpeg bytes"))
	assert.NoError(t, err)
	assert.NotEmpty(t, view.AvatarURL)
}

func TestUserService_DeleteThenMe(t *testing.T) {
	env := setupTestEnv(t)
	user := env.createUser(t, "leaving")

	assert.NoError(t, env.users.Delete(user.ID))
	_, err := env.users.Me(user.ID)
	assertCode(t, err, apperrors.CodeUserNotFound)
}

func TestUserService_StatusOf(t *testing.T) {
	env := setupTestEnv(t)
	user := env.createUser(t, "watched")

	env.presence.HandleUserConnected(user.ID)
	view, err := env.users.StatusOf(user.ID)
	assert.NoError(t, err)
	assert.Equal(t, model.StatusOnline, view.Status)

	env.presence.HandleUserDisconnected(user.ID)
	view, err = env.users.StatusOf(user.ID)
	assert.NoError(t, err)
	assert.Equal(t, model.StatusOffline, view.Status)
	assert.NotNil(t, view.LastSeen)
}

func TestUserService_FindByUsername(t *testing.T) {
	env := setupTestEnv(t)
	env.createUser(t, "findme")

	user, err := env.users.FindByUsername("findme")
	assert.NoError(t, err)
	assert.Equal(t, "findme", user.Username)

	_, err = env.users.FindByUsername("nobody")
	assertCode(t, err, apperrors.CodeUsernameNotFound)
}
