package service

import (
	"testing"

	"go-chat-server/internal/model"

	"github.com/stretchr/testify/assert"
)

func TestPresenceService_ConnectDisconnect(t *testing.T) {
	env := setupTestEnv(t)
	user := env.createUser(t, "ghost")

	env.presence.HandleUserConnected(user.ID)
	status, _, err := env.presence.Status(user.ID)
	assert.NoError(t, err)
	assert.Equal(t, model.StatusOnline, status)

	env.presence.HandleUserDisconnected(user.ID)
	status, lastSeen, err := env.presence.Status(user.ID)
	assert.NoError(t, err)
	assert.Equal(t, model.StatusOffline, status)
	assert.NotNil(t, lastSeen)
}

func TestPresenceService_RefCountsConnections(t *testing.T) {
	env := setupTestEnv(t)
	user := env.createUser(t, "twodevices")

	// Two connections, one drop: still online.
	env.presence.HandleUserConnected(user.ID)
	env.presence.HandleUserConnected(user.ID)
	env.presence.HandleUserDisconnected(user.ID)

	status, _, err := env.presence.Status(user.ID)
	assert.NoError(t, err)
	assert.Equal(t, model.StatusOnline, status)

	// Last one out flips the state.
	env.presence.HandleUserDisconnected(user.ID)
	status, _, err = env.presence.Status(user.ID)
	assert.NoError(t, err)
	assert.Equal(t, model.StatusOffline, status)
}

func TestPresenceService_StatusUnknownUser(t *testing.T) {
	env := setupTestEnv(t)

	status, lastSeen, err := env.presence.Status(99999)
	assert.NoError(t, err)
	assert.Equal(t, model.StatusOffline, status)
	assert.Nil(t, lastSeen)
}
