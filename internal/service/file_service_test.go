package service

import (
	"context"
	"testing"

	"go-chat-server/internal/apperrors"
	"go-chat-server/internal/model"

	"github.com/stretchr/testify/assert"
)

func TestFileService_UploadAndSend(t *testing.T) {
	env := setupTestEnv(t)
	users := env.createUsers(t, 2)
	chat := env.createGroup(t, users[0], users[1])

	view, err := env.files.Upload(context.Background(), users[0].ID, "photo.png", []byte("fake png bytes"))
	assert.NoError(t, err)
	assert.NotEmpty(t, view.Hash)
	assert.Equal(t, model.MessageTypeImage, view.MessageType)
	assert.EqualValues(t, 14, view.Size)

	// A message can reference the uploaded blob by hash.
	sent, err := env.messages.Send(users[0].ID, &SendMessageRequest{
		ChatID: chat.ID,
		Hash:   view.Hash,
	})
	assert.NoError(t, err)
	assert.Equal(t, model.MessageTypeImage, sent.MessageType)
	assert.NotEmpty(t, sent.FileURL)
}

func TestFileService_UploadDeduplicatesByContent(t *testing.T) {
	env := setupTestEnv(t)
	user := env.createUser(t, "uploader")

	first, err := env.files.Upload(context.Background(), user.ID, "doc.pdf", []byte("same content"))
	assert.NoError(t, err)
	second, err := env.files.Upload(context.Background(), user.ID, "copy.pdf", []byte("same content"))
	assert.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, first.Hash, second.Hash)
}

func TestFileService_Download(t *testing.T) {
	env := setupTestEnv(t)
	user := env.createUser(t, "uploader")

	content := []byte("audio bytes")
	view, err := env.files.Upload(context.Background(), user.ID, "voice.mp3", content)
	assert.NoError(t, err)

	asset, data, err := env.files.Download(context.Background(), view.Hash)
	assert.NoError(t, err)
	assert.Equal(t, "voice.mp3", asset.OriginalName)
	assert.Equal(t, content, data)

	_, _, err = env.files.Download(context.Background(), "missing")
	assertCode(t, err, apperrors.CodeFileHashNotFound)
}
