package utils

import (
	"testing"

	"go-chat-server/pkg/config"

	"github.com/stretchr/testify/assert"
)

func setupJWTTest(t *testing.T) {
	if err := config.InitTest(); err != nil {
		t.Fatalf("Failed to initialize config: %v", err)
	}
}

func TestGenerateAndParseTokenPair(t *testing.T) {
	setupJWTTest(t)

	pair, err := GenerateTokenPair(7, "alice")
	assert.NoError(t, err)
	assert.NotEmpty(t, pair.AccessToken)
	assert.NotEmpty(t, pair.RefreshToken)
	assert.NotEqual(t, pair.AccessToken, pair.RefreshToken)

	claims, err := ParseAccessToken(pair.AccessToken)
	assert.NoError(t, err)
	assert.EqualValues(t, 7, claims.UserID)
	assert.Equal(t, "alice", claims.Subject)

	refreshClaims, err := ParseRefreshToken(pair.RefreshToken)
	assert.NoError(t, err)
	assert.EqualValues(t, 7, refreshClaims.UserID)
}

func TestParseAccessToken_RejectsWrongKind(t *testing.T) {
	setupJWTTest(t)

	pair, err := GenerateTokenPair(7, "alice")
	assert.NoError(t, err)

	// Tokens signed with the other secret are invalid.
	_, err = ParseAccessToken(pair.RefreshToken)
	assert.Error(t, err)
	_, err = ParseRefreshToken(pair.AccessToken)
	assert.Error(t, err)
}

func TestParseAccessToken_RejectsGarbage(t *testing.T) {
	setupJWTTest(t)

	_, err := ParseAccessToken("not.a.token")
	assert.Error(t, err)
	_, err = ParseAccessToken("")
	assert.Error(t, err)
}
