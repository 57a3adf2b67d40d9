package utils

import (
	"fmt"
	"time"

	"go-chat-server/internal/apperrors"
	"go-chat-server/pkg/config"

	"github.com/golang-jwt/jwt/v5"
)

// Claims bind a connection or request to a principal: the username is
// the token subject, the user id rides alongside.
type Claims struct {
	UserID uint `json:"user_id"`
	jwt.RegisteredClaims
}

type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// GenerateTokenPair issues an access and a refresh token for the user.
func GenerateTokenPair(userID uint, username string) (*TokenPair, error) {
	cfg := config.GlobalConfig.JWT

	access, err := signToken(userID, username, []byte(cfg.AccessSecret), cfg.AccessExpiration)
	if err != nil {
		return nil, fmt.Errorf("failed to sign access token: %w", err)
	}
	refresh, err := signToken(userID, username, []byte(cfg.RefreshSecret), cfg.RefreshExpiration)
	if err != nil {
		return nil, fmt.Errorf("failed to sign refresh token: %w", err)
	}

	return &TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}

func signToken(userID uint, username string, secret []byte, expiration time.Duration) (string, error) {
	claims := Claims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   username,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(expiration)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			NotBefore: jwt.NewNumericDate(time.Now()),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(secret)
}

// ParseAccessToken validates a bearer access token and returns its
// claims. Malformed, expired or mis-signed tokens yield InvalidToken.
func ParseAccessToken(tokenString string) (*Claims, error) {
	return parseToken(tokenString, []byte(config.GlobalConfig.JWT.AccessSecret))
}

// ParseRefreshToken validates a refresh token.
func ParseRefreshToken(tokenString string) (*Claims, error) {
	return parseToken(tokenString, []byte(config.GlobalConfig.JWT.RefreshSecret))
}

func parseToken(tokenString string, secret []byte) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return secret, nil
	})
	if err != nil {
		return nil, apperrors.InvalidToken()
	}
	if claims, ok := token.Claims.(*Claims); ok && token.Valid {
		return claims, nil
	}
	return nil, apperrors.InvalidToken()
}
