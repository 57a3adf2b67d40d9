package middleware

import (
	"net/http"
	"strings"

	"go-chat-server/internal/apperrors"
	"go-chat-server/pkg/utils"

	"github.com/gin-gonic/gin"
)

const (
	ContextUserID   = "userID"
	ContextUsername = "username"
)

// AuthMiddleware validates the bearer access token and stores the
// principal in the request context.
func AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			unauthorized(c)
			return
		}

		// Authorization: "Bearer <token>"
		parts := strings.SplitN(authHeader, " ", 2)
		if !(len(parts) == 2 && parts[0] == "Bearer") {
			unauthorized(c)
			return
		}

		claims, err := utils.ParseAccessToken(parts[1])
		if err != nil {
			unauthorized(c)
			return
		}

		c.Set(ContextUserID, claims.UserID)
		c.Set(ContextUsername, claims.Subject)
		c.Next()
	}
}

func unauthorized(c *gin.Context) {
	appErr := apperrors.InvalidToken()
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
		"code":    appErr.Code,
		"message": appErr.Message(Locale(c)),
	})
}

// Locale picks the response language from Accept-Language, defaulting
// to English. Only the primary subtag matters.
func Locale(c *gin.Context) string {
	header := c.GetHeader("Accept-Language")
	if header == "" {
		return apperrors.DefaultLocale
	}
	primary := strings.TrimSpace(strings.SplitN(header, ",", 2)[0])
	if idx := strings.IndexAny(primary, "-;"); idx > 0 {
		primary = primary[:idx]
	}
	if primary == "" {
		return apperrors.DefaultLocale
	}
	return strings.ToLower(primary)
}

// CurrentUserID reads the authenticated user id set by AuthMiddleware.
func CurrentUserID(c *gin.Context) uint {
	if v, ok := c.Get(ContextUserID); ok {
		if id, ok := v.(uint); ok {
			return id
		}
	}
	return 0
}
