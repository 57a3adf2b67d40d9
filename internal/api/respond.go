package api

import (
	"errors"
	"net/http"

	"go-chat-server/internal/apperrors"
	"go-chat-server/internal/middleware"
	"go-chat-server/pkg/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// respondError maps a service error onto the wire contract: domain
// errors carry their numeric code and localized message, everything
// else is an opaque 500.
func respondError(c *gin.Context, err error) {
	var appErr *apperrors.Error
	if errors.As(err, &appErr) {
		c.JSON(statusFor(appErr.Code), gin.H{
			"code":    appErr.Code,
			"message": appErr.Message(middleware.Locale(c)),
		})
		return
	}
	logger.L.Error("Unhandled error", zap.String("path", c.FullPath()), zap.Error(err))
	c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
}

func statusFor(code apperrors.Code) int {
	switch code {
	case apperrors.CodeInvalidTelegramData, apperrors.CodeInvalidToken:
		return http.StatusUnauthorized
	case apperrors.CodeChatAccessDenied, apperrors.CodeMessageAccessDenied, apperrors.CodeChatDeletePermission:
		return http.StatusForbidden
	case apperrors.CodeMessageChatMismatch:
		return http.StatusBadRequest
	case apperrors.CodeTelegramIDNotFound, apperrors.CodeUserNotFound, apperrors.CodeChatNotFound,
		apperrors.CodeChatMemberNotFound, apperrors.CodeUsernameNotFound, apperrors.CodeMessageNotFound,
		apperrors.CodeFileHashNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

func badRequest(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body: " + err.Error()})
}
