package api

import (
	"net/http"
	"strings"

	"go-chat-server/internal/interfaces"
	"go-chat-server/internal/service"
	internalws "go-chat-server/internal/websocket"
	"go-chat-server/pkg/logger"
	"go-chat-server/pkg/utils"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// TODO: restrict to the deployed frontend origins.
		return true
	},
}

type WSHandler struct {
	hub         interfaces.ConnectionManager
	msgHandler  interfaces.MessageHandler
	chatService *service.ChatService
}

func NewWSHandler(hub interfaces.ConnectionManager, msgHandler interfaces.MessageHandler, chatService *service.ChatService) *WSHandler {
	return &WSHandler{
		hub:         hub,
		msgHandler:  msgHandler,
		chatService: chatService,
	}
}

// HandleConnection authenticates the handshake and hands the socket to
// the hub. The token rides in the Authorization header or, for browser
// clients, a "token" query parameter. Handshakes without a valid token
// are rejected with 401 before the upgrade.
func (h *WSHandler) HandleConnection(c *gin.Context) {
	token := bearerToken(c)
	if token == "" {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing token"})
		return
	}
	claims, err := utils.ParseAccessToken(token)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid or expired token"})
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		logger.L.Error("Failed to upgrade WebSocket connection", zap.Uint("userID", claims.UserID), zap.Error(err))
		return
	}
	logger.L.Info("WebSocket connection upgraded",
		zap.Uint("userID", claims.UserID),
		zap.String("username", claims.Subject))

	client := internalws.NewClient(claims.UserID, claims.Subject, conn, h.msgHandler, h.hub)
	h.hub.Register(client)
	if err := h.chatService.SubscribeUserTopics(claims.UserID); err != nil {
		logger.L.Warn("Failed to subscribe group topics", zap.Uint("userID", claims.UserID), zap.Error(err))
	}

	go client.WritePump()
	go client.ReadPump()
}

func bearerToken(c *gin.Context) string {
	if header := c.GetHeader("Authorization"); header != "" {
		parts := strings.SplitN(header, " ", 2)
		if len(parts) == 2 && parts[0] == "Bearer" {
			return parts[1]
		}
		return ""
	}
	return c.Query("token")
}
