package api

import (
	"net/http"
	"strconv"

	"go-chat-server/internal/middleware"
	"go-chat-server/internal/service"
	"go-chat-server/pkg/pagination"

	"github.com/gin-gonic/gin"
)

type MessageHandler struct {
	messageService *service.MessageService
}

func NewMessageHandler(messageService *service.MessageService) *MessageHandler {
	return &MessageHandler{messageService: messageService}
}

// Send posts a message into a chat (or to a receiver for first contact).
func (h *MessageHandler) Send(c *gin.Context) {
	var req service.SendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	view, err := h.messageService.Send(middleware.CurrentUserID(c), &req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, view)
}

// History pages a chat's messages in creation order.
func (h *MessageHandler) History(c *gin.Context) {
	chatID, err := chatIDParam(c)
	if err != nil {
		return
	}
	p := pagination.FromQuery(c.Query("page"), c.Query("size"))

	page, err := h.messageService.Page(chatID, middleware.CurrentUserID(c), p)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, page)
}

// Edit rewrites the caller's own message.
func (h *MessageHandler) Edit(c *gin.Context) {
	chatID, err := chatIDParam(c)
	if err != nil {
		return
	}
	messageID, err := strconv.ParseUint(c.Param("messageId"), 10, 32)
	if err != nil {
		badRequest(c, err)
		return
	}
	var req service.EditMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	view, err := h.messageService.Edit(chatID, uint(messageID), middleware.CurrentUserID(c), &req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

// Delete removes a batch of the caller's own messages.
func (h *MessageHandler) Delete(c *gin.Context) {
	chatID, err := chatIDParam(c)
	if err != nil {
		return
	}
	var req struct {
		MessageIDs []uint `json:"message_ids" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	if err := h.messageService.Delete(chatID, middleware.CurrentUserID(c), req.MessageIDs); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "messages deleted"})
}

// MarkRead flips unread markers and returns the remaining unread count.
func (h *MessageHandler) MarkRead(c *gin.Context) {
	chatID, err := chatIDParam(c)
	if err != nil {
		return
	}
	var req struct {
		MessageIDs []uint `json:"message_ids"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	unread, err := h.messageService.MarkRead(chatID, middleware.CurrentUserID(c), req.MessageIDs)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"chat_id": chatID, "unread_count": unread})
}
