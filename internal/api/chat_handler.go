package api

import (
	"net/http"
	"strconv"

	"go-chat-server/internal/dto"
	"go-chat-server/internal/middleware"
	"go-chat-server/internal/model"
	"go-chat-server/internal/service"
	"go-chat-server/pkg/pagination"

	"github.com/gin-gonic/gin"
)

type ChatHandler struct {
	chatService *service.ChatService
}

func NewChatHandler(chatService *service.ChatService) *ChatHandler {
	return &ChatHandler{chatService: chatService}
}

// CreatePrivate resolves (or creates) the private chat with another
// user.
func (h *ChatHandler) CreatePrivate(c *gin.Context) {
	var req struct {
		UserID uint `json:"user_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	chat, err := h.chatService.GetOrCreatePrivateChat(middleware.CurrentUserID(c), req.UserID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.ToChatSummary(chat))
}

// CreateGroup creates a group chat with the caller as OWNER.
func (h *ChatHandler) CreateGroup(c *gin.Context) {
	var req service.CreateGroupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	summary, err := h.chatService.CreateGroupChat(middleware.CurrentUserID(c), &req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, summary)
}

// AddMembers adds users to a group, OWNER only.
func (h *ChatHandler) AddMembers(c *gin.Context) {
	chatID, err := chatIDParam(c)
	if err != nil {
		return
	}
	var req struct {
		MemberIDs []uint `json:"member_ids" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	if err := h.chatService.AddMembers(chatID, middleware.CurrentUserID(c), req.MemberIDs); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "members added"})
}

// List pages the caller's chats; ?type=PRIVATE|GROUP narrows it.
func (h *ChatHandler) List(c *gin.Context) {
	p := pagination.FromQuery(c.Query("page"), c.Query("size"))
	chatType := model.ChatType(c.Query("type"))

	page, err := h.chatService.ChatList(middleware.CurrentUserID(c), chatType, p)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, page)
}

// GroupDetails returns the group roster, members only.
func (h *ChatHandler) GroupDetails(c *gin.Context) {
	chatID, err := chatIDParam(c)
	if err != nil {
		return
	}
	details, err := h.chatService.GroupDetails(chatID, middleware.CurrentUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, details)
}

// Delete removes a chat; ?for_everyone=true deletes it for all members.
func (h *ChatHandler) Delete(c *gin.Context) {
	chatID, err := chatIDParam(c)
	if err != nil {
		return
	}
	forEveryone := c.Query("for_everyone") == "true"

	if err := h.chatService.DeleteChat(chatID, middleware.CurrentUserID(c), forEveryone); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "chat deleted"})
}

func chatIDParam(c *gin.Context) (uint, error) {
	chatID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		badRequest(c, err)
		return 0, err
	}
	return uint(chatID), nil
}
