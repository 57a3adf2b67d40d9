package api

import (
	"io"
	"net/http"
	"strconv"

	"go-chat-server/internal/middleware"
	"go-chat-server/internal/service"
	"go-chat-server/pkg/pagination"

	"github.com/gin-gonic/gin"
)

type UserHandler struct {
	userService *service.UserService
}

func NewUserHandler(userService *service.UserService) *UserHandler {
	return &UserHandler{userService: userService}
}

// Me returns the caller's own profile.
func (h *UserHandler) Me(c *gin.Context) {
	view, err := h.userService.Me(middleware.CurrentUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

// UpdateProfile patches first name, username and bio.
func (h *UserHandler) UpdateProfile(c *gin.Context) {
	var req service.UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	view, err := h.userService.UpdateProfile(middleware.CurrentUserID(c), &req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

// UpdateAvatar accepts a multipart "file" part as the new picture.
func (h *UserHandler) UpdateAvatar(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		badRequest(c, err)
		return
	}
	f, err := fileHeader.Open()
	if err != nil {
		badRequest(c, err)
		return
	}
	defer f.Close()
	data, err := io.ReadAll(f)
	if err != nil {
		respondError(c, err)
		return
	}

	view, err := h.userService.UpdateAvatar(c.Request.Context(), middleware.CurrentUserID(c), fileHeader.Filename, data)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

// Delete soft-deletes the caller's account.
func (h *UserHandler) Delete(c *gin.Context) {
	if err := h.userService.Delete(middleware.CurrentUserID(c)); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "user deleted"})
}

// Search pages users by username fragment.
func (h *UserHandler) Search(c *gin.Context) {
	p := pagination.FromQuery(c.Query("page"), c.Query("size"))
	page, err := h.userService.Search(c.Query("search"), p)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, page)
}

// Status reports another user's presence.
func (h *UserHandler) Status(c *gin.Context) {
	userID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		badRequest(c, err)
		return
	}
	view, err := h.userService.StatusOf(uint(userID))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}
