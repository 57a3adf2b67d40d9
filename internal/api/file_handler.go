package api

import (
	"io"
	"net/http"

	"go-chat-server/internal/middleware"
	"go-chat-server/internal/service"
	"go-chat-server/pkg/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// 50MB upload ceiling, matching the frontend's chunking threshold.
const maxUploadSize = 50 << 20

type FileHandler struct {
	fileService *service.FileService
}

func NewFileHandler(fileService *service.FileService) *FileHandler {
	return &FileHandler{fileService: fileService}
}

// Upload stores a blob and returns the hash a message can reference.
func (h *FileHandler) Upload(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		logger.L.Warn("Failed to get file from request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing or invalid file"})
		return
	}
	if fileHeader.Size > maxUploadSize {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file too large"})
		return
	}

	f, err := fileHeader.Open()
	if err != nil {
		respondError(c, err)
		return
	}
	defer f.Close()
	data, err := io.ReadAll(f)
	if err != nil {
		respondError(c, err)
		return
	}

	view, err := h.fileService.Upload(c.Request.Context(), middleware.CurrentUserID(c), fileHeader.Filename, data)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, view)
}

// Download streams back the blob behind a hash.
func (h *FileHandler) Download(c *gin.Context) {
	hash := c.Param("hash")
	asset, data, err := h.fileService.Download(c.Request.Context(), hash)
	if err != nil {
		respondError(c, err)
		return
	}

	c.Header("Content-Disposition", `attachment; filename="`+asset.OriginalName+`"`)
	c.Data(http.StatusOK, "application/octet-stream", data)
}
