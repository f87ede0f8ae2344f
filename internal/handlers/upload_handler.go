package handlers

import (
	"net/http"

	"github.com/dutyroster/schedule-backend/internal/models"
	"github.com/dutyroster/schedule-backend/internal/services"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// UploadHandler stores images sent by the admin editor
type UploadHandler struct {
	uploadService *services.UploadService
	logger        *logrus.Logger
}

// NewUploadHandler creates a new UploadHandler
func NewUploadHandler(uploadService *services.UploadService, logger *logrus.Logger) *UploadHandler {
	return &UploadHandler{uploadService: uploadService, logger: logger}
}

// Upload handles POST /api/upload
func (h *UploadHandler) Upload(c *gin.Context) {
	var req models.UploadRequest
	if !bindJSON(c, &req) {
		return
	}

	url, err := h.uploadService.SaveDataURL(c.Request.Context(), req.Image, req.Filename)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"url": url})
}
