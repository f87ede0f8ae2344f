package handlers

import (
	"net/http"

	"github.com/dutyroster/schedule-backend/internal/models"
	"github.com/dutyroster/schedule-backend/internal/services"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// GuestHandler handles guest sign-in and unit membership requests
type GuestHandler struct {
	guestService *services.GuestService
	access       guestAccess
	logger       *logrus.Logger
}

// NewGuestHandler creates a new GuestHandler
func NewGuestHandler(guestService *services.GuestService, enforceGuestIdentity bool, logger *logrus.Logger) *GuestHandler {
	return &GuestHandler{
		guestService: guestService,
		access:       guestAccess{enforce: enforceGuestIdentity},
		logger:       logger,
	}
}

// Register handles POST /api/guests
// @Summary Register a guest or return the existing one
// @Description Guests are identified by trimmed first and last name
// @Tags Guests
// @Accept json
// @Produce json
// @Param request body models.RegisterGuestRequest true "Names"
// @Success 200 {object} models.RegisterGuestResponse
// @Failure 400 {object} ErrorResponse
// @Router /guests [post]
func (h *GuestHandler) Register(c *gin.Context) {
	var req models.RegisterGuestRequest
	if !bindJSON(c, &req) {
		return
	}

	guest, err := h.guestService.Register(c.Request.Context(), &req)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, guest)
}

// Get handles GET /api/guests/:id
func (h *GuestHandler) Get(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok || !h.access.allow(c, id) {
		return
	}

	guest, err := h.guestService.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, guest)
}

// Delete handles DELETE /api/guests/:id
func (h *GuestHandler) Delete(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok || !h.access.allow(c, id) {
		return
	}

	if err := h.guestService.Delete(c.Request.Context(), id); err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{Success: true})
}

// JoinUnit handles POST /api/guests/join
func (h *GuestHandler) JoinUnit(c *gin.Context) {
	var req models.JoinUnitRequest
	if !bindJSON(c, &req) {
		return
	}
	if !h.access.allow(c, req.GuestID) {
		return
	}

	if err := h.guestService.JoinUnit(c.Request.Context(), &req); err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "status": models.GuestPendingApproval})
}
