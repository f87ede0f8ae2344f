package handlers

import (
	"net/http"

	"github.com/dutyroster/schedule-backend/internal/models"
	"github.com/dutyroster/schedule-backend/internal/services"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// ProgressHandler serves completion overlays and the completion toggle
type ProgressHandler struct {
	progressService *services.ProgressService
	access          guestAccess
	logger          *logrus.Logger
}

// NewProgressHandler creates a new ProgressHandler
func NewProgressHandler(progressService *services.ProgressService, enforceGuestIdentity bool, logger *logrus.Logger) *ProgressHandler {
	return &ProgressHandler{
		progressService: progressService,
		access:          guestAccess{enforce: enforceGuestIdentity},
		logger:          logger,
	}
}

// GetProgress handles GET /api/progress/:guestId?date=
// @Summary Completed steps and missions of a guest
// @Description date defaults to today; date=all returns every date
// @Tags Progress
// @Produce json
// @Param guestId path int true "Guest ID"
// @Param date query string false "YYYY-MM-DD or all"
// @Success 200 {object} models.ProgressResponse
// @Failure 400 {object} ErrorResponse
// @Router /progress/{guestId} [get]
func (h *ProgressHandler) GetProgress(c *gin.Context) {
	guestID, ok := pathID(c, "guestId")
	if !ok || !h.access.allow(c, guestID) {
		return
	}

	progress, err := h.progressService.GetProgress(c.Request.Context(), guestID, c.Query("date"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, progress)
}

// GetSummary handles GET /api/progress/:guestId/summary?date=&profile_id=
func (h *ProgressHandler) GetSummary(c *gin.Context) {
	guestID, ok := pathID(c, "guestId")
	if !ok {
		return
	}
	profileID, ok := queryID(c, "profile_id")
	if !ok || !h.access.allow(c, guestID) {
		return
	}

	summary, err := h.progressService.Summary(c.Request.Context(), guestID, c.Query("date"), profileID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, summary)
}

// SetCompletion handles POST /api/progress
// @Summary Mark a step or mission complete or incomplete
// @Tags Progress
// @Accept json
// @Produce json
// @Param request body models.SetCompletionRequest true "Completion"
// @Success 200 {object} SuccessResponse
// @Failure 400 {object} ErrorResponse
// @Router /progress [post]
func (h *ProgressHandler) SetCompletion(c *gin.Context) {
	var req models.SetCompletionRequest
	if !bindJSON(c, &req) {
		return
	}
	if !h.access.allow(c, req.GuestID) {
		return
	}

	if err := h.progressService.SetCompletion(c.Request.Context(), &req); err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{Success: true})
}
