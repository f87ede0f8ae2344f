package handlers

import (
	"context"
	"net/http"

	"github.com/dutyroster/schedule-backend/internal/models"
	"github.com/dutyroster/schedule-backend/internal/services"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// ContentHandler serves and edits Level → Mission → Step trees
type ContentHandler struct {
	treeService    *services.TreeService
	contentService *services.ContentService
	logger         *logrus.Logger
}

// NewContentHandler creates a new ContentHandler
func NewContentHandler(treeService *services.TreeService, contentService *services.ContentService, logger *logrus.Logger) *ContentHandler {
	return &ContentHandler{
		treeService:    treeService,
		contentService: contentService,
		logger:         logger,
	}
}

// GetProfileContent handles GET /api/profiles/:id/content
// @Summary Content tree of a profile
// @Tags Content
// @Produce json
// @Param id path int true "Profile ID"
// @Success 200 {array} models.Level
// @Router /profiles/{id}/content [get]
func (h *ContentHandler) GetProfileContent(c *gin.Context) {
	profileID, ok := pathID(c, "id")
	if !ok {
		return
	}

	tree, err := h.treeService.GetContentTree(c.Request.Context(), profileID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, tree)
}

// CreateLevel handles POST /api/levels
func (h *ContentHandler) CreateLevel(c *gin.Context) {
	var req models.CreateLevelRequest
	if !bindJSON(c, &req) {
		return
	}

	level, err := h.contentService.CreateLevel(c.Request.Context(), &req)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusCreated, level)
}

// CreateMission handles POST /api/missions
func (h *ContentHandler) CreateMission(c *gin.Context) {
	var req models.CreateMissionRequest
	if !bindJSON(c, &req) {
		return
	}

	mission, err := h.contentService.CreateMission(c.Request.Context(), &req)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusCreated, mission)
}

// CreateStep handles POST /api/steps
func (h *ContentHandler) CreateStep(c *gin.Context) {
	var req models.CreateStepRequest
	if !bindJSON(c, &req) {
		return
	}

	step, err := h.contentService.CreateStep(c.Request.Context(), &req)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusCreated, step)
}

// UpdateLevel handles PUT /api/levels/:id
func (h *ContentHandler) UpdateLevel(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req models.UpdateLevelRequest
	if !bindJSON(c, &req) {
		return
	}

	h.respondUpdate(c, h.contentService.UpdateLevel(c.Request.Context(), id, &req))
}

// UpdateMission handles PUT /api/missions/:id
func (h *ContentHandler) UpdateMission(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req models.UpdateMissionRequest
	if !bindJSON(c, &req) {
		return
	}

	h.respondUpdate(c, h.contentService.UpdateMission(c.Request.Context(), id, &req))
}

// UpdateStep handles PUT /api/steps/:id
func (h *ContentHandler) UpdateStep(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req models.UpdateStepRequest
	if !bindJSON(c, &req) {
		return
	}

	h.respondUpdate(c, h.contentService.UpdateStep(c.Request.Context(), id, &req))
}

func (h *ContentHandler) respondUpdate(c *gin.Context, err error) {
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, SuccessResponse{Success: true})
}

// DeleteLevel handles DELETE /api/levels/:id
func (h *ContentHandler) DeleteLevel(c *gin.Context) {
	h.delete(c, h.contentService.DeleteLevel)
}

// DeleteMission handles DELETE /api/missions/:id
func (h *ContentHandler) DeleteMission(c *gin.Context) {
	h.delete(c, h.contentService.DeleteMission)
}

// DeleteStep handles DELETE /api/steps/:id
func (h *ContentHandler) DeleteStep(c *gin.Context) {
	h.delete(c, h.contentService.DeleteStep)
}

func (h *ContentHandler) delete(c *gin.Context, del func(context.Context, int64) error) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	h.respondUpdate(c, del(c.Request.Context(), id))
}

// ReorderMissions handles POST /api/missions/reorder
// @Summary Persist mission display positions
// @Tags Content
// @Accept json
// @Produce json
// @Param request body models.ReorderRequest true "Positions"
// @Success 200 {object} SuccessResponse
// @Failure 400 {object} ErrorResponse
// @Router /missions/reorder [post]
func (h *ContentHandler) ReorderMissions(c *gin.Context) {
	h.reorder(c, models.ItemMission)
}

// ReorderSteps handles POST /api/steps/reorder
func (h *ContentHandler) ReorderSteps(c *gin.Context) {
	h.reorder(c, models.ItemStep)
}

func (h *ContentHandler) reorder(c *gin.Context, kind models.ItemKind) {
	var req models.ReorderRequest
	if !bindJSON(c, &req) {
		return
	}

	h.respondUpdate(c, h.contentService.Reorder(c.Request.Context(), kind, req.Updates))
}
