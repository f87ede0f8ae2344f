package handlers

import (
	"net/http"

	"github.com/dutyroster/schedule-backend/internal/models"
	"github.com/dutyroster/schedule-backend/internal/services"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// UnitHandler handles unit and profile HTTP requests
type UnitHandler struct {
	unitService *services.UnitService
	logger      *logrus.Logger
}

// NewUnitHandler creates a new UnitHandler
func NewUnitHandler(unitService *services.UnitService, logger *logrus.Logger) *UnitHandler {
	return &UnitHandler{unitService: unitService, logger: logger}
}

// ListUnits handles GET /api/units
func (h *UnitHandler) ListUnits(c *gin.Context) {
	units, err := h.unitService.ListUnits(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, units)
}

// SearchUnits handles GET /api/units/search?q=
// @Summary Search units by title
// @Description Terms shorter than two characters return an empty list
// @Tags Units
// @Produce json
// @Param q query string true "Search term"
// @Success 200 {array} models.Unit
// @Router /units/search [get]
func (h *UnitHandler) SearchUnits(c *gin.Context) {
	units, err := h.unitService.SearchUnits(c.Request.Context(), c.Query("q"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, units)
}

// CreateUnit handles POST /api/units
func (h *UnitHandler) CreateUnit(c *gin.Context) {
	var req models.CreateUnitRequest
	if !bindJSON(c, &req) {
		return
	}

	unit, err := h.unitService.CreateUnit(c.Request.Context(), &req)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, unit)
}

// UpdateUnit handles PUT /api/units/:id
func (h *UnitHandler) UpdateUnit(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req models.UpdateUnitRequest
	if !bindJSON(c, &req) {
		return
	}

	if err := h.unitService.UpdateUnit(c.Request.Context(), id, &req); err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, SuccessResponse{Success: true})
}

// DeleteUnit handles DELETE /api/units/:id
func (h *UnitHandler) DeleteUnit(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	if err := h.unitService.DeleteUnit(c.Request.Context(), id); err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, SuccessResponse{Success: true})
}

// ListProfiles handles GET /api/profiles?unit_id=
func (h *UnitHandler) ListProfiles(c *gin.Context) {
	unitID, ok := queryID(c, "unit_id")
	if !ok {
		return
	}

	profiles, err := h.unitService.ListProfiles(c.Request.Context(), unitID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, profiles)
}

// CreateProfile handles POST /api/profiles
func (h *UnitHandler) CreateProfile(c *gin.Context) {
	var req models.CreateProfileRequest
	if !bindJSON(c, &req) {
		return
	}

	profile, err := h.unitService.CreateProfile(c.Request.Context(), &req)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, profile)
}

// UpdateProfile handles PUT /api/profiles/:id
func (h *UnitHandler) UpdateProfile(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req models.UpdateProfileRequest
	if !bindJSON(c, &req) {
		return
	}

	if err := h.unitService.UpdateProfile(c.Request.Context(), id, &req); err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, SuccessResponse{Success: true})
}

// DeleteProfile handles DELETE /api/profiles/:id
func (h *UnitHandler) DeleteProfile(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	if err := h.unitService.DeleteProfile(c.Request.Context(), id); err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, SuccessResponse{Success: true})
}
