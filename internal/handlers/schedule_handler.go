package handlers

import (
	"net/http"
	"strconv"

	"github.com/dutyroster/schedule-backend/internal/models"
	"github.com/dutyroster/schedule-backend/internal/services"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// ScheduleHandler serves today's duty schedule and the duty roster
type ScheduleHandler struct {
	treeService       *services.TreeService
	assignmentService *services.AssignmentService
	access            guestAccess
	logger            *logrus.Logger
}

// NewScheduleHandler creates a new ScheduleHandler
func NewScheduleHandler(
	treeService *services.TreeService,
	assignmentService *services.AssignmentService,
	enforceGuestIdentity bool,
	logger *logrus.Logger,
) *ScheduleHandler {
	return &ScheduleHandler{
		treeService:       treeService,
		assignmentService: assignmentService,
		access:            guestAccess{enforce: enforceGuestIdentity},
		logger:            logger,
	}
}

// GetToday handles GET /api/schedule/today?guest_id=&profile_id=
// @Summary Today's duty schedule
// @Description Who is on duty today in the guest's unit, and the schedule tree
// @Tags Schedule
// @Produce json
// @Param guest_id query int true "Guest ID"
// @Param profile_id query int false "Restrict the schedule to one profile"
// @Success 200 {object} models.TodaySchedule
// @Failure 400 {object} ErrorResponse
// @Router /schedule/today [get]
func (h *ScheduleHandler) GetToday(c *gin.Context) {
	guestID, err := strconv.ParseInt(c.Query("guest_id"), 10, 64)
	if err != nil || guestID <= 0 {
		badRequest(c, "Missing guest_id")
		return
	}
	profileID, ok := queryID(c, "profile_id")
	if !ok {
		return
	}
	if !h.access.allow(c, guestID) {
		return
	}

	schedule, err := h.treeService.GetTodaySchedule(c.Request.Context(), guestID, profileID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, schedule)
}

// ListAssignments handles GET /api/assignments?unit_id=&start=&end=
// @Summary List duty assignments
// @Tags Assignments
// @Produce json
// @Param unit_id query int true "Unit ID"
// @Param start query string false "First date (YYYY-MM-DD)"
// @Param end query string false "Last date (YYYY-MM-DD)"
// @Success 200 {array} models.AssignmentWithProgress
// @Failure 400 {object} ErrorResponse
// @Router /assignments [get]
func (h *ScheduleHandler) ListAssignments(c *gin.Context) {
	unitID, ok := queryID(c, "unit_id")
	if !ok {
		return
	}
	if unitID == nil {
		badRequest(c, "Missing unit_id")
		return
	}

	rows, err := h.assignmentService.List(c.Request.Context(), models.AssignmentFilter{
		UnitID: *unitID,
		Start:  c.Query("start"),
		End:    c.Query("end"),
	})
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, rows)
}

// Assign handles POST /api/assignments
// @Summary Assign or replace the duty guest for a unit and date
// @Tags Assignments
// @Accept json
// @Produce json
// @Param request body models.AssignRequest true "Assignment"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} ErrorResponse
// @Router /assignments [post]
func (h *ScheduleHandler) Assign(c *gin.Context) {
	var req models.AssignRequest
	if !bindJSON(c, &req) {
		return
	}

	id, err := h.assignmentService.Assign(c.Request.Context(), &req)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"id": id, "success": true})
}

// ClearAssignment handles DELETE /api/assignments?unit_id=&date=
func (h *ScheduleHandler) ClearAssignment(c *gin.Context) {
	unitID, ok := queryID(c, "unit_id")
	if !ok {
		return
	}
	date := c.Query("date")
	if unitID == nil || date == "" {
		badRequest(c, "Missing unit_id or date")
		return
	}

	if err := h.assignmentService.Clear(c.Request.Context(), *unitID, date); err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{Success: true})
}
