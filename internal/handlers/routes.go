package handlers

import (
	"github.com/dutyroster/schedule-backend/internal/middleware"
	"github.com/dutyroster/schedule-backend/pkg/jwt"
	"github.com/gin-gonic/gin"
)

// Handlers groups every HTTP handler of the API
type Handlers struct {
	Schedule *ScheduleHandler
	Progress *ProgressHandler
	Content  *ContentHandler
	Unit     *UnitHandler
	Guest    *GuestHandler
	Admin    *AdminHandler
	Upload   *UploadHandler
}

// RegisterRoutes mounts the API on the given group.
// Reads and guest actions accept an optional token; writes to shared data need the admin role.
func RegisterRoutes(api *gin.RouterGroup, h *Handlers, auth *middleware.Authenticator) {
	public := api.Group("")
	public.Use(auth.Optional())
	{
		public.GET("/units", h.Unit.ListUnits)
		public.GET("/units/search", h.Unit.SearchUnits)
		public.GET("/profiles", h.Unit.ListProfiles)
		public.GET("/profiles/:id/content", h.Content.GetProfileContent)

		public.GET("/schedule/today", h.Schedule.GetToday)
		public.GET("/assignments", h.Schedule.ListAssignments)

		public.GET("/progress/:guestId", h.Progress.GetProgress)
		public.GET("/progress/:guestId/summary", h.Progress.GetSummary)
		public.POST("/progress", h.Progress.SetCompletion)

		public.POST("/guests", h.Guest.Register)
		public.POST("/guests/join", h.Guest.JoinUnit)
		public.GET("/guests/:id", h.Guest.Get)
		public.DELETE("/guests/:id", h.Guest.Delete)

		public.POST("/admin/login", h.Admin.Login)
	}

	admin := api.Group("")
	admin.Use(auth.Required(), middleware.RequireRole(jwt.RoleAdmin))
	{
		admin.POST("/admin/logout", h.Admin.Logout)
		admin.GET("/admin/stats", h.Admin.GetStats)
		admin.GET("/admin/users", h.Admin.ListUsers)
		admin.GET("/admin/requests", h.Admin.ListRequests)
		admin.POST("/admin/requests/:id/:action", h.Admin.DecideRequest)

		admin.POST("/assignments", h.Schedule.Assign)
		admin.DELETE("/assignments", h.Schedule.ClearAssignment)

		admin.POST("/units", h.Unit.CreateUnit)
		admin.PUT("/units/:id", h.Unit.UpdateUnit)
		admin.DELETE("/units/:id", h.Unit.DeleteUnit)

		admin.POST("/profiles", h.Unit.CreateProfile)
		admin.PUT("/profiles/:id", h.Unit.UpdateProfile)
		admin.DELETE("/profiles/:id", h.Unit.DeleteProfile)

		admin.POST("/levels", h.Content.CreateLevel)
		admin.PUT("/levels/:id", h.Content.UpdateLevel)
		admin.DELETE("/levels/:id", h.Content.DeleteLevel)

		admin.POST("/missions", h.Content.CreateMission)
		admin.POST("/missions/reorder", h.Content.ReorderMissions)
		admin.PUT("/missions/:id", h.Content.UpdateMission)
		admin.DELETE("/missions/:id", h.Content.DeleteMission)

		admin.POST("/steps", h.Content.CreateStep)
		admin.POST("/steps/reorder", h.Content.ReorderSteps)
		admin.PUT("/steps/:id", h.Content.UpdateStep)
		admin.DELETE("/steps/:id", h.Content.DeleteStep)

		admin.POST("/upload", h.Upload.Upload)
	}
}
