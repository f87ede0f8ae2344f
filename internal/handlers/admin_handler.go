package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/dutyroster/schedule-backend/internal/middleware"
	"github.com/dutyroster/schedule-backend/internal/models"
	"github.com/dutyroster/schedule-backend/internal/services"
	"github.com/dutyroster/schedule-backend/internal/utils"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// AdminHandler handles admin authentication, the dashboard and membership approvals
type AdminHandler struct {
	adminAuthService *services.AdminAuthService
	guestService     *services.GuestService
	loginLimiter     *services.LoginLimiter
	logger           *logrus.Logger
}

// NewAdminHandler creates a new AdminHandler. A nil limiter leaves logins unthrottled.
func NewAdminHandler(
	adminAuthService *services.AdminAuthService,
	guestService *services.GuestService,
	loginLimiter *services.LoginLimiter,
	logger *logrus.Logger,
) *AdminHandler {
	return &AdminHandler{
		adminAuthService: adminAuthService,
		guestService:     guestService,
		loginLimiter:     loginLimiter,
		logger:           logger,
	}
}

// Login handles admin login requests
// @Summary Admin login
// @Description Authenticate the admin and return an access token
// @Tags Admin
// @Accept json
// @Produce json
// @Param loginRequest body models.AdminLoginRequest true "Login credentials"
// @Success 200 {object} models.AdminLoginResponse
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Failure 429 {object} ErrorResponse
// @Router /admin/login [post]
func (h *AdminHandler) Login(c *gin.Context) {
	var req models.AdminLoginRequest
	if !bindJSON(c, &req) {
		return
	}

	ctx := c.Request.Context()
	clientIP := utils.GetRealIP(c)

	if h.loginLimiter != nil {
		if err := h.loginLimiter.Check(ctx, clientIP); err != nil {
			var rateErr *services.RateLimitError
			if !errors.As(err, &rateErr) {
				respondError(c, h.logger, err)
				return
			}
			h.logger.WithField("ip", clientIP).Warn("Admin login throttled")
			retryAfter := int(time.Until(rateErr.RetryAfter).Seconds()) + 1
			c.Header("Retry-After", strconv.Itoa(retryAfter))
			c.JSON(http.StatusTooManyRequests, ErrorResponse{
				Error:   "rate_limit_exceeded",
				Message: rateErr.Message,
				Code:    "TOO_MANY_ATTEMPTS",
			})
			return
		}
	}

	response, err := h.adminAuthService.Login(ctx, &req)
	if err != nil {
		if h.loginLimiter != nil && errors.Is(err, services.ErrUnauthorized) {
			if recErr := h.loginLimiter.RecordFailure(ctx, clientIP); recErr != nil {
				h.logger.WithError(recErr).Warn("Failed to record login attempt")
			}
		}
		respondError(c, h.logger, err)
		return
	}

	if h.loginLimiter != nil {
		if err := h.loginLimiter.Reset(ctx, clientIP); err != nil {
			h.logger.WithError(err).Warn("Failed to reset login attempts")
		}
	}

	c.JSON(http.StatusOK, response)
}

// Logout revokes the presented admin token
// @Summary Admin logout
// @Tags Admin
// @Produce json
// @Security BearerAuth
// @Success 200 {object} SuccessResponse
// @Router /admin/logout [post]
func (h *AdminHandler) Logout(c *gin.Context) {
	userCtx, ok := middleware.GetUserContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized", Message: "User context not found", Code: "MISSING_USER_CONTEXT"})
		return
	}

	if err := h.adminAuthService.Logout(c.Request.Context(), userCtx.TokenID, userCtx.ExpiresAt); err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{Success: true, Message: "Logged out successfully"})
}

// GetStats handles GET /api/admin/stats
func (h *AdminHandler) GetStats(c *gin.Context) {
	stats, err := h.adminAuthService.Stats(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

// ListUsers handles GET /api/admin/users
func (h *AdminHandler) ListUsers(c *gin.Context) {
	guests, err := h.guestService.ListAll(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, guests)
}

// ListRequests handles GET /api/admin/requests
func (h *AdminHandler) ListRequests(c *gin.Context) {
	guests, err := h.guestService.ListPending(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, guests)
}

// DecideRequest handles POST /api/admin/requests/:id/:action (approve | reject)
func (h *AdminHandler) DecideRequest(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	status, err := h.guestService.Decide(c.Request.Context(), id, c.Param("action"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "status": status})
}
