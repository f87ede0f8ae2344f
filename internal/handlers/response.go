package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/dutyroster/schedule-backend/internal/middleware"
	"github.com/dutyroster/schedule-backend/internal/services"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

// SuccessResponse represents a plain success response
type SuccessResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}

// respondError maps a service error to its HTTP status. Unknown errors are logged and
// reported as 500 with the underlying message.
func respondError(c *gin.Context, logger *logrus.Logger, err error) {
	var svcErr *services.Error
	message := err.Error()
	if errors.As(err, &svcErr) {
		message = svcErr.Message
	}

	switch {
	case errors.Is(err, services.ErrValidation):
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "validation_error", Message: message, Code: "VALIDATION_FAILED"})
	case errors.Is(err, services.ErrNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "not_found", Message: message, Code: "NOT_FOUND"})
	case errors.Is(err, services.ErrUnauthorized):
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized", Message: message, Code: "UNAUTHORIZED"})
	default:
		logger.WithFields(logrus.Fields{
			"path":  c.Request.URL.Path,
			"error": err.Error(),
		}).Error("Request failed")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal_error", Message: message, Code: "INTERNAL_ERROR"})
	}
}

func badRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid_request", Message: message, Code: "INVALID_REQUEST"})
}

// bindJSON binds the body and writes a 400 on failure
func bindJSON(c *gin.Context, dest interface{}) bool {
	if err := c.ShouldBindJSON(dest); err != nil {
		badRequest(c, "Invalid request body: "+err.Error())
		return false
	}
	return true
}

// pathID parses a positive integer path parameter, writing a 400 when it is not one
func pathID(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		badRequest(c, "Invalid "+name)
		return 0, false
	}
	return id, true
}

// queryID parses an optional positive integer query parameter
func queryID(c *gin.Context, name string) (*int64, bool) {
	raw := c.Query(name)
	if raw == "" {
		return nil, true
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		badRequest(c, "Invalid "+name)
		return nil, false
	}
	return &id, true
}

// guestAccess decides whether the caller may act for a guest
type guestAccess struct {
	enforce bool
}

// allow reports whether the caller may read or write the guest's data. With enforcement off
// every caller may; otherwise the caller needs an admin token or that guest's own token.
func (g guestAccess) allow(c *gin.Context, guestID int64) bool {
	if !g.enforce {
		return true
	}

	userCtx, ok := middleware.GetUserContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{
			Error:   "unauthorized",
			Message: "A guest or admin token is required",
			Code:    "MISSING_AUTH_HEADER",
		})
		return false
	}
	if userCtx.IsAdmin() || userCtx.GuestID == guestID {
		return true
	}

	c.JSON(http.StatusForbidden, ErrorResponse{
		Error:   "forbidden",
		Message: "Token does not belong to this guest",
		Code:    "GUEST_MISMATCH",
	})
	return false
}
