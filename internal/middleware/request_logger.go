package middleware

import (
	"fmt"
	"time"

	"github.com/dutyroster/schedule-backend/internal/utils"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// RequestIDHeader carries the per-request id in both directions
const RequestIDHeader = "X-Request-ID"

// RequestIDKey is the Gin context key of the request id
const RequestIDKey = "request_id"

// RequestID assigns every request an id, reusing a well-formed incoming one
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(RequestIDHeader)
		if _, err := uuid.Parse(id); err != nil {
			id = uuid.NewString()
		}

		c.Set(RequestIDKey, id)
		c.Header(RequestIDHeader, id)
		c.Next()
	}
}

// RequestLogger logs each completed request with its latency, caller device and identity
func RequestLogger(logger *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		query := c.Request.URL.RawQuery

		c.Next()

		device := utils.ParseUserAgent(utils.GetUserAgent(c))
		fields := logrus.Fields{
			"status":      c.Writer.Status(),
			"method":      c.Request.Method,
			"path":        path,
			"query":       query,
			"ip":          utils.GetRealIP(c),
			"latency_ms":  time.Since(start).Milliseconds(),
			"device_type": device.DeviceType,
			"os":          device.OS,
			"browser":     device.Browser,
		}
		if device.IsBot {
			fields["is_bot"] = true
		}
		if id, exists := c.Get(RequestIDKey); exists {
			fields["request_id"] = id
		}

		// Authorization presence only, never the token
		fields["has_auth"] = c.GetHeader("Authorization") != ""
		if userCtx, ok := GetUserContext(c); ok {
			fields["role"] = userCtx.Role
			if userCtx.GuestID > 0 {
				fields["guest_id"] = userCtx.GuestID
			}
		}

		entry := logger.WithFields(fields)

		if len(c.Errors) > 0 {
			for i, err := range c.Errors {
				entry = entry.WithField(fmt.Sprintf("error_%d", i), err.Error())
			}
			entry.Error("Request failed with errors")
			return
		}

		status := c.Writer.Status()
		switch {
		case status >= 500:
			entry.Error("Request completed with server error")
		case status >= 400:
			entry.Warn("Request completed with client error")
		default:
			entry.Info("Request completed successfully")
		}
	}
}
