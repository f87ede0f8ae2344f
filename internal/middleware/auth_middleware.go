package middleware

import (
	"net/http"
	"strings"
	"time"

	"github.com/dutyroster/schedule-backend/internal/session"
	"github.com/dutyroster/schedule-backend/pkg/jwt"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// UserContextKey is the key used to store the caller's identity in Gin context
const UserContextKey = "user"

// UserContext represents the authenticated caller
type UserContext struct {
	Role      jwt.Role  `json:"role"`
	Subject   string    `json:"subject"`
	GuestID   int64     `json:"guest_id,omitempty"`
	TokenID   string    `json:"-"`
	ExpiresAt time.Time `json:"-"`
}

// IsAdmin reports whether the caller holds an admin token
func (u UserContext) IsAdmin() bool {
	return u.Role == jwt.RoleAdmin
}

// Authenticator validates bearer tokens and rejects revoked ones
type Authenticator struct {
	jwtService *jwt.Service
	revoked    session.RevocationStore
	logger     *logrus.Logger
}

// NewAuthenticator creates a new Authenticator
func NewAuthenticator(jwtService *jwt.Service, revoked session.RevocationStore, logger *logrus.Logger) *Authenticator {
	return &Authenticator{jwtService: jwtService, revoked: revoked, logger: logger}
}

// Required rejects requests without a valid token
func (a *Authenticator) Required() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.GetHeader("Authorization") == "" {
			a.logFailure(c, "Missing authorization header", nil)
			abort(c, http.StatusUnauthorized, "unauthorized", "Authorization header is required", "MISSING_AUTH_HEADER")
			return
		}
		if a.authenticate(c) {
			c.Next()
		}
	}
}

// Optional attaches the caller's identity when a token is presented. A token that is
// presented but invalid is still rejected.
func (a *Authenticator) Optional() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.GetHeader("Authorization") == "" {
			c.Next()
			return
		}
		if a.authenticate(c) {
			c.Next()
		}
	}
}

// authenticate validates the bearer token and stores the user context; it aborts on failure
func (a *Authenticator) authenticate(c *gin.Context) bool {
	parts := strings.SplitN(c.GetHeader("Authorization"), " ", 2)
	if len(parts) != 2 || parts[0] != "Bearer" {
		a.logFailure(c, "Invalid auth format", nil)
		abort(c, http.StatusUnauthorized, "unauthorized", "Invalid authorization header format. Expected: Bearer <token>", "INVALID_AUTH_FORMAT")
		return false
	}

	tokenString := strings.TrimSpace(parts[1])
	if tokenString == "" {
		a.logFailure(c, "Empty token", nil)
		abort(c, http.StatusUnauthorized, "unauthorized", "Token cannot be empty", "INVALID_AUTH_FORMAT")
		return false
	}

	claims, err := a.jwtService.ValidateToken(tokenString)
	if err != nil {
		if jwt.IsTokenExpired(err) {
			a.logFailure(c, "Token expired", err)
			abort(c, http.StatusUnauthorized, "token_expired", "Access token has expired. Please sign in again.", "TOKEN_EXPIRED")
		} else {
			a.logFailure(c, "Invalid token", err)
			abort(c, http.StatusUnauthorized, "invalid_token", "Invalid access token", "INVALID_TOKEN")
		}
		return false
	}

	revoked, err := a.revoked.IsRevoked(c.Request.Context(), claims.ID)
	if err != nil {
		a.logger.WithError(err).Error("Failed to check token revocation")
		abort(c, http.StatusInternalServerError, "internal_error", "Failed to verify token", "REVOCATION_CHECK_FAILED")
		return false
	}
	if revoked {
		a.logFailure(c, "Revoked token", nil)
		abort(c, http.StatusUnauthorized, "invalid_token", "Access token has been revoked", "TOKEN_REVOKED")
		return false
	}

	c.Set(UserContextKey, UserContext{
		Role:      claims.Role,
		Subject:   claims.Subject,
		GuestID:   claims.GuestID,
		TokenID:   claims.ID,
		ExpiresAt: claims.ExpiresAt.Time,
	})
	return true
}

func (a *Authenticator) logFailure(c *gin.Context, reason string, err error) {
	entry := a.logger.WithFields(logrus.Fields{
		"path": c.Request.URL.Path,
		"ip":   c.ClientIP(),
	})
	if err != nil {
		entry = entry.WithError(err)
	}
	entry.Warn("Auth failed: " + reason)
}

// RequireRole creates a middleware that checks if the caller has one of the roles.
// Must be used after Required.
func RequireRole(roles ...jwt.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		userCtx, exists := GetUserContext(c)
		if !exists {
			abort(c, http.StatusUnauthorized, "unauthorized", "User context not found. Auth middleware may not be applied.", "MISSING_USER_CONTEXT")
			return
		}

		for _, role := range roles {
			if userCtx.Role == role {
				c.Next()
				return
			}
		}

		abort(c, http.StatusForbidden, "forbidden", "You don't have permission to access this resource", "INSUFFICIENT_PERMISSIONS")
	}
}

// GetUserContext retrieves the user context from Gin context
func GetUserContext(c *gin.Context) (UserContext, bool) {
	value, exists := c.Get(UserContextKey)
	if !exists {
		return UserContext{}, false
	}

	userCtx, ok := value.(UserContext)
	if !ok {
		return UserContext{}, false
	}

	return userCtx, true
}

func abort(c *gin.Context, status int, errType, message, code string) {
	c.AbortWithStatusJSON(status, gin.H{
		"error":   errType,
		"message": message,
		"code":    code,
	})
}
