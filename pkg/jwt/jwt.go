package jwt

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Role identifies who a token was issued to
type Role string

const (
	RoleAdmin Role = "admin"
	RoleGuest Role = "guest"
)

const issuer = "duty-schedule"

// Claims represents the JWT claims structure.
// Admin tokens carry the admin id as subject; guest tokens carry GuestID.
type Claims struct {
	Role    Role  `json:"role"`
	GuestID int64 `json:"guest_id,omitempty"`
	jwt.RegisteredClaims
}

// IsAdmin reports whether the token was issued to the administrator
func (c *Claims) IsAdmin() bool {
	return c.Role == RoleAdmin
}

// Service handles JWT operations
type Service struct {
	secret string
	expiry time.Duration
}

// NewService creates a new JWT service
func NewService(secret string, expiry time.Duration) *Service {
	return &Service{
		secret: secret,
		expiry: expiry,
	}
}

// GenerateAdminToken issues an admin token; the returned claims carry its id and expiry
func (s *Service) GenerateAdminToken(adminID string) (string, *Claims, error) {
	return s.generate(Claims{Role: RoleAdmin}, adminID)
}

// GenerateGuestToken issues a token bound to one guest
func (s *Service) GenerateGuestToken(guestID int64) (string, *Claims, error) {
	return s.generate(Claims{Role: RoleGuest, GuestID: guestID}, strconv.FormatInt(guestID, 10))
}

func (s *Service) generate(claims Claims, subject string) (string, *Claims, error) {
	now := time.Now()
	claims.RegisteredClaims = jwt.RegisteredClaims{
		ID:        uuid.NewString(),
		ExpiresAt: jwt.NewNumericDate(now.Add(s.expiry)),
		IssuedAt:  jwt.NewNumericDate(now),
		NotBefore: jwt.NewNumericDate(now),
		Issuer:    issuer,
		Subject:   subject,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString([]byte(s.secret))
	if err != nil {
		return "", nil, fmt.Errorf("failed to sign %s token: %w", claims.Role, err)
	}

	return tokenString, &claims, nil
}

// ValidateToken validates and parses a token
func (s *Service) ValidateToken(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		// Verify signing method
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.secret), nil
	}, jwt.WithIssuer(issuer))

	if err != nil {
		return nil, fmt.Errorf("failed to parse token: %w", err)
	}

	if !token.Valid {
		return nil, fmt.Errorf("invalid token")
	}

	claims, ok := token.Claims.(*Claims)
	if !ok {
		return nil, fmt.Errorf("invalid token claims")
	}

	switch claims.Role {
	case RoleAdmin:
	case RoleGuest:
		if claims.GuestID <= 0 {
			return nil, fmt.Errorf("guest token without guest id")
		}
	default:
		return nil, fmt.Errorf("invalid token role: %q", claims.Role)
	}

	return claims, nil
}

// IsTokenExpired reports whether a ValidateToken error was caused by an expired token
func IsTokenExpired(err error) bool {
	return errors.Is(err, jwt.ErrTokenExpired)
}

// GetTokenExpiry returns the expiry time of a token without verifying it
func (s *Service) GetTokenExpiry(tokenString string) (time.Time, error) {
	token, _, err := jwt.NewParser().ParseUnverified(tokenString, &Claims{})
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to parse token: %w", err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || claims.ExpiresAt == nil {
		return time.Time{}, fmt.Errorf("token has no expiry time")
	}

	return claims.ExpiresAt.Time, nil
}
