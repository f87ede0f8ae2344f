package services

import (
	"context"
	"crypto/subtle"
	"time"

	"github.com/dutyroster/schedule-backend/internal/config"
	"github.com/dutyroster/schedule-backend/internal/database"
	"github.com/dutyroster/schedule-backend/internal/models"
	"github.com/dutyroster/schedule-backend/internal/session"
	"github.com/dutyroster/schedule-backend/pkg/jwt"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
)

// AdminAuthService handles admin authentication and the admin dashboard aggregates
type AdminAuthService struct {
	admin      config.AdminConfig
	jwtService *jwt.Service
	revoked    session.RevocationStore
	stats      *database.StatsRepository
	logger     *logrus.Logger
}

// NewAdminAuthService creates a new admin auth service
func NewAdminAuthService(
	admin config.AdminConfig,
	jwtService *jwt.Service,
	revoked session.RevocationStore,
	stats *database.StatsRepository,
	logger *logrus.Logger,
) *AdminAuthService {
	return &AdminAuthService{
		admin:      admin,
		jwtService: jwtService,
		revoked:    revoked,
		stats:      stats,
		logger:     logger,
	}
}

// Login checks the admin credentials and issues a token
func (s *AdminAuthService) Login(ctx context.Context, req *models.AdminLoginRequest) (*models.AdminLoginResponse, error) {
	if subtle.ConstantTimeCompare([]byte(req.ID), []byte(s.admin.ID)) != 1 || !s.passwordMatches(req.Password) {
		s.logger.WithField("admin_id", req.ID).Warn("Failed admin login")
		return nil, unauthorizedError("Invalid credentials")
	}

	token, claims, err := s.jwtService.GenerateAdminToken(s.admin.ID)
	if err != nil {
		return nil, err
	}

	s.logger.WithField("admin_id", s.admin.ID).Info("Admin logged in")
	return &models.AdminLoginResponse{
		Success:   true,
		Token:     token,
		ExpiresAt: claims.ExpiresAt.Unix(),
	}, nil
}

func (s *AdminAuthService) passwordMatches(password string) bool {
	if s.admin.PasswordHash != "" {
		return bcrypt.CompareHashAndPassword([]byte(s.admin.PasswordHash), []byte(password)) == nil
	}
	return s.admin.Password != "" && subtle.ConstantTimeCompare([]byte(password), []byte(s.admin.Password)) == 1
}

// Logout revokes the presented token until it expires
func (s *AdminAuthService) Logout(ctx context.Context, tokenID string, expiresAt time.Time) error {
	if tokenID == "" {
		return validationError("token has no id")
	}
	return s.revoked.Revoke(ctx, tokenID, expiresAt)
}

// Stats returns the admin dashboard totals
func (s *AdminAuthService) Stats(ctx context.Context) (*models.AdminStats, error) {
	guests, steps, completions, err := s.stats.Totals(ctx)
	if err != nil {
		return nil, err
	}

	distribution, err := s.stats.UnitDistribution(ctx)
	if err != nil {
		return nil, err
	}

	return &models.AdminStats{
		Guests:           guests,
		Steps:            steps,
		Completions:      completions,
		UnitDistribution: distribution,
	}, nil
}
