package services

import (
	"context"
	"database/sql"
	"errors"

	"github.com/dutyroster/schedule-backend/internal/database"
	"github.com/dutyroster/schedule-backend/internal/models"
	"github.com/dutyroster/schedule-backend/pkg/jwt"
	"github.com/dutyroster/schedule-backend/pkg/validator"
	"github.com/sirupsen/logrus"
)

// GuestService handles guest registration and unit membership
type GuestService struct {
	guests     *database.GuestRepository
	units      *database.UnitRepository
	jwtService *jwt.Service
	validator  *validator.ScheduleValidator
	logger     *logrus.Logger
}

// NewGuestService creates a new GuestService
func NewGuestService(
	guests *database.GuestRepository,
	units *database.UnitRepository,
	jwtService *jwt.Service,
	logger *logrus.Logger,
) *GuestService {
	return &GuestService{
		guests:     guests,
		units:      units,
		jwtService: jwtService,
		validator:  validator.NewScheduleValidator(),
		logger:     logger,
	}
}

// Register returns the guest with the given (trimmed) name, creating it on first use,
// together with a token bound to that guest.
func (s *GuestService) Register(ctx context.Context, req *models.RegisterGuestRequest) (*models.RegisterGuestResponse, error) {
	first, err := s.validator.ValidateName(req.FirstName)
	if err != nil {
		return nil, validationError("first_name: %v", err)
	}
	last, err := s.validator.ValidateName(req.LastName)
	if err != nil {
		return nil, validationError("last_name: %v", err)
	}

	guest, err := s.guests.Register(ctx, first, last)
	if err != nil {
		return nil, err
	}

	token, _, err := s.jwtService.GenerateGuestToken(guest.ID)
	if err != nil {
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{"guest_id": guest.ID, "status": guest.Status}).Info("Guest signed in")
	return &models.RegisterGuestResponse{Guest: *guest, Token: token}, nil
}

// Get returns a guest with its unit details
func (s *GuestService) Get(ctx context.Context, id int64) (*models.GuestWithUnit, error) {
	guest, err := s.guests.GetWithUnit(ctx, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, notFoundError("Guest not found")
	}
	return guest, err
}

// Delete removes a guest and its history
func (s *GuestService) Delete(ctx context.Context, id int64) error {
	if err := s.guests.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.WithField("guest_id", id).Info("Guest deleted")
	return nil
}

// JoinUnit requests membership of a unit; an admin approves or rejects it later
func (s *GuestService) JoinUnit(ctx context.Context, req *models.JoinUnitRequest) error {
	if req.GuestID <= 0 || req.UnitID <= 0 {
		return validationError("guest_id and unit_id are required")
	}

	if _, err := s.units.GetUnit(ctx, req.UnitID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return notFoundError("unit %d not found", req.UnitID)
		}
		return err
	}

	return notFoundIfNoRows(s.guests.JoinUnit(ctx, req.GuestID, req.UnitID), "guest", req.GuestID)
}

// ListAll returns every guest for the admin people view
func (s *GuestService) ListAll(ctx context.Context) ([]models.GuestWithUnit, error) {
	return s.guests.ListAll(ctx)
}

// ListPending returns guests waiting for approval
func (s *GuestService) ListPending(ctx context.Context) ([]models.GuestWithUnit, error) {
	return s.guests.ListPending(ctx)
}

// Decide approves or rejects a pending membership. action is "approve" or "reject".
func (s *GuestService) Decide(ctx context.Context, guestID int64, action string) (models.GuestStatus, error) {
	var status models.GuestStatus
	switch action {
	case "approve":
		status = models.GuestApproved
	case "reject":
		status = models.GuestRejected
	default:
		return "", validationError("action must be 'approve' or 'reject'")
	}

	if err := s.guests.SetStatus(ctx, guestID, status); err != nil {
		return "", notFoundIfNoRows(err, "guest", guestID)
	}

	s.logger.WithFields(logrus.Fields{"guest_id": guestID, "status": status}).Info("Membership decided")
	return status, nil
}
