package services

import (
	"context"
	"database/sql"
	"errors"

	"github.com/dutyroster/schedule-backend/internal/database"
	"github.com/dutyroster/schedule-backend/internal/models"
)

// TreeService assembles content trees and the daily duty schedule
type TreeService struct {
	trees       *database.TreeRepository
	guests      *database.GuestRepository
	assignments *database.AssignmentRepository
	calendar    *Calendar
}

// NewTreeService creates a new TreeService
func NewTreeService(
	trees *database.TreeRepository,
	guests *database.GuestRepository,
	assignments *database.AssignmentRepository,
	calendar *Calendar,
) *TreeService {
	return &TreeService{
		trees:       trees,
		guests:      guests,
		assignments: assignments,
		calendar:    calendar,
	}
}

// GetContentTree returns the Level → Mission → Step tree of a profile.
// An unknown profile yields an empty tree, same as a profile without levels.
func (s *TreeService) GetContentTree(ctx context.Context, profileID int64) ([]models.Level, error) {
	if profileID <= 0 {
		return nil, validationError("invalid profile id")
	}
	return s.trees.ProfileTree(ctx, profileID)
}

// GetTodaySchedule resolves who is on duty today in the guest's unit and, when someone is,
// returns the schedule across all levels (or one profile's levels when profileID is set).
func (s *TreeService) GetTodaySchedule(ctx context.Context, guestID int64, profileID *int64) (*models.TodaySchedule, error) {
	if guestID <= 0 {
		return nil, validationError("guest_id is required")
	}

	none := &models.TodaySchedule{HasAssignment: false}

	guest, err := s.guests.GetWithUnit(ctx, guestID)
	if errors.Is(err, sql.ErrNoRows) {
		return none, nil
	}
	if err != nil {
		return nil, err
	}
	if guest.UnitID == nil {
		return none, nil
	}

	today := s.calendar.Today()
	assignment, err := s.assignments.Get(ctx, *guest.UnitID, today)
	if errors.Is(err, sql.ErrNoRows) {
		return none, nil
	}
	if err != nil {
		return nil, err
	}

	schedule, err := s.trees.ScheduleTree(ctx, profileID)
	if err != nil {
		return nil, err
	}

	return &models.TodaySchedule{
		HasAssignment: true,
		IsMe:          assignment.GuestID == guestID,
		AssignedTo: &models.DutyPerson{
			ID:   assignment.GuestID,
			Name: assignment.FirstName + " " + assignment.LastName,
		},
		Date:     today,
		Schedule: schedule,
	}, nil
}
