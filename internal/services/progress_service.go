package services

import (
	"context"

	"github.com/dutyroster/schedule-backend/internal/database"
	"github.com/dutyroster/schedule-backend/internal/models"
	"github.com/sirupsen/logrus"
)

// completionStore is implemented by the step and mission progress repositories
type completionStore interface {
	Mark(ctx context.Context, guestID, itemID int64, date string) error
	Unmark(ctx context.Context, guestID, itemID int64, date string) error
	CompletedIDs(ctx context.Context, guestID int64, date string) ([]int64, error)
}

// ProgressService reads and toggles per-day completion records
type ProgressService struct {
	steps    completionStore
	missions completionStore
	trees    *database.TreeRepository
	calendar *Calendar
	logger   *logrus.Logger
}

// NewProgressService creates a new ProgressService
func NewProgressService(
	steps *database.StepProgressRepository,
	missions *database.MissionProgressRepository,
	trees *database.TreeRepository,
	calendar *Calendar,
	logger *logrus.Logger,
) *ProgressService {
	return &ProgressService{
		steps:    steps,
		missions: missions,
		trees:    trees,
		calendar: calendar,
		logger:   logger,
	}
}

// GetProgress returns the completed step and mission ids of a guest.
// An empty date means today; AllDates returns completions of every day.
func (s *ProgressService) GetProgress(ctx context.Context, guestID int64, date string) (*models.ProgressResponse, error) {
	if guestID <= 0 {
		return nil, validationError("invalid guest id")
	}

	scope := database.AllDates
	if date != AllDates {
		resolved, err := s.calendar.resolveDate(date)
		if err != nil {
			return nil, err
		}
		scope = resolved
	}

	steps, err := s.steps.CompletedIDs(ctx, guestID, scope)
	if err != nil {
		return nil, err
	}
	missions, err := s.missions.CompletedIDs(ctx, guestID, scope)
	if err != nil {
		return nil, err
	}

	return &models.ProgressResponse{Steps: steps, Missions: missions}, nil
}

// Overlay returns the progress of a guest as lookup sets
func (s *ProgressService) Overlay(ctx context.Context, guestID int64, date string) (models.ProgressOverlay, error) {
	ids, err := s.GetProgress(ctx, guestID, date)
	if err != nil {
		return models.ProgressOverlay{}, err
	}
	return models.NewProgressOverlay(ids.Steps, ids.Missions), nil
}

// SetCompletion marks an item complete or incomplete for a date (today when empty).
// Both directions are idempotent. The item id is not checked against the content tables.
func (s *ProgressService) SetCompletion(ctx context.Context, req *models.SetCompletionRequest) error {
	if req.GuestID <= 0 || req.ItemID <= 0 {
		return validationError("guest_id and item_id are required")
	}

	store, err := s.storeFor(req.ItemType)
	if err != nil {
		return err
	}

	date, err := s.calendar.resolveDate(req.Date)
	if err != nil {
		return err
	}

	if req.IsCompleted {
		err = store.Mark(ctx, req.GuestID, req.ItemID, date)
	} else {
		err = store.Unmark(ctx, req.GuestID, req.ItemID, date)
	}
	if err != nil {
		return err
	}

	s.logger.WithFields(logrus.Fields{
		"guest_id":  req.GuestID,
		"item_type": req.ItemType.String(),
		"item_id":   req.ItemID,
		"date":      date,
		"completed": req.IsCompleted,
	}).Debug("Completion updated")

	return nil
}

func (s *ProgressService) storeFor(kind models.ItemKind) (completionStore, error) {
	switch kind {
	case models.ItemStep:
		return s.steps, nil
	case models.ItemMission:
		return s.missions, nil
	}
	return nil, validationError("item_type must be 'step' or 'mission'")
}

// Summary computes a guest's completion for a date against one profile's tree,
// or against every level when profileID is nil.
func (s *ProgressService) Summary(ctx context.Context, guestID int64, date string, profileID *int64) (*models.Completion, error) {
	overlay, err := s.Overlay(ctx, guestID, date)
	if err != nil {
		return nil, err
	}

	var tree []models.Level
	if profileID != nil {
		tree, err = s.trees.ProfileTree(ctx, *profileID)
	} else {
		tree, err = s.trees.ScheduleTree(ctx, nil)
	}
	if err != nil {
		return nil, err
	}

	completion := models.ComputeCompletion(tree, overlay)
	return &completion, nil
}
