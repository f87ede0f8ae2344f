package services

import (
	"context"
	"strings"

	"github.com/dutyroster/schedule-backend/internal/database"
	"github.com/dutyroster/schedule-backend/internal/models"
	"github.com/dutyroster/schedule-backend/pkg/validator"
	"github.com/sirupsen/logrus"
)

// ContentService edits the Level → Mission → Step content of profiles
type ContentService struct {
	repo      *database.ContentRepository
	validator *validator.ScheduleValidator
	logger    *logrus.Logger
}

// NewContentService creates a new ContentService
func NewContentService(repo *database.ContentRepository, logger *logrus.Logger) *ContentService {
	return &ContentService{
		repo:      repo,
		validator: validator.NewScheduleValidator(),
		logger:    logger,
	}
}

// CreateLevel adds a level to a profile (the default profile when none is given)
func (s *ContentService) CreateLevel(ctx context.Context, req *models.CreateLevelRequest) (*models.Level, error) {
	title, err := requireTitle(req.Title)
	if err != nil {
		return nil, err
	}
	if err := s.normalizeTime(req.TargetTime); err != nil {
		return nil, err
	}

	profileID := models.DefaultProfileID
	if req.ProfileID != nil && *req.ProfileID > 0 {
		profileID = *req.ProfileID
	}

	level, err := s.repo.CreateLevel(ctx, profileID, title, req.TargetTime)
	if err != nil {
		return nil, notFoundIfMissingParent(err, "profile", profileID)
	}

	s.logger.WithFields(logrus.Fields{"level_id": level.ID, "profile_id": profileID}).Info("Level created")
	return level, nil
}

// CreateMission adds a mission to a level
func (s *ContentService) CreateMission(ctx context.Context, req *models.CreateMissionRequest) (*models.Mission, error) {
	if req.LevelID <= 0 {
		return nil, validationError("level_id is required")
	}
	title, err := requireTitle(req.Title)
	if err != nil {
		return nil, err
	}
	req.Title = title
	if err := s.normalizeTime(req.TargetTime); err != nil {
		return nil, err
	}
	if err := validateDuration(req.Duration); err != nil {
		return nil, err
	}

	mission, err := s.repo.CreateMission(ctx, req)
	if err != nil {
		return nil, notFoundIfMissingParent(err, "level", req.LevelID)
	}
	return mission, nil
}

// CreateStep adds a step to a mission
func (s *ContentService) CreateStep(ctx context.Context, req *models.CreateStepRequest) (*models.Step, error) {
	if req.MissionID <= 0 {
		return nil, validationError("mission_id is required")
	}
	title, err := requireTitle(req.Title)
	if err != nil {
		return nil, err
	}
	req.Title = title
	if err := s.normalizeTime(req.TargetTime); err != nil {
		return nil, err
	}
	if err := validateDuration(req.Duration); err != nil {
		return nil, err
	}

	step, err := s.repo.CreateStep(ctx, req)
	if err != nil {
		return nil, notFoundIfMissingParent(err, "mission", req.MissionID)
	}
	return step, nil
}

// UpdateLevel applies a partial update
func (s *ContentService) UpdateLevel(ctx context.Context, id int64, req *models.UpdateLevelRequest) error {
	if err := optionalTitle(req.Title); err != nil {
		return err
	}
	if err := s.normalizeTime(req.TargetTime); err != nil {
		return err
	}
	return notFoundIfNoRows(s.repo.UpdateLevel(ctx, id, req), "level", id)
}

// UpdateMission applies a partial update
func (s *ContentService) UpdateMission(ctx context.Context, id int64, req *models.UpdateMissionRequest) error {
	if err := optionalTitle(req.Title); err != nil {
		return err
	}
	if err := s.normalizeTime(req.TargetTime); err != nil {
		return err
	}
	if err := validateDuration(req.Duration); err != nil {
		return err
	}
	return notFoundIfNoRows(s.repo.UpdateMission(ctx, id, req), "mission", id)
}

// UpdateStep applies a partial update
func (s *ContentService) UpdateStep(ctx context.Context, id int64, req *models.UpdateStepRequest) error {
	if err := optionalTitle(req.Title); err != nil {
		return err
	}
	if err := s.normalizeTime(req.TargetTime); err != nil {
		return err
	}
	if err := validateDuration(req.Duration); err != nil {
		return err
	}
	return notFoundIfNoRows(s.repo.UpdateStep(ctx, id, req), "step", id)
}

// DeleteLevel removes a level with its missions and steps
func (s *ContentService) DeleteLevel(ctx context.Context, id int64) error {
	return s.repo.DeleteLevel(ctx, id)
}

// DeleteMission removes a mission with its steps
func (s *ContentService) DeleteMission(ctx context.Context, id int64) error {
	return s.repo.DeleteMission(ctx, id)
}

// DeleteStep removes a step
func (s *ContentService) DeleteStep(ctx context.Context, id int64) error {
	return s.repo.DeleteStep(ctx, id)
}

// Reorder persists a batch of display positions for missions or steps in one transaction.
// A nil batch is rejected; an empty one succeeds without touching the database.
func (s *ContentService) Reorder(ctx context.Context, kind models.ItemKind, updates []models.OrderUpdate) error {
	if updates == nil {
		return validationError("Invalid updates")
	}
	for _, u := range updates {
		if u.ID <= 0 {
			return validationError("Invalid updates: id must be positive")
		}
	}

	var err error
	switch kind {
	case models.ItemMission:
		err = s.repo.ReorderMissions(ctx, updates)
	case models.ItemStep:
		err = s.repo.ReorderSteps(ctx, updates)
	default:
		return validationError("cannot reorder %s items", kind)
	}
	if err != nil {
		return err
	}

	s.logger.WithFields(logrus.Fields{"item_type": kind.String(), "count": len(updates)}).Debug("Items reordered")
	return nil
}

// normalizeTime validates an optional HH:MM value in place
func (s *ContentService) normalizeTime(value *string) error {
	if value == nil {
		return nil
	}
	normalized, err := s.validator.ValidateTime(*value)
	if err != nil {
		return validationError("invalid target_time %q: must be HH:MM", *value)
	}
	*value = normalized
	return nil
}

func requireTitle(title string) (string, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return "", validationError("title is required")
	}
	return title, nil
}

func optionalTitle(title *string) error {
	if title == nil {
		return nil
	}
	trimmed, err := requireTitle(*title)
	if err != nil {
		return err
	}
	*title = trimmed
	return nil
}

func validateDuration(minutes *int) error {
	if minutes != nil && *minutes < 0 {
		return validationError("duration must not be negative")
	}
	return nil
}
