package services

import (
	"context"

	"github.com/dutyroster/schedule-backend/internal/database"
	"github.com/dutyroster/schedule-backend/internal/models"
	"github.com/dutyroster/schedule-backend/pkg/validator"
	"github.com/sirupsen/logrus"
)

// AssignmentService manages the duty roster: one guest per unit per date
type AssignmentService struct {
	repo      *database.AssignmentRepository
	validator *validator.ScheduleValidator
	logger    *logrus.Logger
}

// NewAssignmentService creates a new AssignmentService
func NewAssignmentService(repo *database.AssignmentRepository, logger *logrus.Logger) *AssignmentService {
	return &AssignmentService{
		repo:      repo,
		validator: validator.NewScheduleValidator(),
		logger:    logger,
	}
}

type countKey struct {
	guestID int64
	date    string
}

// List returns the unit's assignments with each guest's completion counts for that date.
// Count failures are logged and leave the counts at zero.
func (s *AssignmentService) List(ctx context.Context, filter models.AssignmentFilter) ([]models.AssignmentWithProgress, error) {
	if filter.UnitID <= 0 {
		return nil, validationError("Missing unit_id")
	}
	for _, bound := range []string{filter.Start, filter.End} {
		if bound != "" && !s.validator.IsValidDate(bound) {
			return nil, validationError("invalid date %q: must be YYYY-MM-DD", bound)
		}
	}

	rows, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return rows, nil
	}

	guestIDs := make([]int64, 0, len(rows))
	seen := make(map[int64]bool, len(rows))
	start, end := filter.Start, filter.End
	for _, r := range rows {
		if !seen[r.GuestID] {
			seen[r.GuestID] = true
			guestIDs = append(guestIDs, r.GuestID)
		}
		if filter.Start == "" && (start == "" || r.AssignmentDate < start) {
			start = r.AssignmentDate
		}
		if filter.End == "" && (end == "" || r.AssignmentDate > end) {
			end = r.AssignmentDate
		}
	}

	stepCounts := s.countsByKey(s.repo.StepCounts(ctx, guestIDs, start, end))
	missionCounts := s.countsByKey(s.repo.MissionCounts(ctx, guestIDs, start, end))

	for i := range rows {
		key := countKey{guestID: rows[i].GuestID, date: rows[i].AssignmentDate}
		rows[i].CompletedSteps = stepCounts[key]
		rows[i].CompletedMissions = missionCounts[key]
	}
	return rows, nil
}

func (s *AssignmentService) countsByKey(counts []models.CompletionCount, err error) map[countKey]int {
	out := make(map[countKey]int, len(counts))
	if err != nil {
		s.logger.WithError(err).Warn("Failed to fetch completion counts")
		return out
	}
	for _, c := range counts {
		out[countKey{guestID: c.GuestID, date: c.CompletionDate}] = c.Count
	}
	return out
}

// Assign puts the guest on duty for the unit and date, replacing whoever held the slot
func (s *AssignmentService) Assign(ctx context.Context, req *models.AssignRequest) (int64, error) {
	if req.UnitID <= 0 || req.GuestID <= 0 {
		return 0, validationError("unit_id and guest_id are required")
	}
	date, err := s.validator.ValidateDate(req.Date)
	if err != nil {
		return 0, validationError("invalid date %q: must be YYYY-MM-DD", req.Date)
	}

	id, err := s.repo.Upsert(ctx, req.UnitID, req.GuestID, date)
	if err != nil {
		return 0, notFoundIfNoRows(err, "guest", req.GuestID)
	}

	s.logger.WithFields(logrus.Fields{
		"assignment_id": id,
		"unit_id":       req.UnitID,
		"guest_id":      req.GuestID,
		"date":          date,
	}).Info("Duty assigned")

	return id, nil
}

// Clear removes the unit's assignment for the date; clearing an empty slot succeeds
func (s *AssignmentService) Clear(ctx context.Context, unitID int64, date string) error {
	if unitID <= 0 {
		return validationError("Missing unit_id")
	}
	valid, err := s.validator.ValidateDate(date)
	if err != nil {
		return validationError("invalid date %q: must be YYYY-MM-DD", date)
	}
	return s.repo.Clear(ctx, unitID, valid)
}
