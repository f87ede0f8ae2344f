package services

import (
	"context"
	"fmt"
	"time"

	"github.com/dutyroster/schedule-backend/internal/config"
	"github.com/dutyroster/schedule-backend/internal/database"
	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// retentionJobTimeout bounds one cleanup run
const retentionJobTimeout = 5 * time.Minute

// RetentionService runs the nightly cleanup of old completion history, old assignments
// and expired login attempts
type RetentionService struct {
	cron     *cron.Cron
	db       database.DB
	calendar *Calendar
	limiter  *LoginLimiter
	cfg      config.RetentionConfig
	logger   *logrus.Logger
}

// RetentionResult reports what one cleanup run removed
type RetentionResult struct {
	Before        string `json:"before"`
	Steps         int64  `json:"steps"`
	Missions      int64  `json:"missions"`
	Assignments   int64  `json:"assignments"`
	LoginAttempts int64  `json:"login_attempts"`
}

// NewRetentionService creates a new RetentionService
func NewRetentionService(
	db database.DB,
	calendar *Calendar,
	limiter *LoginLimiter,
	cfg config.RetentionConfig,
	logger *logrus.Logger,
) *RetentionService {
	return &RetentionService{
		cron:     cron.New(cron.WithSeconds(), cron.WithLocation(calendar.loc)),
		db:       db,
		calendar: calendar,
		limiter:  limiter,
		cfg:      cfg,
		logger:   logger,
	}
}

// Start schedules the cleanup job. With retention disabled only expired login
// attempts are cleaned up.
func (s *RetentionService) Start() error {
	if _, err := s.cron.AddFunc(s.cfg.Schedule, s.runJob); err != nil {
		return fmt.Errorf("failed to schedule retention job: %w", err)
	}
	s.cron.Start()

	s.logger.WithFields(logrus.Fields{
		"schedule":       s.cfg.Schedule,
		"retention_days": s.cfg.Days,
	}).Info("Retention job scheduled")
	return nil
}

// Stop stops the scheduler and waits for a running job to finish
func (s *RetentionService) Stop() {
	<-s.cron.Stop().Done()
	s.logger.Info("Retention job stopped")
}

// NextRun returns when the job fires next, zero before Start
func (s *RetentionService) NextRun() time.Time {
	entries := s.cron.Entries()
	if len(entries) == 0 {
		return time.Time{}
	}
	return entries[0].Next
}

func (s *RetentionService) runJob() {
	ctx, cancel := context.WithTimeout(context.Background(), retentionJobTimeout)
	defer cancel()

	startTime := time.Now()
	result, err := s.RunNow(ctx)
	if err != nil {
		s.logger.WithError(err).Error("Retention job failed")
		return
	}

	s.logger.WithFields(logrus.Fields{
		"before":         result.Before,
		"steps":          result.Steps,
		"missions":       result.Missions,
		"assignments":    result.Assignments,
		"login_attempts": result.LoginAttempts,
		"duration":       time.Since(startTime).String(),
	}).Info("Retention job finished")
}

// RunNow performs one cleanup immediately
func (s *RetentionService) RunNow(ctx context.Context) (*RetentionResult, error) {
	result := &RetentionResult{}

	if s.cfg.Days > 0 {
		result.Before = s.calendar.DaysAgo(s.cfg.Days)

		steps, missions, err := database.ClearProgressBefore(ctx, s.db, result.Before)
		if err != nil {
			return nil, err
		}
		result.Steps, result.Missions = steps, missions

		if result.Assignments, err = database.ClearAssignmentsBefore(ctx, s.db, result.Before); err != nil {
			return nil, err
		}
	}

	if s.limiter != nil {
		removed, err := s.limiter.CleanupExpired(ctx)
		if err != nil {
			return nil, err
		}
		result.LoginAttempts = removed
	}

	return result, nil
}
