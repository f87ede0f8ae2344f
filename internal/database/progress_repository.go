package database

import (
	"context"
	"fmt"
)

// AllDates selects completion records of every date
const AllDates = ""

// StepProgressRepository stores per-step completion records (table progress)
type StepProgressRepository struct {
	db DB
}

// NewStepProgressRepository creates a new StepProgressRepository
func NewStepProgressRepository(db DB) *StepProgressRepository {
	return &StepProgressRepository{db: db}
}

// Mark records the step as completed on the date. Marking twice is a no-op.
func (r *StepProgressRepository) Mark(ctx context.Context, guestID, stepID int64, date string) error {
	if _, err := r.db.ExecContext(ctx, `
		INSERT OR IGNORE INTO progress (guest_id, step_id, completion_date, completed)
		VALUES (?, ?, ?, 1)`,
		guestID, stepID, date,
	); err != nil {
		return fmt.Errorf("failed to mark step complete: %w", err)
	}
	return nil
}

// Unmark removes the step's completion record for the date
func (r *StepProgressRepository) Unmark(ctx context.Context, guestID, stepID int64, date string) error {
	if _, err := r.db.ExecContext(ctx,
		`DELETE FROM progress WHERE guest_id = ? AND step_id = ? AND completion_date = ?`,
		guestID, stepID, date,
	); err != nil {
		return fmt.Errorf("failed to unmark step: %w", err)
	}
	return nil
}

// CompletedIDs returns the step ids the guest completed on the date, or on any date for AllDates
func (r *StepProgressRepository) CompletedIDs(ctx context.Context, guestID int64, date string) ([]int64, error) {
	return completedIDs(ctx, r.db, `SELECT DISTINCT step_id FROM progress`, guestID, date)
}

// MissionProgressRepository stores mission-level completion records (table mission_progress)
type MissionProgressRepository struct {
	db DB
}

// NewMissionProgressRepository creates a new MissionProgressRepository
func NewMissionProgressRepository(db DB) *MissionProgressRepository {
	return &MissionProgressRepository{db: db}
}

// Mark records the mission as completed on the date. Marking twice is a no-op.
func (r *MissionProgressRepository) Mark(ctx context.Context, guestID, missionID int64, date string) error {
	if _, err := r.db.ExecContext(ctx, `
		INSERT OR IGNORE INTO mission_progress (guest_id, mission_id, completion_date, completed)
		VALUES (?, ?, ?, 1)`,
		guestID, missionID, date,
	); err != nil {
		return fmt.Errorf("failed to mark mission complete: %w", err)
	}
	return nil
}

// Unmark removes the mission's completion record for the date
func (r *MissionProgressRepository) Unmark(ctx context.Context, guestID, missionID int64, date string) error {
	if _, err := r.db.ExecContext(ctx,
		`DELETE FROM mission_progress WHERE guest_id = ? AND mission_id = ? AND completion_date = ?`,
		guestID, missionID, date,
	); err != nil {
		return fmt.Errorf("failed to unmark mission: %w", err)
	}
	return nil
}

// CompletedIDs returns the mission ids with a completion record on the date
func (r *MissionProgressRepository) CompletedIDs(ctx context.Context, guestID int64, date string) ([]int64, error) {
	return completedIDs(ctx, r.db, `SELECT DISTINCT mission_id FROM mission_progress`, guestID, date)
}

func completedIDs(ctx context.Context, db DB, selectFrom string, guestID int64, date string) ([]int64, error) {
	query := selectFrom + ` WHERE guest_id = ?`
	args := []interface{}{guestID}
	if date != AllDates {
		query += ` AND completion_date = ?`
		args = append(args, date)
	}
	query += ` ORDER BY 1`

	ids := []int64{}
	if err := db.SelectContext(ctx, &ids, query, args...); err != nil {
		return nil, fmt.Errorf("failed to fetch progress: %w", err)
	}
	return ids, nil
}

// ClearProgressBefore deletes completion records older than the date (all records when date is empty)
// and returns the number of rows removed from each table.
func ClearProgressBefore(ctx context.Context, db DB, date string) (steps, missions int64, err error) {
	steps, err = deleteBefore(ctx, db, "progress", "completion_date", date)
	if err != nil {
		return 0, 0, err
	}
	missions, err = deleteBefore(ctx, db, "mission_progress", "completion_date", date)
	if err != nil {
		return steps, 0, err
	}
	return steps, missions, nil
}

// ClearAssignmentsBefore deletes assignments older than the date (all when date is empty)
func ClearAssignmentsBefore(ctx context.Context, db DB, date string) (int64, error) {
	return deleteBefore(ctx, db, "assignments", "assignment_date", date)
}

func deleteBefore(ctx context.Context, db DB, table, column, date string) (int64, error) {
	query := fmt.Sprintf(`DELETE FROM %s`, table)
	args := []interface{}{}
	if date != "" {
		query += fmt.Sprintf(` WHERE %s < ?`, column)
		args = append(args, date)
	}

	result, err := db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("failed to clear %s: %w", table, err)
	}
	return result.RowsAffected()
}
