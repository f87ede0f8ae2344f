package database

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dutyroster/schedule-backend/internal/models"
	"github.com/jmoiron/sqlx"
)

// AssignmentRepository handles duty assignment database operations
type AssignmentRepository struct {
	db DB
}

// NewAssignmentRepository creates a new AssignmentRepository
func NewAssignmentRepository(db DB) *AssignmentRepository {
	return &AssignmentRepository{db: db}
}

// List returns a unit's assignments joined with their guests, ordered by date.
// Start and End bound the date range independently; empty means open.
func (r *AssignmentRepository) List(ctx context.Context, filter models.AssignmentFilter) ([]models.AssignmentWithProgress, error) {
	query := `
		SELECT a.id, a.unit_id, a.guest_id, a.assignment_date,
			g.first_name, g.last_name, g.status, g.unit_id AS guest_unit_id,
			g.active_profile_id, g.profile_id
		FROM assignments a
		JOIN guests g ON a.guest_id = g.id
		WHERE a.unit_id = ?`
	args := []interface{}{filter.UnitID}

	if filter.Start != "" {
		query += ` AND a.assignment_date >= ?`
		args = append(args, filter.Start)
	}
	if filter.End != "" {
		query += ` AND a.assignment_date <= ?`
		args = append(args, filter.End)
	}
	query += ` ORDER BY a.assignment_date ASC, a.id ASC`

	rows := []models.AssignmentWithProgress{}
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list assignments: %w", err)
	}
	return rows, nil
}

// StepCounts returns completed step counts grouped by guest and date within [start, end]
func (r *AssignmentRepository) StepCounts(ctx context.Context, guestIDs []int64, start, end string) ([]models.CompletionCount, error) {
	return r.completionCounts(ctx, "progress", guestIDs, start, end)
}

// MissionCounts returns completed mission records grouped by guest and date within [start, end]
func (r *AssignmentRepository) MissionCounts(ctx context.Context, guestIDs []int64, start, end string) ([]models.CompletionCount, error) {
	return r.completionCounts(ctx, "mission_progress", guestIDs, start, end)
}

func (r *AssignmentRepository) completionCounts(ctx context.Context, table string, guestIDs []int64, start, end string) ([]models.CompletionCount, error) {
	counts := []models.CompletionCount{}
	if len(guestIDs) == 0 {
		return counts, nil
	}

	query, args, err := sqlx.In(fmt.Sprintf(`
		SELECT guest_id, completion_date, COUNT(*) AS completed_count
		FROM %s
		WHERE guest_id IN (?) AND completion_date BETWEEN ? AND ?
		GROUP BY guest_id, completion_date`, table), guestIDs, start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to build %s count query: %w", table, err)
	}

	if err := r.db.SelectContext(ctx, &counts, r.db.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("failed to count %s: %w", table, err)
	}
	return counts, nil
}

// Upsert assigns the guest to the unit's slot for the date, replacing any previous guest.
// Returns the id of the slot's row, or sql.ErrNoRows when the guest does not exist.
func (r *AssignmentRepository) Upsert(ctx context.Context, unitID, guestID int64, date string) (int64, error) {
	query := `
		INSERT INTO assignments (unit_id, guest_id, assignment_date)
		SELECT ?, ?, ? WHERE EXISTS (SELECT 1 FROM guests WHERE id = ?)
		ON CONFLICT (unit_id, assignment_date) DO UPDATE SET guest_id = excluded.guest_id
		RETURNING id
	`

	var id int64
	if err := r.db.GetContext(ctx, &id, query, unitID, guestID, date, guestID); err != nil {
		if err == sql.ErrNoRows {
			return 0, err
		}
		return 0, fmt.Errorf("failed to assign guest: %w", err)
	}
	return id, nil
}

// Clear removes the unit's assignment for the date; absent rows are not an error
func (r *AssignmentRepository) Clear(ctx context.Context, unitID int64, date string) error {
	if _, err := r.db.ExecContext(ctx,
		`DELETE FROM assignments WHERE unit_id = ? AND assignment_date = ?`, unitID, date,
	); err != nil {
		return fmt.Errorf("failed to clear assignment: %w", err)
	}
	return nil
}

// Get returns the unit's assignment for the date joined with the guest's name, or sql.ErrNoRows
func (r *AssignmentRepository) Get(ctx context.Context, unitID int64, date string) (*models.AssignmentWithProgress, error) {
	var row models.AssignmentWithProgress
	query := `
		SELECT a.id, a.unit_id, a.guest_id, a.assignment_date,
			g.first_name, g.last_name, g.status, g.unit_id AS guest_unit_id,
			g.active_profile_id, g.profile_id
		FROM assignments a
		JOIN guests g ON a.guest_id = g.id
		WHERE a.unit_id = ? AND a.assignment_date = ?`

	if err := r.db.GetContext(ctx, &row, query, unitID, date); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("failed to get assignment: %w", err)
	}
	return &row, nil
}
