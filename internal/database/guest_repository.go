package database

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dutyroster/schedule-backend/internal/models"
	"github.com/jmoiron/sqlx"
)

const guestWithUnitColumns = `
	g.id, g.first_name, g.last_name, g.unit_id, g.status, g.active_profile_id, g.profile_id, g.created_at,
	u.title AS unit_title, u.image_url AS unit_image`

// GuestRepository handles guest database operations
type GuestRepository struct {
	db DB
}

// NewGuestRepository creates a new GuestRepository
func NewGuestRepository(db DB) *GuestRepository {
	return &GuestRepository{db: db}
}

// Register returns the guest with the given name, creating it when absent.
// Names are compared exactly; callers trim them first.
func (r *GuestRepository) Register(ctx context.Context, firstName, lastName string) (*models.Guest, error) {
	var guest models.Guest
	err := WithTx(ctx, r.db, nil, func(tx *sqlx.Tx) error {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO guests (first_name, last_name, status)
			VALUES (?, ?, ?)
			ON CONFLICT (first_name, last_name) DO NOTHING`,
			firstName, lastName, models.GuestPendingUnitSelection,
		); err != nil {
			return fmt.Errorf("failed to register guest: %w", err)
		}

		if err := tx.GetContext(ctx, &guest, `
			SELECT id, first_name, last_name, unit_id, status, active_profile_id, profile_id, created_at
			FROM guests
			WHERE first_name = ? AND last_name = ?`,
			firstName, lastName,
		); err != nil {
			return fmt.Errorf("failed to load guest: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &guest, nil
}

// GetWithUnit returns a guest joined with its unit, or sql.ErrNoRows
func (r *GuestRepository) GetWithUnit(ctx context.Context, id int64) (*models.GuestWithUnit, error) {
	var guest models.GuestWithUnit
	query := `SELECT ` + guestWithUnitColumns + `
		FROM guests g
		LEFT JOIN units u ON g.unit_id = u.id
		WHERE g.id = ?`

	if err := r.db.GetContext(ctx, &guest, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("failed to get guest: %w", err)
	}
	return &guest, nil
}

// Delete removes a guest together with its assignments and completion records
func (r *GuestRepository) Delete(ctx context.Context, id int64) error {
	return WithTx(ctx, r.db, nil, func(tx *sqlx.Tx) error {
		for _, query := range []string{
			`DELETE FROM progress WHERE guest_id = ?`,
			`DELETE FROM mission_progress WHERE guest_id = ?`,
			`DELETE FROM assignments WHERE guest_id = ?`,
			`DELETE FROM guests WHERE id = ?`,
		} {
			if _, err := tx.ExecContext(ctx, query, id); err != nil {
				return fmt.Errorf("failed to delete guest: %w", err)
			}
		}
		return nil
	})
}

// JoinUnit moves the guest into a unit and marks the membership pending approval
func (r *GuestRepository) JoinUnit(ctx context.Context, guestID, unitID int64) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE guests SET unit_id = ?, status = ? WHERE id = ?`,
		unitID, models.GuestPendingApproval, guestID,
	)
	if err != nil {
		return fmt.Errorf("failed to join unit: %w", err)
	}
	return requireAffected(result)
}

// SetStatus updates the membership status
func (r *GuestRepository) SetStatus(ctx context.Context, guestID int64, status models.GuestStatus) error {
	result, err := r.db.ExecContext(ctx, `UPDATE guests SET status = ? WHERE id = ?`, status, guestID)
	if err != nil {
		return fmt.Errorf("failed to update guest status: %w", err)
	}
	return requireAffected(result)
}

// ListAll returns every guest with unit details, grouped by status then unit
func (r *GuestRepository) ListAll(ctx context.Context) ([]models.GuestWithUnit, error) {
	guests := []models.GuestWithUnit{}
	query := `SELECT ` + guestWithUnitColumns + `
		FROM guests g
		LEFT JOIN units u ON g.unit_id = u.id
		ORDER BY g.status, u.title, g.id`

	if err := r.db.SelectContext(ctx, &guests, query); err != nil {
		return nil, fmt.Errorf("failed to list guests: %w", err)
	}
	return guests, nil
}

// ListPending returns guests waiting for unit approval. The bare 'pending' status
// is written by older databases and treated the same.
func (r *GuestRepository) ListPending(ctx context.Context) ([]models.GuestWithUnit, error) {
	guests := []models.GuestWithUnit{}
	query := `SELECT ` + guestWithUnitColumns + `
		FROM guests g
		LEFT JOIN units u ON g.unit_id = u.id
		WHERE g.status IN (?, 'pending')
		ORDER BY g.id`

	if err := r.db.SelectContext(ctx, &guests, query, models.GuestPendingApproval); err != nil {
		return nil, fmt.Errorf("failed to list pending guests: %w", err)
	}
	return guests, nil
}
