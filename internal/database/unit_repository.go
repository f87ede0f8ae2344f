package database

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dutyroster/schedule-backend/internal/models"
)

// UnitRepository handles unit and profile database operations
type UnitRepository struct {
	db DB
}

// NewUnitRepository creates a new UnitRepository
func NewUnitRepository(db DB) *UnitRepository {
	return &UnitRepository{db: db}
}

// ListUnits returns all units ordered by id
func (r *UnitRepository) ListUnits(ctx context.Context) ([]models.Unit, error) {
	units := []models.Unit{}
	query := `SELECT id, title, description, image_url FROM units ORDER BY id ASC`
	if err := r.db.SelectContext(ctx, &units, query); err != nil {
		return nil, fmt.Errorf("failed to list units: %w", err)
	}
	return units, nil
}

// SearchUnits returns units whose title contains the term (case-insensitive)
func (r *UnitRepository) SearchUnits(ctx context.Context, term string) ([]models.Unit, error) {
	units := []models.Unit{}
	query := `
		SELECT id, title, description, image_url
		FROM units
		WHERE title LIKE '%' || ? || '%' COLLATE NOCASE
		ORDER BY title ASC
	`
	if err := r.db.SelectContext(ctx, &units, query, term); err != nil {
		return nil, fmt.Errorf("failed to search units: %w", err)
	}
	return units, nil
}

// GetUnit returns a unit by id, or sql.ErrNoRows
func (r *UnitRepository) GetUnit(ctx context.Context, id int64) (*models.Unit, error) {
	var unit models.Unit
	query := `SELECT id, title, description, image_url FROM units WHERE id = ?`
	if err := r.db.GetContext(ctx, &unit, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("failed to get unit: %w", err)
	}
	return &unit, nil
}

// CreateUnit inserts a unit
func (r *UnitRepository) CreateUnit(ctx context.Context, req *models.CreateUnitRequest) (*models.Unit, error) {
	query := `INSERT INTO units (title, description, image_url) VALUES (?, ?, ?)`
	result, err := r.db.ExecContext(ctx, query, req.Title, nullIfEmpty(req.Description), nullIfEmpty(req.ImageURL))
	if err != nil {
		return nil, fmt.Errorf("failed to create unit: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to read unit id: %w", err)
	}

	return &models.Unit{
		ID:          id,
		Title:       req.Title,
		Description: nullableString(req.Description),
		ImageURL:    nullableString(req.ImageURL),
	}, nil
}

// UpdateUnit sets title and image. Returns sql.ErrNoRows if the unit does not exist.
func (r *UnitRepository) UpdateUnit(ctx context.Context, id int64, req *models.UpdateUnitRequest) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE units SET title = ?, image_url = ? WHERE id = ?`,
		req.Title, nullIfEmpty(req.ImageURL), id,
	)
	if err != nil {
		return fmt.Errorf("failed to update unit: %w", err)
	}
	return requireAffected(result)
}

// DeleteUnit removes a unit; its profiles cascade. Guests keep a dangling unit_id.
func (r *UnitRepository) DeleteUnit(ctx context.Context, id int64) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM units WHERE id = ?`, id); err != nil {
		return fmt.Errorf("failed to delete unit: %w", err)
	}
	return nil
}

// ListProfiles returns profiles, optionally restricted to one unit
func (r *UnitRepository) ListProfiles(ctx context.Context, unitID *int64) ([]models.Profile, error) {
	profiles := []models.Profile{}
	query := `SELECT id, unit_id, title, description, image_url, is_active FROM profiles`
	args := []interface{}{}
	if unitID != nil {
		query += ` WHERE unit_id = ?`
		args = append(args, *unitID)
	}
	query += ` ORDER BY id ASC`

	if err := r.db.SelectContext(ctx, &profiles, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list profiles: %w", err)
	}
	return profiles, nil
}

// CreateProfile inserts a profile; UnitID defaults to the default unit
func (r *UnitRepository) CreateProfile(ctx context.Context, req *models.CreateProfileRequest) (*models.Profile, error) {
	unitID := models.DefaultUnitID
	if req.UnitID != nil {
		unitID = *req.UnitID
	}

	query := `INSERT INTO profiles (unit_id, title, description, image_url) VALUES (?, ?, ?, ?)`
	result, err := r.db.ExecContext(ctx, query, unitID, req.Title, nullIfEmpty(req.Description), nullIfEmpty(req.ImageURL))
	if err != nil {
		return nil, fmt.Errorf("failed to create profile: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to read profile id: %w", err)
	}

	return &models.Profile{
		ID:          id,
		UnitID:      &unitID,
		Title:       req.Title,
		Description: nullableString(req.Description),
		ImageURL:    nullableString(req.ImageURL),
		IsActive:    true,
	}, nil
}

// UpdateProfile sets title and description
func (r *UnitRepository) UpdateProfile(ctx context.Context, id int64, req *models.UpdateProfileRequest) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE profiles SET title = ?, description = ? WHERE id = ?`,
		req.Title, nullIfEmpty(req.Description), id,
	)
	if err != nil {
		return fmt.Errorf("failed to update profile: %w", err)
	}
	return requireAffected(result)
}

// DeleteProfile removes a profile and its content tree
func (r *UnitRepository) DeleteProfile(ctx context.Context, id int64) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM profiles WHERE id = ?`, id); err != nil {
		return fmt.Errorf("failed to delete profile: %w", err)
	}
	return nil
}

func requireAffected(result sql.Result) error {
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return sql.ErrNoRows
	}
	return nil
}
