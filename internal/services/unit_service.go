package services

import (
	"context"
	"strings"

	"github.com/dutyroster/schedule-backend/internal/database"
	"github.com/dutyroster/schedule-backend/internal/models"
)

// minSearchLength is the shortest unit search term that hits the database
const minSearchLength = 2

// UnitService manages units and their profiles
type UnitService struct {
	repo *database.UnitRepository
}

// NewUnitService creates a new UnitService
func NewUnitService(repo *database.UnitRepository) *UnitService {
	return &UnitService{repo: repo}
}

// ListUnits returns every unit
func (s *UnitService) ListUnits(ctx context.Context) ([]models.Unit, error) {
	return s.repo.ListUnits(ctx)
}

// SearchUnits matches unit titles; terms shorter than two characters return nothing
func (s *UnitService) SearchUnits(ctx context.Context, term string) ([]models.Unit, error) {
	term = strings.TrimSpace(term)
	if len([]rune(term)) < minSearchLength {
		return []models.Unit{}, nil
	}
	return s.repo.SearchUnits(ctx, term)
}

// CreateUnit adds a unit
func (s *UnitService) CreateUnit(ctx context.Context, req *models.CreateUnitRequest) (*models.Unit, error) {
	title, err := requireTitle(req.Title)
	if err != nil {
		return nil, err
	}
	req.Title = title
	return s.repo.CreateUnit(ctx, req)
}

// UpdateUnit renames a unit and sets its image
func (s *UnitService) UpdateUnit(ctx context.Context, id int64, req *models.UpdateUnitRequest) error {
	title, err := requireTitle(req.Title)
	if err != nil {
		return err
	}
	req.Title = title
	return notFoundIfNoRows(s.repo.UpdateUnit(ctx, id, req), "unit", id)
}

// DeleteUnit removes a unit and its profiles
func (s *UnitService) DeleteUnit(ctx context.Context, id int64) error {
	if id == models.DefaultUnitID {
		return validationError("the default unit cannot be deleted")
	}
	return s.repo.DeleteUnit(ctx, id)
}

// ListProfiles returns profiles, optionally of one unit
func (s *UnitService) ListProfiles(ctx context.Context, unitID *int64) ([]models.Profile, error) {
	return s.repo.ListProfiles(ctx, unitID)
}

// CreateProfile adds a profile (to the default unit when none is given)
func (s *UnitService) CreateProfile(ctx context.Context, req *models.CreateProfileRequest) (*models.Profile, error) {
	title, err := requireTitle(req.Title)
	if err != nil {
		return nil, err
	}
	req.Title = title
	if req.UnitID != nil && *req.UnitID <= 0 {
		req.UnitID = nil
	}
	unitID := models.DefaultUnitID
	if req.UnitID != nil {
		unitID = *req.UnitID
	}

	profile, err := s.repo.CreateProfile(ctx, req)
	if err != nil {
		return nil, notFoundIfMissingParent(err, "unit", unitID)
	}
	return profile, nil
}

// UpdateProfile sets a profile's title and description
func (s *UnitService) UpdateProfile(ctx context.Context, id int64, req *models.UpdateProfileRequest) error {
	title, err := requireTitle(req.Title)
	if err != nil {
		return err
	}
	req.Title = title
	return notFoundIfNoRows(s.repo.UpdateProfile(ctx, id, req), "profile", id)
}

// DeleteProfile removes a profile and its content
func (s *UnitService) DeleteProfile(ctx context.Context, id int64) error {
	if id == models.DefaultProfileID {
		return validationError("the default profile cannot be deleted")
	}
	return s.repo.DeleteProfile(ctx, id)
}
