package models

// Unit is the root grouping of guests and profiles
type Unit struct {
	ID          int64   `json:"id" db:"id"`
	Title       string  `json:"title" db:"title"`
	Description *string `json:"description" db:"description"`
	ImageURL    *string `json:"image_url" db:"image_url"`
}

// CreateUnitRequest represents the request to create a unit
type CreateUnitRequest struct {
	Title       string  `json:"title" binding:"required"`
	Description *string `json:"description"`
	ImageURL    *string `json:"image_url"`
}

// UpdateUnitRequest represents the request to update a unit
type UpdateUnitRequest struct {
	Title    string  `json:"title" binding:"required"`
	ImageURL *string `json:"image_url"`
}

// Profile is a unit's checklist template; it owns a content tree
type Profile struct {
	ID          int64   `json:"id" db:"id"`
	UnitID      *int64  `json:"unit_id" db:"unit_id"`
	Title       string  `json:"title" db:"title"`
	Description *string `json:"description" db:"description"`
	ImageURL    *string `json:"image_url" db:"image_url"`
	IsActive    bool    `json:"is_active" db:"is_active"`
}

// CreateProfileRequest represents the request to create a profile.
// UnitID defaults to the default unit when omitted.
type CreateProfileRequest struct {
	Title       string  `json:"title" binding:"required"`
	Description *string `json:"description"`
	UnitID      *int64  `json:"unit_id"`
	ImageURL    *string `json:"image_url"`
}

// UpdateProfileRequest represents the request to update a profile
type UpdateProfileRequest struct {
	Title       string  `json:"title" binding:"required"`
	Description *string `json:"description"`
}

// DefaultUnitID is the unit seeded on a fresh database
const DefaultUnitID int64 = 1

// DefaultProfileID is the profile seeded on a fresh database
const DefaultProfileID int64 = 1
