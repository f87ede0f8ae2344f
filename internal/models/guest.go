package models

import "time"

// GuestStatus is the lifecycle state of a guest's unit membership
type GuestStatus string

const (
	GuestPendingUnitSelection GuestStatus = "pending_unit_selection"
	GuestPendingApproval      GuestStatus = "pending_approval"
	GuestApproved             GuestStatus = "approved"
	GuestRejected             GuestStatus = "rejected"
)

// Guest is an end user identified by first and last name
type Guest struct {
	ID              int64       `json:"id" db:"id"`
	FirstName       string      `json:"first_name" db:"first_name"`
	LastName        string      `json:"last_name" db:"last_name"`
	UnitID          *int64      `json:"unit_id" db:"unit_id"`
	Status          GuestStatus `json:"status" db:"status"`
	ActiveProfileID *int64      `json:"active_profile_id" db:"active_profile_id"`
	ProfileID       *int64      `json:"profile_id" db:"profile_id"`
	CreatedAt       time.Time   `json:"created_at" db:"created_at"`
}

// FullName joins first and last name
func (g Guest) FullName() string {
	return g.FirstName + " " + g.LastName
}

// GuestWithUnit is a guest joined with its unit's display fields
type GuestWithUnit struct {
	Guest
	UnitTitle *string `json:"unit_title" db:"unit_title"`
	UnitImage *string `json:"unit_image" db:"unit_image"`
}

// RegisterGuestRequest represents the request to register (or re-enter) a guest
type RegisterGuestRequest struct {
	FirstName string `json:"first_name" binding:"required"`
	LastName  string `json:"last_name" binding:"required"`
}

// RegisterGuestResponse is the registered guest plus its token
type RegisterGuestResponse struct {
	Guest
	Token string `json:"token,omitempty"`
}

// JoinUnitRequest represents a guest's request to join a unit
type JoinUnitRequest struct {
	GuestID int64 `json:"guest_id" binding:"required"`
	UnitID  int64 `json:"unit_id" binding:"required"`
}
