package models

import "encoding/json"

// Assignment designates the guest on duty for a unit on a date
type Assignment struct {
	ID             int64  `json:"id" db:"id"`
	UnitID         int64  `json:"unit_id" db:"unit_id"`
	GuestID        int64  `json:"guest_id" db:"guest_id"`
	AssignmentDate string `json:"assignment_date" db:"assignment_date"` // YYYY-MM-DD
}

// AssignmentWithProgress is an assignment joined with its guest and that day's completion counts
type AssignmentWithProgress struct {
	Assignment
	FirstName         string      `json:"first_name" db:"first_name"`
	LastName          string      `json:"last_name" db:"last_name"`
	Status            GuestStatus `json:"status" db:"status"`
	GuestUnitID       *int64      `json:"guest_unit_id" db:"guest_unit_id"`
	ActiveProfileID   *int64      `json:"active_profile_id" db:"active_profile_id"`
	ProfileID         *int64      `json:"profile_id" db:"profile_id"`
	CompletedSteps    int         `json:"completed_steps" db:"-"`
	CompletedMissions int         `json:"completed_missions" db:"-"`
}

// AssignRequest represents the body of POST /assignments
type AssignRequest struct {
	UnitID  int64  `json:"unit_id" binding:"required"`
	GuestID int64  `json:"guest_id" binding:"required"`
	Date    string `json:"date" binding:"required"`
}

// AssignmentFilter narrows ListAssignments; empty bounds are open
type AssignmentFilter struct {
	UnitID int64
	Start  string
	End    string
}

// DutyPerson identifies who is on duty
type DutyPerson struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// TodaySchedule is the response of GET /schedule/today.
// When HasAssignment is false it encodes as {"has_assignment":false} only.
type TodaySchedule struct {
	HasAssignment bool        `json:"has_assignment"`
	IsMe          bool        `json:"is_me"`
	AssignedTo    *DutyPerson `json:"assigned_to"`
	Date          string      `json:"date"`
	Schedule      []Level     `json:"schedule"`
}

// MarshalJSON implements json.Marshaler
func (t TodaySchedule) MarshalJSON() ([]byte, error) {
	if !t.HasAssignment {
		return []byte(`{"has_assignment":false}`), nil
	}
	type plain TodaySchedule
	out := plain(t)
	if out.Schedule == nil {
		out.Schedule = []Level{}
	}
	return json.Marshal(out)
}
