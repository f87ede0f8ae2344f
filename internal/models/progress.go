package models

import (
	"encoding/json"
	"fmt"
)

// ItemKind selects which completion table an item lives in
type ItemKind int

const (
	ItemStep ItemKind = iota + 1
	ItemMission
)

// ParseItemKind converts the wire value ("step" | "mission")
func ParseItemKind(s string) (ItemKind, error) {
	switch s {
	case "step":
		return ItemStep, nil
	case "mission":
		return ItemMission, nil
	}
	return 0, fmt.Errorf("invalid item type %q (must be 'step' or 'mission')", s)
}

func (k ItemKind) String() string {
	switch k {
	case ItemStep:
		return "step"
	case ItemMission:
		return "mission"
	}
	return "unknown"
}

// MarshalJSON encodes the wire value
func (k ItemKind) MarshalJSON() ([]byte, error) {
	return json.Marshal(k.String())
}

// UnmarshalJSON decodes the wire value
func (k *ItemKind) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParseItemKind(s)
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}

// SetCompletionRequest represents the body of POST /progress.
// Date defaults to today when empty.
type SetCompletionRequest struct {
	GuestID     int64    `json:"guest_id" binding:"required"`
	ItemID      int64    `json:"item_id" binding:"required"`
	ItemType    ItemKind `json:"item_type" binding:"required"`
	IsCompleted bool     `json:"is_completed"`
	Date        string   `json:"date"`
}

// ProgressOverlay is the set of items a guest completed (for one date, or all history)
type ProgressOverlay struct {
	Steps    map[int64]struct{}
	Missions map[int64]struct{}
}

// NewProgressOverlay builds an overlay from id lists
func NewProgressOverlay(stepIDs, missionIDs []int64) ProgressOverlay {
	o := ProgressOverlay{
		Steps:    make(map[int64]struct{}, len(stepIDs)),
		Missions: make(map[int64]struct{}, len(missionIDs)),
	}
	for _, id := range stepIDs {
		o.Steps[id] = struct{}{}
	}
	for _, id := range missionIDs {
		o.Missions[id] = struct{}{}
	}
	return o
}

// HasStep reports whether the step is complete
func (o ProgressOverlay) HasStep(id int64) bool {
	_, ok := o.Steps[id]
	return ok
}

// HasMission reports whether the mission's own completion record exists
func (o ProgressOverlay) HasMission(id int64) bool {
	_, ok := o.Missions[id]
	return ok
}

// ProgressResponse is the wire form of an overlay: { steps: [], missions: [] }
type ProgressResponse struct {
	Steps    []int64 `json:"steps"`
	Missions []int64 `json:"missions"`
}

// Completion summarises a guest's progress against a tree
type Completion struct {
	Total             int     `json:"total"`
	Completed         int     `json:"completed"`
	Percentage        int     `json:"percentage"`
	CompletedMissions []int64 `json:"completed_missions"`
}

// CompletionCount is one (guest, date) group of completion records
type CompletionCount struct {
	GuestID        int64  `db:"guest_id"`
	CompletionDate string `db:"completion_date"`
	Count          int    `db:"completed_count"`
}
