package models

// Level is a timed block of the daily schedule
type Level struct {
	ID           int64     `json:"id" db:"id"`
	ProfileID    *int64    `json:"profile_id" db:"profile_id"`
	ProfileTitle *string   `json:"profile_title,omitempty" db:"profile_title"`
	Title        string    `json:"title" db:"title"`
	TargetTime   *string   `json:"target_time" db:"target_time"` // HH:MM
	DisplayOrder int       `json:"display_order" db:"display_order"`
	Missions     []Mission `json:"missions" db:"-"`
}

// Mission is a task inside a level
type Mission struct {
	ID           int64     `json:"id" db:"id"`
	LevelID      int64     `json:"level_id" db:"level_id"`
	Title        string    `json:"title" db:"title"`
	Description  *string   `json:"description" db:"description"`
	ImageURL     *string   `json:"image_url" db:"image_url"`
	Images       ImageList `json:"images" db:"-"`
	TargetTime   *string   `json:"target_time" db:"target_time"` // display only
	Duration     *int      `json:"duration" db:"duration"`       // minutes
	DisplayOrder int       `json:"display_order" db:"display_order"`
	Steps        []Step    `json:"steps" db:"-"`
}

// Step is a checklist sub-item of a mission
type Step struct {
	ID           int64   `json:"id" db:"id"`
	MissionID    int64   `json:"mission_id" db:"mission_id"`
	Title        string  `json:"title" db:"title"`
	Subtitle     *string `json:"subtitle" db:"subtitle"`
	Description  *string `json:"description" db:"description"`
	ImageURL     *string `json:"image_url" db:"image_url"`
	TargetTime   *string `json:"target_time" db:"target_time"`
	Duration     *int    `json:"duration" db:"duration"`
	DisplayOrder int     `json:"display_order" db:"display_order"`
}

// MissionImage is one row of the mission_images table
type MissionImage struct {
	MissionID int64  `db:"mission_id"`
	URL       string `db:"url"`
	Position  int    `db:"position"`
}

// CreateLevelRequest represents the request to create a level.
// ProfileID defaults to the default profile when omitted.
type CreateLevelRequest struct {
	Title      string  `json:"title" binding:"required"`
	ProfileID  *int64  `json:"profile_id"`
	TargetTime *string `json:"target_time"`
}

// CreateMissionRequest represents the request to create a mission
type CreateMissionRequest struct {
	LevelID     int64     `json:"level_id" binding:"required"`
	Title       string    `json:"title" binding:"required"`
	Description *string   `json:"description"`
	ImageURL    *string   `json:"image_url"`
	Images      ImageList `json:"images"`
	TargetTime  *string   `json:"target_time"`
	Duration    *int      `json:"duration"`
}

// CreateStepRequest represents the request to create a step
type CreateStepRequest struct {
	MissionID   int64   `json:"mission_id" binding:"required"`
	Title       string  `json:"title" binding:"required"`
	Subtitle    *string `json:"subtitle"`
	Description *string `json:"description"`
	ImageURL    *string `json:"image_url"`
	TargetTime  *string `json:"target_time"`
	Duration    *int    `json:"duration"`
}

// UpdateLevelRequest is a partial update; nil fields are left unchanged.
// An empty target_time clears it.
type UpdateLevelRequest struct {
	Title      *string `json:"title"`
	TargetTime *string `json:"target_time"`
}

// UpdateMissionRequest is a partial update; nil fields are left unchanged
type UpdateMissionRequest struct {
	Title       *string    `json:"title"`
	Description *string    `json:"description"`
	ImageURL    *string    `json:"image_url"`
	Images      *ImageList `json:"images"`
	TargetTime  *string    `json:"target_time"`
	Duration    *int       `json:"duration"`
}

// UpdateStepRequest is a partial update; nil fields are left unchanged
type UpdateStepRequest struct {
	Title       *string `json:"title"`
	Subtitle    *string `json:"subtitle"`
	Description *string `json:"description"`
	ImageURL    *string `json:"image_url"`
	TargetTime  *string `json:"target_time"`
	Duration    *int    `json:"duration"`
}

// OrderUpdate moves one item to a list position
type OrderUpdate struct {
	ID           int64 `json:"id" db:"id"`
	DisplayOrder int   `json:"display_order" db:"display_order"`
}

// ReorderRequest represents the body of POST /missions/reorder and /steps/reorder
type ReorderRequest struct {
	Updates []OrderUpdate `json:"updates"`
}
