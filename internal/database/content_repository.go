package database

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/dutyroster/schedule-backend/internal/models"
	"github.com/jmoiron/sqlx"
)

// ContentRepository handles writes to levels, missions, steps and mission images
type ContentRepository struct {
	db DB
}

// NewContentRepository creates a new ContentRepository
func NewContentRepository(db DB) *ContentRepository {
	return &ContentRepository{db: db}
}

// CreateLevel inserts a level
func (r *ContentRepository) CreateLevel(ctx context.Context, profileID int64, title string, targetTime *string) (*models.Level, error) {
	query := `INSERT INTO levels (profile_id, title, target_time) VALUES (?, ?, ?)`

	result, err := r.db.ExecContext(ctx, query, profileID, title, nullIfEmpty(targetTime))
	if err != nil {
		return nil, fmt.Errorf("failed to create level: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to read level id: %w", err)
	}

	return &models.Level{
		ID:         id,
		ProfileID:  &profileID,
		Title:      title,
		TargetTime: nullableString(targetTime),
		Missions:   []models.Mission{},
	}, nil
}

// CreateMission inserts a mission and its images in one transaction
func (r *ContentRepository) CreateMission(ctx context.Context, req *models.CreateMissionRequest) (*models.Mission, error) {
	query := `
		INSERT INTO missions (level_id, title, description, image_url, target_time, duration)
		VALUES (?, ?, ?, ?, ?, ?)
	`

	images := req.Images.Clean()
	var id int64
	err := WithTx(ctx, r.db, nil, func(tx *sqlx.Tx) error {
		result, err := tx.ExecContext(ctx, query,
			req.LevelID, req.Title, nullIfEmpty(req.Description), nullIfEmpty(req.ImageURL),
			nullIfEmpty(req.TargetTime), req.Duration,
		)
		if err != nil {
			return fmt.Errorf("failed to create mission: %w", err)
		}
		if id, err = result.LastInsertId(); err != nil {
			return fmt.Errorf("failed to read mission id: %w", err)
		}
		return replaceMissionImages(ctx, tx, id, images)
	})
	if err != nil {
		return nil, err
	}

	return &models.Mission{
		ID:          id,
		LevelID:     req.LevelID,
		Title:       req.Title,
		Description: nullableString(req.Description),
		ImageURL:    nullableString(req.ImageURL),
		Images:      images,
		TargetTime:  nullableString(req.TargetTime),
		Duration:    req.Duration,
		Steps:       []models.Step{},
	}, nil
}

// CreateStep inserts a step
func (r *ContentRepository) CreateStep(ctx context.Context, req *models.CreateStepRequest) (*models.Step, error) {
	query := `
		INSERT INTO steps (mission_id, title, subtitle, description, image_url, target_time, duration)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`

	result, err := r.db.ExecContext(ctx, query,
		req.MissionID, req.Title, nullIfEmpty(req.Subtitle), nullIfEmpty(req.Description),
		nullIfEmpty(req.ImageURL), nullIfEmpty(req.TargetTime), req.Duration,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create step: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to read step id: %w", err)
	}

	return &models.Step{
		ID:          id,
		MissionID:   req.MissionID,
		Title:       req.Title,
		Subtitle:    nullableString(req.Subtitle),
		Description: nullableString(req.Description),
		ImageURL:    nullableString(req.ImageURL),
		TargetTime:  nullableString(req.TargetTime),
		Duration:    req.Duration,
	}, nil
}

// UpdateLevel applies a partial update. Returns sql.ErrNoRows if the level does not exist.
func (r *ContentRepository) UpdateLevel(ctx context.Context, id int64, req *models.UpdateLevelRequest) error {
	var set setClause
	set.addString("title", req.Title)
	set.addNullable("target_time", req.TargetTime)
	return r.update(ctx, r.db, "levels", id, &set)
}

// UpdateMission applies a partial update; a non-nil image list replaces the stored one
func (r *ContentRepository) UpdateMission(ctx context.Context, id int64, req *models.UpdateMissionRequest) error {
	var set setClause
	set.addString("title", req.Title)
	set.addNullable("description", req.Description)
	set.addNullable("image_url", req.ImageURL)
	set.addNullable("target_time", req.TargetTime)
	set.addInt("duration", req.Duration)

	if req.Images == nil {
		return r.update(ctx, r.db, "missions", id, &set)
	}

	return WithTx(ctx, r.db, nil, func(tx *sqlx.Tx) error {
		if set.empty() {
			if err := ensureRow(ctx, tx, "missions", id); err != nil {
				return err
			}
		} else if err := r.update(ctx, tx, "missions", id, &set); err != nil {
			return err
		}
		return replaceMissionImages(ctx, tx, id, req.Images.Clean())
	})
}

// UpdateStep applies a partial update
func (r *ContentRepository) UpdateStep(ctx context.Context, id int64, req *models.UpdateStepRequest) error {
	var set setClause
	set.addString("title", req.Title)
	set.addNullable("subtitle", req.Subtitle)
	set.addNullable("description", req.Description)
	set.addNullable("image_url", req.ImageURL)
	set.addNullable("target_time", req.TargetTime)
	set.addInt("duration", req.Duration)
	return r.update(ctx, r.db, "steps", id, &set)
}

// DeleteLevel removes a level; missions and steps cascade. Deleting a missing row is a no-op.
func (r *ContentRepository) DeleteLevel(ctx context.Context, id int64) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM levels WHERE id = ?`, id); err != nil {
		return fmt.Errorf("failed to delete level: %w", err)
	}
	return nil
}

// DeleteMission removes a mission; steps and images cascade
func (r *ContentRepository) DeleteMission(ctx context.Context, id int64) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM missions WHERE id = ?`, id); err != nil {
		return fmt.Errorf("failed to delete mission: %w", err)
	}
	return nil
}

// DeleteStep removes a step
func (r *ContentRepository) DeleteStep(ctx context.Context, id int64) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM steps WHERE id = ?`, id); err != nil {
		return fmt.Errorf("failed to delete step: %w", err)
	}
	return nil
}

// ReorderMissions writes display_order for each update in one transaction
func (r *ContentRepository) ReorderMissions(ctx context.Context, updates []models.OrderUpdate) error {
	return r.reorder(ctx, `UPDATE missions SET display_order = ? WHERE id = ?`, updates)
}

// ReorderSteps writes display_order for each update in one transaction
func (r *ContentRepository) ReorderSteps(ctx context.Context, updates []models.OrderUpdate) error {
	return r.reorder(ctx, `UPDATE steps SET display_order = ? WHERE id = ?`, updates)
}

func (r *ContentRepository) reorder(ctx context.Context, query string, updates []models.OrderUpdate) error {
	if len(updates) == 0 {
		return nil
	}

	return WithTx(ctx, r.db, nil, func(tx *sqlx.Tx) error {
		stmt, err := tx.PreparexContext(ctx, query)
		if err != nil {
			return fmt.Errorf("failed to prepare reorder: %w", err)
		}
		defer stmt.Close()

		for _, u := range updates {
			if _, err := stmt.ExecContext(ctx, u.DisplayOrder, u.ID); err != nil {
				return fmt.Errorf("failed to reorder item %d: %w", u.ID, err)
			}
		}
		return nil
	})
}

// update runs UPDATE <table> SET ... WHERE id = ?. Table names are constants from this file.
func (r *ContentRepository) update(ctx context.Context, exec sqlx.ExecerContext, table string, id int64, set *setClause) error {
	if set.empty() {
		return nil
	}

	query := fmt.Sprintf(`UPDATE %s SET %s WHERE id = ?`, table, strings.Join(set.columns, ", "))
	args := append(set.args, id)

	result, err := exec.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to update %s: %w", table, err)
	}
	return requireAffected(result)
}

func ensureRow(ctx context.Context, q sqlx.QueryerContext, table string, id int64) error {
	var count int
	query := fmt.Sprintf(`SELECT COUNT(*) FROM %s WHERE id = ?`, table)
	if err := sqlx.GetContext(ctx, q, &count, query, id); err != nil {
		return fmt.Errorf("failed to check %s: %w", table, err)
	}
	if count == 0 {
		return sql.ErrNoRows
	}
	return nil
}

func replaceMissionImages(ctx context.Context, tx *sqlx.Tx, missionID int64, images models.ImageList) error {
	if _, err := tx.ExecContext(ctx, `DELETE FROM mission_images WHERE mission_id = ?`, missionID); err != nil {
		return fmt.Errorf("failed to clear mission images: %w", err)
	}
	for i, url := range images {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO mission_images (mission_id, url, position) VALUES (?, ?, ?)`,
			missionID, url, i,
		); err != nil {
			return fmt.Errorf("failed to store mission image: %w", err)
		}
	}
	return nil
}

// setClause collects the columns of a partial UPDATE
type setClause struct {
	columns []string
	args    []interface{}
}

func (s *setClause) addString(column string, v *string) {
	if v == nil {
		return
	}
	s.columns = append(s.columns, column+" = ?")
	s.args = append(s.args, *v)
}

// addNullable stores an empty string as NULL
func (s *setClause) addNullable(column string, v *string) {
	if v == nil {
		return
	}
	s.columns = append(s.columns, column+" = ?")
	s.args = append(s.args, nullIfEmpty(v))
}

func (s *setClause) addInt(column string, v *int) {
	if v == nil {
		return
	}
	s.columns = append(s.columns, column+" = ?")
	s.args = append(s.args, *v)
}

func (s *setClause) empty() bool {
	return len(s.columns) == 0
}

func nullIfEmpty(v *string) interface{} {
	if v == nil || strings.TrimSpace(*v) == "" {
		return nil
	}
	return *v
}

func nullableString(v *string) *string {
	if v == nil || strings.TrimSpace(*v) == "" {
		return nil
	}
	s := *v
	return &s
}
