package database

import (
	"context"
	"fmt"

	"github.com/dutyroster/schedule-backend/internal/models"
	"github.com/jmoiron/sqlx"
)

// Timed levels first in time order, untimed last, ties by creation order
const levelOrder = `ORDER BY CASE WHEN l.target_time IS NULL OR l.target_time = '' THEN 1 ELSE 0 END, l.target_time ASC, l.id ASC`

// queryRebinder is satisfied by *sqlx.DB and *sqlx.Tx
type queryRebinder interface {
	sqlx.QueryerContext
	Rebind(query string) string
}

// TreeRepository reads Level → Mission → Step content trees
type TreeRepository struct {
	db DB
}

// NewTreeRepository creates a new TreeRepository
func NewTreeRepository(db DB) *TreeRepository {
	return &TreeRepository{db: db}
}

// ProfileTree returns the content tree of one profile.
// A profile that does not exist yields an empty tree.
func (r *TreeRepository) ProfileTree(ctx context.Context, profileID int64) ([]models.Level, error) {
	query := `
		SELECT l.id, l.profile_id, l.title, l.target_time, l.display_order
		FROM levels l
		WHERE l.profile_id = ?
		` + levelOrder

	var levels []models.Level
	err := WithTx(ctx, r.db, nil, func(tx *sqlx.Tx) error {
		if err := sqlx.SelectContext(ctx, tx, &levels, query, profileID); err != nil {
			return fmt.Errorf("failed to fetch levels: %w", err)
		}
		return attachMissions(ctx, tx, levels)
	})
	if err != nil {
		return nil, err
	}
	return nonNilLevels(levels), nil
}

// ScheduleTree returns the levels of every profile (or of one profile when profileID is set),
// each carrying its profile title.
func (r *TreeRepository) ScheduleTree(ctx context.Context, profileID *int64) ([]models.Level, error) {
	query := `
		SELECT l.id, l.profile_id, p.title AS profile_title, l.title, l.target_time, l.display_order
		FROM levels l
		LEFT JOIN profiles p ON l.profile_id = p.id`
	args := []interface{}{}
	if profileID != nil {
		query += ` WHERE l.profile_id = ?`
		args = append(args, *profileID)
	}
	query += "\n" + levelOrder

	var levels []models.Level
	err := WithTx(ctx, r.db, nil, func(tx *sqlx.Tx) error {
		if err := sqlx.SelectContext(ctx, tx, &levels, query, args...); err != nil {
			return fmt.Errorf("failed to fetch levels: %w", err)
		}
		return attachMissions(ctx, tx, levels)
	})
	if err != nil {
		return nil, err
	}
	return nonNilLevels(levels), nil
}

// ProfileExists reports whether a profile row exists
func (r *TreeRepository) ProfileExists(ctx context.Context, profileID int64) (bool, error) {
	var count int
	if err := r.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM profiles WHERE id = ?`, profileID); err != nil {
		return false, fmt.Errorf("failed to check profile: %w", err)
	}
	return count > 0, nil
}

// attachMissions fetches missions, their images and steps for the given levels and nests them
func attachMissions(ctx context.Context, q queryRebinder, levels []models.Level) error {
	if len(levels) == 0 {
		return nil
	}

	levelIDs := make([]int64, len(levels))
	for i, l := range levels {
		levelIDs[i] = l.ID
	}

	var missions []models.Mission
	if err := selectIn(ctx, q, &missions, `
		SELECT id, level_id, title, description, image_url, target_time, duration, display_order
		FROM missions
		WHERE level_id IN (?)
		ORDER BY display_order ASC, id ASC`, levelIDs); err != nil {
		return fmt.Errorf("failed to fetch missions: %w", err)
	}

	missionIDs := make([]int64, len(missions))
	for i, m := range missions {
		missionIDs[i] = m.ID
	}

	var steps []models.Step
	var images []models.MissionImage
	if len(missionIDs) > 0 {
		if err := selectIn(ctx, q, &steps, `
			SELECT id, mission_id, title, subtitle, description, image_url, target_time, duration, display_order
			FROM steps
			WHERE mission_id IN (?)
			ORDER BY display_order ASC, id ASC`, missionIDs); err != nil {
			return fmt.Errorf("failed to fetch steps: %w", err)
		}

		if err := selectIn(ctx, q, &images, `
			SELECT mission_id, url, position
			FROM mission_images
			WHERE mission_id IN (?)
			ORDER BY position ASC, id ASC`, missionIDs); err != nil {
			return fmt.Errorf("failed to fetch mission images: %w", err)
		}
	}

	nestTree(levels, missions, steps, images)
	return nil
}

// nestTree groups rows under their parents, preserving the query order of each list
func nestTree(levels []models.Level, missions []models.Mission, steps []models.Step, images []models.MissionImage) {
	stepsByMission := make(map[int64][]models.Step)
	for _, s := range steps {
		stepsByMission[s.MissionID] = append(stepsByMission[s.MissionID], s)
	}

	imagesByMission := make(map[int64]models.ImageList)
	for _, img := range images {
		imagesByMission[img.MissionID] = append(imagesByMission[img.MissionID], img.URL)
	}

	missionsByLevel := make(map[int64][]models.Mission)
	for _, m := range missions {
		m.Steps = stepsByMission[m.ID]
		if m.Steps == nil {
			m.Steps = []models.Step{}
		}
		m.Images = imagesByMission[m.ID]
		missionsByLevel[m.LevelID] = append(missionsByLevel[m.LevelID], m)
	}

	for i := range levels {
		levels[i].Missions = missionsByLevel[levels[i].ID]
		if levels[i].Missions == nil {
			levels[i].Missions = []models.Mission{}
		}
	}
}

func selectIn(ctx context.Context, q queryRebinder, dest interface{}, query string, ids []int64) error {
	expanded, args, err := sqlx.In(query, ids)
	if err != nil {
		return err
	}
	return sqlx.SelectContext(ctx, q, dest, q.Rebind(expanded), args...)
}

func nonNilLevels(levels []models.Level) []models.Level {
	if levels == nil {
		return []models.Level{}
	}
	return levels
}
