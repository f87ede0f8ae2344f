package database

import (
	"context"
	"database/sql"
	"fmt"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dutyroster/schedule-backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestContentUpdates(t *testing.T) {
	ctx := context.Background()

	t.Run("Partial level update leaves other fields", func(t *testing.T) {
		db := setupTestDB(t)
		repo := NewContentRepository(db)
		levelID := seedLevel(t, db, models.DefaultProfileID, "Morning", strPtr("07:00"))

		require.NoError(t, repo.UpdateLevel(ctx, levelID, &models.UpdateLevelRequest{Title: strPtr("Dawn")}))

		levels, err := NewTreeRepository(db).ProfileTree(ctx, models.DefaultProfileID)
		require.NoError(t, err)
		assert.Equal(t, "Dawn", levels[0].Title)
		assert.Equal(t, strPtr("07:00"), levels[0].TargetTime)
	})

	t.Run("Empty target time clears it", func(t *testing.T) {
		db := setupTestDB(t)
		repo := NewContentRepository(db)
		levelID := seedLevel(t, db, models.DefaultProfileID, "Morning", strPtr("07:00"))

		require.NoError(t, repo.UpdateLevel(ctx, levelID, &models.UpdateLevelRequest{TargetTime: strPtr("")}))

		levels, err := NewTreeRepository(db).ProfileTree(ctx, models.DefaultProfileID)
		require.NoError(t, err)
		assert.Nil(t, levels[0].TargetTime)
	})

	t.Run("Missing row", func(t *testing.T) {
		db := setupTestDB(t)
		repo := NewContentRepository(db)

		err := repo.UpdateStep(ctx, 404, &models.UpdateStepRequest{Title: strPtr("x")})
		assert.ErrorIs(t, err, sql.ErrNoRows)

		images := models.ImageList{"/uploads/a.png"}
		err = repo.UpdateMission(ctx, 404, &models.UpdateMissionRequest{Images: &images})
		assert.ErrorIs(t, err, sql.ErrNoRows)
	})

	t.Run("Empty update is a no-op", func(t *testing.T) {
		db := setupTestDB(t)
		assert.NoError(t, NewContentRepository(db).UpdateLevel(ctx, 404, &models.UpdateLevelRequest{}))
	})

	t.Run("Mission images replaced", func(t *testing.T) {
		db := setupTestDB(t)
		repo := NewContentRepository(db)
		levelID := seedLevel(t, db, models.DefaultProfileID, "Morning", nil)
		mission, err := repo.CreateMission(ctx, &models.CreateMissionRequest{
			LevelID: levelID,
			Title:   "Kit",
			Images:  models.ImageList{"/uploads/old.png"},
		})
		require.NoError(t, err)

		images := models.ImageList{"/uploads/new1.png", "/uploads/new2.png"}
		require.NoError(t, repo.UpdateMission(ctx, mission.ID, &models.UpdateMissionRequest{
			Duration: intPtr(15),
			Images:   &images,
		}))

		levels, err := NewTreeRepository(db).ProfileTree(ctx, models.DefaultProfileID)
		require.NoError(t, err)
		got := levels[0].Missions[0]
		assert.Equal(t, images, got.Images)
		require.NotNil(t, got.Duration)
		assert.Equal(t, 15, *got.Duration)
	})
}

func TestCreateUnderMissingParent(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)
	repo := NewContentRepository(db)

	_, err := repo.CreateLevel(ctx, 999, "Night", nil)
	assert.True(t, IsForeignKeyViolation(err), "level: %v", err)

	_, err = repo.CreateMission(ctx, &models.CreateMissionRequest{LevelID: 999, Title: "Patrol"})
	assert.True(t, IsForeignKeyViolation(err), "mission: %v", err)

	_, err = repo.CreateStep(ctx, &models.CreateStepRequest{MissionID: 999, Title: "Gate"})
	assert.True(t, IsForeignKeyViolation(err), "step: %v", err)

	assert.False(t, IsForeignKeyViolation(fmt.Errorf("failed: %w", sql.ErrNoRows)))
	assert.False(t, IsForeignKeyViolation(nil))
}

func TestContentDeletes(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)
	repo := NewContentRepository(db)

	levelID := seedLevel(t, db, models.DefaultProfileID, "Morning", nil)
	missionID := seedMission(t, db, levelID, "Kit")
	seedStep(t, db, missionID, "Boots")

	require.NoError(t, repo.DeleteLevel(ctx, levelID))

	var steps int
	require.NoError(t, db.Get(&steps, `SELECT COUNT(*) FROM steps`))
	assert.Equal(t, 0, steps, "steps cascade with their level")

	assert.NoError(t, repo.DeleteLevel(ctx, levelID), "deleting twice is not an error")
	assert.NoError(t, repo.DeleteMission(ctx, missionID))
	assert.NoError(t, repo.DeleteStep(ctx, 404))
}

func TestReorder(t *testing.T) {
	ctx := context.Background()

	t.Run("Empty batch", func(t *testing.T) {
		db, mock := setupMockDB(t)
		assert.NoError(t, NewContentRepository(db).ReorderSteps(ctx, nil))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Failure rolls back the whole batch", func(t *testing.T) {
		db, mock := setupMockDB(t)

		mock.ExpectBegin()
		prep := mock.ExpectPrepare(`UPDATE missions SET display_order`)
		prep.ExpectExec().WithArgs(0, int64(3)).WillReturnResult(sqlmock.NewResult(0, 1))
		prep.ExpectExec().WithArgs(1, int64(1)).WillReturnError(fmt.Errorf("disk I/O error"))
		mock.ExpectRollback()

		err := NewContentRepository(db).ReorderMissions(ctx, []models.OrderUpdate{
			{ID: 3, DisplayOrder: 0},
			{ID: 1, DisplayOrder: 1},
		})
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "failed to reorder item 1")
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Unknown ids are ignored", func(t *testing.T) {
		db := setupTestDB(t)
		assert.NoError(t, NewContentRepository(db).ReorderSteps(ctx, []models.OrderUpdate{{ID: 77, DisplayOrder: 1}}))
	})
}

func intPtr(i int) *int { return &i }
