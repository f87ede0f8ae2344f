package database

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dutyroster/schedule-backend/internal/config"
	"github.com/dutyroster/schedule-backend/internal/models"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"
)

// setupTestDB opens an in-memory database with the full schema and default rows
func setupTestDB(t *testing.T) *SQLiteDB {
	t.Helper()

	db, err := NewConnection(config.DatabaseConfig{Path: ":memory:"})
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

// setupMockDB wraps a sqlmock connection for storage-failure tests
func setupMockDB(t *testing.T) (*SQLiteDB, sqlmock.Sqlmock) {
	t.Helper()

	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { mockDB.Close() })
	return Wrap(sqlx.NewDb(mockDB, "sqlmock")), mock
}

func strPtr(s string) *string { return &s }

func seedLevel(t *testing.T, db DB, profileID int64, title string, targetTime *string) int64 {
	t.Helper()
	level, err := NewContentRepository(db).CreateLevel(context.Background(), profileID, title, targetTime)
	require.NoError(t, err)
	return level.ID
}

func seedMission(t *testing.T, db DB, levelID int64, title string) int64 {
	t.Helper()
	mission, err := NewContentRepository(db).CreateMission(context.Background(), &models.CreateMissionRequest{LevelID: levelID, Title: title})
	require.NoError(t, err)
	return mission.ID
}

func seedStep(t *testing.T, db DB, missionID int64, title string) int64 {
	t.Helper()
	step, err := NewContentRepository(db).CreateStep(context.Background(), &models.CreateStepRequest{MissionID: missionID, Title: title})
	require.NoError(t, err)
	return step.ID
}

func seedGuest(t *testing.T, db DB, first, last string) int64 {
	t.Helper()
	guest, err := NewGuestRepository(db).Register(context.Background(), first, last)
	require.NoError(t, err)
	return guest.ID
}
