package services

import (
	"context"
	"testing"
	"time"

	"github.com/dutyroster/schedule-backend/internal/config"
	"github.com/dutyroster/schedule-backend/internal/database"
	"github.com/dutyroster/schedule-backend/internal/models"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/require"
)

func setupTestDB(t *testing.T) *database.SQLiteDB {
	t.Helper()

	db, err := database.NewConnection(config.DatabaseConfig{Path: ":memory:"})
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func newTestLogger() (*logrus.Logger, *test.Hook) {
	logger, hook := test.NewNullLogger()
	logger.SetLevel(logrus.DebugLevel)
	return logger, hook
}

// fixedCalendar returns a calendar whose today is the given date in UTC
func fixedCalendar(date string) *Calendar {
	day, err := time.Parse("2006-01-02", date)
	if err != nil {
		panic(err)
	}
	cal := NewCalendar(time.UTC)
	cal.now = func() time.Time { return day.Add(10 * time.Hour) }
	return cal
}

// testTree holds the ids of the content seeded by seedTree
type testTree struct {
	levelID      int64
	missionID    int64 // two steps
	emptyMission int64 // no steps
	stepA, stepB int64
}

// seedTree creates one level at 08:00 with a 30 minute mission of two steps and a stepless mission
func seedTree(t *testing.T, db *database.SQLiteDB, profileID int64) testTree {
	t.Helper()
	ctx := context.Background()
	repo := database.NewContentRepository(db)

	level, err := repo.CreateLevel(ctx, profileID, "Morning", strPtr("08:00"))
	require.NoError(t, err)

	duration := 30
	mission, err := repo.CreateMission(ctx, &models.CreateMissionRequest{LevelID: level.ID, Title: "Kit", Duration: &duration})
	require.NoError(t, err)
	stepA, err := repo.CreateStep(ctx, &models.CreateStepRequest{MissionID: mission.ID, Title: "Boots"})
	require.NoError(t, err)
	stepB, err := repo.CreateStep(ctx, &models.CreateStepRequest{MissionID: mission.ID, Title: "Belt"})
	require.NoError(t, err)

	empty, err := repo.CreateMission(ctx, &models.CreateMissionRequest{LevelID: level.ID, Title: "Report"})
	require.NoError(t, err)

	return testTree{
		levelID:      level.ID,
		missionID:    mission.ID,
		emptyMission: empty.ID,
		stepA:        stepA.ID,
		stepB:        stepB.ID,
	}
}

func strPtr(s string) *string { return &s }

func int64Ptr(i int64) *int64 { return &i }
