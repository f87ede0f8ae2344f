package services

import (
	"context"
	"testing"

	"github.com/dutyroster/schedule-backend/internal/database"
	"github.com/dutyroster/schedule-backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUnitService(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)
	svc := NewUnitService(database.NewUnitRepository(db))

	signals, err := svc.CreateUnit(ctx, &models.CreateUnitRequest{Title: "  Signals Company "})
	require.NoError(t, err)
	assert.Equal(t, "Signals Company", signals.Title)

	t.Run("Search needs two characters", func(t *testing.T) {
		units, err := svc.SearchUnits(ctx, " s ")
		require.NoError(t, err)
		assert.NotNil(t, units)
		assert.Empty(t, units)

		units, err = svc.SearchUnits(ctx, "SIG")
		require.NoError(t, err)
		require.Len(t, units, 1)
		assert.Equal(t, signals.ID, units[0].ID)
	})

	t.Run("Update", func(t *testing.T) {
		err := svc.UpdateUnit(ctx, signals.ID, &models.UpdateUnitRequest{Title: "Signals", ImageURL: strPtr("/uploads/s.png")})
		require.NoError(t, err)

		err = svc.UpdateUnit(ctx, 999, &models.UpdateUnitRequest{Title: "Ghost"})
		assert.ErrorIs(t, err, ErrNotFound)

		err = svc.UpdateUnit(ctx, signals.ID, &models.UpdateUnitRequest{Title: " "})
		assert.ErrorIs(t, err, ErrValidation)
	})

	t.Run("Profiles", func(t *testing.T) {
		profile, err := svc.CreateProfile(ctx, &models.CreateProfileRequest{Title: "Radio watch", UnitID: &signals.ID})
		require.NoError(t, err)
		assert.True(t, profile.IsActive)

		fallback, err := svc.CreateProfile(ctx, &models.CreateProfileRequest{Title: "Spare", UnitID: int64Ptr(0)})
		require.NoError(t, err)
		require.NotNil(t, fallback.UnitID)
		assert.Equal(t, models.DefaultUnitID, *fallback.UnitID)

		profiles, err := svc.ListProfiles(ctx, &signals.ID)
		require.NoError(t, err)
		require.Len(t, profiles, 1)
		assert.Equal(t, profile.ID, profiles[0].ID)

		all, err := svc.ListProfiles(ctx, nil)
		require.NoError(t, err)
		assert.Len(t, all, 3)

		assert.NoError(t, svc.UpdateProfile(ctx, profile.ID, &models.UpdateProfileRequest{Title: "Night radio watch"}))
		assert.ErrorIs(t, svc.UpdateProfile(ctx, 999, &models.UpdateProfileRequest{Title: "X"}), ErrNotFound)
	})

	t.Run("Defaults cannot be deleted", func(t *testing.T) {
		assert.ErrorIs(t, svc.DeleteUnit(ctx, models.DefaultUnitID), ErrValidation)
		assert.ErrorIs(t, svc.DeleteProfile(ctx, models.DefaultProfileID), ErrValidation)
	})

	t.Run("Delete unit cascades profiles", func(t *testing.T) {
		require.NoError(t, svc.DeleteUnit(ctx, signals.ID))

		profiles, err := svc.ListProfiles(ctx, &signals.ID)
		require.NoError(t, err)
		assert.Empty(t, profiles)

		units, err := svc.ListUnits(ctx)
		require.NoError(t, err)
		require.Len(t, units, 1)
		assert.Equal(t, models.DefaultUnitID, units[0].ID)
	})
}
