package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dutyroster/schedule-backend/internal/config"
	"github.com/dutyroster/schedule-backend/internal/database"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupLimiter(t *testing.T, clock *time.Time) *LoginLimiter {
	t.Helper()
	limiter := NewLoginLimiter(setupTestDB(t), config.LoginLimitConfig{MaxAttempts: 3, Window: 15 * time.Minute})
	limiter.now = func() time.Time { return *clock }
	return limiter
}

func TestLoginLimiter(t *testing.T) {
	ctx := context.Background()
	const ip = "203.0.113.7"

	t.Run("blocks after max failures", func(t *testing.T) {
		clock := time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC)
		limiter := setupLimiter(t, &clock)

		for i := 0; i < 3; i++ {
			require.NoError(t, limiter.Check(ctx, ip))
			require.NoError(t, limiter.RecordFailure(ctx, ip))
			clock = clock.Add(time.Minute)
		}

		err := limiter.Check(ctx, ip)
		var rateErr *RateLimitError
		require.True(t, errors.As(err, &rateErr))
		assert.Equal(t, time.Date(2024, 6, 1, 9, 15, 0, 0, time.UTC).Unix(), rateErr.RetryAfter.Unix())
		assert.Contains(t, rateErr.Message, "Too many failed login attempts")

		// other clients are unaffected
		assert.NoError(t, limiter.Check(ctx, "198.51.100.1"))
	})

	t.Run("window slides", func(t *testing.T) {
		clock := time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC)
		limiter := setupLimiter(t, &clock)

		for i := 0; i < 3; i++ {
			require.NoError(t, limiter.RecordFailure(ctx, ip))
			clock = clock.Add(time.Minute)
		}
		require.Error(t, limiter.Check(ctx, ip))

		clock = time.Date(2024, 6, 1, 9, 15, 0, 0, time.UTC)
		assert.NoError(t, limiter.Check(ctx, ip))

		removed, err := limiter.CleanupExpired(ctx)
		require.NoError(t, err)
		assert.Equal(t, int64(1), removed)
	})

	t.Run("reset clears failures", func(t *testing.T) {
		clock := time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC)
		limiter := setupLimiter(t, &clock)

		for i := 0; i < 3; i++ {
			require.NoError(t, limiter.RecordFailure(ctx, ip))
		}
		require.Error(t, limiter.Check(ctx, ip))

		require.NoError(t, limiter.Reset(ctx, ip))
		assert.NoError(t, limiter.Check(ctx, ip))
	})

	t.Run("disabled", func(t *testing.T) {
		limiter := NewLoginLimiter(setupTestDB(t), config.LoginLimitConfig{})
		for i := 0; i < 10; i++ {
			require.NoError(t, limiter.RecordFailure(ctx, ip))
		}
		assert.NoError(t, limiter.Check(ctx, ip))
	})
}

func TestLoginLimiter_QueryError(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	limiter := NewLoginLimiter(&database.SQLiteDB{DB: sqlx.NewDb(db, "sqlmock")},
		config.LoginLimitConfig{MaxAttempts: 3, Window: time.Minute})

	mock.ExpectQuery("SELECT COUNT(.+) FROM admin_login_attempts").
		WithArgs("203.0.113.7", sqlmock.AnyArg()).
		WillReturnError(errors.New("database is locked"))

	err = limiter.Check(context.Background(), "203.0.113.7")
	assert.EqualError(t, err, "failed to check login rate limit: database is locked")
	assert.NoError(t, mock.ExpectationsWereMet())
}
