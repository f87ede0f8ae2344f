package services

import (
	"context"
	"fmt"
	"time"

	"github.com/dutyroster/schedule-backend/internal/config"
	"github.com/dutyroster/schedule-backend/internal/database"
)

// LoginLimiter throttles failed admin logins per client IP
type LoginLimiter struct {
	db          database.DB
	maxAttempts int
	window      time.Duration
	now         func() time.Time
}

// NewLoginLimiter creates a new login limiter. A zero MaxAttempts disables throttling.
func NewLoginLimiter(db database.DB, cfg config.LoginLimitConfig) *LoginLimiter {
	return &LoginLimiter{
		db:          db,
		maxAttempts: cfg.MaxAttempts,
		window:      cfg.Window,
		now:         time.Now,
	}
}

// RateLimitError represents a rate limit exceeded error
type RateLimitError struct {
	Message    string
	RetryAfter time.Time
}

func (e *RateLimitError) Error() string {
	return e.Message
}

// Check returns a *RateLimitError when the IP has used up its failed attempts for the window
func (l *LoginLimiter) Check(ctx context.Context, ip string) error {
	if l.maxAttempts <= 0 || ip == "" {
		return nil
	}

	count, oldest, err := l.failures(ctx, ip)
	if err != nil {
		return fmt.Errorf("failed to check login rate limit: %w", err)
	}

	if count >= l.maxAttempts {
		retryAfter := oldest.Add(l.window)
		return &RateLimitError{
			Message:    fmt.Sprintf("Too many failed login attempts. Please try again after %s", retryAfter.Format("15:04:05")),
			RetryAfter: retryAfter,
		}
	}
	return nil
}

// failures counts the attempts inside the window and returns the oldest of them,
// which is the one whose expiry frees the next slot
func (l *LoginLimiter) failures(ctx context.Context, ip string) (int, time.Time, error) {
	windowStart := l.now().Add(-l.window).Unix()

	var row struct {
		Count  int   `db:"count"`
		Oldest int64 `db:"oldest"`
	}
	err := l.db.GetContext(ctx, &row, `
		SELECT COUNT(*) AS count, COALESCE(MIN(attempted_at), 0) AS oldest
		FROM admin_login_attempts
		WHERE ip = ? AND attempted_at > ?
	`, ip, windowStart)
	if err != nil {
		return 0, time.Time{}, err
	}

	return row.Count, time.Unix(row.Oldest, 0), nil
}

// RecordFailure records a failed login from the IP
func (l *LoginLimiter) RecordFailure(ctx context.Context, ip string) error {
	if l.maxAttempts <= 0 || ip == "" {
		return nil
	}

	_, err := l.db.ExecContext(ctx,
		`INSERT INTO admin_login_attempts (ip, attempted_at) VALUES (?, ?)`, ip, l.now().Unix())
	if err != nil {
		return fmt.Errorf("failed to record login attempt: %w", err)
	}
	return nil
}

// Reset forgets the IP's failures after a successful login
func (l *LoginLimiter) Reset(ctx context.Context, ip string) error {
	if _, err := l.db.ExecContext(ctx, `DELETE FROM admin_login_attempts WHERE ip = ?`, ip); err != nil {
		return fmt.Errorf("failed to reset login attempts: %w", err)
	}
	return nil
}

// CleanupExpired removes attempts that fell out of the window
func (l *LoginLimiter) CleanupExpired(ctx context.Context) (int64, error) {
	cutoff := l.now().Add(-l.window).Unix()

	result, err := l.db.ExecContext(ctx, `DELETE FROM admin_login_attempts WHERE attempted_at <= ?`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to cleanup login attempts: %w", err)
	}
	return result.RowsAffected()
}
