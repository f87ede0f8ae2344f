package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/url"

	"github.com/dutyroster/schedule-backend/internal/config"
	"github.com/jmoiron/sqlx"
	"github.com/mattn/go-sqlite3"
)

// DB interface defines database operations used by the repositories.
// *SQLiteDB implements it; tests wrap a sqlmock connection in the same type.
type DB interface {
	sqlx.ExtContext
	GetContext(ctx context.Context, dest interface{}, query string, args ...interface{}) error
	SelectContext(ctx context.Context, dest interface{}, query string, args ...interface{}) error
	BeginTxx(ctx context.Context, opts *sql.TxOptions) (*sqlx.Tx, error)
	PingContext(ctx context.Context) error
	Close() error
}

// SQLiteDB implements the DB interface using sqlx
type SQLiteDB struct {
	*sqlx.DB
}

// NewConnection opens the SQLite file, applies the schema and seeds defaults
func NewConnection(cfg config.DatabaseConfig) (*SQLiteDB, error) {
	if cfg.Path == "" {
		return nil, fmt.Errorf("database path is required")
	}

	db, err := sqlx.Connect("sqlite3", buildDSN(cfg))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// SQLite serialises writers; a single connection avoids SQLITE_BUSY between our own
	// goroutines and keeps ":memory:" databases on one handle.
	maxConns := cfg.MaxConnections
	if maxConns <= 0 || cfg.Path == ":memory:" {
		maxConns = 1
	}
	db.SetMaxOpenConns(maxConns)
	db.SetMaxIdleConns(maxConns)
	db.SetConnMaxLifetime(0)

	wrapped := &SQLiteDB{DB: db}
	if err := wrapped.Migrate(context.Background()); err != nil {
		db.Close()
		return nil, err
	}

	return wrapped, nil
}

// Wrap adapts an existing sqlx handle
func Wrap(db *sqlx.DB) *SQLiteDB {
	return &SQLiteDB{DB: db}
}

// IsForeignKeyViolation reports whether err comes from a write that references a missing row
func IsForeignKeyViolation(err error) bool {
	var sqliteErr sqlite3.Error
	return errors.As(err, &sqliteErr) && sqliteErr.ExtendedCode == sqlite3.ErrConstraintForeignKey
}

func buildDSN(cfg config.DatabaseConfig) string {
	params := url.Values{}
	params.Set("_foreign_keys", "on")
	if cfg.BusyTimeout > 0 {
		params.Set("_busy_timeout", fmt.Sprintf("%d", cfg.BusyTimeout.Milliseconds()))
	}
	if cfg.Path != ":memory:" {
		params.Set("_journal_mode", "WAL")
	}
	return "file:" + cfg.Path + "?" + params.Encode()
}

// WithTx runs fn inside a transaction, committing on success and rolling back on error
func WithTx(ctx context.Context, db DB, opts *sql.TxOptions, fn func(tx *sqlx.Tx) error) error {
	tx, err := db.BeginTxx(ctx, opts)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}
