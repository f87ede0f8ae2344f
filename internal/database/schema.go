package database

import (
	"context"
	"fmt"
)

// SchemaSQL is the complete schema. Repository tests load exactly this string, so a column
// referenced in a query but missing here fails in tests rather than in production.
const SchemaSQL = `
CREATE TABLE IF NOT EXISTS units (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	title TEXT NOT NULL,
	description TEXT,
	image_url TEXT
);

CREATE TABLE IF NOT EXISTS profiles (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	unit_id INTEGER,
	title TEXT NOT NULL,
	description TEXT,
	image_url TEXT,
	is_active INTEGER NOT NULL DEFAULT 1,
	FOREIGN KEY (unit_id) REFERENCES units (id) ON DELETE CASCADE
);

CREATE TABLE IF NOT EXISTS levels (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	profile_id INTEGER,
	title TEXT NOT NULL,
	target_time TEXT,
	display_order INTEGER NOT NULL DEFAULT 0,
	FOREIGN KEY (profile_id) REFERENCES profiles (id) ON DELETE CASCADE
);

CREATE TABLE IF NOT EXISTS missions (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	level_id INTEGER NOT NULL,
	title TEXT NOT NULL,
	description TEXT,
	image_url TEXT,
	target_time TEXT,
	duration INTEGER,
	display_order INTEGER NOT NULL DEFAULT 0,
	FOREIGN KEY (level_id) REFERENCES levels (id) ON DELETE CASCADE
);

CREATE TABLE IF NOT EXISTS mission_images (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	mission_id INTEGER NOT NULL,
	url TEXT NOT NULL,
	position INTEGER NOT NULL DEFAULT 0,
	FOREIGN KEY (mission_id) REFERENCES missions (id) ON DELETE CASCADE
);

CREATE TABLE IF NOT EXISTS steps (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	mission_id INTEGER NOT NULL,
	title TEXT NOT NULL,
	subtitle TEXT,
	description TEXT,
	image_url TEXT,
	target_time TEXT,
	duration INTEGER,
	display_order INTEGER NOT NULL DEFAULT 0,
	FOREIGN KEY (mission_id) REFERENCES missions (id) ON DELETE CASCADE
);

CREATE TABLE IF NOT EXISTS guests (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	first_name TEXT NOT NULL,
	last_name TEXT NOT NULL,
	unit_id INTEGER,
	status TEXT NOT NULL DEFAULT 'pending_unit_selection',
	active_profile_id INTEGER,
	profile_id INTEGER,
	created_at DATETIME DEFAULT CURRENT_TIMESTAMP
);

CREATE UNIQUE INDEX IF NOT EXISTS idx_guests_name ON guests (first_name, last_name);

CREATE TABLE IF NOT EXISTS assignments (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	unit_id INTEGER NOT NULL,
	guest_id INTEGER NOT NULL,
	assignment_date TEXT NOT NULL,
	created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
	UNIQUE (unit_id, assignment_date)
);

CREATE TABLE IF NOT EXISTS progress (
	guest_id INTEGER NOT NULL,
	step_id INTEGER NOT NULL,
	completion_date TEXT NOT NULL,
	completed BOOLEAN NOT NULL DEFAULT 1,
	timestamp DATETIME DEFAULT CURRENT_TIMESTAMP,
	PRIMARY KEY (guest_id, step_id, completion_date)
);

CREATE TABLE IF NOT EXISTS mission_progress (
	guest_id INTEGER NOT NULL,
	mission_id INTEGER NOT NULL,
	completion_date TEXT NOT NULL,
	completed BOOLEAN NOT NULL DEFAULT 1,
	timestamp DATETIME DEFAULT CURRENT_TIMESTAMP,
	PRIMARY KEY (guest_id, mission_id, completion_date)
);

CREATE TABLE IF NOT EXISTS admin_login_attempts (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	ip TEXT NOT NULL,
	attempted_at INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_levels_profile ON levels (profile_id);
CREATE INDEX IF NOT EXISTS idx_missions_level ON missions (level_id);
CREATE INDEX IF NOT EXISTS idx_steps_mission ON steps (mission_id);
CREATE INDEX IF NOT EXISTS idx_mission_images_mission ON mission_images (mission_id);
CREATE INDEX IF NOT EXISTS idx_progress_date ON progress (completion_date);
CREATE INDEX IF NOT EXISTS idx_mission_progress_date ON mission_progress (completion_date);
CREATE INDEX IF NOT EXISTS idx_admin_login_attempts_ip ON admin_login_attempts (ip, attempted_at);
`

// Default rows created on an empty database
const (
	defaultUnitTitle          = "General Unit"
	defaultUnitDescription    = "Default unit"
	defaultProfileTitle       = "General"
	defaultProfileDescription = "Default profile"
)

// Migrate applies the schema and seeds the default unit and profile
func (db *SQLiteDB) Migrate(ctx context.Context) error {
	if _, err := db.ExecContext(ctx, SchemaSQL); err != nil {
		return fmt.Errorf("failed to apply schema: %w", err)
	}
	return seedDefaults(ctx, db)
}

func seedDefaults(ctx context.Context, db DB) error {
	var units int
	if err := db.GetContext(ctx, &units, `SELECT COUNT(*) FROM units`); err != nil {
		return fmt.Errorf("failed to count units: %w", err)
	}
	if units == 0 {
		if _, err := db.ExecContext(ctx,
			`INSERT INTO units (id, title, description) VALUES (?, ?, ?)`,
			1, defaultUnitTitle, defaultUnitDescription,
		); err != nil {
			return fmt.Errorf("failed to seed default unit: %w", err)
		}
	}

	var profiles int
	if err := db.GetContext(ctx, &profiles, `SELECT COUNT(*) FROM profiles`); err != nil {
		return fmt.Errorf("failed to count profiles: %w", err)
	}
	if profiles == 0 {
		if _, err := db.ExecContext(ctx,
			`INSERT INTO profiles (id, unit_id, title, description) VALUES (?, ?, ?, ?)`,
			1, 1, defaultProfileTitle, defaultProfileDescription,
		); err != nil {
			return fmt.Errorf("failed to seed default profile: %w", err)
		}
	}

	return nil
}
