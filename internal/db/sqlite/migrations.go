package sqlite

import (
	"database/sql"
	"fmt"
)

// migrations are applied in order; schema_version tracks the last one run.
var migrations = []string{
	// 1: base schema
	`
	CREATE TABLE IF NOT EXISTS sessions (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		date TEXT NOT NULL,
		start1_epoch INTEGER,
		stop1_epoch INTEGER,
		start2_epoch INTEGER,
		stop2_epoch INTEGER,
		total_hours REAL NOT NULL DEFAULT 0,
		sync_status TEXT NOT NULL DEFAULT 'pending',
		has_conflict INTEGER NOT NULL DEFAULT 0,
		created_at TEXT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_sessions_date ON sessions(date);
	CREATE INDEX IF NOT EXISTS idx_sessions_sync_status ON sessions(sync_status);

	CREATE TABLE IF NOT EXISTS pauses (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		session_id INTEGER NOT NULL REFERENCES sessions(id) ON DELETE CASCADE,
		start_epoch INTEGER NOT NULL,
		end_epoch INTEGER
	);
	CREATE INDEX IF NOT EXISTS idx_pauses_session ON pauses(session_id);

	CREATE TABLE IF NOT EXISTS settings (
		id INTEGER PRIMARY KEY CHECK (id = 1),
		dark_mode INTEGER,
		auto_sync_enabled INTEGER NOT NULL DEFAULT 1,
		offline_cache_enabled INTEGER NOT NULL DEFAULT 1,
		cloud_sync_enabled INTEGER NOT NULL DEFAULT 0,
		notifications_enabled INTEGER NOT NULL DEFAULT 1,
		language TEXT NOT NULL DEFAULT 'en'
	);
	`,
}

// runMigrations applies any unapplied migrations.
func runMigrations(db *sql.DB) error {
	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS schema_version (version INTEGER NOT NULL)`); err != nil {
		return fmt.Errorf("create schema_version: %w", err)
	}

	var version int
	err := db.QueryRow(`SELECT COALESCE(MAX(version), 0) FROM schema_version`).Scan(&version)
	if err != nil {
		return fmt.Errorf("read schema version: %w", err)
	}

	for i := version; i < len(migrations); i++ {
		tx, err := db.Begin()
		if err != nil {
			return err
		}
		if _, err := tx.Exec(migrations[i]); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("apply migration %d: %w", i+1, err)
		}
		if _, err := tx.Exec(`INSERT INTO schema_version (version) VALUES (?)`, i+1); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("record migration %d: %w", i+1, err)
		}
		if err := tx.Commit(); err != nil {
			return err
		}
	}
	return nil
}
