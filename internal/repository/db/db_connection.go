package db

import (
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"
)

// InitDB opens/creates a SQLite DB file and ensures tables exist.
func InitDB(path string) (*sql.DB, error) {
	db, err := sql.Open(sqliteDriverName, path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite at %q: %w", path, err)
	}

	// Conservative pool settings for SQLite
	db.SetMaxOpenConns(1) // SQLite is not great with many writers
	db.SetMaxIdleConns(1)

	// Pragmas to improve reliability
	if _, err := db.Exec("PRAGMA journal_mode = WAL;"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("set PRAGMA journal_mode=WAL: %w", err)
	}
	if _, err := db.Exec("PRAGMA foreign_keys = ON;"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("set PRAGMA foreign_keys=ON: %w", err)
	}
	if _, err := db.Exec("PRAGMA busy_timeout = 5000;"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("set PRAGMA busy_timeout=5000: %w", err)
	}

	if err := ensureSchema(db); err != nil {
		_ = db.Close()
		return nil, err
	}

	// Fail fast if the DB cannot be reached
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}

	return db, nil
}

const sqliteDriverName = "sqlite"

const schemaRoastSessions = `
CREATE TABLE IF NOT EXISTS roast_sessions (
    id TEXT PRIMARY KEY,
    user_id INTEGER NOT NULL REFERENCES users(id) ON DELETE CASCADE,
    bean_profile TEXT NOT NULL DEFAULT '',
    roast_level TEXT NOT NULL DEFAULT '',
    machine TEXT NOT NULL DEFAULT '',
    weight_before_g REAL,
    weight_after_g REAL,
    created_at TIMESTAMP NOT NULL,
    updated_at TIMESTAMP NOT NULL
);
`

const indexRoastSessionsUser = `CREATE INDEX IF NOT EXISTS idx_roast_sessions_user ON roast_sessions(user_id, created_at)`

const schemaRoastEvents = `
CREATE TABLE IF NOT EXISTS roast_events (
    id TEXT PRIMARY KEY,
    roast_id TEXT NOT NULL REFERENCES roast_sessions(id) ON DELETE CASCADE,
    kind TEXT NOT NULL CHECK (kind IN ('SET','DRY_END','FIRST_CRACK','SECOND_CRACK','COOL','DROP','END')),
    time_offset_s INTEGER NOT NULL CHECK (time_offset_s >= 0),
    temperature_f REAL,
    fan_level INTEGER CHECK (fan_level BETWEEN 0 AND 9),
    heat_level INTEGER CHECK (heat_level BETWEEN 0 AND 9),
    note TEXT,
    created_at TIMESTAMP NOT NULL
);
`

const indexRoastEventsRoast = `CREATE INDEX IF NOT EXISTS idx_roast_events_roast ON roast_events(roast_id, time_offset_s)`

const schemaUsers = `
CREATE TABLE IF NOT EXISTS users (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    username TEXT UNIQUE NOT NULL,
    password_hash TEXT NOT NULL
);
`

func ensureSchema(db *sql.DB) error {
	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("begin schema transaction: %w", err)
	}
	defer func() {
		// In case of panic, rollback to avoid leaving an open transaction
		_ = tx.Rollback()
	}()

	for i, stmt := range []string{
		schemaUsers,
		schemaRoastSessions,
		schemaRoastEvents,
		indexRoastSessionsUser,
		indexRoastEventsRoast,
	} {
		if _, err := tx.Exec(stmt); err != nil {
			return fmt.Errorf("apply schema statement %d: %w", i+1, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit schema transaction: %w", err)
	}
	return nil
}
