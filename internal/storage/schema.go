// Package storage persists fired suggestions and observed tool calls to
// SQLite so they survive restarts. All writes go through an async
// batching writer; the hot path never blocks on the database.
package storage

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

const currentSchemaVersion = 1

func OpenDB(dbPath string) (*sql.DB, error) {
	parentDir := filepath.Dir(dbPath)
	if err := os.MkdirAll(parentDir, 0755); err != nil {
		return nil, fmt.Errorf("creating parent directories: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("enabling WAL mode: %w", err)
	}

	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("enabling foreign keys: %w", err)
	}

	if err := migrateSchema(db, dbPath); err != nil {
		_ = db.Close()
		return nil, err
	}

	return db, nil
}

func migrateSchema(db *sql.DB, dbPath string) error {
	var tableName string
	err := db.QueryRow("SELECT name FROM sqlite_master WHERE type='table' AND name='schema_version'").Scan(&tableName)

	var currentVersion int
	if err == sql.ErrNoRows {
		currentVersion = 0
	} else if err != nil {
		return fmt.Errorf("checking schema_version table: %w", err)
	} else {
		err = db.QueryRow("SELECT version FROM schema_version LIMIT 1").Scan(&currentVersion)
		if err == sql.ErrNoRows {
			currentVersion = 0
		} else if err != nil {
			return fmt.Errorf("reading schema version: %w", err)
		}
	}

	if currentVersion > currentSchemaVersion {
		return fmt.Errorf(
			"database schema version %d is newer than this cc-scout version supports (max: %d); upgrade cc-scout or delete %s to start fresh",
			currentVersion, currentSchemaVersion, dbPath,
		)
	}

	if currentVersion < currentSchemaVersion {
		if err := applyMigrations(db, currentVersion); err != nil {
			return fmt.Errorf("applying migrations: %w", err)
		}
	}

	return nil
}

func applyMigrations(db *sql.DB, fromVersion int) error {
	if fromVersion == 0 {
		if err := migrateV0ToV1(db); err != nil {
			return fmt.Errorf("migration v0→v1: %w", err)
		}
	}

	return nil
}

func migrateV0ToV1(db *sql.DB) error {
	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("starting transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	_, err = tx.Exec(`
		CREATE TABLE IF NOT EXISTS schema_version (
			version INTEGER NOT NULL
		)
	`)
	if err != nil {
		return fmt.Errorf("creating schema_version table: %w", err)
	}

	_, err = tx.Exec("INSERT INTO schema_version (version) VALUES (1)")
	if err != nil {
		return fmt.Errorf("inserting schema version: %w", err)
	}

	_, err = tx.Exec(`
		CREATE TABLE IF NOT EXISTS suggestions (
			id TEXT PRIMARY KEY,
			session_id TEXT NOT NULL,
			trigger TEXT NOT NULL,
			confidence TEXT NOT NULL,
			estimated_savings TEXT,
			suggested_query TEXT,
			context TEXT,
			fired_at TEXT NOT NULL
		)
	`)
	if err != nil {
		return fmt.Errorf("creating suggestions table: %w", err)
	}

	_, err = tx.Exec(`
		CREATE TABLE IF NOT EXISTS tool_calls (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			session_id TEXT NOT NULL,
			tool_name TEXT NOT NULL,
			args TEXT,
			result_kind TEXT,
			result_size INTEGER,
			timestamp TEXT NOT NULL
		)
	`)
	if err != nil {
		return fmt.Errorf("creating tool_calls table: %w", err)
	}

	_, err = tx.Exec("CREATE INDEX IF NOT EXISTS idx_suggestions_session ON suggestions(session_id)")
	if err != nil {
		return fmt.Errorf("creating idx_suggestions_session: %w", err)
	}

	_, err = tx.Exec("CREATE INDEX IF NOT EXISTS idx_suggestions_fired ON suggestions(fired_at)")
	if err != nil {
		return fmt.Errorf("creating idx_suggestions_fired: %w", err)
	}

	_, err = tx.Exec("CREATE INDEX IF NOT EXISTS idx_tool_calls_session ON tool_calls(session_id)")
	if err != nil {
		return fmt.Errorf("creating idx_tool_calls_session: %w", err)
	}

	_, err = tx.Exec("CREATE INDEX IF NOT EXISTS idx_tool_calls_ts ON tool_calls(timestamp)")
	if err != nil {
		return fmt.Errorf("creating idx_tool_calls_ts: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}

	return nil
}
