package storage

import (
	"database/sql"
	"fmt"
)

const currentSchemaVersion = 1

// initializeSchema creates all tables for a new database
func (db *DB) initializeSchema() error {
	return db.WithTx(func(tx *sql.Tx) error {
		statements := []string{
			`CREATE TABLE IF NOT EXISTS schema_version (
				version INTEGER NOT NULL
			)`,
			`CREATE TABLE IF NOT EXISTS sessions (
				id         TEXT PRIMARY KEY,
				data       TEXT NOT NULL,
				updated_at TEXT NOT NULL DEFAULT (datetime('now'))
			)`,
			`CREATE TABLE IF NOT EXISTS rounds (
				session_id TEXT NOT NULL REFERENCES sessions(id) ON DELETE CASCADE,
				number     INTEGER NOT NULL,
				data       TEXT NOT NULL,
				PRIMARY KEY (session_id, number)
			)`,
			`CREATE TABLE IF NOT EXISTS issues (
				session_id TEXT NOT NULL REFERENCES sessions(id) ON DELETE CASCADE,
				id         TEXT NOT NULL,
				data       TEXT NOT NULL,
				PRIMARY KEY (session_id, id)
			)`,
			`CREATE TABLE IF NOT EXISTS checkpoints (
				session_id TEXT NOT NULL REFERENCES sessions(id) ON DELETE CASCADE,
				id         TEXT NOT NULL,
				round      INTEGER NOT NULL,
				hash       TEXT NOT NULL,
				taken_at   TEXT NOT NULL,
				snapshot   BLOB NOT NULL,
				PRIMARY KEY (session_id, id)
			)`,
			`CREATE INDEX IF NOT EXISTS idx_checkpoints_round
				ON checkpoints(session_id, round)`,
		}
		for _, stmt := range statements {
			if _, err := tx.Exec(stmt); err != nil {
				return fmt.Errorf("failed to create schema: %w", err)
			}
		}
		return setSchemaVersion(tx, currentSchemaVersion)
	})
}

// runMigrations runs any pending schema migrations
func (db *DB) runMigrations() error {
	version, err := db.getSchemaVersion()
	if err != nil {
		return err
	}
	if version == currentSchemaVersion {
		return nil
	}

	db.logger.Info("Running database migrations", map[string]interface{}{
		"from_version": version,
		"to_version":   currentSchemaVersion,
	})

	// Migration functions go here as the schema evolves
	return nil
}

func (db *DB) getSchemaVersion() (int, error) {
	var tableName string
	err := db.QueryRow(`
		SELECT name FROM sqlite_master
		WHERE type='table' AND name='schema_version'
	`).Scan(&tableName)
	if err == sql.ErrNoRows {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}

	var version int
	err = db.QueryRow("SELECT version FROM schema_version LIMIT 1").Scan(&version)
	if err == sql.ErrNoRows {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return version, nil
}

func setSchemaVersion(tx *sql.Tx, version int) error {
	if _, err := tx.Exec("DELETE FROM schema_version"); err != nil {
		return err
	}
	_, err := tx.Exec("INSERT INTO schema_version (version) VALUES (?)", version)
	return err
}
