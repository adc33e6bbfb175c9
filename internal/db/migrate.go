package db

import (
	"database/sql"
	"fmt"
)

// Migrate runs all schema migrations. Every statement is idempotent.
func Migrate(db *sql.DB) error {
	for i, stmt := range migrations {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("migration %d: %w", i, err)
		}
	}
	return nil
}

var migrations = []string{
	`CREATE TABLE IF NOT EXISTS scenarios (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL UNIQUE,
		plan_json TEXT NOT NULL,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS recommendations (
		id TEXT PRIMARY KEY,
		scenario_name TEXT NOT NULL DEFAULT '',
		requested_at TEXT NOT NULL,
		degraded INTEGER NOT NULL DEFAULT 0 CHECK (degraded IN (0, 1)),
		alert TEXT NOT NULL DEFAULT '',
		suggestion_count INTEGER NOT NULL DEFAULT 0 CHECK (suggestion_count >= 0),
		response_json TEXT NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_recommendations_requested ON recommendations(requested_at)`,
	`CREATE INDEX IF NOT EXISTS idx_recommendations_scenario ON recommendations(scenario_name)`,
}
