package repositories

import (
	"database/sql"
	"fmt"
)

// InitSchema creates the search-history table if it does not exist.
func InitSchema(db *sql.DB) error {
	q := `
	CREATE TABLE IF NOT EXISTS searches (
		id TEXT PRIMARY KEY,
		addresses JSONB NOT NULL,
		midpoint_lat DOUBLE PRECISION NOT NULL,
		midpoint_lon DOUBLE PRECISION NOT NULL,
		created_at TIMESTAMPTZ NOT NULL
	);
	CREATE INDEX IF NOT EXISTS searches_created_at_idx ON searches (created_at DESC);
	`

	if _, err := db.Exec(q); err != nil {
		return fmt.Errorf("init schema: create searches table: %w", err)
	}
	return nil
}
