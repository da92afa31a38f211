package postgres

import (
	"database/sql"
	"fmt"
)

// EnsureSchema creates the lists table if it does not exist. Safe to call on
// every startup.
func EnsureSchema(db *sql.DB) error {
	if _, err := db.Exec(schema); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	return nil
}

const schema = `
CREATE TABLE IF NOT EXISTS lists (
    id TEXT PRIMARY KEY,
    name TEXT NOT NULL,
    owner_id TEXT NOT NULL,
    collaborators TEXT[] NOT NULL DEFAULT '{}',
    pending_collaborators TEXT[] NOT NULL DEFAULT '{}',
    collaborator_details JSONB NOT NULL DEFAULT '{}',
    color_assignments JSONB NOT NULL DEFAULT '{}',
    places JSONB NOT NULL DEFAULT '[]',
    places_count INTEGER NOT NULL DEFAULT 0,
    share_code_hash TEXT,
    last_activity JSONB,
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS idx_lists_owner_id ON lists(owner_id);
CREATE INDEX IF NOT EXISTS idx_lists_collaborators ON lists USING GIN (collaborators);
`
