package store

import (
	"context"
	"fmt"
)

// Schema is applied at boot and is idempotent. The partial unique index on
// intake_sessions enforces the one-incomplete-session-per-patient invariant
// at the engine level, backstopping the service-side check under concurrent
// creates.
var migrations = []string{
	`CREATE TABLE IF NOT EXISTS patient_profiles (
		id UUID PRIMARY KEY,
		user_id UUID NOT NULL UNIQUE,
		hospital_id UUID NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS intake_sessions (
		id UUID PRIMARY KEY,
		patient_id UUID NOT NULL,
		hospital_id UUID NOT NULL,
		chat_history TEXT NOT NULL,
		structured_data TEXT,
		is_complete BOOLEAN NOT NULL DEFAULT FALSE,
		is_reviewed BOOLEAN NOT NULL DEFAULT FALSE,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS intake_sessions_one_incomplete
		ON intake_sessions (patient_id, hospital_id)
		WHERE NOT is_complete`,
	`CREATE INDEX IF NOT EXISTS intake_sessions_pending_review
		ON intake_sessions (hospital_id)
		WHERE is_complete AND NOT is_reviewed`,
}

// Migrate creates the schema if it does not exist.
func (s *Store) Migrate(ctx context.Context) error {
	for i, stmt := range migrations {
		if _, err := s.pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("migration %d: %w", i, err)
		}
	}
	return nil
}
