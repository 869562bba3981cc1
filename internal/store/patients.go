package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/carebridge-health/intake/internal/intake"
)

// PatientProfileByUser returns the patient profile linked to a platform user,
// or (nil, nil) when the user has none.
func (s *Store) PatientProfileByUser(ctx context.Context, userID uuid.UUID) (*intake.PatientProfile, error) {
	var p intake.PatientProfile
	err := s.pool.QueryRow(ctx, `
		SELECT id, user_id, hospital_id
		FROM patient_profiles
		WHERE user_id = $1`,
		userID,
	).Scan(&p.ID, &p.UserID, &p.HospitalID)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("select patient profile: %w", err)
	}
	return &p, nil
}
