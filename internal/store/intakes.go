package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/carebridge-health/intake/internal/intake"
)

const sessionColumns = `id, patient_id, hospital_id, chat_history, structured_data, is_complete, is_reviewed, created_at, updated_at`

func scanSession(row pgx.Row) (*intake.Session, error) {
	var (
		sess       intake.Session
		historyRaw string
		recordRaw  *string
	)
	err := row.Scan(&sess.ID, &sess.PatientID, &sess.HospitalID, &historyRaw, &recordRaw,
		&sess.IsComplete, &sess.IsReviewed, &sess.CreatedAt, &sess.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(historyRaw), &sess.ChatHistory); err != nil {
		return nil, fmt.Errorf("decode chat history: %w", err)
	}
	if recordRaw != nil {
		var record intake.IntakeRecord
		if err := json.Unmarshal([]byte(*recordRaw), &record); err != nil {
			return nil, fmt.Errorf("decode structured data: %w", err)
		}
		sess.StructuredData = &record
	}
	return &sess, nil
}

// IncompleteSession returns the single incomplete session for a patient at a
// hospital, or (nil, nil) when none exists.
func (s *Store) IncompleteSession(ctx context.Context, patientID, hospitalID uuid.UUID) (*intake.Session, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT `+sessionColumns+`
		FROM intake_sessions
		WHERE patient_id = $1 AND hospital_id = $2 AND NOT is_complete`,
		patientID, hospitalID,
	)
	sess, err := scanSession(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("select incomplete session: %w", err)
	}
	return sess, nil
}

// SessionByID returns a session by id, or (nil, nil) when unknown.
// Ownership checks belong to the caller.
func (s *Store) SessionByID(ctx context.Context, id uuid.UUID) (*intake.Session, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT `+sessionColumns+`
		FROM intake_sessions
		WHERE id = $1`,
		id,
	)
	sess, err := scanSession(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("select session: %w", err)
	}
	return sess, nil
}

// CreateSession inserts a new session with its seeded chat history.
func (s *Store) CreateSession(ctx context.Context, sess *intake.Session) error {
	history, err := json.Marshal(sess.ChatHistory)
	if err != nil {
		return fmt.Errorf("encode chat history: %w", err)
	}
	_, err = s.pool.Exec(ctx, `
		INSERT INTO intake_sessions (id, patient_id, hospital_id, chat_history, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $5)`,
		sess.ID, sess.PatientID, sess.HospitalID, string(history), sess.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert session: %w", err)
	}
	return nil
}

// UpdateChatHistory replaces the stored transcript in one atomic row update.
// The user turn and the assistant reply always land together; there is no
// intermediate state with only one of them persisted.
func (s *Store) UpdateChatHistory(ctx context.Context, id uuid.UUID, history []intake.ChatMessage) error {
	payload, err := json.Marshal(history)
	if err != nil {
		return fmt.Errorf("encode chat history: %w", err)
	}
	_, err = s.pool.Exec(ctx, `
		UPDATE intake_sessions
		SET chat_history = $1, updated_at = now()
		WHERE id = $2 AND NOT is_complete`,
		string(payload), id,
	)
	if err != nil {
		return fmt.Errorf("update chat history: %w", err)
	}
	return nil
}

// CompleteSession attaches the structured record and flips is_complete in a
// single update. is_complete only ever moves false -> true.
func (s *Store) CompleteSession(ctx context.Context, id uuid.UUID, record *intake.IntakeRecord) error {
	payload, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("encode structured data: %w", err)
	}
	_, err = s.pool.Exec(ctx, `
		UPDATE intake_sessions
		SET structured_data = $1, is_complete = TRUE, updated_at = now()
		WHERE id = $2 AND NOT is_complete`,
		string(payload), id,
	)
	if err != nil {
		return fmt.Errorf("complete session: %w", err)
	}
	return nil
}

// CompletedUnreviewed lists completed sessions awaiting doctor review for a
// hospital, oldest first.
func (s *Store) CompletedUnreviewed(ctx context.Context, hospitalID uuid.UUID) ([]intake.Session, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT `+sessionColumns+`
		FROM intake_sessions
		WHERE hospital_id = $1 AND is_complete AND NOT is_reviewed
		ORDER BY updated_at ASC`,
		hospitalID,
	)
	if err != nil {
		return nil, fmt.Errorf("select pending review: %w", err)
	}
	defer rows.Close()

	var sessions []intake.Session
	for rows.Next() {
		sess, err := scanSession(rows)
		if err != nil {
			return nil, fmt.Errorf("scan session: %w", err)
		}
		sessions = append(sessions, *sess)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate sessions: %w", err)
	}
	return sessions, nil
}

// MarkReviewed flags a completed session as reviewed by a doctor.
func (s *Store) MarkReviewed(ctx context.Context, id uuid.UUID) error {
	_, err := s.pool.Exec(ctx, `
		UPDATE intake_sessions
		SET is_reviewed = TRUE, updated_at = now()
		WHERE id = $1 AND is_complete`,
		id,
	)
	if err != nil {
		return fmt.Errorf("mark reviewed: %w", err)
	}
	return nil
}
