package intake

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/carebridge-health/intake/internal/llm"
)

const conversationMaxTokens = 600

// SessionStore is the durable record store behind the state machine. Lookup
// methods return (nil, nil) when no matching row exists; the service maps
// that to its sentinel errors.
type SessionStore interface {
	PatientProfileByUser(ctx context.Context, userID uuid.UUID) (*PatientProfile, error)
	IncompleteSession(ctx context.Context, patientID, hospitalID uuid.UUID) (*Session, error)
	SessionByID(ctx context.Context, id uuid.UUID) (*Session, error)
	CreateSession(ctx context.Context, s *Session) error
	UpdateChatHistory(ctx context.Context, id uuid.UUID, history []ChatMessage) error
	CompleteSession(ctx context.Context, id uuid.UUID, record *IntakeRecord) error
	CompletedUnreviewed(ctx context.Context, hospitalID uuid.UUID) ([]Session, error)
	MarkReviewed(ctx context.Context, id uuid.UUID) error
}

// Publisher emits domain events for downstream consumers (doctor dashboards
// and the like). A nil Publisher disables events.
type Publisher interface {
	Publish(subject string, data any) error
}

// Event subjects published by the service.
const (
	SubjectIntakeCompleted = "clinic.intake.completed"
	SubjectIntakeReviewed  = "clinic.intake.reviewed"
)

// CompletedEvent is the payload for SubjectIntakeCompleted.
type CompletedEvent struct {
	SessionID   string `json:"session_id"`
	PatientID   string `json:"patient_id"`
	HospitalID  string `json:"hospital_id"`
	Symptoms    int    `json:"symptoms"`
	Medications int    `json:"medications"`
	Degraded    bool   `json:"degraded"`
}

// ReviewedEvent is the payload for SubjectIntakeReviewed.
type ReviewedEvent struct {
	SessionID  string `json:"session_id"`
	HospitalID string `json:"hospital_id"`
	DoctorID   string `json:"doctor_id"`
}

// Service is the intake session state machine: fetch-or-create, message
// exchange, completion, and the doctor review flow. Mutating operations on
// one session are serialized through a per-session lock; sessions for
// different patients never contend.
type Service struct {
	store     SessionStore
	llm       llm.Client
	extractor *Extractor
	events    Publisher
	logger    *slog.Logger

	mu    sync.Mutex
	locks map[uuid.UUID]*sync.Mutex
}

func NewService(store SessionStore, client llm.Client, events Publisher, logger *slog.Logger) *Service {
	return &Service{
		store:     store,
		llm:       client,
		extractor: NewExtractor(client, logger),
		events:    events,
		logger:    logger,
		locks:     make(map[uuid.UUID]*sync.Mutex),
	}
}

func (s *Service) sessionLock(id uuid.UUID) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.locks[id]
	if !ok {
		l = &sync.Mutex{}
		s.locks[id] = l
	}
	return l
}

// dropSessionLock removes a terminal session's lock entry so the map does
// not grow for the process lifetime. Late callers get a fresh mutex and
// fail fast on the completed session.
func (s *Service) dropSessionLock(id uuid.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.locks, id)
}

// GetOrCreate returns the caller's current incomplete session, creating one
// seeded with the opening greeting when none exists. Repeated calls while a
// session is incomplete return the same session.
func (s *Service) GetOrCreate(ctx context.Context, userID uuid.UUID) (*Session, error) {
	profile, err := s.resolveProfile(ctx, userID)
	if err != nil {
		return nil, err
	}

	sess, err := s.store.IncompleteSession(ctx, profile.ID, profile.HospitalID)
	if err != nil {
		return nil, fmt.Errorf("find incomplete session: %w", err)
	}
	if sess != nil {
		return sess, nil
	}

	now := time.Now().UTC()
	sess = &Session{
		ID:         uuid.New(),
		PatientID:  profile.ID,
		HospitalID: profile.HospitalID,
		ChatHistory: []ChatMessage{{
			Role:      RoleAssistant,
			Content:   openingGreeting,
			Timestamp: now.Format(time.RFC3339),
		}},
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.store.CreateSession(ctx, sess); err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}

	s.logger.Info("intake session created",
		"session_id", sess.ID,
		"patient_id", profile.ID,
		"hospital_id", profile.HospitalID,
	)
	return sess, nil
}

// AppendUserMessage adds the patient's message, obtains the assistant reply
// under the intake prompt policy, and persists both turns as one atomic
// update. On a failed model call nothing is persisted and ErrGenerationFailed
// is returned. Returns the updated transcript and the reply.
func (s *Service) AppendUserMessage(ctx context.Context, userID, sessionID uuid.UUID, text string) ([]ChatMessage, string, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, "", ErrEmptyMessage
	}

	profile, err := s.resolveProfile(ctx, userID)
	if err != nil {
		return nil, "", err
	}

	lock := s.sessionLock(sessionID)
	lock.Lock()
	defer lock.Unlock()

	sess, err := s.ownedSession(ctx, sessionID, profile.ID)
	if err != nil {
		return nil, "", err
	}
	if sess.IsComplete {
		return nil, "", ErrSessionComplete
	}

	msgs := make([]llm.Message, 0, len(sess.ChatHistory)+1)
	for _, m := range sess.ChatHistory {
		msgs = append(msgs, llm.Message{Role: string(m.Role), Content: m.Content})
	}
	msgs = append(msgs, llm.Message{Role: string(RoleUser), Content: text})

	reply, err := s.llm.Complete(ctx, conversationSystemPrompt, msgs, conversationMaxTokens)
	if err != nil {
		s.logger.Error("assistant reply failed", "session_id", sessionID, "error", err)
		return nil, "", fmt.Errorf("%w: %v", ErrGenerationFailed, err)
	}

	now := time.Now().UTC().Format(time.RFC3339)
	history := append(sess.ChatHistory,
		ChatMessage{Role: RoleUser, Content: text, Timestamp: now},
		ChatMessage{Role: RoleAssistant, Content: reply, Timestamp: now},
	)
	if err := s.store.UpdateChatHistory(ctx, sess.ID, history); err != nil {
		return nil, "", fmt.Errorf("persist transcript: %w", err)
	}

	return history, reply, nil
}

// Complete runs extraction over the full transcript, persists the structured
// record, and marks the session terminal. Schema failures inside extraction
// degrade to the fallback record rather than failing the call; only a failed
// model call surfaces, as ErrGenerationFailed with nothing persisted.
func (s *Service) Complete(ctx context.Context, userID, sessionID uuid.UUID) (*IntakeRecord, string, error) {
	profile, err := s.resolveProfile(ctx, userID)
	if err != nil {
		return nil, "", err
	}

	lock := s.sessionLock(sessionID)
	lock.Lock()
	defer lock.Unlock()

	sess, err := s.ownedSession(ctx, sessionID, profile.ID)
	if err != nil {
		return nil, "", err
	}
	if sess.IsComplete {
		return nil, "", ErrSessionComplete
	}

	record, err := s.extractor.Extract(ctx, sess.ID.String(), sess.ChatHistory)
	if err != nil {
		return nil, "", fmt.Errorf("%w: %v", ErrGenerationFailed, err)
	}

	if err := s.store.CompleteSession(ctx, sess.ID, record); err != nil {
		return nil, "", fmt.Errorf("persist structured data: %w", err)
	}
	s.dropSessionLock(sess.ID)

	degraded := len(record.CurrentSymptoms) == 0
	s.publish(SubjectIntakeCompleted, CompletedEvent{
		SessionID:   sess.ID.String(),
		PatientID:   sess.PatientID.String(),
		HospitalID:  sess.HospitalID.String(),
		Symptoms:    len(record.CurrentSymptoms),
		Medications: len(record.CurrentMedications),
		Degraded:    degraded,
	})

	summary := fmt.Sprintf("Intake form completed. %d symptoms recorded, %d medications listed.",
		len(record.CurrentSymptoms), len(record.CurrentMedications))
	return record, summary, nil
}

// CompletedUnreviewed lists completed sessions awaiting doctor review for a
// hospital.
func (s *Service) CompletedUnreviewed(ctx context.Context, hospitalID uuid.UUID) ([]Session, error) {
	sessions, err := s.store.CompletedUnreviewed(ctx, hospitalID)
	if err != nil {
		return nil, fmt.Errorf("list pending review: %w", err)
	}
	return sessions, nil
}

// MarkReviewed records that a doctor has reviewed a completed intake. The
// session must belong to the doctor's hospital, be complete, and not be
// reviewed already.
func (s *Service) MarkReviewed(ctx context.Context, doctorID, hospitalID, sessionID uuid.UUID) error {
	sess, err := s.store.SessionByID(ctx, sessionID)
	if err != nil {
		return fmt.Errorf("load session: %w", err)
	}
	if sess == nil || sess.HospitalID != hospitalID {
		return ErrSessionNotFound
	}
	if !sess.IsComplete {
		return ErrSessionIncomplete
	}
	if sess.IsReviewed {
		return ErrAlreadyReviewed
	}

	if err := s.store.MarkReviewed(ctx, sessionID); err != nil {
		return fmt.Errorf("mark reviewed: %w", err)
	}

	s.publish(SubjectIntakeReviewed, ReviewedEvent{
		SessionID:  sessionID.String(),
		HospitalID: hospitalID.String(),
		DoctorID:   doctorID.String(),
	})
	return nil
}

func (s *Service) resolveProfile(ctx context.Context, userID uuid.UUID) (*PatientProfile, error) {
	profile, err := s.store.PatientProfileByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("load patient profile: %w", err)
	}
	if profile == nil {
		return nil, ErrProfileNotFound
	}
	return profile, nil
}

// ownedSession loads a session and enforces ownership. Unknown ids and
// other patients' sessions are indistinguishable to the caller.
func (s *Service) ownedSession(ctx context.Context, sessionID, patientID uuid.UUID) (*Session, error) {
	sess, err := s.store.SessionByID(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}
	if sess == nil || sess.PatientID != patientID {
		return nil, ErrSessionNotFound
	}
	return sess, nil
}

func (s *Service) publish(subject string, data any) {
	if s.events == nil {
		return
	}
	if err := s.events.Publish(subject, data); err != nil {
		s.logger.Warn("event publish failed", "subject", subject, "error", err)
	}
}
