package api

import (
	"encoding/json"
	"net/http"

	"github.com/google/uuid"

	"github.com/carebridge-health/intake/internal/auth"
	"github.com/carebridge-health/intake/internal/intake"
)

// intakeResponse is the patient-facing view of a session.
type intakeResponse struct {
	ID             uuid.UUID            `json:"id"`
	ChatHistory    []intake.ChatMessage `json:"chatHistory"`
	StructuredData *intake.IntakeRecord `json:"structuredData"`
	IsComplete     bool                 `json:"isComplete"`
}

type messageRequest struct {
	SessionID uuid.UUID `json:"sessionId"`
	Message   string    `json:"message"`
}

type messageResponse struct {
	Reply       string               `json:"reply"`
	ChatHistory []intake.ChatMessage `json:"chatHistory"`
}

type completeRequest struct {
	SessionID uuid.UUID `json:"sessionId"`
}

type completeResponse struct {
	Success bool                 `json:"success"`
	Data    *intake.IntakeRecord `json:"data"`
	Summary string               `json:"summary"`
}

// getIntake handles GET /api/v1/intake — fetch-or-create the caller's
// current intake session.
func (s *Server) getIntake(w http.ResponseWriter, r *http.Request) {
	identity, _ := auth.IdentityFrom(r.Context())

	sess, err := s.intake.GetOrCreate(r.Context(), identity.UserID)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, intakeResponse{
		ID:             sess.ID,
		ChatHistory:    sess.ChatHistory,
		StructuredData: sess.StructuredData,
		IsComplete:     sess.IsComplete,
	})
}

// postMessage handles POST /api/v1/intake/messages — one conversational
// exchange.
func (s *Server) postMessage(w http.ResponseWriter, r *http.Request) {
	identity, _ := auth.IdentityFrom(r.Context())

	var req messageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	history, reply, err := s.intake.AppendUserMessage(r.Context(), identity.UserID, req.SessionID, req.Message)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, messageResponse{Reply: reply, ChatHistory: history})
}

// postComplete handles POST /api/v1/intake/complete — run extraction and
// finalize the session.
func (s *Server) postComplete(w http.ResponseWriter, r *http.Request) {
	identity, _ := auth.IdentityFrom(r.Context())

	var req completeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	record, summary, err := s.intake.Complete(r.Context(), identity.UserID, req.SessionID)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, completeResponse{Success: true, Data: record, Summary: summary})
}
