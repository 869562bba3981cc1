package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/carebridge-health/intake/internal/auth"
	"github.com/carebridge-health/intake/internal/intake"
)

type pendingResponse struct {
	Sessions []intake.Session `json:"sessions"`
	Count    int              `json:"count"`
}

// listPending handles GET /api/v1/intake/pending — completed intakes
// awaiting review at the doctor's hospital.
func (s *Server) listPending(w http.ResponseWriter, r *http.Request) {
	identity, _ := auth.IdentityFrom(r.Context())

	sessions, err := s.intake.CompletedUnreviewed(r.Context(), identity.HospitalID)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	if sessions == nil {
		sessions = []intake.Session{}
	}

	writeJSON(w, http.StatusOK, pendingResponse{Sessions: sessions, Count: len(sessions)})
}

// postReview handles POST /api/v1/intake/{id}/review.
func (s *Server) postReview(w http.ResponseWriter, r *http.Request) {
	identity, _ := auth.IdentityFrom(r.Context())

	sessionID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid session id")
		return
	}

	if err := s.intake.MarkReviewed(r.Context(), identity.UserID, identity.HospitalID, sessionID); err != nil {
		s.writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}
