package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/carebridge-health/intake/internal/auth"
	"github.com/carebridge-health/intake/internal/intake"
)

type Server struct {
	router *chi.Mux
	port   int
	intake *intake.Service
	logger *slog.Logger
}

func NewServer(port int, svc *intake.Service, validator *auth.Validator, logger *slog.Logger) *Server {
	router := chi.NewRouter()
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)

	s := &Server{
		router: router,
		port:   port,
		intake: svc,
		logger: logger,
	}

	router.Get("/health", s.health)

	router.Route("/api/v1/intake", func(r chi.Router) {
		r.Use(auth.Middleware(validator))

		r.Group(func(r chi.Router) {
			r.Use(auth.RequireRole(auth.RolePatient))
			r.Get("/", s.getIntake)
			r.Post("/messages", s.postMessage)
			r.Post("/complete", s.postComplete)
		})

		r.Group(func(r chi.Router) {
			r.Use(auth.RequireRole(auth.RoleDoctor))
			r.Get("/pending", s.listPending)
			r.Post("/{id}/review", s.postReview)
		})
	})

	return s
}

func (s *Server) Start() error {
	addr := fmt.Sprintf(":%d", s.port)
	s.logger.Info("API server starting", "addr", addr)
	return http.ListenAndServe(addr, s.router)
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// writeServiceError maps the intake error taxonomy onto stable status codes.
func (s *Server) writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, intake.ErrEmptyMessage):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, intake.ErrProfileNotFound), errors.Is(err, intake.ErrSessionNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, intake.ErrSessionComplete),
		errors.Is(err, intake.ErrSessionIncomplete),
		errors.Is(err, intake.ErrAlreadyReviewed):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, intake.ErrGenerationFailed):
		writeError(w, http.StatusInternalServerError, intake.ErrGenerationFailed.Error())
	default:
		s.logger.Error("request failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}
