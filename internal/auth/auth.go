// Package auth validates the platform's bearer tokens and resolves them to a
// caller identity. Token issuance lives in the platform's auth service; this
// service only verifies.
package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Role is the platform role carried in the token.
type Role string

const (
	RolePatient Role = "patient"
	RoleDoctor  Role = "doctor"
	RoleAdmin   Role = "admin"
)

// Identity is the authenticated caller as seen by request handlers.
type Identity struct {
	UserID     uuid.UUID
	HospitalID uuid.UUID
	Role       Role
}

// Claims is the JWT payload shared with the platform's auth service.
// Subject carries the user id.
type Claims struct {
	HospitalID string `json:"hospital_id"`
	Role       string `json:"role"`
	jwt.RegisteredClaims
}

type Validator struct {
	secret []byte
}

func NewValidator(secret string) *Validator {
	return &Validator{secret: []byte(secret)}
}

// ValidateToken parses and verifies an HS256 token and returns the identity
// it carries.
func (v *Validator) ValidateToken(token string) (*Identity, error) {
	parsed, err := jwt.ParseWithClaims(token, &Claims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return v.secret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("parse token: %w", err)
	}

	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid {
		return nil, fmt.Errorf("invalid token claims")
	}

	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return nil, fmt.Errorf("invalid subject: %w", err)
	}
	hospitalID, err := uuid.Parse(claims.HospitalID)
	if err != nil {
		return nil, fmt.Errorf("invalid hospital id: %w", err)
	}

	return &Identity{
		UserID:     userID,
		HospitalID: hospitalID,
		Role:       Role(claims.Role),
	}, nil
}

// SignToken issues a token for an identity. Used by tests and local tooling;
// production tokens come from the platform's auth service with the same
// shared secret.
func (v *Validator) SignToken(id Identity, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := Claims{
		HospitalID: id.HospitalID.String(),
		Role:       string(id.Role),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   id.UserID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(v.secret)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}

type contextKey struct{}

// IdentityFrom returns the authenticated identity stored by Middleware.
func IdentityFrom(ctx context.Context) (*Identity, bool) {
	id, ok := ctx.Value(contextKey{}).(*Identity)
	return id, ok
}

// Middleware rejects requests without a valid bearer token and stores the
// identity in the request context.
func Middleware(v *Validator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if !strings.HasPrefix(header, "Bearer ") {
				writeError(w, http.StatusUnauthorized, "unauthorized")
				return
			}
			identity, err := v.ValidateToken(strings.TrimPrefix(header, "Bearer "))
			if err != nil {
				writeError(w, http.StatusUnauthorized, "unauthorized")
				return
			}
			next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), contextKey{}, identity)))
		})
	}
}

// RequireRole rejects authenticated callers whose role does not match.
func RequireRole(role Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			identity, ok := IdentityFrom(r.Context())
			if !ok || identity.Role != role {
				writeError(w, http.StatusForbidden, "forbidden")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
