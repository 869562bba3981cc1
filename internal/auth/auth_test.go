package auth

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
)

func testIdentity() Identity {
	return Identity{
		UserID:     uuid.New(),
		HospitalID: uuid.New(),
		Role:       RolePatient,
	}
}

func TestSignAndValidate(t *testing.T) {
	v := NewValidator("test-secret")
	want := testIdentity()

	token, err := v.SignToken(want, time.Hour)
	if err != nil {
		t.Fatalf("sign failed: %v", err)
	}

	got, err := v.ValidateToken(token)
	if err != nil {
		t.Fatalf("validate failed: %v", err)
	}
	if got.UserID != want.UserID {
		t.Errorf("expected user %s, got %s", want.UserID, got.UserID)
	}
	if got.HospitalID != want.HospitalID {
		t.Errorf("expected hospital %s, got %s", want.HospitalID, got.HospitalID)
	}
	if got.Role != RolePatient {
		t.Errorf("expected role patient, got %q", got.Role)
	}
}

func TestValidate_WrongSecret(t *testing.T) {
	token, err := NewValidator("secret-a").SignToken(testIdentity(), time.Hour)
	if err != nil {
		t.Fatalf("sign failed: %v", err)
	}

	if _, err := NewValidator("secret-b").ValidateToken(token); err == nil {
		t.Error("expected error for token signed with a different secret")
	}
}

func TestValidate_Expired(t *testing.T) {
	v := NewValidator("test-secret")
	token, err := v.SignToken(testIdentity(), -time.Minute)
	if err != nil {
		t.Fatalf("sign failed: %v", err)
	}

	if _, err := v.ValidateToken(token); err == nil {
		t.Error("expected error for expired token")
	}
}

func TestValidate_Garbage(t *testing.T) {
	if _, err := NewValidator("test-secret").ValidateToken("not-a-token"); err == nil {
		t.Error("expected error for malformed token")
	}
}

func TestMiddleware(t *testing.T) {
	v := NewValidator("test-secret")
	identity := testIdentity()
	token, _ := v.SignToken(identity, time.Hour)

	var seen *Identity
	handler := Middleware(v)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen, _ = IdentityFrom(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	tests := []struct {
		name       string
		authHeader string
		wantStatus int
	}{
		{"valid token", "Bearer " + token, http.StatusOK},
		{"missing header", "", http.StatusUnauthorized},
		{"wrong scheme", "Basic abc123", http.StatusUnauthorized},
		{"invalid token", "Bearer garbage", http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			seen = nil
			req := httptest.NewRequest("GET", "/", nil)
			if tt.authHeader != "" {
				req.Header.Set("Authorization", tt.authHeader)
			}
			w := httptest.NewRecorder()
			handler.ServeHTTP(w, req)

			if w.Code != tt.wantStatus {
				t.Errorf("expected %d, got %d", tt.wantStatus, w.Code)
			}
			if tt.wantStatus == http.StatusOK {
				if seen == nil || seen.UserID != identity.UserID {
					t.Error("expected identity in request context")
				}
			}
		})
	}
}

func TestMiddleware_JSONErrorPayloads(t *testing.T) {
	v := NewValidator("test-secret")
	handler := Middleware(v)(RequireRole(RoleDoctor)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})))

	patientToken, _ := v.SignToken(testIdentity(), time.Hour)

	tests := []struct {
		name       string
		authHeader string
		wantStatus int
		wantError  string
	}{
		{"unauthorized", "Bearer garbage", http.StatusUnauthorized, "unauthorized"},
		{"forbidden", "Bearer " + patientToken, http.StatusForbidden, "forbidden"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/", nil)
			req.Header.Set("Authorization", tt.authHeader)
			w := httptest.NewRecorder()
			handler.ServeHTTP(w, req)

			if w.Code != tt.wantStatus {
				t.Fatalf("expected %d, got %d", tt.wantStatus, w.Code)
			}
			if ct := w.Header().Get("Content-Type"); ct != "application/json" {
				t.Errorf("expected application/json, got %q", ct)
			}
			var body map[string]string
			if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
				t.Fatalf("failed to decode error body: %v", err)
			}
			if body["error"] != tt.wantError {
				t.Errorf("expected error %q, got %q", tt.wantError, body["error"])
			}
		})
	}
}

func TestRequireRole(t *testing.T) {
	v := NewValidator("test-secret")
	patient := testIdentity()
	patientToken, _ := v.SignToken(patient, time.Hour)

	doctor := testIdentity()
	doctor.Role = RoleDoctor
	doctorToken, _ := v.SignToken(doctor, time.Hour)

	handler := Middleware(v)(RequireRole(RoleDoctor)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})))

	req := httptest.NewRequest("GET", "/", nil)
	req.Header.Set("Authorization", "Bearer "+doctorToken)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Errorf("expected 200 for doctor, got %d", w.Code)
	}

	req = httptest.NewRequest("GET", "/", nil)
	req.Header.Set("Authorization", "Bearer "+patientToken)
	w = httptest.NewRecorder()
	handler.ServeHTTP(w, req)
	if w.Code != http.StatusForbidden {
		t.Errorf("expected 403 for patient on doctor route, got %d", w.Code)
	}
}
