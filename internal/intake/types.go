package intake

import (
	"time"

	"github.com/google/uuid"
)

// Role identifies who authored a chat turn.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// ChatMessage is one turn of the intake conversation. Ordering is
// insertion order and significant; messages are never reordered or dropped.
type ChatMessage struct {
	Role      Role   `json:"role"`
	Content   string `json:"content"`
	Timestamp string `json:"timestamp,omitempty"` // RFC3339
}

// Severity is the patient-reported symptom severity.
type Severity string

const (
	SeverityMild     Severity = "mild"
	SeverityModerate Severity = "moderate"
	SeveritySevere   Severity = "severe"
)

// Medication is one entry in the patient's current medication list.
type Medication struct {
	Name      string `json:"name"`
	Dosage    string `json:"dosage"`
	Frequency string `json:"frequency"`
}

// Lifestyle groups the free-text lifestyle answers.
type Lifestyle struct {
	Exercise string `json:"exercise"`
	Diet     string `json:"diet"`
	Sleep    string `json:"sleep"`
	Stress   string `json:"stress"`
}

// IntakeRecord is the structured clinical data extracted from a completed
// intake conversation. currentSymptoms, symptomDuration and symptomSeverity
// are required on a validated record; everything else defaults to empty.
type IntakeRecord struct {
	CurrentSymptoms    []string     `json:"currentSymptoms"`
	SymptomDuration    string       `json:"symptomDuration"`
	SymptomSeverity    Severity     `json:"symptomSeverity"`
	SymptomTriggers    []string     `json:"symptomTriggers"`
	MedicalHistory     []string     `json:"medicalHistory"`
	CurrentMedications []Medication `json:"currentMedications"`
	Allergies          []string     `json:"allergies"`
	RecentIllnesses    []string     `json:"recentIllnesses"`
	Lifestyle          Lifestyle    `json:"lifestyle"`
	Concerns           string       `json:"concerns"`
	AdditionalInfo     string       `json:"additionalInfo"`
}

// PatientProfile links a platform user to a patient identity within a
// hospital. Profiles are created by the platform's user service; this core
// only reads them.
type PatientProfile struct {
	ID         uuid.UUID
	UserID     uuid.UUID
	HospitalID uuid.UUID
}

// Session is one patient's intake episode, from greeting to completion.
// ChatHistory is append-only while IsComplete is false and frozen after.
// StructuredData is nil until extraction runs; IsComplete only ever moves
// false -> true.
type Session struct {
	ID             uuid.UUID     `json:"id"`
	PatientID      uuid.UUID     `json:"patientId"`
	HospitalID     uuid.UUID     `json:"hospitalId"`
	ChatHistory    []ChatMessage `json:"chatHistory"`
	StructuredData *IntakeRecord `json:"structuredData"`
	IsComplete     bool          `json:"isComplete"`
	IsReviewed     bool          `json:"isReviewedByDoc"`
	CreatedAt      time.Time     `json:"createdAt"`
	UpdatedAt      time.Time     `json:"updatedAt"`
}
