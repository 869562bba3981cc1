package intake

import (
	"errors"
	"fmt"
)

// Validate checks the required-field contract for an extracted record:
// at least one symptom, a non-empty duration, and a known severity.
// Validation is all-or-nothing; a record that fails here is never persisted
// and the caller falls back to FallbackRecord instead.
func Validate(r *IntakeRecord) error {
	if r == nil {
		return errors.New("record is nil")
	}
	if len(r.CurrentSymptoms) == 0 {
		return errors.New("at least one symptom is required")
	}
	for i, s := range r.CurrentSymptoms {
		if s == "" {
			return fmt.Errorf("symptom %d is empty", i)
		}
	}
	if r.SymptomDuration == "" {
		return errors.New("symptom duration is required")
	}
	switch r.SymptomSeverity {
	case SeverityMild, SeverityModerate, SeveritySevere:
	default:
		return fmt.Errorf("invalid severity %q", r.SymptomSeverity)
	}
	for i, m := range r.CurrentMedications {
		if m.Name == "" || m.Dosage == "" || m.Frequency == "" {
			return fmt.Errorf("medication %d is missing name, dosage or frequency", i)
		}
	}
	return nil
}

// applyDefaults replaces nil slices with empty ones so optional fields always
// serialize as [] rather than null. String fields already default to "".
func applyDefaults(r *IntakeRecord) {
	if r.CurrentSymptoms == nil {
		r.CurrentSymptoms = []string{}
	}
	if r.SymptomTriggers == nil {
		r.SymptomTriggers = []string{}
	}
	if r.MedicalHistory == nil {
		r.MedicalHistory = []string{}
	}
	if r.CurrentMedications == nil {
		r.CurrentMedications = []Medication{}
	}
	if r.Allergies == nil {
		r.Allergies = []string{}
	}
	if r.RecentIllnesses == nil {
		r.RecentIllnesses = []string{}
	}
}

// FallbackRecord builds the safe default record used when extraction output
// cannot be parsed or validated. Every field is empty except severity, which
// takes the lowest value, and additionalInfo, which preserves the raw model
// output so nothing the patient said is silently lost.
func FallbackRecord(rawOutput string) *IntakeRecord {
	return &IntakeRecord{
		CurrentSymptoms:    []string{},
		SymptomDuration:    "",
		SymptomSeverity:    SeverityMild,
		SymptomTriggers:    []string{},
		MedicalHistory:     []string{},
		CurrentMedications: []Medication{},
		Allergies:          []string{},
		RecentIllnesses:    []string{},
		Lifestyle:          Lifestyle{},
		Concerns:           "",
		AdditionalInfo:     rawOutput,
	}
}

// locateJSON finds the first top-level JSON object inside text, tolerating
// prose around the payload. It scans brace depth from the first '{' and
// honours string literals and escapes, which is stricter than a first-to-last
// brace match when the trailing prose itself contains braces.
func locateJSON(text string) (string, bool) {
	start := -1
	for i := 0; i < len(text); i++ {
		if text[i] == '{' {
			start = i
			break
		}
	}
	if start < 0 {
		return "", false
	}

	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(text); i++ {
		c := text[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return text[start : i+1], true
			}
		}
	}
	return "", false
}
