package intake

import (
	"testing"
)

func validRecord() *IntakeRecord {
	return &IntakeRecord{
		CurrentSymptoms: []string{"headache"},
		SymptomDuration: "3 days",
		SymptomSeverity: SeverityModerate,
	}
}

func TestValidate_Success(t *testing.T) {
	r := validRecord()
	applyDefaults(r)
	if err := Validate(r); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestValidate_RequiredFields(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*IntakeRecord)
	}{
		{"no symptoms", func(r *IntakeRecord) { r.CurrentSymptoms = nil }},
		{"empty symptom entry", func(r *IntakeRecord) { r.CurrentSymptoms = []string{"headache", ""} }},
		{"no duration", func(r *IntakeRecord) { r.SymptomDuration = "" }},
		{"unknown severity", func(r *IntakeRecord) { r.SymptomSeverity = "critical" }},
		{"empty severity", func(r *IntakeRecord) { r.SymptomSeverity = "" }},
		{"medication missing dosage", func(r *IntakeRecord) {
			r.CurrentMedications = []Medication{{Name: "ibuprofen", Frequency: "daily"}}
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := validRecord()
			tt.mutate(r)
			if err := Validate(r); err == nil {
				t.Error("expected validation error, got nil")
			}
		})
	}
}

func TestFallbackRecord_Shape(t *testing.T) {
	r := FallbackRecord("raw garbage output")

	if len(r.CurrentSymptoms) != 0 {
		t.Errorf("expected no symptoms, got %v", r.CurrentSymptoms)
	}
	if r.SymptomDuration != "" {
		t.Errorf("expected empty duration, got %q", r.SymptomDuration)
	}
	if r.SymptomSeverity != SeverityMild {
		t.Errorf("expected mild severity, got %q", r.SymptomSeverity)
	}
	if r.Lifestyle != (Lifestyle{}) {
		t.Errorf("expected empty lifestyle, got %+v", r.Lifestyle)
	}
	if r.AdditionalInfo != "raw garbage output" {
		t.Errorf("expected raw output preserved in additionalInfo, got %q", r.AdditionalInfo)
	}
	if r.CurrentSymptoms == nil || r.SymptomTriggers == nil || r.MedicalHistory == nil ||
		r.CurrentMedications == nil || r.Allergies == nil || r.RecentIllnesses == nil {
		t.Error("expected all slice fields non-nil so they serialize as []")
	}
}

func TestLocateJSON(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
		ok   bool
	}{
		{"bare object", `{"a":1}`, `{"a":1}`, true},
		{"prose wrapped", "Here is the data:\n{\"a\":1}\nHope that helps!", `{"a":1}`, true},
		{"nested objects", `{"a":{"b":{"c":1}}}`, `{"a":{"b":{"c":1}}}`, true},
		{"brace in string", `{"a":"}{"}`, `{"a":"}{"}`, true},
		{"escaped quote in string", `{"a":"say \"}\" loud"}`, `{"a":"say \"}\" loud"}`, true},
		{"trailing prose with brace", `{"a":1} and a stray } here`, `{"a":1}`, true},
		{"no braces", "plain text, no json at all", "", false},
		{"unterminated", `{"a":1`, "", false},
		{"empty input", "", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := locateJSON(tt.in)
			if ok != tt.ok {
				t.Fatalf("expected ok=%v, got %v", tt.ok, ok)
			}
			if got != tt.want {
				t.Errorf("expected %q, got %q", tt.want, got)
			}
		})
	}
}
