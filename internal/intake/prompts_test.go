package intake

import (
	"strings"
	"testing"
)

// The constraint lines below are the safety contract for every model call:
// the assistant gathers information and must never diagnose, prescribe, give
// emergency guidance beyond deferral, or dismiss concerns.
var safetyConstraints = []string{
	"NEVER provide a diagnosis",
	"NEVER prescribe or recommend medications",
	"NEVER provide treatment advice",
	"NEVER dismiss patient concerns",
	"NEVER provide emergency medical guidance",
	"INFORMATION GATHERING ONLY",
}

func TestConversationPrompt_CarriesSafetyConstraints(t *testing.T) {
	for _, c := range safetyConstraints {
		if !strings.Contains(conversationSystemPrompt, c) {
			t.Errorf("system prompt missing constraint %q", c)
		}
	}
}

func TestConversationPrompt_RequiredBehaviours(t *testing.T) {
	for _, want := range []string{
		"clarifying questions",
		"empathetic",
		"doctor will review",
		"contacting emergency services",
	} {
		if !strings.Contains(conversationSystemPrompt, want) {
			t.Errorf("system prompt missing behaviour %q", want)
		}
	}
}

func TestExtractionPrompt_EmbedsTranscriptAndSchema(t *testing.T) {
	p := extractionPrompt("Patient: my head hurts")

	if !strings.Contains(p, "Patient: my head hurts") {
		t.Error("extraction prompt missing transcript")
	}
	for _, want := range []string{
		"Only include information the patient explicitly mentioned",
		"Do not infer or guess medical conditions",
		"Return ONLY valid JSON",
		`"symptomSeverity": "mild|moderate|severe"`,
		`"currentMedications"`,
		`"lifestyle"`,
	} {
		if !strings.Contains(p, want) {
			t.Errorf("extraction prompt missing %q", want)
		}
	}
}

func TestOpeningGreeting(t *testing.T) {
	if !strings.Contains(openingGreeting, "gather your medical information for the doctor") {
		t.Errorf("unexpected greeting %q", openingGreeting)
	}
}
