package intake

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/carebridge-health/intake/internal/llm"
)

const extractionMaxTokens = 2000

// Extractor turns a completed conversation transcript into a validated
// IntakeRecord. It is a total function over model output: any reply the
// model produces yields a schema-valid record, degrading to FallbackRecord
// when the reply cannot be parsed or validated. Only a failed model call
// itself surfaces as an error.
type Extractor struct {
	llm    llm.Client
	logger *slog.Logger
}

func NewExtractor(client llm.Client, logger *slog.Logger) *Extractor {
	return &Extractor{llm: client, logger: logger}
}

// RenderTranscript serializes a chat history for the extraction prompt,
// labeling each turn by speaker.
func RenderTranscript(history []ChatMessage) string {
	lines := make([]string, 0, len(history))
	for _, msg := range history {
		speaker := "Assistant"
		if msg.Role == RoleUser {
			speaker = "Patient"
		}
		lines = append(lines, speaker+": "+msg.Content)
	}
	return strings.Join(lines, "\n\n")
}

// Extract runs the extraction call and validates the result.
func (e *Extractor) Extract(ctx context.Context, sessionID string, history []ChatMessage) (*IntakeRecord, error) {
	transcript := RenderTranscript(history)

	e.logger.Info("extracting intake record",
		"session_id", sessionID,
		"messages", len(history),
		"transcript_len", len(transcript),
	)

	raw, err := e.llm.Complete(ctx, conversationSystemPrompt, []llm.Message{
		{Role: "user", Content: extractionPrompt(transcript)},
	}, extractionMaxTokens)
	if err != nil {
		return nil, fmt.Errorf("extraction call: %w", err)
	}

	record, degraded := e.parse(raw)
	if degraded {
		e.logger.Warn("extraction degraded to fallback record",
			"session_id", sessionID,
			"raw_len", len(raw),
		)
	} else {
		e.logger.Info("extraction complete",
			"session_id", sessionID,
			"symptoms", len(record.CurrentSymptoms),
			"medications", len(record.CurrentMedications),
		)
	}
	return record, nil
}

// parse locates, decodes and validates the JSON payload in raw model output.
// The second return reports whether the fallback path was taken.
func (e *Extractor) parse(raw string) (*IntakeRecord, bool) {
	payload, ok := locateJSON(raw)
	if !ok {
		return FallbackRecord(raw), true
	}

	var record IntakeRecord
	if err := json.Unmarshal([]byte(payload), &record); err != nil {
		e.logger.Warn("extraction output is not valid JSON", "error", err)
		return FallbackRecord(raw), true
	}

	applyDefaults(&record)
	if err := Validate(&record); err != nil {
		e.logger.Warn("extraction output failed validation", "error", err)
		return FallbackRecord(raw), true
	}
	return &record, false
}
