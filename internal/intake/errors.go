package intake

import "errors"

// Sentinel errors returned by the session state machine. The HTTP layer maps
// each one to a stable status code; none are retried inside this package.
var (
	// ErrProfileNotFound is returned when the caller has no linked patient
	// identity.
	ErrProfileNotFound = errors.New("patient profile not found")

	// ErrSessionNotFound is returned for an unknown session id and for an
	// ownership mismatch. The same error covers both so callers cannot
	// probe for other patients' session ids.
	ErrSessionNotFound = errors.New("intake session not found")

	// ErrSessionComplete is returned for a mutating call against a
	// completed session.
	ErrSessionComplete = errors.New("intake session already completed")

	// ErrEmptyMessage is returned when the message text is empty after
	// trimming. No external call is made.
	ErrEmptyMessage = errors.New("message is required")

	// ErrGenerationFailed is returned when the language-model call errored
	// or timed out. Nothing was persisted; the whole operation can be
	// retried.
	ErrGenerationFailed = errors.New("response generation failed")

	// ErrSessionIncomplete is returned when a doctor tries to review a
	// session the patient has not completed yet.
	ErrSessionIncomplete = errors.New("intake session not yet completed")

	// ErrAlreadyReviewed is returned when the session was already marked
	// reviewed.
	ErrAlreadyReviewed = errors.New("intake session already reviewed")
)
