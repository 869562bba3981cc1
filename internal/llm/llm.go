// Package llm wraps the language-model collaborator behind a small client
// interface so the intake core never depends on a particular vendor SDK.
package llm

import "context"

// Message is a single chat turn passed to the model.
// Role must be "user" or "assistant"; the system instruction travels
// separately so callers cannot forget it.
type Message struct {
	Role    string
	Content string
}

// Client is the capability the intake core needs: given a system instruction
// and a message history, return the model's text reply.
type Client interface {
	Complete(ctx context.Context, system string, messages []Message, maxTokens int) (string, error)
}
