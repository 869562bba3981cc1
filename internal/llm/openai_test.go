package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func completionServer(t *testing.T, handler http.HandlerFunc) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return server
}

func TestComplete_Success(t *testing.T) {
	var gotBody struct {
		Model    string `json:"model"`
		Messages []struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"messages"`
	}

	server := completionServer(t, func(w http.ResponseWriter, r *http.Request) {
		if err := json.NewDecoder(r.Body).Decode(&gotBody); err != nil {
			t.Errorf("failed to decode request: %v", err)
		}
		json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{
				{"message": map[string]string{"role": "assistant", "content": "How long has this been going on?"}},
			},
		})
	})

	c := NewOpenAIClient("test-key", "test-model", server.URL)

	reply, err := c.Complete(context.Background(), "you are an intake assistant", []Message{
		{Role: "assistant", Content: "What brings you in today?"},
		{Role: "user", Content: "I have a headache"},
	}, 500)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if reply != "How long has this been going on?" {
		t.Errorf("unexpected reply %q", reply)
	}

	if gotBody.Model != "test-model" {
		t.Errorf("expected model test-model, got %q", gotBody.Model)
	}
	if len(gotBody.Messages) != 3 {
		t.Fatalf("expected 3 messages (system + 2 turns), got %d", len(gotBody.Messages))
	}
	if gotBody.Messages[0].Role != "system" || gotBody.Messages[0].Content != "you are an intake assistant" {
		t.Errorf("expected system instruction first, got %+v", gotBody.Messages[0])
	}
	if gotBody.Messages[2].Role != "user" {
		t.Errorf("expected last message role user, got %q", gotBody.Messages[2].Role)
	}
}

func TestComplete_CoercesUnknownRoles(t *testing.T) {
	var roles []string
	server := completionServer(t, func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Messages []struct {
				Role string `json:"role"`
			} `json:"messages"`
		}
		json.NewDecoder(r.Body).Decode(&body)
		for _, m := range body.Messages {
			roles = append(roles, m.Role)
		}
		json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{
				{"message": map[string]string{"role": "assistant", "content": "ok"}},
			},
		})
	})

	c := NewOpenAIClient("test-key", "test-model", server.URL)

	_, err := c.Complete(context.Background(), "sys", []Message{{Role: "bot", Content: "hi"}}, 100)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(roles) != 2 || roles[1] != "user" {
		t.Errorf("expected unknown role coerced to user, got %v", roles)
	}
}

func TestComplete_APIError(t *testing.T) {
	server := completionServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		json.NewEncoder(w).Encode(map[string]any{
			"error": map[string]string{"message": "rate limited", "type": "rate_limit_error"},
		})
	})

	c := NewOpenAIClient("test-key", "test-model", server.URL)

	_, err := c.Complete(context.Background(), "sys", []Message{{Role: "user", Content: "hi"}}, 100)
	if err == nil {
		t.Fatal("expected error for API failure")
	}
}

func TestComplete_EmptyChoices(t *testing.T) {
	server := completionServer(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"choices": []any{}})
	})

	c := NewOpenAIClient("test-key", "test-model", server.URL)

	_, err := c.Complete(context.Background(), "sys", []Message{{Role: "user", Content: "hi"}}, 100)
	if err == nil {
		t.Fatal("expected error for empty choices")
	}
}
