package llm_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/saarthi/loan-assistant-go/internal/domain"
	"github.com/saarthi/loan-assistant-go/internal/infra/llm"
	"github.com/saarthi/loan-assistant-go/internal/infra/resilience"
)

func newClient(t *testing.T, handler http.HandlerFunc) *llm.GroqClient {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	cfg := resilience.Config{MaxRetries: 1, InitialBackoff: time.Millisecond}
	return llm.NewGroqClient(srv.Client(), srv.URL, "test-key", "llama-3.3-70b-versatile",
		resilience.NewCircuitBreaker("groq-test"), cfg, resilience.NewBulkhead(2), nil)
}

func TestReply(t *testing.T) {
	var gotAuth string
	var gotBody map[string]any

	c := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		_ = json.NewDecoder(r.Body).Decode(&gotBody)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{
				{"message": map[string]any{"role": "assistant", "content": "Namaste! How can I help?"}},
			},
			"usage": map[string]int{"prompt_tokens": 42, "completion_tokens": 12},
		})
	})

	history := []domain.Message{{Role: domain.RoleUser, Content: "hi"}}
	out, err := c.Reply(context.Background(), history, "You are Saarthi.")
	if err != nil {
		t.Fatal(err)
	}
	if out != "Namaste! How can I help?" {
		t.Errorf("unexpected reply %q", out)
	}
	if gotAuth != "Bearer test-key" {
		t.Errorf("missing bearer auth, got %q", gotAuth)
	}

	msgs, _ := gotBody["messages"].([]any)
	if len(msgs) != 2 {
		t.Fatalf("expected system + user message, got %d", len(msgs))
	}
	first, _ := msgs[0].(map[string]any)
	if first["role"] != "system" {
		t.Errorf("first message should be the system prompt, got %v", first["role"])
	}
}

func TestCompleteUsesZeroTemperature(t *testing.T) {
	var gotBody map[string]any

	c := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewDecoder(r.Body).Decode(&gotBody)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{
				{"message": map[string]any{"role": "assistant", "content": "{}"}},
			},
		})
	})

	if _, err := c.Complete(context.Background(), "extract", "I am Priya"); err != nil {
		t.Fatal(err)
	}
	if temp, _ := gotBody["temperature"].(float64); temp != 0 {
		t.Errorf("extraction should run at temperature 0, got %v", temp)
	}
}

func TestUpstreamErrorWrapped(t *testing.T) {
	c := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})

	_, err := c.Reply(context.Background(), nil, "prompt")
	var extErr *domain.ErrExternalService
	if !errors.As(err, &extErr) {
		t.Fatalf("expected ErrExternalService, got %v", err)
	}
	if extErr.Service != "groq" {
		t.Errorf("expected service 'groq', got %q", extErr.Service)
	}
}

func TestEmptyChoicesIsError(t *testing.T) {
	c := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{"choices": []any{}})
	})

	if _, err := c.Reply(context.Background(), nil, "prompt"); err == nil {
		t.Fatal("expected error on empty choices")
	}
}
