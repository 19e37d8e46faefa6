package ai

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/courseloop/support-backend/internal/models"
)

func TestOpenAICompatReply(t *testing.T) {
	var gotBody struct {
		Model       string  `json:"model"`
		Temperature float64 `json:"temperature"`
		Messages    []struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"messages"`
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		if r.Header.Get("Authorization") != "Bearer test-key" {
			t.Errorf("missing bearer header")
		}
		if err := json.NewDecoder(r.Body).Decode(&gotBody); err != nil {
			t.Errorf("decode body: %v", err)
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{
				{"message": map[string]any{"content": "Here is what to do."}},
			},
		})
	}))
	defer srv.Close()

	g := OpenAICompatGenerator{BaseURL: srv.URL, Model: "test-model", APIKey: "test-key", MaxTokens: 128}
	history := []ChatMessage{{Role: "user", Content: "earlier question"}, {Role: "assistant", Content: "earlier answer"}}
	reply, err := g.Reply(context.Background(), models.PersonaSage, history, "my quiz will not submit")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if reply != "Here is what to do." {
		t.Fatalf("unexpected reply: %q", reply)
	}
	if len(gotBody.Messages) != 4 {
		t.Fatalf("expected system + 2 history + user, got %d messages", len(gotBody.Messages))
	}
	if gotBody.Messages[0].Role != "system" {
		t.Fatalf("first message should be the persona prompt, got %s", gotBody.Messages[0].Role)
	}
	if gotBody.Temperature != PersonaTemperature(models.PersonaSage) {
		t.Fatalf("unexpected temperature: %f", gotBody.Temperature)
	}
}

func TestOpenAICompatHTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	g := OpenAICompatGenerator{BaseURL: srv.URL, Model: "test-model"}
	_, err := g.Reply(context.Background(), models.PersonaSage, nil, "hello")
	var genErr *GenerationError
	if !errors.As(err, &genErr) {
		t.Fatalf("expected GenerationError, got %v", err)
	}
}

func TestOpenAICompatEmptyChoices(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{"choices": []any{}})
	}))
	defer srv.Close()

	g := OpenAICompatGenerator{BaseURL: srv.URL, Model: "test-model"}
	var genErr *GenerationError
	if _, err := g.Reply(context.Background(), models.PersonaCoach, nil, "hello"); !errors.As(err, &genErr) {
		t.Fatalf("expected GenerationError, got %v", err)
	}
}

func TestOpenAICompatUnconfigured(t *testing.T) {
	g := OpenAICompatGenerator{}
	var genErr *GenerationError
	if _, err := g.Reply(context.Background(), models.PersonaSage, nil, "hello"); !errors.As(err, &genErr) {
		t.Fatalf("expected GenerationError, got %v", err)
	}
}

func TestMockGeneratorDeterministic(t *testing.T) {
	m := MockGenerator{}
	a, err := m.Reply(context.Background(), models.PersonaCoach, nil, "how do I start?")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	b, _ := m.Reply(context.Background(), models.PersonaCoach, nil, "how do I start?")
	if a != b {
		t.Fatalf("mock generator not deterministic: %q vs %q", a, b)
	}
	if a == "" {
		t.Fatalf("expected a canned reply")
	}
}

func TestMockGeneratorFail(t *testing.T) {
	m := MockGenerator{Fail: true}
	var genErr *GenerationError
	if _, err := m.Reply(context.Background(), models.PersonaSage, nil, "x"); !errors.As(err, &genErr) {
		t.Fatalf("expected GenerationError, got %v", err)
	}
}
