package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/courseloop/support-backend/internal/models"
)

// OpenAICompatGenerator calls an OpenAI-compatible /chat/completions endpoint.
type OpenAICompatGenerator struct {
	BaseURL   string
	Model     string
	APIKey    string
	MaxTokens int
	Client    *http.Client
}

func (g OpenAICompatGenerator) Reply(ctx context.Context, persona models.Persona, history []ChatMessage, message string) (string, error) {
	if strings.TrimSpace(g.BaseURL) == "" {
		return "", &GenerationError{Reason: "GEN_BASE_URL is not set"}
	}
	if strings.TrimSpace(g.Model) == "" {
		return "", &GenerationError{Reason: "GEN_MODEL is not set"}
	}

	type msg struct {
		Role    string `json:"role"`
		Content string `json:"content"`
	}
	payload := struct {
		Model       string  `json:"model"`
		Temperature float64 `json:"temperature,omitempty"`
		MaxTokens   int     `json:"max_tokens,omitempty"`
		Messages    []msg   `json:"messages"`
	}{
		Model:       g.Model,
		Temperature: PersonaTemperature(persona),
		MaxTokens:   g.MaxTokens,
	}

	payload.Messages = append(payload.Messages, msg{Role: "system", Content: PersonaPrompt(persona)})
	for _, h := range history {
		payload.Messages = append(payload.Messages, msg{Role: h.Role, Content: h.Content})
	}
	payload.Messages = append(payload.Messages, msg{Role: "user", Content: message})

	b, _ := json.Marshal(payload)
	url := strings.TrimRight(g.BaseURL, "/") + "/chat/completions"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(b))
	if err != nil {
		return "", &GenerationError{Reason: "build request", Err: err}
	}
	req.Header.Set("Content-Type", "application/json")
	if strings.TrimSpace(g.APIKey) != "" {
		req.Header.Set("Authorization", "Bearer "+g.APIKey)
	}

	client := g.Client
	if client == nil {
		timeout := 45 * time.Second
		if deadline, ok := ctx.Deadline(); ok {
			if remaining := time.Until(deadline); remaining > 0 && remaining < timeout {
				timeout = remaining
			}
		}
		client = &http.Client{Timeout: timeout}
	}

	resp, err := client.Do(req)
	if err != nil {
		var netErr net.Error
		if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
			return "", &GenerationError{Reason: "request timed out", Err: err}
		}
		return "", &GenerationError{Reason: "request failed", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		var errBody map[string]any
		_ = json.NewDecoder(resp.Body).Decode(&errBody)
		return "", &GenerationError{Reason: "http error " + resp.Status}
	}

	var res struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&res); err != nil {
		return "", &GenerationError{Reason: "malformed response", Err: err}
	}
	if len(res.Choices) == 0 || strings.TrimSpace(res.Choices[0].Message.Content) == "" {
		return "", &GenerationError{Reason: "empty response"}
	}
	return res.Choices[0].Message.Content, nil
}
