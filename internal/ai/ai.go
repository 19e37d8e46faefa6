package ai

import (
	"context"

	"github.com/courseloop/support-backend/internal/models"
)

type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Generator produces a persona reply for a free-text message, given the
// recent conversation history in chronological order.
type Generator interface {
	Reply(ctx context.Context, persona models.Persona, history []ChatMessage, message string) (string, error)
}

// GenerationError marks failures of the completion call. Callers substitute
// a fallback reply instead of propagating it to the channel.
type GenerationError struct {
	Reason string
	Err    error
}

func (e *GenerationError) Error() string {
	if e.Err != nil {
		return "generation failed: " + e.Reason + ": " + e.Err.Error()
	}
	return "generation failed: " + e.Reason
}

func (e *GenerationError) Unwrap() error {
	return e.Err
}
