package ai

import (
	"context"
	"fmt"

	"github.com/courseloop/support-backend/internal/models"
	"github.com/courseloop/support-backend/internal/utils"
)

// MockGenerator answers deterministically from the message hash. Used when no
// completion service is configured, and in tests; Fail forces the error path.
type MockGenerator struct {
	Fail bool
}

var sageCanned = []string{
	"Let's take this step by step. Could you tell me exactly what you see on screen?",
	"I checked the usual causes for this. Try signing out and back in, then retry the lesson.",
	"That behaviour usually means the payment is still settling. Give it a few minutes and check again.",
}

var coachCanned = []string{
	"Great that you're asking! Let's get you unstuck — open your course page and tell me what you see.",
	"You're closer than you think. Finish the first module and the rest unlocks automatically!",
	"No worries at all, this trips up a lot of new learners. Let's walk through it together.",
}

func (m MockGenerator) Reply(ctx context.Context, persona models.Persona, history []ChatMessage, message string) (string, error) {
	if m.Fail {
		return "", &GenerationError{Reason: "forced failure"}
	}
	h := utils.HashStringToUint64(fmt.Sprintf("%s|%s|%d", persona, message, len(history)))
	pool := sageCanned
	if persona == models.PersonaCoach {
		pool = coachCanned
	}
	return pool[int(h)%len(pool)], nil
}
