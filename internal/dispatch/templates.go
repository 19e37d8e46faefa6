package dispatch

import (
	"fmt"

	"github.com/courseloop/support-backend/internal/models"
)

const (
	welcomeTemplate = "Hi, I'm Sage, the support expert here. Tell me what you're running into and I'll sort it out with you. Send 'help' anytime to see what I can do."

	handoffTemplate = "Hey, Coach here! Sage filled me in. Let's get you set up and moving — what would you like to tackle first?"

	returnTemplate = "Sage again. I've got the full picture from Coach. Let's look at the details of your issue."

	closingTemplate = "This conversation is now closed. Message us again anytime and we'll open a fresh one. Good luck with your studies!"

	helpTemplate = "Here's what you can send me:\n" +
		"start - open a support conversation\n" +
		"help - show this list\n" +
		"status - show your conversation status\n" +
		"coach - talk to Coach for onboarding and study guidance\n" +
		"expert - talk to Sage for technical and billing issues\n" +
		"close - close the conversation\n" +
		"Anything else, just type your question."

	unknownTemplate = "I don't recognize that command. Send 'help' to see what I understand."

	sageFallback = "Apologies — I couldn't put together a proper answer just now. Could you send that once more, or rephrase it slightly?"

	coachFallback = "Oops, my thoughts got tangled for a second! Mind sending that again? I'm right here."
)

func statusTemplate(c models.SupportCase) string {
	return fmt.Sprintf("Conversation %s\nTalking to: %s\nStatus: %s", c.ID, personaLabel(c.Persona), c.Status)
}

func personaLabel(p models.Persona) string {
	if p == models.PersonaCoach {
		return "Coach (onboarding guide)"
	}
	return "Sage (support expert)"
}

// FallbackReply is the fixed persona-flavored apology used when generation fails.
func FallbackReply(p models.Persona) string {
	if p == models.PersonaCoach {
		return coachFallback
	}
	return sageFallback
}
