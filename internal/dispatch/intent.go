package dispatch

import (
	"strings"

	"github.com/courseloop/support-backend/internal/models"
)

// Classification is advisory: it tags the case type when none is set and
// suggests a persona, but it never drives routing transitions on its own.
type Classification struct {
	CaseType models.CaseType
	Persona  models.Persona
}

type intentRule struct {
	keywords []string
	result   Classification
}

// Ordered first-match-wins. Onboarding signals outrank billing, billing
// outranks trust, trust outranks technical.
var intentRules = []intentRule{
	{
		keywords: []string{"get started", "getting started", "enroll", "first lesson", "new here", "onboarding", "how do i begin", "where do i begin", "sign up"},
		result:   Classification{CaseType: models.CaseTypeOnboarding, Persona: models.PersonaCoach},
	},
	{
		keywords: []string{"payment", "refund", "invoice", "charge", "charged", "billing", "subscription", "card", "price"},
		result:   Classification{CaseType: models.CaseTypeBilling, Persona: models.PersonaSage},
	},
	{
		keywords: []string{"scam", "fraud", "complaint", "complain", "legal", "lawyer", "trust", "review"},
		result:   Classification{CaseType: models.CaseTypeTrust, Persona: models.PersonaSage},
	},
	{
		keywords: []string{"error", "bug", "crash", "broken", "not working", "doesn't work", "can't log", "cannot log", "login", "log in", "password", "fail", "stuck", "freez"},
		result:   Classification{CaseType: models.CaseTypeTechnical, Persona: models.PersonaSage},
	},
}

var defaultClassification = Classification{CaseType: models.CaseTypeGeneral, Persona: models.PersonaSage}

// Classify maps raw message text to a (case type, suggested persona) pair by
// ordered keyword substring matching. Deterministic, cannot fail.
func Classify(text string) Classification {
	lowered := strings.ToLower(text)
	for _, rule := range intentRules {
		for _, kw := range rule.keywords {
			if strings.Contains(lowered, kw) {
				return rule.result
			}
		}
	}
	return defaultClassification
}
