package dispatch

import "github.com/courseloop/support-backend/internal/models"

// Routing is the mutable routing state of a case as a value object. Transition
// is pure; the store commit happens separately in the dispatcher.
type Routing struct {
	Status  models.Status
	Persona models.Persona
}

func RoutingOf(c models.SupportCase) Routing {
	return Routing{Status: c.Status, Persona: c.Persona}
}

// Transition applies a channel command to the routing state. The second
// return value reports whether the state changed and needs a store commit.
// Closed is terminal: no command moves a closed case.
func Transition(r Routing, cmd Command) (Routing, bool) {
	if r.Status == models.StatusClosed {
		return r, false
	}
	switch cmd {
	case CommandCoach:
		next := Routing{Status: models.StatusEscalated, Persona: models.PersonaCoach}
		return next, next != r
	case CommandExpert:
		next := Routing{Status: models.StatusActive, Persona: models.PersonaSage}
		return next, next != r
	case CommandClose:
		next := Routing{Status: models.StatusClosed, Persona: r.Persona}
		return next, true
	default:
		// start, help, status and unknown commands leave routing untouched.
		return r, false
	}
}
