package dispatch

import "strings"

type Command string

const (
	CommandNone    Command = ""
	CommandStart   Command = "start"
	CommandHelp    Command = "help"
	CommandStatus  Command = "status"
	CommandClose   Command = "close"
	CommandExpert  Command = "expert" // switch to the sage persona
	CommandCoach   Command = "coach"  // switch to the coach persona
	CommandUnknown Command = "unknown"
)

// ParseCommand extracts a channel command from inbound text. Commands are the
// first whitespace-delimited token, case-insensitive, with an optional leading
// slash and an optional @botname suffix (Telegram group syntax).
func ParseCommand(text string) (Command, bool) {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return CommandNone, false
	}
	slash := strings.HasPrefix(trimmed, "/")
	token := strings.Fields(trimmed)[0]
	token = strings.TrimPrefix(token, "/")
	token = strings.SplitN(token, "@", 2)[0]
	token = strings.ToLower(token)

	switch Command(token) {
	case CommandStart, CommandHelp, CommandStatus, CommandClose, CommandExpert, CommandCoach:
		return Command(token), true
	}
	if slash {
		// Slash-prefixed but unrecognized: still a command, answered with a notice.
		return CommandUnknown, true
	}
	return CommandNone, false
}
