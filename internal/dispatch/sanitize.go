package dispatch

import "strings"

// DefaultMaxMessageLen bounds stored and generated-over text (Telegram's own
// message cap).
const DefaultMaxMessageLen = 4096

// Truncate trims surrounding whitespace and cuts the text to at most limit
// runes. Idempotent: Truncate(Truncate(s)) == Truncate(s).
func Truncate(s string, limit int) string {
	if limit <= 0 {
		limit = DefaultMaxMessageLen
	}
	s = strings.TrimSpace(s)
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return strings.TrimSpace(string(runes[:limit]))
}
