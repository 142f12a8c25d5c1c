package server

import (
	"html"
	"strings"
)

// Player is the process-wide identity created for every accepted connection.
type Player struct {
	ID   string
	Name string
	IP   string
}

// playerState pairs the identity with its transport binding and, while joined,
// the lobby it belongs to. The lobby pointer is guarded by the hub mutex.
type playerState struct {
	Player
	sub   *subscriber
	lobby *Lobby
}

// sanitizeName keeps alphanumerics plus a small punctuation set and caps the
// length. An empty result means the caller should fall back to the default.
func sanitizeName(raw string) string {
	var b strings.Builder
	for _, r := range strings.TrimSpace(raw) {
		if b.Len() >= maxNameLength {
			break
		}
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == ' ', r == '_', r == '-':
			b.WriteRune(r)
		}
	}
	return strings.TrimSpace(b.String())
}

// sanitizeChat trims and caps a chat line at the relay limit, then escapes it
// for the dumb client's direct DOM insertion.
func sanitizeChat(raw string) string {
	text := strings.TrimSpace(raw)
	if runes := []rune(text); len(runes) > maxChatLength {
		text = string(runes[:maxChatLength])
	}
	return html.EscapeString(text)
}
