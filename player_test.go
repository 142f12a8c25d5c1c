package server

import (
	"strings"
	"testing"
)

func TestSanitizeName(t *testing.T) {
	cases := map[string]string{
		"plain":              "plain",
		"  padded  ":         "padded",
		"with space":         "with space",
		"under_score-dash":   "under_score-dash",
		"<script>alert</a>":  "scriptalerta",
		"!!!":                "",
		"":                   "",
		"0123456789abcdefgh": "0123456789abcdef",
	}
	for input, want := range cases {
		if got := sanitizeName(input); got != want {
			t.Fatalf("sanitizeName(%q) = %q, want %q", input, got, want)
		}
	}
}

func TestSanitizeNameCapsLength(t *testing.T) {
	long := strings.Repeat("a", 100)
	if got := sanitizeName(long); len(got) != maxNameLength {
		t.Fatalf("expected length %d, got %d", maxNameLength, len(got))
	}
}

func TestSanitizeChat(t *testing.T) {
	if got := sanitizeChat("  hello there  "); got != "hello there" {
		t.Fatalf("expected trimmed text, got %q", got)
	}

	long := strings.Repeat("x", maxChatLength+50)
	if got := sanitizeChat(long); len([]rune(got)) != maxChatLength {
		t.Fatalf("expected chat capped at %d runes, got %d", maxChatLength, len([]rune(got)))
	}
}

func TestSanitizeChatEscapesMarkup(t *testing.T) {
	if got := sanitizeChat("<b>hi</b>"); got != "&lt;b&gt;hi&lt;/b&gt;" {
		t.Fatalf("expected escaped markup, got %q", got)
	}
}
