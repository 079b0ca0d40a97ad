package domain

import (
	"strings"
	"unicode"
)

// DefaultTitle is used when a title cannot be derived from the prompt.
const DefaultTitle = "New chat"

// maxTitleLen is the display length limit for derived thread titles.
const maxTitleLen = 60

// DeriveTitle creates a thread title from the first prompt of a
// conversation.
// Rules:
// - Collapses all whitespace runs to single spaces
// - Strips control characters
// - Truncates to 60 characters, cutting back to a word boundary
// - Falls back to DefaultTitle for empty input
func DeriveTitle(prompt string) string {
	var b strings.Builder
	lastSpace := true
	for _, r := range prompt {
		switch {
		case unicode.IsSpace(r):
			if !lastSpace {
				b.WriteRune(' ')
				lastSpace = true
			}
		case unicode.IsControl(r):
			// skip
		default:
			b.WriteRune(r)
			lastSpace = false
		}
	}

	title := strings.TrimSpace(b.String())
	if title == "" {
		return DefaultTitle
	}

	runes := []rune(title)
	if len(runes) <= maxTitleLen {
		return title
	}

	truncated := string(runes[:maxTitleLen])
	if idx := strings.LastIndex(truncated, " "); idx > 0 {
		truncated = truncated[:idx]
	}
	return truncated + "…"
}
