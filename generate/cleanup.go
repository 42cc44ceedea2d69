package generate

import (
	"errors"
	"regexp"
	"strings"
)

var (
	// ErrNoContent means the response carried no message content.
	ErrNoContent = errors.New("no content generated from AI response")
	// ErrInvalidFormat means the cleaned response does not look like a deck.
	ErrInvalidFormat = errors.New("invalid presentation format generated")
)

var (
	markdownOpen  = regexp.MustCompile("```markdown\\s*")
	trailingFence = regexp.MustCompile("```\\s*$")
)

// Cleanup strips chatter around the slides: markdown fences the model was
// told not to write, text before the first "{" and text after the last "}".
// The result must start with "{" and contain a title marker.
func Cleanup(content string) (string, error) {
	s := markdownOpen.ReplaceAllString(content, "")
	s = trailingFence.ReplaceAllString(s, "")
	if i := strings.Index(s, "{"); i >= 0 {
		s = s[i:]
	}
	if i := strings.LastIndex(s, "}"); i >= 0 {
		s = s[:i+1]
	}
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "{") || !strings.Contains(s, "#") {
		return "", ErrInvalidFormat
	}
	return s, nil
}
