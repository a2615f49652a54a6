package textfilter

import (
	"regexp"
	"strings"

	"github.com/taleloom/tale-engine/pkg/story"
)

// Generated text is untrusted and must never be rendered as markup.
var tagPattern = regexp.MustCompile(`<[^>]*>`)

// StripTags removes markup-like tags without touching punctuation.
// Used for titles, which do not take terminal punctuation.
func StripTags(text string) string {
	return tagPattern.ReplaceAllString(text, "")
}

// Sanitize strips markup-like tags from generated text and ensures the
// result ends in terminal punctuation. Idempotent: sanitizing already
// sanitized text is a no-op. An empty result stays empty.
func Sanitize(text string) string {
	s := tagPattern.ReplaceAllString(text, "")
	if s == "" {
		return s
	}
	if !strings.HasSuffix(s, ".") && !strings.HasSuffix(s, "!") && !strings.HasSuffix(s, "?") {
		s += "."
	}
	return s
}

// SanitizeResult sanitizes every text field of a generation result in
// place: the scene and each choice's text and consequence. It is applied
// before generator output enters the context model or reaches a caller.
func SanitizeResult(r *story.GenerationResult) {
	r.Scene = Sanitize(r.Scene)
	for i := range r.Choices {
		r.Choices[i].Text = Sanitize(r.Choices[i].Text)
		r.Choices[i].Consequence = Sanitize(r.Choices[i].Consequence)
	}
}
