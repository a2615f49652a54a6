package textfilter

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// replacements maps words unsuitable for family-friendly sessions to
// tamer alternatives. Applied only when the configured content rating
// asks for it.
var replacements = map[string]string{
	"fuck":     "fudge",
	"shit":     "shoot",
	"damn":     "dang",
	"hell":     "heck",
	"ass":      "butt",
	"bitch":    "jerk",
	"bastard":  "jerk",
	"crap":     "crud",
	"asshole":  "jerk",
	"bullshit": "baloney",
	"goddamn":  "gosh-dang",
	"prick":    "jerk",
}

// ContentFilter rewrites profanity in generated text while preserving
// the original casing of each match.
type ContentFilter struct {
	patterns map[string]*regexp.Regexp
}

// NewContentFilter compiles the word-boundary patterns once up front.
func NewContentFilter() *ContentFilter {
	f := &ContentFilter{patterns: make(map[string]*regexp.Regexp, len(replacements))}
	for word := range replacements {
		f.patterns[word] = regexp.MustCompile(`(?i)\b` + regexp.QuoteMeta(word) + `\b`)
	}
	return f
}

// Filter replaces each flagged word with its alternative.
func (f *ContentFilter) Filter(text string) string {
	result := text
	for word, re := range f.patterns {
		replacement := replacements[word]
		result = re.ReplaceAllStringFunc(result, func(match string) string {
			return preserveCase(match, replacement)
		})
	}
	return result
}

// ShouldFilter reports whether a content rating calls for word filtering.
func ShouldFilter(rating string) bool {
	switch strings.ToUpper(strings.TrimSpace(rating)) {
	case "G", "PG", "PG13", "PG-13":
		return true
	default:
		return false
	}
}

// preserveCase applies the case pattern of the matched word to its
// replacement: all-caps stays all-caps, title case stays title case.
func preserveCase(original, replacement string) string {
	if original == strings.ToUpper(original) {
		return strings.ToUpper(replacement)
	}
	if original == strings.ToLower(original) {
		return strings.ToLower(replacement)
	}

	titleCaser := cases.Title(language.English)
	if titleCaser.String(strings.ToLower(original)) == original {
		return titleCaser.String(replacement)
	}

	// Mixed case: carry casing over character by character.
	out := make([]rune, 0, len(replacement))
	origRunes := []rune(original)
	for i, r := range []rune(replacement) {
		if i < len(origRunes) && unicode.IsUpper(origRunes[i]) {
			out = append(out, unicode.ToUpper(r))
		} else {
			out = append(out, unicode.ToLower(r))
		}
	}
	return string(out)
}
