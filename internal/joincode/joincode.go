// Package joincode validates the 6-character class join codes handed out to
// parents and maps class names to the dashboard subject track.
package joincode

import (
	"regexp"
	"strings"
)

var codePattern = regexp.MustCompile(`^[A-Za-z0-9]{6}$`)

// IsValid reports whether s is a well-formed join code: exactly six ASCII
// letters (either case) or digits. (?i) is not used: it folds U+212A and
// U+017F onto [a-z].
func IsValid(s string) bool {
	return codePattern.MatchString(s)
}

// Subject is the dashboard track a class belongs to.
type Subject string

const (
	SubjectNone    Subject = ""
	SubjectGita    Subject = "gita"
	SubjectEnglish Subject = "english"
	SubjectMaths   Subject = "maths"
)

// Keyword groups are checked in order; the first group with a hit wins.
var (
	englishKeywords = []string{
		"english", "young", "communication", "communicator", "writers",
		"speaker", "ptm", "parents", "homework", "extra",
	}
	gitaKeywords  = []string{"gita", "sanatan"}
	mathsKeywords = []string{"math"}
)

// Classify derives the subject from a class name by case-insensitive
// substring matching. Names that match nothing fall back to SubjectMaths.
func Classify(className string) Subject {
	name := strings.ToLower(className)
	switch {
	case containsAny(name, englishKeywords):
		return SubjectEnglish
	case containsAny(name, gitaKeywords):
		return SubjectGita
	case containsAny(name, mathsKeywords):
		return SubjectMaths
	default:
		return SubjectMaths
	}
}

// ParseSubject maps a URL path segment to a Subject. Unknown values map to
// SubjectNone.
func ParseSubject(s string) Subject {
	switch Subject(strings.ToLower(strings.TrimSpace(s))) {
	case SubjectGita:
		return SubjectGita
	case SubjectEnglish:
		return SubjectEnglish
	case SubjectMaths, "math":
		return SubjectMaths
	default:
		return SubjectNone
	}
}

func containsAny(s string, keywords []string) bool {
	for _, k := range keywords {
		if strings.Contains(s, k) {
			return true
		}
	}
	return false
}
