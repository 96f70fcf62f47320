package grading

import (
	"strings"
	"unicode/utf8"

	"github.com/ielts-center/grading-service/internal/models"
)

// Matches reports whether a user's answer satisfies a correct-answer
// specification. The spec may be a single value, a list of acceptable
// values, or a comma-separated alternative string.
//
// The policy is deliberately asymmetric to avoid false positives:
// correct answers of two characters or fewer and multi-word correct
// answers only ever match exactly (after normalization); a single-word
// correct answer additionally matches when it appears as a whole token
// of the user's answer ("the child is happy" matches "child",
// "childish" does not).
func Matches(userAnswer any, correctSpec any) bool {
	user := Normalize(userAnswer)
	if user == "" {
		return false
	}

	switch spec := correctSpec.(type) {
	case []string:
		for _, alt := range spec {
			if Matches(userAnswer, alt) {
				return true
			}
		}
		return false
	case []any:
		for _, alt := range spec {
			if Matches(userAnswer, alt) {
				return true
			}
		}
		return false
	case models.OneOfSpec:
		for _, alt := range spec {
			if Matches(userAnswer, alt) {
				return true
			}
		}
		return false
	case models.LiteralSpec:
		return Matches(userAnswer, string(spec))
	}

	correct := Normalize(correctSpec)
	if correct == "" {
		return false
	}

	// Comma-separated alternatives: exact equality against any one of
	// them, never fuzzy.
	if strings.Contains(correct, ",") {
		for _, alt := range strings.Split(correct, ",") {
			if user == strings.TrimSpace(alt) {
				return true
			}
		}
		return false
	}

	if user == correct {
		return true
	}

	// Very short answers ("ok", "no", "42") never fuzzy-match: a
	// two-character needle inside a longer answer proves nothing.
	if utf8.RuneCountInString(correct) <= 2 {
		return false
	}

	// Multi-word correct answers require exact equality.
	if strings.ContainsAny(correct, " \t") {
		return false
	}

	// Single-word containment on word boundaries only.
	for _, token := range strings.Fields(user) {
		if token == correct {
			return true
		}
	}
	return false
}
