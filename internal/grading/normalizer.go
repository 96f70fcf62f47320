// Package grading implements the automated scoring engine: answer
// normalization and matching, resolution of the submission's flat answer
// keys onto canonical questions, one grading strategy per question type,
// and the raw-score to band-score conversion. The engine is a pure
// function of (submission, question bank); all I/O lives in the service
// layer above it.
package grading

import (
	"fmt"
	"strings"
)

// Normalize canonicalizes a raw answer value for comparison: nil becomes
// the empty string, everything else is coerced to a string, lower-cased
// and trimmed. No stemming, no punctuation stripping.
func Normalize(value any) string {
	if value == nil {
		return ""
	}
	var s string
	switch v := value.(type) {
	case string:
		s = v
	case []string:
		s = strings.Join(v, ", ")
	case []any:
		parts := make([]string, 0, len(v))
		for _, item := range v {
			parts = append(parts, fmt.Sprintf("%v", item))
		}
		s = strings.Join(parts, ", ")
	default:
		s = fmt.Sprintf("%v", v)
	}
	return strings.ToLower(strings.TrimSpace(s))
}
