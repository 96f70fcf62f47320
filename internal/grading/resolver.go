package grading

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/ielts-center/grading-service/internal/models"
)

// Resolved is the outcome of locating a student's answer for a question.
// Ambiguous is set when the value was found through a heuristic fallback
// tier (prefix scan, positional index, first-unused key) rather than an
// exact key match; such results are flagged for manual review instead of
// being trusted silently.
type Resolved struct {
	Value     any
	Key       string
	Ambiguous bool
}

// KeyResolver locates the submission value(s) belonging to one question.
// Each question type has its own resolver because the UI widgets that
// produced the answer keys evolved independently: stable database ids,
// `{prefix}_{timestamp}` dynamic keys and `{questionId}_{index}` sub-item
// keys all occur in live data. Resolution never fails; an unresolvable
// question returns nil and grades as unanswered.
type KeyResolver interface {
	Resolve(q *models.Question, answers models.AnswerMap, rctx *ResolutionContext) *Resolved
}

func resolverFor(t models.QuestionType) KeyResolver {
	switch t {
	case models.MultipleChoice:
		return multipleChoiceResolver{}
	case models.ShortAnswer:
		return shortAnswerResolver{}
	case models.MultipleSelection:
		return multipleSelectionResolver{}
	case models.Essay:
		return directResolver{}
	}
	// Matching and map-labeling resolve per sub-item inside their
	// graders; there is no whole-question resolver for them.
	return directResolver{}
}

// directResolver tries only the canonical question id.
type directResolver struct{}

func (directResolver) Resolve(q *models.Question, answers models.AnswerMap, rctx *ResolutionContext) *Resolved {
	if v, ok := answers[q.ID]; ok {
		rctx.MarkKeyUsed(q.ID)
		return &Resolved{Value: v, Key: q.ID}
	}
	return nil
}

// multipleChoiceResolver tiers, in priority order:
//  1. exact key == question id
//  2. a key containing the display number that is either mcq_-prefixed
//     or carries a TRUE/FALSE/NOT GIVEN value
//  3. the first unused mcq_* key
//  4. the first unused key whose value is a TRUE/FALSE/NOT GIVEN literal
type multipleChoiceResolver struct{}

func (multipleChoiceResolver) Resolve(q *models.Question, answers models.AnswerMap, rctx *ResolutionContext) *Resolved {
	if v, ok := answers[q.ID]; ok {
		rctx.MarkKeyUsed(q.ID)
		return &Resolved{Value: v, Key: q.ID}
	}

	keys := sortedKeys(answers)
	number := strconv.Itoa(q.Number)

	for _, key := range keys {
		if rctx.KeyUsed(key) || !strings.Contains(key, number) {
			continue
		}
		if strings.HasPrefix(key, "mcq_") || isTrueFalseNotGiven(answers[key]) {
			rctx.MarkKeyUsed(key)
			return &Resolved{Value: answers[key], Key: key, Ambiguous: true}
		}
	}

	for _, key := range keys {
		if strings.HasPrefix(key, "mcq_") && !rctx.KeyUsed(key) {
			rctx.MarkKeyUsed(key)
			return &Resolved{Value: answers[key], Key: key, Ambiguous: true}
		}
	}

	for _, key := range keys {
		if !rctx.KeyUsed(key) && isTrueFalseNotGiven(answers[key]) {
			rctx.MarkKeyUsed(key)
			return &Resolved{Value: answers[key], Key: key, Ambiguous: true}
		}
	}

	return nil
}

// shortAnswerResolver tiers, in priority order:
//  1. exact key == question id
//  2. a q_* key containing the question id as a substring
//  3. a q_* key containing the display number
//  4. the single remaining unused q_* key, when exactly one is left
//  5. the display number as a 0-based index into the sorted q_* keys
//  6. the first unused q_* key
//
// Tiers 3-6 are inherited heuristics that can mis-assign answers when
// several ambiguous keys coexist, so their results carry the Ambiguous
// flag.
type shortAnswerResolver struct{}

func (shortAnswerResolver) Resolve(q *models.Question, answers models.AnswerMap, rctx *ResolutionContext) *Resolved {
	if v, ok := answers[q.ID]; ok {
		rctx.MarkKeyUsed(q.ID)
		return &Resolved{Value: v, Key: q.ID}
	}

	qKeys := prefixedKeys(answers, "q_")

	for _, key := range qKeys {
		if !rctx.KeyUsed(key) && strings.Contains(key, q.ID) {
			rctx.MarkKeyUsed(key)
			return &Resolved{Value: answers[key], Key: key}
		}
	}

	number := strconv.Itoa(q.Number)
	for _, key := range qKeys {
		if !rctx.KeyUsed(key) && strings.Contains(key, number) {
			rctx.MarkKeyUsed(key)
			return &Resolved{Value: answers[key], Key: key, Ambiguous: true}
		}
	}

	var unused []string
	for _, key := range qKeys {
		if !rctx.KeyUsed(key) {
			unused = append(unused, key)
		}
	}
	if len(unused) == 1 {
		rctx.MarkKeyUsed(unused[0])
		return &Resolved{Value: answers[unused[0]], Key: unused[0], Ambiguous: true}
	}

	if q.Number >= 0 && q.Number < len(qKeys) {
		key := qKeys[q.Number]
		if !rctx.KeyUsed(key) {
			rctx.MarkKeyUsed(key)
			return &Resolved{Value: answers[key], Key: key, Ambiguous: true}
		}
	}

	if len(unused) > 0 {
		rctx.MarkKeyUsed(unused[0])
		return &Resolved{Value: answers[unused[0]], Key: unused[0], Ambiguous: true}
	}

	return nil
}

// multipleSelectionResolver looks up the canonical id only; a scalar
// value is wrapped into a single-element selection.
type multipleSelectionResolver struct{}

func (multipleSelectionResolver) Resolve(q *models.Question, answers models.AnswerMap, rctx *ResolutionContext) *Resolved {
	v, ok := answers[q.ID]
	if !ok {
		return nil
	}
	rctx.MarkKeyUsed(q.ID)
	switch v.(type) {
	case []any, []string:
		return &Resolved{Value: v, Key: q.ID}
	}
	return &Resolved{Value: []any{v}, Key: q.ID}
}

// resolveMatchingPair locates the student's answer for pair i of a
// matching question: the canonical `{questionId}_{i}` key first, then a
// matching_* key carrying both the question id and the pair index, then
// any unused matching_* key carrying the index.
func resolveMatchingPair(q *models.Question, i int, answers models.AnswerMap, rctx *ResolutionContext) *Resolved {
	canonical := fmt.Sprintf("%s_%d", q.ID, i)
	if v, ok := answers[canonical]; ok {
		rctx.MarkKeyUsed(canonical)
		return &Resolved{Value: v, Key: canonical}
	}

	suffix := fmt.Sprintf("_%d", i)
	matchingKeys := prefixedKeys(answers, "matching_")

	for _, key := range matchingKeys {
		if !rctx.KeyUsed(key) && strings.Contains(key, q.ID) && strings.HasSuffix(key, suffix) {
			rctx.MarkKeyUsed(key)
			return &Resolved{Value: answers[key], Key: key, Ambiguous: true}
		}
	}

	for _, key := range matchingKeys {
		if !rctx.KeyUsed(key) && strings.HasSuffix(key, suffix) {
			rctx.MarkKeyUsed(key)
			return &Resolved{Value: answers[key], Key: key, Ambiguous: true}
		}
	}

	return nil
}

// resolveMapAnswers collects every unused map_-prefixed key in stable
// order; the map grader pairs them positionally against the labeled
// boxes and marks only the keys it consumes.
func resolveMapAnswers(answers models.AnswerMap, rctx *ResolutionContext) []Resolved {
	keys := prefixedKeys(answers, "map_")
	resolved := make([]Resolved, 0, len(keys))
	for _, key := range keys {
		if rctx.KeyUsed(key) {
			continue
		}
		resolved = append(resolved, Resolved{Value: answers[key], Key: key, Ambiguous: true})
	}
	return resolved
}

func isTrueFalseNotGiven(v any) bool {
	switch Normalize(v) {
	case "true", "false", "not given":
		return true
	}
	return false
}

func sortedKeys(answers models.AnswerMap) []string {
	keys := make([]string, 0, len(answers))
	for k := range answers {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func prefixedKeys(answers models.AnswerMap, prefix string) []string {
	var keys []string
	for k := range answers {
		if strings.HasPrefix(k, prefix) {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	return keys
}
