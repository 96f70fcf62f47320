package grading

import (
	"fmt"
	"strings"

	"github.com/ielts-center/grading-service/internal/models"
)

const (
	noAnswerProvided = "No answer provided"
	essayReviewNote  = "Completion credit only; awaiting manual review by an examiner"
	ambiguousNote    = "Answer located by fallback key resolution; flagged for manual review"
)

// QuestionGrader grades one question against the submission's answer map
// and produces one result per question, or one per sub-item for matching,
// multiple-selection and map-labeling questions.
type QuestionGrader interface {
	Grade(q *models.Question, answers models.AnswerMap, rctx *ResolutionContext) []models.QuestionResult
}

func graderFor(t models.QuestionType) QuestionGrader {
	switch t {
	case models.MultipleChoice:
		return multipleChoiceGrader{}
	case models.MultipleSelection:
		return multipleSelectionGrader{}
	case models.Matching:
		return matchingGrader{}
	case models.ShortAnswer:
		return shortAnswerGrader{}
	case models.MapLabeling:
		return mapLabelingGrader{}
	case models.Essay:
		return essayGrader{}
	}
	return nil
}

type multipleChoiceGrader struct{}

func (multipleChoiceGrader) Grade(q *models.Question, answers models.AnswerMap, rctx *ResolutionContext) []models.QuestionResult {
	content, ok := q.Content.(*models.MultipleChoiceContent)
	if !ok {
		content = &models.MultipleChoiceContent{}
	}
	matchSpec, correctText := choiceAnswer(content)

	result := baseResult(q)
	result.CorrectAnswer = correctText

	if res := resolverFor(q.Type).Resolve(q, answers, rctx); res != nil {
		result.UserAnswer = displayAnswer(res.Value)
		result.IsCorrect = Matches(res.Value, matchSpec)
		markAmbiguous(&result, res)
	}
	if result.IsCorrect {
		result.Points = q.Points
	}
	return []models.QuestionResult{result}
}

// choiceAnswer resolves the correct-answer spec of a multiple-choice
// question to something the matcher can consume. An out-of-range option
// index defaults to the first option rather than failing the question.
func choiceAnswer(content *models.MultipleChoiceContent) (matchSpec any, display string) {
	switch spec := content.Answer.(type) {
	case models.IndexSpec:
		i := int(spec)
		if i < 0 || i >= len(content.Options) {
			i = 0
		}
		if i < len(content.Options) {
			return content.Options[i], content.Options[i]
		}
		return "", ""
	case models.LiteralSpec:
		return string(spec), string(spec)
	case models.OneOfSpec:
		return spec, strings.Join(spec, ", ")
	}
	return "", ""
}

type multipleSelectionGrader struct{}

// Grade emits exactly one result per correct value. Correct values are
// walked in order; each consumes the first matching user selection.
// Leftover selections are then paired with the remaining unmatched
// correct values best-effort, so the result count is stable however many
// selections the student made.
func (multipleSelectionGrader) Grade(q *models.Question, answers models.AnswerMap, rctx *ResolutionContext) []models.QuestionResult {
	content, ok := q.Content.(*models.MultipleSelectionContent)
	if !ok {
		content = &models.MultipleSelectionContent{}
	}

	var selected []string
	var ambiguous bool
	if res := resolverFor(q.Type).Resolve(q, answers, rctx); res != nil {
		selected = toStringList(res.Value)
		ambiguous = res.Ambiguous
	}

	consumed := make([]bool, len(selected))
	pairedWith := make([]int, len(content.CorrectValues))
	for i := range pairedWith {
		pairedWith[i] = -1
	}

	for i, cv := range content.CorrectValues {
		for j, sv := range selected {
			if !consumed[j] && Normalize(sv) == Normalize(cv) {
				consumed[j] = true
				pairedWith[i] = j
				break
			}
		}
	}

	// Best-effort reconciliation of extra selections.
	next := 0
	for i := range content.CorrectValues {
		if pairedWith[i] >= 0 {
			continue
		}
		for next < len(selected) && consumed[next] {
			next++
		}
		if next < len(selected) {
			consumed[next] = true
			pairedWith[i] = next
		}
	}

	results := make([]models.QuestionResult, 0, len(content.CorrectValues))
	for i, cv := range content.CorrectValues {
		result := baseResult(q)
		result.CorrectAnswer = cv
		result.UserAnswer = noAnswerProvided
		if j := pairedWith[i]; j >= 0 {
			result.UserAnswer = selected[j]
			result.IsCorrect = Normalize(selected[j]) == Normalize(cv)
		}
		if result.IsCorrect {
			result.Points = q.Points
		}
		if ambiguous {
			result.AmbiguousResolution = true
			result.Explanation = ambiguousNote
		}
		results = append(results, result)
	}
	return results
}

type matchingGrader struct{}

// Grade always emits exactly one result per left item, resolved and
// unresolved pairs alike.
func (matchingGrader) Grade(q *models.Question, answers models.AnswerMap, rctx *ResolutionContext) []models.QuestionResult {
	content, ok := q.Content.(*models.MatchingContent)
	if !ok {
		content = &models.MatchingContent{}
	}

	results := make([]models.QuestionResult, 0, len(content.Left))
	for i, left := range content.Left {
		var right string
		if i < len(content.Right) {
			right = content.Right[i]
		}

		result := baseResult(q)
		result.QuestionID = fmt.Sprintf("%s_%d", q.ID, i)
		result.QuestionText = left
		result.CorrectAnswer = right
		result.UserAnswer = noAnswerProvided

		if res := resolveMatchingPair(q, i, answers, rctx); res != nil {
			result.UserAnswer = displayAnswer(res.Value)
			result.IsCorrect = Matches(res.Value, right)
			markAmbiguous(&result, res)
		}
		if result.IsCorrect {
			result.Points = q.Points
		}
		results = append(results, result)
	}
	return results
}

type shortAnswerGrader struct{}

func (shortAnswerGrader) Grade(q *models.Question, answers models.AnswerMap, rctx *ResolutionContext) []models.QuestionResult {
	content, ok := q.Content.(*models.ShortAnswerContent)
	if !ok {
		content = &models.ShortAnswerContent{}
	}

	result := baseResult(q)
	result.CorrectAnswer = answerSpecDisplay(content.Accepted)

	if res := resolverFor(q.Type).Resolve(q, answers, rctx); res != nil {
		result.UserAnswer = displayAnswer(res.Value)
		result.IsCorrect = Matches(res.Value, content.Accepted)
		markAmbiguous(&result, res)
	}
	if result.IsCorrect {
		result.Points = q.Points
	}
	return []models.QuestionResult{result}
}

type mapLabelingGrader struct{}

// Grade pairs the submission's map_* answers positionally against the
// labeled boxes, one result per box.
func (mapLabelingGrader) Grade(q *models.Question, answers models.AnswerMap, rctx *ResolutionContext) []models.QuestionResult {
	content, ok := q.Content.(*models.MapLabelingContent)
	if !ok {
		content = &models.MapLabelingContent{}
	}

	available := resolveMapAnswers(answers, rctx)

	results := make([]models.QuestionResult, 0, len(content.Boxes))
	for i, box := range content.Boxes {
		expected := box.Answer
		if expected == "" {
			expected = box.Label
		}

		result := baseResult(q)
		result.QuestionID = fmt.Sprintf("%s_%d", q.ID, i)
		if box.Label != "" {
			result.QuestionText = box.Label
		}
		result.CorrectAnswer = expected
		result.UserAnswer = noAnswerProvided

		if i < len(available) {
			res := available[i]
			rctx.MarkKeyUsed(res.Key)
			result.UserAnswer = displayAnswer(res.Value)
			result.IsCorrect = Matches(res.Value, expected)
			markAmbiguous(&result, &res)
		}
		if result.IsCorrect {
			result.Points = q.Points
		}
		results = append(results, result)
	}
	return results
}

type essayGrader struct{}

// Grade has no correctness concept for essays: a non-empty answer earns
// 60% of the question's points pending manual review, an empty one earns
// nothing.
func (essayGrader) Grade(q *models.Question, answers models.AnswerMap, rctx *ResolutionContext) []models.QuestionResult {
	result := baseResult(q)
	result.Explanation = essayReviewNote

	var text string
	if res := resolverFor(q.Type).Resolve(q, answers, rctx); res != nil {
		text = strings.TrimSpace(displayRaw(res.Value))
	}
	result.UserAnswer = text

	if text != "" {
		result.Points = q.Points * 0.6
		if content, ok := q.Content.(*models.EssayContent); ok && content.MinWords > 0 {
			if words := len(strings.Fields(text)); words < content.MinWords {
				result.Explanation = fmt.Sprintf("%s (%d words, minimum %d)", essayReviewNote, words, content.MinWords)
			}
		}
	}
	return []models.QuestionResult{result}
}

func baseResult(q *models.Question) models.QuestionResult {
	return models.QuestionResult{
		QuestionID:   q.ID,
		QuestionText: q.Text,
		QuestionType: q.Type,
		Section:      q.Section,
	}
}

func markAmbiguous(result *models.QuestionResult, res *Resolved) {
	if res.Ambiguous {
		result.AmbiguousResolution = true
		result.Explanation = ambiguousNote
	}
}

// displayAnswer renders a resolved answer value for the result record.
func displayAnswer(v any) string {
	s := strings.TrimSpace(displayRaw(v))
	if s == "" {
		return noAnswerProvided
	}
	return s
}

// displayRaw preserves the original casing, unlike Normalize.
func displayRaw(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case []string:
		return strings.Join(t, ", ")
	case []any:
		parts := make([]string, 0, len(t))
		for _, item := range t {
			parts = append(parts, fmt.Sprintf("%v", item))
		}
		return strings.Join(parts, ", ")
	default:
		return fmt.Sprintf("%v", t)
	}
}

func answerSpecDisplay(spec models.AnswerSpec) string {
	switch s := spec.(type) {
	case models.LiteralSpec:
		return string(s)
	case models.OneOfSpec:
		return strings.Join(s, ", ")
	case models.IndexSpec:
		return fmt.Sprintf("%d", int(s))
	}
	return ""
}

func toStringList(v any) []string {
	switch t := v.(type) {
	case []string:
		return t
	case []any:
		out := make([]string, 0, len(t))
		for _, item := range t {
			out = append(out, fmt.Sprintf("%v", item))
		}
		return out
	case nil:
		return nil
	default:
		return []string{fmt.Sprintf("%v", t)}
	}
}
