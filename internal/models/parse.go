package models

import (
	"encoding/json"
	"strconv"
	"strings"
)

// ParseQuestion converts a stored question row into a typed Question.
// Options/correct-answer JSON has been written by several generations of
// the authoring UI; anything malformed degrades to an empty options list
// or an empty answer spec. Parsing never fails: a question must always
// produce some result rather than abort the submission.
func ParseQuestion(rec *QuestionRecord) Question {
	q := Question{
		ID:      rec.ID,
		Number:  rec.Number,
		Text:    rec.Text,
		Type:    rec.Type,
		Section: rec.Section,
		Points:  rec.Points,
	}
	if q.Points <= 0 {
		q.Points = 1
	}

	switch rec.Type {
	case MultipleChoice:
		q.Content = &MultipleChoiceContent{
			Options: parseStringList(rec.Options),
			Answer:  parseChoiceAnswer(rec.CorrectAnswer),
		}
	case MultipleSelection:
		q.Content = &MultipleSelectionContent{
			Options:       parseStringList(rec.Options),
			CorrectValues: parseStringList(rec.CorrectAnswer),
		}
	case Matching:
		q.Content = parseMatchingContent(rec.Options, rec.CorrectAnswer)
	case ShortAnswer:
		q.Content = &ShortAnswerContent{
			Accepted: parseShortAnswer(rec.CorrectAnswer),
		}
	case MapLabeling:
		q.Content = &MapLabelingContent{
			Boxes: parseLabelBoxes(rec.Options),
		}
	case Essay:
		q.Content = &EssayContent{MinWords: rec.MinWords}
	}

	return q
}

// ParseSubmission converts a stored submission row into the flat answer
// map consumed by the grading engine.
func ParseSubmission(rec *SubmissionRecord) *Submission {
	answers := AnswerMap{}
	if len(rec.Answers) > 0 {
		// Malformed answer JSON leaves the map empty: every question
		// grades as unanswered instead of the run failing.
		_ = json.Unmarshal(rec.Answers, &answers)
	}
	return &Submission{
		ID:          rec.ID,
		TestID:      rec.TestID,
		StudentID:   rec.StudentID,
		Answers:     answers,
		SubmittedAt: rec.SubmittedAt,
	}
}

// parseStringList reads a JSON value as a list of strings. Accepts a
// plain array, an array of option objects ({"text": ...} or
// {"value": ...}), or a double-encoded array (JSON string containing
// JSON). Anything else yields an empty list.
func parseStringList(raw []byte) []string {
	if len(raw) == 0 {
		return nil
	}

	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil
	}

	// Double-encoded: a JSON string that itself holds a JSON array.
	if s, ok := v.(string); ok {
		inner := strings.TrimSpace(s)
		if strings.HasPrefix(inner, "[") {
			if err := json.Unmarshal([]byte(inner), &v); err != nil {
				return nil
			}
		} else if inner != "" {
			return []string{inner}
		} else {
			return nil
		}
	}

	arr, ok := v.([]any)
	if !ok {
		return nil
	}

	out := make([]string, 0, len(arr))
	for _, item := range arr {
		switch t := item.(type) {
		case string:
			out = append(out, t)
		case map[string]any:
			if s, ok := t["text"].(string); ok {
				out = append(out, s)
			} else if s, ok := t["value"].(string); ok {
				out = append(out, s)
			}
		case float64:
			out = append(out, strconv.FormatFloat(t, 'f', -1, 64))
		}
	}
	return out
}

// parseChoiceAnswer decodes a multiple-choice correct answer, which may be
// an option index ("2" or 2) or the literal option text ("Not Given").
func parseChoiceAnswer(raw []byte) AnswerSpec {
	s := decodeScalar(raw)
	if s == "" {
		if list := parseStringList(raw); len(list) > 0 {
			return OneOfSpec(list)
		}
		return LiteralSpec("")
	}
	if n, err := strconv.Atoi(strings.TrimSpace(s)); err == nil {
		return IndexSpec(n)
	}
	return LiteralSpec(s)
}

// parseShortAnswer decodes a short-answer spec: a JSON array takes its
// first element (which may itself be comma-separated alternatives),
// otherwise the value is used as-is.
func parseShortAnswer(raw []byte) AnswerSpec {
	if list := parseStringList(raw); len(list) > 0 {
		return LiteralSpec(list[0])
	}
	return LiteralSpec(decodeScalar(raw))
}

// parseMatchingContent reads the positional left/right item lists. Newer
// records store a {"left": [...], "right": [...]} object in the options
// column; older ones store left in options and right in correct_answer.
func parseMatchingContent(options, correct []byte) *MatchingContent {
	var obj struct {
		Left  []string `json:"left"`
		Right []string `json:"right"`
	}
	if err := json.Unmarshal(options, &obj); err == nil && len(obj.Left) > 0 {
		return &MatchingContent{Left: obj.Left, Right: obj.Right}
	}
	return &MatchingContent{
		Left:  parseStringList(options),
		Right: parseStringList(correct),
	}
}

func parseLabelBoxes(raw []byte) []LabelBox {
	if len(raw) == 0 {
		return nil
	}
	var boxes []LabelBox
	if err := json.Unmarshal(raw, &boxes); err == nil {
		return boxes
	}
	// Fall back to a plain list of expected answers.
	list := parseStringList(raw)
	boxes = make([]LabelBox, 0, len(list))
	for _, answer := range list {
		boxes = append(boxes, LabelBox{Answer: answer})
	}
	return boxes
}

// decodeScalar reads a JSON scalar as its string form. Non-JSON input is
// returned verbatim so legacy plain-text columns still resolve.
func decodeScalar(raw []byte) string {
	if len(raw) == 0 {
		return ""
	}
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return strings.TrimSpace(string(raw))
	}
	switch t := v.(type) {
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(t)
	}
	return ""
}
