package models

import (
	"encoding/json"
	"fmt"
)

type Section string

const (
	SectionReading   Section = "reading"
	SectionListening Section = "listening"
	SectionWriting   Section = "writing"
)

type QuestionType string

const (
	MultipleChoice    QuestionType = "multiple_choice"
	MultipleSelection QuestionType = "multiple_selection"
	Matching          QuestionType = "matching"
	ShortAnswer       QuestionType = "short_answer"
	MapLabeling       QuestionType = "map_labeling"
	Essay             QuestionType = "essay"
)

// AnswerSpec is the single internal encoding for a correct answer. The raw
// question bank stores correct answers inconsistently (option index, literal
// text, JSON-encoded arrays); everything is converted to one of these three
// variants at the loading boundary so the graders never re-parse JSON.
type AnswerSpec interface {
	isAnswerSpec()
}

// IndexSpec is a position into the question's option list.
type IndexSpec int

// LiteralSpec is the correct answer text itself. It may contain commas,
// in which case the matcher treats it as a list of alternatives.
type LiteralSpec string

// OneOfSpec accepts any of the listed answers.
type OneOfSpec []string

func (IndexSpec) isAnswerSpec()   {}
func (LiteralSpec) isAnswerSpec() {}
func (OneOfSpec) isAnswerSpec()   {}

// Question is a canonical question record from the test-authoring subsystem.
// Read-only input to grading.
type Question struct {
	ID      string       `json:"id"`
	Number  int          `json:"question_number"`
	Text    string       `json:"text"`
	Type    QuestionType `json:"type"`
	Section Section      `json:"section"`
	Points  float64      `json:"points"`

	Content QuestionContent `json:"content"`
}

// QuestionContent is the type-specific answer specification of a question.
type QuestionContent interface {
	isQuestionContent()
}

type MultipleChoiceContent struct {
	Options []string   `json:"options"`
	Answer  AnswerSpec `json:"answer"` // IndexSpec into Options, or LiteralSpec
}

type MultipleSelectionContent struct {
	Options       []string `json:"options"`
	CorrectValues []string `json:"correct_values"` // literal values, not indices
}

// MatchingContent pairs Left[i] with Right[i] positionally.
type MatchingContent struct {
	Left  []string `json:"left"`
	Right []string `json:"right"`
}

type ShortAnswerContent struct {
	Accepted AnswerSpec `json:"accepted"` // LiteralSpec or OneOfSpec
}

type MapLabelingContent struct {
	Boxes []LabelBox `json:"boxes"`
}

// LabelBox is one labeled box on a map/diagram question. Answer is the
// expected text; Label is used as a fallback when Answer is absent.
type LabelBox struct {
	Label  string `json:"label"`
	Answer string `json:"answer"`
}

type EssayContent struct {
	MinWords int `json:"min_words"`
}

func (*MultipleChoiceContent) isQuestionContent()    {}
func (*MultipleSelectionContent) isQuestionContent() {}
func (*MatchingContent) isQuestionContent()          {}
func (*ShortAnswerContent) isQuestionContent()       {}
func (*MapLabelingContent) isQuestionContent()       {}
func (*EssayContent) isQuestionContent()             {}

// UnmarshalJSON decodes the content variant indicated by the question's
// type tag. Cached question banks are stored as JSON, so a bank must
// survive the marshal/unmarshal round-trip through this codec.
func (q *Question) UnmarshalJSON(data []byte) error {
	type plain Question
	var aux struct {
		plain
		Content json.RawMessage `json:"content"`
	}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	*q = Question(aux.plain)
	q.Content = nil
	if len(aux.Content) == 0 || string(aux.Content) == "null" {
		return nil
	}

	var content QuestionContent
	switch q.Type {
	case MultipleChoice:
		content = &MultipleChoiceContent{}
	case MultipleSelection:
		content = &MultipleSelectionContent{}
	case Matching:
		content = &MatchingContent{}
	case ShortAnswer:
		content = &ShortAnswerContent{}
	case MapLabeling:
		content = &MapLabelingContent{}
	case Essay:
		content = &EssayContent{}
	default:
		return nil
	}
	if err := json.Unmarshal(aux.Content, content); err != nil {
		return err
	}
	q.Content = content
	return nil
}

func (c *MultipleChoiceContent) UnmarshalJSON(data []byte) error {
	var aux struct {
		Options []string        `json:"options"`
		Answer  json.RawMessage `json:"answer"`
	}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	answer, err := unmarshalAnswerSpec(aux.Answer)
	if err != nil {
		return err
	}
	c.Options = aux.Options
	c.Answer = answer
	return nil
}

func (c *ShortAnswerContent) UnmarshalJSON(data []byte) error {
	var aux struct {
		Accepted json.RawMessage `json:"accepted"`
	}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	accepted, err := unmarshalAnswerSpec(aux.Accepted)
	if err != nil {
		return err
	}
	c.Accepted = accepted
	return nil
}

// unmarshalAnswerSpec maps the JSON kind back onto the spec variant:
// numbers are option indices, strings are literals, arrays are any-of
// lists. The three variants marshal to distinct kinds, so no type tag is
// needed.
func unmarshalAnswerSpec(raw json.RawMessage) (AnswerSpec, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return nil, nil
	}
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil, err
	}
	switch t := v.(type) {
	case float64:
		return IndexSpec(int(t)), nil
	case string:
		return LiteralSpec(t), nil
	case []any:
		list := make([]string, 0, len(t))
		for _, item := range t {
			s, ok := item.(string)
			if !ok {
				return nil, fmt.Errorf("answer spec list holds %T, want string", item)
			}
			list = append(list, s)
		}
		return OneOfSpec(list), nil
	}
	return nil, fmt.Errorf("unsupported answer spec kind %T", v)
}

// QuestionBank is the authoritative question set of a test, one ordered
// list per section.
type QuestionBank struct {
	TestID    string     `json:"test_id"`
	Reading   []Question `json:"reading"`
	Listening []Question `json:"listening"`
	Writing   []Question `json:"writing"`
}

func (b *QuestionBank) BySection(s Section) []Question {
	switch s {
	case SectionReading:
		return b.Reading
	case SectionListening:
		return b.Listening
	case SectionWriting:
		return b.Writing
	}
	return nil
}
