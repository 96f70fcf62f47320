package models

import "time"

// AnswerMap is a flat map of answer-key -> answer value as collected by the
// test-taking UI. Keys are NOT guaranteed to equal question ids: widgets
// emit canonical ids, `{prefix}_{timestamp}` dynamic keys (mcq_, q_,
// matching_, map_) and `{questionId}_{index}` sub-item keys. Values are
// strings, string arrays or structured objects depending on the widget.
type AnswerMap map[string]any

// Submission is a raw student submission, read-only input to grading.
type Submission struct {
	ID          string    `json:"id"`
	TestID      string    `json:"test_id"`
	StudentID   string    `json:"student_id"`
	Answers     AnswerMap `json:"answers"`
	SubmittedAt time.Time `json:"submitted_at"`
}
