package models

import "time"

// QuestionResult is the graded outcome of one question or one sub-item
// (a matching pair or a map box). Matching and multiple-selection
// questions with n pairs/values produce exactly n results.
type QuestionResult struct {
	QuestionID    string       `json:"question_id"`
	QuestionText  string       `json:"question_text"`
	QuestionType  QuestionType `json:"question_type"`
	Section       Section      `json:"section"`
	UserAnswer    string       `json:"user_answer"`
	CorrectAnswer string       `json:"correct_answer"`
	IsCorrect     bool         `json:"is_correct"`
	Points        float64      `json:"points"`
	Explanation   string       `json:"explanation,omitempty"`

	// AmbiguousResolution marks answers that were located through a
	// heuristic key fallback rather than an exact key match. Such rows
	// should be surfaced for manual review.
	AmbiguousResolution bool `json:"ambiguous_resolution,omitempty"`
}

type SectionBreakdown struct {
	Correct    int     `json:"correct"`
	Total      int     `json:"total"`
	Percentage float64 `json:"percentage"`
}

// WritingCriteria is a placeholder breakdown until writing tasks are
// scored by human graders; all fields carry the section band.
type WritingCriteria struct {
	TaskAchievement   float64 `json:"task_achievement"`
	CoherenceCohesion float64 `json:"coherence_cohesion"`
	LexicalResource   float64 `json:"lexical_resource"`
	GrammaticalRange  float64 `json:"grammatical_range"`
}

type WritingBreakdown struct {
	Score    float64         `json:"score"` // earned points as a percentage of possible
	Criteria WritingCriteria `json:"criteria"`
}

type BandScores struct {
	Reading   float64 `json:"reading"`
	Listening float64 `json:"listening"`
	Writing   float64 `json:"writing"`
	Overall   float64 `json:"overall"`
}

// GradingResult is the engine's sole output: constructed fresh on every
// grading run, never mutated after construction.
type GradingResult struct {
	SubmissionID    string           `json:"submission_id"`
	Reading         SectionBreakdown `json:"reading"`
	Listening       SectionBreakdown `json:"listening"`
	Writing         WritingBreakdown `json:"writing"`
	Bands           BandScores       `json:"band_scores"`
	TotalScore      float64          `json:"total_score"` // overall band * 10
	DetailedResults []QuestionResult `json:"detailed_results"`
	GradedAt        time.Time        `json:"graded_at"`
}
