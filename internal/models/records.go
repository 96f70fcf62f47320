package models

import (
	"time"

	"gorm.io/datatypes"
)

type SubmissionStatus string

const (
	SubmissionPending SubmissionStatus = "pending"
	SubmissionGraded  SubmissionStatus = "graded"
)

// SubmissionRecord is the persisted form of a student submission.
type SubmissionRecord struct {
	ID        string           `json:"id" gorm:"primaryKey;size:64"`
	TestID    string           `json:"test_id" gorm:"not null;size:64;index"`
	StudentID string           `json:"student_id" gorm:"not null;size:64;index"`
	Status    SubmissionStatus `json:"status" gorm:"default:pending;index"`
	Answers   datatypes.JSON   `json:"answers" gorm:"type:jsonb"` // AnswerMap
	GradedBy  *string          `json:"graded_by" gorm:"size:64"`
	GradedAt  *time.Time       `json:"graded_at"`

	SubmittedAt time.Time `json:"submitted_at"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (SubmissionRecord) TableName() string {
	return "submissions"
}

// QuestionRecord is the persisted form of a question. Options and
// CorrectAnswer arrive as JSON written by several generations of the
// authoring UI and are parsed defensively (see ParseQuestion).
type QuestionRecord struct {
	ID      string       `json:"id" gorm:"primaryKey;size:64"`
	TestID  string       `json:"test_id" gorm:"not null;size:64;index"`
	Section Section      `json:"section" gorm:"not null;size:16;index"`
	Type    QuestionType `json:"type" gorm:"not null;size:32"`
	Number  int          `json:"question_number" gorm:"not null"`
	Text    string       `json:"text" gorm:"type:text"`

	Options       datatypes.JSON `json:"options" gorm:"type:jsonb"`
	CorrectAnswer datatypes.JSON `json:"correct_answer" gorm:"type:jsonb"`
	Points        float64        `json:"points" gorm:"default:1"`
	MinWords      int            `json:"min_words" gorm:"default:0"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (QuestionRecord) TableName() string {
	return "questions"
}

// ExamResult is the persisted summary of one grading run plus the
// flattened per-question results.
type ExamResult struct {
	ID           string `json:"id" gorm:"primaryKey;size:36"`
	SubmissionID string `json:"submission_id" gorm:"not null;size:64;uniqueIndex"`
	TestID       string `json:"test_id" gorm:"not null;size:64;index"`
	StudentID    string `json:"student_id" gorm:"size:64;index"`
	GradedBy     string `json:"graded_by" gorm:"size:64"`

	ReadingCorrect    int     `json:"reading_correct"`
	ReadingTotal      int     `json:"reading_total"`
	ReadingPercentage float64 `json:"reading_percentage"`

	ListeningCorrect    int     `json:"listening_correct"`
	ListeningTotal      int     `json:"listening_total"`
	ListeningPercentage float64 `json:"listening_percentage"`

	WritingScore float64 `json:"writing_score"`

	ReadingBand   float64 `json:"reading_band"`
	ListeningBand float64 `json:"listening_band"`
	WritingBand   float64 `json:"writing_band"`
	OverallBand   float64 `json:"overall_band"`
	TotalScore    float64 `json:"total_score"`

	Details datatypes.JSON `json:"details" gorm:"type:jsonb"` // []QuestionResult

	GradedAt  time.Time `json:"graded_at"`
	CreatedAt time.Time `json:"created_at"`
}

func (ExamResult) TableName() string {
	return "exam_results"
}
