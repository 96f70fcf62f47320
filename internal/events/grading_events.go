package events

import (
	"time"

	"github.com/google/uuid"
)

// EventType identifies the grading lifecycle events this service emits.
type EventType string

const (
	EventSubmissionGraded     EventType = "submission.graded"
	EventManualReviewRequired EventType = "grading.manual_review_required"
)

// GradingEvent is the envelope published to the grading topic.
type GradingEvent struct {
	ID        string         `json:"id"`
	Type      EventType      `json:"type"`
	Timestamp time.Time      `json:"timestamp"`
	Source    string         `json:"source"`
	Data      any            `json:"data"`
	Metadata  map[string]any `json:"metadata,omitempty"`
}

// SubmissionGradedEvent is emitted after a grading result is persisted.
type SubmissionGradedEvent struct {
	SubmissionID  string  `json:"submission_id"`
	TestID        string  `json:"test_id"`
	StudentID     string  `json:"student_id"`
	GradedBy      string  `json:"graded_by"`
	OverallBand   float64 `json:"overall_band"`
	ReadingBand   float64 `json:"reading_band"`
	ListeningBand float64 `json:"listening_band"`
	WritingBand   float64 `json:"writing_band"`
	TotalScore    float64 `json:"total_score"`
}

// ManualReviewRequiredEvent is emitted when a graded submission contains
// essay answers or ambiguously resolved results that need an examiner.
type ManualReviewRequiredEvent struct {
	SubmissionID   string   `json:"submission_id"`
	TestID         string   `json:"test_id"`
	QuestionIDs    []string `json:"question_ids"`
	PendingReasons []string `json:"pending_reasons"`
}

// NewGradingEvent wraps a payload into a publishable envelope.
func NewGradingEvent(eventType EventType, data any) *GradingEvent {
	return &GradingEvent{
		ID:        uuid.NewString(),
		Type:      eventType,
		Timestamp: time.Now(),
		Source:    "grading-service",
		Data:      data,
	}
}
