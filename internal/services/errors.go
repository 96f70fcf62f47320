package services

import (
	"errors"
	"fmt"

	apperrors "github.com/ielts-center/grading-service/internal/errors"
)

// ===== SERVICE ERRORS =====

var (
	ErrSubmissionNotFound    = errors.New("submission not found")
	ErrQuestionBankNotFound  = errors.New("question bank not found for test")
	ErrSubmissionNotGradable = errors.New("submission has no answers to grade")
	ErrResultNotFound        = errors.New("grading result not found")
)

// Use shared validation errors from errors package
type ValidationError = apperrors.ValidationError
type ValidationErrors = apperrors.ValidationErrors

// GradingError wraps a fatal failure of one grading run with the
// submission it belongs to.
type GradingError struct {
	SubmissionID string `json:"submission_id"`
	Stage        string `json:"stage"` // "load", "grade", "persist"
	Err          error  `json:"-"`
}

func (ge *GradingError) Error() string {
	return fmt.Sprintf("grading failed for submission %s at %s: %v", ge.SubmissionID, ge.Stage, ge.Err)
}

func (ge *GradingError) Unwrap() error {
	return ge.Err
}

func NewGradingError(submissionID, stage string, err error) *GradingError {
	return &GradingError{
		SubmissionID: submissionID,
		Stage:        stage,
		Err:          err,
	}
}
