package repositories

import (
	"context"
	"errors"

	"github.com/ielts-center/grading-service/internal/models"
	"gorm.io/gorm"
)

// SubmissionRepository reads student submissions and records grading
// status transitions. The unique pending->graded transition is what
// serializes concurrent grading of the same submission.
type SubmissionRepository interface {
	GetByID(ctx context.Context, id string) (*models.Submission, error)
	MarkGraded(ctx context.Context, id string, gradedBy string) error
}

// QuestionRepository loads the authoritative question bank of a test,
// ordered by question number within each section.
type QuestionRepository interface {
	GetByTest(ctx context.Context, testID string) (*models.QuestionBank, error)
}

// ResultRepository persists and reads grading results.
type ResultRepository interface {
	Save(ctx context.Context, result *models.ExamResult) error
	GetBySubmission(ctx context.Context, submissionID string) (*models.ExamResult, error)
	ListByTest(ctx context.Context, testID string) ([]*models.ExamResult, error)
}

// Repository aggregates the persistence collaborators of the grading
// service.
type Repository interface {
	Submission() SubmissionRepository
	Question() QuestionRepository
	Result() ResultRepository
}

func IsNotFoundError(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}
