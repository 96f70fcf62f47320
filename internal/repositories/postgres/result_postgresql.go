package postgres

import (
	"context"

	"github.com/ielts-center/grading-service/internal/models"
	"github.com/ielts-center/grading-service/internal/repositories"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ResultPostgreSQL struct {
	db *gorm.DB
}

func NewResultPostgreSQL(db *gorm.DB) repositories.ResultRepository {
	return &ResultPostgreSQL{db: db}
}

// Save upserts on submission_id: re-grading a submission replaces its
// previous result instead of accumulating rows.
func (r ResultPostgreSQL) Save(ctx context.Context, result *models.ExamResult) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "submission_id"}},
			UpdateAll: true,
		}).
		Create(result).Error
}

func (r ResultPostgreSQL) GetBySubmission(ctx context.Context, submissionID string) (*models.ExamResult, error) {
	var result models.ExamResult
	if err := r.db.WithContext(ctx).First(&result, "submission_id = ?", submissionID).Error; err != nil {
		return nil, err
	}
	return &result, nil
}

func (r ResultPostgreSQL) ListByTest(ctx context.Context, testID string) ([]*models.ExamResult, error) {
	var results []*models.ExamResult
	if err := r.db.WithContext(ctx).
		Where("test_id = ?", testID).
		Order("created_at").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

// repository bundles the postgres implementations behind the aggregate
// Repository interface.
type repository struct {
	submission repositories.SubmissionRepository
	question   repositories.QuestionRepository
	result     repositories.ResultRepository
}

func NewRepository(db *gorm.DB) repositories.Repository {
	return &repository{
		submission: NewSubmissionPostgreSQL(db),
		question:   NewQuestionPostgreSQL(db),
		result:     NewResultPostgreSQL(db),
	}
}

func (r *repository) Submission() repositories.SubmissionRepository { return r.submission }
func (r *repository) Question() repositories.QuestionRepository     { return r.question }
func (r *repository) Result() repositories.ResultRepository         { return r.result }
