package postgres

import (
	"context"
	"time"

	"github.com/ielts-center/grading-service/internal/models"
	"github.com/ielts-center/grading-service/internal/repositories"
	"gorm.io/gorm"
)

type SubmissionPostgreSQL struct {
	db *gorm.DB
}

func NewSubmissionPostgreSQL(db *gorm.DB) repositories.SubmissionRepository {
	return &SubmissionPostgreSQL{db: db}
}

func (s SubmissionPostgreSQL) GetByID(ctx context.Context, id string) (*models.Submission, error) {
	var rec models.SubmissionRecord
	if err := s.db.WithContext(ctx).First(&rec, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return models.ParseSubmission(&rec), nil
}

func (s SubmissionPostgreSQL) MarkGraded(ctx context.Context, id string, gradedBy string) error {
	now := time.Now()
	return s.db.WithContext(ctx).
		Model(&models.SubmissionRecord{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"status":     models.SubmissionGraded,
			"graded_by":  gradedBy,
			"graded_at":  now,
			"updated_at": now,
		}).Error
}
