package postgres

import (
	"context"

	"github.com/ielts-center/grading-service/internal/models"
	"github.com/ielts-center/grading-service/internal/repositories"
	"gorm.io/gorm"
)

type QuestionPostgreSQL struct {
	db *gorm.DB
}

func NewQuestionPostgreSQL(db *gorm.DB) repositories.QuestionRepository {
	return &QuestionPostgreSQL{db: db}
}

// GetByTest loads every question of a test grouped into sections, in
// question-number order. Rows with malformed option/answer JSON still
// load; their content degrades to empty specs (see models.ParseQuestion).
func (q QuestionPostgreSQL) GetByTest(ctx context.Context, testID string) (*models.QuestionBank, error) {
	var rows []models.QuestionRecord
	if err := q.db.WithContext(ctx).
		Where("test_id = ?", testID).
		Order("section, number").
		Find(&rows).Error; err != nil {
		return nil, err
	}

	bank := &models.QuestionBank{TestID: testID}
	for i := range rows {
		parsed := models.ParseQuestion(&rows[i])
		switch rows[i].Section {
		case models.SectionReading:
			bank.Reading = append(bank.Reading, parsed)
		case models.SectionListening:
			bank.Listening = append(bank.Listening, parsed)
		case models.SectionWriting:
			bank.Writing = append(bank.Writing, parsed)
		}
	}
	return bank, nil
}
