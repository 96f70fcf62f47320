package services

import (
	"context"
	"fmt"

	"github.com/ielts-center/grading-service/internal/repositories"
	"github.com/ielts-center/grading-service/internal/utils"
	"github.com/xuri/excelize/v2"
)

// ExportService produces downloadable reports of graded submissions.
type ExportService interface {
	ExportTestResults(ctx context.Context, testID string) ([]byte, error)
}

type exportService struct {
	repo   repositories.Repository
	logger utils.Logger
}

func NewExportService(repo repositories.Repository, logger utils.Logger) ExportService {
	return &exportService{
		repo:   repo,
		logger: logger,
	}
}

var resultExportHeaders = []string{
	"Submission ID", "Student ID", "Graded By",
	"Reading Correct", "Reading Total", "Reading Band",
	"Listening Correct", "Listening Total", "Listening Band",
	"Writing Score", "Writing Band",
	"Overall Band", "Total Score", "Graded At",
}

// ExportTestResults builds an Excel workbook with one row per graded
// submission of the test.
func (s *exportService) ExportTestResults(ctx context.Context, testID string) ([]byte, error) {
	results, err := s.repo.Result().ListByTest(ctx, testID)
	if err != nil {
		return nil, fmt.Errorf("failed to list results: %w", err)
	}
	if len(results) == 0 {
		return nil, ErrResultNotFound
	}

	f := excelize.NewFile()
	defer f.Close()

	sheet := f.GetSheetName(0)
	for col, header := range resultExportHeaders {
		cell, _ := excelize.CoordinatesToCellName(col+1, 1)
		if err := f.SetCellValue(sheet, cell, header); err != nil {
			return nil, fmt.Errorf("failed to write header: %w", err)
		}
	}

	for i, result := range results {
		values := []any{
			result.SubmissionID, result.StudentID, result.GradedBy,
			result.ReadingCorrect, result.ReadingTotal, result.ReadingBand,
			result.ListeningCorrect, result.ListeningTotal, result.ListeningBand,
			result.WritingScore, result.WritingBand,
			result.OverallBand, result.TotalScore,
			result.GradedAt.Format("2006-01-02 15:04:05"),
		}
		for col, value := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, i+2)
			if err := f.SetCellValue(sheet, cell, value); err != nil {
				return nil, fmt.Errorf("failed to write row %d: %w", i+2, err)
			}
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to serialize workbook: %w", err)
	}

	s.logger.Info("Exported test results", "test_id", testID, "rows", len(results))
	return buf.Bytes(), nil
}
