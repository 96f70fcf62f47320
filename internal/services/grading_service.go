package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/ielts-center/grading-service/internal/cache"
	"github.com/ielts-center/grading-service/internal/events"
	"github.com/ielts-center/grading-service/internal/grading"
	"github.com/ielts-center/grading-service/internal/models"
	"github.com/ielts-center/grading-service/internal/repositories"
	"github.com/ielts-center/grading-service/internal/utils"
)

const questionBankCacheTTL = 15 * time.Minute

// GradingService runs the scoring engine over stored submissions and
// persists the outcome. Grading itself is pure; the service owns the
// I/O around it. Fetch and persistence failures surface to the caller
// untouched: retry policy belongs there, not here.
type GradingService interface {
	GradeSubmission(ctx context.Context, submissionID string) (*models.GradingResult, error)
	SaveGradingResult(ctx context.Context, submissionID string, result *models.GradingResult, gradedBy string) error
	GradeAndSave(ctx context.Context, submissionID, gradedBy string) (*models.GradingResult, error)
	GetResult(ctx context.Context, submissionID string) (*models.ExamResult, error)
	InvalidateQuestionBank(ctx context.Context, testID string) error
	InvalidateAllQuestionBanks(ctx context.Context) error
}

type gradingService struct {
	repo      repositories.Repository
	engine    *grading.Engine
	cache     cache.CacheService
	publisher events.EventPublisher
	logger    utils.Logger
}

func NewGradingService(
	repo repositories.Repository,
	cacheService cache.CacheService,
	publisher events.EventPublisher,
	logger utils.Logger,
) GradingService {
	return &gradingService{
		repo:      repo,
		engine:    grading.NewEngine(),
		cache:     cacheService,
		publisher: publisher,
		logger:    logger,
	}
}

// GradeSubmission loads the submission and its test's question bank and
// computes a fresh GradingResult. The computation is idempotent; nothing
// is written.
func (s *gradingService) GradeSubmission(ctx context.Context, submissionID string) (*models.GradingResult, error) {
	s.logger.Info("Grading submission", "submission_id", submissionID)

	submission, err := s.repo.Submission().GetByID(ctx, submissionID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrSubmissionNotFound
		}
		return nil, NewGradingError(submissionID, "load", fmt.Errorf("failed to get submission: %w", err))
	}
	if len(submission.Answers) == 0 {
		return nil, ErrSubmissionNotGradable
	}

	bank, err := s.loadQuestionBank(ctx, submission.TestID)
	if err != nil {
		return nil, NewGradingError(submissionID, "load", err)
	}

	result := s.engine.Grade(submission, bank)

	s.logger.Info("Submission graded",
		"submission_id", submissionID,
		"overall_band", result.Bands.Overall,
		"reading", fmt.Sprintf("%d/%d", result.Reading.Correct, result.Reading.Total),
		"listening", fmt.Sprintf("%d/%d", result.Listening.Correct, result.Listening.Total))

	return result, nil
}

// SaveGradingResult flattens the detailed results and persists them with
// the summary scores, marks the submission graded, and emits grading
// events. Persistence failures propagate to the caller; event publishing
// failures only log.
func (s *gradingService) SaveGradingResult(ctx context.Context, submissionID string, result *models.GradingResult, gradedBy string) error {
	submission, err := s.repo.Submission().GetByID(ctx, submissionID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return ErrSubmissionNotFound
		}
		return NewGradingError(submissionID, "persist", fmt.Errorf("failed to get submission: %w", err))
	}

	record, err := buildResultRecord(submission, result, gradedBy)
	if err != nil {
		return NewGradingError(submissionID, "persist", err)
	}

	if err := s.repo.Result().Save(ctx, record); err != nil {
		return NewGradingError(submissionID, "persist", fmt.Errorf("failed to save result: %w", err))
	}

	if err := s.repo.Submission().MarkGraded(ctx, submissionID, gradedBy); err != nil {
		return NewGradingError(submissionID, "persist", fmt.Errorf("failed to mark submission graded: %w", err))
	}

	s.publishGradingEvents(ctx, submission, result, gradedBy)

	s.logger.Info("Grading result saved",
		"submission_id", submissionID,
		"result_id", record.ID,
		"graded_by", gradedBy)

	return nil
}

func (s *gradingService) GradeAndSave(ctx context.Context, submissionID, gradedBy string) (*models.GradingResult, error) {
	result, err := s.GradeSubmission(ctx, submissionID)
	if err != nil {
		return nil, err
	}
	if err := s.SaveGradingResult(ctx, submissionID, result, gradedBy); err != nil {
		return nil, err
	}
	return result, nil
}

func (s *gradingService) GetResult(ctx context.Context, submissionID string) (*models.ExamResult, error) {
	result, err := s.repo.Result().GetBySubmission(ctx, submissionID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrResultNotFound
		}
		return nil, fmt.Errorf("failed to get result: %w", err)
	}
	return result, nil
}

// InvalidateQuestionBank drops the cached bank of a test after the
// authoring subsystem edits its questions.
func (s *gradingService) InvalidateQuestionBank(ctx context.Context, testID string) error {
	return s.cache.Delete(ctx, questionBankCacheKey(testID))
}

// InvalidateAllQuestionBanks drops every cached bank, used after bulk
// answer-key imports that touch an unknown set of tests.
func (s *gradingService) InvalidateAllQuestionBanks(ctx context.Context) error {
	return s.cache.DeletePattern(ctx, questionBankCacheKey("*"))
}

// loadQuestionBank reads through the redis cache; cache errors degrade
// to a direct repository read.
func (s *gradingService) loadQuestionBank(ctx context.Context, testID string) (*models.QuestionBank, error) {
	key := questionBankCacheKey(testID)

	var cached models.QuestionBank
	if err := s.cache.Get(ctx, key, &cached); err == nil {
		return &cached, nil
	} else if !errors.Is(err, cache.ErrCacheMiss) {
		s.logger.Warn("Question bank cache read failed", "test_id", testID, "error", err)
	}

	bank, err := s.repo.Question().GetByTest(ctx, testID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrQuestionBankNotFound
		}
		return nil, fmt.Errorf("failed to get question bank: %w", err)
	}
	if len(bank.Reading) == 0 && len(bank.Listening) == 0 && len(bank.Writing) == 0 {
		return nil, ErrQuestionBankNotFound
	}

	if err := s.cache.Set(ctx, key, bank, questionBankCacheTTL); err != nil {
		s.logger.Warn("Question bank cache write failed", "test_id", testID, "error", err)
	}

	return bank, nil
}

func (s *gradingService) publishGradingEvents(ctx context.Context, submission *models.Submission, result *models.GradingResult, gradedBy string) {
	event := events.NewGradingEvent(events.EventSubmissionGraded, events.SubmissionGradedEvent{
		SubmissionID:  submission.ID,
		TestID:        submission.TestID,
		StudentID:     submission.StudentID,
		GradedBy:      gradedBy,
		OverallBand:   result.Bands.Overall,
		ReadingBand:   result.Bands.Reading,
		ListeningBand: result.Bands.Listening,
		WritingBand:   result.Bands.Writing,
		TotalScore:    result.TotalScore,
	})
	if err := s.publisher.PublishGradingEvent(ctx, event); err != nil {
		s.logger.LogError(err, "Failed to publish submission graded event", "submission_id", submission.ID)
	}

	if pending := pendingReviewQuestions(result); len(pending) > 0 {
		reviewEvent := events.NewGradingEvent(events.EventManualReviewRequired, events.ManualReviewRequiredEvent{
			SubmissionID: submission.ID,
			TestID:       submission.TestID,
			QuestionIDs:  pending,
			PendingReasons: []string{
				"essay awaiting examiner review or ambiguous answer-key resolution",
			},
		})
		if err := s.publisher.PublishGradingEvent(ctx, reviewEvent); err != nil {
			s.logger.LogError(err, "Failed to publish manual review event", "submission_id", submission.ID)
		}
	}
}

// pendingReviewQuestions collects essay answers and ambiguously resolved
// results that an examiner should look at.
func pendingReviewQuestions(result *models.GradingResult) []string {
	var ids []string
	for _, r := range result.DetailedResults {
		if r.QuestionType == models.Essay || r.AmbiguousResolution {
			ids = append(ids, r.QuestionID)
		}
	}
	return ids
}

func buildResultRecord(submission *models.Submission, result *models.GradingResult, gradedBy string) (*models.ExamResult, error) {
	details, err := json.Marshal(result.DetailedResults)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal detailed results: %w", err)
	}

	return &models.ExamResult{
		ID:           uuid.NewString(),
		SubmissionID: submission.ID,
		TestID:       submission.TestID,
		StudentID:    submission.StudentID,
		GradedBy:     gradedBy,

		ReadingCorrect:    result.Reading.Correct,
		ReadingTotal:      result.Reading.Total,
		ReadingPercentage: result.Reading.Percentage,

		ListeningCorrect:    result.Listening.Correct,
		ListeningTotal:      result.Listening.Total,
		ListeningPercentage: result.Listening.Percentage,

		WritingScore: result.Writing.Score,

		ReadingBand:   result.Bands.Reading,
		ListeningBand: result.Bands.Listening,
		WritingBand:   result.Bands.Writing,
		OverallBand:   result.Bands.Overall,
		TotalScore:    result.TotalScore,

		Details:  details,
		GradedAt: result.GradedAt,
	}, nil
}

func questionBankCacheKey(testID string) string {
	return fmt.Sprintf("qbank:%s", testID)
}
