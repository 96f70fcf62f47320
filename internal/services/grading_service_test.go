package services

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/ielts-center/grading-service/internal/cache"
	"github.com/ielts-center/grading-service/internal/events"
	"github.com/ielts-center/grading-service/internal/models"
	"github.com/ielts-center/grading-service/internal/repositories"
	"github.com/ielts-center/grading-service/internal/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// MockSubmissionRepository is a mock implementation of SubmissionRepository
type MockSubmissionRepository struct {
	mock.Mock
}

func (m *MockSubmissionRepository) GetByID(ctx context.Context, id string) (*models.Submission, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Submission), args.Error(1)
}

func (m *MockSubmissionRepository) MarkGraded(ctx context.Context, id string, gradedBy string) error {
	args := m.Called(ctx, id, gradedBy)
	return args.Error(0)
}

// MockQuestionRepository is a mock implementation of QuestionRepository
type MockQuestionRepository struct {
	mock.Mock
}

func (m *MockQuestionRepository) GetByTest(ctx context.Context, testID string) (*models.QuestionBank, error) {
	args := m.Called(ctx, testID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.QuestionBank), args.Error(1)
}

// MockResultRepository is a mock implementation of ResultRepository
type MockResultRepository struct {
	mock.Mock
}

func (m *MockResultRepository) Save(ctx context.Context, result *models.ExamResult) error {
	args := m.Called(ctx, result)
	return args.Error(0)
}

func (m *MockResultRepository) GetBySubmission(ctx context.Context, submissionID string) (*models.ExamResult, error) {
	args := m.Called(ctx, submissionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ExamResult), args.Error(1)
}

func (m *MockResultRepository) ListByTest(ctx context.Context, testID string) ([]*models.ExamResult, error) {
	args := m.Called(ctx, testID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.ExamResult), args.Error(1)
}

type mockRepository struct {
	submission *MockSubmissionRepository
	question   *MockQuestionRepository
	result     *MockResultRepository
}

func newMockRepository() *mockRepository {
	return &mockRepository{
		submission: new(MockSubmissionRepository),
		question:   new(MockQuestionRepository),
		result:     new(MockResultRepository),
	}
}

func (r *mockRepository) Submission() repositories.SubmissionRepository { return r.submission }
func (r *mockRepository) Question() repositories.QuestionRepository     { return r.question }
func (r *mockRepository) Result() repositories.ResultRepository         { return r.result }

// noopCache always misses; writes are accepted and dropped.
type noopCache struct{}

func (noopCache) Set(ctx context.Context, key string, value any, ttl time.Duration) error { return nil }
func (noopCache) Get(ctx context.Context, key string, dest any) error {
	return cache.ErrCacheMiss
}
func (noopCache) Delete(ctx context.Context, key string) error { return nil }
func (noopCache) DeletePattern(ctx context.Context, pattern string) error { return nil }

// memoryCache stores values through the same JSON round-trip the redis
// cache uses, so a hit exercises the bank's marshal/unmarshal codec.
type memoryCache struct {
	data map[string][]byte
}

func newMemoryCache() *memoryCache {
	return &memoryCache{data: make(map[string][]byte)}
}

func (m *memoryCache) Set(ctx context.Context, key string, value any, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	m.data[key] = data
	return nil
}

func (m *memoryCache) Get(ctx context.Context, key string, dest any) error {
	data, ok := m.data[key]
	if !ok {
		return cache.ErrCacheMiss
	}
	return json.Unmarshal(data, dest)
}

func (m *memoryCache) Delete(ctx context.Context, key string) error {
	delete(m.data, key)
	return nil
}

func (m *memoryCache) DeletePattern(ctx context.Context, pattern string) error {
	m.data = make(map[string][]byte)
	return nil
}

func testBank() *models.QuestionBank {
	return &models.QuestionBank{
		TestID: "test-1",
		Reading: []models.Question{
			{
				ID: "r1", Number: 1, Type: models.ShortAnswer,
				Section: models.SectionReading, Points: 1,
				Content: &models.ShortAnswerContent{Accepted: models.LiteralSpec("oxygen")},
			},
			{
				ID: "r2", Number: 2, Type: models.ShortAnswer,
				Section: models.SectionReading, Points: 1,
				Content: &models.ShortAnswerContent{Accepted: models.LiteralSpec("glacier")},
			},
		},
	}
}

func testSubmission() *models.Submission {
	return &models.Submission{
		ID:        "sub-1",
		TestID:    "test-1",
		StudentID: "student-1",
		Answers:   models.AnswerMap{"r1": "Oxygen", "r2": "volcano"},
	}
}

func newTestService(repo *mockRepository, publisher events.EventPublisher) GradingService {
	return NewGradingService(repo, noopCache{}, publisher, utils.NewDevelopmentLogger())
}

func TestGradeSubmission(t *testing.T) {
	ctx := context.Background()

	t.Run("grades a loaded submission", func(t *testing.T) {
		repo := newMockRepository()
		repo.submission.On("GetByID", ctx, "sub-1").Return(testSubmission(), nil)
		repo.question.On("GetByTest", ctx, "test-1").Return(testBank(), nil)

		service := newTestService(repo, events.NewMockEventPublisher())
		result, err := service.GradeSubmission(ctx, "sub-1")

		require.NoError(t, err)
		assert.Equal(t, "sub-1", result.SubmissionID)
		assert.Equal(t, 1, result.Reading.Correct)
		assert.Equal(t, 2, result.Reading.Total)
		repo.submission.AssertExpectations(t)
		repo.question.AssertExpectations(t)
	})

	t.Run("second grade serves the question bank from cache", func(t *testing.T) {
		repo := newMockRepository()
		repo.submission.On("GetByID", ctx, "sub-1").Return(testSubmission(), nil)
		repo.question.On("GetByTest", ctx, "test-1").Return(testBank(), nil).Once()

		service := NewGradingService(repo, newMemoryCache(), events.NewMockEventPublisher(), utils.NewDevelopmentLogger())

		first, err := service.GradeSubmission(ctx, "sub-1")
		require.NoError(t, err)

		second, err := service.GradeSubmission(ctx, "sub-1")
		require.NoError(t, err)

		assert.Equal(t, first.Reading, second.Reading)
		assert.Equal(t, first.Bands, second.Bands)
		repo.question.AssertNumberOfCalls(t, "GetByTest", 1)
	})

	t.Run("submission without answers", func(t *testing.T) {
		repo := newMockRepository()
		empty := testSubmission()
		empty.Answers = models.AnswerMap{}
		repo.submission.On("GetByID", ctx, "sub-1").Return(empty, nil)

		service := newTestService(repo, events.NewMockEventPublisher())
		_, err := service.GradeSubmission(ctx, "sub-1")

		assert.ErrorIs(t, err, ErrSubmissionNotGradable)
	})

	t.Run("missing submission", func(t *testing.T) {
		repo := newMockRepository()
		repo.submission.On("GetByID", ctx, "missing").Return(nil, gorm.ErrRecordNotFound)

		service := newTestService(repo, events.NewMockEventPublisher())
		_, err := service.GradeSubmission(ctx, "missing")

		assert.ErrorIs(t, err, ErrSubmissionNotFound)
	})

	t.Run("missing question bank", func(t *testing.T) {
		repo := newMockRepository()
		repo.submission.On("GetByID", ctx, "sub-1").Return(testSubmission(), nil)
		repo.question.On("GetByTest", ctx, "test-1").Return(&models.QuestionBank{TestID: "test-1"}, nil)

		service := newTestService(repo, events.NewMockEventPublisher())
		_, err := service.GradeSubmission(ctx, "sub-1")

		assert.ErrorIs(t, err, ErrQuestionBankNotFound)
	})

	t.Run("upstream fetch failure propagates", func(t *testing.T) {
		repo := newMockRepository()
		repo.submission.On("GetByID", ctx, "sub-1").Return(testSubmission(), nil)
		repo.question.On("GetByTest", ctx, "test-1").Return(nil, errors.New("connection reset"))

		service := newTestService(repo, events.NewMockEventPublisher())
		_, err := service.GradeSubmission(ctx, "sub-1")

		require.Error(t, err)
		var gradingErr *GradingError
		require.ErrorAs(t, err, &gradingErr)
		assert.Equal(t, "load", gradingErr.Stage)
	})
}

func TestSaveGradingResult(t *testing.T) {
	ctx := context.Background()

	t.Run("persists result and publishes event", func(t *testing.T) {
		repo := newMockRepository()
		repo.submission.On("GetByID", ctx, "sub-1").Return(testSubmission(), nil)
		repo.question.On("GetByTest", ctx, "test-1").Return(testBank(), nil)
		repo.result.On("Save", ctx, mock.AnythingOfType("*models.ExamResult")).Return(nil)
		repo.submission.On("MarkGraded", ctx, "sub-1", "admin-1").Return(nil)

		publisher := events.NewMockEventPublisher()
		service := newTestService(repo, publisher)

		result, err := service.GradeAndSave(ctx, "sub-1", "admin-1")
		require.NoError(t, err)
		require.NotNil(t, result)

		require.NotEmpty(t, publisher.Events)
		assert.Equal(t, events.EventSubmissionGraded, publisher.Events[0].Type)
		payload, ok := publisher.Events[0].Data.(events.SubmissionGradedEvent)
		require.True(t, ok)
		assert.Equal(t, "sub-1", payload.SubmissionID)
		assert.Equal(t, result.Bands.Overall, payload.OverallBand)

		repo.result.AssertExpectations(t)
		repo.submission.AssertExpectations(t)
	})

	t.Run("persistence failure propagates", func(t *testing.T) {
		repo := newMockRepository()
		repo.submission.On("GetByID", ctx, "sub-1").Return(testSubmission(), nil)
		repo.result.On("Save", ctx, mock.AnythingOfType("*models.ExamResult")).Return(errors.New("disk full"))

		service := newTestService(repo, events.NewMockEventPublisher())
		err := service.SaveGradingResult(ctx, "sub-1", &models.GradingResult{SubmissionID: "sub-1"}, "admin-1")

		require.Error(t, err)
		var gradingErr *GradingError
		require.ErrorAs(t, err, &gradingErr)
		assert.Equal(t, "persist", gradingErr.Stage)
	})
}

func TestGetResult(t *testing.T) {
	ctx := context.Background()

	repo := newMockRepository()
	repo.result.On("GetBySubmission", ctx, "sub-1").Return(&models.ExamResult{SubmissionID: "sub-1"}, nil)
	repo.result.On("GetBySubmission", ctx, "missing").Return(nil, gorm.ErrRecordNotFound)

	service := newTestService(repo, events.NewMockEventPublisher())

	result, err := service.GetResult(ctx, "sub-1")
	require.NoError(t, err)
	assert.Equal(t, "sub-1", result.SubmissionID)

	_, err = service.GetResult(ctx, "missing")
	assert.ErrorIs(t, err, ErrResultNotFound)
}
