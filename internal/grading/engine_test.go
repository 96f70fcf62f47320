package grading

import (
	"testing"

	"github.com/ielts-center/grading-service/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func shortAnswerQuestion(id string, number int, accepted string) models.Question {
	return models.Question{
		ID:      id,
		Number:  number,
		Type:    models.ShortAnswer,
		Section: models.SectionReading,
		Points:  1,
		Text:    "reading question " + id,
		Content: &models.ShortAnswerContent{Accepted: models.LiteralSpec(accepted)},
	}
}

func TestEngineGradeReadingScenario(t *testing.T) {
	bank := &models.QuestionBank{
		TestID: "test-1",
		Reading: []models.Question{
			shortAnswerQuestion("r1", 0, "oxygen"),
			shortAnswerQuestion("r2", 1, "glacier"),
			shortAnswerQuestion("r3", 2, "harvest"),
			shortAnswerQuestion("r4", 3, "migration"),
		},
	}
	sub := &models.Submission{
		ID:     "sub-1",
		TestID: "test-1",
		Answers: models.AnswerMap{
			"r1": "Oxygen",
			"r2": "glacier",
			"r3": "harvest",
			"r4": "hibernation",
		},
	}

	result := NewEngine().Grade(sub, bank)

	assert.Equal(t, "sub-1", result.SubmissionID)
	assert.Equal(t, 3, result.Reading.Correct)
	assert.Equal(t, 4, result.Reading.Total)
	assert.Equal(t, 75.0, result.Reading.Percentage)
	assert.Equal(t, BandScore(3, 4, models.SectionReading), result.Bands.Reading)
	assert.Len(t, result.DetailedResults, 4)

	// Listening and writing are absent: excluded from the overall band.
	assert.Equal(t, 0.0, result.Bands.Listening)
	assert.Equal(t, 0.0, result.Bands.Writing)
	assert.Equal(t, OverallBand(result.Bands.Reading), result.Bands.Overall)
	assert.Equal(t, result.Bands.Overall*10, result.TotalScore)
}

func TestEngineDuplicateQuestionGradedOnce(t *testing.T) {
	dup := shortAnswerQuestion("r1", 0, "oxygen")
	bank := &models.QuestionBank{
		TestID:  "test-1",
		Reading: []models.Question{dup, dup},
	}
	sub := &models.Submission{ID: "sub-1", Answers: models.AnswerMap{"r1": "oxygen"}}

	result := NewEngine().Grade(sub, bank)
	require.Len(t, result.DetailedResults, 1)
	assert.Equal(t, 1, result.Reading.Total)
}

func TestEngineGradesInQuestionNumberOrder(t *testing.T) {
	bank := &models.QuestionBank{
		Reading: []models.Question{
			shortAnswerQuestion("r2", 2, "b"),
			shortAnswerQuestion("r1", 1, "a"),
		},
	}
	sub := &models.Submission{ID: "sub-1", Answers: models.AnswerMap{}}

	result := NewEngine().Grade(sub, bank)
	require.Len(t, result.DetailedResults, 2)
	assert.Equal(t, "r1", result.DetailedResults[0].QuestionID)
	assert.Equal(t, "r2", result.DetailedResults[1].QuestionID)
}

func TestEngineWritingSection(t *testing.T) {
	bank := &models.QuestionBank{
		Writing: []models.Question{
			{
				ID:      "w1",
				Number:  1,
				Type:    models.Essay,
				Section: models.SectionWriting,
				Points:  5,
				Content: &models.EssayContent{MinWords: 150},
			},
			{
				ID:      "w2",
				Number:  2,
				Type:    models.Essay,
				Section: models.SectionWriting,
				Points:  5,
				Content: &models.EssayContent{MinWords: 250},
			},
		},
	}
	sub := &models.Submission{
		ID: "sub-1",
		Answers: models.AnswerMap{
			"w1": "An essay about city transport policy.",
			// w2 left unanswered.
		},
	}

	result := NewEngine().Grade(sub, bank)

	// 3 of 10 possible points -> 30%.
	assert.Equal(t, 30.0, result.Writing.Score)
	assert.Equal(t, WritingBand(3, 10), result.Bands.Writing)
	assert.Equal(t, result.Bands.Writing, result.Writing.Criteria.TaskAchievement)
	assert.Len(t, result.DetailedResults, 2)
}

func TestEngineMixedSectionsEndToEnd(t *testing.T) {
	bank := &models.QuestionBank{
		Reading: []models.Question{
			{
				ID: "mc-1", Number: 1, Type: models.MultipleChoice,
				Section: models.SectionReading, Points: 1,
				Content: &models.MultipleChoiceContent{
					Options: []string{"True", "False", "Not Given"},
					Answer:  models.IndexSpec(0),
				},
			},
			{
				ID: "m-1", Number: 2, Type: models.Matching,
				Section: models.SectionReading, Points: 1,
				Content: &models.MatchingContent{
					Left:  []string{"A", "B"},
					Right: []string{"first", "second"},
				},
			},
		},
		Listening: []models.Question{
			{
				ID: "map-1", Number: 1, Type: models.MapLabeling,
				Section: models.SectionListening, Points: 1,
				Content: &models.MapLabelingContent{
					Boxes: []models.LabelBox{{Label: "1", Answer: "bridge"}},
				},
			},
		},
	}
	sub := &models.Submission{
		ID: "sub-9",
		Answers: models.AnswerMap{
			"mc-1":           "TRUE",
			"m-1_0":          "first",
			"m-1_1":          "third",
			"map_1700000001": "bridge",
		},
	}

	result := NewEngine().Grade(sub, bank)

	// Matching contributes one result per pair.
	assert.Equal(t, 3, result.Reading.Total)
	assert.Equal(t, 2, result.Reading.Correct)
	assert.Equal(t, 1, result.Listening.Total)
	assert.Equal(t, 1, result.Listening.Correct)
	assert.Len(t, result.DetailedResults, 4)
}
