package grading

import (
	"testing"

	"github.com/ielts-center/grading-service/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMultipleChoiceGraderIndexSpec(t *testing.T) {
	q := &models.Question{
		ID:      "mc-1",
		Number:  1,
		Type:    models.MultipleChoice,
		Section: models.SectionReading,
		Points:  1,
		Content: &models.MultipleChoiceContent{
			Options: []string{"Alpha", "Beta", "Gamma"},
			Answer:  models.IndexSpec(1),
		},
	}

	results := multipleChoiceGrader{}.Grade(q, models.AnswerMap{"mc-1": "beta"}, NewResolutionContext())
	require.Len(t, results, 1)
	assert.True(t, results[0].IsCorrect)
	assert.Equal(t, "Beta", results[0].CorrectAnswer)
	assert.Equal(t, 1.0, results[0].Points)
}

func TestMultipleChoiceGraderOutOfRangeIndexDefaultsToFirstOption(t *testing.T) {
	q := &models.Question{
		ID:      "mc-2",
		Type:    models.MultipleChoice,
		Section: models.SectionReading,
		Points:  1,
		Content: &models.MultipleChoiceContent{
			Options: []string{"Alpha", "Beta"},
			Answer:  models.IndexSpec(9),
		},
	}

	results := multipleChoiceGrader{}.Grade(q, models.AnswerMap{"mc-2": "Alpha"}, NewResolutionContext())
	require.Len(t, results, 1)
	assert.Equal(t, "Alpha", results[0].CorrectAnswer)
	assert.True(t, results[0].IsCorrect)
}

func TestMultipleChoiceGraderUnanswered(t *testing.T) {
	q := &models.Question{
		ID:      "mc-3",
		Type:    models.MultipleChoice,
		Section: models.SectionListening,
		Points:  1,
		Content: &models.MultipleChoiceContent{
			Options: []string{"True", "False"},
			Answer:  models.LiteralSpec("True"),
		},
	}

	results := multipleChoiceGrader{}.Grade(q, models.AnswerMap{}, NewResolutionContext())
	require.Len(t, results, 1)
	assert.False(t, results[0].IsCorrect)
	assert.Equal(t, 0.0, results[0].Points)
	assert.Empty(t, results[0].UserAnswer)
}

func TestMultipleSelectionGraderResultCountInvariant(t *testing.T) {
	q := &models.Question{
		ID:      "ms-1",
		Type:    models.MultipleSelection,
		Section: models.SectionReading,
		Points:  1,
		Content: &models.MultipleSelectionContent{
			Options:       []string{"A", "B", "C", "D"},
			CorrectValues: []string{"A", "C"},
		},
	}

	t.Run("no answer still yields one result per correct value", func(t *testing.T) {
		results := multipleSelectionGrader{}.Grade(q, models.AnswerMap{}, NewResolutionContext())
		require.Len(t, results, 2)
		for _, r := range results {
			assert.False(t, r.IsCorrect)
			assert.Equal(t, noAnswerProvided, r.UserAnswer)
		}
	})

	t.Run("extra selections are reconciled, count stays stable", func(t *testing.T) {
		answers := models.AnswerMap{"ms-1": []any{"A", "B", "D"}}
		results := multipleSelectionGrader{}.Grade(q, answers, NewResolutionContext())
		require.Len(t, results, 2)
		assert.True(t, results[0].IsCorrect)  // A selected
		assert.False(t, results[1].IsCorrect) // C missed, paired with a leftover selection
		assert.NotEqual(t, noAnswerProvided, results[1].UserAnswer)
	})

	t.Run("all correct", func(t *testing.T) {
		answers := models.AnswerMap{"ms-1": []any{"C", "A"}}
		results := multipleSelectionGrader{}.Grade(q, answers, NewResolutionContext())
		require.Len(t, results, 2)
		assert.True(t, results[0].IsCorrect)
		assert.True(t, results[1].IsCorrect)
	})
}

func TestMatchingGraderPairCountInvariant(t *testing.T) {
	q := &models.Question{
		ID:      "m-1",
		Type:    models.Matching,
		Section: models.SectionReading,
		Points:  1,
		Content: &models.MatchingContent{
			Left:  []string{"Paragraph A", "Paragraph B", "Paragraph C"},
			Right: []string{"heading i", "heading ii", "heading iii"},
		},
	}

	t.Run("empty submission still yields one result per pair", func(t *testing.T) {
		results := matchingGrader{}.Grade(q, models.AnswerMap{}, NewResolutionContext())
		require.Len(t, results, 3)
		for _, r := range results {
			assert.Equal(t, noAnswerProvided, r.UserAnswer)
			assert.False(t, r.IsCorrect)
		}
	})

	t.Run("partial answers", func(t *testing.T) {
		answers := models.AnswerMap{
			"m-1_0":                "heading i",
			"matching_1700000042_2": "wrong heading",
		}
		results := matchingGrader{}.Grade(q, answers, NewResolutionContext())
		require.Len(t, results, 3)
		assert.True(t, results[0].IsCorrect)
		assert.False(t, results[0].AmbiguousResolution)
		assert.Equal(t, noAnswerProvided, results[1].UserAnswer)
		assert.False(t, results[2].IsCorrect)
		assert.True(t, results[2].AmbiguousResolution)
	})

	t.Run("sub-item ids are derived from the question id", func(t *testing.T) {
		results := matchingGrader{}.Grade(q, models.AnswerMap{}, NewResolutionContext())
		assert.Equal(t, "m-1_0", results[0].QuestionID)
		assert.Equal(t, "m-1_2", results[2].QuestionID)
	})
}

func TestShortAnswerGrader(t *testing.T) {
	q := &models.Question{
		ID:      "sa-1",
		Number:  4,
		Type:    models.ShortAnswer,
		Section: models.SectionReading,
		Points:  1,
		Content: &models.ShortAnswerContent{Accepted: models.LiteralSpec("photosynthesis")},
	}

	results := shortAnswerGrader{}.Grade(q, models.AnswerMap{"sa-1": "Photosynthesis"}, NewResolutionContext())
	require.Len(t, results, 1)
	assert.True(t, results[0].IsCorrect)

	results = shortAnswerGrader{}.Grade(q, models.AnswerMap{"sa-1": "osmosis"}, NewResolutionContext())
	require.Len(t, results, 1)
	assert.False(t, results[0].IsCorrect)
}

func TestMapLabelingGraderOneResultPerBox(t *testing.T) {
	q := &models.Question{
		ID:      "map-q1",
		Type:    models.MapLabeling,
		Section: models.SectionListening,
		Points:  1,
		Content: &models.MapLabelingContent{
			Boxes: []models.LabelBox{
				{Label: "Box 1", Answer: "library"},
				{Label: "Box 2", Answer: "car park"},
			},
		},
	}

	answers := models.AnswerMap{
		"map_1700000010": "Library",
		"map_1700000020": "garden",
	}
	results := mapLabelingGrader{}.Grade(q, answers, NewResolutionContext())
	require.Len(t, results, 2)
	assert.True(t, results[0].IsCorrect)
	assert.False(t, results[1].IsCorrect)
	assert.Equal(t, "car park", results[1].CorrectAnswer)

	// Fewer answers than boxes: trailing boxes grade as unanswered.
	results = mapLabelingGrader{}.Grade(q, models.AnswerMap{"map_1": "library"}, NewResolutionContext())
	require.Len(t, results, 2)
	assert.Equal(t, noAnswerProvided, results[1].UserAnswer)
}

func TestEssayGraderCompletionCredit(t *testing.T) {
	q := &models.Question{
		ID:      "essay-1",
		Type:    models.Essay,
		Section: models.SectionWriting,
		Points:  5,
		Content: &models.EssayContent{MinWords: 250},
	}

	t.Run("non-empty answer earns 60 percent", func(t *testing.T) {
		results := essayGrader{}.Grade(q, models.AnswerMap{"essay-1": "Technology has reshaped education in several ways."}, NewResolutionContext())
		require.Len(t, results, 1)
		assert.Equal(t, 3.0, results[0].Points)
		assert.False(t, results[0].IsCorrect)
		assert.Contains(t, results[0].Explanation, "manual review")
	})

	t.Run("empty answer earns nothing", func(t *testing.T) {
		results := essayGrader{}.Grade(q, models.AnswerMap{"essay-1": "   "}, NewResolutionContext())
		require.Len(t, results, 1)
		assert.Equal(t, 0.0, results[0].Points)
	})

	t.Run("missing answer earns nothing", func(t *testing.T) {
		results := essayGrader{}.Grade(q, models.AnswerMap{}, NewResolutionContext())
		require.Len(t, results, 1)
		assert.Equal(t, 0.0, results[0].Points)
	})
}
