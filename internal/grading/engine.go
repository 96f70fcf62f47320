package grading

import (
	"math"
	"sort"
	"time"

	"github.com/ielts-center/grading-service/internal/models"
)

// Engine computes a GradingResult from a submission and its test's
// question bank. Grading is synchronous and pure: all state is scoped to
// one run through a ResolutionContext, so concurrent runs over different
// submissions are independent. Serializing repeated runs over the same
// submission is the persistence layer's concern.
type Engine struct{}

func NewEngine() *Engine {
	return &Engine{}
}

// Grade runs every section grader in question-number order, tallies the
// per-section results and converts them to band scores.
func (e *Engine) Grade(sub *models.Submission, bank *models.QuestionBank) *models.GradingResult {
	rctx := NewResolutionContext()

	readingResults, _ := e.gradeSection(bank.Reading, sub.Answers, rctx)
	listeningResults, _ := e.gradeSection(bank.Listening, sub.Answers, rctx)
	writingResults, writingPossible := e.gradeSection(bank.Writing, sub.Answers, rctx)

	reading := tallySection(readingResults)
	listening := tallySection(listeningResults)

	var writingEarned float64
	for _, r := range writingResults {
		writingEarned += r.Points
	}

	readingBand := sectionBand(reading, models.SectionReading)
	listeningBand := sectionBand(listening, models.SectionListening)
	writingBand := WritingBand(writingEarned, writingPossible)
	overall := OverallBand(readingBand, listeningBand, writingBand)

	details := make([]models.QuestionResult, 0, len(readingResults)+len(listeningResults)+len(writingResults))
	details = append(details, readingResults...)
	details = append(details, listeningResults...)
	details = append(details, writingResults...)

	return &models.GradingResult{
		SubmissionID: sub.ID,
		Reading:      reading,
		Listening:    listening,
		Writing: models.WritingBreakdown{
			Score: percentage(writingEarned, writingPossible),
			Criteria: models.WritingCriteria{
				TaskAchievement:   writingBand,
				CoherenceCohesion: writingBand,
				LexicalResource:   writingBand,
				GrammaticalRange:  writingBand,
			},
		},
		Bands: models.BandScores{
			Reading:   readingBand,
			Listening: listeningBand,
			Writing:   writingBand,
			Overall:   overall,
		},
		TotalScore:      overall * 10,
		DetailedResults: details,
		GradedAt:        time.Now(),
	}
}

// gradeSection grades one section's questions in display order and
// reports the total possible points (used for writing). Questions whose
// id was already graded in this run are skipped: duplicate rows upstream
// must not score twice.
func (e *Engine) gradeSection(questions []models.Question, answers models.AnswerMap, rctx *ResolutionContext) ([]models.QuestionResult, float64) {
	ordered := make([]models.Question, len(questions))
	copy(ordered, questions)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Number < ordered[j].Number
	})

	var results []models.QuestionResult
	var possible float64
	for i := range ordered {
		q := &ordered[i]
		if !rctx.MarkProcessed(q.ID) {
			continue
		}
		grader := graderFor(q.Type)
		if grader == nil {
			continue
		}
		results = append(results, grader.Grade(q, answers, rctx)...)
		possible += q.Points
	}
	return results, possible
}

func tallySection(results []models.QuestionResult) models.SectionBreakdown {
	correct := 0
	for _, r := range results {
		if r.IsCorrect {
			correct++
		}
	}
	return models.SectionBreakdown{
		Correct:    correct,
		Total:      len(results),
		Percentage: percentage(float64(correct), float64(len(results))),
	}
}

// sectionBand returns 0 for an absent section so it is excluded from the
// overall average rather than dragging it to the floor.
func sectionBand(breakdown models.SectionBreakdown, section models.Section) float64 {
	if breakdown.Total == 0 {
		return 0
	}
	return BandScore(breakdown.Correct, breakdown.Total, section)
}

func percentage(part, whole float64) float64 {
	if whole <= 0 {
		return 0
	}
	return math.Round(part/whole*10000) / 100
}
