package grading

import (
	"math"

	"github.com/ielts-center/grading-service/internal/models"
)

type bandRange struct {
	min, max int
	band     float64
}

// Raw-score conversion tables for the 40-question objective sections.
// Reading and listening use distinct curves; any raw score outside the
// table floors to band 1.0.
var listeningBands = []bandRange{
	{39, 40, 9.0},
	{37, 38, 8.5},
	{35, 36, 8.0},
	{32, 34, 7.5},
	{30, 31, 7.0},
	{26, 29, 6.5},
	{23, 25, 6.0},
	{18, 22, 5.5},
	{16, 17, 5.0},
	{13, 15, 4.5},
	{10, 12, 4.0},
	{8, 9, 3.5},
	{6, 7, 3.0},
	{4, 5, 2.5},
	{2, 3, 2.0},
	{1, 1, 1.5},
}

var readingBands = []bandRange{
	{39, 40, 9.0},
	{37, 38, 8.5},
	{35, 36, 8.0},
	{33, 34, 7.5},
	{30, 32, 7.0},
	{27, 29, 6.5},
	{23, 26, 6.0},
	{19, 22, 5.5},
	{15, 18, 5.0},
	{13, 14, 4.5},
	{10, 12, 4.0},
	{8, 9, 3.5},
	{6, 7, 3.0},
	{4, 5, 2.5},
	{2, 3, 2.0},
	{1, 1, 1.5},
}

// BandScore converts a raw correct-count into the section's band score.
// The total is recorded for callers but plays no part in the lookup; the
// tables are calibrated for the standard 40-question sections.
func BandScore(correct, total int, section models.Section) float64 {
	table := readingBands
	if section == models.SectionListening {
		table = listeningBands
	}
	for _, r := range table {
		if correct >= r.min && correct <= r.max {
			return r.band
		}
	}
	return 1.0
}

// WritingBand maps earned writing points onto the band scale linearly,
// pending per-criteria scoring by human examiners. A section with no
// writing questions gets band 0 so it drops out of the overall average.
func WritingBand(earned, possible float64) float64 {
	if possible <= 0 {
		return 0
	}
	band := roundHalf(earned / possible * 9.0)
	if band < 1.0 {
		return 1.0
	}
	return band
}

// OverallBand averages the valid (> 0) section bands and rounds to the
// nearest half band, never dropping below 1.0.
func OverallBand(bands ...float64) float64 {
	var sum float64
	var count int
	for _, b := range bands {
		if b > 0 {
			sum += b
			count++
		}
	}
	if count == 0 {
		return 1.0
	}
	overall := roundHalf(sum / float64(count))
	if overall < 1.0 {
		return 1.0
	}
	return overall
}

func roundHalf(v float64) float64 {
	return math.Round(v*2) / 2
}
