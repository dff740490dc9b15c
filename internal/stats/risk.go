package stats

import (
	"sort"

	"github.com/ctalab/ctaeval/internal/models"
)

// TopLetters is how many letters the risk ranking keeps.
const TopLetters = 3

// Risks aggregates risk records. Letters are ranked by how many records
// mention them; ties keep the order in which letters were first seen.
func Risks(records []models.RiskRecord) models.RiskStatistics {
	st := models.RiskStatistics{
		TotalRisks: len(records),
		SeverityDistribution: map[models.Severity]int{
			models.SeverityLow:    0,
			models.SeverityMedium: 0,
			models.SeverityHigh:   0,
		},
		MostCommonLetters: []models.LetterCount{},
		LanguagesAffected: []string{},
	}
	if len(records) == 0 {
		return st
	}

	confidences := make([]float64, 0, len(records))
	var letters []models.LetterCount
	letterIdx := map[string]int{}
	seenLang := map[string]bool{}

	for _, r := range records {
		st.SeverityDistribution[r.Severity]++
		confidences = append(confidences, r.Confidence)
		st.TotalOccurrences += r.FrequencyInText

		if i, ok := letterIdx[r.Letter]; ok {
			letters[i].Count++
		} else {
			letterIdx[r.Letter] = len(letters)
			letters = append(letters, models.LetterCount{Letter: r.Letter, Count: 1})
		}

		for _, l := range r.Languages {
			if !seenLang[l] {
				seenLang[l] = true
				st.LanguagesAffected = append(st.LanguagesAffected, l)
			}
		}
	}

	sort.SliceStable(letters, func(i, j int) bool { return letters[i].Count > letters[j].Count })
	if len(letters) > TopLetters {
		letters = letters[:TopLetters]
	}
	st.MostCommonLetters = letters
	st.AverageConfidence = Mean(confidences)
	return st
}
