package stats

import "github.com/ctalab/ctaeval/internal/models"

// Cognates aggregates cognate groups against the number of words that were
// submitted. The alignment rate is 0 when no words were submitted.
func Cognates(groups []models.CognateGroup, inputWords int) models.CognateStatistics {
	st := models.CognateStatistics{
		TotalInputWords: inputWords,
		GroupsFound:     len(groups),
		SimilarityDistribution: map[models.Similarity]int{
			models.SimilarityHigh:   0,
			models.SimilarityMedium: 0,
			models.SimilarityLow:    0,
		},
		LanguageCoverage: []string{},
	}

	confidences := make([]float64, 0, len(groups))
	seen := map[string]bool{}
	for _, g := range groups {
		st.TotalAlignedWords += len(g.Items)
		st.SimilarityDistribution[g.Similarity]++
		confidences = append(confidences, g.Confidence)
		for _, it := range g.Items {
			if it.LanguageCode != "" && !seen[it.LanguageCode] {
				seen[it.LanguageCode] = true
				st.LanguageCoverage = append(st.LanguageCoverage, it.LanguageCode)
			}
		}
	}

	st.AverageGroupSize = ratio(float64(st.TotalAlignedWords), float64(len(groups)))
	st.AverageConfidence = Mean(confidences)
	st.AlignmentRate = ratio(float64(st.TotalAlignedWords), float64(inputWords))
	return st
}
