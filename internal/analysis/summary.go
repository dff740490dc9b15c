package analysis

import (
	"fmt"
	"strings"

	"github.com/ctalab/ctaeval/internal/models"
)

// RiskSummary is a short plain-text description of a risk analysis.
func RiskSummary(records []models.RiskRecord, s models.RiskStatistics) string {
	if len(records) == 0 {
		return "No risks detected in text."
	}
	if len(records) == 1 && records[0].Context == NoRisksContext {
		return NoRisksContext + "."
	}

	var b strings.Builder
	b.WriteString("Risk Analysis Summary:\n")
	fmt.Fprintf(&b, "- Total risk count: %d\n", s.TotalRisks)
	fmt.Fprintf(&b, "- Average confidence score: %.2f\n", s.AverageConfidence)
	fmt.Fprintf(&b, "- High risk: %d\n", s.SeverityDistribution[models.SeverityHigh])
	fmt.Fprintf(&b, "- Medium risk: %d\n", s.SeverityDistribution[models.SeverityMedium])
	fmt.Fprintf(&b, "- Low risk: %d\n", s.SeverityDistribution[models.SeverityLow])

	if len(s.MostCommonLetters) > 0 {
		parts := make([]string, len(s.MostCommonLetters))
		for i, lc := range s.MostCommonLetters {
			parts[i] = fmt.Sprintf("%s(%d)", lc.Letter, lc.Count)
		}
		fmt.Fprintf(&b, "- Most problematic letters: %s\n", strings.Join(parts, ", "))
	}
	if len(s.LanguagesAffected) > 0 {
		fmt.Fprintf(&b, "- Affected languages: %s\n", strings.Join(s.LanguagesAffected, ", "))
	}
	return b.String()
}

// CognateSummary is a short plain-text description of a cognate alignment.
func CognateSummary(s models.CognateStatistics) string {
	if s.GroupsFound == 0 {
		return "No cognate groups found."
	}

	var b strings.Builder
	b.WriteString("Cognate Alignment Summary:\n")
	fmt.Fprintf(&b, "- %d groups found\n", s.GroupsFound)
	fmt.Fprintf(&b, "- %d of %d words aligned\n", s.TotalAlignedWords, s.TotalInputWords)
	fmt.Fprintf(&b, "- Average group size: %.1f\n", s.AverageGroupSize)
	fmt.Fprintf(&b, "- Alignment rate: %.1f%%\n", s.AlignmentRate*100)
	fmt.Fprintf(&b, "- Average confidence score: %.2f\n", s.AverageConfidence)
	fmt.Fprintf(&b, "- High similarity: %d groups\n", s.SimilarityDistribution[models.SimilarityHigh])
	fmt.Fprintf(&b, "- Medium similarity: %d groups\n", s.SimilarityDistribution[models.SimilarityMedium])
	fmt.Fprintf(&b, "- Low similarity: %d groups\n", s.SimilarityDistribution[models.SimilarityLow])
	if len(s.LanguageCoverage) > 0 {
		fmt.Fprintf(&b, "- Languages covered: %s\n", strings.Join(s.LanguageCoverage, ", "))
	}
	return b.String()
}
