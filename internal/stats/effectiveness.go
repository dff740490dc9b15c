package stats

import (
	"math"

	"github.com/ctalab/ctaeval/internal/models"
)

// ScaleFactor multiplies both effectiveness scores into a readable range.
const ScaleFactor = 100.0

// WeightedPCE is (UPC/TPC) × ALC × ScaleFactor. It is 0 when TPC is 0.
func WeightedPCE(upc, tpc int, alc float64) float64 {
	return ratio(float64(upc), float64(tpc)) * alc * ScaleFactor
}

// LogarithmicPCE is ln(1+UPC)/ln(1+TPC) × 1/ALC × ScaleFactor. It is 0 when
// TPC or ALC is 0.
func LogarithmicPCE(upc, tpc int, alc float64) float64 {
	return ratio(math.Log1p(float64(upc)), math.Log1p(float64(tpc))) * ratio(1, alc) * ScaleFactor
}

// ImprovementPct is the relative change from original to normalized in
// percent. An original score of 0 gives 0 rather than an undefined value.
func ImprovementPct(original, normalized float64) float64 {
	return ratio(normalized-original, original) * 100
}

// Compare computes the improvement of the normalized variant over the
// original. The overall gain is the mean of the two methods.
func Compare(original, normalized models.VariantMetrics) models.Comparison {
	w := ImprovementPct(original.WeightedScore, normalized.WeightedScore)
	l := ImprovementPct(original.LogarithmicScore, normalized.LogarithmicScore)
	return models.Comparison{
		WeightedImprovementPct:    w,
		LogarithmicImprovementPct: l,
		EffectivenessGainPct:      (w + l) / 2,
	}
}

// Improvement categories and effectiveness ratings.
const (
	CategoryHigh   = "high"
	CategoryMedium = "medium"
	CategoryLow    = "low"

	RatingExcellent = "excellent"
	RatingVeryGood  = "very good"
	RatingGood      = "good"
	RatingAverage   = "average"
	RatingLow       = "low"
)

// Assess reads a comparison into a category, a rating and recommendations.
func Assess(c models.Comparison) models.Assessment {
	w, l := c.WeightedImprovementPct, c.LogarithmicImprovementPct

	a := models.Assessment{Recommendations: []string{}}
	switch {
	case w > 15:
		a.ImprovementCategory = CategoryHigh
	case w > 10:
		a.ImprovementCategory = CategoryMedium
	default:
		a.ImprovementCategory = CategoryLow
	}

	switch {
	case w > 18:
		a.EffectivenessRating = RatingExcellent
	case w > 15:
		a.EffectivenessRating = RatingVeryGood
	case w > 12:
		a.EffectivenessRating = RatingGood
	case w > 8:
		a.EffectivenessRating = RatingAverage
	default:
		a.EffectivenessRating = RatingLow
	}

	if w > 15 {
		a.Recommendations = append(a.Recommendations,
			"CTA gives a marked improvement in phonetic representation",
			"CTA is recommended for academic work")
	}
	if l > 10 {
		a.Recommendations = append(a.Recommendations,
			"Performance holds on large datasets",
			"Suitable for scalable applications")
	}
	if w < 10 {
		a.Recommendations = append(a.Recommendations,
			"Further phonetic optimization may be needed",
			"Use of the additional CTA letters could be increased")
	}
	return a
}

// NamedComparison ties a comparison to the dataset it came from.
type NamedComparison struct {
	Dataset    string
	Comparison models.Comparison
}

// Batch summarizes successful comparisons from several datasets. The best and
// worst datasets are by weighted improvement; the first one wins ties.
func Batch(total int, results []NamedComparison, seed int64) models.EffectivenessBatchSummary {
	s := models.EffectivenessBatchSummary{
		TotalDatasets:      total,
		SuccessfulAnalyses: len(results),
	}
	if len(results) == 0 {
		return s
	}

	weighted := make([]float64, len(results))
	logarithmic := make([]float64, len(results))
	best, worst := 0, 0
	for i, r := range results {
		weighted[i] = r.Comparison.WeightedImprovementPct
		logarithmic[i] = r.Comparison.LogarithmicImprovementPct
		if weighted[i] > weighted[best] {
			best = i
		}
		if weighted[i] < weighted[worst] {
			worst = i
		}
	}

	s.AverageWeightedImprovement = Mean(weighted)
	s.AverageLogarithmicImprovement = Mean(logarithmic)
	ci := BootstrapCI(weighted, 0.95, seed)
	s.WeightedImprovementCILow, s.WeightedImprovementCIHigh = ci.Lower, ci.Upper
	s.BestDataset = results[best].Dataset
	s.WorstDataset = results[worst].Dataset
	return s
}
