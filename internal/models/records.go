package models

// Severity is a coarse judgment of how likely a phonetic ambiguity causes
// real confusion.
type Severity string

const (
	SeverityLow    Severity = "low"
	SeverityMedium Severity = "medium"
	SeverityHigh   Severity = "high"
)

// Similarity is the tier a cognate group was placed in.
type Similarity string

const (
	SimilarityHigh   Similarity = "high"
	SimilarityMedium Similarity = "medium"
	SimilarityLow    Similarity = "low"
)

// Severities and Similarities list the enum values in report order.
var (
	Severities   = []Severity{SeverityHigh, SeverityMedium, SeverityLow}
	Similarities = []Similarity{SimilarityHigh, SimilarityMedium, SimilarityLow}
)

// TransliterationResult is the validated answer to a transliteration request.
type TransliterationResult struct {
	Success    bool     `json:"success"`
	OutputText string   `json:"output_text,omitempty"`
	Notes      []string `json:"notes"`
	Error      string   `json:"error,omitempty"`
}

// RiskRecord describes one phonetic ambiguity for a CTA letter.
type RiskRecord struct {
	Letter             string   `json:"letter"`
	PossibleConfusions []string `json:"possible_confusions"`
	Languages          []string `json:"languages"`
	Examples           []string `json:"examples"`
	Confidence         float64  `json:"confidence"`
	Severity           Severity `json:"severity"`
	Context            string   `json:"context"`

	// FrequencyInText is counted locally in the analyzed text, never taken
	// from the model.
	FrequencyInText int `json:"frequency_in_text"`
}

// CognateItem is one word of a cognate group.
type CognateItem struct {
	LanguageCode   string `json:"language_code"`
	OriginalWord   string `json:"original_word"`
	NormalizedWord string `json:"normalized_word"`
}

// CognateGroup is a cluster of words judged to share a root. Groups always
// have at least two items.
type CognateGroup struct {
	Similarity   Similarity    `json:"similarity"`
	Items        []CognateItem `json:"items"`
	Rationale    string        `json:"rationale"`
	Confidence   float64       `json:"confidence"`
	RootAnalysis string        `json:"root_analysis"`
}

// VariantMetrics are the phonetic counts and scores for one spelling of a text.
type VariantMetrics struct {
	UniquePhonemeCount       int     `json:"unique_phoneme_count"`
	TotalPhonemeCount        int     `json:"total_phoneme_count"`
	AverageLettersPerPhoneme float64 `json:"average_letters_per_phoneme"`
	WeightedScore            float64 `json:"weighted_score"`
	LogarithmicScore         float64 `json:"logarithmic_score"`
}

// Comparison is the normalized spelling's improvement over the original.
type Comparison struct {
	WeightedImprovementPct    float64 `json:"weighted_improvement_pct"`
	LogarithmicImprovementPct float64 `json:"logarithmic_improvement_pct"`
	EffectivenessGainPct      float64 `json:"effectiveness_gain_pct"`
}

// EffectivenessMetrics compares the original and normalized spellings.
type EffectivenessMetrics struct {
	Original   VariantMetrics `json:"original"`
	Normalized VariantMetrics `json:"normalized"`
	Comparison Comparison     `json:"comparison"`

	// ReportedComparison is what the model claimed, kept for reference only.
	ReportedComparison *Comparison `json:"reported_comparison,omitempty"`
	DetailedAnalysis   string      `json:"detailed_analysis,omitempty"`
}
