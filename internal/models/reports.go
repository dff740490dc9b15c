package models

import "time"

// TransliterationStatistics describe one transliteration.
type TransliterationStatistics struct {
	InputLength    int            `json:"input_length"`
	OutputLength   int            `json:"output_length"`
	SourceLanguage string         `json:"source_language"`
	NewLettersUsed map[string]int `json:"new_letters_used"`
}

type TransliterationReport struct {
	Request    TransliterationRequest     `json:"request"`
	Result     TransliterationResult      `json:"result"`
	Statistics *TransliterationStatistics `json:"statistics,omitempty"`
}

// RiskStatistics aggregate a collection of risk records.
type RiskStatistics struct {
	TotalRisks           int              `json:"total_risks"`
	SeverityDistribution map[Severity]int `json:"severity_distribution"`
	AverageConfidence    float64          `json:"average_confidence"`
	MostCommonLetters    []LetterCount    `json:"most_common_letters"`
	LanguagesAffected    []string         `json:"languages_affected"`
	TotalOccurrences     int              `json:"total_occurrences"`
	NewLettersFound      []string         `json:"new_letters_found"`
}

// LetterCount is one entry of a top-k letter ranking.
type LetterCount struct {
	Letter string `json:"letter"`
	Count  int    `json:"count"`
}

type RiskReport struct {
	Risks      []RiskRecord   `json:"risks"`
	Statistics RiskStatistics `json:"statistics"`
	Summary    string         `json:"summary"`
}

// CognateStatistics aggregate a collection of cognate groups.
type CognateStatistics struct {
	TotalInputWords        int                `json:"total_input_words"`
	TotalAlignedWords      int                `json:"total_aligned_words"`
	GroupsFound            int                `json:"groups_found"`
	AverageGroupSize       float64            `json:"average_group_size"`
	AverageConfidence      float64            `json:"average_confidence"`
	SimilarityDistribution map[Similarity]int `json:"similarity_distribution"`
	LanguageCoverage       []string           `json:"language_coverage"`
	AlignmentRate          float64            `json:"alignment_rate"`
}

// ParsedCandidate is a candidate line after parsing, with its display name.
type ParsedCandidate struct {
	Candidate
	LanguageName string `json:"language_name"`
}

type CognateReport struct {
	Candidates []ParsedCandidate `json:"candidates"`
	Groups     []CognateGroup    `json:"groups"`
	Statistics CognateStatistics `json:"statistics"`
	Summary    string            `json:"summary"`
}

// Assessment is a categorical reading of an effectiveness comparison.
type Assessment struct {
	ImprovementCategory string   `json:"improvement_category"`
	EffectivenessRating string   `json:"effectiveness_rating"`
	Recommendations     []string `json:"recommendations"`
}

type EffectivenessMetadata struct {
	DatasetLabel       string         `json:"dataset_label"`
	OriginalLength     int            `json:"original_length"`
	NormalizedLength   int            `json:"normalized_length"`
	AnalyzedAt         time.Time      `json:"analyzed_at"`
	NewLettersDetected map[string]int `json:"new_letters_detected"`

	// ExpectedRangesInPrompt records that the prompt quoted the published
	// improvement ranges, which can bias the reported scores.
	ExpectedRangesInPrompt bool `json:"expected_ranges_in_prompt"`
}

type EffectivenessReport struct {
	Metrics    *EffectivenessMetrics `json:"metrics,omitempty"`
	Assessment *Assessment           `json:"assessment,omitempty"`
	Metadata   EffectivenessMetadata `json:"metadata"`
}

// EffectivenessBatchSummary aggregates effectiveness runs over several datasets.
type EffectivenessBatchSummary struct {
	TotalDatasets                 int     `json:"total_datasets"`
	SuccessfulAnalyses            int     `json:"successful_analyses"`
	AverageWeightedImprovement    float64 `json:"average_weighted_improvement"`
	AverageLogarithmicImprovement float64 `json:"average_logarithmic_improvement"`
	WeightedImprovementCILow      float64 `json:"weighted_improvement_ci_low"`
	WeightedImprovementCIHigh     float64 `json:"weighted_improvement_ci_high"`
	BestDataset                   string  `json:"best_dataset,omitempty"`
	WorstDataset                  string  `json:"worst_dataset,omitempty"`
}

type EffectivenessBatchReport struct {
	Results []Outcome[EffectivenessReport] `json:"results"`
	Summary EffectivenessBatchSummary      `json:"summary"`
}
