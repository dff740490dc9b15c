package models

import "github.com/ctalab/ctaeval/internal/alphabet"

// TaskKind names the four analyses.
type TaskKind string

const (
	TaskTransliteration TaskKind = "transliteration"
	TaskRisk            TaskKind = "risk"
	TaskCognate         TaskKind = "cognate"
	TaskEffectiveness   TaskKind = "effectiveness"
)

// TaskKinds lists every analysis kind.
var TaskKinds = []TaskKind{TaskTransliteration, TaskRisk, TaskCognate, TaskEffectiveness}

type TransliterationRequest struct {
	SourceText     string            `json:"source_text"`
	SourceLanguage alphabet.Language `json:"source_language"`
}

type RiskAnalysisRequest struct {
	NormalizedText string `json:"normalized_text"`
}

// Candidate is one word submitted for cognate alignment. LanguageCode may be
// any string; unknown codes are passed through unchanged.
type Candidate struct {
	LanguageCode string `json:"language_code"`
	Word         string `json:"word"`
}

type CognateAlignmentRequest struct {
	Candidates []Candidate `json:"candidates"`
}

type EffectivenessRequest struct {
	OriginalText   string `json:"original_text"`
	NormalizedText string `json:"normalized_text"`
	DatasetLabel   string `json:"dataset_label"`
}

// Dataset is one named pair of texts for a batch effectiveness run.
type Dataset struct {
	Name       string `json:"name"`
	Original   string `json:"original"`
	Normalized string `json:"normalized"`
}
