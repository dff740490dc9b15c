package analysis

import (
	"context"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/ctalab/ctaeval/internal/alphabet"
	"github.com/ctalab/ctaeval/internal/llm"
	"github.com/ctalab/ctaeval/internal/models"
	"github.com/ctalab/ctaeval/internal/prompts"
	"github.com/ctalab/ctaeval/internal/stats"
	"github.com/ctalab/ctaeval/internal/validation"
)

// DefaultDatasetLabel names a dataset submitted without a label.
const DefaultDatasetLabel = "Custom"

// AnalyzeEffectiveness scores how well the normalized text represents the
// sounds of the original. Improvements are always computed locally from the
// scores; the figures the model reports are kept separately.
func (a *Analyzer) AnalyzeEffectiveness(ctx context.Context, req models.EffectivenessRequest) models.Outcome[models.EffectivenessReport] {
	if strings.TrimSpace(req.DatasetLabel) == "" {
		req.DatasetLabel = DefaultDatasetLabel
	}

	return run(ctx, a, models.TaskEffectiveness, req.DatasetLabel, func(ctx context.Context, cfg llm.Config) (models.EffectivenessReport, stage, error) {
		var st stage
		if strings.TrimSpace(req.OriginalText) == "" {
			return models.EffectivenessReport{}, st, inputFailure("original text is empty")
		}
		if strings.TrimSpace(req.NormalizedText) == "" {
			return models.EffectivenessReport{}, st, inputFailure("normalized text is empty")
		}

		report := models.EffectivenessReport{
			Metadata: models.EffectivenessMetadata{
				DatasetLabel:           req.DatasetLabel,
				OriginalLength:         utf8.RuneCountInString(req.OriginalText),
				NormalizedLength:       utf8.RuneCountInString(req.NormalizedText),
				AnalyzedAt:             time.Now().UTC(),
				NewLettersDetected:     alphabet.CountLettersFold(req.NormalizedText, alphabet.EffectivenessLetters),
				ExpectedRangesInPrompt: a.effectiveness.IncludeExpectedRanges,
			},
		}

		p, err := prompts.Effectiveness(req, a.effectiveness)
		if err != nil {
			return report, st, err
		}

		doc, gen, err := a.generate(ctx, cfg, models.TaskEffectiveness, p)
		st.gen = gen
		if err != nil {
			return report, st, err
		}

		metrics, dropped := validation.Effectiveness(doc)
		st.dropped = dropped
		if metrics != nil {
			st.kept = 1
			metrics.Comparison = stats.Compare(metrics.Original, metrics.Normalized)
			assessment := stats.Assess(metrics.Comparison)
			report.Metrics = metrics
			report.Assessment = &assessment
		}
		a.validated(models.TaskEffectiveness, st.kept, dropped)

		return report, st, nil
	})
}
