package analysis

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/ctalab/ctaeval/internal/alphabet"
	"github.com/ctalab/ctaeval/internal/models"
	"github.com/ctalab/ctaeval/internal/stats"
)

// TransliterateBatch transliterates every text with the same source
// language. Each text is an independent task; results keep input order.
func (a *Analyzer) TransliterateBatch(ctx context.Context, texts []string, lang alphabet.Language) []models.Outcome[models.TransliterationReport] {
	results := make([]models.Outcome[models.TransliterationReport], len(texts))

	g := errgroup.Group{}
	g.SetLimit(a.workers)
	for i, text := range texts {
		g.Go(func() error {
			results[i] = a.Transliterate(ctx, models.TransliterationRequest{SourceText: text, SourceLanguage: lang})
			return nil
		})
	}
	_ = g.Wait() // tasks report through their outcomes

	return results
}

// EffectivenessBatch scores every dataset and summarizes the successful
// ones. Datasets without a name are labelled by position.
func (a *Analyzer) EffectivenessBatch(ctx context.Context, datasets []models.Dataset) models.EffectivenessBatchReport {
	results := make([]models.Outcome[models.EffectivenessReport], len(datasets))

	g := errgroup.Group{}
	g.SetLimit(a.workers)
	for i, ds := range datasets {
		if ds.Name == "" {
			ds.Name = fmt.Sprintf("Dataset %d", i+1)
		}
		g.Go(func() error {
			results[i] = a.AnalyzeEffectiveness(ctx, models.EffectivenessRequest{
				OriginalText:   ds.Original,
				NormalizedText: ds.Normalized,
				DatasetLabel:   ds.Name,
			})
			return nil
		})
	}
	_ = g.Wait()

	return models.EffectivenessBatchReport{
		Results: results,
		Summary: stats.Batch(len(datasets), Comparisons(results), a.seed),
	}
}

// Comparisons collects the comparisons of successful effectiveness outcomes
// that produced metrics, labelled by dataset.
func Comparisons(results []models.Outcome[models.EffectivenessReport]) []stats.NamedComparison {
	var out []stats.NamedComparison
	for _, r := range results {
		if !r.OK() || r.Value.Metrics == nil {
			continue
		}
		out = append(out, stats.NamedComparison{
			Dataset:    r.Value.Metadata.DatasetLabel,
			Comparison: r.Value.Metrics.Comparison,
		})
	}
	return out
}
