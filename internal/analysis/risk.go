package analysis

import (
	"context"
	"strings"

	"github.com/ctalab/ctaeval/internal/alphabet"
	"github.com/ctalab/ctaeval/internal/llm"
	"github.com/ctalab/ctaeval/internal/models"
	"github.com/ctalab/ctaeval/internal/prompts"
	"github.com/ctalab/ctaeval/internal/stats"
	"github.com/ctalab/ctaeval/internal/validation"
)

// NoRisksContext is the context of the placeholder record returned when a
// text contains none of the tracked letters.
const NoRisksContext = "No new CTA letters found in text"

// noRisksRecord is returned without calling the service when the text has
// nothing to analyze.
func noRisksRecord() models.RiskRecord {
	return models.RiskRecord{
		Letter:             "none",
		PossibleConfusions: []string{},
		Languages:          []string{},
		Examples:           []string{},
		Confidence:         1.0,
		Severity:           models.SeverityLow,
		Context:            NoRisksContext,
	}
}

// AnalyzeRisks reports the phonetic ambiguity risks of a CTA text. A text
// without any tracked letter yields a single placeholder record and no
// generation call; the placeholder is not counted in the statistics.
func (a *Analyzer) AnalyzeRisks(ctx context.Context, req models.RiskAnalysisRequest) models.Outcome[models.RiskReport] {
	return run(ctx, a, models.TaskRisk, "", func(ctx context.Context, cfg llm.Config) (models.RiskReport, stage, error) {
		var st stage
		if strings.TrimSpace(req.NormalizedText) == "" {
			return models.RiskReport{}, st, inputFailure("normalized text is empty")
		}

		detected := alphabet.FindTrackedLetters(req.NormalizedText)
		if len(detected) == 0 {
			report := riskReport(nil, detected)
			report.Risks = []models.RiskRecord{noRisksRecord()}
			report.Summary = RiskSummary(report.Risks, report.Statistics)
			st.kept = 1
			return report, st, nil
		}

		p, err := prompts.Risk(req, detected)
		if err != nil {
			return models.RiskReport{}, st, err
		}

		doc, gen, err := a.generate(ctx, cfg, models.TaskRisk, p)
		st.gen = gen
		if err != nil {
			return models.RiskReport{}, st, err
		}

		records, dropped := validation.Risks(doc)
		st.kept, st.dropped = len(records), dropped
		a.validated(models.TaskRisk, st.kept, dropped)

		for i := range records {
			records[i].FrequencyInText = alphabet.CountFold(req.NormalizedText, records[i].Letter)
		}
		return riskReport(records, detected), st, nil
	})
}

func riskReport(records []models.RiskRecord, detected []string) models.RiskReport {
	if records == nil {
		records = []models.RiskRecord{}
	}
	st := stats.Risks(records)
	st.NewLettersFound = append([]string{}, detected...)
	return models.RiskReport{
		Risks:      records,
		Statistics: st,
		Summary:    RiskSummary(records, st),
	}
}
