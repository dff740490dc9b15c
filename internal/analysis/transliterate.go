package analysis

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/ctalab/ctaeval/internal/alphabet"
	"github.com/ctalab/ctaeval/internal/llm"
	"github.com/ctalab/ctaeval/internal/models"
	"github.com/ctalab/ctaeval/internal/prompts"
	"github.com/ctalab/ctaeval/internal/validation"
)

// Transliterate converts text from one of the supported source languages to
// CTA. An empty language means Turkish.
func (a *Analyzer) Transliterate(ctx context.Context, req models.TransliterationRequest) models.Outcome[models.TransliterationReport] {
	return run(ctx, a, models.TaskTransliteration, "", func(ctx context.Context, cfg llm.Config) (models.TransliterationReport, stage, error) {
		var st stage
		if strings.TrimSpace(req.SourceText) == "" {
			return models.TransliterationReport{}, st, inputFailure("source text is empty")
		}
		if req.SourceLanguage == "" {
			req.SourceLanguage = alphabet.Turkish
		}
		lang, err := alphabet.ParseLanguage(string(req.SourceLanguage))
		if err != nil {
			return models.TransliterationReport{}, st, inputFailure("%v", err)
		}
		req.SourceLanguage = lang

		p, err := prompts.Transliteration(req)
		if err != nil {
			return models.TransliterationReport{}, st, err
		}

		doc, gen, err := a.generate(ctx, cfg, models.TaskTransliteration, p)
		st.gen = gen
		if err != nil {
			return models.TransliterationReport{}, st, err
		}

		result, dropped := validation.Transliteration(doc)
		st.dropped = dropped
		if result.Success {
			st.kept = 1
		}
		a.validated(models.TaskTransliteration, st.kept, dropped)

		report := models.TransliterationReport{Request: req, Result: result}
		if result.Success {
			checkCharacters(&report.Result)
			report.Statistics = &models.TransliterationStatistics{
				InputLength:    utf8.RuneCountInString(req.SourceText),
				OutputLength:   utf8.RuneCountInString(result.OutputText),
				SourceLanguage: string(lang),
				NewLettersUsed: alphabet.CountLetters(result.OutputText, alphabet.TransliterationUsage),
			}
		}
		return report, st, nil
	})
}

// checkCharacters appends a warning note when the output uses characters
// outside the CTA character set.
func checkCharacters(r *models.TransliterationResult) {
	ok, bad := alphabet.ValidateCharacters(r.OutputText)
	if ok {
		return
	}
	chars := make([]string, len(bad))
	for i, c := range bad {
		chars[i] = string(c)
	}
	r.Notes = append(r.Notes, fmt.Sprintf("Warning: Invalid characters detected: %s", strings.Join(chars, ", ")))
}
