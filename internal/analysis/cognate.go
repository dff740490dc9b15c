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

const candidateFormat = "no valid candidate words found, expected one 'language_code:word' per line (e.g. tr:şehir)"

// ParseCandidates reads one "lang:word" pair per line. Blank lines, lines
// without a colon and pairs with an empty side are skipped. Codes are
// lower-cased; words keep their spelling.
func ParseCandidates(text string) []models.Candidate {
	var out []models.Candidate
	for _, line := range strings.Split(strings.TrimSpace(text), "\n") {
		code, word, ok := strings.Cut(strings.TrimSpace(line), ":")
		if !ok {
			continue
		}
		if c, ok := normalizeCandidate(models.Candidate{LanguageCode: code, Word: word}); ok {
			out = append(out, c)
		}
	}
	return out
}

func normalizeCandidate(c models.Candidate) (models.Candidate, bool) {
	c.LanguageCode = strings.ToLower(strings.TrimSpace(c.LanguageCode))
	c.Word = strings.TrimSpace(c.Word)
	return c, c.LanguageCode != "" && c.Word != ""
}

// AlignCognates groups candidate words into cognate groups. Unknown language
// codes are passed through unchanged.
func (a *Analyzer) AlignCognates(ctx context.Context, req models.CognateAlignmentRequest) models.Outcome[models.CognateReport] {
	return run(ctx, a, models.TaskCognate, "", func(ctx context.Context, cfg llm.Config) (models.CognateReport, stage, error) {
		var st stage

		var candidates []models.ParsedCandidate
		for _, c := range req.Candidates {
			if c, ok := normalizeCandidate(c); ok {
				candidates = append(candidates, models.ParsedCandidate{
					Candidate:    c,
					LanguageName: alphabet.CognateLanguageName(c.LanguageCode),
				})
			}
		}
		if len(candidates) == 0 {
			return models.CognateReport{}, st, inputFailure(candidateFormat)
		}

		p, err := prompts.Cognate(candidates)
		if err != nil {
			return models.CognateReport{}, st, err
		}

		doc, gen, err := a.generate(ctx, cfg, models.TaskCognate, p)
		st.gen = gen
		if err != nil {
			return models.CognateReport{}, st, err
		}

		groups, dropped := validation.CognateGroups(doc)
		if groups == nil {
			groups = []models.CognateGroup{}
		}
		st.kept, st.dropped = len(groups), dropped
		a.validated(models.TaskCognate, st.kept, dropped)

		s := stats.Cognates(groups, len(candidates))
		return models.CognateReport{
			Candidates: candidates,
			Groups:     groups,
			Statistics: s,
			Summary:    CognateSummary(s),
		}, st, nil
	})
}

// AlignCognatesText parses candidate lines and aligns them.
func (a *Analyzer) AlignCognatesText(ctx context.Context, text string) models.Outcome[models.CognateReport] {
	return a.AlignCognates(ctx, models.CognateAlignmentRequest{Candidates: ParseCandidates(text)})
}
