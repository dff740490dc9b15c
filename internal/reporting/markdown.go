// Package reporting turns stored analysis outcomes into documents: a
// plain-text interpretation, a Markdown report and its HTML rendering,
// CSV and JSON exports, JUnit XML for batch runs, and uploads of the
// generated files to blob storage.
package reporting

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/ctalab/ctaeval/internal/models"
	"github.com/ctalab/ctaeval/internal/resultstore"
	"github.com/ctalab/ctaeval/internal/stats"
)

// Options control report content.
type Options struct {
	Title       string
	GeneratedAt time.Time

	// Comparisons adds a cross-dataset effectiveness table, typically from
	// a batch run.
	Comparisons []stats.NamedComparison

	// MaxRisks and MaxGroups bound the detailed listings. Zero means 5 risks
	// and 3 groups.
	MaxRisks  int
	MaxGroups int
}

// DefaultTitle heads every report unless overridden.
const DefaultTitle = "CTA (Common Turkic Alphabet) Evaluation Report"

// letterNotes describe the new letters covered by the letter section.
var letterNotes = []struct{ letter, note string }{
	{"q", `back "k" distinction (Kazakh, Kyrgyz)`},
	{"x", `guttural "h" (Azerbaijani, Turkmen)`},
	{"ñ", `velar nasal "ng" (Tatar, Turkmen, Uzbek)`},
	{"ä", "front open vowel"},
	{"ə", `open front "e" (Azerbaijani)`},
	{"û", "length mark"},
	{"ò", "rounded back vowel (Uzbek o')"},
}

func (o Options) withDefaults() Options {
	if o.Title == "" {
		o.Title = DefaultTitle
	}
	if o.GeneratedAt.IsZero() {
		o.GeneratedAt = time.Now()
	}
	if o.MaxRisks <= 0 {
		o.MaxRisks = 5
	}
	if o.MaxGroups <= 0 {
		o.MaxGroups = 3
	}
	return o
}

// WriteMarkdown writes the comprehensive report for snap.
func WriteMarkdown(w io.Writer, snap resultstore.Snapshot, opts Options) error {
	opts = opts.withDefaults()
	var b strings.Builder

	fmt.Fprintf(&b, "# %s\n\n", opts.Title)
	fmt.Fprintf(&b, "_Generated %s_\n\n", opts.GeneratedAt.Format("2006-01-02 15:04:05"))

	b.WriteString("## Executive Summary\n\n")
	executiveSummary(&b, snap)

	section := 0
	heading := func(title string) {
		section++
		fmt.Fprintf(&b, "\n## %d. %s\n\n", section, title)
	}

	if o := snap.Transliteration; o != nil {
		heading("Transliteration")
		transliterationSection(&b, o)
	}
	if o := snap.Risk; o != nil {
		heading("Phonetic Risk Analysis")
		riskSection(&b, o, opts.MaxRisks)
	}
	if o := snap.Cognate; o != nil {
		heading("Cognate Alignment")
		cognateSection(&b, o, opts.MaxGroups)
	}
	heading("New Letters")
	newLetterSection(&b, snap)
	if o := snap.Effectiveness; o != nil || len(opts.Comparisons) > 0 {
		heading("Phonetic Correspondence Effectiveness")
		effectivenessSection(&b, o, opts.Comparisons)
	}
	heading("Methodology")
	b.WriteString(methodology)
	heading("Conclusions and Recommendations")
	conclusions(&b, snap)

	_, err := io.WriteString(w, b.String())
	return err
}

func failed(b *strings.Builder, f *models.Failure) bool {
	if f == nil {
		return false
	}
	fmt.Fprintf(b, "> **Failed** (%s): %s\n", f.Kind, f.Message)
	return true
}

func executiveSummary(b *strings.Builder, snap resultstore.Snapshot) {
	p := printer()
	n := 0
	for _, filled := range []bool{snap.Transliteration != nil, snap.Risk != nil, snap.Cognate != nil, snap.Effectiveness != nil} {
		if filled {
			n++
		}
	}
	fmt.Fprintf(b, "This report covers %d analyses.\n\n", n)

	if o := snap.Transliteration; o != nil && o.Value != nil && o.Value.Statistics != nil {
		st := o.Value.Statistics
		b.WriteString(p.Sprintf("- Transliteration: %d input characters, %d CTA output characters\n", st.InputLength, st.OutputLength))
		if total := sumCounts(st.NewLettersUsed); total > 0 {
			b.WriteString(p.Sprintf("- Total use of new CTA letters: %d\n", total))
		}
	}
	if o := snap.Risk; o != nil && o.Value != nil {
		st := o.Value.Statistics
		b.WriteString(p.Sprintf("- Risk analysis: %d risks detected\n", st.TotalRisks))
		if high := st.SeverityDistribution[models.SeverityHigh]; high > 0 {
			b.WriteString(p.Sprintf("- High-severity risks: %d\n", high))
		}
	}
	if o := snap.Cognate; o != nil && o.Value != nil {
		st := o.Value.Statistics
		b.WriteString(p.Sprintf("- Cognate alignment: %d groups, %d words\n", st.GroupsFound, st.TotalAlignedWords))
	}
	if o := snap.Effectiveness; o != nil && o.Value != nil && o.Value.Metrics != nil {
		c := o.Value.Metrics.Comparison
		b.WriteString(p.Sprintf("- Effectiveness: weighted improvement %.2f%%, logarithmic improvement %.2f%%\n",
			c.WeightedImprovementPct, c.LogarithmicImprovementPct))
	}
}

func transliterationSection(b *strings.Builder, o *models.Outcome[models.TransliterationReport]) {
	if failed(b, o.Failure) {
		return
	}
	p := printer()
	r := o.Value
	if st := r.Statistics; st != nil {
		fmt.Fprintf(b, "- Source language: %s\n", st.SourceLanguage)
		b.WriteString(p.Sprintf("- Input length: %d characters\n", st.InputLength))
		b.WriteString(p.Sprintf("- Output length: %d characters\n\n", st.OutputLength))
		if len(st.NewLettersUsed) == 0 {
			b.WriteString("No new letters were used in this text.\n")
		} else {
			t := Table{Headers: []string{"Letter", "Count"}}
			for _, l := range sortedKeys(st.NewLettersUsed) {
				t.Rows = append(t.Rows, []string{l, p.Sprintf("%d", st.NewLettersUsed[l])})
			}
			t.Markdown(b)
		}
	}
	if r.Result.OutputText != "" {
		fmt.Fprintf(b, "\n```text\n%s\n```\n", r.Result.OutputText)
	}
	if len(r.Result.Notes) > 0 {
		b.WriteString("\nNotes:\n\n")
		for _, n := range r.Result.Notes {
			fmt.Fprintf(b, "- %s\n", n)
		}
	}
	generationLine(b, o.Generation)
}

func generationLine(b *strings.Builder, g *models.GenerationMeta) {
	if g == nil {
		return
	}
	b.WriteString(printer().Sprintf("\n_%s %s, %.2f s, %d tokens_\n", g.Provider, g.Model, g.ElapsedSec, g.Usage.Total))
}

func riskSection(b *strings.Builder, o *models.Outcome[models.RiskReport], limit int) {
	if failed(b, o.Failure) {
		return
	}
	p := printer()
	r := o.Value
	st := r.Statistics
	b.WriteString(p.Sprintf("- Total risks: %d\n", st.TotalRisks))
	b.WriteString(p.Sprintf("- Mean confidence: %.2f\n", st.AverageConfidence))
	b.WriteString(p.Sprintf("- Severity: %d high, %d medium, %d low\n",
		st.SeverityDistribution[models.SeverityHigh], st.SeverityDistribution[models.SeverityMedium], st.SeverityDistribution[models.SeverityLow]))
	if len(st.LanguagesAffected) > 0 {
		fmt.Fprintf(b, "- Languages affected: %s\n", strings.Join(st.LanguagesAffected, ", "))
	}
	fmt.Fprintf(b, "\n%s\n", InterpretRisks(st))

	if len(r.Risks) > 0 {
		b.WriteString("\n")
		RiskTable(head(r.Risks, limit)).Markdown(b)
		for i, risk := range head(r.Risks, limit) {
			if risk.Context != "" {
				fmt.Fprintf(b, "\n%d. **%s**: %s\n", i+1, risk.Letter, risk.Context)
			}
		}
	}
	generationLine(b, o.Generation)
}

func cognateSection(b *strings.Builder, o *models.Outcome[models.CognateReport], limit int) {
	if failed(b, o.Failure) {
		return
	}
	p := printer()
	r := o.Value
	st := r.Statistics
	b.WriteString(p.Sprintf("- Groups found: %d\n", st.GroupsFound))
	b.WriteString(p.Sprintf("- Aligned words: %d of %d\n", st.TotalAlignedWords, st.TotalInputWords))
	b.WriteString(p.Sprintf("- Mean group size: %.1f\n", st.AverageGroupSize))
	b.WriteString(p.Sprintf("- Alignment rate: %.1f%% (%s)\n", st.AlignmentRate*100, InterpretAlignmentRate(st.AlignmentRate)))
	b.WriteString(p.Sprintf("- Mean confidence: %.2f\n", st.AverageConfidence))
	b.WriteString(p.Sprintf("- Similarity: %d high, %d medium, %d low\n",
		st.SimilarityDistribution[models.SimilarityHigh], st.SimilarityDistribution[models.SimilarityMedium], st.SimilarityDistribution[models.SimilarityLow]))
	if len(st.LanguageCoverage) > 0 {
		fmt.Fprintf(b, "- Languages covered: %s\n", strings.Join(st.LanguageCoverage, ", "))
	}

	groups := head(r.Groups, limit)
	if len(groups) > 0 {
		b.WriteString("\n")
		CognateTable(groups).Markdown(b)
		for i, g := range groups {
			if g.Rationale != "" {
				fmt.Fprintf(b, "\n%d. %s\n", i+1, g.Rationale)
			}
		}
	}
	generationLine(b, o.Generation)
}

func newLetterSection(b *strings.Builder, snap resultstore.Snapshot) {
	usage := map[string]int{}
	if o := snap.Transliteration; o != nil && o.Value != nil && o.Value.Statistics != nil {
		for l, n := range o.Value.Statistics.NewLettersUsed {
			usage[strings.ToLower(l)] += n
		}
	}
	risky := map[string]bool{}
	if o := snap.Risk; o != nil && o.Value != nil {
		for _, r := range o.Value.Risks {
			risky[strings.ToLower(r.Letter)] = true
		}
	}

	p := printer()
	t := Table{Headers: []string{"Letter", "Role", "Uses", "Risk"}}
	total, flagged := 0, 0
	for _, ln := range letterNotes {
		status := "none"
		if risky[ln.letter] {
			status = "detected"
			flagged++
		}
		total += usage[ln.letter]
		t.Rows = append(t.Rows, []string{ln.letter, ln.note, p.Sprintf("%d", usage[ln.letter]), status})
	}
	t.Markdown(b)
	b.WriteString(p.Sprintf("\n- Total new letter uses: %d\n", total))
	b.WriteString(p.Sprintf("- Letters with detected risks: %d\n", flagged))
}

func effectivenessSection(b *strings.Builder, o *models.Outcome[models.EffectivenessReport], comparisons []stats.NamedComparison) {
	if o != nil && !failed(b, o.Failure) && o.Value != nil && o.Value.Metrics != nil {
		r := o.Value
		p := printer()
		fmt.Fprintf(b, "Dataset: %s\n\n", r.Metadata.DatasetLabel)
		VariantTable(*r.Metrics).Markdown(b)
		c := r.Metrics.Comparison
		b.WriteString(p.Sprintf("\n- Weighted improvement: %.2f%%\n", c.WeightedImprovementPct))
		b.WriteString(p.Sprintf("- Logarithmic improvement: %.2f%%\n", c.LogarithmicImprovementPct))
		b.WriteString(p.Sprintf("- Effectiveness gain: %.2f%%\n", c.EffectivenessGainPct))
		if a := r.Assessment; a != nil {
			fmt.Fprintf(b, "- Improvement category: %s\n- Rating: %s\n", a.ImprovementCategory, a.EffectivenessRating)
			if len(a.Recommendations) > 0 {
				b.WriteString("\nRecommendations:\n\n")
				for _, rec := range a.Recommendations {
					fmt.Fprintf(b, "- %s\n", rec)
				}
			}
		}
		if r.Metadata.ExpectedRangesInPrompt {
			b.WriteString("\n_The prompt quoted the published improvement ranges._\n")
		}
		if r.Metrics.DetailedAnalysis != "" {
			fmt.Fprintf(b, "\n%s\n", r.Metrics.DetailedAnalysis)
		}
		generationLine(b, o.Generation)
	}
	if len(comparisons) > 0 {
		b.WriteString("\n### Dataset Comparison\n\n")
		ComparisonTable(comparisons).Markdown(b)
	}
}

const methodology = `Every analysis is a single request to a language model followed by local checks:

1. **Transliteration**: source-alphabet mapping tables are embedded in the prompt; the output is checked against the CTA character set.
2. **Phonetic risk analysis**: runs only when the text contains tracked letters; the model reports confusable letters with a confidence and severity.
3. **Cognate alignment**: candidates are normalized to CTA and grouped by similarity.
4. **Effectiveness**: unique and total phoneme counts and letters per phoneme are compared between the original and normalized text; improvements are recomputed locally.
5. **Quality control**: responses must be JSON; records missing required fields are dropped and numeric fields are clamped.
`

func conclusions(b *strings.Builder, snap resultstore.Snapshot) {
	if o := snap.Transliteration; o != nil {
		if o.OK() && o.Value.Result.Success {
			b.WriteString("- ✓ Transliteration completed\n")
		} else {
			b.WriteString("- ✗ Transliteration ran into problems\n")
		}
	}
	if o := snap.Risk; o != nil && o.Value != nil {
		if high := o.Value.Statistics.SeverityDistribution[models.SeverityHigh]; high == 0 {
			b.WriteString("- ✓ No high-severity phonetic ambiguity\n")
		} else {
			fmt.Fprintf(b, "- ⚠ %d high-severity ambiguities detected\n", high)
		}
	}
	if o := snap.Cognate; o != nil && o.Value != nil {
		rate := o.Value.Statistics.AlignmentRate
		switch {
		case rate > 0.8:
			b.WriteString("- ✓ Cognate alignment rate is high\n")
		case rate > 0.5:
			b.WriteString("- ~ Cognate alignment rate is moderate\n")
		default:
			b.WriteString("- ⚠ Cognate alignment rate is low\n")
		}
	}
	if o := snap.Effectiveness; o != nil && o.Value != nil && o.Value.Assessment != nil {
		fmt.Fprintf(b, "- Effectiveness: %s improvement, rated %s\n", o.Value.Assessment.ImprovementCategory, o.Value.Assessment.EffectivenessRating)
	}

	b.WriteString("\nRecommendations:\n\n")
	b.WriteString("1. Continue standardizing the new letters (x, ə, q, ñ, û).\n")
	b.WriteString("2. Add a second review step for high-severity ambiguities.\n")
	b.WriteString("3. Extend cognate alignment with data from more languages.\n")
}

func head[T any](items []T, n int) []T {
	if len(items) > n {
		return items[:n]
	}
	return items
}
