package reporting

import (
	"fmt"
	"io"
	"strings"

	"github.com/mattn/go-runewidth"

	"github.com/ctalab/ctaeval/internal/models"
	"github.com/ctalab/ctaeval/internal/stats"
)

// Table is a rectangular block of cells. Cells may hold letters outside
// ASCII (ə, ñ, û), so widths are measured in terminal columns.
type Table struct {
	Headers []string
	Rows    [][]string
}

func (t Table) widths() []int {
	w := make([]int, len(t.Headers))
	for i, h := range t.Headers {
		w[i] = runewidth.StringWidth(h)
	}
	for _, row := range t.Rows {
		for i, cell := range row {
			if i < len(w) {
				w[i] = max(w[i], runewidth.StringWidth(cell))
			}
		}
	}
	return w
}

// Render writes the table as aligned plain text.
func (t Table) Render(w io.Writer) {
	widths := t.widths()
	line := func(cells []string) {
		parts := make([]string, len(widths))
		for i := range widths {
			cell := ""
			if i < len(cells) {
				cell = cells[i]
			}
			parts[i] = padRight(cell, widths[i])
		}
		fmt.Fprintln(w, strings.TrimRight(strings.Join(parts, "  "), " ")) //nolint:errcheck
	}

	line(t.Headers)
	rule := make([]string, len(widths))
	for i, n := range widths {
		rule[i] = strings.Repeat("─", n)
	}
	fmt.Fprintln(w, strings.Join(rule, "  ")) //nolint:errcheck
	for _, row := range t.Rows {
		line(row)
	}
}

// Markdown writes the table as a GitHub-flavored Markdown table.
func (t Table) Markdown(w io.Writer) {
	widths := t.widths()
	line := func(cells []string) {
		parts := make([]string, len(widths))
		for i := range widths {
			cell := ""
			if i < len(cells) {
				cell = strings.ReplaceAll(cells[i], "|", `\|`)
			}
			parts[i] = padRight(cell, widths[i])
		}
		fmt.Fprintf(w, "| %s |\n", strings.Join(parts, " | ")) //nolint:errcheck
	}

	line(t.Headers)
	rule := make([]string, len(widths))
	for i, n := range widths {
		rule[i] = strings.Repeat("-", max(n, 3))
	}
	fmt.Fprintf(w, "| %s |\n", strings.Join(rule, " | ")) //nolint:errcheck
	for _, row := range t.Rows {
		line(row)
	}
}

// padRight pads s with spaces so its terminal display width reaches width.
func padRight(s string, width int) string {
	sw := runewidth.StringWidth(s)
	if sw >= width {
		return s
	}
	return s + strings.Repeat(" ", width-sw)
}

// RiskTable lists one row per risk record.
func RiskTable(records []models.RiskRecord) Table {
	t := Table{Headers: []string{"Letter", "Severity", "Confidence", "Confusions", "Languages", "Frequency"}}
	p := printer()
	for _, r := range records {
		t.Rows = append(t.Rows, []string{
			r.Letter,
			string(r.Severity),
			p.Sprintf("%.2f", r.Confidence),
			strings.Join(r.PossibleConfusions, ", "),
			strings.Join(r.Languages, ", "),
			p.Sprintf("%d", r.FrequencyInText),
		})
	}
	return t
}

// CognateTable lists one row per aligned word, grouped by cognate group.
func CognateTable(groups []models.CognateGroup) Table {
	t := Table{Headers: []string{"Group", "Similarity", "Language", "Original", "Normalized"}}
	for i, g := range groups {
		for _, it := range g.Items {
			t.Rows = append(t.Rows, []string{
				fmt.Sprintf("%d", i+1),
				string(g.Similarity),
				it.LanguageCode,
				it.OriginalWord,
				it.NormalizedWord,
			})
		}
	}
	return t
}

// ComparisonTable lists the effectiveness comparison of several datasets.
func ComparisonTable(results []stats.NamedComparison) Table {
	t := Table{Headers: []string{"Dataset", "Weighted %", "Logarithmic %", "Gain %", "Category", "Rating"}}
	p := printer()
	for _, r := range results {
		a := stats.Assess(r.Comparison)
		t.Rows = append(t.Rows, []string{
			r.Dataset,
			p.Sprintf("%.2f", r.Comparison.WeightedImprovementPct),
			p.Sprintf("%.2f", r.Comparison.LogarithmicImprovementPct),
			p.Sprintf("%.2f", r.Comparison.EffectivenessGainPct),
			a.ImprovementCategory,
			a.EffectivenessRating,
		})
	}
	return t
}

// VariantTable compares the original and normalized metrics of one
// effectiveness result.
func VariantTable(m models.EffectivenessMetrics) Table {
	p := printer()
	row := func(name string, v models.VariantMetrics) []string {
		return []string{
			name,
			p.Sprintf("%d", v.UniquePhonemeCount),
			p.Sprintf("%d", v.TotalPhonemeCount),
			p.Sprintf("%.2f", v.AverageLettersPerPhoneme),
			p.Sprintf("%.2f", v.WeightedScore),
			p.Sprintf("%.2f", v.LogarithmicScore),
		}
	}
	return Table{
		Headers: []string{"Variant", "UPC", "TPC", "ALC", "Weighted", "Logarithmic"},
		Rows:    [][]string{row("Original", m.Original), row("Normalized", m.Normalized)},
	}
}
