package reporting

import (
	"fmt"
	"strings"

	"github.com/ctalab/ctaeval/internal/models"
	"github.com/ctalab/ctaeval/internal/resultstore"
)

// InterpretAlignmentRate returns a plain-language label for a cognate
// alignment rate (0–1).
func InterpretAlignmentRate(rate float64) string {
	switch {
	case rate > 0.8:
		return "High alignment rate"
	case rate > 0.5:
		return "Moderate alignment rate"
	default:
		return "Low alignment rate"
	}
}

// InterpretConfidence labels a mean confidence score (0–1).
func InterpretConfidence(c float64) string {
	switch {
	case c >= 0.8:
		return "confident"
	case c >= 0.5:
		return "fairly confident"
	default:
		return "uncertain"
	}
}

// InterpretRisks summarizes how serious a set of risks is.
func InterpretRisks(s models.RiskStatistics) string {
	high := s.SeverityDistribution[models.SeverityHigh]
	switch {
	case s.TotalRisks == 0:
		return "No phonetic ambiguity detected."
	case high == 0:
		return "No high-severity ambiguity detected."
	case high == 1:
		return "1 high-severity ambiguity needs review."
	default:
		return fmt.Sprintf("%d high-severity ambiguities need review.", high)
	}
}

func statusIcon(failure *models.Failure) string {
	if failure != nil {
		return "✗"
	}
	return "✓"
}

// FormatSummary produces a short plain-text interpretation of every filled
// slot, for terminal output.
func FormatSummary(snap resultstore.Snapshot) string {
	var b strings.Builder
	p := printer()

	b.WriteString("=== Interpretation ===\n\n")
	if snap.Empty() {
		b.WriteString("No analyses have been run yet.\n")
		return b.String()
	}

	if o := snap.Transliteration; o != nil {
		fmt.Fprintf(&b, "%s Transliteration", statusIcon(o.Failure))
		if o.Value != nil && o.Value.Statistics != nil {
			st := o.Value.Statistics
			b.WriteString(p.Sprintf(": %d characters in, %d out, %d new letters used", st.InputLength, st.OutputLength, sumCounts(st.NewLettersUsed)))
		}
		b.WriteString(failureSuffix(o.Failure))
		b.WriteString("\n")
	}
	if o := snap.Risk; o != nil {
		fmt.Fprintf(&b, "%s Risk analysis", statusIcon(o.Failure))
		if o.Value != nil {
			st := o.Value.Statistics
			b.WriteString(p.Sprintf(": %d risks, %s (mean confidence %.2f, %s)",
				st.TotalRisks, strings.TrimSuffix(InterpretRisks(st), "."), st.AverageConfidence, InterpretConfidence(st.AverageConfidence)))
		}
		b.WriteString(failureSuffix(o.Failure))
		b.WriteString("\n")
	}
	if o := snap.Cognate; o != nil {
		fmt.Fprintf(&b, "%s Cognate alignment", statusIcon(o.Failure))
		if o.Value != nil {
			st := o.Value.Statistics
			b.WriteString(p.Sprintf(": %d groups, %.0f%% aligned (%s)", st.GroupsFound, st.AlignmentRate*100, InterpretAlignmentRate(st.AlignmentRate)))
		}
		b.WriteString(failureSuffix(o.Failure))
		b.WriteString("\n")
	}
	if o := snap.Effectiveness; o != nil {
		fmt.Fprintf(&b, "%s Effectiveness", statusIcon(o.Failure))
		if o.Value != nil && o.Value.Metrics != nil {
			c := o.Value.Metrics.Comparison
			b.WriteString(p.Sprintf(": weighted %+.1f%%, logarithmic %+.1f%%", c.WeightedImprovementPct, c.LogarithmicImprovementPct))
			if a := o.Value.Assessment; a != nil {
				fmt.Fprintf(&b, " (%s improvement, %s)", a.ImprovementCategory, a.EffectivenessRating)
			}
		}
		b.WriteString(failureSuffix(o.Failure))
		b.WriteString("\n")
	}
	return b.String()
}

func failureSuffix(f *models.Failure) string {
	if f == nil {
		return ""
	}
	return fmt.Sprintf(": %s", f.Error())
}

func sumCounts(m map[string]int) int {
	n := 0
	for _, c := range m {
		n += c
	}
	return n
}
