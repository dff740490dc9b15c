package reporting

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"encoding/xml"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ctalab/ctaeval/internal/models"
	"github.com/ctalab/ctaeval/internal/resultstore"
	"github.com/ctalab/ctaeval/internal/stats"
)

var fixedTime = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

func sampleSnapshot() resultstore.Snapshot {
	trans := models.Succeed(models.TaskTransliteration, models.TransliterationReport{
		Result: models.TransliterationResult{Success: true, OutputText: "Xalq kitab oqıyor", Notes: []string{"q used for back k"}},
		Statistics: &models.TransliterationStatistics{
			InputLength: 17, OutputLength: 17, SourceLanguage: "tr",
			NewLettersUsed: map[string]int{"q": 2, "x": 1},
		},
	})
	trans.Generation = &models.GenerationMeta{Provider: "mock", Model: "gpt-4o", ElapsedSec: 0.5, Usage: models.TokenUsage{Total: 120}}

	risk := models.Succeed(models.TaskRisk, models.RiskReport{
		Risks: []models.RiskRecord{{
			Letter: "q", PossibleConfusions: []string{"k", "g"}, Languages: []string{"tr", "az"},
			Confidence: 0.9, Severity: models.SeverityHigh, Context: "q may be read as k", FrequencyInText: 2,
		}},
		Statistics: models.RiskStatistics{
			TotalRisks:           1,
			SeverityDistribution: map[models.Severity]int{models.SeverityHigh: 1},
			AverageConfidence:    0.9,
			LanguagesAffected:    []string{"az", "tr"},
		},
	})

	cognate := models.Succeed(models.TaskCognate, models.CognateReport{
		Groups: []models.CognateGroup{{
			Similarity: models.SimilarityHigh,
			Rationale:  "shared root su",
			Confidence: 0.8,
			Items: []models.CognateItem{
				{LanguageCode: "tr", OriginalWord: "su", NormalizedWord: "su"},
				{LanguageCode: "kk", OriginalWord: "су", NormalizedWord: "su"},
			},
		}},
		Statistics: models.CognateStatistics{
			TotalInputWords: 2, TotalAlignedWords: 2, GroupsFound: 1, AverageGroupSize: 2,
			AverageConfidence: 0.8, AlignmentRate: 1,
			SimilarityDistribution: map[models.Similarity]int{models.SimilarityHigh: 1},
			LanguageCoverage:       []string{"kk", "tr"},
		},
	})

	metrics := &models.EffectivenessMetrics{
		Original:   models.VariantMetrics{UniquePhonemeCount: 20, TotalPhonemeCount: 100, AverageLettersPerPhoneme: 1.2, WeightedScore: 20, LogarithmicScore: 55},
		Normalized: models.VariantMetrics{UniquePhonemeCount: 24, TotalPhonemeCount: 100, AverageLettersPerPhoneme: 1.0, WeightedScore: 24, LogarithmicScore: 69},
		Comparison: models.Comparison{WeightedImprovementPct: 20, LogarithmicImprovementPct: 25.45, EffectivenessGainPct: 22.73},
	}
	assessment := stats.Assess(metrics.Comparison)
	eff := models.Succeed(models.TaskEffectiveness, models.EffectivenessReport{
		Metrics:    metrics,
		Assessment: &assessment,
		Metadata:   models.EffectivenessMetadata{DatasetLabel: "Kazakh news", ExpectedRangesInPrompt: true},
	})

	return resultstore.Snapshot{Transliteration: &trans, Risk: &risk, Cognate: &cognate, Effectiveness: &eff, UpdatedAt: fixedTime}
}

func TestInterpretAlignmentRate(t *testing.T) {
	tests := []struct {
		rate float64
		want string
	}{
		{0.95, "High alignment rate"},
		{0.81, "High alignment rate"},
		{0.8, "Moderate alignment rate"},
		{0.51, "Moderate alignment rate"},
		{0.5, "Low alignment rate"},
		{0, "Low alignment rate"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, InterpretAlignmentRate(tt.rate), "rate %v", tt.rate)
	}
}

func TestInterpretRisks(t *testing.T) {
	assert.Equal(t, "No phonetic ambiguity detected.", InterpretRisks(models.RiskStatistics{}))
	assert.Equal(t, "No high-severity ambiguity detected.", InterpretRisks(models.RiskStatistics{
		TotalRisks: 2, SeverityDistribution: map[models.Severity]int{models.SeverityLow: 2},
	}))
	assert.Equal(t, "3 high-severity ambiguities need review.", InterpretRisks(models.RiskStatistics{
		TotalRisks: 3, SeverityDistribution: map[models.Severity]int{models.SeverityHigh: 3},
	}))
}

func TestFormatSummary(t *testing.T) {
	assert.Contains(t, FormatSummary(resultstore.Snapshot{}), "No analyses have been run yet.")

	snap := sampleSnapshot()
	failedCognate := models.Fail[models.CognateReport](models.TaskCognate, models.Failure{Kind: models.FailureQuota, Message: "limit reached"})
	snap.Cognate = &failedCognate

	out := FormatSummary(snap)
	assert.Contains(t, out, "✓ Transliteration: 17 characters in, 17 out, 3 new letters used")
	assert.Contains(t, out, "✓ Risk analysis: 1 risks")
	assert.Contains(t, out, "✗ Cognate alignment: quota error: limit reached")
	assert.Contains(t, out, "(high improvement, excellent)")
}

func TestTableRender_AlignsWideLetters(t *testing.T) {
	tbl := Table{
		Headers: []string{"L", "Word"},
		Rows:    [][]string{{"ə", "ağaç"}, {"ñ", "x"}},
	}
	var buf bytes.Buffer
	tbl.Render(&buf)

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	require.Len(t, lines, 4)
	assert.Equal(t, "L  Word", lines[0])
	assert.Equal(t, "─  ────", lines[1])
	assert.Equal(t, "ə  ağaç", lines[2])
	assert.Equal(t, "ñ  x", lines[3])
}

func TestTableMarkdown_EscapesPipes(t *testing.T) {
	tbl := Table{Headers: []string{"A"}, Rows: [][]string{{"a|b"}}}
	var buf bytes.Buffer
	tbl.Markdown(&buf)
	assert.Contains(t, buf.String(), `a\|b`)
	assert.Contains(t, buf.String(), "| --- |")
}

func TestCognateTable(t *testing.T) {
	snap := sampleSnapshot()
	tbl := CognateTable(snap.Cognate.Value.Groups)
	require.Len(t, tbl.Rows, 2)
	assert.Equal(t, []string{"1", "high", "kk", "су", "su"}, tbl.Rows[1])
}

func TestComparisonTable(t *testing.T) {
	tbl := ComparisonTable([]stats.NamedComparison{
		{Dataset: "A", Comparison: models.Comparison{WeightedImprovementPct: 16, LogarithmicImprovementPct: 10, EffectivenessGainPct: 13}},
		{Dataset: "B", Comparison: models.Comparison{WeightedImprovementPct: 5, LogarithmicImprovementPct: 4, EffectivenessGainPct: 4.5}},
	})
	require.Len(t, tbl.Rows, 2)
	assert.Equal(t, "A", tbl.Rows[0][0])
	assert.Equal(t, "high", tbl.Rows[0][4])
	assert.Equal(t, "low", tbl.Rows[1][4])
}

func TestWriteMarkdown_AllSections(t *testing.T) {
	var buf bytes.Buffer
	err := WriteMarkdown(&buf, sampleSnapshot(), Options{
		GeneratedAt: fixedTime,
		Comparisons: []stats.NamedComparison{{Dataset: "Kazakh news", Comparison: models.Comparison{WeightedImprovementPct: 20}}},
	})
	require.NoError(t, err)
	md := buf.String()

	for _, want := range []string{
		"# CTA (Common Turkic Alphabet) Evaluation Report",
		"_Generated 2024-05-01 12:00:00_",
		"This report covers 4 analyses.",
		"- Risk analysis: 1 risks detected",
		"- High-severity risks: 1",
		"## 1. Transliteration",
		"## 2. Phonetic Risk Analysis",
		"## 3. Cognate Alignment",
		"## 4. New Letters",
		"## 5. Phonetic Correspondence Effectiveness",
		"## 6. Methodology",
		"## 7. Conclusions and Recommendations",
		"### Dataset Comparison",
		"Dataset: Kazakh news",
		"The prompt quoted the published improvement ranges.",
		"1 high-severity ambiguity needs review.",
		"- ⚠ 1 high-severity ambiguities detected",
		"- ✓ Cognate alignment rate is high",
		"Xalq kitab oqıyor",
	} {
		assert.Contains(t, md, want)
	}
}

func TestWriteMarkdown_OnlyFailures(t *testing.T) {
	failed := models.Fail[models.RiskReport](models.TaskRisk, models.Failure{Kind: models.FailureTransport, Message: "connection refused"})
	var buf bytes.Buffer
	require.NoError(t, WriteMarkdown(&buf, resultstore.Snapshot{Risk: &failed}, Options{GeneratedAt: fixedTime}))
	md := buf.String()

	assert.Contains(t, md, "This report covers 1 analyses.")
	assert.Contains(t, md, "> **Failed** (transport): connection refused")
	assert.NotContains(t, md, "Transliteration\n")
	assert.NotContains(t, md, "Effectiveness\n")
}

func TestWriteHTML(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteHTML(&buf, sampleSnapshot(), Options{GeneratedAt: fixedTime, Title: "Report <draft>"}))
	page := buf.String()

	assert.True(t, strings.HasPrefix(page, "<!doctype html>"))
	assert.Contains(t, page, "<title>Report &lt;draft&gt;</title>")
	assert.Contains(t, page, "<table>")
	assert.Contains(t, page, "<h2>6. Methodology</h2>")
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, sampleSnapshot()))

	rows, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.NotEmpty(t, rows)
	assert.Equal(t, csvHeader, rows[0])

	sections := map[string]int{}
	for _, r := range rows[1:] {
		sections[r[0]]++
	}
	assert.Equal(t, 2, sections["transliteration"])
	assert.Equal(t, 1, sections["risk"])
	assert.Equal(t, 2, sections["cognate"])
	assert.Equal(t, 2, sections["effectiveness"])

	assert.Equal(t, []string{"risk", "q", "tr, az", "k, g", "q may be read as k", "0.9", "high"}, rows[3])
}

func TestWriteJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, FormatJSON, sampleSnapshot(), Options{GeneratedAt: fixedTime}))

	var got Export
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	assert.Equal(t, ReportVersion, got.ReportVersion)
	assert.Equal(t, fixedTime, got.Timestamp)
	assert.Equal(t, "ctaeval", got.Metadata.Generator)
	require.NotNil(t, got.Results.Risk)
	assert.Equal(t, "q", got.Results.Risk.Value.Risks[0].Letter)
	assert.Contains(t, buf.String(), "су")
}

func TestParseFormat(t *testing.T) {
	for in, want := range map[string]Format{"md": FormatMarkdown, ".html": FormatHTML, "CSV": FormatCSV, "json": FormatJSON, "markdown": FormatMarkdown} {
		got, err := ParseFormat(in)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
	_, err := ParseFormat("pdf")
	assert.Error(t, err)
}

func TestConvertBatchToJUnit(t *testing.T) {
	ok := func(label string, weighted float64) models.Outcome[models.EffectivenessReport] {
		o := models.Succeed(models.TaskEffectiveness, models.EffectivenessReport{
			Metrics:  &models.EffectivenessMetrics{Comparison: models.Comparison{WeightedImprovementPct: weighted}},
			Metadata: models.EffectivenessMetadata{DatasetLabel: label},
		})
		o.DurationMs = 1500
		return o
	}
	report := models.EffectivenessBatchReport{
		Results: []models.Outcome[models.EffectivenessReport]{
			ok("strong", 20),
			ok("weak", 5),
			models.Fail[models.EffectivenessReport](models.TaskEffectiveness, models.Failure{Kind: models.FailureExtraction, Message: "no JSON", RawResponse: "sorry"}),
		},
	}

	suites := ConvertBatchToJUnit(report, 10, fixedTime)
	assert.Equal(t, 3, suites.Tests)
	assert.Equal(t, 1, suites.Failures)
	assert.Equal(t, 1, suites.Errors)
	assert.InDelta(t, 3.0, suites.Time, 1e-9)

	cases := suites.TestSuites[0].TestCases
	assert.Nil(t, cases[0].Failure)
	require.NotNil(t, cases[1].Failure)
	assert.Contains(t, cases[1].Failure.Message, "weak: weighted improvement 5.00% < 10.00%")
	require.NotNil(t, cases[2].Error)
	assert.Equal(t, "extraction", cases[2].Error.Type)

	path := filepath.Join(t.TempDir(), "junit.xml")
	require.NoError(t, WriteJUnitXML(report, 10, path))
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var parsed JUnitTestSuites
	require.NoError(t, xml.Unmarshal(data, &parsed))
	assert.Equal(t, 1, parsed.Errors)
}

type fakeUploader struct {
	names        []string
	contentTypes []string
	err          error
}

func (f *fakeUploader) Upload(_ context.Context, name string, _ []byte, contentType string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	f.names = append(f.names, name)
	f.contentTypes = append(f.contentTypes, contentType)
	return "https://example.invalid/" + name, nil
}

func TestPublisher(t *testing.T) {
	up := &fakeUploader{}
	p := NewPublisher(up, "/reports/")
	p.now = func() time.Time { return fixedTime }

	url, err := p.Publish(context.Background(), "report.md", []byte("# hi"))
	require.NoError(t, err)
	assert.Equal(t, "https://example.invalid/reports/20240501T120000Z/report.md", url)
	assert.Equal(t, "text/markdown; charset=utf-8", up.contentTypes[0])

	dir := t.TempDir()
	csvPath := filepath.Join(dir, "report.csv")
	binPath := filepath.Join(dir, "data.bin")
	require.NoError(t, os.WriteFile(csvPath, []byte("a,b\n"), 0644))
	require.NoError(t, os.WriteFile(binPath, []byte{1, 2}, 0644))

	urls, err := p.PublishFiles(context.Background(), csvPath, binPath)
	require.NoError(t, err)
	assert.Len(t, urls, 2)
	assert.Equal(t, "text/csv; charset=utf-8", up.contentTypes[1])
	assert.Equal(t, "application/octet-stream", up.contentTypes[2])

	_, err = p.PublishFiles(context.Background(), filepath.Join(dir, "missing.md"))
	assert.Error(t, err)

	up.err = errors.New("forbidden")
	_, err = p.Publish(context.Background(), "report.md", nil)
	assert.EqualError(t, err, "forbidden")
}

func TestNewAzureUploader(t *testing.T) {
	_, err := NewAzureUploader("")
	assert.Error(t, err)

	up, err := NewAzureUploader("https://acct.blob.core.windows.net/reports?sv=2022-11-02&sig=abc")
	require.NoError(t, err)
	assert.NotNil(t, up)
}
