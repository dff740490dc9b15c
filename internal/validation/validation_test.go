package validation

import (
	"testing"

	"github.com/ctalab/ctaeval/internal/extract"
	"github.com/ctalab/ctaeval/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustExtract(t *testing.T, raw string) extract.Document {
	t.Helper()
	doc, err := extract.Extract(raw)
	require.NoError(t, err)
	return doc
}

func TestRisksConfidenceCoercion(t *testing.T) {
	doc := mustExtract(t, `[
		{"letter": "q", "possible_confusions": ["k"], "languages": ["kk"], "examples": ["qazaq"], "confidence": "0.95", "severity": "high", "context": "Kalın k"},
		{"letter": "x", "possible_confusions": ["h"], "languages": ["az"], "examples": ["xəbər"], "confidence": 1.4, "severity": "low", "context": "Gırtlaksı h"},
		{"letter": "ñ", "possible_confusions": ["n"], "languages": ["tr"], "examples": ["teñri"], "confidence": -3, "severity": "low"},
		{"letter": "û", "possible_confusions": ["u"], "languages": ["tr"], "examples": ["sû"], "confidence": "very", "severity": "low"},
		{"letter": "ä", "possible_confusions": ["e"], "languages": ["tk"], "examples": ["ärkek"], "confidence": null, "severity": "low"}
	]`)

	kept, dropped := Risks(doc)
	require.Len(t, kept, 5)
	assert.Zero(t, dropped)

	assert.InDelta(t, 0.95, kept[0].Confidence, 1e-9)
	assert.Equal(t, 1.0, kept[1].Confidence)
	assert.Equal(t, 0.0, kept[2].Confidence)
	assert.Equal(t, DefaultConfidence, kept[3].Confidence)
	assert.Equal(t, DefaultConfidence, kept[4].Confidence)

	for _, r := range kept {
		assert.GreaterOrEqual(t, r.Confidence, 0.0)
		assert.LessOrEqual(t, r.Confidence, 1.0)
	}
}

func TestRisksDropsRecordsMissingRequiredFields(t *testing.T) {
	full := map[string]any{
		"letter":              "q",
		"possible_confusions": []any{"k"},
		"languages":           []any{"kk"},
		"examples":            []any{"qazaq"},
		"confidence":          0.7,
	}

	for _, field := range []string{"letter", "possible_confusions", "languages", "examples", "confidence"} {
		t.Run(field, func(t *testing.T) {
			rec := map[string]any{}
			for k, v := range full {
				if k != field {
					rec[k] = v
				}
			}

			kept, dropped := Risks(extract.ArrayDocument([]map[string]any{rec, full}))
			require.Len(t, kept, 1)
			assert.Equal(t, 1, dropped)
		})
	}
}

func TestRisksNullListsBecomeEmpty(t *testing.T) {
	doc := mustExtract(t, `[{"letter": "q", "possible_confusions": null, "languages": null, "examples": null, "confidence": 0.4}]`)

	kept, dropped := Risks(doc)
	require.Len(t, kept, 1)
	assert.Zero(t, dropped)
	assert.NotNil(t, kept[0].PossibleConfusions)
	assert.Empty(t, kept[0].PossibleConfusions)
	assert.NotNil(t, kept[0].Languages)
	assert.Empty(t, kept[0].Languages)
	assert.NotNil(t, kept[0].Examples)
	assert.Empty(t, kept[0].Examples)
	assert.InDelta(t, 0.4, kept[0].Confidence, 1e-9)
}

func TestRisksRepairs(t *testing.T) {
	doc := extract.ObjectDocument(map[string]any{
		"letter":              "x",
		"possible_confusions": "h",
		"languages":           []any{"az", "az", " uz "},
		"examples":            "xəbər",
		"confidence":          0.6,
		"severity":            "CRITICAL",
	})

	kept, dropped := Risks(doc)
	require.Len(t, kept, 1)
	assert.Zero(t, dropped)

	r := kept[0]
	assert.Equal(t, []string{"h"}, r.PossibleConfusions)
	assert.Equal(t, []string{"az", "uz"}, r.Languages)
	assert.Equal(t, []string{"xəbər"}, r.Examples)
	assert.Equal(t, models.SeverityMedium, r.Severity)
	assert.Equal(t, "Phonetic ambiguity for letter 'x'", r.Context)
	assert.Zero(t, r.FrequencyInText)
}

func TestRisksCollectionShapes(t *testing.T) {
	rec := map[string]any{
		"letter": "q", "possible_confusions": []any{"k"}, "languages": []any{"kk"},
		"examples": []any{"q"}, "confidence": 0.5,
	}

	kept, dropped := Risks(extract.ObjectDocument(map[string]any{"risks": []any{rec, "garbage"}}))
	assert.Len(t, kept, 1)
	assert.Equal(t, 1, dropped)

	kept, dropped = Risks(extract.ObjectDocument(map[string]any{"risks": []any{}}))
	assert.Empty(t, kept)
	assert.Zero(t, dropped)

	kept, dropped = Risks(extract.ObjectDocument(map[string]any{"unrelated": true}))
	assert.Empty(t, kept)
	assert.Equal(t, 1, dropped)
}

func TestCognateGroupsLoneGroup(t *testing.T) {
	doc := mustExtract(t, `{"similarity":"high","items":[{"lang":"tr","original":"şehir"},{"lang":"uz","original":"şahar"}],"rationale":"r"}`)

	kept, dropped := CognateGroups(doc)
	require.Len(t, kept, 1)
	assert.Zero(t, dropped)

	g := kept[0]
	assert.Equal(t, models.SimilarityHigh, g.Similarity)
	assert.Equal(t, 0.8, g.Confidence)
	assert.Equal(t, "r", g.Rationale)
	assert.Equal(t, PlaceholderRootAnalysis, g.RootAnalysis)
	assert.Equal(t, []models.CognateItem{
		{LanguageCode: "tr", OriginalWord: "şehir", NormalizedWord: "şehir"},
		{LanguageCode: "uz", OriginalWord: "şahar", NormalizedWord: "şahar"},
	}, g.Items)
}

func TestCognateGroupsArrayOfGroups(t *testing.T) {
	doc := mustExtract(t, `[{"similarity":"high","items":[{"lang":"tr","original":"şehir"},{"lang":"uz","original":"şahar"}],"rationale":"r"}]`)

	kept, dropped := CognateGroups(doc)
	require.Len(t, kept, 1)
	assert.Zero(t, dropped)
	assert.Len(t, kept[0].Items, 2)
	assert.Equal(t, 0.8, kept[0].Confidence)
}

func TestCognateGroupsDropsSmallGroups(t *testing.T) {
	doc := extract.ObjectDocument(map[string]any{
		"groups": []any{
			map[string]any{
				"similarity": "medium",
				"items": []any{
					map[string]any{"lang": "tr", "original": "su"},
					map[string]any{"lang": "kk"},
					"not-an-item",
				},
			},
			map[string]any{
				"similarity": "low",
				"items":      map[string]any{"lang": "tr", "original": "göz"},
			},
			map[string]any{
				"similarity": "bogus",
				"confidence": "0.3",
				"items": []any{
					map[string]any{"lang": "tr", "original": "su", "ota": "sû"},
					map[string]any{"lang": "kk", "original": "су", "cta": "su"},
				},
				"root_analysis": "Proto-Türkçe *sub",
			},
			map[string]any{"items": []any{}},
		},
	})

	kept, dropped := CognateGroups(doc)
	require.Len(t, kept, 1)
	assert.Equal(t, 3, dropped)

	g := kept[0]
	assert.Equal(t, models.SimilarityMedium, g.Similarity)
	assert.InDelta(t, 0.3, g.Confidence, 1e-9)
	assert.Equal(t, PlaceholderRationale, g.Rationale)
	assert.Equal(t, "Proto-Türkçe *sub", g.RootAnalysis)
	assert.Equal(t, "sû", g.Items[0].NormalizedWord)
	assert.Equal(t, "su", g.Items[1].NormalizedWord)
}

func TestCognateGroupsTierDefaults(t *testing.T) {
	items := []any{
		map[string]any{"lang": "tr", "original": "a"},
		map[string]any{"lang": "az", "original": "b"},
	}
	for tier, want := range map[string]float64{"high": 0.8, "medium": 0.6, "low": 0.4} {
		kept, _ := CognateGroups(extract.ObjectDocument(map[string]any{"similarity": tier, "items": items}))
		require.Len(t, kept, 1, tier)
		assert.Equal(t, want, kept[0].Confidence, tier)
	}
}

func TestTransliteration(t *testing.T) {
	tests := []struct {
		name        string
		doc         extract.Document
		want        models.TransliterationResult
		wantDropped int
	}{
		{
			name: "success",
			doc:  extract.ObjectDocument(map[string]any{"ok": true, "output_text": "hərkəs", "notes": []any{"açıklama"}}),
			want: models.TransliterationResult{Success: true, OutputText: "hərkəs", Notes: []string{"açıklama"}},
		},
		{
			name: "ok as string and scalar notes",
			doc:  extract.ObjectDocument(map[string]any{"ok": "true", "output_text": "sû", "notes": "tek not"}),
			want: models.TransliterationResult{Success: true, OutputText: "sû", Notes: []string{"tek not"}},
		},
		{
			name: "ok without output",
			doc:  extract.ObjectDocument(map[string]any{"ok": true}),
			want: models.TransliterationResult{Notes: []string{}, Error: noTransliteration},
		},
		{
			name: "output without ok",
			doc:  extract.ObjectDocument(map[string]any{"output_text": "qazaq"}),
			want: models.TransliterationResult{Notes: []string{}, Error: noTransliteration},
		},
		{
			name: "model reported failure",
			doc:  extract.ObjectDocument(map[string]any{"ok": false, "error": "Boş metin"}),
			want: models.TransliterationResult{Notes: []string{}, Error: "Boş metin"},
		},
		{
			name:        "unrelated object",
			doc:         extract.ObjectDocument(map[string]any{"foo": "bar"}),
			want:        models.TransliterationResult{Notes: []string{}, Error: noTransliteration},
			wantDropped: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, dropped := Transliteration(tt.doc)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.wantDropped, dropped)
		})
	}
}

func TestEffectiveness(t *testing.T) {
	doc := mustExtract(t, `{
		"original_analysis": {"upc": 20, "tpc": 100, "alc": 1.1, "weighted_pce": 22.0, "logarithmic_pce": 60.1},
		"ota_analysis": {"upc": "24", "tpc": 100, "alc": 1.0},
		"comparison": {"weighted_improvement": "18.5%", "logarithmic_improvement": 11.2},
		"detailed_analysis": "Yeni harfler UPC değerini artırdı"
	}`)

	m, dropped := Effectiveness(doc)
	require.NotNil(t, m)
	assert.Zero(t, dropped)

	assert.Equal(t, 20, m.Original.UniquePhonemeCount)
	assert.Equal(t, 22.0, m.Original.WeightedScore)
	assert.Equal(t, 24, m.Normalized.UniquePhonemeCount)
	assert.InDelta(t, 24.0, m.Normalized.WeightedScore, 1e-9)
	assert.Greater(t, m.Normalized.LogarithmicScore, 0.0)

	require.NotNil(t, m.ReportedComparison)
	assert.Equal(t, 18.5, m.ReportedComparison.WeightedImprovementPct)
	assert.Equal(t, 11.2, m.ReportedComparison.LogarithmicImprovementPct)
	assert.Zero(t, m.Comparison)
	assert.Equal(t, "Yeni harfler UPC değerini artırdı", m.DetailedAnalysis)
}

func TestEffectivenessMissingVariant(t *testing.T) {
	m, dropped := Effectiveness(extract.ObjectDocument(map[string]any{
		"original_analysis": map[string]any{"upc": 1, "tpc": 2, "alc": 1},
	}))
	assert.Nil(t, m)
	assert.Equal(t, 1, dropped)

	m, dropped = Effectiveness(extract.ObjectDocument(map[string]any{
		"original_analysis":   map[string]any{"upc": 1, "tpc": 2},
		"normalized_analysis": map[string]any{"upc": 1, "tpc": 2, "alc": 1},
	}))
	assert.Nil(t, m)
	assert.Equal(t, 1, dropped)
}
