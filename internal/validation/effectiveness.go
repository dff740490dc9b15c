package validation

import (
	"fmt"
	"log/slog"

	"github.com/ctalab/ctaeval/internal/extract"
	"github.com/ctalab/ctaeval/internal/models"
	"github.com/ctalab/ctaeval/internal/stats"
)

// normalizedVariantKeys are accepted names for the analysis of the
// normalized text.
var normalizedVariantKeys = []string{"normalized_analysis", "cta_analysis", "ota_analysis"}

type looseVariant struct {
	UPC            any `mapstructure:"upc"`
	TPC            any `mapstructure:"tpc"`
	ALC            any `mapstructure:"alc"`
	WeightedPCE    any `mapstructure:"weighted_pce"`
	LogarithmicPCE any `mapstructure:"logarithmic_pce"`
}

type looseComparison struct {
	Weighted    any `mapstructure:"weighted_improvement"`
	Logarithmic any `mapstructure:"logarithmic_improvement"`
	Gain        any `mapstructure:"effectiveness_gain"`
}

// Effectiveness validates an effectiveness document. Both variant analyses
// must be present; a score the model left out is computed from the counts.
// Comparison is left zero for the aggregator to fill.
func Effectiveness(doc extract.Document) (*models.EffectivenessMetrics, int) {
	var obj map[string]any
	switch doc.Kind() {
	case extract.KindObject:
		obj, _ = doc.Object()
	case extract.KindArray:
		if items, _ := doc.Array(); len(items) > 0 {
			obj = items[0]
		}
	}
	if obj == nil {
		return nil, 1
	}

	original, err := variant(obj["original_analysis"])
	if err != nil {
		slog.Debug("Dropping effectiveness record", "variant", "original", "error", err)
		return nil, 1
	}

	var normalizedRaw any
	for _, k := range normalizedVariantKeys {
		if v, ok := obj[k]; ok {
			normalizedRaw = v
			break
		}
	}
	normalized, err := variant(normalizedRaw)
	if err != nil {
		slog.Debug("Dropping effectiveness record", "variant", "normalized", "error", err)
		return nil, 1
	}

	m := &models.EffectivenessMetrics{
		Original:         original,
		Normalized:       normalized,
		DetailedAnalysis: text(obj["detailed_analysis"]),
	}

	if c, ok := obj["comparison"].(map[string]any); ok {
		var lc looseComparison
		if err := decodeLoose(c, &lc); err == nil {
			w, _ := toFloat(lc.Weighted)
			l, _ := toFloat(lc.Logarithmic)
			g, _ := toFloat(lc.Gain)
			m.ReportedComparison = &models.Comparison{
				WeightedImprovementPct:    w,
				LogarithmicImprovementPct: l,
				EffectivenessGainPct:      g,
			}
		}
	}
	return m, 0
}

func variant(v any) (models.VariantMetrics, error) {
	if _, ok := v.(map[string]any); !ok {
		return models.VariantMetrics{}, fmt.Errorf("variant analysis is %T, not an object", v)
	}
	if errs := schemaErrors(variantSchema, v); len(errs) > 0 {
		return models.VariantMetrics{}, fmt.Errorf("schema: %v", errs)
	}

	var lv looseVariant
	if err := decodeLoose(v, &lv); err != nil {
		return models.VariantMetrics{}, err
	}

	vm := models.VariantMetrics{
		UniquePhonemeCount:       count(lv.UPC),
		TotalPhonemeCount:        count(lv.TPC),
		AverageLettersPerPhoneme: nonNegative(lv.ALC),
	}

	if w, ok := toFloat(lv.WeightedPCE); ok {
		vm.WeightedScore = w
	} else {
		vm.WeightedScore = stats.WeightedPCE(vm.UniquePhonemeCount, vm.TotalPhonemeCount, vm.AverageLettersPerPhoneme)
	}
	if l, ok := toFloat(lv.LogarithmicPCE); ok {
		vm.LogarithmicScore = l
	} else {
		vm.LogarithmicScore = stats.LogarithmicPCE(vm.UniquePhonemeCount, vm.TotalPhonemeCount, vm.AverageLettersPerPhoneme)
	}
	return vm, nil
}
