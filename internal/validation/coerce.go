package validation

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/ctalab/ctaeval/internal/models"
	"github.com/go-viper/mapstructure/v2"
)

// DefaultConfidence replaces confidence values that cannot be read as numbers.
const DefaultConfidence = 0.5

// Placeholders for explanatory fields the model left out.
const (
	PlaceholderRationale    = "Rationale not provided"
	PlaceholderRootAnalysis = "Root analysis not provided"
	placeholderContext      = "Phonetic ambiguity for letter '%s'"
)

// tierConfidence is the confidence assumed for a cognate group that did not
// state one.
var tierConfidence = map[models.Similarity]float64{
	models.SimilarityHigh:   0.8,
	models.SimilarityMedium: 0.6,
	models.SimilarityLow:    0.4,
}

// decodeLoose decodes input into out with weak typing, so "3" fills an int
// and a lone scalar fills a slice.
func decodeLoose(input any, out any) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		Result:           out,
	})
	if err != nil {
		return err
	}
	return dec.Decode(input)
}

// toFloat reads v as a number. Strings are trimmed and may carry a trailing %.
func toFloat(v any) (float64, bool) {
	var f float64
	switch x := v.(type) {
	case float64:
		f = x
	case float32:
		f = float64(x)
	case int:
		f = float64(x)
	case int64:
		f = float64(x)
	case string:
		s := strings.TrimSuffix(strings.TrimSpace(x), "%")
		parsed, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
		if err != nil {
			return 0, false
		}
		f = parsed
	default:
		return 0, false
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

// unit coerces v into [0,1], using DefaultConfidence when v is not numeric.
func unit(v any) float64 {
	f, ok := toFloat(v)
	if !ok {
		return DefaultConfidence
	}
	return math.Min(1, math.Max(0, f))
}

// count coerces v into a non-negative integer, 0 when unreadable.
func count(v any) int {
	f, ok := toFloat(v)
	if !ok || f < 0 {
		return 0
	}
	return int(math.Round(f))
}

// nonNegative coerces v into a non-negative float, 0 when unreadable.
func nonNegative(v any) float64 {
	f, ok := toFloat(v)
	if !ok || f < 0 {
		return 0
	}
	return f
}

func text(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(x)
	case float64, bool:
		return fmt.Sprint(x)
	default:
		return ""
	}
}

func truthy(v any, def bool) bool {
	switch x := v.(type) {
	case bool:
		return x
	case string:
		if b, err := strconv.ParseBool(strings.TrimSpace(x)); err == nil {
			return b
		}
	case float64:
		return x != 0
	}
	return def
}

func severity(v any) models.Severity {
	s := models.Severity(strings.ToLower(text(v)))
	switch s {
	case models.SeverityLow, models.SeverityMedium, models.SeverityHigh:
		return s
	}
	return models.SeverityMedium
}

func similarity(v any) models.Similarity {
	s := models.Similarity(strings.ToLower(text(v)))
	switch s {
	case models.SimilarityLow, models.SimilarityMedium, models.SimilarityHigh:
		return s
	}
	return models.SimilarityMedium
}

// set trims values and removes empties and duplicates, keeping first-seen order.
func set(values []string) []string {
	out := make([]string, 0, len(values))
	seen := map[string]bool{}
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v == "" || seen[v] {
			continue
		}
		seen[v] = true
		out = append(out, v)
	}
	return out
}

func list(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}

// collection resolves the records of an object document: either a wrapper
// holding the records under key or, when it has marker, a lone record.
func collection(obj map[string]any, key, marker string) ([]any, bool) {
	if inner, ok := obj[key]; ok {
		var records []any
		if err := decodeLoose(inner, &records); err != nil {
			return nil, false
		}
		return records, true
	}
	if _, ok := obj[marker]; ok {
		return []any{obj}, true
	}
	return nil, false
}

func anySlice(items []map[string]any) []any {
	out := make([]any, len(items))
	for i, it := range items {
		out[i] = it
	}
	return out
}
