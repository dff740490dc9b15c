package validation

import (
	"fmt"
	"log/slog"

	"github.com/ctalab/ctaeval/internal/extract"
	"github.com/ctalab/ctaeval/internal/models"
)

type looseRisk struct {
	Letter             string   `mapstructure:"letter"`
	PossibleConfusions []string `mapstructure:"possible_confusions"`
	Languages          []string `mapstructure:"languages"`
	Examples           []string `mapstructure:"examples"`
	Confidence         any      `mapstructure:"confidence"`
	Severity           any      `mapstructure:"severity"`
	Context            any      `mapstructure:"context"`
}

// Risks validates a risk analysis document. It accepts an array of records,
// an object with a "risks" collection, or a lone record. FrequencyInText is
// left at zero for the caller to count.
func Risks(doc extract.Document) (kept []models.RiskRecord, dropped int) {
	var raw []any
	switch doc.Kind() {
	case extract.KindArray:
		items, _ := doc.Array()
		raw = anySlice(items)
	case extract.KindObject:
		obj, _ := doc.Object()
		var ok bool
		if raw, ok = collection(obj, "risks", "letter"); !ok {
			return nil, 1
		}
	default:
		return nil, 0
	}

	kept = make([]models.RiskRecord, 0, len(raw))
	for i, r := range raw {
		rec, err := risk(r)
		if err != nil {
			slog.Debug("Dropping risk record", "index", i, "error", err)
			dropped++
			continue
		}
		kept = append(kept, rec)
	}
	return kept, dropped
}

func risk(r any) (models.RiskRecord, error) {
	if _, ok := r.(map[string]any); !ok {
		return models.RiskRecord{}, fmt.Errorf("record is %T, not an object", r)
	}
	if errs := schemaErrors(riskSchema, r); len(errs) > 0 {
		return models.RiskRecord{}, fmt.Errorf("schema: %v", errs)
	}

	var lr looseRisk
	if err := decodeLoose(r, &lr); err != nil {
		return models.RiskRecord{}, err
	}

	rec := models.RiskRecord{
		Letter:             lr.Letter,
		PossibleConfusions: set(lr.PossibleConfusions),
		Languages:          set(lr.Languages),
		Examples:           list(lr.Examples),
		Confidence:         unit(lr.Confidence),
		Severity:           severity(lr.Severity),
		Context:            text(lr.Context),
	}
	if rec.Context == "" {
		rec.Context = fmt.Sprintf(placeholderContext, rec.Letter)
	}
	return rec, nil
}
