package validation

import (
	"fmt"
	"log/slog"

	"github.com/ctalab/ctaeval/internal/extract"
	"github.com/ctalab/ctaeval/internal/models"
)

type looseGroup struct {
	Similarity   any   `mapstructure:"similarity"`
	Items        []any `mapstructure:"items"`
	Rationale    any   `mapstructure:"rationale"`
	Confidence   any   `mapstructure:"confidence"`
	RootAnalysis any   `mapstructure:"root_analysis"`
}

// normalizedKeys are the names models use for the CTA form of a word, in
// order of preference.
var normalizedKeys = []string{"normalized", "cta", "ota"}

// CognateGroups validates a cognate alignment document. It accepts an object
// with a "groups" collection, an array of groups, or a lone group. Groups
// with fewer than two valid items are dropped whole.
func CognateGroups(doc extract.Document) (kept []models.CognateGroup, dropped int) {
	var raw []any
	switch doc.Kind() {
	case extract.KindArray:
		items, _ := doc.Array()
		raw = anySlice(items)
	case extract.KindObject:
		obj, _ := doc.Object()
		var ok bool
		if raw, ok = collection(obj, "groups", "similarity"); !ok {
			return nil, 1
		}
	default:
		return nil, 0
	}

	kept = make([]models.CognateGroup, 0, len(raw))
	for i, g := range raw {
		group, err := cognateGroup(g)
		if err != nil {
			slog.Debug("Dropping cognate group", "index", i, "error", err)
			dropped++
			continue
		}
		kept = append(kept, group)
	}
	return kept, dropped
}

func cognateGroup(g any) (models.CognateGroup, error) {
	obj, ok := g.(map[string]any)
	if !ok {
		return models.CognateGroup{}, fmt.Errorf("group is %T, not an object", g)
	}
	if errs := schemaErrors(cognateGroupSchema, g); len(errs) > 0 {
		return models.CognateGroup{}, fmt.Errorf("schema: %v", errs)
	}

	var lg looseGroup
	if err := decodeLoose(g, &lg); err != nil {
		return models.CognateGroup{}, err
	}

	group := models.CognateGroup{
		Similarity:   similarity(lg.Similarity),
		Rationale:    text(lg.Rationale),
		RootAnalysis: text(lg.RootAnalysis),
	}

	for _, it := range lg.Items {
		if item, ok := cognateItem(it); ok {
			group.Items = append(group.Items, item)
		}
	}
	if len(group.Items) < 2 {
		return models.CognateGroup{}, fmt.Errorf("group has %d valid items, need at least 2", len(group.Items))
	}

	if c, present := obj["confidence"]; present && c != nil {
		group.Confidence = unit(c)
	} else {
		group.Confidence = tierConfidence[group.Similarity]
	}
	if group.Rationale == "" {
		group.Rationale = PlaceholderRationale
	}
	if group.RootAnalysis == "" {
		group.RootAnalysis = PlaceholderRootAnalysis
	}
	return group, nil
}

func cognateItem(it any) (models.CognateItem, bool) {
	obj, ok := it.(map[string]any)
	if !ok || len(schemaErrors(cognateItemSchema, it)) > 0 {
		return models.CognateItem{}, false
	}

	item := models.CognateItem{
		LanguageCode: text(obj["lang"]),
		OriginalWord: text(obj["original"]),
	}
	if item.LanguageCode == "" || item.OriginalWord == "" {
		return models.CognateItem{}, false
	}
	for _, k := range normalizedKeys {
		if s := text(obj[k]); s != "" {
			item.NormalizedWord = s
			break
		}
	}
	if item.NormalizedWord == "" {
		item.NormalizedWord = item.OriginalWord
	}
	return item, true
}
