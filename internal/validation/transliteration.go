package validation

import (
	"log/slog"

	"github.com/ctalab/ctaeval/internal/extract"
	"github.com/ctalab/ctaeval/internal/models"
)

const noTransliteration = "response did not contain a transliteration"

type looseTransliteration struct {
	OK         any      `mapstructure:"ok"`
	OutputText any      `mapstructure:"output_text"`
	Notes      []string `mapstructure:"notes"`
	Error      any      `mapstructure:"error"`
}

// Transliteration validates a transliteration answer. The result is a
// success only when the answer says ok and carries a non-empty output text.
// An unusable document yields an unsuccessful result and dropped == 1.
func Transliteration(doc extract.Document) (models.TransliterationResult, int) {
	var obj map[string]any
	switch doc.Kind() {
	case extract.KindObject:
		obj, _ = doc.Object()
	case extract.KindArray:
		if items, _ := doc.Array(); len(items) > 0 {
			obj = items[0]
		}
	}

	failed := models.TransliterationResult{Notes: []string{}, Error: noTransliteration}
	if obj == nil {
		return failed, 1
	}
	if errs := schemaErrors(transliterationSchema, obj); len(errs) > 0 {
		slog.Debug("Dropping transliteration answer", "errors", errs)
		return failed, 1
	}

	var lt looseTransliteration
	if err := decodeLoose(obj, &lt); err != nil {
		slog.Debug("Dropping transliteration answer", "error", err)
		return failed, 1
	}

	res := models.TransliterationResult{Notes: list(lt.Notes)}
	output := text(lt.OutputText)
	if truthy(lt.OK, false) && output != "" {
		res.Success = true
		res.OutputText = output
		return res, 0
	}

	res.Error = text(lt.Error)
	if res.Error == "" {
		res.Error = noTransliteration
	}
	return res, 0
}
