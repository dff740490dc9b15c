package prompts

import (
	"github.com/ctalab/ctaeval/internal/alphabet"
	"github.com/ctalab/ctaeval/internal/models"
	"github.com/ctalab/ctaeval/internal/template"
)

const transliterationShape = `{"ok": true, "output_text": "<text in CTA>", "notes": ["<Turkish note>", "..."]}`

var transliterationInstruction = template.MustParse("transliteration-instruction", `ROLE: You are a transliteration engine for the Common Turkic Alphabet (CTA).

{{.Rules}}

MAPPING TABLES:
{{.Mappings}}
TASK RULES:
1. Apply the table of the source language systematically, longest sequence first.
2. Use the new CTA letters only where the sound is really present.
3. In notes, name the new letters you used and why. Turkish input: "Türkçe metinde CTA fonetik iyileştirmeleri uygulandı: ...". Other input: "<dil> dilinden CTA'ya çevrildi. Kullanılan yeni harfler: ...".
4. If the text cannot be transliterated, answer {"ok": false, "error": "<Turkish reason>", "notes": []}.
{{.Contract}}`)

var transliterationContext = template.MustParse("transliteration-context", `SOURCE_LANGUAGE: {{.Language}}
MAPPING TABLE FOR {{.Language}}: {{.Table}}

INPUT_TEXT:
{{.Text}}

TASK: Transliterate INPUT_TEXT from {{.Language}} to CTA and return the JSON object only.`)

// Transliteration builds the prompt for converting text to CTA. The caller
// rejects empty text before calling.
func Transliteration(req models.TransliterationRequest) (Prompt, error) {
	c, err := contract(transliterationShape, "notes", "error")
	if err != nil {
		return Prompt{}, err
	}

	instruction, err := transliterationInstruction.Execute(map[string]string{
		"Rules":    letterRules,
		"Mappings": mappingSection(),
		"Contract": c,
	})
	if err != nil {
		return Prompt{}, err
	}

	context, err := transliterationContext.Execute(map[string]string{
		"Language": string(req.SourceLanguage),
		"Table":    alphabet.FormatMapping(alphabet.Mapping(req.SourceLanguage)),
		"Text":     req.SourceText,
	})
	if err != nil {
		return Prompt{}, err
	}

	return Prompt{
		Instruction: instruction,
		Context:     context,
		Temperature: TransliterationParams.Temperature,
		MaxTokens:   TransliterationParams.MaxTokens,
	}, nil
}
