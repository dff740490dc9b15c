// Package prompts builds the instruction/context pairs sent to the
// generation service for each analysis. Builders are deterministic: the same
// request always yields the same prompt.
package prompts

import (
	"github.com/ctalab/ctaeval/internal/alphabet"
	"github.com/ctalab/ctaeval/internal/template"
)

// Prompt is a rendered request for the generation service.
type Prompt struct {
	Instruction string  `json:"instruction"`
	Context     string  `json:"context"`
	Temperature float64 `json:"temperature"`
	MaxTokens   int     `json:"max_tokens"`
}

// Params are the sampling settings of one task.
type Params struct {
	Temperature float64 `yaml:"temperature,omitempty" json:"temperature"`
	MaxTokens   int     `yaml:"max_tokens,omitempty" json:"max_tokens"`
}

// Default sampling settings per task.
var (
	TransliterationParams = Params{Temperature: 0.1, MaxTokens: 2000}
	RiskParams            = Params{Temperature: 0.2, MaxTokens: 2000}
	CognateParams         = Params{Temperature: 0.3, MaxTokens: 3000}
	EffectivenessParams   = Params{Temperature: 0.1, MaxTokens: 3000}
)

// ExplanationLanguage is the natural language required for every free-text
// explanation field. Structural keys stay in English.
const ExplanationLanguage = "Turkish"

type contractData struct {
	Version     string
	Shape       string
	Fields      []string
	Lower       string
	Upper       string
	Punctuation string
	Language    string
}

var contractTemplate = template.MustParse("contract", `
OUTPUT CONTRACT (mapping tables {{.Version}}):
- Return ONLY the following JSON shape, nothing before or after it. No code fences, no labels such as "OUTPUT:" or "JSON:".
{{.Shape}}
- Keep every key exactly as written above, in English.
- Write the free-text fields ({{join .Fields ", "}}) in {{.Language}}.
- Any CTA text you write may use only these characters:
  lowercase: {{.Lower}}
  uppercase: {{.Upper}}
  other: {{.Punctuation}}
- Leave URLs, e-mail addresses, @mentions, #hashtags, numbers, dates, currency amounts and code-like tokens exactly as they appear in the input.
`)

// contract renders the output-format section appended to every instruction.
func contract(shape string, fields ...string) (string, error) {
	lower, upper := alphabet.AllowedLetters()
	return contractTemplate.Execute(contractData{
		Version:     alphabet.MappingVersion,
		Shape:       shape,
		Fields:      fields,
		Lower:       lower,
		Upper:       upper,
		Punctuation: alphabet.AllowedPunctuation,
		Language:    ExplanationLanguage,
	})
}

// mappingSection documents every source table, one line per language.
func mappingSection() string {
	s := ""
	for _, l := range alphabet.Languages {
		s += "# " + string(l) + " → CTA\n" + alphabet.FormatMapping(alphabet.Mapping(l)) + "\n"
	}
	return s
}

// letterRules is shared by every prompt that asks for CTA spelling.
const letterRules = `CTA = the 29-letter Turkish alphabet plus new letters for pan-Turkic sounds:
- q: back (uvular) k next to back vowels, e.g. Kazak → Qazaq, Kırgız → Qırğız
- x: guttural h of Arabic/Persian loanwords, e.g. haber → xabər, hizmet → xizmət
- ə/ä: open front e, e.g. herkes → hərkəs, edebiyat → ədəbiyyat
- ñ: nasal n (English ng), e.g. Tengri → Teñri
- û: long u that distinguishes meaning, e.g. su → sû
- ò: rounded back o of Uzbek o'
Closed e stays e (güzel, gel, ver). Turkish input needs very few changes: it is the CTA base.`
