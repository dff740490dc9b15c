package prompts

import (
	"github.com/ctalab/ctaeval/internal/models"
	"github.com/ctalab/ctaeval/internal/template"
)

const riskShape = `[
  {
    "letter": "<the CTA letter>",
    "possible_confusions": ["<letter or sound>", "..."],
    "languages": ["<language code>", "..."],
    "examples": ["<word>", "..."],
    "confidence": <number between 0.0 and 1.0>,
    "severity": "low" | "medium" | "high",
    "context": "<Turkish explanation of when and why the confusion happens>"
  }
]
An empty array [] means no real ambiguity was found.`

var riskInstruction = template.MustParse("risk-instruction", `ROLE: You analyze phonetic ambiguity risks in text written in the Common Turkic Alphabet (CTA).

{{.Rules}}

WHAT TO LOOK FOR:
- x: uvular vs velar fricative vs plain h
- ə/ä: open front vowel confused with e or a
- q: uvular vs velar stop, confusion with k
- ñ: nasal often unwritten in Turkish spelling, ng ↔ ñ
- û: vowel length missing or exaggerated
- ò: Uzbek o' vs plain o
- also ğ and the front vowels ä/ö/ü when relevant

GUIDELINES:
- Report real phonetic ambiguities only, not spelling variants.
- Focus on cross-language confusion and morphophonological context.
- confidence reflects how frequent and systematic the confusion is.
- severity: high = frequent and systematic, medium = context dependent, low = rare.
- Use the short language codes tr, az, uz, kk, ky, tk, tt, ba, cv, sah, ug.
{{.Contract}}`)

var riskContext = template.MustParse("risk-context", `CTA_TEXT:
"{{.Text}}"

DETECTED_NEW_LETTERS: {{join .Letters ", "}}

TASK: Report the phonetic risks of the detected letters in this text, considering dialect variation and first-language transfer. Return the JSON array only.`)

// Risk builds the prompt for analyzing ambiguity risks. detected lists the
// tracked letters present in the text, in tracked-set order.
func Risk(req models.RiskAnalysisRequest, detected []string) (Prompt, error) {
	c, err := contract(riskShape, "context")
	if err != nil {
		return Prompt{}, err
	}

	instruction, err := riskInstruction.Execute(map[string]string{
		"Rules":    letterRules,
		"Contract": c,
	})
	if err != nil {
		return Prompt{}, err
	}

	context, err := riskContext.Execute(map[string]any{
		"Text":    req.NormalizedText,
		"Letters": detected,
	})
	if err != nil {
		return Prompt{}, err
	}

	return Prompt{
		Instruction: instruction,
		Context:     context,
		Temperature: RiskParams.Temperature,
		MaxTokens:   RiskParams.MaxTokens,
	}, nil
}
