package prompts

import (
	"github.com/ctalab/ctaeval/internal/models"
	"github.com/ctalab/ctaeval/internal/template"
)

const cognateShape = `{
  "groups": [
    {
      "similarity": "high" | "medium" | "low",
      "items": [
        {"lang": "<language code>", "original": "<word as given>", "cta": "<word in CTA>"}
      ],
      "rationale": "<Turkish explanation of the sound correspondences>",
      "confidence": <number between 0.0 and 1.0>,
      "root_analysis": "<Turkish note on the common root>"
    }
  ]
}
Every group must contain at least two words. Words without a partner are left out.`

var cognateInstruction = template.MustParse("cognate-instruction", `ROLE: You align cognates across Turkic languages after writing them in the Common Turkic Alphabet (CTA).

{{.Rules}}

MAPPING TABLES:
{{.Mappings}}
PROCESS:
1. Write each candidate word in CTA with the mapping tables.
2. Group the words that share a root.
3. Rate each group:
   - high: clear cognates with regular sound correspondences (tr:şehir ~ uz:shahar, sh ~ ş)
   - medium: probable cognates with sound changes or semantic drift
   - low: possible distant relation or borrowing
4. Explain the correspondences (k~q, g~ğ, sh~ş, ch~ç, x~h, e~ä, o~ò, n~ñ, vowel length) and the root.
Be conservative with high ratings and look at root plus suffixes, not surface similarity.
{{.Contract}}`)

var cognateContext = template.MustParse("cognate-context", `CANDIDATE WORDS:
{{range .}}- {{.LanguageCode}}: {{.Word}} ({{.LanguageName}})
{{end}}
TASK: Write each word in CTA, group the cognates and return the JSON object only.`)

// Cognate builds the prompt for aligning candidate words. Candidates keep
// their input order.
func Cognate(candidates []models.ParsedCandidate) (Prompt, error) {
	c, err := contract(cognateShape, "rationale", "root_analysis")
	if err != nil {
		return Prompt{}, err
	}

	instruction, err := cognateInstruction.Execute(map[string]string{
		"Rules":    letterRules,
		"Mappings": mappingSection(),
		"Contract": c,
	})
	if err != nil {
		return Prompt{}, err
	}

	context, err := cognateContext.Execute(candidates)
	if err != nil {
		return Prompt{}, err
	}

	return Prompt{
		Instruction: instruction,
		Context:     context,
		Temperature: CognateParams.Temperature,
		MaxTokens:   CognateParams.MaxTokens,
	}, nil
}
