package prompts

import (
	"github.com/ctalab/ctaeval/internal/models"
	"github.com/ctalab/ctaeval/internal/template"
)

// EffectivenessOptions tune the effectiveness prompt.
type EffectivenessOptions struct {
	// IncludeExpectedRanges keeps the published improvement ranges in the
	// prompt. They steer the model toward those numbers, so results produced
	// with them are marked in the report metadata.
	IncludeExpectedRanges bool
}

// DefaultEffectivenessOptions matches the published methodology.
var DefaultEffectivenessOptions = EffectivenessOptions{IncludeExpectedRanges: true}

const effectivenessShape = `{
  "original_analysis": {"upc": <int>, "tpc": <int>, "alc": <number>, "weighted_pce": <number>, "logarithmic_pce": <number>},
  "cta_analysis":      {"upc": <int>, "tpc": <int>, "alc": <number>, "weighted_pce": <number>, "logarithmic_pce": <number>},
  "comparison": {"weighted_improvement": <percent>, "logarithmic_improvement": <percent>, "effectiveness_gain": <percent>},
  "detailed_analysis": "<Turkish explanation of the phonetic improvements>"
}`

const expectedRanges = "Expected results from the published study: 18-19% weighted improvement, 11-12% logarithmic improvement."

var effectivenessInstruction = template.MustParse("effectiveness-instruction", `ROLE: You measure Phonetic Correspondence Effectiveness (PCE): how well a writing system represents the sounds of a text.

DEFINITIONS:
- UPC (unique phoneme count): number of distinct phonemes in the text
- TPC (total phoneme count): number of phoneme occurrences in the text
- ALC (average letter count): letters per phoneme = total letters / TPC

FORMULAS (scale factor SF = 100):
1. Weighted PCE = (UPC / TPC) × ALC × 100
2. Logarithmic PCE = (ln(1 + UPC) / ln(1 + TPC)) × (1 / ALC) × 100
3. Improvement % = ((CTA_PCE − Original_PCE) / Original_PCE) × 100
{{if .Ranges}}
{{.Ranges}}
{{end}}
TASK:
1. Extract the phonemes of the original and of the CTA text.
2. Count UPC and TPC, derive ALC.
3. Compute both PCE scores for each text with SF = 100.
4. Compare the two texts.
{{.Contract}}`)

var effectivenessContext = template.MustParse("effectiveness-context", `DATASET: {{.Dataset}}

ORIGINAL_TEXT:
{{.Original}}

CTA_TEXT:
{{.Normalized}}

TASK: Run the PCE analysis on both texts with the formulas above and return the JSON object only. Focus on how the CTA letters q, x, ñ, ə and û change UPC.{{if .Ranges}}
{{.Ranges}}{{end}}`)

// Effectiveness builds the prompt for scoring the phonetic effectiveness of
// a normalized text against its original.
func Effectiveness(req models.EffectivenessRequest, opts EffectivenessOptions) (Prompt, error) {
	c, err := contract(effectivenessShape, "detailed_analysis")
	if err != nil {
		return Prompt{}, err
	}

	ranges := ""
	if opts.IncludeExpectedRanges {
		ranges = expectedRanges
	}

	instruction, err := effectivenessInstruction.Execute(map[string]string{
		"Ranges":   ranges,
		"Contract": c,
	})
	if err != nil {
		return Prompt{}, err
	}

	dataset := req.DatasetLabel
	if dataset == "" {
		dataset = "Custom"
	}
	context, err := effectivenessContext.Execute(map[string]string{
		"Dataset":    dataset,
		"Original":   req.OriginalText,
		"Normalized": req.NormalizedText,
		"Ranges":     ranges,
	})
	if err != nil {
		return Prompt{}, err
	}

	return Prompt{
		Instruction: instruction,
		Context:     context,
		Temperature: EffectivenessParams.Temperature,
		MaxTokens:   EffectivenessParams.MaxTokens,
	}, nil
}
