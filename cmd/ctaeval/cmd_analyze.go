package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ctalab/ctaeval/internal/alphabet"
	"github.com/ctalab/ctaeval/internal/models"
	"github.com/ctalab/ctaeval/internal/reporting"
)

func newTransliterateCommand(g *globalOptions) *cobra.Command {
	var lang, file string

	cmd := &cobra.Command{
		Use:   "transliterate [text...]",
		Short: "Transliterate text into the Common Turkic Alphabet",
		Long: `Transliterate text from a Turkic language into CTA.

The source language accepts names or codes: turkish (tr), uzbek_latin (uz),
kazakh_cyrillic (kk), azerbaijani_latin (az), turkmen_latin (tk) and
kyrgyz_cyrillic (ky).`,
		RunE: func(cmd *cobra.Command, args []string) error {
			language, err := alphabet.ParseLanguage(lang)
			if err != nil {
				return err
			}
			text, err := readInput(args, file)
			if err != nil {
				return err
			}
			a, err := newApp(cmd, g)
			if err != nil {
				return err
			}
			defer a.close()

			stop := a.spin("Transliterating")
			o := a.analyzer.Transliterate(cmd.Context(), models.TransliterationRequest{SourceText: text, SourceLanguage: language})
			stop()
			a.record(o.Failure)
			a.save(a.store.PutTransliteration(o))

			if a.json {
				if err := emitJSON(a.out, o); err != nil {
					return err
				}
				return failure(o.Failure)
			}
			if o.Failure != nil {
				printFailure(a.out, o.Failure)
				return failure(o.Failure)
			}
			printTransliteration(a.out, *o.Value)
			return nil
		},
	}

	cmd.Flags().StringVarP(&lang, "lang", "l", string(alphabet.Turkish), "Source language")
	cmd.Flags().StringVarP(&file, "file", "f", "", "Read the source text from a file")
	return cmd
}

func printTransliteration(w io.Writer, r models.TransliterationReport) {
	if !r.Result.Success {
		fmt.Fprintf(w, "✗ Transliteration rejected: %s\n", r.Result.Error) //nolint:errcheck
	} else {
		fmt.Fprintln(w, r.Result.OutputText) //nolint:errcheck
	}
	for _, n := range r.Result.Notes {
		fmt.Fprintf(w, "  • %s\n", n) //nolint:errcheck
	}
	if s := r.Statistics; s != nil {
		fmt.Fprintf(w, "\n%d → %d characters", s.InputLength, s.OutputLength) //nolint:errcheck
		if len(s.NewLettersUsed) > 0 {
			var used []string
			for _, l := range alphabet.TransliterationUsage {
				if n := s.NewLettersUsed[l]; n > 0 {
					used = append(used, fmt.Sprintf("%s×%d", l, n))
				}
			}
			fmt.Fprintf(w, ", new letters: %s", strings.Join(used, " ")) //nolint:errcheck
		}
		fmt.Fprintln(w) //nolint:errcheck
	}
}

func newRiskCommand(g *globalOptions) *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "risk [text...]",
		Short: "Find phonetic ambiguities of the new CTA letters in a text",
		RunE: func(cmd *cobra.Command, args []string) error {
			text, err := readInput(args, file)
			if err != nil {
				return err
			}
			a, err := newApp(cmd, g)
			if err != nil {
				return err
			}
			defer a.close()

			stop := a.spin("Analyzing phonetic risks")
			o := a.analyzer.AnalyzeRisks(cmd.Context(), models.RiskAnalysisRequest{NormalizedText: text})
			stop()
			a.record(o.Failure)
			a.save(a.store.PutRisk(o))

			if a.json {
				if err := emitJSON(a.out, o); err != nil {
					return err
				}
				return failure(o.Failure)
			}
			if o.Failure != nil {
				printFailure(a.out, o.Failure)
				return failure(o.Failure)
			}
			reporting.RiskTable(o.Value.Risks).Render(a.out)
			fmt.Fprintf(a.out, "\n%s\n", o.Value.Summary) //nolint:errcheck
			return nil
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "Read the normalized text from a file")
	return cmd
}

func newCognatesCommand(g *globalOptions) *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "cognates [lang:word...]",
		Short: "Group words from several Turkic languages into cognate sets",
		Long: `Group candidate words into cognate sets and show their CTA spelling.

Each candidate is "language_code:word", for example tr:şehir kk:шаһар.
With --file, the file holds one candidate per line.`,
		Example: `  ctaeval cognates tr:su kk:су az:su
  ctaeval cognates --file words.txt`,
		RunE: func(cmd *cobra.Command, args []string) error {
			text := strings.Join(args, "\n")
			if file != "" {
				var err error
				if text, err = readInput(nil, file); err != nil {
					return err
				}
			}
			a, err := newApp(cmd, g)
			if err != nil {
				return err
			}
			defer a.close()

			stop := a.spin("Aligning cognates")
			o := a.analyzer.AlignCognatesText(cmd.Context(), text)
			stop()
			a.record(o.Failure)
			a.save(a.store.PutCognate(o))

			if a.json {
				if err := emitJSON(a.out, o); err != nil {
					return err
				}
				return failure(o.Failure)
			}
			if o.Failure != nil {
				printFailure(a.out, o.Failure)
				return failure(o.Failure)
			}
			reporting.CognateTable(o.Value.Groups).Render(a.out)
			fmt.Fprintf(a.out, "\n%s\n", o.Value.Summary) //nolint:errcheck
			return nil
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "Read candidates from a file, one per line")
	return cmd
}

func newPCECommand(g *globalOptions) *cobra.Command {
	var original, normalized, originalFile, normalizedFile, label string

	cmd := &cobra.Command{
		Use:     "pce",
		Aliases: []string{"effectiveness"},
		Short:   "Measure phonetic correspondence effectiveness of a CTA spelling",
		Long: `Compare the phonetic correspondence effectiveness (PCE) of an original text
and its CTA spelling. Both texts are required, inline or from files.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var err error
			if originalFile != "" {
				if original, err = readInput(nil, originalFile); err != nil {
					return err
				}
			}
			if normalizedFile != "" {
				if normalized, err = readInput(nil, normalizedFile); err != nil {
					return err
				}
			}
			a, err := newApp(cmd, g)
			if err != nil {
				return err
			}
			defer a.close()
			if label == "" {
				label = a.cfg.Effectiveness.DatasetLabel
			}

			stop := a.spin("Measuring effectiveness")
			o := a.analyzer.AnalyzeEffectiveness(cmd.Context(), models.EffectivenessRequest{
				OriginalText:   original,
				NormalizedText: normalized,
				DatasetLabel:   label,
			})
			stop()
			a.record(o.Failure)
			a.save(a.store.PutEffectiveness(o))

			if a.json {
				if err := emitJSON(a.out, o); err != nil {
					return err
				}
				return failure(o.Failure)
			}
			if o.Failure != nil {
				printFailure(a.out, o.Failure)
				return failure(o.Failure)
			}
			printEffectiveness(a.out, *o.Value)
			return nil
		},
	}

	cmd.Flags().StringVar(&original, "original", "", "Original text")
	cmd.Flags().StringVar(&normalized, "normalized", "", "CTA-normalized text")
	cmd.Flags().StringVar(&originalFile, "original-file", "", "Read the original text from a file")
	cmd.Flags().StringVar(&normalizedFile, "normalized-file", "", "Read the normalized text from a file")
	cmd.Flags().StringVar(&label, "label", "", "Dataset label (default from config)")
	cmd.MarkFlagsMutuallyExclusive("original", "original-file")
	cmd.MarkFlagsMutuallyExclusive("normalized", "normalized-file")
	return cmd
}

func printEffectiveness(w io.Writer, r models.EffectivenessReport) {
	fmt.Fprintf(w, "Dataset: %s\n\n", r.Metadata.DatasetLabel) //nolint:errcheck
	if r.Metrics == nil {
		fmt.Fprintln(w, "No metrics returned.") //nolint:errcheck
		return
	}
	reporting.VariantTable(*r.Metrics).Render(w)
	c := r.Metrics.Comparison
	fmt.Fprintf(w, "\nWeighted improvement:    %+.2f%%\n", c.WeightedImprovementPct)    //nolint:errcheck
	fmt.Fprintf(w, "Logarithmic improvement: %+.2f%%\n", c.LogarithmicImprovementPct) //nolint:errcheck
	if as := r.Assessment; as != nil {
		fmt.Fprintf(w, "Rating: %s (%s improvement)\n", as.EffectivenessRating, as.ImprovementCategory) //nolint:errcheck
		for _, rec := range as.Recommendations {
			fmt.Fprintf(w, "  • %s\n", rec) //nolint:errcheck
		}
	}
	if r.Metadata.ExpectedRangesInPrompt {
		fmt.Fprintln(w, "\nNote: the prompt quoted the published improvement ranges.") //nolint:errcheck
	}
}

// summarizeBatch returns an error when any batch outcome failed.
func summarizeBatch[T any](outcomes []models.Outcome[T]) error {
	failed := 0
	for _, o := range outcomes {
		if o.Failure != nil {
			failed++
		}
	}
	if failed == 0 {
		return nil
	}
	return &AnalysisFailedError{Message: fmt.Sprintf("%d of %d analyses failed", failed, len(outcomes))}
}
