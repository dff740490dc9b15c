package main

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/ctalab/ctaeval/internal/alphabet"
	"github.com/ctalab/ctaeval/internal/analysis"
	"github.com/ctalab/ctaeval/internal/dataset"
	"github.com/ctalab/ctaeval/internal/models"
	"github.com/ctalab/ctaeval/internal/reporting"
)

func newBatchCommand(g *globalOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "batch",
		Short: "Run an analysis over many inputs concurrently",
	}
	cmd.AddCommand(newBatchTransliterateCommand(g))
	cmd.AddCommand(newBatchPCECommand(g))
	return cmd
}

func newBatchTransliterateCommand(g *globalOptions) *cobra.Command {
	var lang string

	cmd := &cobra.Command{
		Use:   "transliterate <lines.txt>",
		Short: "Transliterate every non-blank line of a file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			language, err := alphabet.ParseLanguage(lang)
			if err != nil {
				return err
			}
			texts, err := dataset.LoadLines(args[0])
			if err != nil {
				return err
			}
			if len(texts) == 0 {
				return fmt.Errorf("%s contains no text", args[0])
			}
			a, err := newApp(cmd, g)
			if err != nil {
				return err
			}
			defer a.close()

			stop := a.spin(fmt.Sprintf("Transliterating %d texts", len(texts)))
			results := a.analyzer.TransliterateBatch(cmd.Context(), texts, language)
			stop()
			for _, o := range results {
				a.record(o.Failure)
			}

			if a.json {
				if err := emitJSON(a.out, results); err != nil {
					return err
				}
				return summarizeBatch(results)
			}

			t := reporting.Table{Headers: []string{"#", "Status", "Output"}}
			for i, o := range results {
				status, text := "✓", ""
				switch {
				case o.Failure != nil:
					status, text = "✗", o.Failure.Error()
				case !o.Value.Result.Success:
					status, text = "✗", o.Value.Result.Error
				default:
					text = o.Value.Result.OutputText
				}
				t.Rows = append(t.Rows, []string{fmt.Sprint(i + 1), status, text})
			}
			t.Render(a.out)
			return summarizeBatch(results)
		},
	}

	cmd.Flags().StringVarP(&lang, "lang", "l", string(alphabet.Turkish), "Source language")
	return cmd
}

func newBatchPCECommand(g *globalOptions) *cobra.Command {
	var (
		output      string
		junit       string
		minWeighted float64
	)

	cmd := &cobra.Command{
		Use:     "pce <datasets.csv>",
		Aliases: []string{"effectiveness"},
		Short:   "Measure effectiveness for every dataset in a CSV file",
		Long: `Measure phonetic correspondence effectiveness for every row of a CSV file.

The file needs "original" and "normalized" columns; a "name" column labels
each dataset. The summary reports mean improvements with a bootstrap
confidence interval and the best and worst datasets.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			datasets, err := dataset.LoadDatasets(args[0])
			if err != nil {
				return err
			}
			if len(datasets) == 0 {
				return fmt.Errorf("%s contains no datasets", args[0])
			}
			a, err := newApp(cmd, g)
			if err != nil {
				return err
			}
			defer a.close()

			stop := a.spin(fmt.Sprintf("Measuring %d datasets", len(datasets)))
			report := a.analyzer.EffectivenessBatch(cmd.Context(), datasets)
			stop()
			for _, o := range report.Results {
				a.record(o.Failure)
			}

			if output != "" {
				if err := writeJSONFile(output, report); err != nil {
					return err
				}
			}
			if junit != "" {
				if err := reporting.WriteJUnitXML(report, minWeighted, junit); err != nil {
					return err
				}
			}

			if a.json {
				if err := emitJSON(a.out, report); err != nil {
					return err
				}
				return summarizeBatch(report.Results)
			}
			printBatchSummary(a, report)
			return summarizeBatch(report.Results)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "Save the batch report as JSON")
	cmd.Flags().StringVar(&junit, "junit", "", "Write a JUnit XML report")
	cmd.Flags().Float64Var(&minWeighted, "min-weighted", 0, "Weighted improvement below which a dataset fails in the JUnit report")
	return cmd
}

func printBatchSummary(a *app, report models.EffectivenessBatchReport) {
	w := a.out
	for _, o := range report.Results {
		if o.Failure != nil {
			fmt.Fprintf(w, "✗ %s\n", o.Failure.Error()) //nolint:errcheck
		}
	}
	if cmps := analysis.Comparisons(report.Results); len(cmps) > 0 {
		reporting.ComparisonTable(cmps).Render(w)
	}

	s := report.Summary
	fmt.Fprintf(w, "\n%d of %d datasets analyzed\n", s.SuccessfulAnalyses, s.TotalDatasets) //nolint:errcheck
	if s.SuccessfulAnalyses == 0 {
		return
	}
	fmt.Fprintf(w, "Average weighted improvement:    %+.2f%% (95%% CI %.2f to %.2f)\n", //nolint:errcheck
		s.AverageWeightedImprovement, s.WeightedImprovementCILow, s.WeightedImprovementCIHigh)
	fmt.Fprintf(w, "Average logarithmic improvement: %+.2f%%\n", s.AverageLogarithmicImprovement) //nolint:errcheck
	fmt.Fprintf(w, "Best: %s, worst: %s\n", s.BestDataset, s.WorstDataset)                       //nolint:errcheck
}

func writeJSONFile(path string, v any) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("creating output directory: %w", err)
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	if err := emitJSON(f, v); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

// timestamped returns name with a UTC timestamp before its extension.
func timestamped(name string, at time.Time) string {
	ext := filepath.Ext(name)
	return name[:len(name)-len(ext)] + "_" + at.UTC().Format("20060102_150405") + ext
}
