package main

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ctalab/ctaeval/internal/analysis"
	"github.com/ctalab/ctaeval/internal/reporting"
	"github.com/ctalab/ctaeval/internal/stats"
)

func newCompareCommand() *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "compare <result1.json> [result2.json ...]",
		Short: "Compare effectiveness results side by side",
		Long: `Compare saved effectiveness results side by side.

Each file is either a batch report written by "batch pce --output" or a single
result printed by "pce --json". Datasets without a label are named after their
file.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if format != "table" && format != "json" {
				return fmt.Errorf("unsupported format %q: must be table or json", format)
			}

			var all []stats.NamedComparison
			for _, path := range args {
				results, err := loadEffectivenessFile(path)
				if err != nil {
					return fmt.Errorf("failed to load %s: %w", path, err)
				}
				for _, c := range analysis.Comparisons(results) {
					if c.Dataset == "" {
						c.Dataset = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
					}
					all = append(all, c)
				}
			}
			if len(all) == 0 {
				return fmt.Errorf("no successful effectiveness results to compare")
			}

			if format == "json" {
				return emitJSON(cmd.OutOrStdout(), all)
			}
			reporting.ComparisonTable(all).Render(cmd.OutOrStdout())
			return nil
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", "table", "Output format: table or json")
	return cmd
}
