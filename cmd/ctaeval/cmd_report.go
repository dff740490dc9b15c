package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/ctalab/ctaeval/internal/analysis"
	"github.com/ctalab/ctaeval/internal/models"
	"github.com/ctalab/ctaeval/internal/reporting"
	"github.com/ctalab/ctaeval/internal/resultstore"
)

// newUploader is swapped in tests.
var newUploader = reporting.NewAzureUploader

// openStore loads the configuration and the stored results.
func openStore(g *globalOptions) (*app, error) {
	cfg, base, err := g.loadConfig()
	if err != nil {
		return nil, err
	}
	a := &app{cfg: cfg, base: base}
	a.store = resultstore.New(a.path(cfg.Paths.Results))
	return a, nil
}

func newReportCommand(g *globalOptions) *cobra.Command {
	var (
		formats      []string
		outDir       string
		title        string
		batchFile    string
		toStdout     bool
		publish      bool
		containerURL string
	)

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Render the stored results as a report",
		Long: `Render the latest stored result of every analysis as a report.

Formats are md, html, csv and json; several can be given at once. Files are
written to the reports directory with a timestamp in their name. With
--publish they are also uploaded to the configured Azure blob container.`,
		Example: `  ctaeval report
  ctaeval report --format md,html --batch batch.json
  ctaeval report --format md --stdout`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var parsed []reporting.Format
			for _, f := range formats {
				pf, err := reporting.ParseFormat(f)
				if err != nil {
					return err
				}
				parsed = append(parsed, pf)
			}
			if toStdout && len(parsed) != 1 {
				return fmt.Errorf("--stdout needs exactly one format")
			}

			a, err := openStore(g)
			if err != nil {
				return err
			}
			snap, err := a.store.Snapshot()
			if err != nil {
				return err
			}

			now := time.Now()
			opts := reporting.Options{Title: title, GeneratedAt: now}
			if batchFile != "" {
				results, err := loadEffectivenessFile(batchFile)
				if err != nil {
					return fmt.Errorf("failed to load %s: %w", batchFile, err)
				}
				opts.Comparisons = analysis.Comparisons(results)
			}

			if toStdout {
				return reporting.Write(cmd.OutOrStdout(), parsed[0], snap, opts)
			}

			if outDir == "" {
				outDir = a.path(a.cfg.Paths.Reports)
			}
			if err := os.MkdirAll(outDir, 0755); err != nil {
				return fmt.Errorf("creating reports directory: %w", err)
			}

			var written []string
			for _, f := range parsed {
				var buf bytes.Buffer
				if err := reporting.Write(&buf, f, snap, opts); err != nil {
					return err
				}
				p := filepath.Join(outDir, timestamped("cta_report."+string(f), now))
				if err := os.WriteFile(p, buf.Bytes(), 0644); err != nil {
					return fmt.Errorf("writing %s: %w", p, err)
				}
				written = append(written, p)
				fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", p) //nolint:errcheck
			}

			if !publish {
				return nil
			}
			if containerURL == "" {
				containerURL = a.cfg.Publish.ContainerURL
			}
			up, err := newUploader(containerURL)
			if err != nil {
				return err
			}
			urls, err := reporting.NewPublisher(up, "reports").PublishFiles(cmd.Context(), written...)
			for _, u := range urls {
				fmt.Fprintf(cmd.OutOrStdout(), "Published %s\n", u) //nolint:errcheck
			}
			return err
		},
	}

	cmd.Flags().StringSliceVarP(&formats, "format", "F", []string{"md"}, "Report formats: md, html, csv, json")
	cmd.Flags().StringVarP(&outDir, "output", "o", "", "Output directory (default from config)")
	cmd.Flags().StringVar(&title, "title", "", "Report title")
	cmd.Flags().StringVar(&batchFile, "batch", "", "Batch effectiveness JSON to add a dataset comparison")
	cmd.Flags().BoolVar(&toStdout, "stdout", false, "Print the report instead of writing files")
	cmd.Flags().BoolVar(&publish, "publish", false, "Upload the written files to Azure blob storage")
	cmd.Flags().StringVar(&containerURL, "container-url", "", "Blob container URL (default from config)")
	return cmd
}

// loadEffectivenessFile reads either a batch report or a single
// effectiveness outcome, as written by `batch pce --output` and `pce --json`.
func loadEffectivenessFile(path string) ([]models.Outcome[models.EffectivenessReport], error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var probe struct {
		Results json.RawMessage `json:"results"`
	}
	if err := json.Unmarshal(data, &probe); err != nil {
		return nil, err
	}
	if probe.Results != nil {
		var report models.EffectivenessBatchReport
		if err := json.Unmarshal(data, &report); err != nil {
			return nil, err
		}
		return report.Results, nil
	}

	var o models.Outcome[models.EffectivenessReport]
	if err := json.Unmarshal(data, &o); err != nil {
		return nil, err
	}
	if o.Kind != models.TaskEffectiveness {
		return nil, fmt.Errorf("not an effectiveness result")
	}
	return []models.Outcome[models.EffectivenessReport]{o}, nil
}
