package main

import (
	"log/slog"

	"github.com/spf13/cobra"
)

var version = "dev"

func newRootCommand() *cobra.Command {
	g := &globalOptions{}

	cmd := &cobra.Command{
		Use:   "ctaeval",
		Short: "ctaeval - evaluate the Common Turkic Alphabet with language models",
		Long: `ctaeval evaluates the Common Turkic Alphabet (CTA) with a language model.

It transliterates text from Turkic languages into CTA, flags phonetic
ambiguities of the new letters, groups cognates across languages and measures
phonetic correspondence effectiveness. Results are kept in the results
directory and can be rendered as a report.`,
		Version:      version,
		SilenceUsage: true,
	}

	debugLogging := cmd.PersistentFlags().Bool("debug", false, "Enable debug logging")
	cmd.PersistentPreRun = func(cmd *cobra.Command, args []string) {
		if *debugLogging {
			slog.SetLogLoggerLevel(slog.LevelDebug)
		}
	}
	g.bind(cmd)

	cmd.AddCommand(newTransliterateCommand(g))
	cmd.AddCommand(newRiskCommand(g))
	cmd.AddCommand(newCognatesCommand(g))
	cmd.AddCommand(newPCECommand(g))
	cmd.AddCommand(newBatchCommand(g))
	cmd.AddCommand(newResultsCommand(g))
	cmd.AddCommand(newReportCommand(g))
	cmd.AddCommand(newCompareCommand())
	cmd.AddCommand(newConfigCommand(g))
	cmd.AddCommand(newServeCommand(g))
	cmd.AddCommand(newSessionCommand(g))

	return cmd
}

func execute() error {
	rootCmd := newRootCommand()
	return rootCmd.Execute()
}
