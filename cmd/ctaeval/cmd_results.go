package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ctalab/ctaeval/internal/models"
	"github.com/ctalab/ctaeval/internal/reporting"
)

func newResultsCommand(g *globalOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "results",
		Short: "Summarize the stored analysis results",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openStore(g)
			if err != nil {
				return err
			}
			snap, err := a.store.Snapshot()
			if err != nil {
				return err
			}
			if g.jsonOutput {
				return emitJSON(cmd.OutOrStdout(), snap)
			}
			fmt.Fprint(cmd.OutOrStdout(), reporting.FormatSummary(snap)) //nolint:errcheck
			return nil
		},
	}

	cmd.AddCommand(&cobra.Command{
		Use:       "show <kind>",
		Short:     "Print one stored result as JSON",
		Args:      cobra.ExactArgs(1),
		ValidArgs: taskKindNames(),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openStore(g)
			if err != nil {
				return err
			}
			v, err := a.store.Get(models.TaskKind(args[0]))
			if err != nil {
				return err
			}
			return emitJSON(cmd.OutOrStdout(), v)
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:       "clear [kind]",
		Short:     "Remove one stored result, or all of them",
		Args:      cobra.MaximumNArgs(1),
		ValidArgs: taskKindNames(),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openStore(g)
			if err != nil {
				return err
			}
			var kind models.TaskKind
			if len(args) == 1 {
				kind = models.TaskKind(args[0])
			}
			if err := a.store.Clear(kind); err != nil {
				return err
			}
			if kind == "" {
				fmt.Fprintln(cmd.OutOrStdout(), "Cleared all results.") //nolint:errcheck
			} else {
				fmt.Fprintf(cmd.OutOrStdout(), "Cleared %s result.\n", kind) //nolint:errcheck
			}
			return nil
		},
	})

	return cmd
}

func taskKindNames() []string {
	names := make([]string, len(models.TaskKinds))
	for i, k := range models.TaskKinds {
		names[i] = string(k)
	}
	return names
}
