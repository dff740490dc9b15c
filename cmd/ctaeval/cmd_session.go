package main

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/ctalab/ctaeval/internal/session"
)

func newSessionCommand(g *globalOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "session",
		Short: "View session logs",
		Long: `View session event logs.

Session logs are NDJSON files written when --session-log is set, optionally
zstd-compressed. They record every task: its start, the generation call,
validation and completion.`,
	}

	cmd.AddCommand(newSessionListCommand(g))
	cmd.AddCommand(newSessionViewCommand())

	return cmd
}

func newSessionListCommand(g *globalOptions) *cobra.Command {
	var dir string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List recorded session logs",
		RunE: func(cmd *cobra.Command, args []string) error {
			if dir == "" {
				cfg, base, err := g.loadConfig()
				if err != nil {
					return err
				}
				dir = cfg.Paths.Sessions
				if !filepath.IsAbs(dir) {
					dir = filepath.Join(base, dir)
				}
			}
			absDir, err := filepath.Abs(dir)
			if err != nil {
				return err
			}

			files, err := session.ListSessions(absDir)
			if err != nil {
				return fmt.Errorf("listing sessions: %w", err)
			}

			w := cmd.OutOrStdout()
			if len(files) == 0 {
				fmt.Fprintln(w, "No session logs found.") //nolint:errcheck
				return nil
			}

			fmt.Fprintf(w, "%-40s %-8s %s\n", "File", "Events", "Modified")                 //nolint:errcheck
			fmt.Fprintln(w, "─────────────────────────────────────────────────────────────────") //nolint:errcheck
			for _, f := range files {
				fmt.Fprintf(w, "%-40s %-8d %s\n", f.Name, f.NumEvents, f.ModTime.Format("2006-01-02 15:04:05")) //nolint:errcheck
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&dir, "sessions-dir", "", "Directory holding session logs (default from config)")

	return cmd
}

func newSessionViewCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "view <session-file>",
		Short: "View a session timeline",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			events, err := session.ReadEvents(args[0])
			if err != nil {
				return fmt.Errorf("reading session: %w", err)
			}

			session.RenderTimeline(cmd.OutOrStdout(), events)
			return nil
		},
	}
}
