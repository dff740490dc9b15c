package main

import (
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/ctalab/ctaeval/internal/webserver"
)

func newServeCommand(g *globalOptions) *cobra.Command {
	var (
		port    int
		origins []string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API on the loopback interface",
		Long: `Start the HTTP API for the analysis dashboard.

The server binds 127.0.0.1 only. Every analysis result is stored like the CLI
commands do, so "report" renders what the dashboard produced. Changing the
provider, model or API key through PUT /api/settings affects this process
only and is not written to the config file.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd, g)
			if err != nil {
				return err
			}
			defer a.close()

			if !cmd.Flags().Changed("port") {
				port = a.cfg.Server.Port
			}
			srv, err := webserver.New(webserver.Config{
				Port:           port,
				Analyzer:       a.analyzer,
				Store:          a.store,
				AllowedOrigins: origins,
				Logger:         slog.Default(),
			})
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			fmt.Fprintf(cmd.ErrOrStderr(), "ctaeval API listening on http://%s\n", srv.Addr()) //nolint:errcheck
			return srv.ListenAndServe(ctx)
		},
	}

	cmd.Flags().IntVarP(&port, "port", "p", 0, "Port to listen on (default from config)")
	cmd.Flags().StringSliceVar(&origins, "allow-origin", nil, "Extra origins allowed by CORS")
	return cmd
}
