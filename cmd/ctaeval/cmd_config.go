package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/ctalab/ctaeval/internal/projectconfig"
	"github.com/ctalab/ctaeval/internal/wizard"
)

func newConfigCommand(g *globalOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "View and change the project configuration",
		Long: `View and change .ctaeval.yaml.

The file is looked up from --dir upwards; when none exists, set and init
create one in --dir. The API key is stored in plain text with owner-only
permissions; prefer OPENAI_API_KEY or GEMINI_API_KEY in the environment or
a .env file.`,
	}

	cmd.AddCommand(newConfigShowCommand(g))
	cmd.AddCommand(newConfigGetCommand(g))
	cmd.AddCommand(newConfigSetCommand(g))
	cmd.AddCommand(newConfigInitCommand(g))
	return cmd
}

// configFile loads the configuration and returns the path it is saved to.
func configFile(g *globalOptions) (*projectconfig.ProjectConfig, string, error) {
	cfg, path, err := projectconfig.LoadWithPath(g.dir)
	if err != nil {
		return nil, "", err
	}
	if path == "" {
		path = filepath.Join(g.dir, projectconfig.FileName)
	}
	return cfg, path, nil
}

func newConfigShowCommand(g *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print every configuration key",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, path, err := configFile(g)
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			if _, err := os.Stat(path); err == nil {
				fmt.Fprintf(w, "# %s\n", path) //nolint:errcheck
			} else {
				fmt.Fprintln(w, "# defaults (no config file)") //nolint:errcheck
			}
			for _, k := range projectconfig.Keys() {
				v, err := cfg.Get(k)
				if err != nil {
					return err
				}
				fmt.Fprintf(w, "%-24s %s\n", k, v) //nolint:errcheck
			}
			return nil
		},
	}
}

func newConfigGetCommand(g *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:       "get <key>",
		Short:     "Print one configuration value",
		Args:      cobra.ExactArgs(1),
		ValidArgs: projectconfig.Keys(),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, _, err := configFile(g)
			if err != nil {
				return err
			}
			v, err := cfg.Get(args[0])
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), v) //nolint:errcheck
			return nil
		},
	}
}

func newConfigSetCommand(g *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:       "set <key> <value>",
		Short:     "Change one configuration value",
		Args:      cobra.ExactArgs(2),
		ValidArgs: projectconfig.Keys(),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, path, err := configFile(g)
			if err != nil {
				return err
			}
			if err := cfg.Set(args[0], args[1]); err != nil {
				return err
			}
			if err := projectconfig.Save(path, cfg); err != nil {
				return err
			}
			v, _ := cfg.Get(args[0])
			fmt.Fprintf(cmd.OutOrStdout(), "%s = %s\n", args[0], v) //nolint:errcheck
			return nil
		},
	}
}

func newConfigInitCommand(g *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Create or update the configuration interactively",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, path, err := configFile(g)
			if err != nil {
				return err
			}
			answers, err := wizard.RunConfigWizard(cmd.InOrStdin(), cmd.OutOrStdout(), wizard.DefaultsFrom(cfg))
			if err != nil {
				return err
			}
			if err := answers.Apply(cfg); err != nil {
				return err
			}
			if err := projectconfig.Save(path, cfg); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "\nSaved %s\n", path) //nolint:errcheck
			return nil
		},
	}
}
