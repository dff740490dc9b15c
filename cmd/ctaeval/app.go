package main

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/ctalab/ctaeval/internal/analysis"
	"github.com/ctalab/ctaeval/internal/llm"
	"github.com/ctalab/ctaeval/internal/models"
	"github.com/ctalab/ctaeval/internal/projectconfig"
	"github.com/ctalab/ctaeval/internal/resultstore"
	"github.com/ctalab/ctaeval/internal/session"
	"github.com/ctalab/ctaeval/internal/spinner"
)

// globalOptions are the persistent flags shared by every command.
type globalOptions struct {
	dir        string
	provider   string
	model      string
	apiKey     string
	jsonOutput bool
	sessionLog bool
	compress   bool
	noSave     bool
}

func (g *globalOptions) bind(cmd *cobra.Command) {
	f := cmd.PersistentFlags()
	f.StringVar(&g.dir, "dir", ".", "Project directory; .ctaeval.yaml is looked up from here")
	f.StringVar(&g.provider, "provider", "", "Generation provider (openai, gemini, copilot, mock); overrides the config file")
	f.StringVar(&g.model, "model", "", "Model name; overrides the config file")
	f.StringVar(&g.apiKey, "api-key", "", "API key; overrides the config file and environment")
	f.BoolVar(&g.jsonOutput, "json", false, "Print results as JSON")
	f.BoolVar(&g.sessionLog, "session-log", false, "Write an NDJSON session log to the sessions directory")
	f.BoolVar(&g.compress, "compress-log", false, "Compress the session log with zstd")
	f.BoolVar(&g.noSave, "no-save", false, "Do not store results in the results directory")
}

// loadConfig reads the project configuration and applies flag overrides.
// It returns the directory relative paths in the config resolve against.
func (g *globalOptions) loadConfig() (*projectconfig.ProjectConfig, string, error) {
	cfg, path, err := projectconfig.LoadWithPath(g.dir)
	if err != nil {
		return nil, "", err
	}
	if g.provider != "" {
		if err := cfg.Set("provider", g.provider); err != nil {
			return nil, "", err
		}
	}
	if g.model != "" {
		if err := cfg.Set("model", g.model); err != nil {
			return nil, "", err
		}
	}

	base := g.dir
	if path != "" {
		base = filepath.Dir(path)
	}
	return cfg, base, nil
}

// app holds what a command needs to run analyses.
type app struct {
	cfg      *projectconfig.ProjectConfig
	base     string
	analyzer *analysis.Analyzer
	store    *resultstore.Store
	events   session.Logger
	out      io.Writer
	json     bool
	command  string
	started  time.Time
	tasks    int
	failed   int
}

func newApp(cmd *cobra.Command, g *globalOptions) (*app, error) {
	cfg, base, err := g.loadConfig()
	if err != nil {
		return nil, err
	}

	a := &app{
		cfg:     cfg,
		base:    base,
		events:  session.NopLogger{},
		out:     cmd.OutOrStdout(),
		json:    g.jsonOutput,
		command: cmd.CommandPath(),
		started: time.Now(),
	}

	key := cfg.ResolveAPIKey(g.apiKey, g.dir)
	settings := llm.NewSettings(cfg.ClientConfig(key))

	if g.sessionLog {
		l, err := session.NewJSONLogger(session.DefaultLogPath(a.path(cfg.Paths.Sessions), g.compress))
		if err != nil {
			return nil, err
		}
		a.events = l
		snap := settings.Snapshot()
		_ = l.Log(session.NewEvent(session.EventSessionStart, session.SessionStartData(a.command, string(snap.Provider), snap.Model, 0)))
		slog.Debug("Session log enabled", "path", l.Path())
	}

	storeDir := a.path(cfg.Paths.Results)
	if g.noSave {
		storeDir = ""
	}
	a.store = resultstore.New(storeDir)

	a.analyzer = analysis.New(analysis.Options{
		Settings:      settings,
		Params:        cfg.Tasks,
		Effectiveness: cfg.EffectivenessOptions(),
		Events:        a.events,
		Workers:       cfg.Batch.Workers,
	})
	return a, nil
}

// path resolves a configured directory against the project directory.
func (a *app) path(p string) string {
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(a.base, p)
}

// spin shows a spinner on stderr until the returned function is called.
func (a *app) spin(message string) func() {
	return spinner.Start(os.Stderr, message)
}

// record counts a finished task for the session summary.
func (a *app) record(f *models.Failure) {
	a.tasks++
	if f != nil {
		a.failed++
	}
}

// close finishes the session log.
func (a *app) close() {
	_ = a.events.Log(session.NewEvent(session.EventSessionEnd,
		session.SessionCompleteData(a.tasks, a.tasks-a.failed, a.failed, time.Since(a.started).Milliseconds())))
	if err := a.events.Close(); err != nil {
		slog.Warn("Closing session log failed", "error", err)
	}
}

// save stores a result unless saving is disabled. A storage error does not
// hide the analysis result, so it is only logged.
func (a *app) save(err error) {
	if err != nil {
		slog.Warn("Could not store result", "path", a.store.Path(), "error", err)
	}
}

// emitJSON prints v as indented JSON.
func emitJSON(w io.Writer, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}

// failure converts a failed outcome into the command's error.
func failure(f *models.Failure) error {
	if f == nil {
		return nil
	}
	return &AnalysisFailedError{Message: f.Error()}
}

// printFailure writes the failure details a user needs to act on it.
func printFailure(w io.Writer, f *models.Failure) {
	fmt.Fprintf(w, "✗ %s\n", f.Error()) //nolint:errcheck
	if f.RawResponse != "" {
		fmt.Fprintf(w, "\nRaw response:\n%s\n", f.RawResponse) //nolint:errcheck
	}
}

// readInput returns the joined arguments, or the content of file when set.
func readInput(args []string, file string) (string, error) {
	if file != "" {
		data, err := os.ReadFile(file)
		if err != nil {
			return "", fmt.Errorf("reading %s: %w", file, err)
		}
		return string(data), nil
	}
	if len(args) == 0 {
		return "", fmt.Errorf("no input text: pass it as an argument or use --file")
	}
	text := args[0]
	for _, a := range args[1:] {
		text += " " + a
	}
	return text, nil
}
