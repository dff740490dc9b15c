// Package wizard collects the generation settings interactively for
// `ctaeval config init`.
package wizard

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/huh"
	"golang.org/x/term"

	"github.com/ctalab/ctaeval/internal/llm"
	"github.com/ctalab/ctaeval/internal/projectconfig"
)

// Answers holds all fields collected during the wizard.
type Answers struct {
	Provider              string
	Model                 string
	APIKey                string
	IncludeExpectedRanges bool
	DatasetLabel          string
}

// DefaultsFrom seeds the wizard with the current configuration. The stored
// credential is not shown; a blank answer keeps it.
func DefaultsFrom(cfg *projectconfig.ProjectConfig) Answers {
	return Answers{
		Provider:              cfg.LLM.Provider,
		Model:                 cfg.LLM.Model,
		IncludeExpectedRanges: cfg.EffectivenessOptions().IncludeExpectedRanges,
		DatasetLabel:          cfg.Effectiveness.DatasetLabel,
	}
}

// Apply writes the answers into cfg. A blank API key leaves the stored one.
func (a Answers) Apply(cfg *projectconfig.ProjectConfig) error {
	pairs := [][2]string{
		{"provider", a.Provider},
		{"model", a.Model},
		{"include_expected_ranges", strconv.FormatBool(a.IncludeExpectedRanges)},
		{"dataset_label", a.DatasetLabel},
	}
	if a.APIKey != "" {
		pairs = append(pairs, [2]string{"api_key", a.APIKey})
	}
	for _, p := range pairs {
		if err := cfg.Set(p[0], p[1]); err != nil {
			return err
		}
	}
	return nil
}

// IsTerminal reports whether r is an interactive terminal.
func IsTerminal(r io.Reader) bool {
	f, ok := r.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// RunConfigWizard asks for the settings. On a terminal it shows a huh form;
// otherwise it reads one answer per line, where a blank line keeps the
// default.
func RunConfigWizard(in io.Reader, out io.Writer, defaults Answers) (*Answers, error) {
	if IsTerminal(in) {
		return runForm(in, out, defaults)
	}
	return runLines(in, out, defaults)
}

func validateProvider(s string) error {
	_, err := llm.ParseProvider(s)
	return err
}

func validateModel(s string) error {
	if strings.TrimSpace(s) == "" {
		return errors.New("model is required")
	}
	return nil
}

func runForm(in io.Reader, out io.Writer, defaults Answers) (*Answers, error) {
	a := defaults
	providers := make([]huh.Option[string], len(llm.Providers))
	for i, p := range llm.Providers {
		providers[i] = huh.NewOption(string(p), string(p))
	}

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Provider").
				Description("Generation service used for every analysis").
				Options(providers...).
				Value(&a.Provider),
			huh.NewInput().
				Title("Model").
				Placeholder(llm.DefaultModel).
				Value(&a.Model).
				Validate(validateModel),
			huh.NewInput().
				Title("API key").
				Description("Leave blank to keep the current key or use the environment").
				EchoMode(huh.EchoModePassword).
				Value(&a.APIKey),
		),
		huh.NewGroup(
			huh.NewConfirm().
				Title("Quote the published improvement ranges in effectiveness prompts?").
				Affirmative("Yes").
				Negative("No").
				Value(&a.IncludeExpectedRanges),
			huh.NewInput().
				Title("Default dataset label").
				Value(&a.DatasetLabel),
		),
	).
		WithInput(in).
		WithOutput(out)

	if err := form.Run(); err != nil {
		return nil, fmt.Errorf("wizard failed: %w", err)
	}
	return trimmed(a), nil
}

func runLines(in io.Reader, out io.Writer, defaults Answers) (*Answers, error) {
	r := bufio.NewReader(in)
	a := defaults

	ask := func(question, def string) (string, error) {
		if def != "" {
			fmt.Fprintf(out, "%s [%s]: ", question, def) //nolint:errcheck
		} else {
			fmt.Fprintf(out, "%s: ", question) //nolint:errcheck
		}
		line, err := r.ReadString('\n')
		if err != nil && (!errors.Is(err, io.EOF) || line == "") {
			if errors.Is(err, io.EOF) {
				return "", errors.New("unexpected end of input")
			}
			return "", err
		}
		if v := strings.TrimSpace(line); v != "" {
			return v, nil
		}
		return def, nil
	}

	var err error
	if a.Provider, err = ask("Provider ("+providerNames()+")", a.Provider); err != nil {
		return nil, err
	}
	if err := validateProvider(a.Provider); err != nil {
		return nil, err
	}
	if a.Model, err = ask("Model", a.Model); err != nil {
		return nil, err
	}
	if err := validateModel(a.Model); err != nil {
		return nil, err
	}
	if a.APIKey, err = ask("API key (blank keeps the current one)", ""); err != nil {
		return nil, err
	}

	ranges, err := ask("Quote published improvement ranges in effectiveness prompts? (y/n)", yesNo(a.IncludeExpectedRanges))
	if err != nil {
		return nil, err
	}
	switch strings.ToLower(ranges) {
	case "y", "yes", "true":
		a.IncludeExpectedRanges = true
	case "n", "no", "false":
		a.IncludeExpectedRanges = false
	default:
		return nil, fmt.Errorf("invalid answer %q (want y or n)", ranges)
	}

	if a.DatasetLabel, err = ask("Default dataset label", a.DatasetLabel); err != nil {
		return nil, err
	}
	return trimmed(a), nil
}

func trimmed(a Answers) *Answers {
	a.Provider = strings.ToLower(strings.TrimSpace(a.Provider))
	a.Model = strings.TrimSpace(a.Model)
	a.APIKey = strings.TrimSpace(a.APIKey)
	a.DatasetLabel = strings.TrimSpace(a.DatasetLabel)
	return &a
}

func yesNo(b bool) string {
	if b {
		return "y"
	}
	return "n"
}

func providerNames() string {
	names := make([]string, len(llm.Providers))
	for i, p := range llm.Providers {
		names[i] = string(p)
	}
	return strings.Join(names, ", ")
}
