package wizard

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ctalab/ctaeval/internal/projectconfig"
)

func TestRunConfigWizard_ValidInput(t *testing.T) {
	in := strings.NewReader("gemini\ngemini-2.0-flash\n sk-secret \nn\nKazakh corpus\n")
	out := &bytes.Buffer{}

	a, err := RunConfigWizard(in, out, DefaultsFrom(projectconfig.New()))
	require.NoError(t, err)

	assert.Equal(t, "gemini", a.Provider)
	assert.Equal(t, "gemini-2.0-flash", a.Model)
	assert.Equal(t, "sk-secret", a.APIKey)
	assert.False(t, a.IncludeExpectedRanges)
	assert.Equal(t, "Kazakh corpus", a.DatasetLabel)
	assert.Contains(t, out.String(), "Provider (openai, gemini, copilot, mock) [openai]: ")
}

func TestRunConfigWizard_BlankLinesKeepDefaults(t *testing.T) {
	in := strings.NewReader("\n\n\n\n\n")
	a, err := RunConfigWizard(in, &bytes.Buffer{}, DefaultsFrom(projectconfig.New()))
	require.NoError(t, err)

	assert.Equal(t, "openai", a.Provider)
	assert.Equal(t, "gpt-4o", a.Model)
	assert.Empty(t, a.APIKey)
	assert.True(t, a.IncludeExpectedRanges)
	assert.Equal(t, "Custom", a.DatasetLabel)
}

func TestRunConfigWizard_LastLineWithoutNewline(t *testing.T) {
	in := strings.NewReader("mock\nm\n\ny\nlabel")
	a, err := RunConfigWizard(in, &bytes.Buffer{}, DefaultsFrom(projectconfig.New()))
	require.NoError(t, err)
	assert.Equal(t, "label", a.DatasetLabel)
}

func TestRunConfigWizard_Errors(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"unknown provider", "claude\n", "unknown provider"},
		{"bad yes/no", "openai\ngpt-4o\n\nmaybe\n", `invalid answer "maybe"`},
		{"unexpected EOF", "openai\n", "unexpected end of input"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := RunConfigWizard(strings.NewReader(tt.input), &bytes.Buffer{}, DefaultsFrom(projectconfig.New()))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestRunConfigWizard_EmptyModelRejected(t *testing.T) {
	_, err := RunConfigWizard(strings.NewReader("openai\n\n"), &bytes.Buffer{}, Answers{Provider: "openai"})
	assert.EqualError(t, err, "model is required")
}

func TestApply(t *testing.T) {
	cfg := projectconfig.New()
	cfg.LLM.APIKey = "old-key"

	a := Answers{Provider: "gemini", Model: "gemini-2.0-flash", IncludeExpectedRanges: false, DatasetLabel: "Corpus"}
	require.NoError(t, a.Apply(cfg))

	assert.Equal(t, "gemini", cfg.LLM.Provider)
	assert.Equal(t, "gemini-2.0-flash", cfg.LLM.Model)
	assert.Equal(t, "old-key", cfg.LLM.APIKey)
	assert.False(t, cfg.EffectivenessOptions().IncludeExpectedRanges)
	assert.Equal(t, "Corpus", cfg.Effectiveness.DatasetLabel)

	a.APIKey = "new-key"
	require.NoError(t, a.Apply(cfg))
	assert.Equal(t, "new-key", cfg.LLM.APIKey)

	assert.Error(t, Answers{Provider: "bogus"}.Apply(cfg))
}

func TestIsTerminal(t *testing.T) {
	assert.False(t, IsTerminal(strings.NewReader("")))
}
