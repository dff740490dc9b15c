// Package projectconfig provides the ProjectConfig struct and loader for
// .ctaeval.yaml project-level configuration files.
package projectconfig

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/ctalab/ctaeval/internal/llm"
	"github.com/ctalab/ctaeval/internal/models"
	"github.com/ctalab/ctaeval/internal/prompts"
)

// FileName is the configuration file looked up from the working directory.
const FileName = ".ctaeval.yaml"

// Default values for project configuration. New() references them and no
// other code should duplicate them.
const (
	DefaultProvider = string(llm.DefaultProvider)
	DefaultModel    = llm.DefaultModel
	DefaultTimeout  = 30

	DefaultResultsDir  = "results/"
	DefaultReportsDir  = "reports/"
	DefaultSessionsDir = "sessions/"

	DefaultServerPort = 3000
	DefaultWorkers    = 4

	DefaultDatasetLabel = "Custom"
)

// Allowed ranges for per-task overrides.
const (
	MinTemperature = 0.1
	MaxTemperature = 0.3
	MinMaxTokens   = 2000
	MaxMaxTokens   = 3000
)

// LLMConfig holds the generation service connection.
type LLMConfig struct {
	Provider string `yaml:"provider,omitempty"`
	Model    string `yaml:"model,omitempty"`
	APIKey   string `yaml:"api_key,omitempty"`
	BaseURL  string `yaml:"base_url,omitempty"`
	Timeout  int    `yaml:"timeout_seconds,omitempty"`
}

// EffectivenessConfig holds effectiveness prompt settings.
type EffectivenessConfig struct {
	IncludeExpectedRanges *bool  `yaml:"include_expected_ranges,omitempty"`
	DatasetLabel          string `yaml:"dataset_label,omitempty"`
}

// PathsConfig holds output directories.
type PathsConfig struct {
	Results  string `yaml:"results,omitempty"`
	Reports  string `yaml:"reports,omitempty"`
	Sessions string `yaml:"sessions,omitempty"`
}

// ServerConfig holds API server settings.
type ServerConfig struct {
	Port int `yaml:"port,omitempty"`
}

// BatchConfig holds batch run settings.
type BatchConfig struct {
	Workers int `yaml:"workers,omitempty"`
}

// PublishConfig holds report upload settings.
type PublishConfig struct {
	// ContainerURL is an Azure blob container URL, e.g.
	// https://account.blob.core.windows.net/reports.
	ContainerURL string `yaml:"container_url,omitempty"`
}

// ProjectConfig is the top-level configuration loaded from .ctaeval.yaml.
type ProjectConfig struct {
	LLM           LLMConfig                          `yaml:"llm,omitempty"`
	Tasks         map[models.TaskKind]prompts.Params `yaml:"tasks,omitempty"`
	Effectiveness EffectivenessConfig                `yaml:"effectiveness,omitempty"`
	Paths         PathsConfig                        `yaml:"paths,omitempty"`
	Server        ServerConfig                       `yaml:"server,omitempty"`
	Batch         BatchConfig                        `yaml:"batch,omitempty"`
	Publish       PublishConfig                      `yaml:"publish,omitempty"`
}

// New returns a ProjectConfig with all hard-coded defaults populated.
func New() *ProjectConfig {
	return &ProjectConfig{
		LLM: LLMConfig{
			Provider: DefaultProvider,
			Model:    DefaultModel,
			Timeout:  DefaultTimeout,
		},
		Effectiveness: EffectivenessConfig{
			IncludeExpectedRanges: boolPtr(true),
			DatasetLabel:          DefaultDatasetLabel,
		},
		Paths: PathsConfig{
			Results:  DefaultResultsDir,
			Reports:  DefaultReportsDir,
			Sessions: DefaultSessionsDir,
		},
		Server: ServerConfig{Port: DefaultServerPort},
		Batch:  BatchConfig{Workers: DefaultWorkers},
	}
}

// Load finds .ctaeval.yaml by walking up from startDir (max 10 levels),
// unmarshals it, and fills in missing fields with defaults.
// If no config file is found, returns defaults with a nil error.
// Real I/O errors (e.g. permission denied) are returned to the caller.
func Load(startDir string) (*ProjectConfig, error) {
	cfg, _, err := LoadWithPath(startDir)
	return cfg, err
}

// LoadWithPath is Load that also returns the file that was read, or "" when
// defaults were used.
func LoadWithPath(startDir string) (*ProjectConfig, string, error) {
	cfg := New()

	path, data, err := findConfigFile(startDir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, "", nil // no file found → return defaults
		}
		return nil, "", fmt.Errorf("loading %s: %w", FileName, err)
	}

	var fileCfg ProjectConfig
	if err := yaml.Unmarshal(data, &fileCfg); err != nil {
		return nil, "", fmt.Errorf("parsing %s: %w", path, err)
	}
	if err := fileCfg.validate(); err != nil {
		return nil, "", fmt.Errorf("invalid %s: %w", path, err)
	}

	// Merge file values onto defaults.
	mergeConfig(cfg, &fileCfg)
	return cfg, path, nil
}

// Save writes cfg to path as YAML. The file may contain a credential, so it
// is only readable by the owner.
func Save(path string, cfg *ProjectConfig) error {
	if err := cfg.validate(); err != nil {
		return err
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}

// findConfigFile walks up from dir looking for .ctaeval.yaml (max 10 levels).
// Returns os.ErrNotExist if no config file is found. Propagates real I/O
// errors (e.g. permission denied) instead of silently swallowing them.
func findConfigFile(dir string) (string, []byte, error) {
	// Convert to absolute path so filepath.Dir(".") walks correctly.
	absDir, err := filepath.Abs(dir)
	if err != nil {
		return "", nil, fmt.Errorf("resolving path %q: %w", dir, err)
	}
	dir = absDir

	for i := 0; i < 10; i++ {
		p := filepath.Join(dir, FileName)
		data, err := os.ReadFile(p)
		if err == nil {
			return p, data, nil
		}
		if !errors.Is(err, os.ErrNotExist) {
			return "", nil, fmt.Errorf("reading %q: %w", p, err)
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break // reached filesystem root
		}
		dir = parent
	}
	return "", nil, os.ErrNotExist
}

func (c *ProjectConfig) validate() error {
	if c.LLM.Provider != "" {
		if _, err := llm.ParseProvider(c.LLM.Provider); err != nil {
			return err
		}
	}
	if c.LLM.Timeout < 0 {
		return fmt.Errorf("llm.timeout_seconds must not be negative")
	}
	for kind, p := range c.Tasks {
		if !knownTask(kind) {
			return fmt.Errorf("tasks: unknown task %q", kind)
		}
		if p.Temperature != 0 && (p.Temperature < MinTemperature || p.Temperature > MaxTemperature) {
			return fmt.Errorf("tasks.%s.temperature %.2f is outside [%.1f, %.1f]", kind, p.Temperature, MinTemperature, MaxTemperature)
		}
		if p.MaxTokens != 0 && (p.MaxTokens < MinMaxTokens || p.MaxTokens > MaxMaxTokens) {
			return fmt.Errorf("tasks.%s.max_tokens %d is outside [%d, %d]", kind, p.MaxTokens, MinMaxTokens, MaxMaxTokens)
		}
	}
	return nil
}

func knownTask(kind models.TaskKind) bool {
	for _, k := range models.TaskKinds {
		if k == kind {
			return true
		}
	}
	return false
}

// mergeConfig overlays non-zero values from src onto dst.
func mergeConfig(dst, src *ProjectConfig) {
	// LLM
	if src.LLM.Provider != "" {
		dst.LLM.Provider = src.LLM.Provider
	}
	if src.LLM.Model != "" {
		dst.LLM.Model = src.LLM.Model
	}
	if src.LLM.APIKey != "" {
		dst.LLM.APIKey = src.LLM.APIKey
	}
	if src.LLM.BaseURL != "" {
		dst.LLM.BaseURL = src.LLM.BaseURL
	}
	if src.LLM.Timeout != 0 {
		dst.LLM.Timeout = src.LLM.Timeout
	}

	if len(src.Tasks) > 0 {
		dst.Tasks = src.Tasks
	}

	// Effectiveness
	if src.Effectiveness.IncludeExpectedRanges != nil {
		dst.Effectiveness.IncludeExpectedRanges = src.Effectiveness.IncludeExpectedRanges
	}
	if src.Effectiveness.DatasetLabel != "" {
		dst.Effectiveness.DatasetLabel = src.Effectiveness.DatasetLabel
	}

	// Paths
	if src.Paths.Results != "" {
		dst.Paths.Results = src.Paths.Results
	}
	if src.Paths.Reports != "" {
		dst.Paths.Reports = src.Paths.Reports
	}
	if src.Paths.Sessions != "" {
		dst.Paths.Sessions = src.Paths.Sessions
	}

	if src.Server.Port != 0 {
		dst.Server.Port = src.Server.Port
	}
	if src.Batch.Workers != 0 {
		dst.Batch.Workers = src.Batch.Workers
	}
	if src.Publish.ContainerURL != "" {
		dst.Publish.ContainerURL = src.Publish.ContainerURL
	}
}

// keyEnvVars lists, per provider, the environment variables holding the
// credential, in lookup order.
var keyEnvVars = map[llm.Provider][]string{
	llm.ProviderOpenAI: {llm.OpenAIKeyEnv},
	llm.ProviderGemini: {llm.GeminiKeyEnv, "GOOGLE_API_KEY"},
}

// ResolveAPIKey picks the credential for the configured provider: the flag
// value, then the config file, then the process environment, then a .env
// file in dir. The .env file never overrides the environment.
func (c *ProjectConfig) ResolveAPIKey(flagValue, dir string) string {
	if flagValue != "" {
		return flagValue
	}
	if c.LLM.APIKey != "" {
		return c.LLM.APIKey
	}

	vars := keyEnvVars[llm.Provider(c.LLM.Provider)]
	for _, name := range vars {
		if v := os.Getenv(name); v != "" {
			return v
		}
	}

	dotenv, err := godotenv.Read(filepath.Join(dir, ".env"))
	if err != nil {
		return ""
	}
	for _, name := range vars {
		if v := dotenv[name]; v != "" {
			return v
		}
	}
	return ""
}

// ClientConfig converts the llm section to a client configuration.
func (c *ProjectConfig) ClientConfig(apiKey string) llm.Config {
	return llm.Config{
		Provider: llm.Provider(c.LLM.Provider),
		Model:    c.LLM.Model,
		APIKey:   apiKey,
		BaseURL:  c.LLM.BaseURL,
		Timeout:  time.Duration(c.LLM.Timeout) * time.Second,
	}
}

// EffectivenessOptions converts the effectiveness section to prompt options.
func (c *ProjectConfig) EffectivenessOptions() prompts.EffectivenessOptions {
	opts := prompts.DefaultEffectivenessOptions
	if c.Effectiveness.IncludeExpectedRanges != nil {
		opts.IncludeExpectedRanges = *c.Effectiveness.IncludeExpectedRanges
	}
	return opts
}

func boolPtr(b bool) *bool {
	return &b
}
