package llm

import (
	"sync"
	"time"
)

// Provider names a generation backend.
type Provider string

const (
	ProviderOpenAI  Provider = "openai"
	ProviderGemini  Provider = "gemini"
	ProviderCopilot Provider = "copilot"
	ProviderMock    Provider = "mock"
)

// Providers lists the supported backends.
var Providers = []Provider{ProviderOpenAI, ProviderGemini, ProviderCopilot, ProviderMock}

// Default connection settings.
const (
	DefaultProvider = ProviderOpenAI
	DefaultModel    = "gpt-4o"
	DefaultTimeout  = 30 * time.Second
)

// Config is an immutable view of the connection settings. A task captures
// one when it starts and uses it to the end.
type Config struct {
	Provider Provider
	Model    string
	APIKey   string
	BaseURL  string
	Timeout  time.Duration
}

// Settings is the process-wide credential and model configuration. The user
// may change it at any time; running tasks are unaffected because they work
// from a Snapshot.
type Settings struct {
	mu  sync.RWMutex
	cfg Config
}

// NewSettings creates settings from an initial configuration, filling
// defaults for empty fields.
func NewSettings(cfg Config) *Settings {
	if cfg.Provider == "" {
		cfg.Provider = DefaultProvider
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	return &Settings{cfg: cfg}
}

// Snapshot returns the current configuration.
func (s *Settings) Snapshot() Config {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cfg
}

func (s *Settings) SetAPIKey(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cfg.APIKey = key
}

func (s *Settings) SetModel(model string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cfg.Model = model
}

func (s *Settings) SetProvider(p Provider) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cfg.Provider = p
}
