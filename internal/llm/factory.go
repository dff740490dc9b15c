package llm

import (
	"fmt"
	"strings"
)

// NewFunc builds a client from a configuration snapshot.
type NewFunc func(cfg Config) (Client, error)

// New builds the client for cfg.Provider. Missing credentials are reported
// here, before any request is attempted.
func New(cfg Config) (Client, error) {
	switch cfg.Provider {
	case ProviderOpenAI, "":
		return NewOpenAIClient(cfg)
	case ProviderGemini:
		return NewGeminiClient(cfg)
	case ProviderCopilot:
		return NewCopilotClient(cfg, nil), nil
	case ProviderMock:
		return NewScriptedClient(nil), nil
	default:
		return nil, fmt.Errorf("unknown provider %q (supported: %s)", cfg.Provider, providerList())
	}
}

// ParseProvider validates a provider name.
func ParseProvider(s string) (Provider, error) {
	p := Provider(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Providers {
		if p == known {
			return p, nil
		}
	}
	return "", fmt.Errorf("unknown provider %q (supported: %s)", s, providerList())
}

func providerList() string {
	names := make([]string, len(Providers))
	for i, p := range Providers {
		names[i] = string(p)
	}
	return strings.Join(names, ", ")
}
