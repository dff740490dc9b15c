// Package llm talks to text-generation services. Each call is a single
// request/response exchange: there is no retry and no caching.
package llm

//go:generate go tool mockgen -source client.go -destination mock_client.go -package llm

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// Request is one exchange with the generation service.
type Request struct {
	// Instruction is sent as the system-level message.
	Instruction string
	// Context is sent as the user-level message.
	Context     string
	Temperature float64
	MaxTokens   int
}

// Usage is the token accounting reported by the service. Backends that do
// not report usage leave it zero.
type Usage struct {
	PromptTokens     int `json:"prompt"`
	CompletionTokens int `json:"completion"`
	TotalTokens      int `json:"total"`
}

// Result is the raw output of one exchange.
type Result struct {
	Text     string        `json:"text"`
	Model    string        `json:"model"`
	Provider string        `json:"provider"`
	Usage    Usage         `json:"usage"`
	Elapsed  time.Duration `json:"elapsed"`
}

// Client issues generation requests.
type Client interface {
	// Generate performs exactly one call. Errors are *AuthenticationError,
	// *TransportError or *QuotaError.
	Generate(ctx context.Context, req Request) (*Result, error)

	// Name identifies the backend and model, e.g. "openai:gpt-4o".
	Name() string
}

// Shutdowner is implemented by clients that keep a process running between
// calls. Callers shut the client down once they are done with it.
type Shutdowner interface {
	Shutdown()
}

// AuthenticationError means no credential is configured. It is raised
// before any network traffic.
type AuthenticationError struct {
	Provider string
	EnvVar   string
}

func (e *AuthenticationError) Error() string {
	if e.EnvVar == "" {
		return fmt.Sprintf("%s: no API key configured", e.Provider)
	}
	return fmt.Sprintf("%s: no API key configured (set it with 'ctaeval config set api_key' or the %s environment variable)", e.Provider, e.EnvVar)
}

// TransportError covers network failures and error responses from the
// service, including rejected credentials.
type TransportError struct {
	Provider   string
	StatusCode int
	Err        error
}

func (e *TransportError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s: service returned status %d: %v", e.Provider, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Provider, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// QuotaError means the service signalled a usage or rate limit.
type QuotaError struct {
	Provider string
	Message  string
}

func (e *QuotaError) Error() string {
	return fmt.Sprintf("%s: usage limit reached: %s", e.Provider, e.Message)
}

// IsAuthentication, IsTransport and IsQuota classify errors returned by Generate.
func IsAuthentication(err error) bool {
	var e *AuthenticationError
	return errors.As(err, &e)
}

func IsTransport(err error) bool {
	var e *TransportError
	return errors.As(err, &e)
}

func IsQuota(err error) bool {
	var e *QuotaError
	return errors.As(err, &e)
}
