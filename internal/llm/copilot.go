package llm

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	copilot "github.com/github/copilot-sdk/go"
)

// CopilotClient generates through a GitHub Copilot session. It uses the
// logged-in Copilot user, so no API key is needed.
type CopilotClient struct {
	model   string
	timeout time.Duration
	client  copilotClient

	startOnce sync.Once
	startErr  error
}

// CopilotClientOptions allows substituting the SDK client.
type CopilotClientOptions struct {
	NewCopilotClient func(clientOptions *copilot.ClientOptions) copilotClient
}

// NewCopilotClient creates a client; the Copilot CLI is started on the
// first Generate call. A blank model lets the CLI choose.
func NewCopilotClient(cfg Config, options *CopilotClientOptions) *CopilotClient {
	copilotOptions := &copilot.ClientOptions{
		LogLevel:  "error",
		AutoStart: copilot.Bool(false),
	}

	var client copilotClient
	if options == nil || options.NewCopilotClient == nil {
		client = newCopilotSDKClient(copilotOptions)
	} else {
		client = options.NewCopilotClient(copilotOptions)
	}

	model := cfg.Model
	if model == DefaultModel {
		model = ""
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	return &CopilotClient{model: model, timeout: timeout, client: client}
}

func (c *CopilotClient) Name() string {
	if c.model == "" {
		return string(ProviderCopilot)
	}
	return string(ProviderCopilot) + ":" + c.model
}

func (c *CopilotClient) Generate(ctx context.Context, req Request) (*Result, error) {
	c.startOnce.Do(func() {
		// AutoStart misbehaves when triggered from several goroutines at once.
		c.startErr = c.client.Start(ctx)
	})
	if c.startErr != nil {
		return nil, &TransportError{Provider: string(ProviderCopilot), Err: fmt.Errorf("copilot failed to start: %w", c.startErr)}
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	start := time.Now()

	session, err := c.client.CreateSession(ctx, &copilot.SessionConfig{Model: c.model})
	if err != nil {
		return nil, &TransportError{Provider: string(ProviderCopilot), Err: fmt.Errorf("failed to create session: %w", err)}
	}

	var (
		mu    sync.Mutex
		parts []string
	)
	unsubscribe := session.On(func(event copilot.SessionEvent) {
		if event.Type == copilot.AssistantMessage && event.Data.Content != nil {
			mu.Lock()
			parts = append(parts, *event.Data.Content)
			mu.Unlock()
		}
	})
	defer unsubscribe()

	unsubscribe = session.On(sessionToSlog)
	defer unsubscribe()

	final, err := session.SendAndWait(ctx, copilot.MessageOptions{
		Prompt: copilotPrompt(req),
	})
	if err != nil {
		return nil, &TransportError{Provider: string(ProviderCopilot), Err: err}
	}

	mu.Lock()
	text := strings.Join(parts, "")
	mu.Unlock()

	if text == "" && final != nil && final.Data.Content != nil {
		text = *final.Data.Content
	}

	model := c.model
	if model == "" {
		model = string(ProviderCopilot)
	}

	return &Result{
		Text:     text,
		Model:    model,
		Provider: string(ProviderCopilot),
		Elapsed:  time.Since(start),
	}, nil
}

// Shutdown stops the Copilot CLI if it was started.
func (c *CopilotClient) Shutdown() {
	if err := c.client.Stop(); err != nil {
		slog.Info("failed to stop client", "error", err)
	}
}

// copilotPrompt folds the instruction and context into one message since a
// session takes a single prompt. Sampling parameters are not forwarded.
func copilotPrompt(req Request) string {
	return req.Instruction + "\n\n---\n\n" + req.Context
}

func sessionToSlog(event copilot.SessionEvent) {
	if !slog.Default().Enabled(context.Background(), slog.LevelDebug) {
		return
	}

	attrs := []any{
		"type", event.Type,
	}

	attrs = addIf(attrs, "content", event.Data.Content)
	attrs = addIf(attrs, "deltaContent", event.Data.DeltaContent)

	slog.Debug("Event received", attrs...)
}

func addIf[T any](attrs []any, name string, v *T) []any {
	if v != nil {
		attrs = append(attrs, name, *v)
	}

	return attrs
}
