package llm

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"google.golang.org/genai"
)

const (
	DefaultGeminiModel = "gemini-2.0-flash"
	GeminiKeyEnv       = "GEMINI_API_KEY"
)

// GeminiClient uses the Gemini API through the genai SDK.
type GeminiClient struct {
	apiKey  string
	model   string
	timeout time.Duration
	newSDK  func(ctx context.Context, cc *genai.ClientConfig) (*genai.Client, error)
}

// NewGeminiClient fails with *AuthenticationError when cfg has no key. The
// SDK client itself is created lazily on the first call.
func NewGeminiClient(cfg Config) (*GeminiClient, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, &AuthenticationError{Provider: string(ProviderGemini), EnvVar: GeminiKeyEnv}
	}
	model := cfg.Model
	if model == "" || model == DefaultModel {
		model = DefaultGeminiModel
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &GeminiClient{apiKey: cfg.APIKey, model: model, timeout: timeout, newSDK: genai.NewClient}, nil
}

func (c *GeminiClient) Name() string { return string(ProviderGemini) + ":" + c.model }

func (c *GeminiClient) Generate(ctx context.Context, req Request) (*Result, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	cli, err := c.newSDK(ctx, &genai.ClientConfig{
		APIKey:  c.apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, &TransportError{Provider: string(ProviderGemini), Err: err}
	}

	cfg := &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(req.Instruction, genai.RoleUser),
		Temperature:       genai.Ptr(float32(req.Temperature)),
		ResponseMIMEType:  "application/json",
	}
	if req.MaxTokens > 0 {
		cfg.MaxOutputTokens = int32(req.MaxTokens)
	}

	slog.Debug("Sending generation request", "provider", ProviderGemini, "model", c.model, "maxTokens", req.MaxTokens)
	start := time.Now()

	resp, err := cli.Models.GenerateContent(ctx, c.model, []*genai.Content{
		genai.NewContentFromText(req.Context, genai.RoleUser),
	}, cfg)
	if err != nil {
		return nil, classifyGeminiError(err)
	}

	elapsed := time.Since(start)
	out := &Result{
		Text:     resp.Text(),
		Model:    c.model,
		Provider: string(ProviderGemini),
		Elapsed:  elapsed,
	}
	if resp.ModelVersion != "" {
		out.Model = resp.ModelVersion
	}
	if u := resp.UsageMetadata; u != nil {
		out.Usage = Usage{
			PromptTokens:     int(u.PromptTokenCount),
			CompletionTokens: int(u.CandidatesTokenCount),
			TotalTokens:      int(u.TotalTokenCount),
		}
	}
	slog.Debug("Generation complete", "provider", ProviderGemini, "model", out.Model, "elapsed", elapsed, "totalTokens", out.Usage.TotalTokens)
	return out, nil
}

func classifyGeminiError(err error) error {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		if apiErr.Code == http.StatusTooManyRequests || apiErr.Status == "RESOURCE_EXHAUSTED" {
			slog.Warn("Generation service reported a usage limit", "provider", ProviderGemini, "status", apiErr.Status)
			return &QuotaError{Provider: string(ProviderGemini), Message: apiErr.Message}
		}
		return &TransportError{Provider: string(ProviderGemini), StatusCode: apiErr.Code, Err: fmt.Errorf("%s", apiErr.Message)}
	}
	return &TransportError{Provider: string(ProviderGemini), Err: err}
}
