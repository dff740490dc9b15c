package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"
)

const (
	DefaultOpenAIBaseURL = "https://api.openai.com/v1"
	OpenAIKeyEnv         = "OPENAI_API_KEY"
)

// OpenAIClient speaks the OpenAI chat-completions protocol. Any compatible
// service can be used by changing the base URL.
type OpenAIClient struct {
	apiKey     string
	baseURL    string
	model      string
	httpClient *http.Client
}

// NewOpenAIClient fails with *AuthenticationError when cfg has no key.
func NewOpenAIClient(cfg Config) (*OpenAIClient, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, &AuthenticationError{Provider: string(ProviderOpenAI), EnvVar: OpenAIKeyEnv}
	}
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultOpenAIBaseURL
	}
	model := cfg.Model
	if model == "" {
		model = DefaultModel
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &OpenAIClient{
		apiKey:     cfg.APIKey,
		baseURL:    strings.TrimRight(baseURL, "/"),
		model:      model,
		httpClient: &http.Client{Timeout: timeout},
	}, nil
}

func (c *OpenAIClient) Name() string { return string(ProviderOpenAI) + ":" + c.model }

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
}

type chatResponse struct {
	Model   string `json:"model"`
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Usage struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
		TotalTokens      int `json:"total_tokens"`
	} `json:"usage"`
	Error *apiError `json:"error,omitempty"`
}

type apiError struct {
	Message string `json:"message"`
	Type    string `json:"type"`
	Code    any    `json:"code"`
}

func (c *OpenAIClient) Generate(ctx context.Context, req Request) (*Result, error) {
	body, err := json.Marshal(chatRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "system", Content: req.Instruction},
			{Role: "user", Content: req.Context},
		},
		Temperature: req.Temperature,
		MaxTokens:   req.MaxTokens,
	})
	if err != nil {
		return nil, fmt.Errorf("marshaling request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return nil, &TransportError{Provider: string(ProviderOpenAI), Err: err}
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)

	slog.Debug("Sending generation request", "provider", ProviderOpenAI, "model", c.model, "maxTokens", req.MaxTokens)
	start := time.Now()

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, &TransportError{Provider: string(ProviderOpenAI), Err: err}
	}
	defer resp.Body.Close() //nolint:errcheck

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &TransportError{Provider: string(ProviderOpenAI), StatusCode: resp.StatusCode, Err: err}
	}

	if resp.StatusCode != http.StatusOK {
		return nil, classifyOpenAIError(resp.StatusCode, raw)
	}

	var parsed chatResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return nil, &TransportError{Provider: string(ProviderOpenAI), StatusCode: resp.StatusCode, Err: fmt.Errorf("decoding response: %w", err)}
	}
	if parsed.Error != nil {
		return nil, classifyOpenAIError(resp.StatusCode, raw)
	}
	if len(parsed.Choices) == 0 {
		return nil, &TransportError{Provider: string(ProviderOpenAI), StatusCode: resp.StatusCode, Err: fmt.Errorf("response contained no choices")}
	}

	model := parsed.Model
	if model == "" {
		model = c.model
	}
	elapsed := time.Since(start)
	slog.Debug("Generation complete", "provider", ProviderOpenAI, "model", model, "elapsed", elapsed, "totalTokens", parsed.Usage.TotalTokens)

	return &Result{
		Text:     parsed.Choices[0].Message.Content,
		Model:    model,
		Provider: string(ProviderOpenAI),
		Usage: Usage{
			PromptTokens:     parsed.Usage.PromptTokens,
			CompletionTokens: parsed.Usage.CompletionTokens,
			TotalTokens:      parsed.Usage.TotalTokens,
		},
		Elapsed: elapsed,
	}, nil
}

// classifyOpenAIError maps an error response to a quota or transport error.
// 429 and an insufficient_quota code are quota; everything else, including
// rejected credentials, is transport.
func classifyOpenAIError(status int, body []byte) error {
	msg := strings.TrimSpace(string(body))
	var envelope struct {
		Error *apiError `json:"error"`
	}
	var code string
	if json.Unmarshal(body, &envelope) == nil && envelope.Error != nil {
		msg = envelope.Error.Message
		code = fmt.Sprint(envelope.Error.Code)
		if envelope.Error.Type == "insufficient_quota" {
			code = "insufficient_quota"
		}
	}
	if status == http.StatusTooManyRequests || code == "insufficient_quota" {
		slog.Warn("Generation service reported a usage limit", "provider", ProviderOpenAI, "status", status)
		return &QuotaError{Provider: string(ProviderOpenAI), Message: msg}
	}
	return &TransportError{Provider: string(ProviderOpenAI), StatusCode: status, Err: fmt.Errorf("%s", msg)}
}
