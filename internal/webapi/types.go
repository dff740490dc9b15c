package webapi

import (
	"github.com/ctalab/ctaeval/internal/models"
)

// CognateRequest accepts either parsed candidates or raw "lang:word" lines.
// Candidates win when both are set.
type CognateRequest struct {
	Candidates []models.Candidate `json:"candidates,omitempty"`
	Text       string             `json:"text,omitempty"`
}

// BatchRequest runs effectiveness over several datasets.
type BatchRequest struct {
	Datasets []models.Dataset `json:"datasets"`
}

// SettingsResponse describes the active generation settings. The credential
// itself is never returned.
type SettingsResponse struct {
	Provider  string `json:"provider"`
	Model     string `json:"model"`
	HasAPIKey bool   `json:"hasApiKey"`
}

// SettingsUpdate changes the settings used by tasks started afterwards.
// Nil fields are left unchanged.
type SettingsUpdate struct {
	Provider *string `json:"provider,omitempty"`
	Model    *string `json:"model,omitempty"`
	APIKey   *string `json:"apiKey,omitempty"`
}

// HealthResponse is the health check response.
type HealthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version"`
}

// ErrorResponse is returned for errors.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  int    `json:"code"`
}
