package models

import (
	"fmt"
	"time"
)

// FailureKind classifies why a task did not produce records.
type FailureKind string

const (
	FailureInput         FailureKind = "input"
	FailureConfiguration FailureKind = "configuration"
	FailureTransport     FailureKind = "transport"
	FailureQuota         FailureKind = "quota"
	FailureExtraction    FailureKind = "extraction"
	FailureInternal      FailureKind = "internal"
)

// Failure is the reason attached to a failed task.
type Failure struct {
	Kind    FailureKind `json:"kind"`
	Message string      `json:"message"`

	// RawResponse is set for extraction failures so the response can be
	// inspected by hand.
	RawResponse string `json:"raw_response,omitempty"`
}

func (f *Failure) Error() string {
	return fmt.Sprintf("%s error: %s", f.Kind, f.Message)
}

// TokenUsage is the token accounting reported by the generation service.
type TokenUsage struct {
	Prompt     int `json:"prompt"`
	Completion int `json:"completion"`
	Total      int `json:"total"`
}

// GenerationMeta is what is kept of a generation exchange once its text has
// been consumed.
type GenerationMeta struct {
	Provider   string     `json:"provider"`
	Model      string     `json:"model"`
	Usage      TokenUsage `json:"usage"`
	ElapsedSec float64    `json:"elapsed_seconds"`
}

// Outcome is the single result every task entry point returns: Value is set
// on success and Failure otherwise. A successful outcome may carry an empty
// collection.
type Outcome[T any] struct {
	Kind       TaskKind        `json:"kind"`
	Value      *T              `json:"value,omitempty"`
	Failure    *Failure        `json:"failure,omitempty"`
	Generation *GenerationMeta `json:"generation,omitempty"`
	Dropped    int             `json:"dropped,omitempty"`
	StartedAt  time.Time       `json:"started_at"`
	DurationMs int64           `json:"duration_ms"`
}

// OK reports whether the task succeeded.
func (o Outcome[T]) OK() bool {
	return o.Failure == nil && o.Value != nil
}

// Succeed builds a successful outcome.
func Succeed[T any](kind TaskKind, v T) Outcome[T] {
	return Outcome[T]{Kind: kind, Value: &v}
}

// Fail builds a failed outcome.
func Fail[T any](kind TaskKind, f Failure) Outcome[T] {
	return Outcome[T]{Kind: kind, Failure: &f}
}
