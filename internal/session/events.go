package session

import "time"

// EventType identifies the kind of session event.
type EventType string

const (
	EventSessionStart     EventType = "session_start"
	EventSessionEnd       EventType = "session_complete"
	EventTaskStart        EventType = "task_start"
	EventGeneration       EventType = "generation"
	EventExtractionFailed EventType = "extraction_failed"
	EventValidation       EventType = "validation"
	EventTaskComplete     EventType = "task_complete"
	EventError            EventType = "error"
)

// Event is a single timestamped entry in a session log.
type Event struct {
	Timestamp time.Time      `json:"timestamp"`
	Type      EventType      `json:"type"`
	Data      map[string]any `json:"data,omitempty"`
}

// NewEvent creates an event with the current timestamp.
func NewEvent(t EventType, data map[string]any) Event {
	return Event{
		Timestamp: time.Now().UTC(),
		Type:      t,
		Data:      data,
	}
}

// SessionStartData returns event data for a session start.
func SessionStartData(command, provider, model string, taskCount int) map[string]any {
	return map[string]any{
		"command":    command,
		"provider":   provider,
		"model":      model,
		"task_count": taskCount,
	}
}

// SessionCompleteData returns event data for a session end.
func SessionCompleteData(totalTasks, succeeded, failed int, durationMs int64) map[string]any {
	return map[string]any{
		"total_tasks": totalTasks,
		"succeeded":   succeeded,
		"failed":      failed,
		"duration_ms": durationMs,
	}
}

// TaskStartData returns event data for a task start. label names the input,
// e.g. a dataset name in batch runs.
func TaskStartData(kind, label string) map[string]any {
	return map[string]any{
		"kind":  kind,
		"label": label,
	}
}

// GenerationData returns event data for a completed generation call.
func GenerationData(kind, provider, model string, totalTokens int, elapsedMs int64) map[string]any {
	return map[string]any{
		"kind":         kind,
		"provider":     provider,
		"model":        model,
		"total_tokens": totalTokens,
		"elapsed_ms":   elapsedMs,
	}
}

// ExtractionFailedData returns event data for a response that held no
// structured document. Only a prefix of the response is kept.
func ExtractionFailedData(kind, raw string) map[string]any {
	const maxPreview = 500
	preview := []rune(raw)
	if len(preview) > maxPreview {
		preview = preview[:maxPreview]
	}
	return map[string]any{
		"kind":         kind,
		"raw_length":   len(raw),
		"raw_response": string(preview),
	}
}

// ValidationData returns event data for the validation stage.
func ValidationData(kind string, kept, dropped int) map[string]any {
	return map[string]any{
		"kind":    kind,
		"kept":    kept,
		"dropped": dropped,
	}
}

// TaskCompleteData returns event data for a task completion.
func TaskCompleteData(kind, label, status string, records int, durationMs int64) map[string]any {
	return map[string]any{
		"kind":        kind,
		"label":       label,
		"status":      status,
		"records":     records,
		"duration_ms": durationMs,
	}
}

// ErrorData returns event data for an error.
func ErrorData(message string, details map[string]any) map[string]any {
	d := map[string]any{
		"message": message,
	}
	for k, v := range details {
		d[k] = v
	}
	return d
}
